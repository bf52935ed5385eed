// Package store persists users, discovery profiles, discovered shows, and
// per-user quota counters in SQLite.
//
// The shows table carries unique indexes over (profile, source_id),
// (profile, platform_url), and (profile, feed_url) so the deduplication
// invariant holds even if a caller races the pre-insert lookup.
package store
