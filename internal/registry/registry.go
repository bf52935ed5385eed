// Package registry tracks candidate identity within a single discovery
// run and screens candidates against the profile's persisted shows so
// nothing is processed or stored twice.
package registry

import (
	"context"
	"strings"

	"showscout/internal/store"
)

// Lookup is the subset of the store the registry needs.
type Lookup interface {
	FindShowByKeys(ctx context.Context, profileID, sourceID, platformURL, feedURL string) (*store.Show, error)
}

// Registry is scoped to one run and one profile. It is not safe for
// concurrent use; the pipeline consults it only from the sequential
// query loop.
type Registry struct {
	store     Lookup
	profileID string
	seen      map[string]struct{}
}

// New builds a registry for a single run.
func New(lookup Lookup, profileID string) *Registry {
	return &Registry{
		store:     lookup,
		profileID: profileID,
		seen:      make(map[string]struct{}),
	}
}

// Admit reports whether a candidate with the given keys should be
// processed. The first admission for a source id wins; later sightings in
// the same run and matches against persisted shows are rejected. Show
// names are deliberately not part of the identity: distinct shows can
// share a name, and names drift between catalogs.
func (r *Registry) Admit(ctx context.Context, sourceID, platformURL, feedURL string) (bool, error) {
	key := strings.TrimSpace(sourceID)
	if key == "" {
		return false, nil
	}
	if _, dup := r.seen[key]; dup {
		return false, nil
	}

	existing, err := r.store.FindShowByKeys(ctx, r.profileID, key, strings.TrimSpace(platformURL), strings.TrimSpace(feedURL))
	if err != nil {
		return false, err
	}

	// Terminal either way: a persisted match must not be re-examined on a
	// later query of the same run.
	r.seen[key] = struct{}{}
	return existing == nil, nil
}

// Size returns how many distinct source ids this run has settled.
func (r *Registry) Size() int { return len(r.seen) }
