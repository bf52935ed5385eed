// Package sources defines the adapter contract that normalizes the external
// catalogs (video hosting and podcast index) behind one search/detail/content
// capability.
package sources
