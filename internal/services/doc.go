// Package services defines the shared error taxonomy for external
// collaborators (catalog clients, the LLM extraction service) and the
// mapping from classified errors to API responses.
package services
