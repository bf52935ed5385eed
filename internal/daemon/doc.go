// Package daemon coordinates the long-running showscout process.
//
// It wires configuration, the store, the discovery engine, and the quota
// gatekeeper into a single lifecycle with flock-based locking to prevent
// multiple instances, and serves the HTTP API the CLI talks to. Requests
// are authenticated with a bearer token resolved to a user and their
// active profile.
//
// Keep orchestration logic here: the pipeline stages live in their own
// packages while the daemon focuses on startup, shutdown, admission, and
// transport.
package daemon
