// Package main hosts the showscout CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into HTTP
// calls against the daemon: discovery runs with live progress output,
// show listings, profile and quota inspection, and configuration
// scaffolding. It centralizes configuration resolution and API client
// construction so subcommands can focus on user experience instead of
// wiring.
//
// Keep this package lean: add new functionality by extending the
// internal packages first, then surface it through dedicated commands or
// flags here.
package main
