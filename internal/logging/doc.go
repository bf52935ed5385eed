// Package logging wires slog with the handlers used across showscout.
//
// Two output formats are supported: a compact console format for
// interactive use and JSON for machine consumption. Components attach a
// standardized "component" attribute via WithComponent so console output
// groups lines by subsystem.
package logging
