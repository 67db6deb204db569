// Package format holds the pure string formatting helpers shared by the CLI
// and the TUI: durations, tick counts, grouped numbers, byte sizes and the
// aggregated progress bar with its ETA estimate.
package format
