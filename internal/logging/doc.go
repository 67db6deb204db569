// Package logging provides a unified logging interface for fibdispatch.
// It abstracts the underlying logging implementation, allowing consistent logging
// across components (CLI harness, HTTP service, guest host) while supporting
// multiple backends.
package logging
