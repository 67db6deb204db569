// Package orchestration runs one or more dispatch backends concurrently
// against the same index, gathers their benchmark results and cross-checks
// them. Presentation is reached only through the ProgressReporter and
// ResultPresenter interfaces.
package orchestration
