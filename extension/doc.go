// Package extension connects pipelines to the outside world: a source that
// reads records from an io.Reader and sinks that write to an io.Writer or
// discard.
package extension
