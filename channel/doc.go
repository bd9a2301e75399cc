// Package channel provides the point-to-point channel that connects the
// sequential processes of a pipeline.
//
// A Channel is a FIFO queue with a closed flag. Receive blocks while the
// channel is empty and open, and reports end-of-stream once it is empty and
// closed. TryReceive never blocks and distinguishes a value, an empty open
// channel and an empty closed channel. Send on a closed channel and a second
// Close both return ErrClosed instead of panicking.
//
// The helpers FromSlice, FromValues and ToSlice pre-load and drain channels,
// and Go runs a producer and closes its output channel once it returns.
package channel
