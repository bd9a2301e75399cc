// Package csp defines the contracts shared by the sequential processes of a
// pipeline. Processes communicate only through channel.Channel values and
// never share memory.
package csp

import "github.com/imishinist/go-csp/channel"

// Source is a process that only produces.
type Source[Out any] interface {
	Run(out channel.Sender[Out]) error
}

// Process is a sequential process reading one channel and writing another.
type Process[In, Out any] interface {
	Run(in channel.Receiver[In], out channel.Sender[Out]) error
}

// Sink is a process that only consumes.
type Sink[In any] interface {
	Run(in channel.Receiver[In]) error
}

// Start runs p in its own goroutine. The returned channel delivers the
// result of Run exactly once and is then closed.
func Start[In, Out any](p Process[In, Out], in channel.Receiver[In], out channel.Sender[Out]) <-chan error {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		errc <- p.Run(in, out)
	}()
	return errc
}

// StartSource is Start for a Source.
func StartSource[Out any](s Source[Out], out channel.Sender[Out]) <-chan error {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		errc <- s.Run(out)
	}()
	return errc
}
