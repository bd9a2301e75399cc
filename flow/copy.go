package flow

import (
	"github.com/imishinist/go-csp"
	"github.com/imishinist/go-csp/channel"
)

// Copy forwards every value unchanged.
type Copy[T any] struct {
	stage
}

var _ csp.Process[any, any] = (*Copy[any])(nil)

func NewCopy[T any](name string) *Copy[T] {
	return &Copy[T]{
		stage: newStage(name, "copy"),
	}
}

// Run forwards values from in to out in order and closes out once in reaches
// end-of-stream. If in is never closed, Run never returns.
func (c *Copy[T]) Run(in channel.Receiver[T], out channel.Sender[T]) error {
	r := c.begin()
	return r.end(c.doStream(r, in, out))
}

func (c *Copy[T]) doStream(r *run, in channel.Receiver[T], out channel.Sender[T]) error {
	for {
		v, ok := receive(r, in)
		if !ok {
			return r.close(out)
		}
		if err := send(r, out, v); err != nil {
			return err
		}
	}
}
