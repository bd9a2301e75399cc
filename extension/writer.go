package extension

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/imishinist/go-csp"
	"github.com/imishinist/go-csp/channel"
)

// WriterSink writes every element on its own line.
type WriterSink[T any] struct {
	w io.Writer
}

var _ csp.Sink[string] = (*WriterSink[string])(nil)

func NewWriterSink[T any](w io.Writer) *WriterSink[T] {
	return &WriterSink[T]{w: w}
}

// Run returns once in reaches end-of-stream. After a write error the rest of
// in is discarded so the producers can finish.
func (ws *WriterSink[T]) Run(in channel.Receiver[T]) error {
	for {
		v, ok := in.Receive()
		if !ok {
			return nil
		}
		if _, err := fmt.Fprintln(ws.w, v); err != nil {
			_ = NewIgnoreSink[T]().Run(in)
			return errors.Wrap(err, "writer sink")
		}
	}
}

// IgnoreSink discards every element.
type IgnoreSink[T any] struct{}

var _ csp.Sink[string] = (*IgnoreSink[string])(nil)

func NewIgnoreSink[T any]() *IgnoreSink[T] {
	return &IgnoreSink[T]{}
}

func (IgnoreSink[T]) Run(in channel.Receiver[T]) error {
	for {
		if _, ok := in.Receive(); !ok {
			return nil
		}
	}
}

// RuneSink writes runes as they are, without separators.
type RuneSink struct {
	w io.Writer
}

var _ csp.Sink[rune] = (*RuneSink)(nil)

func NewRuneSink(w io.Writer) *RuneSink {
	return &RuneSink{w: w}
}

// Run writes until in reaches end-of-stream and flushes.
func (rs *RuneSink) Run(in channel.Receiver[rune]) error {
	bw := bufio.NewWriter(rs.w)
	for {
		c, ok := in.Receive()
		if !ok {
			return errors.Wrap(bw.Flush(), "rune sink")
		}
		if _, err := bw.WriteRune(c); err != nil {
			_ = NewIgnoreSink[rune]().Run(in)
			return errors.Wrap(err, "rune sink")
		}
	}
}
