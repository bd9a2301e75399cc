package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/imishinist/go-csp"
	"github.com/imishinist/go-csp/channel"
	"github.com/imishinist/go-csp/extension"
	"github.com/imishinist/go-csp/flow"
)

// job runs one pipeline from r to w.
type job func(r io.Reader, w io.Writer) error

func (a *app) command(use, short string, build func() (job, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [file...]",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := build()
			if err != nil {
				return err
			}
			return a.process(cmd.Context(), args, j)
		},
	}
}

func (a *app) copyCmd() *cobra.Command {
	return a.command("copy", "Copy records unchanged", func() (job, error) {
		c := flow.NewCopy[string]("cspipe/copy")
		return a.records(c), nil
	})
}

func (a *app) squashCmd() *cobra.Command {
	return a.command("squash", "Collapse marker pairs in every record", func() (job, error) {
		p, err := a.newSquashLines()
		if err != nil {
			return nil, err
		}
		return a.records(p), nil
	})
}

func (a *app) disassembleCmd() *cobra.Command {
	return a.command("disassemble", "Split records into characters followed by a separator", func() (job, error) {
		d, err := flow.NewDisassemble("cspipe/disassemble", a.cfg.Pipeline.Options())
		if err != nil {
			return nil, err
		}
		return func(r io.Reader, w io.Writer) error {
			err := pump[string, rune](extension.NewReaderSource(r), closing[string, rune]{d}, extension.NewRuneSink(w), a.cfg.Pipeline.Capacity)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(w)
			return err
		}, nil
	})
}

func (a *app) assembleCmd() *cobra.Command {
	return a.command("assemble", "Pack characters into fixed-length lines", func() (job, error) {
		as, err := flow.NewAssemble("cspipe/assemble", a.cfg.Pipeline.Options())
		if err != nil {
			return nil, err
		}
		return func(r io.Reader, w io.Writer) error {
			return pump[rune, string](extension.NewRuneSource(r), as, extension.NewWriterSink[string](w), a.cfg.Pipeline.Capacity)
		}, nil
	})
}

func (a *app) reformatCmd() *cobra.Command {
	return a.command("reformat", "Reformat records into fixed-length lines", func() (job, error) {
		mode, err := a.cfg.Pipeline.ReformatMode()
		if err != nil {
			return nil, err
		}
		f, err := flow.NewReformat("cspipe/reformat", mode, a.cfg.Pipeline.Options())
		if err != nil {
			return nil, err
		}
		return a.records(f), nil
	})
}

func (a *app) conwayCmd() *cobra.Command {
	return a.command("conway", "Reformat records into lines, collapsing marker pairs onto new lines", func() (job, error) {
		c, err := flow.NewConway("cspipe/conway", a.cfg.Pipeline.Options())
		if err != nil {
			return nil, err
		}
		return a.records(c), nil
	})
}

// records runs p between a line reader and a line writer.
func (a *app) records(p csp.Process[string, string]) job {
	return func(r io.Reader, w io.Writer) error {
		return pump[string, string](extension.NewReaderSource(r), p, extension.NewWriterSink[string](w), a.cfg.Pipeline.Capacity)
	}
}

// pump connects src, p and sink with two channels and waits for all three.
// If p fails, its output is closed and its input discarded so that src and
// sink still terminate.
func pump[In, Out any](src csp.Source[In], p csp.Process[In, Out], sink csp.Sink[Out], capacity int) error {
	in := channel.New[In](capacity)
	out := channel.New[Out](capacity)

	srcErr := csp.StartSource[In](src, in)
	sinkErr := make(chan error, 1)
	go func() {
		sinkErr <- sink.Run(out)
	}()

	err := p.Run(in, out)
	if err != nil {
		if out.IsOpen() {
			_ = out.Close()
		}
		_ = extension.NewIgnoreSink[In]().Run(in)
	}
	return errors.Join(err, <-sinkErr, <-srcErr)
}

// closing closes the output of a process that leaves it open.
type closing[In, Out any] struct {
	csp.Process[In, Out]
}

func (c closing[In, Out]) Run(in channel.Receiver[In], out channel.Sender[Out]) error {
	return errors.Join(c.Process.Run(in, out), out.Close())
}

// squashLines squashes every record on its own, so a marker at the end of a
// record is a trailing lone marker and the squash policy applies to it.
type squashLines struct {
	squash *flow.Squash[rune]
}

func (a *app) newSquashLines() (*squashLines, error) {
	opts := a.cfg.Pipeline.Options()
	s, err := flow.NewSquash("cspipe/squash", opts.Marker, opts.Collapsed, a.cfg.Pipeline.SquashPolicy())
	if err != nil {
		return nil, err
	}
	return &squashLines{squash: s}, nil
}

func (s *squashLines) Run(in channel.Receiver[string], out channel.Sender[string]) error {
	for {
		record, ok := in.Receive()
		if !ok {
			return out.Close()
		}

		squashed := channel.New[rune](channel.Unbounded)
		if err := s.squash.Run(channel.FromSlice([]rune(record)), squashed); err != nil {
			return err
		}
		if err := out.Send(string(channel.ToSlice[rune](squashed))); err != nil {
			return err
		}
	}
}
