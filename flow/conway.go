package flow

import (
	"github.com/apex/log"

	"github.com/imishinist/go-csp"
	"github.com/imishinist/go-csp/channel"
)

// Conway reformats records into lines like Reformat, and also collapses
// marker pairs. A collapsed value always starts a new line: the line being
// packed is flushed, padded, first.
type Conway struct {
	stage

	opts        Options
	disassemble *Disassemble
}

var _ csp.Process[string, string] = (*Conway)(nil)

func NewConway(name string, opts Options) (*Conway, error) {
	if err := opts.validate(name); err != nil {
		return nil, err
	}
	disassemble, err := NewDisassemble(name+"/disassemble", opts)
	if err != nil {
		return nil, err
	}
	return &Conway{
		stage:       newStage(name, "conway"),
		opts:        opts,
		disassemble: disassemble,
	}, nil
}

// SetLogger replaces the logger of the stage and of its inner stage.
func (c *Conway) SetLogger(logger log.Interface) {
	c.stage.SetLogger(logger)
	c.disassemble.SetLogger(logger)
}

// Run reads records until in reaches end-of-stream, writes the lines to out
// and closes out. A marker without a pair at the end is kept as is.
func (c *Conway) Run(in channel.Receiver[string], out channel.Sender[string]) error {
	r := c.begin()

	runes := channel.New[rune](c.opts.Capacity)
	errc := channel.Go[rune](runes, func() error {
		return c.disassemble.Run(in, runes)
	})

	err := c.doStream(r, runes, out)
	if err != nil {
		drain[rune](runes)
	}
	return r.end(firstError(err, <-errc))
}

func (c *Conway) doStream(r *run, in channel.Receiver[rune], out channel.Sender[string]) error {
	width := c.opts.LineLength
	line := make([]rune, 0, width)

	flush := func() error {
		err := send(r, out, padLine(line, width, c.opts.Pad))
		line = line[:0]
		return err
	}
	put := func(v rune) error {
		line = append(line, v)
		if len(line) == width {
			return flush()
		}
		return nil
	}

	for {
		v, ok := receive(r, in)
		if !ok {
			break
		}
		if v != c.opts.Marker {
			if err := put(v); err != nil {
				return err
			}
			continue
		}

		next, ok := peek(r, in)
		switch {
		case !ok:
			if err := put(c.opts.Marker); err != nil {
				return err
			}
		case next == c.opts.Marker:
			if len(line) > 0 {
				if err := flush(); err != nil {
					return err
				}
			}
			if err := put(c.opts.Collapsed); err != nil {
				return err
			}
		default:
			if err := put(c.opts.Marker); err != nil {
				return err
			}
			if err := put(next); err != nil {
				return err
			}
		}
	}

	if len(line) > 0 || c.opts.BlankTail {
		if err := flush(); err != nil {
			return err
		}
	}
	return r.close(out)
}
