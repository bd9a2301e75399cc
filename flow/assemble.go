package flow

import (
	"strings"

	"github.com/imishinist/go-csp"
	"github.com/imishinist/go-csp/channel"
)

// Assemble packs runes into lines of a fixed length.
type Assemble struct {
	stage

	lineLength int
	pad        rune
	blankTail  bool
}

var _ csp.Process[rune, string] = (*Assemble)(nil)

func NewAssemble(name string, opts Options) (*Assemble, error) {
	if err := opts.validate(name); err != nil {
		return nil, err
	}
	return &Assemble{
		stage:      newStage(name, "assemble"),
		lineLength: opts.LineLength,
		pad:        opts.Pad,
		blankTail:  opts.BlankTail,
	}, nil
}

// Run emits a line every LineLength runes. When in reaches end-of-stream the
// pending runes are emitted as a last line padded to LineLength, then out is
// closed. Nothing pending means no last line unless BlankTail is set.
func (a *Assemble) Run(in channel.Receiver[rune], out channel.Sender[string]) error {
	r := a.begin()
	return r.end(a.doStream(r, in, out))
}

func (a *Assemble) doStream(r *run, in channel.Receiver[rune], out channel.Sender[string]) error {
	line := make([]rune, 0, a.lineLength)
	for {
		c, ok := receive(r, in)
		if !ok {
			break
		}
		line = append(line, c)
		if len(line) == a.lineLength {
			if err := send(r, out, string(line)); err != nil {
				return err
			}
			line = line[:0]
		}
	}

	if len(line) > 0 || a.blankTail {
		if err := send(r, out, padLine(line, a.lineLength, a.pad)); err != nil {
			return err
		}
	}
	return r.close(out)
}

// padLine returns line extended with pad up to width runes.
func padLine(line []rune, width int, pad rune) string {
	var b strings.Builder
	b.WriteString(string(line))
	for i := len(line); i < width; i++ {
		b.WriteRune(pad)
	}
	return b.String()
}
