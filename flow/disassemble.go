package flow

import (
	"github.com/imishinist/go-csp"
	"github.com/imishinist/go-csp/channel"
)

// Disassemble splits records into runes, emitting the separator after each
// record.
type Disassemble struct {
	stage

	separator rune
}

var _ csp.Process[string, rune] = (*Disassemble)(nil)

func NewDisassemble(name string, opts Options) (*Disassemble, error) {
	if err := opts.validate(name); err != nil {
		return nil, err
	}
	return &Disassemble{
		stage:     newStage(name, "disassemble"),
		separator: opts.Separator,
	}, nil
}

// Run returns once in reaches end-of-stream. It does not close out: the
// owner of out does, see channel.Go.
func (d *Disassemble) Run(in channel.Receiver[string], out channel.Sender[rune]) error {
	r := d.begin()
	return r.end(d.doStream(r, in, out))
}

func (d *Disassemble) doStream(r *run, in channel.Receiver[string], out channel.Sender[rune]) error {
	for {
		record, ok := receive(r, in)
		if !ok {
			return nil
		}
		for _, c := range record {
			if err := send(r, out, c); err != nil {
				return err
			}
		}
		if err := send(r, out, d.separator); err != nil {
			return err
		}
	}
}
