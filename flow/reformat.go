package flow

import (
	"fmt"

	"github.com/apex/log"

	"github.com/imishinist/go-csp"
	"github.com/imishinist/go-csp/channel"
)

// Mode selects how Reformat connects disassembly to assembly. All modes
// produce the same lines for the same records.
type Mode int

const (
	// Direct feeds Assemble from a channel whose producer is run by
	// channel.Go, which closes it when Disassemble returns.
	Direct Mode = iota
	// Concurrent spawns Disassemble itself and closes the intermediate
	// channel explicitly when it returns.
	Concurrent
	// Emulated uses no intermediate channel, see Emulate.
	Emulated
)

func (m Mode) String() string {
	switch m {
	case Direct:
		return "direct"
	case Concurrent:
		return "concurrent"
	case Emulated:
		return "emulated"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	for _, m := range []Mode{Direct, Concurrent, Emulated} {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, &ConfigurationError{Stage: "reformat", Fields: []FieldError{{
		Field:   "mode",
		Message: fmt.Sprintf("mode must be one of [direct concurrent emulated], got %q", s),
	}}}
}

// Reformat turns records into lines of a different width.
type Reformat struct {
	stage

	mode        Mode
	opts        Options
	disassemble *Disassemble
	assemble    *Assemble
}

var _ csp.Process[string, string] = (*Reformat)(nil)

func NewReformat(name string, mode Mode, opts Options) (*Reformat, error) {
	if err := validateStruct(name, struct {
		Mode Mode `validate:"oneof=0 1 2"`
	}{mode}); err != nil {
		return nil, err
	}
	disassemble, err := NewDisassemble(name+"/disassemble", opts)
	if err != nil {
		return nil, err
	}
	assemble, err := NewAssemble(name+"/assemble", opts)
	if err != nil {
		return nil, err
	}
	return &Reformat{
		stage:       newStage(name, "reformat"),
		mode:        mode,
		opts:        opts,
		disassemble: disassemble,
		assemble:    assemble,
	}, nil
}

// SetLogger replaces the logger of the stage and of its inner stages.
func (f *Reformat) SetLogger(logger log.Interface) {
	f.stage.SetLogger(logger)
	f.disassemble.SetLogger(logger)
	f.assemble.SetLogger(logger)
}

// Run reads records until in reaches end-of-stream, writes the lines to out
// and closes out.
func (f *Reformat) Run(in channel.Receiver[string], out channel.Sender[string]) error {
	r := f.begin()
	r.logger = r.logger.WithField("mode", f.mode.String())

	var err error
	switch f.mode {
	case Direct:
		err = f.direct(in, out)
	case Concurrent:
		err = f.concurrent(in, out)
	default:
		err = f.emulated(r, in, out)
	}
	return r.end(err)
}

func (f *Reformat) direct(in channel.Receiver[string], out channel.Sender[string]) error {
	runes := channel.New[rune](f.opts.Capacity)
	errc := channel.Go[rune](runes, func() error {
		return f.disassemble.Run(in, runes)
	})

	err := f.assemble.Run(runes, out)
	if err != nil {
		drain[rune](runes)
	}
	return firstError(err, <-errc)
}

func (f *Reformat) concurrent(in channel.Receiver[string], out channel.Sender[string]) error {
	runes := channel.New[rune](f.opts.Capacity)
	errc := make(chan error, 1)
	go func() {
		err := f.disassemble.Run(in, runes)
		errc <- firstError(err, runes.Close())
	}()

	err := f.assemble.Run(runes, out)
	if err != nil {
		drain[rune](runes)
	}
	return firstError(err, <-errc)
}

func (f *Reformat) emulated(r *run, in channel.Receiver[string], out channel.Sender[string]) error {
	var records []string
	for {
		record, ok := receive(r, in)
		if !ok {
			break
		}
		records = append(records, record)
	}

	lines, err := Emulate(records, f.opts)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if err := send(r, out, line); err != nil {
			return err
		}
	}
	return r.close(out)
}
