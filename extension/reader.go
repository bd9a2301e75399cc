package extension

import (
	"bufio"
	"io"

	"github.com/pkg/errors"

	"github.com/imishinist/go-csp"
	"github.com/imishinist/go-csp/channel"
)

// ReaderSource emits every line of a reader as a record.
type ReaderSource struct {
	r io.Reader
}

var _ csp.Source[string] = (*ReaderSource)(nil)

// MaxRecordSize is the longest line ReaderSource accepts. Run fails on a
// longer one.
const MaxRecordSize = 16 << 20

// NewReaderSource reads records of up to MaxRecordSize bytes from r.
func NewReaderSource(r io.Reader) *ReaderSource {
	return &ReaderSource{r: r}
}

// Run sends the lines without their line terminators and closes out at EOF.
// On a read error out is still closed so that downstream stages terminate.
func (rs *ReaderSource) Run(out channel.Sender[string]) error {
	scanner := bufio.NewScanner(rs.r)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), MaxRecordSize)
	for scanner.Scan() {
		if err := out.Send(scanner.Text()); err != nil {
			return errors.Wrap(err, "reader source: send")
		}
	}

	err := scanner.Err()
	if cerr := out.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return errors.Wrap(err, "reader source")
}

// RuneSource emits the characters of a reader, skipping line terminators.
type RuneSource struct {
	r io.Reader
}

var _ csp.Source[rune] = (*RuneSource)(nil)

func NewRuneSource(r io.Reader) *RuneSource {
	return &RuneSource{r: r}
}

// Run sends every rune except '\n' and '\r' and closes out at EOF.
func (rs *RuneSource) Run(out channel.Sender[rune]) error {
	br := bufio.NewReader(rs.r)
	var err error
	for {
		var c rune
		c, _, err = br.ReadRune()
		if err != nil {
			break
		}
		if c == '\n' || c == '\r' {
			continue
		}
		if err := out.Send(c); err != nil {
			return errors.Wrap(err, "rune source: send")
		}
	}
	if errors.Is(err, io.EOF) {
		err = nil
	}

	if cerr := out.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return errors.Wrap(err, "rune source")
}
