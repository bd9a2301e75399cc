package flow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imishinist/go-csp/channel"
	"github.com/imishinist/go-csp/flow"
)

var modes = []flow.Mode{flow.Direct, flow.Concurrent, flow.Emulated}

func reformat(t *testing.T, mode flow.Mode, opts flow.Options, records []string) []string {
	t.Helper()
	f, err := flow.NewReformat("reformat", mode, opts)
	require.NoError(t, err)

	out := channel.New[string](0)
	done := make(chan error, 1)
	go func() {
		done <- f.Run(channel.FromSlice(records), out)
	}()
	lines := channel.ToSlice[string](out)
	require.NoError(t, <-done)
	return lines
}

func TestReformat(t *testing.T) {
	cases := []struct {
		name    string
		records []string
		width   int
		expect  []string
	}{
		{"example", []string{"hello", "world"}, 4, []string{"hell", "o wo", "rld "}},
		{"one line", []string{"ab"}, 8, []string{"ab      "}},
		{"boundary", []string{"abc"}, 2, []string{"ab", "c "}},
		{"width one", []string{"ab"}, 1, []string{"a", "b", " "}},
		{"empty", nil, 4, nil},
	}
	for _, mode := range modes {
		for _, c := range cases {
			t.Run(mode.String()+"/"+c.name, func(t *testing.T) {
				assert.Equal(t, c.expect, reformat(t, mode, options(c.width), c.records))
			})
		}
	}
}

func TestReformat_ModesAgree(t *testing.T) {
	records := []string{"the quick", "brown fox", "jumps over", "", "the lazy dog", "↑↑"}
	for _, capacity := range []int{0, 1, 16, channel.Unbounded} {
		for _, width := range []int{1, 3, 7, 11, 125} {
			for _, blankTail := range []bool{false, true} {
				opts := options(width)
				opts.Capacity = capacity
				opts.BlankTail = blankTail

				expect, err := flow.Emulate(records, opts)
				require.NoError(t, err)
				for _, mode := range modes {
					assert.Equal(t, expect, reformat(t, mode, opts, records),
						"mode=%s capacity=%d width=%d blank_tail=%v", mode, capacity, width, blankTail)
				}
			}
		}
	}
}

func TestReformat_ClosedOutput(t *testing.T) {
	for _, mode := range modes {
		t.Run(mode.String(), func(t *testing.T) {
			f, err := flow.NewReformat("reformat_closed", mode, options(2))
			require.NoError(t, err)

			out := channel.New[string](channel.Unbounded)
			require.NoError(t, out.Close())
			err = f.Run(channel.FromValues("abc", "def"), out)
			assert.ErrorIs(t, err, channel.ErrClosed)
		})
	}
}

func TestEmulate(t *testing.T) {
	lines, err := flow.Emulate([]string{"hello", "world"}, options(4))
	require.NoError(t, err)
	assert.Equal(t, []string{"hell", "o wo", "rld "}, lines)

	_, err = flow.Emulate(nil, options(-1))
	var cerr *flow.ConfigurationError
	assert.ErrorAs(t, err, &cerr)
}

func TestParseMode(t *testing.T) {
	for _, mode := range modes {
		got, err := flow.ParseMode(mode.String())
		require.NoError(t, err)
		assert.Equal(t, mode, got)
	}

	_, err := flow.ParseMode("parallel")
	var cerr *flow.ConfigurationError
	assert.ErrorAs(t, err, &cerr)
}

func TestNewReformat_InvalidMode(t *testing.T) {
	_, err := flow.NewReformat("reformat_invalid", flow.Mode(9), flow.DefaultOptions())
	var cerr *flow.ConfigurationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "mode", cerr.Fields[0].Field)
}
