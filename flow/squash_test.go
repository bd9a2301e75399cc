package flow_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imishinist/go-csp"
	"github.com/imishinist/go-csp/channel"
	"github.com/imishinist/go-csp/flow"
)

func squash(t *testing.T, policy flow.Policy, input string) (string, error) {
	t.Helper()
	s, err := flow.NewSquash("squash", '*', '↑', policy)
	require.NoError(t, err)

	out := channel.New[rune](channel.Unbounded)
	err = s.Run(runesOf(input), out)
	assert.False(t, out.IsOpen(), "output must be closed")
	return readString(out), err
}

func TestSquash(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		expect string
	}{
		{"pairs", "hello*to**the*world", "hello*to↑the*world"},
		{"no markers", "hello world", "hello world"},
		{"empty", "", ""},
		{"only a pair", "**", "↑"},
		{"two pairs", "****", "↑↑"},
		{"pair then single", "a***b", "a↑*b"},
	}
	for _, policy := range []flow.Policy{flow.Strict, flow.Tolerant} {
		for _, c := range cases {
			t.Run(policy.String()+"/"+c.name, func(t *testing.T) {
				got, err := squash(t, policy, c.input)
				require.NoError(t, err)
				assert.Equal(t, c.expect, got)
			})
		}
	}
}

func TestSquash_Tolerant(t *testing.T) {
	cases := []struct {
		input  string
		expect string
	}{
		{"hello**world*", "hello↑world*"},
		{"hello**world***", "hello↑world↑*"},
		{"*", "*"},
	}
	for _, c := range cases {
		t.Run(c.input, func(t *testing.T) {
			got, err := squash(t, flow.Tolerant, c.input)
			require.NoError(t, err)
			assert.Equal(t, c.expect, got)
		})
	}
}

func TestSquash_StrictTrailingMarker(t *testing.T) {
	got, err := squash(t, flow.Strict, "hello**world*")
	assert.ErrorIs(t, err, flow.ErrPrematureEndOfStream)
	assert.Equal(t, "hello↑world", got)
}

func TestSquash_TolerantWaitsForSlowProducer(t *testing.T) {
	s, err := flow.NewSquash("squash_slow", '*', '↑', flow.Tolerant)
	require.NoError(t, err)

	in := channel.New[rune](channel.Unbounded)
	out := channel.New[rune](channel.Unbounded)
	errc := csp.Start[rune, rune](s, in, out)

	require.NoError(t, in.Send('a'))
	require.NoError(t, in.Send('*'))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, in.Send('*'))
	require.NoError(t, in.Close())

	assert.Equal(t, "a↑", readString(out))
	assert.NoError(t, <-errc)
}

func TestSquash_Generic(t *testing.T) {
	s, err := flow.NewSquash("squash_ints", 0, -1, flow.Strict)
	require.NoError(t, err)

	out := channel.New[int](channel.Unbounded)
	require.NoError(t, s.Run(channel.FromValues(1, 0, 0, 2, 0, 3), out))
	assert.Equal(t, []int{1, -1, 2, 0, 3}, channel.ToSlice[int](out))
}

func TestNewSquash_InvalidPolicy(t *testing.T) {
	_, err := flow.NewSquash("squash_invalid", '*', '↑', flow.Policy(7))

	var cerr *flow.ConfigurationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "squash_invalid", cerr.Stage)
	require.Len(t, cerr.Fields, 1)
	assert.Equal(t, "policy", cerr.Fields[0].Field)
}
