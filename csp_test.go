package csp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/imishinist/go-csp/channel"
)

type double struct{}

func (double) Run(in channel.Receiver[int], out channel.Sender[int]) error {
	for {
		v, ok := in.Receive()
		if !ok {
			return out.Close()
		}
		if err := out.Send(v * 2); err != nil {
			return err
		}
	}
}

type count struct{ n int }

func (c *count) Run(out channel.Sender[int]) error {
	for i := 0; i < c.n; i++ {
		if err := out.Send(i); err != nil {
			return err
		}
	}
	return out.Close()
}

func TestProcessInterface(t *testing.T) {
	var _ Process[int, int] = double{}
	var _ Source[int] = (*count)(nil)
}

func TestStart(t *testing.T) {
	mid := channel.New[int](0)
	out := channel.New[int](0)

	srcErr := StartSource[int](&count{n: 4}, mid)
	procErr := Start[int, int](double{}, mid, out)

	assert.Equal(t, []int{0, 2, 4, 6}, channel.ToSlice[int](out))
	assert.NoError(t, <-srcErr)
	assert.NoError(t, <-procErr)

	_, open := <-procErr
	assert.False(t, open)
}
