package sync_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imishinist/go-csp/sync"
)

var (
	BlockTimeout = 100 * time.Millisecond
)

func isBlocked(done chan struct{}) bool {
	select {
	case <-done:
		return false
	case <-time.After(BlockTimeout):
		return true
	}
}

func TestDynamicSemaphore(t *testing.T) {
	ctx := context.Background()

	t.Run("has capacity", func(t *testing.T) {
		sem := sync.NewDynamicSemaphore(3)
		done := make(chan struct{})
		go func() {
			_ = sem.Acquire(ctx)
			done <- struct{}{}
		}()
		if isBlocked(done) {
			t.Errorf("Acquire() should not be blocked when there is capacity")
		}
		assert.Equal(t, uint(3), sem.Capacity())
		assert.Equal(t, uint(1), sem.Count())
	})

	t.Run("no capacity", func(t *testing.T) {
		sem := sync.NewDynamicSemaphore(2)
		for i := 0; i < 2; i++ {
			require.NoError(t, sem.Acquire(ctx))
		}
		done := make(chan struct{})
		go func() {
			_ = sem.Acquire(ctx)
			done <- struct{}{}
		}()
		if !isBlocked(done) {
			t.Fatalf("Acquire() should be blocked when there is no capacity")
		}

		sem.Release()
		if isBlocked(done) {
			t.Errorf("Acquire() should return after Release()")
		}
		assert.Equal(t, uint(2), sem.Count())
	})

	t.Run("Set 1 to 2 (increase)", func(t *testing.T) {
		sem := sync.NewDynamicSemaphore(1)
		require.NoError(t, sem.Acquire(ctx))
		done := make(chan struct{})
		go func() {
			_ = sem.Acquire(ctx)
			done <- struct{}{}
		}()
		if !isBlocked(done) {
			t.Fatalf("Acquire() should be blocked when there is no capacity")
		}

		sem.Set(2)
		if isBlocked(done) {
			t.Errorf("Acquire() should return after the capacity grew")
		}
		assert.Equal(t, uint(2), sem.Count())
	})

	t.Run("context cancelled", func(t *testing.T) {
		sem := sync.NewDynamicSemaphore(0)
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan struct{})
		var err error
		go func() {
			err = sem.Acquire(ctx)
			done <- struct{}{}
		}()
		if !isBlocked(done) {
			t.Fatalf("Acquire() should be blocked with zero capacity")
		}

		cancel()
		if isBlocked(done) {
			t.Fatalf("Acquire() should return once the context is cancelled")
		}
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, uint(0), sem.Count())
	})
}
