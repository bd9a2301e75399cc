package sync

import (
	"context"
	"sync"
)

// DynamicSemaphore bounds the number of input files processed at once.
// Set changes the bound for later Acquires.
type DynamicSemaphore struct {
	capacity uint
	count    uint

	mu   sync.RWMutex
	cond *sync.Cond
}

// NewDynamicSemaphore creates a new DynamicSemaphore with the specified initial size.
func NewDynamicSemaphore(initialCapacity uint) *DynamicSemaphore {
	ds := &DynamicSemaphore{
		capacity: initialCapacity,
	}
	ds.cond = sync.NewCond(&ds.mu)
	return ds
}

// Acquire blocks until a slot is free or ctx is done.
func (ds *DynamicSemaphore) Acquire(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		ds.mu.Lock()
		defer ds.mu.Unlock()
		ds.cond.Broadcast()
	})
	defer stop()

	ds.mu.Lock()
	defer ds.mu.Unlock()

	for ds.count >= ds.capacity {
		if err := ctx.Err(); err != nil {
			return err
		}
		ds.cond.Wait()
	}
	ds.count++
	return nil
}

// Release frees a slot taken by Acquire.
func (ds *DynamicSemaphore) Release() {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.count > 0 {
		ds.count--
		ds.cond.Broadcast()
	}
}

// Set changes the capacity. Lowering it below Count only delays new Acquires.
func (ds *DynamicSemaphore) Set(capacity uint) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	ds.capacity = capacity
	ds.cond.Broadcast()
}

func (ds *DynamicSemaphore) Capacity() uint {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	return ds.capacity
}

func (ds *DynamicSemaphore) Count() uint {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	return ds.count
}
