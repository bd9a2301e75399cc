package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"sync"

	"github.com/apex/log"
	"github.com/google/uuid"

	ssync "github.com/imishinist/go-csp/sync"
)

// process runs j over every file, at most Workers.Parallelism at once, and
// writes the outputs in argument order. Without files it reads stdin.
func (a *app) process(ctx context.Context, files []string, j job) error {
	if len(files) == 0 {
		return j(a.stdin, a.stdout)
	}

	sem := ssync.NewDynamicSemaphore(a.cfg.Workers.Parallelism)
	outputs := make([]bytes.Buffer, len(files))
	errs := make([]error, len(files))

	wg := new(sync.WaitGroup)
	for i, name := range files {
		if err := sem.Acquire(ctx); err != nil {
			errs[i] = err
			break
		}
		wg.Add(1)
		go func(i int, name string) {
			defer func() {
				wg.Done()
				sem.Release()
			}()

			logger := log.WithFields(log.Fields{
				"file":     name,
				"job_id":   uuid.NewString(),
				"running":  sem.Count(),
				"capacity": sem.Capacity(),
			})
			logger.Debug("processing")
			f, err := os.Open(name)
			if err != nil {
				errs[i] = err
				return
			}
			defer f.Close()

			if errs[i] = j(f, &outputs[i]); errs[i] != nil {
				logger.WithError(errs[i]).Error("failed")
			}
		}(i, name)
	}
	wg.Wait()

	for i := range outputs {
		if _, err := outputs[i].WriteTo(a.stdout); err != nil {
			return err
		}
	}
	return errors.Join(errs...)
}
