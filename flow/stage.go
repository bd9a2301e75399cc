package flow

import (
	"github.com/apex/log"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/imishinist/go-csp/channel"
)

// stage holds what every process of this package shares: its name, type
// label and logger.
type stage struct {
	name   string
	typ    string
	logger log.Interface
}

func newStage(name, typ string) stage {
	WorkersGauge.WithLabelValues(name, typ).Set(0)
	return stage{
		name:   name,
		typ:    typ,
		logger: log.WithFields(log.Fields{"name": name, "type": typ}),
	}
}

// Name returns the name the stage was created with.
func (s *stage) Name() string {
	return s.name
}

// SetLogger replaces the logger, which defaults to the apex/log package logger.
func (s *stage) SetLogger(logger log.Interface) {
	s.logger = logger.WithFields(log.Fields{"name": s.name, "type": s.typ})
}

// run tracks a single invocation of a stage's Run.
type run struct {
	stage  *stage
	logger log.Interface

	in  prometheus.Counter
	out prometheus.Counter

	received int
	sent     int
}

func (s *stage) begin() *run {
	WorkersGauge.WithLabelValues(s.name, s.typ).Add(1)
	r := &run{
		stage:  s,
		logger: s.logger.WithField("run_id", uuid.NewString()),
		in:     ElementsCounter.WithLabelValues(s.name, s.typ, "in"),
		out:    ElementsCounter.WithLabelValues(s.name, s.typ, "out"),
	}
	r.logger.Debug("started")
	return r
}

func (r *run) end(err error) error {
	WorkersGauge.WithLabelValues(r.stage.name, r.stage.typ).Sub(1)
	entry := r.logger.WithFields(log.Fields{"received": r.received, "sent": r.sent})
	if err != nil {
		entry.WithError(err).Error("failed")
		return err
	}
	entry.Debug("finished")
	return nil
}

func (r *run) wrap(err error, op string) error {
	return errors.Wrapf(err, "%s %q: %s", r.stage.typ, r.stage.name, op)
}

func (r *run) close(out interface{ Close() error }) error {
	if err := out.Close(); err != nil {
		return r.wrap(err, "close output")
	}
	return nil
}

func receive[T any](r *run, in channel.Receiver[T]) (T, bool) {
	v, ok := in.Receive()
	if ok {
		r.received++
		r.in.Inc()
	}
	return v, ok
}

func tryReceive[T any](r *run, in channel.Receiver[T]) (T, channel.Status) {
	v, status := in.TryReceive()
	if status == channel.Received {
		r.received++
		r.in.Inc()
	}
	return v, status
}

func send[T any](r *run, out channel.Sender[T], v T) error {
	if err := out.Send(v); err != nil {
		return r.wrap(err, "send")
	}
	r.sent++
	r.out.Inc()
	return nil
}

// drain discards the rest of in so that a producer blocked on it can finish.
func drain[T any](in channel.Receiver[T]) {
	for {
		if _, ok := in.Receive(); !ok {
			return
		}
	}
}

// firstError returns the first non-nil error.
func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
