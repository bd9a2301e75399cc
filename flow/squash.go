package flow

import (
	"github.com/imishinist/go-csp"
	"github.com/imishinist/go-csp/channel"
)

// Policy decides what Squash does with a marker that is the last value of
// the stream.
type Policy int

const (
	// Strict fails with ErrPrematureEndOfStream.
	Strict Policy = iota
	// Tolerant forwards the lone marker unchanged.
	Tolerant
)

func (p Policy) String() string {
	switch p {
	case Strict:
		return "strict"
	case Tolerant:
		return "tolerant"
	default:
		return "unknown"
	}
}

type squashConfig[T comparable] struct {
	Marker    T
	Collapsed T
	Policy    Policy `validate:"oneof=0 1"`
}

// Squash replaces every adjacent pair of markers with a single collapsed value.
type Squash[T comparable] struct {
	stage

	marker    T
	collapsed T
	policy    Policy
}

var _ csp.Process[rune, rune] = (*Squash[rune])(nil)

func NewSquash[T comparable](name string, marker, collapsed T, policy Policy) (*Squash[T], error) {
	if err := validateStruct(name, squashConfig[T]{Marker: marker, Collapsed: collapsed, Policy: policy}); err != nil {
		return nil, err
	}
	return &Squash[T]{
		stage:     newStage(name, "squash"),
		marker:    marker,
		collapsed: collapsed,
		policy:    policy,
	}, nil
}

// Run collapses marker pairs from in into out and closes out once in reaches
// end-of-stream. With the Strict policy a trailing lone marker closes out and
// returns ErrPrematureEndOfStream.
func (s *Squash[T]) Run(in channel.Receiver[T], out channel.Sender[T]) error {
	r := s.begin()
	return r.end(s.doStream(r, in, out))
}

func (s *Squash[T]) doStream(r *run, in channel.Receiver[T], out channel.Sender[T]) error {
	for {
		v, ok := receive(r, in)
		if !ok {
			return r.close(out)
		}
		if v != s.marker {
			if err := send(r, out, v); err != nil {
				return err
			}
			continue
		}

		next, ok := s.second(r, in)
		if !ok {
			if s.policy == Strict {
				if err := r.close(out); err != nil {
					return err
				}
				return r.wrap(ErrPrematureEndOfStream, "marker without pair")
			}
			if err := send(r, out, s.marker); err != nil {
				return err
			}
			return r.close(out)
		}

		if next == s.marker {
			if err := send(r, out, s.collapsed); err != nil {
				return err
			}
			continue
		}
		if err := send(r, out, s.marker); err != nil {
			return err
		}
		if err := send(r, out, next); err != nil {
			return err
		}
	}
}

// second reads the value following a marker.
func (s *Squash[T]) second(r *run, in channel.Receiver[T]) (T, bool) {
	if s.policy == Strict {
		return receive(r, in)
	}
	return peek(r, in)
}

// peek takes the next value without ever treating an empty open channel as
// the end of the stream: it only reports false once in is closed and empty.
func peek[T any](r *run, in channel.Receiver[T]) (T, bool) {
	v, status := tryReceive(r, in)
	switch status {
	case channel.Received:
		return v, true
	case channel.Closed:
		return v, false
	default:
		return receive(r, in)
	}
}
