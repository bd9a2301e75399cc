package channel

import "errors"

// FromSlice returns an unbounded channel pre-loaded with values and closed.
func FromSlice[T any](values []T) *Channel[T] {
	c := New[T](Unbounded)
	for _, v := range values {
		// cannot fail: the channel is open and unbounded
		_ = c.Send(v)
	}
	_ = c.Close()
	return c
}

// FromValues is the variadic form of FromSlice.
func FromValues[T any](values ...T) *Channel[T] {
	return FromSlice(values)
}

// ToSlice receives from in until end-of-stream and returns the values in
// order. It never returns if in is never closed.
func ToSlice[T any](in Receiver[T]) []T {
	var slice []T
	for {
		v, ok := in.Receive()
		if !ok {
			return slice
		}
		slice = append(slice, v)
	}
}

// Go runs produce in a new goroutine and closes out when produce returns.
// The returned channel delivers the error of produce joined with the error
// of the close, then is closed.
func Go[T any](out Sender[T], produce func() error) <-chan error {
	errc := make(chan error, 1)

	go func() {
		defer close(errc)
		err := produce()
		errc <- errors.Join(err, out.Close())
	}()

	return errc
}
