package capture

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSignalTimeout is returned by Wait when nothing resolved the signal in time
var ErrSignalTimeout = errors.New("signal wait timed out")

// Signal is a single-assignment value: the first Resolve wins, later ones are ignored.
type Signal[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
}

func NewSignal[T any]() *Signal[T] {
	return &Signal[T]{done: make(chan struct{})}
}

// Resolve stores v if the signal is still empty and reports whether it did
func (s *Signal[T]) Resolve(v T) bool {
	resolved := false
	s.once.Do(func() {
		s.value = v
		close(s.done)
		resolved = true
	})
	return resolved
}

func (s *Signal[T]) Resolved() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Value returns the stored value without blocking
func (s *Signal[T]) Value() (T, bool) {
	if s.Resolved() {
		return s.value, true
	}
	var zero T
	return zero, false
}

// Wait blocks until the signal resolves, timeout elapses or ctx is done
func (s *Signal[T]) Wait(ctx context.Context, timeout time.Duration) (T, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var zero T
	select {
	case <-s.done:
		return s.value, nil
	case <-timer.C:
		if v, ok := s.Value(); ok {
			return v, nil
		}
		return zero, ErrSignalTimeout
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
