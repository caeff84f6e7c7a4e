package goout

import (
	"context"
	"errors"
	"time"
)

// permanentError marks a failure that retrying cannot fix (e.g. HTTP 404).
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func permanent(err error) error {
	return &permanentError{err: err}
}

// abortedError marks a failure caused by the caller's context running out rather than by the remote side.
type abortedError struct {
	err error
}

func (e *abortedError) Error() string { return e.err.Error() }
func (e *abortedError) Unwrap() error { return e.err }

func aborted(err error) error {
	var a *abortedError
	if errors.As(err, &a) {
		return err
	}
	return &abortedError{err: err}
}

// retry calls fn up to attempts times, doubling the delay between calls up to max.
// It stops early on a permanent or aborted error and when ctx is done.
func retry(ctx context.Context, attempts int, initial, max time.Duration, fn func() error) error {
	if attempts <= 1 {
		return fn()
	}
	d := initial
	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			t := time.NewTimer(d)
			select {
			case <-t.C:
			case <-ctx.Done():
				t.Stop()
				return aborted(ctx.Err())
			}
			if d < max {
				d *= 2
				if d > max {
					d = max
				}
			}
		}
		if err = fn(); err == nil {
			return nil
		}
		var perm *permanentError
		var ab *abortedError
		if errors.As(err, &perm) || errors.As(err, &ab) {
			return err
		}
	}
	return err
}
