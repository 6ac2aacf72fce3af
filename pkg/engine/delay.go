package engine

import (
	"context"
	"time"
)

// Delay is waited on between accepting a selection and resolving it.
// Front-ends use it to show a transition; headless callers use NoDelay.
type Delay interface {
	Wait(ctx context.Context) error
}

// DelayFunc adapts a function to the Delay interface.
type DelayFunc func(ctx context.Context) error

// Wait calls f.
func (f DelayFunc) Wait(ctx context.Context) error {
	return f(ctx)
}

// NoDelay resolves selections immediately.
var NoDelay Delay = DelayFunc(func(context.Context) error { return nil })

// FixedDelay waits for d or until ctx is done.
func FixedDelay(d time.Duration) Delay {
	if d <= 0 {
		return NoDelay
	}
	return DelayFunc(func(ctx context.Context) error {
		timer := time.NewTimer(d)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		}
	})
}
