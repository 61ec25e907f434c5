package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

type overlayCall struct {
	name string
	fn   func(ctx context.Context) error
}

// boundedCall waits at most timeout for fn. A call that outlives the timeout
// keeps running in the background and its result is dropped.
func boundedCall(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- fn(callCtx)
	}()

	select {
	case err := <-done:
		return err
	case <-callCtx.Done():
		return callCtx.Err()
	}
}

// runOverlayCalls executes overlay calls one at a time, in submission order,
// until ctx is cancelled. Failures are logged only.
func runOverlayCalls(ctx context.Context, calls <-chan overlayCall, timeout time.Duration, log zerolog.Logger, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return
		case call := <-calls:
			if err := boundedCall(ctx, timeout, call.fn); err != nil {
				log.Warn().Err(err).Str("call", call.name).Msg("overlay call failed")
			}
		}
	}
}
