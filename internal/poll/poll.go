// Package poll provides a cancellable fixed-interval task runner. Background
// work tied to authentication state (token refresh, notification counts) runs
// through a Runner so that it has an explicit start/stop lifecycle instead of
// a fire-and-forget timer.
package poll

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Runner executes a task on a fixed period until stopped. A Runner may be
// started and stopped repeatedly; at most one loop runs at a time.
type Runner struct {
	log zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Runner that logs through the given logger.
func New(log zerolog.Logger) *Runner {
	return &Runner{log: log}
}

// Start launches the loop. task runs once per interval; the context passed to
// it is cancelled when the Runner stops. Starting an already-running Runner
// is a no-op.
func (r *Runner) Start(interval time.Duration, task func(ctx context.Context)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done

	r.log.Debug().Dur("interval", interval).Msg("poll loop started")

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				task(ctx)
			}
		}
	}()
}

// Cancel stops scheduling further runs without waiting for an in-flight run
// to return. Safe to call from inside the task itself; a task that decides
// to shut its own loop down must use Cancel, not Stop.
func (r *Runner) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel == nil {
		return
	}
	r.cancel()
	r.cancel = nil
	r.log.Debug().Msg("poll loop cancelled")
}

// Stop cancels the loop and waits for any in-flight run to return. Idempotent
// and safe to call on a Runner that was never started.
func (r *Runner) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	done := r.done
	r.done = nil
	r.mu.Unlock()

	if done == nil {
		return
	}
	<-done
	r.log.Debug().Msg("poll loop stopped")
}

// Running reports whether the loop is currently active.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}
