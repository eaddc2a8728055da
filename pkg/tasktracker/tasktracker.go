// Package tasktracker is the process-wide spawn registry and shutdown
// broadcaster described in §4.7: every ad-hoc goroutine the application
// spawns outside of the Dispatcher and Scheduler's own loops still gets
// counted, wrapped in an action (for SpawnAction) or trace-linked (for
// SpawnTask), and drained during shutdown. Shutdown stops accepting new
// work, waits on a
// sync.WaitGroup with a context deadline, report a timeout rather than
// blocking forever, guarded by sync.Once so shutdown only runs once.
package tasktracker

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/JailtonJunior94/devkit-go/pkg/actionlog"
	"github.com/JailtonJunior94/devkit-go/pkg/observability"
)

// ErrClosed is returned by Spawn* once Shutdown has begun.
var ErrClosed = errors.New("tasktracker: registry is closed")

// Tracker is a process-wide registry of outstanding goroutines.
type Tracker struct {
	obs observability.Observability

	mu       sync.Mutex
	closed   bool
	wg       sync.WaitGroup
	shutdown sync.Once
}

// New builds a Tracker bound to obs for logging shutdown progress and task context.
func New(obs observability.Observability) *Tracker {
	return &Tracker{obs: obs}
}

func (t *Tracker) enter() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return false
	}
	t.wg.Add(1)
	return true
}

// SpawnAction starts body in a new goroutine inside a freshly-opened action
// named "task", inheriting the caller's action id as ref_id. It returns
// ErrClosed without spawning anything if Shutdown has already begun.
func (t *Tracker) SpawnAction(ctx context.Context, name string, body func(context.Context) error) error {
	if !t.enter() {
		return ErrClosed
	}

	refID, _ := actionlog.CurrentID(ctx)
	var ref *string
	if refID != "" {
		ref = &refID
	}

	go func() {
		defer t.wg.Done()
		_ = actionlog.Enter(context.Background(), t.obs, "task", ref, func(taskCtx context.Context) error {
			t.obs.Logger().Info(taskCtx, "context", observability.String("task", name))
			return body(taskCtx)
		})
	}()
	return nil
}

// SpawnTask starts body in a raw goroutine, carrying ctx's trace so any
// action-scoped logging inside body still lands against the enclosing
// action if there is one, but without opening its own "task" action. The
// returned channel receives body's error (or nil) exactly once.
func (t *Tracker) SpawnTask(ctx context.Context, body func(context.Context) error) <-chan error {
	result := make(chan error, 1)
	if !t.enter() {
		result <- ErrClosed
		return result
	}

	go func() {
		defer t.wg.Done()
		result <- body(ctx)
	}()
	return result
}

// Shutdown closes the registry to new spawns and waits for all outstanding
// tasks, respecting ctx's deadline. Safe to call more than once; only the
// first call does anything.
func (t *Tracker) Shutdown(ctx context.Context) error {
	var shutdownErr error
	t.shutdown.Do(func() {
		t.mu.Lock()
		t.closed = true
		t.mu.Unlock()

		t.obs.Logger().Info(ctx, "tasktracker: waiting for outstanding tasks")

		done := make(chan struct{})
		go func() {
			t.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			t.obs.Logger().Info(ctx, "tasktracker: all tasks finished")
		case <-ctx.Done():
			shutdownErr = ctx.Err()
			t.obs.Logger().Warn(ctx, "tasktracker: shutdown deadline exceeded before all tasks finished")
		}
	})
	return shutdownErr
}

// Broadcaster is a one-shot shutdown signal (§4.7): a channel closed exactly
// once, either by a caller or by an OS SIGINT/SIGTERM.
type Broadcaster struct {
	once sync.Once
	ch   chan struct{}
}

// NewBroadcaster builds an unfired Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{ch: make(chan struct{})}
}

// C returns the channel loops should select on; it closes exactly once,
// on the first call to Fire or the first received OS signal once
// ListenForSignals has been called.
func (b *Broadcaster) C() <-chan struct{} {
	return b.ch
}

// Fire closes the channel if it isn't already closed.
func (b *Broadcaster) Fire() {
	b.once.Do(func() { close(b.ch) })
}

// ListenForSignals installs SIGINT/SIGTERM handlers and fires the
// broadcast on the first one received. It returns immediately; the signal
// listener runs in its own goroutine for the lifetime of the process.
func (b *Broadcaster) ListenForSignals() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		b.Fire()
	}()
}
