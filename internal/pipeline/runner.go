package pipeline

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/forPelevin/clipmaker/internal/runlog"
	"github.com/forPelevin/clipmaker/internal/usecase"
)

// Runner runs at most one pipeline at a time in the background. The
// interactive side polls Drain for progress and reads Snapshot after Done.
type Runner struct {
	running atomic.Bool

	mu   sync.Mutex
	sink *runlog.Sink
	done chan struct{}
	res  usecase.Result
	ok   bool

	// exec is replaced in tests.
	exec func(context.Context, Config, *runlog.Sink) usecase.Result
}

func NewRunner() *Runner {
	done := make(chan struct{})
	close(done)
	return &Runner{done: done, exec: execute}
}

// Start begins a run and returns true. While a run is active it is a no-op
// returning false. Workspace preparation errors are returned synchronously.
func (r *Runner) Start(ctx context.Context, cfg Config) (bool, error) {
	if !r.running.CompareAndSwap(false, true) {
		return false, nil
	}
	sink, err := prepare(cfg)
	if err != nil {
		r.running.Store(false)
		return false, err
	}

	done := make(chan struct{})
	r.mu.Lock()
	r.sink, r.done, r.ok = sink, done, false
	r.res = usecase.Result{}
	r.mu.Unlock()

	go func() {
		res := r.exec(ctx, cfg, sink)
		_ = sink.Close()

		r.mu.Lock()
		r.res, r.ok = res, true
		r.mu.Unlock()
		r.running.Store(false)
		close(done)
	}()
	return true, nil
}

func (r *Runner) Running() bool { return r.running.Load() }

// Done is closed when the current run finishes. Before any run it is
// already closed.
func (r *Runner) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

// Drain returns progress lines written since the previous call. It never
// blocks the worker.
func (r *Runner) Drain() []string {
	r.mu.Lock()
	sink := r.sink
	r.mu.Unlock()
	if sink == nil {
		return nil
	}
	return sink.Drain()
}

// Snapshot returns the last finished run's result. ok is false while a run
// is active or before the first run.
func (r *Runner) Snapshot() (usecase.Result, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.res, r.ok
}
