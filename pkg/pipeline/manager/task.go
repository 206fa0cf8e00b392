package manager

import (
	"context"
	"sync"

	"github.com/askiada/go-warlock/pkg/pipeline/model"
)

// Task describes a unit of work for a scheduler. Dependencies may list the same task more than
// once.
type Task[T any] struct {
	Name         model.TaskName
	Dependencies []model.TaskName
	Run          Runnable[T]
}

// Runnable prepares a run of a task. Nothing runs before Wait is called on the returned handle.
type Runnable[T any] func(ctx context.Context) *Handle[T]

// Handle controls a single run of a task.
type Handle[T any] struct {
	once   sync.Once
	ctx    context.Context //nolint:containedctx // the handle owns the run context
	cancel context.CancelFunc
	run    func(ctx context.Context) ([]T, error)

	res []T
	err error
}

func newHandle[T any](ctx context.Context, run func(ctx context.Context) ([]T, error)) *Handle[T] {
	ctx, cancel := context.WithCancel(ctx)

	return &Handle[T]{ctx: ctx, cancel: cancel, run: run}
}

// Wait runs the task on the first call and returns its outcome to every caller.
func (h *Handle[T]) Wait() ([]T, error) {
	h.once.Do(func() {
		defer h.cancel()

		if err := h.ctx.Err(); err != nil {
			h.err = err

			return
		}

		h.res, h.err = h.run(h.ctx)
	})

	return h.res, h.err
}

// Cancel cancels the run context.
func (h *Handle[T]) Cancel() {
	h.cancel()
}
