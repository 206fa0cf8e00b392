package pipeline

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/askiada/go-warlock/pkg/pipeline/model"
)

func concurrentDuplex[T any](ctx context.Context, info *model.StepInfo, fn DuplexFunc[T], input <-chan T, output chan<- T) error {
	errGrp, dCtx := errgroup.WithContext(ctx)
	errGrp.SetLimit(info.Concurrent)
	// starts many workers concurrently sharing the same channels
	// each worker stops as soon as an error happens
	for goIdx := 0; goIdx < info.Concurrent; goIdx++ {
		errGrp.Go(func() error {
			return errors.Wrapf(fn(dCtx, input, output), "go routine %d", goIdx)
		})
	}

	return errGrp.Wait()
}

func runDuplex[T any](ctx context.Context, info *model.StepInfo, fn DuplexFunc[T], input <-chan T, output chan<- T) error {
	if info.Concurrent <= 1 {
		return fn(ctx, input, output)
	}

	return concurrentDuplex(ctx, info, fn, input, output)
}

// attach pipes upstream into a duplex processor and exposes the processor output as a stream.
//
// The upstream is pulled by its own goroutine. Cancelling the stage context stops that goroutine
// from pulling, which halts the previous stage.
func attach[T any](ctx context.Context, info *model.StepInfo, upstream Stream[T], fn DuplexFunc[T]) Stream[T] {
	return func(yield func(T, error) bool) {
		var zero T

		stageCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		input := make(chan T, info.BufferSize)
		output := make(chan T, info.BufferSize)
		upErrC := make(chan error, 1)
		errC := make(chan error, 1)

		go func() {
			defer func() {
				close(input)
				close(upErrC)
			}()

			for item, err := range upstream {
				if err != nil {
					upErrC <- err

					return
				}

				select {
				case <-stageCtx.Done():
					return
				case input <- item:
				}
			}
		}()

		go func() {
			defer func() {
				close(output)
				close(errC)
			}()

			err := runDuplex(stageCtx, info, fn, input, output)
			if err != nil {
				errC <- err
				cancel()
			}
		}()

		for item := range output {
			if !yield(item, nil) {
				return
			}
		}

		if err := <-errC; err != nil {
			yield(zero, err)

			return
		}

		// the processor may return before reading all of its input
		cancel()

		if err := <-upErrC; err != nil {
			yield(zero, err)
		}
	}
}
