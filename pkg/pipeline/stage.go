package pipeline

import (
	"context"
)

// StageKind tells how a stage is attached to the chain built so far.
type StageKind int

const (
	// TransformStage stages are functions over the lazily pulled stream.
	TransformStage StageKind = iota + 1
	// DuplexStage stages are push based processors reading from and writing to channels.
	DuplexStage
)

func (k StageKind) String() string {
	switch k {
	case TransformStage:
		return "transform"
	case DuplexStage:
		return "duplex"
	default:
		return "unknown"
	}
}

// TransformFunc maps the stream produced by the previous stages to a new stream.
type TransformFunc[T any] func(in Stream[T]) Stream[T]

// DuplexFunc reads artifacts from in and pushes results to out until in is closed. It must not
// close out and must return once ctx is done. A returned error stops the stage and halts its
// predecessor.
type DuplexFunc[T any] func(ctx context.Context, in <-chan T, out chan<- T) error

// Stage is a processor of one of the two stage kinds.
type Stage[T any] struct {
	kind      StageKind
	transform TransformFunc[T]
	duplex    DuplexFunc[T]
}

// Transform wraps a function over streams into a stage.
func Transform[T any](fn TransformFunc[T]) Stage[T] {
	return Stage[T]{kind: TransformStage, transform: fn}
}

// Duplex wraps a push based processor into a stage.
func Duplex[T any](fn DuplexFunc[T]) Stage[T] {
	return Stage[T]{kind: DuplexStage, duplex: fn}
}

func (s Stage[T]) Kind() StageKind {
	return s.kind
}

func (s Stage[T]) valid() bool {
	switch s.kind {
	case TransformStage:
		return s.transform != nil
	case DuplexStage:
		return s.duplex != nil
	default:
		return false
	}
}

// Generator produces the stage of a step each time the pipeline is composed.
type Generator[T any] func() Stage[T]

// Static returns a generator always producing stage.
func Static[T any](stage Stage[T]) Generator[T] {
	return func() Stage[T] {
		return stage
	}
}

// Map returns a transform stage applying fn to every artifact.
func Map[T any](fn func(T) (T, error)) Stage[T] {
	return Transform(func(in Stream[T]) Stream[T] {
		return func(yield func(T, error) bool) {
			var zero T

			for item, err := range in {
				if err != nil {
					yield(zero, err)

					return
				}

				out, err := fn(item)
				if err != nil {
					yield(zero, err)

					return
				}

				if !yield(out, nil) {
					return
				}
			}
		}
	})
}

// Filter returns a transform stage dropping artifacts for which keep returns false.
func Filter[T any](keep func(T) bool) Stage[T] {
	return Transform(func(in Stream[T]) Stream[T] {
		return func(yield func(T, error) bool) {
			for item, err := range in {
				if err != nil {
					yield(item, err)

					return
				}

				if !keep(item) {
					continue
				}

				if !yield(item, nil) {
					return
				}
			}
		}
	})
}

// Concat returns a transform stage emitting every artifact of the previous stages followed by
// the artifacts of extra.
func Concat[T any](extra Stream[T]) Stage[T] {
	return Transform(func(in Stream[T]) Stream[T] {
		return func(yield func(T, error) bool) {
			for item, err := range in {
				if !yield(item, err) || err != nil {
					return
				}
			}

			for item, err := range extra {
				if !yield(item, err) || err != nil {
					return
				}
			}
		}
	})
}

// DuplexMap returns a duplex stage applying fn to every artifact pushed to it.
func DuplexMap[T any](fn func(ctx context.Context, input T) (T, error)) Stage[T] {
	return Duplex(func(ctx context.Context, input <-chan T, output chan<- T) error {
	outer:
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case in, ok := <-input:
				if !ok {
					break outer
				}

				out, err := fn(ctx, in)
				if err != nil {
					return err
				}

				// we check the context again to make sure a halted stage stops pushing
				select {
				case <-ctx.Done():
					return ctx.Err()
				case output <- out:
				}
			}
		}

		return nil
	})
}
