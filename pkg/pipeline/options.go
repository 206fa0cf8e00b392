package pipeline

import (
	"log/slog"

	"github.com/askiada/go-warlock/pkg/pipeline/model"
)

// Option configures a pipeline. Options are applied by New and merged by Configure.
type Option[T any] func(p *Pipeline[T])

// WithSource sets the stream every run starts from.
func WithSource[T any](source Stream[T]) Option[T] {
	return func(p *Pipeline[T]) {
		p.source = source
	}
}

// WithDestination sets the stage run after every step.
func WithDestination[T any](destination Stage[T]) Option[T] {
	return func(p *Pipeline[T]) {
		p.destination = &destination
	}
}

// WithDepends replaces the task names the pipeline task depends on.
func WithDepends[T any](depends ...string) Option[T] {
	return func(p *Pipeline[T]) {
		p.depends = append([]string{}, depends...)
	}
}

// WithJoin declares that the collected output of the pipeline is spliced into another one.
func WithJoin[T any](join model.Join) Option[T] {
	return func(p *Pipeline[T]) {
		p.join = &join
	}
}

// WithPhases merges phase restrictions: the steps listed under a phase are skipped when the
// pipeline runs in any other phase.
func WithPhases[T any](phases map[string][]string) Option[T] {
	return func(p *Pipeline[T]) {
		if p.phases == nil {
			p.phases = make(map[string][]string, len(phases))
		}

		for phase, steps := range phases {
			p.phases[phase] = append([]string{}, steps...)
		}
	}
}

// WithHooks appends hooks notified during every run.
func WithHooks[T any](hooks ...model.PipelineOption) Option[T] {
	return func(p *Pipeline[T]) {
		p.hooks = append(p.hooks, hooks...)
	}
}

func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(p *Pipeline[T]) {
		p.logger = logger
	}
}

// StepOption configures a step.
type StepOption func(s *stepOptions)

type stepOptions struct {
	concurrent int
	bufferSize int
}

// StepConcurrency runs a duplex step with concurrent workers sharing its input. The order of
// its output is not preserved when concurrent is greater than 1.
func StepConcurrency(concurrent int) StepOption {
	return func(s *stepOptions) {
		s.concurrent = concurrent
	}
}

// StepBufferSize sets the capacity of the channels around a duplex step.
func StepBufferSize(bufferSize int) StepOption {
	return func(s *stepOptions) {
		s.bufferSize = bufferSize
	}
}
