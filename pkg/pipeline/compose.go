package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-warlock/pkg/pipeline/model"
)

const (
	sourceStepName      = "source"
	destinationStepName = "destination"
)

// suppressed lists the steps restricted to a phase other than phase. An empty phase restricts
// nothing.
func suppressed(phases map[string][]string, phase string) map[string]struct{} {
	ignore := make(map[string]struct{})
	if phase == "" {
		return ignore
	}

	for name, steps := range phases {
		if name == phase {
			continue
		}

		for _, st := range steps {
			ignore[st] = struct{}{}
		}
	}

	return ignore
}

type composer[T any] struct {
	ctx      context.Context //nolint:containedctx // a composition lives for one run only
	pipeline string
	hooks    []model.PipelineOption
	prev     *model.StepInfo
	current  Stream[T]
}

// compose chains the source, the steps left by the phase restrictions and the destination into
// a single stream.
func (s *snapshot[T]) compose(ctx context.Context, phase string) Stream[T] {
	if s.source == nil {
		return Reject[T](ErrMissingSource)
	}

	c := &composer[T]{ctx: ctx, pipeline: s.name, hooks: s.hooks}

	err := c.addSource(s.source)
	if err != nil {
		return Reject[T](err)
	}

	ignore := suppressed(s.phases, phase)

	for _, st := range s.steps {
		if _, ok := ignore[st.name]; ok {
			s.logger.Debug("step skipped", "pipeline", s.name, "step", st.name, "phase", phase)

			continue
		}

		stage := st.generator()

		err := c.add(st.info(s.name, stage.Kind()), stage)
		if err != nil {
			return Reject[T](err)
		}
	}

	if s.destination != nil {
		info := &model.StepInfo{
			Type:       model.DestinationStepType,
			Pipeline:   s.name,
			Name:       destinationStepName,
			Concurrent: 1,
		}

		err := c.add(info, *s.destination)
		if err != nil {
			return Reject[T](err)
		}
	}

	return c.current
}

func (c *composer[T]) prepare(info *model.StepInfo) error {
	for _, opt := range c.hooks {
		err := opt.PrepareStep(c.prev, info)
		if err != nil {
			return attribute(c.pipeline, info.Name, errors.Wrap(err, "unable to run prepare step function"))
		}
	}

	return nil
}

func (c *composer[T]) addSource(source Stream[T]) error {
	info := &model.StepInfo{Type: model.SourceStepType, Pipeline: c.pipeline, Name: sourceStepName, Concurrent: 1}

	err := c.prepare(info)
	if err != nil {
		return err
	}

	c.current = contain(c.pipeline, info, c.observe(nil, info, source))
	c.prev = info

	return nil
}

func (c *composer[T]) add(info *model.StepInfo, stage Stage[T]) error {
	if !stage.valid() {
		return attribute(c.pipeline, info.Name, ErrStageMustBeSet)
	}

	err := c.prepare(info)
	if err != nil {
		return err
	}

	var out Stream[T]

	switch stage.kind {
	case TransformStage:
		out = stage.transform(c.current)
		if out == nil {
			return attribute(c.pipeline, info.Name, errors.Wrap(ErrStageMustBeSet, "transform returned no stream"))
		}
	case DuplexStage:
		out = attach(c.ctx, info, c.current, stage.duplex)
	}

	c.current = contain(c.pipeline, info, c.observe(c.prev, info, out))
	c.prev = info

	return nil
}

// observe reports the timings of every artifact emitted by a stage to the hooks. The iteration
// duration is the time elapsed since the previous artifact, the computation duration the time
// spent producing this one after it was requested.
func (c *composer[T]) observe(parent, info *model.StepInfo, in Stream[T]) Stream[T] {
	if len(c.hooks) == 0 {
		return in
	}

	return func(yield func(T, error) bool) {
		var zero T

		last := time.Now()
		requested := last

		for item, err := range in {
			if err != nil {
				yield(item, err)

				return
			}

			now := time.Now()
			for _, opt := range c.hooks {
				hookErr := opt.OnStepOutput(parent, info, now.Sub(last), now.Sub(requested))
				if hookErr != nil {
					yield(zero, errors.Wrap(hookErr, "unable to run on step output function"))

					return
				}
			}

			last = now

			if !yield(item, nil) {
				return
			}

			requested = time.Now()
		}
	}
}

// contain attributes the first error emitted by a stage and ends the stream with it. Ending the
// stream stops the pull on the previous stages.
func contain[T any](pipeline string, info *model.StepInfo, in Stream[T]) Stream[T] {
	return func(yield func(T, error) bool) {
		for item, err := range in {
			if err != nil {
				yield(item, attribute(pipeline, info.Name, err))

				return
			}

			if !yield(item, nil) {
				return
			}
		}
	}
}
