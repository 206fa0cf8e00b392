package pipeline

import (
	"context"
	"log/slog"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/askiada/go-warlock/pkg/pipeline/model"
)

type step[T any] struct {
	name      string
	generator Generator[T]
	// kind is known for the steps registered with a stage. It is zero for the steps inserted
	// with a generator, which is only called when a run composes the pipeline.
	kind         StageKind
	dependencies map[string]struct{}
	options      stepOptions
}

func newStep[T any](name string, generator Generator[T], opts []StepOption) *step[T] {
	st := &step[T]{
		name:         name,
		generator:    generator,
		dependencies: make(map[string]struct{}),
		options:      stepOptions{concurrent: 1},
	}
	for _, opt := range opts {
		opt(&st.options)
	}

	return st
}

// pendingStep is a registration received while a run was in flight.
type pendingStep[T any] struct {
	point model.InsertionPoint
	name  string
	stage Stage[T]
	opts  []StepOption
}

func (s *step[T]) info(pipeline string, kind StageKind) *model.StepInfo {
	stepType := model.TransformStepType
	if kind == DuplexStage {
		stepType = model.DuplexStepType
	}

	deps := make([]string, 0, len(s.dependencies))
	for dep := range s.dependencies {
		deps = append(deps, dep)
	}

	sort.Strings(deps)

	return &model.StepInfo{
		Type:         stepType,
		Pipeline:     pipeline,
		Name:         s.name,
		Dependencies: deps,
		Concurrent:   s.options.concurrent,
		BufferSize:   s.options.bufferSize,
	}
}

// Pipeline is a named, ordered composition of steps bounded by a source and an optional
// destination.
type Pipeline[T any] struct {
	mu sync.Mutex

	name        string
	source      Stream[T]
	destination *Stage[T]
	depends     []string
	join        *model.Join
	phases      map[string][]string
	hooks       []model.PipelineOption
	logger      *slog.Logger

	steps   map[string]*step[T]
	order   []string
	pending []pendingStep[T]
	err     error
	running int
}

// New creates a new pipeline.
func New[T any](name string, opts ...Option[T]) (*Pipeline[T], error) {
	if name == "" {
		return nil, ErrEmptyPipelineName
	}

	pipe := &Pipeline[T]{
		name:  name,
		steps: make(map[string]*step[T]),
	}
	for _, opt := range opts {
		opt(pipe)
	}

	return pipe, nil
}

// Configure merges opts into the pipeline options.
func (p *Pipeline[T]) Configure(opts ...Option[T]) *Pipeline[T] {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (p *Pipeline[T]) Name() string {
	return p.name
}

// TaskName returns the name of the task running the pipeline.
func (p *Pipeline[T]) TaskName() model.TaskName {
	return model.PipelineTaskName(p.name)
}

// Depends returns a copy of the task names the pipeline depends on.
func (p *Pipeline[T]) Depends() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]string{}, p.depends...)
}

// Join returns the join declared by the pipeline, if any.
func (p *Pipeline[T]) Join() (model.Join, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.join == nil {
		return model.Join{}, false
	}

	return *p.join, true
}

// Order returns a copy of the step order.
func (p *Pipeline[T]) Order() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return slices.Clone(p.order)
}

// Steps describes the registered steps following the step order. Generators are not called: a
// step inserted with InsertStep is described as a transform step.
func (p *Pipeline[T]) Steps() []model.StepInfo {
	p.mu.Lock()
	defer p.mu.Unlock()

	infos := make([]model.StepInfo, 0, len(p.steps))
	seen := make(map[string]struct{}, len(p.steps))

	for _, name := range p.order {
		if _, ok := seen[name]; ok {
			continue
		}

		seen[name] = struct{}{}
		st := p.steps[name]
		infos = append(infos, *st.info(p.name, st.kind))
	}

	return infos
}

// Err returns the first error met while registering steps. The same error fails every run.
func (p *Pipeline[T]) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.err
}

// Running reports whether a run is in flight.
func (p *Pipeline[T]) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.running > 0
}

// Append adds a step to the end of the pipeline.
func (p *Pipeline[T]) Append(name string, stage Stage[T], opts ...StepOption) *Pipeline[T] {
	return p.register(model.Append(), name, stage, opts)
}

// Prepend adds a step to the beginning of the pipeline.
func (p *Pipeline[T]) Prepend(name string, stage Stage[T], opts ...StepOption) *Pipeline[T] {
	return p.register(model.Prepend(), name, stage, opts)
}

// After adds a step directly after the step dep.
func (p *Pipeline[T]) After(dep, name string, stage Stage[T], opts ...StepOption) *Pipeline[T] {
	return p.register(model.After(dep), name, stage, opts)
}

// Before adds a step directly before the step dep. dep then depends on the new step.
func (p *Pipeline[T]) Before(dep, name string, stage Stage[T], opts ...StepOption) *Pipeline[T] {
	return p.register(model.Before(dep), name, stage, opts)
}

// InsertStep registers the step produced by generator at point. A step already registered under
// name is replaced, its previous position included.
func (p *Pipeline[T]) InsertStep(point model.InsertionPoint, name string, generator Generator[T], opts ...StepOption) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.insertLocked(point, name, generator, opts, true)
}

// register adds a step, or queues it until the runs in flight end.
func (p *Pipeline[T]) register(point model.InsertionPoint, name string, stage Stage[T], opts []StepOption) *Pipeline[T] {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running > 0 {
		p.pending = append(p.pending, pendingStep[T]{point: point, name: name, stage: stage, opts: opts})

		return p
	}

	p.registerLocked(point, name, stage, opts)

	return p
}

func (p *Pipeline[T]) registerLocked(point model.InsertionPoint, name string, stage Stage[T], opts []StepOption) {
	var err error
	if stage.valid() {
		err = p.insertLocked(point, name, Static(stage), opts, false)
	} else {
		err = ErrStageMustBeSet
	}

	if err == nil {
		p.steps[name].kind = stage.Kind()

		return
	}

	if p.err == nil {
		p.err = errors.Wrapf(err, "unable to register step %q at %s", name, point)
	}
}

// insertLocked places name at point. Re-registering a name overwrites its step and, unless
// replace is set, leaves its previous order entries in place.
func (p *Pipeline[T]) insertLocked(point model.InsertionPoint, name string, generator Generator[T], opts []StepOption, replace bool) error {
	if p.running > 0 {
		return ErrPipelineRunning
	}

	if name == "" {
		return ErrEmptyStepName
	}

	if generator == nil {
		return ErrStageMustBeSet
	}

	if point.Ref == name && (point.Kind == model.BeforeKind || point.Kind == model.AfterKind) {
		return ErrStepDependsOnSelf
	}

	order := p.order
	if replace {
		order = slices.DeleteFunc(slices.Clone(order), func(entry string) bool { return entry == name })
	}

	var idx int

	switch point.Kind {
	case model.PrependKind:
		idx = 0
	case model.AppendKind:
		idx = len(order)
	case model.AfterKind, model.BeforeKind:
		idx = slices.Index(order, point.Ref)
		if idx < 0 {
			return errors.Wrapf(ErrUnknownStep, "%q", point.Ref)
		}

		if point.Kind == model.AfterKind {
			idx++
		}
	default:
		return errors.Wrapf(ErrUnknownPoint, "%q", point.Kind)
	}

	st := newStep(name, generator, opts)

	switch point.Kind {
	case model.AfterKind:
		st.dependencies[point.Ref] = struct{}{}
	case model.BeforeKind:
		p.steps[point.Ref].dependencies[name] = struct{}{}
	}

	p.steps[name] = st
	p.order = slices.Insert(order, idx, name)

	return nil
}

type snapshot[T any] struct {
	name        string
	source      Stream[T]
	destination *Stage[T]
	phases      map[string][]string
	hooks       []model.PipelineOption
	logger      *slog.Logger
	steps       []*step[T]
	err         error
}

// begin marks the pipeline as running and copies what a run reads.
func (p *Pipeline[T]) begin() *snapshot[T] {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.running++

	logger := p.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	steps := make([]*step[T], len(p.order))
	for i, name := range p.order {
		steps[i] = p.steps[name]
	}

	return &snapshot[T]{
		name:        p.name,
		source:      p.source,
		destination: p.destination,
		phases:      p.phases,
		hooks:       slices.Clone(p.hooks),
		logger:      logger,
		steps:       steps,
		err:         p.err,
	}
}

// end marks a run as over. Registrations queued during the runs are applied once the last one
// ends.
func (p *Pipeline[T]) end() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.running--
	if p.running > 0 {
		return
	}

	pending := p.pending
	p.pending = nil

	for _, ps := range pending {
		p.registerLocked(ps.point, ps.name, ps.stage, ps.opts)
	}
}

// Run composes the pipeline for phase and drains it. Hooks are told about the start of the run,
// then either about its failure or about its end. An empty phase disables phase restrictions.
func (p *Pipeline[T]) Run(ctx context.Context, phase string) ([]T, error) {
	if p == nil {
		return nil, ErrPipelineMustBeSet
	}

	run := &model.RunInfo{ID: uuid.NewString(), Pipeline: p.name, Phase: phase}
	snap := p.begin()
	defer p.end()

	logger := snap.logger.With("pipeline", p.name, "run_id", run.ID, "phase", phase)
	logger.Debug("pipeline run started", "steps", len(snap.steps))

	fail := func(err error) ([]T, error) {
		logger.Debug("pipeline run failed", "error", err)

		for _, opt := range snap.hooks {
			opt.Error(run, err)
		}

		return nil, err
	}

	for _, opt := range snap.hooks {
		err := opt.Start(run)
		if err != nil {
			return fail(errors.Wrap(err, "unable to start pipeline option"))
		}
	}

	if snap.err != nil {
		return fail(snap.err)
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	res, err := Collect(ctx, snap.compose(ctx, phase))
	if err != nil {
		return fail(err)
	}

	for _, opt := range snap.hooks {
		err := opt.Finish(run, len(res))
		if err != nil {
			return fail(errors.Wrap(err, "unable to finish pipeline option"))
		}
	}

	logger.Debug("pipeline run finished", "total", len(res))

	return res, nil
}
