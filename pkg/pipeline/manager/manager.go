package manager

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"

	"github.com/askiada/go-warlock/internal/store"
	"github.com/askiada/go-warlock/pkg/pipeline"
	"github.com/askiada/go-warlock/pkg/pipeline/model"
)

// Manager is a registry of pipelines addressed by name.
type Manager[T any] struct {
	mu        sync.RWMutex
	pipelines map[string]*pipeline.Pipeline[T]
	names     []string
	phase     string
	logger    *slog.Logger
	resolver  *joinResolver[T]
}

type Option[T any] func(m *Manager[T])

// WithPhase sets the phase every pipeline runs for.
func WithPhase[T any](phase string) Option[T] {
	return func(m *Manager[T]) {
		m.phase = phase
	}
}

func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(m *Manager[T]) {
		m.logger = logger
	}
}

func New[T any](opts ...Option[T]) *Manager[T] {
	m := &Manager[T]{
		pipelines: make(map[string]*pipeline.Pipeline[T]),
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.resolver = &joinResolver[T]{logger: m.logger}

	return m
}

// Add registers pipe under its name. A pipeline already registered under that name is replaced
// and keeps its position.
func (m *Manager[T]) Add(pipe *pipeline.Pipeline[T]) error {
	if pipe == nil {
		return pipeline.ErrPipelineMustBeSet
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.pipelines[pipe.Name()]; !ok {
		m.names = append(m.names, pipe.Name())
	}

	m.pipelines[pipe.Name()] = pipe

	return nil
}

// Create creates a pipeline and registers it.
func (m *Manager[T]) Create(name string, opts ...pipeline.Option[T]) (*pipeline.Pipeline[T], error) {
	pipe, err := pipeline.New(name, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to create pipeline %q", name)
	}

	err = m.Add(pipe)
	if err != nil {
		return nil, err
	}

	return pipe, nil
}

func (m *Manager[T]) Get(name string) (*pipeline.Pipeline[T], bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pipe, ok := m.pipelines[name]

	return pipe, ok
}

// Remove unregisters the pipeline called name and reports whether it was registered.
func (m *Manager[T]) Remove(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.pipelines[name]; !ok {
		return false
	}

	delete(m.pipelines, name)
	m.names = slices.DeleteFunc(m.names, func(n string) bool { return n == name })

	return true
}

// Names returns the pipeline names in registration order.
func (m *Manager[T]) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Clone(m.names)
}

// SetPhase sets the phase captured by the next call to Tasks.
func (m *Manager[T]) SetPhase(phase string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.phase = phase
}

func (m *Manager[T]) Phase() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.phase
}

func (m *Manager[T]) ordered() []*pipeline.Pipeline[T] {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pipes := make([]*pipeline.Pipeline[T], 0, len(m.names))
	for _, name := range m.names {
		pipes = append(pipes, m.pipelines[name])
	}

	return pipes
}

func (m *Manager[T]) inserter(name string) (stepInserter[T], bool) {
	pipe, ok := m.Get(name)
	if !ok {
		return nil, false
	}

	return pipe, true
}

// Validate reports the joins that would fail once their pipeline has run.
func (m *Manager[T]) Validate() []error {
	var errs []error

	for _, pipe := range m.ordered() {
		join, ok := pipe.Join()
		if !ok {
			continue
		}

		if _, ok := m.Get(join.Target); !ok {
			errs = append(errs, errors.Wrapf(ErrInvalidJoinTarget, "pipeline %s: target %q", pipe.Name(), join.Target))

			continue
		}

		if _, err := join.Point(); err != nil {
			errs = append(errs, errors.Wrapf(err, "pipeline %s", pipe.Name()))
		}
	}

	return errs
}

// Tasks returns one task per pipeline, in registration order. The phase is captured when Tasks
// is called.
func (m *Manager[T]) Tasks() ([]Task[T], error) {
	pipes := m.ordered()
	phase := m.Phase()
	edges := m.resolver.edges(pipes)

	tasks := make([]Task[T], 0, len(pipes))

	for _, pipe := range pipes {
		depends := pipe.Depends()
		deps := make([]model.TaskName, 0, len(depends)+len(edges[pipe.Name()]))

		for _, dep := range depends {
			deps = append(deps, model.TaskName(dep))
		}

		deps = append(deps, edges[pipe.Name()]...)

		tasks = append(tasks, Task[T]{
			Name:         pipe.TaskName(),
			Dependencies: deps,
			Run:          m.runnable(pipe, phase),
		})
	}

	if _, err := TaskGraph(tasks); err != nil {
		return nil, err
	}

	return tasks, nil
}

// Graph returns the dependency graph of the tasks. Edges go from a dependency to its dependent.
func (m *Manager[T]) Graph() (graph.Graph[string, string], error) {
	tasks, err := m.Tasks()
	if err != nil {
		return nil, err
	}

	return TaskGraph(tasks)
}

func (m *Manager[T]) runnable(pipe *pipeline.Pipeline[T], phase string) Runnable[T] {
	return func(ctx context.Context) *Handle[T] {
		return newHandle(ctx, func(ctx context.Context) ([]T, error) {
			res, err := pipe.Run(ctx, phase)
			if err != nil {
				return nil, err
			}

			join, ok := pipe.Join()
			if !ok {
				return res, nil
			}

			err = m.resolver.splice(pipe.Name(), join, res, m.inserter)
			if err != nil {
				return nil, errors.Wrapf(err, "pipeline %s", pipe.Name())
			}

			return res, nil
		})
	}
}

// TaskGraph builds the dependency graph of tasks. Pipeline tasks are drawn as boxes.
func TaskGraph[T any](tasks []Task[T]) (graph.Graph[string, string], error) {
	g := store.NewDAG()

	for _, task := range tasks {
		err := store.EnsureVertex(g, task.Name.String(), graph.VertexAttribute("shape", "box"))
		if err != nil {
			return nil, err
		}
	}

	for _, task := range tasks {
		for _, dep := range task.Dependencies {
			err := store.AddDependency(g, dep.String(), task.Name.String())
			if errors.Is(err, graph.ErrEdgeCreatesCycle) {
				return nil, errors.Wrapf(ErrDependencyCycle, "%s depends on %s", task.Name, dep)
			}

			if err != nil {
				return nil, err
			}
		}
	}

	return g, nil
}
