package scheduler

import (
	"context"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/askiada/go-warlock/internal/store"
)

// Job is a named unit of work. A job without Run only groups its dependencies.
type Job struct {
	Name         string
	Dependencies []string
	Run          func(ctx context.Context) error
}

type Scheduler struct {
	concurrency int
	logger      *slog.Logger
}

type Option func(s *Scheduler)

// WithConcurrency bounds the number of jobs running at the same time. A value lower than 1
// removes the bound.
func WithConcurrency(concurrency int) Option {
	return func(s *Scheduler) {
		s.concurrency = concurrency
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		concurrency: runtime.NumCPU(),
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func index(jobs []Job) (map[string]Job, error) {
	byName := make(map[string]Job, len(jobs))

	for _, job := range jobs {
		if _, ok := byName[job.Name]; ok {
			return nil, errors.Wrapf(ErrDuplicateTask, "%q", job.Name)
		}

		byName[job.Name] = job
	}

	for _, job := range jobs {
		for _, dep := range job.Dependencies {
			if _, ok := byName[dep]; !ok {
				return nil, errors.Wrapf(ErrUnknownTask, "%q required by %q", dep, job.Name)
			}
		}
	}

	return byName, nil
}

// Graph returns the dependency graph of jobs. Edges go from a dependency to its dependent.
func Graph(jobs []Job) (graph.Graph[string, string], error) {
	if _, err := index(jobs); err != nil {
		return nil, err
	}

	g := store.NewDAG()

	for _, job := range jobs {
		shape := "ellipse"
		if job.Run != nil {
			shape = "box"
		}

		err := store.EnsureVertex(g, job.Name, graph.VertexAttribute("shape", shape))
		if err != nil {
			return nil, err
		}
	}

	for _, job := range jobs {
		for _, dep := range job.Dependencies {
			err := store.AddDependency(g, dep, job.Name)
			if errors.Is(err, graph.ErrEdgeCreatesCycle) {
				return nil, errors.Wrapf(ErrDependencyCycle, "%s depends on %s", job.Name, dep)
			}

			if err != nil {
				return nil, err
			}
		}
	}

	return g, nil
}

// required returns the targets and every job they depend on. No target means every job.
func required(byName map[string]Job, targets []string) (map[string]struct{}, error) {
	needed := make(map[string]struct{}, len(byName))

	if len(targets) == 0 {
		for name := range byName {
			needed[name] = struct{}{}
		}

		return needed, nil
	}

	stack := make([]string, 0, len(targets))

	for _, target := range targets {
		if _, ok := byName[target]; !ok {
			return nil, errors.Wrapf(ErrUnknownTask, "%q", target)
		}

		stack = append(stack, target)
	}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, ok := needed[current]; ok {
			continue
		}

		needed[current] = struct{}{}
		stack = append(stack, byName[current].Dependencies...)
	}

	return needed, nil
}

// Plan returns the jobs needed by targets in the order they are started.
func Plan(jobs []Job, targets ...string) ([]string, error) {
	byName, err := index(jobs)
	if err != nil {
		return nil, err
	}

	needed, err := required(byName, targets)
	if err != nil {
		return nil, err
	}

	g, err := Graph(jobs)
	if err != nil {
		return nil, err
	}

	sorted, err := graph.StableTopologicalSort(g, func(a, b string) bool { return strings.Compare(a, b) < 0 })
	if err != nil {
		return nil, errors.Wrap(err, "unable to sort tasks")
	}

	plan := make([]string, 0, len(needed))

	for _, name := range sorted {
		if _, ok := needed[name]; ok {
			plan = append(plan, name)
		}
	}

	return plan, nil
}

// Run runs targets and their dependencies. Every job runs at most once.
func (s *Scheduler) Run(ctx context.Context, jobs []Job, targets ...string) error {
	plan, err := Plan(jobs, targets...)
	if err != nil {
		return err
	}

	byName, _ := index(jobs)

	done := make(map[string]chan struct{}, len(plan))
	for _, name := range plan {
		done[name] = make(chan struct{})
	}

	limit := s.concurrency
	if limit < 1 {
		limit = -1
	}

	errGrp, gCtx := errgroup.WithContext(ctx)
	errGrp.SetLimit(limit)

	// jobs are started after their dependencies so a waiting job never holds the slot its
	// dependencies need
	for _, name := range plan {
		job := byName[name]

		errGrp.Go(func() error {
			for _, dep := range job.Dependencies {
				select {
				case <-gCtx.Done():
					return gCtx.Err()
				case <-done[dep]:
				}
			}

			if job.Run != nil {
				start := time.Now()
				logger := s.logger.With("task", job.Name)
				logger.Info("task started")

				err := job.Run(gCtx)
				if err != nil {
					logger.Error("task failed", "error", err, "elapsed", time.Since(start))

					return errors.Wrapf(err, "task %s", job.Name)
				}

				logger.Info("task finished", "elapsed", time.Since(start))
			}

			close(done[job.Name])

			return nil
		})
	}

	return errGrp.Wait()
}
