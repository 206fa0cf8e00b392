package cli

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/askiada/go-warlock/internal/artifact"
	"github.com/askiada/go-warlock/internal/config"
	"github.com/askiada/go-warlock/internal/scheduler"
	"github.com/askiada/go-warlock/internal/steps"
	"github.com/askiada/go-warlock/internal/telemetry"
	"github.com/askiada/go-warlock/pkg/pipeline"
	"github.com/askiada/go-warlock/pkg/pipeline/drawer"
	"github.com/askiada/go-warlock/pkg/pipeline/manager"
	"github.com/askiada/go-warlock/pkg/pipeline/measure"
	"github.com/askiada/go-warlock/pkg/pipeline/model"
)

// DefaultTask is the alias run when no task is named.
const DefaultTask = "default"

var ErrInvalidConfig = errors.New("invalid config")

// BuildOptions tune how a configuration is turned into a project.
type BuildOptions struct {
	// Phase overrides the phase of the configuration when set.
	Phase string
	// DrawDir receives a DOT file per pipeline, drawing the steps of its last run. Nothing is
	// drawn when empty.
	DrawDir  string
	Registry *steps.Registry
	Logger   *slog.Logger
}

// Project holds the pipelines of a configuration.
type Project struct {
	Config  *config.Config
	Manager *manager.Manager[*artifact.File]
	Metrics *prometheus.Registry
}

// Build validates cfg and creates its pipelines.
func Build(cfg *config.Config, opts BuildOptions) (*Project, error) {
	if opts.Registry == nil {
		opts.Registry = steps.DefaultRegistry()
	}

	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	if issues := cfg.Validate(opts.Registry); len(issues) > 0 {
		return nil, errors.Wrap(ErrInvalidConfig, strings.Join(issues, "; "))
	}

	phase := cfg.Phase
	if opts.Phase != "" {
		phase = opts.Phase
	}

	project := &Project{
		Config:  cfg,
		Manager: manager.New(manager.WithPhase[*artifact.File](phase), manager.WithLogger[*artifact.File](opts.Logger)),
		Metrics: prometheus.NewRegistry(),
	}

	metrics := measure.NewPrometheus(project.Metrics)

	for _, pc := range cfg.Pipelines {
		hooks := []model.PipelineOption{telemetry.PipelineLogger(opts.Logger), metrics}

		if opts.DrawDir != "" {
			msr := measure.NewDefaultMeasure()
			hooks = append(hooks,
				measure.PipelineMeasure(msr),
				drawer.PipelineDrawer(drawer.NewFileDrawer(filepath.Join(opts.DrawDir, pc.Name+".dot")), msr),
			)
		}

		pipe, err := newPipeline(pc, opts.Registry, opts.Logger, hooks)
		if err != nil {
			return nil, errors.Wrapf(err, "pipeline %s", pc.Name)
		}

		if err := project.Manager.Add(pipe); err != nil {
			return nil, errors.Wrapf(err, "pipeline %s", pc.Name)
		}
	}

	if errs := project.Manager.Validate(); len(errs) > 0 {
		return nil, errors.Wrap(errs[0], "invalid pipelines")
	}

	return project, nil
}

func newPipeline(
	pc config.Pipeline,
	registry *steps.Registry,
	logger *slog.Logger,
	hooks []model.PipelineOption,
) (*pipeline.Pipeline[*artifact.File], error) {
	base := pc.Base
	if base == "" {
		base = "."
	}

	opts := []pipeline.Option[*artifact.File]{
		pipeline.WithSource(artifact.Glob(os.DirFS(base), base, pc.Files...)),
		pipeline.WithDepends[*artifact.File](pc.Depends...),
		pipeline.WithPhases[*artifact.File](pc.Phases),
		pipeline.WithHooks[*artifact.File](hooks...),
		pipeline.WithLogger[*artifact.File](logger),
	}

	if pc.Join != nil {
		opts = append(opts, pipeline.WithJoin[*artifact.File](*pc.Join))
	}

	if pc.Dest != "" {
		opts = append(opts, pipeline.WithDestination(artifact.Dest(pc.Dest)))
	}

	pipe, err := pipeline.New(pc.Name, opts...)
	if err != nil {
		return nil, err
	}

	for _, sc := range pc.Steps {
		stage, err := registry.Build(sc.Use, sc.With)
		if err != nil {
			return nil, errors.Wrapf(err, "step %s", sc.Name)
		}

		var stepOpts []pipeline.StepOption
		if sc.Concurrency > 0 {
			stepOpts = append(stepOpts, pipeline.StepConcurrency(sc.Concurrency))
		}

		if sc.BufferSize > 0 {
			stepOpts = append(stepOpts, pipeline.StepBufferSize(sc.BufferSize))
		}

		switch point := sc.Point(); point.Kind {
		case model.PrependKind:
			pipe.Prepend(sc.Name, stage, stepOpts...)
		case model.BeforeKind:
			pipe.Before(point.Ref, sc.Name, stage, stepOpts...)
		case model.AfterKind:
			pipe.After(point.Ref, sc.Name, stage, stepOpts...)
		default:
			pipe.Append(sc.Name, stage, stepOpts...)
		}
	}

	if err := pipe.Err(); err != nil {
		return nil, err
	}

	return pipe, nil
}

// Result is the outcome of a successful task.
type Result struct {
	Task    string        `json:"task"`
	Files   int           `json:"files"`
	Bytes   uint64        `json:"bytes"`
	Elapsed time.Duration `json:"elapsed"`
}

// Results gathers the outcome of the tasks of a run, in completion order.
type Results struct {
	mu   sync.Mutex
	list []Result
}

func (r *Results) add(task string, files []*artifact.File, elapsed time.Duration) {
	res := Result{Task: task, Files: len(files), Elapsed: elapsed}
	for _, file := range files {
		res.Bytes += uint64(len(file.Contents))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.list = append(r.list, res)
}

func (r *Results) List() []Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.list)
}

// Jobs returns a job per pipeline task and per alias task. The pipeline jobs record their outcome
// in the returned results.
func (p *Project) Jobs(logger *slog.Logger) ([]scheduler.Job, *Results, error) {
	tasks, err := p.Manager.Tasks()
	if err != nil {
		return nil, nil, err
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	results := &Results{}
	jobs := make([]scheduler.Job, 0, len(tasks)+len(p.Config.Tasks))

	for _, task := range tasks {
		name := task.Name.String()
		run := task.Run

		deps := make([]string, 0, len(task.Dependencies))
		for _, dep := range task.Dependencies {
			deps = append(deps, dep.String())
		}

		jobs = append(jobs, scheduler.Job{
			Name:         name,
			Dependencies: deps,
			Run: func(ctx context.Context) error {
				start := time.Now()

				files, err := run(ctx).Wait()
				if err != nil {
					return err
				}

				results.add(name, files, time.Since(start))
				telemetry.WithTask(logger, name).Debug("artifacts collected", "files", len(files))

				return nil
			},
		})
	}

	for _, alias := range p.Config.Tasks {
		jobs = append(jobs, scheduler.Job{
			Name:         alias.Name,
			Dependencies: slices.Clone(alias.Dependencies),
		})
	}

	return jobs, results, nil
}

// Targets resolves the task names given on the command line. A pipeline may be named without its
// task prefix.
func (p *Project) Targets(jobs []scheduler.Job, args []string) []string {
	known := make(map[string]struct{}, len(jobs))
	for _, job := range jobs {
		known[job.Name] = struct{}{}
	}

	if len(args) == 0 {
		if _, ok := known[DefaultTask]; ok {
			return []string{DefaultTask}
		}

		targets := make([]string, 0, len(p.Config.Pipelines))
		for _, name := range p.Manager.Names() {
			targets = append(targets, model.PipelineTaskName(name).String())
		}

		return targets
	}

	targets := make([]string, 0, len(args))

	for _, arg := range args {
		if _, ok := known[arg]; !ok {
			if name := model.PipelineTaskName(arg).String(); hasKey(known, name) {
				arg = name
			}
		}

		targets = append(targets, arg)
	}

	return targets
}

func hasKey(m map[string]struct{}, key string) bool {
	_, ok := m[key]

	return ok
}
