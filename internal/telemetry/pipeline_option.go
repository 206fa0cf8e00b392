package telemetry

import (
	"log/slog"
	"sync"
	"time"

	"github.com/askiada/go-warlock/pkg/pipeline/model"
)

type pipelineLogger struct {
	logger *slog.Logger

	mu      sync.Mutex
	started map[string]time.Time
}

// PipelineLogger returns a hook logging the runs of the pipelines it is attached to.
func PipelineLogger(logger *slog.Logger) model.PipelineOption {
	return &pipelineLogger{
		logger:  logger,
		started: make(map[string]time.Time),
	}
}

func (pl *pipelineLogger) runLogger(run *model.RunInfo) *slog.Logger {
	return WithRunID(WithPipeline(pl.logger, run.Pipeline), run.ID)
}

// elapsed returns the time since run started and forgets about it.
func (pl *pipelineLogger) elapsed(run *model.RunInfo) time.Duration {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	start, ok := pl.started[run.ID]
	if !ok {
		return 0
	}

	delete(pl.started, run.ID)

	return time.Since(start)
}

func (pl *pipelineLogger) Start(run *model.RunInfo) error {
	pl.mu.Lock()
	pl.started[run.ID] = time.Now()
	pl.mu.Unlock()

	pl.runLogger(run).Info("pipeline started", "phase", run.Phase)

	return nil
}

func (pl *pipelineLogger) PrepareStep(parentStep, step *model.StepInfo) error {
	parent := ""
	if parentStep != nil {
		parent = parentStep.Name
	}

	WithPipeline(pl.logger, step.Pipeline).Debug("step composed",
		"step", step.Name,
		"type", step.Type,
		"parent", parent,
		"concurrent", step.Concurrent,
	)

	return nil
}

func (pl *pipelineLogger) OnStepOutput(_, _ *model.StepInfo, _, _ time.Duration) error {
	return nil
}

func (pl *pipelineLogger) Error(run *model.RunInfo, err error) {
	pl.runLogger(run).Error("pipeline failed", "error", err, "elapsed", pl.elapsed(run))
}

func (pl *pipelineLogger) Finish(run *model.RunInfo, total int) error {
	pl.runLogger(run).Info("pipeline finished", "artifacts", total, "elapsed", pl.elapsed(run))

	return nil
}
