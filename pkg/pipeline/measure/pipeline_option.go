package measure

import (
	"sync"
	"time"

	"github.com/askiada/go-warlock/pkg/pipeline/model"
)

type pipelineMeasure struct {
	Measure

	mu      sync.Mutex
	started map[string]time.Time
}

// PipelineMeasure returns a hook feeding measure with the timings of every run.
func PipelineMeasure(measure Measure) model.PipelineOption {
	return &pipelineMeasure{Measure: measure, started: make(map[string]time.Time)}
}

func (pm *pipelineMeasure) Start(run *model.RunInfo) error {
	pm.AddMetric(model.StartStep.Name, 1)
	pm.AddMetric(model.EndStep.Name, 1)

	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.started[run.ID] = time.Now()

	return nil
}

func (pm *pipelineMeasure) PrepareStep(_, step *model.StepInfo) error {
	pm.AddMetric(step.Name, step.Concurrent)

	return nil
}

func (pm *pipelineMeasure) OnStepOutput(parentStep, step *model.StepInfo, iterationDuration, computationDuration time.Duration) error {
	parent := model.StartStep
	if parentStep != nil {
		parent = parentStep
	}

	mt := pm.AddMetric(step.Name, step.Concurrent)
	mt.AddDuration(computationDuration)
	mt.AddTransportDuration(parent.Name, iterationDuration)

	return nil
}

func (pm *pipelineMeasure) elapsed(run *model.RunInfo) time.Duration {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	start, ok := pm.started[run.ID]
	if !ok {
		return 0
	}

	delete(pm.started, run.ID)

	return time.Since(start)
}

func (pm *pipelineMeasure) Error(run *model.RunInfo, _ error) {
	pm.elapsed(run)
}

func (pm *pipelineMeasure) Finish(run *model.RunInfo, _ int) error {
	pm.GetMetric(model.EndStep.Name).SetTotalDuration(pm.elapsed(run))

	return nil
}
