package drawer

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-warlock/pkg/pipeline/measure"
	"github.com/askiada/go-warlock/pkg/pipeline/model"
)

type pipelineDrawer struct {
	Drawer
	m measure.Measure

	mu        sync.Mutex
	startTime time.Time
	last      string
}

// PipelineDrawer returns a hook drawing the composed chain of a pipeline once a run succeeds.
// When measure is set, the steps are labelled with its timings.
func PipelineDrawer(drawer Drawer, measure measure.Measure) model.PipelineOption {
	return &pipelineDrawer{Drawer: drawer, m: measure}
}

func (pd *pipelineDrawer) Start(*model.RunInfo) error {
	err := pd.AddStep(model.StartStep.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add start step to drawer")
	}

	err = pd.AddStep(model.EndStep.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add end step to drawer")
	}

	pd.mu.Lock()
	defer pd.mu.Unlock()

	pd.startTime = time.Now()
	pd.last = model.StartStep.Name

	return nil
}

func (pd *pipelineDrawer) PrepareStep(parentStep, step *model.StepInfo) error {
	parent := model.StartStep.Name
	if parentStep != nil {
		parent = parentStep.Name
	}

	err := pd.AddStep(step.Name)
	if err != nil {
		return err
	}

	err = pd.AddLink(parent, step.Name)
	if err != nil {
		return err
	}

	pd.mu.Lock()
	defer pd.mu.Unlock()

	pd.last = step.Name

	return nil
}

func (pd *pipelineDrawer) OnStepOutput(_, _ *model.StepInfo, _, _ time.Duration) error {
	return nil
}

func (pd *pipelineDrawer) Error(*model.RunInfo, error) {}

func (pd *pipelineDrawer) Finish(*model.RunInfo, int) error {
	pd.mu.Lock()
	last, elapsed := pd.last, time.Since(pd.startTime)
	pd.mu.Unlock()

	err := pd.AddLink(last, model.EndStep.Name)
	if err != nil {
		return errors.Wrap(err, "unable to link end step")
	}

	err = pd.SetTotalTime(model.EndStep.Name, elapsed)
	if err != nil {
		return errors.Wrap(err, "unable to set total time")
	}

	if pd.m != nil {
		err = pd.AddMeasure(pd.m)
		if err != nil {
			return errors.Wrap(err, "unable to add measure")
		}
	}

	err = pd.Draw()
	if err != nil {
		return errors.Wrap(err, "unable to draw pipeline")
	}

	return nil
}
