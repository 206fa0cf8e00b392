package pipeline

import (
	"github.com/pkg/errors"
)

var (
	ErrPipelineMustBeSet  = errors.New("pipeline must be set")
	ErrEmptyPipelineName  = errors.New("pipeline name must be set")
	ErrEmptyStepName      = errors.New("step name must be set")
	ErrStageMustBeSet     = errors.New("stage must be set")
	ErrUnknownStep        = errors.New("unknown step")
	ErrStepDependsOnSelf  = errors.New("step depends on itself")
	ErrUnknownPoint       = errors.New("unknown insertion point")
	ErrMissingSource      = errors.New("pipeline has no source")
	ErrPipelineRunning    = errors.New("pipeline is running")
	ErrInvalidDestination = errors.New("invalid destination")
)

// StageError attributes an error to the stage that raised it.
type StageError struct {
	Pipeline string
	Stage    string
	Err      error
}

func (e *StageError) Error() string {
	return "pipeline " + e.Pipeline + ": stage " + e.Stage + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// attribute wraps err into a StageError unless a previous stage already claimed it.
func attribute(pipeline, stage string, err error) error {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return err
	}

	return &StageError{Pipeline: pipeline, Stage: stage, Err: err}
}
