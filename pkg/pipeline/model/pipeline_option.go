package model

import "time"

// PipelineOption defines the interface for hooks attached to a pipeline run.
type PipelineOption interface {
	// Start runs synchronously when a run begins, before the pipeline is composed.
	Start(run *RunInfo) error

	pipelineStepOption

	// Error runs once when a run fails. Finish is not called for that run.
	Error(run *RunInfo, err error)
	// Finish runs once after every artifact of a run has been collected.
	Finish(run *RunInfo, total int) error
}

// pipelineStepOption defines the interface for step options at the pipeline level.
type pipelineStepOption interface {
	// PrepareStep runs when the step is added to the composed chain. parentStep is nil for the source.
	PrepareStep(parentStep, step *StepInfo) error
	// OnStepOutput runs everytime the step hands an artifact downstream.
	OnStepOutput(parentStep, step *StepInfo, iterationDuration, computationDuration time.Duration) error
}
