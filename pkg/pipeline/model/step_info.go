package model

type StepType string

const (
	SourceStepType      StepType = "source"
	TransformStepType   StepType = "transform"
	DuplexStepType      StepType = "duplex"
	DestinationStepType StepType = "destination"
)

// StepInfo describes one stage of a composed pipeline.
type StepInfo struct {
	Type         StepType
	Pipeline     string
	Name         string
	Dependencies []string
	Concurrent   int
	BufferSize   int
}

var (
	StartStep = &StepInfo{Name: "start"}
	EndStep   = &StepInfo{Name: "end"}
)

// RunInfo identifies one execution of a pipeline.
type RunInfo struct {
	ID       string
	Pipeline string
	Phase    string
}
