package model

import "strings"

// TaskNamePrefix marks task names derived from pipelines so they never collide with task names
// declared by users.
const TaskNamePrefix = "$$"

// TaskName is the name of a task handed to a scheduler.
type TaskName string

// PipelineTaskName returns the task name of the pipeline called name.
func PipelineTaskName(name string) TaskName {
	return TaskName(TaskNamePrefix + name)
}

// Pipeline returns the pipeline name behind a pipeline task name.
func (tn TaskName) Pipeline() (string, bool) {
	return strings.CutPrefix(string(tn), TaskNamePrefix)
}

func (tn TaskName) String() string {
	return string(tn)
}
