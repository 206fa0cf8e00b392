package scheduler

import "github.com/pkg/errors"

var (
	ErrUnknownTask     = errors.New("unknown task")
	ErrDuplicateTask   = errors.New("duplicate task")
	ErrDependencyCycle = errors.New("dependency cycle")
)
