package manager

import "github.com/pkg/errors"

var (
	ErrInvalidJoinTarget = errors.New("invalid join target")
	ErrDependencyCycle   = errors.New("dependency cycle")
)
