package model

import "github.com/pkg/errors"

var (
	ErrNoJoinPoint        = errors.New("no join point specified")
	ErrAmbiguousJoinPoint = errors.New("more than one join point specified")
)
