package model

import (
	"fmt"

	"github.com/pkg/errors"
)

// PointKind tells where a step is placed in a step order.
type PointKind string

const (
	PrependKind PointKind = "prepend"
	AppendKind  PointKind = "append"
	BeforeKind  PointKind = "before"
	AfterKind   PointKind = "after"
)

// InsertionPoint is a position in a step order. Ref names the existing step for the before and
// after kinds and is empty otherwise.
type InsertionPoint struct {
	Kind PointKind
	Ref  string
}

func Prepend() InsertionPoint { return InsertionPoint{Kind: PrependKind} }

func Append() InsertionPoint { return InsertionPoint{Kind: AppendKind} }

func Before(ref string) InsertionPoint { return InsertionPoint{Kind: BeforeKind, Ref: ref} }

func After(ref string) InsertionPoint { return InsertionPoint{Kind: AfterKind, Ref: ref} }

func (ip InsertionPoint) String() string {
	if ip.Ref == "" {
		return string(ip.Kind)
	}

	return fmt.Sprintf("%s:%s", ip.Kind, ip.Ref)
}

// Join declares that the collected output of the declaring pipeline is spliced into Target once
// the declaring pipeline finishes. Exactly one of Prepend, Append, Before and After must be set.
type Join struct {
	Target  string `json:"target" yaml:"target"`
	Prepend bool   `json:"prepend,omitempty" yaml:"prepend,omitempty"`
	Append  bool   `json:"append,omitempty" yaml:"append,omitempty"`
	Before  string `json:"before,omitempty" yaml:"before,omitempty"`
	After   string `json:"after,omitempty" yaml:"after,omitempty"`
}

// Point resolves the insertion point encoded in the join.
func (j Join) Point() (InsertionPoint, error) {
	points := make([]InsertionPoint, 0, 1)

	if j.Prepend {
		points = append(points, Prepend())
	}

	if j.Before != "" {
		points = append(points, Before(j.Before))
	}

	if j.After != "" {
		points = append(points, After(j.After))
	}

	if j.Append {
		points = append(points, Append())
	}

	switch len(points) {
	case 0:
		return InsertionPoint{}, ErrNoJoinPoint
	case 1:
		return points[0], nil
	default:
		return InsertionPoint{}, errors.Wrapf(ErrAmbiguousJoinPoint, "join into %s", j.Target)
	}
}
