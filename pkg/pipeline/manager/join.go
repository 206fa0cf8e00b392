package manager

import (
	"log/slog"
	"slices"

	"github.com/pkg/errors"

	"github.com/askiada/go-warlock/pkg/pipeline"
	"github.com/askiada/go-warlock/pkg/pipeline/model"
)

// JoinStepPrefix prefixes the name of the step spliced into a join target.
const JoinStepPrefix = model.TaskNamePrefix + "join-"

// JoinStepName returns the name of the step carrying the output of joiner.
func JoinStepName(joiner string) string {
	return JoinStepPrefix + joiner
}

type stepInserter[T any] interface {
	InsertStep(point model.InsertionPoint, name string, generator pipeline.Generator[T], opts ...pipeline.StepOption) error
}

type joinResolver[T any] struct {
	logger *slog.Logger
}

// edges returns, for every join target, the tasks of the pipelines joining it.
func (r *joinResolver[T]) edges(pipes []*pipeline.Pipeline[T]) map[string][]model.TaskName {
	res := make(map[string][]model.TaskName)

	for _, pipe := range pipes {
		join, ok := pipe.Join()
		if !ok {
			continue
		}

		res[join.Target] = append(res[join.Target], pipe.TaskName())
	}

	return res
}

// splice inserts the output of joiner into the join target. A previous splice of the same
// joiner is replaced.
func (r *joinResolver[T]) splice(joiner string, join model.Join, results []T, lookup func(name string) (stepInserter[T], bool)) error {
	target, ok := lookup(join.Target)
	if !ok {
		return errors.Wrapf(ErrInvalidJoinTarget, "target %q", join.Target)
	}

	point, err := join.Point()
	if err != nil {
		return errors.Wrapf(err, "join into %q", join.Target)
	}

	items := slices.Clone(results)
	name := JoinStepName(joiner)

	err = target.InsertStep(point, name, pipeline.Static(pipeline.Concat(pipeline.FromSlice(items))))
	if err != nil {
		return errors.Wrapf(err, "unable to insert step %s into %s", name, join.Target)
	}

	r.logger.Debug("pipeline joined",
		"joiner", joiner,
		"target", join.Target,
		"point", point.String(),
		"artifacts", len(items),
	)

	return nil
}
