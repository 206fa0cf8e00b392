package pipeline_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/askiada/go-warlock/pkg/pipeline"
	"github.com/askiada/go-warlock/pkg/pipeline/model"
)

func double() pipeline.Stage[int] {
	return pipeline.Map(func(input int) (int, error) {
		return input * 2, nil
	})
}

func addN(n int) pipeline.Stage[int] {
	return pipeline.Map(func(input int) (int, error) {
		return input + n, nil
	})
}

func failAt(value int, err error) pipeline.Stage[int] {
	return pipeline.Map(func(input int) (int, error) {
		if input == value {
			return 0, err
		}

		return input, nil
	})
}

// countingSource returns a source counting how many artifacts were pulled from it.
func countingSource(t *testing.T, total int) (pipeline.Stream[int], *int) {
	t.Helper()

	pulled := 0

	return func(yield func(int, error) bool) {
		for i := 1; i <= total; i++ {
			pulled++

			if !yield(i, nil) {
				return
			}
		}
	}, &pulled
}

func newPipe(t *testing.T, name string, opts ...pipeline.Option[int]) *pipeline.Pipeline[int] {
	t.Helper()

	pipe, err := pipeline.New(name, opts...)
	if err != nil {
		t.Fatalf("unable to create pipeline %s: %v", name, err)
	}

	return pipe
}

func run(t *testing.T, pipe *pipeline.Pipeline[int], phase string) ([]int, error) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return pipe.Run(ctx, phase)
}

// recorder is a hook remembering every signal it receives.
type recorder struct {
	mu       sync.Mutex
	starts   int
	finishes []int
	errs     []error
	prepared []string
	parents  []string
	outputs  map[string]int
}

func newRecorder() *recorder {
	return &recorder{outputs: make(map[string]int)}
}

var _ model.PipelineOption = (*recorder)(nil)

func (r *recorder) Start(*model.RunInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.starts++

	return nil
}

func (r *recorder) PrepareStep(parentStep, step *model.StepInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	parent := ""
	if parentStep != nil {
		parent = parentStep.Name
	}

	r.prepared = append(r.prepared, step.Name)
	r.parents = append(r.parents, parent)

	return nil
}

func (r *recorder) OnStepOutput(_, step *model.StepInfo, _, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.outputs[step.Name]++

	return nil
}

func (r *recorder) Error(_ *model.RunInfo, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.errs = append(r.errs, err)
}

func (r *recorder) Finish(_ *model.RunInfo, total int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.finishes = append(r.finishes, total)

	return nil
}
