package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-warlock/pkg/pipeline/model"
)

func TestSuppressed(t *testing.T) {
	t.Parallel()

	phases := map[string][]string{
		"prod": {"fingerprint", "minify"},
		"dev":  {"sourcemap"},
	}

	tcs := map[string]struct {
		phase    string
		expected map[string]struct{}
	}{
		"empty phase": {phase: "", expected: map[string]struct{}{}},
		"prod":        {phase: "prod", expected: map[string]struct{}{"sourcemap": {}}},
		"dev":         {phase: "dev", expected: map[string]struct{}{"fingerprint": {}, "minify": {}}},
		"unknown": {
			phase:    "test",
			expected: map[string]struct{}{"fingerprint": {}, "minify": {}, "sourcemap": {}},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.expected, suppressed(phases, tc.phase))
		})
	}
}

func TestAttribute(t *testing.T) {
	t.Parallel()

	err := attribute("p1", "first", assert.AnError)
	require.ErrorIs(t, err, assert.AnError)

	again := attribute("p1", "second", err)

	var stageErr *StageError
	require.ErrorAs(t, again, &stageErr)
	assert.Equal(t, "first", stageErr.Stage)
}

func TestAttachStopsPullingOnError(t *testing.T) {
	t.Parallel()

	pulled := 0
	upstream := Stream[int](func(yield func(int, error) bool) {
		for i := range 1000 {
			pulled++

			if !yield(i, nil) {
				return
			}
		}
	})

	info := &model.StepInfo{Name: "dup", Concurrent: 1}
	stream := attach(context.Background(), info, upstream, func(_ context.Context, in <-chan int, _ chan<- int) error {
		<-in

		return assert.AnError
	})

	_, err := Collect(context.Background(), stream)
	require.ErrorIs(t, err, assert.AnError)
	// the pump may have pushed one more artifact before noticing the cancellation
	assert.LessOrEqual(t, pulled, 3)
}

func TestAttachEarlyReturn(t *testing.T) {
	t.Parallel()

	info := &model.StepInfo{Name: "first", Concurrent: 1}
	stream := attach(context.Background(), info, FromSlice([]int{1, 2, 3, 4}), func(ctx context.Context, in <-chan int, out chan<- int) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case out <- <-in:
		}

		return nil
	})

	got, err := Collect(context.Background(), stream)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, got)
}

func TestAttachConsumerStops(t *testing.T) {
	t.Parallel()

	info := &model.StepInfo{Name: "dup", Concurrent: 2}
	returned := make(chan struct{})
	stream := attach(context.Background(), info, FromSlice([]int{1, 2, 3, 4, 5, 6}), func(ctx context.Context, in <-chan int, out chan<- int) error {
		defer func() { returned <- struct{}{} }()

		for item := range in {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case out <- item:
			}
		}

		return nil
	})

	for range stream {
		break
	}

	for range 2 {
		select {
		case <-returned:
		case <-time.After(5 * time.Second):
			t.Fatal("duplex workers did not stop")
		}
	}
}

func TestCollectStopsOnError(t *testing.T) {
	t.Parallel()

	stream := Stream[int](func(yield func(int, error) bool) {
		if !yield(1, nil) {
			return
		}

		yield(0, assert.AnError)
	})

	got, err := Collect(context.Background(), stream)
	require.ErrorIs(t, err, assert.AnError)
	assert.Nil(t, got)
}

func TestStageKind(t *testing.T) {
	t.Parallel()

	assert.Equal(t, TransformStage, Map(func(i int) (int, error) { return i, nil }).Kind())
	assert.Equal(t, DuplexStage, DuplexMap(func(_ context.Context, i int) (int, error) { return i, nil }).Kind())
	assert.Equal(t, "transform", TransformStage.String())
	assert.Equal(t, "duplex", DuplexStage.String())
	assert.Equal(t, "unknown", StageKind(0).String())
	assert.False(t, Stage[int]{}.valid())
	assert.False(t, Transform[int](nil).valid())
}
