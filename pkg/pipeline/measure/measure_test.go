package measure_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-warlock/pkg/pipeline"
	"github.com/askiada/go-warlock/pkg/pipeline/measure"
	"github.com/askiada/go-warlock/pkg/pipeline/model"
)

func TestDefaultMetric(t *testing.T) {
	t.Parallel()

	m := measure.NewDefaultMeasure()
	mt := m.AddMetric("double", 2)
	assert.Same(t, mt, m.AddMetric("double", 4))
	assert.Nil(t, m.GetMetric("missing"))

	mt.AddDuration(2 * time.Millisecond)
	mt.AddDuration(4 * time.Millisecond)
	mt.AddTransportDuration("source", 4*time.Millisecond)
	mt.AddTransportDuration("source", 8*time.Millisecond)

	assert.Equal(t, int64(2), mt.Total())
	assert.Equal(t, 3*time.Millisecond, mt.AVGDuration())

	avg := mt.AVGTransportDuration()
	require.Contains(t, avg, "source")
	assert.Equal(t, 3*time.Millisecond, avg["source"].Elapsed)

	// averaging does not alter the accumulated durations
	assert.Equal(t, 12*time.Millisecond, mt.AllTransports()["source"].Elapsed)

	mt.SetTotalDuration(time.Second)
	assert.Equal(t, time.Second, mt.GetTotalDuration())
	assert.Len(t, m.AllMetrics(), 1)
}

func TestAVGDurationEmpty(t *testing.T) {
	t.Parallel()

	mt := measure.NewDefaultMeasure().AddMetric("double", 0)
	assert.Zero(t, mt.AVGDuration())
	assert.Empty(t, mt.AVGTransportDuration())
}

func newPipe(t *testing.T, hook model.PipelineOption) *pipeline.Pipeline[int] {
	t.Helper()

	pipe, err := pipeline.New("scripts",
		pipeline.WithSource(pipeline.FromSlice([]int{1, 2, 3})),
		pipeline.WithHooks[int](hook),
	)
	require.NoError(t, err)
	pipe.Append("double", pipeline.Map(func(i int) (int, error) { return i * 2, nil }))

	return pipe
}

func TestPipelineMeasure(t *testing.T) {
	t.Parallel()

	m := measure.NewDefaultMeasure()
	pipe := newPipe(t, measure.PipelineMeasure(m))

	_, err := pipe.Run(context.Background(), "")
	require.NoError(t, err)

	metrics := m.AllMetrics()
	for _, name := range []string{"start", "end", "source", "double"} {
		assert.Contains(t, metrics, name)
	}

	assert.Equal(t, int64(3), m.GetMetric("double").Total())
	assert.Contains(t, m.GetMetric("double").AllTransports(), "source")
	assert.Contains(t, m.GetMetric("source").AllTransports(), "start")
	assert.Positive(t, m.GetMetric("end").GetTotalDuration())

	// a second run accumulates
	_, err = pipe.Run(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, int64(6), m.GetMetric("double").Total())
}

func TestPrometheus(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	hook := measure.NewPrometheus(reg)
	pipe := newPipe(t, hook)

	_, err := pipe.Run(context.Background(), "")
	require.NoError(t, err)

	failing, err := pipeline.New("broken", pipeline.WithHooks[int](hook))
	require.NoError(t, err)
	_, err = failing.Run(context.Background(), "")
	require.Error(t, err)

	expected := `
# HELP warlock_pipeline_runs_total Number of pipeline runs by outcome.
# TYPE warlock_pipeline_runs_total counter
warlock_pipeline_runs_total{pipeline="broken",status="failed"} 1
warlock_pipeline_runs_total{pipeline="scripts",status="succeeded"} 1
# HELP warlock_pipeline_artifacts Number of artifacts collected by the last successful run.
# TYPE warlock_pipeline_artifacts gauge
warlock_pipeline_artifacts{pipeline="scripts"} 3
# HELP warlock_step_artifacts_total Number of artifacts emitted by a step.
# TYPE warlock_step_artifacts_total counter
warlock_step_artifacts_total{pipeline="scripts",step="double"} 3
warlock_step_artifacts_total{pipeline="scripts",step="source"} 3
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"warlock_pipeline_runs_total", "warlock_pipeline_artifacts", "warlock_step_artifacts_total"))
}
