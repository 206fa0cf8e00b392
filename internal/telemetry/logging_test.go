package telemetry_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-warlock/internal/telemetry"
	"github.com/askiada/go-warlock/pkg/pipeline"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		name     string
		expected slog.Level
	}{
		"debug":      {name: "debug", expected: slog.LevelDebug},
		"warn":       {name: "WARN", expected: slog.LevelWarn},
		"error":      {name: "Error", expected: slog.LevelError},
		"info":       {name: "info", expected: slog.LevelInfo},
		"unexpected": {name: "verbose", expected: slog.LevelInfo},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.expected, telemetry.ParseLevel(tc.name))
		})
	}
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger, err := telemetry.NewLogger(&buf, "info", "json")
	require.NoError(t, err)

	telemetry.WithTask(logger, "$$docs").Debug("hidden")
	telemetry.WithTask(logger, "$$docs").Info("visible")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "visible", record["msg"])
	assert.Equal(t, "$$docs", record["task"])

	_, err = telemetry.NewLogger(&buf, "info", "xml")
	require.ErrorIs(t, err, telemetry.ErrUnknownLogFormat)
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.DiscardHandler)
	ctx := telemetry.WithLogger(context.Background(), logger)
	assert.Same(t, logger, telemetry.FromContext(ctx))
	assert.Same(t, slog.Default(), telemetry.FromContext(context.Background()))
}

func TestPipelineLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger, err := telemetry.NewLogger(&buf, "debug", "text")
	require.NoError(t, err)

	pipe, err := pipeline.New("scripts",
		pipeline.WithSource(pipeline.FromSlice([]int{1, 2})),
		pipeline.WithHooks[int](telemetry.PipelineLogger(logger)),
	)
	require.NoError(t, err)
	pipe.Append("boom", pipeline.Map(func(i int) (int, error) {
		if i == 2 {
			return 0, assert.AnError
		}

		return i, nil
	}))

	_, err = pipe.Run(context.Background(), "dev")
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "pipeline started")
	assert.Contains(t, out, "step composed")
	assert.Contains(t, out, "pipeline failed")
	assert.NotContains(t, out, "pipeline finished")
	// start and failure carry the run id
	assert.Equal(t, 2, strings.Count(out, "pipeline=scripts run_id="))
}
