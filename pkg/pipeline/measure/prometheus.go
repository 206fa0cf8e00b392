package measure

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/askiada/go-warlock/pkg/pipeline/model"
)

const namespace = "warlock"

// Prometheus is a hook exporting pipeline runs as prometheus metrics. A single instance can be
// shared by every pipeline, samples are labelled with the pipeline name.
type Prometheus struct {
	runs        *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
	artifacts   *prometheus.GaugeVec
	stepOutputs *prometheus.CounterVec
	stepLatency *prometheus.HistogramVec

	mu      sync.Mutex
	started map[string]time.Time
}

// NewPrometheus registers the pipeline metrics to reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	factory := promauto.With(reg)

	return &Prometheus{
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Number of pipeline runs by outcome.",
		}, []string{"pipeline", "status"}),
		runDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_run_duration_seconds",
			Help:      "Duration of the pipeline runs.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"pipeline"}),
		artifacts: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_artifacts",
			Help:      "Number of artifacts collected by the last successful run.",
		}, []string{"pipeline"}),
		stepOutputs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "step_artifacts_total",
			Help:      "Number of artifacts emitted by a step.",
		}, []string{"pipeline", "step"}),
		stepLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_computation_seconds",
			Help:      "Time spent by a step producing an artifact.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"pipeline", "step"}),
		started: make(map[string]time.Time),
	}
}

var _ model.PipelineOption = (*Prometheus)(nil)

func (p *Prometheus) Start(run *model.RunInfo) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.started[run.ID] = time.Now()

	return nil
}

func (p *Prometheus) PrepareStep(_, _ *model.StepInfo) error {
	return nil
}

func (p *Prometheus) OnStepOutput(_, step *model.StepInfo, _, computationDuration time.Duration) error {
	p.stepOutputs.WithLabelValues(step.Pipeline, step.Name).Inc()
	p.stepLatency.WithLabelValues(step.Pipeline, step.Name).Observe(computationDuration.Seconds())

	return nil
}

func (p *Prometheus) observeRun(run *model.RunInfo, status string) {
	p.mu.Lock()
	start, ok := p.started[run.ID]
	delete(p.started, run.ID)
	p.mu.Unlock()

	p.runs.WithLabelValues(run.Pipeline, status).Inc()

	if ok {
		p.runDuration.WithLabelValues(run.Pipeline).Observe(time.Since(start).Seconds())
	}
}

func (p *Prometheus) Error(run *model.RunInfo, _ error) {
	p.observeRun(run, "failed")
}

func (p *Prometheus) Finish(run *model.RunInfo, total int) error {
	p.observeRun(run, "succeeded")
	p.artifacts.WithLabelValues(run.Pipeline).Set(float64(total))

	return nil
}
