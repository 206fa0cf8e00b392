package drawer

import (
	"io"
	"os"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/askiada/go-warlock/internal/store"
	"github.com/askiada/go-warlock/pkg/pipeline/measure"
)

// GraphDrawer draws a pipeline as a DOT graph.
type GraphDrawer struct {
	mu     sync.Mutex
	graph  graph.Graph[string, string]
	output func() (io.WriteCloser, error)
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// NewGraphDrawer returns a drawer writing to wrt.
func NewGraphDrawer(wrt io.Writer) *GraphDrawer {
	return newGraphDrawer(func() (io.WriteCloser, error) {
		return nopCloser{wrt}, nil
	})
}

// NewFileDrawer returns a drawer writing to the file fileName. The file is truncated on every draw.
func NewFileDrawer(fileName string) *GraphDrawer {
	return newGraphDrawer(func() (io.WriteCloser, error) {
		file, err := os.Create(fileName)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to create file %s", fileName)
		}

		return file, nil
	})
}

func newGraphDrawer(output func() (io.WriteCloser, error)) *GraphDrawer {
	return &GraphDrawer{
		graph:  graph.NewWithStore(graph.StringHash, store.NewMemoryStore[string, string](), graph.Directed()),
		output: output,
	}
}

// AddStep adds a step to the pipeline graph.
func (d *GraphDrawer) AddStep(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return store.EnsureVertex(d.graph, name)
}

// AddLink adds a link between parent and children steps.
func (d *GraphDrawer) AddLink(parentName, childrenName string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	err := d.graph.AddEdge(parentName, childrenName)
	if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
		return errors.Wrapf(err, "unable to add edge from %s to %s", parentName, childrenName)
	}

	return nil
}

// Draw writes the pipeline graph.
func (d *GraphDrawer) Draw() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	wrt, err := d.output()
	if err != nil {
		return err
	}

	err = WriteDOT(d.graph, wrt)
	if err != nil {
		_ = wrt.Close()

		return errors.Wrap(err, "unable to write dot graph")
	}

	return errors.Wrap(wrt.Close(), "unable to close dot graph")
}

// SetTotalTime sets the total time for the step.
func (d *GraphDrawer) SetTotalTime(stepName string, totalTime time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, properties, err := d.graph.VertexWithProperties(stepName)
	if err != nil {
		return errors.Wrapf(err, "unable to get %s vertex properties", stepName)
	}

	properties.Attributes["xlabel"] = totalTime.String()

	return nil
}

const maxRGB = 240

// edgeColours maps every average transport duration to a colour going from blue for the
// fastest to red for the slowest.
func edgeColours(msr measure.Measure) (map[time.Duration]string, error) {
	res := make(map[time.Duration]string)
	sorted := []time.Duration{}

	for _, step := range msr.AllMetrics() {
		for _, info := range step.AVGTransportDuration() {
			if info.Elapsed == 0 {
				continue
			}

			if _, ok := res[info.Elapsed]; ok {
				continue
			}

			res[info.Elapsed] = ""
			sorted = append(sorted, info.Elapsed)
		}
	}

	if len(sorted) == 0 {
		return res, nil
	}

	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	minValue, maxValue := sorted[0], sorted[len(sorted)-1]

	for curr := range res {
		fraction := 1.0
		if maxValue > minValue {
			fraction = float64(curr-minValue) / float64(maxValue-minValue)
		}

		colour, err := colors.RGB(uint8(maxRGB*fraction), 0, uint8(maxRGB-maxRGB*fraction)) //nolint
		if err != nil {
			return nil, errors.Wrap(err, "unable to get colour")
		}

		res[curr] = colour.ToHEX().String()
	}

	return res, nil
}

// AddMeasure adds measure to drawer. Metrics of steps missing from the graph are ignored.
func (d *GraphDrawer) AddMeasure(msr measure.Measure) error {
	colours, err := edgeColours(msr)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	metrics := msr.AllMetrics()
	names := make([]string, 0, len(metrics))

	for name := range metrics {
		names = append(names, name)
	}

	slices.Sort(names)

	for _, name := range names {
		err := d.updateMetric(name, metrics[name], colours)
		if err != nil {
			return errors.Wrapf(err, "unable to update metrics of %s", name)
		}
	}

	return nil
}

func (d *GraphDrawer) updateMetric(name string, step measure.Metric, colours map[time.Duration]string) error {
	_, properties, err := d.graph.VertexWithProperties(name)
	if errors.Is(err, graph.ErrVertexNotFound) {
		return nil
	}

	if err != nil {
		return errors.Wrap(err, "unable to get vertex properties")
	}

	if stepAvg := step.AVGDuration(); stepAvg != 0 {
		properties.Attributes["xlabel"] = stepAvg.String()
	}

	if total := step.GetTotalDuration(); total > 0 {
		properties.Attributes["xlabel"] = "end: " + total.String()
	}

	for inputStep, info := range step.AVGTransportDuration() {
		if info.Elapsed == 0 {
			continue
		}

		err := d.graph.UpdateEdge(inputStep, name,
			graph.EdgeAttribute("label", info.Elapsed.String()),
			graph.EdgeAttribute("fontcolor", "blue"),
			graph.EdgeAttribute("color", colours[info.Elapsed]),
		)
		if err != nil && !errors.Is(err, graph.ErrEdgeNotFound) {
			return errors.Wrap(err, "unable to update edge")
		}
	}

	return nil
}

var _ Drawer = (*GraphDrawer)(nil)
