package steps

import (
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/askiada/go-warlock/internal/artifact"
	"github.com/askiada/go-warlock/pkg/pipeline"
)

var (
	ErrStepNotFound  = errors.New("step kind not found")
	ErrInvalidConfig = errors.New("invalid step config")
)

// Factory builds a stage from the options of a configured step.
type Factory func(options map[string]any) (pipeline.Stage[*artifact.File], error)

// Registry maps step kinds to their factory. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// DefaultRegistry returns a registry holding every built-in step kind.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register("gzip", Gzip)
	r.Register("lz4", LZ4)
	r.Register("fingerprint", Fingerprint)
	r.Register("markdown", Markdown)
	r.Register("jsonc", JSONC)
	r.Register("header", Header)
	r.Register("filter", FilterFiles)

	return r
}

// Register registers factory under kind, replacing the previous one.
func (r *Registry) Register(kind string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[kind] = factory
}

// Get returns ErrStepNotFound when kind is not registered.
func (r *Registry) Get(kind string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[kind]
	if !ok {
		return nil, errors.Wrapf(ErrStepNotFound, "%q", kind)
	}

	return factory, nil
}

func (r *Registry) Has(kind string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.factories[kind]

	return ok
}

// Kinds returns the registered kinds, sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.factories))
	for kind := range r.factories {
		kinds = append(kinds, kind)
	}

	sort.Strings(kinds)

	return kinds
}

// Build returns the stage of kind configured with options.
func (r *Registry) Build(kind string, options map[string]any) (pipeline.Stage[*artifact.File], error) {
	factory, err := r.Get(kind)
	if err != nil {
		return pipeline.Stage[*artifact.File]{}, err
	}

	stage, err := factory(options)
	if err != nil {
		return pipeline.Stage[*artifact.File]{}, errors.Wrapf(err, "unable to build %s step", kind)
	}

	return stage, nil
}
