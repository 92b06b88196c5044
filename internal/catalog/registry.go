package catalog

import (
	"context"
	"fmt"

	"QueChoisir/internal/domain"
)

// Request carries all parameters required to load a catalog source.
type Request struct {
	SourceName string
	URL        string
	Options    map[string]string
}

// Source captures a single catalog strategy (built-in sample, HTML listing, etc.).
type Source interface {
	Name() string
	Load(ctx context.Context, req Request) ([]domain.Product, error)
}

// Registry keeps a mapping from source names to their implementations.
type Registry struct {
	sources map[string]Source
}

// NewRegistry builds a registry with the built-in sample source registered.
func NewRegistry() *Registry {
	r := &Registry{sources: map[string]Source{}}
	r.Register(SampleSource{})
	return r
}

// Register adds or replaces a source implementation.
func (r *Registry) Register(source Source) {
	if r.sources == nil {
		r.sources = map[string]Source{}
	}
	r.sources[source.Name()] = source
}

// Resolve returns a source by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Source, error) {
	if source, ok := r.sources[name]; ok {
		return source, nil
	}
	return nil, fmt.Errorf("catalog source %s is not registered", name)
}
