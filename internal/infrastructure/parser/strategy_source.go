package parser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"QueChoisir/internal/catalog"
	"QueChoisir/internal/config"
	"QueChoisir/internal/domain"
	"QueChoisir/internal/ports"
)

// StrategySource implements CatalogSource via registered catalog strategies.
type StrategySource struct {
	registry *catalog.Registry
	sources  []config.SourceConfig
	logger   *slog.Logger
}

var _ ports.CatalogSource = (*StrategySource)(nil)

// NewStrategySource wires the registry with config-defined sources.
func NewStrategySource(reg *catalog.Registry, sources []config.SourceConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sources:  sources,
		logger:   log,
	}
}

// Products loads every configured source in order. A later product whose name
// was already seen is dropped.
func (s *StrategySource) Products(ctx context.Context) ([]domain.Product, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("catalog registry is not configured")
	}

	s.debug("load catalog", "sources", len(s.sources))

	var aggregated []domain.Product
	seen := map[string]struct{}{}
	for _, src := range s.sources {
		s.debug("process source", "name", src.Name, "strategy", src.Source)
		strategy, err := s.registry.Resolve(src.Source)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", src.Name, err)
		}

		req := catalog.Request{
			SourceName: src.Name,
			URL:        src.URL,
			Options:    src.Options,
		}

		results, err := strategy.Load(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("load source %s: %w", src.Name, err)
		}

		for _, p := range results {
			key := strings.ToLower(p.Name)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			aggregated = append(aggregated, p)
		}
		s.debug("source produced products", "name", src.Name, "count", len(results))
	}

	s.debug("strategy source done", "total_products", len(aggregated))
	return aggregated, nil
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
