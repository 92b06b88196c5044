package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"QueChoisir/internal/analysis"
	"QueChoisir/internal/catalog"
	"QueChoisir/internal/domain"
	"QueChoisir/internal/ports"
)

// WeightSource exposes the active weight settings.
type WeightSource interface {
	Current() domain.WeightSettings
}

// RankingsDeps wires the engine and driven adapters into the refresh workflow.
type RankingsDeps struct {
	Catalog  ports.CatalogSource
	Engine   *analysis.Engine
	Weights  WeightSource
	Notifier ports.Notifier
	Logger   *slog.Logger
}

// Rankings refreshes featured products and publishes ranking digests.
type Rankings struct {
	catalog  ports.CatalogSource
	engine   *analysis.Engine
	weights  WeightSource
	notifier ports.Notifier
	logger   *slog.Logger
}

// Entry is one line of a ranking.
type Entry struct {
	Rank     int
	Product  domain.Product
	Analyzed bool
	Overall  int
	Weighted float64
}

// NewRankings constructs the orchestration component.
func NewRankings(deps RankingsDeps) *Rankings {
	return &Rankings{
		catalog:  deps.Catalog,
		engine:   deps.Engine,
		weights:  deps.Weights,
		notifier: deps.Notifier,
		logger:   deps.Logger,
	}
}

// Featured loads the catalog and returns its featured subset.
func (r *Rankings) Featured(ctx context.Context) ([]domain.Product, error) {
	if r.catalog == nil {
		return nil, errors.New("no catalog configured")
	}
	products, err := r.catalog.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return catalog.Featured(products), nil
}

// Refresh re-analyzes the featured products and ranks them. Partial
// failures still yield a ranking alongside the error.
func (r *Rankings) Refresh(ctx context.Context) ([]Entry, error) {
	featured, err := r.Featured(ctx)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	refreshErr := r.engine.RefreshAll(ctx, featured)
	r.debug("featured products refreshed", "count", len(featured), "elapsed", time.Since(started))

	return r.Ranking(featured), refreshErr
}

// Ranking orders products without calling the analyzer: by the service's
// overall score while the default weights apply, by weighted score otherwise.
func (r *Rankings) Ranking(products []domain.Product) []Entry {
	weights := domain.DefaultWeights()
	if r.weights != nil {
		weights = r.weights.Current()
	}

	var ranked []domain.Product
	if weights.IsDefault() {
		ranked = r.engine.RankedBySatisfaction(products)
	} else {
		ranked = r.engine.RankedByWeights(products, weights)
	}
	entries := make([]Entry, 0, len(ranked))
	for i, p := range ranked {
		entries = append(entries, Entry{
			Rank:     i + 1,
			Product:  p,
			Analyzed: r.engine.HasResult(p),
			Overall:  r.engine.OverallScore(p),
			Weighted: r.engine.WeightedScore(p, weights),
		})
	}
	return entries
}

// Publish refreshes the ranking and sends it through the notifier.
func (r *Rankings) Publish(ctx context.Context) error {
	entries, refreshErr := r.Refresh(ctx)
	if refreshErr != nil && entries == nil {
		return refreshErr
	}
	if refreshErr != nil && r.logger != nil {
		r.logger.Warn("refresh incomplete", "error", refreshErr)
	}

	digest := FormatDigest(entries)
	if r.notifier == nil {
		if r.logger != nil {
			r.logger.Info("ranking digest", "digest", digest)
		}
		return refreshErr
	}

	if err := r.notifier.PublishDigest(ctx, digest); err != nil {
		return errors.Join(refreshErr, fmt.Errorf("publish digest: %w", err))
	}
	r.debug("digest published", "entries", len(entries))
	return refreshErr
}

// FormatDigest renders entries as plain text, one product per line.
func FormatDigest(entries []Entry) string {
	if len(entries) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Top products\n")
	for _, e := range entries {
		if !e.Analyzed {
			fmt.Fprintf(&b, "%d. %s (%s): not analyzed\n", e.Rank, e.Product.Name, e.Product.Category)
			continue
		}
		fmt.Fprintf(&b, "%d. %s (%s): overall %d, weighted %.1f\n",
			e.Rank, e.Product.Name, e.Product.Category, e.Overall, e.Weighted)
	}
	return b.String()
}

func (r *Rankings) debug(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}
