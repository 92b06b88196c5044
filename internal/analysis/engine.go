package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"QueChoisir/internal/domain"
	"QueChoisir/internal/ports"
)

// EngineDeps wires the analyzer and optional observers into the engine.
type EngineDeps struct {
	Analyzer ports.Analyzer
	Observer ports.AnalysisObserver
	Logger   *slog.Logger
}

// Engine memoizes one analysis per product and ranks products by score.
//
// Results, the loading flag and the error slot are guarded by mu, so the
// engine may be shared between goroutines. Concurrent Analyze calls for the
// same product share a single analyzer request.
type Engine struct {
	analyzer ports.Analyzer
	observer ports.AnalysisObserver
	logger   *slog.Logger
	calls    singleflight.Group

	mu        sync.RWMutex
	results   map[uuid.UUID]domain.ProductAnalysis
	inFlight  int
	lastError string
}

// NewEngine constructs the cache around an injected analyzer.
func NewEngine(deps EngineDeps) *Engine {
	return &Engine{
		analyzer: deps.Analyzer,
		observer: deps.Observer,
		logger:   deps.Logger,
		results:  map[uuid.UUID]domain.ProductAnalysis{},
	}
}

// Analyze always asks the analyzer and overwrites any previous result.
// Failures are recorded in the error slot and returned.
func (e *Engine) Analyze(ctx context.Context, product domain.Product) (domain.ProductAnalysis, error) {
	e.begin()
	defer e.end()

	analysis, err := e.fetch(ctx, product)
	if err != nil {
		e.fail(ctx, product, err)
		return domain.ProductAnalysis{}, err
	}
	return analysis, nil
}

// RefreshAll re-analyzes products one at a time. A failure does not stop the
// loop; all failures are returned joined. Results already obtained are kept.
func (e *Engine) RefreshAll(ctx context.Context, products []domain.Product) error {
	var errs []error
	for _, product := range products {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if _, err := e.Analyze(ctx, product); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", product.Name, err))
		}
	}
	return errors.Join(errs...)
}

// AnalyzeSelection analyzes, in order, the products without a result and
// stops at the first failure. Products after the failing one stay unanalyzed.
func (e *Engine) AnalyzeSelection(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	e.begin()
	defer e.end()

	for _, product := range products {
		if e.HasResult(product) {
			continue
		}
		if _, err := e.fetch(ctx, product); err != nil {
			e.fail(ctx, product, err)
			return fmt.Errorf("analyze %s: %w", product.Name, err)
		}
	}
	return nil
}

// Result returns the memoized analysis of product.
func (e *Engine) Result(product domain.Product) (domain.ProductAnalysis, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	a, ok := e.results[product.ID]
	return a, ok
}

// HasResult reports whether product has been analyzed.
func (e *Engine) HasResult(product domain.Product) bool {
	_, ok := e.Result(product)
	return ok
}

// OverallScore is the service-provided score, 0 when not analyzed.
func (e *Engine) OverallScore(product domain.Product) int {
	a, _ := e.Result(product)
	return a.OverallScore
}

// WeightedScore applies weights to product's analysis, 0 when not analyzed.
func (e *Engine) WeightedScore(product domain.Product, weights domain.WeightSettings) float64 {
	a, ok := e.Result(product)
	if !ok {
		return 0
	}
	return domain.WeightedScore(a, weights)
}

// RankedBySatisfaction orders products by descending overall score.
// Unanalyzed products count as 0; ties keep the input order.
func (e *Engine) RankedBySatisfaction(products []domain.Product) []domain.Product {
	return rank(products, func(p domain.Product) float64 {
		return float64(e.OverallScore(p))
	})
}

// RankedByWeights orders products by descending weighted aggregate.
func (e *Engine) RankedByWeights(products []domain.Product, weights domain.WeightSettings) []domain.Product {
	return rank(products, func(p domain.Product) float64 {
		return e.WeightedScore(p, weights)
	})
}

// IsLoading is true while any analyzer call is outstanding.
func (e *Engine) IsLoading() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.inFlight > 0
}

// ErrorMessage returns the last user-facing failure, or "".
func (e *Engine) ErrorMessage() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastError
}

// DismissError clears the error slot.
func (e *Engine) DismissError() {
	e.mu.Lock()
	e.lastError = ""
	e.mu.Unlock()
}

func (e *Engine) fetch(ctx context.Context, product domain.Product) (domain.ProductAnalysis, error) {
	if e.analyzer == nil {
		return domain.ProductAnalysis{}, domain.NewAnalysisError(domain.KindTransport, errors.New("no analyzer configured"))
	}

	if err := ctx.Err(); err != nil {
		return domain.ProductAnalysis{}, err
	}

	// The shared call outlives any single caller; each caller stops waiting
	// when its own context ends.
	shared := context.WithoutCancel(ctx)
	ch := e.calls.DoChan(product.ID.String(), func() (any, error) {
		e.debug("analyze product", "product", product.Name, "id", product.ID)

		if e.observer != nil {
			e.observer.AnalysisStarted()
		}
		started := time.Now()
		analysis, err := e.analyzer.Analyze(shared, product)
		if e.observer != nil {
			e.observer.AnalysisFinished(time.Since(started), err)
		}
		if err != nil {
			return nil, err
		}

		e.mu.Lock()
		e.results[product.ID] = analysis
		e.mu.Unlock()

		return analysis, nil
	})

	select {
	case <-ctx.Done():
		return domain.ProductAnalysis{}, ctx.Err()
	case res := <-ch:
		if res.Shared {
			e.debug("coalesced analysis request", "product", product.Name)
		}
		if res.Err != nil {
			return domain.ProductAnalysis{}, res.Err
		}
		return res.Val.(domain.ProductAnalysis), nil
	}
}

func (e *Engine) begin() {
	e.mu.Lock()
	e.inFlight++
	e.lastError = ""
	e.mu.Unlock()
}

func (e *Engine) end() {
	e.mu.Lock()
	e.inFlight--
	e.mu.Unlock()
}

// fail fills the error slot unless the caller itself gave up.
func (e *Engine) fail(ctx context.Context, product domain.Product, err error) {
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		e.debug("analysis abandoned", "product", product.Name, "error", err)
		return
	}

	msg := fmt.Sprintf("Failed to analyze %s: %v", product.Name, err)

	e.mu.Lock()
	e.lastError = msg
	e.mu.Unlock()

	if e.logger != nil {
		e.logger.Warn("analysis failed", "product", product.Name, "error", err)
	}
}

func (e *Engine) debug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}

func rank(products []domain.Product, score func(domain.Product) float64) []domain.Product {
	type scored struct {
		product domain.Product
		score   float64
	}

	items := make([]scored, len(products))
	for i, p := range products {
		items[i] = scored{product: p, score: score(p)}
	}

	slices.SortStableFunc(items, func(a, b scored) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		default:
			return 0
		}
	})

	out := make([]domain.Product, len(items))
	for i, item := range items {
		out[i] = item.product
	}
	return out
}
