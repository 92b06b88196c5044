package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"QueChoisir/internal/analysis"
	"QueChoisir/internal/catalog"
	"QueChoisir/internal/domain"
)

type stubAnalyzer struct {
	overall map[string]int
	sub     map[string]int
	fail    map[string]bool
}

func (s stubAnalyzer) Analyze(_ context.Context, p domain.Product) (domain.ProductAnalysis, error) {
	if s.fail[p.Name] {
		return domain.ProductAnalysis{}, domain.NewAnalysisError(domain.KindTransport, errors.New("offline"))
	}
	score := s.overall[p.Name]
	sub, ok := s.sub[p.Name]
	if !ok {
		sub = score
	}
	return domain.ProductAnalysis{
		ReviewsScore:       sub,
		RepairabilityScore: sub,
		ReputationScore:    sub,
		ConsumptionScore:   sub,
		PriceScore:         sub,
		OverallScore:       score,
		Reasoning:          "stub",
	}, nil
}

type staticCatalog struct {
	products []domain.Product
	err      error
}

func (s staticCatalog) Products(context.Context) ([]domain.Product, error) {
	return s.products, s.err
}

type fixedWeights domain.WeightSettings

func (f fixedWeights) Current() domain.WeightSettings { return domain.WeightSettings(f) }

type recordingNotifier struct {
	mu      sync.Mutex
	digests []string
	err     error
}

func (r *recordingNotifier) PublishDigest(_ context.Context, digest string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.digests = append(r.digests, digest)
	return r.err
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.digests)
}

func newRankings(an stubAnalyzer, notifier *recordingNotifier) *Rankings {
	deps := RankingsDeps{
		Catalog: staticCatalog{products: catalog.Sample()},
		Engine:  analysis.NewEngine(analysis.EngineDeps{Analyzer: an}),
		Weights: fixedWeights(domain.DefaultWeights()),
	}
	if notifier != nil {
		deps.Notifier = notifier
	}
	return NewRankings(deps)
}

func TestRefreshRanksFeaturedProducts(t *testing.T) {
	t.Parallel()

	r := newRankings(stubAnalyzer{overall: map[string]int{
		"iPhone 15 Pro":      70,
		"Samsung Galaxy S24": 90,
		`MacBook Pro 14"`:    80,
		"Dell XPS 13":        60,
		"Sony WH-1000XM5":    85,
	}}, nil)

	entries, err := r.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("expected 5 featured entries, got %d", len(entries))
	}

	want := []string{"Samsung Galaxy S24", "Sony WH-1000XM5", `MacBook Pro 14"`, "iPhone 15 Pro", "Dell XPS 13"}
	for i, name := range want {
		if entries[i].Product.Name != name || entries[i].Rank != i+1 {
			t.Fatalf("position %d: got %s (rank %d), want %s", i, entries[i].Product.Name, entries[i].Rank, name)
		}
	}
	if entries[0].Weighted != 90 || entries[0].Overall != 90 || !entries[0].Analyzed {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
}

func TestRankingKeyFollowsWeights(t *testing.T) {
	t.Parallel()

	an := stubAnalyzer{
		overall: map[string]int{"Dell XPS 13": 40, "Sony WH-1000XM5": 95},
		sub:     map[string]int{"Dell XPS 13": 90, "Sony WH-1000XM5": 50},
	}
	engine := analysis.NewEngine(analysis.EngineDeps{Analyzer: an})
	products := catalog.Featured(catalog.Sample())
	if err := engine.RefreshAll(context.Background(), products); err != nil {
		t.Fatalf("RefreshAll returned error: %v", err)
	}

	byOverall := NewRankings(RankingsDeps{Engine: engine, Weights: fixedWeights(domain.DefaultWeights())}).Ranking(products)
	if byOverall[0].Product.Name != "Sony WH-1000XM5" || byOverall[1].Product.Name != "Dell XPS 13" {
		t.Fatalf("default weights must rank by overall score, got %s, %s",
			byOverall[0].Product.Name, byOverall[1].Product.Name)
	}
	if byOverall[0].Overall != 95 || byOverall[0].Weighted != 50 {
		t.Fatalf("unexpected first entry: %+v", byOverall[0])
	}

	custom := domain.DefaultWeights().With(domain.CriterionPrice, 2)
	byWeights := NewRankings(RankingsDeps{Engine: engine, Weights: fixedWeights(custom)}).Ranking(products)
	if byWeights[0].Product.Name != "Dell XPS 13" || byWeights[1].Product.Name != "Sony WH-1000XM5" {
		t.Fatalf("custom weights must rank by weighted score, got %s, %s",
			byWeights[0].Product.Name, byWeights[1].Product.Name)
	}
}

func TestRefreshKeepsPartialRanking(t *testing.T) {
	t.Parallel()

	r := newRankings(stubAnalyzer{
		overall: map[string]int{"iPhone 15 Pro": 50, "Dell XPS 13": 40},
		fail:    map[string]bool{"Samsung Galaxy S24": true, `MacBook Pro 14"`: true, "Sony WH-1000XM5": true},
	}, nil)

	entries, err := r.Refresh(context.Background())
	if err == nil {
		t.Fatalf("expected joined refresh error")
	}
	if !strings.Contains(err.Error(), "Samsung Galaxy S24") {
		t.Fatalf("error should name failing product: %v", err)
	}
	if len(entries) != 5 || entries[0].Product.Name != "iPhone 15 Pro" {
		t.Fatalf("unexpected partial ranking: %+v", entries)
	}
	if entries[4].Analyzed {
		t.Fatalf("failed products must be reported as not analyzed")
	}
}

func TestRefreshCatalogError(t *testing.T) {
	t.Parallel()

	r := NewRankings(RankingsDeps{
		Catalog: staticCatalog{err: errors.New("listing down")},
		Engine:  analysis.NewEngine(analysis.EngineDeps{Analyzer: stubAnalyzer{}}),
	})
	if _, err := r.Refresh(context.Background()); err == nil {
		t.Fatalf("expected catalog error")
	}
}

func TestPublishSendsDigest(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{}
	r := newRankings(stubAnalyzer{overall: map[string]int{"Dell XPS 13": 88}}, notifier)

	if err := r.Publish(context.Background()); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if notifier.count() != 1 {
		t.Fatalf("expected one digest, got %d", notifier.count())
	}
	if !strings.HasPrefix(notifier.digests[0], "Top products\n1. Dell XPS 13 (Laptop): overall 88, weighted 88.0") {
		t.Fatalf("unexpected digest:\n%s", notifier.digests[0])
	}
}

func TestPublishReportsNotifierFailure(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{err: errors.New("telegram error: 401")}
	r := newRankings(stubAnalyzer{overall: map[string]int{}}, notifier)

	if err := r.Publish(context.Background()); err == nil {
		t.Fatalf("expected notifier error")
	}
}

func TestFormatDigest(t *testing.T) {
	t.Parallel()

	if FormatDigest(nil) != "" {
		t.Fatalf("empty ranking must render empty digest")
	}

	p := domain.MustProduct("Bose QuietComfort 45", "Noise cancelling", 329, "Headphones")
	got := FormatDigest([]Entry{{Rank: 1, Product: p}})
	if got != "Top products\n1. Bose QuietComfort 45 (Headphones): not analyzed\n" {
		t.Fatalf("unexpected digest %q", got)
	}
}

type manualDriver struct {
	job     func(time.Time)
	stopped bool
}

func (m *manualDriver) Start(_ context.Context, job func(time.Time)) error {
	m.job = job
	return nil
}

func (m *manualDriver) Stop(context.Context) error {
	m.stopped = true
	return nil
}

func TestSchedulerRunsPublish(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{}
	driver := &manualDriver{}
	s := NewScheduler(driver, newRankings(stubAnalyzer{overall: map[string]int{}}, notifier), nil)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if driver.job == nil {
		t.Fatalf("job not registered")
	}

	driver.job(time.Now())
	driver.job(time.Now())
	if notifier.count() != 2 {
		t.Fatalf("expected two digests, got %d", notifier.count())
	}

	if err := s.Stop(context.Background()); err != nil || !driver.stopped {
		t.Fatalf("Stop did not reach driver: %v", err)
	}
}
