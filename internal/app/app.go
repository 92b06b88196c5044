package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"QueChoisir/internal/analysis"
	"QueChoisir/internal/catalog"
	"QueChoisir/internal/compare"
	"QueChoisir/internal/config"
	"QueChoisir/internal/infrastructure/llm"
	"QueChoisir/internal/infrastructure/parser"
	"QueChoisir/internal/infrastructure/scheduler"
	"QueChoisir/internal/infrastructure/scoring"
	"QueChoisir/internal/infrastructure/storage"
	"QueChoisir/internal/infrastructure/telegram"
	"QueChoisir/internal/logging"
	"QueChoisir/internal/metrics"
	"QueChoisir/internal/ports"
	"QueChoisir/internal/settings"
	"QueChoisir/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	logger *slog.Logger

	catalog   ports.CatalogSource
	engine    *analysis.Engine
	settings  *settings.Store
	selection *compare.Selection
	rankings  *usecase.Rankings
	notifier  *telegram.Notifier
	registry  *prometheus.Registry

	closers []io.Closer
}

// New builds the application: catalog sources, analyzer, settings backend,
// metrics and the ranking use case.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	a := &Application{
		cfg:       cfg,
		logger:    baseLogger,
		selection: compare.NewSelection(),
		registry:  prometheus.NewRegistry(),
	}

	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder, err := metrics.NewRecorder(a.registry)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	registry := catalog.NewRegistry()
	registry.Register(parser.NewHTMLListingSource(nil, baseLogger.With("component", "catalog.html")))
	a.catalog = catalog.NewCached(parser.NewStrategySource(registry, cfg.Catalog.Sources, baseLogger.With("component", "catalog")))

	analyzer, err := newAnalyzer(cfg, baseLogger)
	if err != nil {
		return nil, err
	}

	a.engine = analysis.NewEngine(analysis.EngineDeps{
		Analyzer: analyzer,
		Observer: recorder,
		Logger:   baseLogger.With("component", "engine"),
	})

	kv, err := a.openSettingsBackend(ctx)
	if err != nil {
		return nil, err
	}
	a.settings = settings.NewStore(kv, cfg.Settings.Key, baseLogger.With("component", "settings"))
	a.settings.Load(ctx)

	var notifier ports.Notifier
	a.notifier = telegram.NewNotifier(cfg.Notifications.Telegram)
	if a.notifier.Configured() {
		notifier = a.notifier
	}

	a.rankings = usecase.NewRankings(usecase.RankingsDeps{
		Catalog:  a.catalog,
		Engine:   a.engine,
		Weights:  a.settings,
		Notifier: notifier,
		Logger:   baseLogger.With("component", "rankings"),
	})

	return a, nil
}

func newAnalyzer(cfg config.Config, logger *slog.Logger) (ports.Analyzer, error) {
	switch cfg.Analysis.Provider {
	case config.ProviderAnthropic, "":
		if cfg.Anthropic.APIKey == "" {
			logger.Warn("anthropic api key is empty; analyses will fail")
		}
		return llm.NewAnthropicClient(cfg.Anthropic), nil
	case config.ProviderOpenAI:
		if cfg.ChatGPT.APIKey == "" {
			logger.Warn("chatgpt api key is empty; analyses will fail")
		}
		return llm.NewChatGPTClient(cfg.ChatGPT), nil
	case config.ProviderService:
		return scoring.NewClient(cfg.Scoring), nil
	default:
		return nil, fmt.Errorf("unknown analysis provider %q", cfg.Analysis.Provider)
	}
}

func (a *Application) openSettingsBackend(ctx context.Context) (ports.KeyValueStore, error) {
	s := a.cfg.Settings
	switch s.Backend {
	case config.BackendSQLite, "":
		store, err := storage.OpenSQLite(ctx, s.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite settings: %w", err)
		}
		a.closers = append(a.closers, store)
		return store, nil
	case config.BackendPostgres:
		store, err := storage.OpenPostgres(ctx, s.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres settings: %w", err)
		}
		a.closers = append(a.closers, store)
		return store, nil
	case config.BackendRedis:
		store, err := storage.OpenRedis(ctx, s.RedisAddr, s.RedisPrefix)
		if err != nil {
			return nil, fmt.Errorf("open redis settings: %w", err)
		}
		a.closers = append(a.closers, store)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown settings backend %q", s.Backend)
	}
}

// Watch publishes a digest every scheduler interval and serves /metrics
// until ctx is cancelled.
func (a *Application) Watch(ctx context.Context) error {
	var server *http.Server
	serverErr := make(chan error, 1)
	if a.cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
		server = &http.Server{Addr: a.cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()
		a.logger.Info("metrics endpoint listening", "addr", a.cfg.Metrics.Addr)
	}

	if !a.notifier.Configured() {
		a.logger.Warn("telegram notifier not configured; digests are only logged")
	}

	sched := usecase.NewScheduler(
		scheduler.NewTickerScheduler(a.cfg.Scheduler.Interval),
		a.rankings,
		a.logger.With("component", "scheduler"),
	)
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("watching featured products", "interval", a.cfg.Scheduler.Interval)

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-serverErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := sched.Stop(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("stop scheduler: %w", err))
	}
	if server != nil {
		if err := server.Shutdown(shutdownCtx); err != nil {
			runErr = errors.Join(runErr, fmt.Errorf("stop metrics server: %w", err))
		}
	}
	return runErr
}

// Close releases the settings backend.
func (a *Application) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
