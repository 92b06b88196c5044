package ports

import (
	"context"
	"errors"
	"time"

	"QueChoisir/internal/domain"
)

// ErrNotFound is returned by key-value stores for absent keys.
var ErrNotFound = errors.New("not found")

// Analyzer scores a single product through an external reasoning service.
type Analyzer interface {
	Analyze(ctx context.Context, product domain.Product) (domain.ProductAnalysis, error)
}

// AnalysisObserver receives one notification per analyzer call.
type AnalysisObserver interface {
	AnalysisStarted()
	AnalysisFinished(elapsed time.Duration, err error)
}

// CatalogSource produces the products offered to the user.
type CatalogSource interface {
	Products(ctx context.Context) ([]domain.Product, error)
}

// KeyValueStore persists small named blobs (settings).
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Notifier streams ranking digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when recurring jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
