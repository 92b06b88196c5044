package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"QueChoisir/internal/domain"
	"QueChoisir/internal/ports"
)

// DefaultKey names the persisted weight settings entry.
const DefaultKey = "weight_settings"

// Store owns the active WeightSettings and saves every mutation.
type Store struct {
	kv     ports.KeyValueStore
	key    string
	logger *slog.Logger

	mu      sync.RWMutex
	weights domain.WeightSettings
}

// NewStore starts with default weights; call Load to read persisted values.
func NewStore(kv ports.KeyValueStore, key string, logger *slog.Logger) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{
		kv:      kv,
		key:     key,
		logger:  logger,
		weights: domain.DefaultWeights(),
	}
}

// Load reads the persisted weights. Absent, unreadable or invalid data
// yields the defaults; it never fails.
func (s *Store) Load(ctx context.Context) domain.WeightSettings {
	weights := s.read(ctx)

	s.mu.Lock()
	s.weights = weights
	s.mu.Unlock()

	return weights
}

func (s *Store) read(ctx context.Context) domain.WeightSettings {
	if s.kv == nil {
		return domain.DefaultWeights()
	}

	raw, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, ports.ErrNotFound) {
			s.warn("weight settings unavailable, using defaults", "key", s.key, "error", err)
		}
		return domain.DefaultWeights()
	}

	var weights domain.WeightSettings
	if err := json.Unmarshal(raw, &weights); err != nil {
		s.warn("discarding corrupt weight settings", "key", s.key, "error", err)
		return domain.DefaultWeights()
	}
	if err := weights.Validate(); err != nil {
		s.warn("discarding invalid weight settings", "key", s.key, "error", err)
		return domain.DefaultWeights()
	}

	return weights
}

// Current returns the active weights.
func (s *Store) Current() domain.WeightSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.weights
}

// Update sets one criterion weight and persists the full settings.
func (s *Store) Update(ctx context.Context, criterion domain.Criterion, value float64) error {
	if err := domain.ValidateWeight(value); err != nil {
		return fmt.Errorf("update %s: %w", criterion, err)
	}
	if _, err := domain.ParseCriterion(string(criterion)); err != nil {
		return err
	}

	s.mu.Lock()
	s.weights = s.weights.With(criterion, value)
	snapshot := s.weights
	s.mu.Unlock()

	return s.save(ctx, snapshot)
}

// ResetToDefaults restores equal weights and persists them.
func (s *Store) ResetToDefaults(ctx context.Context) error {
	s.mu.Lock()
	s.weights = domain.DefaultWeights()
	snapshot := s.weights
	s.mu.Unlock()

	return s.save(ctx, snapshot)
}

// IsUsingDefaults reports whether all weights equal their defaults.
func (s *Store) IsUsingDefaults() bool {
	return s.Current().IsDefault()
}

// Normalized returns the active weights scaled to sum to 1.
func (s *Store) Normalized() domain.WeightSettings {
	return s.Current().Normalized()
}

func (s *Store) save(ctx context.Context, weights domain.WeightSettings) error {
	if s.kv == nil {
		return nil
	}

	raw, err := json.Marshal(weights)
	if err != nil {
		return fmt.Errorf("marshal weight settings: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		s.warn("persist weight settings failed", "key", s.key, "error", err)
		return fmt.Errorf("persist weight settings: %w", err)
	}
	return nil
}

func (s *Store) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
