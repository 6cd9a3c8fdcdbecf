package taxonomy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pmd-directory/internal/observe"
	"pmd-directory/internal/store"

	"go.uber.org/zap"
)

// CacheKey is where the last good remote taxonomy is cached.
const CacheKey = "directory:taxonomy"

// Store is the refreshable taxonomy cache. It always holds a usable
// taxonomy: the built-in default until a refresh succeeds.
type Store struct {
	fetcher Fetcher
	kv      store.KV
	ttl     time.Duration
	logger  *zap.Logger
	hub     *observe.Broadcaster[*Taxonomy]
}

// NewStore creates a store seeded with the built-in taxonomy. fetcher and kv
// may be nil.
func NewStore(fetcher Fetcher, kv store.KV, ttl time.Duration, logger *zap.Logger) *Store {
	s := &Store{
		fetcher: fetcher,
		kv:      kv,
		ttl:     ttl,
		logger:  logger,
		hub:     observe.NewBroadcaster[*Taxonomy](),
	}
	s.hub.Publish(Default())
	return s
}

// Current returns the taxonomy in effect.
func (s *Store) Current() *Taxonomy {
	t, _ := s.hub.Latest()
	return t
}

// Observe streams the current taxonomy and every refresh.
func (s *Store) Observe(ctx context.Context) <-chan *Taxonomy {
	return s.hub.Observe(ctx)
}

// Refresh pulls from the remote source, falling back to the KV cache and
// finally to the taxonomy already in effect. It only returns an error when
// neither source produced a taxonomy.
func (s *Store) Refresh(ctx context.Context) error {
	t, fetchErr := s.fetch(ctx)
	if fetchErr == nil {
		s.save(ctx, t)
		s.publish(t, "remote")
		return nil
	}

	s.logger.Warn("Taxonomy remote refresh failed, trying cache", zap.Error(fetchErr))

	t, cacheErr := s.loadCached(ctx)
	if cacheErr == nil {
		s.publish(t, "cache")
		return nil
	}

	s.logger.Warn("Taxonomy cache unavailable, keeping current taxonomy",
		zap.String("version", s.Current().Version),
		zap.Error(cacheErr),
	)
	return fmt.Errorf("taxonomy refresh failed: %w", errors.Join(fetchErr, cacheErr))
}

// StartRefresh refreshes every interval until ctx is done.
func (s *Store) StartRefresh(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.Refresh(ctx)
		}
	}
}

func (s *Store) fetch(ctx context.Context) (*Taxonomy, error) {
	if s.fetcher == nil {
		return nil, errors.New("no remote taxonomy source configured")
	}
	return s.fetcher.Fetch(ctx)
}

func (s *Store) loadCached(ctx context.Context) (*Taxonomy, error) {
	if s.kv == nil {
		return nil, store.ErrMiss
	}
	raw, err := s.kv.Get(ctx, CacheKey)
	if err != nil {
		return nil, err
	}
	var t Taxonomy
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return nil, fmt.Errorf("failed to decode cached taxonomy: %w", err)
	}
	return &t, nil
}

func (s *Store) save(ctx context.Context, t *Taxonomy) {
	if s.kv == nil {
		return
	}
	raw, err := json.Marshal(t)
	if err != nil {
		s.logger.Error("Failed to marshal taxonomy", zap.Error(err))
		return
	}
	if err := s.kv.Set(ctx, CacheKey, string(raw), s.ttl); err != nil {
		s.logger.Warn("Failed to cache taxonomy", zap.Error(err))
	}
}

func (s *Store) publish(t *Taxonomy, source string) {
	if cur := s.Current(); cur != nil && cur.Version == t.Version && t.Version != "" {
		s.logger.Debug("Taxonomy unchanged", zap.String("version", t.Version), zap.String("source", source))
		return
	}
	s.hub.Publish(t)
	s.logger.Info("Taxonomy refreshed",
		zap.String("version", t.Version),
		zap.String("source", source),
		zap.Int("unit_count", len(t.Units)),
	)
}
