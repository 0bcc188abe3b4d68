package catalog

import (
	"context"
	"fmt"

	"github.com/sifan077/LinkShelf/internal/app/model"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Invalidator clears catalog data after a mutation that may change it.
type Invalidator interface {
	InvalidateCatalog(ctx context.Context, reason string)
}

// Service serves catalog pages through the cache, computing misses with the
// fetcher. Concurrent misses for the same key share one fetch.
type Service struct {
	fetcher Fetcher
	cache   *Cache
	logger  *zap.Logger
	group   singleflight.Group
}

// NewService wires a fetcher behind cache.
func NewService(fetcher Fetcher, cache *Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{fetcher: fetcher, cache: cache, logger: logger}
}

// Fetch returns the page for q and whether it was served from cache.
//
// Flights are keyed by the cache generation, so a caller that arrives after an
// invalidation never joins a fetch that started before it. The shared fetch is
// detached from any single caller's cancellation; each caller stops waiting
// when its own ctx is done.
func (s *Service) Fetch(ctx context.Context, q Query) (*model.CatalogPage, bool, error) {
	q = q.Normalize()

	if page, ok := s.cache.Get(q); ok {
		return page, true, nil
	}

	gen := s.cache.Generation()
	key := CacheKey(q)
	flight := fmt.Sprintf("%d:%s", gen, key)
	fetchCtx := context.WithoutCancel(ctx)

	ch := s.group.DoChan(flight, func() (interface{}, error) {
		page, err := s.fetcher.Fetch(fetchCtx, q)
		if err != nil {
			return nil, err
		}
		if !s.cache.SetIfGeneration(q, page, gen) && s.cache.Enabled() {
			s.logger.Debug("discarding catalog page computed before invalidation", zap.String("key", key))
		}
		return page, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val.(*model.CatalogPage), false, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

// InvalidateCatalog clears the local cache.
func (s *Service) InvalidateCatalog(ctx context.Context, reason string) {
	s.cache.InvalidateCatalog(ctx, reason)
}
