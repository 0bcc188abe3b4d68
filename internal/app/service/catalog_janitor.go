package service

import (
	"time"

	"go.uber.org/zap"
)

// Pruner drops expired cache entries and reports how many were removed.
type Pruner interface {
	Prune() int
}

// CatalogCacheJanitor periodically prunes expired catalog cache entries so
// memory is released even when no reads arrive.
type CatalogCacheJanitor struct {
	logger   *zap.Logger
	cache    Pruner
	interval time.Duration
	stopChan chan struct{}
}

// NewCatalogCacheJanitor creates a janitor running every interval.
func NewCatalogCacheJanitor(logger *zap.Logger, cache Pruner, interval time.Duration) *CatalogCacheJanitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &CatalogCacheJanitor{
		logger:   logger,
		cache:    cache,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the periodic sweep.
func (j *CatalogCacheJanitor) Start() {
	go j.run()
}

// Stop stops the periodic sweep.
func (j *CatalogCacheJanitor) Stop() {
	close(j.stopChan)
}

func (j *CatalogCacheJanitor) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.sweep()
		case <-j.stopChan:
			j.logger.Info("catalog cache janitor stopped")
			return
		}
	}
}

func (j *CatalogCacheJanitor) sweep() {
	if removed := j.cache.Prune(); removed > 0 {
		j.logger.Debug("pruned expired catalog cache entries", zap.Int("count", removed))
	}
}
