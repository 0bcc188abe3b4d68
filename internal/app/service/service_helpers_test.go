package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sifan077/LinkShelf/internal/app/repository"
)

type recordingInvalidator struct {
	mu      sync.Mutex
	reasons []string
}

func (r *recordingInvalidator) InvalidateCatalog(_ context.Context, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reasons = append(r.reasons, reason)
}

func (r *recordingInvalidator) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reasons)
}

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

type fixture struct {
	store       *repository.MemoryStore
	invalidator *recordingInvalidator
	collections CollectionService
	links       LinkService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := &stepClock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	store := repository.NewMemoryStore(clock.Now)
	inv := &recordingInvalidator{}
	return &fixture{
		store:       store,
		invalidator: inv,
		collections: NewCollectionService(store.Collections(), inv),
		links:       NewLinkService(store.Collections(), store.Links(), inv),
	}
}
