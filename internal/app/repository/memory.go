package repository

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/sifan077/LinkShelf/internal/app/model"
)

// MemoryStore is an in-process implementation of both repositories. It keeps
// the same cascade and timestamp contract as the GORM adapter and backs the
// "memory" storage driver and the service tests.
type MemoryStore struct {
	mu          sync.RWMutex
	now         func() time.Time
	collections map[string]model.Collection
	links       map[string]model.Link
}

// NewMemoryStore returns an empty store. A nil clock defaults to time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		now:         now,
		collections: make(map[string]model.Collection),
		links:       make(map[string]model.Link),
	}
}

// Collections exposes the store as a CollectionRepository.
func (s *MemoryStore) Collections() CollectionRepository { return memoryCollections{s} }

// Links exposes the store as a LinkRepository.
func (s *MemoryStore) Links() LinkRepository { return memoryLinks{s} }

func cloneText(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (s *MemoryStore) linksOfLocked(collectionID string) []model.Link {
	var out []model.Link
	for _, l := range s.links {
		if l.CollectionID == collectionID {
			l.Comment = cloneText(l.Comment)
			out = append(out, l)
		}
	}
	slices.SortFunc(out, func(a, b model.Link) int {
		if c := cmp.Compare(a.Order, b.Order); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

func (s *MemoryStore) touchLocked(collectionID string) {
	if c, ok := s.collections[collectionID]; ok {
		c.UpdatedAt = s.now()
		s.collections[collectionID] = c
	}
}

type memoryCollections struct{ s *MemoryStore }

func (m memoryCollections) Create(_ context.Context, collection *model.Collection) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	now := m.s.now()
	if collection.CreatedAt.IsZero() {
		collection.CreatedAt = now
	}
	collection.UpdatedAt = now

	stored := *collection
	stored.Description = cloneText(collection.Description)
	stored.Links = nil
	m.s.collections[collection.ID] = stored
	return nil
}

func (m memoryCollections) GetOwned(_ context.Context, id, ownerID string) (*model.Collection, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	c, ok := m.s.collections[id]
	if !ok || c.CreatedByID != ownerID {
		return nil, ErrCollectionNotFound
	}
	c.Description = cloneText(c.Description)
	c.Links = m.s.linksOfLocked(id)
	return &c, nil
}

func (m memoryCollections) ListByOwner(_ context.Context, ownerID string) ([]model.Collection, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	var out []model.Collection
	for _, c := range m.s.collections {
		if c.CreatedByID == ownerID {
			c.Description = cloneText(c.Description)
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b model.Collection) int {
		if c := cmp.Compare(a.Order, b.Order); c != 0 {
			return c
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (m memoryCollections) Update(_ context.Context, collection *model.Collection) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	stored, ok := m.s.collections[collection.ID]
	if !ok || stored.CreatedByID != collection.CreatedByID {
		return ErrCollectionNotFound
	}
	stored.Name = collection.Name
	stored.Description = cloneText(collection.Description)
	stored.IsPublic = collection.IsPublic
	stored.UpdatedAt = m.s.now()
	m.s.collections[collection.ID] = stored

	*collection = stored
	collection.Description = cloneText(stored.Description)
	return nil
}

func (m memoryCollections) Delete(_ context.Context, id, ownerID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	c, ok := m.s.collections[id]
	if !ok || c.CreatedByID != ownerID {
		return ErrCollectionNotFound
	}
	for linkID, l := range m.s.links {
		if l.CollectionID == id {
			delete(m.s.links, linkID)
		}
	}
	delete(m.s.collections, id)
	return nil
}

func (m memoryCollections) MaxOrder(_ context.Context, ownerID string) (int, bool, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	top, found := 0, false
	for _, c := range m.s.collections {
		if c.CreatedByID != ownerID {
			continue
		}
		if !found || c.Order > top {
			top, found = c.Order, true
		}
	}
	return top, found, nil
}

func (m memoryCollections) ListOrders(_ context.Context, ownerID string) ([]model.OrderEntry, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	var out []model.OrderEntry
	for _, c := range m.s.collections {
		if c.CreatedByID == ownerID {
			out = append(out, model.OrderEntry{ID: c.ID, Order: c.Order})
		}
	}
	return out, nil
}

func (m memoryCollections) ApplyOrders(_ context.Context, ownerID string, updates []model.OrderUpdate) ([]int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	now := m.s.now()
	counts := make([]int64, len(updates))
	for i, u := range updates {
		c, ok := m.s.collections[u.ID]
		if !ok || c.CreatedByID != ownerID {
			continue
		}
		c.Order = u.Order
		c.UpdatedAt = now
		m.s.collections[u.ID] = c
		counts[i] = 1
	}
	return counts, nil
}

func (m memoryCollections) ListPublic(_ context.Context) ([]model.Collection, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	var out []model.Collection
	for _, c := range m.s.collections {
		if !c.IsPublic {
			continue
		}
		c.Description = cloneText(c.Description)
		c.Links = m.s.linksOfLocked(c.ID)
		out = append(out, c)
	}
	return out, nil
}

type memoryLinks struct{ s *MemoryStore }

func (m memoryLinks) insertLocked(link *model.Link, now time.Time) {
	if link.CreatedAt.IsZero() {
		link.CreatedAt = now
	}
	link.UpdatedAt = now
	stored := *link
	stored.Comment = cloneText(link.Comment)
	m.s.links[link.ID] = stored
}

func (m memoryLinks) Create(_ context.Context, link *model.Link) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	m.insertLocked(link, m.s.now())
	m.s.touchLocked(link.CollectionID)
	return nil
}

func (m memoryLinks) CreateMany(_ context.Context, links []model.Link) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	now := m.s.now()
	for i := range links {
		m.insertLocked(&links[i], now)
	}
	for i := range links {
		m.s.touchLocked(links[i].CollectionID)
	}
	return nil
}

func (m memoryLinks) Get(_ context.Context, collectionID, id string) (*model.Link, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	l, ok := m.s.links[id]
	if !ok || l.CollectionID != collectionID {
		return nil, ErrLinkNotFound
	}
	l.Comment = cloneText(l.Comment)
	return &l, nil
}

func (m memoryLinks) ListByCollection(_ context.Context, collectionID string) ([]model.Link, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	return m.s.linksOfLocked(collectionID), nil
}

func (m memoryLinks) Update(_ context.Context, link *model.Link) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	stored, ok := m.s.links[link.ID]
	if !ok || stored.CollectionID != link.CollectionID {
		return ErrLinkNotFound
	}
	stored.URL = link.URL
	stored.Name = link.Name
	stored.Comment = cloneText(link.Comment)
	stored.UpdatedAt = m.s.now()
	m.s.links[link.ID] = stored
	m.s.touchLocked(link.CollectionID)

	*link = stored
	link.Comment = cloneText(stored.Comment)
	return nil
}

func (m memoryLinks) Delete(_ context.Context, collectionID, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	l, ok := m.s.links[id]
	if !ok || l.CollectionID != collectionID {
		return ErrLinkNotFound
	}
	delete(m.s.links, id)
	m.s.touchLocked(collectionID)
	return nil
}

func (m memoryLinks) MaxOrder(_ context.Context, collectionID string) (int, bool, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	top, found := 0, false
	for _, l := range m.s.links {
		if l.CollectionID != collectionID {
			continue
		}
		if !found || l.Order > top {
			top, found = l.Order, true
		}
	}
	return top, found, nil
}

func (m memoryLinks) ListOrders(_ context.Context, collectionID string) ([]model.OrderEntry, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	var out []model.OrderEntry
	for _, l := range m.s.links {
		if l.CollectionID == collectionID {
			out = append(out, model.OrderEntry{ID: l.ID, Order: l.Order})
		}
	}
	return out, nil
}

func (m memoryLinks) ApplyOrders(_ context.Context, collectionID string, updates []model.OrderUpdate) ([]int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	now := m.s.now()
	counts := make([]int64, len(updates))
	for i, u := range updates {
		l, ok := m.s.links[u.ID]
		if !ok || l.CollectionID != collectionID {
			continue
		}
		l.Order = u.Order
		l.UpdatedAt = now
		m.s.links[u.ID] = l
		counts[i] = 1
	}
	m.s.touchLocked(collectionID)
	return counts, nil
}
