// Package catalog builds, caches and serves the public collection catalog.
package catalog

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/sifan077/LinkShelf/internal/app/model"
)

const updatedAtLayout = "2006-01-02T15:04:05.000Z07:00"

// Source supplies every public collection with its links loaded.
type Source interface {
	ListPublic(ctx context.Context) ([]model.Collection, error)
}

// Fetcher produces a catalog page for a query.
type Fetcher interface {
	Fetch(ctx context.Context, q Query) (*model.CatalogPage, error)
}

// Engine filters, sorts and paginates the public catalog.
type Engine struct {
	source Source
}

// NewEngine returns an Engine reading from source.
func NewEngine(source Source) *Engine {
	return &Engine{source: source}
}

// Fetch returns the page of the public catalog selected by q.
func (e *Engine) Fetch(ctx context.Context, q Query) (*model.CatalogPage, error) {
	start := time.Now()
	defer func() { fetchDuration.Observe(time.Since(start).Seconds()) }()

	q = q.Normalize()

	collections, err := e.source.ListPublic(ctx)
	if err != nil {
		return nil, fmt.Errorf("list public collections: %w", err)
	}

	filtered := filter(collections, q.Q)
	sortCollections(filtered, q.SortBy, q.SortOrder)

	return paginate(filtered, q), nil
}

func filter(collections []model.Collection, text string) []model.Collection {
	out := make([]model.Collection, 0, len(collections))
	needle := strings.ToLower(strings.TrimSpace(text))
	for _, c := range collections {
		if !c.IsPublic {
			continue
		}
		if needle != "" && !strings.Contains(haystack(c), needle) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func haystack(c model.Collection) string {
	desc := ""
	if c.Description != nil {
		desc = *c.Description
	}
	return strings.ToLower(c.Name + " " + desc)
}

// sortCollections orders by the selected key and breaks ties by id in the
// same direction, which makes the order total.
func sortCollections(collections []model.Collection, by, order string) {
	slices.SortFunc(collections, func(a, b model.Collection) int {
		var c int
		switch by {
		case SortByName:
			c = cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		default:
			c = a.UpdatedAt.Compare(b.UpdatedAt)
		}
		if c == 0 {
			c = cmp.Compare(a.ID, b.ID)
		}
		if order == SortDesc {
			return -c
		}
		return c
	})
}

func paginate(sorted []model.Collection, q Query) *model.CatalogPage {
	page := &model.CatalogPage{
		Items:      []model.CatalogItem{},
		TotalCount: len(sorted),
	}

	start := 0
	if q.Cursor != "" {
		for i, c := range sorted {
			if c.ID == q.Cursor {
				start = i + 1
				break
			}
		}
	}
	if start >= len(sorted) {
		return page
	}

	end := min(start+q.Limit, len(sorted))
	for _, c := range sorted[start:end] {
		page.Items = append(page.Items, toItem(c, q.LinkLimit))
	}
	if end < len(sorted) {
		next := sorted[end-1].ID
		page.NextCursor = &next
	}
	return page
}

func toItem(c model.Collection, linkLimit int) model.CatalogItem {
	links := slices.Clone(c.Links)
	slices.SortStableFunc(links, func(a, b model.Link) int {
		return cmp.Compare(a.Order, b.Order)
	})
	if len(links) > linkLimit {
		links = links[:linkLimit]
	}

	top := make([]model.CatalogLink, len(links))
	for i, l := range links {
		top[i] = model.CatalogLink{
			ID:      l.ID,
			Name:    l.Name,
			URL:     l.URL,
			Comment: l.Comment,
			Order:   l.Order,
		}
	}

	return model.CatalogItem{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		IsPublic:    true,
		UpdatedAt:   c.UpdatedAt.UTC().Format(updatedAtLayout),
		TopLinks:    top,
	}
}
