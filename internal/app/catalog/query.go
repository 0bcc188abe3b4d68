package catalog

import (
	"encoding/json"
	"strings"
)

const (
	DefaultLimit     = 12
	MaxLimit         = 50
	DefaultLinkLimit = 10
	MaxLinkLimit     = 10

	SortByUpdatedAt = "updatedAt"
	SortByName      = "name"

	SortDesc = "desc"
	SortAsc  = "asc"
)

// Query selects one page of the public catalog.
type Query struct {
	Q         string `json:"q"`
	Limit     int    `json:"limit"`
	Cursor    string `json:"cursor"`
	LinkLimit int    `json:"linkLimit"`
	SortBy    string `json:"sortBy"`
	SortOrder string `json:"sortOrder"`
}

// Normalize trims text fields, applies defaults and clamps numeric bounds.
// Out-of-range values are clamped rather than rejected.
func (q Query) Normalize() Query {
	q.Q = strings.TrimSpace(q.Q)
	q.Cursor = strings.TrimSpace(q.Cursor)
	q.Limit = clamp(q.Limit, DefaultLimit, MaxLimit)
	q.LinkLimit = clamp(q.LinkLimit, DefaultLinkLimit, MaxLinkLimit)

	switch q.SortBy {
	case SortByUpdatedAt, SortByName:
	default:
		q.SortBy = SortByUpdatedAt
	}
	switch strings.ToLower(q.SortOrder) {
	case SortAsc:
		q.SortOrder = SortAsc
	default:
		q.SortOrder = SortDesc
	}
	return q
}

func clamp(v, def, hi int) int {
	switch {
	case v == 0:
		return def
	case v < 1:
		return 1
	case v > hi:
		return hi
	}
	return v
}

// CacheKey returns the deterministic cache key of q. Queries that normalize
// to the same value share a key.
func CacheKey(q Query) string {
	// Marshalling a struct of strings and ints cannot fail; field order is
	// fixed by the struct declaration.
	b, _ := json.Marshal(q.Normalize())
	return string(b)
}
