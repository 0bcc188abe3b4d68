package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryNormalize_Defaults(t *testing.T) {
	q := Query{}.Normalize()

	assert.Equal(t, DefaultLimit, q.Limit)
	assert.Equal(t, DefaultLinkLimit, q.LinkLimit)
	assert.Equal(t, SortByUpdatedAt, q.SortBy)
	assert.Equal(t, SortDesc, q.SortOrder)
}

func TestQueryNormalize_Clamps(t *testing.T) {
	tests := []struct {
		name      string
		in        Query
		limit     int
		linkLimit int
	}{
		{"above max", Query{Limit: 500, LinkLimit: 99}, MaxLimit, MaxLinkLimit},
		{"negative", Query{Limit: -3, LinkLimit: -1}, 1, 1},
		{"in range", Query{Limit: 7, LinkLimit: 3}, 7, 3},
		{"boundaries", Query{Limit: 50, LinkLimit: 1}, 50, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.in.Normalize()
			assert.Equal(t, tt.limit, q.Limit)
			assert.Equal(t, tt.linkLimit, q.LinkLimit)
		})
	}
}

func TestQueryNormalize_SortFallbacks(t *testing.T) {
	q := Query{SortBy: "bogus", SortOrder: "sideways"}.Normalize()
	assert.Equal(t, SortByUpdatedAt, q.SortBy)
	assert.Equal(t, SortDesc, q.SortOrder)

	q = Query{SortBy: SortByName, SortOrder: "ASC"}.Normalize()
	assert.Equal(t, SortByName, q.SortBy)
	assert.Equal(t, SortAsc, q.SortOrder)
}

func TestCacheKey_EmptyAndMissingTextAreEqual(t *testing.T) {
	base := Query{Limit: 5, LinkLimit: 3}
	withEmpty := base
	withEmpty.Q = ""
	withBlank := base
	withBlank.Q = "   "

	assert.Equal(t, CacheKey(base), CacheKey(withEmpty))
	assert.Equal(t, CacheKey(base), CacheKey(withBlank))
}

func TestCacheKey_DifferentTextDiffers(t *testing.T) {
	a := Query{Q: "go"}
	b := Query{Q: "rust"}
	assert.NotEqual(t, CacheKey(a), CacheKey(b))
}

func TestCacheKey_DefaultsMatchExplicitValues(t *testing.T) {
	implicit := Query{}
	explicit := Query{Limit: DefaultLimit, LinkLimit: DefaultLinkLimit, SortBy: SortByUpdatedAt, SortOrder: SortDesc}
	assert.Equal(t, CacheKey(implicit), CacheKey(explicit))
}

func TestCacheKey_CursorParticipates(t *testing.T) {
	assert.NotEqual(t, CacheKey(Query{Cursor: "a"}), CacheKey(Query{Cursor: "b"}))
	assert.Equal(t, CacheKey(Query{}), CacheKey(Query{Cursor: ""}))
}
