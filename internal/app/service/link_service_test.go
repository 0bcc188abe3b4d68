package service

import (
	"context"
	"testing"

	"github.com/sifan077/LinkShelf/internal/app/model"
	"github.com/sifan077/LinkShelf/internal/app/reorder"
	"github.com/sifan077/LinkShelf/internal/app/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linkIDs(links []model.Link) []string {
	ids := make([]string, len(links))
	for i, l := range links {
		ids[i] = l.ID
	}
	return ids
}

func newCollection(t *testing.T, f *fixture, owner string) *model.Collection {
	t.Helper()
	c, err := f.collections.CreateCollection(context.Background(), owner, CreateCollectionInput{Name: "links", IsPublic: true})
	require.NoError(t, err)
	return c
}

func TestLinkService_NextOrderIndexStartsAtOne(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := newCollection(t, f, "u1")

	next, err := f.links.NextOrderIndex(ctx, "u1", c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, next)

	link, err := f.links.CreateLink(ctx, "u1", c.ID, CreateLinkInput{URL: "https://go.dev", Name: "Go"})
	require.NoError(t, err)
	assert.Equal(t, 1, link.Order)

	next, err = f.links.NextOrderIndex(ctx, "u1", c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, next)
}

func TestLinkService_CreateLinksAppendsInInputOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := newCollection(t, f, "u1")
	_, err := f.links.CreateLink(ctx, "u1", c.ID, CreateLinkInput{URL: "https://a.example", Name: "a"})
	require.NoError(t, err)

	created, err := f.links.CreateLinks(ctx, "u1", c.ID, []CreateLinkInput{
		{URL: "https://b.example", Name: "b", Comment: strPtr("  ")},
		{URL: "https://c.example", Name: " c ", Comment: strPtr(" note ")},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, 2, created[0].Order)
	assert.Equal(t, 3, created[1].Order)
	assert.Nil(t, created[0].Comment)
	assert.Equal(t, "note", *created[1].Comment)
	assert.Equal(t, "c", created[1].Name)

	listed, err := f.links.ListLinks(ctx, "u1", c.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 3)
}

func TestLinkService_WritesTouchParentAndInvalidate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := newCollection(t, f, "u1")
	before := f.invalidator.count()

	link, err := f.links.CreateLink(ctx, "u1", c.ID, CreateLinkInput{URL: "https://a.example", Name: "a"})
	require.NoError(t, err)

	touched, err := f.collections.GetCollection(ctx, "u1", c.ID)
	require.NoError(t, err)
	assert.True(t, touched.UpdatedAt.After(c.UpdatedAt))

	_, err = f.links.UpdateLink(ctx, "u1", c.ID, link.ID, UpdateLinkInput{Comment: strPtr("hi")})
	require.NoError(t, err)
	require.NoError(t, f.links.DeleteLink(ctx, "u1", c.ID, link.ID))

	assert.Equal(t, before+3, f.invalidator.count())
}

func TestLinkService_UpdatePartial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := newCollection(t, f, "u1")
	link, err := f.links.CreateLink(ctx, "u1", c.ID, CreateLinkInput{URL: "https://a.example", Name: "a", Comment: strPtr("keep")})
	require.NoError(t, err)

	updated, err := f.links.UpdateLink(ctx, "u1", c.ID, link.ID, UpdateLinkInput{Name: strPtr("renamed")})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)
	assert.Equal(t, "https://a.example", updated.URL)
	assert.Equal(t, "keep", *updated.Comment)

	updated, err = f.links.UpdateLink(ctx, "u1", c.ID, link.ID, UpdateLinkInput{Comment: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, updated.Comment)
}

func TestLinkService_ForeignOwnerIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := newCollection(t, f, "u1")

	_, err := f.links.CreateLink(ctx, "intruder", c.ID, CreateLinkInput{URL: "https://a.example", Name: "a"})
	assert.ErrorIs(t, err, repository.ErrCollectionNotFound)

	_, err = f.links.ListLinks(ctx, "intruder", c.ID)
	assert.ErrorIs(t, err, repository.ErrCollectionNotFound)
}

func TestLinkService_DeleteMissingLink(t *testing.T) {
	f := newFixture(t)
	c := newCollection(t, f, "u1")

	err := f.links.DeleteLink(context.Background(), "u1", c.ID, "missing")
	assert.ErrorIs(t, err, repository.ErrLinkNotFound)
}

func TestLinkService_Reorder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := newCollection(t, f, "u1")
	created, err := f.links.CreateLinks(ctx, "u1", c.ID, []CreateLinkInput{
		{URL: "https://a.example", Name: "a"},
		{URL: "https://b.example", Name: "b"},
		{URL: "https://c.example", Name: "c"},
	})
	require.NoError(t, err)
	ids := linkIDs(created)
	desired := []string{ids[2], ids[0], ids[1]}

	// Positions are rewritten to list indexes; a and b already sit at 1 and 2.
	results, err := f.links.ReorderLinks(ctx, "u1", c.ID, desired)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	listed, err := f.links.ListLinks(ctx, "u1", c.ID)
	require.NoError(t, err)
	assert.Equal(t, desired, linkIDs(listed))

	results, err = f.links.ReorderLinks(ctx, "u1", c.ID, desired)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestLinkService_ReorderRejectsLinkFromOtherCollection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mine := newCollection(t, f, "u1")
	other := newCollection(t, f, "u1")
	a, err := f.links.CreateLink(ctx, "u1", mine.ID, CreateLinkInput{URL: "https://a.example", Name: "a"})
	require.NoError(t, err)
	b, err := f.links.CreateLink(ctx, "u1", mine.ID, CreateLinkInput{URL: "https://b.example", Name: "b"})
	require.NoError(t, err)
	x, err := f.links.CreateLink(ctx, "u1", other.ID, CreateLinkInput{URL: "https://x.example", Name: "x"})
	require.NoError(t, err)

	_, err = f.links.ReorderLinks(ctx, "u1", mine.ID, []string{b.ID, x.ID, a.ID})
	require.ErrorIs(t, err, reorder.ErrForbidden)

	listed, err := f.links.ListLinks(ctx, "u1", mine.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, b.ID}, linkIDs(listed))
	assert.Equal(t, 1, listed[0].Order)
	assert.Equal(t, 2, listed[1].Order)
}
