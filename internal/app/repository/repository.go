package repository

import (
	"context"
	"errors"

	"github.com/sifan077/LinkShelf/internal/app/model"
)

var (
	// ErrCollectionNotFound signals that the collection does not exist or is
	// not owned by the caller.
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrLinkNotFound signals that the link does not exist in the collection.
	ErrLinkNotFound = errors.New("link not found")
)

// CollectionRepository defines the owner-scoped data access contract for
// collections.
//
// Delete cascades to the collection's links atomically. Writes that change
// name, description, visibility or order advance UpdatedAt.
type CollectionRepository interface {
	Create(ctx context.Context, collection *model.Collection) error
	GetOwned(ctx context.Context, id, ownerID string) (*model.Collection, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Collection, error)
	Update(ctx context.Context, collection *model.Collection) error
	Delete(ctx context.Context, id, ownerID string) error
	MaxOrder(ctx context.Context, ownerID string) (int, bool, error)
	ListOrders(ctx context.Context, ownerID string) ([]model.OrderEntry, error)
	ApplyOrders(ctx context.Context, ownerID string, updates []model.OrderUpdate) ([]int64, error)
	// ListPublic returns every public collection with links sorted by order.
	ListPublic(ctx context.Context) ([]model.Collection, error)
}

// LinkRepository defines the data access contract for links scoped by their
// parent collection. Every write advances the parent collection's UpdatedAt
// in the same transaction.
type LinkRepository interface {
	Create(ctx context.Context, link *model.Link) error
	CreateMany(ctx context.Context, links []model.Link) error
	Get(ctx context.Context, collectionID, id string) (*model.Link, error)
	ListByCollection(ctx context.Context, collectionID string) ([]model.Link, error)
	Update(ctx context.Context, link *model.Link) error
	Delete(ctx context.Context, collectionID, id string) error
	MaxOrder(ctx context.Context, collectionID string) (int, bool, error)
	ListOrders(ctx context.Context, collectionID string) ([]model.OrderEntry, error)
	ApplyOrders(ctx context.Context, collectionID string, updates []model.OrderUpdate) ([]int64, error)
}
