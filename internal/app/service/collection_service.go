package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sifan077/LinkShelf/internal/app/catalog"
	"github.com/sifan077/LinkShelf/internal/app/model"
	"github.com/sifan077/LinkShelf/internal/app/ordering"
	"github.com/sifan077/LinkShelf/internal/app/reorder"
	"github.com/sifan077/LinkShelf/internal/app/repository"
)

// CollectionService defines behaviour-level operations on a user's collections.
type CollectionService interface {
	CreateCollection(ctx context.Context, ownerID string, input CreateCollectionInput) (*model.Collection, error)
	GetCollection(ctx context.Context, ownerID, id string) (*model.Collection, error)
	ListCollections(ctx context.Context, ownerID string) ([]model.Collection, error)
	UpdateCollection(ctx context.Context, ownerID, id string, input UpdateCollectionInput) (*model.Collection, error)
	DeleteCollection(ctx context.Context, ownerID, id string) error
	ReorderCollections(ctx context.Context, ownerID string, orderedIDs []string) ([]reorder.Result, error)
	NextOrderIndex(ctx context.Context, ownerID string) (int, error)
}

type collectionService struct {
	repo        repository.CollectionRepository
	invalidator catalog.Invalidator
}

// NewCollectionService returns a service backed by repo. Every mutation is
// reported to invalidator.
func NewCollectionService(repo repository.CollectionRepository, invalidator catalog.Invalidator) CollectionService {
	if invalidator == nil {
		invalidator = nopInvalidator{}
	}
	return &collectionService{repo: repo, invalidator: invalidator}
}

// CreateCollectionInput captures data required to create a collection.
type CreateCollectionInput struct {
	Name        string
	Description *string
	IsPublic    bool
}

// UpdateCollectionInput captures fields that can be changed on an existing
// collection. Nil fields are left untouched; an empty Description clears it.
type UpdateCollectionInput struct {
	Name        *string
	Description *string
	IsPublic    *bool
}

func (s *collectionService) CreateCollection(ctx context.Context, ownerID string, input CreateCollectionInput) (*model.Collection, error) {
	next, err := s.NextOrderIndex(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	collection := &model.Collection{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(input.Name),
		Description: NormalizeOptionalText(input.Description),
		IsPublic:    input.IsPublic,
		Order:       next,
		CreatedByID: ownerID,
	}

	if err := s.repo.Create(ctx, collection); err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	s.invalidator.InvalidateCatalog(ctx, "collection created")
	return collection, nil
}

func (s *collectionService) GetCollection(ctx context.Context, ownerID, id string) (*model.Collection, error) {
	collection, err := s.repo.GetOwned(ctx, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get collection: %w", err)
	}
	return collection, nil
}

func (s *collectionService) ListCollections(ctx context.Context, ownerID string) ([]model.Collection, error) {
	collections, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return collections, nil
}

func (s *collectionService) UpdateCollection(ctx context.Context, ownerID, id string, input UpdateCollectionInput) (*model.Collection, error) {
	collection, err := s.repo.GetOwned(ctx, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load collection: %w", err)
	}

	if input.Name != nil {
		collection.Name = strings.TrimSpace(*input.Name)
	}
	if desc, ok := NormalizeOptionalTextUpdate(input.Description); ok {
		collection.Description = desc
	}
	if input.IsPublic != nil {
		collection.IsPublic = *input.IsPublic
	}

	collection.Links = nil
	if err := s.repo.Update(ctx, collection); err != nil {
		return nil, fmt.Errorf("update collection: %w", err)
	}
	s.invalidator.InvalidateCatalog(ctx, "collection updated")
	return collection, nil
}

func (s *collectionService) DeleteCollection(ctx context.Context, ownerID, id string) error {
	if err := s.repo.Delete(ctx, id, ownerID); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	s.invalidator.InvalidateCatalog(ctx, "collection deleted")
	return nil
}

func (s *collectionService) ReorderCollections(ctx context.Context, ownerID string, orderedIDs []string) ([]reorder.Result, error) {
	scope := reorder.ScopeFuncs{
		OrdersFn: func(ctx context.Context) ([]model.OrderEntry, error) {
			return s.repo.ListOrders(ctx, ownerID)
		},
		ApplyFn: func(ctx context.Context, updates []model.OrderUpdate) ([]int64, error) {
			return s.repo.ApplyOrders(ctx, ownerID, updates)
		},
	}

	results, err := reorder.Apply(ctx, scope, orderedIDs)
	if err != nil {
		return nil, fmt.Errorf("reorder collections: %w", err)
	}
	if len(results) > 0 {
		reorderWrites.WithLabelValues("collection").Add(float64(len(results)))
		s.invalidator.InvalidateCatalog(ctx, "collections reordered")
	}
	return results, nil
}

func (s *collectionService) NextOrderIndex(ctx context.Context, ownerID string) (int, error) {
	next, err := ordering.NextIndex(ctx, func(ctx context.Context) (int, bool, error) {
		return s.repo.MaxOrder(ctx, ownerID)
	}, ordering.CollectionFloor)
	if err != nil {
		return 0, fmt.Errorf("next collection order: %w", err)
	}
	return next, nil
}

type nopInvalidator struct{}

func (nopInvalidator) InvalidateCatalog(context.Context, string) {}
