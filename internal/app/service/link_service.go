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

// LinkService defines behaviour-level operations on links. Every call is
// scoped by the owner of the parent collection.
type LinkService interface {
	CreateLink(ctx context.Context, ownerID, collectionID string, input CreateLinkInput) (*model.Link, error)
	CreateLinks(ctx context.Context, ownerID, collectionID string, inputs []CreateLinkInput) ([]model.Link, error)
	ListLinks(ctx context.Context, ownerID, collectionID string) ([]model.Link, error)
	UpdateLink(ctx context.Context, ownerID, collectionID, id string, input UpdateLinkInput) (*model.Link, error)
	DeleteLink(ctx context.Context, ownerID, collectionID, id string) error
	ReorderLinks(ctx context.Context, ownerID, collectionID string, orderedIDs []string) ([]reorder.Result, error)
	NextOrderIndex(ctx context.Context, ownerID, collectionID string) (int, error)
}

type linkService struct {
	collections repository.CollectionRepository
	links       repository.LinkRepository
	invalidator catalog.Invalidator
}

// NewLinkService returns a service implementation backed by the given repositories.
func NewLinkService(collections repository.CollectionRepository, links repository.LinkRepository, invalidator catalog.Invalidator) LinkService {
	if invalidator == nil {
		invalidator = nopInvalidator{}
	}
	return &linkService{collections: collections, links: links, invalidator: invalidator}
}

// CreateLinkInput captures data required to create a link.
type CreateLinkInput struct {
	URL     string
	Name    string
	Comment *string
}

// UpdateLinkInput captures fields that can be changed on an existing link.
type UpdateLinkInput struct {
	URL     *string
	Name    *string
	Comment *string
}

func (s *linkService) authorize(ctx context.Context, ownerID, collectionID string) (*model.Collection, error) {
	collection, err := s.collections.GetOwned(ctx, collectionID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load collection: %w", err)
	}
	return collection, nil
}

func (s *linkService) CreateLink(ctx context.Context, ownerID, collectionID string, input CreateLinkInput) (*model.Link, error) {
	links, err := s.CreateLinks(ctx, ownerID, collectionID, []CreateLinkInput{input})
	if err != nil {
		return nil, err
	}
	return &links[0], nil
}

func (s *linkService) CreateLinks(ctx context.Context, ownerID, collectionID string, inputs []CreateLinkInput) ([]model.Link, error) {
	if _, err := s.authorize(ctx, ownerID, collectionID); err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return []model.Link{}, nil
	}

	next, err := s.nextOrderIndex(ctx, collectionID)
	if err != nil {
		return nil, err
	}

	orders := ordering.Batch(next, len(inputs))
	links := make([]model.Link, len(inputs))
	for i, in := range inputs {
		links[i] = model.Link{
			ID:           uuid.NewString(),
			CollectionID: collectionID,
			URL:          strings.TrimSpace(in.URL),
			Name:         strings.TrimSpace(in.Name),
			Comment:      NormalizeOptionalText(in.Comment),
			Order:        orders[i],
		}
	}

	if len(links) == 1 {
		err = s.links.Create(ctx, &links[0])
	} else {
		err = s.links.CreateMany(ctx, links)
	}
	if err != nil {
		return nil, fmt.Errorf("create links: %w", err)
	}
	s.invalidator.InvalidateCatalog(ctx, "links created")
	return links, nil
}

func (s *linkService) ListLinks(ctx context.Context, ownerID, collectionID string) ([]model.Link, error) {
	if _, err := s.authorize(ctx, ownerID, collectionID); err != nil {
		return nil, err
	}
	links, err := s.links.ListByCollection(ctx, collectionID)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	return links, nil
}

func (s *linkService) UpdateLink(ctx context.Context, ownerID, collectionID, id string, input UpdateLinkInput) (*model.Link, error) {
	if _, err := s.authorize(ctx, ownerID, collectionID); err != nil {
		return nil, err
	}

	link, err := s.links.Get(ctx, collectionID, id)
	if err != nil {
		return nil, fmt.Errorf("load link: %w", err)
	}

	if input.URL != nil {
		link.URL = strings.TrimSpace(*input.URL)
	}
	if input.Name != nil {
		link.Name = strings.TrimSpace(*input.Name)
	}
	if comment, ok := NormalizeOptionalTextUpdate(input.Comment); ok {
		link.Comment = comment
	}

	if err := s.links.Update(ctx, link); err != nil {
		return nil, fmt.Errorf("update link: %w", err)
	}
	s.invalidator.InvalidateCatalog(ctx, "link updated")
	return link, nil
}

func (s *linkService) DeleteLink(ctx context.Context, ownerID, collectionID, id string) error {
	if _, err := s.authorize(ctx, ownerID, collectionID); err != nil {
		return err
	}
	if err := s.links.Delete(ctx, collectionID, id); err != nil {
		return fmt.Errorf("delete link: %w", err)
	}
	s.invalidator.InvalidateCatalog(ctx, "link deleted")
	return nil
}

func (s *linkService) ReorderLinks(ctx context.Context, ownerID, collectionID string, orderedIDs []string) ([]reorder.Result, error) {
	if _, err := s.authorize(ctx, ownerID, collectionID); err != nil {
		return nil, err
	}

	scope := reorder.ScopeFuncs{
		OrdersFn: func(ctx context.Context) ([]model.OrderEntry, error) {
			return s.links.ListOrders(ctx, collectionID)
		},
		ApplyFn: func(ctx context.Context, updates []model.OrderUpdate) ([]int64, error) {
			return s.links.ApplyOrders(ctx, collectionID, updates)
		},
	}

	results, err := reorder.Apply(ctx, scope, orderedIDs)
	if err != nil {
		return nil, fmt.Errorf("reorder links: %w", err)
	}
	if len(results) > 0 {
		reorderWrites.WithLabelValues("link").Add(float64(len(results)))
		s.invalidator.InvalidateCatalog(ctx, "links reordered")
	}
	return results, nil
}

func (s *linkService) NextOrderIndex(ctx context.Context, ownerID, collectionID string) (int, error) {
	if _, err := s.authorize(ctx, ownerID, collectionID); err != nil {
		return 0, err
	}
	return s.nextOrderIndex(ctx, collectionID)
}

func (s *linkService) nextOrderIndex(ctx context.Context, collectionID string) (int, error) {
	next, err := ordering.NextIndex(ctx, func(ctx context.Context) (int, bool, error) {
		return s.links.MaxOrder(ctx, collectionID)
	}, ordering.LinkFloor)
	if err != nil {
		return 0, fmt.Errorf("next link order: %w", err)
	}
	return next, nil
}
