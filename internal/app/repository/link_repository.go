package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sifan077/LinkShelf/internal/app/model"
	"gorm.io/gorm"
)

type linkRepository struct {
	db *gorm.DB
}

// NewLinkRepository returns a GORM-backed LinkRepository.
func NewLinkRepository(db *gorm.DB) LinkRepository {
	return &linkRepository{db: db}
}

func (r *linkRepository) Create(ctx context.Context, link *model.Link) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(link).Error; err != nil {
			return err
		}
		return touchCollection(tx, link.CollectionID)
	})
}

func (r *linkRepository) CreateMany(ctx context.Context, links []model.Link) error {
	if len(links) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&links).Error; err != nil {
			return err
		}
		touched := make(map[string]struct{})
		for _, l := range links {
			if _, ok := touched[l.CollectionID]; ok {
				continue
			}
			touched[l.CollectionID] = struct{}{}
			if err := touchCollection(tx, l.CollectionID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *linkRepository) Get(ctx context.Context, collectionID, id string) (*model.Link, error) {
	var link model.Link
	if err := r.db.WithContext(ctx).
		Where("id = ? AND collection_id = ?", id, collectionID).
		First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	return &link, nil
}

func (r *linkRepository) ListByCollection(ctx context.Context, collectionID string) ([]model.Link, error) {
	var result []model.Link
	if err := orderedLinks(r.db.WithContext(ctx)).
		Where("collection_id = ?", collectionID).
		Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func (r *linkRepository) Update(ctx context.Context, link *model.Link) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Link{}).
			Where("id = ? AND collection_id = ?", link.ID, link.CollectionID).
			Updates(map[string]interface{}{
				"url":        link.URL,
				"name":       link.Name,
				"comment":    link.Comment,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrLinkNotFound
		}
		if err := touchCollection(tx, link.CollectionID); err != nil {
			return err
		}
		return tx.Where("id = ?", link.ID).First(link).Error
	})
}

func (r *linkRepository) Delete(ctx context.Context, collectionID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND collection_id = ?", id, collectionID).Delete(&model.Link{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrLinkNotFound
		}
		return touchCollection(tx, collectionID)
	})
}

func (r *linkRepository) MaxOrder(ctx context.Context, collectionID string) (int, bool, error) {
	return maxOrder(r.db.WithContext(ctx).Model(&model.Link{}).Where("collection_id = ?", collectionID))
}

func (r *linkRepository) ListOrders(ctx context.Context, collectionID string) ([]model.OrderEntry, error) {
	var entries []model.OrderEntry
	if err := r.db.WithContext(ctx).
		Model(&model.Link{}).
		Select("id", "sort_order AS \"order\"").
		Where("collection_id = ?", collectionID).
		Scan(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *linkRepository) ApplyOrders(ctx context.Context, collectionID string, updates []model.OrderUpdate) ([]int64, error) {
	counts := make([]int64, len(updates))
	now := time.Now()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, u := range updates {
			result := tx.Model(&model.Link{}).
				Where("id = ? AND collection_id = ?", u.ID, collectionID).
				Updates(map[string]interface{}{
					"sort_order": u.Order,
					"updated_at": now,
				})
			if result.Error != nil {
				return result.Error
			}
			counts[i] = result.RowsAffected
		}
		return touchCollection(tx, collectionID)
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}
