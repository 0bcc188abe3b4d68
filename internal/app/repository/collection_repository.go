package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sifan077/LinkShelf/internal/app/model"
	"gorm.io/gorm"
)

type collectionRepository struct {
	db *gorm.DB
}

// NewCollectionRepository returns a GORM-backed CollectionRepository.
func NewCollectionRepository(db *gorm.DB) CollectionRepository {
	return &collectionRepository{db: db}
}

func orderedLinks(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC").Order("id ASC")
}

func (r *collectionRepository) Create(ctx context.Context, collection *model.Collection) error {
	return r.db.WithContext(ctx).Omit("Links").Create(collection).Error
}

func (r *collectionRepository) GetOwned(ctx context.Context, id, ownerID string) (*model.Collection, error) {
	var collection model.Collection
	err := r.db.WithContext(ctx).
		Preload("Links", orderedLinks).
		Where("id = ? AND created_by_id = ?", id, ownerID).
		First(&collection).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCollectionNotFound
		}
		return nil, err
	}
	return &collection, nil
}

func (r *collectionRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Collection, error) {
	var result []model.Collection
	if err := r.db.WithContext(ctx).
		Where("created_by_id = ?", ownerID).
		Order("sort_order ASC").
		Order("created_at ASC").
		Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func (r *collectionRepository) Update(ctx context.Context, collection *model.Collection) error {
	result := r.db.WithContext(ctx).
		Model(&model.Collection{}).
		Where("id = ? AND created_by_id = ?", collection.ID, collection.CreatedByID).
		Updates(map[string]interface{}{
			"name":        collection.Name,
			"description": collection.Description,
			"is_public":   collection.IsPublic,
			"updated_at":  time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCollectionNotFound
	}

	return r.db.WithContext(ctx).Omit("Links").Where("id = ?", collection.ID).First(collection).Error
}

func (r *collectionRepository) Delete(ctx context.Context, id, ownerID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owned int64
		if err := tx.Model(&model.Collection{}).
			Where("id = ? AND created_by_id = ?", id, ownerID).
			Count(&owned).Error; err != nil {
			return err
		}
		if owned == 0 {
			return ErrCollectionNotFound
		}

		if err := tx.Where("collection_id = ?", id).Delete(&model.Link{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ? AND created_by_id = ?", id, ownerID).Delete(&model.Collection{}).Error
	})
}

func (r *collectionRepository) MaxOrder(ctx context.Context, ownerID string) (int, bool, error) {
	return maxOrder(r.db.WithContext(ctx).Model(&model.Collection{}).Where("created_by_id = ?", ownerID))
}

func (r *collectionRepository) ListOrders(ctx context.Context, ownerID string) ([]model.OrderEntry, error) {
	var entries []model.OrderEntry
	if err := r.db.WithContext(ctx).
		Model(&model.Collection{}).
		Select("id", "sort_order AS \"order\"").
		Where("created_by_id = ?", ownerID).
		Scan(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *collectionRepository) ApplyOrders(ctx context.Context, ownerID string, updates []model.OrderUpdate) ([]int64, error) {
	counts := make([]int64, len(updates))
	now := time.Now()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, u := range updates {
			result := tx.Model(&model.Collection{}).
				Where("id = ? AND created_by_id = ?", u.ID, ownerID).
				Updates(map[string]interface{}{
					"sort_order": u.Order,
					"updated_at": now,
				})
			if result.Error != nil {
				return result.Error
			}
			counts[i] = result.RowsAffected
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *collectionRepository) ListPublic(ctx context.Context) ([]model.Collection, error) {
	var result []model.Collection
	if err := r.db.WithContext(ctx).
		Preload("Links", orderedLinks).
		Where("is_public = ?", true).
		Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// maxOrder reads MAX(sort_order) from an already scoped query.
func maxOrder(scoped *gorm.DB) (int, bool, error) {
	var row struct {
		Max *int
	}
	if err := scoped.Select("MAX(sort_order) AS max").Scan(&row).Error; err != nil {
		return 0, false, err
	}
	if row.Max == nil {
		return 0, false, nil
	}
	return *row.Max, true, nil
}

// touchCollection advances the parent collection's UpdatedAt.
func touchCollection(tx *gorm.DB, collectionID string) error {
	return tx.Model(&model.Collection{}).
		Where("id = ?", collectionID).
		Update("updated_at", time.Now()).Error
}
