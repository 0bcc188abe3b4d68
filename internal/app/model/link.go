package model

import "time"

// Link is a single URL entry belonging to exactly one collection.
// Ownership is derived from the parent collection's owner.
type Link struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	CollectionID string    `json:"collectionId" gorm:"size:36;not null;index:idx_links_collection_order,priority:1"`
	URL          string    `json:"url" gorm:"type:text;not null"`
	Name         string    `json:"name" gorm:"size:200;not null"`
	Comment      *string   `json:"comment" gorm:"size:1000"`
	Order        int       `json:"order" gorm:"column:sort_order;not null;default:0;index:idx_links_collection_order,priority:2"`
	CreatedAt    time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}
