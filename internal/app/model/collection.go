package model

import "time"

// Collection is a named, ordered, user-owned set of links.
type Collection struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	Name        string    `json:"name" gorm:"size:100;not null"`
	Description *string   `json:"description" gorm:"size:500"`
	IsPublic    bool      `json:"isPublic" gorm:"not null;default:false;index"`
	Order       int       `json:"order" gorm:"column:sort_order;not null;default:0"`
	CreatedByID string    `json:"createdById" gorm:"size:64;not null;index"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"autoUpdateTime;index"`
	Links       []Link    `json:"links,omitempty" gorm:"foreignKey:CollectionID"`
}

// OrderEntry is the minimal projection the reorder engine reads.
type OrderEntry struct {
	ID    string
	Order int
}

// OrderUpdate assigns a new position to a single row.
type OrderUpdate struct {
	ID    string
	Order int
}
