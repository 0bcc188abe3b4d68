package model

import "time"

// CatalogInvalidation is broadcast to other replicas whenever a replica
// clears its public catalog cache.
type CatalogInvalidation struct {
	ID        string    `json:"id"`
	Origin    string    `json:"origin"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

const DefaultCatalogInvalidationSubject = "catalog.invalidate"
