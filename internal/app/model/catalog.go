package model

// CatalogLink is the public projection of a link embedded in a catalog item.
type CatalogLink struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	URL     string  `json:"url"`
	Comment *string `json:"comment"`
	Order   int     `json:"order"`
}

// CatalogItem is the read-only projection of a public collection.
type CatalogItem struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description *string       `json:"description"`
	IsPublic    bool          `json:"isPublic"`
	UpdatedAt   string        `json:"updatedAt"`
	TopLinks    []CatalogLink `json:"topLinks"`
}

// CatalogPage is one page of the public catalog.
type CatalogPage struct {
	Items      []CatalogItem `json:"items"`
	NextCursor *string       `json:"nextCursor"`
	TotalCount int           `json:"totalCount"`
}
