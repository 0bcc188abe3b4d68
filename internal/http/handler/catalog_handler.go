package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/sifan077/LinkShelf/internal/app/catalog"
	"github.com/sifan077/LinkShelf/internal/app/model"
	"go.uber.org/zap"
)

const cacheHeader = "X-Cache"

// CatalogFetcher serves catalog pages and reports cache hits.
type CatalogFetcher interface {
	Fetch(ctx context.Context, q catalog.Query) (*model.CatalogPage, bool, error)
}

// CatalogDeps groups dependencies required by the catalog handler.
type CatalogDeps struct {
	Logger  *zap.Logger
	Catalog CatalogFetcher
}

// CatalogHandler serves the anonymous public catalog.
type CatalogHandler struct {
	logger  *zap.Logger
	catalog CatalogFetcher
}

// NewCatalogHandler creates a catalog handler.
func NewCatalogHandler(deps CatalogDeps) *CatalogHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogHandler{logger: logger, catalog: deps.Catalog}
}

// Register wires the catalog route. Extra handlers, such as a rate limiter,
// run before it.
func (h *CatalogHandler) Register(router fiber.Router, before ...fiber.Handler) {
	handlers := append(append([]fiber.Handler{}, before...), h.Catalog)
	router.Get("/api/catalog", handlers...)
}

type catalogParams struct {
	Q         string `query:"q"`
	Limit     int    `query:"limit"`
	Cursor    string `query:"cursor"`
	LinkLimit int    `query:"linkLimit"`
	SortBy    string `query:"sortBy"`
	SortOrder string `query:"sortOrder"`
}

// Catalog handles GET /api/catalog
func (h *CatalogHandler) Catalog(c *fiber.Ctx) error {
	var params catalogParams
	if err := c.QueryParser(&params); err != nil {
		return badRequest(c, "invalid query parameters")
	}

	page, hit, err := h.catalog.Fetch(requestContext(c), catalog.Query{
		Q:         params.Q,
		Limit:     params.Limit,
		Cursor:    params.Cursor,
		LinkLimit: params.LinkLimit,
		SortBy:    params.SortBy,
		SortOrder: params.SortOrder,
	})
	if err != nil {
		return respondError(c, h.logger, "fetch catalog", err)
	}

	if hit {
		c.Set(cacheHeader, "HIT")
	} else {
		c.Set(cacheHeader, "MISS")
	}
	return c.JSON(page)
}
