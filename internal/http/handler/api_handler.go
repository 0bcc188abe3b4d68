package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sifan077/LinkShelf/internal/app/model"
	"github.com/sifan077/LinkShelf/internal/app/service"
	"github.com/sifan077/LinkShelf/internal/http/middleware"
	httpUtil "github.com/sifan077/LinkShelf/internal/http/util"
	"go.uber.org/zap"
)

// APIDeps groups dependencies required by API handlers.
type APIDeps struct {
	Logger      *zap.Logger
	Collections service.CollectionService
	Links       service.LinkService
	Validator   *httpUtil.Validator
}

// APIHandler implements the authenticated management API.
type APIHandler struct {
	logger      *zap.Logger
	collections service.CollectionService
	links       service.LinkService
	validator   *httpUtil.Validator
}

// NewAPIHandler creates an API handler with the provided dependencies.
func NewAPIHandler(deps APIDeps) *APIHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	v := deps.Validator
	if v == nil {
		v = httpUtil.NewValidator()
	}
	return &APIHandler{
		logger:      logger,
		collections: deps.Collections,
		links:       deps.Links,
		validator:   v,
	}
}

// Register wires API routes onto router behind auth.
func (h *APIHandler) Register(router fiber.Router, auth fiber.Handler) {
	collections := router.Group("/api/collections", auth)
	{
		collections.Get("/", h.ListCollections)
		collections.Post("/", h.CreateCollection)
		collections.Put("/order", h.ReorderCollections)
		collections.Get("/:id", h.GetCollection)
		collections.Patch("/:id", h.UpdateCollection)
		collections.Delete("/:id", h.DeleteCollection)

		links := collections.Group("/:id/links")
		{
			links.Get("/", h.ListLinks)
			links.Post("/", h.CreateLink)
			links.Post("/batch", h.CreateLinks)
			links.Put("/order", h.ReorderLinks)
			links.Patch("/:linkId", h.UpdateLink)
			links.Delete("/:linkId", h.DeleteLink)
		}
	}
}

// CreateCollectionRequest represents the request body for creating a collection.
type CreateCollectionRequest struct {
	Name        string  `json:"name" validate:"required,notblank,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	IsPublic    bool    `json:"isPublic"`
}

// UpdateCollectionRequest represents a partial collection update. Absent
// fields are left untouched; an empty description clears it.
type UpdateCollectionRequest struct {
	Name        *string `json:"name" validate:"omitnil,notblank,max=100"`
	Description *string `json:"description" validate:"omitnil,max=500"`
	IsPublic    *bool   `json:"isPublic"`
}

// ReorderRequest lists ids in their desired order.
type ReorderRequest struct {
	IDs []string `json:"ids" validate:"required,max=1000,dive,required"`
}

// CreateLinkRequest represents the request body for creating a link.
type CreateLinkRequest struct {
	URL     string  `json:"url" validate:"required,max=2048,httpurl"`
	Name    string  `json:"name" validate:"required,notblank,max=200"`
	Comment *string `json:"comment" validate:"omitempty,max=1000"`
}

// CreateLinksRequest represents a batch of links appended in input order.
type CreateLinksRequest struct {
	Links []CreateLinkRequest `json:"links" validate:"required,min=1,max=100,dive"`
}

// UpdateLinkRequest represents a partial link update.
type UpdateLinkRequest struct {
	URL     *string `json:"url" validate:"omitnil,max=2048,httpurl"`
	Name    *string `json:"name" validate:"omitnil,notblank,max=200"`
	Comment *string `json:"comment" validate:"omitnil,max=1000"`
}

// ListCollections handles GET /api/collections
func (h *APIHandler) ListCollections(c *fiber.Ctx) error {
	collections, err := h.collections.ListCollections(requestContext(c), middleware.GetUserID(c))
	if err != nil {
		return respondError(c, h.logger, "list collections", err)
	}
	if collections == nil {
		collections = []model.Collection{}
	}
	return c.JSON(fiber.Map{"items": collections})
}

// CreateCollection handles POST /api/collections
func (h *APIHandler) CreateCollection(c *fiber.Ctx) error {
	var req CreateCollectionRequest
	if ok, err := parseAndValidate(c, h.validator, &req); !ok {
		return err
	}

	collection, err := h.collections.CreateCollection(requestContext(c), middleware.GetUserID(c), service.CreateCollectionInput{
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		return respondError(c, h.logger, "create collection", err)
	}
	return c.Status(fiber.StatusCreated).JSON(collection)
}

// GetCollection handles GET /api/collections/:id
func (h *APIHandler) GetCollection(c *fiber.Ctx) error {
	collection, err := h.collections.GetCollection(requestContext(c), middleware.GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, "get collection", err)
	}
	if collection.Links == nil {
		collection.Links = []model.Link{}
	}
	return c.JSON(collection)
}

// UpdateCollection handles PATCH /api/collections/:id
func (h *APIHandler) UpdateCollection(c *fiber.Ctx) error {
	var req UpdateCollectionRequest
	if ok, err := parseAndValidate(c, h.validator, &req); !ok {
		return err
	}

	collection, err := h.collections.UpdateCollection(requestContext(c), middleware.GetUserID(c), c.Params("id"), service.UpdateCollectionInput{
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		return respondError(c, h.logger, "update collection", err)
	}
	return c.JSON(collection)
}

// DeleteCollection handles DELETE /api/collections/:id
func (h *APIHandler) DeleteCollection(c *fiber.Ctx) error {
	if err := h.collections.DeleteCollection(requestContext(c), middleware.GetUserID(c), c.Params("id")); err != nil {
		return respondError(c, h.logger, "delete collection", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ReorderCollections handles PUT /api/collections/order
func (h *APIHandler) ReorderCollections(c *fiber.Ctx) error {
	var req ReorderRequest
	if ok, err := parseAndValidate(c, h.validator, &req); !ok {
		return err
	}

	results, err := h.collections.ReorderCollections(requestContext(c), middleware.GetUserID(c), req.IDs)
	if err != nil {
		return respondError(c, h.logger, "reorder collections", err)
	}
	return c.JSON(results)
}

// ListLinks handles GET /api/collections/:id/links
func (h *APIHandler) ListLinks(c *fiber.Ctx) error {
	links, err := h.links.ListLinks(requestContext(c), middleware.GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, "list links", err)
	}
	if links == nil {
		links = []model.Link{}
	}
	return c.JSON(fiber.Map{"items": links})
}

// CreateLink handles POST /api/collections/:id/links
func (h *APIHandler) CreateLink(c *fiber.Ctx) error {
	var req CreateLinkRequest
	if ok, err := parseAndValidate(c, h.validator, &req); !ok {
		return err
	}

	link, err := h.links.CreateLink(requestContext(c), middleware.GetUserID(c), c.Params("id"), toLinkInput(req))
	if err != nil {
		return respondError(c, h.logger, "create link", err)
	}
	return c.Status(fiber.StatusCreated).JSON(link)
}

// CreateLinks handles POST /api/collections/:id/links/batch
func (h *APIHandler) CreateLinks(c *fiber.Ctx) error {
	var req CreateLinksRequest
	if ok, err := parseAndValidate(c, h.validator, &req); !ok {
		return err
	}

	inputs := make([]service.CreateLinkInput, len(req.Links))
	for i, l := range req.Links {
		inputs[i] = toLinkInput(l)
	}

	links, err := h.links.CreateLinks(requestContext(c), middleware.GetUserID(c), c.Params("id"), inputs)
	if err != nil {
		return respondError(c, h.logger, "create links", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"items": links})
}

// UpdateLink handles PATCH /api/collections/:id/links/:linkId
func (h *APIHandler) UpdateLink(c *fiber.Ctx) error {
	var req UpdateLinkRequest
	if ok, err := parseAndValidate(c, h.validator, &req); !ok {
		return err
	}

	link, err := h.links.UpdateLink(requestContext(c), middleware.GetUserID(c), c.Params("id"), c.Params("linkId"), service.UpdateLinkInput{
		URL:     req.URL,
		Name:    req.Name,
		Comment: req.Comment,
	})
	if err != nil {
		return respondError(c, h.logger, "update link", err)
	}
	return c.JSON(link)
}

// DeleteLink handles DELETE /api/collections/:id/links/:linkId
func (h *APIHandler) DeleteLink(c *fiber.Ctx) error {
	if err := h.links.DeleteLink(requestContext(c), middleware.GetUserID(c), c.Params("id"), c.Params("linkId")); err != nil {
		return respondError(c, h.logger, "delete link", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ReorderLinks handles PUT /api/collections/:id/links/order
func (h *APIHandler) ReorderLinks(c *fiber.Ctx) error {
	var req ReorderRequest
	if ok, err := parseAndValidate(c, h.validator, &req); !ok {
		return err
	}

	results, err := h.links.ReorderLinks(requestContext(c), middleware.GetUserID(c), c.Params("id"), req.IDs)
	if err != nil {
		return respondError(c, h.logger, "reorder links", err)
	}
	return c.JSON(results)
}

func toLinkInput(req CreateLinkRequest) service.CreateLinkInput {
	return service.CreateLinkInput{
		URL:     req.URL,
		Name:    req.Name,
		Comment: req.Comment,
	}
}
