package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sifan077/LinkShelf/internal/app/reorder"
	"github.com/sifan077/LinkShelf/internal/app/repository"
	httpUtil "github.com/sifan077/LinkShelf/internal/http/util"
	"go.uber.org/zap"
)

type apiError struct {
	StatusCode int
	Message    string
}

// classify maps domain errors onto HTTP responses. Anything unrecognised is
// an internal error and its detail stays in the log.
func classify(err error) apiError {
	switch {
	case errors.Is(err, reorder.ErrForbidden):
		return apiError{fiber.StatusForbidden, "forbidden"}
	case errors.Is(err, reorder.ErrDuplicateID):
		return apiError{fiber.StatusBadRequest, "ids must not contain duplicates"}
	case errors.Is(err, repository.ErrCollectionNotFound):
		return apiError{fiber.StatusNotFound, "collection not found"}
	case errors.Is(err, repository.ErrLinkNotFound):
		return apiError{fiber.StatusNotFound, "link not found"}
	default:
		return apiError{fiber.StatusInternalServerError, "internal server error"}
	}
}

func respondError(c *fiber.Ctx, logger *zap.Logger, op string, err error) error {
	apiErr := classify(err)
	if apiErr.StatusCode >= fiber.StatusInternalServerError {
		logger.Error(op+" failed", zap.Error(err), zap.String("path", c.Path()))
	}
	return c.Status(apiErr.StatusCode).JSON(fiber.Map{
		"error": apiErr.Message,
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
	})
}

// parseAndValidate decodes the body into req and runs struct validation.
// It reports false after writing a 400 response.
func parseAndValidate(c *fiber.Ctx, v *httpUtil.Validator, req any) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, badRequest(c, "invalid request body")
	}
	if resp := v.Validate(req); resp != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(resp)
	}
	return true, nil
}

func requestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx
}
