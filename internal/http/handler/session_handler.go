package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	httpUtil "github.com/sifan077/LinkShelf/internal/http/util"
	"go.uber.org/zap"
)

// SessionDeps groups dependencies required by the development session handler.
type SessionDeps struct {
	Logger    *zap.Logger
	Tokens    *httpUtil.TokenSigner
	Validator *httpUtil.Validator
}

// SessionHandler issues bearer tokens for arbitrary users. It exists only
// for local development and is never registered in production.
type SessionHandler struct {
	logger    *zap.Logger
	tokens    *httpUtil.TokenSigner
	validator *httpUtil.Validator
}

// NewSessionHandler creates a development session handler.
func NewSessionHandler(deps SessionDeps) *SessionHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	v := deps.Validator
	if v == nil {
		v = httpUtil.NewValidator()
	}
	return &SessionHandler{logger: logger, tokens: deps.Tokens, validator: v}
}

// Register wires the session route.
func (h *SessionHandler) Register(router fiber.Router) {
	router.Post("/api/dev/session", h.Issue)
}

// IssueSessionRequest names the user to sign in as.
type IssueSessionRequest struct {
	UserID string `json:"user_id" validate:"required,notblank,max=64"`
}

// Issue handles POST /api/dev/session
func (h *SessionHandler) Issue(c *fiber.Ctx) error {
	var req IssueSessionRequest
	if ok, err := parseAndValidate(c, h.validator, &req); !ok {
		return err
	}

	userID := strings.TrimSpace(req.UserID)
	token, err := h.tokens.Issue(userID)
	if err != nil {
		h.logger.Error("failed to issue session token", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to issue session",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token":   token,
		"user_id": userID,
	})
}
