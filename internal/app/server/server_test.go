package server

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sifan077/LinkShelf/config"
	"github.com/sifan077/LinkShelf/internal/app/catalog"
	"github.com/sifan077/LinkShelf/internal/app/repository"
	"github.com/sifan077/LinkShelf/internal/app/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, env string) *Server {
	t.Helper()
	return newTestServerWith(t, func(cfg *config.Config) { cfg.App.Env = env })
}

func newTestServerWith(t *testing.T, configure func(cfg *config.Config)) *Server {
	t.Helper()

	store := repository.NewMemoryStore(nil)
	cache := catalog.NewCache(catalog.CacheOptions{})
	catalogSvc := catalog.NewService(catalog.NewEngine(store.Collections()), cache, nil)

	var cfg config.Config
	cfg.App.SessionSecret = "secret"
	cfg.App.SessionTTL = time.Hour
	configure(&cfg)

	return New(Dependencies{
		Config:      cfg,
		Collections: service.NewCollectionService(store.Collections(), catalogSvc),
		Links:       service.NewLinkService(store.Collections(), store.Links(), catalogSvc),
		Catalog:     catalogSvc,
	})
}

func TestServer_RoutesAndMiddleware(t *testing.T) {
	s := newTestServer(t, "development")

	resp, err := s.App().Test(httptest.NewRequest(fiber.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, err = s.App().Test(httptest.NewRequest(fiber.MethodGet, "/health/ready", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = s.App().Test(httptest.NewRequest(fiber.MethodGet, "/api/catalog", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "MISS", resp.Header.Get("X-Cache"))

	resp, err = s.App().Test(httptest.NewRequest(fiber.MethodGet, "/api/collections", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func postDevSession(t *testing.T, s *Server) int {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/api/dev/session", nil)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestServer_DevSessionAbsentByDefault(t *testing.T) {
	s := newTestServer(t, "development")
	assert.Equal(t, fiber.StatusNotFound, postDevSession(t, s))
}

func TestServer_DevSessionRequiresOptIn(t *testing.T) {
	enabled := newTestServerWith(t, func(cfg *config.Config) {
		cfg.App.Env = "development"
		cfg.App.DevSessions = true
	})
	assert.Equal(t, fiber.StatusBadRequest, postDevSession(t, enabled), "mounted route rejects an empty body")

	prod := newTestServerWith(t, func(cfg *config.Config) {
		cfg.App.Env = "production"
		cfg.App.DevSessions = true
	})
	assert.Equal(t, fiber.StatusNotFound, postDevSession(t, prod))
}
