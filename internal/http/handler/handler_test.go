package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sifan077/LinkShelf/internal/app/catalog"
	"github.com/sifan077/LinkShelf/internal/app/model"
	"github.com/sifan077/LinkShelf/internal/app/repository"
	"github.com/sifan077/LinkShelf/internal/app/service"
	"github.com/sifan077/LinkShelf/internal/http/middleware"
	httpUtil "github.com/sifan077/LinkShelf/internal/http/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	app    *fiber.App
	tokens *httpUtil.TokenSigner
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := repository.NewMemoryStore(nil)
	cache := catalog.NewCache(catalog.CacheOptions{TTL: time.Minute, MaxEntries: 10})
	catalogSvc := catalog.NewService(catalog.NewEngine(store.Collections()), cache, nil)
	tokens := httpUtil.NewTokenSigner([]byte("test-secret"), time.Hour)
	validator := httpUtil.NewValidator()

	app := fiber.New()
	NewHealthHandler(HealthDeps{}).Register(app)
	NewSessionHandler(SessionDeps{Tokens: tokens, Validator: validator}).Register(app)
	NewCatalogHandler(CatalogDeps{Catalog: catalogSvc}).Register(app)
	NewAPIHandler(APIDeps{
		Collections: service.NewCollectionService(store.Collections(), catalogSvc),
		Links:       service.NewLinkService(store.Collections(), store.Links(), catalogSvc),
		Validator:   validator,
	}).Register(app, middleware.RequireUser(tokens))

	return &testEnv{app: app, tokens: tokens}
}

func (e *testEnv) token(t *testing.T, userID string) string {
	t.Helper()
	token, err := e.tokens.Issue(userID)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := e.app.Test(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (e *testEnv) createCollection(t *testing.T, token, name string, public bool) model.Collection {
	t.Helper()
	resp := e.do(t, fiber.MethodPost, "/api/collections", token, fiber.Map{"name": name, "isPublic": public})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	return decode[model.Collection](t, resp)
}

func TestAPI_RequiresSession(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, fiber.MethodGet, "/api/collections", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_DevSessionIssuesUsableToken(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, fiber.MethodPost, "/api/dev/session", "", fiber.Map{"user_id": "u1"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	body := decode[map[string]string](t, resp)

	resp = env.do(t, fiber.MethodGet, "/api/collections", body["token"], nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAPI_CollectionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "u1")

	first := env.createCollection(t, token, "  First ", false)
	second := env.createCollection(t, token, "Second", true)
	assert.Equal(t, "First", first.Name)
	assert.Equal(t, 0, first.Order)
	assert.Equal(t, 1, second.Order)

	resp := env.do(t, fiber.MethodPatch, "/api/collections/"+first.ID, token, fiber.Map{"description": "notes"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	updated := decode[model.Collection](t, resp)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "notes", *updated.Description)

	resp = env.do(t, fiber.MethodPut, "/api/collections/order", token, fiber.Map{"ids": []string{second.ID, first.ID}})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	results := decode[[]map[string]int64](t, resp)
	assert.Len(t, results, 2)

	resp = env.do(t, fiber.MethodGet, "/api/collections", token, nil)
	list := decode[struct{ Items []model.Collection }](t, resp)
	require.Len(t, list.Items, 2)
	assert.Equal(t, second.ID, list.Items[0].ID)

	resp = env.do(t, fiber.MethodDelete, "/api/collections/"+first.ID, token, nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp = env.do(t, fiber.MethodGet, "/api/collections/"+first.ID, token, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAPI_ValidationErrors(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "u1")

	resp := env.do(t, fiber.MethodPost, "/api/collections", token, fiber.Map{"name": "   "})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body := decode[httpUtil.ErrorResponse](t, resp)
	require.NotEmpty(t, body.Errors)
	assert.Equal(t, "name", body.Errors[0].Field)

	c := env.createCollection(t, token, "Links", false)
	resp = env.do(t, fiber.MethodPost, "/api/collections/"+c.ID+"/links", token, fiber.Map{"url": "ftp://x.example", "name": "x"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, fiber.MethodPut, "/api/collections/order", token, fiber.Map{"ids": []string{c.ID, c.ID}})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAPI_ReorderForeignCollectionIsForbidden(t *testing.T) {
	env := newTestEnv(t)
	alice := env.token(t, "alice")
	bob := env.token(t, "bob")

	a := env.createCollection(t, alice, "a", false)
	b := env.createCollection(t, bob, "b", false)

	resp := env.do(t, fiber.MethodPut, "/api/collections/order", alice, fiber.Map{"ids": []string{b.ID, a.ID}})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = env.do(t, fiber.MethodGet, "/api/collections/"+a.ID+"/links", bob, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAPI_LinksAppendAndReorder(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "u1")
	c := env.createCollection(t, token, "Links", true)
	base := "/api/collections/" + c.ID + "/links"

	resp := env.do(t, fiber.MethodPost, base, token, fiber.Map{"url": "https://a.example", "name": "a"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	first := decode[model.Link](t, resp)
	assert.Equal(t, 1, first.Order)

	resp = env.do(t, fiber.MethodPost, base+"/batch", token, fiber.Map{"links": []fiber.Map{
		{"url": "https://b.example", "name": "b"},
		{"url": "https://c.example", "name": "c", "comment": " hi "},
	}})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	batch := decode[struct{ Items []model.Link }](t, resp)
	require.Len(t, batch.Items, 2)
	assert.Equal(t, 2, batch.Items[0].Order)
	assert.Equal(t, 3, batch.Items[1].Order)

	order := []string{batch.Items[1].ID, first.ID, batch.Items[0].ID}
	resp = env.do(t, fiber.MethodPut, base+"/order", token, fiber.Map{"ids": order})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.do(t, fiber.MethodGet, base, token, nil)
	list := decode[struct{ Items []model.Link }](t, resp)
	require.Len(t, list.Items, 3)
	for i, l := range list.Items {
		assert.Equal(t, order[i], l.ID)
	}

	resp = env.do(t, fiber.MethodPatch, base+"/"+first.ID, token, fiber.Map{"comment": ""})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Nil(t, decode[model.Link](t, resp).Comment)

	resp = env.do(t, fiber.MethodDelete, base+"/missing", token, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCatalog_CacheHeaderAndInvalidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "u1")
	env.createCollection(t, token, "Public", true)
	env.createCollection(t, token, "Private", false)

	resp := env.do(t, fiber.MethodGet, "/api/catalog", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "MISS", resp.Header.Get(cacheHeader))
	page := decode[model.CatalogPage](t, resp)
	assert.Equal(t, 1, page.TotalCount)
	assert.Nil(t, page.NextCursor)

	resp = env.do(t, fiber.MethodGet, "/api/catalog?limit=0", "", nil)
	assert.Equal(t, "HIT", resp.Header.Get(cacheHeader))

	env.createCollection(t, token, "Another", true)

	resp = env.do(t, fiber.MethodGet, "/api/catalog", "", nil)
	assert.Equal(t, "MISS", resp.Header.Get(cacheHeader))
	assert.Equal(t, 2, decode[model.CatalogPage](t, resp).TotalCount)
}

func TestCatalog_PaginationAndFilter(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "u1")
	for _, name := range []string{"Go tools", "Rust tools", "Cooking"} {
		env.createCollection(t, token, name, true)
	}

	resp := env.do(t, fiber.MethodGet, "/api/catalog?q=TOOLS&limit=1", "", nil)
	page := decode[model.CatalogPage](t, resp)
	assert.Equal(t, 2, page.TotalCount)
	require.Len(t, page.Items, 1)
	require.NotNil(t, page.NextCursor)

	resp = env.do(t, fiber.MethodGet, "/api/catalog?q=TOOLS&limit=1&cursor="+*page.NextCursor, "", nil)
	next := decode[model.CatalogPage](t, resp)
	require.Len(t, next.Items, 1)
	assert.NotEqual(t, page.Items[0].ID, next.Items[0].ID)
	assert.Nil(t, next.NextCursor)
}

type failingCatalog struct{}

func (failingCatalog) Fetch(context.Context, catalog.Query) (*model.CatalogPage, bool, error) {
	return nil, false, errors.New("db down")
}

func TestCatalog_FetchErrorIs500(t *testing.T) {
	app := fiber.New()
	NewCatalogHandler(CatalogDeps{Catalog: failingCatalog{}}).Register(app)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/catalog", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestHealth_Ready(t *testing.T) {
	app := fiber.New()
	NewHealthHandler(HealthDeps{Checks: map[string]Check{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	}}).Register(app)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/health/ready", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	body := decode[struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}](t, resp)
	assert.Equal(t, "unavailable", body.Status)
	assert.Equal(t, "ok", body.Checks["postgres"])
}
