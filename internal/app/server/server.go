package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sifan077/LinkShelf/config"
	"github.com/sifan077/LinkShelf/internal/app/catalog"
	"github.com/sifan077/LinkShelf/internal/app/service"
	inthttp "github.com/sifan077/LinkShelf/internal/http/handler"
	"github.com/sifan077/LinkShelf/internal/http/middleware"
	httpUtil "github.com/sifan077/LinkShelf/internal/http/util"
	infraRedis "github.com/sifan077/LinkShelf/internal/infra/redis"
	"go.uber.org/zap"
)

// Dependencies bundles what the HTTP server needs. Postgres and Redis are
// optional; without them the readiness probe skips their checks and rate
// limiting is disabled.
type Dependencies struct {
	Logger      *zap.Logger
	Config      config.Config
	Postgres    *pgxpool.Pool
	Redis       *redis.Client
	Collections service.CollectionService
	Links       service.LinkService
	Catalog     *catalog.Service
	Tokens      *httpUtil.TokenSigner
}

// Server wraps the Fiber application and its dependencies.
type Server struct {
	app  *fiber.App
	deps Dependencies
}

// New creates a new HTTP server instance with all routes registered.
func New(deps Dependencies) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Tokens == nil {
		deps.Tokens = httpUtil.NewTokenSigner([]byte(deps.Config.App.SessionSecret), deps.Config.App.SessionTTL)
	}

	app := fiber.New(fiber.Config{
		AppName:               "LinkShelf",
		DisableStartupMessage: !deps.Config.App.IsDevelopment(),
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		IdleTimeout:           60 * time.Second,
	})

	s := &Server{
		app:  app,
		deps: deps,
	}

	s.registerMiddleware()
	s.registerRoutes()
	return s
}

// App exposes the underlying Fiber application, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen starts the Fiber server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the Fiber server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) registerMiddleware() {
	s.app.Use(
		middleware.RequestID(),
		middleware.Logger(s.deps.Logger),
		middleware.Metrics(),
		middleware.Recovery(s.deps.Logger),
		middleware.CORS(s.deps.Config.App.CORSOrigins...),
	)
}

func (s *Server) registerRoutes() {
	validator := httpUtil.NewValidator()

	inthttp.NewHealthHandler(inthttp.HealthDeps{
		Logger: s.deps.Logger,
		Checks: s.readinessChecks(),
	}).Register(s.app)

	var limiter redis.Cmdable
	if s.deps.Redis != nil {
		limiter = s.deps.Redis
	}
	inthttp.NewCatalogHandler(inthttp.CatalogDeps{
		Logger:  s.deps.Logger,
		Catalog: s.deps.Catalog,
	}).Register(s.app, middleware.RateLimit(limiter, middleware.RateLimitConfig{
		MaxRequests: s.deps.Config.RateLimit.MaxRequests,
		Window:      s.deps.Config.RateLimit.Window,
		KeyPrefix:   "ratelimit:catalog",
	}, s.deps.Logger))

	if s.deps.Config.App.DevSessionsEnabled() {
		inthttp.NewSessionHandler(inthttp.SessionDeps{
			Logger:    s.deps.Logger,
			Tokens:    s.deps.Tokens,
			Validator: validator,
		}).Register(s.app)
	}

	inthttp.NewAPIHandler(inthttp.APIDeps{
		Logger:      s.deps.Logger,
		Collections: s.deps.Collections,
		Links:       s.deps.Links,
		Validator:   validator,
	}).Register(s.app, middleware.RequireUser(s.deps.Tokens))
}

func (s *Server) readinessChecks() map[string]inthttp.Check {
	checks := make(map[string]inthttp.Check)
	if s.deps.Postgres != nil {
		checks["postgres"] = s.deps.Postgres.Ping
	}
	if s.deps.Redis != nil {
		checks["redis"] = infraRedis.Ping(s.deps.Redis)
	}
	return checks
}
