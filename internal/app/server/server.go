package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/qrtrail/qrtrail/internal/app/repository"
	"github.com/qrtrail/qrtrail/internal/app/service"
	inthttp "github.com/qrtrail/qrtrail/internal/http/handler"
	"github.com/qrtrail/qrtrail/internal/http/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Dependencies bundles infrastructure and services required by the HTTP server.
type Dependencies struct {
	Logger     *zap.Logger
	Postgres   *pgxpool.Pool
	Redis      *redis.Client
	NATS       *nats.Conn
	JetStream  nats.JetStreamContext
	Resolver   *service.Resolver
	Scans      *service.ScanPublisher
	Analytics  *service.AnalyticsAggregator
	Cleanup    *service.CleanupService
	GuestStats repository.GuestStatsRepository
}

// Server wraps the Fiber application and its dependencies.
type Server struct {
	app  *fiber.App
	deps Dependencies
}

// New creates a new HTTP server instance with default routes.
func New(deps Dependencies) *Server {
	app := fiber.New()

	s := &Server{
		app:  app,
		deps: deps,
	}

	s.registerMiddleware()
	s.registerRoutes()
	return s
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
	s.app.Use(middleware.RequestID())
	s.app.Use(middleware.Recovery(s.deps.Logger))
	s.app.Use(middleware.Logger(s.deps.Logger))
	s.app.Use(middleware.CORS())
	if s.deps.Redis != nil {
		s.app.Use(middleware.RateLimit(s.deps.Redis, middleware.DefaultRateLimitConfig(), s.deps.Logger))
	}
}

func (s *Server) registerRoutes() {
	redirectHandler := inthttp.NewRedirectHandler(inthttp.RedirectDeps{
		Logger:   s.deps.Logger,
		Resolver: s.deps.Resolver,
		Scans:    s.deps.Scans,
	})
	redirectHandler.Register(s.app)

	analyticsHandler := inthttp.NewAnalyticsHandler(inthttp.AnalyticsDeps{
		Logger:     s.deps.Logger,
		Aggregator: s.deps.Analytics,
	})
	analyticsHandler.Register(s.app)

	adminHandler := inthttp.NewAdminHandler(inthttp.AdminDeps{
		Logger:     s.deps.Logger,
		Cleanup:    s.deps.Cleanup,
		GuestStats: s.deps.GuestStats,
	})
	adminHandler.Register(s.app)
}
