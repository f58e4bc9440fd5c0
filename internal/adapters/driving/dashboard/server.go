// Package dashboard serves the read-only metrics and manifest API. It
// exposes aggregate state only; nothing here can mutate snapshots.
package dashboard

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/bracken-labs/snapnote/internal/core/ports/driving"
	"github.com/bracken-labs/snapnote/internal/metrics"
)

// ServerConfig holds configuration for the dashboard server.
type ServerConfig struct {
	ListenAddr   string
	RecentWindow time.Duration
}

// Server is the dashboard Fiber application.
type Server struct {
	app    *fiber.App
	logger zerolog.Logger
	config ServerConfig
}

// NewServer creates and configures the dashboard server. collector may be
// nil, in which case /metrics serves a placeholder.
func NewServer(
	cfg ServerConfig,
	metricsSvc driving.MetricsService,
	manifests driving.ManifestService,
	notebooks driving.NotebookService,
	collector *metrics.Metrics,
	logger zerolog.Logger,
) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(logger),
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
	})

	s := &Server{
		app:    app,
		logger: logger.With().Str("component", "dashboard").Logger(),
		config: cfg,
	}

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowMethods: "GET, OPTIONS",
	}))

	h := newHandlers(metricsSvc, manifests, notebooks, cfg.RecentWindow, s.logger)

	app.Get("/healthz", h.health)
	app.Get("/api/metrics", h.aggregateMetrics)
	app.Get("/api/projects/:id/manifest", h.projectManifest)
	app.Get("/api/projects/:id/notebook", h.projectNotebook)

	if collector != nil {
		app.Get("/metrics", adaptor.HTTPHandler(collector.Handler()))
	} else {
		app.Get("/metrics", func(c *fiber.Ctx) error {
			return c.SendString("# no metrics collector configured\n")
		})
	}

	return s
}

// Start starts the server. Blocks until stopped.
func (s *Server) Start() error {
	addr := s.config.ListenAddr
	if addr == "" {
		addr = ":8090"
	}
	s.logger.Info().Str("addr", addr).Msg("dashboard starting")
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	s.logger.Info().Msg("dashboard shutting down")
	return s.app.Shutdown()
}

// App returns the underlying Fiber app (useful for testing).
func (s *Server) App() *fiber.App {
	return s.app
}

func errorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}
		logger.Error().
			Err(err).
			Int("status", code).
			Str("path", c.Path()).
			Msg("unhandled error")
		return c.Status(code).JSON(fiber.Map{"error": err.Error()})
	}
}
