package dashboard

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/bracken-labs/snapnote/internal/core/domain"
	"github.com/bracken-labs/snapnote/internal/core/ports/driving"
)

// handlers holds dependencies for HTTP handlers.
type handlers struct {
	metrics      driving.MetricsService
	manifests    driving.ManifestService
	notebooks    driving.NotebookService
	recentWindow time.Duration
	logger       zerolog.Logger
	startTime    time.Time
}

func newHandlers(
	metrics driving.MetricsService,
	manifests driving.ManifestService,
	notebooks driving.NotebookService,
	recentWindow time.Duration,
	logger zerolog.Logger,
) *handlers {
	if recentWindow <= 0 {
		recentWindow = 24 * time.Hour
	}
	return &handlers{
		metrics:      metrics,
		manifests:    manifests,
		notebooks:    notebooks,
		recentWindow: recentWindow,
		logger:       logger,
		startTime:    time.Now(),
	}
}

// health handles GET /healthz.
func (h *handlers) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"uptime": time.Since(h.startTime).String(),
	})
}

// aggregateMetrics handles GET /api/metrics.
func (h *handlers) aggregateMetrics(c *fiber.Ctx) error {
	agg, err := h.metrics.Aggregate(c.Context(), h.recentWindow)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(agg)
}

// projectManifest handles GET /api/projects/:id/manifest.
func (h *handlers) projectManifest(c *fiber.Ctx) error {
	projectID := c.Params("id")
	m, err := h.manifests.Get(c.Context(), projectID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "project not processed")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(m)
}

// projectNotebook handles GET /api/projects/:id/notebook?type=T.
func (h *handlers) projectNotebook(c *fiber.Ctx) error {
	projectID := c.Params("id")
	t := domain.SnapshotType(c.Query("type"))
	if t == "" {
		return fiber.NewError(fiber.StatusBadRequest, "query parameter 'type' is required")
	}

	nb, err := h.notebooks.Assemble(c.Context(), projectID, t)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return fiber.NewError(fiber.StatusNotFound, "no snapshots of that type")
		case errors.Is(err, domain.ErrInvalidInput):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		default:
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(nb)
}
