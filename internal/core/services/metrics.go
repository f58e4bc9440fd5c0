package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/bracken-labs/snapnote/internal/core/ports/driven"
	"github.com/bracken-labs/snapnote/internal/core/ports/driving"
)

// Ensure MetricsService implements the interface.
var _ driving.MetricsService = (*MetricsService)(nil)

// MetricsService computes store-wide aggregates for the metrics command
// and the dashboard. Read-only.
type MetricsService struct {
	reader driven.MetricsReader
	logger zerolog.Logger
}

// NewMetricsService creates a metrics service over the aggregate reader.
func NewMetricsService(reader driven.MetricsReader, logger zerolog.Logger) *MetricsService {
	return &MetricsService{
		reader: reader,
		logger: logger.With().Str("component", "metrics").Logger(),
	}
}

// Aggregate collects the global rollup. recentWindow bounds the "recent
// activity" count (snapshots created or updated since now minus window).
func (s *MetricsService) Aggregate(ctx context.Context, recentWindow time.Duration) (*driving.AggregateMetrics, error) {
	total, err := s.reader.TotalSnapshots(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting snapshots: %w", err)
	}

	byType, err := s.reader.GlobalCountsByType(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting snapshots by type: %w", err)
	}

	recent, err := s.reader.RecentActivity(ctx, time.Now().UTC().Add(-recentWindow))
	if err != nil {
		return nil, fmt.Errorf("counting recent activity: %w", err)
	}

	breakdown, err := s.reader.ProjectBreakdown(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading project breakdown: %w", err)
	}

	agg := &driving.AggregateMetrics{
		TotalSnapshots: total,
		ByType:         byType,
		RecentActivity: recent,
		Projects:       make([]driving.ProjectMetrics, 0, len(breakdown)),
		GeneratedAt:    time.Now().UTC(),
	}
	for _, row := range breakdown {
		agg.Projects = append(agg.Projects, driving.ProjectMetrics{
			ProjectID: row.ProjectID,
			Snapshots: row.Snapshots,
			Files:     row.Files,
		})
	}
	return agg, nil
}
