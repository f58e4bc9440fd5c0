package driving

import (
	"context"
	"time"

	"github.com/bracken-labs/snapnote/internal/core/domain"
)

// NotebookService assembles merged per-type views on demand.
type NotebookService interface {
	// Assemble folds every stored snapshot of the given type for the
	// project into a single notebook view. Returns domain.ErrNotFound
	// when the project has no snapshots of that type.
	Assemble(ctx context.Context, projectID string, t domain.SnapshotType) (*domain.Notebook, error)
}

// ManifestService reads and rebuilds the per-project manifest.
type ManifestService interface {
	// Get returns the stored manifest. Returns domain.ErrNotFound when
	// the project has never been processed.
	Get(ctx context.Context, projectID string) (*domain.Manifest, error)

	// Rebuild recomputes the manifest from the snapshot store and
	// persists it. Safe to call at any time; the manifest is a cache.
	Rebuild(ctx context.Context, projectID string) (*domain.Manifest, error)
}

// AggregateMetrics is the store-wide rollup served by the metrics
// operation and the dashboard.
type AggregateMetrics struct {
	TotalSnapshots int                         `json:"total_snapshots"`
	ByType         map[domain.SnapshotType]int `json:"by_type"`
	RecentActivity int                         `json:"recent_activity"`
	Projects       []ProjectMetrics            `json:"projects"`
	GeneratedAt    time.Time                   `json:"generated_at"`
}

// ProjectMetrics is one project's line in the aggregate rollup.
type ProjectMetrics struct {
	ProjectID string `json:"project_id"`
	Snapshots int    `json:"snapshots"`
	Files     int    `json:"files"`
}

// MetricsService computes aggregate metrics across all projects.
type MetricsService interface {
	Aggregate(ctx context.Context, recentWindow time.Duration) (*AggregateMetrics, error)
}
