package driven

import (
	"context"
	"time"

	"github.com/bracken-labs/snapnote/internal/core/domain"
)

// SnapshotStore is the persistence boundary for snapshots. It is the only
// component permitted to read or write snapshot rows. Every operation is
// implicitly scoped by project_id; no call returns or affects another
// project's rows.
type SnapshotStore interface {
	// Find retrieves the live snapshot for a key, or domain.ErrNotFound.
	Find(ctx context.Context, key domain.Key) (*domain.Snapshot, error)

	// Upsert inserts the snapshot or merges its fields into the existing
	// row for the same key, atomically: the uniqueness constraint on
	// (project_id, source_file, snapshot_type) plus a single
	// insert-or-update statement make concurrent upserts for one key
	// linearizable — the last committed write fully determines the
	// merged state. Returns the stored row after the write.
	Upsert(ctx context.Context, snap *domain.Snapshot) (*domain.Snapshot, error)

	// ListByProject returns a project's snapshots, optionally filtered
	// to one type (pass "" for all).
	ListByProject(ctx context.Context, projectID string, t domain.SnapshotType) ([]domain.Snapshot, error)

	// CountsByType returns live snapshot counts per type for a project.
	CountsByType(ctx context.Context, projectID string) (map[domain.SnapshotType]int, error)

	// DeleteProject removes all snapshots and the manifest for a project
	// as one all-or-nothing operation, returning the snapshot count
	// removed. Partial deletion surfaces domain.ErrDeletionPartial.
	DeleteProject(ctx context.Context, projectID string) (int, error)

	// Ping verifies the store is reachable. Used at startup.
	Ping(ctx context.Context) error
}

// ProjectCount is one row of the per-project metrics breakdown.
type ProjectCount struct {
	ProjectID string `json:"project_id"`
	Snapshots int    `json:"snapshots"`
	Files     int    `json:"files"`
}

// MetricsReader is the read-only aggregate query surface behind
// get_metrics(). The dashboard consumes it and nothing else.
type MetricsReader interface {
	// TotalSnapshots counts every live snapshot across projects.
	TotalSnapshots(ctx context.Context) (int, error)

	// GlobalCountsByType counts live snapshots per type across projects.
	GlobalCountsByType(ctx context.Context) (map[domain.SnapshotType]int, error)

	// RecentActivity counts snapshots created or updated since the cutoff.
	RecentActivity(ctx context.Context, since time.Time) (int, error)

	// ProjectBreakdown returns per-project snapshot and file counts.
	ProjectBreakdown(ctx context.Context) ([]ProjectCount, error)
}

// ManifestStore persists the per-project manifest record. The manifest is
// a rebuildable cache; losing it is never data loss.
type ManifestStore interface {
	// SaveManifest stores or replaces a project's manifest.
	SaveManifest(ctx context.Context, m *domain.Manifest) error

	// GetManifest retrieves a project's manifest, or domain.ErrNotFound.
	GetManifest(ctx context.Context, projectID string) (*domain.Manifest, error)
}
