// Package memory provides in-memory implementations of the storage ports,
// used in tests and as a lightweight store for ephemeral runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bracken-labs/snapnote/internal/core/domain"
	"github.com/bracken-labs/snapnote/internal/core/ports/driven"
)

// Ensure SnapshotStore implements the interfaces.
var (
	_ driven.SnapshotStore = (*SnapshotStore)(nil)
	_ driven.ManifestStore = (*SnapshotStore)(nil)
	_ driven.MetricsReader = (*SnapshotStore)(nil)
)

// SnapshotStore is an in-memory implementation of the snapshot, manifest
// and metrics store ports. The mutex makes upserts linearizable per key,
// mirroring the SQLite adapter's single-statement merge.
type SnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[domain.Key]domain.Snapshot
	manifests map[string]domain.Manifest
}

// NewSnapshotStore creates a new in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		snapshots: make(map[domain.Key]domain.Snapshot),
		manifests: make(map[string]domain.Manifest),
	}
}

// Find retrieves the live snapshot for a key.
func (s *SnapshotStore) Find(_ context.Context, key domain.Key) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[key]
	if !ok {
		return nil, fmt.Errorf("snapshot %s/%s/%s: %w", key.ProjectID, key.SourceFile, key.Type, domain.ErrNotFound)
	}
	snap.Fields = snap.Fields.Clone()
	return &snap, nil
}

// Upsert inserts the snapshot or merges its fields into the existing row.
func (s *SnapshotStore) Upsert(_ context.Context, snap *domain.Snapshot) (*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := snap.Key()
	stored, exists := s.snapshots[key]
	if !exists {
		stored = *snap
		stored.Fields = snap.Fields.Clone()
	} else {
		stored.Fields = domain.MergeFields(stored.Fields, snap.Fields)
		stored.Fingerprint = snap.Fingerprint
		stored.UpdatedAt = snap.UpdatedAt
	}
	s.snapshots[key] = stored

	out := stored
	out.Fields = stored.Fields.Clone()
	return &out, nil
}

// ListByProject returns a project's snapshots, optionally filtered to one
// type, ordered by source file then type.
func (s *SnapshotStore) ListByProject(_ context.Context, projectID string, t domain.SnapshotType) ([]domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Snapshot
	for key, snap := range s.snapshots {
		if key.ProjectID != projectID {
			continue
		}
		if t != "" && key.Type != t {
			continue
		}
		snap.Fields = snap.Fields.Clone()
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SourceFile != out[j].SourceFile {
			return out[i].SourceFile < out[j].SourceFile
		}
		return out[i].Type < out[j].Type
	})
	return out, nil
}

// CountsByType returns live snapshot counts per type for a project.
func (s *SnapshotStore) CountsByType(_ context.Context, projectID string) (map[domain.SnapshotType]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[domain.SnapshotType]int)
	for key := range s.snapshots {
		if key.ProjectID == projectID {
			counts[key.Type]++
		}
	}
	return counts, nil
}

// DeleteProject removes all snapshots and the manifest for a project.
func (s *SnapshotStore) DeleteProject(_ context.Context, projectID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for key := range s.snapshots {
		if key.ProjectID == projectID {
			delete(s.snapshots, key)
			count++
		}
	}
	delete(s.manifests, projectID)
	return count, nil
}

// Ping always succeeds for the in-memory store.
func (s *SnapshotStore) Ping(_ context.Context) error {
	return nil
}

// SaveManifest stores or replaces a project's manifest.
func (s *SnapshotStore) SaveManifest(_ context.Context, m *domain.Manifest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manifests[m.ProjectID] = *m
	return nil
}

// GetManifest retrieves a project's manifest.
func (s *SnapshotStore) GetManifest(_ context.Context, projectID string) (*domain.Manifest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.manifests[projectID]
	if !ok {
		return nil, fmt.Errorf("manifest for %s: %w", projectID, domain.ErrNotFound)
	}
	return &m, nil
}

// TotalSnapshots counts every live snapshot across projects.
func (s *SnapshotStore) TotalSnapshots(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshots), nil
}

// GlobalCountsByType counts live snapshots per type across projects.
func (s *SnapshotStore) GlobalCountsByType(_ context.Context) (map[domain.SnapshotType]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[domain.SnapshotType]int)
	for key := range s.snapshots {
		counts[key.Type]++
	}
	return counts, nil
}

// RecentActivity counts snapshots created or updated since the cutoff.
func (s *SnapshotStore) RecentActivity(_ context.Context, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, snap := range s.snapshots {
		if !snap.UpdatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

// ProjectBreakdown returns per-project snapshot and file counts.
func (s *SnapshotStore) ProjectBreakdown(_ context.Context) ([]driven.ProjectCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snaps := make(map[string]int)
	files := make(map[string]map[string]bool)
	for key := range s.snapshots {
		snaps[key.ProjectID]++
		if files[key.ProjectID] == nil {
			files[key.ProjectID] = make(map[string]bool)
		}
		files[key.ProjectID][key.SourceFile] = true
	}

	out := make([]driven.ProjectCount, 0, len(snaps))
	for projectID, n := range snaps {
		out = append(out, driven.ProjectCount{
			ProjectID: projectID,
			Snapshots: n,
			Files:     len(files[projectID]),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProjectID < out[j].ProjectID })
	return out, nil
}
