package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/bracken-labs/snapnote/internal/core/domain"
	"github.com/bracken-labs/snapnote/internal/core/ports/driven"
	"github.com/bracken-labs/snapnote/internal/core/ports/driving"
)

// Ensure ManifestService implements the interface.
var _ driving.ManifestService = (*ManifestService)(nil)

// ManifestService maintains the per-project manifest. The manifest is a
// cache over the snapshot store; Rebuild always recomputes from the rows
// rather than trusting incremental run deltas.
type ManifestService struct {
	snapshots driven.SnapshotStore
	manifests driven.ManifestStore
	logger    zerolog.Logger
}

// NewManifestService creates a manifest service.
func NewManifestService(snapshots driven.SnapshotStore, manifests driven.ManifestStore, logger zerolog.Logger) *ManifestService {
	return &ManifestService{
		snapshots: snapshots,
		manifests: manifests,
		logger:    logger.With().Str("component", "manifest").Logger(),
	}
}

// Get returns the stored manifest for a project.
func (s *ManifestService) Get(ctx context.Context, projectID string) (*domain.Manifest, error) {
	if projectID == "" {
		return nil, fmt.Errorf("%w: empty project id", domain.ErrInvalidInput)
	}
	m, err := s.manifests.GetManifest(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("loading manifest for %s: %w", projectID, err)
	}
	return m, nil
}

// Rebuild recomputes the manifest from the project's snapshots and
// persists it, replacing whatever was stored before.
func (s *ManifestService) Rebuild(ctx context.Context, projectID string) (*domain.Manifest, error) {
	if projectID == "" {
		return nil, fmt.Errorf("%w: empty project id", domain.ErrInvalidInput)
	}

	snaps, err := s.snapshots.ListByProject(ctx, projectID, "")
	if err != nil {
		return nil, fmt.Errorf("listing snapshots for %s: %w", projectID, err)
	}

	m := &domain.Manifest{
		ProjectID: projectID,
		Counts:    make(map[domain.SnapshotType]int),
		UpdatedAt: time.Now().UTC(),
	}
	files := make(map[string]bool)
	for i := range snaps {
		m.Counts[snaps[i].Type]++
		m.Total++
		files[snaps[i].SourceFile] = true
	}
	m.SourceFiles = make([]string, 0, len(files))
	for f := range files {
		m.SourceFiles = append(m.SourceFiles, f)
	}
	sort.Strings(m.SourceFiles)

	if err := s.manifests.SaveManifest(ctx, m); err != nil {
		return nil, fmt.Errorf("saving manifest for %s: %w", projectID, err)
	}

	s.logger.Info().
		Str("project_id", projectID).
		Int("snapshots", m.Total).
		Int("files", len(m.SourceFiles)).
		Msg("manifest rebuilt")
	return m, nil
}
