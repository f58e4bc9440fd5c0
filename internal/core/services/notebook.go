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

// Ensure NotebookService implements the interface.
var _ driving.NotebookService = (*NotebookService)(nil)

// NotebookService assembles the merged per-type view of a project's
// snapshots at query time. Nothing is persisted; the snapshots remain the
// only source of truth.
type NotebookService struct {
	store  driven.SnapshotStore
	schema *domain.Schema
	logger zerolog.Logger
}

// NewNotebookService creates a notebook assembler over the store.
func NewNotebookService(store driven.SnapshotStore, schema *domain.Schema, logger zerolog.Logger) *NotebookService {
	return &NotebookService{
		store:  store,
		schema: schema,
		logger: logger.With().Str("component", "notebook").Logger(),
	}
}

// Assemble merges every snapshot of the given type into one view. Fields
// consolidate deterministically: snapshots merge in source-file order,
// multi-valued fields union their values, single-valued fields keep the
// first fill and index later sources under repeats.
func (s *NotebookService) Assemble(ctx context.Context, projectID string, t domain.SnapshotType) (*domain.Notebook, error) {
	if projectID == "" {
		return nil, fmt.Errorf("%w: empty project id", domain.ErrInvalidInput)
	}
	if !s.schema.Has(t) {
		return nil, fmt.Errorf("%w: unknown snapshot type %q", domain.ErrInvalidInput, t)
	}

	snaps, err := s.store.ListByProject(ctx, projectID, t)
	if err != nil {
		return nil, fmt.Errorf("listing %s snapshots for %s: %w", t, projectID, err)
	}
	if len(snaps) == 0 {
		return nil, fmt.Errorf("%w: project %s has no %s snapshots", domain.ErrNotFound, projectID, t)
	}

	counts, err := s.store.CountsByType(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("counting snapshots for %s: %w", projectID, err)
	}
	total := 0
	for _, n := range counts {
		total += n
	}

	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].SourceFile < snaps[j].SourceFile
	})

	nb := &domain.Notebook{
		ProjectID:          projectID,
		Type:               t,
		SchemaID:           s.schema.ID(),
		AssembledAt:        time.Now().UTC(),
		Fields:             make(map[string]domain.NotebookField),
		SnapshotsAssembled: len(snaps),
		SnapshotsTotal:     total,
	}

	for i := range snaps {
		s.fold(nb, &snaps[i])
	}

	merged := make(domain.FieldSet, len(nb.Fields))
	for name, f := range nb.Fields {
		merged[name] = f.Value
	}
	nb.Coverage = domain.MeasureCoverage(merged, s.schema.RecognizedFields(t))

	return nb, nil
}

func (s *NotebookService) fold(nb *domain.Notebook, snap *domain.Snapshot) {
	for name, value := range snap.Fields {
		def, recognized := s.schema.FieldDef(nb.Type, name)
		if !recognized {
			// Stored before a schema change; carried, never merged as a list.
			def = domain.FieldDef{Name: name}
		}

		existing, present := nb.Fields[name]
		if !present {
			nb.Fields[name] = domain.NotebookField{
				Value:   value,
				Sources: []string{snap.SourceFile},
			}
			continue
		}

		if def.Multi {
			if a, b, ok := asStringLists(existing.Value, value); ok {
				existing.Value = unionStrings(a, b)
			}
			existing.Sources = appendUnique(existing.Sources, snap.SourceFile)
		} else {
			existing.Repeats = appendUnique(existing.Repeats, snap.SourceFile)
		}
		nb.Fields[name] = existing
	}
}

func appendUnique(list []string, s string) []string {
	for _, have := range list {
		if have == s {
			return list
		}
	}
	return append(list, s)
}
