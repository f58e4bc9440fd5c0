package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bracken-labs/snapnote/internal/core/domain"
	"github.com/bracken-labs/snapnote/internal/core/ports/driven"
	"github.com/bracken-labs/snapnote/internal/retry"
)

// SnapshotBuilder turns typed field sets into persisted snapshots,
// enforcing the idempotency contract: an unchanged source file dedupes to
// a no-op, a changed one merges fields into the existing row.
type SnapshotBuilder struct {
	store    driven.SnapshotStore
	retryCfg retry.Config
	logger   zerolog.Logger
}

// NewSnapshotBuilder creates a builder writing through the given store.
func NewSnapshotBuilder(store driven.SnapshotStore, retryCfg retry.Config, logger zerolog.Logger) *SnapshotBuilder {
	return &SnapshotBuilder{
		store:    store,
		retryCfg: retryCfg,
		logger:   logger.With().Str("component", "snapshot_builder").Logger(),
	}
}

// Build persists every typed field set extracted from one source file and
// returns the per-file account. Persistence failures after retries are
// recorded as failed outcomes; they never abort the file, let alone the
// run.
func (b *SnapshotBuilder) Build(ctx context.Context, projectID string, file *domain.SourceFile, sets []domain.TypedFieldSet) domain.FileAccount {
	account := domain.FileAccount{SourceFile: file.Rel}
	for _, set := range sets {
		outcome := b.buildOne(ctx, projectID, file, set)
		account.Record(outcome)
	}
	return account
}

func (b *SnapshotBuilder) buildOne(ctx context.Context, projectID string, file *domain.SourceFile, set domain.TypedFieldSet) domain.BuildOutcome {
	key := domain.Key{ProjectID: projectID, SourceFile: file.Rel, Type: set.Type}

	existing, err := b.store.Find(ctx, key)
	switch {
	case err == nil:
		if existing.Fingerprint == file.Fingerprint {
			b.logger.Debug().
				Str("project_id", projectID).
				Str("file", file.Rel).
				Str("type", string(set.Type)).
				Msg("fingerprint unchanged, skipping")
			return domain.OutcomeDeduplicated
		}
	case errors.Is(err, domain.ErrNotFound):
		existing = nil
	default:
		b.logger.Error().Err(err).
			Str("project_id", projectID).
			Str("file", file.Rel).
			Str("type", string(set.Type)).
			Msg("snapshot lookup failed")
		return domain.OutcomeFailed
	}

	now := time.Now().UTC()
	snap := &domain.Snapshot{
		ID:          uuid.NewString(),
		ProjectID:   projectID,
		SourceFile:  file.Rel,
		Type:        set.Type,
		Fields:      set.Fields,
		Fingerprint: file.Fingerprint,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = retry.Do(ctx, b.retryCfg, isTransient, func(ctx context.Context) error {
		_, upsertErr := b.store.Upsert(ctx, snap)
		return upsertErr
	})
	if err != nil {
		b.logger.Error().Err(err).
			Str("project_id", projectID).
			Str("file", file.Rel).
			Str("type", string(set.Type)).
			Msg("snapshot upsert failed after retries")
		return domain.OutcomeFailed
	}

	if existing != nil {
		return domain.OutcomeUpdated
	}
	return domain.OutcomeCreated
}

func isTransient(err error) bool {
	return errors.Is(err, domain.ErrWriteConflict)
}
