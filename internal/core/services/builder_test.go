package services

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bracken-labs/snapnote/internal/adapters/driven/storage/memory"
	"github.com/bracken-labs/snapnote/internal/core/domain"
	"github.com/bracken-labs/snapnote/internal/core/ports/driven"
	"github.com/bracken-labs/snapnote/internal/retry"
)

func fastRetry() retry.Config {
	return retry.Config{MaxAttempts: 2, BaseDelay: 1, MaxDelay: 1}
}

func codeFile(rel, fingerprint string) *domain.SourceFile {
	return &domain.SourceFile{Rel: rel, Kind: domain.KindCode, Fingerprint: fingerprint}
}

func importSet(modules ...string) []domain.TypedFieldSet {
	return []domain.TypedFieldSet{{
		Type:   domain.TypeImports,
		Fields: domain.FieldSet{"code.imports.modules": modules},
	}}
}

func TestBuildCreatesSnapshots(t *testing.T) {
	store := memory.NewSnapshotStore()
	builder := NewSnapshotBuilder(store, fastRetry(), zerolog.Nop())

	account := builder.Build(context.Background(), "p1", codeFile("main.py", "fp1"), importSet("os"))

	assert.Equal(t, 1, account.Attempted)
	assert.Equal(t, 1, account.Created)
	assert.Zero(t, account.Failed)

	stored, err := store.Find(context.Background(),
		domain.Key{ProjectID: "p1", SourceFile: "main.py", Type: domain.TypeImports})
	require.NoError(t, err)
	assert.Equal(t, "fp1", stored.Fingerprint)
}

func TestBuildDeduplicatesUnchangedFile(t *testing.T) {
	store := memory.NewSnapshotStore()
	builder := NewSnapshotBuilder(store, fastRetry(), zerolog.Nop())
	ctx := context.Background()

	first := builder.Build(ctx, "p1", codeFile("main.py", "fp1"), importSet("os"))
	require.Equal(t, 1, first.Created)

	second := builder.Build(ctx, "p1", codeFile("main.py", "fp1"), importSet("os", "sys"))
	assert.Equal(t, 1, second.Deduplicated)
	assert.Zero(t, second.Created)
	assert.Zero(t, second.Updated)

	// the dedupe skipped the write entirely
	stored, err := store.Find(ctx, domain.Key{ProjectID: "p1", SourceFile: "main.py", Type: domain.TypeImports})
	require.NoError(t, err)
	assert.Equal(t, []string{"os"}, stored.Fields["code.imports.modules"])
}

func TestBuildMergesChangedFile(t *testing.T) {
	store := memory.NewSnapshotStore()
	builder := NewSnapshotBuilder(store, fastRetry(), zerolog.Nop())
	ctx := context.Background()

	builder.Build(ctx, "p1", codeFile("main.py", "fp1"), []domain.TypedFieldSet{{
		Type: domain.TypeImports,
		Fields: domain.FieldSet{
			"code.imports.modules":  []string{"os"},
			"code.imports.external": []string{"requests"},
		},
	}})

	account := builder.Build(ctx, "p1", codeFile("main.py", "fp2"), importSet("os", "json"))
	assert.Equal(t, 1, account.Updated)

	stored, err := store.Find(ctx, domain.Key{ProjectID: "p1", SourceFile: "main.py", Type: domain.TypeImports})
	require.NoError(t, err)
	assert.Equal(t, "fp2", stored.Fingerprint)
	assert.Equal(t, []string{"os", "json"}, stored.Fields["code.imports.modules"])
	assert.Equal(t, []string{"requests"}, stored.Fields["code.imports.external"])
}

// failingStore rejects upserts with a transient conflict.
type failingStore struct {
	driven.SnapshotStore
	attempts int
}

func (f *failingStore) Upsert(context.Context, *domain.Snapshot) (*domain.Snapshot, error) {
	f.attempts++
	return nil, domain.ErrWriteConflict
}

func TestBuildRecordsFailureAfterRetries(t *testing.T) {
	store := &failingStore{SnapshotStore: memory.NewSnapshotStore()}
	builder := NewSnapshotBuilder(store, fastRetry(), zerolog.Nop())

	account := builder.Build(context.Background(), "p1", codeFile("main.py", "fp1"), importSet("os"))

	assert.Equal(t, 1, account.Failed)
	assert.Zero(t, account.Created)
	// the retry budget was spent
	assert.Equal(t, 2, store.attempts)
}

// brokenStore fails lookups with a non-NotFound error.
type brokenStore struct {
	driven.SnapshotStore
}

func (brokenStore) Find(context.Context, domain.Key) (*domain.Snapshot, error) {
	return nil, errors.New("disk on fire")
}

func TestBuildFailsOnLookupError(t *testing.T) {
	builder := NewSnapshotBuilder(brokenStore{memory.NewSnapshotStore()}, fastRetry(), zerolog.Nop())

	account := builder.Build(context.Background(), "p1", codeFile("main.py", "fp1"), importSet("os"))
	assert.Equal(t, 1, account.Failed)
}
