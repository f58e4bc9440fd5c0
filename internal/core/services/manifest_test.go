package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bracken-labs/snapnote/internal/adapters/driven/storage/memory"
	"github.com/bracken-labs/snapnote/internal/core/domain"
)

func TestRebuildComputesFromStore(t *testing.T) {
	store := memory.NewSnapshotStore()
	svc := NewManifestService(store, store, zerolog.Nop())

	seedSnapshot(t, store, "a.py", domain.TypeImports, domain.FieldSet{"x": "1"})
	seedSnapshot(t, store, "a.py", domain.TypeSecurity, domain.FieldSet{"x": "1"})
	seedSnapshot(t, store, "b.py", domain.TypeImports, domain.FieldSet{"x": "1"})

	m, err := svc.Rebuild(context.Background(), "p1")
	require.NoError(t, err)

	assert.Equal(t, 3, m.Total)
	assert.Equal(t, 2, m.Counts[domain.TypeImports])
	assert.Equal(t, 1, m.Counts[domain.TypeSecurity])
	assert.Equal(t, []string{"a.py", "b.py"}, m.SourceFiles)

	// persisted
	stored, err := svc.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, m.Total, stored.Total)
}

func TestRebuildIsIdempotent(t *testing.T) {
	store := memory.NewSnapshotStore()
	svc := NewManifestService(store, store, zerolog.Nop())

	seedSnapshot(t, store, "a.py", domain.TypeImports, domain.FieldSet{"x": "1"})

	first, err := svc.Rebuild(context.Background(), "p1")
	require.NoError(t, err)
	second, err := svc.Rebuild(context.Background(), "p1")
	require.NoError(t, err)

	assert.Equal(t, first.Total, second.Total)
	assert.Equal(t, first.Counts, second.Counts)
	assert.Equal(t, first.SourceFiles, second.SourceFiles)
}

func TestGetMissingManifest(t *testing.T) {
	store := memory.NewSnapshotStore()
	svc := NewManifestService(store, store, zerolog.Nop())

	_, err := svc.Get(context.Background(), "never-processed")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
