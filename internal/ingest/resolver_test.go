package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bracken-labs/snapnote/internal/core/domain"
	"github.com/bracken-labs/snapnote/internal/core/ports/driven"
)

func TestResolveLocalPath(t *testing.T) {
	dir := t.TempDir()
	r := NewResolver(t.TempDir(), time.Minute, zerolog.Nop())

	root, err := r.Resolve(context.Background(), "p1", driven.ProjectSource{LocalPath: dir})
	require.NoError(t, err)
	assert.Equal(t, dir, root)
}

func TestResolveLocalPathMissing(t *testing.T) {
	r := NewResolver(t.TempDir(), time.Minute, zerolog.Nop())

	_, err := r.Resolve(context.Background(), "p1", driven.ProjectSource{
		LocalPath: filepath.Join(t.TempDir(), "absent"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestResolveLocalPathIsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	r := NewResolver(t.TempDir(), time.Minute, zerolog.Nop())

	_, err := r.Resolve(context.Background(), "p1", driven.ProjectSource{LocalPath: file})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestResolveEmptySource(t *testing.T) {
	r := NewResolver(t.TempDir(), time.Minute, zerolog.Nop())

	_, err := r.Resolve(context.Background(), "p1", driven.ProjectSource{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
