package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bracken-labs/snapnote/internal/core/domain"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func byRel(files []domain.SourceFile) map[string]domain.SourceFile {
	out := make(map[string]domain.SourceFile, len(files))
	for _, f := range files {
		out[f.Rel] = f
	}
	return out
}

func TestFilesEnumeratesAndTags(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n\nfunc main() {}\n")
	writeFile(t, root, "docs/README.md", "# Hello\n")
	writeFile(t, root, "data/users.csv", "name\nalice\n")
	writeFile(t, root, "docs/manual.pdf", "%PDF-1.4")
	writeFile(t, root, "docs/notes.docx", "PK")
	writeFile(t, root, "image.bin", "\x00\x01")

	files, err := NewWalker(zerolog.Nop()).Files(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, files, 6)

	got := byRel(files)
	assert.Equal(t, domain.KindCode, got["main.go"].Kind)
	assert.Equal(t, "go", got["main.go"].Language)
	assert.Equal(t, domain.KindDocument, got["docs/README.md"].Kind)
	assert.Equal(t, domain.KindDocument, got["docs/manual.pdf"].Kind)
	assert.Equal(t, domain.KindDocument, got["docs/notes.docx"].Kind)
	assert.Equal(t, domain.KindTabular, got["data/users.csv"].Kind)
	assert.Equal(t, domain.KindUnknown, got["image.bin"].Kind)

	// Blank lines do not count.
	assert.Equal(t, 2, got["main.go"].Lines)
	assert.Len(t, got["main.go"].Fingerprint, 64)
	assert.Equal(t, []byte("# Hello\n"), got["docs/README.md"].Content)
}

func TestFilesSkipsNoiseDirsAndHidden(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.py", "x = 1\n")
	writeFile(t, root, ".git/config", "[core]\n")
	writeFile(t, root, "node_modules/pkg/index.js", "module.exports = {}\n")
	writeFile(t, root, "vendor/lib.go", "package lib\n")
	writeFile(t, root, ".env", "SECRET=1\n")
	writeFile(t, root, "src/.hidden.py", "y = 2\n")

	files, err := NewWalker(zerolog.Nop()).Files(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "app.py", files[0].Rel)
}

func TestFilesHiddenRootIsWalked(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, ".workspace")
	writeFile(t, base, ".workspace/main.go", "package main\n")

	files, err := NewWalker(zerolog.Nop()).Files(context.Background(), root)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestFilesCancelledContext(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "package a\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewWalker(zerolog.Nop()).Files(ctx, root)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFilesMissingRoot(t *testing.T) {
	_, err := NewWalker(zerolog.Nop()).Files(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestCountLines(t *testing.T) {
	assert.Equal(t, 0, countLines(nil))
	assert.Equal(t, 0, countLines([]byte("\n  \n\t\n")))
	assert.Equal(t, 3, countLines([]byte("a\n\nb\nc")))
}
