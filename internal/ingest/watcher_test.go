package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchDebouncesBurst(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "package a\n")

	var (
		mu      sync.Mutex
		batches [][]string
	)
	gotBatch := make(chan struct{}, 4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	w := NewWatcher(50*time.Millisecond, zerolog.Nop())
	go func() {
		done <- w.Watch(ctx, root, func(paths []string) {
			mu.Lock()
			batches = append(batches, paths)
			mu.Unlock()
			gotBatch <- struct{}{}
		})
	}()

	// Let the watch set settle before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.go"), []byte("package a // v2\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.go"), []byte("package a\n"), 0o644))

	select {
	case <-gotBatch:
	case <-time.After(5 * time.Second):
		t.Fatal("no change batch arrived")
	}

	mu.Lock()
	require.NotEmpty(t, batches)
	// The burst collapses into one callback carrying both paths.
	assert.LessOrEqual(t, len(batches), 2)
	assert.NotEmpty(t, batches[0])
	mu.Unlock()

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWatchMissingRoot(t *testing.T) {
	w := NewWatcher(time.Millisecond, zerolog.Nop())
	err := w.Watch(context.Background(), filepath.Join(t.TempDir(), "absent"), func([]string) {})
	require.Error(t, err)
}

func TestWatchCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := NewWatcher(time.Millisecond, zerolog.Nop())
	err := w.Watch(ctx, t.TempDir(), func([]string) {})
	assert.ErrorIs(t, err, context.Canceled)
}
