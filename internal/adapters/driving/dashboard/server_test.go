package dashboard

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bracken-labs/snapnote/internal/adapters/driven/storage/memory"
	"github.com/bracken-labs/snapnote/internal/core/domain"
	"github.com/bracken-labs/snapnote/internal/core/services"
	"github.com/bracken-labs/snapnote/internal/metrics"
	"github.com/bracken-labs/snapnote/internal/schema"
)

func setupTestServer(t *testing.T) (*Server, *memory.SnapshotStore) {
	t.Helper()

	master, err := schema.Master()
	require.NoError(t, err)

	store := memory.NewSnapshotStore()
	logger := zerolog.Nop()

	srv := NewServer(
		ServerConfig{RecentWindow: time.Hour},
		services.NewMetricsService(store, logger),
		services.NewManifestService(store, store, logger),
		services.NewNotebookService(store, master, logger),
		metrics.New(),
		logger,
	)
	return srv, store
}

func seedSnapshot(t *testing.T, store *memory.SnapshotStore, projectID, file string, st domain.SnapshotType, fields domain.FieldSet) {
	t.Helper()
	_, err := store.Upsert(context.Background(), &domain.Snapshot{
		ID:          "snap-" + file,
		ProjectID:   projectID,
		SourceFile:  file,
		Type:        st,
		Fingerprint: domain.Fingerprint([]byte(file)),
		Fields:      fields,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	})
	require.NoError(t, err)
}

func doRequest(t *testing.T, srv *Server, path string) (*http.Response, []byte) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, body
}

func TestHealthz(t *testing.T) {
	srv, _ := setupTestServer(t)

	resp, body := doRequest(t, srv, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "ok", payload["status"])
	assert.NotEmpty(t, payload["uptime"])
}

func TestAggregateMetricsEndpoint(t *testing.T) {
	srv, store := setupTestServer(t)
	seedSnapshot(t, store, "proj-a", "main.py", domain.SnapshotType("functions"), domain.FieldSet{
		"code.functions.names": []string{"main"},
	})

	resp, body := doRequest(t, srv, "/api/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var agg struct {
		TotalSnapshots int            `json:"total_snapshots"`
		ByType         map[string]int `json:"by_type"`
	}
	require.NoError(t, json.Unmarshal(body, &agg))
	assert.Equal(t, 1, agg.TotalSnapshots)
	assert.Equal(t, 1, agg.ByType["functions"])
}

func TestProjectManifestEndpoint(t *testing.T) {
	srv, store := setupTestServer(t)
	require.NoError(t, store.SaveManifest(context.Background(), &domain.Manifest{
		ProjectID:   "proj-a",
		Counts:      map[domain.SnapshotType]int{"functions": 2},
		SourceFiles: []string{"a.py", "b.py"},
		Total:       2,
		UpdatedAt:   time.Now().UTC(),
	}))

	resp, body := doRequest(t, srv, "/api/projects/proj-a/manifest")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var m domain.Manifest
	require.NoError(t, json.Unmarshal(body, &m))
	assert.Equal(t, "proj-a", m.ProjectID)
	assert.Equal(t, 2, m.Total)
}

func TestProjectManifestNotFound(t *testing.T) {
	srv, _ := setupTestServer(t)

	resp, _ := doRequest(t, srv, "/api/projects/ghost/manifest")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProjectNotebookEndpoint(t *testing.T) {
	srv, store := setupTestServer(t)
	seedSnapshot(t, store, "proj-a", "main.py", domain.SnapshotType("imports"), domain.FieldSet{
		"code.imports.modules": []string{"os"},
	})

	resp, body := doRequest(t, srv, "/api/projects/proj-a/notebook?type=imports")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var nb domain.Notebook
	require.NoError(t, json.Unmarshal(body, &nb))
	assert.Equal(t, domain.SnapshotType("imports"), nb.Type)
	assert.Equal(t, 1, nb.SnapshotsAssembled)
}

func TestProjectNotebookMissingType(t *testing.T) {
	srv, _ := setupTestServer(t)

	resp, _ := doRequest(t, srv, "/api/projects/proj-a/notebook")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProjectNotebookUnknownType(t *testing.T) {
	srv, _ := setupTestServer(t)

	resp, _ := doRequest(t, srv, "/api/projects/proj-a/notebook?type=nonsense")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProjectNotebookNotFound(t *testing.T) {
	srv, _ := setupTestServer(t)

	resp, _ := doRequest(t, srv, "/api/projects/ghost/notebook?type=imports")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPrometheusEndpoint(t *testing.T) {
	srv, _ := setupTestServer(t)

	resp, _ := doRequest(t, srv, "/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
