package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/bracken-labs/snapnote/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/bracken-labs/snapnote/internal/core/domain"
	"github.com/bracken-labs/snapnote/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to the
// snapshot, manifest and metrics store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.snapnote/data/snapshots.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".snapnote", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "snapshots.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SnapshotStore returns a SnapshotStore interface backed by this store.
func (s *Store) SnapshotStore() driven.SnapshotStore {
	return &snapshotStore{store: s}
}

// ManifestStore returns a ManifestStore interface backed by this store.
func (s *Store) ManifestStore() driven.ManifestStore {
	return &manifestStore{store: s}
}

// MetricsReader returns a MetricsReader interface backed by this store.
func (s *Store) MetricsReader() driven.MetricsReader {
	return &metricsReader{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// isBusy reports whether err is a transient SQLite contention error.
func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}

// ==================== Snapshot Store ====================

// snapshotStore implements driven.SnapshotStore.
type snapshotStore struct {
	store *Store
}

var _ driven.SnapshotStore = (*snapshotStore)(nil)

const snapshotColumns = `id, project_id, source_file, snapshot_type, field_values, fingerprint, created_at, updated_at`

// Find retrieves the live snapshot for a key.
func (s *snapshotStore) Find(ctx context.Context, key domain.Key) (*domain.Snapshot, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+snapshotColumns+`
		FROM snapshots
		WHERE project_id = ? AND source_file = ? AND snapshot_type = ?
	`, key.ProjectID, key.SourceFile, string(key.Type))

	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("snapshot %s/%s/%s: %w", key.ProjectID, key.SourceFile, key.Type, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Upsert inserts the snapshot or merges its fields into the existing row.
// json_patch applies the incoming field values over the stored ones in a
// single statement, so concurrent writers for one key serialize on the
// unique constraint and each merge is atomic.
func (s *snapshotStore) Upsert(ctx context.Context, snap *domain.Snapshot) (*domain.Snapshot, error) {
	fieldsJSON, err := json.Marshal(snap.Fields)
	if err != nil {
		return nil, fmt.Errorf("marshalling field values: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO snapshots (`+snapshotColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(project_id, source_file, snapshot_type) DO UPDATE SET
			field_values = json_patch(snapshots.field_values, excluded.field_values),
			fingerprint = excluded.fingerprint,
			updated_at = excluded.updated_at
	`, snap.ID, snap.ProjectID, snap.SourceFile, string(snap.Type),
		string(fieldsJSON), snap.Fingerprint, snap.CreatedAt.UTC(), snap.UpdatedAt.UTC())
	if err != nil {
		if isBusy(err) {
			return nil, fmt.Errorf("%w: %v", domain.ErrWriteConflict, err)
		}
		return nil, fmt.Errorf("upserting snapshot: %w", err)
	}

	return s.Find(ctx, snap.Key())
}

// ListByProject returns a project's snapshots, optionally filtered to one
// type.
func (s *snapshotStore) ListByProject(ctx context.Context, projectID string, t domain.SnapshotType) ([]domain.Snapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM snapshots
		WHERE project_id = ?`
	args := []any{projectID}
	if t != "" {
		query += ` AND snapshot_type = ?`
		args = append(args, string(t))
	}
	query += ` ORDER BY source_file, snapshot_type`

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var out []domain.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshots: %w", err)
	}
	return out, nil
}

// CountsByType returns live snapshot counts per type for a project.
func (s *snapshotStore) CountsByType(ctx context.Context, projectID string) (map[domain.SnapshotType]int, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT snapshot_type, COUNT(*)
		FROM snapshots
		WHERE project_id = ?
		GROUP BY snapshot_type
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("counting snapshots: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.SnapshotType]int)
	for rows.Next() {
		var t string
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		counts[domain.SnapshotType(t)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating counts: %w", err)
	}
	return counts, nil
}

// DeleteProject removes all snapshots and the manifest for a project in
// one transaction.
func (s *snapshotStore) DeleteProject(ctx context.Context, projectID string) (int, error) {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting delete transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE project_id = ?`, projectID)
	if err != nil {
		return 0, fmt.Errorf("deleting snapshots: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted snapshots: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM manifests WHERE project_id = ?`, projectID); err != nil {
		return 0, fmt.Errorf("deleting manifest: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing delete: %w", err)
	}
	return int(count), nil
}

// Ping verifies the store is reachable.
func (s *snapshotStore) Ping(ctx context.Context) error {
	if err := s.store.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// scanner covers sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	var snapshotType, fieldsJSON string
	err := row.Scan(&snap.ID, &snap.ProjectID, &snap.SourceFile, &snapshotType,
		&fieldsJSON, &snap.Fingerprint, &snap.CreatedAt, &snap.UpdatedAt)
	if err != nil {
		return nil, err
	}
	snap.Type = domain.SnapshotType(snapshotType)
	if err := json.Unmarshal([]byte(fieldsJSON), &snap.Fields); err != nil {
		return nil, fmt.Errorf("unmarshalling field values: %w", err)
	}
	return &snap, nil
}

// ==================== Manifest Store ====================

// manifestStore implements driven.ManifestStore.
type manifestStore struct {
	store *Store
}

var _ driven.ManifestStore = (*manifestStore)(nil)

// SaveManifest stores or replaces a project's manifest.
func (s *manifestStore) SaveManifest(ctx context.Context, m *domain.Manifest) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshalling manifest: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO manifests (project_id, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(project_id) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`, m.ProjectID, string(payload), m.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving manifest: %w", err)
	}
	return nil
}

// GetManifest retrieves a project's manifest.
func (s *manifestStore) GetManifest(ctx context.Context, projectID string) (*domain.Manifest, error) {
	var payload string
	row := s.store.db.QueryRowContext(ctx,
		`SELECT payload FROM manifests WHERE project_id = ?`, projectID)
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("manifest for %s: %w", projectID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("loading manifest: %w", err)
	}

	var m domain.Manifest
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		return nil, fmt.Errorf("unmarshalling manifest: %w", err)
	}
	return &m, nil
}

// ==================== Metrics Reader ====================

// metricsReader implements driven.MetricsReader.
type metricsReader struct {
	store *Store
}

var _ driven.MetricsReader = (*metricsReader)(nil)

// TotalSnapshots counts every live snapshot across projects.
func (s *metricsReader) TotalSnapshots(ctx context.Context) (int, error) {
	var n int
	row := s.store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots`)
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("counting snapshots: %w", err)
	}
	return n, nil
}

// GlobalCountsByType counts live snapshots per type across projects.
func (s *metricsReader) GlobalCountsByType(ctx context.Context) (map[domain.SnapshotType]int, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT snapshot_type, COUNT(*)
		FROM snapshots
		GROUP BY snapshot_type
	`)
	if err != nil {
		return nil, fmt.Errorf("counting snapshots by type: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.SnapshotType]int)
	for rows.Next() {
		var t string
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, fmt.Errorf("scanning type count: %w", err)
		}
		counts[domain.SnapshotType(t)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating type counts: %w", err)
	}
	return counts, nil
}

// RecentActivity counts snapshots created or updated since the cutoff.
func (s *metricsReader) RecentActivity(ctx context.Context, since time.Time) (int, error) {
	var n int
	row := s.store.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM snapshots WHERE updated_at >= ?`, since.UTC())
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("counting recent activity: %w", err)
	}
	return n, nil
}

// ProjectBreakdown returns per-project snapshot and file counts.
func (s *metricsReader) ProjectBreakdown(ctx context.Context) ([]driven.ProjectCount, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT project_id, COUNT(*), COUNT(DISTINCT source_file)
		FROM snapshots
		GROUP BY project_id
		ORDER BY project_id
	`)
	if err != nil {
		return nil, fmt.Errorf("reading project breakdown: %w", err)
	}
	defer rows.Close()

	var out []driven.ProjectCount
	for rows.Next() {
		var row driven.ProjectCount
		if err := rows.Scan(&row.ProjectID, &row.Snapshots, &row.Files); err != nil {
			return nil, fmt.Errorf("scanning project row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating project rows: %w", err)
	}
	return out, nil
}
