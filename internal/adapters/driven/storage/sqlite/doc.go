// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - SnapshotStore: snapshot persistence with atomic per-field merging
//   - ManifestStore: per-project manifest cache persistence
//   - MetricsReader: cross-project aggregate queries
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory.
//
// # Data Location
//
// By default, the database is stored at ~/.snapnote/data/snapshots.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode. Field merges happen inside a single upsert statement,
// so concurrent writers for one snapshot key never interleave partial merges.
package sqlite
