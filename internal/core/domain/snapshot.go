package domain

import "time"

// Snapshot is the persisted unit of extracted knowledge: one field set for
// one (project, source file, snapshot type) triple. At most one live
// snapshot exists per triple; re-processing either no-ops (unchanged
// fingerprint) or merges fields in place (changed fingerprint).
type Snapshot struct {
	// ID is the generated unique identifier, stable across merges.
	ID string

	// ProjectID scopes the snapshot; no cross-project references exist.
	ProjectID string

	// SourceFile is the project-relative path the fields came from.
	SourceFile string

	// Type is the taxonomy bucket.
	Type SnapshotType

	// Fields holds the extracted values.
	Fields FieldSet

	// Fingerprint is the content hash of the source file at extraction
	// time. Drives the no-op vs merge decision.
	Fingerprint string

	// CreatedAt is set once at first insert.
	CreatedAt time.Time

	// UpdatedAt advances on every merge.
	UpdatedAt time.Time
}

// Key identifies the uniqueness triple of a snapshot.
type Key struct {
	ProjectID  string
	SourceFile string
	Type       SnapshotType
}

// Key returns the snapshot's uniqueness triple.
func (s *Snapshot) Key() Key {
	return Key{ProjectID: s.ProjectID, SourceFile: s.SourceFile, Type: s.Type}
}

// MergeFields applies last-writer-wins per field: values present in
// incoming overwrite stored ones, stored fields absent from incoming are
// retained. Returns the merged set without mutating either input.
func MergeFields(stored, incoming FieldSet) FieldSet {
	merged := stored.Clone()
	if merged == nil {
		merged = make(FieldSet, len(incoming))
	}
	for k, v := range incoming {
		merged[k] = v
	}
	return merged
}
