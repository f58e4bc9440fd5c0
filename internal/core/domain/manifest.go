package domain

import "time"

// Manifest is the lightweight per-project pointer: counts by type and the
// known source files, without snapshot content. Derived data — always
// reconstructible from the project's snapshots, never authoritative.
type Manifest struct {
	ProjectID   string               `json:"project_id"`
	Counts      map[SnapshotType]int `json:"snapshot_counts"`
	SourceFiles []string             `json:"source_files"`
	Total       int                  `json:"snapshot_total"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// Notebook is the on-demand assembled view of all snapshots of one type
// for a project. Computed at query time, not separately persisted.
type Notebook struct {
	ProjectID   string                   `json:"project_id"`
	Type        SnapshotType             `json:"snapshot_type"`
	SchemaID    string                   `json:"schema_id"`
	AssembledAt time.Time                `json:"assembled_at"`
	Fields      map[string]NotebookField `json:"fields"`
	Coverage    Coverage                 `json:"coverage"`

	// SnapshotsAssembled is the number of snapshots of Type merged in;
	// SnapshotsTotal counts every live snapshot of the project.
	SnapshotsAssembled int `json:"snapshots_assembled"`
	SnapshotsTotal     int `json:"snapshots_total_project"`
}

// NotebookField is one consolidated field of a notebook. Multi-valued
// fields accumulate unique values across snapshots; single-valued fields
// keep the first fill and index later sources as repeats.
type NotebookField struct {
	Value   any      `json:"value"`
	Sources []string `json:"sources"`
	Repeats []string `json:"repeats_index,omitempty"`
}
