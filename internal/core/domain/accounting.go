package domain

import "time"

// BuildOutcome classifies what the snapshot builder did with one
// (file, type, fields) tuple.
type BuildOutcome string

const (
	// OutcomeCreated is a first-time insert.
	OutcomeCreated BuildOutcome = "created"

	// OutcomeUpdated is a field merge after a fingerprint change.
	OutcomeUpdated BuildOutcome = "updated"

	// OutcomeDeduplicated is the idempotency skip: same fingerprint,
	// nothing written. Logged, never an error.
	OutcomeDeduplicated BuildOutcome = "deduplicated"

	// OutcomeFailed is a persistence failure after retries.
	OutcomeFailed BuildOutcome = "failed"
)

// FileAccount records the builder's outcomes for one source file.
type FileAccount struct {
	SourceFile   string `json:"source_file"`
	Attempted    int    `json:"snapshots_attempted"`
	Created      int    `json:"snapshots_created"`
	Updated      int    `json:"snapshots_updated"`
	Deduplicated int    `json:"snapshots_deduplicated"`
	Failed       int    `json:"snapshots_failed"`
}

// Record tallies one outcome.
func (a *FileAccount) Record(o BuildOutcome) {
	a.Attempted++
	switch o {
	case OutcomeCreated:
		a.Created++
	case OutcomeUpdated:
		a.Updated++
	case OutcomeDeduplicated:
		a.Deduplicated++
	case OutcomeFailed:
		a.Failed++
	}
}

// RunSummary aggregates one processing run. Per-file failures land here
// instead of aborting the run.
type RunSummary struct {
	ProjectID string `json:"project_id"`

	FilesDiscovered int `json:"files_discovered"`
	FilesProcessed  int `json:"files_processed"`
	FilesFailed     int `json:"files_failed"`

	// FilesRejected counts hard-cap rejections; FilesSkipped counts files
	// never attempted (run timeout). Processed + Failed + Rejected +
	// Skipped always equals Discovered.
	FilesRejected int `json:"files_rejected"`
	FilesSkipped  int `json:"files_skipped"`

	Categorization map[Category]int `json:"file_categorization"`

	SnapshotsAttempted    int `json:"snapshots_attempted"`
	SnapshotsCreated      int `json:"snapshots_created"`
	SnapshotsUpdated      int `json:"snapshots_updated"`
	SnapshotsDeduplicated int `json:"snapshots_deduplicated"`
	SnapshotsFailed       int `json:"snapshots_failed"`

	SnapshotTypes map[SnapshotType]int `json:"snapshot_types"`
	ParsersUsed   map[string]int       `json:"parsers_used"`

	// FieldsFilled / FieldsMissing total the mapper's coverage counts.
	FieldsFilled  int `json:"fields_filled"`
	FieldsMissing int `json:"fields_missing"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// NewRunSummary initializes the counting maps.
func NewRunSummary(projectID string) *RunSummary {
	s := &RunSummary{
		ProjectID:      projectID,
		Categorization: make(map[Category]int, len(Categories)),
		SnapshotTypes:  make(map[SnapshotType]int),
		ParsersUsed:    make(map[string]int),
		StartedAt:      time.Now().UTC(),
	}
	for _, c := range Categories {
		s.Categorization[c] = 0
	}
	return s
}

// Absorb folds one file's account into the run totals.
func (s *RunSummary) Absorb(a FileAccount) {
	s.SnapshotsAttempted += a.Attempted
	s.SnapshotsCreated += a.Created
	s.SnapshotsUpdated += a.Updated
	s.SnapshotsDeduplicated += a.Deduplicated
	s.SnapshotsFailed += a.Failed
}

// Duration is the wall time of the run.
func (s *RunSummary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
