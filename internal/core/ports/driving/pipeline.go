package driving

import (
	"context"

	"github.com/bracken-labs/snapnote/internal/core/domain"
)

// RunState names the phases of a processing run.
type RunState string

const (
	StateEnumerating  RunState = "enumerating"
	StateCategorizing RunState = "categorizing"
	StateParsing      RunState = "parsing"
	StateMapping      RunState = "mapping"
	StateBuilding     RunState = "building"
	StateAssembling   RunState = "assembling"
	StateDone         RunState = "done"

	// StateFailed is terminal and reachable only from unrecoverable
	// precondition failures; per-file failures never transition here.
	StateFailed RunState = "failed"
)

// ProcessRequest describes one pipeline invocation.
type ProcessRequest struct {
	ProjectID string
	VendorID  string

	// Exactly one of RepoURL / LocalPath is set.
	RepoURL   string
	LocalPath string

	// TypeFilter, when non-empty, restricts which snapshot types are
	// built from the mapped field sets.
	TypeFilter domain.SnapshotType
}

// ProcessResult is what a run returns to callers: the rebuilt manifest
// (the lightweight pointer contract) plus the run accounting.
type ProcessResult struct {
	Manifest *domain.Manifest   `json:"manifest"`
	Summary  *domain.RunSummary `json:"summary"`
}

// Pipeline drives a processing run end to end. ProcessProject always
// returns a manifest together with run accounting; per-file failures are
// reported in the summary, never raised.
type Pipeline interface {
	ProcessProject(ctx context.Context, req ProcessRequest) (*ProcessResult, error)
}

// ProjectAdmin covers project lifecycle outside of runs.
type ProjectAdmin interface {
	// DeleteProject removes all snapshots, the manifest and the working
	// directory of a project, returning the snapshot count removed.
	DeleteProject(ctx context.Context, projectID string) (int, error)
}
