package driven

import (
	"time"

	"github.com/bracken-labs/snapnote/internal/core/domain"
)

// RunObserver receives pipeline instrumentation events. Implementations
// must be cheap and non-blocking; the pipeline calls them inline.
type RunObserver interface {
	FileProcessed(kind domain.FileKind, category domain.Category)
	SnapshotOutcome(outcome domain.BuildOutcome)
	RunCompleted(projectID string, failed bool, duration time.Duration)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) FileProcessed(domain.FileKind, domain.Category)   {}
func (NopObserver) SnapshotOutcome(domain.BuildOutcome)              {}
func (NopObserver) RunCompleted(string, bool, time.Duration)         {}

var _ RunObserver = NopObserver{}
