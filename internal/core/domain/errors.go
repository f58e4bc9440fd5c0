package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSchemaInvalid indicates the master schema is missing or malformed.
	// This is a fatal startup condition.
	ErrSchemaInvalid = errors.New("master schema invalid")

	// ErrStoreUnavailable indicates the snapshot store cannot be reached.
	// Like ErrSchemaInvalid, it aborts a run rather than a single file.
	ErrStoreUnavailable = errors.New("snapshot store unavailable")

	// ErrCategoryRejected indicates a file exceeded the hard line cap and
	// was not parsed. Counted per run, never fatal.
	ErrCategoryRejected = errors.New("file rejected by categorizer")

	// ErrNoParser indicates no parser is registered for a file kind.
	// The file is skipped and counted as failed.
	ErrNoParser = errors.New("no parser available")

	// ErrParseFailed indicates an external parser failed on one file.
	// The file is skipped and counted; the run continues.
	ErrParseFailed = errors.New("parse failed")

	// ErrWriteConflict indicates a transient storage conflict during upsert.
	// Retried with a bounded budget before becoming a per-file failure.
	ErrWriteConflict = errors.New("write conflict")

	// ErrDeletionPartial indicates project deletion removed some but not all
	// project data. A reportable inconsistency, never silently ignored.
	ErrDeletionPartial = errors.New("project deletion incomplete")
)
