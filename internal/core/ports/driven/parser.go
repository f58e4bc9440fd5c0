package driven

import (
	"context"

	"github.com/bracken-labs/snapnote/internal/core/domain"
)

// Parser extracts structured data from source files of exactly one kind.
// Implementations are external collaborators behind this contract; the
// core never depends on a parser's internals.
type Parser interface {
	// Name identifies the parser in accounting and logs.
	Name() string

	// Kind is the single file kind this parser handles.
	Kind() domain.FileKind

	// Parse extracts data from one file into the normalized result.
	// A returned error is a per-file condition, never fatal to a run.
	Parse(ctx context.Context, file *domain.SourceFile) (*domain.ParseResult, error)
}

// ParserRegistry dispatches files to the parser registered for their
// kind. The kind set is closed: the lookup table is fixed at construction
// and adding a kind means adding one table entry.
type ParserRegistry interface {
	// Parse routes the file to its parser and normalizes failures:
	// an unregistered kind yields domain.ErrNoParser, a parser error is
	// wrapped as domain.ErrParseFailed.
	Parse(ctx context.Context, file *domain.SourceFile) (*domain.ParseResult, error)

	// Supported reports whether a parser is registered for the kind.
	Supported(kind domain.FileKind) bool
}
