package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bracken-labs/snapnote/internal/core/domain"
	"github.com/bracken-labs/snapnote/internal/core/ports/driven"
)

// Ensure ParserRegistry implements the interface.
var _ driven.ParserRegistry = (*ParserRegistry)(nil)

// ParserRegistry routes files to the single parser registered for their
// kind. The table is fixed at construction; there is no runtime
// registration.
type ParserRegistry struct {
	table  map[domain.FileKind]driven.Parser
	logger zerolog.Logger
}

// NewParserRegistry builds the kind -> parser lookup table. Registering
// two parsers for one kind is a wiring bug and fails construction.
func NewParserRegistry(logger zerolog.Logger, parsers ...driven.Parser) (*ParserRegistry, error) {
	table := make(map[domain.FileKind]driven.Parser, len(parsers))
	for _, p := range parsers {
		if _, dup := table[p.Kind()]; dup {
			return nil, fmt.Errorf("%w: duplicate parser for kind %q", domain.ErrInvalidInput, p.Kind())
		}
		table[p.Kind()] = p
	}
	return &ParserRegistry{
		table:  table,
		logger: logger.With().Str("component", "parser_registry").Logger(),
	}, nil
}

// Parse dispatches the file by kind. An unregistered kind yields
// domain.ErrNoParser; a parser failure is wrapped as domain.ErrParseFailed.
// Either way the caller records a per-file failure and moves on.
func (r *ParserRegistry) Parse(ctx context.Context, file *domain.SourceFile) (*domain.ParseResult, error) {
	p, ok := r.table[file.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: kind %q (%s)", domain.ErrNoParser, file.Kind, file.Rel)
	}

	res, err := p.Parse(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s on %s: %v", domain.ErrParseFailed, p.Name(), file.Rel, err)
	}

	if len(res.Diagnostics) > 0 {
		r.logger.Debug().
			Str("file", file.Rel).
			Str("parser", p.Name()).
			Strs("diagnostics", res.Diagnostics).
			Msg("parser reported diagnostics")
	}
	return res, nil
}

// Supported reports whether a parser is registered for the kind.
func (r *ParserRegistry) Supported(kind domain.FileKind) bool {
	_, ok := r.table[kind]
	return ok
}
