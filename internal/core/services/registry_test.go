package services

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bracken-labs/snapnote/internal/core/domain"
)

// stubParser is a fixed-output parser for one kind.
type stubParser struct {
	kind domain.FileKind
	name string
	data map[string]any
	err  error
}

func (p *stubParser) Name() string          { return p.name }
func (p *stubParser) Kind() domain.FileKind { return p.kind }

func (p *stubParser) Parse(_ context.Context, file *domain.SourceFile) (*domain.ParseResult, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &domain.ParseResult{
		Kind:   p.kind,
		Parser: p.name,
		Data:   p.data,
	}, nil
}

func TestRegistryRoutesByKind(t *testing.T) {
	reg, err := NewParserRegistry(zerolog.Nop(),
		&stubParser{kind: domain.KindCode, name: "code", data: map[string]any{"code.file.path": "x"}},
		&stubParser{kind: domain.KindDocument, name: "doc", data: map[string]any{"doc.title": "T"}},
	)
	require.NoError(t, err)

	assert.True(t, reg.Supported(domain.KindCode))
	assert.False(t, reg.Supported(domain.KindTabular))

	res, err := reg.Parse(context.Background(), &domain.SourceFile{Rel: "a.py", Kind: domain.KindCode})
	require.NoError(t, err)
	assert.Equal(t, "code", res.Parser)

	res, err = reg.Parse(context.Background(), &domain.SourceFile{Rel: "a.md", Kind: domain.KindDocument})
	require.NoError(t, err)
	assert.Equal(t, "doc", res.Parser)
}

func TestRegistryUnknownKind(t *testing.T) {
	reg, err := NewParserRegistry(zerolog.Nop(),
		&stubParser{kind: domain.KindCode, name: "code"})
	require.NoError(t, err)

	_, err = reg.Parse(context.Background(), &domain.SourceFile{Rel: "a.bin", Kind: domain.KindUnknown})
	assert.ErrorIs(t, err, domain.ErrNoParser)
}

func TestRegistryWrapsParserFailure(t *testing.T) {
	reg, err := NewParserRegistry(zerolog.Nop(),
		&stubParser{kind: domain.KindCode, name: "code", err: errors.New("boom")})
	require.NoError(t, err)

	_, err = reg.Parse(context.Background(), &domain.SourceFile{Rel: "a.py", Kind: domain.KindCode})
	assert.ErrorIs(t, err, domain.ErrParseFailed)
}

func TestRegistryRejectsDuplicateKind(t *testing.T) {
	_, err := NewParserRegistry(zerolog.Nop(),
		&stubParser{kind: domain.KindCode, name: "one"},
		&stubParser{kind: domain.KindCode, name: "two"},
	)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
