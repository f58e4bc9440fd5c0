// Package tabular extracts row data from CSV and TSV files.
package tabular

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/bracken-labs/snapnote/internal/core/domain"
	"github.com/bracken-labs/snapnote/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.Parser = (*Parser)(nil)

// maxPreviewRows bounds how many data rows land in the snapshot. The
// snapshot records the full row count either way.
const maxPreviewRows = 100

// Parser handles KindTabular files.
type Parser struct {
	logger zerolog.Logger
}

// New creates a tabular parser.
func New(logger zerolog.Logger) *Parser {
	return &Parser{
		logger: logger.With().Str("component", "tabular_parser").Logger(),
	}
}

func (p *Parser) Name() string {
	return "tabular_csv"
}

func (p *Parser) Kind() domain.FileKind {
	return domain.KindTabular
}

// Parse reads the table. Ragged rows are tolerated; rows the reader
// cannot recover from end the scan with a diagnostic instead of failing
// the file.
func (p *Parser) Parse(_ context.Context, file *domain.SourceFile) (*domain.ParseResult, error) {
	reader := csv.NewReader(bytes.NewReader(file.Content))
	if file.Language == "tsv" {
		reader.Comma = '\t'
	}
	reader.FieldsPerRecord = -1

	var (
		header      []string
		preview     []map[string]string
		rows        int
		diagnostics []string
	)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			diagnostics = append(diagnostics, fmt.Sprintf("row %d unreadable, scan stopped: %v", rows+1, err))
			break
		}
		if header == nil {
			header = record
			continue
		}
		rows++
		if len(preview) < maxPreviewRows {
			entry := make(map[string]string, len(header))
			for i, col := range header {
				if i < len(record) {
					entry[col] = record[i]
				}
			}
			preview = append(preview, entry)
		}
	}

	data := map[string]any{
		"csv.file.path": file.Rel,
		"csv.file.rows": rows,
	}
	if len(preview) > 0 {
		tableJSON, err := json.Marshal(preview)
		if err != nil {
			return nil, fmt.Errorf("encoding table preview: %w", err)
		}
		data["csv.table_data"] = string(tableJSON)
	}

	return &domain.ParseResult{
		Kind:        domain.KindTabular,
		Parser:      p.Name(),
		Language:    file.Language,
		Data:        data,
		Diagnostics: diagnostics,
		Truncated:   rows > maxPreviewRows,
	}, nil
}
