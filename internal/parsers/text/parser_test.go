package text

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bracken-labs/snapnote/internal/core/domain"
)

func parseDoc(t *testing.T, lang, src string) map[string]any {
	t.Helper()
	p := New(zerolog.Nop())
	res, err := p.Parse(context.Background(), &domain.SourceFile{
		Rel:      "doc." + lang,
		Kind:     domain.KindDocument,
		Language: lang,
		Content:  []byte(src),
	})
	require.NoError(t, err)
	return res.Data
}

func TestParseMarkdown(t *testing.T) {
	data := parseDoc(t, "md", `# Design Overview

Author: Dana
Version: 1.2

This service MUST persist snapshots idempotently. See the HTTP API
docs at https://example.com/api for details.

## Storage

We decided to use SQLite because the CLI runs locally.

There is a risk that concurrent writers collide.

Should retries be bounded?

` + "```go\nfunc main() {}\n```" + `
`)

	assert.Equal(t, "Design Overview", data["doc.title"])
	assert.Equal(t, "Dana", data["doc.author"])
	assert.Equal(t, "1.2", data["doc.version"])

	assert.Contains(t, data["doc.key_concepts"], "Storage")
	assert.Contains(t, data["doc.urls"], "https://example.com/api")

	snippets, ok := data["doc.code_snippets"].([]string)
	require.True(t, ok)
	require.Len(t, snippets, 1)
	assert.Contains(t, snippets[0], "func main()")

	requirements, _ := data["doc.key_requirements"].([]string)
	require.NotEmpty(t, requirements)
	assert.Contains(t, requirements[0], "MUST persist")

	decisions, _ := data["doc.decisions"].([]string)
	require.NotEmpty(t, decisions)
	assert.Contains(t, decisions[0], "SQLite")

	risks, _ := data["doc.risks"].([]string)
	assert.NotEmpty(t, risks)

	questions, _ := data["doc.open_questions"].([]string)
	require.NotEmpty(t, questions)
	assert.Contains(t, questions[0], "retries")

	assert.Contains(t, data["doc.acronyms"], "HTTP")

	summary, _ := data["doc.summary"].(string)
	assert.Contains(t, summary, "persist snapshots")
}

func TestParseHTMLTitle(t *testing.T) {
	data := parseDoc(t, "html", `<html><head><title>Release Notes</title></head>
<body><h1>ignored</h1><p>Plain text body.</p></body></html>`)

	assert.Equal(t, "Release Notes", data["doc.title"])
}

func TestParsePlainTextFallbackTitle(t *testing.T) {
	data := parseDoc(t, "txt", "\n\nOperations Runbook\n\nRestart the service weekly.\n")

	assert.Equal(t, "Operations Runbook", data["doc.title"])
}

func TestParseEmptyDocument(t *testing.T) {
	data := parseDoc(t, "txt", "")

	assert.NotContains(t, data, "doc.title")
	assert.NotContains(t, data, "doc.summary")
}

// buildDocx assembles a minimal DOCX archive in memory.
func buildDocx(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestParseDocx(t *testing.T) {
	content := buildDocx(t, map[string]string{
		"word/document.xml": `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Quarterly Report</w:t></w:r></w:p>
<w:p><w:r><w:t>Revenue MUST be reported monthly.</w:t></w:r></w:p>
</w:body>
</w:document>`,
		"docProps/core.xml": `<?xml version="1.0"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
 xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>Q3 Financials</dc:title></cp:coreProperties>`,
	})

	p := New(zerolog.Nop())
	res, err := p.Parse(context.Background(), &domain.SourceFile{
		Rel:      "docs/q3.docx",
		Kind:     domain.KindDocument,
		Language: "docx",
		Content:  content,
	})
	require.NoError(t, err)
	assert.Empty(t, res.Diagnostics)

	assert.Equal(t, "Q3 Financials", res.Data["doc.title"])
	summary, _ := res.Data["doc.summary"].(string)
	assert.Contains(t, summary, "Revenue")

	requirements, _ := res.Data["doc.key_requirements"].([]string)
	require.NotEmpty(t, requirements)
	assert.Contains(t, requirements[0], "MUST")
}

func TestParseDocxCorruptArchive(t *testing.T) {
	p := New(zerolog.Nop())
	res, err := p.Parse(context.Background(), &domain.SourceFile{
		Rel:      "docs/notes.docx",
		Kind:     domain.KindDocument,
		Language: "docx",
		Content:  []byte("not a zip archive"),
	})
	require.NoError(t, err)

	require.Len(t, res.Diagnostics, 1)
	assert.Contains(t, res.Diagnostics[0], "docx extraction failed")
	// The filename still yields a title.
	assert.Equal(t, "notes", res.Data["doc.title"])
}

// stubRunner stands in for pdftotext.
type stubRunner struct {
	out []byte
	err error
}

func (r stubRunner) Run(context.Context, string, ...string) ([]byte, error) {
	return r.out, r.err
}

func TestParsePDF(t *testing.T) {
	p := New(zerolog.Nop())
	p.runner = stubRunner{out: []byte("Invoice 2024\n\nAmount due is 100 USD.\n")}

	res, err := p.Parse(context.Background(), &domain.SourceFile{
		Rel:      "docs/invoice_2024.pdf",
		Kind:     domain.KindDocument,
		Language: "pdf",
		Content:  []byte("%PDF-1.4"),
	})
	require.NoError(t, err)
	assert.Empty(t, res.Diagnostics)

	assert.Equal(t, "Invoice 2024", res.Data["doc.title"])
	summary, _ := res.Data["doc.summary"].(string)
	assert.Contains(t, summary, "Amount due")
}

func TestParsePDFExtractionFailure(t *testing.T) {
	p := New(zerolog.Nop())
	p.runner = stubRunner{err: errors.New("pdftotext not installed")}

	res, err := p.Parse(context.Background(), &domain.SourceFile{
		Rel:      "docs/invoice_2024.pdf",
		Kind:     domain.KindDocument,
		Language: "pdf",
		Content:  []byte("%PDF-1.4"),
	})
	require.NoError(t, err)

	require.Len(t, res.Diagnostics, 1)
	assert.Contains(t, res.Diagnostics[0], "pdf extraction failed")
	assert.Equal(t, "invoice 2024", res.Data["doc.title"])
}

func TestParseRTF(t *testing.T) {
	data := parseDoc(t, "rtf", `{\rtf1\ansi Release Notes\par Fixed the \b critical\b0  bug.}`)

	assert.Equal(t, "Release Notes", data["doc.title"])
	summary, _ := data["doc.summary"].(string)
	assert.Contains(t, summary, "critical bug")
}

func TestStripRTF(t *testing.T) {
	got := stripRTF([]byte(`{\rtf1\ansi First\par Second\par Third}`))
	assert.Equal(t, "First\nSecond\nThird", got)
}
