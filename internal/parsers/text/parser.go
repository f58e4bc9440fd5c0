// Package text extracts metadata, content and analysis fields from
// document files (markdown, plain text, HTML).
package text

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bracken-labs/snapnote/internal/core/domain"
	"github.com/bracken-labs/snapnote/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.Parser = (*Parser)(nil)

// Parser handles KindDocument files with line-level heuristics. Binary
// document formats (docx, pdf, rtf) are reduced to plain text first.
// Documents are free-form, so every extraction here is best-effort;
// missing fields are simply absent from the result.
type Parser struct {
	runner CommandRunner
	logger zerolog.Logger
}

// New creates a document parser.
func New(logger zerolog.Logger) *Parser {
	return &Parser{
		runner: execRunner{},
		logger: logger.With().Str("component", "text_parser").Logger(),
	}
}

func (p *Parser) Name() string {
	return "text_heuristic"
}

func (p *Parser) Kind() domain.FileKind {
	return domain.KindDocument
}

const (
	maxSummaryLen  = 500
	maxListEntries = 50
)

var (
	reHeading     = regexp.MustCompile(`^#{1,6}\s+(.+?)\s*#*$`)
	reHTMLTitle   = regexp.MustCompile(`(?i)<title>\s*(.*?)\s*</title>`)
	reHTMLTag     = regexp.MustCompile(`<[^>]+>`)
	reURL         = regexp.MustCompile(`https?://[^\s)>\]"']+`)
	reMeta        = regexp.MustCompile(`(?i)^\s*(author|date|version|language)\s*[:=]\s*(.+?)\s*$`)
	reAcronym     = regexp.MustCompile(`\b[A-Z][A-Z0-9]{1,5}\b`)
	reTechTerm    = regexp.MustCompile("`([^`\n]+)`")
	reReference   = regexp.MustCompile(`(?i)^\s*(?:\[\d+\]|see also|ref(?:erence)?s?[:\s])\s*(.+)$`)
	reRequirement = regexp.MustCompile(`(?i)\b(must|shall|required to|should)\b`)
	reDecision    = regexp.MustCompile(`(?i)\b(decided|decision|we chose|we will use)\b`)
	reRisk        = regexp.MustCompile(`(?i)\b(risk|danger|caveat|warning)\b`)
	reAssumption  = regexp.MustCompile(`(?i)\b(assume[sd]?|assumption|assuming)\b`)
	reEntity      = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s[A-Z][a-z]+)+\b`)
)

// Parse extracts document fields from one file.
func (p *Parser) Parse(ctx context.Context, file *domain.SourceFile) (*domain.ParseResult, error) {
	body := string(file.Content)
	isHTML := file.Language == "html" || file.Language == "htm"

	data := map[string]any{}

	var title string
	var diagnostics []string
	switch file.Language {
	case "docx":
		t, text, err := extractDocx(file.Content)
		if err != nil {
			diagnostics = append(diagnostics, fmt.Sprintf("docx extraction failed: %v", err))
			body = ""
		} else {
			title, body = t, text
		}
	case "pdf":
		text, err := p.extractPDF(ctx, file.Content)
		if err != nil {
			diagnostics = append(diagnostics, fmt.Sprintf("pdf extraction failed: %v", err))
			body = ""
		} else {
			body = text
		}
	case "rtf":
		body = stripRTF(file.Content)
	}
	if isHTML {
		if m := reHTMLTitle.FindStringSubmatch(body); m != nil {
			title = m[1]
		}
		body = reHTMLTag.ReplaceAllString(body, " ")
	}

	lines := strings.Split(body, "\n")

	var (
		concepts     []string
		snippets     []string
		references   []string
		requirements []string
		decisions    []string
		risks        []string
		questions    []string
		assumptions  []string
	)

	inFence := false
	var fence strings.Builder
	for _, raw := range lines {
		line := strings.TrimRight(raw, " \t")
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			if inFence {
				snippets = capList(append(snippets, strings.TrimSpace(fence.String())))
				fence.Reset()
			}
			inFence = !inFence
			continue
		}
		if inFence {
			fence.WriteString(line)
			fence.WriteString("\n")
			continue
		}

		if m := reHeading.FindStringSubmatch(trimmed); m != nil {
			if title == "" {
				title = m[1]
			} else {
				concepts = capList(appendUnique(concepts, m[1]))
			}
			continue
		}

		if m := reMeta.FindStringSubmatch(trimmed); m != nil {
			key := "doc." + strings.ToLower(m[1])
			if _, taken := data[key]; !taken {
				data[key] = m[2]
			}
			continue
		}

		if m := reReference.FindStringSubmatch(trimmed); m != nil {
			references = capList(appendUnique(references, strings.TrimSpace(m[1])))
		}
		if reRequirement.MatchString(trimmed) {
			requirements = capList(appendUnique(requirements, trimmed))
		}
		if reDecision.MatchString(trimmed) {
			decisions = capList(appendUnique(decisions, trimmed))
		}
		if reRisk.MatchString(trimmed) {
			risks = capList(appendUnique(risks, trimmed))
		}
		if reAssumption.MatchString(trimmed) {
			assumptions = capList(appendUnique(assumptions, trimmed))
		}
		if strings.HasSuffix(trimmed, "?") || strings.Contains(trimmed, "TBD") {
			if trimmed != "?" && trimmed != "" {
				questions = capList(appendUnique(questions, trimmed))
			}
		}
	}

	if title == "" {
		for _, raw := range lines {
			if t := strings.TrimSpace(raw); t != "" {
				title = t
				break
			}
		}
	}
	if title == "" && isBinaryDoc(file.Language) {
		title = titleFromFilename(file.Rel)
	}
	if title != "" {
		data["doc.title"] = title
	}
	if summary := firstParagraph(lines, title); summary != "" {
		data["doc.summary"] = summary
	}

	putList(data, "doc.key_concepts", concepts)
	putList(data, "doc.code_snippets", snippets)
	putList(data, "doc.urls", capList(uniqueMatches(reURL, body)))
	putList(data, "doc.references", references)
	putList(data, "doc.entities", capList(uniqueMatches(reEntity, body)))
	putList(data, "doc.acronyms", capList(uniqueMatches(reAcronym, body)))
	putList(data, "doc.technical_terms", capList(uniqueGroupMatches(reTechTerm, body)))
	putList(data, "doc.key_requirements", requirements)
	putList(data, "doc.decisions", decisions)
	putList(data, "doc.risks", risks)
	putList(data, "doc.open_questions", questions)
	putList(data, "doc.assumptions", assumptions)

	return &domain.ParseResult{
		Kind:        domain.KindDocument,
		Parser:      p.Name(),
		Language:    file.Language,
		Data:        data,
		Diagnostics: diagnostics,
	}, nil
}

func isBinaryDoc(lang string) bool {
	return lang == "docx" || lang == "pdf" || lang == "rtf"
}

// titleFromFilename derives a readable title from the file name when the
// document itself carries none.
func titleFromFilename(rel string) string {
	name := filepath.Base(rel)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return strings.TrimSpace(name)
}

// firstParagraph joins the first run of non-heading prose lines.
func firstParagraph(lines []string, title string) string {
	var b strings.Builder
	started := false
	for _, raw := range lines {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || trimmed == title {
			if started {
				break
			}
			continue
		}
		if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "```") {
			if started {
				break
			}
			continue
		}
		if reMeta.MatchString(trimmed) {
			continue
		}
		if started {
			b.WriteString(" ")
		}
		b.WriteString(trimmed)
		started = true
		if b.Len() >= maxSummaryLen {
			break
		}
	}
	out := b.String()
	if len(out) > maxSummaryLen {
		out = out[:maxSummaryLen]
	}
	return out
}

func uniqueMatches(re *regexp.Regexp, body string) []string {
	var out []string
	for _, m := range re.FindAllString(body, -1) {
		out = appendUnique(out, m)
	}
	return out
}

func uniqueGroupMatches(re *regexp.Regexp, body string) []string {
	var out []string
	for _, m := range re.FindAllStringSubmatch(body, -1) {
		out = appendUnique(out, m[1])
	}
	return out
}

func capList(list []string) []string {
	if len(list) > maxListEntries {
		return list[:maxListEntries]
	}
	return list
}

func putList(data map[string]any, field string, values []string) {
	if len(values) > 0 {
		data[field] = values
	}
}

func appendUnique(list []string, s string) []string {
	for _, have := range list {
		if have == s {
			return list
		}
	}
	return append(list, s)
}
