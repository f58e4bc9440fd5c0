// Package code extracts structural, security and quality data from source
// code files using Tree-sitter grammars.
package code

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
	"github.com/rs/zerolog"

	"github.com/bracken-labs/snapnote/internal/core/domain"
	"github.com/bracken-labs/snapnote/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.Parser = (*Parser)(nil)

// Parser handles KindCode files. Tree-sitter is error-tolerant: syntax
// errors are reported as diagnostics and extraction continues on the
// parsable portion of the tree.
type Parser struct {
	logger zerolog.Logger
}

// New creates a code parser.
func New(logger zerolog.Logger) *Parser {
	return &Parser{
		logger: logger.With().Str("component", "code_parser").Logger(),
	}
}

// Name identifies the parser in accounting.
func (p *Parser) Name() string {
	return "code_treesitter"
}

// Kind reports the file kind this parser handles.
func (p *Parser) Kind() domain.FileKind {
	return domain.KindCode
}

// extraction accumulates structural data during an AST walk.
type extraction struct {
	packageName string

	imports       []string
	importsExt    []string
	importsInt    []string
	importFiles   []string

	exportedFuncs []string
	exportedTypes []string
	exportedConst []string

	funcNames  []string
	funcSigs   []string
	asyncFuncs []string
	decorators []string

	classNames   []string
	inheritance  []string
	classMethods []string
	interfaces   []string

	diagnostics []string
}

func language(lang string) *sitter.Language {
	switch lang {
	case "go":
		return golang.GetLanguage()
	case "py":
		return python.GetLanguage()
	case "js", "jsx", "mjs":
		return javascript.GetLanguage()
	case "ts", "tsx":
		return typescript.GetLanguage()
	default:
		return nil
	}
}

// Parse extracts structured data from one code file. Unsupported
// languages still yield file metadata and the line-scan fields; only the
// AST-derived fields are absent.
func (p *Parser) Parse(ctx context.Context, file *domain.SourceFile) (*domain.ParseResult, error) {
	ext := &extraction{}

	lang := language(file.Language)
	if lang == nil {
		ext.diagnostics = append(ext.diagnostics,
			fmt.Sprintf("no grammar for language %q, structural fields skipped", file.Language))
	} else {
		parser := sitter.NewParser()
		parser.SetLanguage(lang)
		tree, err := parser.ParseCtx(ctx, nil, file.Content)
		if err != nil {
			return nil, fmt.Errorf("tree-sitter parse: %w", err)
		}
		defer tree.Close()

		root := tree.RootNode()
		if root.HasError() {
			ext.diagnostics = append(ext.diagnostics, "syntax errors tolerated during extraction")
		}

		switch file.Language {
		case "go":
			walkGo(root, file.Content, ext)
		case "py":
			walkPython(root, file.Content, ext)
		default:
			walkJS(root, file.Content, ext)
		}
	}

	scan := scanLines(file.Content)

	data := map[string]any{
		"code.file.path":     file.Rel,
		"code.file.language": file.Language,
		"code.file.loc":      file.Lines,
	}
	if ext.packageName != "" {
		data["code.file.package"] = ext.packageName
	}

	putList(data, "code.imports.modules", ext.imports)
	putList(data, "code.imports.external", ext.importsExt)
	putList(data, "code.imports.internal", ext.importsInt)
	putList(data, "code.imports.from_files", ext.importFiles)

	putList(data, "code.exports.functions", ext.exportedFuncs)
	putList(data, "code.exports.classes", exportedOf(ext.classNames))
	putList(data, "code.exports.constants", ext.exportedConst)
	putList(data, "code.exports.types", ext.exportedTypes)

	putList(data, "code.functions.names", ext.funcNames)
	putList(data, "code.functions.signatures", ext.funcSigs)
	putList(data, "code.functions.async", ext.asyncFuncs)
	putList(data, "code.functions.decorators", ext.decorators)

	putList(data, "code.classes.names", ext.classNames)
	putList(data, "code.classes.inheritance", ext.inheritance)
	putList(data, "code.classes.methods", ext.classMethods)
	putList(data, "code.classes.interfaces", ext.interfaces)

	putList(data, "code.security.hardcoded_secrets", scan.secrets)
	putList(data, "code.security.sql_injection_risks", scan.sqlRisks)
	putList(data, "code.security.vulnerabilities", scan.vulnerabilities)
	putList(data, "code.security.xss_risks", scan.xssRisks)

	putList(data, "code.quality.antipatterns", scan.antipatterns)
	putList(data, "code.quality.code_smells", scan.codeSmells)
	putList(data, "code.quality.deprecated_usage", scan.deprecated)
	putList(data, "code.quality.todos", scan.todos)

	return &domain.ParseResult{
		Kind:        domain.KindCode,
		Parser:      p.Name(),
		Language:    file.Language,
		Data:        data,
		Diagnostics: ext.diagnostics,
	}, nil
}

// putList adds a list field only when non-empty, so absent data never
// shadows another file's values during notebook assembly.
func putList(data map[string]any, field string, values []string) {
	if len(values) > 0 {
		data[field] = values
	}
}

// exportedOf keeps the names a consumer outside the file can reach:
// uppercase-initial for Go-styled names, non-underscore-prefixed
// otherwise.
func exportedOf(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" || strings.HasPrefix(n, "_") {
			continue
		}
		out = append(out, n)
	}
	return out
}

func isUpperInitial(name string) bool {
	return name != "" && name[0] >= 'A' && name[0] <= 'Z'
}

// signatureOf trims a declaration node's text down to its head line.
func signatureOf(node *sitter.Node, content []byte) string {
	text := node.Content(content)
	if i := strings.IndexAny(text, "{\n"); i >= 0 {
		text = text[:i]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), ":")
	return text
}

func appendUnique(list []string, s string) []string {
	for _, have := range list {
		if have == s {
			return list
		}
	}
	return append(list, s)
}
