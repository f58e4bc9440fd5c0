// Package ingest materializes project sources: resolving repositories to
// local trees, enumerating their files and watching them for changes.
package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bracken-labs/snapnote/internal/core/domain"
	"github.com/bracken-labs/snapnote/internal/core/ports/driven"
)

// Ensure Walker implements the interface.
var _ driven.FileProvider = (*Walker)(nil)

// maxFileBytes bounds what the walker reads per file. Larger files are
// skipped with a log line; they would be rejected by the categorizer
// anyway.
const maxFileBytes = 10 << 20

// skipDirs are directory names never descended into.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	".venv":        true,
	"venv":         true,
	"dist":         true,
	"build":        true,
	"target":       true,
	".idea":        true,
	".vscode":      true,
}

var kindByExt = map[string]domain.FileKind{
	"go":   domain.KindCode,
	"py":   domain.KindCode,
	"js":   domain.KindCode,
	"jsx":  domain.KindCode,
	"mjs":  domain.KindCode,
	"ts":   domain.KindCode,
	"tsx":  domain.KindCode,
	"java": domain.KindCode,
	"rb":   domain.KindCode,
	"rs":   domain.KindCode,
	"c":    domain.KindCode,
	"h":    domain.KindCode,
	"cpp":  domain.KindCode,
	"cs":   domain.KindCode,
	"php":  domain.KindCode,

	"md":   domain.KindDocument,
	"txt":  domain.KindDocument,
	"rst":  domain.KindDocument,
	"adoc": domain.KindDocument,
	"html": domain.KindDocument,
	"htm":  domain.KindDocument,
	"pdf":  domain.KindDocument,
	"docx": domain.KindDocument,
	"rtf":  domain.KindDocument,

	"csv": domain.KindTabular,
	"tsv": domain.KindTabular,
}

// Walker enumerates processable files under a project root.
type Walker struct {
	logger zerolog.Logger
}

// NewWalker creates a file walker.
func NewWalker(logger zerolog.Logger) *Walker {
	return &Walker{
		logger: logger.With().Str("component", "walker").Logger(),
	}
}

// Files walks the tree, skipping non-content directories and hidden
// files, and returns each file read, line-counted, fingerprinted and
// kind-tagged.
func (w *Walker) Files(ctx context.Context, root string) ([]domain.SourceFile, error) {
	var out []domain.SourceFile

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		name := d.Name()
		if d.IsDir() {
			if path != root && (skipDirs[name] || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Size() > maxFileBytes {
			w.logger.Debug().Str("file", path).Int64("bytes", info.Size()).Msg("file too large, skipped")
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			w.logger.Warn().Err(err).Str("file", path).Msg("file unreadable, skipped")
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relativizing %s: %w", path, err)
		}

		lang := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
		kind, ok := kindByExt[lang]
		if !ok {
			kind = domain.KindUnknown
		}

		out = append(out, domain.SourceFile{
			Path:        path,
			Rel:         filepath.ToSlash(rel),
			Kind:        kind,
			Language:    lang,
			Content:     content,
			Lines:       countLines(content),
			Fingerprint: domain.Fingerprint(content),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	w.logger.Debug().Str("root", root).Int("files", len(out)).Msg("enumeration complete")
	return out, nil
}

// countLines counts non-blank lines, the unit the categorizer works in.
func countLines(content []byte) int {
	n := 0
	for _, line := range bytes.Split(content, []byte("\n")) {
		if len(bytes.TrimSpace(line)) > 0 {
			n++
		}
	}
	return n
}
