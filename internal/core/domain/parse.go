package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// FileKind tags the processing family of a source file. The set is closed:
// the parser router maps each kind to exactly one parser.
type FileKind string

const (
	KindCode     FileKind = "code"
	KindDocument FileKind = "document"
	KindTabular  FileKind = "tabular"
	KindUnknown  FileKind = "unknown"
)

// SourceFile is one discovered file of a project, already read and
// fingerprinted by the ingest layer.
type SourceFile struct {
	// Path is the absolute location on disk.
	Path string

	// Rel is the path relative to the project root. Snapshots are keyed
	// by it, so it stays stable across working directories.
	Rel string

	// Kind is the detected processing family.
	Kind FileKind

	// Language is the lowercase extension without the dot ("py", "go").
	Language string

	// Content holds the raw bytes. Files beyond the hard line cap are
	// never read this far, so the buffer stays bounded.
	Content []byte

	// Lines is the non-blank line count used by the categorizer.
	Lines int

	// Fingerprint is the content hash at time of discovery.
	Fingerprint string
}

// Fingerprint returns the hex-encoded SHA-256 of data. Snapshots store it
// to detect whether a source file changed since last processed.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ParseResult is the normalized output of one parser for one source file.
// It is owned transiently by the router, consumed by the field mapper and
// discarded.
type ParseResult struct {
	// Kind echoes the file kind the producing parser handles.
	Kind FileKind

	// Parser names the producing parser for accounting.
	Parser string

	// Language is the source language, when meaningful.
	Language string

	// Data maps dotted field identifiers to extracted values.
	Data map[string]any

	// Diagnostics carries parser-level warnings (syntax errors tolerated,
	// truncations applied). Reported, never fatal.
	Diagnostics []string

	// Truncated is set when the parser dropped content to honor limits.
	Truncated bool
}
