package driven

import (
	"context"

	"github.com/bracken-labs/snapnote/internal/core/domain"
)

// ProjectSource describes where a project's content comes from. Exactly
// one of RepoURL or LocalPath must be set.
type ProjectSource struct {
	RepoURL   string
	LocalPath string
}

// SourceResolver materializes a project source as a local directory tree.
// For repository URLs this clones; for local paths it validates.
type SourceResolver interface {
	// Resolve returns the root directory holding the project's files.
	Resolve(ctx context.Context, projectID string, src ProjectSource) (string, error)
}

// FileProvider enumerates the processable files under a resolved root.
type FileProvider interface {
	// Files walks the tree, skipping non-content directories, and
	// returns each discovered file read, fingerprinted and kind-tagged.
	Files(ctx context.Context, root string) ([]domain.SourceFile, error)
}

// RepoMetadataFetcher retrieves hosting metadata for repository sources
// (description, default branch, stars). Best-effort enrichment: failures
// are logged and never fail a run.
type RepoMetadataFetcher interface {
	Fetch(ctx context.Context, repoURL string) (domain.FieldSet, error)
}
