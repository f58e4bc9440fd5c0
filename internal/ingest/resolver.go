package ingest

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/bracken-labs/snapnote/internal/core/domain"
	"github.com/bracken-labs/snapnote/internal/core/ports/driven"
)

// Ensure Resolver implements the interface.
var _ driven.SourceResolver = (*Resolver)(nil)

// Resolver turns a project source into a local directory: repository URLs
// are shallow-cloned into the project working directory, local paths are
// validated in place.
type Resolver struct {
	workDir      string
	cloneTimeout time.Duration
	logger       zerolog.Logger
}

// NewResolver creates a resolver cloning under workDir.
func NewResolver(workDir string, cloneTimeout time.Duration, logger zerolog.Logger) *Resolver {
	return &Resolver{
		workDir:      workDir,
		cloneTimeout: cloneTimeout,
		logger:       logger.With().Str("component", "resolver").Logger(),
	}
}

// Resolve returns the root directory holding the project's files.
func (r *Resolver) Resolve(ctx context.Context, projectID string, src driven.ProjectSource) (string, error) {
	switch {
	case src.LocalPath != "":
		info, err := os.Stat(src.LocalPath)
		if err != nil {
			return "", fmt.Errorf("%w: local path %s: %v", domain.ErrInvalidInput, src.LocalPath, err)
		}
		if !info.IsDir() {
			return "", fmt.Errorf("%w: local path %s is not a directory", domain.ErrInvalidInput, src.LocalPath)
		}
		return src.LocalPath, nil

	case src.RepoURL != "":
		return r.clone(ctx, projectID, src.RepoURL)

	default:
		return "", fmt.Errorf("%w: empty project source", domain.ErrInvalidInput)
	}
}

// clone shallow-clones the repository into the project working dir. A
// pre-existing clone is refreshed by removing and recloning; the snapshot
// store, not the clone, carries history.
func (r *Resolver) clone(ctx context.Context, projectID, repoURL string) (string, error) {
	dir := filepath.Join(r.workDir, projectID, "repo")

	if err := os.RemoveAll(dir); err != nil {
		return "", fmt.Errorf("clearing clone dir %s: %w", dir, err)
	}
	if err := os.MkdirAll(filepath.Dir(dir), 0700); err != nil {
		return "", fmt.Errorf("creating workdir: %w", err)
	}

	cloneCtx := ctx
	if r.cloneTimeout > 0 {
		var cancel context.CancelFunc
		cloneCtx, cancel = context.WithTimeout(ctx, r.cloneTimeout)
		defer cancel()
	}

	r.logger.Info().Str("repo_url", repoURL).Str("dir", dir).Msg("cloning repository")
	cmd := exec.CommandContext(cloneCtx, "git", "clone", "--depth", "1", "--single-branch", repoURL, dir)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("git clone %s: %w: %s", repoURL, err, string(out))
	}
	return dir, nil
}
