package ingest

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-github/v80/github"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/bracken-labs/snapnote/internal/core/domain"
	"github.com/bracken-labs/snapnote/internal/core/ports/driven"
)

// Ensure GitHubMetadata implements the interface.
var _ driven.RepoMetadataFetcher = (*GitHubMetadata)(nil)

// GitHubMetadata fetches repository metadata from the GitHub API. Calls
// are rate-limited client-side to stay under the unauthenticated quota;
// an optional token raises it.
type GitHubMetadata struct {
	client  *github.Client
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewGitHubMetadata creates a fetcher. token may be empty for anonymous
// access.
func NewGitHubMetadata(token string, rps float64, logger zerolog.Logger) *GitHubMetadata {
	client := github.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	if rps <= 0 {
		rps = 1
	}
	return &GitHubMetadata{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		logger:  logger.With().Str("component", "github_metadata").Logger(),
	}
}

// Fetch retrieves hosting metadata for a GitHub repository URL. Non-GitHub
// hosts return ErrInvalidInput; callers treat any failure as a skipped
// enrichment, not a run failure.
func (g *GitHubMetadata) Fetch(ctx context.Context, repoURL string) (domain.FieldSet, error) {
	owner, repo, err := splitGitHubURL(repoURL)
	if err != nil {
		return nil, err
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	r, _, err := g.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("fetching %s/%s: %w", owner, repo, err)
	}

	fields := domain.FieldSet{
		"repo.url": repoURL,
	}
	if v := r.GetDefaultBranch(); v != "" {
		fields["repo.default_branch"] = v
	}
	if v := r.GetDescription(); v != "" {
		fields["repo.description"] = v
	}
	fields["repo.stars"] = r.GetStargazersCount()
	if topics := r.Topics; len(topics) > 0 {
		fields["repo.topics"] = topics
	}
	if v := r.GetLanguage(); v != "" {
		fields["repo.primary_language"] = v
	}

	g.logger.Debug().Str("owner", owner).Str("repo", repo).Msg("repo metadata fetched")
	return fields, nil
}

// splitGitHubURL extracts owner and repository name from https and ssh
// style GitHub URLs.
func splitGitHubURL(raw string) (owner, repo string, err error) {
	trimmed := strings.TrimSuffix(raw, ".git")

	if strings.HasPrefix(trimmed, "git@github.com:") {
		trimmed = "https://github.com/" + strings.TrimPrefix(trimmed, "git@github.com:")
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", "", fmt.Errorf("%w: unparsable repo url %q", domain.ErrInvalidInput, raw)
	}
	if !strings.HasSuffix(u.Hostname(), "github.com") {
		return "", "", fmt.Errorf("%w: %q is not a github.com repository", domain.ErrInvalidInput, raw)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: repo url %q missing owner/name", domain.ErrInvalidInput, raw)
	}
	return parts[0], parts[1], nil
}
