package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bracken-labs/snapnote/internal/core/domain"
	"github.com/bracken-labs/snapnote/internal/core/ports/driven"
	"github.com/bracken-labs/snapnote/internal/core/ports/driving"
)

// RepoPseudoFile keys the repo_metadata snapshot of a repository source.
// It is not a real path, so it can never collide with walked files.
const RepoPseudoFile = "<repo>"

// Ensure Pipeline implements the driving interfaces.
var (
	_ driving.Pipeline     = (*Pipeline)(nil)
	_ driving.ProjectAdmin = (*Pipeline)(nil)
)

// PipelineOptions tune a pipeline instance.
type PipelineOptions struct {
	// MaxWorkers bounds file-level concurrency. Values below 1 mean 1.
	MaxWorkers int

	// RunTimeout bounds one run; zero disables the bound. On expiry
	// in-flight files complete and unscheduled files count as skipped.
	RunTimeout time.Duration

	// Limits configures the line-count categorizer.
	Limits domain.CategoryLimits

	// WorkDir is the root under which per-project working directories
	// (clones) live. Used by DeleteProject.
	WorkDir string
}

// Pipeline orchestrates one processing run: enumerate, categorize, parse,
// map, build, assemble. Per-file failures are counted and logged; only
// precondition failures (unreachable store, unresolvable source) fail a
// run.
type Pipeline struct {
	resolver  driven.SourceResolver
	provider  driven.FileProvider
	registry  driven.ParserRegistry
	mapper    *FieldMapper
	builder   *SnapshotBuilder
	store     driven.SnapshotStore
	manifests driving.ManifestService
	repoMeta  driven.RepoMetadataFetcher
	observer  driven.RunObserver
	schema    *domain.Schema
	opts      PipelineOptions
	logger    zerolog.Logger
}

// NewPipeline wires a pipeline. repoMeta may be nil (no repository
// enrichment); observer may be nil (no instrumentation).
func NewPipeline(
	resolver driven.SourceResolver,
	provider driven.FileProvider,
	registry driven.ParserRegistry,
	mapper *FieldMapper,
	builder *SnapshotBuilder,
	store driven.SnapshotStore,
	manifests driving.ManifestService,
	repoMeta driven.RepoMetadataFetcher,
	observer driven.RunObserver,
	schema *domain.Schema,
	opts PipelineOptions,
	logger zerolog.Logger,
) *Pipeline {
	if opts.MaxWorkers < 1 {
		opts.MaxWorkers = 1
	}
	if observer == nil {
		observer = driven.NopObserver{}
	}
	return &Pipeline{
		resolver:  resolver,
		provider:  provider,
		registry:  registry,
		mapper:    mapper,
		builder:   builder,
		store:     store,
		manifests: manifests,
		repoMeta:  repoMeta,
		observer:  observer,
		schema:    schema,
		opts:      opts,
		logger:    logger.With().Str("component", "pipeline").Logger(),
	}
}

type fileResult struct {
	category domain.Category
	parser   string
	account  domain.FileAccount
	types    []domain.SnapshotType
	filled   int
	missing  int
	rejected bool
	skipped  bool
	err      error
}

// ProcessProject runs the pipeline for one project.
func (p *Pipeline) ProcessProject(ctx context.Context, req driving.ProcessRequest) (*driving.ProcessResult, error) {
	if err := p.validate(req); err != nil {
		return nil, err
	}

	if err := p.store.Ping(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	started := time.Now()
	summary := domain.NewRunSummary(req.ProjectID)
	log := p.logger.With().Str("project_id", req.ProjectID).Logger()
	if req.VendorID != "" {
		log.Info().Str("vendor_id", req.VendorID).Msg("vendor call")
	}

	log.Info().Str("state", string(driving.StateEnumerating)).Msg("run state")
	root, err := p.resolver.Resolve(ctx, req.ProjectID, driven.ProjectSource{
		RepoURL:   req.RepoURL,
		LocalPath: req.LocalPath,
	})
	if err != nil {
		p.failRun(log, started, req.ProjectID)
		return nil, fmt.Errorf("resolving project source: %w", err)
	}

	files, err := p.provider.Files(ctx, root)
	if err != nil {
		p.failRun(log, started, req.ProjectID)
		return nil, fmt.Errorf("enumerating project files: %w", err)
	}
	summary.FilesDiscovered = len(files)

	runCtx := ctx
	if p.opts.RunTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, p.opts.RunTimeout)
		defer cancel()
	}

	log.Info().Str("state", string(driving.StateParsing)).Int("files", len(files)).Msg("run state")
	p.fanOut(runCtx, req, files, summary, log)

	if req.RepoURL != "" && p.repoMeta != nil && p.typeWanted(req, domain.TypeRepoMetadata) {
		p.enrichRepoMetadata(ctx, req, summary, log)
	}

	log.Info().Str("state", string(driving.StateAssembling)).Msg("run state")
	manifest, err := p.manifests.Rebuild(ctx, req.ProjectID)
	if err != nil {
		p.failRun(log, started, req.ProjectID)
		return nil, fmt.Errorf("rebuilding manifest: %w", err)
	}

	summary.FinishedAt = time.Now().UTC()
	p.observer.RunCompleted(req.ProjectID, false, time.Since(started))
	log.Info().
		Str("state", string(driving.StateDone)).
		Int("files_discovered", summary.FilesDiscovered).
		Int("files_processed", summary.FilesProcessed).
		Int("files_failed", summary.FilesFailed).
		Int("files_rejected", summary.FilesRejected).
		Int("files_skipped", summary.FilesSkipped).
		Int("snapshots_created", summary.SnapshotsCreated).
		Int("snapshots_updated", summary.SnapshotsUpdated).
		Int("snapshots_deduplicated", summary.SnapshotsDeduplicated).
		Int("snapshots_failed", summary.SnapshotsFailed).
		Dur("duration", summary.Duration()).
		Msg("run complete")

	return &driving.ProcessResult{Manifest: manifest, Summary: summary}, nil
}

func (p *Pipeline) validate(req driving.ProcessRequest) error {
	if req.ProjectID == "" {
		return fmt.Errorf("%w: empty project id", domain.ErrInvalidInput)
	}
	if (req.RepoURL == "") == (req.LocalPath == "") {
		return fmt.Errorf("%w: exactly one of repo url or local path required", domain.ErrInvalidInput)
	}
	if req.TypeFilter != "" && !p.schema.Has(req.TypeFilter) {
		return fmt.Errorf("%w: unknown snapshot type %q", domain.ErrInvalidInput, req.TypeFilter)
	}
	return nil
}

func (p *Pipeline) typeWanted(req driving.ProcessRequest, t domain.SnapshotType) bool {
	return req.TypeFilter == "" || req.TypeFilter == t
}

// fanOut processes files through a bounded worker pool and folds results
// into the summary. Workers stop picking up new files once the run
// context expires; already-running files finish.
func (p *Pipeline) fanOut(ctx context.Context, req driving.ProcessRequest, files []domain.SourceFile, summary *domain.RunSummary, log zerolog.Logger) {
	jobs := make(chan *domain.SourceFile)
	results := make(chan fileResult)

	var wg sync.WaitGroup
	for w := 0; w < p.opts.MaxWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range jobs {
				select {
				case <-ctx.Done():
					results <- fileResult{skipped: true}
				default:
					results <- p.processFile(ctx, req, file, log)
				}
			}
		}()
	}

	go func() {
		for i := range files {
			jobs <- &files[i]
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	for res := range results {
		p.absorb(summary, res)
	}
}

func (p *Pipeline) absorb(summary *domain.RunSummary, res fileResult) {
	if res.category != "" {
		summary.Categorization[res.category]++
	}
	if res.rejected {
		summary.FilesRejected++
		return
	}
	if res.skipped {
		summary.FilesSkipped++
		return
	}
	if res.err != nil {
		summary.FilesFailed++
		return
	}
	summary.FilesProcessed++
	if res.parser != "" {
		summary.ParsersUsed[res.parser]++
	}
	for _, t := range res.types {
		summary.SnapshotTypes[t]++
	}
	summary.FieldsFilled += res.filled
	summary.FieldsMissing += res.missing
	summary.Absorb(res.account)
}

func (p *Pipeline) processFile(ctx context.Context, req driving.ProcessRequest, file *domain.SourceFile, log zerolog.Logger) fileResult {
	res := fileResult{}

	res.category = domain.Categorize(file.Lines, p.opts.Limits)
	p.observer.FileProcessed(file.Kind, res.category)
	if res.category == domain.CategoryRejected {
		log.Warn().
			Str("file", file.Rel).
			Int("lines", file.Lines).
			Msg("file exceeds hard cap, rejected")
		res.rejected = true
		return res
	}

	parsed, err := p.registry.Parse(ctx, file)
	if err != nil {
		log.Warn().Err(err).Str("file", file.Rel).Msg("file parse failed")
		res.err = err
		return res
	}
	res.parser = parsed.Parser

	sets := p.mapper.Map(file.Rel, parsed)
	if req.TypeFilter != "" {
		filtered := sets[:0]
		for _, set := range sets {
			if set.Type == req.TypeFilter {
				filtered = append(filtered, set)
			}
		}
		sets = filtered
	}

	for _, set := range sets {
		res.types = append(res.types, set.Type)
		res.filled += len(set.Coverage.Filled)
		res.missing += len(set.Coverage.Missing)
	}

	res.account = p.builder.Build(ctx, req.ProjectID, file, sets)
	p.recordOutcomes(res.account)

	log.Debug().
		Str("file", file.Rel).
		Str("category", string(res.category)).
		Str("parser", res.parser).
		Int("snapshots", res.account.Attempted).
		Msg("file processed")
	return res
}

func (p *Pipeline) recordOutcomes(a domain.FileAccount) {
	for i := 0; i < a.Created; i++ {
		p.observer.SnapshotOutcome(domain.OutcomeCreated)
	}
	for i := 0; i < a.Updated; i++ {
		p.observer.SnapshotOutcome(domain.OutcomeUpdated)
	}
	for i := 0; i < a.Deduplicated; i++ {
		p.observer.SnapshotOutcome(domain.OutcomeDeduplicated)
	}
	for i := 0; i < a.Failed; i++ {
		p.observer.SnapshotOutcome(domain.OutcomeFailed)
	}
}

// enrichRepoMetadata fetches hosting metadata and persists it as the
// repo_metadata snapshot of the run's pseudo-file. Best-effort: any
// failure logs and returns.
func (p *Pipeline) enrichRepoMetadata(ctx context.Context, req driving.ProcessRequest, summary *domain.RunSummary, log zerolog.Logger) {
	fields, err := p.repoMeta.Fetch(ctx, req.RepoURL)
	if err != nil {
		log.Warn().Err(err).Str("repo_url", req.RepoURL).Msg("repo metadata fetch failed")
		return
	}
	if len(fields) == 0 {
		return
	}

	// Fingerprint the canonical encoding so unchanged metadata dedupes.
	raw, err := json.Marshal(fields)
	if err != nil {
		log.Warn().Err(err).Msg("repo metadata not encodable")
		return
	}

	pseudo := &domain.SourceFile{
		Rel:         RepoPseudoFile,
		Kind:        domain.KindUnknown,
		Fingerprint: domain.Fingerprint(raw),
	}
	sets := p.mapper.Map(RepoPseudoFile, &domain.ParseResult{
		Kind:   domain.KindUnknown,
		Parser: "repo_metadata",
		Data:   fields,
	})
	account := p.builder.Build(ctx, req.ProjectID, pseudo, sets)
	p.recordOutcomes(account)
	summary.Absorb(account)
	for _, set := range sets {
		summary.SnapshotTypes[set.Type]++
	}
}

func (p *Pipeline) failRun(log zerolog.Logger, started time.Time, projectID string) {
	p.observer.RunCompleted(projectID, true, time.Since(started))
	log.Error().Str("state", string(driving.StateFailed)).Msg("run failed")
}

// DeleteProject removes the project's snapshots and manifest in one
// storage transaction, then its working directory. A directory removal
// failure after a committed store deletion is reported as partial, with
// the removed count preserved.
func (p *Pipeline) DeleteProject(ctx context.Context, projectID string) (int, error) {
	if projectID == "" {
		return 0, fmt.Errorf("%w: empty project id", domain.ErrInvalidInput)
	}

	count, err := p.store.DeleteProject(ctx, projectID)
	if err != nil {
		return count, fmt.Errorf("deleting project %s: %w", projectID, err)
	}

	if p.opts.WorkDir != "" {
		dir := filepath.Join(p.opts.WorkDir, projectID)
		if err := os.RemoveAll(dir); err != nil && !errors.Is(err, os.ErrNotExist) {
			return count, fmt.Errorf("%w: store rows deleted but workdir %s remains: %v", domain.ErrDeletionPartial, dir, err)
		}
	}

	p.logger.Info().
		Str("project_id", projectID).
		Int("snapshots_deleted", count).
		Msg("project deleted")
	return count, nil
}
