// Package cli implements the snapnote command surface on cobra. Commands
// share services wired once in the root command's PersistentPreRunE.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bracken-labs/snapnote/internal/adapters/driven/storage/sqlite"
	"github.com/bracken-labs/snapnote/internal/config"
	"github.com/bracken-labs/snapnote/internal/core/domain"
	"github.com/bracken-labs/snapnote/internal/core/services"
	"github.com/bracken-labs/snapnote/internal/ingest"
	"github.com/bracken-labs/snapnote/internal/metrics"
	"github.com/bracken-labs/snapnote/internal/parsers/code"
	"github.com/bracken-labs/snapnote/internal/parsers/tabular"
	"github.com/bracken-labs/snapnote/internal/parsers/text"
	"github.com/bracken-labs/snapnote/internal/retry"
	"github.com/bracken-labs/snapnote/internal/schema"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	cfgFile string

	cfg       *config.Config
	logger    zerolog.Logger
	store     *sqlite.Store
	collector *metrics.Metrics

	pipeline     *services.Pipeline
	notebookSvc  *services.NotebookService
	manifestSvc  *services.ManifestService
	metricsSvc   *services.MetricsService
	watcher      *ingest.Watcher
	masterSchema *domain.Schema
)

var rootCmd = &cobra.Command{
	Use:   "snapnote",
	Short: "Project content ingestion and snapshot notebooks",
	Long: `snapnote ingests project content (repositories or local trees),
extracts typed snapshots per source file and assembles them into
queryable notebooks and manifests.`,
	SilenceUsage:      true,
	PersistentPreRunE: bootstrap,
	PersistentPostRunE: func(*cobra.Command, []string) error {
		if store != nil {
			return store.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default snapnote.toml)")
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap is the startup sequence every command shares: configuration,
// logging, schema validation and the store with its idempotent
// migrations. A broken schema or unreachable store fails here, before
// any command logic runs.
func bootstrap(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()

	if cfg.SchemaPath != "" {
		masterSchema, err = schema.LoadFile(cfg.SchemaPath)
	} else {
		masterSchema, err = schema.Master()
	}
	if err != nil {
		return fmt.Errorf("loading master schema: %w", err)
	}

	store, err = sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening snapshot store: %w", err)
	}

	collector = metrics.New()

	snapshots := store.SnapshotStore()
	manifestSvc = services.NewManifestService(snapshots, store.ManifestStore(), logger)
	notebookSvc = services.NewNotebookService(snapshots, masterSchema, logger)
	metricsSvc = services.NewMetricsService(store.MetricsReader(), logger)

	registry, err := services.NewParserRegistry(logger,
		code.New(logger),
		text.New(logger),
		tabular.New(logger),
	)
	if err != nil {
		return fmt.Errorf("building parser registry: %w", err)
	}

	builder := services.NewSnapshotBuilder(snapshots, retry.DefaultConfig(), logger)
	mapper := services.NewFieldMapper(masterSchema, logger)
	resolver := ingest.NewResolver(cfg.WorkDir, cfg.CloneTimeout, logger)
	walker := ingest.NewWalker(logger)
	github := ingest.NewGitHubMetadata(cfg.GitHubToken, cfg.GitHubRPS, logger)
	watcher = ingest.NewWatcher(cfg.WatchDebounce, logger)

	pipeline = services.NewPipeline(
		resolver, walker, registry, mapper, builder,
		snapshots, manifestSvc, github, collector, masterSchema,
		services.PipelineOptions{
			MaxWorkers: cfg.MaxWorkers,
			RunTimeout: cfg.RunTimeout,
			Limits:     cfg.Limits(),
			WorkDir:    cfg.WorkDir,
		},
		logger,
	)

	return nil
}
