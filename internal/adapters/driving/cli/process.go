package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bracken-labs/snapnote/internal/core/domain"
	"github.com/bracken-labs/snapnote/internal/core/ports/driving"
)

var (
	processRepo   string
	processPath   string
	processType   string
	processVendor string
	processWatch  bool
)

var processCmd = &cobra.Command{
	Use:   "process <project-id>",
	Short: "Ingest a project and build its snapshots",
	Long: `Runs the full pipeline for a project: enumerate files, categorize,
parse, map fields and persist snapshots. Re-running is safe; unchanged
files are deduplicated and changed ones merged in place.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringVar(&processRepo, "repo", "", "repository URL to clone and process")
	processCmd.Flags().StringVar(&processPath, "path", "", "local directory to process")
	processCmd.Flags().StringVar(&processType, "type", "", "restrict to one snapshot type")
	processCmd.Flags().StringVar(&processVendor, "vendor", "", "calling vendor identifier, recorded in the run log")
	processCmd.Flags().BoolVar(&processWatch, "watch", false, "keep running and re-process on file changes (requires --path)")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	if processWatch && processPath == "" {
		return fmt.Errorf("%w: --watch requires --path", domain.ErrInvalidInput)
	}

	req := driving.ProcessRequest{
		ProjectID:  args[0],
		VendorID:   processVendor,
		RepoURL:    processRepo,
		LocalPath:  processPath,
		TypeFilter: domain.SnapshotType(processType),
	}

	ctx := cmd.Context()
	if err := runOnce(ctx, cmd, req); err != nil {
		return err
	}

	if !processWatch {
		return nil
	}

	return watcher.Watch(ctx, processPath, func(paths []string) {
		if err := runOnce(ctx, cmd, req); err != nil {
			logger.Error().Err(err).Msg("watch re-run failed")
		}
	})
}

func runOnce(ctx context.Context, cmd *cobra.Command, req driving.ProcessRequest) error {
	result, err := pipeline.ProcessProject(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrStoreUnavailable) {
			return fmt.Errorf("snapshot store unreachable: %w", err)
		}
		return fmt.Errorf("processing %s: %w", req.ProjectID, err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	cmd.Println(string(out))
	return nil
}
