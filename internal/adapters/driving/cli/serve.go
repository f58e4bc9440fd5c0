package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bracken-labs/snapnote/internal/adapters/driving/dashboard"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the read-only metrics dashboard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		addr := serveAddr
		if addr == "" {
			addr = cfg.ListenAddr
		}

		server := dashboard.NewServer(
			dashboard.ServerConfig{ListenAddr: addr, RecentWindow: cfg.RecentWindow},
			metricsSvc, manifestSvc, notebookSvc, collector, logger,
		)

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sig
			if err := server.Shutdown(); err != nil {
				logger.Error().Err(err).Msg("dashboard shutdown failed")
			}
		}()

		return server.Start()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
