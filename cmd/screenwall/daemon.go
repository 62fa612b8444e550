package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/1broseidon/screenwall/internal/daemon"
)

func (a *app) daemonCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Start the screenwall daemon (foreground)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.loadConfig()
			if err != nil {
				return err
			}
			cfg := res.Config

			logger := newLogger(a.logOut, cfg.Logging.Level, a.verbose)
			if a.socketPath != "" {
				if err := os.Setenv("SCREENWALL_SOCKET", a.socketPath); err != nil {
					return err
				}
			}
			if res.File != "" {
				logger.Info("configuration loaded", "file", res.File, "format", res.Format)
			} else {
				logger.Info("no config file found, using defaults")
			}
			logger.Info("screenwall daemon starting",
				"storage", cfg.Storage.Backend,
				"close_sticky", cfg.CloseSticky,
				"http", cfg.HTTP.Enabled)

			return daemon.Run(cmd.Context(), cfg, logger)
		},
	}
}
