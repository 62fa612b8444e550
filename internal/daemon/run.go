//go:build linux

package daemon

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/1broseidon/screenwall/internal/config"
	"github.com/1broseidon/screenwall/internal/platform"
	"github.com/1broseidon/screenwall/internal/store"
)

// Run connects to the X server, builds the service and serves IPC and HTTP
// until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	backend, err := platform.NewLinuxBackendFromDisplay()
	if err != nil {
		return err
	}
	defer backend.Disconnect()

	kv, err := store.Open(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Storage.Backend, err)
	}
	defer kv.Close()

	screens := platform.ScreenSource{Backend: backend}
	svc, err := NewService(ctx, Options{
		Config:  cfg,
		Screens: screens,
		Opener:  platform.NewLauncher(backend, cfg.Launcher, logger.With("component", "launcher")),
		Store:   kv,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	defer svc.Shutdown()

	return Serve(ctx, svc, screens, logger)
}
