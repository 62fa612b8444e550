package daemon

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/1broseidon/screenwall/internal/httpapi"
	"github.com/1broseidon/screenwall/internal/ipc"
)

// Serve exposes svc over IPC and, when enabled, HTTP. It also runs the
// screen reconciler when configured. Blocks until ctx is cancelled.
func Serve(ctx context.Context, svc *Service, screens ScreenLister, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	server, err := ipc.NewServer(svc, logger.With("component", "ipc"))
	if err != nil {
		return err
	}
	if err := server.Start(ctx); err != nil {
		return err
	}
	defer server.Stop()

	errCh := make(chan error, 1)
	if svc.cfg.HTTP.Enabled {
		router := httpapi.NewRouter(svc.Engine(), svc.Store(), logger.With("component", "http"))
		go func() {
			if err := httpapi.Serve(ctx, svc.cfg.HTTP.Addr, router, logger); err != nil {
				errCh <- fmt.Errorf("http api: %w", err)
			}
		}()
	}

	if svc.cfg.ScreenCheckInterval > 0 {
		r := NewReconciler(ReconcilerConfig{
			Interval: svc.cfg.ScreenCheckInterval,
			Rebuild:  svc.cfg.RebuildOnChange,
			Logger:   logger.With("component", "reconciler"),
		}, screens, svc.Engine().IDs, RebuildFunc(func(ctx context.Context) error {
			_, err := svc.Rebuild(ctx)
			return err
		}))
		go r.Run(ctx)
	}

	logger.Info("daemon running", "socket", server.SocketPath(), "instance_id", svc.instanceID)

	select {
	case <-ctx.Done():
		logger.Info("daemon shutting down")
		return nil
	case err := <-errCh:
		return err
	}
}
