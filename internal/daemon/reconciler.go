package daemon

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/1broseidon/screenwall/internal/matrix"
)

// Rebuilder replaces the matrix mapping from the current screens.
type Rebuilder interface {
	Rebuild(ctx context.Context) error
}

// RebuildFunc adapts a function to Rebuilder.
type RebuildFunc func(ctx context.Context) error

// Rebuild implements Rebuilder.
func (f RebuildFunc) Rebuild(ctx context.Context) error { return f(ctx) }

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	// Rebuild rebuilds the matrix on drift; otherwise drift is only logged.
	Rebuild bool
	Logger  *slog.Logger
}

// Reconciler periodically compares the screens with the matrix mapping.
type Reconciler struct {
	interval  time.Duration
	rebuild   bool
	screens   ScreenLister
	current   func() []string
	rebuilder Rebuilder
	logger    *slog.Logger
}

// NewReconciler creates a new reconciler. current returns the matrix ids of
// the live mapping.
func NewReconciler(cfg ReconcilerConfig, screens ScreenLister, current func() []string, rebuilder Rebuilder) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval:  interval,
		rebuild:   cfg.Rebuild,
		screens:   screens,
		current:   current,
		rebuilder: rebuilder,
		logger:    logger,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval, "rebuild", r.rebuild)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile(ctx)
		}
	}
}

// reconcile performs a single reconciliation pass and reports whether drift was found.
func (r *Reconciler) reconcile(ctx context.Context) (drift bool) {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	screens, err := r.screens.Screens()
	if err != nil {
		r.logger.Error("reconciler: failed to list screens", "error", err)
		return false
	}

	want := make([]string, 0, len(screens))
	for _, sc := range screens {
		want = append(want, matrix.MatrixID(sc.Left, sc.Top, sc.Width, sc.Height))
	}
	slices.Sort(want)
	want = slices.Compact(want)

	have := slices.Clone(r.current())
	slices.Sort(have)

	if slices.Equal(want, have) {
		return false
	}

	r.logger.Info("reconciler: screen layout changed", "screens", want, "matrices", have)
	if !r.rebuild {
		return true
	}
	if err := r.rebuilder.Rebuild(ctx); err != nil {
		r.logger.Warn("reconciler: rebuild failed", "error", err)
	}
	return true
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow(ctx context.Context) bool {
	return r.reconcile(ctx)
}
