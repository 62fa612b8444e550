// Package daemon owns the matrix, the assignment scheduler and the opened
// windows, and serves them over IPC and HTTP.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/screenwall/internal/config"
	"github.com/1broseidon/screenwall/internal/ipc"
	"github.com/1broseidon/screenwall/internal/layout"
	"github.com/1broseidon/screenwall/internal/matrix"
	"github.com/1broseidon/screenwall/internal/schedule"
	"github.com/1broseidon/screenwall/internal/store"
	"github.com/1broseidon/screenwall/internal/tiling"
	"github.com/1broseidon/screenwall/internal/window"
	"github.com/google/uuid"
)

// ErrUnknownMatrix is returned for cell queries naming a matrix that does not exist.
var ErrUnknownMatrix = errors.New("unknown matrix")

// ScreenLister enumerates the current screens.
type ScreenLister interface {
	Screens() ([]matrix.Screen, error)
}

// ScreenFunc adapts a function to ScreenLister.
type ScreenFunc func() ([]matrix.Screen, error)

// Screens implements ScreenLister.
func (f ScreenFunc) Screens() ([]matrix.Screen, error) { return f() }

// Options are the collaborators of a Service.
type Options struct {
	Config  *config.Config
	Screens ScreenLister
	Opener  window.Opener
	Store   store.KV
	Logger  *slog.Logger
}

// Service implements the daemon commands.
type Service struct {
	cfg        *config.Config
	screens    ScreenLister
	engine     *matrix.Engine
	scheduler  *schedule.Scheduler
	monitor    *window.Monitor
	adapter    *store.Adapter
	logger     *slog.Logger
	instanceID string
	started    time.Time

	// rebuildMu serializes screen enumeration with engine rebuilds.
	rebuildMu sync.Mutex
}

var _ ipc.Service = (*Service)(nil)

// NewService enumerates the screens, builds the matrix, applies the default
// template and restores the persisted cell assignment.
func NewService(ctx context.Context, opts Options) (*Service, error) {
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Store == nil {
		opts.Store = store.NewMemory()
	}

	screens, err := opts.Screens.Screens()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate screens: %w", err)
	}
	engine, err := matrix.NewEngine(screens)
	if err != nil {
		return nil, fmt.Errorf("failed to build matrix: %w", err)
	}

	adapter := store.NewAdapter(opts.Store, opts.Config.StorageKey)
	s := &Service{
		cfg:        opts.Config,
		screens:    opts.Screens,
		engine:     engine,
		adapter:    adapter,
		logger:     opts.Logger,
		instanceID: uuid.NewString(),
		started:    time.Now(),
	}
	s.scheduler = schedule.New(engine, adapter, opts.Logger.With("component", "poll"))
	s.monitor = window.NewMonitor(engine, opts.Opener, adapter, window.Options{
		CloseSticky: opts.Config.CloseSticky,
		Interval:    opts.Config.MonitorInterval,
		Logger:      opts.Logger.With("component", "windows"),
	})

	s.applyDefaultTemplate()
	s.restore(ctx)

	s.logger.Info("matrix built",
		"screens", len(screens),
		"cells", len(engine.Cells()),
		"instance_id", s.instanceID)
	return s, nil
}

func (s *Service) applyDefaultTemplate() {
	tpl, err := s.cfg.Template()
	if err != nil || tpl == (matrix.Template{1, 1}) {
		return
	}
	s.engine.Split(tpl, s.engine.IDs())
}

// restore copies persisted data ids into cells whose GridIDLong still exists.
func (s *Service) restore(ctx context.Context) {
	snap, err := s.adapter.Load(ctx)
	if err != nil {
		s.logger.Warn("failed to load persisted cells", "key", s.adapter.Key(), "error", err)
		return
	}
	if len(snap) == 0 {
		return
	}

	_, gen := s.engine.Capacity()
	cells := s.engine.Cells()
	values := make([]string, len(cells))
	restored := 0
	for i, c := range cells {
		if prev, ok := snap[c.GridIDLong]; ok && prev.DataID != "" {
			values[i] = prev.DataID
			restored++
		}
	}
	if restored == 0 {
		return
	}
	if s.engine.Assign(gen, values) {
		s.logger.Info("restored persisted cells", "key", s.adapter.Key(), "cells", restored)
	}
}

// Engine returns the grid engine.
func (s *Service) Engine() *matrix.Engine { return s.engine }

// Store returns the persistence adapter.
func (s *Service) Store() *store.Adapter { return s.adapter }

// Status implements ipc.Service.
func (s *Service) Status() ipc.StatusData {
	return ipc.StatusData{
		InstanceID:     s.instanceID,
		UptimeSeconds:  int64(time.Since(s.started).Seconds()),
		DaemonRunning:  true,
		Matrices:       len(s.engine.IDs()),
		Cells:          len(s.engine.Cells()),
		Generation:     s.engine.Generation(),
		Poll:           s.scheduler.Status(),
		Windows:        s.monitor.IDs(),
		WindowPolling:  s.monitor.Polling(),
		CloseSticky:    s.monitor.CloseSticky(),
		StorageBackend: s.cfg.Storage.Backend,
		StorageKey:     s.adapter.Key(),
	}
}

// Matrices implements ipc.Service.
func (s *Service) Matrices() ipc.MatricesData {
	return ipc.MatricesData{
		Matrices:   s.engine.Matrices(),
		Generation: s.engine.Generation(),
	}
}

// Rebuild re-enumerates the screens and replaces the matrix mapping. On
// failure the previous mapping is kept.
func (s *Service) Rebuild(ctx context.Context) (ipc.MatricesData, error) {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	screens, err := s.screens.Screens()
	if err != nil {
		return ipc.MatricesData{}, fmt.Errorf("failed to enumerate screens: %w", err)
	}
	if err := s.engine.Rebuild(screens); err != nil {
		return ipc.MatricesData{}, err
	}
	s.applyDefaultTemplate()
	s.logger.Info("matrix rebuilt", "screens", len(screens), "generation", s.engine.Generation())
	return s.Matrices(), nil
}

// Split implements ipc.Service. An empty id list targets every matrix.
func (s *Service) Split(tpl matrix.Template, matrixIDs []string) ipc.MatricesData {
	if len(matrixIDs) == 0 {
		matrixIDs = s.engine.IDs()
	}
	s.engine.Split(tpl, matrixIDs)
	s.logger.Info("grid split", "template", tpl.String(), "matrices", len(matrixIDs))
	return s.Matrices()
}

// Cells implements ipc.Service.
func (s *Service) Cells(req ipc.CellsPayload) (ipc.CellsData, error) {
	origin := tiling.Absolute
	if req.Fixing {
		origin = tiling.Fixing
	}

	var targets []matrix.Matrix
	if req.MatrixID != "" {
		m, ok := s.engine.Matrix(req.MatrixID)
		if !ok {
			return ipc.CellsData{}, fmt.Errorf("%w: %s", ErrUnknownMatrix, req.MatrixID)
		}
		targets = []matrix.Matrix{m}
	} else {
		targets = s.engine.Matrices()
	}

	data := ipc.CellsData{Cells: []tiling.CellRect{}}
	for _, m := range targets {
		rects, err := tiling.CellRects(m, origin, req.Gap)
		if err != nil {
			return ipc.CellsData{}, err
		}
		data.Cells = append(data.Cells, rects...)
	}
	return data, nil
}

// StartPoll implements ipc.Service. A zero interval uses the configured one.
func (s *Service) StartPoll(ctx context.Context, dataIDs []string, interval time.Duration) ipc.PollData {
	if interval <= 0 {
		interval = s.cfg.PollInterval
	}
	s.scheduler.Start(ctx, dataIDs, interval)
	return s.scheduler.Status()
}

// StopPoll implements ipc.Service.
func (s *Service) StopPoll() ipc.PollData {
	s.scheduler.Stop()
	return s.scheduler.Status()
}

// OpenWindows implements ipc.Service.
func (s *Service) OpenWindows(ctx context.Context, matrixIDs []string) ipc.OpenData {
	return s.monitor.Open(ctx, matrixIDs, func(m matrix.Matrix) string {
		return s.cfg.WindowURL(m.ID)
	})
}

// CloseWindow implements ipc.Service.
func (s *Service) CloseWindow(matrixID string) { s.monitor.Remove(matrixID) }

// CloseAll implements ipc.Service.
func (s *Service) CloseAll() { s.monitor.RemoveAll() }

// ContentStyle implements ipc.Service.
func (s *Service) ContentStyle(width, height float64) ipc.StyleData {
	container := &layout.Box{Width: width, Height: height}
	return layout.ContentStyle(s.engine.Matrices(), &layout.Box{Container: container})
}

// LoadStore implements ipc.Service.
func (s *Service) LoadStore(ctx context.Context) (ipc.StoreData, error) {
	snap, err := s.adapter.Load(ctx)
	if err != nil {
		return ipc.StoreData{}, err
	}
	return ipc.StoreData{Key: s.adapter.Key(), Cells: snap}, nil
}

// ClearStore implements ipc.Service.
func (s *Service) ClearStore(ctx context.Context) error {
	return s.adapter.Clear(ctx)
}

// Shutdown stops the poll and closes every window.
func (s *Service) Shutdown() {
	s.scheduler.Stop()
	s.monitor.RemoveAll()
}
