// Package schedule rotates a list of data ids through the matrix cells.
package schedule

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/screenwall/internal/matrix"
)

// DefaultInterval is used when Start is given a non-positive interval.
const DefaultInterval = 5 * time.Second

// State is the scheduler lifecycle state.
type State int

const (
	Idle State = iota
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Cells is the part of the grid engine the scheduler writes to.
type Cells interface {
	Capacity() (int, uint64)
	Assign(gen uint64, values []string) bool
	CellMap() map[string]matrix.Cell
}

// Persister snapshots the flattened cell mapping after each batch.
type Persister interface {
	Save(ctx context.Context, cells map[string]matrix.Cell) error
}

// Status is a point-in-time view of the scheduler.
type Status struct {
	State     string        `json:"state"`
	Cursor    int           `json:"cursor"`
	Capacity  int           `json:"capacity"`
	DataLen   int           `json:"data_len"`
	Ticks     int           `json:"ticks"`
	Interval  time.Duration `json:"interval"`
	LastBatch []string      `json:"last_batch,omitempty"`
}

// Scheduler distributes data ids over the cells in fixed-size batches.
type Scheduler struct {
	cells   Cells
	persist Persister
	logger  *slog.Logger

	mu        sync.Mutex
	state     State
	data      []string
	interval  time.Duration
	cursor    int
	capacity  int
	gen       uint64
	ticks     int
	lastBatch []string
	epoch     uint64
	cancel    context.CancelFunc
}

// New creates an idle scheduler. persist may be nil.
func New(cells Cells, persist Persister, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cells:   cells,
		persist: persist,
		logger:  logger,
	}
}

// Start assigns dataIDs to the cells. When every id fits, it assigns once
// and stops. Otherwise it assigns the first batch immediately and rotates
// to the next batch every interval until stopped. A running schedule is
// cancelled first.
func (s *Scheduler) Start(ctx context.Context, dataIDs []string, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	s.data = append([]string(nil), dataIDs...)
	s.interval = interval
	s.capacity, s.gen = s.cells.Capacity()
	s.cursor = 0
	s.ticks = 0
	s.lastBatch = nil
	s.state = Running

	s.logger.Info("poll started",
		"data_ids", len(s.data),
		"cells", s.capacity,
		"interval", interval)

	if s.tickLocked(ctx) {
		s.finishLocked()
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	go s.run(loopCtx, s.epoch, interval)
}

// Stop cancels any active timer. Safe to call at any time.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Running {
		s.logger.Info("poll stopped", "ticks", s.ticks)
	}
	s.stopLocked()
}

// Tick runs one assignment pass synchronously. It does nothing unless the
// scheduler is running and reports whether the schedule finished.
func (s *Scheduler) Tick(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Running {
		return false
	}
	if s.tickLocked(ctx) {
		s.finishLocked()
		return true
	}
	return false
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Status returns a snapshot of the scheduler.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		State:     s.state.String(),
		Cursor:    s.cursor,
		Capacity:  s.capacity,
		DataLen:   len(s.data),
		Ticks:     s.ticks,
		Interval:  s.interval,
		LastBatch: append([]string(nil), s.lastBatch...),
	}
}

func (s *Scheduler) run(ctx context.Context, epoch uint64, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.epoch != epoch {
				s.mu.Unlock()
				return
			}
			if s.tickLocked(ctx) {
				s.finishLocked()
				s.mu.Unlock()
				return
			}
			s.mu.Unlock()
		}
	}
}

// tickLocked performs one pass and reports whether the schedule is complete.
func (s *Scheduler) tickLocked(ctx context.Context) (done bool) {
	defer func() {
		if err := recover(); err != nil {
			s.logger.Error("poll tick panic recovered", "error", err)
			done = false
		}
	}()

	capacity, gen := s.cells.Capacity()
	if gen != s.gen {
		s.logger.Info("cell layout changed, restarting rotation",
			"old_cells", s.capacity,
			"cells", capacity)
		s.capacity = capacity
		s.gen = gen
		s.cursor = 0
	}

	if len(s.data) <= s.capacity {
		if !s.cells.Assign(s.gen, s.data) {
			return false
		}
		s.ticks++
		s.lastBatch = append([]string(nil), s.data...)
		s.save(ctx)
		s.logger.Info("poll stopped, all data ids assigned", "data_ids", len(s.data), "cells", s.capacity)
		return true
	}

	if s.capacity == 0 {
		s.logger.Debug("poll tick skipped, no cells")
		return false
	}

	end := min(s.cursor+s.capacity, len(s.data))
	batch := s.data[s.cursor:end]
	if !s.cells.Assign(s.gen, batch) {
		return false
	}
	s.ticks++
	s.lastBatch = append([]string(nil), batch...)
	s.save(ctx)
	s.logger.Debug("poll batch assigned", "cursor", s.cursor, "batch", batch)

	s.cursor += s.capacity
	if s.cursor >= len(s.data) {
		s.cursor = 0
	}
	return false
}

func (s *Scheduler) save(ctx context.Context) {
	if s.persist == nil {
		return
	}
	if err := s.persist.Save(ctx, s.cells.CellMap()); err != nil {
		s.logger.Warn("poll: failed to persist cells", "error", err)
	}
}

func (s *Scheduler) finishLocked() {
	s.stopLocked()
	s.state = Stopped
}

func (s *Scheduler) stopLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.epoch++
	if s.state == Running {
		s.state = Stopped
	}
}
