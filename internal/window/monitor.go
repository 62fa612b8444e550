// Package window opens one window per matrix and tracks whether the user
// closed it.
package window

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/1broseidon/screenwall/internal/matrix"
)

// DefaultInterval is the lifecycle poll interval.
const DefaultInterval = 200 * time.Millisecond

// ErrRefused is reported when the opener returns no handle and no error.
var ErrRefused = errors.New("window open refused")

// Handle is a window opened by the host.
type Handle interface {
	Closed() bool
	Close() error
	RequestFullscreen() error
}

// Opener opens a window named id at url. features is a string such as
// "height=1080,width=1920,left=0,top=0,fullscreen".
type Opener interface {
	Open(url, id, features string) (Handle, error)
}

// Source provides matrix geometry and the cell snapshot taken before opening.
type Source interface {
	Matrices() []matrix.Matrix
	CellMap() map[string]matrix.Cell
}

// Persister receives the cell snapshot taken before windows are opened.
type Persister interface {
	Save(ctx context.Context, cells map[string]matrix.Cell) error
}

// Options configures a Monitor.
type Options struct {
	// CloseSticky closes every window when any one of them is closed.
	CloseSticky bool
	Interval    time.Duration
	Logger      *slog.Logger
}

// OpenFailure records a matrix whose window could not be opened.
type OpenFailure struct {
	MatrixID string `json:"matrix_id"`
	Error    string `json:"error"`
}

// OpenResult reports the outcome of Open per matrix.
type OpenResult struct {
	Opened []string      `json:"opened"`
	Failed []OpenFailure `json:"failed,omitempty"`
}

// Monitor owns the registry of opened windows keyed by matrix id.
type Monitor struct {
	source  Source
	opener  Opener
	persist Persister
	sticky  bool
	every   time.Duration
	logger  *slog.Logger

	mu       sync.Mutex
	registry map[string]Handle
	polling  bool
	epoch    uint64
	cancel   context.CancelFunc
}

// NewMonitor creates a monitor. persist may be nil.
func NewMonitor(source Source, opener Opener, persist Persister, opts Options) *Monitor {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Monitor{
		source:   source,
		opener:   opener,
		persist:  persist,
		sticky:   opts.CloseSticky,
		every:    opts.Interval,
		logger:   opts.Logger,
		registry: make(map[string]Handle),
	}
}

// Open opens a window for each listed matrix, or for every matrix when
// matrixIDs is empty. A failure for one matrix does not stop the others.
func (m *Monitor) Open(ctx context.Context, matrixIDs []string, urlFor func(matrix.Matrix) string) OpenResult {
	if m.persist != nil {
		if err := m.persist.Save(ctx, m.source.CellMap()); err != nil {
			m.logger.Warn("failed to snapshot cells before opening windows", "error", err)
		}
	}

	var res OpenResult
	for _, mx := range m.source.Matrices() {
		if len(matrixIDs) > 0 && !slices.Contains(matrixIDs, mx.ID) {
			continue
		}
		if err := m.openOne(mx, urlFor(mx)); err != nil {
			m.logger.Warn("failed to open window", "matrix_id", mx.ID, "error", err)
			res.Failed = append(res.Failed, OpenFailure{MatrixID: mx.ID, Error: err.Error()})
			continue
		}
		res.Opened = append(res.Opened, mx.ID)
	}

	m.mu.Lock()
	if len(m.registry) > 0 && !m.polling {
		m.startPollLocked(ctx)
	}
	m.mu.Unlock()

	return res
}

func (m *Monitor) openOne(mx matrix.Matrix, url string) error {
	h, err := m.opener.Open(url, mx.ID, FeaturesFor(mx).String())
	if err != nil {
		return err
	}
	if h == nil {
		return ErrRefused
	}
	if err := h.RequestFullscreen(); err != nil {
		m.logger.Debug("fullscreen request failed", "matrix_id", mx.ID, "error", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.registry[mx.ID]; ok && prev != h {
		m.closeHandle(mx.ID, prev)
	}
	m.registry[mx.ID] = h
	m.logger.Info("window opened", "matrix_id", mx.ID, "url", url)
	return nil
}

// Tick runs one lifecycle check synchronously.
func (m *Monitor) Tick() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickLocked()
}

func (m *Monitor) tickLocked() {
	defer func() {
		if err := recover(); err != nil {
			m.logger.Error("window monitor panic recovered", "error", err)
		}
	}()

	for _, id := range m.idsLocked() {
		h, ok := m.registry[id]
		if !ok || !h.Closed() {
			continue
		}
		m.logger.Info("window closed externally", "matrix_id", id, "close_sticky", m.sticky)
		if m.sticky {
			m.removeAllLocked()
			break
		}
		m.removeLocked(id)
	}
	if len(m.registry) == 0 {
		m.stopPollLocked()
	}
}

// Remove closes and deregisters one window. Unknown ids are ignored.
func (m *Monitor) Remove(matrixID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(matrixID)
	if len(m.registry) == 0 {
		m.stopPollLocked()
	}
}

// RemoveAll closes and deregisters every window.
func (m *Monitor) RemoveAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeAllLocked()
	m.stopPollLocked()
}

// IDs returns the registered matrix ids, sorted.
func (m *Monitor) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.idsLocked()
}

// Len returns the number of registered windows.
func (m *Monitor) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.registry)
}

// Polling reports whether the lifecycle poll is active.
func (m *Monitor) Polling() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.polling
}

// CloseSticky reports the cascade policy.
func (m *Monitor) CloseSticky() bool { return m.sticky }

func (m *Monitor) idsLocked() []string {
	ids := make([]string, 0, len(m.registry))
	for id := range m.registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m *Monitor) removeLocked(id string) {
	h, ok := m.registry[id]
	if !ok {
		return
	}
	m.closeHandle(id, h)
	delete(m.registry, id)
}

func (m *Monitor) removeAllLocked() {
	for id, h := range m.registry {
		m.closeHandle(id, h)
	}
	clear(m.registry)
}

func (m *Monitor) closeHandle(id string, h Handle) {
	if err := h.Close(); err != nil {
		m.logger.Debug("window close failed", "matrix_id", id, "error", err)
	}
}

func (m *Monitor) startPollLocked(ctx context.Context) {
	m.stopPollLocked()
	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.polling = true
	go m.run(loopCtx, m.epoch)
	m.logger.Debug("window monitor started", "interval", m.every)
}

func (m *Monitor) stopPollLocked() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.polling {
		m.logger.Debug("window monitor stopped")
	}
	m.polling = false
	m.epoch++
}

func (m *Monitor) run(ctx context.Context, epoch uint64) {
	ticker := time.NewTicker(m.every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.mu.Lock()
			if m.epoch == epoch {
				m.polling = false
				m.cancel = nil
				m.epoch++
			}
			m.mu.Unlock()
			return
		case <-ticker.C:
			m.mu.Lock()
			if m.epoch != epoch {
				m.mu.Unlock()
				return
			}
			m.tickLocked()
			m.mu.Unlock()
		}
	}
}
