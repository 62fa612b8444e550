package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/1broseidon/screenwall/internal/config"
	"github.com/1broseidon/screenwall/internal/window"
	"github.com/google/uuid"
)

// ErrNoWindow is returned when the launched process never mapped a window.
var ErrNoWindow = errors.New("launched process did not map a window")

const findInterval = 100 * time.Millisecond

// Launcher opens windows by starting the configured command once per screen.
type Launcher struct {
	backend Backend
	cfg     config.Launcher
	logger  *slog.Logger
	// profileRoot holds one throwaway profile directory per window.
	profileRoot string
}

var _ window.Opener = (*Launcher)(nil)

// NewLauncher creates a window opener backed by a window system.
func NewLauncher(backend Backend, cfg config.Launcher, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.LaunchTimeout <= 0 {
		cfg.LaunchTimeout = config.DefaultLaunchTimeout
	}
	return &Launcher{
		backend:     backend,
		cfg:         cfg,
		logger:      logger,
		profileRoot: filepath.Join(os.TempDir(), "screenwall"),
	}
}

// ExpandArgs substitutes the launch placeholders in args.
func ExpandArgs(args []string, url, name, profile string, f window.Features) []string {
	r := strings.NewReplacer(
		"{url}", url,
		"{name}", name,
		"{left}", strconv.Itoa(f.Left),
		"{top}", strconv.Itoa(f.Top),
		"{width}", strconv.Itoa(f.Width),
		"{height}", strconv.Itoa(f.Height),
		"{profile}", profile,
	)
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = r.Replace(a)
	}
	return out
}

// Open starts the launcher command and waits for its window.
func (l *Launcher) Open(url, id, features string) (window.Handle, error) {
	f, err := window.ParseFeatures(features)
	if err != nil {
		return nil, err
	}

	profile := filepath.Join(l.profileRoot, uuid.NewString())
	if err := os.MkdirAll(profile, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create profile dir: %w", err)
	}

	cmd := exec.Command(l.cfg.Command, ExpandArgs(l.cfg.Args, url, id, profile, f)...)
	if err := cmd.Start(); err != nil {
		os.RemoveAll(profile)
		return nil, fmt.Errorf("failed to start %s: %w", l.cfg.Command, err)
	}

	h := &launchedWindow{
		backend: l.backend,
		cmd:     cmd,
		profile: profile,
		exited:  make(chan struct{}),
		logger:  l.logger.With("matrix_id", id, "pid", cmd.Process.Pid),
	}
	go h.wait()

	ctx, cancel := context.WithTimeout(context.Background(), l.cfg.LaunchTimeout)
	defer cancel()
	win, err := h.findWindow(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("%w within %s", ErrNoWindow, l.cfg.LaunchTimeout)
	}
	if err != nil {
		h.kill()
		return nil, err
	}
	h.mu.Lock()
	h.win = win
	h.mu.Unlock()

	bounds := Rect{X: f.Left, Y: f.Top, Width: f.Width, Height: f.Height}
	if bounds.Width > 0 && bounds.Height > 0 {
		if err := l.backend.MoveResize(win, bounds); err != nil {
			h.logger.Debug("move window failed", "error", err)
		}
	}
	h.logger.Debug("window mapped", "window", uint32(win))
	return h, nil
}

type launchedWindow struct {
	backend Backend
	cmd     *exec.Cmd
	profile string
	exited  chan struct{}
	logger  *slog.Logger

	mu  sync.Mutex
	win WindowID
}

func (h *launchedWindow) wait() {
	err := h.cmd.Wait()
	h.logger.Debug("window process exited", "error", err)
	if rmErr := os.RemoveAll(h.profile); rmErr != nil {
		h.logger.Debug("profile cleanup failed", "error", rmErr)
	}
	close(h.exited)
}

func (h *launchedWindow) findWindow(ctx context.Context) (WindowID, error) {
	ticker := time.NewTicker(findInterval)
	defer ticker.Stop()
	for {
		win, ok, err := h.backend.FindWindowByPID(h.cmd.Process.Pid)
		if err != nil {
			return 0, err
		}
		if ok {
			return win, nil
		}
		select {
		case <-h.exited:
			return 0, ErrNoWindow
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (h *launchedWindow) processExited() bool {
	select {
	case <-h.exited:
		return true
	default:
		return false
	}
}

// Closed reports whether the process exited or its window is gone.
func (h *launchedWindow) Closed() bool {
	if h.processExited() {
		return true
	}
	h.mu.Lock()
	win := h.win
	h.mu.Unlock()
	exists, err := h.backend.WindowExists(win)
	if err != nil {
		return false
	}
	return !exists
}

// Close asks the window manager to close the window and kills the process
// when that request fails.
func (h *launchedWindow) Close() error {
	if h.processExited() {
		return nil
	}
	h.mu.Lock()
	win := h.win
	h.mu.Unlock()
	if err := h.backend.Close(win); err != nil {
		h.logger.Debug("graceful close failed, killing process", "error", err)
		return h.kill()
	}
	return nil
}

func (h *launchedWindow) RequestFullscreen() error {
	h.mu.Lock()
	win := h.win
	h.mu.Unlock()
	return h.backend.Fullscreen(win)
}

func (h *launchedWindow) kill() error {
	if h.processExited() {
		return nil
	}
	if err := h.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}
