package platform

import (
	"errors"
	"io"
	"log/slog"
	"os/exec"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/screenwall/internal/config"
	"github.com/1broseidon/screenwall/internal/window"
)

type fakeBackend struct {
	mu         sync.Mutex
	mapWindow  bool
	gone       map[WindowID]bool
	moved      []Rect
	fullscreen []WindowID
	closed     []WindowID
	closeErr   error
}

func newFakeBackend(mapWindow bool) *fakeBackend {
	return &fakeBackend{mapWindow: mapWindow, gone: map[WindowID]bool{}}
}

func (b *fakeBackend) Displays() ([]Display, error) { return nil, nil }

func (b *fakeBackend) FindWindowByPID(pid int) (WindowID, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.mapWindow {
		return 0, false, nil
	}
	return WindowID(pid), true, nil
}

func (b *fakeBackend) WindowExists(id WindowID) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.gone[id], nil
}

func (b *fakeBackend) MoveResize(_ WindowID, bounds Rect) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.moved = append(b.moved, bounds)
	return nil
}

func (b *fakeBackend) Fullscreen(id WindowID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fullscreen = append(b.fullscreen, id)
	return nil
}

func (b *fakeBackend) Close(id WindowID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closeErr != nil {
		return b.closeErr
	}
	b.closed = append(b.closed, id)
	b.gone[id] = true
	return nil
}

func newTestLauncher(t *testing.T, b Backend, command string, args ...string) *Launcher {
	t.Helper()
	if _, err := exec.LookPath(command); err != nil {
		t.Skipf("%s not available: %v", command, err)
	}
	l := NewLauncher(b, config.Launcher{
		Command:       command,
		Args:          args,
		LaunchTimeout: 300 * time.Millisecond,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	l.profileRoot = t.TempDir()
	return l
}

func TestExpandArgs(t *testing.T) {
	f := window.Features{Left: 1920, Top: 0, Width: 1280, Height: 1024, Fullscreen: true}
	args := []string{"--app={url}", "--class={name}", "--window-position={left},{top}", "--window-size={width},{height}", "--user-data-dir={profile}", "--kiosk"}

	got := ExpandArgs(args, "http://x/view", "l=1920,t=0,w=1280,h=1024", "/tmp/p", f)
	want := []string{"--app=http://x/view", "--class=l=1920,t=0,w=1280,h=1024", "--window-position=1920,0", "--window-size=1280,1024", "--user-data-dir=/tmp/p", "--kiosk"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExpandArgs = %v, want %v", got, want)
	}
}

func TestLauncher_OpenMovesAndClosesWindow(t *testing.T) {
	b := newFakeBackend(true)
	l := newTestLauncher(t, b, "sleep", "30")

	h, err := l.Open("http://x", "m1", "height=1080,width=1920,left=0,top=0,fullscreen")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	lw := h.(*launchedWindow)
	t.Cleanup(func() { lw.kill() })

	if want := []Rect{{X: 0, Y: 0, Width: 1920, Height: 1080}}; !reflect.DeepEqual(b.moved, want) {
		t.Fatalf("moved = %v, want %v", b.moved, want)
	}
	if h.Closed() {
		t.Fatalf("fresh window reported closed")
	}
	if err := h.RequestFullscreen(); err != nil || len(b.fullscreen) != 1 {
		t.Fatalf("fullscreen request not forwarded: %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !h.Closed() {
		t.Fatalf("window should be closed once it leaves the client list")
	}
}

func TestLauncher_CloseFallsBackToKill(t *testing.T) {
	b := newFakeBackend(true)
	b.closeErr = errors.New("no WM")
	l := newTestLauncher(t, b, "sleep", "30")

	h, err := l.Open("http://x", "m1", "width=10,height=10")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	waitClosed(t, h)
}

func TestLauncher_ProcessExitMarksClosed(t *testing.T) {
	l := newTestLauncher(t, newFakeBackend(true), "true")

	h, err := l.Open("http://x", "m1", "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	waitClosed(t, h)
}

func TestLauncher_NoWindowTimesOut(t *testing.T) {
	l := newTestLauncher(t, newFakeBackend(false), "sleep", "30")

	_, err := l.Open("http://x", "m1", "")
	if !errors.Is(err, ErrNoWindow) {
		t.Fatalf("expected ErrNoWindow, got %v", err)
	}
}

func TestLauncher_BadFeatures(t *testing.T) {
	l := newTestLauncher(t, newFakeBackend(true), "true")
	if _, err := l.Open("http://x", "m1", "width=wide"); err == nil {
		t.Fatalf("expected feature parse error")
	}
}

func TestScreens_FromDisplays(t *testing.T) {
	displays := []Display{
		{ID: 0, Name: "eDP-1", Bounds: Rect{0, 0, 1920, 1080}, Usable: Rect{0, 32, 1920, 1048}, Primary: true, Internal: true},
		{ID: 1, Name: "HDMI-1", Bounds: Rect{1920, 0, 2560, 1440}, Usable: Rect{1920, 0, 2560, 1440}},
	}
	screens := Screens(displays)
	if len(screens) != 2 {
		t.Fatalf("expected 2 screens, got %d", len(screens))
	}
	s := screens[0]
	if s.Width != 1920 || s.AvailTop != 32 || s.AvailHeight != 1048 || !s.IsPrimary || !s.IsInternal || !s.IsExtended {
		t.Fatalf("unexpected screen %+v", s)
	}
	if screens[1].Left != 1920 || screens[1].IsPrimary {
		t.Fatalf("unexpected screen %+v", screens[1])
	}

	if single := Screens(displays[:1]); single[0].IsExtended {
		t.Fatalf("single display should not be extended")
	}
}

func waitClosed(t *testing.T, h window.Handle) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !h.Closed() {
		if time.Now().After(deadline) {
			t.Fatalf("handle never reported closed")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
