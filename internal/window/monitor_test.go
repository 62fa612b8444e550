package window

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/screenwall/internal/matrix"
)

type fakeHandle struct {
	mu         sync.Mutex
	closed     bool
	closeCalls int
	fullscreen bool
}

func (h *fakeHandle) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

func (h *fakeHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	h.closeCalls++
	return nil
}

func (h *fakeHandle) RequestFullscreen() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fullscreen = true
	return nil
}

// userClose simulates the window being closed outside the monitor.
func (h *fakeHandle) userClose() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
}

func (h *fakeHandle) calls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closeCalls
}

type openCall struct {
	url, id, features string
}

type fakeOpener struct {
	mu      sync.Mutex
	calls   []openCall
	handles map[string]*fakeHandle
	fail    map[string]error
	refuse  map[string]bool
}

func newFakeOpener() *fakeOpener {
	return &fakeOpener{
		handles: map[string]*fakeHandle{},
		fail:    map[string]error{},
		refuse:  map[string]bool{},
	}
}

func (o *fakeOpener) Open(url, id, features string) (Handle, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, openCall{url, id, features})
	if err := o.fail[id]; err != nil {
		return nil, err
	}
	if o.refuse[id] {
		return nil, nil
	}
	h := &fakeHandle{}
	o.handles[id] = h
	return h, nil
}

func (o *fakeOpener) handle(id string) *fakeHandle {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.handles[id]
}

type recordingPersister struct {
	saves []map[string]matrix.Cell
}

func (p *recordingPersister) Save(_ context.Context, cells map[string]matrix.Cell) error {
	p.saves = append(p.saves, cells)
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func threeScreenEngine(t *testing.T) *matrix.Engine {
	t.Helper()
	e, err := matrix.NewEngine([]matrix.Screen{
		{Left: 0, Top: 0, Width: 1920, Height: 1080},
		{Left: 1920, Top: 0, Width: 1920, Height: 1080},
		{Left: 3840, Top: 0, Width: 1280, Height: 1024},
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func urlFor(m matrix.Matrix) string {
	return "http://wall.local/view?matrixId=" + m.ID
}

func newMonitor(t *testing.T, sticky bool) (*Monitor, *matrix.Engine, *fakeOpener) {
	t.Helper()
	e := threeScreenEngine(t)
	o := newFakeOpener()
	m := NewMonitor(e, o, nil, Options{CloseSticky: sticky, Interval: time.Hour, Logger: quietLogger()})
	t.Cleanup(m.RemoveAll)
	return m, e, o
}

func TestOpen_AllMatricesWhenNoIDs(t *testing.T) {
	m, e, o := newMonitor(t, false)

	res := m.Open(context.Background(), nil, urlFor)

	if !reflect.DeepEqual(res.Opened, e.IDs()) {
		t.Fatalf("opened = %v, want %v", res.Opened, e.IDs())
	}
	if len(res.Failed) != 0 {
		t.Fatalf("unexpected failures: %+v", res.Failed)
	}
	if m.Len() != 3 || !m.Polling() {
		t.Fatalf("expected 3 registered and polling, got len=%d polling=%v", m.Len(), m.Polling())
	}

	first := e.IDs()[0]
	mx, _ := e.Matrix(first)
	call := o.calls[0]
	if call.id != first || call.url != urlFor(mx) {
		t.Fatalf("unexpected open call %+v", call)
	}
	if call.features != "height=1080,width=1920,left=0,top=0,fullscreen" {
		t.Fatalf("features = %q", call.features)
	}
	if !o.handle(first).fullscreen {
		t.Fatalf("fullscreen was not requested")
	}
}

func TestOpen_SelectedIDsOnly(t *testing.T) {
	m, e, o := newMonitor(t, false)
	want := e.IDs()[1]

	res := m.Open(context.Background(), []string{want, "l=9,t=9,w=9,h=9"}, urlFor)

	if !reflect.DeepEqual(res.Opened, []string{want}) {
		t.Fatalf("opened = %v, want [%s]", res.Opened, want)
	}
	if len(o.calls) != 1 {
		t.Fatalf("expected one open call, got %d", len(o.calls))
	}
}

func TestOpen_FailureDoesNotAbortOthers(t *testing.T) {
	m, e, o := newMonitor(t, false)
	ids := e.IDs()
	o.fail[ids[0]] = errors.New("popup blocked")
	o.refuse[ids[1]] = true

	res := m.Open(context.Background(), nil, urlFor)

	if !reflect.DeepEqual(res.Opened, []string{ids[2]}) {
		t.Fatalf("opened = %v", res.Opened)
	}
	if len(res.Failed) != 2 {
		t.Fatalf("expected two failures, got %+v", res.Failed)
	}
	if res.Failed[1].Error != ErrRefused.Error() {
		t.Fatalf("expected refused error, got %q", res.Failed[1].Error)
	}
	if !reflect.DeepEqual(m.IDs(), []string{ids[2]}) {
		t.Fatalf("registry = %v", m.IDs())
	}
}

func TestOpen_SnapshotsCellsFirst(t *testing.T) {
	e := threeScreenEngine(t)
	p := &recordingPersister{}
	m := NewMonitor(e, newFakeOpener(), p, Options{Interval: time.Hour, Logger: quietLogger()})
	defer m.RemoveAll()

	m.Open(context.Background(), nil, urlFor)

	if len(p.saves) != 1 {
		t.Fatalf("expected one snapshot, got %d", len(p.saves))
	}
	if !reflect.DeepEqual(p.saves[0], e.CellMap()) {
		t.Fatalf("snapshot does not match cell map")
	}
}

func TestOpen_ReopenReplacesHandle(t *testing.T) {
	m, e, o := newMonitor(t, false)
	id := e.IDs()[0]

	m.Open(context.Background(), []string{id}, urlFor)
	old := o.handle(id)
	m.Open(context.Background(), []string{id}, urlFor)

	if old.calls() != 1 {
		t.Fatalf("previous handle should be closed once, got %d", old.calls())
	}
	if m.Len() != 1 {
		t.Fatalf("expected one registered window, got %d", m.Len())
	}
}

func TestTick_NonStickyRemovesOnlyClosed(t *testing.T) {
	m, e, o := newMonitor(t, false)
	ids := e.IDs()
	m.Open(context.Background(), nil, urlFor)

	o.handle(ids[1]).userClose()
	m.Tick()

	if want := []string{ids[0], ids[2]}; !reflect.DeepEqual(m.IDs(), want) {
		t.Fatalf("registry = %v, want %v", m.IDs(), want)
	}
	if o.handle(ids[0]).Closed() || o.handle(ids[2]).Closed() {
		t.Fatalf("open windows must stay open")
	}
	if !m.Polling() {
		t.Fatalf("poll should continue while windows remain")
	}
}

func TestTick_StickyClosesAll(t *testing.T) {
	m, e, o := newMonitor(t, true)
	ids := e.IDs()
	m.Open(context.Background(), nil, urlFor)

	o.handle(ids[2]).userClose()
	m.Tick()

	if m.Len() != 0 {
		t.Fatalf("expected empty registry, got %v", m.IDs())
	}
	for _, id := range ids {
		if !o.handle(id).Closed() {
			t.Errorf("window %s still open", id)
		}
	}
	if m.Polling() {
		t.Fatalf("poll should stop once the registry drains")
	}
}

func TestTick_DrainStopsPoll(t *testing.T) {
	m, e, o := newMonitor(t, false)
	m.Open(context.Background(), nil, urlFor)
	for _, id := range e.IDs() {
		o.handle(id).userClose()
	}
	m.Tick()
	if m.Len() != 0 || m.Polling() {
		t.Fatalf("expected drained and stopped, got len=%d polling=%v", m.Len(), m.Polling())
	}
}

func TestRemove_UnknownIsNoOp(t *testing.T) {
	m, e, o := newMonitor(t, false)
	ids := e.IDs()
	m.Open(context.Background(), nil, urlFor)

	m.Remove("l=1,t=1,w=1,h=1")
	if m.Len() != 3 {
		t.Fatalf("unknown id changed registry: %v", m.IDs())
	}

	m.Remove(ids[0])
	if m.Len() != 2 || !o.handle(ids[0]).Closed() {
		t.Fatalf("remove did not close and deregister")
	}
}

func TestRemoveAll(t *testing.T) {
	m, e, o := newMonitor(t, false)
	m.Open(context.Background(), nil, urlFor)
	m.RemoveAll()
	if m.Len() != 0 || m.Polling() {
		t.Fatalf("expected empty and stopped")
	}
	for _, id := range e.IDs() {
		if o.handle(id).calls() != 1 {
			t.Errorf("window %s closed %d times", id, o.handle(id).calls())
		}
	}
}

func TestPoll_DetectsCloseInBackground(t *testing.T) {
	e := threeScreenEngine(t)
	o := newFakeOpener()
	m := NewMonitor(e, o, nil, Options{CloseSticky: true, Interval: 5 * time.Millisecond, Logger: quietLogger()})
	defer m.RemoveAll()

	m.Open(context.Background(), nil, urlFor)
	o.handle(e.IDs()[0]).userClose()

	deadline := time.Now().Add(2 * time.Second)
	for m.Len() > 0 || m.Polling() {
		if time.Now().After(deadline) {
			t.Fatalf("poll did not drain registry: len=%d polling=%v", m.Len(), m.Polling())
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestFeatures_StringAndParse(t *testing.T) {
	tests := []struct {
		in   string
		want Features
	}{
		{"height=1080,width=1920,left=0,top=0,fullscreen", Features{Width: 1920, Height: 1080, Fullscreen: true}},
		{"left=1920, top=-200, width=800, height=600", Features{Left: 1920, Top: -200, Width: 800, Height: 600}},
		{"fullscreen=no,width=10", Features{Width: 10}},
		{"menubar=no,fullscreen=yes", Features{Fullscreen: true}},
		{"", Features{}},
	}
	for _, tt := range tests {
		got, err := ParseFeatures(tt.in)
		if err != nil {
			t.Fatalf("ParseFeatures(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseFeatures(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}

	f := Features{Left: 1920, Top: 0, Width: 1280, Height: 1024, Fullscreen: true}
	back, err := ParseFeatures(f.String())
	if err != nil || back != f {
		t.Fatalf("String/Parse mismatch: %q -> %+v (%v)", f.String(), back, err)
	}

	if _, err := ParseFeatures("width=wide"); err == nil {
		t.Fatalf("expected error for non-numeric width")
	}
}
