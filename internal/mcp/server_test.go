package mcp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/screenwall/internal/ipc"
	"github.com/1broseidon/screenwall/internal/layout"
	"github.com/1broseidon/screenwall/internal/matrix"
	"github.com/1broseidon/screenwall/internal/schedule"
	"github.com/1broseidon/screenwall/internal/tiling"
	"github.com/1broseidon/screenwall/internal/window"
)

type fakeDaemon struct {
	err error

	splitTemplate string
	splitIDs      []string
	cellsReq      ipc.CellsPayload
	pollIDs       []string
	pollInterval  time.Duration
	openIDs       []string
	closed        []string
	closedAll     bool
	cleared       bool
	style         layout.Style
}

func (f *fakeDaemon) GetStatus() (*ipc.StatusData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ipc.StatusData{InstanceID: "abc", Matrices: 2, Cells: 8, StorageKey: "matrix"}, nil
}

func (f *fakeDaemon) matrices() (*ipc.MatricesData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ipc.MatricesData{Matrices: []matrix.Matrix{{ID: "l=0,t=0,w=1920,h=1080"}}, Generation: 3}, nil
}

func (f *fakeDaemon) GetMatrices() (*ipc.MatricesData, error) { return f.matrices() }
func (f *fakeDaemon) Rebuild() (*ipc.MatricesData, error)     { return f.matrices() }

func (f *fakeDaemon) Split(template string, ids []string) (*ipc.MatricesData, error) {
	f.splitTemplate, f.splitIDs = template, ids
	return f.matrices()
}

func (f *fakeDaemon) GetCells(req ipc.CellsPayload) (*ipc.CellsData, error) {
	f.cellsReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &ipc.CellsData{Cells: []tiling.CellRect{{Rect: tiling.Rect{Width: 960, Height: 540}}}}, nil
}

func (f *fakeDaemon) StartPoll(ids []string, interval time.Duration) (*ipc.PollData, error) {
	f.pollIDs, f.pollInterval = ids, interval
	if f.err != nil {
		return nil, f.err
	}
	return &schedule.Status{State: "running", DataLen: len(ids)}, nil
}

func (f *fakeDaemon) StopPoll() (*ipc.PollData, error) {
	return &schedule.Status{State: "stopped"}, f.err
}

func (f *fakeDaemon) OpenWindows(ids []string) (*ipc.OpenData, error) {
	f.openIDs = ids
	if f.err != nil {
		return nil, f.err
	}
	return &window.OpenResult{
		Opened: []string{"a"},
		Failed: []window.OpenFailure{{MatrixID: "b", Error: "refused"}},
	}, nil
}

func (f *fakeDaemon) CloseWindow(id string) error {
	f.closed = append(f.closed, id)
	return f.err
}

func (f *fakeDaemon) CloseAll() error {
	f.closedAll = true
	return f.err
}

func (f *fakeDaemon) ContentStyle(_, _ float64) (*ipc.StyleData, error) {
	if f.err != nil {
		return nil, f.err
	}
	s := f.style
	return &s, nil
}

func (f *fakeDaemon) LoadStore() (*ipc.StoreData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ipc.StoreData{Key: "matrix"}, nil
}

func (f *fakeDaemon) ClearStore() error {
	f.cleared = true
	return f.err
}

func newTestServer(d *fakeDaemon) *Server {
	return NewServer(d, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHandleSplitGrid(t *testing.T) {
	d := &fakeDaemon{}
	s := newTestServer(d)
	ctx := context.Background()

	_, _, err := s.handleSplitGrid(ctx, nil, SplitGridInput{Template: " 2X3 ", MatrixIDs: []string{"x"}})
	if err != nil {
		t.Fatalf("split_grid: %v", err)
	}
	if d.splitTemplate != "2x3" || !reflect.DeepEqual(d.splitIDs, []string{"x"}) {
		t.Fatalf("forwarded %q %v", d.splitTemplate, d.splitIDs)
	}

	if _, _, err := s.handleSplitGrid(ctx, nil, SplitGridInput{Template: "banana"}); err == nil {
		t.Fatalf("expected error for invalid template")
	}
}

func TestHandleListMatrices_NeverNil(t *testing.T) {
	s := newTestServer(&fakeDaemon{})
	_, out, err := s.handleListMatrices(context.Background(), nil, EmptyInput{})
	if err != nil {
		t.Fatalf("list_matrices: %v", err)
	}
	if len(out.Matrices) != 1 || out.Generation != 3 {
		t.Fatalf("unexpected output %+v", out)
	}
}

func TestHandleStartPoll(t *testing.T) {
	d := &fakeDaemon{}
	s := newTestServer(d)
	ctx := context.Background()

	_, out, err := s.handleStartPoll(ctx, nil, StartPollInput{DataIDs: []string{"a", "b"}, IntervalMS: 1500})
	if err != nil {
		t.Fatalf("start_poll: %v", err)
	}
	if d.pollInterval != 1500*time.Millisecond || out.Status.State != "running" || out.Status.DataLen != 2 {
		t.Fatalf("unexpected forward interval=%v out=%+v", d.pollInterval, out)
	}

	if _, _, err := s.handleStartPoll(ctx, nil, StartPollInput{IntervalMS: -1}); err == nil {
		t.Fatalf("expected error for negative interval")
	}
}

func TestHandleGetCells(t *testing.T) {
	d := &fakeDaemon{}
	s := newTestServer(d)
	ctx := context.Background()

	_, out, err := s.handleGetCells(ctx, nil, GetCellsInput{MatrixID: "m", Gap: 4, Fixing: true})
	if err != nil {
		t.Fatalf("get_cells: %v", err)
	}
	want := ipc.CellsPayload{MatrixID: "m", Gap: 4, Fixing: true}
	if d.cellsReq != want || len(out.Cells) != 1 {
		t.Fatalf("forwarded %+v, got %+v", d.cellsReq, out)
	}
	if _, _, err := s.handleGetCells(ctx, nil, GetCellsInput{Gap: -2}); err == nil {
		t.Fatalf("expected error for negative gap")
	}
}

func TestHandleWindows(t *testing.T) {
	d := &fakeDaemon{}
	s := newTestServer(d)
	ctx := context.Background()

	_, opened, err := s.handleOpenWindows(ctx, nil, OpenWindowsInput{})
	if err != nil {
		t.Fatalf("open_windows: %v", err)
	}
	if len(opened.Opened) != 1 || len(opened.Failed) != 1 || d.openIDs != nil {
		t.Fatalf("unexpected open result %+v (ids %v)", opened, d.openIDs)
	}

	if _, _, err := s.handleCloseWindow(ctx, nil, CloseWindowInput{}); err == nil {
		t.Fatalf("expected error for empty matrix_id")
	}
	_, closed, err := s.handleCloseWindow(ctx, nil, CloseWindowInput{MatrixID: "a"})
	if err != nil || !closed.Closed || !reflect.DeepEqual(d.closed, []string{"a"}) {
		t.Fatalf("close_window: %+v %v", closed, err)
	}
	if _, _, err := s.handleCloseAll(ctx, nil, EmptyInput{}); err != nil || !d.closedAll {
		t.Fatalf("close_all_windows: %v", err)
	}
}

func TestHandleContentStyle(t *testing.T) {
	d := &fakeDaemon{style: layout.Style{Transform: "scale(0.5)", Scale: 0.5}}
	s := newTestServer(d)
	ctx := context.Background()

	_, out, err := s.handleContentStyle(ctx, nil, ContentStyleInput{Width: 960, Height: 540})
	if err != nil || !out.Fits || out.Style.Transform != "scale(0.5)" {
		t.Fatalf("content_style: %+v %v", out, err)
	}

	d.style = layout.Style{}
	if _, out, _ := s.handleContentStyle(ctx, nil, ContentStyleInput{}); out.Fits {
		t.Fatalf("zero style must not fit")
	}
	if _, _, err := s.handleContentStyle(ctx, nil, ContentStyleInput{Width: -1}); err == nil {
		t.Fatalf("expected error for negative width")
	}
}

func TestHandleStore(t *testing.T) {
	d := &fakeDaemon{}
	s := newTestServer(d)
	ctx := context.Background()

	_, out, err := s.handleLoadStore(ctx, nil, EmptyInput{})
	if err != nil || out.Key != "matrix" || out.Cells == nil {
		t.Fatalf("load_store: %+v %v", out, err)
	}
	if _, cleared, err := s.handleClearStore(ctx, nil, EmptyInput{}); err != nil || !cleared.Cleared || !d.cleared {
		t.Fatalf("clear_store: %+v %v", cleared, err)
	}
}

func TestHandlers_WrapDaemonErrors(t *testing.T) {
	d := &fakeDaemon{err: errors.New("failed to connect to daemon")}
	s := newTestServer(d)
	ctx := context.Background()

	_, _, err := s.handleGetStatus(ctx, nil, EmptyInput{})
	if err == nil || !strings.HasPrefix(err.Error(), "get_status: ") || !errors.Is(err, d.err) {
		t.Fatalf("unexpected error %v", err)
	}
	if _, _, err := s.handleRebuildMatrix(ctx, nil, EmptyInput{}); err == nil {
		t.Fatalf("expected rebuild error")
	}
	if _, _, err := s.handleStopPoll(ctx, nil, EmptyInput{}); err == nil {
		t.Fatalf("expected stop_poll error")
	}
}
