package mcp

import (
	"context"
	"fmt"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/screenwall/internal/ipc"
	"github.com/1broseidon/screenwall/internal/matrix"
)

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	st, err := s.daemon.GetStatus()
	if err != nil {
		return nil, StatusOutput{}, daemonError("get_status", err)
	}
	windows := st.Windows
	if windows == nil {
		windows = []string{}
	}
	return nil, StatusOutput{
		InstanceID:     st.InstanceID,
		UptimeSeconds:  st.UptimeSeconds,
		Matrices:       st.Matrices,
		Cells:          st.Cells,
		Generation:     st.Generation,
		Poll:           st.Poll,
		Windows:        windows,
		WindowPolling:  st.WindowPolling,
		CloseSticky:    st.CloseSticky,
		StorageBackend: st.StorageBackend,
		StorageKey:     st.StorageKey,
	}, nil
}

func (s *Server) handleListMatrices(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, MatricesOutput, error) {
	data, err := s.daemon.GetMatrices()
	if err != nil {
		return nil, MatricesOutput{}, daemonError("list_matrices", err)
	}
	return nil, matricesOutput(data), nil
}

func (s *Server) handleRebuildMatrix(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, MatricesOutput, error) {
	data, err := s.daemon.Rebuild()
	if err != nil {
		return nil, MatricesOutput{}, daemonError("rebuild_matrix", err)
	}
	s.logger.Info("mcp: matrix rebuilt", "matrices", len(data.Matrices))
	return nil, matricesOutput(data), nil
}

func (s *Server) handleSplitGrid(_ context.Context, _ *mcpsdk.CallToolRequest, args SplitGridInput) (*mcpsdk.CallToolResult, MatricesOutput, error) {
	tpl, err := matrix.ParseTemplate(args.Template)
	if err != nil {
		return nil, MatricesOutput{}, err
	}
	data, err := s.daemon.Split(tpl.String(), args.MatrixIDs)
	if err != nil {
		return nil, MatricesOutput{}, daemonError("split_grid", err)
	}
	s.logger.Info("mcp: grid split", "template", tpl.String(), "matrix_ids", args.MatrixIDs)
	return nil, matricesOutput(data), nil
}

func (s *Server) handleGetCells(_ context.Context, _ *mcpsdk.CallToolRequest, args GetCellsInput) (*mcpsdk.CallToolResult, GetCellsOutput, error) {
	if args.Gap < 0 {
		return nil, GetCellsOutput{}, fmt.Errorf("gap must be >= 0, got %d", args.Gap)
	}
	data, err := s.daemon.GetCells(ipc.CellsPayload{
		MatrixID: args.MatrixID,
		Gap:      args.Gap,
		Fixing:   args.Fixing,
	})
	if err != nil {
		return nil, GetCellsOutput{}, daemonError("get_cells", err)
	}
	return nil, GetCellsOutput{Cells: data.Cells}, nil
}

func (s *Server) handleStartPoll(_ context.Context, _ *mcpsdk.CallToolRequest, args StartPollInput) (*mcpsdk.CallToolResult, PollOutput, error) {
	if args.IntervalMS < 0 {
		return nil, PollOutput{}, fmt.Errorf("interval_ms must be >= 0, got %d", args.IntervalMS)
	}
	st, err := s.daemon.StartPoll(args.DataIDs, time.Duration(args.IntervalMS)*time.Millisecond)
	if err != nil {
		return nil, PollOutput{}, daemonError("start_poll", err)
	}
	s.logger.Info("mcp: poll started", "data_ids", len(args.DataIDs), "state", st.State)
	return nil, PollOutput{Status: *st}, nil
}

func (s *Server) handleStopPoll(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, PollOutput, error) {
	st, err := s.daemon.StopPoll()
	if err != nil {
		return nil, PollOutput{}, daemonError("stop_poll", err)
	}
	return nil, PollOutput{Status: *st}, nil
}

func (s *Server) handleOpenWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args OpenWindowsInput) (*mcpsdk.CallToolResult, OpenWindowsOutput, error) {
	res, err := s.daemon.OpenWindows(args.MatrixIDs)
	if err != nil {
		return nil, OpenWindowsOutput{}, daemonError("open_windows", err)
	}
	opened := res.Opened
	if opened == nil {
		opened = []string{}
	}
	s.logger.Info("mcp: windows opened", "opened", len(opened), "failed", len(res.Failed))
	return nil, OpenWindowsOutput{Opened: opened, Failed: res.Failed}, nil
}

func (s *Server) handleCloseWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args CloseWindowInput) (*mcpsdk.CallToolResult, ClosedOutput, error) {
	if args.MatrixID == "" {
		return nil, ClosedOutput{}, fmt.Errorf("matrix_id is required")
	}
	if err := s.daemon.CloseWindow(args.MatrixID); err != nil {
		return nil, ClosedOutput{}, daemonError("close_window", err)
	}
	return nil, ClosedOutput{Closed: true, MatrixID: args.MatrixID}, nil
}

func (s *Server) handleCloseAll(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ClosedOutput, error) {
	if err := s.daemon.CloseAll(); err != nil {
		return nil, ClosedOutput{}, daemonError("close_all_windows", err)
	}
	return nil, ClosedOutput{Closed: true}, nil
}

func (s *Server) handleContentStyle(_ context.Context, _ *mcpsdk.CallToolRequest, args ContentStyleInput) (*mcpsdk.CallToolResult, ContentStyleOutput, error) {
	if args.Width < 0 || args.Height < 0 {
		return nil, ContentStyleOutput{}, fmt.Errorf("width and height must be >= 0")
	}
	style, err := s.daemon.ContentStyle(args.Width, args.Height)
	if err != nil {
		return nil, ContentStyleOutput{}, daemonError("content_style", err)
	}
	return nil, ContentStyleOutput{Style: *style, Fits: !style.IsZero()}, nil
}

func (s *Server) handleLoadStore(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, StoreOutput, error) {
	data, err := s.daemon.LoadStore()
	if err != nil {
		return nil, StoreOutput{}, daemonError("load_store", err)
	}
	cells := data.Cells
	if cells == nil {
		cells = map[string]matrix.Cell{}
	}
	return nil, StoreOutput{Key: data.Key, Cells: cells}, nil
}

func (s *Server) handleClearStore(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ClearStoreOutput, error) {
	if err := s.daemon.ClearStore(); err != nil {
		return nil, ClearStoreOutput{}, daemonError("clear_store", err)
	}
	s.logger.Info("mcp: store cleared")
	return nil, ClearStoreOutput{Cleared: true}, nil
}

func matricesOutput(data *ipc.MatricesData) MatricesOutput {
	ms := data.Matrices
	if ms == nil {
		ms = []matrix.Matrix{}
	}
	return MatricesOutput{Matrices: ms, Generation: data.Generation}
}

func daemonError(tool string, err error) error {
	return fmt.Errorf("%s: %w", tool, err)
}
