// Package mcp exposes the screenwall daemon as MCP tools over stdio.
package mcp

import (
	"context"
	"log/slog"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/screenwall/internal/ipc"
)

const (
	ServerName    = "screenwall"
	ServerVersion = "0.1.0"
)

// Daemon is the subset of the IPC client the tools call.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	GetMatrices() (*ipc.MatricesData, error)
	Rebuild() (*ipc.MatricesData, error)
	Split(template string, matrixIDs []string) (*ipc.MatricesData, error)
	GetCells(req ipc.CellsPayload) (*ipc.CellsData, error)
	StartPoll(dataIDs []string, interval time.Duration) (*ipc.PollData, error)
	StopPoll() (*ipc.PollData, error)
	OpenWindows(matrixIDs []string) (*ipc.OpenData, error)
	CloseWindow(matrixID string) error
	CloseAll() error
	ContentStyle(width, height float64) (*ipc.StyleData, error)
	LoadStore() (*ipc.StoreData, error)
	ClearStore() error
}

var _ Daemon = (*ipc.Client)(nil)

// Server is the MCP server in front of a running daemon.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
	logger    *slog.Logger
}

// NewServer creates an MCP server that forwards every tool call to daemon.
func NewServer(daemon Daemon, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{daemon: daemon, logger: logger}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Get the screenwall daemon status: matrix and cell counts, poll state, opened windows and storage backend.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_matrices",
		Description: "List one matrix per physical screen with its geometry, usable area, offsets from the top-left-most screen and grid cells.",
	}, s.handleListMatrices)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "rebuild_matrix",
		Description: "Re-enumerate the screens and rebuild the matrix mapping. Cell assignments are reset. The previous mapping is kept if enumeration fails.",
	}, s.handleRebuildMatrix)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "split_grid",
		Description: "Replace the grid of the given matrices (default: all) with a ROWSxCOLS template. New cells start unassigned and a running poll restarts from the first batch.",
	}, s.handleSplitGrid)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_cells",
		Description: "Return the pixel rectangle of every cell, optionally for one matrix, with an optional gap.",
	}, s.handleGetCells)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "start_poll",
		Description: "Distribute data ids over the cells. If they all fit they are assigned once; otherwise batches rotate every interval, wrapping at the end of the list.",
	}, s.handleStartPoll)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "stop_poll",
		Description: "Stop the data id rotation. Current assignments are kept.",
	}, s.handleStopPoll)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "open_windows",
		Description: "Open one fullscreen window per matrix (default: all). A failure on one screen does not stop the others.",
	}, s.handleOpenWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_window",
		Description: "Close the window opened for one matrix. Unknown ids are ignored.",
	}, s.handleCloseWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_all_windows",
		Description: "Close every opened window and stop the lifecycle poll.",
	}, s.handleCloseAll)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "content_style",
		Description: "Compute the CSS scale transform that fits the combined screen canvas inside a container of the given size.",
	}, s.handleContentStyle)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "load_store",
		Description: "Read the cell mapping persisted by the daemon, keyed by full cell id.",
	}, s.handleLoadStore)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "clear_store",
		Description: "Delete the persisted cell mapping.",
	}, s.handleClearStore)
}
