package mcp

import (
	"github.com/1broseidon/screenwall/internal/layout"
	"github.com/1broseidon/screenwall/internal/matrix"
	"github.com/1broseidon/screenwall/internal/schedule"
	"github.com/1broseidon/screenwall/internal/tiling"
	"github.com/1broseidon/screenwall/internal/window"
)

// EmptyInput is the input for tools without arguments.
type EmptyInput struct{}

// StatusOutput is the output for the get_status tool.
type StatusOutput struct {
	InstanceID     string          `json:"instance_id"`
	UptimeSeconds  int64           `json:"uptime_seconds"`
	Matrices       int             `json:"matrices"`
	Cells          int             `json:"cells"`
	Generation     uint64          `json:"generation"`
	Poll           schedule.Status `json:"poll"`
	Windows        []string        `json:"windows"`
	WindowPolling  bool            `json:"window_polling"`
	CloseSticky    bool            `json:"close_sticky"`
	StorageBackend string          `json:"storage_backend"`
	StorageKey     string          `json:"storage_key"`
}

// MatricesOutput is the output for list_matrices, rebuild_matrix and split_grid.
type MatricesOutput struct {
	Matrices   []matrix.Matrix `json:"matrices"`
	Generation uint64          `json:"generation"`
}

// SplitGridInput is the input for the split_grid tool.
type SplitGridInput struct {
	Template  string   `json:"template" jsonschema:"required,Grid template as ROWSxCOLS (e.g. 2x2, 1x3)"`
	MatrixIDs []string `json:"matrix_ids,omitempty" jsonschema:"Matrix ids to split (default: every matrix)"`
}

// GetCellsInput is the input for the get_cells tool.
type GetCellsInput struct {
	MatrixID string `json:"matrix_id,omitempty" jsonschema:"Only return cells of this matrix (default: every matrix)"`
	Gap      int    `json:"gap,omitempty" jsonschema:"Gap in pixels between cells (default: 0)"`
	Fixing   bool   `json:"fixing,omitempty" jsonschema:"When true, rectangles are relative to the top-left-most screen instead of the desktop origin"`
}

// GetCellsOutput is the output for the get_cells tool.
type GetCellsOutput struct {
	Cells []tiling.CellRect `json:"cells"`
}

// StartPollInput is the input for the start_poll tool.
type StartPollInput struct {
	DataIDs    []string `json:"data_ids" jsonschema:"required,Data ids to distribute over the cells in order"`
	IntervalMS int64    `json:"interval_ms,omitempty" jsonschema:"Rotation interval in milliseconds (default: configured poll_interval)"`
}

// PollOutput is the output for start_poll and stop_poll.
type PollOutput struct {
	Status schedule.Status `json:"status"`
}

// OpenWindowsInput is the input for the open_windows tool.
type OpenWindowsInput struct {
	MatrixIDs []string `json:"matrix_ids,omitempty" jsonschema:"Matrix ids to open a window for (default: every matrix)"`
}

// OpenWindowsOutput is the output for the open_windows tool.
type OpenWindowsOutput struct {
	Opened []string             `json:"opened"`
	Failed []window.OpenFailure `json:"failed,omitempty"`
}

// CloseWindowInput is the input for the close_window tool.
type CloseWindowInput struct {
	MatrixID string `json:"matrix_id" jsonschema:"required,Matrix id whose window should be closed"`
}

// ClosedOutput is the output for close_window and close_all_windows.
type ClosedOutput struct {
	Closed   bool   `json:"closed"`
	MatrixID string `json:"matrix_id,omitempty"`
}

// ContentStyleInput is the input for the content_style tool.
type ContentStyleInput struct {
	Width  float64 `json:"width" jsonschema:"required,Container width in CSS pixels"`
	Height float64 `json:"height" jsonschema:"required,Container height in CSS pixels"`
}

// ContentStyleOutput is the output for the content_style tool.
type ContentStyleOutput struct {
	Style layout.Style `json:"style"`
	// Fits is false when no style could be computed for the container.
	Fits bool `json:"fits"`
}

// StoreOutput is the output for the load_store tool.
type StoreOutput struct {
	Key   string                 `json:"key"`
	Cells map[string]matrix.Cell `json:"cells"`
}

// ClearStoreOutput is the output for the clear_store tool.
type ClearStoreOutput struct {
	Key     string `json:"key,omitempty"`
	Cleared bool   `json:"cleared"`
}
