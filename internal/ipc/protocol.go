package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/screenwall/internal/layout"
	"github.com/1broseidon/screenwall/internal/matrix"
	"github.com/1broseidon/screenwall/internal/schedule"
	"github.com/1broseidon/screenwall/internal/tiling"
	"github.com/1broseidon/screenwall/internal/window"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandGetStatus    CommandType = "GET_STATUS"
	CommandGetMatrices  CommandType = "GET_MATRICES"
	CommandRebuild      CommandType = "REBUILD"
	CommandSplit        CommandType = "SPLIT"
	CommandGetCells     CommandType = "GET_CELLS"
	CommandStartPoll    CommandType = "START_POLL"
	CommandStopPoll     CommandType = "STOP_POLL"
	CommandOpenWindows  CommandType = "OPEN_WINDOWS"
	CommandCloseWindow  CommandType = "CLOSE_WINDOW"
	CommandCloseAll     CommandType = "CLOSE_ALL"
	CommandContentStyle CommandType = "CONTENT_STYLE"
	CommandLoadStore    CommandType = "LOAD_STORE"
	CommandClearStore   CommandType = "CLEAR_STORE"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	InstanceID     string          `json:"instance_id"`
	UptimeSeconds  int64           `json:"uptime_seconds"`
	DaemonRunning  bool            `json:"daemon_running"`
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

// MatricesData represents the data returned by GET_MATRICES and REBUILD
type MatricesData struct {
	Matrices   []matrix.Matrix `json:"matrices"`
	Generation uint64          `json:"generation"`
}

// SplitPayload represents the payload for SPLIT. An empty MatrixIDs list
// targets every matrix.
type SplitPayload struct {
	Template  string   `json:"template"`
	MatrixIDs []string `json:"matrix_ids,omitempty"`
}

// CellsPayload represents the payload for GET_CELLS. An empty MatrixID
// returns the cells of every matrix.
type CellsPayload struct {
	MatrixID string `json:"matrix_id,omitempty"`
	Gap      int    `json:"gap,omitempty"`
	Fixing   bool   `json:"fixing,omitempty"`
}

// CellsData represents the data returned by GET_CELLS
type CellsData struct {
	Cells []tiling.CellRect `json:"cells"`
}

// StartPollPayload represents the payload for START_POLL
type StartPollPayload struct {
	DataIDs    []string `json:"data_ids"`
	IntervalMS int64    `json:"interval_ms,omitempty"`
}

// OpenWindowsPayload represents the payload for OPEN_WINDOWS
type OpenWindowsPayload struct {
	MatrixIDs []string `json:"matrix_ids,omitempty"`
}

// CloseWindowPayload represents the payload for CLOSE_WINDOW
type CloseWindowPayload struct {
	MatrixID string `json:"matrix_id"`
}

// ContentStylePayload is the container size the canvas must fit in.
type ContentStylePayload struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// StoreData represents the data returned by LOAD_STORE
type StoreData struct {
	Key   string                 `json:"key"`
	Cells map[string]matrix.Cell `json:"cells"`
}

type (
	// PollData is returned by START_POLL and STOP_POLL.
	PollData = schedule.Status
	// OpenData is returned by OPEN_WINDOWS.
	OpenData = window.OpenResult
	// StyleData is returned by CONTENT_STYLE.
	StyleData = layout.Style
)

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
