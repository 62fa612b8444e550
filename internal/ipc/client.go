package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/screenwall/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates a client for an explicit socket path
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// WithTimeout returns a copy of the client using a different request timeout.
// Opening windows waits for every launched window, so callers raise it there.
func (c *Client) WithTimeout(d time.Duration) *Client {
	cp := *c
	cp.timeout = d
	return &cp
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// call sends command with an optional payload and decodes the response data into out.
func (c *Client) call(command CommandType, payload, out interface{}) error {
	req := &Request{Command: command}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", command, err)
		}
		req.Payload = data
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil || len(resp.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", command, err)
	}
	return nil
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetMatrices retrieves the current matrix mapping
func (c *Client) GetMatrices() (*MatricesData, error) {
	var data MatricesData
	if err := c.call(CommandGetMatrices, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Rebuild re-enumerates screens and rebuilds the matrix mapping
func (c *Client) Rebuild() (*MatricesData, error) {
	var data MatricesData
	if err := c.call(CommandRebuild, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Split replaces the grid of the given matrices (all when empty)
func (c *Client) Split(template string, matrixIDs []string) (*MatricesData, error) {
	var data MatricesData
	err := c.call(CommandSplit, SplitPayload{Template: template, MatrixIDs: matrixIDs}, &data)
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// GetCells retrieves cell rectangles
func (c *Client) GetCells(req CellsPayload) (*CellsData, error) {
	var data CellsData
	if err := c.call(CommandGetCells, req, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// StartPoll starts assigning data ids to the cells
func (c *Client) StartPoll(dataIDs []string, interval time.Duration) (*PollData, error) {
	var data PollData
	payload := StartPollPayload{DataIDs: dataIDs, IntervalMS: interval.Milliseconds()}
	if err := c.call(CommandStartPoll, payload, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// StopPoll stops the assignment timer
func (c *Client) StopPoll() (*PollData, error) {
	var data PollData
	if err := c.call(CommandStopPoll, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// OpenWindows opens a window per matrix (all when empty)
func (c *Client) OpenWindows(matrixIDs []string) (*OpenData, error) {
	var data OpenData
	if err := c.call(CommandOpenWindows, OpenWindowsPayload{MatrixIDs: matrixIDs}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// CloseWindow closes the window of one matrix
func (c *Client) CloseWindow(matrixID string) error {
	return c.call(CommandCloseWindow, CloseWindowPayload{MatrixID: matrixID}, nil)
}

// CloseAll closes every opened window
func (c *Client) CloseAll() error {
	return c.call(CommandCloseAll, nil, nil)
}

// ContentStyle computes the scale style for a container size
func (c *Client) ContentStyle(width, height float64) (*StyleData, error) {
	var data StyleData
	if err := c.call(CommandContentStyle, ContentStylePayload{Width: width, Height: height}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// LoadStore reads the persisted cell snapshot
func (c *Client) LoadStore() (*StoreData, error) {
	var data StoreData
	if err := c.call(CommandLoadStore, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// ClearStore deletes the persisted cell snapshot
func (c *Client) ClearStore() error {
	return c.call(CommandClearStore, nil, nil)
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
