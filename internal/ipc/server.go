package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/screenwall/internal/matrix"
	"github.com/1broseidon/screenwall/internal/runtimepath"
)

// Service is the daemon state the IPC commands operate on.
type Service interface {
	Status() StatusData
	Matrices() MatricesData
	Rebuild(ctx context.Context) (MatricesData, error)
	Split(template matrix.Template, matrixIDs []string) MatricesData
	Cells(req CellsPayload) (CellsData, error)
	StartPoll(ctx context.Context, dataIDs []string, interval time.Duration) PollData
	StopPoll() PollData
	OpenWindows(ctx context.Context, matrixIDs []string) OpenData
	CloseWindow(matrixID string)
	CloseAll()
	ContentStyle(width, height float64) StyleData
	LoadStore(ctx context.Context) (StoreData, error)
	ClearStore(ctx context.Context) error
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	service      Service
	logger       *slog.Logger
	ctx          context.Context
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server on the default socket path
func NewServer(service Service, logger *slog.Logger) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	return NewServerAt(socketPath, service, logger), nil
}

// NewServerAt creates a new IPC server bound to socketPath
func NewServerAt(socketPath string, service Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		service:    service,
		logger:     logger,
	}
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string { return s.socketPath }

// Start begins listening for IPC connections. Long-running work started by
// a command (poll timers, window monitoring) is bound to ctx.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener
	s.ctx = ctx

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal IPC response", "error", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send IPC response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	s.logger.Debug("IPC command", "command", req.Command)

	switch req.Command {
	case CommandGetStatus:
		return ok(s.service.Status())
	case CommandGetMatrices:
		return ok(s.service.Matrices())
	case CommandRebuild:
		data, err := s.service.Rebuild(s.context())
		if err != nil {
			return NewErrorResponse(fmt.Sprintf("Failed to rebuild matrices: %v", err))
		}
		return ok(data)
	case CommandSplit:
		return s.handleSplit(req.Payload)
	case CommandGetCells:
		return s.handleGetCells(req.Payload)
	case CommandStartPoll:
		return s.handleStartPoll(req.Payload)
	case CommandStopPoll:
		return ok(s.service.StopPoll())
	case CommandOpenWindows:
		return s.handleOpenWindows(req.Payload)
	case CommandCloseWindow:
		return s.handleCloseWindow(req.Payload)
	case CommandCloseAll:
		s.service.CloseAll()
		return ok(nil)
	case CommandContentStyle:
		return s.handleContentStyle(req.Payload)
	case CommandLoadStore:
		data, err := s.service.LoadStore(s.context())
		if err != nil {
			return NewErrorResponse(fmt.Sprintf("Failed to load store: %v", err))
		}
		return ok(data)
	case CommandClearStore:
		if err := s.service.ClearStore(s.context()); err != nil {
			return NewErrorResponse(fmt.Sprintf("Failed to clear store: %v", err))
		}
		return ok(nil)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleSplit(payload json.RawMessage) *Response {
	var req SplitPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid split payload: %v", err))
	}
	tpl, err := matrix.ParseTemplate(req.Template)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid template: %v", err))
	}
	return ok(s.service.Split(tpl, req.MatrixIDs))
}

func (s *Server) handleGetCells(payload json.RawMessage) *Response {
	var req CellsPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid cells payload: %v", err))
		}
	}
	data, err := s.service.Cells(req)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get cells: %v", err))
	}
	return ok(data)
}

func (s *Server) handleStartPoll(payload json.RawMessage) *Response {
	var req StartPollPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid poll payload: %v", err))
	}
	if req.IntervalMS < 0 {
		return NewErrorResponse("interval_ms must be >= 0")
	}
	interval := time.Duration(req.IntervalMS) * time.Millisecond
	return ok(s.service.StartPoll(s.context(), req.DataIDs, interval))
}

func (s *Server) handleOpenWindows(payload json.RawMessage) *Response {
	var req OpenWindowsPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid open payload: %v", err))
		}
	}
	return ok(s.service.OpenWindows(s.context(), req.MatrixIDs))
}

func (s *Server) handleCloseWindow(payload json.RawMessage) *Response {
	var req CloseWindowPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid close payload: %v", err))
	}
	if req.MatrixID == "" {
		return NewErrorResponse("matrix_id is required")
	}
	s.service.CloseWindow(req.MatrixID)
	return ok(nil)
}

func (s *Server) handleContentStyle(payload json.RawMessage) *Response {
	var req ContentStylePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid style payload: %v", err))
	}
	return ok(s.service.ContentStyle(req.Width, req.Height))
}

func (s *Server) context() context.Context {
	if s.ctx == nil {
		return context.Background()
	}
	return s.ctx
}

func ok(data interface{}) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
