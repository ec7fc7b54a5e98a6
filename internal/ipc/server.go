package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/tether/internal/cluster"
	"github.com/1broseidon/tether/internal/geom"
	"github.com/1broseidon/tether/internal/logging"
	"github.com/1broseidon/tether/internal/platform"
	"github.com/1broseidon/tether/internal/registry"
	"github.com/1broseidon/tether/internal/runtimepath"
)

// Controller is the part of the cluster the IPC surface drives.
type Controller interface {
	Reflow()
	AnimateTo(role registry.Role, x, y float64) bool
	IsVisible(role registry.Role) bool
	Bounds(role registry.Role) (geom.Rect, bool)
	SetSettingsLocked(locked bool)
	Status() cluster.Status
	Displays() []platform.Display
}

var _ Controller = (*cluster.Cluster)(nil)

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	ctrl         Controller
	reload       func() error
	logger       *slog.Logger
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server. reload is called for RELOAD and may
// be nil.
func NewServer(ctrl Controller, reload func() error, logger *slog.Logger) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	if logger == nil {
		logger = logging.Discard()
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		ctrl:       ctrl,
		reload:     reload,
		logger:     logger,
		startTime:  time.Now(),
	}, nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string { return s.socketPath }

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	go s.acceptLoop()

	return nil
}

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

// handleConnection serves one JSON request line and closes the connection.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

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
		s.logger.Error("failed to marshal response", "error", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	s.logger.Debug("IPC command", "command", req.Command)
	switch req.Command {
	case CommandReload:
		return s.handleReload()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandGetDisplays:
		return s.handleGetDisplays()
	case CommandReflow:
		s.ctrl.Reflow()
		return ok(nil)
	case CommandAnimate:
		return s.handleAnimate(req.Payload)
	case CommandGetBounds:
		return s.handleGetBounds(req.Payload)
	case CommandIsVisible:
		return s.handleIsVisible(req.Payload)
	case CommandSetLock:
		return s.handleSetLock(req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleReload() *Response {
	if s.reload == nil {
		return NewErrorResponse("reload is not supported")
	}
	if err := s.reload(); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}
	s.logger.Info("config reloaded via IPC")
	return ok(nil)
}

func (s *Server) handleGetStatus() *Response {
	return ok(StatusData{
		Status:        s.ctrl.Status(),
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		DaemonRunning: true,
	})
}

func (s *Server) handleGetDisplays() *Response {
	displays := s.ctrl.Displays()
	if displays == nil {
		displays = []platform.Display{}
	}
	return ok(DisplaysData{Displays: displays})
}

func (s *Server) handleAnimate(payload json.RawMessage) *Response {
	var req AnimatePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid animate payload: %v", err))
	}
	role, err := registry.ParseRole(req.Role)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return ok(AnimateData{Started: s.ctrl.AnimateTo(role, req.X, req.Y)})
}

func (s *Server) handleGetBounds(payload json.RawMessage) *Response {
	role, resp := parseRolePayload(payload)
	if resp != nil {
		return resp
	}
	bounds, found := s.ctrl.Bounds(role)
	return ok(BoundsData{Role: string(role), Found: found, Bounds: bounds})
}

func (s *Server) handleIsVisible(payload json.RawMessage) *Response {
	role, resp := parseRolePayload(payload)
	if resp != nil {
		return resp
	}
	return ok(VisibleData{Role: string(role), Visible: s.ctrl.IsVisible(role)})
}

func (s *Server) handleSetLock(payload json.RawMessage) *Response {
	var req SetLockPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid lock payload: %v", err))
	}
	s.ctrl.SetSettingsLocked(req.Locked)
	return ok(nil)
}

func parseRolePayload(payload json.RawMessage) (registry.Role, *Response) {
	var req RolePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return "", NewErrorResponse(fmt.Sprintf("Invalid role payload: %v", err))
	}
	role, err := registry.ParseRole(req.Role)
	if err != nil {
		return "", NewErrorResponse(err.Error())
	}
	return role, nil
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
