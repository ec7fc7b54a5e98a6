package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/tether/internal/ipc"
	"github.com/1broseidon/tether/internal/logging"
)

const (
	ServerName    = "tether"
	ServerVersion = "0.1.0"
)

// Daemon is the subset of the IPC client the tools forward to.
type Daemon interface {
	Reflow() error
	Animate(role string, x, y float64) (bool, error)
	GetBounds(role string) (*ipc.BoundsData, error)
	IsVisible(role string) (bool, error)
	SetLock(locked bool) error
	GetStatus() (*ipc.StatusData, error)
}

var _ Daemon = (*ipc.Client)(nil)

// Server exposes the running cluster to MCP clients over stdio.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
	logger    *slog.Logger
}

// NewServer creates an MCP server that talks to the daemon through d.
func NewServer(d Daemon, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Server{daemon: d, logger: logger}

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
		Name:        "reflow",
		Description: "Request a layout pass. Satellites are repositioned around the anchor and the settings window is placed unless it is locked.",
	}, s.handleReflow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "animate_window",
		Description: "Smoothly move a window to a target position. A new animation on the same window replaces the running one. A layout pass follows once the animation completes.",
	}, s.handleAnimateWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_window_bounds",
		Description: "Return the current bounds of a window in global screen coordinates. found is false when the window is not registered or has been destroyed.",
	}, s.handleGetWindowBounds)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "is_window_visible",
		Description: "Report whether a window is registered, alive and shown on screen.",
	}, s.handleIsWindowVisible)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_settings_lock",
		Description: "Lock or unlock the settings window. Unlocking triggers a layout pass.",
	}, s.handleSetSettingsLock)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Return the daemon status: layout pass count, last strategy, lock state, registered, visible and animating windows.",
	}, s.handleGetStatus)
}
