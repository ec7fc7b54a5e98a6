package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/tether/internal/registry"
)

func (s *Server) handleReflow(_ context.Context, _ *mcpsdk.CallToolRequest, _ ReflowInput) (*mcpsdk.CallToolResult, ReflowOutput, error) {
	if err := s.daemon.Reflow(); err != nil {
		return nil, ReflowOutput{}, fmt.Errorf("reflow: %w", err)
	}
	s.logger.Debug("mcp reflow requested")
	return nil, ReflowOutput{Requested: true}, nil
}

func (s *Server) handleAnimateWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args AnimateWindowInput) (*mcpsdk.CallToolResult, AnimateWindowOutput, error) {
	role, err := registry.ParseRole(args.Role)
	if err != nil {
		return nil, AnimateWindowOutput{}, err
	}
	started, err := s.daemon.Animate(string(role), args.X, args.Y)
	if err != nil {
		return nil, AnimateWindowOutput{}, fmt.Errorf("animate %s: %w", role, err)
	}
	s.logger.Debug("mcp animate requested", "role", role, "x", args.X, "y", args.Y, "started", started)
	return nil, AnimateWindowOutput{Role: string(role), Started: started}, nil
}

func (s *Server) handleGetWindowBounds(_ context.Context, _ *mcpsdk.CallToolRequest, args RoleInput) (*mcpsdk.CallToolResult, WindowBoundsOutput, error) {
	role, err := registry.ParseRole(args.Role)
	if err != nil {
		return nil, WindowBoundsOutput{}, err
	}
	data, err := s.daemon.GetBounds(string(role))
	if err != nil {
		return nil, WindowBoundsOutput{}, fmt.Errorf("bounds %s: %w", role, err)
	}
	return nil, WindowBoundsOutput{Role: string(role), Found: data.Found, Bounds: data.Bounds}, nil
}

func (s *Server) handleIsWindowVisible(_ context.Context, _ *mcpsdk.CallToolRequest, args RoleInput) (*mcpsdk.CallToolResult, WindowVisibleOutput, error) {
	role, err := registry.ParseRole(args.Role)
	if err != nil {
		return nil, WindowVisibleOutput{}, err
	}
	visible, err := s.daemon.IsVisible(string(role))
	if err != nil {
		return nil, WindowVisibleOutput{}, fmt.Errorf("visibility %s: %w", role, err)
	}
	return nil, WindowVisibleOutput{Role: string(role), Visible: visible}, nil
}

func (s *Server) handleSetSettingsLock(_ context.Context, _ *mcpsdk.CallToolRequest, args SetSettingsLockInput) (*mcpsdk.CallToolResult, SetSettingsLockOutput, error) {
	if err := s.daemon.SetLock(args.Locked); err != nil {
		return nil, SetSettingsLockOutput{}, fmt.Errorf("set lock: %w", err)
	}
	s.logger.Debug("mcp settings lock changed", "locked", args.Locked)
	return nil, SetSettingsLockOutput{Locked: args.Locked}, nil
}

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, GetStatusOutput, error) {
	status, err := s.daemon.GetStatus()
	if err != nil {
		return nil, GetStatusOutput{}, fmt.Errorf("status: %w", err)
	}
	return nil, GetStatusOutput{
		Passes:         status.Passes,
		Strategy:       status.Strategy.Name,
		SettingsLocked: status.SettingsLocked,
		Roles:          roleNames(status.Roles),
		Visible:        roleNames(status.Visible),
		Animating:      roleNames(status.Animating),
		UptimeSeconds:  status.UptimeSeconds,
	}, nil
}

func roleNames(roles []registry.Role) []string {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, string(r))
	}
	return names
}
