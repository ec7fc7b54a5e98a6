package mcp

import "github.com/1broseidon/tether/internal/geom"

// ReflowInput is the input for the reflow tool.
type ReflowInput struct{}

// ReflowOutput is the output for the reflow tool.
type ReflowOutput struct {
	Requested bool `json:"requested"`
}

// AnimateWindowInput is the input for the animate_window tool.
type AnimateWindowInput struct {
	Role string  `json:"role" jsonschema:"required,Window role: anchor, chat, transcript or settings"`
	X    float64 `json:"x" jsonschema:"required,Target X coordinate in global screen pixels"`
	Y    float64 `json:"y" jsonschema:"required,Target Y coordinate in global screen pixels"`
}

// AnimateWindowOutput is the output for the animate_window tool.
type AnimateWindowOutput struct {
	Role    string `json:"role"`
	Started bool   `json:"started"`
}

// RoleInput is the input for tools that address a single window.
type RoleInput struct {
	Role string `json:"role" jsonschema:"required,Window role: anchor, chat, transcript or settings"`
}

// WindowBoundsOutput is the output for the get_window_bounds tool.
type WindowBoundsOutput struct {
	Role   string    `json:"role"`
	Found  bool      `json:"found"`
	Bounds geom.Rect `json:"bounds"`
}

// WindowVisibleOutput is the output for the is_window_visible tool.
type WindowVisibleOutput struct {
	Role    string `json:"role"`
	Visible bool   `json:"visible"`
}

// SetSettingsLockInput is the input for the set_settings_lock tool.
type SetSettingsLockInput struct {
	Locked bool `json:"locked" jsonschema:"When true the settings window keeps its position while on the anchor's display"`
}

// SetSettingsLockOutput is the output for the set_settings_lock tool.
type SetSettingsLockOutput struct {
	Locked bool `json:"locked"`
}

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// GetStatusOutput is the output for the get_status tool.
type GetStatusOutput struct {
	Passes         uint64   `json:"passes"`
	Strategy       string   `json:"strategy"`
	SettingsLocked bool     `json:"settings_locked"`
	Roles          []string `json:"roles"`
	Visible        []string `json:"visible"`
	Animating      []string `json:"animating"`
	UptimeSeconds  int64    `json:"uptime_seconds"`
}
