package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/tether/internal/cluster"
	"github.com/1broseidon/tether/internal/geom"
	"github.com/1broseidon/tether/internal/platform"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload      CommandType = "RELOAD"
	CommandGetStatus   CommandType = "GET_STATUS"
	CommandGetDisplays CommandType = "GET_DISPLAYS"
	CommandReflow      CommandType = "REFLOW"
	CommandAnimate     CommandType = "ANIMATE"
	CommandGetBounds   CommandType = "GET_BOUNDS"
	CommandIsVisible   CommandType = "IS_VISIBLE"
	CommandSetLock     CommandType = "SET_LOCK"
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
	cluster.Status
	UptimeSeconds int64 `json:"uptime_seconds"`
	DaemonRunning bool  `json:"daemon_running"`
}

// DisplaysData represents the data returned by GET_DISPLAYS
type DisplaysData struct {
	Displays []platform.Display `json:"displays"`
}

// AnimatePayload represents the payload for the ANIMATE command
type AnimatePayload struct {
	Role string  `json:"role"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type AnimateData struct {
	Started bool `json:"started"`
}

// RolePayload names the window for GET_BOUNDS and IS_VISIBLE.
type RolePayload struct {
	Role string `json:"role"`
}

type BoundsData struct {
	Role   string    `json:"role"`
	Found  bool      `json:"found"`
	Bounds geom.Rect `json:"bounds"`
}

type VisibleData struct {
	Role    string `json:"role"`
	Visible bool   `json:"visible"`
}

type SetLockPayload struct {
	Locked bool `json:"locked"`
}

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
