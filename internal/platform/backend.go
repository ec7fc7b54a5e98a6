package platform

import "github.com/1broseidon/tether/internal/geom"

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Display describes a physical display and its usable work area.
type Display struct {
	ID      int       `json:"id"`
	Name    string    `json:"name"`
	Bounds  geom.Rect `json:"bounds"`
	Usable  geom.Rect `json:"usable"`
	Primary bool      `json:"primary"`
}

// Window is a live handle onto a host window. Implementations must tolerate
// the underlying window disappearing at any time: Bounds then reports false,
// IsAlive reports false and mutations return an error.
type Window interface {
	ID() WindowID
	Bounds() (geom.Rect, bool)
	SetBounds(bounds geom.Rect) error
	// SetPosition moves the window without resizing it.
	SetPosition(x, y int) error
	IsVisible() bool
	IsAlive() bool
	// Raise brings the window to the front of the stacking order.
	Raise() error
}

// DisplaySource enumerates the displays currently attached to the host.
type DisplaySource interface {
	Displays() ([]Display, error)
}

// WindowMatch selects a host window by WM_CLASS or title substring.
type WindowMatch struct {
	Class string `json:"class,omitempty" yaml:"class,omitempty"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}

// IsZero reports whether the match has no criteria.
func (m WindowMatch) IsZero() bool {
	return m.Class == "" && m.Title == ""
}

// Backend abstracts the window-system operations the daemon needs.
type Backend interface {
	DisplaySource
	FindWindow(match WindowMatch) (Window, bool)
	// Watch calls fn whenever the window is moved, resized, mapped,
	// unmapped or destroyed.
	Watch(win Window, fn func()) error
}
