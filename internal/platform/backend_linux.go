//go:build linux

package platform

import (
	"fmt"
	"sort"
	"sync"

	"github.com/1broseidon/tether/internal/geom"
	"github.com/1broseidon/tether/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// LinuxBackend wraps an X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection

	mu      sync.Mutex
	watched map[xproto.Window]struct{}
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn, watched: make(map[xproto.Window]struct{})}
}

// NewLinuxBackendFromDisplay opens a fresh X11 connection to display.
func NewLinuxBackendFromDisplay(display string) (*LinuxBackend, error) {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return NewLinuxBackend(conn), nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// StopEventLoop makes a running EventLoop return.
func (b *LinuxBackend) StopEventLoop() {
	if b != nil && b.conn != nil {
		b.conn.Quit()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// Displays returns all active displays with their usable areas.
func (b *LinuxBackend) Displays() ([]Display, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		usable := conn.UsableArea(m)
		displays = append(displays, Display{
			ID:      m.ID,
			Name:    m.Name,
			Bounds:  geom.Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height},
			Usable:  geom.Rect{X: usable.X, Y: usable.Y, Width: usable.Width, Height: usable.Height},
			Primary: m.Primary,
		})
	}

	sort.Slice(displays, func(i, j int) bool {
		return displays[i].ID < displays[j].ID
	})

	return displays, nil
}

// FindWindow resolves a window match to a live handle.
func (b *LinuxBackend) FindWindow(match WindowMatch) (Window, bool) {
	conn, err := b.connection()
	if err != nil || match.IsZero() {
		return nil, false
	}
	id, err := conn.FindWindow(match.Class, match.Title)
	if err != nil {
		return nil, false
	}
	return &X11Window{conn: conn, id: id}, true
}

// Watch subscribes fn to structure changes of win. Repeated calls for the
// same window are ignored.
func (b *LinuxBackend) Watch(win Window, fn func()) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	if win == nil {
		return fmt.Errorf("watch: nil window")
	}
	id := xproto.Window(win.ID())

	b.mu.Lock()
	if _, ok := b.watched[id]; ok {
		b.mu.Unlock()
		return nil
	}
	b.watched[id] = struct{}{}
	b.mu.Unlock()

	if err := xwindow.New(conn.XUtil, id).Listen(xproto.EventMaskStructureNotify); err != nil {
		b.forget(id)
		return fmt.Errorf("failed to listen on window %d: %w", id, err)
	}

	xevent.ConfigureNotifyFun(func(_ *xgbutil.XUtil, _ xevent.ConfigureNotifyEvent) {
		fn()
	}).Connect(conn.XUtil, id)
	xevent.MapNotifyFun(func(_ *xgbutil.XUtil, _ xevent.MapNotifyEvent) {
		fn()
	}).Connect(conn.XUtil, id)
	xevent.UnmapNotifyFun(func(_ *xgbutil.XUtil, _ xevent.UnmapNotifyEvent) {
		fn()
	}).Connect(conn.XUtil, id)
	xevent.DestroyNotifyFun(func(xu *xgbutil.XUtil, _ xevent.DestroyNotifyEvent) {
		xevent.Detach(xu, id)
		b.forget(id)
		fn()
	}).Connect(conn.XUtil, id)

	return nil
}

func (b *LinuxBackend) forget(id xproto.Window) {
	b.mu.Lock()
	delete(b.watched, id)
	b.mu.Unlock()
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

// X11Window adapts an X11 window id to the Window interface.
type X11Window struct {
	conn *x11.Connection
	id   xproto.Window
}

var _ Window = (*X11Window)(nil)

func (w *X11Window) ID() WindowID { return WindowID(w.id) }

func (w *X11Window) Bounds() (geom.Rect, bool) {
	area, err := w.conn.WindowGeometry(w.id)
	if err != nil {
		return geom.Rect{}, false
	}
	return geom.Rect{X: area.X, Y: area.Y, Width: area.Width, Height: area.Height}, true
}

func (w *X11Window) SetBounds(bounds geom.Rect) error {
	if !w.IsAlive() {
		return fmt.Errorf("window %d is gone", w.id)
	}
	return w.conn.MoveResizeWindow(w.id, bounds.X, bounds.Y, bounds.Width, bounds.Height)
}

func (w *X11Window) SetPosition(x, y int) error {
	if !w.IsAlive() {
		return fmt.Errorf("window %d is gone", w.id)
	}
	return w.conn.MoveWindow(w.id, x, y)
}

func (w *X11Window) IsVisible() bool { return w.conn.WindowViewable(w.id) }

func (w *X11Window) IsAlive() bool { return w.conn.WindowExists(w.id) }

func (w *X11Window) Raise() error {
	if !w.IsAlive() {
		return fmt.Errorf("window %d is gone", w.id)
	}
	return w.conn.RaiseWindow(w.id)
}
