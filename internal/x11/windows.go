package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// MoveResizeWindow moves and resizes a window to the specified geometry
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	// Use EWMH MoveResize for better WM compatibility
	if err := ewmh.MoveresizeWindow(c.XUtil, windowID, x, y, width, height); err != nil {
		// Fallback to direct window manipulation
		xwindow.New(c.XUtil, windowID).MoveResize(x, y, width, height)
	}
	return nil
}

// MoveWindow moves a window without touching its size.
func (c *Connection) MoveWindow(windowID xproto.Window, x, y int) error {
	if err := ewmh.MoveWindow(c.XUtil, windowID, x, y); err != nil {
		xwindow.New(c.XUtil, windowID).Move(x, y)
	}
	return nil
}

// RaiseWindow puts the window on top of its siblings.
func (c *Connection) RaiseWindow(windowID xproto.Window) error {
	return xproto.ConfigureWindowChecked(
		c.XUtil.Conn(),
		windowID,
		xproto.ConfigWindowStackMode,
		[]uint32{xproto.StackModeAbove},
	).Check()
}

// WindowGeometry returns the window rectangle in root coordinates.
func (c *Connection) WindowGeometry(windowID xproto.Window) (Area, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return Area{}, err
	}

	translate, err := xproto.TranslateCoordinates(
		c.XUtil.Conn(),
		windowID,
		c.Root,
		0, 0,
	).Reply()
	if err != nil {
		return Area{}, err
	}

	return Area{
		X:      int(translate.DstX),
		Y:      int(translate.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, nil
}

// WindowExists reports whether the server still knows the window.
func (c *Connection) WindowExists(windowID xproto.Window) bool {
	_, err := xproto.GetWindowAttributes(c.XUtil.Conn(), windowID).Reply()
	return err == nil
}

// WindowViewable reports whether the window is mapped and not hidden.
func (c *Connection) WindowViewable(windowID xproto.Window) bool {
	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), windowID).Reply()
	if err != nil || attrs.MapState != xproto.MapStateViewable {
		return false
	}

	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return true
	}
	for _, state := range states {
		if state == "_NET_WM_STATE_HIDDEN" {
			return false
		}
	}
	return true
}

// FindWindow returns the first top-level window whose WM_CLASS or title
// contains the given substrings. Managed clients are searched before the
// root's direct children, which is where override-redirect overlays live.
func (c *Connection) FindWindow(class, title string) (xproto.Window, error) {
	if class == "" && title == "" {
		return 0, fmt.Errorf("empty window match")
	}

	var candidates []xproto.Window
	if clients, err := ewmh.ClientListGet(c.XUtil); err == nil {
		candidates = append(candidates, clients...)
	}
	if tree, err := xproto.QueryTree(c.XUtil.Conn(), c.Root).Reply(); err == nil {
		candidates = append(candidates, tree.Children...)
	}

	for _, win := range candidates {
		if class != "" && !containsSubstring(c.windowClass(win), class) {
			continue
		}
		if title != "" && !containsSubstring(c.windowTitle(win), title) {
			continue
		}
		return win, nil
	}
	return 0, fmt.Errorf("no window found matching class=%q title=%q", class, title)
}

func (c *Connection) windowClass(windowID xproto.Window) string {
	wmClass, err := icccm.WmClassGet(c.XUtil, windowID)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(wmClass.Instance + " " + wmClass.Class)
}

func (c *Connection) windowTitle(windowID xproto.Window) string {
	if title, err := ewmh.WmNameGet(c.XUtil, windowID); err == nil {
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}
	if title, err := icccm.WmNameGet(c.XUtil, windowID); err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}

// containsSubstring checks if s contains substr (case-sensitive).
func containsSubstring(s, substr string) bool {
	return len(substr) > 0 && len(s) >= len(substr) && strings.Contains(s, substr)
}
