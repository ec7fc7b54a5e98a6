package display

import (
	"errors"
	"testing"

	"github.com/1broseidon/tether/internal/geom"
	"github.com/1broseidon/tether/internal/platform"
)

type staticSource struct {
	displays []platform.Display
	err      error
}

func (s staticSource) Displays() ([]platform.Display, error) { return s.displays, s.err }

type fakeWindow struct {
	bounds geom.Rect
	alive  bool
}

func (f *fakeWindow) ID() platform.WindowID       { return 1 }
func (f *fakeWindow) Bounds() (geom.Rect, bool)   { return f.bounds, f.alive }
func (f *fakeWindow) SetBounds(b geom.Rect) error { f.bounds = b; return nil }
func (f *fakeWindow) SetPosition(x, y int) error  { f.bounds.X, f.bounds.Y = x, y; return nil }
func (f *fakeWindow) IsVisible() bool             { return f.alive }
func (f *fakeWindow) IsAlive() bool               { return f.alive }
func (f *fakeWindow) Raise() error                { return nil }

func dualHead() staticSource {
	return staticSource{displays: []platform.Display{
		{
			ID:     0,
			Name:   "DP-1",
			Bounds: geom.Rect{X: 0, Y: 0, Width: 1920, Height: 1080},
			Usable: geom.Rect{X: 0, Y: 0, Width: 1920, Height: 1040},
		},
		{
			ID:      1,
			Name:    "HDMI-1",
			Bounds:  geom.Rect{X: 1920, Y: 0, Width: 2560, Height: 1440},
			Usable:  geom.Rect{X: 1920, Y: 32, Width: 2560, Height: 1408},
			Primary: true,
		},
	}}
}

func TestDisplayFor_UsesWindowCenter(t *testing.T) {
	r := NewResolver(dualHead(), nil)

	win := &fakeWindow{bounds: geom.Rect{X: 1800, Y: 100, Width: 400, Height: 60}, alive: true}
	// Center x = 2000, on the second display.
	if got := r.DisplayFor(win); got.ID != 1 {
		t.Fatalf("expected display 1, got %d", got.ID)
	}

	win.bounds.X = 100
	if got := r.DisplayFor(win); got.ID != 0 {
		t.Fatalf("expected display 0, got %d", got.ID)
	}
}

func TestDisplayFor_DeadWindowFallsBackToPrimary(t *testing.T) {
	r := NewResolver(dualHead(), nil)

	if got := r.DisplayFor(nil); got.ID != 1 {
		t.Fatalf("nil window: expected primary display 1, got %d", got.ID)
	}
	dead := &fakeWindow{bounds: geom.Rect{X: 10, Y: 10, Width: 10, Height: 10}}
	if got := r.DisplayFor(dead); got.ID != 1 {
		t.Fatalf("dead window: expected primary display 1, got %d", got.ID)
	}
}

func TestDisplayAt_OffscreenPointPicksNearest(t *testing.T) {
	r := NewResolver(dualHead(), nil)
	if got := r.DisplayAt(-500, 500); got.ID != 0 {
		t.Fatalf("expected left display, got %d", got.ID)
	}
	if got := r.DisplayAt(9000, 2000); got.ID != 1 {
		t.Fatalf("expected right display, got %d", got.ID)
	}
}

func TestDisplayByID_FallsBackToPrimary(t *testing.T) {
	r := NewResolver(dualHead(), nil)
	if got := r.DisplayByID(0); got.Name != "DP-1" {
		t.Fatalf("expected DP-1, got %q", got.Name)
	}
	if got := r.DisplayByID(42); got.ID != 1 {
		t.Fatalf("expected primary for unknown id, got %d", got.ID)
	}
}

func TestResolver_EnumerationErrorYieldsEmptyArea(t *testing.T) {
	r := NewResolver(staticSource{err: errors.New("randr unavailable")}, nil)
	if got := r.Primary(); !got.Usable.Empty() {
		t.Fatalf("expected empty usable area, got %+v", got.Usable)
	}
}
