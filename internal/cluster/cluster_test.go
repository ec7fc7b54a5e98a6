package cluster

import (
	"errors"
	"testing"
	"time"

	"github.com/1broseidon/tether/internal/config"
	"github.com/1broseidon/tether/internal/eventloop"
	"github.com/1broseidon/tether/internal/geom"
	"github.com/1broseidon/tether/internal/platform"
	"github.com/1broseidon/tether/internal/registry"
)

type window struct {
	id     platform.WindowID
	bounds geom.Rect
	alive  bool
}

func (w *window) ID() platform.WindowID { return w.id }

func (w *window) Bounds() (geom.Rect, bool) { return w.bounds, w.alive }

func (w *window) SetBounds(b geom.Rect) error {
	if !w.alive {
		return errors.New("gone")
	}
	w.bounds = b
	return nil
}

func (w *window) SetPosition(x, y int) error {
	return w.SetBounds(geom.Rect{X: x, Y: y, Width: w.bounds.Width, Height: w.bounds.Height})
}

func (w *window) IsVisible() bool { return w.alive }
func (w *window) IsAlive() bool   { return w.alive }
func (w *window) Raise() error    { return nil }

type displays []platform.Display

func (d displays) Displays() ([]platform.Display, error) { return d, nil }

var hd = displays{{
	ID:      0,
	Bounds:  geom.Rect{Width: 1920, Height: 1080},
	Usable:  geom.Rect{Width: 1920, Height: 1080},
	Primary: true,
}}

func newCluster(t *testing.T) (*Cluster, *eventloop.Manual, map[registry.Role]*window) {
	t.Helper()
	sched := eventloop.NewManual(time.Unix(0, 0))
	wins := map[registry.Role]*window{
		registry.RoleAnchor:     {id: 1, bounds: geom.Rect{X: 100, Y: 100, Width: 400, Height: 60}, alive: true},
		registry.RoleTranscript: {id: 2, bounds: geom.Rect{Width: 400, Height: 300}, alive: true},
		registry.RoleChat:       {id: 3, bounds: geom.Rect{Width: 600, Height: 300}, alive: true},
	}
	reg := registry.NewEmpty()
	for role, w := range wins {
		reg.Set(role, w)
	}
	return New(reg, hd, sched, config.DefaultConfig(), nil), sched, wins
}

func TestAnimateTo_SatellitesFollowAnchor(t *testing.T) {
	c, sched, wins := newCluster(t)

	if !c.AnimateTo(registry.RoleAnchor, 700, 200) {
		t.Fatalf("expected animation to start")
	}
	if st := c.Status(); len(st.Animating) != 1 || st.Animating[0] != registry.RoleAnchor {
		t.Fatalf("expected anchor animating, got %+v", st.Animating)
	}

	sched.Advance(time.Second)

	anchor := wins[registry.RoleAnchor].bounds
	if anchor.X != 700 || anchor.Y != 200 {
		t.Fatalf("expected anchor at (700,200), got %+v", anchor)
	}
	transcript := wins[registry.RoleTranscript].bounds
	chat := wins[registry.RoleChat].bounds
	if transcript.Y != 268 || chat.Y != 268 {
		t.Fatalf("expected satellites below anchor at y=268, got %d and %d", transcript.Y, chat.Y)
	}
	// Block of 1008px centred on x=900.
	if transcript.X != 396 || chat.X != 804 {
		t.Fatalf("expected satellites at x=396 and x=804, got %d and %d", transcript.X, chat.X)
	}
	if c.Engine().Passes() != 1 {
		t.Fatalf("expected exactly one reflow after the animation, got %d", c.Engine().Passes())
	}
}

func TestAnimateTo_UnknownRole(t *testing.T) {
	c, sched, _ := newCluster(t)
	if c.AnimateTo(registry.RoleSettings, 10, 10) {
		t.Fatalf("expected unbound role to be skipped")
	}
	if sched.PendingTimers() != 0 {
		t.Fatalf("expected no timers")
	}
}

func TestStatus(t *testing.T) {
	c, sched, wins := newCluster(t)
	wins[registry.RoleChat].alive = false

	c.Reflow()
	sched.RunPending()

	st := c.Status()
	if st.Passes != 1 || st.Strategy.Name != "below" {
		t.Fatalf("unexpected status %+v", st)
	}
	if len(st.Roles) != 3 {
		t.Fatalf("expected 3 registered roles, got %v", st.Roles)
	}
	if len(st.Visible) != 2 {
		t.Fatalf("expected dead chat window excluded from visible, got %v", st.Visible)
	}
}

func TestSettingsLockToggle(t *testing.T) {
	c, sched, _ := newCluster(t)

	if !c.ToggleSettingsLock() {
		t.Fatalf("expected lock to engage")
	}
	if sched.Pending() != 0 {
		t.Fatalf("locking must not reflow")
	}
	if c.ToggleSettingsLock() {
		t.Fatalf("expected lock to release")
	}
	if sched.Pending() != 1 {
		t.Fatalf("releasing the lock should schedule a reflow")
	}
}

func TestApply(t *testing.T) {
	c, sched, wins := newCluster(t)
	cfg := config.DefaultConfig()
	cfg.Layout.SatellitePadding = 20

	c.Apply(cfg)
	sched.RunPending()

	if got := wins[registry.RoleTranscript].bounds.Y; got != 180 {
		t.Fatalf("expected new padding applied (y=180), got %d", got)
	}
}
