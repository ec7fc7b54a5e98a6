package daemon

import (
	"errors"
	"testing"

	"github.com/1broseidon/tether/internal/geom"
	"github.com/1broseidon/tether/internal/platform"
	"github.com/1broseidon/tether/internal/registry"
)

type hostWindow struct {
	id    platform.WindowID
	alive bool
}

func (w *hostWindow) ID() platform.WindowID      { return w.id }
func (w *hostWindow) Bounds() (geom.Rect, bool)  { return geom.Rect{Width: 10, Height: 10}, w.alive }
func (w *hostWindow) SetBounds(geom.Rect) error  { return nil }
func (w *hostWindow) SetPosition(x, y int) error { return nil }
func (w *hostWindow) IsVisible() bool            { return w.alive }
func (w *hostWindow) IsAlive() bool              { return w.alive }
func (w *hostWindow) Raise() error               { return nil }

type fakeHost struct {
	byClass  map[string]*hostWindow
	lookups  int
	watched  []platform.WindowID
	watchErr error
}

func (h *fakeHost) find(match platform.WindowMatch) (platform.Window, bool) {
	h.lookups++
	w, ok := h.byClass[match.Class]
	if !ok {
		return nil, false
	}
	return w, true
}

func (h *fakeHost) watch(win platform.Window, fn func()) error {
	h.watched = append(h.watched, win.ID())
	return h.watchErr
}

func rules(classes map[registry.Role]string) map[registry.Role]platform.WindowMatch {
	out := make(map[registry.Role]platform.WindowMatch)
	for role, class := range classes {
		out[role] = platform.WindowMatch{Class: class}
	}
	return out
}

func TestReconcile_BindsAndDropsWindows(t *testing.T) {
	host := &fakeHost{byClass: map[string]*hostWindow{
		"anchor": {id: 1, alive: true},
		"chat":   {id: 2, alive: true},
	}}
	reg := registry.NewEmpty()
	changes := 0
	r := NewReconciler(ReconcilerConfig{
		Rules: rules(map[registry.Role]string{
			registry.RoleAnchor:   "anchor",
			registry.RoleChat:     "chat",
			registry.RoleSettings: "settings",
		}),
	}, reg, host.find, host.watch, func() { changes++ })

	if !r.ReconcileNow() {
		t.Fatalf("expected first pass to change the registry")
	}
	if !reg.Has(registry.RoleAnchor) || !reg.Has(registry.RoleChat) || reg.Has(registry.RoleSettings) {
		t.Fatalf("unexpected roles %v", reg.Keys())
	}
	if changes != 1 {
		t.Fatalf("expected one change callback, got %d", changes)
	}
	if len(host.watched) != 2 {
		t.Fatalf("expected both windows watched, got %v", host.watched)
	}

	lookups := host.lookups
	if r.ReconcileNow() {
		t.Fatalf("expected steady state to report no change")
	}
	// Only the missing settings window is searched again.
	if host.lookups-lookups != 1 {
		t.Fatalf("expected 1 lookup for the unbound role, got %d", host.lookups-lookups)
	}

	host.byClass["chat"].alive = false
	delete(host.byClass, "chat")
	if !r.ReconcileNow() {
		t.Fatalf("expected destroyed chat window to be dropped")
	}
	if reg.Has(registry.RoleChat) {
		t.Fatalf("expected chat role removed")
	}
	if changes != 2 {
		t.Fatalf("expected second change callback, got %d", changes)
	}
}

func TestReconcile_ReplacesRecreatedWindow(t *testing.T) {
	host := &fakeHost{byClass: map[string]*hostWindow{"anchor": {id: 1, alive: true}}}
	reg := registry.NewEmpty()
	r := NewReconciler(ReconcilerConfig{Rules: rules(map[registry.Role]string{registry.RoleAnchor: "anchor"})},
		reg, host.find, host.watch, nil)
	r.ReconcileNow()

	host.byClass["anchor"].alive = false
	host.byClass["anchor"] = &hostWindow{id: 9, alive: true}
	if !r.ReconcileNow() {
		t.Fatalf("expected change")
	}
	win, _ := reg.Get(registry.RoleAnchor)
	if win.ID() != 9 {
		t.Fatalf("expected new anchor window 9, got %d", win.ID())
	}
}

func TestReconcile_SetRulesRescansAndUnbinds(t *testing.T) {
	host := &fakeHost{byClass: map[string]*hostWindow{
		"anchor":  {id: 1, alive: true},
		"anchor2": {id: 2, alive: true},
		"chat":    {id: 3, alive: true},
	}}
	reg := registry.NewEmpty()
	r := NewReconciler(ReconcilerConfig{Rules: rules(map[registry.Role]string{
		registry.RoleAnchor: "anchor",
		registry.RoleChat:   "chat",
	})}, reg, host.find, nil, nil)
	r.ReconcileNow()

	r.SetRules(rules(map[registry.Role]string{registry.RoleAnchor: "anchor2"}))
	if !r.ReconcileNow() {
		t.Fatalf("expected rule change to update the registry")
	}
	win, _ := reg.Get(registry.RoleAnchor)
	if win.ID() != 2 {
		t.Fatalf("expected anchor rebound to window 2, got %d", win.ID())
	}
	if reg.Has(registry.RoleChat) {
		t.Fatalf("expected chat unbound once its rule is gone")
	}
}

func TestReconcile_WatchFailureStillBinds(t *testing.T) {
	host := &fakeHost{
		byClass:  map[string]*hostWindow{"anchor": {id: 1, alive: true}},
		watchErr: errors.New("bad window"),
	}
	reg := registry.NewEmpty()
	r := NewReconciler(ReconcilerConfig{Rules: rules(map[registry.Role]string{registry.RoleAnchor: "anchor"})},
		reg, host.find, host.watch, nil)

	if !r.ReconcileNow() || !reg.Has(registry.RoleAnchor) {
		t.Fatalf("expected anchor bound despite watch failure")
	}
}

func TestReconcile_RecoversFromPanic(t *testing.T) {
	reg := registry.NewEmpty()
	r := NewReconciler(ReconcilerConfig{Rules: rules(map[registry.Role]string{registry.RoleAnchor: "anchor"})},
		reg, func(platform.WindowMatch) (platform.Window, bool) { panic("x11 gone") }, nil, nil)

	if r.ReconcileNow() {
		t.Fatalf("expected a panicking pass to report no change")
	}
}
