package ipc

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/1broseidon/tether/internal/cluster"
	"github.com/1broseidon/tether/internal/geom"
	"github.com/1broseidon/tether/internal/platform"
	"github.com/1broseidon/tether/internal/registry"
)

type fakeController struct {
	mu       sync.Mutex
	reflows  int
	animated []AnimatePayload
	locked   *bool
}

func (f *fakeController) Reflow() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reflows++
}

func (f *fakeController) AnimateTo(role registry.Role, x, y float64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.animated = append(f.animated, AnimatePayload{Role: string(role), X: x, Y: y})
	return role == registry.RoleAnchor
}

func (f *fakeController) IsVisible(role registry.Role) bool { return role == registry.RoleChat }

func (f *fakeController) Bounds(role registry.Role) (geom.Rect, bool) {
	if role != registry.RoleAnchor {
		return geom.Rect{}, false
	}
	return geom.Rect{X: 100, Y: 100, Width: 400, Height: 60}, true
}

func (f *fakeController) SetSettingsLocked(locked bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locked = &locked
}

func (f *fakeController) snapshot() (animated []AnimatePayload, locked *bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]AnimatePayload(nil), f.animated...), f.locked
}

func (f *fakeController) Status() cluster.Status {
	return cluster.Status{Passes: 3, SettingsLocked: true, Roles: []registry.Role{registry.RoleAnchor}}
}

func (f *fakeController) Displays() []platform.Display {
	return []platform.Display{{ID: 0, Name: "eDP-1", Primary: true}}
}

func newTestServer(t *testing.T, ctrl Controller, reload func() error) *Server {
	t.Helper()
	t.Setenv("TETHER_SOCKET", filepath.Join(t.TempDir(), "t.sock"))
	srv, err := NewServer(ctrl, reload, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv
}

func payload(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func TestHandleCommand(t *testing.T) {
	ctrl := &fakeController{}
	srv := newTestServer(t, ctrl, nil)

	if resp := srv.handleCommand(&Request{Command: CommandReflow}); resp.Status != "OK" {
		t.Fatalf("reflow: %+v", resp)
	}
	if ctrl.reflows != 1 {
		t.Fatalf("expected one reflow, got %d", ctrl.reflows)
	}

	resp := srv.handleCommand(&Request{Command: CommandAnimate, Payload: payload(t, AnimatePayload{Role: "anchor", X: 10, Y: 20})})
	var anim AnimateData
	if err := json.Unmarshal(resp.Data, &anim); err != nil || !anim.Started {
		t.Fatalf("animate: %+v (%v)", resp, err)
	}

	resp = srv.handleCommand(&Request{Command: CommandAnimate, Payload: payload(t, AnimatePayload{Role: "sidebar"})})
	if resp.Status != "ERROR" || !strings.Contains(resp.Error, "unknown role") {
		t.Fatalf("expected unknown role error, got %+v", resp)
	}

	resp = srv.handleCommand(&Request{Command: CommandGetBounds, Payload: payload(t, RolePayload{Role: "settings"})})
	var bounds BoundsData
	if err := json.Unmarshal(resp.Data, &bounds); err != nil || bounds.Found {
		t.Fatalf("expected settings bounds not found, got %+v (%v)", bounds, err)
	}

	resp = srv.handleCommand(&Request{Command: CommandSetLock, Payload: json.RawMessage(`{"locked":true}`)})
	if resp.Status != "OK" || ctrl.locked == nil || !*ctrl.locked {
		t.Fatalf("expected lock set, got %+v", resp)
	}

	resp = srv.handleCommand(&Request{Command: CommandReload})
	if resp.Status != "ERROR" {
		t.Fatalf("expected reload to fail without a reloader")
	}

	resp = srv.handleCommand(&Request{Command: "EXPLODE"})
	if resp.Status != "ERROR" {
		t.Fatalf("expected unknown command error")
	}
}

func TestServerClientRoundTrip(t *testing.T) {
	ctrl := &fakeController{}
	var reloads atomic.Int32
	srv := newTestServer(t, ctrl, func() error {
		if reloads.Add(1) > 1 {
			return errors.New("bad yaml")
		}
		return nil
	})
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer srv.Stop()

	client := NewClient()
	if err := client.Ping(); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	status, err := client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status.Passes != 3 || !status.SettingsLocked || !status.DaemonRunning {
		t.Fatalf("unexpected status %+v", status)
	}

	displays, err := client.GetDisplays()
	if err != nil || len(displays.Displays) != 1 || displays.Displays[0].Name != "eDP-1" {
		t.Fatalf("unexpected displays %+v (%v)", displays, err)
	}

	started, err := client.Animate("chat", 5, 6)
	if err != nil || started {
		t.Fatalf("expected chat animation not started, got %v (%v)", started, err)
	}
	if animated, _ := ctrl.snapshot(); len(animated) != 1 || animated[0].X != 5 {
		t.Fatalf("unexpected animate calls %+v", animated)
	}

	b, err := client.GetBounds("anchor")
	if err != nil || !b.Found || b.Bounds.Width != 400 {
		t.Fatalf("unexpected bounds %+v (%v)", b, err)
	}

	visible, err := client.IsVisible("chat")
	if err != nil || !visible {
		t.Fatalf("expected chat visible, got %v (%v)", visible, err)
	}

	if err := client.SetLock(false); err != nil {
		t.Fatalf("SetLock: %v", err)
	}
	if _, locked := ctrl.snapshot(); locked == nil || *locked {
		t.Fatalf("expected lock released")
	}

	if err := client.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if err := client.Reload(); err == nil || !strings.Contains(err.Error(), "bad yaml") {
		t.Fatalf("expected reload error to surface, got %v", err)
	}

	if _, err := client.GetBounds("nope"); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}
