// Package cluster binds the window registry, layout engine and animation
// controller for one anchor and its satellites.
package cluster

import (
	"log/slog"

	"github.com/1broseidon/tether/internal/animation"
	"github.com/1broseidon/tether/internal/config"
	"github.com/1broseidon/tether/internal/display"
	"github.com/1broseidon/tether/internal/eventloop"
	"github.com/1broseidon/tether/internal/geom"
	"github.com/1broseidon/tether/internal/layout"
	"github.com/1broseidon/tether/internal/logging"
	"github.com/1broseidon/tether/internal/platform"
	"github.com/1broseidon/tether/internal/registry"
)

// Status is a point-in-time view of the cluster.
type Status struct {
	Passes         uint64          `json:"passes"`
	Strategy       layout.Strategy `json:"strategy"`
	SettingsLocked bool            `json:"settings_locked"`
	Roles          []registry.Role `json:"roles"`
	Visible        []registry.Role `json:"visible"`
	Animating      []registry.Role `json:"animating"`
}

// Cluster is the entry point used by the daemon, IPC and hotkeys.
type Cluster struct {
	registry *registry.Registry
	resolver *display.Resolver
	engine   *layout.Engine
	animator *animation.Controller
	logger   *slog.Logger
}

// New builds a cluster over reg. Finished animations trigger a reflow so
// satellites follow the anchor.
func New(reg *registry.Registry, displays platform.DisplaySource, sched eventloop.Scheduler, cfg *config.Config, logger *slog.Logger) *Cluster {
	if logger == nil {
		logger = logging.Discard()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	resolver := display.NewResolver(displays, logger.With("component", "display"))
	engine := layout.NewEngine(reg, resolver, sched, cfg.Layout.EngineOptions(), logger.With("component", "layout"))
	animator := animation.NewController(sched, cfg.Animation.Durations(), engine.Reflow, logger.With("component", "animation"))
	return &Cluster{
		registry: reg,
		resolver: resolver,
		engine:   engine,
		animator: animator,
		logger:   logger,
	}
}

// Registry returns the role table the cluster lays out.
func (c *Cluster) Registry() *registry.Registry { return c.registry }

// Engine returns the layout engine.
func (c *Cluster) Engine() *layout.Engine { return c.engine }

// Reflow schedules a layout pass.
func (c *Cluster) Reflow() {
	c.engine.Reflow()
}

// AnimateTo moves the window bound to role to (x, y). It reports false when
// the role is unbound, the window is gone or the target is not finite; the
// animation itself starts on the scheduler.
func (c *Cluster) AnimateTo(role registry.Role, x, y float64) bool {
	win, ok := c.registry.Get(role)
	if !ok {
		return false
	}
	started := c.animator.AnimateTo(win, x, y)
	if started {
		c.logger.Debug("animation started", "role", role, "x", x, "y", y)
	}
	return started
}

// IsVisible reports whether role is bound to a live, shown window.
func (c *Cluster) IsVisible(role registry.Role) bool {
	return c.engine.IsVisible(role)
}

// Bounds returns the current bounds of the window bound to role.
func (c *Cluster) Bounds(role registry.Role) (geom.Rect, bool) {
	return c.engine.Bounds(role)
}

// SetSettingsLocked pins or releases the settings window. Releasing it
// reflows so the window returns to its computed spot.
func (c *Cluster) SetSettingsLocked(locked bool) {
	c.engine.SetAuxiliaryLocked(locked)
	c.logger.Info("settings lock changed", "locked", locked)
	if !locked {
		c.engine.Reflow()
	}
}

// ToggleSettingsLock flips the lock and returns the new state.
func (c *Cluster) ToggleSettingsLock() bool {
	locked := !c.engine.AuxiliaryLocked()
	c.SetSettingsLocked(locked)
	return locked
}

// Displays returns the current display list.
func (c *Cluster) Displays() []platform.Display {
	return c.resolver.All()
}

// Status snapshots the engine and animation state.
func (c *Cluster) Status() Status {
	st := Status{
		Passes:         c.engine.Passes(),
		Strategy:       c.engine.LastStrategy(),
		SettingsLocked: c.engine.AuxiliaryLocked(),
		Roles:          c.registry.Keys(),
		Visible:        []registry.Role{},
		Animating:      []registry.Role{},
	}
	for _, role := range st.Roles {
		if c.engine.IsVisible(role) {
			st.Visible = append(st.Visible, role)
		}
		if win, ok := c.registry.Get(role); ok && c.animator.IsAnimating(win.ID()) {
			st.Animating = append(st.Animating, role)
		}
	}
	return st
}

// Apply swaps in layout and animation settings from a reloaded config and
// reflows.
func (c *Cluster) Apply(cfg *config.Config) {
	if cfg == nil {
		return
	}
	c.engine.SetOptions(cfg.Layout.EngineOptions())
	c.animator.SetOptions(cfg.Animation.Durations())
	c.engine.Reflow()
}
