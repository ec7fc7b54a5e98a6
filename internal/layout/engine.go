package layout

import (
	"io"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/1broseidon/tether/internal/display"
	"github.com/1broseidon/tether/internal/eventloop"
	"github.com/1broseidon/tether/internal/geom"
	"github.com/1broseidon/tether/internal/platform"
	"github.com/1broseidon/tether/internal/registry"
)

// AuxiliaryOptions position the lockable settings window.
type AuxiliaryOptions struct {
	// ButtonPadding insets the window from the anchor's right edge.
	ButtonPadding int
	// VerticalPadding is the gap between anchor and window when stacked.
	VerticalPadding int
	// SidePadding is the gap used by the left and right fallbacks.
	SidePadding int
	// OverlapMargin is the buffer kept around visible satellites.
	OverlapMargin int
	// ScreenPadding is kept clear of the usable area edges.
	ScreenPadding int
}

// Options tune a layout pass.
type Options struct {
	SatellitePadding int
	Thresholds       Thresholds
	Auxiliary        AuxiliaryOptions
}

// DefaultOptions returns the stock paddings and thresholds.
func DefaultOptions() Options {
	return Options{
		SatellitePadding: 8,
		Thresholds:       DefaultThresholds(),
		Auxiliary: AuxiliaryOptions{
			ButtonPadding:   17,
			VerticalPadding: 5,
			SidePadding:     8,
			OverlapMargin:   10,
			ScreenPadding:   10,
		},
	}
}

// Engine keeps the satellite and auxiliary windows arranged around the
// anchor. All passes run on the scheduler; Reflow may be called from any
// goroutine.
type Engine struct {
	registry *registry.Registry
	resolver *display.Resolver
	sched    eventloop.Scheduler
	logger   *slog.Logger

	pending atomic.Bool
	passes  atomic.Uint64

	mu           sync.Mutex
	opts         Options
	auxLocked    bool
	lastStrategy Strategy
}

// NewEngine wires an engine over reg. reg, resolver and sched are required.
func NewEngine(reg *registry.Registry, resolver *display.Resolver, sched eventloop.Scheduler, opts Options, logger *slog.Logger) *Engine {
	if reg == nil || resolver == nil || sched == nil {
		panic("layout: registry, resolver and scheduler are required")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		registry: reg,
		resolver: resolver,
		sched:    sched,
		logger:   logger,
		opts:     opts,
	}
}

// Reflow schedules one layout pass. Calls made while a pass is pending or
// running are dropped.
func (e *Engine) Reflow() {
	if e.pending.CompareAndSwap(false, true) {
		e.sched.Post(e.pass)
	}
}

// Pending reports whether a pass is queued or running.
func (e *Engine) Pending() bool {
	return e.pending.Load()
}

// Passes returns the number of completed layout passes.
func (e *Engine) Passes() uint64 {
	return e.passes.Load()
}

// LastStrategy returns the strategy chosen by the most recent pass.
func (e *Engine) LastStrategy() Strategy {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastStrategy
}

// SetOptions replaces the pass options; the next pass picks them up.
func (e *Engine) SetOptions(opts Options) {
	e.mu.Lock()
	e.opts = opts
	e.mu.Unlock()
}

// Options returns the current pass options.
func (e *Engine) Options() Options {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opts
}

// SetAuxiliaryLocked pins or releases the settings window.
func (e *Engine) SetAuxiliaryLocked(locked bool) {
	e.mu.Lock()
	e.auxLocked = locked
	e.mu.Unlock()
}

// AuxiliaryLocked reports whether the settings window is pinned.
func (e *Engine) AuxiliaryLocked() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.auxLocked
}

// IsVisible reports whether role is bound to a live, shown window.
func (e *Engine) IsVisible(role registry.Role) bool {
	win, ok := e.live(role)
	return ok && win.IsVisible()
}

// Bounds returns the current bounds of the window bound to role.
func (e *Engine) Bounds(role registry.Role) (geom.Rect, bool) {
	win, ok := e.live(role)
	if !ok {
		return geom.Rect{}, false
	}
	return win.Bounds()
}

func (e *Engine) live(role registry.Role) (platform.Window, bool) {
	win, ok := e.registry.Get(role)
	if !ok || win == nil || !win.IsAlive() {
		return nil, false
	}
	return win, true
}

func (e *Engine) pass() {
	defer e.pending.Store(false)
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("layout pass panicked", "panic", r, "stack", string(debug.Stack()))
		}
	}()

	e.mu.Lock()
	opts := e.opts
	e.mu.Unlock()

	anchorWin, ok := e.live(registry.RoleAnchor)
	if !ok {
		return
	}
	anchor, ok := anchorWin.Bounds()
	if !ok {
		return
	}

	disp := e.resolver.DisplayFor(anchorWin)
	relX, relY, ok := RelativeCenter(anchor, disp.Usable)
	if !ok {
		e.logger.Debug("layout pass skipped, no usable area", "display", disp.ID)
		return
	}

	strategy := SelectStrategy(anchor, disp.Usable, relX, relY, opts.Thresholds)
	e.mu.Lock()
	e.lastStrategy = strategy
	e.mu.Unlock()

	satellites := e.placeSatellites(anchor, disp.Usable, strategy, opts)
	e.placeAuxiliary(anchor, disp, satellites, opts.Auxiliary)

	n := e.passes.Add(1)
	e.logger.Debug("layout pass complete",
		"pass", n,
		"strategy", strategy.Name,
		"display", disp.ID,
		"satellites", len(satellites))
}

type satellite struct {
	role   registry.Role
	win    platform.Window
	bounds geom.Rect
}

// satelliteOrder is the left-to-right order inside a joint block.
var satelliteOrder = []registry.Role{registry.RoleTranscript, registry.RoleChat}

func (e *Engine) visibleSatellites() []satellite {
	var out []satellite
	for _, role := range satelliteOrder {
		win, ok := e.live(role)
		if !ok || !win.IsVisible() {
			continue
		}
		bounds, ok := win.Bounds()
		if !ok {
			continue
		}
		out = append(out, satellite{role: role, win: win, bounds: bounds})
	}
	return out
}

// placeSatellites writes satellite bounds and returns their targets.
func (e *Engine) placeSatellites(anchor, usable geom.Rect, strategy Strategy, opts Options) []geom.Rect {
	sats := e.visibleSatellites()
	if len(sats) == 0 {
		return nil
	}
	pad := opts.SatellitePadding

	maxHeight := 0
	for _, s := range sats {
		maxHeight = max(maxHeight, s.bounds.Height)
	}

	// Side strategies only steer the secondary axis; vertically they
	// share the below offset.
	y := anchor.Bottom() + pad
	if strategy.Primary == SideAbove {
		y = anchor.Y - maxHeight - pad
	}
	cx, _ := anchor.Center()

	targets := make([]geom.Rect, len(sats))
	if len(sats) == 1 {
		s := sats[0]
		want := geom.Rect{X: cx - s.bounds.Width/2, Y: y, Width: s.bounds.Width, Height: s.bounds.Height}
		targets[0] = geom.Clamp(want, usable, pad)
	} else {
		blockWidth := -pad
		for _, s := range sats {
			blockWidth += s.bounds.Width + pad
		}
		block := geom.Clamp(geom.Rect{X: cx - blockWidth/2, Y: y, Width: blockWidth, Height: maxHeight}, usable, pad)
		x := block.X
		for i, s := range sats {
			targets[i] = geom.Rect{X: x, Y: block.Y, Width: s.bounds.Width, Height: s.bounds.Height}
			x += s.bounds.Width + pad
		}
	}

	for i, s := range sats {
		e.apply(s.role, s.win, targets[i])
	}
	return targets
}

func (e *Engine) placeAuxiliary(anchor geom.Rect, anchorDisplay platform.Display, satellites []geom.Rect, opts AuxiliaryOptions) {
	win, ok := e.live(registry.RoleSettings)
	if !ok || !win.IsVisible() {
		return
	}
	current, ok := win.Bounds()
	if !ok {
		return
	}

	e.mu.Lock()
	locked := e.auxLocked
	e.mu.Unlock()
	if locked {
		auxDisplay := e.resolver.DisplayFor(win)
		if auxDisplay.ID == anchorDisplay.ID {
			return
		}
		e.mu.Lock()
		e.auxLocked = false
		e.mu.Unlock()
		e.logger.Info("settings lock cleared, anchor changed display",
			"anchor_display", anchorDisplay.ID,
			"settings_display", auxDisplay.ID)
	}

	target, fits := auxiliaryTarget(anchor, anchorDisplay.Usable, current, satellites, opts)
	if !fits {
		e.logger.Debug("settings overlaps satellites, every placement blocked",
			"anchor", anchor, "target", target)
	}
	if e.apply(registry.RoleSettings, win, target) {
		if err := win.Raise(); err != nil {
			e.logger.Debug("raise failed", "role", registry.RoleSettings, "error", err)
		}
	}
}

// auxiliaryTarget picks the first clamped candidate that keeps clear of
// every satellite, or the clamped default when none does. fits is false in
// the latter case.
func auxiliaryTarget(anchor, usable, current geom.Rect, satellites []geom.Rect, opts AuxiliaryOptions) (target geom.Rect, fits bool) {
	w, h := current.Width, current.Height
	defaultX := anchor.Right() - w - opts.ButtonPadding

	candidates := []geom.Rect{
		{X: defaultX, Y: anchor.Bottom() + opts.VerticalPadding, Width: w, Height: h},
		{X: anchor.Right() + opts.SidePadding, Y: anchor.Y, Width: w, Height: h},
		{X: anchor.X - w - opts.SidePadding, Y: anchor.Y, Width: w, Height: h},
		{X: defaultX, Y: anchor.Y - h - opts.VerticalPadding, Width: w, Height: h},
	}
	for _, c := range candidates {
		c = geom.Clamp(c, usable, opts.ScreenPadding)
		if !geom.OverlapsAny(c, satellites, opts.OverlapMargin) {
			return c, true
		}
	}
	return geom.Clamp(candidates[0], usable, opts.ScreenPadding), false
}

// apply writes target to win unless it is already there or the window died
// since it was read. It reports whether a write happened.
func (e *Engine) apply(role registry.Role, win platform.Window, target geom.Rect) bool {
	if !win.IsAlive() {
		return false
	}
	if current, ok := win.Bounds(); ok && current == target {
		return false
	}
	if err := win.SetBounds(target); err != nil {
		e.logger.Warn("failed to place window", "role", role, "error", err)
		return false
	}
	return true
}
