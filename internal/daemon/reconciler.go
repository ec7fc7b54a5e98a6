package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/tether/internal/logging"
	"github.com/1broseidon/tether/internal/platform"
	"github.com/1broseidon/tether/internal/registry"
)

// WindowFinder resolves a match rule to a live window.
type WindowFinder func(match platform.WindowMatch) (platform.Window, bool)

// WindowWatcher subscribes fn to move, resize, map and destroy events of win.
type WindowWatcher func(win platform.Window, fn func()) error

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Rules    map[registry.Role]platform.WindowMatch
	Logger   *slog.Logger
}

// Reconciler keeps the registry in step with the windows that exist on the
// host: it binds roles to newly found windows, drops destroyed ones and
// reflows when anything changed.
type Reconciler struct {
	interval time.Duration
	registry *registry.Registry
	find     WindowFinder
	watch    WindowWatcher
	onChange func()
	logger   *slog.Logger

	mu     sync.Mutex
	rules  map[registry.Role]platform.WindowMatch
	rescan bool
}

// NewReconciler creates a new reconciler with the given configuration.
// watch may be nil; onChange is typically the cluster's Reflow.
func NewReconciler(cfg ReconcilerConfig, reg *registry.Registry, find WindowFinder, watch WindowWatcher, onChange func()) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	if onChange == nil {
		onChange = func() {}
	}

	return &Reconciler{
		interval: interval,
		registry: reg,
		find:     find,
		watch:    watch,
		onChange: onChange,
		logger:   logger,
		rules:    cloneRules(cfg.Rules),
	}
}

// SetRules replaces the match rules. Every role is searched again on the
// next pass.
func (r *Reconciler) SetRules(rules map[registry.Role]platform.WindowMatch) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = cloneRules(rules)
	r.rescan = true
}

// Run reconciles once, then on every interval until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)
	r.reconcile()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile()
		}
	}
}

// ReconcileNow triggers an immediate reconciliation pass and reports
// whether the registry changed.
func (r *Reconciler) ReconcileNow() bool {
	return r.reconcile()
}

func (r *Reconciler) reconcile() (changed bool) {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
			changed = false
		}
	}()

	r.mu.Lock()
	rules := r.rules
	rescan := r.rescan
	r.rescan = false
	r.mu.Unlock()

	for _, role := range registry.KnownRoles() {
		if r.reconcileRole(role, rules, rescan) {
			changed = true
		}
	}

	if changed {
		r.logger.Debug("reconciler: registry changed", "roles", r.registry.Keys())
		r.onChange()
	}
	return changed
}

func (r *Reconciler) reconcileRole(role registry.Role, rules map[registry.Role]platform.WindowMatch, rescan bool) bool {
	current, bound := r.registry.Get(role)
	rule, ok := rules[role]
	if !ok {
		if bound {
			r.registry.Delete(role)
			r.logger.Info("reconciler: role unbound, no rule", "role", role)
			return true
		}
		return false
	}

	if bound && current.IsAlive() && !rescan {
		return false
	}

	found, ok := r.find(rule)
	if !ok || found == nil || !found.IsAlive() {
		if bound {
			r.registry.Delete(role)
			r.logger.Info("reconciler: window gone", "role", role, "window_id", current.ID())
			return true
		}
		return false
	}
	if bound && current.IsAlive() && current.ID() == found.ID() {
		return false
	}

	r.registry.Set(role, found)
	r.logger.Info("reconciler: window bound", "role", role, "window_id", found.ID())
	if r.watch != nil {
		if err := r.watch(found, r.onChange); err != nil {
			r.logger.Warn("reconciler: failed to watch window", "role", role, "error", err)
		}
	}
	return true
}

func cloneRules(in map[registry.Role]platform.WindowMatch) map[registry.Role]platform.WindowMatch {
	out := make(map[registry.Role]platform.WindowMatch, len(in))
	for role, match := range in {
		out[role] = match
	}
	return out
}
