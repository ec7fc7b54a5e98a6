package hotkeys

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/1broseidon/tether/internal/config"
	"github.com/1broseidon/tether/internal/logging"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Actions are the cluster operations bound to keys.
type Actions interface {
	Reflow()
	ToggleSettingsLock() bool
}

// x11Accessor is implemented by backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu      *xgbutil.XUtil
	root    xproto.Window
	actions Actions
	logger  *slog.Logger
}

var ignoreModsOnce sync.Once

// NewHandler creates a hotkey handler on the backend's root window.
func NewHandler(backend x11Accessor, actions Actions, logger *slog.Logger) (*Handler, error) {
	if backend == nil || backend.XUtil() == nil {
		return nil, fmt.Errorf("hotkeys need an X11 connection")
	}
	if logger == nil {
		logger = logging.Discard()
	}
	xu := backend.XUtil()

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Handler{
		xu:      xu,
		root:    backend.RootWindow(),
		actions: actions,
		logger:  logger,
	}, nil
}

// Bind replaces all key bindings with the ones in cfg. Empty entries are
// skipped.
func (h *Handler) Bind(cfg config.Hotkeys) error {
	keybind.Detach(h.xu, h.root)

	if cfg.Reflow != "" {
		if err := h.RegisterFunc(cfg.Reflow, func() {
			h.logger.Debug("reflow hotkey triggered")
			h.actions.Reflow()
		}); err != nil {
			return fmt.Errorf("failed to register reflow hotkey %q: %w", cfg.Reflow, err)
		}
	}

	if cfg.ToggleLock != "" {
		if err := h.RegisterFunc(cfg.ToggleLock, func() {
			locked := h.actions.ToggleSettingsLock()
			h.logger.Debug("settings lock hotkey triggered", "locked", locked)
		}); err != nil {
			return fmt.Errorf("failed to register lock hotkey %q: %w", cfg.ToggleLock, err)
		}
	}
	return nil
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	xevent.IgnoreMods = ignoreMasks(
		uint16(xproto.ModMaskLock),
		modMaskForKeysym(xu, "Num_Lock"),
		modMaskForKeysym(xu, "Scroll_Lock"),
	)
}

// ignoreMasks returns every combination of the lock modifiers, so bindings
// fire regardless of CapsLock, NumLock or ScrollLock state.
func ignoreMasks(caps, numLock, scrollLock uint16) []uint16 {
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	unique := map[uint16]struct{}{0: {}}
	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		unique[mask] = struct{}{}
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}
	sort.Slice(ignore, func(i, j int) bool { return ignore[i] < ignore[j] })
	return ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
