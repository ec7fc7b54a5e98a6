package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/1broseidon/tether/internal/animation"
	"github.com/1broseidon/tether/internal/layout"
	"github.com/1broseidon/tether/internal/platform"
	"github.com/1broseidon/tether/internal/registry"
	"gopkg.in/yaml.v3"
)

// Windows holds the X11 match rule for each cluster role.
type Windows struct {
	Anchor     platform.WindowMatch `yaml:"anchor"`
	Chat       platform.WindowMatch `yaml:"chat"`
	Transcript platform.WindowMatch `yaml:"transcript"`
	Settings   platform.WindowMatch `yaml:"settings"`
}

// Rules returns the non-empty match rules keyed by role.
func (w Windows) Rules() map[registry.Role]platform.WindowMatch {
	out := make(map[registry.Role]platform.WindowMatch, 4)
	for role, match := range map[registry.Role]platform.WindowMatch{
		registry.RoleAnchor:     w.Anchor,
		registry.RoleChat:       w.Chat,
		registry.RoleTranscript: w.Transcript,
		registry.RoleSettings:   w.Settings,
	} {
		if !match.IsZero() {
			out[role] = match
		}
	}
	return out
}

// Auxiliary configures placement of the settings window.
type Auxiliary struct {
	ButtonPadding   int `yaml:"button_padding"`
	VerticalPadding int `yaml:"vertical_padding"`
	SidePadding     int `yaml:"side_padding"`
	OverlapMargin   int `yaml:"overlap_margin"`
	ScreenPadding   int `yaml:"screen_padding"`
}

// Layout configures satellite placement.
type Layout struct {
	SatellitePadding int       `yaml:"satellite_padding"`
	VerticalBand     int       `yaml:"vertical_band"`   // free space needed above/below
	HorizontalBand   int       `yaml:"horizontal_band"` // free space needed left/right
	Auxiliary        Auxiliary `yaml:"auxiliary"`
}

// Animation configures anchor moves.
type Animation struct {
	DurationMs int `yaml:"duration_ms"`
	TickMs     int `yaml:"tick_ms"`
}

// Hotkeys are xgbutil keybind strings such as "Mod4-Mod1-t". Empty disables
// the binding.
type Hotkeys struct {
	Reflow     string `yaml:"reflow"`
	ToggleLock string `yaml:"toggle_lock"`
}

// Config is the daemon configuration.
type Config struct {
	// Display overrides $DISPLAY for the daemon's X11 connection.
	Display                  string    `yaml:"display,omitempty"`
	LogLevel                 string    `yaml:"log_level"`
	Windows                  Windows   `yaml:"windows"`
	Layout                   Layout    `yaml:"layout"`
	Animation                Animation `yaml:"animation"`
	Hotkeys                  Hotkeys   `yaml:"hotkeys"`
	ReconcileIntervalSeconds int       `yaml:"reconcile_interval_seconds"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Windows: Windows{
			Anchor:     platform.WindowMatch{Class: "tether-anchor"},
			Chat:       platform.WindowMatch{Class: "tether-chat"},
			Transcript: platform.WindowMatch{Class: "tether-transcript"},
			Settings:   platform.WindowMatch{Class: "tether-settings"},
		},
		Layout: Layout{
			SatellitePadding: 8,
			VerticalBand:     400,
			HorizontalBand:   800,
			Auxiliary: Auxiliary{
				ButtonPadding:   17,
				VerticalPadding: 5,
				SidePadding:     8,
				OverlapMargin:   10,
				ScreenPadding:   10,
			},
		},
		Animation: Animation{
			DurationMs: 300,
			TickMs:     8,
		},
		Hotkeys: Hotkeys{
			Reflow:     "Mod4-Mod1-t",
			ToggleLock: "Mod4-Mod1-p",
		},
		ReconcileIntervalSeconds: 5,
	}
}

// EngineOptions converts the layout section for the layout engine.
func (l Layout) EngineOptions() layout.Options {
	return layout.Options{
		SatellitePadding: l.SatellitePadding,
		Thresholds: layout.Thresholds{
			VerticalBand:   l.VerticalBand,
			HorizontalBand: l.HorizontalBand,
		},
		Auxiliary: layout.AuxiliaryOptions{
			ButtonPadding:   l.Auxiliary.ButtonPadding,
			VerticalPadding: l.Auxiliary.VerticalPadding,
			SidePadding:     l.Auxiliary.SidePadding,
			OverlapMargin:   l.Auxiliary.OverlapMargin,
			ScreenPadding:   l.Auxiliary.ScreenPadding,
		},
	}
}

// Durations converts the animation section for the animation controller.
func (a Animation) Durations() animation.Options {
	return animation.Options{
		Duration: time.Duration(a.DurationMs) * time.Millisecond,
		Tick:     time.Duration(a.TickMs) * time.Millisecond,
	}
}

// ReconcileInterval returns the window discovery period.
func (c *Config) ReconcileInterval() time.Duration {
	return time.Duration(c.ReconcileIntervalSeconds) * time.Second
}

// ValidationError ties a validation failure to a config path and, when
// known, the file position that set it.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Validate checks every field and returns the first ValidationError.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}

	if c.Windows.Anchor.IsZero() {
		return &ValidationError{Path: "windows.anchor", Err: fmt.Errorf("anchor window needs a class or title")}
	}

	nonNegative := []struct {
		path  string
		value int
	}{
		{"layout.satellite_padding", c.Layout.SatellitePadding},
		{"layout.auxiliary.button_padding", c.Layout.Auxiliary.ButtonPadding},
		{"layout.auxiliary.vertical_padding", c.Layout.Auxiliary.VerticalPadding},
		{"layout.auxiliary.side_padding", c.Layout.Auxiliary.SidePadding},
		{"layout.auxiliary.overlap_margin", c.Layout.Auxiliary.OverlapMargin},
		{"layout.auxiliary.screen_padding", c.Layout.Auxiliary.ScreenPadding},
	}
	for _, field := range nonNegative {
		if field.value < 0 {
			return &ValidationError{Path: field.path, Err: fmt.Errorf("must be >= 0")}
		}
	}

	if c.Layout.VerticalBand <= 0 {
		return &ValidationError{Path: "layout.vertical_band", Err: fmt.Errorf("must be > 0")}
	}
	if c.Layout.HorizontalBand <= 0 {
		return &ValidationError{Path: "layout.horizontal_band", Err: fmt.Errorf("must be > 0")}
	}

	if c.Animation.DurationMs <= 0 {
		return &ValidationError{Path: "animation.duration_ms", Err: fmt.Errorf("must be > 0")}
	}
	if c.Animation.TickMs <= 0 {
		return &ValidationError{Path: "animation.tick_ms", Err: fmt.Errorf("must be > 0")}
	}
	if c.Animation.TickMs > c.Animation.DurationMs {
		return &ValidationError{Path: "animation.tick_ms", Err: fmt.Errorf("must not exceed duration_ms (%d)", c.Animation.DurationMs)}
	}

	if c.Hotkeys.Reflow != "" && c.Hotkeys.Reflow == c.Hotkeys.ToggleLock {
		return &ValidationError{Path: "hotkeys.toggle_lock", Err: fmt.Errorf("conflicts with hotkeys.reflow")}
	}

	if c.ReconcileIntervalSeconds <= 0 {
		return &ValidationError{Path: "reconcile_interval_seconds", Err: fmt.Errorf("must be > 0")}
	}
	return nil
}

// Save writes the config to the default config path.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo validates the config and writes it to path as YAML.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
