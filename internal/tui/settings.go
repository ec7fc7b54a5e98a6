package tui

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/tether/internal/config"
)

// settingsForm edits the layout and animation section of the config.
type settingsForm struct {
	editing bool
	form    *huh.Form

	// Form-bound values (strings for huh, converted on submit)
	fSatellitePadding string
	fVerticalBand     string
	fHorizontalBand   string
	fScreenPadding    string
	fOverlapMargin    string
	fDurationMs       string
	fTickMs           string
}

func (s *settingsForm) Start(cfg *config.Config, width int) tea.Cmd {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s.fSatellitePadding = strconv.Itoa(cfg.Layout.SatellitePadding)
	s.fVerticalBand = strconv.Itoa(cfg.Layout.VerticalBand)
	s.fHorizontalBand = strconv.Itoa(cfg.Layout.HorizontalBand)
	s.fScreenPadding = strconv.Itoa(cfg.Layout.Auxiliary.ScreenPadding)
	s.fOverlapMargin = strconv.Itoa(cfg.Layout.Auxiliary.OverlapMargin)
	s.fDurationMs = strconv.Itoa(cfg.Animation.DurationMs)
	s.fTickMs = strconv.Itoa(cfg.Animation.TickMs)

	w := width - 4
	if w < 40 {
		w = 40
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("satellite_padding").
				Title("Satellite Padding").
				Description("Pixels between the anchor and its satellites").
				Validate(nonNegativeInt).
				Value(&s.fSatellitePadding),
			huh.NewInput().
				Key("vertical_band").
				Title("Vertical Band").
				Description("Space needed below or above the anchor").
				Validate(positiveInt).
				Value(&s.fVerticalBand),
			huh.NewInput().
				Key("horizontal_band").
				Title("Horizontal Band").
				Description("Space needed beside the anchor").
				Validate(positiveInt).
				Value(&s.fHorizontalBand),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("screen_padding").
				Title("Settings: Screen Padding").
				Validate(nonNegativeInt).
				Value(&s.fScreenPadding),
			huh.NewInput().
				Key("overlap_margin").
				Title("Settings: Overlap Margin").
				Validate(nonNegativeInt).
				Value(&s.fOverlapMargin),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("duration_ms").
				Title("Animation Duration (ms)").
				Validate(positiveInt).
				Value(&s.fDurationMs),
			huh.NewInput().
				Key("tick_ms").
				Title("Animation Tick (ms)").
				Validate(positiveInt).
				Value(&s.fTickMs),
		),
	).WithWidth(w).WithShowHelp(true).WithShowErrors(true)

	s.editing = true
	return s.form.Init()
}

// Update forwards msg to the form. done is true once the form was submitted.
func (s settingsForm) Update(msg tea.Msg) (settingsForm, tea.Cmd, bool) {
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "esc" {
		s.editing = false
		s.form = nil
		return s, nil, false
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}
	if s.form.State == huh.StateCompleted {
		s.editing = false
		s.form = nil
		return s, nil, true
	}
	return s, cmd, false
}

// Apply returns a copy of cfg with the form values, validated.
func (s settingsForm) Apply(cfg *config.Config) (*config.Config, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	next := *cfg

	fields := []struct {
		name string
		raw  string
		dst  *int
	}{
		{"satellite padding", s.fSatellitePadding, &next.Layout.SatellitePadding},
		{"vertical band", s.fVerticalBand, &next.Layout.VerticalBand},
		{"horizontal band", s.fHorizontalBand, &next.Layout.HorizontalBand},
		{"screen padding", s.fScreenPadding, &next.Layout.Auxiliary.ScreenPadding},
		{"overlap margin", s.fOverlapMargin, &next.Layout.Auxiliary.OverlapMargin},
		{"animation duration", s.fDurationMs, &next.Animation.DurationMs},
		{"animation tick", s.fTickMs, &next.Animation.TickMs},
	}
	for _, f := range fields {
		v, err := strconv.Atoi(f.raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not a number", f.name, f.raw)
		}
		*f.dst = v
	}

	if err := next.Validate(); err != nil {
		return nil, err
	}
	return &next, nil
}

func (s settingsForm) View() string {
	header := lipgloss.NewStyle().
		Foreground(lipgloss.Color("62")).
		Bold(true).
		Render("Editing Layout Settings") +
		lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Render("  (esc to cancel)")

	return lipgloss.NewStyle().Padding(1, 2).Render(header + "\n\n" + s.form.View())
}

func nonNegativeInt(s string) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("must be a whole number")
	}
	if v < 0 {
		return fmt.Errorf("must be >= 0")
	}
	return nil
}

func positiveInt(s string) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("must be a whole number")
	}
	if v <= 0 {
		return fmt.Errorf("must be > 0")
	}
	return nil
}
