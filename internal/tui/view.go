package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/tether/internal/config"
	"github.com/1broseidon/tether/internal/ipc"
	"github.com/1broseidon/tether/internal/registry"
)

var (
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Width(14).
			Align(lipgloss.Right).
			PaddingRight(2)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Padding(0, 1)

	helpBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Padding(0, 1)
)

// renderStatusBar renders the daemon connection status bar.
func renderStatusBar(connected bool, status *ipc.StatusData, width int) string {
	var text string
	if connected && status != nil {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
		parts := []string{dot + " daemon connected"}
		if status.Strategy.Name != "" {
			parts = append(parts, "strategy:"+status.Strategy.Name)
		}
		parts = append(parts, fmt.Sprintf("passes:%d", status.Passes))
		if status.SettingsLocked {
			parts = append(parts, "settings:locked")
		}
		text = strings.Join(parts, "  ")
	} else {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("●")
		text = dot + " daemon not running"
	}

	return lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1).
		Render(text)
}

// renderCluster lists each role with its bounds and the active layout settings.
func renderCluster(status *ipc.StatusData, bounds map[registry.Role]ipc.BoundsData, cfg *config.Config, width int) string {
	row := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value)
	}

	lines := []string{""}
	for _, role := range registry.KnownRoles() {
		lines = append(lines, row(string(role), describeRole(role, status, bounds)))
	}

	if cfg != nil {
		lines = append(lines,
			"",
			row("padding", fmt.Sprintf("%d", cfg.Layout.SatellitePadding)),
			row("bands", fmt.Sprintf("vertical:%d horizontal:%d", cfg.Layout.VerticalBand, cfg.Layout.HorizontalBand)),
			row("animation", fmt.Sprintf("%dms every %dms", cfg.Animation.DurationMs, cfg.Animation.TickMs)),
		)
	}

	return lipgloss.NewStyle().Width(width).Padding(0, 2).Render(strings.Join(lines, "\n"))
}

func describeRole(role registry.Role, status *ipc.StatusData, bounds map[registry.Role]ipc.BoundsData) string {
	b, ok := bounds[role]
	if !ok || !b.Found {
		return dimStyle.Render("not found")
	}
	desc := fmt.Sprintf("%dx%d+%d+%d", b.Bounds.Width, b.Bounds.Height, b.Bounds.X, b.Bounds.Y)
	if status != nil {
		if !containsRole(status.Visible, role) {
			desc += " hidden"
		}
		if containsRole(status.Animating, role) {
			desc += " animating"
		}
	}
	return desc
}

func containsRole(roles []registry.Role, role registry.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
