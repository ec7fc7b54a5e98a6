package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/tether/internal/config"
	"github.com/1broseidon/tether/internal/ipc"
	"github.com/1broseidon/tether/internal/registry"
)

const pollInterval = 500 * time.Millisecond

// Daemon is the part of the IPC client the monitor uses.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	GetBounds(role string) (*ipc.BoundsData, error)
	Reflow() error
	SetLock(locked bool) error
	Reload() error
}

var _ Daemon = (*ipc.Client)(nil)

type pollMsg struct{}

type snapshotMsg struct {
	status *ipc.StatusData
	bounds map[registry.Role]ipc.BoundsData
	err    error
}

type actionMsg struct {
	what string
	err  error
}

type keyMap struct {
	Reflow key.Binding
	Lock   key.Binding
	Edit   key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Reflow, k.Lock, k.Edit, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func defaultKeyMap() keyMap {
	return keyMap{
		Reflow: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reflow")),
		Lock:   key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "toggle settings lock")),
		Edit:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit layout")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// model is the root bubbletea model: a live view of the cluster plus a
// layout settings editor.
type model struct {
	daemon     Daemon
	configPath string
	cfg        *config.Config

	connected bool
	status    *ipc.StatusData
	bounds    map[registry.Role]ipc.BoundsData
	message   string

	settings settingsForm

	keys keyMap
	help help.Model

	width  int
	height int
}

func newModel(d Daemon, configPath string, cfg *config.Config) model {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return model{
		daemon:     d,
		configPath: configPath,
		cfg:        cfg,
		bounds:     make(map[registry.Role]ipc.BoundsData),
		keys:       defaultKeyMap(),
		help:       help.New(),
	}
}

// Run opens the monitor on the alternate screen and blocks until it quits.
func Run(d Daemon, configPath string, cfg *config.Config) error {
	_, err := tea.NewProgram(newModel(d, configPath, cfg), tea.WithAltScreen()).Run()
	return err
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(m.fetch(), poll())
}

func poll() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg { return pollMsg{} })
}

func (m model) fetch() tea.Cmd {
	d := m.daemon
	return func() tea.Msg {
		status, err := d.GetStatus()
		if err != nil {
			return snapshotMsg{err: err}
		}
		bounds := make(map[registry.Role]ipc.BoundsData)
		for _, role := range registry.KnownRoles() {
			b, err := d.GetBounds(string(role))
			if err != nil {
				return snapshotMsg{err: err}
			}
			bounds[role] = *b
		}
		return snapshotMsg{status: status, bounds: bounds}
	}
}

func (m model) run(what string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return actionMsg{what: what, err: fn()}
	}
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = size.Width
		m.height = size.Height
		m.help.Width = size.Width
	}

	// The form captures input while open; only ctrl+c escapes to quit.
	if m.settings.editing {
		if km, ok := msg.(tea.KeyMsg); ok && km.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch msg.(type) {
		case pollMsg, snapshotMsg, actionMsg:
		default:
			var cmd tea.Cmd
			var done bool
			m.settings, cmd, done = m.settings.Update(msg)
			if done {
				return m, m.saveSettings()
			}
			return m, cmd
		}
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Reflow):
			return m, m.run("reflow", m.daemon.Reflow)
		case key.Matches(msg, m.keys.Lock):
			locked := m.status == nil || !m.status.SettingsLocked
			what := "unlock"
			if locked {
				what = "lock"
			}
			return m, m.run(what, func() error { return m.daemon.SetLock(locked) })
		case key.Matches(msg, m.keys.Edit):
			cmd := m.settings.Start(m.cfg, m.width)
			return m, cmd
		}

	case pollMsg:
		return m, tea.Batch(m.fetch(), poll())

	case snapshotMsg:
		if msg.err != nil {
			m.connected = false
			m.status = nil
			return m, nil
		}
		m.connected = true
		m.status = msg.status
		m.bounds = msg.bounds
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.message = fmt.Sprintf("%s failed: %v", msg.what, msg.err)
			return m, nil
		}
		m.message = msg.what + ": ok"
		return m, m.fetch()
	}

	return m, nil
}

// saveSettings writes the edited config and asks a running daemon to reload.
func (m *model) saveSettings() tea.Cmd {
	next, err := m.settings.Apply(m.cfg)
	if err != nil {
		m.message = fmt.Sprintf("settings not saved: %v", err)
		return nil
	}
	if err := next.SaveTo(m.configPath); err != nil {
		m.message = fmt.Sprintf("settings not saved: %v", err)
		return nil
	}
	m.cfg = next
	if !m.connected {
		m.message = "settings saved to " + m.configPath
		return nil
	}
	return m.run("save and reload", m.daemon.Reload)
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.connected, m.status, m.width)
	helpBar := helpBarStyle.Width(m.width).Render(m.help.View(m.keys))

	var body string
	if m.settings.editing {
		body = m.settings.View()
	} else {
		body = renderCluster(m.status, m.bounds, m.cfg, m.width)
	}

	parts := []string{statusBar, body}
	if m.message != "" {
		parts = append(parts, messageStyle.Render(m.message))
	}
	parts = append(parts, helpBar)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

var _ tea.Model = model{}
