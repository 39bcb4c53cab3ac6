package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/croutonhq/crouton/internal/audio"
	"github.com/croutonhq/crouton/internal/config"
	"github.com/croutonhq/crouton/internal/render/term"
	"github.com/croutonhq/crouton/internal/theme"
	"github.com/croutonhq/crouton/internal/toast"
)

const demoUser = "demo"

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Interactive terminal demo of the notification queue",
	Long: `Demo runs an interactive terminal session where keystrokes raise
notifications of each kind and the queue, stacking and dismissal
behaviour can be observed live.`,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

// demoKeyMap defines the key bindings for the demo.
type demoKeyMap struct {
	Success key.Binding
	Info    key.Binding
	Warning key.Binding
	Error   key.Binding
	Action  key.Binding
	Invoke  key.Binding
	Dismiss key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// ShortHelp returns a short help message.
func (k demoKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Success, k.Error, k.Dismiss, k.Help, k.Quit}
}

// FullHelp returns a full help message.
func (k demoKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Success, k.Info, k.Warning, k.Error},
		{k.Action, k.Invoke, k.Dismiss},
		{k.Help, k.Quit},
	}
}

func defaultDemoKeyMap() demoKeyMap {
	return demoKeyMap{
		Success: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "success toast"),
		),
		Info: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "info toast"),
		),
		Warning: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "warning toast"),
		),
		Error: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "error toast"),
		),
		Action: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "sticky toast with action"),
		),
		Invoke: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "invoke newest action"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "dismiss newest"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

type demoModel struct {
	system   *toast.System
	renderer *term.Renderer
	keys     demoKeyMap
	help     help.Model
	counter  int
	lastErr  error
	width    int
	height   int
}

func newDemoModel(system *toast.System, renderer *term.Renderer) demoModel {
	return demoModel{
		system:   system,
		renderer: renderer,
		keys:     defaultDemoKeyMap(),
		help:     help.New(),
	}
}

func (m demoModel) Init() tea.Cmd {
	return tick()
}

func (m demoModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		// Timers fire off the bubbletea loop; the tick just repaints.
		return m, tick()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.system.EndSession(demoUser)
			return m, tea.Quit
		case key.Matches(msg, m.keys.Success):
			m.counter++
			_, m.lastErr = m.system.Success(demoUser, "Saved",
				fmt.Sprintf("Document %d written to disk", m.counter))
		case key.Matches(msg, m.keys.Info):
			m.counter++
			_, m.lastErr = m.system.Info(demoUser, "Heads up",
				fmt.Sprintf("Background sync %d finished", m.counter))
		case key.Matches(msg, m.keys.Warning):
			m.counter++
			_, m.lastErr = m.system.Warning(demoUser, "Low disk space",
				fmt.Sprintf("Volume /data is %d%% full", 80+m.counter%20))
		case key.Matches(msg, m.keys.Error):
			m.counter++
			_, m.lastErr = m.system.Error(demoUser, "Upload failed",
				fmt.Sprintf("Attempt %d timed out", m.counter))
		case key.Matches(msg, m.keys.Action):
			m.counter++
			seq := m.counter
			_, m.lastErr = m.system.Warning(demoUser, "Update available",
				"Restart to apply the new version", toast.Params{
					Actions: []toast.Action{
						{
							Label:           "Restart",
							OnInvoke:        func() { logger.Info("restart requested", "seq", seq) },
							DismissOnInvoke: true,
						},
						{Label: "Later", DismissOnInvoke: true},
					},
				})
		case key.Matches(msg, m.keys.Invoke):
			m.renderer.InvokeNewestAction()
		case key.Matches(msg, m.keys.Dismiss):
			m.renderer.DismissNewest()
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
		return m, nil
	}
	return m, nil
}

func (m demoModel) View() string {
	q := m.system.QueueFor(demoUser)
	active, pending := 0, 0
	if q != nil {
		active = q.ActiveCount()
		pending = q.PendingCount()
	}

	header := lipgloss.NewStyle().Bold(true).Render("crouton demo")
	status := fmt.Sprintf("active %d  pending %d", active, pending)
	if m.lastErr != nil {
		status += "  error: " + m.lastErr.Error()
	}

	body := m.renderer.View()
	if body == "" {
		body = lipgloss.NewStyle().Faint(true).Render("press s/i/w/e to raise a toast")
	}

	return header + "\n" + status + "\n\n" + body + "\n\n" + m.help.View(m.keys)
}

func runDemo(cmd *cobra.Command, args []string) error {
	renderer := term.New(
		term.WithWidth(getConfig().Display.Width),
		term.WithTheme(theme.Load(getConfig().Theme.Name, logger)),
		term.WithLogger(logger),
	)

	opts := []toast.Option{
		toast.WithLogger(logger),
		toast.WithCapacity(getConfig().Display.Capacity),
		toast.WithGap(getConfig().Display.Gap),
	}

	var audioManager *audio.Manager
	if getConfig().Audio.Enabled {
		audioManager = audio.NewManager(getConfig(), logger)
		audioManager.Preload()
		defer audioManager.Close()
		opts = append(opts, toast.WithShowListener(audioManager.OnShow))
	}

	system := toast.NewSystem(toast.StaticSurface(renderer), opts...)

	watcher, err := startConfigWatcher(system, audioManager)
	if err != nil {
		logger.Warn("config hot reload unavailable", "error", err)
	} else {
		defer func() { _ = watcher.Stop() }()
	}

	program := tea.NewProgram(newDemoModel(system, renderer), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("demo failed: %w", err)
	}
	return nil
}

// startConfigWatcher applies config file edits to the running system.
func startConfigWatcher(system *toast.System, audioManager *audio.Manager) (*config.Watcher, error) {
	path := globalOpts.configPath
	if path == "" {
		var err error
		path, err = config.Path()
		if err != nil {
			return nil, err
		}
	}

	watcher, err := config.NewWatcher(path, logger)
	if err != nil {
		return nil, err
	}
	watcher.SetChangeCallback(func(newCfg *config.Config) {
		system.SetCapacity(newCfg.Display.Capacity)
		system.SetGap(newCfg.Display.Gap)
		if audioManager != nil {
			audioManager.UpdateConfig(newCfg)
		}
		cfg = newCfg
		logger.Info("configuration reloaded",
			"capacity", newCfg.Display.Capacity, "gap", newCfg.Display.Gap)
	})
	if err := watcher.Start(); err != nil {
		return nil, err
	}
	return watcher, nil
}
