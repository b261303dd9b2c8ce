package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/TimelordUK/texlog/internal/config"
	"github.com/TimelordUK/texlog/pkg/texlog"
)

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeFilter
	ModeWhere
	ModeGoto
)

// ModelOptions configures a new model
type ModelOptions struct {
	Filepath string
	Config   *config.Config
	// Follow re-parses the transcript on every watch poll interval
	Follow bool
}

type tickMsg time.Time

// Model is the main application model
type Model struct {
	pane   *Pane
	config *config.Config
	keys   keyMap
	help   help.Model
	input  textinput.Model

	mode   Mode
	width  int
	height int

	following bool
	pollEvery time.Duration

	// Status
	message string
	err     error
}

// NewModel creates a model for a transcript with the default config
func NewModel(filepath string) (*Model, error) {
	return NewModelWithOptions(ModelOptions{Filepath: filepath})
}

// NewModelWithOptions creates a new application model
func NewModelWithOptions(opts ModelOptions) (*Model, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	pane, err := NewPane(opts.Filepath, cfg)
	if err != nil {
		return nil, err
	}

	ti := textinput.New()
	ti.CharLimit = 256

	m := &Model{
		pane:      pane,
		config:    cfg,
		keys:      newKeyMap(cfg.Keybindings),
		help:      help.New(),
		input:     ti,
		width:     80,
		height:    24,
		following: opts.Follow || cfg.Display.Follow,
		pollEvery: time.Duration(cfg.Watch.PollMs) * time.Millisecond,
	}
	m.resize()
	return m, nil
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.pollEvery, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	if m.following {
		return m.tick()
	}
	return nil
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tickMsg:
		if !m.following {
			return m, nil
		}
		m.reload(false)
		return m, m.tick()
	}

	return m, nil
}

func (m *Model) resize() {
	// Reserve 2 lines for status bar and help
	m.pane.SetSize(m.width, max(m.height-2, 1))
	m.help.Width = m.width
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode != ModeNormal {
		return m.handleInputKey(msg)
	}

	m.message = ""
	m.err = nil
	vp := m.pane.Active()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Down):
		vp.ScrollDown(1)
	case key.Matches(msg, m.keys.Up):
		vp.ScrollUp(1)
	case key.Matches(msg, m.keys.PageDown):
		vp.PageDown()
	case key.Matches(msg, m.keys.PageUp):
		vp.PageUp()
	case key.Matches(msg, m.keys.Top):
		vp.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		vp.GotoBottom()

	case key.Matches(msg, m.keys.Levels):
		if level, ok := levelForKey(msg.String()); ok {
			m.pane.SetMinLevel(level)
		} else {
			m.pane.ClearLevel()
		}

	case key.Matches(msg, m.keys.Filter):
		return m, m.startInput(ModeFilter, "Filter text...", m.pane.FilterTerm())
	case key.Matches(msg, m.keys.Where):
		return m, m.startInput(ModeWhere, `AtLeast("warning") && File endsWith ".tex"`, m.pane.Where())
	case key.Matches(msg, m.keys.Goto):
		return m, m.startInput(ModeGoto, "Row number...", "")

	case key.Matches(msg, m.keys.ToggleLog):
		m.pane.ToggleFocus()
	case key.Matches(msg, m.keys.Jump):
		if m.pane.Focus() == FocusList {
			m.pane.JumpToLog()
		}

	case key.Matches(msg, m.keys.Export):
		path, err := m.pane.Export()
		if err != nil {
			m.err = err
		} else {
			m.message = "exported to " + path
		}
	case key.Matches(msg, m.keys.Reload):
		m.reload(true)
	}

	return m, nil
}

func (m *Model) reload(report bool) {
	changed, err := m.pane.Reload()
	switch {
	case err != nil:
		m.err = err
	case changed:
		m.message = "reloaded"
	case report:
		m.message = "unchanged"
	}
}

func (m *Model) startInput(mode Mode, placeholder, value string) tea.Cmd {
	m.mode = mode
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.apply(m.input.Value())
		m.mode = ModeNormal
		m.input.Blur()
		return m, nil

	case tea.KeyEsc:
		m.mode = ModeNormal
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) apply(value string) {
	switch m.mode {
	case ModeFilter:
		m.pane.SetFilterTerm(value)
	case ModeWhere:
		if err := m.pane.SetWhere(value); err != nil {
			m.err = err
		}
	case ModeGoto:
		row, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			m.err = fmt.Errorf("not a row number: %q", value)
			return
		}
		m.pane.GotoRow(row)
	}
}

// View implements tea.Model
func (m *Model) View() string {
	var builder strings.Builder

	builder.WriteString(m.pane.Render(m.width))
	builder.WriteString("\n")

	statusStyle := lipgloss.NewStyle().
		Background(lipgloss.Color(m.config.Theme.StatusBar)).
		Foreground(lipgloss.Color(m.config.Theme.StatusBarText)).
		Width(m.width)

	var status string
	switch m.mode {
	case ModeFilter:
		status = "/" + m.input.View()
	case ModeWhere:
		status = "where " + m.input.View()
	case ModeGoto:
		status = ":" + m.input.View()
	default:
		status = m.statusLine()
	}

	builder.WriteString(statusStyle.Render(status))
	builder.WriteString("\n")
	builder.WriteString(m.help.View(m.keys))

	return builder.String()
}

func (m *Model) statusLine() string {
	shown, total := m.pane.Counts()
	parts := []string{" " + m.pane.Filename(), fmt.Sprintf("%d/%d", shown, total)}

	if level, ok := m.pane.MinLevel(); ok && level != texlog.LevelDebug {
		parts = append(parts, ">="+level.String())
	}
	if term := m.pane.FilterTerm(); term != "" {
		parts = append(parts, fmt.Sprintf("[%s]", term))
	}
	if where := m.pane.Where(); where != "" {
		parts = append(parts, "where "+where)
	}

	summary := m.pane.Summary()
	switch {
	case summary.HasOutput():
		parts = append(parts, fmt.Sprintf("%d pages", summary.Pages))
	case summary.NoOutput:
		parts = append(parts, "no output")
	}
	if summary.NeedsRerun {
		parts = append(parts, "rerun")
	}
	if m.following {
		parts = append(parts, "following")
	}
	if m.pane.Focus() == FocusLog {
		parts = append(parts, fmt.Sprintf("log %.0f%%", m.pane.Active().PercentScrolled()))
	}

	switch {
	case m.err != nil:
		parts = append(parts, "error: "+m.err.Error())
	case m.message != "":
		parts = append(parts, m.message)
	}
	return strings.Join(parts, "  ")
}

// Pane returns the model's pane
func (m *Model) Pane() *Pane {
	return m.pane
}

// Mode returns the current input mode
func (m *Model) Mode() Mode {
	return m.mode
}

// Err returns the last error shown in the status bar
func (m *Model) Err() error {
	return m.err
}

// Close cleans up resources
func (m *Model) Close() error {
	return m.pane.Close()
}
