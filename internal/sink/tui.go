package sink

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"countdowntray/internal/display"
)

// KeyMap holds the badge's key bindings.
type KeyMap struct {
	Quit key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "exit"),
		),
	}
}

// ShortHelp lists the bindings shown under the badge.
func (k KeyMap) ShortHelp() []key.Binding { return []key.Binding{k.Quit} }

type (
	valueMsg display.Value
	dueMsg   time.Time
	stopMsg  struct{}
)

var (
	badgeStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#45475A")).
			Foreground(lipgloss.Color("#CDD6F4")).
			Bold(true).
			Width(8).
			Align(lipgloss.Center)
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED")).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
	unitStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4"))
)

// Model is the bubbletea model behind the terminal badge: the current
// number, its unit, and a single Exit binding.
type Model struct {
	title   string
	keys    KeyMap
	onQuit  func()
	value   display.Value
	hasVal  bool
	due     time.Time
	stopped bool
}

func NewModel(title string, onQuit func()) Model {
	return Model{title: title, keys: DefaultKeyMap(), onQuit: onQuit}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case valueMsg:
		m.value = display.Value(msg)
		m.hasVal = true
		return m, nil
	case dueMsg:
		m.due = time.Time(msg)
		return m, nil
	case stopMsg:
		m.stopped = true
		return m, tea.Quit
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.stopped = true
			if m.onQuit != nil {
				// Off the event loop: the exit action sends back into this program.
				go m.onQuit()
			}
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) View() string {
	if m.stopped {
		return ""
	}
	num := "…"
	unit := ""
	if m.hasVal {
		num = m.value.String()
		unit = unitLabel(m.value.Tier)
	}

	var b strings.Builder
	if m.title != "" {
		b.WriteString(titleStyle.Render(m.title))
		b.WriteByte('\n')
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, badgeStyle.Render(num), " ", unitStyle.Render(unit)))
	b.WriteByte('\n')
	if !m.due.IsZero() {
		b.WriteString(mutedStyle.Render("due " + m.due.Format("Mon Jan 2 15:04")))
		b.WriteByte('\n')
	}
	help := m.keys.ShortHelp()[0].Help()
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%s %s", help.Key, help.Desc)))
	b.WriteByte('\n')
	return b.String()
}

func unitLabel(t display.Tier) string {
	switch t {
	case display.TierDays:
		return "days"
	case display.TierRoundedHours, display.TierFractionalHours:
		return "hours"
	default:
		return "min"
	}
}

// TUI shows the countdown as a terminal badge. It owns the host thread:
// Run blocks until the badge closes.
type TUI struct {
	prog *tea.Program
}

// TUIOptions configures NewTUI. Input and Output default to the terminal.
type TUIOptions struct {
	Title  string
	OnQuit func()
	Input  io.Reader
	Output io.Writer
}

func NewTUI(opts TUIOptions) *TUI {
	var popts []tea.ProgramOption
	if opts.Input != nil {
		popts = append(popts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		popts = append(popts, tea.WithOutput(opts.Output))
	}
	return &TUI{prog: tea.NewProgram(NewModel(opts.Title, opts.OnQuit), popts...)}
}

// Run drives the terminal until the badge quits or ctx is done.
func (t *TUI) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, t.prog.Quit)
	defer stop()
	_, err := t.prog.Run()
	return err
}

func (t *TUI) Show(v display.Value) { t.prog.Send(valueMsg(v)) }

// SetDue updates the due line under the badge.
func (t *TUI) SetDue(due time.Time) { t.prog.Send(dueMsg(due)) }

func (t *TUI) Stop() { t.prog.Send(stopMsg{}) }
