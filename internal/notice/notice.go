// Package notice shows blocking messages to the person running a batch.
package notice

import (
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	ModeAuto    = "auto"
	ModeModal   = "modal"
	ModeConsole = "console"
)

// Notifier reports a message and returns once the user has seen it.
type Notifier interface {
	Notify(title, message string)
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	panelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// New picks the notifier for mode. Auto uses the modal only on an interactive terminal.
func New(mode string, w io.Writer) Notifier {
	console := Console{W: w}
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case ModeConsole:
		return console
	case ModeModal:
		return Modal{Fallback: console}
	default:
		if IsTerminal() {
			return Modal{Fallback: console}
		}
		return console
	}
}

func IsTerminal() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

// Console prints a styled panel and does not wait.
type Console struct {
	W io.Writer
}

func (c Console) Notify(title, message string) {
	w := c.W
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintln(w, render(title, message, ""))
}

// Modal runs a small bubbletea program that blocks until the message is confirmed.
type Modal struct {
	Fallback Notifier
}

func (m Modal) Notify(title, message string) {
	p := tea.NewProgram(newModalModel(title, message))
	if _, err := p.Run(); err != nil && m.Fallback != nil {
		m.Fallback.Notify(title, message)
	}
}

type modalModel struct {
	title   string
	message string
	width   int
	done    bool
}

func newModalModel(title, message string) modalModel {
	return modalModel{title: title, message: message}
}

func (m modalModel) Init() tea.Cmd {
	return nil
}

func (m modalModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "esc", "q", " ", "ctrl+c":
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m modalModel) View() string {
	if m.done {
		return render(m.title, m.message, "") + "\n"
	}
	return render(m.title, m.message, "press enter to continue") + "\n"
}

func render(title, message, hint string) string {
	parts := []string{titleStyle.Render(title), message}
	if hint != "" {
		parts = append(parts, mutedStyle.Render(hint))
	}
	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
