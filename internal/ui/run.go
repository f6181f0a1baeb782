// Package ui renders live progress for machine runs.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Event reports one program's status change.
type Event struct {
	Program string
	Status  string // "running", "ok", "failed"
	Detail  string // result or fault text
}

type runItem struct {
	name   string
	status string
	detail string
}

type eventMsg Event
type doneMsg struct{}

type runModel struct {
	title   string
	events  <-chan Event
	spinner spinner.Model
	prog    progress.Model
	items   []runItem
	index   map[string]int
	width   int
	done    bool
}

// NewRunModel returns a Bubble Tea model that renders run progress for
// the named programs, fed by events.
func NewRunModel(title string, names []string, events <-chan Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	pr := progress.New(progress.WithDefaultGradient())
	pr.Width = 76

	items := make([]runItem, 0, len(names))
	index := make(map[string]int, len(names))
	for i, name := range names {
		items = append(items, runItem{name: name, status: "queued"})
		index[name] = i
	}
	return &runModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    pr,
		items:   items,
		index:   index,
		width:   80,
	}
}

func (m *runModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *runModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		if i, ok := m.index[msg.Program]; ok {
			m.items[i].status = msg.Status
			m.items[i].detail = msg.Detail
		}
		return m, m.listenForEvent()
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		pm, cmd := m.prog.Update(msg)
		m.prog = pm.(progress.Model)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *runModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if m.done {
		header = fmt.Sprintf("done: %s", header)
	} else {
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	statusWidth := 8
	nameWidth := 16
	finished := 0
	for _, item := range m.items {
		if item.status == "ok" || item.status == "failed" {
			finished++
		}
		statusStyled := styleStatus(item.status).Render(fmt.Sprintf("%*s", statusWidth, item.status))
		line := fmt.Sprintf("  %s %s %s", statusStyled, pad(item.name, nameWidth), truncate(item.detail, m.width-statusWidth-nameWidth-6))
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	ratio := float64(finished) / float64(len(m.items))
	b.WriteString(m.prog.ViewAs(ratio))
	b.WriteString("\n")
	return b.String()
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "ok":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "failed":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case "running":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	}
}

func pad(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}
