// Package ui renders a live view of declarations moving through the
// pipeline states.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"cstar/internal/pipeline"
)

type progressModel struct {
	title      string
	events     <-chan pipeline.Event
	spinner    spinner.Model
	prog       progress.Model
	items      []declItem
	index      map[string]int
	stageLabel string
	width      int
	done       bool
}

type declItem struct {
	name  string
	state pipeline.State
	seen  bool
}

type eventMsg pipeline.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders per-declaration
// pipeline states. decls fixes the row order; events must be closed when
// the run ends.
func NewProgressModel(title string, decls []string, events <-chan pipeline.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	items := make([]declItem, 0, len(decls))
	index := make(map[string]int, len(decls))
	for _, name := range decls {
		if _, dup := index[name]; dup {
			continue
		}
		index[name] = len(items)
		items = append(items, declItem{name: name, state: pipeline.StateDeclared})
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		index:   index,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(pipeline.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
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
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if m.stageLabel != "" {
		header = fmt.Sprintf("%s (%s)", header, m.stageLabel)
	}
	if m.done {
		header = fmt.Sprintf("done: %s", header)
	} else {
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	statusWidth := 20
	nameWidth := max(m.width-statusWidth-4, 20)
	for _, item := range m.items {
		label := item.state.String()
		styled := styleState(item.state).Render(fmt.Sprintf("%*s", statusWidth, label))
		fmt.Fprintf(&b, "  %s %s\n", styled, truncate(item.name, nameWidth))
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.ViewAs(m.percent()))
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev pipeline.Event) tea.Cmd {
	if ev.Decl == "" {
		if ev.Status == pipeline.StatusWorking {
			m.stageLabel = stageLabel(ev.Stage)
		}
		return nil
	}
	idx, ok := m.index[ev.Decl]
	if !ok {
		return nil
	}
	// duplicates share a row; a failure is never overwritten
	if it := &m.items[idx]; !it.seen || !it.state.Terminal() {
		it.state = ev.State
		it.seen = true
	}
	return m.prog.SetPercent(m.percent())
}

func (m *progressModel) percent() float64 {
	if len(m.items) == 0 {
		return 0
	}
	total := 0.0
	for _, item := range m.items {
		total += progressFromState(item.state)
	}
	return total / float64(len(m.items))
}

func progressFromState(st pipeline.State) float64 {
	switch st {
	case pipeline.StateTypeResolved:
		return 0.4
	case pipeline.StateGenericInstantiated:
		return 0.6
	case pipeline.StateInterfaceLowered:
		return 0.8
	case pipeline.StateReadyForEmission, pipeline.StateFailed, pipeline.StateBlocked:
		return 1.0
	default:
		return 0.0
	}
}

func stageLabel(stage pipeline.Stage) string {
	switch stage {
	case pipeline.StageSymbols:
		return "declaring"
	case pipeline.StageSignatures, pipeline.StageResolve:
		return "resolving"
	case pipeline.StageMono:
		return "instantiating"
	case pipeline.StageDispatch:
		return "lowering"
	case pipeline.StageIR:
		return "emitting"
	default:
		return ""
	}
}

func styleState(st pipeline.State) lipgloss.Style {
	switch st {
	case pipeline.StateReadyForEmission:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case pipeline.StateFailed:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case pipeline.StateBlocked:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	case pipeline.StateDeclared:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
