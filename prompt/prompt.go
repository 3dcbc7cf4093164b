// Package prompt is an interactive terminal front end: type a player name,
// press enter, read the report.
package prompt

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/brensch/shottree/analysis"
	"github.com/brensch/shottree/shotlog"
	"github.com/brensch/shottree/taxonomy"
)

// Runner produces a rendered report for one player.
type Runner func(ctx context.Context, player string) (string, error)

// FromPipeline runs p over src for each query.
func FromPipeline(p *analysis.Pipeline, src shotlog.Source, tax *taxonomy.Taxonomy) Runner {
	return FromLookup(p, func(string) shotlog.Source { return src }, tax)
}

// FromLookup runs p over the source lookup returns for each queried player.
func FromLookup(p *analysis.Pipeline, lookup func(player string) shotlog.Source, tax *taxonomy.Taxonomy) Runner {
	return func(ctx context.Context, player string) (string, error) {
		res, err := p.Run(ctx, player, lookup(player))
		if err != nil {
			return "", err
		}
		if res.Ingested == 0 {
			return "no shots found for " + player + "\n", nil
		}
		return analysis.RenderReport(res, tax), nil
	}
}

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type reportMsg struct {
	player string
	report string
	err    error
}

type Model struct {
	ctx     context.Context
	run     Runner
	input   textinput.Model
	running string
	report  string
	err     error
}

func New(ctx context.Context, run Runner) Model {
	ti := textinput.New()
	ti.Placeholder = "player name"
	ti.Prompt = promptStyle.Render("player> ")
	ti.CharLimit = 64
	ti.Focus()
	return Model{ctx: ctx, run: run, input: ti}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) query(player string) tea.Cmd {
	ctx, run := m.ctx, m.run
	return func() tea.Msg {
		report, err := run(ctx, player)
		return reportMsg{player: player, report: report, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			player := strings.TrimSpace(m.input.Value())
			if player == "" || m.running != "" {
				return m, nil
			}
			m.running = player
			m.err = nil
			return m, m.query(player)
		}
		// q quits only from an empty prompt so names containing q can be typed.
		if msg.String() == "q" && m.input.Value() == "" {
			return m, tea.Quit
		}
	case reportMsg:
		m.running = ""
		m.report, m.err = msg.report, msg.err
		if msg.err == nil {
			m.input.Reset()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	switch {
	case m.running != "":
		b.WriteString("running " + m.running + "...\n")
	case m.err != nil:
		b.WriteString(errStyle.Render("error: "+m.err.Error()) + "\n")
	case m.report != "":
		b.WriteString(m.report)
	}
	b.WriteString(helpStyle.Render("\nenter to search, q on an empty prompt or ctrl+c to quit\n"))
	return b.String()
}

// Report is the last rendered report.
func (m Model) Report() string { return m.report }

// Err is the error from the last query, if any.
func (m Model) Err() error { return m.err }
