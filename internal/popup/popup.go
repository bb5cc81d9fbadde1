// Package popup is the interactive terminal view of a single page analysis.
package popup

import (
	"context"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hyperifyio/termsense/internal/format"
	"github.com/hyperifyio/termsense/internal/page"
	"github.com/hyperifyio/termsense/internal/ui"
	"github.com/hyperifyio/termsense/internal/workflow"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	urlStyle    = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	keyStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	statusStyle = lipgloss.NewStyle().Italic(true).Faint(true)
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// Runner is the subset of the orchestrator the popup drives.
type Runner interface {
	Run(ctx context.Context, tab page.Tab) (workflow.Result, error)
	Reanalyze(ctx context.Context, tab page.Tab) (workflow.Result, error)
	Agree(ctx context.Context, tab page.Tab) error
}

type resultMsg struct{ res workflow.Result }

type agreeMsg struct{ err error }

// Model is the bubbletea model.
type Model struct {
	ctx     context.Context
	runner  Runner
	tab     page.Tab
	spinner spinner.Model

	state  ui.State
	body   string
	status string
	width  int
	copyFn func(string) error
}

// New returns a popup for tab. Opening it runs the workflow, so the model
// starts in flight.
func New(ctx context.Context, runner Runner, tab page.Tab) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return Model{
		ctx:     ctx,
		runner:  runner,
		tab:     tab,
		spinner: s,
		state:   ui.Derive(ui.Inputs{InFlight: true}),
		copyFn:  clipboard.WriteAll,
	}
}

// State exposes the current view state.
func (m Model) State() ui.State { return m.state }

// Init runs the workflow for the tab, which shows a stored analysis or the
// placeholder without any key press.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.runCmd(false))
}

func (m Model) runCmd(reanalyze bool) tea.Cmd {
	ctx, runner, tab := m.ctx, m.runner, m.tab
	return func() tea.Msg {
		var res workflow.Result
		if reanalyze {
			res, _ = runner.Reanalyze(ctx, tab)
		} else {
			res, _ = runner.Run(ctx, tab)
		}
		return resultMsg{res: res}
	}
}

func (m Model) agreeCmd() tea.Cmd {
	ctx, runner, tab := m.ctx, m.runner, m.tab
	return func() tea.Msg { return agreeMsg{err: runner.Agree(ctx, tab)} }
}

func (m Model) begin(reanalyze bool) (Model, tea.Cmd) {
	m.state = ui.Derive(ui.Inputs{InFlight: true})
	m.body = ""
	m.status = ""
	return m, tea.Batch(m.spinner.Tick, m.runCmd(reanalyze))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case spinner.TickMsg:
		if !m.state.InFlight {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case resultMsg:
		m.state = msg.res.View
		m.body = body(msg.res)
		return m, nil
	case agreeMsg:
		if msg.err != nil {
			m.status = "Agree failed: " + msg.err.Error()
		} else {
			m.status = "Agreement control clicked."
			m.state.ShowAgree, m.state.ShowDecline = false, false
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "s":
		if m.state.ShowStart {
			return m.begin(false)
		}
	case "r":
		if m.state.ShowReanalyze {
			return m.begin(true)
		}
	case "a":
		if m.state.ShowAgree {
			return m, m.agreeCmd()
		}
	case "d":
		if m.state.ShowDecline {
			m.state.ShowAgree, m.state.ShowDecline = false, false
			m.status = "Declined."
		}
	case "c":
		if text := m.copyText(); text != "" {
			if err := m.copyFn(text); err != nil {
				m.status = "Copy failed: " + err.Error()
			} else {
				m.status = "Summary copied to clipboard."
			}
		}
	}
	return m, nil
}

func (m Model) copyText() string {
	if m.state.InFlight {
		return ""
	}
	if m.body != "" {
		return m.body
	}
	return m.state.Summary
}

// body renders the result for a terminal. Stored records are re-rendered
// from the raw completion so scores are coloured.
func body(res workflow.Result) string {
	if res.Err != nil || res.Record == nil {
		return res.View.Summary
	}
	if strings.TrimSpace(res.Record.Raw) == "" {
		return res.View.Summary
	}
	return format.Terminal(format.Parse(res.Record.Raw))
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("termsense"))
	sb.WriteString("\n")
	sb.WriteString(urlStyle.Render("Current URL: " + m.tab.URL()))
	sb.WriteString("\n\n")

	switch {
	case m.state.InFlight:
		sb.WriteString(m.spinner.View() + " " + m.state.Summary)
	case m.state.IsError:
		sb.WriteString(errorStyle.Render(m.state.Summary))
	default:
		text := m.body
		if text == "" {
			text = m.state.Summary
		}
		if text != "" {
			box := boxStyle
			if m.width > 4 {
				box = box.Width(m.width - 4)
			}
			sb.WriteString(box.Render(text))
		}
	}
	if l := format.Links(m.state.Links); l != "" {
		sb.WriteString("\n\n")
		sb.WriteString(l)
	}
	sb.WriteString("\n\n")
	sb.WriteString(m.help())
	if m.status != "" {
		sb.WriteString("\n")
		sb.WriteString(statusStyle.Render(m.status))
	}
	sb.WriteString("\n")
	return sb.String()
}

func (m Model) help() string {
	var keys []string
	add := func(k, label string) { keys = append(keys, keyStyle.Render(k)+" "+label) }
	if m.state.ShowStart {
		add("s", "start")
	}
	if m.state.ShowReanalyze {
		add("r", "re-analyze")
	}
	if m.state.ShowAgree {
		add("a", "agree")
	}
	if m.state.ShowDecline {
		add("d", "decline")
	}
	if !m.state.InFlight && (m.body != "" || m.state.Summary != "") {
		add("c", "copy")
	}
	add("q", "quit")
	return strings.Join(keys, "  ")
}

// Run shows the popup until the user quits. A workflow still in flight at
// quit time keeps running on ctx and its result is discarded.
func Run(ctx context.Context, runner Runner, tab page.Tab) error {
	_, err := tea.NewProgram(New(ctx, runner, tab)).Run()
	return err
}
