// Package ui provides the interactive terminal view shown while a
// comparison is in flight.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/quorumkit/quorum/pkg/quorum"
)

// Comparer runs one comparison; *quorum.Engine satisfies it.
type Comparer interface {
	Run(ctx context.Context, prompt string, specs []quorum.ModelSpec, mode quorum.Mode) (quorum.ComparisonResult, error)
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	modelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	faintStyle = lipgloss.NewStyle().Faint(true)
)

type compareDoneMsg struct {
	result quorum.ComparisonResult
	err    error
}

type tickMsg time.Time

type model struct {
	spinner spinner.Model
	specs   []quorum.ModelSpec
	mode    quorum.Mode
	start   time.Time
	elapsed time.Duration

	done    bool
	result  quorum.ComparisonResult
	err     error
	aborted bool
}

func newModel(specs []quorum.ModelSpec, mode quorum.Mode) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return model{
		spinner: s,
		specs:   specs,
		mode:    mode,
		start:   time.Now(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tick())
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.aborted = true
			return m, tea.Quit
		}
		return m, nil

	case compareDoneMsg:
		m.done = true
		m.result = msg.result
		m.err = msg.err
		m.elapsed = time.Since(m.start)
		return m, tea.Quit

	case tickMsg:
		m.elapsed = time.Since(m.start)
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m model) View() string {
	if m.done || m.aborted {
		return ""
	}

	var b strings.Builder

	verb := "Selecting the best of"
	if m.mode == quorum.ModeBlend {
		verb = "Blending"
	}
	fmt.Fprintf(&b, "%s %s %d responses %s\n\n",
		m.spinner.View(),
		titleStyle.Render(verb),
		len(m.specs),
		faintStyle.Render(fmt.Sprintf("(%s)", m.elapsed.Round(100*time.Millisecond))),
	)

	for _, spec := range m.specs {
		fmt.Fprintf(&b, "  %s %s\n",
			modelStyle.Render(spec.Provider),
			faintStyle.Render(spec.Model),
		)
	}

	b.WriteString(faintStyle.Render("\n(esc to cancel)\n"))
	return b.String()
}

// RunCompare runs the comparison while showing a progress view, and
// returns the result once the pipeline finishes. Cancelling the view
// cancels the underlying provider calls.
func RunCompare(ctx context.Context, engine Comparer, prompt string, specs []quorum.ModelSpec, mode quorum.Mode) (quorum.ComparisonResult, error) {
	if len(specs) == 0 {
		specs = quorum.DefaultSpecs()
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newModel(specs, mode))

	go func() {
		result, err := engine.Run(runCtx, prompt, specs, mode)
		p.Send(compareDoneMsg{result: result, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return quorum.ComparisonResult{}, err
	}

	m := final.(model)
	if m.aborted {
		cancel()
		return quorum.ComparisonResult{}, context.Canceled
	}
	return m.result, m.err
}
