package controller

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	m "covforge.dev/pkg/covforge/internal/model"
)

// TUI implements UI using Bubble Tea for interactive display.
type TUI struct {
	output  io.Writer
	target  float64
	program *tea.Program
	done    chan struct{}
	once    sync.Once
}

// NewTUI creates a new TUI. The target percentage drives the progress bar
// scale.
func NewTUI(output io.Writer, target float64) *TUI {
	return &TUI{output: output, target: target, done: make(chan struct{})}
}

// Start launches the Bubble Tea program in the background.
func (t *TUI) Start(ctx context.Context, _ ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	model := newRunModel(t.target)
	t.program = tea.NewProgram(model, tea.WithOutput(t.output))

	go func() {
		defer close(t.done)

		if _, err := t.program.Run(); err != nil {
			_, _ = fmt.Fprintf(t.output, "ui error: %v\n", err)
		}
	}()

	return nil
}

// Close shuts the program down.
func (t *TUI) Close(ctx context.Context) {
	if t.program == nil {
		return
	}

	t.once.Do(func() { t.program.Quit() })

	select {
	case <-t.done:
	case <-ctx.Done():
	}
}

// Wait blocks until the user closes the UI (press 'q').
func (t *TUI) Wait(ctx context.Context) {
	if t.program == nil {
		return
	}

	select {
	case <-t.done:
	case <-ctx.Done():
	}
}

func (t *TUI) send(msg tea.Msg) {
	if t.program != nil {
		t.program.Send(msg)
	}
}

// DisplayAnalysis forwards the discovered types and free functions to the
// model.
func (t *TUI) DisplayAnalysis(ctx context.Context, model m.ProjectModel, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	if err != nil {
		return err
	}

	t.send(analysisMsg{types: len(model.Types), functions: len(model.Functions)})

	return nil
}

// DisplayPassStart forwards the pass header to the model.
func (t *TUI) DisplayPassStart(ctx context.Context, pass int, scenarios int, workers int) {
	if err := ctx.Err(); err != nil {
		return
	}

	t.send(passStartMsg{pass: pass, scenarios: scenarios, workers: workers})
}

// DisplayScenario forwards one scenario outcome to the model.
func (t *TUI) DisplayScenario(ctx context.Context, scenario m.TestScenario) {
	if err := ctx.Err(); err != nil {
		return
	}

	t.send(scenarioMsg{scenario: scenario})
}

// DisplayPassSummary forwards the pass record to the model.
func (t *TUI) DisplayPassSummary(ctx context.Context, record m.PassRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.send(passDoneMsg{record: record})

	return nil
}

// DisplayFinal forwards the terminal summary to the model.
func (t *TUI) DisplayFinal(ctx context.Context, history []m.PassRecord, reason m.StopReason) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.send(finalMsg{history: history, reason: reason})

	return nil
}

// Messages exchanged between the UI facade and the model.
type (
	analysisMsg struct {
		types     int
		functions int
	}
	passStartMsg struct {
		pass      int
		scenarios int
		workers   int
	}
	scenarioMsg struct{ scenario m.TestScenario }
	passDoneMsg struct{ record m.PassRecord }
	finalMsg    struct {
		history []m.PassRecord
		reason  m.StopReason
	}
)

const recentScenarioLines = 8

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	legendStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
)

// runModel is the Bubble Tea model for a synthesis run.
type runModel struct {
	target    float64
	bar       progress.Model
	typeCount int
	fnCount   int
	pass      int
	scenarios int
	workers   int
	recent    []string
	history   []m.PassRecord
	aggregate float64
	reason    m.StopReason
	finished  bool
	quitting  bool
}

func newRunModel(target float64) runModel {
	bar := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(40),
	)

	return runModel{target: target, bar: bar}
}

func (rm runModel) Init() tea.Cmd {
	return nil
}

func (rm runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			rm.quitting = true
			return rm, tea.Quit
		}

		return rm, nil

	case analysisMsg:
		rm.typeCount = msg.types
		rm.fnCount = msg.functions

		return rm, nil

	case passStartMsg:
		rm.pass = msg.pass
		rm.scenarios = msg.scenarios
		rm.workers = msg.workers
		rm.recent = nil

		return rm, nil

	case scenarioMsg:
		rm.recent = append(rm.recent, renderScenarioLine(msg.scenario))
		if len(rm.recent) > recentScenarioLines {
			rm.recent = rm.recent[len(rm.recent)-recentScenarioLines:]
		}

		return rm, nil

	case passDoneMsg:
		rm.history = append(rm.history, msg.record)
		rm.aggregate = msg.record.Aggregate

		return rm, nil

	case finalMsg:
		rm.history = msg.history
		rm.reason = msg.reason
		rm.finished = true

		if n := len(msg.history); n > 0 {
			rm.aggregate = msg.history[n-1].Aggregate
		}

		return rm, nil
	}

	return rm, nil
}

func renderScenarioLine(sc m.TestScenario) string {
	switch {
	case !sc.Compiled:
		return failStyle.Render("✗ " + sc.ID + " (compile failed)")
	case sc.TimedOut:
		return failStyle.Render("✗ " + sc.ID + " (timed out)")
	case !sc.Passed:
		return failStyle.Render("✗ " + sc.ID + " (failed)")
	default:
		return okStyle.Render("✓ " + sc.ID)
	}
}

func (rm runModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("covforge · coverage-guided test synthesis"))
	b.WriteString("\n\n")

	if rm.typeCount > 0 || rm.fnCount > 0 {
		fmt.Fprintf(&b, "  %d type(s), %d free function(s) under test\n", rm.typeCount, rm.fnCount)
	}

	if rm.pass > 0 {
		b.WriteString("  " + passStyle.Render(fmt.Sprintf(
			"Pass %d: %d scenario(s), %d worker(s)", rm.pass, rm.scenarios, rm.workers)))
		b.WriteString("\n\n")
	}

	for _, line := range rm.recent {
		b.WriteString("  " + line + "\n")
	}

	if len(rm.recent) > 0 {
		b.WriteString("\n")
	}

	ratio := 0.0
	if rm.target > 0 {
		ratio = rm.aggregate / rm.target
	}

	if ratio > 1 {
		ratio = 1
	}

	fmt.Fprintf(&b, "  %s %.1f%% of %.0f%% target\n", rm.bar.ViewAs(ratio), rm.aggregate, rm.target)

	for _, record := range rm.history {
		b.WriteString(mutedStyle.Render(fmt.Sprintf(
			"  pass %d: %.1f%% (%d/%d passed)",
			record.Pass, record.Aggregate, record.PassedCount, record.ScenarioCount)))
		b.WriteString("\n")
	}

	if rm.finished {
		fmt.Fprintf(&b, "\n  Stopped: %s\n", rm.reason)

		if n := len(rm.history); n > 0 && len(rm.history[n-1].Excluded) > 0 {
			b.WriteString(failStyle.Render(
				"  untestable, excluded: " + strings.Join(rm.history[n-1].Excluded, ", ")))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n" + legendStyle.Render("  q: quit") + "\n")

	return b.String()
}
