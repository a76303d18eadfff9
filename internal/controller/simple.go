package controller

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "covforge.dev/pkg/covforge/internal/model"
)

// SimpleUI implements UI using cobra Command's output writer.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, _ ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// Wait blocks until the UI is closed (no-op for SimpleUI).
func (s *SimpleUI) Wait(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
	// SimpleUI doesn't block - it just prints and continues
}

// DisplayAnalysis prints the discovered types and free functions, or the
// analysis error.
func (s *SimpleUI) DisplayAnalysis(ctx context.Context, model m.ProjectModel, err error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err != nil {
		s.printf("analysis error: %v\n", err)
		return err
	}

	s.printf("\n%s", renderAnalysisTable(model))

	return nil
}

func renderAnalysisTable(model m.ProjectModel) string {
	sorted := make([]m.TypeRecord, len(model.Types))
	copy(sorted, model.Types)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Type", "Header", "Methods", "Constructors"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER,
	})

	totalMethods := 0

	for _, rec := range sorted {
		name := rec.Name
		if rec.IsAbstract {
			name += " (abstract)"
		}

		table.Append([]string{
			name,
			string(rec.HeaderFile),
			fmt.Sprintf("%d", len(rec.Methods)),
			fmt.Sprintf("%d", len(rec.Constructors)),
		})

		totalMethods += len(rec.Methods)
	}

	for _, fn := range model.Functions {
		table.Append([]string{
			fn.Name + " (free function)",
			string(fn.HeaderFile),
			"-", "-",
		})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Types %d", len(sorted)), "",
		fmt.Sprintf("%d", totalMethods), "",
	})

	table.Render()

	return tableBuffer.String()
}

// DisplayPassStart announces one build-and-measure pass.
func (s *SimpleUI) DisplayPassStart(ctx context.Context, pass int, scenarios int, workers int) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Pass %d: building %d scenario(s) with %d worker(s)\n", pass, scenarios, workers)
}

// DisplayScenario shows one scenario outcome.
func (s *SimpleUI) DisplayScenario(ctx context.Context, scenario m.TestScenario) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("  %s -> %s\n", scenario.ID, scenarioStatus(scenario))
}

func scenarioStatus(scenario m.TestScenario) string {
	switch {
	case !scenario.Compiled:
		return "compile failed"
	case scenario.TimedOut:
		return "timed out"
	case !scenario.Passed:
		return "failed"
	default:
		return "passed"
	}
}

// DisplayPassSummary prints the coverage table for one finished pass.
func (s *SimpleUI) DisplayPassSummary(ctx context.Context, record m.PassRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Function", "Lines", "Hit", "Coverage"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER,
	})

	for _, fact := range record.Facts {
		table.Append([]string{
			fact.Function,
			fmt.Sprintf("%d", fact.LinesFound),
			fmt.Sprintf("%d", fact.LinesHit),
			fmt.Sprintf("%.1f%%", fact.Percentage),
		})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Pass %d", record.Pass),
		fmt.Sprintf("%d scenarios", record.ScenarioCount),
		fmt.Sprintf("%d compiled", record.CompiledCount),
		fmt.Sprintf("%.1f%%", record.Aggregate),
	})

	table.Render()
	s.printf("\n%s", tableBuffer.String())

	return nil
}

// DisplayFinal prints the pass history and the stop reason.
func (s *SimpleUI) DisplayFinal(ctx context.Context, history []m.PassRecord, reason m.StopReason) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, record := range history {
		s.printf("Pass %d: coverage %.1f%% (%d/%d scenarios passed, %d timed out)\n",
			record.Pass, record.Aggregate,
			record.PassedCount, record.ScenarioCount, record.TimedOutCount)
	}

	s.printf("Stopped: %s\n", reason)

	if len(history) > 0 {
		last := history[len(history)-1]
		s.printf("Final coverage: %.2f%%\n", last.Aggregate)

		if len(last.Excluded) > 0 {
			s.printf("Untestable targets excluded: %s\n", strings.Join(last.Excluded, ", "))
		}
	}

	return nil
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
