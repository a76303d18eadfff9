package domain

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	m "covforge.dev/pkg/covforge/internal/model"

	"covforge.dev/pkg/covforge/internal/adapter"
	"covforge.dev/pkg/covforge/internal/controller"
)

// phase is one state of the iteration controller.
type phase int

const (
	phaseAnalyze phase = iota
	phaseSynthesize
	phaseBuildMeasure
	phaseEvaluate
	phaseStop
)

// RunArgs holds the parameters for the Run workflow.
type RunArgs struct {
	Root    m.Path
	Exclude []string
}

// ListArgs holds the parameters for the List workflow.
type ListArgs struct {
	Root    m.Path
	Exclude []string
}

// Workflow drives the full synthesis loop and the analysis listing.
type Workflow interface {
	Run(ctx context.Context, args RunArgs) error
	List(ctx context.Context, args ListArgs) error
}

type workflow struct {
	adapter.ReportStore
	controller.UI
	Analyzer
	Synthesizer
	Orchestrator

	cfg m.EngineConfig
}

// NewWorkflow creates a Workflow instance with the provided dependencies.
func NewWorkflow(
	reportStore adapter.ReportStore,
	ui controller.UI,
	analyzer Analyzer,
	synthesizer Synthesizer,
	orchestrator Orchestrator,
	cfg m.EngineConfig,
) Workflow {
	return &workflow{
		ReportStore:  reportStore,
		UI:           ui,
		Analyzer:     analyzer,
		Synthesizer:  synthesizer,
		Orchestrator: orchestrator,
		cfg:          cfg.Normalize(),
	}
}

// List analyzes the project and displays the discovered types without
// building anything.
func (w *workflow) List(ctx context.Context, args ListArgs) error {
	if err := w.Start(ctx, controller.WithListMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	model, _, err := w.AnalyzeProject(ctx, args.Root, args.Exclude...)

	if dispErr := w.DisplayAnalysis(ctx, model, err); dispErr != nil {
		return dispErr
	}

	w.Wait(ctx)

	return nil
}

// runState carries the mutable loop state across phases.
type runState struct {
	model      m.ProjectModel
	layout     adapter.ProjectLayout
	candidates []m.Target
	targets    []m.Target
	kind       m.ScenarioKind
	scenarios  []m.TestScenario
	allTraces  [][]m.FileTrace
	history    []m.PassRecord
	pass       int
	deltas     []float64
	reason     m.StopReason

	// untestable counts consecutive all-compile-failure passes per target;
	// targets over the cap are excluded from further synthesis.
	untestable map[string]int
	excluded   map[string]bool
}

// escalation is the scenario-kind ladder applied to under-covered targets on
// successive passes.
var escalation = []m.ScenarioKind{m.KindSmoke, m.KindMultiInvocation, m.KindBoundary}

// Run executes the full state machine:
// ANALYZE -> SYNTHESIZE -> BUILD_MEASURE -> EVALUATE -> {SYNTHESIZE | STOP}.
func (w *workflow) Run(ctx context.Context, args RunArgs) error {
	if err := w.Probe(ctx); err != nil {
		return err
	}

	if err := w.Start(ctx, controller.WithRunMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	state := &runState{
		kind:       m.KindSmoke,
		untestable: map[string]int{},
		excluded:   map[string]bool{},
	}

	current := phaseAnalyze

	for current != phaseStop {
		var err error

		switch current {
		case phaseAnalyze:
			current, err = w.analyze(ctx, args, state)
		case phaseSynthesize:
			current, err = w.synthesize(ctx, state)
		case phaseBuildMeasure:
			current, err = w.buildMeasure(ctx, state)
		case phaseEvaluate:
			current, err = w.evaluate(ctx, state)
		default:
			err = fmt.Errorf("unknown workflow phase %d", current)
		}

		if err != nil {
			return err
		}
	}

	// Untestable exclusions belong to the terminal record so the persisted
	// history and the final display both report them.
	if len(state.history) > 0 {
		state.history[len(state.history)-1].Excluded = excludedTargets(state)
	}

	if err := w.persist(state); err != nil {
		return err
	}

	if err := w.DisplayFinal(ctx, state.history, state.reason); err != nil {
		return err
	}

	w.Wait(ctx)

	return nil
}

func (w *workflow) analyze(ctx context.Context, args RunArgs, state *runState) (phase, error) {
	model, layout, err := w.AnalyzeProject(ctx, args.Root, args.Exclude...)
	if err != nil {
		return phaseStop, err
	}

	if len(model.Types) == 0 && len(model.Functions) == 0 {
		return phaseStop, m.ErrNoTypesFound
	}

	state.model = model
	state.layout = layout
	state.candidates = allTargets(model)

	if err := w.DisplayAnalysis(ctx, model, nil); err != nil {
		return phaseStop, err
	}

	return phaseSynthesize, nil
}

func allTargets(model m.ProjectModel) []m.Target {
	var out []m.Target

	for _, rec := range model.Types {
		for _, method := range rec.Methods {
			if method.Access != m.AccessPublic || method.IsDestructor {
				continue
			}

			out = append(out, m.Target{TypeName: rec.Name, MethodName: method.Name})
		}
	}

	for _, fn := range model.Functions {
		out = append(out, m.Target{MethodName: fn.Name})
	}

	return out
}

func (w *workflow) synthesize(ctx context.Context, state *runState) (phase, error) {
	targets := make([]m.Target, 0, len(state.targets))

	for _, t := range state.targets {
		if !state.excluded[t.Key()] {
			targets = append(targets, t)
		}
	}

	if state.pass > 0 && len(targets) == 0 {
		state.reason = m.StopNoTargets
		return phaseStop, nil
	}

	scenarios, err := w.Synthesize(ctx, state.model, targets, state.kind)
	if err != nil {
		return phaseStop, err
	}

	state.scenarios = scenarios

	return phaseBuildMeasure, nil
}

func (w *workflow) buildMeasure(ctx context.Context, state *runState) (phase, error) {
	state.pass++
	w.DisplayPassStart(ctx, state.pass, len(state.scenarios), w.cfg.Workers)

	annotated, traces, err := w.MeasurePass(ctx, state.pass, state.scenarios, state.layout)
	if err != nil {
		return phaseStop, err
	}

	state.scenarios = annotated
	if len(traces) > 0 {
		state.allTraces = append(state.allTraces, traces)
	}

	for _, sc := range annotated {
		w.DisplayScenario(ctx, sc)
	}

	record := w.record(state)
	state.history = append(state.history, record)

	if err := w.SaveScenarios(w.cfg.OutputDir, annotated); err != nil {
		return phaseStop, fmt.Errorf("save scenarios: %w", err)
	}

	if err := w.DisplayPassSummary(ctx, record); err != nil {
		return phaseStop, err
	}

	return phaseEvaluate, nil
}

// record builds the pass history entry from the cumulative trace union, so
// the aggregate never regresses when a later pass exercises fewer lines.
func (w *workflow) record(state *runState) m.PassRecord {
	merged := MergeTraces(state.allTraces...)

	record := m.PassRecord{
		Pass:          state.pass,
		Aggregate:     AggregatePercent(merged),
		ScenarioCount: len(state.scenarios),
		Facts:         CoverageFacts(merged),
	}

	for _, sc := range state.scenarios {
		if sc.Compiled {
			record.CompiledCount++
		}

		if sc.Passed {
			record.PassedCount++
		}

		if sc.TimedOut {
			record.TimedOutCount++
		}
	}

	return record
}

func (w *workflow) evaluate(ctx context.Context, state *runState) (phase, error) {
	latest := state.history[len(state.history)-1]

	if len(state.history) > 1 {
		prev := state.history[len(state.history)-2]
		state.deltas = append(state.deltas, latest.Aggregate-prev.Aggregate)
	}

	w.trackUntestable(state)

	switch {
	case latest.Aggregate >= w.cfg.TargetCoverage:
		state.reason = m.StopTargetMet
		return phaseStop, nil
	case state.pass >= w.cfg.MaxPasses:
		state.reason = m.StopPassCap
		return phaseStop, nil
	case plateaued(state.deltas, w.cfg.PlateauDelta):
		state.reason = m.StopPlateau
		return phaseStop, nil
	}

	// Honor cancellation between passes only; the pass that just ran was
	// always allowed to finish.
	if err := ctx.Err(); err != nil {
		state.reason = m.StopCancelled
		return phaseStop, nil
	}

	state.targets = SelectUnderCovered(latest.Facts, state.candidates, w.cfg.TargetCoverage, w.cfg.BatchSize)
	if len(state.targets) == 0 {
		state.reason = m.StopNoTargets
		return phaseStop, nil
	}

	state.kind = nextKind(state.kind)

	return phaseSynthesize, nil
}

// trackUntestable marks targets whose every scenario failed to compile this
// pass; after as many consecutive failures as the pass cap allows they are
// excluded from further synthesis.
func (w *workflow) trackUntestable(state *runState) {
	compiledAny := map[string]bool{}
	attempted := map[string]bool{}

	for _, sc := range state.scenarios {
		key := sc.Target.Key()
		attempted[key] = true

		if sc.Compiled {
			compiledAny[key] = true
		}
	}

	for key := range attempted {
		if compiledAny[key] {
			state.untestable[key] = 0
			continue
		}

		state.untestable[key]++
		if state.untestable[key] >= w.cfg.MaxPasses && !state.excluded[key] {
			slog.Warn("target is untestable by automation, excluding", "target", key)
			state.excluded[key] = true
		}
	}
}

// excludedTargets lists the untestable exclusions in stable order.
func excludedTargets(state *runState) []string {
	if len(state.excluded) == 0 {
		return nil
	}

	out := make([]string, 0, len(state.excluded))
	for key := range state.excluded {
		out = append(out, key)
	}

	sort.Strings(out)

	return out
}

// plateaued reports whether the last two coverage deltas are both below the
// threshold.
func plateaued(deltas []float64, threshold float64) bool {
	if len(deltas) < 2 {
		return false
	}

	last := deltas[len(deltas)-1]
	prev := deltas[len(deltas)-2]

	return last < threshold && prev < threshold
}

// nextKind advances the escalation ladder, staying on the last rung once
// reached.
func nextKind(kind m.ScenarioKind) m.ScenarioKind {
	for i, k := range escalation {
		if k == kind && i+1 < len(escalation) {
			return escalation[i+1]
		}
	}

	return escalation[len(escalation)-1]
}

func (w *workflow) persist(state *runState) error {
	if err := w.SaveHistory(w.cfg.OutputDir, state.history); err != nil {
		return fmt.Errorf("save history: %w", err)
	}

	return nil
}
