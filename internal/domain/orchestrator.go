package domain

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	m "covforge.dev/pkg/covforge/internal/model"

	"covforge.dev/pkg/covforge/internal/adapter"
	"covforge.dev/pkg/covforge/pkg"
)

// Orchestrator runs one build-and-measure pass: write every scenario to its
// own isolated directory, compile it against the project sources, execute
// it under a timeout and capture its coverage trace.
type Orchestrator interface {
	Probe(ctx context.Context) error
	MeasurePass(ctx context.Context, pass int, scenarios []m.TestScenario, layout adapter.ProjectLayout) ([]m.TestScenario, []m.FileTrace, error)
}

type orchestrator struct {
	adapter.SourceFSAdapter
	toolchain adapter.ToolchainAdapter
	traces    adapter.TraceStore
	cfg       m.EngineConfig
}

func NewOrchestrator(fs adapter.SourceFSAdapter, toolchain adapter.ToolchainAdapter, traces adapter.TraceStore, cfg m.EngineConfig) Orchestrator {
	return &orchestrator{
		SourceFSAdapter: fs,
		toolchain:       toolchain,
		traces:          traces,
		cfg:             cfg.Normalize(),
	}
}

func (o *orchestrator) Probe(ctx context.Context) error {
	return o.toolchain.Probe(ctx)
}

// outcome is the spillable record of one scenario's compile-and-run.
type outcome struct {
	Scenario m.TestScenario
	Traces   []m.FileTrace
}

// MeasurePass executes every scenario of one pass. Each scenario gets a
// private directory under the pass directory so its gcov counters never mix
// with another scenario's; the pass directory itself is reset first because
// counters accumulate additively across runs that share output files.
func (o *orchestrator) MeasurePass(ctx context.Context, pass int, scenarios []m.TestScenario, layout adapter.ProjectLayout) ([]m.TestScenario, []m.FileTrace, error) {
	passDir := o.JoinPath(string(o.cfg.OutputDir), fmt.Sprintf("pass_%d", pass))
	if err := o.ResetDir(ctx, passDir); err != nil {
		return nil, nil, fmt.Errorf("reset pass directory: %w", err)
	}

	spill, err := pkg.NewFileSpill[outcome](string(passDir))
	if err != nil {
		return nil, nil, fmt.Errorf("open outcome spill: %w", err)
	}
	defer func() { _ = spill.Close() }()

	var mu sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(o.cfg.Workers)

	for _, sc := range scenarios {
		sc := sc
		group.Go(func() error {
			result := o.runScenario(groupCtx, passDir, sc, layout)

			mu.Lock()
			defer mu.Unlock()

			return spill.Append(result)
		})
	}

	if err := group.Wait(); err != nil {
		return nil, nil, err
	}

	annotated := make([]m.TestScenario, 0, len(scenarios))

	var groups [][]m.FileTrace

	err = spill.Range(func(_ uint64, item outcome) error {
		annotated = append(annotated, item.Scenario)
		if len(item.Traces) > 0 {
			groups = append(groups, item.Traces)
		}

		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("collect outcomes: %w", err)
	}

	return annotated, MergeTraces(groups...), nil
}

// runScenario performs one scenario's write, compile, run and capture.
// Every failure is recorded on the scenario rather than returned, so a bad
// scenario never aborts the batch.
func (o *orchestrator) runScenario(ctx context.Context, passDir m.Path, sc m.TestScenario, layout adapter.ProjectLayout) outcome {
	log := slog.With("scenario", sc.ID)

	workDir := o.JoinPath(string(passDir), sc.ID)
	if err := o.ResetDir(ctx, workDir); err != nil {
		log.Error("scenario directory reset failed", "error", err)
		sc.Output = err.Error()

		return outcome{Scenario: sc}
	}

	sc.SourceFile = o.JoinPath(string(workDir), sc.ID+".cpp")
	sc.BinaryPath = o.JoinPath(string(workDir), sc.ID)

	if err := o.WriteFile(ctx, sc.SourceFile, []byte(sc.Body), 0o644); err != nil {
		log.Error("scenario write failed", "error", err)
		sc.Output = err.Error()

		return outcome{Scenario: sc}
	}

	diag, err := o.toolchain.Compile(ctx, adapter.CompileRequest{
		ScenarioFile: sc.SourceFile,
		OutputBinary: sc.BinaryPath,
		Sources:      layout.Sources,
		IncludeDirs:  layout.IncludeDirs,
		WorkDir:      workDir,
	})
	if err != nil {
		log.Debug("scenario compile failed", "diagnostics", diag)
		sc.Output = diag

		return outcome{Scenario: sc}
	}

	sc.Compiled = true

	run, err := o.toolchain.Run(ctx, sc.BinaryPath, o.cfg.ScenarioTimeout)
	if err != nil {
		log.Error("scenario execution failed to start", "error", err)
		sc.Output = err.Error()

		return outcome{Scenario: sc}
	}

	sc.Output = run.Output
	sc.TimedOut = run.TimedOut
	sc.Passed = !run.TimedOut && !run.Failed

	// Timeouts leave inconsistent counters behind; their traces are
	// excluded from aggregation.
	if run.TimedOut {
		log.Warn("scenario timed out", "timeout", o.cfg.ScenarioTimeout)

		return outcome{Scenario: sc}
	}

	traceFile := o.JoinPath(string(workDir), "coverage.info")
	if err := o.toolchain.Capture(ctx, workDir, traceFile); err != nil {
		log.Warn("coverage capture failed", "error", err)

		return outcome{Scenario: sc}
	}

	traces, err := o.traces.LoadTrace(traceFile)
	if err != nil {
		log.Warn("trace parse failed", "error", err)

		return outcome{Scenario: sc}
	}

	return outcome{Scenario: sc, Traces: traces}
}
