package adapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	m "covforge.dev/pkg/covforge/internal/model"
)

// CompileRequest describes one scenario compilation unit: the generated test
// file linked against the project sources under coverage instrumentation.
type CompileRequest struct {
	ScenarioFile m.Path
	OutputBinary m.Path
	Sources      []m.Path
	IncludeDirs  []m.Path
	WorkDir      m.Path
}

// RunResult is the outcome of executing a compiled scenario binary.
type RunResult struct {
	Output   string
	TimedOut bool
	Failed   bool
}

// ToolchainAdapter abstracts the compiled-language toolchain: probing for
// availability, compiling instrumented binaries, executing them with a
// bounded timeout and capturing lcov-format traces.
type ToolchainAdapter interface {
	// Probe verifies the compiler and the coverage tool can be invoked.
	// Returns model.ErrToolchainUnavailable when they cannot.
	Probe(ctx context.Context) error

	// Compile builds one scenario executable. The returned output holds
	// the compiler diagnostics on failure.
	Compile(ctx context.Context, req CompileRequest) (string, error)

	// Run executes a compiled scenario binary. A deadline overrun is
	// reported as TimedOut, not as an error.
	Run(ctx context.Context, binary m.Path, timeout time.Duration) (RunResult, error)

	// Capture collects the coverage counters written under workDir into
	// an lcov trace file at outFile.
	Capture(ctx context.Context, workDir, outFile m.Path) error
}

// LocalToolchainAdapter shells out to g++ and lcov.
type LocalToolchainAdapter struct {
	compiler   string
	lcov       string
	cxxStd     string
	extraFlags []string
}

// NewLocalToolchainAdapter constructs a LocalToolchainAdapter from the
// engine configuration.
func NewLocalToolchainAdapter(cfg m.EngineConfig) *LocalToolchainAdapter {
	cfg = cfg.Normalize()

	return &LocalToolchainAdapter{
		compiler:   cfg.Compiler,
		lcov:       cfg.LcovBin,
		cxxStd:     cfg.CxxStd,
		extraFlags: cfg.ExtraFlags,
	}
}

// Probe verifies the compiler and lcov respond to --version.
func (a *LocalToolchainAdapter) Probe(ctx context.Context) error {
	for _, bin := range []string{a.compiler, a.lcov} {
		cmd := exec.CommandContext(ctx, bin, "--version")
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("%w: %s: %v", m.ErrToolchainUnavailable, bin, err)
		}
	}

	return nil
}

// compileArgs builds the compiler argument list for a request.
func (a *LocalToolchainAdapter) compileArgs(req CompileRequest) []string {
	args := []string{
		"-std=" + a.cxxStd,
		"-o", string(req.OutputBinary),
		string(req.ScenarioFile),
	}

	for _, src := range req.Sources {
		args = append(args, string(src))
	}

	for _, dir := range req.IncludeDirs {
		args = append(args, "-I", string(dir))
	}

	args = append(args,
		"-lgtest", "-lgtest_main", "-lpthread",
		"--coverage", "-fprofile-arcs", "-ftest-coverage",
	)

	return append(args, a.extraFlags...)
}

// Compile builds one scenario executable.
func (a *LocalToolchainAdapter) Compile(ctx context.Context, req CompileRequest) (string, error) {
	cmd := exec.CommandContext(ctx, a.compiler, a.compileArgs(req)...)
	cmd.Dir = string(req.WorkDir)

	var out bytes.Buffer

	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()

	return out.String(), err
}

// Run executes a compiled scenario binary with a bounded timeout.
func (a *LocalToolchainAdapter) Run(ctx context.Context, binary m.Path, timeout time.Duration) (RunResult, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, string(binary))

	var out bytes.Buffer

	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	result := RunResult{Output: out.String()}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		result.TimedOut = true
		return result, nil
	}

	if err != nil {
		result.Failed = true
	}

	return result, nil
}

// Capture collects coverage counters under workDir into an lcov trace.
func (a *LocalToolchainAdapter) Capture(ctx context.Context, workDir, outFile m.Path) error {
	cmd := exec.CommandContext(ctx, a.lcov,
		"--capture",
		"--directory", string(workDir),
		"--output-file", string(outFile),
	)

	var out bytes.Buffer

	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("lcov capture failed: %v: %s", err, out.String())
	}

	return nil
}
