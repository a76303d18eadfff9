package adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "covforge.dev/pkg/covforge/internal/model"
)

func TestCompileArgs(t *testing.T) {
	a := NewLocalToolchainAdapter(m.EngineConfig{
		CxxStd:     "c++17",
		ExtraFlags: []string{"-DFOO=1"},
	})

	args := a.compileArgs(CompileRequest{
		ScenarioFile: "Widget_push.cpp",
		OutputBinary: "Widget_push",
		Sources:      []m.Path{"/proj/src/Widget.cpp"},
		IncludeDirs:  []m.Path{"/proj/include"},
	})

	assert.Equal(t, "-std=c++17", args[0])
	assert.Contains(t, args, "Widget_push.cpp")
	assert.Contains(t, args, "/proj/src/Widget.cpp")
	assert.Contains(t, args, "-I")
	assert.Contains(t, args, "/proj/include")
	assert.Contains(t, args, "-lgtest")
	assert.Contains(t, args, "-lgtest_main")
	assert.Contains(t, args, "--coverage")
	assert.Equal(t, "-DFOO=1", args[len(args)-1])

	// -o precedes the binary name.
	for i, arg := range args {
		if arg == "-o" {
			assert.Equal(t, "Widget_push", args[i+1])
		}
	}
}

func TestCompileArgs_DefaultsApplied(t *testing.T) {
	a := NewLocalToolchainAdapter(m.EngineConfig{})

	args := a.compileArgs(CompileRequest{ScenarioFile: "t.cpp", OutputBinary: "t"})
	assert.Equal(t, "-std=c++14", args[0])
}

func TestProbe_UnavailableToolchain(t *testing.T) {
	a := NewLocalToolchainAdapter(m.EngineConfig{
		Compiler: "definitely-not-a-compiler-xyz",
		LcovBin:  "definitely-not-lcov-xyz",
	})

	err := a.Probe(context.Background())
	assert.ErrorIs(t, err, m.ErrToolchainUnavailable)
}

func writeScript(t *testing.T, body string) m.Path {
	t.Helper()

	path := filepath.Join(t.TempDir(), "scenario.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))

	return m.Path(path)
}

func TestRun_ExitCodes(t *testing.T) {
	a := NewLocalToolchainAdapter(m.EngineConfig{})

	passing := writeScript(t, "echo ok\nexit 0\n")

	result, err := a.Run(context.Background(), passing, time.Second)
	require.NoError(t, err)
	assert.False(t, result.Failed)
	assert.False(t, result.TimedOut)
	assert.Contains(t, result.Output, "ok")

	failing := writeScript(t, "echo assertion failed >&2\nexit 1\n")

	result, err = a.Run(context.Background(), failing, time.Second)
	require.NoError(t, err)
	assert.True(t, result.Failed)
	assert.Contains(t, result.Output, "assertion failed")
}

func TestRun_Timeout(t *testing.T) {
	a := NewLocalToolchainAdapter(m.EngineConfig{})
	hanging := writeScript(t, "sleep 5\n")

	result, err := a.Run(context.Background(), hanging, 100*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, result.TimedOut)
}
