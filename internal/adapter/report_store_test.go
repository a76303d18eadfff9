package adapter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "covforge.dev/pkg/covforge/internal/model"
)

func TestReportStore_ScenarioRoundTrip(t *testing.T) {
	dir := m.Path(t.TempDir())
	store := NewReportStore()

	scenarios := []m.TestScenario{
		{
			ID:       "Widget_push",
			Target:   m.Target{TypeName: "Widget", MethodName: "push"},
			Kind:     m.KindSmoke,
			Body:     "TEST(Widget_push, BasicUsage) {}",
			Compiled: true,
			Passed:   true,
		},
		{
			ID:       "Widget_pop",
			Target:   m.Target{TypeName: "Widget", MethodName: "pop"},
			Kind:     m.KindMultiInvocation,
			Compiled: false,
			Output:   "error: no matching function",
		},
	}

	require.NoError(t, store.SaveScenarios(dir, scenarios))

	loaded, err := store.LoadScenarios(dir)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	assert.Equal(t, "Widget_push", loaded[0].ID)
	assert.Equal(t, m.KindSmoke, loaded[0].Kind)
	assert.True(t, loaded[0].Compiled)

	// The generated body is an on-disk .cpp artifact, not metadata.
	assert.Empty(t, loaded[0].Body)

	assert.Equal(t, "error: no matching function", loaded[1].Output)
}

func TestReportStore_SaveScenariosCreatesDir(t *testing.T) {
	dir := m.Path(filepath.Join(t.TempDir(), "nested", "out"))
	store := NewReportStore()

	require.NoError(t, store.SaveScenarios(dir, nil))

	_, err := os.Stat(filepath.Join(string(dir), "scenarios.json"))
	assert.NoError(t, err)
}

func TestReportStore_HistoryRoundTrip(t *testing.T) {
	dir := m.Path(t.TempDir())
	store := NewReportStore()

	history := []m.PassRecord{
		{Pass: 1, Aggregate: 41.5, ScenarioCount: 12, CompiledCount: 10, PassedCount: 9},
		{
			Pass: 2, Aggregate: 63.0, ScenarioCount: 8, CompiledCount: 8,
			PassedCount: 8, TimedOutCount: 1,
			Excluded: []string{"Widget::lockAndSwap"},
		},
	}

	require.NoError(t, store.SaveHistory(dir, history))

	loaded, err := store.LoadHistory(dir)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	assert.Equal(t, 1, loaded[0].Pass)
	assert.InDelta(t, 41.5, loaded[0].Aggregate, 0.001)
	assert.Equal(t, 1, loaded[1].TimedOutCount)
	assert.Empty(t, loaded[0].Excluded)
	assert.Equal(t, []string{"Widget::lockAndSwap"}, loaded[1].Excluded)
}

func TestReportStore_LoadMissing(t *testing.T) {
	store := NewReportStore()
	dir := m.Path(t.TempDir())

	_, err := store.LoadScenarios(dir)
	assert.Error(t, err)

	_, err = store.LoadHistory(dir)
	assert.Error(t, err)
}
