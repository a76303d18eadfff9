package adapter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "covforge.dev/pkg/covforge/internal/model"
)

const sampleLcov = `TN:
SF:/work/src/Widget.cpp
FN:12,_ZN6Widget4pushEi
FN:24,_ZNK6Widget5countEv
FNDA:3,_ZN6Widget4pushEi
FNDA:0,_ZNK6Widget5countEv
DA:12,3
DA:13,3
DA:14,0
DA:24,0
LF:4
LH:2
end_of_record
SF:/work/include/Widget.h
DA:30,1
LF:1
LH:1
end_of_record
`

func TestParseTrace_Sample(t *testing.T) {
	store := NewLcovTraceStore()

	traces := store.ParseTrace([]byte(sampleLcov))
	require.Len(t, traces, 2)

	widget := traces[0]
	assert.Equal(t, m.Path("/work/src/Widget.cpp"), widget.File)
	assert.Equal(t, 12, widget.FunctionLines["_ZN6Widget4pushEi"])
	assert.Equal(t, 24, widget.FunctionLines["_ZNK6Widget5countEv"])
	assert.Equal(t, 3, widget.FunctionHits["_ZN6Widget4pushEi"])
	assert.Equal(t, 0, widget.FunctionHits["_ZNK6Widget5countEv"])
	assert.Equal(t, map[int]int{12: 3, 13: 3, 14: 0, 24: 0}, widget.LineHits)
	assert.Equal(t, 4, widget.LinesFound)
	assert.Equal(t, 2, widget.LinesHit)

	header := traces[1]
	assert.Equal(t, m.Path("/work/include/Widget.h"), header.File)
	assert.Equal(t, map[int]int{30: 1}, header.LineHits)
}

func TestParseTrace_SkipsJunkLines(t *testing.T) {
	content := "garbage\nDA:1,1\nSF:/a.cpp\nwhat:ever\nDA:5,1\nDA:nonsense\nFN:bad\nend_of_record\ntrailing\n"

	traces := NewLcovTraceStore().ParseTrace([]byte(content))
	require.Len(t, traces, 1)

	// The DA: before the first SF: and the malformed records are dropped.
	assert.Equal(t, map[int]int{5: 1}, traces[0].LineHits)
	assert.Empty(t, traces[0].FunctionLines)
}

func TestParseTrace_MissingEndOfRecord(t *testing.T) {
	content := "SF:/a.cpp\nDA:1,1\nSF:/b.cpp\nDA:2,0\n"

	traces := NewLcovTraceStore().ParseTrace([]byte(content))
	require.Len(t, traces, 2)
	assert.Equal(t, map[int]int{1: 1}, traces[0].LineHits)
	assert.Equal(t, map[int]int{2: 0}, traces[1].LineHits)
}

func TestParseTrace_Empty(t *testing.T) {
	assert.Empty(t, NewLcovTraceStore().ParseTrace(nil))
}

func TestLoadTrace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "coverage.info")
	require.NoError(t, os.WriteFile(path, []byte(sampleLcov), 0o644))

	traces, err := NewLcovTraceStore().LoadTrace(m.Path(path))
	require.NoError(t, err)
	assert.Len(t, traces, 2)

	_, err = NewLcovTraceStore().LoadTrace(m.Path(filepath.Join(dir, "missing.info")))
	assert.Error(t, err)
}
