package adapter

import (
	"bufio"
	"bytes"
	"os"
	"strconv"
	"strings"

	m "covforge.dev/pkg/covforge/internal/model"
)

// TraceStore parses lcov-format coverage artifacts into per-file traces.
type TraceStore interface {
	LoadTrace(path m.Path) ([]m.FileTrace, error)
	ParseTrace(content []byte) []m.FileTrace
}

// LcovTraceStore reads the line-oriented lcov trace format: SF:, FN:, FNDA:,
// DA:, LF:, LH: and end_of_record markers.
type LcovTraceStore struct{}

// NewLcovTraceStore constructs an LcovTraceStore.
func NewLcovTraceStore() *LcovTraceStore {
	return &LcovTraceStore{}
}

// LoadTrace reads and parses an lcov trace file.
func (s *LcovTraceStore) LoadTrace(path m.Path) ([]m.FileTrace, error) {
	content, err := os.ReadFile(string(path))
	if err != nil {
		return nil, err
	}

	return s.ParseTrace(content), nil
}

// ParseTrace parses lcov trace content. Unrecognized lines are skipped so a
// truncated or extended trace still yields the records it does contain.
func (s *LcovTraceStore) ParseTrace(content []byte) []m.FileTrace {
	var (
		traces  []m.FileTrace
		current *m.FileTrace
	)

	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch {
		case strings.HasPrefix(line, "SF:"):
			trace := m.FileTrace{
				File:          m.Path(strings.TrimPrefix(line, "SF:")),
				LineHits:      map[int]int{},
				FunctionHits:  map[string]int{},
				FunctionLines: map[string]int{},
			}
			traces = append(traces, trace)
			current = &traces[len(traces)-1]

		case current == nil:
			// Records before the first SF: are not attributable.

		case strings.HasPrefix(line, "FN:"):
			lineNo, name, ok := splitPair(strings.TrimPrefix(line, "FN:"))
			if ok {
				current.FunctionLines[name] = lineNo
			}

		case strings.HasPrefix(line, "FNDA:"):
			hits, name, ok := splitPair(strings.TrimPrefix(line, "FNDA:"))
			if ok {
				current.FunctionHits[name] = hits
			}

		case strings.HasPrefix(line, "DA:"):
			fields := strings.Split(strings.TrimPrefix(line, "DA:"), ",")
			if len(fields) < 2 {
				continue
			}

			lineNo, err1 := strconv.Atoi(fields[0])

			hits, err2 := strconv.Atoi(fields[1])
			if err1 == nil && err2 == nil {
				current.LineHits[lineNo] = hits
			}

		case strings.HasPrefix(line, "LF:"):
			if v, err := strconv.Atoi(strings.TrimPrefix(line, "LF:")); err == nil {
				current.LinesFound = v
			}

		case strings.HasPrefix(line, "LH:"):
			if v, err := strconv.Atoi(strings.TrimPrefix(line, "LH:")); err == nil {
				current.LinesHit = v
			}

		case line == "end_of_record":
			current = nil
		}
	}

	return traces
}

// splitPair parses a "<number>,<name>" lcov record payload.
func splitPair(payload string) (int, string, bool) {
	fields := strings.SplitN(payload, ",", 2)
	if len(fields) != 2 {
		return 0, "", false
	}

	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, "", false
	}

	return n, fields[1], true
}
