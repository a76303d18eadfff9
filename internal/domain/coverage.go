package domain

import (
	"sort"
	"strings"

	m "covforge.dev/pkg/covforge/internal/model"
)

// MergeTraces combines per-scenario traces into one trace per source file.
// A line counts as hit when any scenario hit it; hit counts are never summed
// because scenarios re-execute the same lines and coverage is monotonic.
func MergeTraces(groups ...[]m.FileTrace) []m.FileTrace {
	byFile := map[m.Path]*m.FileTrace{}

	for _, group := range groups {
		for _, trace := range group {
			merged, ok := byFile[trace.File]
			if !ok {
				merged = &m.FileTrace{
					File:          trace.File,
					LineHits:      map[int]int{},
					FunctionHits:  map[string]int{},
					FunctionLines: map[string]int{},
				}
				byFile[trace.File] = merged
			}

			for line, hits := range trace.LineHits {
				if hits > merged.LineHits[line] {
					merged.LineHits[line] = hits
				}
			}

			for fn, hits := range trace.FunctionHits {
				if hits > merged.FunctionHits[fn] {
					merged.FunctionHits[fn] = hits
				}
			}

			for fn, line := range trace.FunctionLines {
				merged.FunctionLines[fn] = line
			}
		}
	}

	files := make([]m.Path, 0, len(byFile))
	for file := range byFile {
		files = append(files, file)
	}

	sort.Slice(files, func(i, j int) bool { return files[i] < files[j] })

	out := make([]m.FileTrace, 0, len(files))

	for _, file := range files {
		trace := byFile[file]
		trace.LinesFound = len(trace.LineHits)
		trace.LinesHit = 0

		for _, hits := range trace.LineHits {
			if hits > 0 {
				trace.LinesHit++
			}
		}

		out = append(out, *trace)
	}

	return out
}

// functionExtent is the half-open instrumented line range attributed to one
// function, derived from the FN start lines: a function owns every
// instrumented line from its start up to the next function's start.
type functionExtent struct {
	name  string
	start int
	end   int
}

func functionExtents(trace m.FileTrace) []functionExtent {
	extents := make([]functionExtent, 0, len(trace.FunctionLines))

	for fn, line := range trace.FunctionLines {
		extents = append(extents, functionExtent{name: fn, start: line})
	}

	sort.Slice(extents, func(i, j int) bool {
		if extents[i].start != extents[j].start {
			return extents[i].start < extents[j].start
		}

		return extents[i].name < extents[j].name
	})

	for i := range extents {
		if i+1 < len(extents) {
			extents[i].end = extents[i+1].start
		}
	}

	return extents
}

// CoverageFacts derives per-function facts from merged traces.
func CoverageFacts(traces []m.FileTrace) []m.CoverageFact {
	var facts []m.CoverageFact

	for _, trace := range traces {
		for _, ext := range functionExtents(trace) {
			found, hit := 0, 0

			for line, hits := range trace.LineHits {
				if line < ext.start || (ext.end > 0 && line >= ext.end) {
					continue
				}

				found++
				if hits > 0 {
					hit++
				}
			}

			facts = append(facts, m.CoverageFact{
				File:        trace.File,
				Function:    ext.name,
				LinesFound:  found,
				LinesHit:    hit,
				FunctionHit: trace.FunctionHits[ext.name] > 0,
				Percentage:  m.Percent(hit, found),
			})
		}
	}

	return facts
}

// AggregatePercent computes the overall line coverage across all files.
func AggregatePercent(traces []m.FileTrace) float64 {
	found, hit := 0, 0

	for _, trace := range traces {
		found += trace.LinesFound
		hit += trace.LinesHit
	}

	return m.Percent(hit, found)
}

// factMatchesTarget reports whether a trace function name belongs to the
// target. Instrumented names are mangled or qualified, so matching is by
// qualified-substring rather than equality.
func factMatchesTarget(fact m.CoverageFact, target m.Target) bool {
	return strings.Contains(fact.Function, target.Key()) ||
		strings.Contains(fact.Function, target.MethodName)
}

// SelectUnderCovered picks the targets whose best-matching function fact is
// below the threshold, ranked worst-first and capped to the batch size.
func SelectUnderCovered(facts []m.CoverageFact, candidates []m.Target, threshold float64, batch int) []m.Target {
	type ranked struct {
		target m.Target
		pct    float64
	}

	var below []ranked

	for _, target := range candidates {
		best := 0.0
		matched := false

		for _, fact := range facts {
			if !factMatchesTarget(fact, target) {
				continue
			}

			matched = true
			if fact.Percentage > best {
				best = fact.Percentage
			}
		}

		// Unmatched targets never executed at all; they rank worst.
		if !matched || best < threshold {
			below = append(below, ranked{target: target, pct: best})
		}
	}

	sort.SliceStable(below, func(i, j int) bool {
		return below[i].pct < below[j].pct
	})

	if batch > 0 && len(below) > batch {
		below = below[:batch]
	}

	out := make([]m.Target, 0, len(below))
	for _, r := range below {
		out = append(out, r.target)
	}

	return out
}
