package model

// FileTrace is the parsed content of one lcov-format record block (one SF:
// section), before aggregation.
type FileTrace struct {
	File          Path
	LineHits      map[int]int
	FunctionHits  map[string]int
	FunctionLines map[string]int
	LinesFound    int
	LinesHit      int
}

// CoverageFact holds the measured coverage of one function after union
// aggregation across scenarios. Produced fresh each pass.
type CoverageFact struct {
	File        Path    `json:"file"`
	Function    string  `json:"function"`
	LinesFound  int     `json:"lines_found"`
	LinesHit    int     `json:"lines_hit"`
	FunctionHit bool    `json:"function_hit"`
	Percentage  float64 `json:"percentage"`
}

// PassRecord is the append-only history entry for one measurement pass.
// Excluded carries the targets given up on as untestable; it is stamped on
// the final record so the persisted history reports them.
type PassRecord struct {
	Pass          int            `yaml:"pass" json:"pass"`
	Aggregate     float64        `yaml:"aggregate" json:"aggregate"`
	ScenarioCount int            `yaml:"scenarios" json:"scenarios"`
	CompiledCount int            `yaml:"compiled" json:"compiled"`
	PassedCount   int            `yaml:"passed" json:"passed"`
	TimedOutCount int            `yaml:"timed_out" json:"timed_out"`
	Excluded      []string       `yaml:"excluded,omitempty" json:"excluded,omitempty"`
	Facts         []CoverageFact `yaml:"-" json:"facts,omitempty"`
}

// StopReason explains why the iteration controller reached its terminal state.
type StopReason string

// Available StopReason values.
const (
	StopTargetMet StopReason = "target_met"
	StopPassCap   StopReason = "pass_cap"
	StopPlateau   StopReason = "plateau"
	StopNoTargets StopReason = "no_targets"
	StopCancelled StopReason = "cancelled"
)

// Percent derives a percentage, defined as 0 when found is 0.
func Percent(hit, found int) float64 {
	if found == 0 {
		return 0
	}

	return float64(hit) / float64(found) * 100
}
