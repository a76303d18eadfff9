package model

import "time"

// EngineConfig carries every knob the iteration controller needs. It is
// built once by the CLI layer and passed in explicitly so concurrent runs
// over different projects cannot interfere through ambient state.
type EngineConfig struct {
	TargetCoverage  float64
	MaxPasses       int
	PlateauDelta    float64
	BatchSize       int
	MaxCtorParams   int
	Workers         int
	ScenarioTimeout time.Duration
	OutputDir       Path
	SkipRiskyKinds  bool

	Compiler   string
	LcovBin    string
	CxxStd     string
	ExtraFlags []string

	GeneratorBackend string
	GeneratorBaseURL string
	GeneratorModel   string
}

// Defaults for EngineConfig fields.
const (
	DefaultTargetCoverage  = 80.0
	DefaultMaxPasses       = 3
	DefaultPlateauDelta    = 1.0
	DefaultBatchSize       = 10
	DefaultMaxCtorParams   = 5
	DefaultWorkers         = 1
	DefaultScenarioTimeout = 30 * time.Second
)

// Normalize fills zero-valued fields with defaults.
func (c EngineConfig) Normalize() EngineConfig {
	if c.TargetCoverage <= 0 {
		c.TargetCoverage = DefaultTargetCoverage
	}

	if c.MaxPasses <= 0 {
		c.MaxPasses = DefaultMaxPasses
	}

	if c.PlateauDelta <= 0 {
		c.PlateauDelta = DefaultPlateauDelta
	}

	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}

	if c.MaxCtorParams <= 0 {
		c.MaxCtorParams = DefaultMaxCtorParams
	}

	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}

	if c.ScenarioTimeout <= 0 {
		c.ScenarioTimeout = DefaultScenarioTimeout
	}

	if c.Compiler == "" {
		c.Compiler = "g++"
	}

	if c.LcovBin == "" {
		c.LcovBin = "lcov"
	}

	if c.CxxStd == "" {
		c.CxxStd = "c++14"
	}

	return c
}
