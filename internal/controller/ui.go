// Package controller provides output adapters for displaying synthesis
// progress and coverage results.
package controller

import (
	"context"

	m "covforge.dev/pkg/covforge/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeRun StartMode = iota
	ModeList
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode StartMode
}

// WithRunMode sets the UI to full synthesis-run mode.
func WithRunMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeRun
	}
}

// WithListMode sets the UI to analysis-listing mode.
func WithListMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeList
	}
}

// UI defines the interface for displaying engine progress and results.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context) // Wait for UI to finish (user closes it)
	DisplayAnalysis(ctx context.Context, model m.ProjectModel, err error) error
	DisplayPassStart(ctx context.Context, pass int, scenarios int, workers int)
	DisplayScenario(ctx context.Context, scenario m.TestScenario)
	DisplayPassSummary(ctx context.Context, record m.PassRecord) error
	DisplayFinal(ctx context.Context, history []m.PassRecord, reason m.StopReason) error
}
