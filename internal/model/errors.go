package model

import "errors"

// Sentinel errors shared across the engine. Per-scenario and per-target
// conditions are recovered locally; only ErrToolchainUnavailable and
// ErrNoTypesFound abort a run.
var (
	// ErrNoUsableConstructor means the resolver found no eligible
	// constructor; synthesis falls back to bare default construction.
	ErrNoUsableConstructor = errors.New("no usable constructor")

	// ErrToolchainUnavailable means the compiler or coverage tool cannot
	// be invoked. Fatal to the current pass.
	ErrToolchainUnavailable = errors.New("toolchain unavailable")

	// ErrNoTypesFound means the analyzer produced an empty structural
	// model: no types and no free functions. Fatal to the run.
	ErrNoTypesFound = errors.New("no types found")
)
