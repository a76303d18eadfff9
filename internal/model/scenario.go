package model

// ScenarioKind names a strategy for generating a test body.
type ScenarioKind string

// Available ScenarioKind values.
const (
	// KindSmoke constructs the target and invokes the method once.
	KindSmoke ScenarioKind = "smoke"
	// KindMultiInvocation invokes the same call 2-3 times on one instance.
	KindMultiInvocation ScenarioKind = "multi_invocation"
	// KindBoundary invokes with high, low and zero numeric values.
	KindBoundary ScenarioKind = "boundary_value"
	// KindStatic invokes a static method without constructing the target.
	KindStatic ScenarioKind = "static"
	// KindConstructor exercises a selected constructor plus default construction.
	KindConstructor ScenarioKind = "constructor"
	// KindFreeFunction invokes a file-scope function with no object involved.
	KindFreeFunction ScenarioKind = "free_function"
	// KindGenerated marks a body produced by an external text backend.
	KindGenerated ScenarioKind = "generated"
)

// Target identifies a (type, method) pair whose coverage is tracked. A free
// function is a target with an empty TypeName.
type Target struct {
	TypeName   string
	MethodName string
}

// Key returns the canonical "Type::Method" form used to match coverage facts,
// or the bare function name for a free-function target.
func (t Target) Key() string {
	if t.TypeName == "" {
		return t.MethodName
	}

	return t.TypeName + "::" + t.MethodName
}

// TestScenario is one synthesized test: a generated C++ body plus the
// bookkeeping the coordinator fills in after compiling and running it.
// A scenario is never mutated after measurement.
type TestScenario struct {
	ID         string       `json:"scenario_id"`
	Target     Target       `json:"target"`
	Kind       ScenarioKind `json:"kind"`
	Body       string       `json:"-"`
	SourceFile Path         `json:"source_file"`
	BinaryPath Path         `json:"binary_path"`
	Compiled   bool         `json:"compiled"`
	Passed     bool         `json:"passed"`
	TimedOut   bool         `json:"timed_out"`
	Output     string       `json:"output,omitempty"`
}
