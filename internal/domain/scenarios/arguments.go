package scenarios

import (
	"fmt"
	"strings"

	m "covforge.dev/pkg/covforge/internal/model"
)

// argScope tracks the named locals declared for one scenario body, so
// repeated uses of a parameter reuse the same local and synthesized names
// never collide.
type argScope struct {
	decls  []string
	byName map[string]string
	used   map[string]bool
	serial int
}

func newArgScope() *argScope {
	return &argScope{
		byName: map[string]string{},
		used:   map[string]bool{},
	}
}

// Decls returns the local declarations accumulated for the scenario, in
// declaration order.
func (s *argScope) Decls() []string {
	return s.decls
}

// localName reserves a unique local name for a parameter. Unnamed
// parameters get a synthesized `argN` name.
func (s *argScope) localName(param m.ParameterRecord) string {
	if param.Name != "" {
		if existing, ok := s.byName[param.Name]; ok {
			return existing
		}
	}

	base := param.Name
	if base == "" {
		base = fmt.Sprintf("arg%d", s.serial)
		s.serial++
	}

	name := base
	for i := 1; s.used[name]; i++ {
		name = fmt.Sprintf("%s_%d", base, i)
	}

	s.used[name] = true

	if param.Name != "" {
		s.byName[param.Name] = name
	}

	return name
}

func (s *argScope) declare(param m.ParameterRecord, declType string) string {
	if param.Name != "" {
		if existing, ok := s.byName[param.Name]; ok {
			return existing
		}
	}

	name := s.localName(param)
	s.decls = append(s.decls, fmt.Sprintf("%s %s;", declType, name))

	return name
}

// valueRule is one entry of the ordered type-to-value table: a predicate
// over the declared type text and the expression generator applied when it
// matches. Rules are evaluated top to bottom; the first match wins.
type valueRule struct {
	match  func(typeText string) bool
	render func(scope *argScope, param m.ParameterRecord) string
}

var valueRules = []valueRule{
	{
		match:  m.IsPointerType,
		render: func(_ *argScope, _ m.ParameterRecord) string { return "nullptr" },
	},
	{
		// Non-const references cannot bind to temporaries: declare a
		// named local of the dereferenced type and pass its name. This
		// must outrank the literal rules or `int&` would receive `0`.
		match: m.IsNonConstReference,
		render: func(scope *argScope, param m.ParameterRecord) string {
			return scope.declare(param, m.BaseType(param.Type))
		},
	},
	{
		match:  m.IsBoolType,
		render: func(_ *argScope, _ m.ParameterRecord) string { return "false" },
	},
	{
		match:  m.IsCharType,
		render: func(_ *argScope, _ m.ParameterRecord) string { return "'a'" },
	},
	{
		match:  m.IsIntegerType,
		render: func(_ *argScope, _ m.ParameterRecord) string { return "0" },
	},
	{
		match:  m.IsFloatingType,
		render: func(_ *argScope, _ m.ParameterRecord) string { return "0.0" },
	},
	{
		match:  m.IsStringType,
		render: func(_ *argScope, _ m.ParameterRecord) string { return `""` },
	},
	{
		// Anything else gets a default-constructed temporary of the
		// base type, qualifiers stripped.
		match: func(string) bool { return true },
		render: func(_ *argScope, param m.ParameterRecord) string {
			return m.BaseType(param.Type) + "()"
		},
	},
}

// argumentFor produces the call-site expression for one parameter.
func argumentFor(scope *argScope, param m.ParameterRecord) string {
	for _, rule := range valueRules {
		if rule.match(param.Type) {
			return rule.render(scope, param)
		}
	}

	// The table ends with a catch-all; this is unreachable.
	return m.BaseType(param.Type) + "()"
}

// argumentList renders a full call-site argument list, reusing the scope's
// locals across repeated renders.
func argumentList(scope *argScope, params []m.ParameterRecord) string {
	args := make([]string, 0, len(params))

	for _, param := range params {
		args = append(args, argumentFor(scope, param))
	}

	return strings.Join(args, ", ")
}
