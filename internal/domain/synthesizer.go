package domain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	m "covforge.dev/pkg/covforge/internal/model"

	"covforge.dev/pkg/covforge/internal/domain/scenarios"
)

// Synthesizer turns the analyzed project model into test scenarios. A nil or
// empty target list means "every eligible method and free function"; a
// non-empty list restricts synthesis to the named targets, which is how later
// passes focus on under-covered functions.
type Synthesizer interface {
	Synthesize(ctx context.Context, model m.ProjectModel, targets []m.Target, kind m.ScenarioKind) ([]m.TestScenario, error)
}

type synthesizer struct {
	cfg m.EngineConfig
}

func NewSynthesizer(cfg m.EngineConfig) Synthesizer {
	return &synthesizer{cfg: cfg}
}

// riskyNameTokens flags members whose names suggest they spawn threads or
// block on synchronization primitives; such scenarios routinely hang the
// runner, so they are skippable by configuration.
var riskyNameTokens = []string{"thread", "mutex", "lock", "wait", "join", "detach"}

func isRiskyName(name string) bool {
	lower := strings.ToLower(name)

	for _, tok := range riskyNameTokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}

	return false
}

// eligible reports whether a method is worth synthesizing for: public, not
// a destructor, not an operator, and its owner must be instantiable.
func (s *synthesizer) eligible(rec m.TypeRecord, method m.MethodRecord) bool {
	if method.Access != m.AccessPublic || method.IsDestructor {
		return false
	}

	if strings.HasPrefix(method.Name, "operator") {
		return false
	}

	if rec.IsAbstract && !method.IsStatic {
		return false
	}

	if s.cfg.SkipRiskyKinds && (isRiskyName(method.Name) || isRiskyName(rec.Name)) {
		return false
	}

	return true
}

// idRegistry hands out pass-unique scenario identifiers, disambiguating
// collisions with an increasing counter.
type idRegistry struct {
	seen map[string]int
}

func newIDRegistry() *idRegistry {
	return &idRegistry{seen: map[string]int{}}
}

func (r *idRegistry) claim(base string) string {
	r.seen[base]++
	if n := r.seen[base]; n > 1 {
		return fmt.Sprintf("%s_%d", base, n)
	}

	return base
}

// kindSuffixes decorate non-smoke scenario identifiers.
var kindSuffixes = map[m.ScenarioKind]string{
	m.KindMultiInvocation: "_MultiInvocation",
	m.KindBoundary:        "_Boundary",
	m.KindStatic:          "_Static",
	m.KindConstructor:     "_Constructor",
	m.KindFreeFunction:    "_FreeFunction",
	m.KindGenerated:       "_Generated",
}

func scenarioID(reg *idRegistry, target m.Target, kind m.ScenarioKind) string {
	base := target.MethodName + kindSuffixes[kind]
	if target.TypeName != "" {
		base = fmt.Sprintf("%s_%s", target.TypeName, base)
	}

	return reg.claim(base)
}

func typeIndex(types []m.TypeRecord) map[string]m.TypeRecord {
	idx := make(map[string]m.TypeRecord, len(types))

	for _, rec := range types {
		idx[rec.Name] = rec
	}

	return idx
}

func targetSet(targets []m.Target) map[string]bool {
	if len(targets) == 0 {
		return nil
	}

	set := make(map[string]bool, len(targets))
	for _, t := range targets {
		set[t.Key()] = true
	}

	return set
}

func (s *synthesizer) Synthesize(_ context.Context, model m.ProjectModel, targets []m.Target, kind m.ScenarioKind) ([]m.TestScenario, error) {
	reg := newIDRegistry()
	idx := typeIndex(model.Types)
	wanted := targetSet(targets)

	var out []m.TestScenario

	for _, rec := range model.Types {
		ctorScenario := kind == m.KindConstructor || (len(wanted) == 0 && kind == m.KindSmoke)

		if ctorScenario && len(rec.Constructors) > 0 && !rec.IsAbstract {
			if sc, ok := s.constructorScenario(reg, rec, idx); ok {
				out = append(out, sc)
			}
		}

		if kind == m.KindConstructor {
			continue
		}

		for _, method := range rec.Methods {
			if !s.eligible(rec, method) {
				continue
			}

			target := m.Target{TypeName: rec.Name, MethodName: method.Name}
			if wanted != nil && !wanted[target.Key()] {
				continue
			}

			if sc, ok := s.methodScenario(reg, rec, method, idx, kind); ok {
				out = append(out, sc)
			}
		}
	}

	if kind != m.KindConstructor {
		for _, fn := range model.Functions {
			if s.cfg.SkipRiskyKinds && isRiskyName(fn.Name) {
				continue
			}

			target := m.Target{MethodName: fn.Name}
			if wanted != nil && !wanted[target.Key()] {
				continue
			}

			if sc, ok := s.functionScenario(reg, fn, idx); ok {
				out = append(out, sc)
			}
		}
	}

	slog.Debug("synthesized scenarios", "kind", kind, "count", len(out))

	return out, nil
}

func (s *synthesizer) buildContext(rec m.TypeRecord, method m.MethodRecord, idx map[string]m.TypeRecord, suite string) scenarios.BuildContext {
	bctx := scenarios.BuildContext{
		Type:   rec,
		Method: method,
		Suite:  suite,
		Types:  idx,
	}

	if ctor, err := SelectConstructor(rec, s.cfg.MaxCtorParams); err == nil {
		bctx.Ctor = &ctor
	}

	return bctx
}

func (s *synthesizer) methodScenario(reg *idRegistry, rec m.TypeRecord, method m.MethodRecord, idx map[string]m.TypeRecord, kind m.ScenarioKind) (m.TestScenario, bool) {
	effective := kind
	if method.IsStatic {
		effective = m.KindStatic
	}

	if effective == m.KindBoundary && !scenarios.HasBoundaryParam(method, idx) {
		// Nothing to drive through extremes; the escalation ladder moves
		// on rather than duplicating the smoke scenario.
		return m.TestScenario{}, false
	}

	target := m.Target{TypeName: rec.Name, MethodName: method.Name}
	suite := rec.Name + "_" + method.Name

	body := scenarios.Build(effective, s.buildContext(rec, method, idx, suite))
	if body == "" {
		return m.TestScenario{}, false
	}

	return m.TestScenario{
		ID:     scenarioID(reg, target, effective),
		Target: target,
		Kind:   effective,
		Body:   body,
	}, true
}

// functionScenario builds the scenario for a file-scope function. Free
// functions stay on one kind across passes: with no object state to
// accumulate, re-invocation and boundary escalation add nothing over the
// bare call.
func (s *synthesizer) functionScenario(reg *idRegistry, fn m.FunctionRecord, idx map[string]m.TypeRecord) (m.TestScenario, bool) {
	target := m.Target{MethodName: fn.Name}

	bctx := scenarios.BuildContext{
		Type:   m.TypeRecord{HeaderFile: fn.HeaderFile},
		Method: m.MethodRecord{Name: fn.Name, ReturnType: fn.ReturnType, Params: fn.Params},
		Suite:  fn.Name,
		Types:  idx,
	}

	body := scenarios.FreeFunction(bctx)
	if body == "" {
		return m.TestScenario{}, false
	}

	return m.TestScenario{
		ID:     scenarioID(reg, target, m.KindFreeFunction),
		Target: target,
		Kind:   m.KindFreeFunction,
		Body:   body,
	}, true
}

func (s *synthesizer) constructorScenario(reg *idRegistry, rec m.TypeRecord, idx map[string]m.TypeRecord) (m.TestScenario, bool) {
	ctorName := rec.Name
	target := m.Target{TypeName: rec.Name, MethodName: ctorName}
	suite := rec.Name + "_" + ctorName

	bctx := s.buildContext(rec, m.MethodRecord{Name: ctorName}, idx, suite)

	body := scenarios.Constructor(bctx)
	if body == "" {
		return m.TestScenario{}, false
	}

	return m.TestScenario{
		ID:     scenarioID(reg, target, m.KindConstructor),
		Target: target,
		Kind:   m.KindConstructor,
		Body:   body,
	}, true
}
