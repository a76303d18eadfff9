package domain

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	m "covforge.dev/pkg/covforge/internal/model"

	"covforge.dev/pkg/covforge/internal/adapter"
)

// generativeSynthesizer layers an external text backend on top of the
// deterministic synthesizer. The deterministic scenarios are always
// produced; backend output adds extra scenarios and any backend failure
// degrades to the deterministic set alone.
type generativeSynthesizer struct {
	deterministic Synthesizer
	client        adapter.GenClient
}

func NewGenerativeSynthesizer(deterministic Synthesizer, client adapter.GenClient) Synthesizer {
	return &generativeSynthesizer{deterministic: deterministic, client: client}
}

func (g *generativeSynthesizer) Synthesize(ctx context.Context, model m.ProjectModel, targets []m.Target, kind m.ScenarioKind) ([]m.TestScenario, error) {
	out, err := g.deterministic.Synthesize(ctx, model, targets, kind)
	if err != nil {
		return nil, err
	}

	reg := newIDRegistry()
	for _, sc := range out {
		reg.claim(sc.ID)
	}

	for _, rec := range model.Types {
		for _, method := range rec.Methods {
			target := m.Target{TypeName: rec.Name, MethodName: method.Name}
			if !targetWanted(targets, target) || method.Access != m.AccessPublic || method.IsDestructor {
				continue
			}

			out = g.appendGenerated(ctx, out, reg, target, rec, method)
		}
	}

	for _, fn := range model.Functions {
		target := m.Target{MethodName: fn.Name}
		if !targetWanted(targets, target) {
			continue
		}

		rec := m.TypeRecord{HeaderFile: fn.HeaderFile}
		method := m.MethodRecord{Name: fn.Name, ReturnType: fn.ReturnType, Params: fn.Params}

		out = g.appendGenerated(ctx, out, reg, target, rec, method)
	}

	return out, nil
}

func (g *generativeSynthesizer) appendGenerated(
	ctx context.Context,
	out []m.TestScenario,
	reg *idRegistry,
	target m.Target,
	rec m.TypeRecord,
	method m.MethodRecord,
) []m.TestScenario {
	body, genErr := g.generate(ctx, rec, method)
	if genErr != nil {
		slog.Warn("generative backend failed, keeping deterministic scenarios",
			"target", target.Key(), "error", genErr)

		return out
	}

	if body == "" {
		return out
	}

	return append(out, m.TestScenario{
		ID:     scenarioID(reg, target, m.KindGenerated),
		Target: target,
		Kind:   m.KindGenerated,
		Body:   body,
	})
}

func targetWanted(targets []m.Target, target m.Target) bool {
	if len(targets) == 0 {
		return true
	}

	for _, t := range targets {
		if t == target {
			return true
		}
	}

	return false
}

func (g *generativeSynthesizer) generate(ctx context.Context, rec m.TypeRecord, method m.MethodRecord) (string, error) {
	prompt := buildPrompt(rec, method)

	raw, err := g.client.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generate scenario for %s: %w", qualifiedName(rec.Name, method.Name), err)
	}

	return stripCodeFences(raw), nil
}

// qualifiedName renders "Type::Method", or the bare name for a free function.
func qualifiedName(typeName, name string) string {
	if typeName == "" {
		return name
	}

	return typeName + "::" + name
}

func buildPrompt(rec m.TypeRecord, method m.MethodRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write one Google Test case for the C++ function %s.\n", qualifiedName(rec.Name, method.Name))
	fmt.Fprintf(&b, "It is declared in %q.\n", filepath.Base(string(rec.HeaderFile)))
	fmt.Fprintf(&b, "Signature: %s %s(", method.ReturnType, method.Name)

	for i, p := range method.Params {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(p.Type)
		if p.Name != "" {
			b.WriteString(" " + p.Name)
		}
	}

	b.WriteString(")\n")

	suite := method.Name
	if rec.Name != "" {
		suite = rec.Name + "_" + method.Name
	}

	fmt.Fprintf(&b, "Name the test TEST(%s, Generated). Include <gtest/gtest.h> and the header. Output only code.\n", suite)

	return b.String()
}

// stripCodeFences removes a surrounding markdown code fence if the backend
// wrapped its answer in one.
func stripCodeFences(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return text
	}

	lines = lines[1:]
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}
