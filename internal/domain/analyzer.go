// Package domain contains the coverage-guided test synthesis engine: the
// structural analyzer, constructability resolver, scenario synthesizer,
// build-and-measure orchestrator and the iteration controller.
package domain

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"covforge.dev/pkg/covforge/internal/adapter"
	m "covforge.dev/pkg/covforge/internal/model"
)

// Analyzer recovers a best-effort structural model from C++ source text.
// It extracts shape only (no semantic resolution); member text it cannot
// structurally match is skipped, never fatal.
type Analyzer interface {
	AnalyzeProject(ctx context.Context, root m.Path, exclude ...string) (m.ProjectModel, adapter.ProjectLayout, error)
	AnalyzeContent(content string, origin m.Path) []m.TypeRecord
	AnalyzeFunctions(content string, origin m.Path) []m.FunctionRecord
}

type analyzer struct {
	adapter.SourceFSAdapter
}

// NewAnalyzer creates an Analyzer backed by the provided filesystem adapter.
func NewAnalyzer(fsAdapter adapter.SourceFSAdapter) Analyzer {
	return &analyzer{SourceFSAdapter: fsAdapter}
}

var (
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineCommentRe  = regexp.MustCompile(`//[^\n]*`)

	// Matches the head of a class/struct definition up to its opening
	// brace, with an optional base-class clause. Forward declarations do
	// not match (no brace).
	typeHeadRe = regexp.MustCompile(`\b(class|struct)\s+([A-Za-z_]\w*)\s*(?::[^{;]*)?\{`)

	accessSpecRe = regexp.MustCompile(`\b(public|protected|private)\s*:`)

	pureVirtualRe = regexp.MustCompile(`\bvirtual\b[^;{]*=\s*0\s*;`)
)

// AnalyzeProject walks the project and produces the structural model for
// every discovered header and source file. Running it twice over unchanged
// source yields an identical model: discovery order is sorted and member
// order follows declaration order. Free functions are gathered from headers
// only, since a generated test has to include the declaring file.
func (a *analyzer) AnalyzeProject(ctx context.Context, root m.Path, exclude ...string) (m.ProjectModel, adapter.ProjectLayout, error) {
	layout, err := a.DiscoverLayout(ctx, root, exclude...)
	if err != nil {
		return m.ProjectModel{}, adapter.ProjectLayout{}, fmt.Errorf("discover project layout: %w", err)
	}

	var (
		model  m.ProjectModel
		seen   = map[string]bool{}
		seenFn = map[string]bool{}
	)

	files := make([]m.Path, 0, len(layout.Headers)+len(layout.Sources))
	files = append(files, layout.Headers...)
	files = append(files, layout.Sources...)

	headers := map[m.Path]bool{}
	for _, h := range layout.Headers {
		headers[h] = true
	}

	for _, file := range files {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return m.ProjectModel{}, adapter.ProjectLayout{}, ctxErr
		}

		content, err := a.ReadFile(ctx, file)
		if err != nil {
			slog.Warn("Skipping unreadable file", "file", file, "error", err)
			continue
		}

		for _, record := range a.AnalyzeContent(string(content), file) {
			// Type names are unique within an analysis pass; the
			// first definition wins.
			if seen[record.Name] {
				continue
			}

			seen[record.Name] = true

			model.Types = append(model.Types, record)
		}

		if !headers[file] {
			continue
		}

		for _, fn := range a.AnalyzeFunctions(string(content), file) {
			if seenFn[fn.Name] {
				continue
			}

			seenFn[fn.Name] = true

			model.Functions = append(model.Functions, fn)
		}
	}

	// A file-scope name shadowed by a type name is a mis-scan, not a
	// callable function.
	model.Functions = dropTypeNamed(model.Functions, seen)

	slog.Debug("Structural analysis complete",
		"files", len(files), "types", len(model.Types), "functions", len(model.Functions))

	return model, layout, nil
}

func dropTypeNamed(fns []m.FunctionRecord, typeNames map[string]bool) []m.FunctionRecord {
	kept := fns[:0]

	for _, fn := range fns {
		if typeNames[fn.Name] {
			continue
		}

		kept = append(kept, fn)
	}

	return kept
}

// AnalyzeFunctions extracts file-scope function declarations from one file's
// content.
func (a *analyzer) AnalyzeFunctions(content string, origin m.Path) []m.FunctionRecord {
	return extractFreeFunctions(content, origin)
}

// AnalyzeContent extracts every type definition from one file's content.
func (a *analyzer) AnalyzeContent(content string, origin m.Path) []m.TypeRecord {
	stripped := stripComments(content)

	var records []m.TypeRecord

	for _, head := range typeHeadRe.FindAllStringSubmatchIndex(stripped, -1) {
		keyword := stripped[head[2]:head[3]]
		name := stripped[head[4]:head[5]]

		// `enum class X {` matches the head pattern; the preceding
		// keyword disqualifies it.
		if precededByEnum(stripped, head[0]) {
			continue
		}

		body, ok := balancedBody(stripped, head[1]-1)
		if !ok {
			continue
		}

		record := m.TypeRecord{
			Name:       name,
			IsStruct:   keyword == "struct",
			HeaderFile: origin,
			IsAbstract: pureVirtualRe.MatchString(body),
		}

		a.scanMembers(body, &record)

		records = append(records, record)
	}

	return records
}

func stripComments(content string) string {
	return lineCommentRe.ReplaceAllString(blockCommentRe.ReplaceAllString(content, " "), "")
}

func precededByEnum(content string, offset int) bool {
	prefix := strings.TrimRight(content[:offset], " \t\n")
	return strings.HasSuffix(prefix, "enum")
}

// balancedBody returns the text between the brace at openIdx and its
// matching close brace.
func balancedBody(content string, openIdx int) (string, bool) {
	if openIdx < 0 || openIdx >= len(content) || content[openIdx] != '{' {
		return "", false
	}

	depth := 0

	for i := openIdx; i < len(content); i++ {
		switch content[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return content[openIdx+1 : i], true
			}
		}
	}

	return "", false
}

// accessSection is one slice of a type body with a single access level in
// effect.
type accessSection struct {
	access m.AccessLevel
	text   string
}

// splitAccessSections splits a type body at access-specifier boundaries,
// tracking the level in effect for every subsequent member until the next
// specifier.
func splitAccessSections(body string, defaultAccess m.AccessLevel) []accessSection {
	matches := accessSpecRe.FindAllStringSubmatchIndex(body, -1)
	if len(matches) == 0 {
		return []accessSection{{access: defaultAccess, text: body}}
	}

	var sections []accessSection

	if matches[0][0] > 0 {
		sections = append(sections, accessSection{access: defaultAccess, text: body[:matches[0][0]]})
	}

	for i, match := range matches {
		access := m.AccessLevel(body[match[2]:match[3]])

		end := len(body)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}

		sections = append(sections, accessSection{access: access, text: body[match[1]:end]})
	}

	return sections
}

// scanMembers extracts constructors, methods and fields from a type body.
func (a *analyzer) scanMembers(body string, record *m.TypeRecord) {
	defaultAccess := m.AccessPrivate
	if record.IsStruct {
		defaultAccess = m.AccessPublic
	}

	for _, section := range splitAccessSections(body, defaultAccess) {
		extractConstructors(section, record)
		extractMethods(section, record)
		extractDestructor(section, record)
		extractFields(section, record)
	}
}
