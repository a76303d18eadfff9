package domain

import (
	"strings"

	m "covforge.dev/pkg/covforge/internal/model"
)

// splitTopLevel splits text on the delimiter while tracking nested <...> and
// (...) depth, so template arguments and function-pointer parameters are not
// mis-split.
func splitTopLevel(text string, delimiter byte) []string {
	var (
		parts      []string
		current    strings.Builder
		angleDepth int
		parenDepth int
	)

	for i := 0; i < len(text); i++ {
		ch := text[i]

		switch ch {
		case '<':
			angleDepth++
		case '>':
			if angleDepth > 0 {
				angleDepth--
			}
		case '(':
			parenDepth++
		case ')':
			if parenDepth > 0 {
				parenDepth--
			}
		case delimiter:
			if angleDepth == 0 && parenDepth == 0 {
				parts = append(parts, current.String())
				current.Reset()

				continue
			}
		}

		current.WriteByte(ch)
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	return parts
}

// bareQualifierTokens end a chunk that carries a type but no parameter name.
var bareQualifierTokens = map[string]bool{
	"&": true, "*": true, "&&": true, "const": true,
}

// invalidParamNames are keywords the last token can never be.
var invalidParamNames = map[string]bool{
	"const": true, "static": true, "virtual": true, "inline": true, "explicit": true,
}

// parseParameters turns a raw parameter list (the text between a member's
// parentheses) into ParameterRecords. Default values are stripped; a chunk
// with no isolatable identifier yields a record with an empty name.
func parseParameters(paramsText string) []m.ParameterRecord {
	trimmed := strings.TrimSpace(paramsText)
	if trimmed == "" || trimmed == "void" {
		return nil
	}

	var params []m.ParameterRecord

	for _, chunk := range splitTopLevel(paramsText, ',') {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}

		if param, ok := parseParameterChunk(chunk); ok {
			params = append(params, param)
		}
	}

	return params
}

// parseParameterChunk parses one comma-separated parameter declaration.
func parseParameterChunk(chunk string) (m.ParameterRecord, bool) {
	// Strip a trailing default value. Split at top level so defaults like
	// `std::pair<int, int>{}` do not leak into the type text.
	if idx := topLevelIndex(chunk, '='); idx >= 0 {
		chunk = strings.TrimSpace(chunk[:idx])
	}

	tokens := strings.Fields(chunk)
	if len(tokens) == 0 {
		return m.ParameterRecord{}, false
	}

	last := tokens[len(tokens)-1]

	// A single token, a chunk ending in a bare qualifier, or a last token
	// that itself ends in a reference/pointer marker (`const T&`) is
	// type-only: there is no identifier to isolate.
	if len(tokens) == 1 || bareQualifierTokens[last] ||
		strings.HasSuffix(last, "&") || strings.HasSuffix(last, "*") {
		return m.ParameterRecord{Type: chunk}, true
	}

	name := last
	typeText := strings.TrimSpace(strings.Join(tokens[:len(tokens)-1], " "))

	// The declarator may glue qualifiers onto the name (`*buf`, `&out`).
	name = strings.TrimLeft(name, "*&")
	if name == "" || invalidParamNames[name] {
		return m.ParameterRecord{Type: chunk}, true
	}

	// Drop a trailing array suffix from the name.
	if idx := strings.Index(name, "["); idx >= 0 {
		name = name[:idx]
	}

	// Qualifier markers trimmed off the name still belong to the type.
	rawName := tokens[len(tokens)-1]
	if markers := rawName[:len(rawName)-len(name)-arraySuffixLen(rawName, name)]; markers != "" {
		typeText += markers
	}

	return m.ParameterRecord{Type: typeText, Name: name}, true
}

// arraySuffixLen returns the length of the `[...]` suffix removed from raw
// when isolating name.
func arraySuffixLen(raw, name string) int {
	idx := strings.Index(raw, name)
	if idx < 0 {
		return 0
	}

	return len(raw) - idx - len(name)
}

// topLevelIndex returns the index of the first occurrence of ch outside any
// <...> or (...) nesting, or -1.
func topLevelIndex(text string, ch byte) int {
	angleDepth, parenDepth := 0, 0

	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '<':
			angleDepth++
		case '>':
			if angleDepth > 0 {
				angleDepth--
			}
		case '(':
			parenDepth++
		case ')':
			if parenDepth > 0 {
				parenDepth--
			}
		case ch:
			if angleDepth == 0 && parenDepth == 0 {
				return i
			}
		}
	}

	return -1
}
