package domain

import (
	"regexp"
	"strings"

	m "covforge.dev/pkg/covforge/internal/model"
)

// freeFnTrailerRe accepts the text after a free function's parameter list:
// a declaration terminator or a definition body, with an optional noexcept.
var freeFnTrailerRe = regexp.MustCompile(`^\s*(?:noexcept\s*)?[;{]`)

// freeFnSkipNames are file-scope identifiers that match the function-head
// pattern but are never synthesis targets.
var freeFnSkipNames = map[string]bool{
	"main": true,
}

// extractFreeFunctions scans file content for function declarations outside
// any type body. Type bodies are masked first so member functions never
// match; everything else follows the same head pattern as method extraction.
func extractFreeFunctions(content string, origin m.Path) []m.FunctionRecord {
	masked := maskTypeBodies(stripComments(content))

	var (
		out  []m.FunctionRecord
		seen = map[string]bool{}
	)

	for _, head := range methodHeadRe.FindAllStringSubmatchIndex(masked, -1) {
		returnType := strings.TrimSpace(masked[head[4]:head[5]])
		name := masked[head[6]:head[7]]

		if controlKeywords[name] || controlKeywords[returnType] {
			continue
		}

		if freeFnSkipNames[name] || strings.HasPrefix(name, "~") {
			continue
		}

		if strings.HasPrefix(name, "operator") || strings.Contains(returnType, "operator") {
			continue
		}

		paramsText, end, ok := balancedParens(masked, head[1]-1)
		if !ok {
			continue
		}

		if !freeFnTrailerRe.MatchString(masked[end:]) {
			continue
		}

		// Overloads share one target; the first declaration speaks for
		// the name.
		if seen[name] {
			continue
		}

		seen[name] = true

		out = append(out, m.FunctionRecord{
			Name:       name,
			ReturnType: returnType,
			Params:     parseParameters(paramsText),
			HeaderFile: origin,
		})
	}

	return out
}

// maskTypeBodies blanks every class/struct definition (head included) so a
// file-scope scan never sees member declarations. Newlines survive to keep
// offsets line-stable.
func maskTypeBodies(content string) string {
	masked := []byte(content)

	for _, head := range typeHeadRe.FindAllStringSubmatchIndex(content, -1) {
		depth := 0

		for i := head[1] - 1; i < len(content); i++ {
			switch content[i] {
			case '{':
				depth++
			case '}':
				depth--
			}

			if depth == 0 && content[i] == '}' {
				for j := head[0]; j <= i; j++ {
					if masked[j] != '\n' {
						masked[j] = ' '
					}
				}

				break
			}
		}
	}

	return string(masked)
}
