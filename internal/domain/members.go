package domain

import (
	"regexp"
	"strings"

	m "covforge.dev/pkg/covforge/internal/model"
)

var (
	// Head of a method-shaped declaration: optional modifiers, a return
	// type (possibly templated, possibly pointer/reference) and an
	// identifier, up to the opening parenthesis. The parameter list is
	// extracted separately with a balanced scan so function-pointer
	// parameters survive.
	methodHeadRe = regexp.MustCompile(
		`(?m)(?:^|[;{}])\s*((?:(?:virtual|static|inline|constexpr|explicit)\s+)*)` +
			`([A-Za-z_][\w:]*(?:<[^<>]*>)?(?:\s*[*&]+)?)\s+(~?[A-Za-z_]\w*)\s*\(`)

	ctorTrailerRe = regexp.MustCompile(`^\s*(?:noexcept\s*)?(?:=\s*(default|delete))?`)

	methodTrailerRe = regexp.MustCompile(
		`^\s*(const)?\s*(?:noexcept)?\s*(?:->\s*[\w:<>*&\s]+?)?\s*` +
			`(?:=\s*(0))?\s*(?:override)?\s*(?:final)?\s*(?:=\s*(default|delete))?`)
)

// controlKeywords are identifiers that match the method head pattern but are
// statements, not declarations.
var controlKeywords = map[string]bool{
	"if": true, "else": true, "for": true, "while": true, "switch": true,
	"case": true, "return": true, "do": true, "sizeof": true, "new": true,
	"delete": true, "catch": true, "throw": true,
}

// extractConstructors finds constructor-shaped members of the section.
func extractConstructors(section accessSection, record *m.TypeRecord) {
	headRe := regexp.MustCompile(`(explicit\s+)?\b` + regexp.QuoteMeta(record.Name) + `\s*\(`)

	for _, head := range headRe.FindAllStringSubmatchIndex(section.text, -1) {
		// `~Widget(` matches the name pattern; the tilde marks a
		// destructor, handled by the method scan.
		if head[0] > 0 && section.text[head[0]-1] == '~' {
			continue
		}

		// Constructor calls inside inline bodies (`return Widget(1);`)
		// match the name pattern; a declaration starts at a member
		// boundary.
		if !atMemberBoundary(section.text, head[0]) {
			continue
		}

		paramsText, end, ok := balancedParens(section.text, head[1]-1)
		if !ok {
			continue
		}

		trailer := ctorTrailerRe.FindStringSubmatch(section.text[end:])

		isDeleted := trailer != nil && trailer[1] == "delete"
		isDefaulted := trailer != nil && trailer[1] == "default"

		params := parseParameters(paramsText)

		ctor := m.ConstructorRecord{
			Params:           params,
			Access:           section.access,
			IsExplicit:       head[2] >= 0,
			IsDeleted:        isDeleted,
			IsDefaulted:      isDefaulted,
			IsDefault:        len(params) == 0,
			HasDefaultParams: topLevelIndex(paramsText, '=') >= 0,
		}

		classifyCopyMove(&ctor, record.Name)

		record.Constructors = append(record.Constructors, ctor)
	}
}

// classifyCopyMove marks single-parameter constructors whose parameter type
// matches `const <TypeName>&` (copy) or `<TypeName>&&` (move),
// whitespace-insensitively.
func classifyCopyMove(ctor *m.ConstructorRecord, typeName string) {
	if len(ctor.Params) != 1 {
		return
	}

	compact := strings.ReplaceAll(ctor.Params[0].Type, " ", "")

	switch compact {
	case "const" + typeName + "&":
		ctor.IsCopy = true
	case typeName + "&&":
		ctor.IsMove = true
	}
}

// extractMethods finds method-shaped members of the section.
func extractMethods(section accessSection, record *m.TypeRecord) {
	for _, head := range methodHeadRe.FindAllStringSubmatchIndex(section.text, -1) {
		modifiers := section.text[head[2]:head[3]]
		returnType := strings.TrimSpace(section.text[head[4]:head[5]])
		name := section.text[head[6]:head[7]]

		if controlKeywords[name] || controlKeywords[returnType] {
			continue
		}

		// `virtual ~Widget();` reaches the head pattern with the tilde in
		// the name position; destructors are recorded once, by
		// extractDestructor.
		if strings.HasPrefix(name, "~") {
			continue
		}

		// Operator overloads are excluded from synthesis eligibility.
		if strings.HasPrefix(name, "operator") || strings.Contains(returnType, "operator") {
			continue
		}

		// A "method" whose return type equals the owning type's name is
		// a constructor-shaped false positive.
		if returnType == record.Name {
			continue
		}

		paramsText, end, ok := balancedParens(section.text, head[1]-1)
		if !ok {
			continue
		}

		trailer := methodTrailerRe.FindStringSubmatch(section.text[end:])

		method := m.MethodRecord{
			Name:       name,
			ReturnType: returnType,
			Params:     parseParameters(paramsText),
			Access:     section.access,
			IsStatic:   strings.Contains(modifiers, "static"),
			IsVirtual:  strings.Contains(modifiers, "virtual"),
			IsConst:    trailer != nil && trailer[1] == "const",
		}

		record.Methods = append(record.Methods, method)
	}
}

var fieldRe = regexp.MustCompile(`(?m)(?:^|[;{}])\s*([A-Za-z_][\w:]*(?:<[^<>]*>)?(?:\s*[*&]+)?)\s+([A-Za-z_]\w*)(?:\s*\[[^\]]*\])?\s*(?:=[^;]*)?;`)

// fieldKeywords disqualify a match as a data member.
var fieldKeywords = map[string]bool{
	"return": true, "delete": true, "using": true, "friend": true,
	"typedef": true, "class": true, "struct": true, "enum": true,
}

// extractFields finds plain data members. Anything with a parameter list is
// a function and never reaches this pattern.
func extractFields(section accessSection, record *m.TypeRecord) {
	for _, match := range fieldRe.FindAllStringSubmatch(section.text, -1) {
		typeText := strings.TrimSpace(match[1])
		name := match[2]

		if fieldKeywords[typeText] || fieldKeywords[name] || controlKeywords[typeText] {
			continue
		}

		record.Fields = append(record.Fields, m.FieldRecord{
			Type:   typeText,
			Name:   name,
			Access: section.access,
		})
	}
}

var destructorRe = regexp.MustCompile(`~([A-Za-z_]\w*)\s*\(\s*\)`)

// extractDestructor records a destructor-shaped member so the model carries
// the flag; destructors are never eligible for synthesis.
func extractDestructor(section accessSection, record *m.TypeRecord) {
	for _, match := range destructorRe.FindAllStringSubmatch(section.text, -1) {
		if match[1] != record.Name {
			continue
		}

		record.Methods = append(record.Methods, m.MethodRecord{
			Name:         match[1],
			Access:       section.access,
			IsDestructor: true,
		})
	}
}

// atMemberBoundary reports whether the text before offset ends at a point a
// member declaration can start.
func atMemberBoundary(text string, offset int) bool {
	prefix := strings.TrimRight(text[:offset], " \t\n")
	if prefix == "" {
		return true
	}

	switch prefix[len(prefix)-1] {
	case ';', '{', '}', ':':
		return true
	}

	return false
}

// balancedParens extracts the text between the parenthesis at openIdx and
// its match, returning the inner text and the index just past the close.
func balancedParens(text string, openIdx int) (string, int, bool) {
	if openIdx < 0 || openIdx >= len(text) || text[openIdx] != '(' {
		return "", 0, false
	}

	depth := 0

	for i := openIdx; i < len(text); i++ {
		switch text[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return text[openIdx+1 : i], i + 1, true
			}
		}
	}

	return "", 0, false
}
