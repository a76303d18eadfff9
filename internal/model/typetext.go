package model

import "strings"

var integerTokens = []string{
	"int", "long", "short", "size_t", "int8_t", "int16_t", "int32_t",
	"int64_t", "uint8_t", "uint16_t", "uint32_t", "uint64_t", "unsigned",
	"ssize_t", "ptrdiff_t",
}

var floatingTokens = []string{"float", "double"}

// BaseType strips const qualifiers and pointer/reference markers from a
// declared type text, leaving the bare type name.
func BaseType(typeText string) string {
	s := strings.ReplaceAll(typeText, "*", " ")
	s = strings.ReplaceAll(s, "&", " ")

	tokens := strings.Fields(s)
	kept := make([]string, 0, len(tokens))

	for _, tok := range tokens {
		if tok == "const" || tok == "volatile" {
			continue
		}

		kept = append(kept, tok)
	}

	return strings.Join(kept, " ")
}

// IsPointerType reports whether the declared type text is a pointer.
func IsPointerType(typeText string) bool {
	return strings.Contains(typeText, "*")
}

// IsIntegerType reports whether the base type belongs to the integer family.
func IsIntegerType(typeText string) bool {
	base := BaseType(typeText)

	for _, tok := range strings.Fields(base) {
		for _, known := range integerTokens {
			if tok == known {
				return true
			}
		}
	}

	return false
}

// IsFloatingType reports whether the base type is a floating-point type.
func IsFloatingType(typeText string) bool {
	base := BaseType(typeText)

	for _, tok := range strings.Fields(base) {
		for _, known := range floatingTokens {
			if tok == known {
				return true
			}
		}
	}

	return false
}

// IsNumericType reports whether the base type is integer or floating.
func IsNumericType(typeText string) bool {
	return IsIntegerType(typeText) || IsFloatingType(typeText)
}

// IsBoolType reports whether the base type is bool.
func IsBoolType(typeText string) bool {
	return BaseType(typeText) == "bool"
}

// IsCharType reports whether the base type is a plain character type.
func IsCharType(typeText string) bool {
	base := BaseType(typeText)
	return base == "char" || base == "wchar_t"
}

// IsStringType reports whether the declared type looks string-like
// (std::string and friends).
func IsStringType(typeText string) bool {
	base := strings.ToLower(BaseType(typeText))
	return strings.Contains(base, "string")
}

// IsNonConstReference reports whether the declared type is a non-const
// lvalue reference. Such parameters cannot bind to temporaries, so call
// sites must pass a named local.
func IsNonConstReference(typeText string) bool {
	return strings.Contains(typeText, "&") &&
		!strings.Contains(typeText, "&&") &&
		!strings.Contains(typeText, "const")
}

// IsVoidType reports whether the declared return type is void (and not a
// void pointer).
func IsVoidType(typeText string) bool {
	return BaseType(typeText) == "void" && !IsPointerType(typeText)
}
