// Package model defines the data structures for coverage-guided test synthesis.
package model

// Path represents a file system path.
type Path string

// AccessLevel is the C++ member access level in effect for a declaration.
type AccessLevel string

// Available AccessLevel values.
const (
	AccessPublic    AccessLevel = "public"
	AccessProtected AccessLevel = "protected"
	AccessPrivate   AccessLevel = "private"
)

// ParameterRecord is one declared parameter of a method or constructor.
// Type holds the normalized declared type text (default values stripped,
// qualifiers preserved). Name is empty when the source omits a name or the
// scanner cannot isolate one (e.g. `const T&`).
type ParameterRecord struct {
	Type string
	Name string
}

// MethodRecord describes one member function of a type.
type MethodRecord struct {
	Name         string
	ReturnType   string
	Params       []ParameterRecord
	Access       AccessLevel
	IsStatic     bool
	IsVirtual    bool
	IsConst      bool
	IsDestructor bool
}

// ConstructorRecord describes one constructor overload of a type.
type ConstructorRecord struct {
	Params           []ParameterRecord
	Access           AccessLevel
	IsDefault        bool
	IsCopy           bool
	IsMove           bool
	HasDefaultParams bool
	IsExplicit       bool
	IsDeleted        bool
	IsDefaulted      bool
}

// FieldRecord describes one data member of a type.
type FieldRecord struct {
	Type   string
	Name   string
	Access AccessLevel
}

// FunctionRecord describes one file-scope function declared outside any type
// body. Only header declarations are recorded so a generated test can
// include the file that declares the function.
type FunctionRecord struct {
	Name       string
	ReturnType string
	Params     []ParameterRecord
	HeaderFile Path
}

// TypeRecord describes one class or struct recovered from source text.
// Struct-like types default members to public access, class-like types to
// private. A type with at least one pure-virtual method is abstract and is
// never instantiated by the synthesizer.
type TypeRecord struct {
	Name         string
	IsStruct     bool
	IsAbstract   bool
	HeaderFile   Path
	Methods      []MethodRecord
	Constructors []ConstructorRecord
	Fields       []FieldRecord
}

// ProjectModel is the complete structural model recovered from one analysis
// pass: the discovered types plus the file-scope functions.
type ProjectModel struct {
	Types     []TypeRecord
	Functions []FunctionRecord
}

// PublicNumericFields returns the accessible numeric data members of the
// type, used to decide boundary-value scenario eligibility.
func (t TypeRecord) PublicNumericFields() []FieldRecord {
	var fields []FieldRecord

	for _, f := range t.Fields {
		if f.Access == AccessPublic && IsNumericType(f.Type) {
			fields = append(fields, f)
		}
	}

	return fields
}
