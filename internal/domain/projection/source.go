package projection

import "strings"

// Kind is the closed set of ways a projected value can be produced.
type Kind int

// Source kinds.
const (
	KindPlainField Kind = iota + 1
	KindLiteral
	KindScript
)

func (k Kind) String() string {
	switch k {
	case KindPlainField:
		return "field"
	case KindLiteral:
		return "literal"
	case KindScript:
		return "script"
	default:
		return "unknown"
	}
}

// ScriptFieldPrefix marks output names synthesized for script descriptors.
const ScriptFieldPrefix = "__script_field_"

// DefaultLanguage is used when a script does not name its language.
const DefaultLanguage = "js"

// Markers that turn a plain reference into a script extracting from the source document.
const (
	sourceAccessorMarker = "_source."
	docAccessorMarker    = "doc["
)

// Source is a tagged variant: exactly one of the kind-specific fields is meaningful.
type Source struct {
	kind   Kind
	field  string
	value  string
	script ScriptField
}

// ScriptField describes a value computed per document by the script collaborator.
type ScriptField struct {
	Name          string
	Expression    string
	Language      string
	Params        map[string]any
	IgnoreFailure bool
}

// PlainField creates a source that reads a field of the source document.
func PlainField(name string) Source { return Source{kind: KindPlainField, field: name} }

// LiteralConstant creates a source yielding a fixed string.
func LiteralConstant(value string) Source { return Source{kind: KindLiteral, value: value} }

// Script creates a source evaluated by a script engine.
func Script(sf ScriptField) Source {
	if sf.Language == "" {
		sf.Language = DefaultLanguage
	}
	return Source{kind: KindScript, script: sf}
}

// Kind returns the variant tag.
func (s Source) Kind() Kind { return s.kind }

// Field returns the field name of a plain source.
func (s Source) Field() string { return s.field }

// Value returns the constant of a literal source.
func (s Source) Value() string { return s.value }

// ScriptField returns the script descriptor of a script source.
func (s Source) ScriptField() ScriptField { return s.script }

// dereferencesSource reports whether a reference reads the source document through
// the nested-source or per-document array accessor.
func dereferencesSource(ref string) bool {
	return strings.Contains(ref, sourceAccessorMarker) || strings.Contains(ref, docAccessorMarker)
}
