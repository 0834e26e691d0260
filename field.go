package envschema

import "strconv"

// Kind names the value type a schema field expects.
type Kind string

// Supported field kinds. The string values match the schema "type" property.
const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindEnum    Kind = "enum"
)

// Field is one schema rule. It is implemented only by StringField,
// NumberField, BooleanField and EnumField (or pointers to them).
// ParseSchema stores them by value.
type Field interface {
	// Kind reports which variant the field is.
	Kind() Kind

	// IsRequired reports whether the entry must be present (unless a default exists).
	IsRequired() bool

	// DefaultValue returns the default rendered in canonical string form.
	DefaultValue() (string, bool)

	// check validates a present value. Pointer variants reach the same
	// method through their value receiver.
	check(name, value string) FieldError
}

// Schema maps entry names to their field definitions.
type Schema map[string]Field

// StringField accepts any value, optionally constrained by a regular expression.
type StringField struct {
	Required    bool
	Default     Optional[string]
	Description string
	Pattern     Optional[string] // RE2 syntax, unanchored match
}

// NumberField accepts values that parse as a 64-bit float.
type NumberField struct {
	Required    bool
	Default     Optional[float64]
	Description string
}

// BooleanField accepts true/false/1/0/yes/no in any case.
type BooleanField struct {
	Required    bool
	Default     Optional[bool]
	Description string
}

// EnumField accepts only the listed values, compared case-sensitively.
// An empty Values list rejects every present value.
type EnumField struct {
	Required    bool
	Default     Optional[string]
	Description string
	Values      []string
}

func (StringField) Kind() Kind  { return KindString }
func (NumberField) Kind() Kind  { return KindNumber }
func (BooleanField) Kind() Kind { return KindBoolean }
func (EnumField) Kind() Kind    { return KindEnum }

func (f StringField) IsRequired() bool  { return f.Required }
func (f NumberField) IsRequired() bool  { return f.Required }
func (f BooleanField) IsRequired() bool { return f.Required }
func (f EnumField) IsRequired() bool    { return f.Required }

func (f StringField) DefaultValue() (string, bool) {
	return f.Default.Get()
}

// DefaultValue renders the default in shortest decimal form (8080, 0.5).
func (f NumberField) DefaultValue() (string, bool) {
	v, ok := f.Default.Get()
	if !ok {
		return "", false
	}
	return strconv.FormatFloat(v, 'f', -1, 64), true
}

func (f BooleanField) DefaultValue() (string, bool) {
	v, ok := f.Default.Get()
	if !ok {
		return "", false
	}
	return strconv.FormatBool(v), true
}

func (f EnumField) DefaultValue() (string, bool) {
	return f.Default.Get()
}

// Some wraps v as a set Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}
