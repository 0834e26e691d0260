package envschema

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/mitchellh/mapstructure"
)

// rawField is the decoded form of one schema entry before it is narrowed to a Field.
type rawField struct {
	Type        string   `mapstructure:"type"`
	Required    bool     `mapstructure:"required"`
	Default     any      `mapstructure:"default"`
	Description string   `mapstructure:"description"`
	Pattern     string   `mapstructure:"pattern"`
	Values      []any    `mapstructure:"values"`
}

// ParseOption configures ParseSchema.
type ParseOption func(*parseConfig)

type parseConfig struct {
	onUnknown func(field, property string)
}

// WithUnknownProperty reports every property ParseSchema does not understand.
// Such properties are otherwise ignored.
func WithUnknownProperty(fn func(field, property string)) ParseOption {
	return func(cfg *parseConfig) {
		cfg.onUnknown = fn
	}
}

// ParseSchema builds a Schema from a decoded document (JSON, YAML or TOML).
// Each top-level value must be an object with a "type" of string, number,
// boolean or enum. Kind-specific properties on the wrong kind and defaults of
// the wrong type are rejected with a *SchemaError. Unknown properties are
// skipped and passed to the WithUnknownProperty callback, if any.
func ParseSchema(raw map[string]any, opts ...ParseOption) (Schema, error) {
	var cfg parseConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	schema := make(Schema, len(raw))

	for _, name := range slices.Sorted(maps.Keys(raw)) {
		field, unused, err := parseField(raw[name])
		if err != nil {
			return nil, &SchemaError{Field: name, Err: err}
		}
		if cfg.onUnknown != nil {
			for _, prop := range unused {
				cfg.onUnknown(name, prop)
			}
		}
		schema[name] = field
	}

	return schema, nil
}

// UnmarshalJSON decodes a JSON schema document.
func (s *Schema) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	parsed, err := ParseSchema(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// parseField narrows one schema entry. It also returns the sorted names of
// properties it did not recognise.
func parseField(value any) (Field, []string, error) {
	props, ok := value.(map[string]any)
	if !ok {
		return nil, nil, fmt.Errorf("expected an object, got %T", value)
	}

	var rf rawField
	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:   &rf,
		Metadata: &md,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := decoder.Decode(props); err != nil {
		return nil, nil, err
	}

	field, err := narrowField(rf, md)
	if err != nil {
		return nil, nil, err
	}
	slices.Sort(md.Unused)
	return field, md.Unused, nil
}

func narrowField(rf rawField, md mapstructure.Metadata) (Field, error) {
	has := func(key string) bool {
		return slices.Contains(md.Keys, key)
	}

	if !has("type") {
		return nil, errors.New(`missing "type" property`)
	}

	kind := Kind(rf.Type)
	if has("pattern") && kind != KindString {
		return nil, errors.New(`"pattern" is only allowed on string fields`)
	}
	if has("values") && kind != KindEnum {
		return nil, errors.New(`"values" is only allowed on enum fields`)
	}

	switch kind {
	case KindString:
		def, err := stringDefault(rf.Default)
		if err != nil {
			return nil, err
		}
		f := StringField{Required: rf.Required, Default: def, Description: rf.Description}
		if has("pattern") {
			f.Pattern = Some(rf.Pattern)
		}
		return f, nil

	case KindNumber:
		def, err := numberDefault(rf.Default)
		if err != nil {
			return nil, err
		}
		return NumberField{Required: rf.Required, Default: def, Description: rf.Description}, nil

	case KindBoolean:
		var def Optional[bool]
		if rf.Default != nil {
			b, ok := rf.Default.(bool)
			if !ok {
				return nil, fmt.Errorf("default must be a boolean, got %T", rf.Default)
			}
			def = Some(b)
		}
		return BooleanField{Required: rf.Required, Default: def, Description: rf.Description}, nil

	case KindEnum:
		if !has("values") {
			return nil, errors.New(`enum field requires "values"`)
		}
		values, err := enumValues(rf.Values)
		if err != nil {
			return nil, err
		}
		def, err := stringDefault(rf.Default)
		if err != nil {
			return nil, err
		}
		return EnumField{
			Required:    rf.Required,
			Default:     def,
			Description: rf.Description,
			Values:      values,
		}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFieldType, rf.Type)
	}
}

// enumValues requires every element to be a string; null is not coerced to "".
func enumValues(raw []any) ([]string, error) {
	values := make([]string, len(raw))
	for i, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("values[%d] must be a string, got %T", i, v)
		}
		values[i] = s
	}
	return values, nil
}

// stringDefault accepts an absent (nil) default or a string.
func stringDefault(v any) (Optional[string], error) {
	if v == nil {
		return Optional[string]{}, nil
	}
	s, ok := v.(string)
	if !ok {
		return Optional[string]{}, fmt.Errorf("default must be a string, got %T", v)
	}
	return Some(s), nil
}

// numberDefault accepts an absent (nil) default or any numeric type produced
// by the JSON, YAML or TOML decoders.
func numberDefault(v any) (Optional[float64], error) {
	switch n := v.(type) {
	case nil:
		return Optional[float64]{}, nil
	case float64:
		return Some(n), nil
	case float32:
		return Some(float64(n)), nil
	case int:
		return Some(float64(n)), nil
	case int64:
		return Some(float64(n)), nil
	case uint64:
		return Some(float64(n)), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return Optional[float64]{}, fmt.Errorf("default must be a number: %w", err)
		}
		return Some(f), nil
	default:
		return Optional[float64]{}, fmt.Errorf("default must be a number, got %T", v)
	}
}
