package envschema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSchema_AllKinds(t *testing.T) {
	raw := map[string]any{
		"NAME": map[string]any{
			"type":        "string",
			"required":    true,
			"default":     "app",
			"description": "Application name",
			"pattern":     "^[a-z]+$",
		},
		"PORT":  map[string]any{"type": "number", "default": float64(8080)},
		"DEBUG": map[string]any{"type": "boolean", "default": true},
		"ENV":   map[string]any{"type": "enum", "values": []any{"dev", "prod"}, "default": "dev"},
	}

	schema, err := ParseSchema(raw)
	require.NoError(t, err)
	require.Len(t, schema, 4)

	assert.Equal(t, StringField{
		Required:    true,
		Default:     Some("app"),
		Description: "Application name",
		Pattern:     Some("^[a-z]+$"),
	}, schema["NAME"])
	assert.Equal(t, NumberField{Default: Some(8080.0)}, schema["PORT"])
	assert.Equal(t, BooleanField{Default: Some(true)}, schema["DEBUG"])
	assert.Equal(t, EnumField{Values: []string{"dev", "prod"}, Default: Some("dev")}, schema["ENV"])
}

func TestParseSchema_MinimalFields(t *testing.T) {
	schema, err := ParseSchema(map[string]any{
		"HOST": map[string]any{"type": "string"},
	})
	require.NoError(t, err)

	host := schema["HOST"].(StringField)
	assert.False(t, host.Required)
	assert.False(t, host.Default.Set)
	assert.False(t, host.Pattern.Set)
}

func TestParseSchema_NullDefaultIsAbsent(t *testing.T) {
	schema, err := ParseSchema(map[string]any{
		"HOST": map[string]any{"type": "string", "required": true, "default": nil},
	})
	require.NoError(t, err)

	_, ok := schema["HOST"].DefaultValue()
	assert.False(t, ok)
}

func TestParseSchema_NumericDefaults(t *testing.T) {
	for _, v := range []any{int(8080), int64(8080), uint64(8080), float32(8080), float64(8080), json.Number("8080")} {
		schema, err := ParseSchema(map[string]any{
			"PORT": map[string]any{"type": "number", "default": v},
		})
		require.NoError(t, err, "default of type %T", v)

		def, ok := schema["PORT"].DefaultValue()
		assert.True(t, ok)
		assert.Equal(t, "8080", def, "default of type %T", v)
	}
}

func TestParseSchema_Errors(t *testing.T) {
	tests := []struct {
		name    string
		field   any
		wantErr string
	}{
		{"not an object", "string", "expected an object"},
		{"missing type", map[string]any{"required": true}, `missing "type"`},
		{"unknown type", map[string]any{"type": "integer"}, "unknown field type"},
		{"required not a bool", map[string]any{"type": "string", "required": "yes"}, "required"},
		{"enum without values", map[string]any{"type": "enum"}, `requires "values"`},
		{"enum values not strings", map[string]any{"type": "enum", "values": []any{1, 2}}, "values"},
		{"enum value null", map[string]any{"type": "enum", "values": []any{"a", nil}}, "values[1] must be a string"},
		{"enum values not a list", map[string]any{"type": "enum", "values": "a"}, "values"},
		{"pattern on number", map[string]any{"type": "number", "pattern": "^1$"}, `"pattern" is only allowed`},
		{"values on string", map[string]any{"type": "string", "values": []any{"a"}}, `"values" is only allowed`},
		{"string default wrong type", map[string]any{"type": "string", "default": 1}, "default must be a string"},
		{"number default wrong type", map[string]any{"type": "number", "default": "8080"}, "default must be a number"},
		{"boolean default wrong type", map[string]any{"type": "boolean", "default": "true"}, "default must be a boolean"},
		{"enum default wrong type", map[string]any{"type": "enum", "values": []any{"a"}, "default": false}, "default must be a string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSchema(map[string]any{"FIELD": tt.field})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			var schemaErr *SchemaError
			require.True(t, errors.As(err, &schemaErr))
			assert.Equal(t, "FIELD", schemaErr.Field)
		})
	}
}

func TestParseSchema_UnknownProperties(t *testing.T) {
	raw := map[string]any{
		"HOST": map[string]any{"type": "string", "requird": true, "example": "localhost"},
		"PORT": map[string]any{"type": "number", "sensitive": false},
	}

	type unknown struct{ field, property string }
	var got []unknown
	schema, err := ParseSchema(raw, WithUnknownProperty(func(field, property string) {
		got = append(got, unknown{field, property})
	}))
	require.NoError(t, err)

	assert.Equal(t, []unknown{
		{"HOST", "example"},
		{"HOST", "requird"},
		{"PORT", "sensitive"},
	}, got)
	assert.Equal(t, StringField{}, schema["HOST"], "unknown properties are ignored")

	_, err = ParseSchema(raw)
	assert.NoError(t, err, "no callback is required")
}

func TestParseSchema_UnknownTypeSentinel(t *testing.T) {
	_, err := ParseSchema(map[string]any{"X": map[string]any{"type": "array"}})
	assert.ErrorIs(t, err, ErrUnknownFieldType)
}

func TestParseSchema_EmptyEnumValuesAllowed(t *testing.T) {
	schema, err := ParseSchema(map[string]any{
		"ENV": map[string]any{"type": "enum", "values": []any{}},
	})
	require.NoError(t, err)
	assert.Empty(t, schema["ENV"].(EnumField).Values)
}

func TestSchema_UnmarshalJSON(t *testing.T) {
	data := []byte(`{
		"PORT": { "type": "number", "required": true },
		"DEBUG": { "type": "boolean", "required": true },
		"ENV": { "type": "enum", "required": true, "values": ["dev", "staging", "production"] },
		"EMAIL": { "type": "string", "pattern": "^[^@\\s]+@[^@\\s]+\\.[^@\\s]+$" }
	}`)

	var schema Schema
	require.NoError(t, json.Unmarshal(data, &schema))

	assert.Equal(t, NumberField{Required: true}, schema["PORT"])
	assert.Equal(t, BooleanField{Required: true}, schema["DEBUG"])
	assert.Equal(t, EnumField{Required: true, Values: []string{"dev", "staging", "production"}}, schema["ENV"])
	assert.Equal(t, StringField{Pattern: Some(emailPattern)}, schema["EMAIL"])
}

func TestSchema_UnmarshalJSON_Invalid(t *testing.T) {
	var schema Schema
	assert.Error(t, json.Unmarshal([]byte(`{"PORT": {"type": "integer"}}`), &schema))
	assert.Error(t, json.Unmarshal([]byte(`[1, 2]`), &schema))
}
