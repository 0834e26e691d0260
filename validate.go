package envschema

import (
	"errors"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// booleanLiterals are the accepted boolean spellings, compared after lowercasing.
var booleanLiterals = map[string]bool{
	"true":  true,
	"false": true,
	"1":     true,
	"0":     true,
	"yes":   true,
	"no":    true,
}

// Validate checks entries against schema and returns every failure found.
// Each schema field yields at most one error. In strict mode every entry
// without a schema field adds an ExtraFieldError.
// Validate never fails: a malformed pattern is reported as an
// InvalidRegexPatternError. It does not mutate its inputs and is safe for
// concurrent use.
func Validate(entries map[string]string, schema Schema, strict bool) Result {
	var fieldErrors []FieldError
	processed := make(map[string]bool, len(schema))

	for _, name := range slices.Sorted(maps.Keys(schema)) {
		field := schema[name]
		processed[name] = true

		value, ok := entries[name]
		if !ok {
			if field.IsRequired() {
				if _, hasDefault := field.DefaultValue(); !hasDefault {
					fieldErrors = append(fieldErrors, MissingRequiredError{Name: name})
				}
			}
			continue
		}

		if fe := field.check(name, value); fe != nil {
			fieldErrors = append(fieldErrors, fe)
		}
	}

	if strict {
		for _, key := range slices.Sorted(maps.Keys(entries)) {
			if !processed[key] {
				fieldErrors = append(fieldErrors, ExtraFieldError{Name: key})
			}
		}
	}

	return Result{Errors: fieldErrors}
}

func (f StringField) check(name, value string) FieldError {
	return validatePattern(name, f.Pattern, value)
}

func (NumberField) check(name, value string) FieldError {
	if !isNumber(value) {
		return InvalidTypeError{Name: name, Expected: KindNumber, Got: value}
	}
	return nil
}

func (BooleanField) check(name, value string) FieldError {
	if !booleanLiterals[strings.ToLower(value)] {
		return InvalidTypeError{Name: name, Expected: KindBoolean, Got: value}
	}
	return nil
}

func (f EnumField) check(name, value string) FieldError {
	if !slices.Contains(f.Values, value) {
		return InvalidEnumError{Name: name, Allowed: f.Values, Got: value}
	}
	return nil
}

// validatePattern compiles the pattern (if any) and matches value against it.
func validatePattern(name string, pattern Optional[string], value string) FieldError {
	expr, ok := pattern.Get()
	if !ok {
		return nil
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return InvalidRegexPatternError{Name: name, Reason: err.Error()}
	}

	if !re.MatchString(value) {
		return InvalidPatternError{Name: name, Pattern: expr}
	}
	return nil
}

// isNumber reports whether value is a decimal float literal, or inf/infinity/nan
// in any case. Hex mantissas and digit separators are rejected. Values that
// overflow parse to ±Inf and count as numbers.
func isNumber(value string) bool {
	digits := value
	if digits != "" && (digits[0] == '+' || digits[0] == '-') {
		digits = digits[1:]
	}
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") || strings.Contains(value, "_") {
		return false
	}

	_, err := strconv.ParseFloat(value, 64)
	return err == nil || errors.Is(err, strconv.ErrRange)
}
