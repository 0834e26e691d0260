package envschema

import "encoding/json"

// Result is the outcome of one validation run.
// Validity is derived from Errors, so the two never disagree.
type Result struct {
	Errors []FieldError
}

// Valid reports whether no validation errors were found.
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// Err returns nil for a valid result, otherwise a *ValidationError.
func (r Result) Err() error {
	if r.Valid() {
		return nil
	}
	return &ValidationError{FieldErrors: r.Errors}
}

// Messages returns the rendered message of every error, in order.
func (r Result) Messages() []string {
	msgs := make([]string, len(r.Errors))
	for i, fe := range r.Errors {
		msgs[i] = fe.Error()
	}
	return msgs
}

// MarshalJSON encodes the result as {"valid": bool, "errors": [string, ...]}.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Valid  bool     `json:"valid"`
		Errors []string `json:"errors"`
	}{
		Valid:  r.Valid(),
		Errors: r.Messages(),
	})
}
