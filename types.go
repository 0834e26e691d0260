package envschema

import (
	"context"
	"errors"
	"time"
)

// Source provides observed entries from a backend (dotenv files, process environment).
// Keys are returned verbatim; entry names are case-sensitive.
type Source interface {
	// Load returns entries as a flat map. Missing optional sources should return an empty map.
	Load(ctx context.Context) (map[string]string, error)

	// Watch emits ChangeEvent when entries change. Returns ErrWatchNotSupported if not supported.
	Watch(ctx context.Context) (<-chan ChangeEvent, error)

	// Name identifies the source in provenance and error messages (e.g., "file:.env").
	Name() string
}

// SchemaSource provides the schema that entries are validated against.
type SchemaSource interface {
	LoadSchema(ctx context.Context) (Schema, error)
	Watch(ctx context.Context) (<-chan ChangeEvent, error)
	Name() string
}

// ChangeEvent notifies of source changes.
type ChangeEvent struct {
	At    time.Time
	Cause string // Description (e.g., "file-changed")
}

// ErrWatchNotSupported is returned when watching is not supported.
var ErrWatchNotSupported = errors.New("envschema: watch not supported by this source")

// Optional distinguishes "not set" from "zero value".
type Optional[T any] struct {
	Value T
	Set   bool
}

// Get returns the wrapped value and whether it was set.
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Set
}

// OrDefault returns the wrapped value or the provided default.
func (o Optional[T]) OrDefault(defaultVal T) T {
	if o.Set {
		return o.Value
	}
	return defaultVal
}

// Report is the outcome of one Loader run: the validation result plus the
// inputs it was computed from.
type Report struct {
	Result     Result
	Schema     Schema
	Entries    map[string]string
	Provenance Provenance
	CheckedAt  time.Time
	Version    int64  // Increments on each watch reload (starts at 1)
	Trigger    string // What caused the check ("initial" or a ChangeEvent cause)
}
