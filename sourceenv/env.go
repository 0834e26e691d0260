package sourceenv

import (
	"context"
	"os"
	"strings"

	"github.com/Azhovan/envschema"
	"github.com/Azhovan/envschema/internal/normalize"
)

// Options configures environment variable source behavior.
type Options struct {
	// Prefix filters vars starting with prefix (stripped before validation).
	// Empty = load all vars.
	// Prefix matching behavior is controlled by CaseSensitive.
	Prefix string

	// CaseSensitive controls prefix matching (default: false).
	// When false, prefix matching is case-insensitive (APP_ matches app_, App_, etc.).
	// When true, prefix must match exactly.
	CaseSensitive bool
}

type envSource struct {
	opts    Options
	environ func() []string
}

// New creates an environment variable source.
func New(opts Options) envschema.Source {
	return &envSource{opts: opts, environ: os.Environ}
}

// Load scans environment variables and filters them by prefix.
func (e *envSource) Load(ctx context.Context) (map[string]string, error) {
	result := make(map[string]string)

	for _, env := range e.environ() {
		key, value, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}

		key, ok = normalize.StripPrefix(key, e.opts.Prefix, e.opts.CaseSensitive)
		if !ok || key == "" {
			continue
		}

		result[key] = value
	}

	return result, nil
}

// Watch returns ErrWatchNotSupported (env vars don't change at runtime).
func (e *envSource) Watch(ctx context.Context) (<-chan envschema.ChangeEvent, error) {
	return nil, envschema.ErrWatchNotSupported
}

// Name returns "env" or "env:PREFIX".
func (e *envSource) Name() string {
	if e.opts.Prefix == "" {
		return "env"
	}
	return "env:" + e.opts.Prefix
}
