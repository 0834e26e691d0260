package sourcefile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/Azhovan/envschema"
	"github.com/Azhovan/envschema/internal/fswatch"
	"github.com/Azhovan/envschema/internal/normalize"
	"github.com/subosito/gotenv"
)

// Options configures dotenv file source behavior.
type Options struct {
	// Required: if true, missing files cause an error. Default: false (returns empty map).
	Required bool
}

type fileSource struct {
	path string
	opts Options
}

// New creates a dotenv file source.
func New(path string, opts Options) envschema.Source {
	return &fileSource{
		path: path,
		opts: opts,
	}
}

// Load reads and parses the file.
func (f *fileSource) Load(ctx context.Context) (map[string]string, error) {
	file, err := os.Open(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if f.opts.Required {
				return nil, fmt.Errorf("required env file not found: %s: %w", f.path, err)
			}
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("read env file %s: %w", f.path, err)
	}
	defer file.Close()

	env, err := gotenv.StrictParse(file)
	if err != nil {
		return nil, fmt.Errorf("parse env file %s: %w", f.path, err)
	}

	result := make(map[string]string, len(env))
	for key, value := range env {
		if key = normalize.Key(key); key != "" {
			result[key] = value
		}
	}

	return result, nil
}

// Watch emits a change event whenever the file is written, replaced or removed.
func (f *fileSource) Watch(ctx context.Context) (<-chan envschema.ChangeEvent, error) {
	return fswatch.File(ctx, f.path, "file-changed:"+f.path)
}

// Name returns a human-readable identifier for this source.
func (f *fileSource) Name() string {
	return "file:" + f.path
}
