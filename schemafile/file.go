package schemafile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Azhovan/envschema"
	"github.com/Azhovan/envschema/internal/fswatch"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Options configures schema file behavior.
type Options struct {
	// Format: "json", "yaml" or "toml". Auto-detected from extension if empty.
	Format string

	// Logger receives a warning for every field property the schema parser
	// does not recognise. Nil means such properties are ignored silently.
	Logger logrus.FieldLogger
}

type schemaFile struct {
	path string
	opts Options
}

// New creates a file-based schema source.
func New(path string, opts Options) envschema.SchemaSource {
	return &schemaFile{
		path: path,
		opts: opts,
	}
}

// LoadSchema reads, decodes and parses the schema file. A missing file is an error.
func (f *schemaFile) LoadSchema(ctx context.Context) (envschema.Schema, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read schema file %s: %w", f.path, err)
	}

	format := f.opts.Format
	if format == "" {
		format = inferFormat(f.path)
	}

	raw, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.path, err)
	}

	var opts []envschema.ParseOption
	if f.opts.Logger != nil {
		opts = append(opts, envschema.WithUnknownProperty(func(field, property string) {
			f.opts.Logger.WithFields(logrus.Fields{
				"schema":   f.path,
				"field":    field,
				"property": property,
			}).Warn("ignoring unknown schema property")
		}))
	}

	schema, err := envschema.ParseSchema(raw, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.path, err)
	}

	return schema, nil
}

// Decode unmarshals a schema document into a generic map.
func Decode(data []byte, format string) (map[string]any, error) {
	var raw map[string]any
	switch format {
	case "json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse JSON schema: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse YAML schema: %w", err)
		}
	case "toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse TOML schema: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported schema format: %s (supported: json, yaml, toml)", format)
	}

	if raw == nil {
		raw = make(map[string]any)
	}
	return raw, nil
}

// Watch emits a change event whenever the schema file is written, replaced or removed.
func (f *schemaFile) Watch(ctx context.Context) (<-chan envschema.ChangeEvent, error) {
	return fswatch.File(ctx, f.path, "schema-changed:"+f.path)
}

// Name returns a human-readable identifier for this source.
func (f *schemaFile) Name() string {
	return "schema:" + filepath.Base(f.path)
}

func inferFormat(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	default:
		return "json"
	}
}
