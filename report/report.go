package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Azhovan/envschema"
	"github.com/agnivade/levenshtein"
	"github.com/muesli/termenv"
)

// maxSuggestionDistance is the largest edit distance offered as a "did you mean" hint.
const maxSuggestionDistance = 2

// Option configures rendering using the functional options pattern.
type Option func(*config)

type config struct {
	asJSON      bool
	indent      string
	profile     termenv.Profile
	sources     *envschema.Provenance
	suggestions envschema.Schema
}

// AsJSON renders {"valid": bool, "errors": [...]} instead of text.
func AsJSON() Option {
	return func(cfg *config) {
		cfg.asJSON = true
	}
}

// WithIndent sets the indentation for JSON output. Default is two spaces.
func WithIndent(indent string) Option {
	return func(cfg *config) {
		cfg.indent = indent
	}
}

// WithProfile colours text output for the given terminal profile.
// Default is termenv.Ascii (no colour).
func WithProfile(p termenv.Profile) Option {
	return func(cfg *config) {
		cfg.profile = p
	}
}

// WithSources appends the supplying source to each line whose entry has provenance.
func WithSources(p envschema.Provenance) Option {
	return func(cfg *config) {
		cfg.sources = &p
	}
}

// WithSuggestions adds "did you mean" hints for extra fields close to a schema field name.
func WithSuggestions(schema envschema.Schema) Option {
	return func(cfg *config) {
		cfg.suggestions = schema
	}
}

// Write renders r to w.
func Write(w io.Writer, r envschema.Result, opts ...Option) error {
	cfg := config{
		indent:  "  ",
		profile: termenv.Ascii,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.asJSON {
		return writeJSON(w, r, cfg)
	}
	return writeText(w, r, cfg)
}

func writeJSON(w io.Writer, r envschema.Result, cfg config) error {
	var data []byte
	var err error
	if cfg.indent != "" {
		data, err = json.MarshalIndent(r, "", cfg.indent)
	} else {
		data, err = json.Marshal(r)
	}
	if err != nil {
		return fmt.Errorf("json marshal error: %w", err)
	}

	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	return nil
}

func writeText(w io.Writer, r envschema.Result, cfg config) error {
	p := cfg.profile
	green := p.Color("2")
	red := p.Color("1")
	yellow := p.Color("3")

	var b strings.Builder
	if r.Valid() {
		b.WriteString(p.String("✅ All environment variables are valid!").Foreground(green).Bold().String())
		b.WriteString("\n")
	} else {
		b.WriteString(p.String("❌ Invalid .env:").Foreground(red).Bold().String())
		b.WriteString("\n")

		for _, fe := range r.Errors {
			name := p.String(fe.FieldName()).Foreground(yellow).String()
			expected := func(s string) string { return p.String(s).Foreground(green).String() }
			got := func(s string) string { return p.String(s).Foreground(red).String() }

			var line string
			switch e := fe.(type) {
			case envschema.MissingRequiredError:
				line = fmt.Sprintf("- %s: %s", name, got("missing"))
			case envschema.InvalidTypeError:
				line = fmt.Sprintf("- %s: expected %s, got %s", name, expected(string(e.Expected)), got(e.Got))
			case envschema.InvalidEnumError:
				line = fmt.Sprintf("- %s: expected one of %s, got %s",
					name, expected("["+strings.Join(e.Allowed, ", ")+"]"), got(e.Got))
			case envschema.InvalidPatternError:
				line = fmt.Sprintf("- %s: does not match pattern %s", name, expected(e.Pattern))
			case envschema.InvalidRegexPatternError:
				line = fmt.Sprintf("- %s: invalid pattern (%s)", name, got(e.Reason))
			case envschema.ExtraFieldError:
				line = fmt.Sprintf("- %s: %s", name, got("not in schema"))
				if s, ok := suggest(e.Name, cfg.suggestions); ok {
					line += fmt.Sprintf(" (did you mean %s?)", s)
				}
			default:
				line = fmt.Sprintf("- %s: %s", name, got(fe.Error()))
			}

			if cfg.sources != nil {
				if src, ok := cfg.sources.SourceOf(fe.FieldName()); ok {
					line += fmt.Sprintf(" (source: %s)", src)
				}
			}

			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	return nil
}

// suggest returns the schema field closest to name, if within maxSuggestionDistance.
// Ties resolve to the lexically smallest field name.
func suggest(name string, schema envschema.Schema) (string, bool) {
	best := ""
	bestDistance := maxSuggestionDistance + 1

	for field := range schema {
		d := levenshtein.ComputeDistance(name, field)
		if d < bestDistance || (d == bestDistance && field < best) {
			best, bestDistance = field, d
		}
	}

	return best, best != "" && bestDistance <= maxSuggestionDistance
}
