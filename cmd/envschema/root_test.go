package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
  "PORT": {"type": "number", "required": true},
  "DEBUG": {"type": "boolean", "default": false},
  "NODE_ENV": {"type": "enum", "values": ["development", "production"]}
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, ctx context.Context, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Execute(ctx, args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestExecute(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "env.schema.json", testSchema)
	valid := writeFile(t, dir, "valid.env", "PORT=8080\nNODE_ENV=production\n")
	invalid := writeFile(t, dir, "invalid.env", "PORT=eighty\nNODE_ENV=staging\nPORTT=1\n")

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantOut    []string
		wantStderr string
	}{
		{
			name:     "valid",
			args:     []string{"-s", schema, "-e", valid},
			wantCode: exitValid,
			wantOut:  []string{"✅ All environment variables are valid!"},
		},
		{
			name:     "invalid",
			args:     []string{"--schema", schema, "--env", invalid},
			wantCode: exitInvalid,
			wantOut: []string{
				"❌ Invalid .env:",
				"- NODE_ENV: expected one of [development, production], got staging (source: file:" + invalid + ")",
				"- PORT: expected number, got eighty",
			},
		},
		{
			name:     "strict reports extra fields with suggestions",
			args:     []string{"-s", schema, "-e", invalid, "-x"},
			wantCode: exitInvalid,
			wantOut:  []string{"- PORTT: not in schema (did you mean PORT?)"},
		},
		{
			name:     "later env files override earlier ones",
			args:     []string{"-s", schema, "-e", invalid, "-e", valid},
			wantCode: exitValid,
			wantOut:  []string{"✅ All environment variables are valid!"},
		},
		{
			name:       "missing schema",
			args:       []string{"-s", filepath.Join(dir, "nope.json"), "-e", valid},
			wantCode:   exitFatal,
			wantStderr: "load schema",
		},
		{
			name:       "missing env file",
			args:       []string{"-s", schema, "-e", filepath.Join(dir, "nope.env")},
			wantCode:   exitFatal,
			wantStderr: "required env file not found",
		},
		{
			name:       "unknown flag",
			args:       []string{"--bogus"},
			wantCode:   exitFatal,
			wantStderr: "unknown flag",
		},
		{
			name:       "prefix without process env",
			args:       []string{"-s", schema, "-e", valid, "--prefix", "APP_"},
			wantCode:   exitFatal,
			wantStderr: "--prefix requires --process-env",
		},
		{
			name:       "positional arguments rejected",
			args:       []string{"extra"},
			wantCode:   exitFatal,
			wantStderr: "unknown command",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, stderr := execute(t, context.Background(), tt.args...)

			assert.Equal(t, tt.wantCode, code, "stderr: %s", stderr)
			for _, want := range tt.wantOut {
				assert.Contains(t, out, want)
			}
			if tt.wantStderr != "" {
				assert.Contains(t, stderr, tt.wantStderr)
			}
		})
	}
}

func TestExecute_JSON(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "env.schema.json", testSchema)
	env := writeFile(t, dir, ".env", "DEBUG=maybe\n")

	code, out, _ := execute(t, context.Background(), "-s", schema, "-e", env, "--json")
	assert.Equal(t, exitInvalid, code)

	var got struct {
		Valid  bool     `json:"valid"`
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.False(t, got.Valid)
	assert.Equal(t, []string{
		"invalid type for DEBUG: expected boolean, got maybe",
		"missing required field: PORT",
	}, got.Errors)
}

func TestExecute_ProcessEnv(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "env.schema.json", testSchema)
	env := writeFile(t, dir, ".env", "PORT=eighty\n")

	t.Setenv("ENVSCHEMA_TEST_PORT", "9090")

	code, out, stderr := execute(t, context.Background(),
		"-s", schema, "-e", env, "--process-env", "--prefix", "ENVSCHEMA_TEST_")

	assert.Equal(t, exitValid, code, "stderr: %s", stderr)
	assert.Contains(t, out, "✅ All environment variables are valid!")
}

func TestExecute_YAMLSchema(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "env.schema.yaml", "PORT:\n  type: number\n  required: true\n")
	env := writeFile(t, dir, ".env", "PORT=8080\n")

	code, _, stderr := execute(t, context.Background(), "-s", schema, "-e", env)
	assert.Equal(t, exitValid, code, "stderr: %s", stderr)
}

func TestExecute_ReportFile(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "env.schema.json", testSchema)
	env := writeFile(t, dir, ".env", "PORT=eighty\nSECRET=hunter2\n")
	reportPath := filepath.Join(dir, "reports", "env-report.json")

	code, _, stderr := execute(t, context.Background(),
		"-s", schema, "-e", env, "--report-file", reportPath)
	assert.Equal(t, exitInvalid, code, "stderr: %s", stderr)

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"valid": false`)
	assert.Contains(t, string(data), `"invalid_type"`)
	assert.NotContains(t, string(data), "hunter2", "entry values are never written")
}

func TestExecute_Watch(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "env.schema.json", testSchema)
	env := writeFile(t, dir, ".env", "PORT=8080\n")

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	code, out, stderr := execute(t, ctx, "-s", schema, "-e", env, "--watch")

	assert.Equal(t, exitValid, code, "stderr: %s", stderr)
	assert.Equal(t, 1, strings.Count(out, "✅ All environment variables are valid!"))
}

func TestExecute_UnknownSchemaProperty(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "env.schema.json", `{"PORT": {"type": "number", "required": true, "example": 8080}}`)
	env := writeFile(t, dir, ".env", "PORT=8080\n")

	code, _, stderr := execute(t, context.Background(), "-s", schema, "-e", env)
	assert.Equal(t, exitValid, code, "stderr: %s", stderr)
	assert.Contains(t, stderr, "ignoring unknown schema property")
	assert.Contains(t, stderr, "property=example")
}

func TestExecute_Verbose(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "env.schema.json", testSchema)
	env := writeFile(t, dir, ".env", "PORT=8080\n")

	code, _, stderr := execute(t, context.Background(), "-s", schema, "-e", env, "-v")
	assert.Equal(t, exitValid, code)
	assert.Contains(t, stderr, "validating")
}

func TestColorProfile(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, termenv.Ascii, colorProfile(&buf, false), "non-file writers get no color")
	assert.Equal(t, termenv.Ascii, colorProfile(os.Stdout, true), "--no-color forces plain text")
}

func TestExitError(t *testing.T) {
	assert.Equal(t, "exit status 1", (&exitError{code: exitInvalid}).Error())

	inner := os.ErrNotExist
	err := &exitError{code: exitFatal, err: inner}
	assert.Equal(t, inner.Error(), err.Error())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
