package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/muesli/termenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Azhovan/envschema"
	"github.com/Azhovan/envschema/report"
	"github.com/Azhovan/envschema/schemafile"
	"github.com/Azhovan/envschema/sourceenv"
	"github.com/Azhovan/envschema/sourcefile"
)

// Exit codes.
const (
	exitValid   = 0
	exitInvalid = 1
	exitFatal   = 2
)

// exitError carries a process exit code through cobra's error return.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

type options struct {
	envFiles   []string
	schemaPath string
	strict     bool
	jsonOutput bool
	processEnv bool
	prefix     string
	noColor    bool
	watch      bool
	reportFile string
	verbose    bool
}

// Execute runs the command with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitValid
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		if exitErr.err != nil {
			fmt.Fprintln(stderr, exitErr.err)
		}
		return exitErr.code
	}

	// Flag parsing and usage errors
	fmt.Fprintln(stderr, err)
	return exitFatal
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "envschema",
		Short: "Validate .env files against a schema",
		Long: `envschema checks environment entries from .env files (and optionally the
process environment) against a JSON, YAML or TOML schema and reports every
violation at once.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, stdout, stderr)
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVarP(&opts.envFiles, "env", "e", []string{".env"}, "Path to a .env file (repeatable, later files override earlier ones)")
	flags.StringVarP(&opts.schemaPath, "schema", "s", "env.schema.json", "Path to the schema file (json, yaml or toml)")
	flags.BoolVarP(&opts.strict, "strict", "x", false, "Report entries that are not in the schema")
	flags.BoolVarP(&opts.jsonOutput, "json", "j", false, "Output results as JSON")
	flags.BoolVar(&opts.processEnv, "process-env", false, "Also validate the process environment (overrides .env files)")
	flags.StringVar(&opts.prefix, "prefix", "", "Only read process variables with this prefix (stripped)")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	flags.BoolVar(&opts.watch, "watch", false, "Re-validate whenever the schema or a .env file changes")
	flags.StringVar(&opts.reportFile, "report-file", "", "Write a JSON report to this path ({{timestamp}} is expanded)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging on stderr")

	return cmd
}

func run(ctx context.Context, opts *options, stdout, stderr io.Writer) error {
	logger := newLogger(stderr, opts.verbose)

	if opts.prefix != "" && !opts.processEnv {
		return &exitError{code: exitFatal, err: errors.New("--prefix requires --process-env")}
	}

	loader := envschema.NewLoader(schemafile.New(opts.schemaPath, schemafile.Options{Logger: logger})).
		Strict(opts.strict).
		WithLogger(logger)
	for _, path := range opts.envFiles {
		loader.WithSource(sourcefile.New(path, sourcefile.Options{Required: true}))
	}
	if opts.processEnv {
		loader.WithSource(sourceenv.New(sourceenv.Options{Prefix: opts.prefix}))
	}

	logger.WithFields(logrus.Fields{
		"schema": opts.schemaPath,
		"env":    opts.envFiles,
		"strict": opts.strict,
	}).Debug("validating")

	renderOpts := []report.Option{}
	if opts.jsonOutput {
		renderOpts = append(renderOpts, report.AsJSON())
	} else {
		renderOpts = append(renderOpts, report.WithProfile(colorProfile(stdout, opts.noColor)))
	}

	if opts.watch {
		return watch(ctx, loader, opts, renderOpts, stdout, logger)
	}

	rep, err := loader.Load(ctx)
	if err != nil {
		return &exitError{code: exitFatal, err: err}
	}

	if err := emit(rep, opts, renderOpts, stdout, logger); err != nil {
		return &exitError{code: exitFatal, err: err}
	}

	if !rep.Result.Valid() {
		return &exitError{code: exitInvalid}
	}
	return nil
}

// watch prints a report for the initial load and every change until ctx is done.
// The exit code reflects the last report.
func watch(ctx context.Context, loader *envschema.Loader, opts *options, renderOpts []report.Option, stdout io.Writer, logger logrus.FieldLogger) error {
	reports, errs, err := loader.Watch(ctx)
	if err != nil {
		return &exitError{code: exitFatal, err: err}
	}

	valid := true
	for reports != nil || errs != nil {
		select {
		case rep, ok := <-reports:
			if !ok {
				reports = nil
				continue
			}
			valid = rep.Result.Valid()
			if err := emit(&rep, opts, renderOpts, stdout, logger); err != nil {
				return &exitError{code: exitFatal, err: err}
			}

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.WithError(err).Error("watch")
		}
	}

	if !valid {
		return &exitError{code: exitInvalid}
	}
	return nil
}

// emit renders rep to stdout and, if configured, writes the report file.
func emit(rep *envschema.Report, opts *options, renderOpts []report.Option, stdout io.Writer, logger logrus.FieldLogger) error {
	all := append(slices.Clone(renderOpts),
		report.WithSources(rep.Provenance),
		report.WithSuggestions(rep.Schema),
	)
	if err := report.Write(stdout, rep.Result, all...); err != nil {
		return err
	}

	if opts.reportFile == "" {
		return nil
	}

	snap, err := report.NewSnapshot(rep)
	if err != nil {
		return err
	}
	path, err := report.WriteFile(snap, opts.reportFile)
	if err != nil {
		return fmt.Errorf("write report file: %w", err)
	}
	logger.WithField("path", path).Debug("report file written")
	return nil
}

func newLogger(w io.Writer, verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logger.SetLevel(logrus.WarnLevel)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// colorProfile returns the color profile for w. Non-terminals and --no-color get plain text.
func colorProfile(w io.Writer, noColor bool) termenv.Profile {
	if noColor {
		return termenv.Ascii
	}
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}
