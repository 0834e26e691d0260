package envschema

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"reflect"
	"slices"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DefaultDebounce is how long Watch waits after the last change before re-validating.
const DefaultDebounce = 100 * time.Millisecond

// Loader loads a schema and entries from sources, then validates them.
// Sources are merged in order (later override earlier).
// A Loader must not be reconfigured while Load or Watch is running.
type Loader struct {
	schema   SchemaSource
	sources  []Source
	strict   bool
	debounce time.Duration
	logger   logrus.FieldLogger
}

// NewLoader creates a Loader for the given schema with no entry sources and strict mode disabled.
func NewLoader(schema SchemaSource) *Loader {
	return &Loader{
		schema:   schema,
		sources:  make([]Source, 0),
		debounce: DefaultDebounce,
		logger:   discardLogger(),
	}
}

// WithSource adds an entry source. Sources are processed in order (later override earlier).
func (l *Loader) WithSource(src Source) *Loader {
	l.sources = append(l.sources, src)
	return l
}

// Strict controls whether entries missing from the schema are reported. Default: false.
func (l *Loader) Strict(strict bool) *Loader {
	l.strict = strict
	return l
}

// WithLogger sets the logger used by Watch. Default: discard.
func (l *Loader) WithLogger(logger logrus.FieldLogger) *Loader {
	if logger != nil {
		l.logger = logger
	}
	return l
}

// WithDebounce sets the delay between the last change and the re-validation in Watch.
func (l *Loader) WithDebounce(d time.Duration) *Loader {
	if d > 0 {
		l.debounce = d
	}
	return l
}

// Load reads the schema and every source, merges entries and validates them.
// A returned error means an input could not be loaded; validation failures
// are reported in Report.Result, never as an error.
func (l *Loader) Load(ctx context.Context) (*Report, error) {
	if l.schema == nil {
		return nil, errors.New("envschema: loader has no schema source")
	}

	// Step 1: Load schema and sources concurrently
	var schema Schema
	loaded := make([]map[string]string, len(l.sources))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := l.schema.LoadSchema(gctx)
		if err != nil {
			return fmt.Errorf("load schema %s: %w", l.schema.Name(), err)
		}
		schema = s
		return nil
	})
	for i, src := range l.sources {
		g.Go(func() error {
			data, err := src.Load(gctx)
			if err != nil {
				return fmt.Errorf("load source %s: %w", src.Name(), err)
			}
			loaded[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Step 2: Merge in declaration order, tracking provenance
	entries := make(map[string]string)
	winners := make(map[string]*EntryProvenance)
	for i, src := range l.sources {
		for key, value := range loaded[i] {
			entries[key] = value
			if prov, ok := winners[key]; ok {
				prov.Shadowed = append(prov.Shadowed, prov.SourceName)
				prov.SourceName = src.Name()
				continue
			}
			winners[key] = &EntryProvenance{Key: key, SourceName: src.Name()}
		}
	}

	provenance := Provenance{Entries: make([]EntryProvenance, 0, len(winners))}
	for _, key := range slices.Sorted(maps.Keys(winners)) {
		provenance.Entries = append(provenance.Entries, *winners[key])
	}

	// Step 3: Validate
	return &Report{
		Result:     Validate(entries, schema, l.strict),
		Schema:     schema,
		Entries:    entries,
		Provenance: provenance,
		CheckedAt:  time.Now(),
		Version:    1,
		Trigger:    "initial",
	}, nil
}

// Watch monitors the schema and sources for changes and re-validates.
// Returns: reports channel, errors channel, initial load error.
// Changes are debounced. Both channels are closed when ctx is cancelled or
// no watchable source remains.
func (l *Loader) Watch(ctx context.Context) (<-chan Report, <-chan error, error) {
	initial, err := l.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("initial load failed: %w", err)
	}

	reportCh := make(chan Report)
	errorCh := make(chan error)

	go l.watchLoop(ctx, initial, reportCh, errorCh)

	return reportCh, errorCh, nil
}

// watchable is satisfied by both Source and SchemaSource.
type watchable interface {
	Watch(ctx context.Context) (<-chan ChangeEvent, error)
	Name() string
}

// watchLoop emits the initial report, then re-validates on debounced change events.
func (l *Loader) watchLoop(ctx context.Context, initial *Report, reportCh chan<- Report, errorCh chan<- error) {
	defer close(reportCh)
	defer close(errorCh)

	select {
	case reportCh <- *initial:
	case <-ctx.Done():
		return
	}

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	targets := make([]watchable, 0, len(l.sources)+1)
	targets = append(targets, l.schema)
	for _, src := range l.sources {
		targets = append(targets, src)
	}

	changeChannels := make([]<-chan ChangeEvent, 0, len(targets))
	for _, target := range targets {
		changeCh, err := target.Watch(watchCtx)
		if err != nil {
			if errors.Is(err, ErrWatchNotSupported) {
				l.logger.WithField("source", target.Name()).Debug("source does not support watching")
				continue
			}
			select {
			case errorCh <- fmt.Errorf("watch source %s: %w", target.Name(), err):
			case <-ctx.Done():
				return
			}
			continue
		}
		changeChannels = append(changeChannels, changeCh)
	}

	if len(changeChannels) == 0 {
		return
	}

	merged := mergeChanges(watchCtx, changeChannels)
	version := initial.Version

	var timer *time.Timer
	var timerC <-chan time.Time
	var cause string

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-merged:
			if !ok {
				merged = nil
				if timerC == nil {
					return
				}
				continue
			}

			l.logger.WithField("cause", event.Cause).Debug("change detected")
			cause = event.Cause
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(l.debounce)
			timerC = timer.C

		case <-timerC:
			timer, timerC = nil, nil

			rep, err := l.Load(ctx)
			if err != nil {
				// Keep the previous report current
				l.logger.WithError(err).Warn("reload failed")
				select {
				case errorCh <- fmt.Errorf("reload failed: %w", err):
				case <-ctx.Done():
					return
				}
			} else {
				version++
				rep.Version = version
				rep.Trigger = cause
				l.logger.WithFields(logrus.Fields{
					"version": version,
					"valid":   rep.Result.Valid(),
				}).Info("re-validated")

				select {
				case reportCh <- *rep:
				case <-ctx.Done():
					return
				}
			}

			if merged == nil {
				return
			}
		}
	}
}

// mergeChanges fans in change channels. The returned channel closes when
// all inputs are closed or ctx is done.
func mergeChanges(ctx context.Context, changeChannels []<-chan ChangeEvent) <-chan ChangeEvent {
	out := make(chan ChangeEvent)

	go func() {
		defer close(out)
		open := slices.Clone(changeChannels)

		for len(open) > 0 {
			cases := make([]reflect.SelectCase, len(open)+1)
			cases[0] = reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ctx.Done())}
			for i, ch := range open {
				cases[i+1] = reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ch)}
			}

			chosen, value, ok := reflect.Select(cases)
			if chosen == 0 {
				return
			}
			if !ok {
				open = slices.Delete(open, chosen-1, chosen)
				continue
			}

			event, ok := value.Interface().(ChangeEvent)
			if !ok {
				continue
			}

			select {
			case out <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

func discardLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
