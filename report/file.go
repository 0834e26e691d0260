package report

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Azhovan/envschema"
)

// MaxSnapshotSize is the maximum allowed report file size (10MB).
const MaxSnapshotSize = 10 * 1024 * 1024

// SnapshotVersion is the current report file format version.
const SnapshotVersion = "1.0"

// Report file errors.
var (
	// ErrReportTooLarge is returned when a serialized snapshot exceeds MaxSnapshotSize.
	ErrReportTooLarge = errors.New("envschema: report exceeds 10MB size limit")

	// ErrNilReport is returned when a nil report or snapshot is passed.
	ErrNilReport = errors.New("envschema: report is nil")
)

// Snapshot is a point-in-time record of one validation run.
type Snapshot struct {
	// Version is SnapshotVersion at the time of writing
	Version string `json:"version"`

	// Timestamp is when the validation ran
	Timestamp time.Time `json:"timestamp"`

	Valid  bool            `json:"valid"`
	Errors []SnapshotError `json:"errors"`

	// Sources maps each observed entry to the source that supplied it.
	// Values are never recorded.
	Sources map[string]string `json:"sources"`
}

// SnapshotError is the serialized form of one validation error.
type SnapshotError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewSnapshot captures rep for persistence. Entry values are omitted so that
// secrets in the environment never reach disk.
func NewSnapshot(rep *envschema.Report) (*Snapshot, error) {
	if rep == nil {
		return nil, ErrNilReport
	}

	snap := &Snapshot{
		Version:   SnapshotVersion,
		Timestamp: rep.CheckedAt.UTC(),
		Valid:     rep.Result.Valid(),
		Errors:    make([]SnapshotError, 0, len(rep.Result.Errors)),
		Sources:   make(map[string]string, len(rep.Provenance.Entries)),
	}

	for _, fe := range rep.Result.Errors {
		snap.Errors = append(snap.Errors, SnapshotError{
			Field:   fe.FieldName(),
			Code:    fe.Code(),
			Message: fe.Error(),
		})
	}
	for _, e := range rep.Provenance.Entries {
		snap.Sources[e.Key] = e.SourceName
	}

	return snap, nil
}

// ExpandPathWithTime replaces every {{timestamp}} in template with t in UTC,
// formatted as 20060102-150405.
func ExpandPathWithTime(template string, t time.Time) string {
	timestamp := t.UTC().Format("20060102-150405")
	return strings.ReplaceAll(template, "{{timestamp}}", timestamp)
}

// WriteFile persists a snapshot to disk with atomic write semantics and
// returns the path written.
// A {{timestamp}} in the path expands to snapshot.Timestamp, so the file name
// always agrees with the recorded time.
// Returns ErrReportTooLarge if serialized size exceeds MaxSnapshotSize.
func WriteFile(snapshot *Snapshot, pathTemplate string) (string, error) {
	if snapshot == nil {
		return "", ErrNilReport
	}

	targetPath := ExpandPathWithTime(pathTemplate, snapshot.Timestamp)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", err
	}

	if len(data) > MaxSnapshotSize {
		return "", ErrReportTooLarge
	}

	dir := filepath.Dir(targetPath)
	if dir != "" && dir != "." {
		if mkdirErr := os.MkdirAll(dir, 0700); mkdirErr != nil {
			return "", mkdirErr
		}
	}

	// Temp file in the same directory so the rename stays on one filesystem
	tempPath, err := generateTempFileName(targetPath)
	if err != nil {
		return "", err
	}

	var tempFileCreated bool
	defer func() {
		if tempFileCreated {
			_ = os.Remove(tempPath)
		}
	}()

	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return "", err
	}
	tempFileCreated = true

	if err := os.Chmod(tempPath, 0600); err != nil {
		return "", err
	}

	if err := os.Rename(tempPath, targetPath); err != nil {
		return "", err
	}
	tempFileCreated = false

	return targetPath, nil
}

// generateTempFileName returns targetPath + ".tmp." + 16 random hex chars.
func generateTempFileName(targetPath string) (string, error) {
	randomBytes := make([]byte, 8)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", err
	}
	return targetPath + ".tmp." + hex.EncodeToString(randomBytes), nil
}
