// Package report renders validation results for people and machines.
//
// Write produces either the human-readable listing (optionally coloured with
// termenv) or the JSON document {"valid": bool, "errors": [...]}.
// WriteFile persists a timestamped JSON snapshot of a Loader report.
package report
