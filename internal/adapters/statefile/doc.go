// Package statefile implements ports.StateStore: atomic, schema-versioned
// JSON persistence of the override document at <statedir>/state.json.
//
// Grounded on the teacher's pkg/state/file_repository.go, with one
// deliberate improvement: atomic replace uses
// github.com/google/renameio/v2 instead of a hand-rolled temp+os.Rename
// pair, because renameio also fsyncs the containing directory, which the
// teacher's version does not (see DESIGN.md).
package statefile
