// Package manifest implements ports.ManifestParser with encoding/json.
// The manifest wire format is already JSON (spec.md §3), and the
// teacher's own state persistence (pkg/state/file_repository.go) decodes
// an equally small, flat, schema-versioned document with encoding/json;
// there is no ecosystem library that improves on the standard library
// for a shape this simple, so stdlib is used deliberately here (see
// DESIGN.md).
package manifest
