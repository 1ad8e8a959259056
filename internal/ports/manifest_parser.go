package ports

import "github.com/lacewing-labs/taskd/internal/domain"

// ManifestParser turns on-disk manifest bytes into a validated
// domain.Manifest. origin is a human-readable source description of
// bytes passed to ParseJSON, used in error messages.
type ManifestParser interface {
	ParsePath(path string) (domain.Manifest, error)
	ParseJSON(data []byte, origin string) (domain.Manifest, error)
}
