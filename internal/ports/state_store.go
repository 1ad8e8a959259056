package ports

import (
	"context"

	"github.com/lacewing-labs/taskd/internal/domain"
)

// StateStore persists the override state document (spec.md §4.1).
// Implementations must make Set durable and atomic with respect to a
// crash: write to a sibling temp file, then rename.
type StateStore interface {
	// Get returns the current document. If no document has ever been
	// written, it returns the default {SchemaVersion: 1, Overrides: {}}.
	Get(ctx context.Context) (domain.StateDocument, error)

	// Set persists doc atomically, replacing whatever was there before.
	Set(ctx context.Context, doc domain.StateDocument) error

	// Clear resets the store to the default document. It exists for tests
	// only and must return an error outside a test build.
	Clear(ctx context.Context) error
}
