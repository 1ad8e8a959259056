package statefile

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	"github.com/lacewing-labs/taskd/internal/domain"
	"github.com/lacewing-labs/taskd/internal/ports"
)

const fileName = "state.json"

var errClearNotPermitted = errors.New("statefile: Clear is only permitted on a store constructed with NewStoreForTests")

// Store implements ports.StateStore against a JSON file at
// <statedir>/state.json.
type Store struct {
	statedir   string
	allowClear bool
}

var _ ports.StateStore = (*Store)(nil)

// NewStore returns a Store rooted at statedir; it touches no files.
// statedir is created recursively by Set when the process is not
// running as root and the directory does not yet exist (spec.md §4.1's
// directory-creation rule); as root, the directory is assumed to be
// pre-provisioned.
func NewStore(statedir string) *Store {
	return &Store{statedir: statedir}
}

// NewStoreForTests returns a Store whose Clear method is enabled. Tests
// in other packages that need a disposable state document should use
// this instead of NewStore.
func NewStoreForTests(statedir string) *Store {
	return &Store{statedir: statedir, allowClear: true}
}

func (s *Store) path() string {
	return filepath.Join(s.statedir, fileName)
}

// Get implements ports.StateStore.
func (s *Store) Get(ctx context.Context) (domain.StateDocument, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return domain.NewStateDocument(), nil
		}
		return domain.StateDocument{}, err
	}

	var doc domain.StateDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.StateDocument{}, err
	}
	if doc.SchemaVersion != domain.CurrentSchemaVersion {
		return domain.StateDocument{}, domain.ErrSchemaVersion
	}
	if doc.Overrides == nil {
		doc.Overrides = make(map[domain.Label]domain.Override)
	}
	return doc, nil
}

// Set implements ports.StateStore. The write is atomic with respect to
// a crash: renameio.WriteFile writes to a sibling temp file, fsyncs it
// and the containing directory, then renames it into place.
func (s *Store) Set(ctx context.Context, doc domain.StateDocument) error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return renameio.WriteFile(s.path(), data, 0o600)
}

// Clear implements ports.StateStore. It is a programming error to call
// Clear on a Store built with NewStore; only NewStoreForTests enables
// it.
func (s *Store) Clear(ctx context.Context) error {
	if !s.allowClear {
		return errClearNotPermitted
	}
	return renameio.WriteFile(s.path(), []byte(`{"SchemaVersion":1,"Overrides":{}}`), 0o600)
}

func (s *Store) ensureDir() error {
	if _, err := os.Stat(s.statedir); err == nil {
		return nil
	}
	if os.Geteuid() == 0 {
		// Root is expected to have pre-provisioned the directory.
		return nil
	}
	return os.MkdirAll(s.statedir, 0o700)
}
