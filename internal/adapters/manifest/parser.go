package manifest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lacewing-labs/taskd/internal/domain"
	"github.com/lacewing-labs/taskd/internal/ports"
)

// Parser implements ports.ManifestParser.
type Parser struct{}

var _ ports.ManifestParser = Parser{}

// New constructs a Parser. It holds no state; a zero Parser is usable.
func New() Parser { return Parser{} }

// ParsePath implements ports.ManifestParser.
func (Parser) ParsePath(path string) (domain.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Manifest{}, domain.ErrNotFound
		}
		return domain.Manifest{}, fmt.Errorf("%w: %v", domain.ErrInvalidManifest, err)
	}
	return parse(data, path)
}

// ParseJSON implements ports.ManifestParser.
func (Parser) ParseJSON(data []byte, origin string) (domain.Manifest, error) {
	return parse(data, origin)
}

func parse(data []byte, origin string) (domain.Manifest, error) {
	var m domain.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return domain.Manifest{}, fmt.Errorf("%w: %s: %v", domain.ErrInvalidManifest, origin, err)
	}
	return m, nil
}
