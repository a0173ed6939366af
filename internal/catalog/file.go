package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// FileProvider reads the catalog from a JSON file holding an array of items.
// It backs local development and the matchctl tool.
type FileProvider struct {
	path string
}

// NewFileProvider creates a provider for path.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// ListCatalog reads and decodes the file on every call.
func (p *FileProvider) ListCatalog(_ context.Context) ([]Item, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode catalog file %s: %w", p.path, err)
	}
	return items, nil
}
