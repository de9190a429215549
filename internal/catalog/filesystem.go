package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileSystemSource serves the catalog from a YAML file:
//
//	products:
//	  - id: p-1
//	    name: Running Shoe
//	    category: footwear
type FileSystemSource struct {
	path string

	mu       sync.RWMutex
	products map[string]*Product
}

type catalogFile struct {
	Products []Product `yaml:"products"`
}

// NewFileSystemSource loads the catalog file at path.
func NewFileSystemSource(path string) (*FileSystemSource, error) {
	s := &FileSystemSource{path: path}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the catalog file, replacing the loaded products.
func (s *FileSystemSource) Reload() error {
	content, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read catalog file: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return fmt.Errorf("failed to parse catalog file %s: %w", s.path, err)
	}

	products := make(map[string]*Product, len(file.Products))
	for i := range file.Products {
		p := file.Products[i]
		if p.ID == "" {
			return fmt.Errorf("catalog file %s: product at index %d has no id", s.path, i)
		}
		if _, dup := products[p.ID]; dup {
			slog.Warn("[Catalog] Duplicate product id in catalog file - last entry wins",
				"path", s.path, "product_id", p.ID)
		}
		products[p.ID] = &p
	}

	s.mu.Lock()
	s.products = products
	s.mu.Unlock()

	slog.Info("[Catalog] Loaded catalog file", "path", s.path, "products", len(products))
	return nil
}

func (s *FileSystemSource) Get(ctx context.Context, productID string) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.products[productID]
	if !exists {
		return nil, ErrProductNotFound
	}

	product := *p
	return &product, nil
}
