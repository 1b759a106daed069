package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/trebuchet-org/chainz/internal/domain/config"
	"github.com/trebuchet-org/chainz/internal/usecase"
)

// RegistryStoreAdapter implements RegistryStore with a single JSON document
type RegistryStoreAdapter struct {
	path string
}

// NewRegistryStoreAdapter creates a new RegistryStoreAdapter
func NewRegistryStoreAdapter(cfg *config.RuntimeConfig) *RegistryStoreAdapter {
	return &RegistryStoreAdapter{path: cfg.RegistryPath}
}

// Exists checks if the registry file exists
func (s *RegistryStoreAdapter) Exists() bool {
	_, err := os.Stat(s.path)
	return !os.IsNotExist(err)
}

// Load reads the registry, returning an empty one if the file doesn't exist
func (s *RegistryStoreAdapter) Load(ctx context.Context) (*config.Registry, error) {
	if !s.Exists() {
		return config.NewRegistry(), nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}

	var registry config.Registry
	if err := json.Unmarshal(data, &registry); err != nil {
		return nil, fmt.Errorf("failed to parse registry file %s: %w", s.path, err)
	}
	registry.Normalize()

	return &registry, nil
}

// Save writes the registry to a temp file in the same directory and renames
// it over the old one, so readers see either the old or the new document
func (s *RegistryStoreAdapter) Save(ctx context.Context, registry *config.Registry) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}

	registry.Normalize()
	data, err := json.MarshalIndent(registry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	// The registry may hold plaintext keys
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set registry permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write registry: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close registry: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace registry file: %w", err)
	}
	return nil
}

// Delete removes the registry file
func (s *RegistryStoreAdapter) Delete(ctx context.Context) error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete registry: %w", err)
	}
	return nil
}

// GetPath returns the path to the registry file
func (s *RegistryStoreAdapter) GetPath() string {
	return s.path
}

// Ensure RegistryStoreAdapter implements RegistryStore
var _ usecase.RegistryStore = (*RegistryStoreAdapter)(nil)
