package usecase

import (
	"context"
	"fmt"
	"sort"

	internalconfig "github.com/trebuchet-org/chainz/internal/config"
	"github.com/trebuchet-org/chainz/internal/domain/config"
)

// ShowConfigResult describes the registry settings and its health
type ShowConfigResult struct {
	Registry     *config.Registry
	RegistryPath string
	Exists       bool
	Runtime      *config.RuntimeConfig

	// Dangling maps chain name to a key name that doesn't exist
	Dangling map[string]string
	// MissingVariables are referenced by chains but defined nowhere
	MissingVariables []string
}

// ShowConfig reports the registry settings along with broken references
type ShowConfig struct {
	store RegistryStore
	cfg   *config.RuntimeConfig
}

// NewShowConfig creates a new ShowConfig use case
func NewShowConfig(store RegistryStore, cfg *config.RuntimeConfig) *ShowConfig {
	return &ShowConfig{store: store, cfg: cfg}
}

// Run executes the use case
func (uc *ShowConfig) Run(ctx context.Context) (*ShowConfigResult, error) {
	result := &ShowConfigResult{
		RegistryPath: uc.store.GetPath(),
		Exists:       uc.store.Exists(),
		Runtime:      uc.cfg,
	}

	registry, err := uc.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}
	result.Registry = registry
	result.Dangling = registry.DanglingKeyRefs()

	resolver := internalconfig.NewResolver(registry.Variables)
	for name := range chainsReferencing(registry) {
		if _, _, ok := resolver.Lookup(name); !ok {
			result.MissingVariables = append(result.MissingVariables, name)
		}
	}
	sort.Strings(result.MissingVariables)

	return result, nil
}
