package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/trebuchet-org/chainz/internal/domain/config"
)

// RemoveConfigParams contains parameters for removing configuration
type RemoveConfigParams struct {
	Key string
}

// RemoveConfigResult contains the result of removing configuration
type RemoveConfigResult struct {
	Registry     *config.Registry
	RegistryPath string
	Key          config.ConfigKey
	RemovedValue string
}

// RemoveConfig is a use case for resetting configuration values to their defaults
type RemoveConfig struct {
	store RegistryStore
}

// NewRemoveConfig creates a new RemoveConfig use case
func NewRemoveConfig(store RegistryStore) *RemoveConfig {
	return &RemoveConfig{
		store: store,
	}
}

// Run executes the remove config use case
func (uc *RemoveConfig) Run(ctx context.Context, params RemoveConfigParams) (*RemoveConfigResult, error) {
	if !uc.store.Exists() {
		return nil, fmt.Errorf("no registry found at %s; run 'chainz init' first", uc.store.GetPath())
	}

	key := strings.ToLower(params.Key)
	if !config.IsValidConfigKey(key) {
		return nil, unknownConfigKey(params.Key)
	}
	normalizedKey := config.NormalizeConfigKey(key)

	registry, err := uc.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}

	var removedValue string
	switch normalizedKey {
	case config.ConfigKeyEnvPrefix:
		removedValue = registry.EnvPrefix
		registry.EnvPrefix = config.DefaultEnvPrefix
	case config.ConfigKeyDefaultKey:
		removedValue = registry.DefaultKey
		registry.DefaultKey = ""
	}

	if err := uc.store.Save(ctx, registry); err != nil {
		return nil, fmt.Errorf("failed to save registry: %w", err)
	}

	return &RemoveConfigResult{
		Registry:     registry,
		RegistryPath: uc.store.GetPath(),
		Key:          normalizedKey,
		RemovedValue: removedValue,
	}, nil
}
