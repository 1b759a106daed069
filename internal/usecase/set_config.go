package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/trebuchet-org/chainz/internal/domain/config"
)

var envPrefixPattern = regexp.MustCompile(`^[A-Z_][A-Z0-9_]*$`)

// SetConfigParams contains parameters for setting configuration
type SetConfigParams struct {
	Key   string
	Value string
}

// SetConfigResult contains the result of setting configuration
type SetConfigResult struct {
	Registry     *config.Registry
	RegistryPath string
	Key          config.ConfigKey
	Value        string
}

// SetConfig is a use case for setting configuration values
type SetConfig struct {
	store RegistryStore
}

// NewSetConfig creates a new SetConfig use case
func NewSetConfig(store RegistryStore) *SetConfig {
	return &SetConfig{
		store: store,
	}
}

// Run executes the set config use case
func (uc *SetConfig) Run(ctx context.Context, params SetConfigParams) (*SetConfigResult, error) {
	key := strings.ToLower(params.Key)
	if !config.IsValidConfigKey(key) {
		return nil, unknownConfigKey(params.Key)
	}
	normalizedKey := config.NormalizeConfigKey(key)

	registry, err := uc.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}

	value := params.Value
	switch normalizedKey {
	case config.ConfigKeyEnvPrefix:
		value = strings.ToUpper(strings.TrimSuffix(value, "_"))
		if !envPrefixPattern.MatchString(value) {
			return nil, fmt.Errorf("invalid env prefix %q: use letters, digits and underscores", params.Value)
		}
		registry.EnvPrefix = value
	case config.ConfigKeyDefaultKey:
		if _, err := registry.Key(value); err != nil {
			return nil, fmt.Errorf("cannot set default key: %w", err)
		}
		registry.DefaultKey = value
	}

	if err := uc.store.Save(ctx, registry); err != nil {
		return nil, fmt.Errorf("failed to save registry: %w", err)
	}

	return &SetConfigResult{
		Registry:     registry,
		RegistryPath: uc.store.GetPath(),
		Key:          normalizedKey,
		Value:        value,
	}, nil
}

func unknownConfigKey(key string) error {
	validKeys := []string{}
	for _, k := range config.ValidConfigKeys() {
		validKeys = append(validKeys, string(k))
	}
	return fmt.Errorf("unknown config key: %s\nAvailable keys: %s", key, strings.Join(validKeys, ", "))
}
