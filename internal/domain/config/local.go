package config

// ConfigKey represents a registry-level setting
type ConfigKey string

const (
	ConfigKeyEnvPrefix  ConfigKey = "env-prefix"
	ConfigKeyDefaultKey ConfigKey = "default-key"
)

// ValidConfigKeys returns all valid configuration keys
func ValidConfigKeys() []ConfigKey {
	return []ConfigKey{
		ConfigKeyEnvPrefix,
		ConfigKeyDefaultKey,
	}
}

// IsValidConfigKey checks if a key is valid, aliases included
func IsValidConfigKey(key string) bool {
	normalized := NormalizeConfigKey(key)
	for _, validKey := range ValidConfigKeys() {
		if validKey == normalized {
			return true
		}
	}
	return false
}

// NormalizeConfigKey normalizes a config key (e.g., "prefix" -> "env-prefix")
func NormalizeConfigKey(key string) ConfigKey {
	switch key {
	case "prefix", "env_prefix":
		return ConfigKeyEnvPrefix
	case "key", "default_key":
		return ConfigKeyDefaultKey
	}
	return ConfigKey(key)
}
