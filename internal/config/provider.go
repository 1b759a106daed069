package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/chainz/internal/domain/config"
)

const (
	// RegistryFileName is the per-user registry document in the home directory
	RegistryFileName = ".chainz.json"

	DefaultEnvFile          = ".env"
	DefaultProbeTimeout     = 5 * time.Second
	DefaultProbeConcurrency = 4
)

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	registryPath := v.GetString("config")
	if registryPath == "" {
		var err error
		registryPath, err = DefaultRegistryPath()
		if err != nil {
			return nil, fmt.Errorf("failed to locate registry: %w", err)
		}
	}

	cfg := &config.RuntimeConfig{
		RegistryPath:     registryPath,
		EnvFile:          v.GetString("env_file"),
		ProbeTimeout:     v.GetDuration("probe_timeout"),
		ProbeConcurrency: v.GetInt("probe_concurrency"),
		Debug:            v.GetBool("debug"),
		NonInteractive:   v.GetBool("non_interactive"),
		Timeout:          v.GetDuration("timeout"),
		KeyPassword:      v.GetString("key_password"),
	}

	if cfg.ProbeTimeout <= 0 {
		return nil, fmt.Errorf("probe timeout must be positive, got %s", cfg.ProbeTimeout)
	}
	if cfg.ProbeConcurrency < 1 {
		cfg.ProbeConcurrency = 1
	}
	if cfg.EnvFile == "" {
		cfg.EnvFile = DefaultEnvFile
	}

	return cfg, nil
}

// DefaultRegistryPath returns ~/.chainz.json
func DefaultRegistryPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, RegistryFileName), nil
}

// SetupViper creates and configures a viper instance
func SetupViper(cmd *cobra.Command) *viper.Viper {
	v := viper.New()

	// Optional settings file, e.g. ~/.config/chainz/chainz.yaml
	v.SetConfigName("chainz")
	v.SetConfigType("yaml")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "chainz"))
	}

	// Set up environment variables
	v.SetEnvPrefix("CHAINZ")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	// Set defaults
	v.SetDefault("env_file", DefaultEnvFile)
	v.SetDefault("probe_timeout", DefaultProbeTimeout.String())
	v.SetDefault("probe_concurrency", DefaultProbeConcurrency)
	v.SetDefault("timeout", "5m")
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)

	// Try to read config file (ignore error if not found)
	_ = v.ReadInConfig()

	if cmd != nil {
		bindFlags(v, cmd.Flags())
		bindFlags(v, cmd.InheritedFlags())
	}

	return v
}

// bindFlags binds flags that were explicitly set, so unset flags don't mask env or file values
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		if !f.Changed {
			return
		}
		key := strings.ReplaceAll(f.Name, "-", "_")
		v.Set(key, f.Value.String())
	})
}
