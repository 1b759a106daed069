package render

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/trebuchet-org/chainz/internal/domain/config"
	"github.com/trebuchet-org/chainz/internal/usecase"
)

// ConfigRenderer renders config-related output
type ConfigRenderer struct {
	out io.Writer
}

// NewConfigRenderer creates a new config renderer
func NewConfigRenderer(out io.Writer) *ConfigRenderer {
	return &ConfigRenderer{
		out: out,
	}
}

// RenderConfig renders the configuration display
func (r *ConfigRenderer) RenderConfig(result *usecase.ShowConfigResult) error {
	if !result.Exists {
		fmt.Fprintf(r.out, "❌ No registry found at %s\n", result.RegistryPath)
		fmt.Fprintf(r.out, "⚠️  Run 'chainz init' to create one\n")
		return nil
	}

	reg := result.Registry
	fmt.Fprintln(r.out, "📋 Current config:")
	fmt.Fprintf(r.out, "Env prefix:  %s\n", reg.EnvPrefix)
	if reg.DefaultKey != "" {
		fmt.Fprintf(r.out, "Default key: %s\n", reg.DefaultKey)
	} else {
		fmt.Fprintf(r.out, "Default key: %s\n", "(not set)")
	}
	fmt.Fprintf(r.out, "Chains: %d   Keys: %d   Variables: %d\n", len(reg.Chains), len(reg.Keys), len(reg.Variables))

	for _, chain := range sortedKeys(result.Dangling) {
		fmt.Fprintln(r.out, FormatWarning(fmt.Sprintf("Chain '%s' uses missing key '%s'", chain, result.Dangling[chain])))
	}
	if len(result.MissingVariables) > 0 {
		fmt.Fprintln(r.out, FormatWarning(fmt.Sprintf("Undefined variables: %s", strings.Join(result.MissingVariables, ", "))))
	}

	if rt := result.Runtime; rt != nil {
		fmt.Fprintf(r.out, "\n⏱  Probe timeout: %s, concurrency: %d\n", rt.ProbeTimeout, rt.ProbeConcurrency)
		fmt.Fprintf(r.out, "📄 env file: %s\n", getRelativePath(rt.EnvFile))
	}
	fmt.Fprintf(r.out, "📁 registry: %s\n", result.RegistryPath)

	return nil
}

// RenderSet renders the result of setting a configuration value
func (r *ConfigRenderer) RenderSet(result *usecase.SetConfigResult) error {
	fmt.Fprintf(r.out, "✅ Set %s to: %s\n", result.Key, result.Value)
	fmt.Fprintf(r.out, "📁 registry saved to: %s\n", result.RegistryPath)
	return nil
}

// RenderRemove renders the result of removing a configuration value
func (r *ConfigRenderer) RenderRemove(result *usecase.RemoveConfigResult) error {
	switch result.Key {
	case config.ConfigKeyEnvPrefix:
		fmt.Fprintf(r.out, "✅ Reset env prefix to: %s\n", config.DefaultEnvPrefix)
	case config.ConfigKeyDefaultKey:
		fmt.Fprintf(r.out, "✅ Removed default key (chains without a key will export no private key)\n")
	}

	fmt.Fprintf(r.out, "📁 registry saved to: %s\n", result.RegistryPath)
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return keys
}
