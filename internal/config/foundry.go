package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// FoundryTOML is the subset of foundry.toml chainz can import
type FoundryTOML struct {
	RpcEndpoints map[string]string           `toml:"rpc_endpoints"`
	Etherscan    map[string]FoundryEtherscan `toml:"etherscan"`
}

// FoundryEtherscan is one entry of the [etherscan] table
type FoundryEtherscan struct {
	Key   string `toml:"key"`
	URL   string `toml:"url"`
	Chain any    `toml:"chain"`
}

// FoundryNetwork is an importable network; values keep their ${VAR} placeholders
type FoundryNetwork struct {
	Name               string
	RPCURL             string
	VerificationAPIKey string
	VerificationURL    string
}

// FoundryProject is the parsed view of a foundry project directory
type FoundryProject struct {
	Root     string
	Networks []FoundryNetwork
	// DotEnv holds the variables defined in the project's .env, if any
	DotEnv map[string]string
}

// LoadFoundryProject reads foundry.toml (and .env when present) from projectRoot
// without expanding any placeholder
func LoadFoundryProject(projectRoot string) (*FoundryProject, error) {
	foundryPath := filepath.Join(projectRoot, "foundry.toml")

	var raw FoundryTOML
	if _, err := toml.DecodeFile(foundryPath, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse foundry.toml: %w", err)
	}

	project := &FoundryProject{Root: projectRoot, DotEnv: map[string]string{}}

	names := make([]string, 0, len(raw.RpcEndpoints))
	for name := range raw.RpcEndpoints {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		network := FoundryNetwork{Name: name, RPCURL: raw.RpcEndpoints[name]}
		if es, ok := raw.Etherscan[name]; ok {
			network.VerificationAPIKey = es.Key
			network.VerificationURL = es.URL
		}
		project.Networks = append(project.Networks, network)
	}

	envPath := filepath.Join(projectRoot, ".env")
	if _, err := os.Stat(envPath); err == nil {
		env, err := godotenv.Read(envPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", envPath, err)
		}
		project.DotEnv = env
	}

	return project, nil
}
