package config

import (
	"time"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// RegistryPath is the JSON document holding chains, keys and variables
	RegistryPath string
	// EnvFile is where `use` writes the exported variables
	EnvFile string

	// Probe settings
	ProbeTimeout     time.Duration
	ProbeConcurrency int

	// Execution settings
	Debug          bool
	NonInteractive bool
	Timeout        time.Duration

	// KeyPassword unlocks encrypted keys without prompting when set
	KeyPassword string
}
