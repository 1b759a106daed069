package usecase

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/chainz/internal/domain/config"
	"github.com/trebuchet-org/chainz/internal/domain/models"
)

// RegistryStore handles persistence of the chain registry
type RegistryStore interface {
	// Load returns the stored registry, or an empty one if none exists yet
	Load(ctx context.Context) (*config.Registry, error)
	// Save replaces the stored registry atomically
	Save(ctx context.Context, registry *config.Registry) error
	Exists() bool
	GetPath() string
}

// EndpointProber checks a single resolved RPC URL. It never returns an
// error; failures are encoded in the result.
type EndpointProber interface {
	Probe(ctx context.Context, url string, expectedChainID uint64) models.ProbeResult
}

// KeyBackend yields the secret and address behind a KeySpec. Implementations
// never cache secrets between calls.
type KeyBackend interface {
	Kind() models.KeyType
	Secret(ctx context.Context) (string, error)
	Address(ctx context.Context) (common.Address, error)
}

// KeyBackendFactory maps a KeySpec onto its backend
type KeyBackendFactory interface {
	Backend(spec *models.KeySpec) (KeyBackend, error)
	// Provision stores secret in the backend where the backend holds material
	// (keychain entry, ciphertext) and returns the spec to persist
	Provision(ctx context.Context, spec *models.KeySpec, secret string) (*models.KeySpec, error)
	// Deprovision removes material the backend holds for spec, if any
	Deprovision(ctx context.Context, spec *models.KeySpec) error
}

// PasswordSource supplies the password protecting encrypted keys
type PasswordSource interface {
	Password(ctx context.Context, keyName string, confirm bool) (string, error)
}

// EnvWriter persists an environment mapping as a dotenv file
type EnvWriter interface {
	// WriteEnv merges env into the file at path, creating it if needed
	WriteEnv(path string, env map[string]string) error
}

// ChainCatalog looks up public chain metadata
type ChainCatalog interface {
	List(ctx context.Context) ([]models.CatalogChain, error)
	Lookup(ctx context.Context, chainID uint64) (*models.CatalogChain, error)
	LookupName(ctx context.Context, name string) (*models.CatalogChain, error)
}

// CommandExecutor runs an external command attached to the caller's terminal
type CommandExecutor interface {
	Execute(ctx context.Context, cmd ExecCommand) error
}

// ExecCommand describes a process to start
type ExecCommand struct {
	Name string
	Args []string
	// Env entries are appended to the current process environment
	Env map[string]string
}

// InteractiveSelector handles prompts; implementations refuse to prompt in
// non-interactive mode
type InteractiveSelector interface {
	SelectOne(ctx context.Context, prompt string, options []string) (int, error)
	SelectMany(ctx context.Context, prompt string, options []string, preselected []int) ([]int, error)
	PromptString(ctx context.Context, label string, defaultValue string) (string, error)
	PromptSecret(ctx context.Context, label string) (string, error)
	Confirm(ctx context.Context, label string) (bool, error)
}

// Progress tracking interfaces

// ProgressStage identifies what a progress event is about
type ProgressStage string

const (
	StageProbeStarted  ProgressStage = "probe_started"
	StageProbeFinished ProgressStage = "probe_finished"
	StageProbeDone     ProgressStage = "probe_done"
)

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage    ProgressStage
	Current  int
	Total    int
	Message  string
	Spinner  bool
	Metadata interface{}
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}
