package adapters

import (
	"log/slog"

	"github.com/google/wire"
	"github.com/trebuchet-org/chainz/internal/adapters/blockchain"
	"github.com/trebuchet-org/chainz/internal/adapters/chainlist"
	"github.com/trebuchet-org/chainz/internal/adapters/fs"
	"github.com/trebuchet-org/chainz/internal/adapters/interactive"
	"github.com/trebuchet-org/chainz/internal/adapters/keys"
	"github.com/trebuchet-org/chainz/internal/adapters/process"
	"github.com/trebuchet-org/chainz/internal/usecase"
)

// ProvideKeyManager provides the key backend factory with the system keychain
// and the op CLI
func ProvideKeyManager(passwords usecase.PasswordSource, log *slog.Logger) *keys.Manager {
	return keys.NewManager(passwords, log)
}

// FSSet provides filesystem-based implementations
var FSSet = wire.NewSet(
	fs.NewRegistryStoreAdapter,
	wire.Bind(new(usecase.RegistryStore), new(*fs.RegistryStoreAdapter)),

	fs.NewEnvWriterAdapter,
	wire.Bind(new(usecase.EnvWriter), new(*fs.EnvWriterAdapter)),
)

// KeysSet provides the key backends
var KeysSet = wire.NewSet(
	ProvideKeyManager,
	wire.Bind(new(usecase.KeyBackendFactory), new(*keys.Manager)),
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewSelectorAdapter,
	wire.Bind(new(usecase.InteractiveSelector), new(*interactive.SelectorAdapter)),

	interactive.NewPasswordAdapter,
	wire.Bind(new(usecase.PasswordSource), new(*interactive.PasswordAdapter)),
)

// BlockchainSet provides blockchain-based implementations
var BlockchainSet = wire.NewSet(
	blockchain.NewProberAdapter,
	wire.Bind(new(usecase.EndpointProber), new(*blockchain.ProberAdapter)),
)

// ChainlistSet provides the public chain catalog
var ChainlistSet = wire.NewSet(
	chainlist.NewClient,
	wire.Bind(new(usecase.ChainCatalog), new(*chainlist.Client)),
)

// ProcessSet provides process execution
var ProcessSet = wire.NewSet(
	process.NewExecutorAdapter,
	wire.Bind(new(usecase.CommandExecutor), new(*process.ExecutorAdapter)),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	FSSet,
	KeysSet,
	InteractiveSet,
	BlockchainSet,
	ChainlistSet,
	ProcessSet,
)
