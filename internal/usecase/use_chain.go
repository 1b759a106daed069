package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	"github.com/samber/lo"
	internalconfig "github.com/trebuchet-org/chainz/internal/config"
	"github.com/trebuchet-org/chainz/internal/domain"
	"github.com/trebuchet-org/chainz/internal/domain/config"
	"github.com/trebuchet-org/chainz/internal/domain/models"
)

// Exported variable suffixes; the prefix comes from the registry
const (
	EnvSuffixRPCURL             = "_RPC_URL"
	EnvSuffixPrivateKey         = "_PRIVATE_KEY"
	EnvSuffixVerificationAPIKey = "_VERIFICATION_API_KEY"
	EnvSuffixVerificationURL    = "_VERIFICATION_URL"

	EnvEthRPCURL     = "ETH_RPC_URL"
	EnvChainID       = "CHAIN_ID"
	EnvChainName     = "CHAIN_NAME"
	EnvWalletAddress = "WALLET_ADDRESS"
)

// UseChainParams contains parameters for activating a chain
type UseChainParams struct {
	NameOrID string
	// Failover re-selects the RPC before exporting
	Failover bool
	// WriteEnvFile merges the mapping into EnvFile
	WriteEnvFile bool
	// EnvFile overrides the configured dotenv path
	EnvFile string
}

// Activation is a chain resolved into concrete values
type Activation struct {
	Chain *models.Chain
	// RPCURL is the resolved selected endpoint
	RPCURL string
	// KeyName is empty when neither the chain nor the registry names a key
	KeyName    string
	KeyType    models.KeyType
	PrivateKey string
	Address    string
	Env        map[string]string
	Selection  *SelectEndpointResult
}

// EnvKeys returns the exported variable names sorted
func (a *Activation) EnvKeys() []string {
	keys := lo.Keys(a.Env)
	slices.Sort(keys)
	return keys
}

// UseChainResult contains the result of activating a chain
type UseChainResult struct {
	*Activation
	// EnvFile is the file written, empty when nothing was written
	EnvFile string
}

// UseChain resolves a chain's endpoint, key and verification settings and
// exports them as environment variables
type UseChain struct {
	store    RegistryStore
	failover *FailoverChain
	keys     KeyBackendFactory
	writer   EnvWriter
	cfg      *config.RuntimeConfig
	log      *slog.Logger
}

// NewUseChain creates a new UseChain use case
func NewUseChain(store RegistryStore, failover *FailoverChain, keys KeyBackendFactory, writer EnvWriter, cfg *config.RuntimeConfig, log *slog.Logger) *UseChain {
	return &UseChain{
		store:    store,
		failover: failover,
		keys:     keys,
		writer:   writer,
		cfg:      cfg,
		log:      log.With("component", "UseChain"),
	}
}

// Run executes the use case
func (uc *UseChain) Run(ctx context.Context, params UseChainParams) (*UseChainResult, error) {
	activation, err := uc.Activate(ctx, params.NameOrID, params.Failover)
	if err != nil {
		return nil, err
	}

	result := &UseChainResult{Activation: activation}
	if params.WriteEnvFile {
		path := params.EnvFile
		if path == "" {
			path = uc.cfg.EnvFile
		}
		if err := uc.writer.WriteEnv(path, activation.Env); err != nil {
			return nil, err
		}
		result.EnvFile = path
	}
	return result, nil
}

// Activate resolves everything needed to use a chain. Unlike a failover run,
// any unresolved variable here is fatal.
func (uc *UseChain) Activate(ctx context.Context, nameOrID string, failover bool) (*Activation, error) {
	registry, err := uc.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}
	chain, err := registry.FindChain(nameOrID)
	if err != nil {
		return nil, err
	}

	activation := &Activation{Chain: chain}

	if failover || chain.SelectedRPC == "" {
		res, err := uc.failover.Run(ctx, FailoverChainParams{NameOrID: chain.Name})
		if res != nil {
			activation.Selection = res.Selection
		}
		if err != nil {
			return activation, err
		}
		chain = res.Chain
		activation.Chain = chain
	}

	resolver := internalconfig.NewResolver(registry.Variables)

	activation.RPCURL, err = resolver.Resolve(chain.SelectedRPC)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve RPC URL of chain '%s': %w", chain.Name, err)
	}

	verificationKey, err := resolver.Resolve(chain.VerificationAPIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve verification API key of chain '%s': %w", chain.Name, err)
	}
	verificationURL, err := resolver.Resolve(chain.VerificationURL)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve verification URL of chain '%s': %w", chain.Name, err)
	}

	activation.KeyName = registry.ChainKeyName(chain)
	if activation.KeyName != "" {
		spec, err := registry.Key(activation.KeyName)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("chain '%s' uses key '%s': %w", chain.Name, activation.KeyName, domain.ErrDanglingKey)
		}
		if err != nil {
			return nil, err
		}

		backend, err := uc.keys.Backend(spec)
		if err != nil {
			return nil, err
		}
		activation.KeyType = backend.Kind()
		activation.PrivateKey, err = backend.Secret(ctx)
		if err != nil {
			return nil, err
		}
		addr, err := backend.Address(ctx)
		if err != nil {
			return nil, err
		}
		activation.Address = addr.Hex()
	} else {
		uc.log.Warn("no key configured; exporting without a private key", "chain", chain.Name)
	}

	activation.Env = BuildEnv(registry.EnvPrefix, chain, activation.RPCURL, activation.PrivateKey, activation.Address, verificationKey, verificationURL)
	return activation, nil
}

// BuildEnv assembles the exported mapping; empty values are left out
func BuildEnv(prefix string, chain *models.Chain, rpcURL, privateKey, address, verificationKey, verificationURL string) map[string]string {
	if prefix == "" {
		prefix = config.DefaultEnvPrefix
	}
	env := map[string]string{
		prefix + EnvSuffixRPCURL: rpcURL,
		EnvEthRPCURL:             rpcURL,
		EnvChainID:               strconv.FormatUint(chain.ChainID, 10),
		EnvChainName:             chain.Name,
	}
	optional := map[string]string{
		prefix + EnvSuffixPrivateKey:         privateKey,
		EnvWalletAddress:                     address,
		prefix + EnvSuffixVerificationAPIKey: verificationKey,
		prefix + EnvSuffixVerificationURL:    verificationURL,
	}
	for k, v := range optional {
		if v != "" {
			env[k] = v
		}
	}
	return env
}
