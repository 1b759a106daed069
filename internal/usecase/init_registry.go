package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/trebuchet-org/chainz/internal/domain"
	"github.com/trebuchet-org/chainz/internal/domain/config"
	"github.com/trebuchet-org/chainz/internal/domain/models"
)

// DefaultInitChains are offered (and preselected) by init
var DefaultInitChains = []uint64{
	1,        // Ethereum
	56,       // BNB Smart Chain
	8453,     // Base
	42161,    // Arbitrum One
	43114,    // Avalanche C-Chain
	137,      // Polygon
	130,      // Unichain
	1301,     // Unichain Sepolia
	10,       // OP Mainnet
	81457,    // Blast
	59144,    // Linea
	100,      // Gnosis
	167000,   // Taiko
	534352,   // Scroll
	11155111, // Sepolia
}

// InfuraVariable is the variable catalog Infura endpoints are templated with
const InfuraVariable = "INFURA_API_KEY"

// InitRegistryParams contains parameters for initializing the registry
type InitRegistryParams struct {
	EnvPrefix string
	// DefaultKey is provisioned and made the default; nil skips it
	DefaultKey *AddKeyParams
	// InfuraAPIKey is stored as ${INFURA_API_KEY} when non-empty
	InfuraAPIKey string
	ChainIDs     []uint64
	// Overwrite replaces an existing registry
	Overwrite bool
}

// InitChainReport is the outcome for one requested chain
type InitChainReport struct {
	ChainID   uint64
	Chain     *models.Chain
	Selection *SelectEndpointResult
	Err       error
}

// InitRegistryResult contains the result of initializing the registry
type InitRegistryResult struct {
	Registry     *config.Registry
	RegistryPath string
	Chains       []InitChainReport
	DefaultKey   *AddKeyResult
}

// InitRegistry creates a fresh registry from the chain catalog
type InitRegistry struct {
	store    RegistryStore
	catalog  ChainCatalog
	selector *SelectEndpoint
	keys     KeyBackendFactory
	cfg      *config.RuntimeConfig
	log      *slog.Logger
}

// NewInitRegistry creates a new InitRegistry use case
func NewInitRegistry(store RegistryStore, catalog ChainCatalog, selector *SelectEndpoint, keys KeyBackendFactory, cfg *config.RuntimeConfig, log *slog.Logger) *InitRegistry {
	return &InitRegistry{
		store:    store,
		catalog:  catalog,
		selector: selector,
		keys:     keys,
		cfg:      cfg,
		log:      log.With("component", "InitRegistry"),
	}
}

// Exists reports whether a registry is already present
func (uc *InitRegistry) Exists() bool {
	return uc.store.Exists()
}

// Candidates returns the catalog entries of DefaultInitChains in that order.
// Chains missing from the catalog are left out.
func (uc *InitRegistry) Candidates(ctx context.Context) ([]models.CatalogChain, error) {
	var entries []models.CatalogChain
	for _, id := range DefaultInitChains {
		entry, err := uc.catalog.Lookup(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			uc.log.Debug("default chain missing from catalog", "chain_id", id)
			continue
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

// Run executes the use case. Chains are probed concurrently and the registry
// is written once at the end; a chain without a healthy endpoint is still
// registered with no selection.
func (uc *InitRegistry) Run(ctx context.Context, params InitRegistryParams) (*InitRegistryResult, error) {
	if uc.store.Exists() && !params.Overwrite {
		return nil, fmt.Errorf("registry %s: %w (use --force to overwrite)", uc.store.GetPath(), domain.ErrAlreadyExists)
	}

	registry := config.NewRegistry()
	if params.EnvPrefix != "" {
		registry.EnvPrefix = params.EnvPrefix
	}
	if params.InfuraAPIKey != "" {
		registry.Variables[InfuraVariable] = params.InfuraAPIKey
	}

	result := &InitRegistryResult{Registry: registry, RegistryPath: uc.store.GetPath()}

	if params.DefaultKey != nil {
		added, err := uc.provisionKey(ctx, *params.DefaultKey)
		if err != nil {
			return nil, err
		}
		if err := registry.PutKey(added.Key, false); err != nil {
			return nil, err
		}
		registry.DefaultKey = added.Key.Name
		added.Default = true
		result.DefaultKey = added
	}

	result.Chains = make([]InitChainReport, len(params.ChainIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(uc.cfg.ProbeConcurrency, 1))
	for i, id := range params.ChainIDs {
		g.Go(func() error {
			result.Chains[i] = uc.prepareChain(gctx, id, registry.Variables)
			return nil
		})
	}
	_ = g.Wait()

	for i := range result.Chains {
		report := &result.Chains[i]
		if report.Chain == nil {
			continue
		}
		if err := registry.AddChain(report.Chain); err != nil {
			report.Err = err
			report.Chain = nil
		}
	}

	if err := uc.store.Save(ctx, registry); err != nil {
		return nil, fmt.Errorf("failed to save registry: %w", err)
	}
	uc.log.Debug("registry initialized", "path", uc.store.GetPath(), "chains", len(registry.Chains))
	return result, nil
}

// prepareChain builds a chain from the catalog and runs its failover. The
// registry's variable map is only read here.
func (uc *InitRegistry) prepareChain(ctx context.Context, id uint64, variables map[string]string) InitChainReport {
	report := InitChainReport{ChainID: id}

	entry, err := uc.catalog.Lookup(ctx, id)
	if err != nil {
		report.Err = err
		return report
	}
	chain := &models.Chain{
		Name:    entry.Slug(),
		ChainID: entry.ChainID,
		RPCURLs: entry.HTTPRPCs(),
	}
	if len(chain.RPCURLs) == 0 {
		report.Err = fmt.Errorf("catalog lists no http endpoints for chain %d", id)
		return report
	}

	selection, err := uc.selector.Run(ctx, SelectEndpointParams{
		Chain:      chain.Name,
		Candidates: chain.RPCURLs,
		Variables:  variables,
		ChainID:    chain.ChainID,
	})
	report.Selection = selection
	report.Chain = chain
	if err != nil {
		report.Err = err
		return report
	}
	chain.SelectedRPC = selection.Selected
	return report
}

func (uc *InitRegistry) provisionKey(ctx context.Context, params AddKeyParams) (*AddKeyResult, error) {
	if params.Name == "" {
		params.Name = config.DefaultKeyName
	}
	spec := newKeySpec(params)
	provisioned, err := uc.keys.Provision(ctx, spec, params.Secret)
	if err != nil {
		return nil, err
	}
	backend, err := uc.keys.Backend(provisioned)
	if err != nil {
		return nil, err
	}
	addr, err := backend.Address(ctx)
	if err != nil {
		return nil, err
	}
	return &AddKeyResult{Key: provisioned, Address: addr.Hex()}, nil
}
