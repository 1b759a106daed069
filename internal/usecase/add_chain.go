package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/lo"
	"github.com/trebuchet-org/chainz/internal/domain"
	"github.com/trebuchet-org/chainz/internal/domain/models"
)

// AddChainParams contains parameters for registering a chain
type AddChainParams struct {
	// Name of the chain; looked up in the catalog when ChainID is 0
	Name    string
	ChainID uint64
	// RPCURLs are candidate templates; empty takes the catalog's http endpoints
	RPCURLs            []string
	VerificationAPIKey string
	VerificationURL    string
	KeyName            string
	// SkipProbe stores the chain without a failover run
	SkipProbe bool
}

// AddChainResult contains the result of registering a chain
type AddChainResult struct {
	Chain     *models.Chain
	Selection *SelectEndpointResult
	// FromCatalog is set when the chain ID or RPC list came from the catalog
	FromCatalog bool
}

// AddChain registers a new chain after picking its fastest healthy endpoint
type AddChain struct {
	store    RegistryStore
	catalog  ChainCatalog
	selector *SelectEndpoint
	log      *slog.Logger
}

// NewAddChain creates a new AddChain use case
func NewAddChain(store RegistryStore, catalog ChainCatalog, selector *SelectEndpoint, log *slog.Logger) *AddChain {
	return &AddChain{
		store:    store,
		catalog:  catalog,
		selector: selector,
		log:      log.With("component", "AddChain"),
	}
}

// Run executes the use case
func (uc *AddChain) Run(ctx context.Context, params AddChainParams) (*AddChainResult, error) {
	registry, err := uc.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}

	chain := &models.Chain{
		Name:               strings.TrimSpace(params.Name),
		ChainID:            params.ChainID,
		RPCURLs:            dedupe(params.RPCURLs),
		VerificationAPIKey: params.VerificationAPIKey,
		VerificationURL:    params.VerificationURL,
		KeyName:            params.KeyName,
	}
	result := &AddChainResult{Chain: chain}

	if chain.ChainID == 0 || len(chain.RPCURLs) == 0 {
		entry, err := uc.lookupCatalog(ctx, chain)
		if err != nil {
			return nil, err
		}
		result.FromCatalog = true
		if chain.ChainID == 0 {
			chain.ChainID = entry.ChainID
		}
		if chain.Name == "" {
			chain.Name = entry.Slug()
		}
		if len(chain.RPCURLs) == 0 {
			chain.RPCURLs = entry.HTTPRPCs()
		}
	}
	if len(chain.RPCURLs) == 0 {
		return nil, fmt.Errorf("chain '%s' has no RPC URLs; pass at least one", chain.Name)
	}

	if chain.KeyName != "" {
		if _, err := registry.Key(chain.KeyName); err != nil {
			return nil, fmt.Errorf("cannot assign key to chain '%s': %w", chain.Name, err)
		}
	}

	// Reject duplicates before spending time on probes
	probe := chain.Clone()
	if err := registry.AddChain(probe); err != nil {
		return nil, err
	}

	if !params.SkipProbe {
		selection, err := uc.selector.Run(ctx, SelectEndpointParams{
			Chain:      chain.Name,
			Candidates: chain.RPCURLs,
			Variables:  registry.Variables,
			ChainID:    chain.ChainID,
		})
		result.Selection = selection
		if err != nil {
			return result, err
		}
		chain.SelectedRPC = selection.Selected
	}

	if err := registry.ReplaceChain(chain); err != nil {
		return nil, err
	}
	if err := uc.store.Save(ctx, registry); err != nil {
		return nil, fmt.Errorf("failed to save registry: %w", err)
	}

	uc.log.Debug("chain added", "chain", chain.Name, "chain_id", chain.ChainID, "rpcs", len(chain.RPCURLs))
	return result, nil
}

func (uc *AddChain) lookupCatalog(ctx context.Context, chain *models.Chain) (*models.CatalogChain, error) {
	var (
		entry *models.CatalogChain
		err   error
	)
	switch {
	case chain.ChainID != 0:
		entry, err = uc.catalog.Lookup(ctx, chain.ChainID)
	case chain.Name != "":
		entry, err = uc.catalog.LookupName(ctx, chain.Name)
	default:
		return nil, fmt.Errorf("a chain name or chain ID is required")
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w; pass --chain-id and --rpc explicitly", err)
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func dedupe(values []string) []string {
	trimmed := lo.Map(values, func(v string, _ int) string { return strings.TrimSpace(v) })
	return lo.Uniq(lo.Compact(trimmed))
}
