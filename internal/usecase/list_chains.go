package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/trebuchet-org/chainz/internal/domain/config"
	"github.com/trebuchet-org/chainz/internal/domain/models"
	"golang.org/x/sync/errgroup"
)

// ListChainsParams contains parameters for listing chains
type ListChainsParams struct {
	// Probe runs a failover probe per chain without persisting the result
	Probe bool
}

// ListChainsResult contains the result of listing chains
type ListChainsResult struct {
	Chains     []ChainStatus
	DefaultKey string
	EnvPrefix  string
}

// ChainStatus is a chain with its key binding and optional probe outcome
type ChainStatus struct {
	Chain   *models.Chain
	KeyName string
	KeyType models.KeyType
	// DanglingKey is set when KeyName has no KeySpec behind it
	DanglingKey bool

	Selection *SelectEndpointResult
	ProbeErr  error
}

// ListChains is a use case for listing registered chains
type ListChains struct {
	store    RegistryStore
	selector *SelectEndpoint
	cfg      *config.RuntimeConfig
	log      *slog.Logger
}

// NewListChains creates a new ListChains use case
func NewListChains(store RegistryStore, selector *SelectEndpoint, cfg *config.RuntimeConfig, log *slog.Logger) *ListChains {
	return &ListChains{
		store:    store,
		selector: selector,
		cfg:      cfg,
		log:      log.With("component", "ListChains"),
	}
}

// Run executes the use case
func (uc *ListChains) Run(ctx context.Context, params ListChainsParams) (*ListChainsResult, error) {
	registry, err := uc.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}

	statuses := make([]ChainStatus, len(registry.Chains))
	for i, chain := range registry.Chains {
		status := ChainStatus{Chain: chain, KeyName: registry.ChainKeyName(chain)}
		if status.KeyName != "" {
			if key, err := registry.Key(status.KeyName); err == nil {
				status.KeyType = key.Type
			} else {
				status.DanglingKey = true
				uc.log.Warn("chain references a missing key", "chain", chain.Name, "key", status.KeyName)
			}
		}
		statuses[i] = status
	}

	if params.Probe && len(statuses) > 0 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(max(uc.cfg.ProbeConcurrency, 1))
		for i := range statuses {
			g.Go(func() error {
				chain := statuses[i].Chain
				selection, err := uc.selector.Run(gctx, SelectEndpointParams{
					Chain:      chain.Name,
					Candidates: chain.RPCURLs,
					Variables:  registry.Variables,
					ChainID:    chain.ChainID,
				})
				statuses[i].Selection = selection
				statuses[i].ProbeErr = err
				// an unhealthy chain doesn't stop the others
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	return &ListChainsResult{
		Chains:     statuses,
		DefaultKey: registry.DefaultKey,
		EnvPrefix:  registry.EnvPrefix,
	}, nil
}
