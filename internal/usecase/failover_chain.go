package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/trebuchet-org/chainz/internal/domain/models"
)

// FailoverChainParams contains parameters for re-selecting a chain's RPC
type FailoverChainParams struct {
	NameOrID string
}

// FailoverChainResult contains the result of a failover run
type FailoverChainResult struct {
	Chain     *models.Chain
	Selection *SelectEndpointResult
	// Changed is set when the winner differs from the previous selection
	Changed bool
}

// FailoverChain probes a chain's candidates and persists the winner
type FailoverChain struct {
	store    RegistryStore
	selector *SelectEndpoint
	log      *slog.Logger
}

// NewFailoverChain creates a new FailoverChain use case
func NewFailoverChain(store RegistryStore, selector *SelectEndpoint, log *slog.Logger) *FailoverChain {
	return &FailoverChain{
		store:    store,
		selector: selector,
		log:      log.With("component", "FailoverChain"),
	}
}

// Run executes the use case. The registry is written once, after every probe
// has finished, and only when a winner exists.
func (uc *FailoverChain) Run(ctx context.Context, params FailoverChainParams) (*FailoverChainResult, error) {
	registry, err := uc.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}

	existing, err := registry.FindChain(params.NameOrID)
	if err != nil {
		return nil, err
	}
	chain := existing.Clone()

	selection, err := uc.selector.Run(ctx, SelectEndpointParams{
		Chain:      chain.Name,
		Candidates: chain.RPCURLs,
		Variables:  registry.Variables,
		ChainID:    chain.ChainID,
	})
	result := &FailoverChainResult{Chain: chain, Selection: selection}
	if err != nil {
		return result, err
	}

	result.Changed = chain.SelectedRPC != selection.Selected
	chain.SelectedRPC = selection.Selected

	if result.Changed {
		if err := registry.ReplaceChain(chain); err != nil {
			return nil, err
		}
		if err := uc.store.Save(ctx, registry); err != nil {
			return nil, fmt.Errorf("failed to save registry: %w", err)
		}
	}

	uc.log.Debug("failover finished", "chain", chain.Name, "selected", chain.SelectedRPC, "changed", result.Changed)
	return result, nil
}
