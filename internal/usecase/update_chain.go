package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/trebuchet-org/chainz/internal/domain/models"
)

// UpdateChainParams contains parameters for modifying a chain. Nil pointers
// and empty slices leave the field unchanged.
type UpdateChainParams struct {
	NameOrID string

	// SetRPCs replaces the candidate list
	SetRPCs    []string
	AddRPCs    []string
	RemoveRPCs []string

	VerificationAPIKey *string
	VerificationURL    *string
	// KeyName "" unassigns the key so the registry default applies
	KeyName *string

	// Failover re-runs endpoint selection after the update
	Failover bool
}

// UpdateChainResult contains the result of modifying a chain
type UpdateChainResult struct {
	Chain     *models.Chain
	Selection *SelectEndpointResult
	// SelectionCleared is set when the selected RPC was removed from the list
	SelectionCleared bool
}

// UpdateChain is a use case for modifying a registered chain
type UpdateChain struct {
	store    RegistryStore
	selector *SelectEndpoint
	log      *slog.Logger
}

// NewUpdateChain creates a new UpdateChain use case
func NewUpdateChain(store RegistryStore, selector *SelectEndpoint, log *slog.Logger) *UpdateChain {
	return &UpdateChain{
		store:    store,
		selector: selector,
		log:      log.With("component", "UpdateChain"),
	}
}

// Run executes the use case
func (uc *UpdateChain) Run(ctx context.Context, params UpdateChainParams) (*UpdateChainResult, error) {
	registry, err := uc.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}

	existing, err := registry.FindChain(params.NameOrID)
	if err != nil {
		return nil, err
	}
	chain := existing.Clone()
	result := &UpdateChainResult{Chain: chain}

	if len(params.SetRPCs) > 0 {
		chain.RPCURLs = dedupe(params.SetRPCs)
	}
	if len(params.AddRPCs) > 0 {
		chain.RPCURLs = dedupe(append(chain.RPCURLs, params.AddRPCs...))
	}
	if len(params.RemoveRPCs) > 0 {
		for _, rpc := range params.RemoveRPCs {
			if !chain.HasRPC(rpc) {
				return nil, fmt.Errorf("chain '%s' has no RPC URL %q", chain.Name, rpc)
			}
		}
		chain.RPCURLs = slices.DeleteFunc(chain.RPCURLs, func(u string) bool {
			return slices.Contains(params.RemoveRPCs, u)
		})
	}
	if len(chain.RPCURLs) == 0 {
		return nil, fmt.Errorf("chain '%s' must keep at least one RPC URL", chain.Name)
	}
	if chain.SelectedRPC != "" && !chain.HasRPC(chain.SelectedRPC) {
		chain.SelectedRPC = ""
		result.SelectionCleared = true
	}

	if params.VerificationAPIKey != nil {
		chain.VerificationAPIKey = *params.VerificationAPIKey
	}
	if params.VerificationURL != nil {
		chain.VerificationURL = *params.VerificationURL
	}
	if params.KeyName != nil {
		if *params.KeyName != "" {
			if _, err := registry.Key(*params.KeyName); err != nil {
				return nil, fmt.Errorf("cannot assign key to chain '%s': %w", chain.Name, err)
			}
		}
		chain.KeyName = *params.KeyName
	}

	if params.Failover {
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
		result.SelectionCleared = false
	}

	if err := registry.ReplaceChain(chain); err != nil {
		return nil, err
	}
	if err := uc.store.Save(ctx, registry); err != nil {
		return nil, fmt.Errorf("failed to save registry: %w", err)
	}

	uc.log.Debug("chain updated", "chain", chain.Name)
	return result, nil
}
