package usecase

import (
	"context"
	"fmt"

	"github.com/trebuchet-org/chainz/internal/domain/models"
)

// RemoveChainParams contains parameters for removing a chain
type RemoveChainParams struct {
	NameOrID string
}

// RemoveChainResult contains the result of removing a chain
type RemoveChainResult struct {
	Removed *models.Chain
}

// RemoveChain is a use case for deleting a chain from the registry
type RemoveChain struct {
	store RegistryStore
}

// NewRemoveChain creates a new RemoveChain use case
func NewRemoveChain(store RegistryStore) *RemoveChain {
	return &RemoveChain{store: store}
}

// Run executes the use case
func (uc *RemoveChain) Run(ctx context.Context, params RemoveChainParams) (*RemoveChainResult, error) {
	registry, err := uc.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}

	removed, err := registry.RemoveChain(params.NameOrID)
	if err != nil {
		return nil, err
	}

	if err := uc.store.Save(ctx, registry); err != nil {
		return nil, fmt.Errorf("failed to save registry: %w", err)
	}

	return &RemoveChainResult{Removed: removed}, nil
}
