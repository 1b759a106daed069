package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"maps"

	internalconfig "github.com/trebuchet-org/chainz/internal/config"
	"github.com/trebuchet-org/chainz/internal/domain/models"
)

// ImportFoundryParams contains parameters for importing a foundry project
type ImportFoundryParams struct {
	// ProjectRoot is the directory holding foundry.toml
	ProjectRoot string
	// Names limits the import to these networks; empty imports all
	Names []string
}

// ImportSkip records a network that was not imported
type ImportSkip struct {
	Name   string
	Reason string
}

// ImportFoundryResult contains the result of importing a foundry project
type ImportFoundryResult struct {
	Imported []*models.Chain
	Skipped  []ImportSkip
	// Variables lists the .env values copied into the registry
	Variables []string
	// Selections maps chain name to its failover run
	Selections map[string]*SelectEndpointResult
}

// ImportFoundry registers the [rpc_endpoints] of a foundry.toml as chains
type ImportFoundry struct {
	store    RegistryStore
	selector *SelectEndpoint
	log      *slog.Logger
}

// NewImportFoundry creates a new ImportFoundry use case
func NewImportFoundry(store RegistryStore, selector *SelectEndpoint, log *slog.Logger) *ImportFoundry {
	return &ImportFoundry{
		store:    store,
		selector: selector,
		log:      log.With("component", "ImportFoundry"),
	}
}

// Run executes the use case. The chain ID of each network is learned from its
// endpoint, so unreachable networks are skipped.
func (uc *ImportFoundry) Run(ctx context.Context, params ImportFoundryParams) (*ImportFoundryResult, error) {
	project, err := internalconfig.LoadFoundryProject(params.ProjectRoot)
	if err != nil {
		return nil, err
	}

	registry, err := uc.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}

	// The process environment wins over the project's .env
	env := maps.Clone(project.DotEnv)
	maps.Copy(env, internalconfig.OSEnvironment())

	wanted := make(map[string]bool, len(params.Names))
	for _, name := range params.Names {
		wanted[name] = true
	}

	result := &ImportFoundryResult{Selections: make(map[string]*SelectEndpointResult)}
	copied := make(map[string]bool)

	for _, network := range project.Networks {
		if len(wanted) > 0 && !wanted[network.Name] {
			continue
		}
		if registry.HasChainName(network.Name) {
			result.Skipped = append(result.Skipped, ImportSkip{Name: network.Name, Reason: "already registered"})
			continue
		}

		selection, err := uc.selector.Run(ctx, SelectEndpointParams{
			Chain:       network.Name,
			Candidates:  []string{network.RPCURL},
			Variables:   registry.Variables,
			Environment: internalconfig.StaticEnvironment(env),
		})
		result.Selections[network.Name] = selection
		if err != nil {
			uc.log.Warn("skipping unreachable network", "network", network.Name, "error", err)
			result.Skipped = append(result.Skipped, ImportSkip{Name: network.Name, Reason: skipReason(selection)})
			continue
		}

		chain := &models.Chain{
			Name:               network.Name,
			ChainID:            selection.Winner.ChainID,
			RPCURLs:            []string{network.RPCURL},
			SelectedRPC:        selection.Selected,
			VerificationAPIKey: network.VerificationAPIKey,
			VerificationURL:    network.VerificationURL,
		}
		if err := registry.AddChain(chain); err != nil {
			result.Skipped = append(result.Skipped, ImportSkip{Name: network.Name, Reason: err.Error()})
			continue
		}
		result.Imported = append(result.Imported, chain)

		for _, tmpl := range []string{network.RPCURL, network.VerificationAPIKey, network.VerificationURL} {
			names, err := internalconfig.Placeholders(tmpl)
			if err != nil {
				continue
			}
			for _, name := range names {
				value, inDotEnv := project.DotEnv[name]
				if _, stored := registry.Variables[name]; stored || !inDotEnv || copied[name] {
					continue
				}
				registry.Variables[name] = value
				copied[name] = true
				result.Variables = append(result.Variables, name)
			}
		}
	}

	if len(result.Imported) == 0 {
		return result, nil
	}
	if err := uc.store.Save(ctx, registry); err != nil {
		return nil, fmt.Errorf("failed to save registry: %w", err)
	}
	uc.log.Debug("foundry project imported", "root", project.Root, "imported", len(result.Imported), "skipped", len(result.Skipped))
	return result, nil
}

func skipReason(selection *SelectEndpointResult) string {
	if selection == nil || len(selection.Report) == 0 {
		return "no endpoint"
	}
	r := selection.Report[0]
	if r.Err != nil && r.Err.Error() != string(r.Reason) {
		return fmt.Sprintf("%s: %v", r.Reason, r.Err)
	}
	return string(r.Reason)
}
