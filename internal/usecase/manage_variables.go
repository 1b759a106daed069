package usecase

import (
	"context"
	"fmt"
	"slices"

	internalconfig "github.com/trebuchet-org/chainz/internal/config"
	"github.com/trebuchet-org/chainz/internal/domain"
	"github.com/trebuchet-org/chainz/internal/domain/config"
)

// VariableInfo describes one variable and the chains referencing it
type VariableInfo struct {
	Name  string
	Value string
	// Source is "config" for stored values or "env" when the environment overrides it
	Source string
	// Stored is false for variables referenced by chains but defined nowhere in the registry
	Stored bool
	UsedBy []string
}

// ManageVariablesParams contains parameters for variable operations
type ManageVariablesParams struct {
	Name  string
	Value string
}

// ManageVariables is a use case for the persisted ${VAR} values
type ManageVariables struct {
	store RegistryStore
}

// NewManageVariables creates a new ManageVariables use case
func NewManageVariables(store RegistryStore) *ManageVariables {
	return &ManageVariables{store: store}
}

// Set stores a variable
func (uc *ManageVariables) Set(ctx context.Context, params ManageVariablesParams) (*VariableInfo, error) {
	if err := internalconfig.ValidateVariableName(params.Name); err != nil {
		return nil, err
	}

	registry, err := uc.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}
	registry.Variables[params.Name] = params.Value

	if err := uc.store.Save(ctx, registry); err != nil {
		return nil, fmt.Errorf("failed to save registry: %w", err)
	}
	return &VariableInfo{
		Name:   params.Name,
		Value:  params.Value,
		Source: "config",
		Stored: true,
		UsedBy: chainsReferencing(registry)[params.Name],
	}, nil
}

// Get returns the effective value of a variable
func (uc *ManageVariables) Get(ctx context.Context, params ManageVariablesParams) (*VariableInfo, error) {
	registry, err := uc.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}

	value, source, ok := internalconfig.NewResolver(registry.Variables).Lookup(params.Name)
	if !ok {
		return nil, fmt.Errorf("variable '%s': %w", params.Name, domain.ErrNotFound)
	}
	_, stored := registry.Variables[params.Name]
	return &VariableInfo{
		Name:   params.Name,
		Value:  value,
		Source: source,
		Stored: stored,
		UsedBy: chainsReferencing(registry)[params.Name],
	}, nil
}

// List returns stored variables plus any variable chains reference
func (uc *ManageVariables) List(ctx context.Context) ([]VariableInfo, error) {
	registry, err := uc.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}

	resolver := internalconfig.NewResolver(registry.Variables)
	refs := chainsReferencing(registry)

	names := registry.VariableNames()
	for name := range refs {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	slices.Sort(names)

	infos := make([]VariableInfo, 0, len(names))
	for _, name := range names {
		value, source, _ := resolver.Lookup(name)
		_, stored := registry.Variables[name]
		infos = append(infos, VariableInfo{
			Name:   name,
			Value:  value,
			Source: source,
			Stored: stored,
			UsedBy: refs[name],
		})
	}
	return infos, nil
}

// Remove deletes a stored variable and reports chains that still reference it
func (uc *ManageVariables) Remove(ctx context.Context, params ManageVariablesParams) (*VariableInfo, error) {
	registry, err := uc.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}

	value, ok := registry.Variables[params.Name]
	if !ok {
		return nil, fmt.Errorf("variable '%s': %w", params.Name, domain.ErrNotFound)
	}
	delete(registry.Variables, params.Name)

	if err := uc.store.Save(ctx, registry); err != nil {
		return nil, fmt.Errorf("failed to save registry: %w", err)
	}
	return &VariableInfo{
		Name:   params.Name,
		Value:  value,
		Source: "config",
		UsedBy: chainsReferencing(registry)[params.Name],
	}, nil
}

// chainsReferencing maps variable name to the chains whose templates use it
func chainsReferencing(registry *config.Registry) map[string][]string {
	refs := make(map[string][]string)
	for _, chain := range registry.Chains {
		templates := append(slices.Clone(chain.RPCURLs), chain.VerificationAPIKey, chain.VerificationURL)
		seen := make(map[string]bool)
		for _, tmpl := range templates {
			names, err := internalconfig.Placeholders(tmpl)
			if err != nil {
				continue
			}
			for _, name := range names {
				if !seen[name] {
					seen[name] = true
					refs[name] = append(refs[name], chain.Name)
				}
			}
		}
	}
	return refs
}
