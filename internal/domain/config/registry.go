package config

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/trebuchet-org/chainz/internal/domain"
	"github.com/trebuchet-org/chainz/internal/domain/models"
)

const (
	DefaultEnvPrefix = "FOUNDRY"
	DefaultKeyName   = "default"
)

// Registry is the persisted state: chains, the keys they reference and the
// variables used to expand ${VAR} placeholders
type Registry struct {
	EnvPrefix  string                     `json:"env_prefix"`
	DefaultKey string                     `json:"default_key,omitempty"`
	Chains     []*models.Chain            `json:"chains"`
	Keys       map[string]*models.KeySpec `json:"keys"`
	Variables  map[string]string          `json:"variables"`
}

// NewRegistry returns an empty registry with defaults applied
func NewRegistry() *Registry {
	r := &Registry{}
	r.Normalize()
	return r
}

// Normalize fills defaults and makes key names agree with their map keys
func (r *Registry) Normalize() {
	if r.EnvPrefix == "" {
		r.EnvPrefix = DefaultEnvPrefix
	}
	if r.Keys == nil {
		r.Keys = make(map[string]*models.KeySpec)
	}
	if r.Variables == nil {
		r.Variables = make(map[string]string)
	}
	if r.Chains == nil {
		r.Chains = []*models.Chain{}
	}
	for name, key := range r.Keys {
		if key != nil {
			key.Name = name
		}
	}
}

// FindChain looks up a chain by name, then by numeric chain ID
func (r *Registry) FindChain(nameOrID string) (*models.Chain, error) {
	for _, c := range r.Chains {
		if c.Name == nameOrID {
			return c, nil
		}
	}
	if id, err := strconv.ParseUint(nameOrID, 10, 64); err == nil {
		for _, c := range r.Chains {
			if c.ChainID == id {
				return c, nil
			}
		}
	}
	return nil, fmt.Errorf("chain '%s': %w", nameOrID, domain.ErrNotFound)
}

// HasChainName reports whether a chain is registered under name
func (r *Registry) HasChainName(name string) bool {
	return slices.ContainsFunc(r.Chains, func(c *models.Chain) bool { return c.Name == name })
}

// AddChain inserts a new chain, enforcing unique name and chain ID
func (r *Registry) AddChain(chain *models.Chain) error {
	if err := validateChain(chain); err != nil {
		return err
	}
	for _, c := range r.Chains {
		if c.Name == chain.Name {
			return fmt.Errorf("chain '%s': %w", chain.Name, domain.ErrAlreadyExists)
		}
		if c.ChainID == chain.ChainID {
			return fmt.Errorf("chain ID %d is already registered as '%s': %w", chain.ChainID, c.Name, domain.ErrAlreadyExists)
		}
	}
	r.Chains = append(r.Chains, chain)
	return nil
}

// ReplaceChain swaps the chain with the same name for the given one
func (r *Registry) ReplaceChain(chain *models.Chain) error {
	if err := validateChain(chain); err != nil {
		return err
	}
	idx := slices.IndexFunc(r.Chains, func(c *models.Chain) bool { return c.Name == chain.Name })
	if idx < 0 {
		return fmt.Errorf("chain '%s': %w", chain.Name, domain.ErrNotFound)
	}
	for i, c := range r.Chains {
		if i != idx && c.ChainID == chain.ChainID {
			return fmt.Errorf("chain ID %d is already registered as '%s': %w", chain.ChainID, c.Name, domain.ErrAlreadyExists)
		}
	}
	r.Chains[idx] = chain
	return nil
}

// RemoveChain deletes a chain by name or ID and returns it
func (r *Registry) RemoveChain(nameOrID string) (*models.Chain, error) {
	chain, err := r.FindChain(nameOrID)
	if err != nil {
		return nil, err
	}
	r.Chains = lo.Reject(r.Chains, func(c *models.Chain, _ int) bool { return c == chain })
	return chain, nil
}

// ChainKeyName returns the key a chain signs with, falling back to the default key
func (r *Registry) ChainKeyName(chain *models.Chain) string {
	if chain.KeyName != "" {
		return chain.KeyName
	}
	return r.DefaultKey
}

// Key returns the KeySpec for name
func (r *Registry) Key(name string) (*models.KeySpec, error) {
	key, ok := r.Keys[name]
	if !ok || key == nil {
		return nil, fmt.Errorf("key '%s': %w", name, domain.ErrNotFound)
	}
	return key, nil
}

// PutKey adds a key; replace allows rotating an existing key under the same name
func (r *Registry) PutKey(key *models.KeySpec, replace bool) error {
	if key.Name == "" {
		return fmt.Errorf("key name must not be empty")
	}
	if err := key.Validate(); err != nil {
		return err
	}
	if _, exists := r.Keys[key.Name]; exists && !replace {
		return fmt.Errorf("key '%s': %w", key.Name, domain.ErrAlreadyExists)
	}
	r.Keys[key.Name] = key
	return nil
}

// RemoveKey deletes a key. Chains still referencing it become dangling and
// are reported by DanglingKeyRefs.
func (r *Registry) RemoveKey(name string) (*models.KeySpec, error) {
	key, err := r.Key(name)
	if err != nil {
		return nil, err
	}
	delete(r.Keys, name)
	if r.DefaultKey == name {
		r.DefaultKey = ""
	}
	return key, nil
}

// KeyNames returns the registered key names sorted
func (r *Registry) KeyNames() []string {
	names := lo.Keys(r.Keys)
	sort.Strings(names)
	return names
}

// ChainsUsingKey returns the names of chains signing with the key, including
// chains that fall back to it as the default
func (r *Registry) ChainsUsingKey(name string) []string {
	return lo.FilterMap(r.Chains, func(c *models.Chain, _ int) (string, bool) {
		return c.Name, r.ChainKeyName(c) == name
	})
}

// DanglingKeyRefs maps chain name to the missing key name it references
func (r *Registry) DanglingKeyRefs() map[string]string {
	dangling := make(map[string]string)
	for _, c := range r.Chains {
		name := r.ChainKeyName(c)
		if name == "" {
			continue
		}
		if _, ok := r.Keys[name]; !ok {
			dangling[c.Name] = name
		}
	}
	return dangling
}

// VariableNames returns the variable names sorted
func (r *Registry) VariableNames() []string {
	names := lo.Keys(r.Variables)
	sort.Strings(names)
	return names
}

func validateChain(chain *models.Chain) error {
	if strings.TrimSpace(chain.Name) == "" {
		return fmt.Errorf("chain name must not be empty")
	}
	if chain.ChainID == 0 {
		return fmt.Errorf("chain '%s': %w", chain.Name, domain.ErrInvalidChainID)
	}
	if chain.SelectedRPC != "" && !chain.HasRPC(chain.SelectedRPC) {
		return fmt.Errorf("chain '%s': selected RPC %q is not one of its RPC URLs", chain.Name, chain.SelectedRPC)
	}
	return nil
}
