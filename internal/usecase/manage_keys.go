package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/trebuchet-org/chainz/internal/domain"
	"github.com/trebuchet-org/chainz/internal/domain/models"
)

// AddKeyParams contains parameters for registering a key
type AddKeyParams struct {
	Name string
	Type models.KeyType
	// Secret is the hex private key; unused for 1Password keys
	Secret string

	// 1Password item reference
	Vault string
	Item  string

	// Keychain entry; defaults to service "chainz", account = Name
	Service string
	Account string

	// Force replaces an existing key of the same name (rotation)
	Force bool
	// SetDefault makes this the registry default key
	SetDefault bool
}

// AddKeyResult contains the result of registering a key
type AddKeyResult struct {
	Key      *models.KeySpec
	Address  string
	Replaced bool
	Default  bool
}

// AddKey provisions a key in its backend and records it in the registry
type AddKey struct {
	store RegistryStore
	keys  KeyBackendFactory
	log   *slog.Logger
}

// NewAddKey creates a new AddKey use case
func NewAddKey(store RegistryStore, keys KeyBackendFactory, log *slog.Logger) *AddKey {
	return &AddKey{store: store, keys: keys, log: log.With("component", "AddKey")}
}

// Run executes the use case
func (uc *AddKey) Run(ctx context.Context, params AddKeyParams) (*AddKeyResult, error) {
	if params.Name == "" {
		return nil, fmt.Errorf("key name must not be empty")
	}

	registry, err := uc.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}

	existing, err := registry.Key(params.Name)
	replaced := err == nil
	if replaced && !params.Force {
		return nil, fmt.Errorf("key '%s': %w (use --force to rotate it)", params.Name, domain.ErrAlreadyExists)
	}

	provisioned, err := uc.keys.Provision(ctx, newKeySpec(params), params.Secret)
	if err != nil {
		return nil, err
	}

	// Reading the address back proves the backend can serve the key
	backend, err := uc.keys.Backend(provisioned)
	if err != nil {
		return nil, err
	}
	addr, err := backend.Address(ctx)
	if err != nil {
		return nil, err
	}

	if err := registry.PutKey(provisioned, params.Force); err != nil {
		return nil, err
	}
	if params.SetDefault || registry.DefaultKey == "" {
		registry.DefaultKey = provisioned.Name
	}

	if err := uc.store.Save(ctx, registry); err != nil {
		return nil, fmt.Errorf("failed to save registry: %w", err)
	}

	// A rotated keychain key may have moved to a different entry
	if replaced && existing.Type == models.KeyTypeKeyring && existing.Keychain != nil &&
		(provisioned.Keychain == nil || *existing.Keychain != *provisioned.Keychain) {
		if err := uc.keys.Deprovision(ctx, existing); err != nil {
			uc.log.Warn("failed to remove old keychain entry", "key", existing.Name, "error", err)
		}
	}

	uc.log.Debug("key added", "key", provisioned.Name, "type", provisioned.Type)
	return &AddKeyResult{
		Key:      provisioned,
		Address:  addr.Hex(),
		Replaced: replaced,
		Default:  registry.DefaultKey == provisioned.Name,
	}, nil
}

func newKeySpec(params AddKeyParams) *models.KeySpec {
	spec := &models.KeySpec{Name: params.Name, Type: params.Type}
	switch params.Type {
	case models.KeyTypeOnePassword:
		spec.OnePassword = &models.OnePasswordKey{Vault: params.Vault, Item: params.Item}
	case models.KeyTypeKeyring:
		spec.Keychain = &models.KeychainKey{Service: params.Service, Account: params.Account}
	}
	return spec
}

// ListKeysParams contains parameters for listing keys
type ListKeysParams struct {
	// Addresses resolves each key's address, which may hit its backend
	Addresses bool
}

// KeyInfo describes a registered key
type KeyInfo struct {
	Key     *models.KeySpec
	Default bool
	Chains  []string
	Address string
	// AddressErr is set when Addresses was requested and the backend failed
	AddressErr error
}

// ListKeysResult contains the result of listing keys
type ListKeysResult struct {
	Keys []KeyInfo
	// Dangling maps chain name to a key name that doesn't exist
	Dangling map[string]string
}

// ListKeys is a use case for listing registered keys
type ListKeys struct {
	store RegistryStore
	keys  KeyBackendFactory
}

// NewListKeys creates a new ListKeys use case
func NewListKeys(store RegistryStore, keys KeyBackendFactory) *ListKeys {
	return &ListKeys{store: store, keys: keys}
}

// Run executes the use case
func (uc *ListKeys) Run(ctx context.Context, params ListKeysParams) (*ListKeysResult, error) {
	registry, err := uc.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}

	result := &ListKeysResult{Dangling: registry.DanglingKeyRefs()}
	for _, name := range registry.KeyNames() {
		spec := registry.Keys[name]
		info := KeyInfo{
			Key:     spec,
			Default: registry.DefaultKey == name,
			Chains:  registry.ChainsUsingKey(name),
		}
		if params.Addresses {
			backend, err := uc.keys.Backend(spec)
			if err == nil {
				addr, addrErr := backend.Address(ctx)
				err = addrErr
				if err == nil {
					info.Address = addr.Hex()
				}
			}
			info.AddressErr = err
		}
		result.Keys = append(result.Keys, info)
	}
	return result, nil
}

// RemoveKeyParams contains parameters for removing a key
type RemoveKeyParams struct {
	Name string
	// Force removes the key even if chains still reference it
	Force bool
}

// RemoveKeyResult contains the result of removing a key
type RemoveKeyResult struct {
	Removed *models.KeySpec
	// Orphaned lists chains left referencing the removed key
	Orphaned []string
	// WasDefault is set when the registry default key was cleared
	WasDefault bool
}

// RemoveKey deletes a key from the registry and its backend material
type RemoveKey struct {
	store RegistryStore
	keys  KeyBackendFactory
	log   *slog.Logger
}

// NewRemoveKey creates a new RemoveKey use case
func NewRemoveKey(store RegistryStore, keys KeyBackendFactory, log *slog.Logger) *RemoveKey {
	return &RemoveKey{store: store, keys: keys, log: log.With("component", "RemoveKey")}
}

// ErrKeyInUse is returned when removing a key chains still reference
var ErrKeyInUse = errors.New("key is in use")

// Run executes the use case
func (uc *RemoveKey) Run(ctx context.Context, params RemoveKeyParams) (*RemoveKeyResult, error) {
	registry, err := uc.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}

	users := registry.ChainsUsingKey(params.Name)
	if len(users) > 0 && !params.Force {
		return nil, fmt.Errorf("key '%s' is used by %v: %w (use --force to remove anyway)", params.Name, users, ErrKeyInUse)
	}

	wasDefault := registry.DefaultKey == params.Name
	removed, err := registry.RemoveKey(params.Name)
	if err != nil {
		return nil, err
	}

	if err := uc.store.Save(ctx, registry); err != nil {
		return nil, fmt.Errorf("failed to save registry: %w", err)
	}

	if err := uc.keys.Deprovision(ctx, removed); err != nil {
		uc.log.Warn("failed to remove backend material", "key", removed.Name, "error", err)
	}

	return &RemoveKeyResult{Removed: removed, Orphaned: users, WasDefault: wasDefault}, nil
}
