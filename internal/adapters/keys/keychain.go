package keys

import (
	"context"
	"errors"
	"fmt"

	"github.com/99designs/keyring"
	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/chainz/internal/domain"
	"github.com/trebuchet-org/chainz/internal/domain/models"
)

// KeyringOpener opens the OS keychain for a service
type KeyringOpener func(service string) (keyring.Keyring, error)

// OpenSystemKeyring opens the platform keychain (macOS Keychain, Windows
// Credential Manager, Secret Service, KWallet or keyctl)
func OpenSystemKeyring(service string) (keyring.Keyring, error) {
	return keyring.Open(keyring.Config{
		ServiceName: service,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.WinCredBackend,
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.KeyCtlBackend,
		},
		KeychainTrustApplication: true,
		KeyCtlScope:              "user",
	})
}

// KeychainBackend reads a key from the OS keychain entry service/account
type KeychainBackend struct {
	name    string
	ref     models.KeychainKey
	openKey KeyringOpener
}

func (b *KeychainBackend) Kind() models.KeyType {
	return models.KeyTypeKeyring
}

func (b *KeychainBackend) Secret(ctx context.Context) (string, error) {
	kr, err := b.openKey(b.ref.Service)
	if err != nil {
		return "", backendError(b.Kind(), b.name, domain.ErrBackendUnavailable, err)
	}

	item, err := kr.Get(b.ref.Account)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", backendError(b.Kind(), b.name, domain.ErrKeyNotFound,
			fmt.Errorf("no entry for service %q account %q", b.ref.Service, b.ref.Account))
	}
	if err != nil {
		return "", backendError(b.Kind(), b.name, domain.ErrBackendUnavailable, err)
	}
	if len(item.Data) == 0 {
		return "", backendError(b.Kind(), b.name, domain.ErrKeyNotFound,
			fmt.Errorf("entry for service %q account %q is empty", b.ref.Service, b.ref.Account))
	}
	return string(item.Data), nil
}

func (b *KeychainBackend) Address(ctx context.Context) (common.Address, error) {
	return addressOf(ctx, b)
}

func (b *KeychainBackend) store(secret string) error {
	kr, err := b.openKey(b.ref.Service)
	if err != nil {
		return backendError(b.Kind(), b.name, domain.ErrBackendUnavailable, err)
	}
	err = kr.Set(keyring.Item{
		Key:         b.ref.Account,
		Data:        []byte(secret),
		Label:       fmt.Sprintf("chainz key %s", b.name),
		Description: "EVM private key",
	})
	if err != nil {
		return backendError(b.Kind(), b.name, domain.ErrBackendUnavailable, err)
	}
	return nil
}

func (b *KeychainBackend) remove() error {
	kr, err := b.openKey(b.ref.Service)
	if err != nil {
		return backendError(b.Kind(), b.name, domain.ErrBackendUnavailable, err)
	}
	if err := kr.Remove(b.ref.Account); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return backendError(b.Kind(), b.name, domain.ErrBackendUnavailable, err)
	}
	return nil
}
