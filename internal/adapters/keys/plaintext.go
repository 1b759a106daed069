package keys

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/chainz/internal/domain"
	"github.com/trebuchet-org/chainz/internal/domain/models"
)

// PlaintextBackend serves a key stored as hex in the registry
type PlaintextBackend struct {
	name  string
	value string
}

func (b *PlaintextBackend) Kind() models.KeyType {
	return models.KeyTypePrivateKey
}

func (b *PlaintextBackend) Secret(ctx context.Context) (string, error) {
	if b.value == "" {
		return "", backendError(b.Kind(), b.name, domain.ErrKeyNotFound, nil)
	}
	return b.value, nil
}

func (b *PlaintextBackend) Address(ctx context.Context) (common.Address, error) {
	return addressOf(ctx, b)
}
