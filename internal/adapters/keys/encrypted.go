package keys

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/trebuchet-org/chainz/internal/domain"
	"github.com/trebuchet-org/chainz/internal/domain/models"
	"github.com/trebuchet-org/chainz/internal/usecase"
	"golang.org/x/crypto/scrypt"
)

// scrypt parameters, as used by go-ethereum's standard keystore
const (
	scryptN      = 1 << 18
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
	saltLen      = 32
)

// EncryptedBackend decrypts a key stored as AES-256-GCM ciphertext, asking
// the password source on every call
type EncryptedBackend struct {
	name      string
	enc       models.EncryptedKey
	passwords usecase.PasswordSource
	scryptN   int
}

func (b *EncryptedBackend) Kind() models.KeyType {
	return models.KeyTypeEncryptedKey
}

func (b *EncryptedBackend) Secret(ctx context.Context) (string, error) {
	if b.passwords == nil {
		return "", backendError(b.Kind(), b.name, domain.ErrBackendUnavailable, errors.New("no password source"))
	}
	password, err := b.passwords.Password(ctx, b.name, false)
	if err != nil {
		return "", backendError(b.Kind(), b.name, domain.ErrBackendUnavailable, err)
	}
	secret, err := decrypt(b.enc, password, b.scryptN)
	if err != nil {
		return "", backendError(b.Kind(), b.name, domain.ErrBackendUnavailable, err)
	}
	return secret, nil
}

func (b *EncryptedBackend) Address(ctx context.Context) (common.Address, error) {
	return addressOf(ctx, b)
}

func encrypt(secret, password string, n int) (models.EncryptedKey, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return models.EncryptedKey{}, fmt.Errorf("failed to generate salt: %w", err)
	}

	gcm, err := newGCM(password, salt, n)
	if err != nil {
		return models.EncryptedKey{}, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return models.EncryptedKey{}, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return models.EncryptedKey{
		Value: hexutil.Encode(gcm.Seal(nil, nonce, []byte(secret), nil)),
		Nonce: hexutil.Encode(nonce),
		Salt:  hexutil.Encode(salt),
	}, nil
}

func decrypt(enc models.EncryptedKey, password string, n int) (string, error) {
	salt, err := hexutil.Decode(enc.Salt)
	if err != nil {
		return "", fmt.Errorf("corrupt salt: %w", err)
	}
	nonce, err := hexutil.Decode(enc.Nonce)
	if err != nil {
		return "", fmt.Errorf("corrupt nonce: %w", err)
	}
	ciphertext, err := hexutil.Decode(enc.Value)
	if err != nil {
		return "", fmt.Errorf("corrupt ciphertext: %w", err)
	}

	gcm, err := newGCM(password, salt, n)
	if err != nil {
		return "", err
	}
	if len(nonce) != gcm.NonceSize() {
		return "", fmt.Errorf("corrupt nonce: expected %d bytes, got %d", gcm.NonceSize(), len(nonce))
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", errors.New("wrong password or corrupted ciphertext")
	}
	return string(plaintext), nil
}

func newGCM(password string, salt []byte, n int) (cipher.AEAD, error) {
	key, err := scrypt.Key([]byte(password), salt, n, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
