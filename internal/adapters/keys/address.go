package keys

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// errInvalidPrivateKey never includes the rejected input
var errInvalidPrivateKey = errors.New("not a valid secp256k1 private key")

// NormalizePrivateKey trims whitespace and returns the key as 0x-prefixed hex
func NormalizePrivateKey(secret string) (string, error) {
	raw := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(secret), "0x"), "0X")
	if _, err := crypto.HexToECDSA(raw); err != nil {
		return "", errInvalidPrivateKey
	}
	return "0x" + strings.ToLower(raw), nil
}

// AddressFromSecret derives the checksummed account address of a hex private key
func AddressFromSecret(secret string) (common.Address, error) {
	raw := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(secret), "0x"), "0X")
	key, err := crypto.HexToECDSA(raw)
	if err != nil {
		return common.Address{}, errInvalidPrivateKey
	}
	return crypto.PubkeyToAddress(key.PublicKey), nil
}
