package models

import (
	"encoding/json"
	"fmt"
)

// KeyType discriminates the storage backend of a KeySpec
type KeyType string

const (
	KeyTypePrivateKey   KeyType = "PrivateKey"
	KeyTypeEncryptedKey KeyType = "EncryptedKey"
	KeyTypeOnePassword  KeyType = "OnePassword"
	KeyTypeKeyring      KeyType = "Keyring"
)

// KeyTypes lists every supported backend in display order
func KeyTypes() []KeyType {
	return []KeyType{KeyTypePrivateKey, KeyTypeEncryptedKey, KeyTypeOnePassword, KeyTypeKeyring}
}

// ParseKeyType accepts the canonical names plus the short CLI aliases
func ParseKeyType(s string) (KeyType, error) {
	switch s {
	case "PrivateKey", "plaintext", "private-key", "raw":
		return KeyTypePrivateKey, nil
	case "EncryptedKey", "encrypted":
		return KeyTypeEncryptedKey, nil
	case "OnePassword", "1password", "op":
		return KeyTypeOnePassword, nil
	case "Keyring", "keychain", "keyring":
		return KeyTypeKeyring, nil
	default:
		return "", fmt.Errorf("unknown key type: %s", s)
	}
}

// KeySpec is a named reference to private key material. Exactly one of the
// variant payloads is set, matching Type.
type KeySpec struct {
	Name string
	Type KeyType

	Plaintext   *PlaintextKey
	Encrypted   *EncryptedKey
	OnePassword *OnePasswordKey
	Keychain    *KeychainKey
}

// PlaintextKey stores the raw hex private key in the registry
type PlaintextKey struct {
	Value string `json:"value"`
}

// EncryptedKey stores an AES-GCM ciphertext of the private key; the
// encryption key is derived from a password with scrypt
type EncryptedKey struct {
	Value string `json:"value"`
	Nonce string `json:"nonce"`
	Salt  string `json:"salt"`
}

// OnePasswordKey references an item readable with `op read op://<vault>/<item>`
type OnePasswordKey struct {
	Vault string `json:"vault"`
	Item  string `json:"item"`
}

// Reference returns the secret reference passed to the 1Password CLI
func (k *OnePasswordKey) Reference() string {
	return fmt.Sprintf("op://%s/%s", k.Vault, k.Item)
}

// KeychainKey references an OS keychain entry
type KeychainKey struct {
	Service string `json:"service"`
	Account string `json:"account"`
}

func NewPlaintextKey(name, value string) *KeySpec {
	return &KeySpec{Name: name, Type: KeyTypePrivateKey, Plaintext: &PlaintextKey{Value: value}}
}

func NewOnePasswordKey(name, vault, item string) *KeySpec {
	return &KeySpec{Name: name, Type: KeyTypeOnePassword, OnePassword: &OnePasswordKey{Vault: vault, Item: item}}
}

func NewKeychainKey(name, service, account string) *KeySpec {
	return &KeySpec{Name: name, Type: KeyTypeKeyring, Keychain: &KeychainKey{Service: service, Account: account}}
}

func NewEncryptedKey(name string, enc EncryptedKey) *KeySpec {
	return &KeySpec{Name: name, Type: KeyTypeEncryptedKey, Encrypted: &enc}
}

// Validate checks that the payload matching Type is present
func (k *KeySpec) Validate() error {
	var ok bool
	switch k.Type {
	case KeyTypePrivateKey:
		ok = k.Plaintext != nil
	case KeyTypeEncryptedKey:
		ok = k.Encrypted != nil
	case KeyTypeOnePassword:
		ok = k.OnePassword != nil && k.OnePassword.Vault != "" && k.OnePassword.Item != ""
	case KeyTypeKeyring:
		ok = k.Keychain != nil && k.Keychain.Service != "" && k.Keychain.Account != ""
	default:
		return fmt.Errorf("key '%s' has unknown type %q", k.Name, k.Type)
	}
	if !ok {
		return fmt.Errorf("key '%s' of type %s is missing its settings", k.Name, k.Type)
	}
	return nil
}

// keySpecJSON is the flattened on-disk form: {"name":..., "type":"PrivateKey", "value":...}
type keySpecJSON struct {
	Name    string  `json:"name"`
	Type    KeyType `json:"type"`
	Value   string  `json:"value,omitempty"`
	Nonce   string  `json:"nonce,omitempty"`
	Salt    string  `json:"salt,omitempty"`
	Vault   string  `json:"vault,omitempty"`
	Item    string  `json:"item,omitempty"`
	Service string  `json:"service,omitempty"`
	Account string  `json:"account,omitempty"`
}

func (k KeySpec) MarshalJSON() ([]byte, error) {
	out := keySpecJSON{Name: k.Name, Type: k.Type}
	switch k.Type {
	case KeyTypePrivateKey:
		if k.Plaintext != nil {
			out.Value = k.Plaintext.Value
		}
	case KeyTypeEncryptedKey:
		if k.Encrypted != nil {
			out.Value, out.Nonce, out.Salt = k.Encrypted.Value, k.Encrypted.Nonce, k.Encrypted.Salt
		}
	case KeyTypeOnePassword:
		if k.OnePassword != nil {
			out.Vault, out.Item = k.OnePassword.Vault, k.OnePassword.Item
		}
	case KeyTypeKeyring:
		if k.Keychain != nil {
			out.Service, out.Account = k.Keychain.Service, k.Keychain.Account
		}
	default:
		return nil, fmt.Errorf("cannot marshal key '%s': unknown type %q", k.Name, k.Type)
	}
	return json.Marshal(out)
}

func (k *KeySpec) UnmarshalJSON(data []byte) error {
	var in keySpecJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	spec := KeySpec{Name: in.Name, Type: in.Type}
	switch in.Type {
	case KeyTypePrivateKey:
		spec.Plaintext = &PlaintextKey{Value: in.Value}
	case KeyTypeEncryptedKey:
		spec.Encrypted = &EncryptedKey{Value: in.Value, Nonce: in.Nonce, Salt: in.Salt}
	case KeyTypeOnePassword:
		spec.OnePassword = &OnePasswordKey{Vault: in.Vault, Item: in.Item}
	case KeyTypeKeyring:
		spec.Keychain = &KeychainKey{Service: in.Service, Account: in.Account}
	default:
		return fmt.Errorf("key '%s' has unknown type %q", in.Name, in.Type)
	}

	*k = spec
	return nil
}
