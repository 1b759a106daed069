package keys

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/chainz/internal/domain"
	"github.com/trebuchet-org/chainz/internal/domain/models"
	"github.com/trebuchet-org/chainz/internal/usecase"
)

const (
	// DefaultKeychainService is the keychain service used when none is given
	DefaultKeychainService = "chainz"
	defaultOpPath          = "op"
)

// Manager maps KeySpecs onto backends. It is the only place that switches on
// the key type.
type Manager struct {
	openKeyring KeyringOpener
	runner      CommandRunner
	passwords   usecase.PasswordSource
	opPath      string
	scryptN     int
	log         *slog.Logger
}

// Option customizes a Manager
type Option func(*Manager)

// WithKeyringOpener replaces the OS keychain, e.g. with keyring.NewArrayKeyring in tests
func WithKeyringOpener(open KeyringOpener) Option {
	return func(m *Manager) { m.openKeyring = open }
}

// WithCommandRunner replaces the runner used for the 1Password CLI
func WithCommandRunner(runner CommandRunner) Option {
	return func(m *Manager) { m.runner = runner }
}

// WithScryptN lowers the scrypt work factor; only meant for tests
func WithScryptN(n int) Option {
	return func(m *Manager) { m.scryptN = n }
}

// NewManager creates a key backend manager
func NewManager(passwords usecase.PasswordSource, log *slog.Logger, opts ...Option) *Manager {
	m := &Manager{
		openKeyring: OpenSystemKeyring,
		runner:      ExecRunner{},
		passwords:   passwords,
		opPath:      defaultOpPath,
		scryptN:     scryptN,
		log:         log.With("component", "KeyManager"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Backend returns the backend serving spec
func (m *Manager) Backend(spec *models.KeySpec) (usecase.KeyBackend, error) {
	if spec == nil {
		return nil, fmt.Errorf("no key spec given")
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	m.log.Debug("selected key backend", "key", spec.Name, "type", spec.Type)

	switch spec.Type {
	case models.KeyTypePrivateKey:
		return &PlaintextBackend{name: spec.Name, value: spec.Plaintext.Value}, nil
	case models.KeyTypeEncryptedKey:
		return &EncryptedBackend{name: spec.Name, enc: *spec.Encrypted, passwords: m.passwords, scryptN: m.scryptN}, nil
	case models.KeyTypeOnePassword:
		return &OnePasswordBackend{name: spec.Name, ref: *spec.OnePassword, opPath: m.opPath, runner: m.runner}, nil
	case models.KeyTypeKeyring:
		return &KeychainBackend{name: spec.Name, ref: *spec.Keychain, openKey: m.openKeyring}, nil
	default:
		return nil, fmt.Errorf("key '%s' has unknown type %q", spec.Name, spec.Type)
	}
}

// Provision stores secret where the backend keeps material and returns the
// spec to persist. 1Password keys take no secret; the vault already holds it.
func (m *Manager) Provision(ctx context.Context, spec *models.KeySpec, secret string) (*models.KeySpec, error) {
	if spec.Type == models.KeyTypeOnePassword {
		if secret != "" {
			return nil, fmt.Errorf("1Password keys are read from the vault; no private key may be given")
		}
		return spec, spec.Validate()
	}

	normalized, err := NormalizePrivateKey(secret)
	if err != nil {
		return nil, fmt.Errorf("key '%s': %w", spec.Name, err)
	}

	switch spec.Type {
	case models.KeyTypePrivateKey:
		return models.NewPlaintextKey(spec.Name, normalized), nil

	case models.KeyTypeEncryptedKey:
		if m.passwords == nil {
			return nil, backendError(spec.Type, spec.Name, domain.ErrBackendUnavailable, fmt.Errorf("no password source"))
		}
		password, err := m.passwords.Password(ctx, spec.Name, true)
		if err != nil {
			return nil, backendError(spec.Type, spec.Name, domain.ErrBackendUnavailable, err)
		}
		enc, err := encrypt(normalized, password, m.scryptN)
		if err != nil {
			return nil, backendError(spec.Type, spec.Name, domain.ErrBackendUnavailable, err)
		}
		return models.NewEncryptedKey(spec.Name, enc), nil

	case models.KeyTypeKeyring:
		ref := models.KeychainKey{Service: DefaultKeychainService, Account: spec.Name}
		if spec.Keychain != nil {
			if spec.Keychain.Service != "" {
				ref.Service = spec.Keychain.Service
			}
			if spec.Keychain.Account != "" {
				ref.Account = spec.Keychain.Account
			}
		}
		backend := &KeychainBackend{name: spec.Name, ref: ref, openKey: m.openKeyring}
		if err := backend.store(normalized); err != nil {
			return nil, err
		}
		return models.NewKeychainKey(spec.Name, ref.Service, ref.Account), nil

	default:
		return nil, fmt.Errorf("key '%s' has unknown type %q", spec.Name, spec.Type)
	}
}

// Deprovision deletes the keychain entry of a keychain key. Other backends
// keep no material outside the registry, or material chainz does not own.
func (m *Manager) Deprovision(ctx context.Context, spec *models.KeySpec) error {
	if spec.Type != models.KeyTypeKeyring || spec.Keychain == nil {
		return nil
	}
	backend := &KeychainBackend{name: spec.Name, ref: *spec.Keychain, openKey: m.openKeyring}
	return backend.remove()
}

// backendError builds a *domain.KeyBackendError matching sentinel with errors.Is
func backendError(kind models.KeyType, key string, sentinel error, cause error) error {
	err := sentinel
	if cause != nil {
		err = fmt.Errorf("%w: %v", sentinel, cause)
	}
	return &domain.KeyBackendError{Kind: KindLabel(kind), Key: key, Err: err}
}

// KindLabel is the user-facing backend name
func KindLabel(kind models.KeyType) string {
	switch kind {
	case models.KeyTypePrivateKey:
		return "plaintext"
	case models.KeyTypeEncryptedKey:
		return "encrypted"
	case models.KeyTypeOnePassword:
		return "1Password"
	case models.KeyTypeKeyring:
		return "keychain"
	default:
		return string(kind)
	}
}

type secretSource interface {
	Secret(ctx context.Context) (string, error)
	Kind() models.KeyType
}

func addressOf(ctx context.Context, src secretSource) (common.Address, error) {
	secret, err := src.Secret(ctx)
	if err != nil {
		return common.Address{}, err
	}
	addr, err := AddressFromSecret(secret)
	if err != nil {
		return common.Address{}, fmt.Errorf("%s key: %w", KindLabel(src.Kind()), err)
	}
	return addr, nil
}

// Ensure the adapter implements the interface
var _ usecase.KeyBackendFactory = (*Manager)(nil)
