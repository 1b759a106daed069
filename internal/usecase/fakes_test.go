package usecase_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/chainz/internal/domain"
	"github.com/trebuchet-org/chainz/internal/domain/config"
	"github.com/trebuchet-org/chainz/internal/domain/models"
	"github.com/trebuchet-org/chainz/internal/usecase"
)

// memStore keeps the registry as JSON so every Load hands out a fresh copy
type memStore struct {
	mu    sync.Mutex
	data  []byte
	saves int
}

func newMemStore(t *testing.T, registry *config.Registry) *memStore {
	t.Helper()
	s := &memStore{}
	if registry != nil {
		data, err := json.Marshal(registry)
		require.NoError(t, err)
		s.data = data
	}
	return s
}

func (s *memStore) Load(ctx context.Context) (*config.Registry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return config.NewRegistry(), nil
	}
	var r config.Registry
	if err := json.Unmarshal(s.data, &r); err != nil {
		return nil, err
	}
	r.Normalize()
	return &r, nil
}

func (s *memStore) Save(ctx context.Context, registry *config.Registry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.Marshal(registry)
	if err != nil {
		return err
	}
	s.data = data
	s.saves++
	return nil
}

func (s *memStore) Exists() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data != nil
}

func (s *memStore) GetPath() string { return "/tmp/chainz-test.json" }

func (s *memStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func (s *memStore) registry(t *testing.T) *config.Registry {
	t.Helper()
	r, err := s.Load(context.Background())
	require.NoError(t, err)
	return r
}

// fakeBackend serves a fixed secret and address
type fakeBackend struct {
	kind    models.KeyType
	secret  string
	address common.Address
	err     error
}

func (b *fakeBackend) Kind() models.KeyType { return b.kind }

func (b *fakeBackend) Secret(ctx context.Context) (string, error) {
	return b.secret, b.err
}

func (b *fakeBackend) Address(ctx context.Context) (common.Address, error) {
	return b.address, b.err
}

// MockKeyFactory is a mock implementation of KeyBackendFactory
type MockKeyFactory struct {
	mock.Mock
}

func (m *MockKeyFactory) Backend(spec *models.KeySpec) (usecase.KeyBackend, error) {
	args := m.Called(spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(usecase.KeyBackend), args.Error(1)
}

func (m *MockKeyFactory) Provision(ctx context.Context, spec *models.KeySpec, secret string) (*models.KeySpec, error) {
	args := m.Called(ctx, spec, secret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.KeySpec), args.Error(1)
}

func (m *MockKeyFactory) Deprovision(ctx context.Context, spec *models.KeySpec) error {
	args := m.Called(ctx, spec)
	return args.Error(0)
}

// fakeCatalog serves a fixed set of chains
type fakeCatalog struct {
	chains []models.CatalogChain
}

func (c *fakeCatalog) List(ctx context.Context) ([]models.CatalogChain, error) {
	return c.chains, nil
}

func (c *fakeCatalog) Lookup(ctx context.Context, chainID uint64) (*models.CatalogChain, error) {
	for i := range c.chains {
		if c.chains[i].ChainID == chainID {
			return &c.chains[i], nil
		}
	}
	return nil, fmt.Errorf("chain ID %d: %w", chainID, domain.ErrNotFound)
}

func (c *fakeCatalog) LookupName(ctx context.Context, name string) (*models.CatalogChain, error) {
	for i := range c.chains {
		if c.chains[i].Name == name || c.chains[i].Slug() == name || c.chains[i].ShortName == name {
			return &c.chains[i], nil
		}
	}
	return nil, fmt.Errorf("chain '%s': %w", name, domain.ErrNotFound)
}

// fakeEnvWriter records the last write
type fakeEnvWriter struct {
	path string
	env  map[string]string
}

func (w *fakeEnvWriter) WriteEnv(path string, env map[string]string) error {
	w.path = path
	w.env = env
	return nil
}

// fakeExecutor records the commands it was asked to run
type fakeExecutor struct {
	commands []usecase.ExecCommand
}

func (e *fakeExecutor) Execute(ctx context.Context, command usecase.ExecCommand) error {
	e.commands = append(e.commands, command)
	return nil
}

const (
	testKey1    = "0x0000000000000000000000000000000000000000000000000000000000000001"
	testAddr1   = "0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf"
	testKey2    = "0x0000000000000000000000000000000000000000000000000000000000000002"
	testAddr2   = "0x2B5AD5c4795c026514f8317c7a215E218DcCD6cF"
	testRPCFast = "https://fast.example"
	testRPCSlow = "https://slow.example"
)

func plaintextBackend(secret, address string) *fakeBackend {
	return &fakeBackend{kind: models.KeyTypePrivateKey, secret: secret, address: common.HexToAddress(address)}
}

// testRegistry has one chain (sepolia, 11155111) with two candidates and a default plaintext key
func testRegistry() *config.Registry {
	r := config.NewRegistry()
	r.Chains = []*models.Chain{{
		Name:        "sepolia",
		ChainID:     11155111,
		RPCURLs:     []string{testRPCSlow, testRPCFast},
		SelectedRPC: testRPCSlow,
	}}
	r.Keys["deployer"] = models.NewPlaintextKey("deployer", testKey1)
	r.DefaultKey = "deployer"
	return r
}

func sepoliaProber() *fakeProber {
	return newFakeProber(map[string]models.ProbeResult{
		testRPCFast: models.ProbeSuccess(testRPCFast, 10*time.Millisecond, 11155111, 5),
		testRPCSlow: models.ProbeSuccess(testRPCSlow, 80*time.Millisecond, 11155111, 5),
	})
}
