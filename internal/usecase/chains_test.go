package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/chainz/internal/domain"
	"github.com/trebuchet-org/chainz/internal/domain/config"
	"github.com/trebuchet-org/chainz/internal/domain/models"
	"github.com/trebuchet-org/chainz/internal/usecase"
)

func TestAddChain(t *testing.T) {
	ctx := context.Background()

	t.Run("probes candidates and stores the winner", func(t *testing.T) {
		store := newMemStore(t, nil)
		uc := usecase.NewAddChain(store, &fakeCatalog{}, newSelectEndpoint(sepoliaProber(), usecase.NopProgress{}), testLogger())

		result, err := uc.Run(ctx, usecase.AddChainParams{
			Name:    "sepolia",
			ChainID: 11155111,
			RPCURLs: []string{testRPCSlow, " " + testRPCFast + " ", testRPCSlow},
		})
		require.NoError(t, err)
		assert.Equal(t, testRPCFast, result.Chain.SelectedRPC)
		assert.Equal(t, []string{testRPCSlow, testRPCFast}, result.Chain.RPCURLs)
		assert.False(t, result.FromCatalog)
		assert.Equal(t, 1, store.Saves())

		stored, err := store.registry(t).FindChain("sepolia")
		require.NoError(t, err)
		assert.Equal(t, testRPCFast, stored.SelectedRPC)
	})

	t.Run("fills chain ID and endpoints from the catalog", func(t *testing.T) {
		store := newMemStore(t, nil)
		catalog := &fakeCatalog{chains: []models.CatalogChain{{
			Name:    "Sepolia",
			ChainID: 11155111,
			RPC:     []string{testRPCFast, "wss://ws.example"},
		}}}
		uc := usecase.NewAddChain(store, catalog, newSelectEndpoint(sepoliaProber(), usecase.NopProgress{}), testLogger())

		result, err := uc.Run(ctx, usecase.AddChainParams{ChainID: 11155111})
		require.NoError(t, err)
		assert.True(t, result.FromCatalog)
		assert.Equal(t, "sepolia", result.Chain.Name)
		assert.Equal(t, []string{testRPCFast}, result.Chain.RPCURLs)
	})

	t.Run("rejects duplicates before probing", func(t *testing.T) {
		store := newMemStore(t, testRegistry())
		prober := sepoliaProber()
		uc := usecase.NewAddChain(store, &fakeCatalog{}, newSelectEndpoint(prober, usecase.NopProgress{}), testLogger())

		_, err := uc.Run(ctx, usecase.AddChainParams{Name: "sepolia", ChainID: 11155111, RPCURLs: []string{testRPCFast}})
		assert.ErrorIs(t, err, domain.ErrAlreadyExists)
		assert.Empty(t, prober.Calls())
		assert.Equal(t, 0, store.Saves())
	})

	t.Run("unknown key is rejected", func(t *testing.T) {
		store := newMemStore(t, nil)
		uc := usecase.NewAddChain(store, &fakeCatalog{}, newSelectEndpoint(sepoliaProber(), usecase.NopProgress{}), testLogger())

		_, err := uc.Run(ctx, usecase.AddChainParams{Name: "sepolia", ChainID: 11155111, RPCURLs: []string{testRPCFast}, KeyName: "missing"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("nothing is stored when no endpoint is healthy", func(t *testing.T) {
		store := newMemStore(t, nil)
		uc := usecase.NewAddChain(store, &fakeCatalog{}, newSelectEndpoint(newFakeProber(nil), usecase.NopProgress{}), testLogger())

		result, err := uc.Run(ctx, usecase.AddChainParams{Name: "sepolia", ChainID: 11155111, RPCURLs: []string{testRPCFast}})
		assert.ErrorIs(t, err, domain.ErrNoHealthyEndpoint)
		require.NotNil(t, result)
		require.NotNil(t, result.Selection)
		assert.Len(t, result.Selection.Report, 1)
		assert.Equal(t, 0, store.Saves())
	})

	t.Run("skip probe stores without selection", func(t *testing.T) {
		store := newMemStore(t, nil)
		prober := sepoliaProber()
		uc := usecase.NewAddChain(store, &fakeCatalog{}, newSelectEndpoint(prober, usecase.NopProgress{}), testLogger())

		result, err := uc.Run(ctx, usecase.AddChainParams{Name: "sepolia", ChainID: 11155111, RPCURLs: []string{testRPCFast}, SkipProbe: true})
		require.NoError(t, err)
		assert.Empty(t, result.Chain.SelectedRPC)
		assert.Empty(t, prober.Calls())
		assert.Equal(t, 1, store.Saves())
	})
}

func TestUpdateChain(t *testing.T) {
	ctx := context.Background()

	t.Run("removing the selected endpoint clears the selection", func(t *testing.T) {
		store := newMemStore(t, testRegistry())
		uc := usecase.NewUpdateChain(store, newSelectEndpoint(sepoliaProber(), usecase.NopProgress{}), testLogger())

		result, err := uc.Run(ctx, usecase.UpdateChainParams{NameOrID: "11155111", RemoveRPCs: []string{testRPCSlow}})
		require.NoError(t, err)
		assert.True(t, result.SelectionCleared)
		assert.Equal(t, []string{testRPCFast}, result.Chain.RPCURLs)
		assert.Empty(t, result.Chain.SelectedRPC)
	})

	t.Run("cannot remove every endpoint", func(t *testing.T) {
		store := newMemStore(t, testRegistry())
		uc := usecase.NewUpdateChain(store, newSelectEndpoint(sepoliaProber(), usecase.NopProgress{}), testLogger())

		_, err := uc.Run(ctx, usecase.UpdateChainParams{NameOrID: "sepolia", RemoveRPCs: []string{testRPCSlow, testRPCFast}})
		assert.Error(t, err)
		assert.Equal(t, 0, store.Saves())
	})

	t.Run("failover after adding endpoints", func(t *testing.T) {
		store := newMemStore(t, testRegistry())
		uc := usecase.NewUpdateChain(store, newSelectEndpoint(sepoliaProber(), usecase.NopProgress{}), testLogger())

		key := "${ETHERSCAN_API_KEY}"
		result, err := uc.Run(ctx, usecase.UpdateChainParams{
			NameOrID:           "sepolia",
			AddRPCs:            []string{testRPCFast, "https://third.example"},
			VerificationAPIKey: &key,
			Failover:           true,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{testRPCSlow, testRPCFast, "https://third.example"}, result.Chain.RPCURLs)
		assert.Equal(t, testRPCFast, result.Chain.SelectedRPC)
		assert.Equal(t, key, result.Chain.VerificationAPIKey)
	})
}

func TestFailoverChain(t *testing.T) {
	ctx := context.Background()

	t.Run("persists a changed selection once", func(t *testing.T) {
		store := newMemStore(t, testRegistry())
		uc := usecase.NewFailoverChain(store, newSelectEndpoint(sepoliaProber(), usecase.NopProgress{}), testLogger())

		result, err := uc.Run(ctx, usecase.FailoverChainParams{NameOrID: "sepolia"})
		require.NoError(t, err)
		assert.True(t, result.Changed)
		assert.Equal(t, testRPCFast, result.Chain.SelectedRPC)
		assert.Equal(t, 1, store.Saves())
	})

	t.Run("unchanged selection is not written", func(t *testing.T) {
		registry := testRegistry()
		registry.Chains[0].SelectedRPC = testRPCFast
		store := newMemStore(t, registry)
		uc := usecase.NewFailoverChain(store, newSelectEndpoint(sepoliaProber(), usecase.NopProgress{}), testLogger())

		result, err := uc.Run(ctx, usecase.FailoverChainParams{NameOrID: "sepolia"})
		require.NoError(t, err)
		assert.False(t, result.Changed)
		assert.Equal(t, 0, store.Saves())
	})

	t.Run("keeps the old selection when nothing is healthy", func(t *testing.T) {
		store := newMemStore(t, testRegistry())
		uc := usecase.NewFailoverChain(store, newSelectEndpoint(newFakeProber(nil), usecase.NopProgress{}), testLogger())

		_, err := uc.Run(ctx, usecase.FailoverChainParams{NameOrID: "sepolia"})
		var noHealthy *models.NoHealthyEndpointError
		require.ErrorAs(t, err, &noHealthy)
		assert.Equal(t, "sepolia", noHealthy.Chain)
		assert.Len(t, noHealthy.Report, 2)
		assert.Equal(t, 0, store.Saves())

		stored, err := store.registry(t).FindChain("sepolia")
		require.NoError(t, err)
		assert.Equal(t, testRPCSlow, stored.SelectedRPC)
	})
}

func TestRemoveChain(t *testing.T) {
	store := newMemStore(t, testRegistry())
	uc := usecase.NewRemoveChain(store)

	result, err := uc.Run(context.Background(), usecase.RemoveChainParams{NameOrID: "11155111"})
	require.NoError(t, err)
	assert.Equal(t, "sepolia", result.Removed.Name)
	assert.Empty(t, store.registry(t).Chains)

	_, err = uc.Run(context.Background(), usecase.RemoveChainParams{NameOrID: "sepolia"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListChains(t *testing.T) {
	ctx := context.Background()
	registry := testRegistry()
	registry.Chains = append(registry.Chains, &models.Chain{
		Name:    "base",
		ChainID: 8453,
		RPCURLs: []string{"https://base.example"},
		KeyName: "gone",
	})
	store := newMemStore(t, registry)
	cfg := &config.RuntimeConfig{ProbeTimeout: time.Second, ProbeConcurrency: 2}

	t.Run("without probing", func(t *testing.T) {
		uc := usecase.NewListChains(store, newSelectEndpoint(sepoliaProber(), usecase.NopProgress{}), cfg, testLogger())

		result, err := uc.Run(ctx, usecase.ListChainsParams{})
		require.NoError(t, err)
		require.Len(t, result.Chains, 2)
		assert.Equal(t, "deployer", result.Chains[0].KeyName)
		assert.False(t, result.Chains[0].DanglingKey)
		assert.Equal(t, "gone", result.Chains[1].KeyName)
		assert.True(t, result.Chains[1].DanglingKey)
		assert.Nil(t, result.Chains[0].Selection)
	})

	t.Run("probing reports without persisting", func(t *testing.T) {
		uc := usecase.NewListChains(store, newSelectEndpoint(sepoliaProber(), &recordingSink{}), cfg, testLogger())

		result, err := uc.Run(ctx, usecase.ListChainsParams{Probe: true})
		require.NoError(t, err)
		require.Len(t, result.Chains, 2)
		require.NotNil(t, result.Chains[0].Selection)
		assert.Equal(t, testRPCFast, result.Chains[0].Selection.Selected)
		assert.ErrorIs(t, result.Chains[1].ProbeErr, domain.ErrNoHealthyEndpoint)
		assert.Equal(t, 0, store.Saves())
	})
}

func newUseChain(store usecase.RegistryStore, prober usecase.EndpointProber, keys usecase.KeyBackendFactory, writer usecase.EnvWriter) *usecase.UseChain {
	cfg := &config.RuntimeConfig{EnvFile: ".env", ProbeTimeout: time.Second}
	selector := newSelectEndpoint(prober, usecase.NopProgress{})
	failover := usecase.NewFailoverChain(store, selector, testLogger())
	return usecase.NewUseChain(store, failover, keys, writer, cfg, testLogger())
}

func TestUseChain(t *testing.T) {
	ctx := context.Background()

	t.Run("exports the chain environment", func(t *testing.T) {
		registry := testRegistry()
		registry.EnvPrefix = "FORGE"
		registry.Chains[0].VerificationAPIKey = "${CHAINZ_TEST_VERIFY_KEY}"
		registry.Variables["CHAINZ_TEST_VERIFY_KEY"] = "etherscan-key"
		store := newMemStore(t, registry)

		keys := new(MockKeyFactory)
		keys.On("Backend", mock.MatchedBy(func(spec *models.KeySpec) bool { return spec.Name == "deployer" })).
			Return(plaintextBackend(testKey1, testAddr1), nil)
		writer := &fakeEnvWriter{}
		prober := sepoliaProber()

		result, err := newUseChain(store, prober, keys, writer).Run(ctx, usecase.UseChainParams{NameOrID: "sepolia", WriteEnvFile: true})
		require.NoError(t, err)

		assert.Equal(t, map[string]string{
			"FORGE_RPC_URL":              testRPCSlow,
			"ETH_RPC_URL":                testRPCSlow,
			"CHAIN_ID":                   "11155111",
			"CHAIN_NAME":                 "sepolia",
			"FORGE_PRIVATE_KEY":          testKey1,
			"WALLET_ADDRESS":             testAddr1,
			"FORGE_VERIFICATION_API_KEY": "etherscan-key",
		}, result.Env)
		assert.Equal(t, ".env", result.EnvFile)
		assert.Equal(t, result.Env, writer.env)
		assert.Empty(t, prober.Calls(), "a stored selection is used without probing")
		keys.AssertExpectations(t)
	})

	t.Run("failover runs when asked", func(t *testing.T) {
		store := newMemStore(t, testRegistry())
		keys := new(MockKeyFactory)
		keys.On("Backend", mock.Anything).Return(plaintextBackend(testKey1, testAddr1), nil)

		result, err := newUseChain(store, sepoliaProber(), keys, &fakeEnvWriter{}).Run(ctx, usecase.UseChainParams{NameOrID: "sepolia", Failover: true})
		require.NoError(t, err)
		assert.Equal(t, testRPCFast, result.RPCURL)
		require.NotNil(t, result.Selection)
		assert.Equal(t, 1, store.Saves())
	})

	t.Run("dangling key is an error", func(t *testing.T) {
		registry := testRegistry()
		registry.Chains[0].KeyName = "gone"
		store := newMemStore(t, registry)

		_, err := newUseChain(store, sepoliaProber(), new(MockKeyFactory), &fakeEnvWriter{}).Activate(ctx, "sepolia", false)
		assert.ErrorIs(t, err, domain.ErrDanglingKey)
	})

	t.Run("no key exports without private key", func(t *testing.T) {
		registry := testRegistry()
		registry.DefaultKey = ""
		store := newMemStore(t, registry)

		activation, err := newUseChain(store, sepoliaProber(), new(MockKeyFactory), &fakeEnvWriter{}).Activate(ctx, "sepolia", false)
		require.NoError(t, err)
		assert.NotContains(t, activation.Env, "FOUNDRY_PRIVATE_KEY")
		assert.NotContains(t, activation.Env, "WALLET_ADDRESS")
		assert.Equal(t, testRPCSlow, activation.Env["FOUNDRY_RPC_URL"])
	})

	t.Run("unresolved verification key is fatal", func(t *testing.T) {
		registry := testRegistry()
		registry.Chains[0].VerificationAPIKey = "${CHAINZ_TEST_UNSET_VERIFY_KEY}"
		store := newMemStore(t, registry)

		_, err := newUseChain(store, sepoliaProber(), new(MockKeyFactory), &fakeEnvWriter{}).Activate(ctx, "sepolia", false)
		assert.ErrorIs(t, err, domain.ErrUnresolvedVariable)
	})

	t.Run("backend failure is surfaced", func(t *testing.T) {
		store := newMemStore(t, testRegistry())
		keys := new(MockKeyFactory)
		backendErr := &domain.KeyBackendError{Kind: "keychain", Key: "deployer", Err: domain.ErrBackendUnavailable}
		keys.On("Backend", mock.Anything).Return(&fakeBackend{kind: models.KeyTypeKeyring, err: backendErr}, nil)

		_, err := newUseChain(store, sepoliaProber(), keys, &fakeEnvWriter{}).Activate(ctx, "sepolia", false)
		assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
		var kbe *domain.KeyBackendError
		assert.True(t, errors.As(err, &kbe))
	})
}

func TestExpandArgs(t *testing.T) {
	activation := &usecase.Activation{
		Chain:      &models.Chain{Name: "sepolia", ChainID: 11155111},
		RPCURL:     testRPCFast,
		PrivateKey: testKey1,
		Address:    testAddr1,
	}

	args, err := usecase.ExpandArgs([]string{"send", "@wallet", "--rpc-url", "@rpc", "@chainid", "@chainname", "@key", "x@rpc"}, activation)
	require.NoError(t, err)
	assert.Equal(t, []string{"send", testAddr1, "--rpc-url", testRPCFast, "11155111", "sepolia", testKey1, "x@rpc"}, args)

	_, err = usecase.ExpandArgs([]string{"@wallet"}, &usecase.Activation{Chain: activation.Chain})
	assert.Error(t, err)
}

func TestActivation_EnvKeys(t *testing.T) {
	activation := &usecase.Activation{Env: map[string]string{"FOUNDRY_RPC_URL": "x", "CHAIN_ID": "1", "CHAIN_NAME": "y"}}
	assert.Equal(t, []string{"CHAIN_ID", "CHAIN_NAME", "FOUNDRY_RPC_URL"}, activation.EnvKeys())
	assert.Empty(t, (&usecase.Activation{}).EnvKeys())
}

func TestExecChain(t *testing.T) {
	store := newMemStore(t, testRegistry())
	keys := new(MockKeyFactory)
	keys.On("Backend", mock.Anything).Return(plaintextBackend(testKey1, testAddr1), nil)
	executor := &fakeExecutor{}

	uc := usecase.NewExecChain(newUseChain(store, sepoliaProber(), keys, &fakeEnvWriter{}), executor)
	err := uc.Run(context.Background(), usecase.ExecChainParams{
		NameOrID: "sepolia",
		Command:  []string{"cast", "balance", "@wallet", "--rpc-url", "@rpc"},
	})
	require.NoError(t, err)

	require.Len(t, executor.commands, 1)
	cmd := executor.commands[0]
	assert.Equal(t, "cast", cmd.Name)
	assert.Equal(t, []string{"balance", testAddr1, "--rpc-url", testRPCSlow}, cmd.Args)
	assert.Equal(t, "11155111", cmd.Env["CHAIN_ID"])

	err = uc.Run(context.Background(), usecase.ExecChainParams{NameOrID: "sepolia"})
	assert.Error(t, err)
}
