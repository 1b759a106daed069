package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/chainz/internal/domain"
	"github.com/trebuchet-org/chainz/internal/domain/models"
	"github.com/trebuchet-org/chainz/internal/usecase"
)

func TestAddKey(t *testing.T) {
	ctx := context.Background()

	t.Run("first key becomes the default", func(t *testing.T) {
		store := newMemStore(t, nil)
		keys := new(MockKeyFactory)
		spec := models.NewPlaintextKey("deployer", testKey1)
		keys.On("Provision", mock.Anything, mock.MatchedBy(func(s *models.KeySpec) bool {
			return s.Name == "deployer" && s.Type == models.KeyTypePrivateKey
		}), testKey1).Return(spec, nil)
		keys.On("Backend", spec).Return(plaintextBackend(testKey1, testAddr1), nil)

		result, err := usecase.NewAddKey(store, keys, testLogger()).Run(ctx, usecase.AddKeyParams{
			Name:   "deployer",
			Type:   models.KeyTypePrivateKey,
			Secret: testKey1,
		})
		require.NoError(t, err)
		assert.Equal(t, testAddr1, result.Address)
		assert.True(t, result.Default)
		assert.False(t, result.Replaced)
		assert.Equal(t, "deployer", store.registry(t).DefaultKey)
		keys.AssertExpectations(t)
	})

	t.Run("existing name needs force", func(t *testing.T) {
		store := newMemStore(t, testRegistry())
		keys := new(MockKeyFactory)

		_, err := usecase.NewAddKey(store, keys, testLogger()).Run(ctx, usecase.AddKeyParams{
			Name:   "deployer",
			Type:   models.KeyTypePrivateKey,
			Secret: testKey2,
		})
		assert.ErrorIs(t, err, domain.ErrAlreadyExists)
		keys.AssertNotCalled(t, "Provision", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rotating a keychain key removes the old entry", func(t *testing.T) {
		registry := testRegistry()
		old := &models.KeySpec{Name: "ops", Type: models.KeyTypeKeyring, Keychain: &models.KeychainKey{Service: "chainz", Account: "ops"}}
		registry.Keys["ops"] = old
		store := newMemStore(t, registry)

		rotated := &models.KeySpec{Name: "ops", Type: models.KeyTypeKeyring, Keychain: &models.KeychainKey{Service: "chainz", Account: "ops-2"}}
		keys := new(MockKeyFactory)
		keys.On("Provision", mock.Anything, mock.Anything, testKey2).Return(rotated, nil)
		keys.On("Backend", rotated).Return(plaintextBackend(testKey2, testAddr2), nil)
		keys.On("Deprovision", mock.Anything, mock.MatchedBy(func(s *models.KeySpec) bool {
			return s.Keychain != nil && s.Keychain.Account == "ops"
		})).Return(nil)

		result, err := usecase.NewAddKey(store, keys, testLogger()).Run(ctx, usecase.AddKeyParams{
			Name:    "ops",
			Type:    models.KeyTypeKeyring,
			Secret:  testKey2,
			Account: "ops-2",
			Force:   true,
		})
		require.NoError(t, err)
		assert.True(t, result.Replaced)
		assert.False(t, result.Default)
		keys.AssertExpectations(t)
	})

	t.Run("unreadable key is not stored", func(t *testing.T) {
		store := newMemStore(t, nil)
		spec := models.NewOnePasswordKey("op", "vault", "item")
		keys := new(MockKeyFactory)
		keys.On("Provision", mock.Anything, mock.Anything, "").Return(spec, nil)
		keys.On("Backend", spec).Return(&fakeBackend{kind: models.KeyTypeOnePassword, err: domain.ErrBackendUnavailable}, nil)

		_, err := usecase.NewAddKey(store, keys, testLogger()).Run(ctx, usecase.AddKeyParams{
			Name:  "op",
			Type:  models.KeyTypeOnePassword,
			Vault: "vault",
			Item:  "item",
		})
		assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
		assert.Equal(t, 0, store.Saves())
	})
}

func TestListKeys(t *testing.T) {
	registry := testRegistry()
	registry.Keys["spare"] = models.NewPlaintextKey("spare", testKey2)
	registry.Chains = append(registry.Chains, &models.Chain{Name: "base", ChainID: 8453, RPCURLs: []string{"https://base.example"}, KeyName: "gone"})
	store := newMemStore(t, registry)

	keys := new(MockKeyFactory)
	keys.On("Backend", mock.MatchedBy(func(s *models.KeySpec) bool { return s.Name == "deployer" })).Return(plaintextBackend(testKey1, testAddr1), nil)
	keys.On("Backend", mock.MatchedBy(func(s *models.KeySpec) bool { return s.Name == "spare" })).Return(plaintextBackend(testKey2, testAddr2), nil)

	result, err := usecase.NewListKeys(store, keys).Run(context.Background(), usecase.ListKeysParams{Addresses: true})
	require.NoError(t, err)
	require.Len(t, result.Keys, 2)

	assert.Equal(t, "deployer", result.Keys[0].Key.Name)
	assert.True(t, result.Keys[0].Default)
	assert.Equal(t, []string{"sepolia"}, result.Keys[0].Chains)
	assert.Equal(t, testAddr1, result.Keys[0].Address)

	assert.Equal(t, "spare", result.Keys[1].Key.Name)
	assert.Empty(t, result.Keys[1].Chains)
	assert.Equal(t, testAddr2, result.Keys[1].Address)

	assert.Equal(t, map[string]string{"base": "gone"}, result.Dangling)
}

func TestRemoveKey(t *testing.T) {
	ctx := context.Background()

	t.Run("key in use needs force", func(t *testing.T) {
		store := newMemStore(t, testRegistry())
		_, err := usecase.NewRemoveKey(store, new(MockKeyFactory), testLogger()).Run(ctx, usecase.RemoveKeyParams{Name: "deployer"})
		assert.ErrorIs(t, err, usecase.ErrKeyInUse)
		assert.Equal(t, 0, store.Saves())
	})

	t.Run("forced removal reports orphaned chains", func(t *testing.T) {
		store := newMemStore(t, testRegistry())
		keys := new(MockKeyFactory)
		keys.On("Deprovision", mock.Anything, mock.Anything).Return(nil)

		result, err := usecase.NewRemoveKey(store, keys, testLogger()).Run(ctx, usecase.RemoveKeyParams{Name: "deployer", Force: true})
		require.NoError(t, err)
		assert.Equal(t, []string{"sepolia"}, result.Orphaned)
		assert.True(t, result.WasDefault)

		registry := store.registry(t)
		assert.Empty(t, registry.Keys)
		assert.Empty(t, registry.DefaultKey)
		keys.AssertExpectations(t)
	})

	t.Run("unknown key", func(t *testing.T) {
		store := newMemStore(t, testRegistry())
		_, err := usecase.NewRemoveKey(store, new(MockKeyFactory), testLogger()).Run(ctx, usecase.RemoveKeyParams{Name: "nope"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
