//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/chainz/internal/adapters"
	"github.com/trebuchet-org/chainz/internal/config"
	"github.com/trebuchet-org/chainz/internal/logging"
	"github.com/trebuchet-org/chainz/internal/usecase"
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper, sink usecase.ProgressSink) (*App, error) {
	wire.Build(
		// Configuration
		config.Provider,
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Use cases
		usecase.NewSelectEndpoint,
		usecase.NewInitRegistry,
		usecase.NewAddChain,
		usecase.NewUpdateChain,
		usecase.NewRemoveChain,
		usecase.NewListChains,
		usecase.NewFailoverChain,
		usecase.NewUseChain,
		usecase.NewExecChain,
		usecase.NewAddKey,
		usecase.NewListKeys,
		usecase.NewRemoveKey,
		usecase.NewManageVariables,
		usecase.NewShowConfig,
		usecase.NewSetConfig,
		usecase.NewRemoveConfig,
		usecase.NewImportFoundry,

		// App
		NewApp,
	)
	return nil, nil
}
