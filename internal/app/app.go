package app

import (
	"log/slog"

	"github.com/trebuchet-org/chainz/internal/domain/config"
	"github.com/trebuchet-org/chainz/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig
	Log    *slog.Logger

	// Shared dependencies
	Prompt usecase.InteractiveSelector

	// Use cases
	InitRegistry    *usecase.InitRegistry
	AddChain        *usecase.AddChain
	UpdateChain     *usecase.UpdateChain
	RemoveChain     *usecase.RemoveChain
	ListChains      *usecase.ListChains
	FailoverChain   *usecase.FailoverChain
	UseChain        *usecase.UseChain
	ExecChain       *usecase.ExecChain
	AddKey          *usecase.AddKey
	ListKeys        *usecase.ListKeys
	RemoveKey       *usecase.RemoveKey
	ManageVariables *usecase.ManageVariables
	ShowConfig      *usecase.ShowConfig
	SetConfig       *usecase.SetConfig
	RemoveConfig    *usecase.RemoveConfig
	ImportFoundry   *usecase.ImportFoundry
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	log *slog.Logger,
	prompt usecase.InteractiveSelector,
	initRegistry *usecase.InitRegistry,
	addChain *usecase.AddChain,
	updateChain *usecase.UpdateChain,
	removeChain *usecase.RemoveChain,
	listChains *usecase.ListChains,
	failoverChain *usecase.FailoverChain,
	useChain *usecase.UseChain,
	execChain *usecase.ExecChain,
	addKey *usecase.AddKey,
	listKeys *usecase.ListKeys,
	removeKey *usecase.RemoveKey,
	manageVariables *usecase.ManageVariables,
	showConfig *usecase.ShowConfig,
	setConfig *usecase.SetConfig,
	removeConfig *usecase.RemoveConfig,
	importFoundry *usecase.ImportFoundry,
) (*App, error) {
	return &App{
		Config:          cfg,
		Log:             log,
		Prompt:          prompt,
		InitRegistry:    initRegistry,
		AddChain:        addChain,
		UpdateChain:     updateChain,
		RemoveChain:     removeChain,
		ListChains:      listChains,
		FailoverChain:   failoverChain,
		UseChain:        useChain,
		ExecChain:       execChain,
		AddKey:          addKey,
		ListKeys:        listKeys,
		RemoveKey:       removeKey,
		ManageVariables: manageVariables,
		ShowConfig:      showConfig,
		SetConfig:       setConfig,
		RemoveConfig:    removeConfig,
		ImportFoundry:   importFoundry,
	}, nil
}
