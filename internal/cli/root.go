package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/chainz/internal/adapters/progress"
	"github.com/trebuchet-org/chainz/internal/app"
	"github.com/trebuchet-org/chainz/internal/config"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"
)

// commands that never touch the registry
var skipAppInit = map[string]bool{
	"version":    true,
	"help":       true,
	"completion": true,
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "chainz",
		Short: "Manage EVM chain configurations, RPC failover and keys",
		Long: `chainz keeps a local registry of EVM chains with several candidate RPC
endpoints each, picks the fastest healthy endpoint, and exports the chain's
RPC URL, chain ID, signing key and verification settings as environment
variables for Foundry and other tools.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipAppInit[cmd.Name()] {
				return nil
			}

			v := config.SetupViper(cmd)

			sink := progress.NewSpinnerProgressReporter()

			appInstance, err := app.InitApp(v, sink)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)

			// exec hands the terminal to a child process for as long as it runs
			if appInstance.Config.Timeout > 0 && cmd.Name() != "exec" {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
				cmd.PostRun = func(cmd *cobra.Command, args []string) {
					cancel()
				}
			}

			cmd.SetContext(ctx)
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "Path of the registry file (default ~/.chainz.json)")
	rootCmd.PersistentFlags().String("env-file", "", "Dotenv file written by 'use --write' (default .env)")
	rootCmd.PersistentFlags().Duration("probe-timeout", config.DefaultProbeTimeout, "Deadline for each RPC probe")
	rootCmd.PersistentFlags().Int("probe-concurrency", config.DefaultProbeConcurrency, "Chains probed at once by list --probe and init")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable interactive prompts")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "main",
		Title: "Main Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands",
	})

	// Main commands
	for _, cmd := range []*cobra.Command{
		NewInitCmd(),
		NewUseCmd(),
		NewExecCmd(),
		NewListCmd(),
	} {
		cmd.GroupID = "main"
		rootCmd.AddCommand(cmd)
	}

	// Management commands
	for _, cmd := range []*cobra.Command{
		NewAddCmd(),
		NewUpdateCmd(),
		NewRemoveCmd(),
		NewKeyCmd(),
		NewVarCmd(),
		NewConfigCmd(),
		NewImportCmd(),
	} {
		cmd.GroupID = "management"
		rootCmd.AddCommand(cmd)
	}

	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	app, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return app, nil
}

// parseChainIDs parses decimal chain IDs given on the command line
func parseChainIDs(values []string) ([]uint64, error) {
	ids := make([]uint64, 0, len(values))
	for _, v := range values {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("invalid chain ID %q", v)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
