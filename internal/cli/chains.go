package cli

import (
	"strconv"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/chainz/internal/cli/render"
	"github.com/trebuchet-org/chainz/internal/usecase"
)

// NewAddCmd creates the add command
func NewAddCmd() *cobra.Command {
	var (
		chainID         uint64
		rpcs            []string
		verificationKey string
		verificationURL string
		keyName         string
		skipProbe       bool
	)

	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Register a chain",
		Long: `Register a chain with one or more candidate RPC endpoints.

Endpoints may contain ${VAR} placeholders, resolved from the environment or
from variables stored with 'chainz var set'. All endpoints are probed and the
fastest healthy one is selected. When the chain ID or the endpoints are
omitted they are looked up in the public chain catalog.`,
		Example: `  # Add a chain from the catalog
  chainz add --chain-id 8453

  # Add a chain with explicit endpoints
  chainz add sepolia --chain-id 11155111 \
    --rpc 'https://sepolia.infura.io/v3/${INFURA_API_KEY}' \
    --rpc https://rpc.sepolia.org`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			params := usecase.AddChainParams{
				ChainID:            chainID,
				RPCURLs:            rpcs,
				VerificationAPIKey: verificationKey,
				VerificationURL:    verificationURL,
				KeyName:            keyName,
				SkipProbe:          skipProbe,
			}
			if len(args) == 1 {
				params.Name = args[0]
			}

			result, err := app.AddChain.Run(cmd.Context(), params)
			if err != nil {
				return err
			}
			return render.NewChainsRenderer(cmd.OutOrStdout()).RenderAdded(result)
		},
	}

	cmd.Flags().Uint64Var(&chainID, "chain-id", 0, "Chain ID (looked up by name when omitted)")
	cmd.Flags().StringArrayVar(&rpcs, "rpc", nil, "Candidate RPC URL, repeatable, in preference order")
	cmd.Flags().StringVar(&verificationKey, "verification-api-key", "", "Block explorer API key, e.g. '${ETHERSCAN_API_KEY}'")
	cmd.Flags().StringVar(&verificationURL, "verification-url", "", "Block explorer verification API URL")
	cmd.Flags().StringVar(&keyName, "key", "", "Key to sign with (default: the registry default key)")
	cmd.Flags().BoolVar(&skipProbe, "skip-probe", false, "Store the chain without probing its endpoints")

	return cmd
}

// NewUpdateCmd creates the update command
func NewUpdateCmd() *cobra.Command {
	var (
		setRPCs    []string
		addRPCs    []string
		removeRPCs []string
		failover   bool
	)

	cmd := &cobra.Command{
		Use:   "update <name|chain-id>",
		Short: "Change a registered chain",
		Example: `  chainz update base --add-rpc https://base.llamarpc.com --failover
  chainz update 10 --verification-api-key '${OPTIMISM_ETHERSCAN_KEY}'
  chainz update sepolia --key ''`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: chainArgCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			params := usecase.UpdateChainParams{
				NameOrID:   args[0],
				SetRPCs:    setRPCs,
				AddRPCs:    addRPCs,
				RemoveRPCs: removeRPCs,
				Failover:   failover,
			}
			params.VerificationAPIKey = changedString(cmd, "verification-api-key")
			params.VerificationURL = changedString(cmd, "verification-url")
			params.KeyName = changedString(cmd, "key")

			result, err := app.UpdateChain.Run(cmd.Context(), params)
			if err != nil {
				return err
			}
			return render.NewChainsRenderer(cmd.OutOrStdout()).RenderUpdated(result)
		},
	}

	cmd.Flags().StringArrayVar(&setRPCs, "set-rpc", nil, "Replace the candidate list, repeatable")
	cmd.Flags().StringArrayVar(&addRPCs, "add-rpc", nil, "Append a candidate RPC URL, repeatable")
	cmd.Flags().StringArrayVar(&removeRPCs, "remove-rpc", nil, "Remove a candidate RPC URL, repeatable")
	cmd.Flags().String("verification-api-key", "", "Block explorer API key (empty clears it)")
	cmd.Flags().String("verification-url", "", "Block explorer verification API URL (empty clears it)")
	cmd.Flags().String("key", "", "Key to sign with (empty falls back to the default key)")
	cmd.Flags().BoolVar(&failover, "failover", false, "Re-select the RPC after the change")

	return cmd
}

// changedString returns the flag value only when the user set it
func changedString(cmd *cobra.Command, name string) *string {
	f := cmd.Flags().Lookup(name)
	if f == nil || !f.Changed {
		return nil
	}
	value := f.Value.String()
	return &value
}

// NewRemoveCmd creates the remove command
func NewRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name|chain-id>",
		Aliases: []string{"rm"},
		Short:   "Remove a chain from the registry",
		Args:    cobra.ExactArgs(1),

		ValidArgsFunction: chainArgCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.RemoveChain.Run(cmd.Context(), usecase.RemoveChainParams{NameOrID: args[0]})
			if err != nil {
				return err
			}
			return render.NewChainsRenderer(cmd.OutOrStdout()).RenderRemoved(result)
		},
	}
}

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	var (
		probe  bool
		format string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List registered chains",
		Long: `List registered chains with their selected RPC and signing key.

With --probe every chain's endpoints are probed, several chains at once,
and the health of each chain is shown. Probing never changes the stored
selection; use 'chainz use --failover' for that.`,
		Example: `  chainz list
  chainz list --probe
  chainz list --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := render.ValidateFormat(format); err != nil {
				return err
			}

			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ListChains.Run(cmd.Context(), usecase.ListChainsParams{Probe: probe})
			if err != nil {
				return err
			}
			return render.NewChainsRenderer(cmd.OutOrStdout()).RenderList(result, format)
		},
	}

	cmd.Flags().BoolVar(&probe, "probe", false, "Probe every chain's endpoints")
	cmd.Flags().StringVarP(&format, "format", "o", render.FormatTable, "Output format: table, json or yaml")

	return cmd
}

// chainArgCompletion suggests registered chain names
func chainArgCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	app, err := getApp(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	result, err := app.ListChains.Run(cmd.Context(), usecase.ListChainsParams{})
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	names := make([]string, 0, len(result.Chains))
	for _, status := range result.Chains {
		names = append(names, status.Chain.Name, strconv.FormatUint(status.Chain.ChainID, 10))
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
