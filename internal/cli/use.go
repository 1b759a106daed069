package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/chainz/internal/cli/render"
	"github.com/trebuchet-org/chainz/internal/usecase"
)

// NewUseCmd creates the use command
func NewUseCmd() *cobra.Command {
	var (
		printExports bool
		failover     bool
		envFile      string
	)

	cmd := &cobra.Command{
		Use:   "use <name|chain-id>",
		Short: "Export a chain's RPC URL, key and verification settings",
		Long: `Resolve a chain's selected RPC URL, signing key and verification settings
and export them as environment variables.

By default the variables are merged into the dotenv file (.env unless
--env-file says otherwise). With --print they are written to stdout as
export statements instead, ready for eval:

  eval "$(chainz use base --print)"

Exported variables: <PREFIX>_RPC_URL, ETH_RPC_URL, CHAIN_ID, CHAIN_NAME and,
when available, <PREFIX>_PRIVATE_KEY, WALLET_ADDRESS,
<PREFIX>_VERIFICATION_API_KEY and <PREFIX>_VERIFICATION_URL.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: chainArgCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.UseChain.Run(cmd.Context(), usecase.UseChainParams{
				NameOrID:     args[0],
				Failover:     failover,
				WriteEnvFile: !printExports,
				EnvFile:      envFile,
			})
			if result != nil && result.Selection != nil && (failover || err != nil) {
				render.NewChainsRenderer(cmd.ErrOrStderr()).RenderProbeReport(result.Selection)
			}
			if err != nil {
				return err
			}

			if printExports {
				return render.NewEnvRenderer(cmd.OutOrStdout()).RenderExports(result.Activation)
			}
			return render.NewEnvRenderer(cmd.OutOrStdout()).RenderSummary(result)
		},
	}

	cmd.Flags().BoolVarP(&printExports, "print", "p", false, "Print export statements instead of writing the dotenv file")
	cmd.Flags().BoolVar(&failover, "failover", false, "Re-probe the endpoints and switch to the fastest healthy one")
	cmd.Flags().StringVar(&envFile, "file", "", "Dotenv file to write (default: --env-file)")

	return cmd
}

// NewExecCmd creates the exec command
func NewExecCmd() *cobra.Command {
	var failover bool

	cmd := &cobra.Command{
		Use:   "exec <name|chain-id> -- <command> [args...]",
		Short: "Run a command with a chain's environment",
		Long: fmt.Sprintf(`Run a command with the chain's variables added to its environment.

Arguments that are exactly one of the following are replaced before the
command starts:

  %-11s the key's address
  %-11s the resolved RPC URL
  %-11s the chain ID
  %-11s the chain name
  %-11s the private key

The command's exit code becomes chainz's exit code.`,
			usecase.ArgWallet, usecase.ArgRPC, usecase.ArgChainID, usecase.ArgChainName, usecase.ArgKey),
		Example: `  chainz exec sepolia -- forge script script/Deploy.s.sol --broadcast
  chainz exec base -- cast balance @wallet --rpc-url @rpc`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dash := cmd.ArgsLenAtDash()
			if dash != 1 {
				return fmt.Errorf("usage: chainz exec <name|chain-id> -- <command> [args...]")
			}

			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			return app.ExecChain.Run(cmd.Context(), usecase.ExecChainParams{
				NameOrID: args[0],
				Command:  args[dash:],
				Failover: failover,
			})
		},
	}

	cmd.Flags().BoolVar(&failover, "failover", false, "Re-probe the endpoints before running")

	return cmd
}
