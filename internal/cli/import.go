package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/chainz/internal/cli/render"
	"github.com/trebuchet-org/chainz/internal/usecase"
)

// NewImportCmd creates the import command
func NewImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import chains from other tools",
	}

	cmd.AddCommand(newImportFoundryCmd())

	return cmd
}

func newImportFoundryCmd() *cobra.Command {
	var networks []string

	cmd := &cobra.Command{
		Use:   "foundry [project-dir]",
		Short: "Import [rpc_endpoints] from a Foundry project",
		Long: `Import the networks of a Foundry project's foundry.toml.

Each [rpc_endpoints] entry becomes a chain; a matching [etherscan] entry
supplies the verification key and URL. Endpoints are probed to learn the
chain ID, so networks that cannot be reached are skipped. Variables the
endpoints reference are copied from the project's .env when the registry
doesn't define them yet.`,
		Example: `  chainz import foundry
  chainz import foundry ../contracts --network sepolia --network base`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			params := usecase.ImportFoundryParams{ProjectRoot: ".", Names: networks}
			if len(args) == 1 {
				params.ProjectRoot = args[0]
			}

			result, err := app.ImportFoundry.Run(cmd.Context(), params)
			if err != nil {
				return err
			}
			return render.NewInitRenderer(cmd.OutOrStdout()).RenderImport(result)
		},
	}

	cmd.Flags().StringArrayVarP(&networks, "network", "n", nil, "Only import these networks, repeatable")

	return cmd
}
