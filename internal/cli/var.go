package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/chainz/internal/cli/render"
	"github.com/trebuchet-org/chainz/internal/usecase"
)

// NewVarCmd creates the var command
func NewVarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "var",
		Aliases: []string{"vars"},
		Short:   "Manage ${VAR} values stored in the registry",
		Long: `Manage the variables substituted into RPC URLs and verification settings.

A ${NAME} placeholder resolves from the process environment first and from
the stored variables second, so exported values always win.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <name> <value>",
		Short: "Store a variable",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			info, err := app.ManageVariables.Set(cmd.Context(), usecase.ManageVariablesParams{Name: args[0], Value: args[1]})
			if err != nil {
				return err
			}
			return render.NewVariablesRenderer(cmd.OutOrStdout(), false).RenderSet(info)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <name>",
		Short: "Print a variable's effective value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			info, err := app.ManageVariables.Get(cmd.Context(), usecase.ManageVariablesParams{Name: args[0]})
			if err != nil {
				return err
			}
			return render.NewVariablesRenderer(cmd.OutOrStdout(), true).RenderValue(info)
		},
	})

	var reveal bool
	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List variables and the chains referencing them",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			infos, err := app.ManageVariables.List(cmd.Context())
			if err != nil {
				return err
			}
			return render.NewVariablesRenderer(cmd.OutOrStdout(), reveal).RenderList(infos)
		},
	}
	listCmd.Flags().BoolVar(&reveal, "reveal", false, "Show values unmasked")
	cmd.AddCommand(listCmd)

	cmd.AddCommand(&cobra.Command{
		Use:     "rm <name>",
		Aliases: []string{"remove"},
		Short:   "Delete a stored variable",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			info, err := app.ManageVariables.Remove(cmd.Context(), usecase.ManageVariablesParams{Name: args[0]})
			if err != nil {
				return err
			}
			return render.NewVariablesRenderer(cmd.OutOrStdout(), false).RenderRemoved(info)
		},
	})

	return cmd
}
