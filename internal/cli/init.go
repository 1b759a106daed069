package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/chainz/internal/app"
	"github.com/trebuchet-org/chainz/internal/cli/render"
	"github.com/trebuchet-org/chainz/internal/domain"
	"github.com/trebuchet-org/chainz/internal/domain/config"
	"github.com/trebuchet-org/chainz/internal/domain/models"
	"github.com/trebuchet-org/chainz/internal/usecase"
)

type initOptions struct {
	force     bool
	envPrefix string
	keyType   string
	secretEnv string
	vault     string
	item      string
	noKey     bool
	infuraKey string
	chains    []string
}

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	opts := &initOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the chain registry",
		Long: `Create the registry with a default key and a set of popular chains.

Interactively you are asked for the variable prefix, a default private key,
an optional Infura API key and the chains to add. Every chain's endpoints are
probed and the fastest healthy one is selected.

With --non-interactive the flags are used as given; the default key is read
from the variable named by --from-env and all default chains are added
unless --chains says otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "Overwrite an existing registry")
	cmd.Flags().StringVar(&opts.envPrefix, "env-prefix", config.DefaultEnvPrefix, "Prefix of the exported variables")
	cmd.Flags().StringVarP(&opts.keyType, "key-type", "t", "private-key", "Backend of the default key: private-key, encrypted, 1password or keychain")
	cmd.Flags().StringVar(&opts.secretEnv, "from-env", defaultSecretEnv, "Environment variable holding the default key when not prompting")
	cmd.Flags().StringVar(&opts.vault, "vault", "", "1Password vault of the default key")
	cmd.Flags().StringVar(&opts.item, "item", "", "1Password item of the default key")
	cmd.Flags().BoolVar(&opts.noKey, "no-key", false, "Don't create a default key")
	cmd.Flags().StringVar(&opts.infuraKey, "infura-key", "", "Infura API key stored as ${INFURA_API_KEY}")
	cmd.Flags().StringSliceVar(&opts.chains, "chains", nil, "Chain IDs to add (default: the built-in set)")

	return cmd
}

// runInit executes the init command
func runInit(cmd *cobra.Command, opts *initOptions) error {
	app, err := getApp(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	params := usecase.InitRegistryParams{
		EnvPrefix:    opts.envPrefix,
		InfuraAPIKey: opts.infuraKey,
		Overwrite:    opts.force,
	}

	if app.InitRegistry.Exists() && !opts.force {
		ok, err := app.Prompt.Confirm(ctx, fmt.Sprintf("Registry %s exists. Overwrite it?", app.Config.RegistryPath))
		if err != nil && !errors.Is(err, domain.ErrNonInteractive) {
			return err
		}
		if err == nil && !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}
		params.Overwrite = ok
	}

	if !cmd.Flags().Changed("env-prefix") {
		params.EnvPrefix, err = promptOrDefault(ctx, app, "Environment variable prefix", opts.envPrefix)
		if err != nil {
			return err
		}
	}

	if !opts.noKey {
		params.DefaultKey, err = initDefaultKey(ctx, app, opts)
		if err != nil {
			return err
		}
	}

	if !cmd.Flags().Changed("infura-key") {
		params.InfuraAPIKey, err = promptOrDefault(ctx, app, "Infura API key (optional)", opts.infuraKey)
		if err != nil {
			return err
		}
	}

	params.ChainIDs, err = initChainIDs(cmd, app, opts)
	if err != nil {
		return err
	}

	result, err := app.InitRegistry.Run(ctx, params)
	if err != nil {
		return err
	}
	return render.NewInitRenderer(cmd.OutOrStdout()).RenderInit(result)
}

// promptOrDefault asks for a value, keeping fallback when prompting is off
func promptOrDefault(ctx context.Context, app *app.App, label, fallback string) (string, error) {
	value, err := app.Prompt.PromptString(ctx, label, fallback)
	if errors.Is(err, domain.ErrNonInteractive) {
		return fallback, nil
	}
	return value, err
}

// initDefaultKey builds the default key parameters; nil means no key
func initDefaultKey(ctx context.Context, app *app.App, opts *initOptions) (*usecase.AddKeyParams, error) {
	kind, err := models.ParseKeyType(opts.keyType)
	if err != nil {
		return nil, err
	}

	params := &usecase.AddKeyParams{
		Name:       config.DefaultKeyName,
		Type:       kind,
		Vault:      opts.vault,
		Item:       opts.item,
		SetDefault: true,
	}
	if kind == models.KeyTypeOnePassword {
		if opts.vault == "" || opts.item == "" {
			return nil, fmt.Errorf("a 1Password default key needs --vault and --item")
		}
		return params, nil
	}

	secret, err := app.Prompt.PromptSecret(ctx, "Default private key (empty to skip)")
	if errors.Is(err, domain.ErrNonInteractive) {
		secret = os.Getenv(opts.secretEnv)
	} else if err != nil {
		return nil, err
	}
	if secret == "" {
		return nil, nil
	}
	params.Secret = secret
	return params, nil
}

// initChainIDs returns the chains to add: the --chains flag, a multi-select
// over the catalog, or every default chain
func initChainIDs(cmd *cobra.Command, app *app.App, opts *initOptions) ([]uint64, error) {
	if cmd.Flags().Changed("chains") {
		return parseChainIDs(opts.chains)
	}

	candidates, err := app.InitRegistry.Candidates(cmd.Context())
	if err != nil {
		return nil, err
	}

	labels := make([]string, len(candidates))
	all := make([]int, len(candidates))
	for i, c := range candidates {
		labels[i] = fmt.Sprintf("%s (%d)", c.Name, c.ChainID)
		all[i] = i
	}

	picked, err := app.Prompt.SelectMany(cmd.Context(), "Chains to add", labels, all)
	if errors.Is(err, domain.ErrNonInteractive) {
		return usecase.DefaultInitChains, nil
	}
	if err != nil {
		return nil, err
	}

	ids := make([]uint64, 0, len(picked))
	for _, i := range picked {
		ids = append(ids, candidates[i].ChainID)
	}
	return ids, nil
}
