package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/chainz/internal/cli/render"
	"github.com/trebuchet-org/chainz/internal/domain"
	"github.com/trebuchet-org/chainz/internal/domain/models"
	"github.com/trebuchet-org/chainz/internal/usecase"
)

// defaultSecretEnv is read for key material when prompting is not possible
const defaultSecretEnv = "PRIVATE_KEY"

// NewKeyCmd creates the key command
func NewKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage signing keys",
		Long: `Manage named signing keys.

Keys live in one of four backends:
  private-key  hex key stored in the registry file
  encrypted    key encrypted with a password (scrypt + AES-GCM)
  1password    key read with the 'op' CLI from a 1Password item
  keychain     key stored in the operating system keychain`,
	}

	cmd.AddCommand(newKeyAddCmd())
	cmd.AddCommand(newKeyListCmd())
	cmd.AddCommand(newKeyRemoveCmd())

	return cmd
}

func newKeyAddCmd() *cobra.Command {
	var (
		keyType    string
		secretEnv  string
		vault      string
		item       string
		service    string
		account    string
		force      bool
		setDefault bool
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add or rotate a key",
		Example: `  chainz key add deployer --type encrypted
  chainz key add ops --type 1password --vault Engineering --item "Deployer key"
  PRIVATE_KEY=0x... chainz key add ci --non-interactive`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			kind, err := models.ParseKeyType(keyType)
			if err != nil {
				return err
			}

			params := usecase.AddKeyParams{
				Name:       args[0],
				Type:       kind,
				Vault:      vault,
				Item:       item,
				Service:    service,
				Account:    account,
				Force:      force,
				SetDefault: setDefault,
			}
			if kind != models.KeyTypeOnePassword {
				params.Secret, err = readSecret(cmd.Context(), app.Prompt, secretEnv, fmt.Sprintf("Private key for '%s'", args[0]))
				if err != nil {
					return err
				}
			}

			result, err := app.AddKey.Run(cmd.Context(), params)
			if err != nil {
				return err
			}
			return render.NewKeysRenderer(cmd.OutOrStdout()).RenderAdded(result)
		},
	}

	cmd.Flags().StringVarP(&keyType, "type", "t", "private-key", "Backend: private-key, encrypted, 1password or keychain")
	cmd.Flags().StringVar(&secretEnv, "from-env", defaultSecretEnv, "Environment variable holding the key when not prompting")
	cmd.Flags().StringVar(&vault, "vault", "", "1Password vault")
	cmd.Flags().StringVar(&item, "item", "", "1Password item")
	cmd.Flags().StringVar(&service, "service", "", "Keychain service (default: chainz)")
	cmd.Flags().StringVar(&account, "account", "", "Keychain account (default: the key name)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Replace an existing key of the same name")
	cmd.Flags().BoolVar(&setDefault, "default", false, "Make this the default key")

	return cmd
}

// readSecret prompts for a secret, falling back to an environment variable
// when prompting is disabled
func readSecret(ctx context.Context, prompt usecase.InteractiveSelector, envVar, label string) (string, error) {
	secret, err := prompt.PromptSecret(ctx, label)
	if errors.Is(err, domain.ErrNonInteractive) {
		secret = os.Getenv(envVar)
		if secret == "" {
			return "", fmt.Errorf("no key given: set %s or run interactively", envVar)
		}
		return strings.TrimSpace(secret), nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(secret), nil
}

func newKeyListCmd() *cobra.Command {
	var addresses bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List keys and the chains using them",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ListKeys.Run(cmd.Context(), usecase.ListKeysParams{Addresses: addresses})
			if err != nil {
				return err
			}
			return render.NewKeysRenderer(cmd.OutOrStdout()).RenderList(result, addresses)
		},
	}

	cmd.Flags().BoolVarP(&addresses, "addresses", "a", false, "Show each key's address (may unlock backends)")

	return cmd
}

func newKeyRemoveCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Remove a key and its backend material",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			if !force {
				ok, err := app.Prompt.Confirm(cmd.Context(), fmt.Sprintf("Remove key '%s'?", args[0]))
				if err != nil && !errors.Is(err, domain.ErrNonInteractive) {
					return err
				}
				if err == nil && !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}

			result, err := app.RemoveKey.Run(cmd.Context(), usecase.RemoveKeyParams{Name: args[0], Force: force})
			if err != nil {
				return err
			}
			return render.NewKeysRenderer(cmd.OutOrStdout()).RenderRemoved(result)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Remove even if chains use the key, without confirmation")

	return cmd
}
