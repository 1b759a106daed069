package interactive

import (
	"context"
	"errors"
	"fmt"

	"github.com/trebuchet-org/chainz/internal/domain"
	"github.com/trebuchet-org/chainz/internal/domain/config"
	"github.com/trebuchet-org/chainz/internal/usecase"
)

// PasswordAdapter supplies passwords for encrypted keys, from CHAINZ_KEY_PASSWORD
// when set and otherwise from a masked prompt
type PasswordAdapter struct {
	config *config.RuntimeConfig
	prompt usecase.InteractiveSelector
}

// NewPasswordAdapter creates a new PasswordAdapter
func NewPasswordAdapter(cfg *config.RuntimeConfig, prompt usecase.InteractiveSelector) *PasswordAdapter {
	return &PasswordAdapter{config: cfg, prompt: prompt}
}

// Password returns the password for keyName. With confirm set the password
// is asked twice and both entries must match.
func (p *PasswordAdapter) Password(ctx context.Context, keyName string, confirm bool) (string, error) {
	if p.config.KeyPassword != "" {
		return p.config.KeyPassword, nil
	}

	password, err := p.prompt.PromptSecret(ctx, fmt.Sprintf("Password for key '%s'", keyName))
	if errors.Is(err, domain.ErrNonInteractive) {
		return "", fmt.Errorf("key '%s' is encrypted: set CHAINZ_KEY_PASSWORD or run interactively: %w", keyName, err)
	}
	if err != nil {
		return "", err
	}
	if password == "" {
		return "", fmt.Errorf("password must not be empty")
	}

	if confirm {
		again, err := p.prompt.PromptSecret(ctx, "Repeat password")
		if err != nil {
			return "", err
		}
		if again != password {
			return "", fmt.Errorf("passwords do not match")
		}
	}
	return password, nil
}

// Ensure PasswordAdapter implements PasswordSource
var _ usecase.PasswordSource = (*PasswordAdapter)(nil)
