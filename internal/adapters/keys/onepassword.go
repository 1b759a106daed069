package keys

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/chainz/internal/domain"
	"github.com/trebuchet-org/chainz/internal/domain/models"
)

// CommandRunner runs a command and returns its stdout
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			msg := strings.TrimSpace(stderr.String())
			if i := strings.IndexByte(msg, '\n'); i >= 0 {
				msg = msg[:i]
			}
			return nil, fmt.Errorf("%s exited with code %d: %s", name, exitErr.ExitCode(), msg)
		}
		return nil, err
	}
	return out, nil
}

// OnePasswordBackend reads a key with `op read op://<vault>/<item>`
type OnePasswordBackend struct {
	name   string
	ref    models.OnePasswordKey
	opPath string
	runner CommandRunner
}

func (b *OnePasswordBackend) Kind() models.KeyType {
	return models.KeyTypeOnePassword
}

// Secret fails closed: anything other than exactly one line holding a valid
// private key is rejected without echoing the output
func (b *OnePasswordBackend) Secret(ctx context.Context) (string, error) {
	out, err := b.runner.Run(ctx, b.opPath, "read", b.ref.Reference())
	if err != nil {
		return "", backendError(b.Kind(), b.name, domain.ErrBackendUnavailable, err)
	}

	secret := strings.TrimRight(string(out), "\r\n")
	switch {
	case secret == "":
		return "", backendError(b.Kind(), b.name, domain.ErrBackendUnavailable,
			fmt.Errorf("ambiguous response for %s: empty output", b.ref.Reference()))
	case strings.ContainsAny(secret, "\r\n"):
		return "", backendError(b.Kind(), b.name, domain.ErrBackendUnavailable,
			fmt.Errorf("ambiguous response for %s: expected a single line", b.ref.Reference()))
	}
	if _, err := AddressFromSecret(secret); err != nil {
		return "", backendError(b.Kind(), b.name, domain.ErrBackendUnavailable,
			fmt.Errorf("ambiguous response for %s: %w", b.ref.Reference(), err))
	}
	return secret, nil
}

func (b *OnePasswordBackend) Address(ctx context.Context) (common.Address, error) {
	return addressOf(ctx, b)
}
