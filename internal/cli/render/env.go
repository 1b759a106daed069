package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/trebuchet-org/chainz/internal/usecase"
)

// EnvRenderer renders an activated chain
type EnvRenderer struct {
	out io.Writer
}

// NewEnvRenderer creates a new env renderer
func NewEnvRenderer(out io.Writer) *EnvRenderer {
	return &EnvRenderer{out: out}
}

// RenderExports prints `export KEY='value'` lines suitable for eval
func (r *EnvRenderer) RenderExports(activation *usecase.Activation) error {
	for _, key := range activation.EnvKeys() {
		if _, err := fmt.Fprintf(r.out, "export %s=%s\n", key, ShellQuote(activation.Env[key])); err != nil {
			return err
		}
	}
	return nil
}

// RenderSummary describes what `use` did without printing secrets
func (r *EnvRenderer) RenderSummary(result *usecase.UseChainResult) error {
	c := result.Chain
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Using chain '%s' (%d)", c.Name, c.ChainID)))
	fmt.Fprintf(r.out, "   RPC:     %s\n", c.SelectedRPC)
	if result.KeyName != "" {
		fmt.Fprintf(r.out, "   Key:     %s (%s)\n", result.KeyName, KeyTypeTitle(result.KeyType))
		fmt.Fprintf(r.out, "   Address: %s\n", result.Address)
	} else {
		fmt.Fprintln(r.out, FormatWarning("No key configured; nothing to sign with"))
	}
	if result.EnvFile != "" {
		fmt.Fprintf(r.out, "   Wrote %d variables to %s\n", len(result.Env), getRelativePath(result.EnvFile))
	}
	return nil
}

// ShellQuote wraps s in single quotes for POSIX shells
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
