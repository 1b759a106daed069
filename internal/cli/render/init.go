package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/trebuchet-org/chainz/internal/usecase"
)

// InitRenderer renders registry creation and imports
type InitRenderer struct {
	out io.Writer
}

// NewInitRenderer creates a new init renderer
func NewInitRenderer(out io.Writer) *InitRenderer {
	return &InitRenderer{out: out}
}

// RenderInit renders the result of init
func (r *InitRenderer) RenderInit(result *usecase.InitRegistryResult) error {
	if result.DefaultKey != nil {
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Default key '%s' (%s) %s",
			result.DefaultKey.Key.Name, KeyTypeTitle(result.DefaultKey.Key.Type), result.DefaultKey.Address)))
	}

	ok := 0
	for _, report := range result.Chains {
		switch {
		case report.Chain == nil:
			fmt.Fprintf(r.out, "  %s chain %d: %v\n", color.New(color.FgRed).Sprint("✗"), report.ChainID, report.Err)
		case report.Err != nil:
			fmt.Fprintf(r.out, "  %s %s (%d): added without a healthy endpoint\n", color.New(color.FgYellow).Sprint("!"), report.Chain.Name, report.ChainID)
		default:
			ok++
			fmt.Fprintf(r.out, "  %s %s (%d) → %s\n", color.New(color.FgGreen).Sprint("✓"), report.Chain.Name, report.ChainID, report.Chain.SelectedRPC)
		}
	}

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Registry created with %d chain(s), %d healthy", len(result.Registry.Chains), ok)))
	fmt.Fprintf(r.out, "📁 %s\n", result.RegistryPath)
	return nil
}

// RenderImport renders the result of a foundry import
func (r *InitRenderer) RenderImport(result *usecase.ImportFoundryResult) error {
	for _, chain := range result.Imported {
		fmt.Fprintf(r.out, "  %s %s (%d)\n", color.New(color.FgGreen).Sprint("✓"), chain.Name, chain.ChainID)
	}
	for _, skip := range result.Skipped {
		fmt.Fprintf(r.out, "  %s %s: %s\n", color.New(color.Faint).Sprint("-"), skip.Name, skip.Reason)
	}
	if len(result.Variables) > 0 {
		fmt.Fprintf(r.out, "  copied from .env: %v\n", result.Variables)
	}

	if len(result.Imported) == 0 {
		fmt.Fprintln(r.out, FormatWarning("Nothing imported"))
		return nil
	}
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Imported %d chain(s)", len(result.Imported))))
	return nil
}
