package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/trebuchet-org/chainz/internal/domain/models"
	"github.com/trebuchet-org/chainz/internal/usecase"
)

// KeysRenderer renders key management output
type KeysRenderer struct {
	out io.Writer
}

// NewKeysRenderer creates a new keys renderer
func NewKeysRenderer(out io.Writer) *KeysRenderer {
	return &KeysRenderer{out: out}
}

// reference describes where a key lives without revealing it
func reference(spec *models.KeySpec) string {
	switch spec.Type {
	case models.KeyTypeOnePassword:
		if spec.OnePassword != nil {
			return spec.OnePassword.Reference()
		}
	case models.KeyTypeKeyring:
		if spec.Keychain != nil {
			return fmt.Sprintf("%s/%s", spec.Keychain.Service, spec.Keychain.Account)
		}
	case models.KeyTypePrivateKey:
		return "stored in registry"
	case models.KeyTypeEncryptedKey:
		return "stored in registry, password protected"
	}
	return ""
}

// RenderList renders registered keys
func (r *KeysRenderer) RenderList(result *usecase.ListKeysResult, withAddresses bool) error {
	if len(result.Keys) == 0 {
		fmt.Fprintln(r.out, "No keys registered. Add one with 'chainz key add'.")
	} else {
		t := newTable(r.out)
		header := table.Row{"Name", "Type", "Location", "Chains"}
		if withAddresses {
			header = append(header, "Address")
		}
		t.AppendHeader(header)

		for _, info := range result.Keys {
			name := info.Key.Name
			if info.Default {
				name += color.New(color.FgCyan).Sprint(" (default)")
			}
			chains := strings.Join(info.Chains, ", ")
			if chains == "" {
				chains = color.New(color.Faint).Sprint("-")
			}
			row := table.Row{name, KeyTypeTitle(info.Key.Type), reference(info.Key), chains}
			if withAddresses {
				if info.AddressErr != nil {
					row = append(row, color.New(color.FgRed).Sprintf("error: %v", info.AddressErr))
				} else {
					row = append(row, info.Address)
				}
			}
			t.AppendRow(row)
		}
		t.Render()
	}

	if len(result.Dangling) > 0 {
		fmt.Fprintln(r.out)
		chains := make([]string, 0, len(result.Dangling))
		for chain := range result.Dangling {
			chains = append(chains, chain)
		}
		sort.Strings(chains)
		for _, chain := range chains {
			fmt.Fprintln(r.out, FormatWarning(fmt.Sprintf("Chain '%s' references missing key '%s'", chain, result.Dangling[chain])))
		}
	}
	return nil
}

// RenderAdded renders the result of adding a key
func (r *KeysRenderer) RenderAdded(result *usecase.AddKeyResult) error {
	verb := "Added"
	if result.Replaced {
		verb = "Rotated"
	}
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("%s %s key '%s'", verb, KeyTypeTitle(result.Key.Type), result.Key.Name)))
	fmt.Fprintf(r.out, "   Address: %s\n", result.Address)
	if result.Default {
		fmt.Fprintln(r.out, "   Used as the default key")
	}
	return nil
}

// RenderRemoved renders the result of removing a key
func (r *KeysRenderer) RenderRemoved(result *usecase.RemoveKeyResult) error {
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Removed key '%s'", result.Removed.Name)))
	if result.WasDefault {
		fmt.Fprintln(r.out, FormatWarning("The default key was cleared; set a new one with 'chainz config set default-key NAME'"))
	}
	if len(result.Orphaned) > 0 {
		fmt.Fprintln(r.out, FormatWarning(fmt.Sprintf("Chains left without a key: %s", strings.Join(result.Orphaned, ", "))))
	}
	return nil
}
