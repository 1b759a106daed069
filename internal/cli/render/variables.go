package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/trebuchet-org/chainz/internal/usecase"
)

// VariablesRenderer renders ${VAR} values
type VariablesRenderer struct {
	out    io.Writer
	reveal bool
}

// NewVariablesRenderer creates a new variables renderer; values are masked unless reveal is set
func NewVariablesRenderer(out io.Writer, reveal bool) *VariablesRenderer {
	return &VariablesRenderer{out: out, reveal: reveal}
}

func (r *VariablesRenderer) value(info usecase.VariableInfo) string {
	if info.Source == "" {
		return color.New(color.FgRed).Sprint("(undefined)")
	}
	if r.reveal {
		return info.Value
	}
	return Mask(info.Value)
}

// RenderList renders all variables
func (r *VariablesRenderer) RenderList(infos []usecase.VariableInfo) error {
	if len(infos) == 0 {
		fmt.Fprintln(r.out, "No variables defined.")
		return nil
	}

	t := newTable(r.out)
	t.AppendHeader(table.Row{"Name", "Value", "Source", "Used by"})
	for _, info := range infos {
		source := info.Source
		if source == "env" && info.Stored {
			source = "env (overrides registry)"
		}
		t.AppendRow(table.Row{info.Name, r.value(info), source, strings.Join(info.UsedBy, ", ")})
	}
	t.Render()
	return nil
}

// RenderValue prints just the value, for scripting
func (r *VariablesRenderer) RenderValue(info *usecase.VariableInfo) error {
	fmt.Fprintln(r.out, info.Value)
	return nil
}

// RenderSet renders the result of setting a variable
func (r *VariablesRenderer) RenderSet(info *usecase.VariableInfo) error {
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Set %s", info.Name)))
	if len(info.UsedBy) > 0 {
		fmt.Fprintf(r.out, "   Used by: %s\n", strings.Join(info.UsedBy, ", "))
	}
	return nil
}

// RenderRemoved renders the result of removing a variable
func (r *VariablesRenderer) RenderRemoved(info *usecase.VariableInfo) error {
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Removed %s", info.Name)))
	if len(info.UsedBy) > 0 {
		fmt.Fprintln(r.out, FormatWarning(fmt.Sprintf("Still referenced by: %s", strings.Join(info.UsedBy, ", "))))
	}
	return nil
}
