package render

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/trebuchet-org/chainz/internal/domain/models"
	"github.com/trebuchet-org/chainz/internal/usecase"
)

// ChainsRenderer renders chains and failover runs
type ChainsRenderer struct {
	out io.Writer
}

// NewChainsRenderer creates a new chains renderer
func NewChainsRenderer(out io.Writer) *ChainsRenderer {
	return &ChainsRenderer{out: out}
}

type probeView struct {
	Template  string `json:"template" yaml:"template"`
	Status    string `json:"status" yaml:"status"`
	LatencyMs int64  `json:"latency_ms,omitempty" yaml:"latency_ms,omitempty"`
	Block     uint64 `json:"block,omitempty" yaml:"block,omitempty"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

type chainView struct {
	Name               string      `json:"name" yaml:"name"`
	ChainID            uint64      `json:"chain_id" yaml:"chain_id"`
	RPCURLs            []string    `json:"rpc_urls" yaml:"rpc_urls"`
	SelectedRPC        string      `json:"selected_rpc,omitempty" yaml:"selected_rpc,omitempty"`
	VerificationAPIKey string      `json:"verification_api_key,omitempty" yaml:"verification_api_key,omitempty"`
	VerificationURL    string      `json:"verification_url,omitempty" yaml:"verification_url,omitempty"`
	Key                string      `json:"key,omitempty" yaml:"key,omitempty"`
	KeyType            string      `json:"key_type,omitempty" yaml:"key_type,omitempty"`
	DanglingKey        bool        `json:"dangling_key,omitempty" yaml:"dangling_key,omitempty"`
	Healthy            *bool       `json:"healthy,omitempty" yaml:"healthy,omitempty"`
	Probes             []probeView `json:"probes,omitempty" yaml:"probes,omitempty"`
}

func newProbeViews(report []models.ProbeResult) []probeView {
	views := make([]probeView, 0, len(report))
	for _, r := range report {
		v := probeView{Template: r.Template, Status: r.Status()}
		if r.OK() {
			v.Status = "ok"
			v.LatencyMs = r.Latency.Milliseconds()
			v.Block = r.BlockNumber
		} else if r.Err != nil && r.Err.Error() != string(r.Reason) {
			v.Error = r.Err.Error()
		}
		views = append(views, v)
	}
	return views
}

// RenderList renders the registered chains
func (r *ChainsRenderer) RenderList(result *usecase.ListChainsResult, format string) error {
	if format != FormatTable {
		views := make([]chainView, 0, len(result.Chains))
		for _, status := range result.Chains {
			c := status.Chain
			v := chainView{
				Name:               c.Name,
				ChainID:            c.ChainID,
				RPCURLs:            c.RPCURLs,
				SelectedRPC:        c.SelectedRPC,
				VerificationAPIKey: c.VerificationAPIKey,
				VerificationURL:    c.VerificationURL,
				Key:                status.KeyName,
				KeyType:            string(status.KeyType),
				DanglingKey:        status.DanglingKey,
			}
			if status.Selection != nil {
				healthy := status.ProbeErr == nil
				v.Healthy = &healthy
				v.Probes = newProbeViews(status.Selection.Report)
			}
			views = append(views, v)
		}
		return writeStructured(r.out, format, views)
	}

	if len(result.Chains) == 0 {
		fmt.Fprintln(r.out, "No chains registered. Add one with 'chainz add' or run 'chainz init'.")
		return nil
	}

	t := newTable(r.out)
	header := table.Row{"Name", "Chain ID", "RPC", "Key"}
	probing := len(result.Chains) > 0 && result.Chains[0].Selection != nil
	if probing {
		header = append(header, "Health")
	}
	t.AppendHeader(header)

	for _, status := range result.Chains {
		c := status.Chain
		selected := c.SelectedRPC
		if selected == "" {
			selected = color.New(color.Faint).Sprint("(none)")
		}
		row := table.Row{
			color.New(color.Bold).Sprint(c.Name),
			c.ChainID,
			selected,
			r.keyCell(status),
		}
		if probing {
			row = append(row, healthCell(status))
		}
		t.AppendRow(row)
	}
	t.Render()

	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "Env prefix: %s", result.EnvPrefix)
	if result.DefaultKey != "" {
		fmt.Fprintf(r.out, "   Default key: %s", result.DefaultKey)
	}
	fmt.Fprintln(r.out)
	return nil
}

func (r *ChainsRenderer) keyCell(status usecase.ChainStatus) string {
	switch {
	case status.KeyName == "":
		return color.New(color.Faint).Sprint("-")
	case status.DanglingKey:
		return color.New(color.FgRed).Sprintf("%s (missing)", status.KeyName)
	default:
		return fmt.Sprintf("%s (%s)", status.KeyName, KeyTypeTitle(status.KeyType))
	}
}

func healthCell(status usecase.ChainStatus) string {
	if status.ProbeErr != nil {
		return color.New(color.FgRed).Sprint("✗ down")
	}
	winner := status.Selection.Winner
	if winner == nil {
		return color.New(color.FgRed).Sprint("✗ no winner")
	}
	healthy := 0
	for _, p := range status.Selection.Report {
		if p.OK() {
			healthy++
		}
	}
	return color.New(color.FgGreen).Sprintf("✓ %d/%d, best %s", healthy, len(status.Selection.Report), winner.Status())
}

// RenderProbeReport renders one line per candidate of a failover run
func (r *ChainsRenderer) RenderProbeReport(selection *usecase.SelectEndpointResult) {
	if selection == nil {
		return
	}
	for _, p := range selection.Report {
		mark := color.New(color.FgRed).Sprint("✗")
		status := string(p.Reason)
		if p.OK() {
			mark = color.New(color.FgGreen).Sprint("✓")
			status = fmt.Sprintf("%s, block %d", p.Latency.Truncate(time.Millisecond), p.BlockNumber)
		} else if p.Err != nil && p.Err.Error() != status {
			status = fmt.Sprintf("%s: %v", status, p.Err)
		}
		selected := ""
		if p.Template == selection.Selected && p.OK() {
			selected = color.New(color.FgCyan).Sprint(" ← selected")
		}
		fmt.Fprintf(r.out, "  %s %s  %s%s\n", mark, p.Template, color.New(color.Faint).Sprint(status), selected)
	}
}

// RenderAdded renders the result of adding a chain
func (r *ChainsRenderer) RenderAdded(result *usecase.AddChainResult) error {
	c := result.Chain
	source := ""
	if result.FromCatalog {
		source = " (from chain catalog)"
	}
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Added chain '%s' (%d)%s", c.Name, c.ChainID, source)))
	r.RenderProbeReport(result.Selection)
	if result.Selection == nil {
		fmt.Fprintln(r.out, FormatWarning("Endpoints not probed; the first 'use' will select one"))
	}
	return nil
}

// RenderUpdated renders the result of updating a chain
func (r *ChainsRenderer) RenderUpdated(result *usecase.UpdateChainResult) error {
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Updated chain '%s'", result.Chain.Name)))
	r.RenderProbeReport(result.Selection)
	if result.SelectionCleared {
		fmt.Fprintln(r.out, FormatWarning("Selected RPC was removed; run 'chainz use --failover' to pick a new one"))
	}
	return nil
}

// RenderRemoved renders the result of removing a chain
func (r *ChainsRenderer) RenderRemoved(result *usecase.RemoveChainResult) error {
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Removed chain '%s' (%d)", result.Removed.Name, result.Removed.ChainID)))
	return nil
}

// RenderNoHealthy renders the probe report carried by a failed failover run.
// It returns false when err is not a failover failure.
func (r *ChainsRenderer) RenderNoHealthy(err error) bool {
	var noHealthy *models.NoHealthyEndpointError
	if !errors.As(err, &noHealthy) {
		return false
	}
	name := noHealthy.Chain
	if name == "" {
		name = "chain"
	}
	fmt.Fprintln(r.out, FormatError(fmt.Sprintf("No healthy endpoint for %s", name)))
	if len(noHealthy.Report) == 0 {
		fmt.Fprintln(r.out, "  no candidates configured")
		return true
	}
	r.RenderProbeReport(&usecase.SelectEndpointResult{Report: noHealthy.Report})
	hint := false
	for _, p := range noHealthy.Report {
		if p.Reason == models.ReasonUnresolvedVariable {
			hint = true
		}
	}
	if hint {
		fmt.Fprintln(r.out, strings.TrimSpace(FormatWarning("Set missing variables with 'chainz var set NAME VALUE' or export them")))
	}
	return true
}
