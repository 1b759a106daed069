package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	internalconfig "github.com/trebuchet-org/chainz/internal/config"
	"github.com/trebuchet-org/chainz/internal/domain"
	"github.com/trebuchet-org/chainz/internal/domain/config"
	"github.com/trebuchet-org/chainz/internal/domain/models"
)

// SelectEndpointParams contains parameters for a failover run
type SelectEndpointParams struct {
	// Chain names the chain in errors; optional
	Chain string
	// Candidates are RPC URL templates in preference order
	Candidates []string
	// Variables are the persisted values for ${VAR} placeholders
	Variables map[string]string
	// Environment overrides the process environment snapshot; nil reads the OS
	Environment internalconfig.Environment
	// ChainID is the expected chain; 0 accepts any
	ChainID uint64
	// Timeout bounds each probe; 0 uses the configured probe timeout
	Timeout time.Duration
}

// SelectEndpointResult is the outcome of a failover run
type SelectEndpointResult struct {
	// Selected is the winning template, empty when nothing was healthy
	Selected string
	// Winner is the winning probe, nil when nothing was healthy
	Winner *models.ProbeResult
	// Report holds one result per candidate, in input order
	Report []models.ProbeResult
}

// SelectEndpoint probes every candidate concurrently and picks the fastest
// healthy one
type SelectEndpoint struct {
	prober EndpointProber
	sink   ProgressSink
	cfg    *config.RuntimeConfig
	log    *slog.Logger
}

// NewSelectEndpoint creates a new SelectEndpoint use case
func NewSelectEndpoint(prober EndpointProber, sink ProgressSink, cfg *config.RuntimeConfig, log *slog.Logger) *SelectEndpoint {
	return &SelectEndpoint{
		prober: prober,
		sink:   sink,
		cfg:    cfg,
		log:    log.With("component", "SelectEndpoint"),
	}
}

type indexedResult struct {
	index  int
	result models.ProbeResult
}

// Run executes the failover run. The result is returned even on failure; when
// no candidate is healthy the error is a *models.NoHealthyEndpointError.
func (uc *SelectEndpoint) Run(ctx context.Context, params SelectEndpointParams) (*SelectEndpointResult, error) {
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = uc.cfg.ProbeTimeout
	}

	resolver := internalconfig.NewResolver(params.Variables)
	if params.Environment != nil {
		resolver = resolver.WithEnvironment(params.Environment)
	}

	report := make([]models.ProbeResult, len(params.Candidates))
	results := make(chan indexedResult, len(params.Candidates))

	pending := 0
	for i, template := range params.Candidates {
		url, err := resolver.Resolve(template)
		if err != nil {
			report[i] = resolveFailure(err)
			report[i].Template = template
			uc.log.Debug("candidate not probed", "template", template, "error", err)
			continue
		}

		pending++
		go func(index int, template, url string) {
			result := uc.probe(ctx, url, params.ChainID, timeout)
			result.Template = template
			results <- indexedResult{index: index, result: result}
		}(i, template, url)
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   StageProbeStarted,
		Total:   pending,
		Message: fmt.Sprintf("Probing %d endpoint(s)", pending),
		Spinner: pending > 0,
	})

	for done := 1; done <= pending; done++ {
		r := <-results
		report[r.index] = r.result
		uc.log.Debug("probe finished", "template", r.result.Template, "status", r.result.Status())
		uc.sink.OnProgress(ctx, ProgressEvent{
			Stage:    StageProbeFinished,
			Current:  done,
			Total:    pending,
			Message:  fmt.Sprintf("Probing endpoints (%d/%d)", done, pending),
			Spinner:  done < pending,
			Metadata: r.result,
		})
	}

	uc.sink.OnProgress(ctx, ProgressEvent{Stage: StageProbeDone, Total: pending})

	result := &SelectEndpointResult{Report: report}
	winner := pickWinner(report)
	if winner < 0 {
		uc.log.Warn("no healthy endpoint", "chain", params.Chain, "candidates", len(report))
		return result, &models.NoHealthyEndpointError{Chain: params.Chain, Report: report}
	}

	result.Selected = report[winner].Template
	result.Winner = &report[winner]
	return result, nil
}

// probe runs one probe under its own deadline. A probe that ignores the
// deadline is abandoned; its goroutine finishes on its own and its result is dropped.
func (uc *SelectEndpoint) probe(ctx context.Context, url string, chainID uint64, timeout time.Duration) models.ProbeResult {
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan models.ProbeResult, 1)
	go func() {
		done <- uc.prober.Probe(probeCtx, url, chainID)
	}()

	select {
	case r := <-done:
		return r
	case <-probeCtx.Done():
		select {
		case r := <-done:
			return r
		default:
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return models.ProbeFailure(url, models.ReasonCanceled, ctx.Err())
		}
		return models.ProbeFailure(url, models.ReasonTimeout, fmt.Errorf("no response within %s", timeout))
	}
}

// pickWinner returns the index of the fastest success, or -1. Latencies are
// compared in whole milliseconds and ties go to the earliest candidate.
func pickWinner(report []models.ProbeResult) int {
	winner := -1
	for i, r := range report {
		if !r.OK() {
			continue
		}
		if winner < 0 || r.Latency.Truncate(time.Millisecond) < report[winner].Latency.Truncate(time.Millisecond) {
			winner = i
		}
	}
	return winner
}

func resolveFailure(err error) models.ProbeResult {
	if errors.Is(err, domain.ErrUnresolvedVariable) {
		return models.ProbeFailure("", models.ReasonUnresolvedVariable, err)
	}
	return models.ProbeFailure("", models.ReasonFormat, err)
}
