package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/trebuchet-org/chainz/internal/domain"
)

// FailureReason classifies why a candidate endpoint was rejected
type FailureReason string

const (
	ReasonUnresolvedVariable FailureReason = "unresolved_variable"
	ReasonFormat             FailureReason = "format"
	ReasonInvalidURL         FailureReason = "invalid_url"
	ReasonDNS                FailureReason = "dns"
	ReasonConnection         FailureReason = "connection"
	ReasonTLS                FailureReason = "tls"
	ReasonHTTPStatus         FailureReason = "http_status"
	ReasonMalformedResponse  FailureReason = "malformed_response"
	ReasonRPCError           FailureReason = "rpc_error"
	ReasonChainIDMismatch    FailureReason = "chain_id_mismatch"
	ReasonTimeout            FailureReason = "timeout"
	ReasonCanceled           FailureReason = "canceled"
)

// ProbeResult is the outcome of evaluating one candidate endpoint. A result is
// either a success (Reason empty, Latency set) or a failure (Reason set); use
// ProbeSuccess and ProbeFailure to build one.
type ProbeResult struct {
	// Template is the candidate as configured, placeholders included
	Template string
	// URL is the resolved endpoint; empty when resolution failed
	URL string

	Latency     time.Duration
	ChainID     uint64
	BlockNumber uint64

	Reason FailureReason
	Err    error
}

func ProbeSuccess(url string, latency time.Duration, chainID, block uint64) ProbeResult {
	return ProbeResult{URL: url, Latency: latency, ChainID: chainID, BlockNumber: block}
}

func ProbeFailure(url string, reason FailureReason, err error) ProbeResult {
	if err == nil {
		err = fmt.Errorf("%s", reason)
	}
	return ProbeResult{URL: url, Reason: reason, Err: err}
}

// OK reports whether the probe succeeded
func (r ProbeResult) OK() bool {
	return r.Reason == ""
}

// Status is a short human readable outcome, e.g. "ok (52ms)" or "timeout"
func (r ProbeResult) Status() string {
	if r.OK() {
		return fmt.Sprintf("ok (%s)", r.Latency.Round(time.Millisecond))
	}
	return string(r.Reason)
}

// NoHealthyEndpointError is returned when every candidate of a failover run
// failed. Report holds one result per candidate in input order.
type NoHealthyEndpointError struct {
	Chain  string
	Report []ProbeResult
}

func (e *NoHealthyEndpointError) Error() string {
	header := "no healthy endpoint"
	if e.Chain != "" {
		header = fmt.Sprintf("no healthy endpoint for chain '%s'", e.Chain)
	}
	if len(e.Report) == 0 {
		return header + ": no candidates"
	}

	lines := make([]string, 0, len(e.Report))
	for _, r := range e.Report {
		line := fmt.Sprintf("  - %s: %s", r.Template, r.Reason)
		if r.Err != nil && r.Err.Error() != string(r.Reason) {
			line += fmt.Sprintf(" (%v)", r.Err)
		}
		lines = append(lines, line)
	}
	return header + ":\n" + strings.Join(lines, "\n")
}

func (e *NoHealthyEndpointError) Is(target error) bool {
	return target == domain.ErrNoHealthyEndpoint
}
