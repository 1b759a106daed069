package blockchain

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/trebuchet-org/chainz/internal/domain/config"
	"github.com/trebuchet-org/chainz/internal/domain/models"
	"github.com/trebuchet-org/chainz/internal/usecase"
)

// ProberAdapter implements usecase.EndpointProber with a single JSON-RPC
// batch of eth_chainId and eth_blockNumber per endpoint
type ProberAdapter struct {
	httpClient     *http.Client
	defaultTimeout time.Duration
}

// NewProberAdapter creates a new prober adapter
func NewProberAdapter(cfg *config.RuntimeConfig) *ProberAdapter {
	return &ProberAdapter{
		httpClient:     &http.Client{},
		defaultTimeout: cfg.ProbeTimeout,
	}
}

// Probe checks that url serves the expected chain. An expectedChainID of 0
// accepts any chain. Probe never retries; callers race candidates instead.
func (p *ProberAdapter) Probe(ctx context.Context, endpoint string, expectedChainID uint64) models.ProbeResult {
	if err := validateEndpoint(endpoint); err != nil {
		return models.ProbeFailure(endpoint, models.ReasonInvalidURL, err)
	}

	if _, ok := ctx.Deadline(); !ok && p.defaultTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.defaultTimeout)
		defer cancel()
	}

	start := time.Now()

	client, err := rpc.DialOptions(ctx, endpoint, rpc.WithHTTPClient(p.httpClient))
	if err != nil {
		return models.ProbeFailure(endpoint, classify(ctx, err), err)
	}
	defer client.Close()

	var chainID, blockNumber hexutil.Uint64
	batch := []rpc.BatchElem{
		{Method: "eth_chainId", Result: &chainID},
		{Method: "eth_blockNumber", Result: &blockNumber},
	}
	if err := client.BatchCallContext(ctx, batch); err != nil {
		return models.ProbeFailure(endpoint, classify(ctx, err), err)
	}
	for _, elem := range batch {
		if elem.Error != nil {
			return models.ProbeFailure(endpoint, classify(ctx, elem.Error), fmt.Errorf("%s: %w", elem.Method, elem.Error))
		}
	}
	latency := time.Since(start)

	if expectedChainID != 0 && uint64(chainID) != expectedChainID {
		return models.ProbeFailure(endpoint, models.ReasonChainIDMismatch,
			fmt.Errorf("chain ID mismatch: expected %d, got %d", expectedChainID, uint64(chainID)))
	}

	return models.ProbeSuccess(endpoint, latency, uint64(chainID), uint64(blockNumber))
}

func validateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host")
	}
	return nil
}

// classify maps a transport or protocol error onto a failure reason
func classify(ctx context.Context, err error) models.FailureReason {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return models.ReasonTimeout
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		return models.ReasonCanceled
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return models.ReasonDNS
	}

	var (
		certErr      *tls.CertificateVerificationError
		unknownAuth  x509.UnknownAuthorityError
		hostnameErr  x509.HostnameError
		recordHeader tls.RecordHeaderError
	)
	if errors.As(err, &certErr) || errors.As(err, &unknownAuth) || errors.As(err, &hostnameErr) || errors.As(err, &recordHeader) {
		return models.ReasonTLS
	}
	if plainHTTPOverTLS(err) {
		return models.ReasonTLS
	}

	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		return models.ReasonHTTPStatus
	}

	var netErr net.Error
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return models.ReasonConnection
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return models.ReasonConnection
	}
	if errors.As(err, &netErr) && netErr.Timeout() {
		return models.ReasonTimeout
	}

	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return models.ReasonMalformedResponse
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return models.ReasonRPCError
	}

	return models.ReasonMalformedResponse
}

// plainHTTPOverTLS reports an https request answered by a plain HTTP server.
// net/http replaces the tls.RecordHeaderError with an untyped error, so the
// only handle left is the *url.Error of an https request whose cause is
// neither a network nor a DNS failure.
func plainHTTPOverTLS(err error) bool {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) || !strings.HasPrefix(urlErr.URL, "https://") {
		return false
	}
	var netErr net.Error
	return !errors.As(urlErr.Err, &netErr)
}

// Ensure the adapter implements the interface
var _ usecase.EndpointProber = (*ProberAdapter)(nil)
