package blockchain

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/chainz/internal/domain/config"
	"github.com/trebuchet-org/chainz/internal/domain/models"
)

type rpcRequest struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
}

// fakeNode answers eth_chainId and eth_blockNumber batches
func fakeNode(t *testing.T, chainID uint64, handle func(req rpcRequest) map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqs []rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		resps := make([]map[string]any, 0, len(reqs))
		for _, req := range reqs {
			resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
			if handle != nil {
				if override := handle(req); override != nil {
					for k, v := range override {
						resp[k] = v
					}
					resps = append(resps, resp)
					continue
				}
			}
			switch req.Method {
			case "eth_chainId":
				resp["result"] = fmt.Sprintf("0x%x", chainID)
			case "eth_blockNumber":
				resp["result"] = "0x1234"
			}
			resps = append(resps, resp)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resps)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestProber() *ProberAdapter {
	return NewProberAdapter(&config.RuntimeConfig{ProbeTimeout: 2 * time.Second})
}

func TestProberAdapter_Probe(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := fakeNode(t, 11155111, nil)

		result := newTestProber().Probe(context.Background(), srv.URL, 11155111)
		require.True(t, result.OK(), "unexpected failure: %v", result.Err)
		assert.Equal(t, srv.URL, result.URL)
		assert.Equal(t, uint64(11155111), result.ChainID)
		assert.Equal(t, uint64(0x1234), result.BlockNumber)
		assert.Greater(t, result.Latency, time.Duration(0))
	})

	t.Run("zero expected chain accepts any chain", func(t *testing.T) {
		srv := fakeNode(t, 42, nil)

		result := newTestProber().Probe(context.Background(), srv.URL, 0)
		require.True(t, result.OK())
		assert.Equal(t, uint64(42), result.ChainID)
	})

	t.Run("chain id mismatch", func(t *testing.T) {
		srv := fakeNode(t, 5, nil)

		result := newTestProber().Probe(context.Background(), srv.URL, 1)
		assert.Equal(t, models.ReasonChainIDMismatch, result.Reason)
		assert.Contains(t, result.Err.Error(), "expected 1, got 5")
	})

	t.Run("rpc error", func(t *testing.T) {
		srv := fakeNode(t, 1, func(req rpcRequest) map[string]any {
			if req.Method == "eth_blockNumber" {
				return map[string]any{"error": map[string]any{"code": -32601, "message": "method not found"}}
			}
			return nil
		})

		result := newTestProber().Probe(context.Background(), srv.URL, 1)
		assert.Equal(t, models.ReasonRPCError, result.Reason)
	})

	t.Run("malformed result", func(t *testing.T) {
		srv := fakeNode(t, 1, func(req rpcRequest) map[string]any {
			if req.Method == "eth_chainId" {
				return map[string]any{"result": "not-hex"}
			}
			return nil
		})

		result := newTestProber().Probe(context.Background(), srv.URL, 1)
		assert.Equal(t, models.ReasonMalformedResponse, result.Reason)
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("<html>oops</html>"))
		}))
		defer srv.Close()

		result := newTestProber().Probe(context.Background(), srv.URL, 1)
		assert.Equal(t, models.ReasonMalformedResponse, result.Reason)
	})

	t.Run("http status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		}))
		defer srv.Close()

		result := newTestProber().Probe(context.Background(), srv.URL, 1)
		assert.Equal(t, models.ReasonHTTPStatus, result.Reason)
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		result := newTestProber().Probe(ctx, srv.URL, 1)
		assert.Equal(t, models.ReasonTimeout, result.Reason)
	})

	t.Run("default timeout applies without deadline", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		prober := NewProberAdapter(&config.RuntimeConfig{ProbeTimeout: 100 * time.Millisecond})
		result := prober.Probe(context.Background(), srv.URL, 1)
		assert.Equal(t, models.ReasonTimeout, result.Reason)
	})

	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		endpoint := srv.URL
		srv.Close()

		result := newTestProber().Probe(context.Background(), endpoint, 1)
		assert.Equal(t, models.ReasonConnection, result.Reason)
	})

	t.Run("untrusted certificate", func(t *testing.T) {
		srv := httptest.NewTLSServer(http.NotFoundHandler())
		defer srv.Close()

		result := newTestProber().Probe(context.Background(), srv.URL, 1)
		assert.Equal(t, models.ReasonTLS, result.Reason, "err: %v", result.Err)
	})

	t.Run("https against a plain http server", func(t *testing.T) {
		srv := fakeNode(t, 1, nil)
		endpoint := strings.Replace(srv.URL, "http://", "https://", 1)

		result := newTestProber().Probe(context.Background(), endpoint, 1)
		assert.Equal(t, models.ReasonTLS, result.Reason, "err: %v", result.Err)
	})

	t.Run("unknown host", func(t *testing.T) {
		result := newTestProber().Probe(context.Background(), "http://nonexistent-host.invalid", 1)
		assert.Equal(t, models.ReasonDNS, result.Reason, "err: %v", result.Err)
	})

	t.Run("invalid url", func(t *testing.T) {
		for _, endpoint := range []string{"ftp://example.com", "not a url", "http://"} {
			result := newTestProber().Probe(context.Background(), endpoint, 1)
			assert.Equal(t, models.ReasonInvalidURL, result.Reason, endpoint)
		}
	})
}
