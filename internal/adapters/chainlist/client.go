package chainlist

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/trebuchet-org/chainz/internal/domain"
	"github.com/trebuchet-org/chainz/internal/domain/models"
	"github.com/trebuchet-org/chainz/internal/usecase"
)

const (
	// DefaultURL is the public chain catalog
	DefaultURL = "https://chainid.network/chains.json"

	cacheFileName = "chains.json"
	cacheTTL      = 24 * time.Hour
	fetchAttempts = 3
)

// Client implements ChainCatalog over the chainid.network catalog with an
// on-disk cache
type Client struct {
	url        string
	cacheDir   string
	httpClient *http.Client
	log        *slog.Logger

	mu     sync.Mutex
	chains []models.CatalogChain
}

// NewClient creates a catalog client caching under the user cache directory
func NewClient(log *slog.Logger) *Client {
	cacheDir := ""
	if dir, err := os.UserCacheDir(); err == nil {
		cacheDir = filepath.Join(dir, "chainz")
	}
	return NewClientWithURL(DefaultURL, cacheDir, log)
}

// NewClientWithURL creates a client for a specific catalog URL; an empty
// cacheDir disables the disk cache
func NewClientWithURL(url, cacheDir string, log *slog.Logger) *Client {
	return &Client{
		url:      url,
		cacheDir: cacheDir,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: log.With("component", "ChainCatalog"),
	}
}

// List returns every chain in the catalog
func (c *Client) List(ctx context.Context) ([]models.CatalogChain, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.chains != nil {
		return c.chains, nil
	}

	if chains, ok := c.loadCache(); ok {
		c.chains = chains
		return chains, nil
	}

	chains, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.chains = chains
	c.saveCache(chains)
	return chains, nil
}

// Lookup returns the catalog entry for chainID
func (c *Client) Lookup(ctx context.Context, chainID uint64) (*models.CatalogChain, error) {
	chains, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range chains {
		if chains[i].ChainID == chainID {
			return &chains[i], nil
		}
	}
	return nil, fmt.Errorf("chain %d in catalog: %w", chainID, domain.ErrNotFound)
}

// LookupName finds a chain by case-insensitive name or short name
func (c *Client) LookupName(ctx context.Context, name string) (*models.CatalogChain, error) {
	chains, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range chains {
		if strings.EqualFold(chains[i].Name, name) || strings.EqualFold(chains[i].ShortName, name) || chains[i].Slug() == strings.ToLower(name) {
			return &chains[i], nil
		}
	}
	return nil, fmt.Errorf("chain '%s' in catalog: %w", name, domain.ErrNotFound)
}

func (c *Client) fetch(ctx context.Context) ([]models.CatalogChain, error) {
	chains, err := retry.DoWithData(func() ([]models.CatalogChain, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
		if err != nil {
			return nil, retry.Unrecoverable(err)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return nil, fmt.Errorf("catalog returned %s", resp.Status)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, retry.Unrecoverable(fmt.Errorf("catalog returned %s", resp.Status))
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		var chains []models.CatalogChain
		if err := json.Unmarshal(body, &chains); err != nil {
			return nil, retry.Unrecoverable(fmt.Errorf("failed to parse catalog: %w", err))
		}
		return chains, nil
	},
		retry.Context(ctx),
		retry.Attempts(fetchAttempts),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			c.log.Debug("retrying catalog fetch", "attempt", attempt+1, "error", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chain catalog: %w", err)
	}
	return chains, nil
}

func (c *Client) cachePath() string {
	if c.cacheDir == "" {
		return ""
	}
	return filepath.Join(c.cacheDir, cacheFileName)
}

func (c *Client) loadCache() ([]models.CatalogChain, bool) {
	path := c.cachePath()
	if path == "" {
		return nil, false
	}
	info, err := os.Stat(path)
	if err != nil || time.Since(info.ModTime()) > cacheTTL {
		return nil, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var chains []models.CatalogChain
	if err := json.Unmarshal(data, &chains); err != nil {
		c.log.Debug("ignoring corrupt catalog cache", "path", path, "error", err)
		return nil, false
	}
	return chains, true
}

func (c *Client) saveCache(chains []models.CatalogChain) {
	path := c.cachePath()
	if path == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return
	}
	data, err := json.Marshal(chains)
	if err != nil {
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		c.log.Debug("failed to write catalog cache", "path", path, "error", err)
	}
}

// Ensure Client implements ChainCatalog
var _ usecase.ChainCatalog = (*Client)(nil)
