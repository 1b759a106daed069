package models

import "strings"

// CatalogChain is public metadata about a chain from the chainid.network catalog
type CatalogChain struct {
	Name      string            `json:"name"`
	Chain     string            `json:"chain"`
	ShortName string            `json:"shortName"`
	ChainID   uint64            `json:"chainId"`
	RPC       []string          `json:"rpc"`
	Explorers []CatalogExplorer `json:"explorers,omitempty"`
}

type CatalogExplorer struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// HTTPRPCs returns the http(s) endpoints in catalog order. Templates such as
// https://mainnet.infura.io/v3/${INFURA_API_KEY} are kept and resolved later.
func (c CatalogChain) HTTPRPCs() []string {
	var urls []string
	for _, u := range c.RPC {
		if strings.HasPrefix(u, "https://") || strings.HasPrefix(u, "http://") {
			urls = append(urls, u)
		}
	}
	return urls
}

// Slug is a registry-friendly name, e.g. "OP Mainnet" -> "op_mainnet"
func (c CatalogChain) Slug() string {
	name := strings.ToLower(strings.TrimSpace(c.Name))
	return strings.Join(strings.Fields(name), "_")
}
