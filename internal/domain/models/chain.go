package models

import "slices"

// Chain is a registered EVM network with its candidate RPC endpoints
type Chain struct {
	Name    string `json:"name"`
	ChainID uint64 `json:"chain_id"`

	// RPCURLs are endpoint templates in preference order; they may contain ${VAR} placeholders
	RPCURLs []string `json:"rpc_urls"`

	// SelectedRPC is the template chosen by the last failover run
	SelectedRPC string `json:"selected_rpc,omitempty"`

	VerificationAPIKey string `json:"verification_api_key,omitempty"`
	VerificationURL    string `json:"verification_url,omitempty"`

	// KeyName references a KeySpec in the registry; empty means the registry default key
	KeyName string `json:"key_name,omitempty"`
}

// HasRPC reports whether template is one of the chain's candidates
func (c *Chain) HasRPC(template string) bool {
	return slices.Contains(c.RPCURLs, template)
}

// Clone returns a deep copy safe to mutate
func (c *Chain) Clone() *Chain {
	clone := *c
	clone.RPCURLs = slices.Clone(c.RPCURLs)
	return &clone
}
