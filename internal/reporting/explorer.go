package reporting

import (
	"net/url"
	"strings"
)

// Cluster names understood by the explorer.
const (
	ClusterMainnet = "mainnet-beta"
	ClusterDevnet  = "devnet"
	ClusterTestnet = "testnet"
)

// DefaultExplorerURL is the public block explorer.
const DefaultExplorerURL = "https://explorer.solana.com"

// Explorer builds block explorer links for one cluster.
type Explorer struct {
	BaseURL string
	Cluster string
}

// NewExplorer returns an Explorer on the public explorer. An empty cluster
// means mainnet-beta.
func NewExplorer(cluster string) Explorer {
	return Explorer{BaseURL: DefaultExplorerURL, Cluster: cluster}
}

// AddressURL links to an account page.
func (e Explorer) AddressURL(address string) string {
	return e.link("address", address)
}

// TxURL links to a transaction page.
func (e Explorer) TxURL(signature string) string {
	return e.link("tx", signature)
}

func (e Explorer) link(kind, id string) string {
	if id == "" {
		return ""
	}
	base := strings.TrimRight(e.BaseURL, "/")
	if base == "" {
		base = DefaultExplorerURL
	}
	u := base + "/" + kind + "/" + url.PathEscape(id)
	if e.Cluster != "" && e.Cluster != ClusterMainnet {
		u += "?cluster=" + url.QueryEscape(e.Cluster)
	}
	return u
}
