package certification

import "strings"

// Explorer builds block-explorer links from configured base URLs. An unset
// base yields an empty link.
type Explorer struct {
	TokenBase string
	TxBase    string
}

func (e Explorer) TokenURL(contract, tokenID string) string {
	base := strings.TrimRight(strings.TrimSpace(e.TokenBase), "/")
	if base == "" || contract == "" || tokenID == "" {
		return ""
	}
	return base + "/" + contract + "?a=" + tokenID
}

func (e Explorer) TxURL(txHash string) string {
	base := strings.TrimRight(strings.TrimSpace(e.TxBase), "/")
	if base == "" || txHash == "" {
		return ""
	}
	return base + "/" + txHash
}
