package entity

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Currency describes one asset that can appear on the dashboard: either the chain's
// native asset or an ERC-20 token from the token list.
type Currency struct {
	ID          string `json:"id"`
	Address     string `json:"address,omitempty"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Decimals    uint8  `json:"decimals"`
	LogoURI     string `json:"logoURI,omitempty"`
	CoinGeckoID string `json:"coingeckoId,omitempty"`
	IsNative    bool   `json:"isNative"`
}

// TokenInfo is one entry of a per-chain token list file.
type TokenInfo struct {
	ChainID     uint64 `json:"chainId"`
	Address     string `json:"address"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Decimals    uint8  `json:"decimals"`
	LogoURI     string `json:"logoURI,omitempty"`
	CoinGeckoID string `json:"coingeckoId,omitempty"`
}

// Currency converts the token list entry into a dashboard currency.
func (t TokenInfo) Currency() Currency {
	return Currency{
		ID:          NormalizeID(t.Address),
		Address:     t.Address,
		Name:        t.Name,
		Symbol:      t.Symbol,
		Decimals:    t.Decimals,
		LogoURI:     t.LogoURI,
		CoinGeckoID: t.CoinGeckoID,
	}
}

// NormalizeID returns the canonical cache/render key of a currency identifier.
// Contract addresses are lower-cased, symbolic sentinels are upper-cased.
func NormalizeID(id string) string {
	id = strings.TrimSpace(id)
	if common.IsHexAddress(id) {
		return strings.ToLower(id)
	}
	return strings.ToUpper(id)
}

// Label is the human readable name shown next to the currency icon.
func (c Currency) Label() string {
	if c.Name == "" {
		return c.Symbol
	}
	return c.Name + " (" + c.Symbol + ")"
}
