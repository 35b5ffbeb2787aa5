package entity

// NetworkDefinition holds the configuration for a specific blockchain network.
type NetworkDefinition struct {
	ChainID                   uint64   `json:"chainId" yaml:"chainId"`
	Name                      string   `json:"name" yaml:"name"`
	Identifier                string   `json:"identifier" yaml:"identifier"`
	NativeSymbol              string   `json:"nativeSymbol" yaml:"nativeSymbol"`
	NativeName                string   `json:"nativeName" yaml:"nativeName"`
	Decimals                  int32    `json:"decimals" yaml:"decimals"`
	PrimaryRPCURL             string   `json:"primaryRpcUrl" yaml:"primaryRpcUrl"`
	FallbackRPCURLs           []string `json:"fallbackRpcUrls" yaml:"fallbackRpcUrls"`
	BlockExplorerURL          string   `json:"blockExplorerUrl,omitempty" yaml:"blockExplorerUrl,omitempty"`
	DEXScreenerChainID        string   `json:"dexScreenerChainId,omitempty" yaml:"dexScreenerChainId,omitempty"`
	CoinGeckoPlatformID       string   `json:"coingeckoPlatformId,omitempty" yaml:"coingeckoPlatformId,omitempty"`
	CoinGeckoNativeID         string   `json:"coingeckoNativeId,omitempty" yaml:"coingeckoNativeId,omitempty"`
	WrappedNativeTokenAddress string   `json:"wrappedNativeTokenAddress,omitempty" yaml:"wrappedNativeTokenAddress,omitempty"`
	ReferenceTokenAddress     string   `json:"referenceTokenAddress,omitempty" yaml:"referenceTokenAddress,omitempty"`
}

// NativeCurrency returns the dashboard currency for the chain's base asset.
func (n NetworkDefinition) NativeCurrency() Currency {
	decimals := n.Decimals
	if decimals == 0 {
		decimals = 18
	}
	name := n.NativeName
	if name == "" {
		name = n.NativeSymbol
	}
	return Currency{
		ID:          NormalizeID(n.NativeSymbol),
		Name:        name,
		Symbol:      n.NativeSymbol,
		Decimals:    uint8(decimals),
		CoinGeckoID: n.CoinGeckoNativeID,
		IsNative:    true,
	}
}
