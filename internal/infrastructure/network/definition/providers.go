package networkdefinition

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"asset_dashboard/internal/app/port"
	"asset_dashboard/internal/domain/entity"
)

// HakkaTokenAddress is the HAKKA token on Ethereum mainnet, the dashboard's reference currency.
const HakkaTokenAddress = "0x0E29e5AbbB5FD88e28b2d355774e73BD47dE3bcd"

// NetworkDefinitionProvider provides network definitions.
type NetworkDefinitionProvider struct {
	logger            port.Logger
	allNetworkDefs    map[string]entity.NetworkDefinition
	activeNetworkDefs []entity.NetworkDefinition
}

// Predefined network definitions
var ( //nolint:gochecknoglobals // Global for definitions
	Ethereum = entity.NetworkDefinition{
		ChainID:                   1,
		Name:                      "Ethereum Mainnet",
		Identifier:                "ethereum",
		NativeSymbol:              "ETH",
		NativeName:                "Ether",
		Decimals:                  18,
		PrimaryRPCURL:             "https://ethereum-rpc.publicnode.com",
		FallbackRPCURLs:           []string{"https://rpc.ankr.com/eth", "https://ethereum.publicnode.com"},
		BlockExplorerURL:          "https://etherscan.io",
		DEXScreenerChainID:        "ethereum",
		CoinGeckoPlatformID:       "ethereum",
		CoinGeckoNativeID:         "ethereum",
		WrappedNativeTokenAddress: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", // WETH
		ReferenceTokenAddress:     HakkaTokenAddress,
	}
	BSC = entity.NetworkDefinition{
		ChainID:                   56,
		Name:                      "BNB Smart Chain",
		Identifier:                "bsc",
		NativeSymbol:              "BNB",
		NativeName:                "BNB",
		Decimals:                  18,
		PrimaryRPCURL:             "https://1rpc.io/bnb",
		FallbackRPCURLs:           []string{"https://bsc-dataseed2.binance.org/", "https://bsc.publicnode.com"},
		BlockExplorerURL:          "https://bscscan.com",
		DEXScreenerChainID:        "bsc",
		CoinGeckoPlatformID:       "binance-smart-chain",
		CoinGeckoNativeID:         "binancecoin",
		WrappedNativeTokenAddress: "0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c", // WBNB
	}
	Polygon = entity.NetworkDefinition{
		ChainID:                   137,
		Name:                      "Polygon PoS",
		Identifier:                "polygon",
		NativeSymbol:              "MATIC",
		NativeName:                "Matic",
		Decimals:                  18,
		PrimaryRPCURL:             "https://polygon-rpc.com/",
		FallbackRPCURLs:           []string{"https://rpc.ankr.com/polygon", "https://polygon.publicnode.com"},
		BlockExplorerURL:          "https://polygonscan.com",
		DEXScreenerChainID:        "polygon",
		CoinGeckoPlatformID:       "polygon-pos",
		CoinGeckoNativeID:         "matic-network",
		WrappedNativeTokenAddress: "0x0d500B1d8E8eF31E21C99d1Db9A6444d3ADf1270", // WMATIC
	}
	Arbitrum = entity.NetworkDefinition{
		ChainID:                   42161,
		Name:                      "Arbitrum One",
		Identifier:                "arbitrum",
		NativeSymbol:              "ETH",
		NativeName:                "Ether",
		Decimals:                  18,
		PrimaryRPCURL:             "https://arb1.arbitrum.io/rpc",
		FallbackRPCURLs:           []string{"https://arbitrum.llamarpc.com", "https://arbitrum.publicnode.com"},
		BlockExplorerURL:          "https://arbiscan.io",
		DEXScreenerChainID:        "arbitrum",
		CoinGeckoPlatformID:       "arbitrum-one",
		CoinGeckoNativeID:         "ethereum",
		WrappedNativeTokenAddress: "0x82aF49447D8a07e3bd95BD0d56f35241523fBab1", // WETH on Arbitrum
	}
	Gnosis = entity.NetworkDefinition{
		ChainID:                   100,
		Name:                      "Gnosis Chain",
		Identifier:                "gnosis",
		NativeSymbol:              "XDAI",
		NativeName:                "xDai",
		Decimals:                  18,
		PrimaryRPCURL:             "https://0xrpc.io/gno",
		FallbackRPCURLs:           []string{"https://rpc.ankr.com/gnosis", "https://gnosis.publicnode.com"},
		BlockExplorerURL:          "https://gnosisscan.io",
		DEXScreenerChainID:        "gnosischain",
		CoinGeckoPlatformID:       "xdai",
		CoinGeckoNativeID:         "xdai",
		WrappedNativeTokenAddress: "0xe91D153E0b41518A2Ce8DD3D7944Fa863463A97d", // WXDAI
	}
	Optimism = entity.NetworkDefinition{
		ChainID:                   10,
		Name:                      "OP Mainnet",
		Identifier:                "optimism",
		NativeSymbol:              "ETH",
		NativeName:                "Ether",
		Decimals:                  18,
		PrimaryRPCURL:             "https://op-pokt.nodies.app",
		FallbackRPCURLs:           []string{"https://optimism.publicnode.com", "https://rpc.ankr.com/optimism"},
		BlockExplorerURL:          "https://optimistic.etherscan.io",
		DEXScreenerChainID:        "optimism",
		CoinGeckoPlatformID:       "optimistic-ethereum",
		CoinGeckoNativeID:         "ethereum",
		WrappedNativeTokenAddress: "0x4200000000000000000000000000000000000006", // WETH on Optimism
	}
)

// allKnownDefinitions is a helper to quickly access all hardcoded definitions.
var allKnownDefinitions = map[string]entity.NetworkDefinition{
	Ethereum.Identifier: Ethereum,
	BSC.Identifier:      BSC,
	Polygon.Identifier:  Polygon,
	Arbitrum.Identifier: Arbitrum,
	Gnosis.Identifier:   Gnosis,
	Optimism.Identifier: Optimism,
}

// NewNetworkDefinitionProvider creates a new NetworkDefinitionProvider.
// A network is active when tokenDataDir holds a <identifier>.json token list.
func NewNetworkDefinitionProvider(log port.Logger, tokenDataDir string) *NetworkDefinitionProvider {
	p := &NetworkDefinitionProvider{
		logger:            log,
		allNetworkDefs:    allKnownDefinitions,
		activeNetworkDefs: make([]entity.NetworkDefinition, 0),
	}

	files, err := os.ReadDir(tokenDataDir)
	if err != nil {
		p.logger.Error(fmt.Sprintf("Failed to read token data directory: %s", tokenDataDir), "error", err)
		return p
	}

	activeIdentifiers := make(map[string]struct{})

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(strings.ToLower(file.Name()), ".json") {
			continue
		}

		identifier := strings.TrimSuffix(strings.ToLower(file.Name()), ".json")

		if _, alreadyActive := activeIdentifiers[identifier]; alreadyActive {
			p.logger.Warn(fmt.Sprintf("Duplicate token file or identifier detected: %s. Skipping.", identifier))
			continue
		}

		def, ok := p.allNetworkDefs[identifier]
		if !ok {
			p.logger.Warn(fmt.Sprintf("Token file found for network '%s' but no corresponding network definition exists. Skipping.", identifier))
			continue
		}

		p.activeNetworkDefs = append(p.activeNetworkDefs, def)
		activeIdentifiers[identifier] = struct{}{}
		p.logger.Debug(fmt.Sprintf("Network '%s' activated due to presence of token file '%s'.", def.Name, file.Name()))
	}

	sort.Slice(p.activeNetworkDefs, func(i, j int) bool {
		return p.activeNetworkDefs[i].ChainID < p.activeNetworkDefs[j].ChainID
	})

	if len(p.activeNetworkDefs) == 0 {
		p.logger.Warn("No token files found or no matching network definitions for token files in directory. No networks will be active.", "directory", tokenDataDir)
	} else {
		p.logger.Info(fmt.Sprintf("NetworkDefinitionProvider initialized. Active networks: %d", len(p.activeNetworkDefs)))
	}

	return p
}

// GetAllNetworkDefinitions returns the list of active network definitions.
func (p *NetworkDefinitionProvider) GetAllNetworkDefinitions() []entity.NetworkDefinition {
	if p == nil {
		return []entity.NetworkDefinition{}
	}
	defsCopy := make([]entity.NetworkDefinition, len(p.activeNetworkDefs))
	copy(defsCopy, p.activeNetworkDefs)
	return defsCopy
}

// GetNetworkDefinitionByChainID returns a specific network definition by its chain ID if it's active.
func (p *NetworkDefinitionProvider) GetNetworkDefinitionByChainID(chainID uint64) (entity.NetworkDefinition, bool) {
	if p == nil {
		return entity.NetworkDefinition{}, false
	}
	for _, def := range p.activeNetworkDefs {
		if def.ChainID == chainID {
			return def, true
		}
	}
	if _, known := p.knownChain(chainID); known {
		p.logger.Warn(fmt.Sprintf("Network with ChainID %d is known but has no token list; treating it as inactive.", chainID))
	}
	return entity.NetworkDefinition{}, false
}

func (p *NetworkDefinitionProvider) knownChain(chainID uint64) (entity.NetworkDefinition, bool) {
	for _, def := range p.allNetworkDefs {
		if def.ChainID == chainID {
			return def, true
		}
	}
	return entity.NetworkDefinition{}, false
}
