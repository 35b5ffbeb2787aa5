package tokenloader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"asset_dashboard/internal/app/port"
	"asset_dashboard/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
	jsoniter "github.com/json-iterator/go"
)

const defaultTokenDirectoryPath = "data/tokens"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// TokenFileLoader implements the port.TokenProvider interface.
type TokenFileLoader struct {
	tokenDirPath string
	logger       port.Logger
}

// NewTokenLoader creates a new TokenFileLoader reading <identifier>.json files from dir.
func NewTokenLoader(dir string, logger port.Logger) port.TokenProvider {
	if dir == "" {
		dir = defaultTokenDirectoryPath
	}
	return &TokenFileLoader{
		tokenDirPath: dir,
		logger:       logger,
	}
}

// GetTokensByNetwork scans the token directory, reads JSON files for active networks,
// parses them into TokenInfo slices and validates chain IDs and addresses.
// The result is keyed by chain ID in decimal form.
func (l *TokenFileLoader) GetTokensByNetwork(activeNetworkDefs []entity.NetworkDefinition) (map[string][]entity.TokenInfo, error) {
	tokensByChainID := make(map[string][]entity.TokenInfo)

	files, err := os.ReadDir(l.tokenDirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read token directory %s: %w", l.tokenDirPath, err)
	}

	activeNetworksMap := make(map[string]entity.NetworkDefinition)
	for _, netDef := range activeNetworkDefs {
		activeNetworksMap[netDef.Identifier] = netDef
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(strings.ToLower(file.Name()), ".json") {
			continue
		}

		identifier := strings.TrimSuffix(strings.ToLower(file.Name()), ".json")
		networkDef, isActive := activeNetworksMap[identifier]
		if !isActive {
			l.logger.Debug("Token file found for a non-active network, skipping", "file", file.Name())
			continue
		}

		filePath := filepath.Join(l.tokenDirPath, file.Name())
		data, err := os.ReadFile(filePath)
		if err != nil {
			l.logger.Warn("Failed to read token file, skipping file", "path", filePath, "error", err)
			continue
		}

		var tokensInFile []entity.TokenInfo
		if err := json.Unmarshal(data, &tokensInFile); err != nil {
			l.logger.Warn("Failed to unmarshal tokens from file, skipping file", "path", filePath, "error", err)
			continue
		}

		chainKey := fmt.Sprintf("%d", networkDef.ChainID)
		seen := make(map[string]struct{}, len(tokensInFile))
		for _, token := range tokensInFile {
			if token.ChainID != networkDef.ChainID {
				l.logger.Warn("Token has mismatched ChainID in file, skipping token",
					"file", filePath, "token_symbol", token.Symbol,
					"token_chain_id", token.ChainID, "expected_chain_id", networkDef.ChainID)
				continue
			}
			if !common.IsHexAddress(token.Address) {
				l.logger.Warn("Token has an invalid address, skipping token", "file", filePath, "token_symbol", token.Symbol, "address", token.Address)
				continue
			}
			id := entity.NormalizeID(token.Address)
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			tokensByChainID[chainKey] = append(tokensByChainID[chainKey], token)
		}

		l.logger.Info("Loaded tokens for network",
			"network_identifier", networkDef.Identifier,
			"file", file.Name(),
			"count", len(tokensByChainID[chainKey]))
	}

	return tokensByChainID, nil
}
