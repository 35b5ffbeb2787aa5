package walletloader

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"asset_dashboard/internal/app/port"

	"github.com/ethereum/go-ethereum/common"
)

// WatchlistLoader implements port.AccountProvider by reading one account per line.
// Blank lines and lines starting with # are ignored.
type WatchlistLoader struct {
	filePath string
	logger   port.Logger
}

// NewWatchlistLoader creates a new WatchlistLoader.
func NewWatchlistLoader(filePath string, logger port.Logger) port.AccountProvider {
	return &WatchlistLoader{
		filePath: filePath,
		logger:   logger,
	}
}

// GetAccounts reads checksummed, de-duplicated account addresses from the file.
func (l *WatchlistLoader) GetAccounts() ([]string, error) {
	file, err := os.Open(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open watchlist file %s: %w", l.filePath, err)
	}
	defer file.Close()

	var accounts []string
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !common.IsHexAddress(line) {
			l.logger.Warn("Skipping invalid account address", "file", l.filePath, "line_number", lineNum, "address", line)
			continue
		}
		account := common.HexToAddress(line).Hex()
		if _, dup := seen[account]; dup {
			continue
		}
		seen[account] = struct{}{}
		accounts = append(accounts, account)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning watchlist file %s: %w", l.filePath, err)
	}

	l.logger.Info("Watchlist loaded", "count", len(accounts), "path", l.filePath)
	return accounts, nil
}
