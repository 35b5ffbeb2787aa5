package port

import (
	"context"

	"asset_dashboard/internal/domain/entity"
)

// BalanceSource supplies on-chain balances for an account.
// The result is aligned positionally with currencies; a nil entry means the
// balance is not available (still loading or failed), never zero.
type BalanceSource interface {
	GetBalances(ctx context.Context, account string, currencies []entity.Currency) ([]*entity.Amount, error)
}

// BalanceSourceProvider resolves the balance source for a network.
type BalanceSourceProvider interface {
	GetBalanceSource(networkDefinition entity.NetworkDefinition) (BalanceSource, error)
}

// NetworkDefinitionProvider defines the interface for providing network definitions.
type NetworkDefinitionProvider interface {
	// GetAllNetworkDefinitions returns all active network definitions.
	GetAllNetworkDefinitions() []entity.NetworkDefinition

	// GetNetworkDefinitionByChainID returns the active definition for chainID.
	GetNetworkDefinitionByChainID(chainID uint64) (entity.NetworkDefinition, bool)
}
