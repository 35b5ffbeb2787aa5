package port

import (
	"context"

	"asset_dashboard/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// TokenProvider defines the interface for fetching token definitions.
type TokenProvider interface {
	// GetTokensByNetwork returns a map of chain ID (as string) to the token list of each active network.
	GetTokensByNetwork(activeNetworkDefs []entity.NetworkDefinition) (map[string][]entity.TokenInfo, error)
}

// PriceSource quotes currencies in the configured quote currency.
// Returned maps are keyed by normalized currency ID; currencies without a
// quote are simply absent.
type PriceSource interface {
	// FetchReferencePrices prices the native asset and the reference token in one request.
	FetchReferencePrices(ctx context.Context, chain entity.NetworkDefinition, native entity.Currency, reference entity.Currency) (map[string]decimal.Decimal, error)
	// FetchTokenPrices prices a batch of ERC-20 tokens.
	FetchTokenPrices(ctx context.Context, chain entity.NetworkDefinition, tokens []entity.Currency) (map[string]decimal.Decimal, error)
	// Name identifies the source in logs and metrics.
	Name() string
}
