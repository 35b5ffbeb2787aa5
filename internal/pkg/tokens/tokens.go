package tokens

import (
	"strings"

	"asset_dashboard/internal/domain/entity"
)

// ToErc20Address maps the native asset sentinel of chain to its wrapped ERC-20
// address. Any other identifier is returned unchanged.
func ToErc20Address(tokenAddress string, chain entity.NetworkDefinition) string {
	checkedAddress := tokenAddress
	if strings.EqualFold(tokenAddress, "ETH") || (chain.NativeSymbol != "" && strings.EqualFold(tokenAddress, chain.NativeSymbol)) {
		if chain.WrappedNativeTokenAddress != "" {
			checkedAddress = chain.WrappedNativeTokenAddress
		}
	}
	return checkedAddress
}
