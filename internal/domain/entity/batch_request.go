package entity

import "math/big"

// BalanceRequestType defines the type of balance request.
type BalanceRequestType int

const (
	// NativeBalanceRequest requests the native balance of an account.
	NativeBalanceRequest BalanceRequestType = iota
	// TokenBalanceRequest requests the ERC-20 balance of an account.
	TokenBalanceRequest
)

// ZeroAddress represents the Ethereum zero address.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// BalanceRequestItem represents a single item in a batch request for balances.
// Index is the position of the currency in the caller's list.
type BalanceRequestItem struct {
	Index          int
	Type           BalanceRequestType
	AccountAddress string
	Currency       Currency
}

// BalanceResultItem represents the result of a single balance request from a batch.
type BalanceResultItem struct {
	Index   int
	Balance *big.Int
	Error   error
}

// RequestType picks the balance request kind for a currency.
func RequestType(c Currency) BalanceRequestType {
	if c.IsNative || c.Address == "" || c.Address == ZeroAddress {
		return NativeBalanceRequest
	}
	return TokenBalanceRequest
}
