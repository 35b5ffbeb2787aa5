package entity

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Amount is an on-chain balance of one currency in its smallest unit.
type Amount struct {
	Currency Currency
	Raw      *big.Int
}

// NewAmount builds an Amount; a nil raw value is treated as zero.
func NewAmount(c Currency, raw *big.Int) *Amount {
	if raw == nil {
		raw = new(big.Int)
	}
	return &Amount{Currency: c, Raw: raw}
}

// IsZero reports whether the balance is exactly zero.
func (a *Amount) IsZero() bool {
	return a.Raw == nil || a.Raw.Sign() == 0
}

// Decimal returns the balance scaled by the currency decimals.
func (a *Amount) Decimal() decimal.Decimal {
	if a.Raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(a.Raw, -int32(a.Currency.Decimals))
}
