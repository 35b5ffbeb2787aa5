package format

import (
	"math/big"

	"asset_dashboard/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// LongPrecision is the number of significant digits used by the currency list.
const LongPrecision = 10

const (
	// Placeholder is rendered when an amount or price is not known.
	Placeholder = "-"
	// BelowAmountThreshold is rendered for amounts too small to display.
	BelowAmountThreshold = "<0.00001"
	// BelowPriceThreshold is rendered for prices too small to display.
	BelowPriceThreshold = "<0.0001"
)

var (
	minDisplayableAmount = decimal.New(1, -5)
	minDisplayablePrice  = decimal.New(1, -4)
)

// IsEmpty reports whether amount is missing or zero.
func IsEmpty(amount *entity.Amount) bool {
	return amount == nil || amount.IsZero()
}

// CurrencyAmount renders a balance. When fixed is nil the amount is shown with
// sigFigs significant digits, otherwise with exactly *fixed decimals.
func CurrencyAmount(amount *entity.Amount, sigFigs int, fixed *int) string {
	if amount == nil {
		return Placeholder
	}
	if amount.IsZero() {
		return "0"
	}

	d := amount.Decimal()
	if d.LessThan(minDisplayableAmount) {
		return BelowAmountThreshold
	}
	if fixed == nil {
		return ToSignificant(d, sigFigs)
	}
	return ToFixed(d, *fixed)
}

// Price renders a price with sigFigs significant digits.
func Price(price *decimal.Decimal, sigFigs int) string {
	if price == nil {
		return Placeholder
	}
	if price.Round(int32(sigFigs)).LessThan(minDisplayablePrice) {
		return BelowPriceThreshold
	}
	return ToSignificant(*price, sigFigs)
}

// Exact renders the amount with full precision.
func Exact(amount *entity.Amount) string {
	if amount == nil {
		return Placeholder
	}
	return amount.Decimal().String()
}

// ToSignificant rounds half-up to sigFigs significant digits and drops trailing zeros.
func ToSignificant(d decimal.Decimal, sigFigs int) string {
	if d.IsZero() {
		return "0"
	}
	if sigFigs <= 0 {
		sigFigs = 1
	}
	coefficient := new(big.Int).Abs(d.Coefficient())
	mostSignificant := len(coefficient.String()) + int(d.Exponent()) - 1
	return d.Round(int32(sigFigs - 1 - mostSignificant)).String()
}

// ToFixed rounds half-up to exactly places decimals, keeping trailing zeros.
func ToFixed(d decimal.Decimal, places int) string {
	if places < 0 {
		places = 0
	}
	return d.StringFixed(int32(places))
}
