// Package valuation turns balances and prices into the ranked dashboard rows.
// Everything here is a pure function of its inputs.
package valuation

import (
	"sort"

	"asset_dashboard/internal/domain/entity"
	"asset_dashboard/internal/pkg/format"

	"github.com/shopspring/decimal"
)

// DefaultSwapPath is the route prefix of the swap flow.
const DefaultSwapPath = "/swap/"

// PriceLookup resolves a quote-currency price by normalized currency ID.
type PriceLookup interface {
	Get(id string) (decimal.Decimal, bool)
}

// PriceMap is a plain map implementation of PriceLookup.
type PriceMap map[string]decimal.Decimal

// Get implements PriceLookup.
func (m PriceMap) Get(id string) (decimal.Decimal, bool) {
	p, ok := m[entity.NormalizeID(id)]
	return p, ok
}

// Options controls how rows are rendered.
type Options struct {
	Reference entity.Currency
	// BalanceSigFigs is the significant digit count used for balances.
	BalanceSigFigs int
	// ReferenceFixedDecimals renders the reference currency balance with a
	// fixed decimal count. Negative disables it.
	ReferenceFixedDecimals int
	// ValuePrecision is the decimal count of reference-currency values.
	ValuePrecision int
	SwapPath       string
}

// DefaultOptions returns the dashboard defaults for reference.
func DefaultOptions(reference entity.Currency) Options {
	return Options{
		Reference:              reference,
		BalanceSigFigs:         4,
		ReferenceFixedDecimals: 2,
		ValuePrecision:         2,
		SwapPath:               DefaultSwapPath,
	}
}

// Value converts amount into reference units: balance × price / referencePrice.
// The second result is false when either price is unknown.
func Value(amount *entity.Amount, prices PriceLookup, referenceID string) (decimal.Decimal, bool) {
	if amount == nil {
		return decimal.Zero, false
	}
	price, ok := prices.Get(amount.Currency.ID)
	if !ok {
		return decimal.Zero, false
	}
	referencePrice, ok := prices.Get(referenceID)
	if !ok || referencePrice.Sign() <= 0 {
		return decimal.Zero, false
	}
	return amount.Decimal().Mul(price).Div(referencePrice), true
}

type ranked struct {
	amount *entity.Amount
	value  decimal.Decimal
	known  bool
}

// sortValue is the ordering key; unknown values rank as zero.
func (r ranked) sortValue() decimal.Decimal {
	if !r.known {
		return decimal.Zero
	}
	return r.value
}

func rank(amounts []*entity.Amount, prices PriceLookup, referenceID string) []ranked {
	items := make([]ranked, 0, len(amounts))
	for _, a := range amounts {
		if format.IsEmpty(a) {
			continue
		}
		v, known := Value(a, prices, referenceID)
		items = append(items, ranked{amount: a, value: v, known: known})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].sortValue().GreaterThan(items[j].sortValue())
	})
	return items
}

// Derive builds the visible rows: only present, non-zero balances, ordered by
// descending value.
func Derive(amounts []*entity.Amount, prices PriceLookup, opts Options) []entity.Row {
	items := rank(amounts, prices, opts.Reference.ID)
	rows := make([]entity.Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, buildRow(it, opts))
	}
	return rows
}

func buildRow(it ranked, opts Options) entity.Row {
	c := it.amount.Currency
	isReference := c.ID == opts.Reference.ID

	var fixed *int
	if isReference && opts.ReferenceFixedDecimals >= 0 {
		fixed = &opts.ReferenceFixedDecimals
	}

	row := entity.Row{
		ID:         c.ID,
		Symbol:     c.Symbol,
		Name:       c.Name,
		LogoURI:    c.LogoURI,
		Label:      c.Label(),
		Balance:    format.CurrencyAmount(it.amount, opts.BalanceSigFigs, fixed),
		Value:      format.Placeholder,
		ValueKnown: it.known,
	}
	if it.known {
		row.Value = format.ToFixed(it.value, opts.ValuePrecision)
	}
	if !isReference {
		swapPath := opts.SwapPath
		if swapPath == "" {
			swapPath = DefaultSwapPath
		}
		row.SwapLink = swapPath + c.ID
	}
	return row
}

// Summarize builds the whole dashboard: rows, total of known values and the
// chart slices of every row with a known positive value.
func Summarize(account string, chainID uint64, amounts []*entity.Amount, prices PriceLookup, opts Options) entity.Dashboard {
	items := rank(amounts, prices, opts.Reference.ID)

	dashboard := entity.Dashboard{
		Account:   account,
		ChainID:   chainID,
		Reference: opts.Reference.Symbol,
		Rows:      make([]entity.Row, 0, len(items)),
		Chart:     make([]entity.ChartSlice, 0, len(items)),
	}

	total := decimal.Zero
	for _, it := range items {
		dashboard.Rows = append(dashboard.Rows, buildRow(it, opts))
		if it.known {
			total = total.Add(it.value)
		}
	}
	dashboard.Total = format.ToFixed(total, opts.ValuePrecision)

	if total.Sign() <= 0 {
		return dashboard
	}
	hundred := decimal.NewFromInt(100)
	for _, it := range items {
		if !it.known || it.value.Sign() <= 0 {
			continue
		}
		dashboard.Chart = append(dashboard.Chart, entity.ChartSlice{
			Name:    it.amount.Currency.Name,
			Symbol:  it.amount.Currency.Symbol,
			Value:   format.ToFixed(it.value, opts.ValuePrecision),
			Percent: it.value.Mul(hundred).Div(total).StringFixed(2),
		})
	}
	return dashboard
}
