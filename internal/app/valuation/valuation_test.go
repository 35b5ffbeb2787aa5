package valuation

import (
	"math/big"
	"testing"

	"asset_dashboard/internal/domain/entity"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	eth   = entity.Currency{ID: "ETH", Symbol: "ETH", Name: "Ether", Decimals: 18, IsNative: true}
	hakka = entity.Currency{ID: "0x0e29e5abbb5fd88e28b2d355774e73bd47de3bcd", Symbol: "HAKKA", Name: "Hakka Finance", Decimals: 18}
	tokA  = entity.Currency{ID: "0x00000000000000000000000000000000000000aa", Symbol: "TKA", Name: "Token A", Decimals: 18}
	usdc  = entity.Currency{ID: "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", Symbol: "USDC", Name: "USD Coin", Decimals: 6}
)

func units(t *testing.T, c entity.Currency, value string) *entity.Amount {
	t.Helper()
	d := decimal.RequireFromString(value)
	return entity.NewAmount(c, d.Shift(int32(c.Decimals)).BigInt())
}

func prices(kv ...string) PriceMap {
	m := PriceMap{}
	for i := 0; i+1 < len(kv); i += 2 {
		m[entity.NormalizeID(kv[i])] = decimal.RequireFromString(kv[i+1])
	}
	return m
}

func TestDerive_KnownAndUnknownPrices(t *testing.T) {
	amounts := []*entity.Amount{units(t, eth, "2.0"), units(t, tokA, "100")}
	p := prices("ETH", "3000", hakka.ID, "1.2")

	rows := Derive(amounts, p, DefaultOptions(hakka))

	require.Len(t, rows, 2)
	assert.Equal(t, "ETH", rows[0].ID)
	assert.Equal(t, "5000.00", rows[0].Value)
	assert.True(t, rows[0].ValueKnown)
	assert.Equal(t, "2", rows[0].Balance)

	assert.Equal(t, tokA.ID, rows[1].ID)
	assert.Equal(t, "-", rows[1].Value)
	assert.False(t, rows[1].ValueKnown)
	assert.Equal(t, "100", rows[1].Balance)
}

func TestDerive_ExcludesZeroAndAbsentBalances(t *testing.T) {
	amounts := []*entity.Amount{
		entity.NewAmount(eth, big.NewInt(0)),
		nil,
		units(t, usdc, "10"),
	}
	rows := Derive(amounts, prices("ETH", "3000", hakka.ID, "2", usdc.ID, "1"), DefaultOptions(hakka))

	require.Len(t, rows, 1)
	assert.Equal(t, usdc.ID, rows[0].ID)
	assert.Equal(t, "5.00", rows[0].Value)
}

func TestDerive_EmptyWhenNothingHeld(t *testing.T) {
	rows := Derive([]*entity.Amount{entity.NewAmount(eth, big.NewInt(0))}, PriceMap{}, DefaultOptions(hakka))
	assert.Empty(t, rows)
}

func TestDerive_OrderingDescendingWithUnknownAsZero(t *testing.T) {
	amounts := []*entity.Amount{
		units(t, tokA, "1000000"), // unknown price, huge balance
		units(t, usdc, "12"),
		units(t, eth, "0.001"),
		units(t, hakka, "3"),
	}
	p := prices("ETH", "2000", hakka.ID, "1", usdc.ID, "1")

	rows := Derive(amounts, p, DefaultOptions(hakka))

	require.Len(t, rows, 4)
	ids := []string{rows[0].ID, rows[1].ID, rows[2].ID, rows[3].ID}
	assert.Equal(t, []string{usdc.ID, hakka.ID, "ETH", tokA.ID}, ids)
	assert.Equal(t, "-", rows[3].Value)
}

func TestDerive_UnknownReferencePriceMakesEveryValueUnknown(t *testing.T) {
	amounts := []*entity.Amount{units(t, eth, "1"), units(t, usdc, "5")}
	rows := Derive(amounts, prices("ETH", "3000", usdc.ID, "1"), DefaultOptions(hakka))

	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, "-", r.Value)
		assert.False(t, r.ValueKnown)
	}
	// stable order when every key is zero
	assert.Equal(t, "ETH", rows[0].ID)
}

func TestDerive_ReferenceRow(t *testing.T) {
	rows := Derive([]*entity.Amount{units(t, hakka, "1.5"), units(t, eth, "1")}, prices("ETH", "10", hakka.ID, "2"), DefaultOptions(hakka))

	require.Len(t, rows, 2)
	assert.Equal(t, "ETH", rows[0].ID)
	assert.Equal(t, "/swap/ETH", rows[0].SwapLink)

	ref := rows[1]
	assert.Equal(t, hakka.ID, ref.ID)
	assert.Empty(t, ref.SwapLink)
	assert.Equal(t, "1.50", ref.Balance)
	assert.Equal(t, "1.50", ref.Value)
	assert.Equal(t, "Hakka Finance (HAKKA)", ref.Label)
}

func TestValue_MatchesRoundedFormula(t *testing.T) {
	a := units(t, usdc, "7")
	v, ok := Value(a, prices(usdc.ID, "1.01", hakka.ID, "0.3"), hakka.ID)
	require.True(t, ok)
	assert.Equal(t, "23.57", v.StringFixed(2))

	_, ok = Value(nil, PriceMap{}, hakka.ID)
	assert.False(t, ok)
}

func TestSummarize_TotalAndChart(t *testing.T) {
	amounts := []*entity.Amount{units(t, eth, "1"), units(t, usdc, "100"), units(t, tokA, "5")}
	p := prices("ETH", "300", hakka.ID, "1", usdc.ID, "1")

	d := Summarize("0xabc", 1, amounts, p, DefaultOptions(hakka))

	assert.Equal(t, "HAKKA", d.Reference)
	assert.Equal(t, "400.00", d.Total)
	require.Len(t, d.Rows, 3)
	require.Len(t, d.Chart, 2)
	assert.Equal(t, "ETH", d.Chart[0].Symbol)
	assert.Equal(t, "75.00", d.Chart[0].Percent)
	assert.Equal(t, "25.00", d.Chart[1].Percent)
}

func TestSummarize_NoKnownValues(t *testing.T) {
	d := Summarize("0xabc", 1, []*entity.Amount{units(t, tokA, "5")}, PriceMap{}, DefaultOptions(hakka))
	assert.Equal(t, "0.00", d.Total)
	assert.Empty(t, d.Chart)
	assert.Len(t, d.Rows, 1)
}
