package pricesource

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"asset_dashboard/internal/domain/entity"
	dexscreener_entity "asset_dashboard/internal/entity"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	chain = entity.NetworkDefinition{
		ChainID:                   1,
		NativeSymbol:              "ETH",
		CoinGeckoPlatformID:       "ethereum",
		CoinGeckoNativeID:         "ethereum",
		DEXScreenerChainID:        "ethereum",
		WrappedNativeTokenAddress: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
	}
	weth  = "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"
	eth   = chain.NativeCurrency()
	hakka = entity.TokenInfo{Address: "0x0E29e5AbbB5FD88e28b2d355774e73BD47dE3bcd", Symbol: "HAKKA", Decimals: 18, CoinGeckoID: "hakka-finance"}.Currency()
	usdc  = entity.TokenInfo{Address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", Symbol: "USDC", Decimals: 6}.Currency()
	dai   = entity.TokenInfo{Address: "0x6B175474E89094C44Da98b954EedeAC495271d0F", Symbol: "DAI", Decimals: 18}.Currency()
)

type fakeCoinGecko struct {
	mu          sync.Mutex
	simpleCalls [][]string
	tokenCalls  [][]string
	quotes      map[string]decimal.Decimal
	failBatch   func(addresses []string) bool
}

func (f *fakeCoinGecko) SimplePrice(_ context.Context, ids []string, _ string) (map[string]decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.simpleCalls = append(f.simpleCalls, ids)
	out := map[string]decimal.Decimal{}
	for _, id := range ids {
		if p, ok := f.quotes[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (f *fakeCoinGecko) TokenPrice(_ context.Context, _ string, addresses []string, _ string) (map[string]decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokenCalls = append(f.tokenCalls, addresses)
	if f.failBatch != nil && f.failBatch(addresses) {
		return nil, errors.New("status 500")
	}
	out := map[string]decimal.Decimal{}
	for _, a := range addresses {
		if p, ok := f.quotes[a]; ok {
			out[strings.ToUpper(a[:2])+a[2:]] = p
		}
	}
	return out, nil
}

func TestCoinGecko_FetchReferencePricesInOneRequest(t *testing.T) {
	cg := &fakeCoinGecko{quotes: map[string]decimal.Decimal{
		"ethereum":      decimal.NewFromInt(3000),
		"hakka-finance": decimal.RequireFromString("1.2"),
	}}
	src := NewCoinGecko(cg, "USD", 30, zap.NewNop())

	prices, err := src.FetchReferencePrices(context.Background(), chain, eth, hakka)
	require.NoError(t, err)

	require.Len(t, cg.simpleCalls, 1)
	assert.ElementsMatch(t, []string{"ethereum", "hakka-finance"}, cg.simpleCalls[0])
	assert.Empty(t, cg.tokenCalls)
	assert.True(t, prices["ETH"].Equal(decimal.NewFromInt(3000)))
	assert.True(t, prices[hakka.ID].Equal(decimal.RequireFromString("1.2")))
}

func TestCoinGecko_ReferenceWithoutIDFallsBackToContract(t *testing.T) {
	cg := &fakeCoinGecko{quotes: map[string]decimal.Decimal{
		"ethereum": decimal.NewFromInt(3000),
		hakka.ID:   decimal.RequireFromString("1.2"),
	}}
	src := NewCoinGecko(cg, "usd", 30, zap.NewNop())
	ref := hakka
	ref.CoinGeckoID = ""

	prices, err := src.FetchReferencePrices(context.Background(), chain, eth, ref)
	require.NoError(t, err)
	assert.Len(t, cg.tokenCalls, 1)
	assert.Len(t, prices, 2)
}

func TestCoinGecko_FetchTokenPricesBatches(t *testing.T) {
	cg := &fakeCoinGecko{
		quotes: map[string]decimal.Decimal{
			usdc.ID: decimal.NewFromInt(1),
			dai.ID:  decimal.RequireFromString("0.999"),
		},
		failBatch: func(addresses []string) bool { return addresses[0] == hakka.ID },
	}
	src := NewCoinGecko(cg, "usd", 1, zap.NewNop())

	prices, err := src.FetchTokenPrices(context.Background(), chain, []entity.Currency{usdc, dai, hakka})
	require.NoError(t, err, "partial results are returned")
	assert.Len(t, cg.tokenCalls, 3)
	assert.Len(t, prices, 2)
	assert.Contains(t, prices, usdc.ID)
	assert.Contains(t, prices, dai.ID)

	_, err = src.FetchTokenPrices(context.Background(), chain, []entity.Currency{hakka})
	require.Error(t, err, "every batch failed")

	noPlatform := chain
	noPlatform.CoinGeckoPlatformID = ""
	_, err = src.FetchTokenPrices(context.Background(), noPlatform, []entity.Currency{usdc})
	require.Error(t, err)

	prices, err = src.FetchTokenPrices(context.Background(), chain, nil)
	require.NoError(t, err)
	assert.Empty(t, prices)
	assert.Equal(t, "coingecko", src.Name())
}

type fakeDEXScreener struct {
	mu    sync.Mutex
	calls [][]string
	pairs []dexscreener_entity.PairData
	err   error
}

func (f *fakeDEXScreener) GetTokenPairsByAddresses(_ context.Context, _ string, addresses []string) ([]dexscreener_entity.PairData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, addresses)
	if f.err != nil {
		return nil, f.err
	}
	return f.pairs, nil
}

func pair(base, quote, price string, liquidity float64) dexscreener_entity.PairData {
	return dexscreener_entity.PairData{
		PairAddress: base + quote,
		BaseToken:   dexscreener_entity.DEXToken{Address: base},
		QuoteToken:  dexscreener_entity.DEXToken{Symbol: quote},
		PriceUsd:    price,
		Liquidity:   &dexscreener_entity.DEXLiquidity{Usd: liquidity},
	}
}

func TestDEXScreener_SelectsStablecoinPairWithMostLiquidity(t *testing.T) {
	ds := &fakeDEXScreener{pairs: []dexscreener_entity.PairData{
		pair(usdc.Address, "WETH", "1.01", 1_000_000),
		pair(usdc.Address, "DAI", "0.999", 10_000),
		pair(usdc.Address, "USDT", "1.0002", 50_000),
		pair(dai.Address, "WETH", "0.998", 5_000),
		pair(dai.Address, "WETH", "0", 9_000_000),
	}}
	src := NewDEXScreener(ds, 30, zap.NewNop())

	prices, err := src.FetchTokenPrices(context.Background(), chain, []entity.Currency{usdc, dai, hakka})
	require.NoError(t, err)

	assert.Equal(t, "1.0002", prices[usdc.ID].String())
	assert.Equal(t, "0.998", prices[dai.ID].String())
	assert.NotContains(t, prices, hakka.ID)
}

func TestDEXScreener_FetchReferencePricesUsesWrappedNative(t *testing.T) {
	ds := &fakeDEXScreener{pairs: []dexscreener_entity.PairData{
		pair("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", "USDC", "3000", 1e8),
		pair(hakka.Address, "WETH", "1.2", 1e4),
	}}
	src := NewDEXScreener(ds, 30, zap.NewNop())

	prices, err := src.FetchReferencePrices(context.Background(), chain, eth, hakka)
	require.NoError(t, err)

	require.Len(t, ds.calls, 1)
	assert.Equal(t, []string{weth, hakka.ID}, ds.calls[0])
	assert.Equal(t, "3000", prices["ETH"].String())
	assert.Equal(t, "1.2", prices[hakka.ID].String())
}

func TestDEXScreener_Errors(t *testing.T) {
	ds := &fakeDEXScreener{err: errors.New("timeout")}
	src := NewDEXScreener(ds, 30, zap.NewNop())

	_, err := src.FetchTokenPrices(context.Background(), chain, []entity.Currency{usdc})
	require.Error(t, err)
	_, err = src.FetchReferencePrices(context.Background(), chain, eth, hakka)
	require.Error(t, err)

	noWrapped := chain
	noWrapped.WrappedNativeTokenAddress = ""
	_, err = src.FetchReferencePrices(context.Background(), noWrapped, noWrapped.NativeCurrency(), hakka)
	require.Error(t, err)
	assert.Equal(t, "dexscreener", src.Name())
}
