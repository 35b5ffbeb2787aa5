package service

import (
	"context"
	"math/big"
	"sort"
	"sync"

	"asset_dashboard/internal/domain/entity"

	"github.com/shopspring/decimal"
)

var (
	testNetwork = entity.NetworkDefinition{
		ChainID:                   1,
		Name:                      "Ethereum Mainnet",
		Identifier:                "ethereum",
		NativeSymbol:              "ETH",
		NativeName:                "Ether",
		Decimals:                  18,
		CoinGeckoPlatformID:       "ethereum",
		CoinGeckoNativeID:         "ethereum",
		WrappedNativeTokenAddress: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
		ReferenceTokenAddress:     "0x0E29e5AbbB5FD88e28b2d355774e73BD47dE3bcd",
	}
	testEth   = testNetwork.NativeCurrency()
	testHakka = entity.TokenInfo{ChainID: 1, Address: "0x0E29e5AbbB5FD88e28b2d355774e73BD47dE3bcd", Name: "Hakka Finance", Symbol: "HAKKA", Decimals: 18}.Currency()
	testUSDC  = entity.TokenInfo{ChainID: 1, Address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", Name: "USD Coin", Symbol: "USDC", Decimals: 6}.Currency()
	testDAI   = entity.TokenInfo{ChainID: 1, Address: "0x6B175474E89094C44Da98b954EedeAC495271d0F", Name: "Dai Stablecoin", Symbol: "DAI", Decimals: 18}.Currency()
)

const testAccount = "0x1111111111111111111111111111111111111111"

func units(whole int64, decimals uint8) *big.Int {
	return new(big.Int).Mul(big.NewInt(whole), new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
}

func prices(kv ...any) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out[kv[i].(string)] = decimal.RequireFromString(kv[i+1].(string))
	}
	return out
}

// fakeBalances returns balances by currency ID; IDs without an entry are absent.
type fakeBalances struct {
	mu       sync.Mutex
	balances map[string]*big.Int
	err      error
	calls    int
}

func newFakeBalances(kv map[string]*big.Int) *fakeBalances {
	return &fakeBalances{balances: kv}
}

func (f *fakeBalances) set(id string, raw *big.Int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[id] = raw
}

func (f *fakeBalances) GetBalances(_ context.Context, _ string, currencies []entity.Currency) ([]*entity.Amount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*entity.Amount, len(currencies))
	for i, c := range currencies {
		if raw, ok := f.balances[c.ID]; ok {
			out[i] = entity.NewAmount(c, raw)
		}
	}
	return out, nil
}

// fakePrices records every request. When a gate channel is set the fetch
// waits for it (or for cancellation) and still returns its result.
type fakePrices struct {
	mu sync.Mutex

	reference     map[string]decimal.Decimal
	referenceErr  error
	referenceGate chan struct{}
	// referenceIgnoresAbort makes the gated fetch wait for the gate even
	// after cancellation, like a client that cannot abort a request.
	referenceIgnoresAbort bool
	referenceCalls        int

	tokens       map[string]decimal.Decimal
	tokenErr     error
	tokenGate    chan struct{}
	tokenCalls   [][]string
	tokenStarted chan struct{}
}

func (f *fakePrices) Name() string { return "fake" }

func (f *fakePrices) FetchReferencePrices(ctx context.Context, _ entity.NetworkDefinition, native, reference entity.Currency) (map[string]decimal.Decimal, error) {
	f.mu.Lock()
	f.referenceCalls++
	gate, ignoresAbort := f.referenceGate, f.referenceIgnoresAbort
	f.mu.Unlock()

	if gate != nil && ignoresAbort {
		<-gate
	} else if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.referenceErr != nil {
		return nil, f.referenceErr
	}
	out := make(map[string]decimal.Decimal)
	for _, id := range []string{native.ID, reference.ID} {
		if p, ok := f.reference[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (f *fakePrices) FetchTokenPrices(_ context.Context, _ entity.NetworkDefinition, tokens []entity.Currency) (map[string]decimal.Decimal, error) {
	ids := make([]string, 0, len(tokens))
	for _, t := range tokens {
		ids = append(ids, t.ID)
	}
	sort.Strings(ids)

	f.mu.Lock()
	f.tokenCalls = append(f.tokenCalls, ids)
	gate, started := f.tokenGate, f.tokenStarted
	f.mu.Unlock()

	if started != nil {
		close(started)
	}
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tokenErr != nil {
		return nil, f.tokenErr
	}
	out := make(map[string]decimal.Decimal)
	for _, id := range ids {
		if p, ok := f.tokens[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (f *fakePrices) referenceCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.referenceCalls
}

func (f *fakePrices) tokenRequests() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]string, len(f.tokenCalls))
	copy(out, f.tokenCalls)
	return out
}

func (f *fakePrices) setTokenResult(tokens map[string]decimal.Decimal, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = tokens
	f.tokenErr = err
}
