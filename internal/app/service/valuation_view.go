package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"asset_dashboard/internal/app/picker"
	"asset_dashboard/internal/app/port"
	"asset_dashboard/internal/app/valuation"
	"asset_dashboard/internal/domain/entity"
	"asset_dashboard/internal/pkg/format"
	"asset_dashboard/internal/pkg/metrics"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	kindReference = "reference"
	kindToken     = "token"
)

// ViewConfig is the context a valuation view is opened for.
type ViewConfig struct {
	Account string
	Network entity.NetworkDefinition
	// Currencies is the native currency followed by the chain's token list.
	Currencies []entity.Currency
	Options    valuation.Options
}

// ValuationView owns the price cache and balances of one account on one chain.
// After Close no fetch completion touches its state.
type ValuationView struct {
	cfg      ViewConfig
	native   entity.Currency
	balances port.BalanceSource
	prices   port.PriceSource
	cache    *PriceCache
	picker   *picker.Modal
	logger   port.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	shutdown chan struct{}

	mu                 sync.Mutex
	closed             bool
	amounts            []*entity.Amount
	referenceAttempted bool
	referenceInFlight  chan struct{}
	heldSignature      string
}

// NewValuationView creates a view. Call Open to start the initial price fetch.
func NewValuationView(cfg ViewConfig, balances port.BalanceSource, prices port.PriceSource, logger port.Logger) *ValuationView {
	ctx, cancel := context.WithCancel(context.Background())
	v := &ValuationView{
		cfg:      cfg,
		native:   cfg.Network.NativeCurrency(),
		balances: balances,
		prices:   prices,
		cache:    NewPriceCache(),
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		shutdown: make(chan struct{}),
	}
	v.picker = picker.NewModal(
		func() { logger.Debug("Currency picker dismissed", "account", cfg.Account) },
		func(id string) { logger.Info("Currency selected", "account", cfg.Account, "currency", id) },
	)
	metrics.ActiveViews.Inc()
	return v
}

// Open starts the reference price fetch in the background unless both
// reference prices are already cached.
func (v *ValuationView) Open() {
	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		v.ensureReferencePrices(v.ctx)
	}()
}

// Refresh reloads balances, fetches any missing prices and returns the
// resulting dashboard. If the view is closed while fetching, the state as of
// teardown is returned.
func (v *ValuationView) Refresh(ctx context.Context) (entity.Dashboard, error) {
	if v.isClosed() {
		return entity.Dashboard{}, entity.ErrViewClosed
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(v.ctx, cancel)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v.ensureReferencePrices(gctx)
		return nil
	})
	g.Go(func() error {
		amounts := v.loadBalances(gctx)
		v.ensureTokenPrices(gctx, amounts)
		return nil
	})
	_ = g.Wait()

	return v.Dashboard(), nil
}

// Dashboard derives the dashboard from the current state without fetching.
func (v *ValuationView) Dashboard() entity.Dashboard {
	v.mu.Lock()
	amounts := v.amounts
	v.mu.Unlock()
	return valuation.Summarize(v.cfg.Account, v.cfg.Network.ChainID, amounts, v.cache, v.cfg.Options)
}

// Currencies lists every currency of the chain with the loaded balance.
// Balances are loaded first if the view has none yet.
func (v *ValuationView) Currencies(ctx context.Context) ([]entity.ListedCurrency, error) {
	if v.isClosed() {
		return nil, entity.ErrViewClosed
	}
	v.mu.Lock()
	amounts := v.amounts
	v.mu.Unlock()
	if amounts == nil {
		amounts = v.loadBalances(ctx)
	}

	listed := make([]entity.ListedCurrency, 0, len(v.cfg.Currencies))
	for i, c := range v.cfg.Currencies {
		item := entity.ListedCurrency{Currency: c, Balance: format.Placeholder}
		if i < len(amounts) && amounts[i] != nil {
			item.Balance = format.ToSignificant(amounts[i].Decimal(), format.LongPrecision)
			item.BalanceExact = format.Exact(amounts[i])
		}
		listed = append(listed, item)
	}
	return listed, nil
}

// Picker returns the view's currency picker modal.
func (v *ValuationView) Picker() *picker.Modal {
	return v.picker
}

// Prices returns a copy of the cached prices.
func (v *ValuationView) Prices() map[string]decimal.Decimal {
	return v.cache.Snapshot()
}

// Close tears the view down. It is idempotent and waits for background
// fetches, also when another caller started the teardown.
func (v *ValuationView) Close() {
	v.mu.Lock()
	first := !v.closed
	v.closed = true
	v.mu.Unlock()

	if first {
		v.cancel()
		v.wg.Wait()
		metrics.ActiveViews.Dec()
		v.logger.Debug("Valuation view closed", "account", v.cfg.Account, "chainId", v.cfg.Network.ChainID)
		close(v.shutdown)
	}
	<-v.shutdown
}

func (v *ValuationView) isClosed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}

func (v *ValuationView) loadBalances(ctx context.Context) []*entity.Amount {
	amounts, err := v.balances.GetBalances(ctx, v.cfg.Account, v.cfg.Currencies)
	if err != nil {
		metrics.BalanceFetches.WithLabelValues(v.cfg.Network.Name, metrics.OutcomeError).Inc()
		v.logger.Warn("Failed to load balances", "account", v.cfg.Account, "chainId", v.cfg.Network.ChainID, "error", err)
		amounts = make([]*entity.Amount, len(v.cfg.Currencies))
	} else {
		metrics.BalanceFetches.WithLabelValues(v.cfg.Network.Name, metrics.OutcomeSuccess).Inc()
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return amounts
	}
	v.amounts = amounts
	return amounts
}

// ensureReferencePrices fetches the native and reference prices together.
// Only one attempt is made per view; concurrent callers wait for it.
func (v *ValuationView) ensureReferencePrices(ctx context.Context) {
	reference := v.cfg.Options.Reference

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	if inFlight := v.referenceInFlight; inFlight != nil {
		v.mu.Unlock()
		select {
		case <-inFlight:
		case <-ctx.Done():
		}
		return
	}
	if v.referenceAttempted || (v.cache.Has(v.native.ID) && v.cache.Has(reference.ID)) {
		v.mu.Unlock()
		return
	}
	v.referenceAttempted = true
	done := make(chan struct{})
	v.referenceInFlight = done
	v.mu.Unlock()

	defer func() {
		v.mu.Lock()
		v.referenceInFlight = nil
		v.mu.Unlock()
		close(done)
	}()

	prices, err := v.prices.FetchReferencePrices(ctx, v.cfg.Network, v.native, reference)
	if err != nil {
		v.fetchFailed(kindReference, err)
		return
	}
	v.apply(kindReference, prices)
}

// ensureTokenPrices requests prices for held tokens missing from the cache.
// A failed attempt is not repeated until the set of held tokens changes,
// which includes a token going to zero and back. The reference token is
// priced by the reference fetch and never requested here.
func (v *ValuationView) ensureTokenPrices(ctx context.Context, amounts []*entity.Amount) {
	referenceID := v.cfg.Options.Reference.ID
	var held []string
	var missing []entity.Currency
	for _, a := range amounts {
		if format.IsEmpty(a) || a.Currency.IsNative {
			continue
		}
		held = append(held, a.Currency.ID)
		if a.Currency.ID != referenceID && !v.cache.Has(a.Currency.ID) {
			missing = append(missing, a.Currency)
		}
	}

	sort.Strings(held)
	signature := strings.Join(held, ",")

	v.mu.Lock()
	if v.closed || signature == v.heldSignature {
		v.mu.Unlock()
		return
	}
	v.heldSignature = signature
	v.mu.Unlock()

	if len(missing) == 0 {
		return
	}

	prices, err := v.prices.FetchTokenPrices(ctx, v.cfg.Network, missing)
	if err != nil {
		v.fetchFailed(kindToken, err)
		return
	}
	v.apply(kindToken, prices)
}

func (v *ValuationView) fetchFailed(kind string, err error) {
	if v.isClosed() {
		metrics.PriceFetches.WithLabelValues(v.prices.Name(), kind, metrics.OutcomeDiscarded).Inc()
		return
	}
	metrics.PriceFetches.WithLabelValues(v.prices.Name(), kind, metrics.OutcomeError).Inc()
	v.logger.Warn("Price fetch failed", "source", v.prices.Name(), "kind", kind, "chainId", v.cfg.Network.ChainID, "error", err)
}

// apply merges a fetch result unless the view was closed meanwhile.
func (v *ValuationView) apply(kind string, prices map[string]decimal.Decimal) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		metrics.PriceFetches.WithLabelValues(v.prices.Name(), kind, metrics.OutcomeDiscarded).Inc()
		return
	}
	n := v.cache.Merge(prices)
	metrics.PriceFetches.WithLabelValues(v.prices.Name(), kind, metrics.OutcomeSuccess).Inc()
	metrics.PricesMerged.Add(float64(n))
	v.logger.Debug("Prices merged", "kind", kind, "count", n, "cached", v.cache.Len())
}
