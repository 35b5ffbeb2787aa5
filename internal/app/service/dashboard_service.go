package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"asset_dashboard/internal/app/picker"
	"asset_dashboard/internal/app/port"
	"asset_dashboard/internal/app/valuation"
	"asset_dashboard/internal/domain/entity"
	"asset_dashboard/internal/infrastructure/configloader"
	"asset_dashboard/internal/pkg/logger"

	"github.com/ethereum/go-ethereum/common"
)

// referenceSymbol is used to find the reference token in a token list when
// the network does not pin its address.
const referenceSymbol = "HAKKA"

// PickerCommand is one interaction with a view's currency picker.
type PickerCommand struct {
	Action   string `json:"action"`
	Mode     string `json:"mode,omitempty"`
	Currency string `json:"currency,omitempty"`
}

// DashboardService serves dashboards for (account, chain) pairs, keeping one
// valuation view open per pair.
type DashboardService struct {
	networks         port.NetworkDefinitionProvider
	tokens           port.TokenProvider
	balanceProviders port.BalanceSourceProvider
	prices           port.PriceSource
	logger           port.Logger
	dashboardCfg     configloader.DashboardConfig
	views            *ViewRegistry
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(
	networks port.NetworkDefinitionProvider,
	tokens port.TokenProvider,
	balanceProviders port.BalanceSourceProvider,
	prices port.PriceSource,
	log port.Logger,
	cfg *configloader.Config,
) *DashboardService {
	s := &DashboardService{
		networks:         networks,
		tokens:           tokens,
		balanceProviders: balanceProviders,
		prices:           prices,
		logger:           log,
		dashboardCfg:     cfg.Dashboard,
	}
	s.views = NewViewRegistry(
		time.Duration(cfg.Views.IdleTTLMinutes)*time.Minute,
		time.Duration(cfg.Views.CleanupIntervalMinutes)*time.Minute,
		s.newView,
	)
	return s
}

// Dashboard refreshes and returns the dashboard of account on chainID.
func (s *DashboardService) Dashboard(ctx context.Context, account string, chainID uint64) (entity.Dashboard, error) {
	view, err := s.acquire(ctx, account, chainID)
	if err != nil {
		return entity.Dashboard{}, err
	}
	return view.Refresh(ctx)
}

// Currencies returns the currency picker listing for account on chainID.
func (s *DashboardService) Currencies(ctx context.Context, account string, chainID uint64) ([]entity.ListedCurrency, error) {
	view, err := s.acquire(ctx, account, chainID)
	if err != nil {
		return nil, err
	}
	return view.Currencies(ctx)
}

// Picker applies cmd to the view's currency picker and returns its state.
func (s *DashboardService) Picker(ctx context.Context, account string, chainID uint64, cmd PickerCommand) (picker.State, error) {
	view, err := s.acquire(ctx, account, chainID)
	if err != nil {
		return picker.State{}, err
	}

	modal := view.Picker()
	switch strings.ToLower(cmd.Action) {
	case "open":
		mode, err := picker.ParseMode(cmd.Mode)
		if err != nil {
			return picker.State{}, fmt.Errorf("%w: %v", ErrInvalidPickerCommand, err)
		}
		modal.Open(mode)
	case "dismiss":
		modal.Dismiss()
	case "select":
		if cmd.Currency == "" {
			return picker.State{}, fmt.Errorf("%w: currency is required", ErrInvalidPickerCommand)
		}
		modal.Select(entity.NormalizeID(cmd.Currency))
	case "", "state":
	default:
		return picker.State{}, fmt.Errorf("%w: unknown action %q", ErrInvalidPickerCommand, cmd.Action)
	}
	return modal.State(), nil
}

// Disconnect tears down the view of account on chainID. It reports whether
// a view was open.
func (s *DashboardService) Disconnect(account string, chainID uint64) (bool, error) {
	normalized, err := normalizeAccount(account)
	if err != nil {
		return false, err
	}
	return s.views.Release(normalized, chainID), nil
}

// Networks returns the active networks.
func (s *DashboardService) Networks() []entity.NetworkDefinition {
	return s.networks.GetAllNetworkDefinitions()
}

// ReferenceCurrency resolves the reference currency of chainID.
func (s *DashboardService) ReferenceCurrency(chainID uint64) (entity.Currency, error) {
	network, ok := s.networks.GetNetworkDefinitionByChainID(chainID)
	if !ok {
		return entity.Currency{}, fmt.Errorf("%w: %d", entity.ErrUnknownNetwork, chainID)
	}
	_, reference, err := s.currencies(network)
	return reference, err
}

// Prewarm opens the views of accounts on chainID so their reference prices
// load before the first request. It returns how many views are open.
func (s *DashboardService) Prewarm(ctx context.Context, accounts []string, chainID uint64) int {
	opened := 0
	for _, account := range accounts {
		if ctx.Err() != nil {
			break
		}
		if _, err := s.acquire(ctx, account, chainID); err != nil {
			s.logger.Warn("Failed to prewarm dashboard", "account", account, "chainId", chainID, "error", err)
			continue
		}
		opened++
	}
	return opened
}

// Shutdown closes every open view.
func (s *DashboardService) Shutdown() {
	s.views.CloseAll()
}

func (s *DashboardService) acquire(ctx context.Context, account string, chainID uint64) (*ValuationView, error) {
	normalized, err := normalizeAccount(account)
	if err != nil {
		return nil, err
	}
	return s.views.Acquire(ctx, normalized, chainID)
}

// normalizeAccount validates a hex address and returns its checksummed form.
func normalizeAccount(account string) (string, error) {
	if !common.IsHexAddress(account) {
		return "", fmt.Errorf("%w: %q", entity.ErrInvalidAccount, account)
	}
	return common.HexToAddress(account).Hex(), nil
}

func (s *DashboardService) newView(_ context.Context, account string, chainID uint64) (*ValuationView, error) {
	network, ok := s.networks.GetNetworkDefinitionByChainID(chainID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", entity.ErrUnknownNetwork, chainID)
	}

	currencies, reference, err := s.currencies(network)
	if err != nil {
		return nil, err
	}

	balances, err := s.balanceProviders.GetBalanceSource(network)
	if err != nil {
		return nil, fmt.Errorf("balance source for chain %d: %w", chainID, err)
	}

	opts := valuation.DefaultOptions(reference)
	opts.BalanceSigFigs = s.dashboardCfg.BalanceSigFigs
	opts.ReferenceFixedDecimals = s.dashboardCfg.ReferenceFixedDecimals
	opts.ValuePrecision = s.dashboardCfg.ValuePrecision
	if s.dashboardCfg.SwapPath != "" {
		opts.SwapPath = s.dashboardCfg.SwapPath
	}

	viewLogger := logger.With(s.logger, "chainId", chainID)
	s.logger.Info("Opening valuation view", "account", account, "chainId", chainID, "currencies", len(currencies))
	return NewValuationView(ViewConfig{
		Account:    account,
		Network:    network,
		Currencies: currencies,
		Options:    opts,
	}, balances, s.prices, viewLogger), nil
}

// currencies returns the native currency followed by the chain's token list,
// plus the reference currency found in that list.
func (s *DashboardService) currencies(network entity.NetworkDefinition) ([]entity.Currency, entity.Currency, error) {
	tokensByChain, err := s.tokens.GetTokensByNetwork(s.networks.GetAllNetworkDefinitions())
	if err != nil {
		return nil, entity.Currency{}, fmt.Errorf("load tokens: %w", err)
	}
	tokens := tokensByChain[strconv.FormatUint(network.ChainID, 10)]

	currencies := make([]entity.Currency, 0, len(tokens)+1)
	currencies = append(currencies, network.NativeCurrency())

	var reference entity.Currency
	found := false
	referenceID := entity.NormalizeID(network.ReferenceTokenAddress)
	for _, token := range tokens {
		c := token.Currency()
		currencies = append(currencies, c)
		if found {
			continue
		}
		if (referenceID != "" && c.ID == referenceID) || (referenceID == "" && strings.EqualFold(c.Symbol, referenceSymbol)) {
			reference = c
			found = true
		}
	}
	if !found {
		return nil, entity.Currency{}, fmt.Errorf("%w: chain %d", entity.ErrReferenceNotConfigured, network.ChainID)
	}
	return currencies, reference, nil
}
