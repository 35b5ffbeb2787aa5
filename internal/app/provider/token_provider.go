package provider

import (
	"sync"

	"asset_dashboard/internal/app/port"
	"asset_dashboard/internal/domain/entity"
)

type tokenProviderImpl struct {
	loader      port.TokenProvider
	logger      port.Logger
	mu          sync.Mutex
	tokensCache map[string][]entity.TokenInfo
}

// NewTokenProvider wraps loader and caches its first successful result.
func NewTokenProvider(loader port.TokenProvider, logger port.Logger) port.TokenProvider {
	return &tokenProviderImpl{
		loader: loader,
		logger: logger,
	}
}

// GetTokensByNetwork loads token definitions for active networks.
// It caches the results after the first successful load.
func (p *tokenProviderImpl) GetTokensByNetwork(activeNetworkDefs []entity.NetworkDefinition) (map[string][]entity.TokenInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.tokensCache != nil {
		return p.tokensCache, nil
	}

	tokens, err := p.loader.GetTokensByNetwork(activeNetworkDefs)
	if err != nil {
		p.logger.Error("Failed to load tokens", "error", err)
		return nil, err
	}

	p.tokensCache = tokens
	p.logger.Info("Tokens loaded and cached successfully", "total_networks_with_tokens", len(tokens))
	return tokens, nil
}
