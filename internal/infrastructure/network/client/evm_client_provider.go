package client

import (
	"fmt"
	"sync"
	"time"

	"asset_dashboard/internal/app/port"
	"asset_dashboard/internal/domain/entity"
	"asset_dashboard/internal/infrastructure/configloader"
)

const defaultProviderConnectionTimeout = 10 * time.Second

// evmClientProvider implements port.BalanceSourceProvider with one cached
// EVMClient per chain.
type evmClientProvider struct {
	clients           map[uint64]*EVMClient
	mu                sync.Mutex
	logger            port.Logger
	connectionTimeout time.Duration
	rpcCallTimeout    time.Duration
	maxBatchSize      int
}

// EVMClientProvider is a port.BalanceSourceProvider that can release its clients.
type EVMClientProvider interface {
	port.BalanceSourceProvider
	Close()
}

// NewEVMClientProvider creates a new EVMClientProvider.
func NewEVMClientProvider(cfg *configloader.Config, logger port.Logger) EVMClientProvider {
	return &evmClientProvider{
		clients:           make(map[uint64]*EVMClient),
		logger:            logger,
		connectionTimeout: defaultProviderConnectionTimeout,
		rpcCallTimeout:    time.Duration(cfg.Performance.RPCCallTimeoutSeconds) * time.Second,
		maxBatchSize:      cfg.Performance.MaxAddressesPerBatchCall,
	}
}

// GetBalanceSource returns the cached client for netDef, creating it on first use.
func (p *evmClientProvider) GetBalanceSource(netDef entity.NetworkDefinition) (port.BalanceSource, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if client, exists := p.clients[netDef.ChainID]; exists {
		return client, nil
	}

	p.logger.Info("Creating new EVM client", "network", netDef.Name, "rpc_primary", netDef.PrimaryRPCURL)
	newClient, err := NewEVMClient(netDef, p.connectionTimeout, p.rpcCallTimeout, p.maxBatchSize, p.logger)
	if err != nil {
		p.logger.Error("Failed to create EVM client", "network", netDef.Name, "error", err)
		return nil, fmt.Errorf("failed to create EVM client for %s: %w", netDef.Name, err)
	}

	p.clients[netDef.ChainID] = newClient
	return newClient, nil
}

// Close releases every cached client.
func (p *evmClientProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, c := range p.clients {
		c.Close()
		delete(p.clients, id)
	}
}
