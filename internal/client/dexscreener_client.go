package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	dexscreener_entity "asset_dashboard/internal/entity"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// DEXScreenerClient defines the interface for interacting with the DEX Screener API.
type DEXScreenerClient interface {
	GetTokenPairsByAddresses(ctx context.Context, dexscreenerChainID string, tokenAddresses []string) ([]dexscreener_entity.PairData, error)
}

// dexScreenerClientImpl is the implementation of DEXScreenerClient.
type dexScreenerClientImpl struct {
	getter
	baseURL             string
	maxTokensPerRequest int
}

// NewDEXScreenerClient creates a new instance of dexScreenerClientImpl.
func NewDEXScreenerClient(baseURL string, timeout time.Duration, logger *zap.Logger, maxTokensPerRequest int) DEXScreenerClient {
	return &dexScreenerClientImpl{
		getter: getter{
			client:  &fasthttp.Client{},
			timeout: timeout,
			logger:  logger.Named("DEXScreenerClient"),
		},
		baseURL:             strings.TrimRight(baseURL, "/"),
		maxTokensPerRequest: maxTokensPerRequest,
	}
}

// GetTokenPairsByAddresses implements the DEXScreenerClient interface.
func (c *dexScreenerClientImpl) GetTokenPairsByAddresses(ctx context.Context, dexscreenerChainID string, tokenAddresses []string) ([]dexscreener_entity.PairData, error) {
	if len(tokenAddresses) == 0 {
		return nil, fmt.Errorf("tokenAddresses cannot be empty")
	}
	if len(tokenAddresses) > c.maxTokensPerRequest {
		c.logger.Warn("Number of token addresses exceeds maxTokensPerRequest",
			zap.Int("requestedCount", len(tokenAddresses)),
			zap.Int("maxAllowed", c.maxTokensPerRequest))
		return nil, fmt.Errorf("number of token addresses (%d) exceeds max tokens per request (%d)", len(tokenAddresses), c.maxTokensPerRequest)
	}

	requestURL := fmt.Sprintf("%s/tokens/v1/%s/%s", c.baseURL, dexscreenerChainID, strings.Join(tokenAddresses, ","))
	rawBody, err := c.get(ctx, requestURL)
	if err != nil {
		return nil, err
	}

	// The endpoint answers with a bare array; older deployments wrap it.
	var wrapped dexscreener_entity.DEXTokenPair
	if err := json.Unmarshal(rawBody, &wrapped); err == nil && wrapped.Pairs != nil {
		return wrapped.Pairs, nil
	}

	var directPairs []dexscreener_entity.PairData
	if err := json.Unmarshal(rawBody, &directPairs); err != nil {
		c.logger.Error("Failed to unmarshal DEX Screener response",
			zap.String("url", requestURL),
			zap.ByteString("responseBody", rawBody),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to unmarshal DEX Screener response from %s: %w", requestURL, err)
	}

	if len(directPairs) == 0 {
		c.logger.Warn("DEXScreener returned 200 OK with an empty array of pairs",
			zap.String("url", requestURL),
			zap.String("dexscreenerChainID", dexscreenerChainID))
	}
	return directPairs, nil
}
