package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const coinGeckoProAPIKeyHeader = "x-cg-pro-api-key"

// CoinGeckoClient defines the interface for interacting with the CoinGecko simple price API.
type CoinGeckoClient interface {
	// SimplePrice quotes coins by CoinGecko id. The result is keyed by lower-cased id.
	SimplePrice(ctx context.Context, ids []string, vsCurrency string) (map[string]decimal.Decimal, error)
	// TokenPrice quotes contracts of one asset platform. The result is keyed by lower-cased address.
	TokenPrice(ctx context.Context, platformID string, addresses []string, vsCurrency string) (map[string]decimal.Decimal, error)
}

type coinGeckoClientImpl struct {
	getter
	baseURL string
	limiter *rate.Limiter
}

// NewCoinGeckoClient creates a new CoinGecko client. requestsPerMinute <= 0 disables rate limiting.
func NewCoinGeckoClient(baseURL, apiKey string, timeout time.Duration, requestsPerMinute int, logger *zap.Logger) CoinGeckoClient {
	headers := map[string]string{}
	if apiKey != "" {
		headers[coinGeckoProAPIKeyHeader] = apiKey
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if requestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
	}
	return &coinGeckoClientImpl{
		getter: getter{
			client:  &fasthttp.Client{},
			timeout: timeout,
			headers: headers,
			logger:  logger.Named("CoinGeckoClient"),
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		limiter: limiter,
	}
}

// SimplePrice implements CoinGeckoClient.
func (c *coinGeckoClientImpl) SimplePrice(ctx context.Context, ids []string, vsCurrency string) (map[string]decimal.Decimal, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("ids cannot be empty")
	}
	query := url.Values{}
	query.Set("ids", strings.Join(ids, ","))
	query.Set("vs_currencies", vsCurrency)
	return c.fetch(ctx, c.baseURL+"/simple/price?"+query.Encode(), vsCurrency)
}

// TokenPrice implements CoinGeckoClient.
func (c *coinGeckoClientImpl) TokenPrice(ctx context.Context, platformID string, addresses []string, vsCurrency string) (map[string]decimal.Decimal, error) {
	if len(addresses) == 0 {
		return nil, fmt.Errorf("addresses cannot be empty")
	}
	if platformID == "" {
		return nil, fmt.Errorf("asset platform is not configured")
	}
	query := url.Values{}
	query.Set("contract_addresses", strings.ToLower(strings.Join(addresses, ",")))
	query.Set("vs_currencies", vsCurrency)
	requestURL := fmt.Sprintf("%s/simple/token_price/%s?%s", c.baseURL, url.PathEscape(platformID), query.Encode())
	return c.fetch(ctx, requestURL, vsCurrency)
}

// fetch decodes a {"<key>": {"<vs>": price}} payload. Keys without a quote
// in vsCurrency are left out.
func (c *coinGeckoClientImpl) fetch(ctx context.Context, requestURL, vsCurrency string) (map[string]decimal.Decimal, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("coingecko rate limiter: %w", err)
	}

	body, err := c.get(ctx, requestURL)
	if err != nil {
		return nil, err
	}

	var payload map[string]map[string]decimal.Decimal
	if err := json.Unmarshal(body, &payload); err != nil {
		c.logger.Error("Failed to unmarshal CoinGecko response", zap.String("url", requestURL), zap.ByteString("responseBody", body), zap.Error(err))
		return nil, fmt.Errorf("failed to unmarshal CoinGecko response from %s: %w", requestURL, err)
	}

	vs := strings.ToLower(vsCurrency)
	prices := make(map[string]decimal.Decimal, len(payload))
	for key, quotes := range payload {
		price, ok := quotes[vs]
		if !ok {
			continue
		}
		prices[strings.ToLower(key)] = price
	}
	c.logger.Debug("CoinGecko prices received", zap.Int("requested", strings.Count(requestURL, ",")+1), zap.Int("received", len(prices)))
	return prices, nil
}
