package service

import (
	"asset_dashboard/internal/domain/entity"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

// PriceCache maps normalized currency IDs to quote-currency prices for the
// lifetime of one valuation view. Entries never expire.
type PriceCache struct {
	prices *cache.Cache
}

// NewPriceCache creates an empty cache.
func NewPriceCache() *PriceCache {
	return &PriceCache{prices: cache.New(cache.NoExpiration, 0)}
}

// Merge writes every positive price, key by key, and returns how many were
// written. Keys missing from prices are left untouched.
func (c *PriceCache) Merge(prices map[string]decimal.Decimal) int {
	written := 0
	for id, price := range prices {
		if price.Sign() <= 0 || id == "" {
			continue
		}
		c.prices.Set(entity.NormalizeID(id), price, cache.NoExpiration)
		written++
	}
	return written
}

// Get implements valuation.PriceLookup.
func (c *PriceCache) Get(id string) (decimal.Decimal, bool) {
	x, found := c.prices.Get(entity.NormalizeID(id))
	if !found {
		return decimal.Zero, false
	}
	price, ok := x.(decimal.Decimal)
	return price, ok
}

// Has reports whether a price for id is known.
func (c *PriceCache) Has(id string) bool {
	_, ok := c.Get(id)
	return ok
}

// Len returns the number of cached prices.
func (c *PriceCache) Len() int {
	return c.prices.ItemCount()
}

// Snapshot copies the cache contents.
func (c *PriceCache) Snapshot() map[string]decimal.Decimal {
	items := c.prices.Items()
	out := make(map[string]decimal.Decimal, len(items))
	for id, item := range items {
		if price, ok := item.Object.(decimal.Decimal); ok {
			out[id] = price
		}
	}
	return out
}
