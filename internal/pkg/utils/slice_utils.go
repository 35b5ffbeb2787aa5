package utils

import (
	dexscreener_entity "asset_dashboard/internal/entity"
)

// BatchStrings splits items into batches of at most batchSize elements.
func BatchStrings(items []string, batchSize int) [][]string {
	if batchSize <= 0 {
		batchSize = len(items)
	}
	if len(items) == 0 {
		return [][]string{}
	}

	var batches [][]string
	for i := 0; i < len(items); i += batchSize {
		end := i + batchSize
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[i:end])
	}
	return batches
}

// SafeDerefFloat64 reads a liquidity field, returning 0 for a nil pointer.
func SafeDerefFloat64(liquidity *dexscreener_entity.DEXLiquidity, getter func(dexscreener_entity.DEXLiquidity) float64) float64 {
	if liquidity == nil {
		return 0.0
	}
	return getter(*liquidity)
}
