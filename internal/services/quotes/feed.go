// Package quotes provides the shared quote feed: a cache-first view over the
// market-data provider used by the estimate and aggregation paths and warmed
// by the background refresh job.
package quotes

import (
	"context"

	"github.com/fundwatch/fundwatch/internal/cache"
	"github.com/fundwatch/fundwatch/internal/common"
	"github.com/fundwatch/fundwatch/internal/interfaces"
	"github.com/fundwatch/fundwatch/internal/models"
)

// Feed serves stock quotes cache-first, batching cache misses into a single
// provider call.
type Feed struct {
	cache  *cache.Cache[models.Quote]
	client interfaces.MarketDataClient
	logger *common.Logger
}

// NewFeed creates a quote feed over the given cache and provider client.
func NewFeed(quoteCache *cache.Cache[models.Quote], client interfaces.MarketDataClient, logger *common.Logger) *Feed {
	return &Feed{
		cache:  quoteCache,
		client: client,
		logger: logger,
	}
}

// Fetch returns quotes for the given stock codes. Cached quotes are used as
// is; the misses are fetched from the provider in one batch and cached. A
// provider failure degrades the result to whatever the cache held rather
// than failing the caller: absent quotes are a normal, expected condition.
func (f *Feed) Fetch(ctx context.Context, stockCodes []string) map[string]models.Quote {
	result := make(map[string]models.Quote, len(stockCodes))
	seen := make(map[string]bool, len(stockCodes))
	var misses []string

	for _, code := range stockCodes {
		if seen[code] {
			continue
		}
		seen[code] = true
		if quote, ok := f.cache.Get(code); ok {
			result[code] = quote
		} else {
			misses = append(misses, code)
		}
	}

	if len(misses) == 0 {
		return result
	}

	fetched, err := f.client.GetQuotes(ctx, misses)
	if err != nil {
		f.logger.Warn().
			Err(err).
			Int("misses", len(misses)).
			Msg("Quote fetch failed, serving cached quotes only")
		return result
	}

	for code, quote := range fetched {
		f.cache.Set(code, quote)
		result[code] = quote
	}
	return result
}

// Refresh force-fetches the given codes from the provider into the cache,
// bypassing any cached values. Used by the background quote refresh job.
func (f *Feed) Refresh(ctx context.Context, stockCodes []string) (int, error) {
	if len(stockCodes) == 0 {
		return 0, nil
	}

	fetched, err := f.client.GetQuotes(ctx, stockCodes)
	if err != nil {
		return 0, err
	}
	for code, quote := range fetched {
		f.cache.Set(code, quote)
	}
	return len(fetched), nil
}
