package app

import (
	"context"
	"time"

	"github.com/fundwatch/fundwatch/internal/common"
)

// runQuoteRefresher warms the quote cache on a fixed interval during trading
// hours so the request path mostly hits the cache.
func (a *App) runQuoteRefresher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.Logger.Info().Msg("Quote refresher: stopped")
			return
		case <-ticker.C:
			if !common.IsTradingHours(time.Now()) {
				continue
			}
			a.refreshQuotes(ctx)
		}
	}
}

// refreshQuotes fetches live quotes for the union of all tracked funds'
// holdings into the cache.
func (a *App) refreshQuotes(ctx context.Context) {
	start := time.Now()

	funds, err := a.Storage.FundStore().ListFunds(ctx)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("Quote refresh: fund listing failed")
		return
	}

	seen := make(map[string]bool)
	var codes []string
	for _, fund := range funds {
		holdings, err := a.Storage.FundStore().GetHoldings(ctx, fund.FundCode)
		if err != nil {
			continue // funds without disclosed holdings have nothing to quote
		}
		for _, code := range holdings.StockCodes() {
			if !seen[code] {
				seen[code] = true
				codes = append(codes, code)
			}
		}
	}
	if len(codes) == 0 {
		return
	}

	refreshed, err := a.QuoteFeed.Refresh(ctx, codes)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("Quote refresh: provider fetch failed")
		return
	}

	// Sample each fund's estimate into its intraday series off the fresh
	// quotes. Per-fund failures are logged and skipped.
	for _, fund := range funds {
		if err := a.FundService.RecordEstimate(ctx, fund.FundCode); err != nil {
			a.Logger.Warn().Err(err).Str("fund", fund.FundCode).Msg("Quote refresh: estimate sample failed")
		}
	}

	a.Logger.Debug().
		Int("stocks", len(codes)).
		Int("refreshed", refreshed).
		Dur("elapsed", time.Since(start)).
		Msg("Quote refresh: complete")
}

// refreshNAVs re-fetches every tracked fund's published NAV. Per-fund
// failures are logged and skipped.
func (a *App) refreshNAVs(ctx context.Context) {
	funds, err := a.Storage.FundStore().ListFunds(ctx)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("NAV refresh: fund listing failed")
		return
	}

	refreshed := 0
	for _, fund := range funds {
		if _, err := a.FundService.RefreshNAV(ctx, fund.FundCode); err != nil {
			a.Logger.Warn().Err(err).Str("fund", fund.FundCode).Msg("NAV refresh: fund failed")
			continue
		}
		refreshed++
	}
	a.Logger.Debug().Int("funds", len(funds)).Int("refreshed", refreshed).Msg("NAV refresh: complete")
}

// runSnapshotJob wakes on a short interval and, once per trading day after
// market close, refreshes published NAVs and captures daily snapshots. The
// upsert keying makes a duplicate fire on the same day harmless.
func (a *App) runSnapshotJob(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastRun string
	for {
		select {
		case <-ctx.Done():
			a.Logger.Info().Msg("Snapshot job: stopped")
			return
		case <-ticker.C:
			now := time.Now()
			if !common.IsAfterClose(now) {
				continue
			}
			today := now.Format(common.DateLayout)
			if today == lastRun {
				continue
			}

			a.refreshNAVs(ctx)

			captured, err := a.PortfolioService.SnapshotAll(ctx)
			if err != nil {
				a.Logger.Error().Err(err).Msg("Snapshot job: failed")
				continue
			}
			// Intraday estimate samples are only served for the current
			// day; drop older ones.
			if pruned, err := a.Storage.EstimateSnapshotStore().DeleteBefore(ctx, today); err != nil {
				a.Logger.Warn().Err(err).Msg("Snapshot job: intraday prune failed")
			} else if pruned > 0 {
				a.Logger.Debug().Int("pruned", pruned).Msg("Snapshot job: intraday samples pruned")
			}

			lastRun = today
			a.Logger.Info().Str("date", today).Int("captured", captured).Msg("Snapshot job: complete")
		}
	}
}
