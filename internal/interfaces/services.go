// Package interfaces defines service contracts for FundWatch
package interfaces

import (
	"context"

	"github.com/fundwatch/fundwatch/internal/models"
)

// FundService manages tracked funds and their real-time estimates.
type FundService interface {
	// GetFund retrieves a tracked fund's metadata.
	GetFund(ctx context.Context, fundCode string) (*models.Fund, error)

	// GetHoldings retrieves a fund's current disclosed holding set.
	GetHoldings(ctx context.Context, fundCode string) (*models.FundHoldings, error)

	// GetEstimate computes the fund's real-time NAV estimate from cached or
	// freshly fetched quotes. Missing quotes or holdings yield a degraded
	// (not failed) estimate.
	GetEstimate(ctx context.Context, fundCode string) (*models.FundEstimate, error)

	// SetupFund fetches the fund's NAV and holdings from the provider and
	// persists them. Idempotent when the fund is already tracked.
	SetupFund(ctx context.Context, fundCode string) (*models.Fund, error)

	// RefreshNAV re-fetches the fund's published NAV from the provider.
	RefreshNAV(ctx context.Context, fundCode string) (*models.Fund, error)

	// NAVHistory returns the fund's published NAV series for a period
	// ("7d", "30d", "ytd", "1y", "3y"), oldest first. A provider failure
	// yields an empty series rather than an error.
	NAVHistory(ctx context.Context, fundCode, period string) (*models.FundNAVHistory, error)

	// Intraday returns today's captured estimate samples for the fund.
	Intraday(ctx context.Context, fundCode string) (*models.FundIntraday, error)

	// RecordEstimate samples the fund's current estimate into the intraday
	// series. Degraded estimates are not recorded.
	RecordEstimate(ctx context.Context, fundCode string) error

	// Search finds funds in the provider catalog by code or name substring.
	Search(ctx context.Context, query string, limit int) ([]models.CatalogEntry, error)
}

// PortfolioService manages portfolios and their aggregated valuations.
type PortfolioService interface {
	// CRUD
	CreatePortfolio(ctx context.Context, name string) (*models.Portfolio, error)
	ListPortfolios(ctx context.Context) ([]*models.Portfolio, error)
	RenamePortfolio(ctx context.Context, id, name string) (*models.Portfolio, error)
	DeletePortfolio(ctx context.Context, id string) error
	AddFund(ctx context.Context, id, fundCode string, shares, costNAV float64) (*models.Portfolio, error)
	RemoveFund(ctx context.Context, id, fundCode string) (*models.Portfolio, error)

	// GetDetail aggregates per-fund estimates into portfolio-level cost,
	// value, and profit. Degraded funds contribute zero value without
	// failing the computation.
	GetDetail(ctx context.Context, id string) (*models.PortfolioDetail, error)

	// GetCombinedHoldings computes cross-fund stock exposure weighted by
	// each fund's share of portfolio value.
	GetCombinedHoldings(ctx context.Context, id string) (*models.CombinedHoldingsResult, error)

	// History returns the portfolio's daily snapshot series for a period
	// ("7d", "30d", "ytd", "1y").
	History(ctx context.Context, id, period string) (*models.PortfolioHistory, error)

	// Snapshot captures today's aggregate value for one portfolio,
	// replacing any snapshot already written for the day.
	Snapshot(ctx context.Context, id string) (*models.PortfolioSnapshot, error)

	// SnapshotAll captures today's snapshot for every portfolio. Returns
	// the number captured; individual portfolio failures are logged and
	// skipped.
	SnapshotAll(ctx context.Context) (int, error)
}
