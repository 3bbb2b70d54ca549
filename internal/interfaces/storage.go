// Package interfaces defines service contracts for FundWatch
package interfaces

import (
	"context"
	"errors"

	"github.com/fundwatch/fundwatch/internal/models"
)

// ErrNotFound is returned when a referenced fund, portfolio, or holdings
// record does not exist in storage. It propagates to the caller as an
// explicit failure; handlers map it to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrInvalidInput is returned for malformed caller input (empty names,
// negative shares, unknown history periods). Handlers map it to HTTP 400.
var ErrInvalidInput = errors.New("invalid input")

// StorageManager coordinates all storage backends.
type StorageManager interface {
	FundStore() FundStore
	PortfolioStore() PortfolioStore
	SnapshotStore() SnapshotStore
	EstimateSnapshotStore() EstimateSnapshotStore

	// Lifecycle
	Close() error
}

// FundStore persists fund metadata and disclosed holdings.
type FundStore interface {
	GetFund(ctx context.Context, fundCode string) (*models.Fund, error)
	SaveFund(ctx context.Context, fund *models.Fund) error
	ListFunds(ctx context.Context) ([]*models.Fund, error)
	DeleteFund(ctx context.Context, fundCode string) error

	// UpdateNAV sets the fund's last published NAV and its date.
	UpdateNAV(ctx context.Context, fundCode string, nav float64, navDate string) error

	// GetHoldings returns the fund's current disclosed holding set, or
	// ErrNotFound when the fund has no holdings record.
	GetHoldings(ctx context.Context, fundCode string) (*models.FundHoldings, error)

	// ReplaceHoldings replaces the fund's holding set wholesale.
	ReplaceHoldings(ctx context.Context, holdings *models.FundHoldings) error
}

// EstimateSnapshotStore persists intraday fund estimate samples.
type EstimateSnapshotStore interface {
	// Upsert writes the sample keyed by (fund, date, time), replacing any
	// sample already taken in the same minute.
	Upsert(ctx context.Context, snapshot *models.EstimateSnapshot) error

	// ListByDate returns a fund's samples for one day, ordered by time.
	ListByDate(ctx context.Context, fundCode, date string) ([]*models.EstimateSnapshot, error)

	// DeleteBefore removes all samples with Date < date. Returns the number
	// removed.
	DeleteBefore(ctx context.Context, date string) (int, error)
}

// PortfolioStore persists user portfolios and their fund positions.
type PortfolioStore interface {
	GetPortfolio(ctx context.Context, id string) (*models.Portfolio, error)
	SavePortfolio(ctx context.Context, portfolio *models.Portfolio) error
	ListPortfolios(ctx context.Context) ([]*models.Portfolio, error)
	DeletePortfolio(ctx context.Context, id string) error
}

// SnapshotStore persists daily portfolio value snapshots.
type SnapshotStore interface {
	// Upsert writes the snapshot for its (portfolio, date) pair, replacing
	// any existing record for that day.
	Upsert(ctx context.Context, snapshot *models.PortfolioSnapshot) error

	// List returns a portfolio's snapshots with Date >= since (inclusive),
	// ordered ascending by date. since may be empty for the full history.
	List(ctx context.Context, portfolioID, since string) ([]*models.PortfolioSnapshot, error)

	// DeleteByPortfolio removes all snapshots for a portfolio.
	DeleteByPortfolio(ctx context.Context, portfolioID string) (int, error)
}
