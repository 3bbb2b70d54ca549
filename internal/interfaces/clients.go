// Package interfaces defines service contracts for FundWatch
package interfaces

import (
	"context"

	"github.com/fundwatch/fundwatch/internal/models"
)

// MarketDataClient fetches live market data from the external provider.
// All methods are synchronous and may be slow or fail; callers treat a
// failure as "no data" and degrade rather than abort.
type MarketDataClient interface {
	// GetQuotes returns live quotes for the given stock codes. Stocks the
	// provider does not know are simply absent from the result; an
	// incomplete map is a valid response, not an error.
	GetQuotes(ctx context.Context, stockCodes []string) (map[string]models.Quote, error)

	// GetFundNAV returns the fund's latest published NAV and its date.
	GetFundNAV(ctx context.Context, fundCode string) (nav float64, navDate string, err error)

	// GetFundNAVHistory returns up to count recent published NAVs, newest
	// first, as the provider serves them.
	GetFundNAVHistory(ctx context.Context, fundCode string, count int) ([]models.NAVPoint, error)

	// GetFundHoldings returns the fund's disclosed top holdings for the
	// given year, newest report first.
	GetFundHoldings(ctx context.Context, fundCode, year string) ([]models.Holding, string, error)

	// GetFundCatalog returns the provider's full fund list (code, name,
	// type). Large and slow, so callers cache it.
	GetFundCatalog(ctx context.Context) ([]models.CatalogEntry, error)
}
