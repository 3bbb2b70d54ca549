package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/fundwatch/fundwatch/internal/interfaces"
	"github.com/fundwatch/fundwatch/internal/models"
)

// MockClient is a configurable MarketDataClient for tests. Unset fields
// return empty results. Call counts are tracked per method.
type MockClient struct {
	mu sync.Mutex

	Quotes        map[string]models.Quote
	QuotesErr     error
	NAV           float64
	NAVDate       string
	NAVErr        error
	NAVHistory    []models.NAVPoint // newest first, as the provider serves it
	NAVHistoryErr error
	Holdings      map[string][]models.Holding // keyed by year
	ReportDates   map[string]string           // keyed by year
	Catalog       []models.CatalogEntry
	CatalogErr    error

	QuoteCalls      int
	LastQuoteCodes  []string // codes passed to the most recent GetQuotes call
	NAVCalls        int
	NAVHistoryCalls int
	HoldingCalls    int
	CatalogCalls    int
}

func (c *MockClient) GetQuotes(_ context.Context, stockCodes []string) (map[string]models.Quote, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.QuoteCalls++
	c.LastQuoteCodes = append([]string(nil), stockCodes...)
	if c.QuotesErr != nil {
		return nil, c.QuotesErr
	}
	quotes := make(map[string]models.Quote)
	for _, code := range stockCodes {
		if quote, ok := c.Quotes[code]; ok {
			quotes[code] = quote
		}
	}
	return quotes, nil
}

func (c *MockClient) GetFundNAV(_ context.Context, fundCode string) (float64, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.NAVCalls++
	if c.NAVErr != nil {
		return 0, "", c.NAVErr
	}
	if c.NAV == 0 {
		return 0, "", fmt.Errorf("no NAV history for fund '%s'", fundCode)
	}
	return c.NAV, c.NAVDate, nil
}

func (c *MockClient) GetFundNAVHistory(_ context.Context, fundCode string, count int) ([]models.NAVPoint, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.NAVHistoryCalls++
	if c.NAVHistoryErr != nil {
		return nil, c.NAVHistoryErr
	}
	points := c.NAVHistory
	if count > 0 && count < len(points) {
		points = points[:count]
	}
	return append([]models.NAVPoint(nil), points...), nil
}

func (c *MockClient) GetFundHoldings(_ context.Context, fundCode, year string) ([]models.Holding, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.HoldingCalls++
	return c.Holdings[year], c.ReportDates[year], nil
}

func (c *MockClient) GetFundCatalog(_ context.Context) ([]models.CatalogEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CatalogCalls++
	if c.CatalogErr != nil {
		return nil, c.CatalogErr
	}
	return c.Catalog, nil
}

var _ interfaces.MarketDataClient = (*MockClient)(nil)
