// Package fund implements the fund service: tracked fund lookups, real-time
// NAV estimates, provider-backed setup and refresh, and catalog search.
package fund

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fundwatch/fundwatch/internal/cache"
	"github.com/fundwatch/fundwatch/internal/common"
	"github.com/fundwatch/fundwatch/internal/interfaces"
	"github.com/fundwatch/fundwatch/internal/models"
	"github.com/fundwatch/fundwatch/internal/services/estimator"
	"github.com/fundwatch/fundwatch/internal/services/quotes"
)

const (
	catalogCacheKey    = "catalog"
	maxHoldings        = 10
	defaultSearchLimit = 20
)

// Service implements interfaces.FundService.
type Service struct {
	storage interfaces.StorageManager
	client  interfaces.MarketDataClient
	feed    *quotes.Feed
	catalog *cache.Cache[[]models.CatalogEntry]
	logger  *common.Logger
	now     func() time.Time
}

// NewService creates a fund service.
func NewService(storage interfaces.StorageManager, client interfaces.MarketDataClient, feed *quotes.Feed, catalogCache *cache.Cache[[]models.CatalogEntry], logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		client:  client,
		feed:    feed,
		catalog: catalogCache,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *Service) GetFund(ctx context.Context, fundCode string) (*models.Fund, error) {
	return s.storage.FundStore().GetFund(ctx, fundCode)
}

func (s *Service) GetHoldings(ctx context.Context, fundCode string) (*models.FundHoldings, error) {
	return s.storage.FundStore().GetHoldings(ctx, fundCode)
}

// GetEstimate computes the fund's real-time NAV estimate. An unknown fund is
// an error; missing holdings or quotes degrade the estimate instead.
func (s *Service) GetEstimate(ctx context.Context, fundCode string) (*models.FundEstimate, error) {
	fund, err := s.GetFund(ctx, fundCode)
	if err != nil {
		return nil, err
	}

	var holdingList []models.Holding
	holdings, err := s.GetHoldings(ctx, fundCode)
	if err != nil {
		if !errors.Is(err, interfaces.ErrNotFound) {
			return nil, err
		}
		s.logger.Debug().Str("fund", fundCode).Msg("No holdings on record, estimate degrades")
	} else {
		holdingList = holdings.Holdings
	}

	var quoteMap map[string]models.Quote
	if len(holdingList) > 0 {
		quoteMap = s.feed.Fetch(ctx, holdings.StockCodes())
	}

	result := estimator.Estimate(fund.LastNAV, holdingList, quoteMap)

	s.logger.Debug().
		Str("fund", fundCode).
		Float64("est_change_pct", result.EstChangePct).
		Float64("coverage", result.Coverage).
		Bool("degraded", result.Degraded()).
		Msg("Estimate computed")

	details := result.Details
	if result.Degraded() {
		// Degraded estimates carry no detail rows, only the fallback NAV.
		details = []models.EstimateDetail{}
	}

	return &models.FundEstimate{
		FundCode:     fund.FundCode,
		FundName:     fund.FundName,
		EstNAV:       result.EstNAV,
		EstChangePct: result.EstChangePct,
		LastNAV:      result.LastNAV,
		Coverage:     result.Coverage,
		Degraded:     result.Degraded(),
		Details:      details,
	}, nil
}

// SetupFund fetches the fund's published NAV and most recent disclosed
// holdings from the provider and persists both. Safe to call again for an
// already tracked fund: NAV and holdings are replaced wholesale.
func (s *Service) SetupFund(ctx context.Context, fundCode string) (*models.Fund, error) {
	nav, navDate, err := s.client.GetFundNAV(ctx, fundCode)
	if err != nil {
		return nil, fmt.Errorf("fund setup '%s': %w", fundCode, err)
	}

	fund := &models.Fund{
		FundCode: fundCode,
		LastNAV:  nav,
		NAVDate:  navDate,
	}
	if entry := s.lookupCatalog(ctx, fundCode); entry != nil {
		fund.FundName = entry.FundName
		fund.FundType = entry.FundType
	} else if existing, err := s.GetFund(ctx, fundCode); err == nil {
		fund.FundName = existing.FundName
		fund.FundType = existing.FundType
	}

	if err := s.storage.FundStore().SaveFund(ctx, fund); err != nil {
		return nil, err
	}

	holdings, reportDate, err := s.fetchLatestHoldings(ctx, fundCode)
	if err != nil {
		// Funds without stock disclosures (money market, pure bond) still
		// get tracked; their estimates just stay degraded.
		s.logger.Warn().Err(err).Str("fund", fundCode).Msg("Holdings unavailable during setup")
	} else if len(holdings) > 0 {
		if len(holdings) > maxHoldings {
			holdings = holdings[:maxHoldings]
		}
		err := s.storage.FundStore().ReplaceHoldings(ctx, &models.FundHoldings{
			FundCode:   fundCode,
			ReportDate: reportDate,
			Holdings:   holdings,
		})
		if err != nil {
			return nil, err
		}
	}

	s.logger.Info().
		Str("fund", fundCode).
		Float64("nav", nav).
		Str("nav_date", navDate).
		Int("holdings", len(holdings)).
		Msg("Fund setup complete")

	return s.GetFund(ctx, fundCode)
}

// fetchLatestHoldings tries the current disclosure year first, then the
// previous one. Early in the year the current year has no reports yet.
func (s *Service) fetchLatestHoldings(ctx context.Context, fundCode string) ([]models.Holding, string, error) {
	year := s.now().Year()
	holdings, reportDate, err := s.client.GetFundHoldings(ctx, fundCode, strconv.Itoa(year))
	if err == nil && len(holdings) > 0 {
		return holdings, reportDate, nil
	}
	holdings, reportDate, prevErr := s.client.GetFundHoldings(ctx, fundCode, strconv.Itoa(year-1))
	if prevErr != nil {
		if err != nil {
			return nil, "", err
		}
		return nil, "", prevErr
	}
	return holdings, reportDate, nil
}

// RefreshNAV re-fetches the fund's published NAV and persists it.
func (s *Service) RefreshNAV(ctx context.Context, fundCode string) (*models.Fund, error) {
	nav, navDate, err := s.client.GetFundNAV(ctx, fundCode)
	if err != nil {
		return nil, fmt.Errorf("NAV refresh '%s': %w", fundCode, err)
	}
	if err := s.storage.FundStore().UpdateNAV(ctx, fundCode, nav, navDate); err != nil {
		return nil, err
	}
	return s.GetFund(ctx, fundCode)
}

// Search matches funds in the provider catalog by code prefix or name
// substring, case-insensitive.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]models.CatalogEntry, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.CatalogEntry{}, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	catalog, err := s.getCatalog(ctx)
	if err != nil {
		return nil, err
	}

	lower := strings.ToLower(query)
	matches := make([]models.CatalogEntry, 0, limit)
	for _, entry := range catalog {
		if strings.HasPrefix(entry.FundCode, query) || strings.Contains(strings.ToLower(entry.FundName), lower) {
			matches = append(matches, entry)
			if len(matches) == limit {
				break
			}
		}
	}
	return matches, nil
}

func (s *Service) getCatalog(ctx context.Context) ([]models.CatalogEntry, error) {
	if catalog, ok := s.catalog.Get(catalogCacheKey); ok {
		return catalog, nil
	}

	catalog, err := s.client.GetFundCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("fund catalog: %w", err)
	}
	s.catalog.Set(catalogCacheKey, catalog)
	s.logger.Debug().Int("funds", len(catalog)).Msg("Fund catalog cached")
	return catalog, nil
}

func (s *Service) lookupCatalog(ctx context.Context, fundCode string) *models.CatalogEntry {
	catalog, err := s.getCatalog(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Catalog lookup failed")
		return nil
	}
	for i := range catalog {
		if catalog[i].FundCode == fundCode {
			return &catalog[i]
		}
	}
	return nil
}

// Ensure Service implements FundService
var _ interfaces.FundService = (*Service)(nil)
