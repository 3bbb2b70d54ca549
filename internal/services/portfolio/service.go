// Package portfolio implements the portfolio service: position CRUD, the
// valuation aggregator, cross-fund combined holdings, and daily snapshots.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fundwatch/fundwatch/internal/common"
	"github.com/fundwatch/fundwatch/internal/interfaces"
	"github.com/fundwatch/fundwatch/internal/models"
	"github.com/fundwatch/fundwatch/internal/services/estimator"
	"github.com/fundwatch/fundwatch/internal/services/quotes"
)

// Service implements interfaces.PortfolioService.
type Service struct {
	storage interfaces.StorageManager
	feed    *quotes.Feed
	logger  *common.Logger
	now     func() time.Time
}

// NewService creates a portfolio service.
func NewService(storage interfaces.StorageManager, feed *quotes.Feed, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		feed:    feed,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *Service) CreatePortfolio(ctx context.Context, name string) (*models.Portfolio, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("portfolio name is required: %w", interfaces.ErrInvalidInput)
	}

	portfolio := &models.Portfolio{
		ID:    uuid.NewString(),
		Name:  name,
		Funds: []models.PortfolioFund{},
	}
	if err := s.storage.PortfolioStore().SavePortfolio(ctx, portfolio); err != nil {
		return nil, err
	}

	s.logger.Info().Str("id", portfolio.ID).Str("name", name).Msg("Portfolio created")
	return portfolio, nil
}

func (s *Service) ListPortfolios(ctx context.Context) ([]*models.Portfolio, error) {
	return s.storage.PortfolioStore().ListPortfolios(ctx)
}

func (s *Service) RenamePortfolio(ctx context.Context, id, name string) (*models.Portfolio, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("portfolio name is required: %w", interfaces.ErrInvalidInput)
	}

	portfolio, err := s.storage.PortfolioStore().GetPortfolio(ctx, id)
	if err != nil {
		return nil, err
	}
	portfolio.Name = name
	if err := s.storage.PortfolioStore().SavePortfolio(ctx, portfolio); err != nil {
		return nil, err
	}
	return portfolio, nil
}

// DeletePortfolio removes the portfolio and its snapshot history.
func (s *Service) DeletePortfolio(ctx context.Context, id string) error {
	if _, err := s.storage.PortfolioStore().GetPortfolio(ctx, id); err != nil {
		return err
	}
	if err := s.storage.PortfolioStore().DeletePortfolio(ctx, id); err != nil {
		return err
	}
	deleted, err := s.storage.SnapshotStore().DeleteByPortfolio(ctx, id)
	if err != nil {
		return err
	}

	s.logger.Info().Str("id", id).Int("snapshots_deleted", deleted).Msg("Portfolio deleted")
	return nil
}

// AddFund adds a position to the portfolio. The fund must already be tracked.
// Adding a fund that is already in the portfolio replaces the position.
func (s *Service) AddFund(ctx context.Context, id, fundCode string, shares, costNAV float64) (*models.Portfolio, error) {
	if shares < 0 {
		return nil, fmt.Errorf("shares must be >= 0: %w", interfaces.ErrInvalidInput)
	}
	if costNAV <= 0 {
		return nil, fmt.Errorf("cost_nav must be > 0: %w", interfaces.ErrInvalidInput)
	}
	if _, err := s.storage.FundStore().GetFund(ctx, fundCode); err != nil {
		return nil, err
	}

	portfolio, err := s.storage.PortfolioStore().GetPortfolio(ctx, id)
	if err != nil {
		return nil, err
	}

	position := models.PortfolioFund{
		FundCode: fundCode,
		Shares:   shares,
		CostNAV:  costNAV,
		AddedAt:  s.now(),
	}
	replaced := false
	for i := range portfolio.Funds {
		if portfolio.Funds[i].FundCode == fundCode {
			position.AddedAt = portfolio.Funds[i].AddedAt
			portfolio.Funds[i] = position
			replaced = true
			break
		}
	}
	if !replaced {
		portfolio.Funds = append(portfolio.Funds, position)
	}

	if err := s.storage.PortfolioStore().SavePortfolio(ctx, portfolio); err != nil {
		return nil, err
	}
	return portfolio, nil
}

func (s *Service) RemoveFund(ctx context.Context, id, fundCode string) (*models.Portfolio, error) {
	portfolio, err := s.storage.PortfolioStore().GetPortfolio(ctx, id)
	if err != nil {
		return nil, err
	}

	funds := portfolio.Funds[:0]
	found := false
	for _, position := range portfolio.Funds {
		if position.FundCode == fundCode {
			found = true
			continue
		}
		funds = append(funds, position)
	}
	if !found {
		return nil, fmt.Errorf("fund '%s' in portfolio '%s': %w", fundCode, id, interfaces.ErrNotFound)
	}
	portfolio.Funds = funds

	if err := s.storage.PortfolioStore().SavePortfolio(ctx, portfolio); err != nil {
		return nil, err
	}
	return portfolio, nil
}

// fundState is one position's loaded records plus its same-run estimate.
// Missing records leave the corresponding fields nil; the valuation paths
// treat those as degraded, never as failures.
type fundState struct {
	position models.PortfolioFund
	fund     *models.Fund
	holdings *models.FundHoldings
	estimate *models.EstimateResult
}

// evaluate loads every position's fund and holdings, fetches quotes once for
// the union of all holdings, and estimates each fund from that shared quote
// set.
func (s *Service) evaluate(ctx context.Context, portfolio *models.Portfolio) ([]fundState, error) {
	states := make([]fundState, 0, len(portfolio.Funds))
	var union []string
	seen := make(map[string]bool)

	for _, position := range portfolio.Funds {
		state := fundState{position: position}

		fund, err := s.storage.FundStore().GetFund(ctx, position.FundCode)
		if err != nil {
			if !errors.Is(err, interfaces.ErrNotFound) {
				return nil, err
			}
			s.logger.Warn().
				Str("portfolio", portfolio.ID).
				Str("fund", position.FundCode).
				Msg("Position references an untracked fund, valuing as degraded")
		} else {
			state.fund = fund
		}

		holdings, err := s.storage.FundStore().GetHoldings(ctx, position.FundCode)
		if err != nil {
			if !errors.Is(err, interfaces.ErrNotFound) {
				return nil, err
			}
		} else {
			state.holdings = holdings
			for _, code := range holdings.StockCodes() {
				if !seen[code] {
					seen[code] = true
					union = append(union, code)
				}
			}
		}

		states = append(states, state)
	}

	var quoteMap map[string]models.Quote
	if len(union) > 0 {
		quoteMap = s.feed.Fetch(ctx, union)
	}

	for i := range states {
		var lastNAV float64
		if states[i].fund != nil {
			lastNAV = states[i].fund.LastNAV
		}
		var holdingList []models.Holding
		if states[i].holdings != nil {
			holdingList = states[i].holdings.Holdings
		}
		states[i].estimate = estimator.Estimate(lastNAV, holdingList, quoteMap)
	}
	return states, nil
}

// GetDetail aggregates per-fund valuations into portfolio totals. Each fund
// degrades independently: a missing NAV, holdings set, or quote never aborts
// the portfolio computation.
func (s *Service) GetDetail(ctx context.Context, id string) (*models.PortfolioDetail, error) {
	portfolio, err := s.storage.PortfolioStore().GetPortfolio(ctx, id)
	if err != nil {
		return nil, err
	}

	states, err := s.evaluate(ctx, portfolio)
	if err != nil {
		return nil, err
	}

	detail := &models.PortfolioDetail{
		ID:        portfolio.ID,
		Name:      portfolio.Name,
		CreatedAt: portfolio.CreatedAt,
		Funds:     make([]models.FundValuation, 0, len(states)),
	}

	for _, state := range states {
		valuation := valueFund(state)
		detail.Funds = append(detail.Funds, valuation)
		detail.TotalCost += valuation.Cost
		detail.TotalEstimate += valuation.CurrentValue
	}

	detail.TotalProfit = detail.TotalEstimate - detail.TotalCost
	detail.TotalProfitPct = profitPct(detail.TotalProfit, detail.TotalCost)
	return detail, nil
}

// valueFund computes one position's valuation from its estimate. A fund with
// no published NAV values at zero.
func valueFund(state fundState) models.FundValuation {
	valuation := models.FundValuation{
		FundCode: state.position.FundCode,
		Shares:   state.position.Shares,
		CostNAV:  state.position.CostNAV,
		Cost:     state.position.Shares * state.position.CostNAV,
		Degraded: true,
	}
	if state.fund != nil {
		valuation.FundName = state.fund.FundName
	}
	if state.holdings != nil {
		valuation.HoldingsDate = state.holdings.ReportDate
	}

	if state.fund.HasNAV() {
		valuation.EstNAV = state.estimate.EstNAV
		valuation.EstChangePct = state.estimate.EstChangePct
		valuation.Coverage = state.estimate.Coverage
		valuation.Degraded = state.estimate.Degraded()
		valuation.CurrentValue = state.position.Shares * state.estimate.EstNAV
	}

	valuation.Profit = valuation.CurrentValue - valuation.Cost
	valuation.ProfitPct = profitPct(valuation.Profit, valuation.Cost)
	return valuation
}

// profitPct is the zero-guarded profit percentage. Zero cost yields zero,
// never a division fault.
func profitPct(profit, cost float64) float64 {
	if cost <= 0 {
		return 0
	}
	return estimator.Round4(profit / cost * 100)
}

// Ensure Service implements PortfolioService
var _ interfaces.PortfolioService = (*Service)(nil)
