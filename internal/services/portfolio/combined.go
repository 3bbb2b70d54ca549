package portfolio

import (
	"context"
	"sort"

	"github.com/fundwatch/fundwatch/internal/models"
	"github.com/fundwatch/fundwatch/internal/services/estimator"
)

// GetCombinedHoldings computes the portfolio's true per-stock exposure: each
// fund's disclosed holding ratios weighted by that fund's share of total
// portfolio value, accumulated across funds so a stock held by several funds
// appears exactly once.
func (s *Service) GetCombinedHoldings(ctx context.Context, id string) (*models.CombinedHoldingsResult, error) {
	portfolio, err := s.storage.PortfolioStore().GetPortfolio(ctx, id)
	if err != nil {
		return nil, err
	}

	states, err := s.evaluate(ctx, portfolio)
	if err != nil {
		return nil, err
	}

	var totalValue float64
	for _, state := range states {
		totalValue += fundValue(state)
	}

	result := &models.CombinedHoldingsResult{
		PortfolioID: portfolio.ID,
		Holdings:    []models.CombinedHolding{},
		TotalValue:  estimator.Round4(totalValue),
	}
	if totalValue <= 0 {
		// Nothing to weight against; an empty result, not an error.
		return result, nil
	}

	// Accumulate per stock in first-encounter order so the descending sort
	// below has a stable, deterministic tie-break.
	index := make(map[string]int)
	var combined []models.CombinedHolding
	var coverage float64

	for _, state := range states {
		value := fundValue(state)
		if value <= 0 || state.holdings == nil {
			continue
		}
		fundWeight := value / totalValue
		coverage += fundWeight * state.estimate.Coverage

		var fundName string
		if state.fund != nil {
			fundName = state.fund.FundName
		}

		for _, holding := range state.holdings.Holdings {
			contribution := models.FundContribution{
				FundCode:     state.position.FundCode,
				FundName:     fundName,
				FundWeight:   fundWeight,
				HoldingRatio: holding.HoldingRatio,
				Contribution: holding.HoldingRatio * fundWeight,
			}

			i, ok := index[holding.StockCode]
			if !ok {
				index[holding.StockCode] = len(combined)
				combined = append(combined, models.CombinedHolding{
					StockCode: holding.StockCode,
					StockName: holding.StockName,
				})
				i = len(combined) - 1
			}
			combined[i].CombinedWeight += contribution.Contribution
			combined[i].ByFund = append(combined[i].ByFund, contribution)
			if combined[i].StockName == "" {
				combined[i].StockName = holding.StockName
			}
		}
	}

	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].CombinedWeight > combined[j].CombinedWeight
	})

	// Round once, after summation and sorting.
	for i := range combined {
		combined[i].CombinedWeight = estimator.Round4(combined[i].CombinedWeight)
		for j := range combined[i].ByFund {
			combined[i].ByFund[j].FundWeight = estimator.Round4(combined[i].ByFund[j].FundWeight)
			combined[i].ByFund[j].Contribution = estimator.Round4(combined[i].ByFund[j].Contribution)
		}
	}

	result.Holdings = combined
	result.Coverage = estimator.Round4(coverage)
	return result, nil
}

// fundValue is the position's market value from the same-run estimate. Funds
// without a published NAV value at zero.
func fundValue(state fundState) float64 {
	if !state.fund.HasNAV() {
		return 0
	}
	return state.position.Shares * state.estimate.EstNAV
}
