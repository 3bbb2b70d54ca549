package models

import "time"

// Portfolio is a named collection of fund positions.
type Portfolio struct {
	ID        string          `json:"id" badgerhold:"key"`
	Name      string          `json:"name"`
	Funds     []PortfolioFund `json:"funds"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// PortfolioFund is one fund position within a portfolio. Created and removed
// by user action; immutable otherwise.
type PortfolioFund struct {
	FundCode string    `json:"fund_code"`
	Shares   float64   `json:"shares"`   // units held, >= 0
	CostNAV  float64   `json:"cost_nav"` // cost basis per share, > 0
	AddedAt  time.Time `json:"added_at"`
}

// FundValuation is one fund's valuation within a portfolio detail. Degraded
// funds (no NAV, no holdings, or no quotes) carry conservative fallbacks and
// a zero or reduced coverage rather than failing the portfolio.
type FundValuation struct {
	FundCode     string  `json:"fund_code"`
	FundName     string  `json:"fund_name"`
	Shares       float64 `json:"shares"`
	CostNAV      float64 `json:"cost_nav"`
	EstNAV       float64 `json:"est_nav"`
	EstChangePct float64 `json:"est_change_pct"`
	Cost         float64 `json:"cost"`
	CurrentValue float64 `json:"current_value"`
	Profit       float64 `json:"profit"`
	ProfitPct    float64 `json:"profit_pct"`
	Coverage     float64 `json:"coverage"`
	Degraded     bool    `json:"degraded"`
	HoldingsDate string  `json:"holdings_date,omitempty"` // report date of the holdings used
}

// PortfolioDetail is the aggregated valuation of a whole portfolio.
type PortfolioDetail struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	CreatedAt      time.Time       `json:"created_at"`
	Funds          []FundValuation `json:"funds"`
	TotalCost      float64         `json:"total_cost"`
	TotalEstimate  float64         `json:"total_estimate"`
	TotalProfit    float64         `json:"total_profit"`
	TotalProfitPct float64         `json:"total_profit_pct"`
}

// FundContribution records how much one fund contributes to a stock's
// combined weight.
type FundContribution struct {
	FundCode     string  `json:"fund_code"`
	FundName     string  `json:"fund_name"`
	FundWeight   float64 `json:"fund_weight"`   // fund value / portfolio total value
	HoldingRatio float64 `json:"holding_ratio"` // the fund's disclosed ratio for this stock
	Contribution float64 `json:"contribution"`  // holding_ratio × fund_weight
}

// CombinedHolding is a stock's true exposure across all funds in a
// portfolio. CombinedWeight equals the sum of all fund contributions.
type CombinedHolding struct {
	StockCode      string             `json:"stock_code"`
	StockName      string             `json:"stock_name"`
	CombinedWeight float64            `json:"combined_weight"`
	ByFund         []FundContribution `json:"by_fund"`
}

// CombinedHoldingsResult is the cross-fund overlap analysis for a portfolio,
// sorted descending by combined weight.
type CombinedHoldingsResult struct {
	PortfolioID string            `json:"portfolio_id"`
	Holdings    []CombinedHolding `json:"holdings"`
	TotalValue  float64           `json:"total_value"`
	Coverage    float64           `json:"coverage"` // value-weighted estimation coverage
}

// PortfolioSnapshot is a daily immutable record of a portfolio's aggregate
// value, one per portfolio per date, upserted. ProfitPct is derived on read,
// never stored.
type PortfolioSnapshot struct {
	Key         string    `json:"-" badgerhold:"key"` // portfolioID + "|" + date
	PortfolioID string    `json:"portfolio_id"`
	Date        string    `json:"date"` // "YYYY-MM-DD"
	TotalValue  float64   `json:"total_value"`
	TotalCost   float64   `json:"total_cost"`
	CreatedAt   time.Time `json:"created_at"`
}

// SnapshotKey builds the storage key for a portfolio/date pair.
func SnapshotKey(portfolioID, date string) string {
	return portfolioID + "|" + date
}

// ProfitPct derives the snapshot's profit percentage. Zero when cost is not
// positive.
func (s *PortfolioSnapshot) ProfitPct() float64 {
	if s.TotalCost <= 0 {
		return 0
	}
	return (s.TotalValue - s.TotalCost) / s.TotalCost * 100
}

// PortfolioHistory is the chart-ready series of daily snapshots.
type PortfolioHistory struct {
	PortfolioID string    `json:"portfolio_id"`
	Dates       []string  `json:"dates"`
	Values      []float64 `json:"values"`
	Costs       []float64 `json:"costs"`
	ProfitPcts  []float64 `json:"profit_pcts"`
}
