// Package models defines data structures for FundWatch
package models

import "time"

// Fund holds the metadata and last published NAV for a tracked fund.
// NAV fields are maintained by the provider refresh path; the valuation
// core only reads them.
type Fund struct {
	FundCode  string    `json:"fund_code" badgerhold:"key"`
	FundName  string    `json:"fund_name"`
	FundType  string    `json:"fund_type"`
	LastNAV   float64   `json:"last_nav"` // 0 means not yet published
	NAVDate   string    `json:"nav_date"` // "YYYY-MM-DD", empty when LastNAV is unset
	UpdatedAt time.Time `json:"updated_at"`
}

// HasNAV reports whether the fund has a published NAV to estimate from.
func (f *Fund) HasNAV() bool {
	return f != nil && f.LastNAV > 0
}

// Holding is one position from a fund's quarterly disclosure.
// HoldingRatio is a fraction of fund NAV (0.089 = 8.9%).
type Holding struct {
	StockCode    string  `json:"stock_code"`
	StockName    string  `json:"stock_name"`
	HoldingRatio float64 `json:"holding_ratio"`
}

// FundHoldings is a fund's complete disclosed holding set for one report
// date. The set is replaced wholesale when a new quarterly report arrives;
// there are no partial updates.
type FundHoldings struct {
	FundCode   string    `json:"fund_code" badgerhold:"key"`
	ReportDate string    `json:"report_date"` // "YYYY-MM-DD"
	Holdings   []Holding `json:"holdings"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// StockCodes returns the stock identifiers of all holdings, in input order.
func (fh *FundHoldings) StockCodes() []string {
	codes := make([]string, len(fh.Holdings))
	for i, h := range fh.Holdings {
		codes[i] = h.StockCode
	}
	return codes
}

// Quote is a live stock quote. ChangePct is a whole-number percentage
// relative to the prior close (2.0 means +2%).
type Quote struct {
	StockCode string  `json:"stock_code"`
	StockName string  `json:"stock_name"`
	Price     float64 `json:"price"`
	ChangePct float64 `json:"change_pct"`
}

// EstimateDetail is one holding's contribution to an estimate, in the
// holdings' input order.
type EstimateDetail struct {
	StockCode    string  `json:"stock_code"`
	StockName    string  `json:"stock_name"`
	HoldingRatio float64 `json:"holding_ratio"`
	Price        float64 `json:"price"`
	ChangePct    float64 `json:"change_pct"`
	Contribution float64 `json:"contribution"`
}

// EstimateResult is a fund's estimated intraday NAV change. Derived, never
// persisted; recomputed on every query.
type EstimateResult struct {
	EstNAV       float64          `json:"est_nav"`
	EstChangePct float64          `json:"est_change_pct"`
	Coverage     float64          `json:"coverage"` // Σ holding_ratio over holdings with a quote
	LastNAV      float64          `json:"last_nav"`
	Details      []EstimateDetail `json:"details"`
}

// Degraded reports whether the estimate fell back to the last published NAV
// because no holding had a live quote.
func (e *EstimateResult) Degraded() bool {
	return e.Coverage == 0
}

// FundEstimate is the estimate operation's response shape.
type FundEstimate struct {
	FundCode     string           `json:"fund_code"`
	FundName     string           `json:"fund_name"`
	EstNAV       float64          `json:"est_nav"`
	EstChangePct float64          `json:"est_change_pct"`
	LastNAV      float64          `json:"last_nav"`
	Coverage     float64          `json:"coverage"`
	Degraded     bool             `json:"degraded"`
	Details      []EstimateDetail `json:"details"`
}

// CatalogEntry is one fund in the provider's full fund catalog, used by
// search.
type CatalogEntry struct {
	FundCode string `json:"fund_code"`
	FundName string `json:"fund_name"`
	FundType string `json:"fund_type"`
}

// NAVPoint is one day in a fund's published NAV series.
type NAVPoint struct {
	Date string  `json:"date"` // "YYYY-MM-DD"
	NAV  float64 `json:"nav"`
}

// FundNAVHistory is the nav-history operation's response shape: parallel
// date and NAV arrays, oldest first, ready for chart display.
type FundNAVHistory struct {
	FundCode string    `json:"fund_code"`
	Dates    []string  `json:"dates"`
	NAVs     []float64 `json:"navs"`
}

// EstimateSnapshot is one intraday estimate sample for a fund, captured by
// the quote refresh job during trading hours. Samples from earlier days are
// pruned by the daily snapshot job.
type EstimateSnapshot struct {
	Key          string    `json:"-" badgerhold:"key"`
	FundCode     string    `json:"fund_code"`
	Date         string    `json:"date"` // "YYYY-MM-DD"
	Time         string    `json:"time"` // "HH:MM"
	EstNAV       float64   `json:"est_nav"`
	EstChangePct float64   `json:"est_change_pct"`
	CreatedAt    time.Time `json:"created_at"`
}

// EstimateSnapshotKey builds the storage key for a fund's sample at one
// minute of one day. A second sample in the same minute replaces the first.
func EstimateSnapshotKey(fundCode, date, timeOfDay string) string {
	return fundCode + "|" + date + "|" + timeOfDay
}

// FundIntraday is the intraday operation's response: today's estimate
// samples in time order, with the last published NAV as the baseline.
type FundIntraday struct {
	FundCode string    `json:"fund_code"`
	Date     string    `json:"date"`
	LastNAV  float64   `json:"last_nav"`
	Times    []string  `json:"times"`
	NAVs     []float64 `json:"navs"`
}
