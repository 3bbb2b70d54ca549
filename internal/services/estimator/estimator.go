// Package estimator computes real-time NAV estimates from disclosed fund
// holdings and live stock quotes. The computation is pure: results are
// derived on every call and never persisted.
package estimator

import (
	"math"

	"github.com/fundwatch/fundwatch/internal/models"
)

// Round4 rounds to four decimal places, the shared precision policy for
// derived NAVs, percentages, and weights. Rounding happens once, at the
// result boundary; intermediate sums keep full precision.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// Estimate computes the weighted NAV estimate for a fund.
//
// Each holding with a live quote contributes holding_ratio × change_pct to
// the estimated change. Holdings without a quote contribute nothing but are
// still listed in the details with zero price and change. Coverage is the
// ratio sum over quoted holdings; zero coverage yields a degraded estimate
// pinned to the last published NAV.
func Estimate(lastNAV float64, holdings []models.Holding, quotes map[string]models.Quote) *models.EstimateResult {
	var estChangePct, coverage float64
	details := make([]models.EstimateDetail, 0, len(holdings))

	for _, h := range holdings {
		detail := models.EstimateDetail{
			StockCode:    h.StockCode,
			StockName:    h.StockName,
			HoldingRatio: h.HoldingRatio,
		}
		if quote, ok := quotes[h.StockCode]; ok {
			contribution := h.HoldingRatio * quote.ChangePct
			estChangePct += contribution
			coverage += h.HoldingRatio

			detail.Price = quote.Price
			detail.ChangePct = quote.ChangePct
			detail.Contribution = Round4(contribution)
			if detail.StockName == "" {
				detail.StockName = quote.StockName
			}
		}
		details = append(details, detail)
	}

	return &models.EstimateResult{
		EstNAV:       Round4(lastNAV * (1 + estChangePct/100)),
		EstChangePct: Round4(estChangePct),
		Coverage:     Round4(coverage),
		LastNAV:      lastNAV,
		Details:      details,
	}
}
