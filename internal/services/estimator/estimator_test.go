package estimator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fundwatch/fundwatch/internal/models"
)

func TestEstimateWeightedChange(t *testing.T) {
	holdings := []models.Holding{
		{StockCode: "600519", StockName: "Kweichow Moutai", HoldingRatio: 0.089},
		{StockCode: "000858", StockName: "Wuliangye", HoldingRatio: 0.065},
	}
	quotes := map[string]models.Quote{
		"600519": {StockCode: "600519", Price: 1700.0, ChangePct: 2.0},
		"000858": {StockCode: "000858", Price: 150.0, ChangePct: -1.0},
	}

	result := Estimate(1.0, holdings, quotes)

	// 0.089*2.0 + 0.065*(-1.0) = 0.113
	assert.InDelta(t, 0.113, result.EstChangePct, 1e-9)
	assert.InDelta(t, 1.0011, result.EstNAV, 1e-9)
	assert.InDelta(t, 0.154, result.Coverage, 1e-9)
	assert.Equal(t, 1.0, result.LastNAV)
	assert.False(t, result.Degraded())
}

func TestEstimatePartialCoverage(t *testing.T) {
	holdings := []models.Holding{
		{StockCode: "600519", HoldingRatio: 0.089},
		{StockCode: "000858", HoldingRatio: 0.065},
	}
	// Only one holding has a quote; the other is silently skipped.
	quotes := map[string]models.Quote{
		"600519": {StockCode: "600519", Price: 1700.0, ChangePct: 2.0},
	}

	result := Estimate(1.5, holdings, quotes)

	assert.InDelta(t, 0.178, result.EstChangePct, 1e-9)
	assert.InDelta(t, 0.089, result.Coverage, 1e-9)
	assert.False(t, result.Degraded())

	// The unquoted holding still appears in details with zero contribution.
	assert.Len(t, result.Details, 2)
	assert.Equal(t, 0.0, result.Details[1].Price)
	assert.Equal(t, 0.0, result.Details[1].Contribution)
}

func TestEstimateDegradedWithoutQuotes(t *testing.T) {
	holdings := []models.Holding{
		{StockCode: "600519", HoldingRatio: 0.089},
	}

	result := Estimate(1.2345, holdings, map[string]models.Quote{})

	assert.True(t, result.Degraded())
	assert.Equal(t, 0.0, result.EstChangePct)
	assert.Equal(t, 0.0, result.Coverage)
	assert.Equal(t, 1.2345, result.EstNAV)
}

func TestEstimateEmptyHoldings(t *testing.T) {
	result := Estimate(1.0, nil, map[string]models.Quote{
		"600519": {StockCode: "600519", ChangePct: 5.0},
	})

	assert.True(t, result.Degraded())
	assert.Equal(t, 1.0, result.EstNAV)
	assert.Empty(t, result.Details)
}

func TestEstimateRoundsAtBoundary(t *testing.T) {
	holdings := []models.Holding{
		{StockCode: "600519", HoldingRatio: 0.08912345},
		{StockCode: "000858", HoldingRatio: 0.06554321},
	}
	quotes := map[string]models.Quote{
		"600519": {StockCode: "600519", ChangePct: 1.2345},
		"000858": {StockCode: "000858", ChangePct: -0.6789},
	}

	result := Estimate(1.0, holdings, quotes)

	// Results carry at most four decimal places.
	assert.Equal(t, result.EstChangePct, Round4(result.EstChangePct))
	assert.Equal(t, result.EstNAV, Round4(result.EstNAV))
	assert.Equal(t, result.Coverage, Round4(result.Coverage))
}

func TestEstimateFillsStockNameFromQuote(t *testing.T) {
	holdings := []models.Holding{
		{StockCode: "600519", HoldingRatio: 0.1},
	}
	quotes := map[string]models.Quote{
		"600519": {StockCode: "600519", StockName: "Kweichow Moutai", ChangePct: 1.0},
	}

	result := Estimate(1.0, holdings, quotes)
	assert.Equal(t, "Kweichow Moutai", result.Details[0].StockName)
}
