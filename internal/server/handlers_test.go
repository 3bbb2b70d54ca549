package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundwatch/fundwatch/internal/app"
	"github.com/fundwatch/fundwatch/internal/cache"
	"github.com/fundwatch/fundwatch/internal/common"
	"github.com/fundwatch/fundwatch/internal/models"
	"github.com/fundwatch/fundwatch/internal/services/fund"
	"github.com/fundwatch/fundwatch/internal/services/portfolio"
	"github.com/fundwatch/fundwatch/internal/services/quotes"
	"github.com/fundwatch/fundwatch/internal/testutil"
)

// newTestServer builds a server over in-memory storage and a mock provider.
func newTestServer(t *testing.T, client *testutil.MockClient) (*Server, *testutil.MemoryStorage) {
	t.Helper()
	storage := testutil.NewMemoryStorage()
	logger := common.NewSilentLogger()
	feed := quotes.NewFeed(cache.New[models.Quote](time.Minute), client, logger)
	catalogCache := cache.New[[]models.CatalogEntry](time.Hour)

	a := &app.App{
		Config:           common.NewDefaultConfig(),
		Logger:           logger,
		Storage:          storage,
		Client:           client,
		QuoteFeed:        feed,
		FundService:      fund.NewService(storage, client, feed, catalogCache, logger),
		PortfolioService: portfolio.NewService(storage, feed, logger),
		StartupTime:      time.Now(),
	}
	return NewServer(a), storage
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, &testutil.MockClient{})

	rec := doRequest(t, srv, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "ok", body["status"])

	rec = doRequest(t, srv, http.MethodPost, "/api/health", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestVersionEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, &testutil.MockClient{})

	rec := doRequest(t, srv, http.MethodGet, "/api/version", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Contains(t, body, "version")
}

func TestFundEstimateEndpoint(t *testing.T) {
	client := &testutil.MockClient{
		Quotes: map[string]models.Quote{
			"600519": {StockCode: "600519", Price: 1700.0, ChangePct: 2.0},
			"000858": {StockCode: "000858", Price: 150.0, ChangePct: -1.0},
		},
	}
	srv, storage := newTestServer(t, client)

	ctx := context.Background()
	require.NoError(t, storage.FundStore().SaveFund(ctx, &models.Fund{
		FundCode: "161725", FundName: "Liquor Index", LastNAV: 1.0, NAVDate: "2026-08-27",
	}))
	require.NoError(t, storage.FundStore().ReplaceHoldings(ctx, &models.FundHoldings{
		FundCode:   "161725",
		ReportDate: "2026-06-30",
		Holdings: []models.Holding{
			{StockCode: "600519", HoldingRatio: 0.089},
			{StockCode: "000858", HoldingRatio: 0.065},
		},
	}))

	rec := doRequest(t, srv, http.MethodGet, "/api/funds/161725/estimate", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var estimate models.FundEstimate
	decodeBody(t, rec, &estimate)
	assert.InDelta(t, 0.113, estimate.EstChangePct, 1e-9)
	assert.InDelta(t, 1.0011, estimate.EstNAV, 1e-9)
	assert.False(t, estimate.Degraded)
	assert.Len(t, estimate.Details, 2)
}

func TestFundNAVHistoryEndpoint(t *testing.T) {
	yesterday := time.Now().AddDate(0, 0, -1).Format(common.DateLayout)
	dayBefore := time.Now().AddDate(0, 0, -2).Format(common.DateLayout)
	client := &testutil.MockClient{
		NAVHistory: []models.NAVPoint{
			{Date: yesterday, NAV: 1.05},
			{Date: dayBefore, NAV: 1.02},
		},
	}
	srv, storage := newTestServer(t, client)
	require.NoError(t, storage.FundStore().SaveFund(context.Background(), &models.Fund{
		FundCode: "161725", LastNAV: 1.05, NAVDate: yesterday,
	}))

	rec := doRequest(t, srv, http.MethodGet, "/api/funds/161725/nav-history?period=30d", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var history models.FundNAVHistory
	decodeBody(t, rec, &history)
	assert.Equal(t, []string{dayBefore, yesterday}, history.Dates)
	assert.Equal(t, []float64{1.02, 1.05}, history.NAVs)

	rec = doRequest(t, srv, http.MethodGet, "/api/funds/161725/nav-history?period=bogus", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFundIntradayEndpoint(t *testing.T) {
	srv, storage := newTestServer(t, &testutil.MockClient{})
	ctx := context.Background()
	require.NoError(t, storage.FundStore().SaveFund(ctx, &models.Fund{
		FundCode: "161725", LastNAV: 1.0,
	}))
	today := time.Now().Format(common.DateLayout)
	require.NoError(t, storage.EstimateSnapshotStore().Upsert(ctx, &models.EstimateSnapshot{
		FundCode: "161725", Date: today, Time: "09:35", EstNAV: 1.0018,
	}))

	rec := doRequest(t, srv, http.MethodGet, "/api/funds/161725/intraday", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var intraday models.FundIntraday
	decodeBody(t, rec, &intraday)
	assert.Equal(t, today, intraday.Date)
	assert.Equal(t, 1.0, intraday.LastNAV)
	assert.Equal(t, []string{"09:35"}, intraday.Times)
	assert.Equal(t, []float64{1.0018}, intraday.NAVs)

	rec = doRequest(t, srv, http.MethodGet, "/api/funds/999999/intraday", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFundEstimateNotFound(t *testing.T) {
	srv, _ := newTestServer(t, &testutil.MockClient{})

	rec := doRequest(t, srv, http.MethodGet, "/api/funds/999999/estimate", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body ErrorResponse
	decodeBody(t, rec, &body)
	assert.NotEmpty(t, body.Error)
}

func TestFundEstimateDegraded(t *testing.T) {
	srv, storage := newTestServer(t, &testutil.MockClient{})
	require.NoError(t, storage.FundStore().SaveFund(context.Background(), &models.Fund{
		FundCode: "161725", LastNAV: 1.2345,
	}))

	rec := doRequest(t, srv, http.MethodGet, "/api/funds/161725/estimate", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var estimate models.FundEstimate
	decodeBody(t, rec, &estimate)
	assert.True(t, estimate.Degraded)
	assert.Equal(t, 1.2345, estimate.EstNAV)
	assert.Empty(t, estimate.Details)
}

func TestFundSetupAndGet(t *testing.T) {
	year := time.Now().Format("2006")
	client := &testutil.MockClient{
		NAV:     1.2345,
		NAVDate: "2026-08-27",
		Holdings: map[string][]models.Holding{
			year: {{StockCode: "600519", HoldingRatio: 0.089}},
		},
		ReportDates: map[string]string{year: "2026-06-30"},
	}
	srv, _ := newTestServer(t, client)

	rec := doRequest(t, srv, http.MethodPost, "/api/funds/161725/setup", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/funds/161725", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Fund     models.Fund `json:"fund"`
		NAVStale bool        `json:"nav_stale"`
	}
	decodeBody(t, rec, &body)
	assert.Equal(t, 1.2345, body.Fund.LastNAV)

	rec = doRequest(t, srv, http.MethodGet, "/api/funds/161725/holdings", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestFundSearchEndpoint(t *testing.T) {
	client := &testutil.MockClient{
		Catalog: []models.CatalogEntry{
			{FundCode: "161725", FundName: "Liquor Index", FundType: "Index"},
		},
	}
	srv, _ := newTestServer(t, client)

	rec := doRequest(t, srv, http.MethodGet, "/api/funds/search?q=liquor", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Results []models.CatalogEntry `json:"results"`
	}
	decodeBody(t, rec, &body)
	require.Len(t, body.Results, 1)
	assert.Equal(t, "161725", body.Results[0].FundCode)

	rec = doRequest(t, srv, http.MethodGet, "/api/funds/search", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPortfolioLifecycle(t *testing.T) {
	srv, storage := newTestServer(t, &testutil.MockClient{})
	require.NoError(t, storage.FundStore().SaveFund(context.Background(), &models.Fund{
		FundCode: "161725", LastNAV: 1.2,
	}))

	// Create
	rec := doRequest(t, srv, http.MethodPost, "/api/portfolios", `{"name":"retirement"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.Portfolio
	decodeBody(t, rec, &created)
	require.NotEmpty(t, created.ID)

	// Add a fund
	rec = doRequest(t, srv, http.MethodPost, "/api/portfolios/"+created.ID+"/funds",
		`{"fund_code":"161725","shares":1000,"cost_nav":1.0}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// Detail values the position at last NAV (no quotes, degraded estimate)
	rec = doRequest(t, srv, http.MethodGet, "/api/portfolios/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var detail models.PortfolioDetail
	decodeBody(t, rec, &detail)
	require.Len(t, detail.Funds, 1)
	assert.InDelta(t, 1200.0, detail.TotalEstimate, 1e-9)

	// Rename
	rec = doRequest(t, srv, http.MethodPatch, "/api/portfolios/"+created.ID, `{"name":"pension"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// Remove the fund
	rec = doRequest(t, srv, http.MethodDelete, "/api/portfolios/"+created.ID+"/funds/161725", "")
	require.Equal(t, http.StatusOK, rec.Code)

	// Delete
	rec = doRequest(t, srv, http.MethodDelete, "/api/portfolios/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/portfolios/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPortfolioValidationErrors(t *testing.T) {
	srv, storage := newTestServer(t, &testutil.MockClient{})
	require.NoError(t, storage.FundStore().SaveFund(context.Background(), &models.Fund{
		FundCode: "161725", LastNAV: 1.2,
	}))

	rec := doRequest(t, srv, http.MethodPost, "/api/portfolios", `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, srv, http.MethodPost, "/api/portfolios", `{"name":"p"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.Portfolio
	decodeBody(t, rec, &created)

	rec = doRequest(t, srv, http.MethodPost, "/api/portfolios/"+created.ID+"/funds",
		`{"fund_code":"161725","shares":-5,"cost_nav":1.0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, srv, http.MethodPost, "/api/portfolios/"+created.ID+"/funds",
		`{"fund_code":"999999","shares":10,"cost_nav":1.0}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPortfolioCombinedEndpoint(t *testing.T) {
	srv, storage := newTestServer(t, &testutil.MockClient{})
	ctx := context.Background()

	require.NoError(t, storage.FundStore().SaveFund(ctx, &models.Fund{FundCode: "A", LastNAV: 2.0}))
	require.NoError(t, storage.FundStore().ReplaceHoldings(ctx, &models.FundHoldings{
		FundCode: "A", ReportDate: "2026-06-30",
		Holdings: []models.Holding{{StockCode: "600519", HoldingRatio: 0.07}},
	}))
	require.NoError(t, storage.FundStore().SaveFund(ctx, &models.Fund{FundCode: "B", LastNAV: 3.0}))
	require.NoError(t, storage.FundStore().ReplaceHoldings(ctx, &models.FundHoldings{
		FundCode: "B", ReportDate: "2026-06-30",
		Holdings: []models.Holding{{StockCode: "600519", HoldingRatio: 0.06}},
	}))

	rec := doRequest(t, srv, http.MethodPost, "/api/portfolios", `{"name":"p"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.Portfolio
	decodeBody(t, rec, &created)

	for _, body := range []string{
		`{"fund_code":"A","shares":1000,"cost_nav":1.8}`,
		`{"fund_code":"B","shares":1000,"cost_nav":2.5}`,
	} {
		rec = doRequest(t, srv, http.MethodPost, "/api/portfolios/"+created.ID+"/funds", body)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/portfolios/"+created.ID+"/combined", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var result models.CombinedHoldingsResult
	decodeBody(t, rec, &result)
	require.Len(t, result.Holdings, 1)
	assert.InDelta(t, 0.064, result.Holdings[0].CombinedWeight, 1e-9)
	assert.Len(t, result.Holdings[0].ByFund, 2)
}

func TestPortfolioSnapshotAndHistory(t *testing.T) {
	srv, storage := newTestServer(t, &testutil.MockClient{})
	ctx := context.Background()
	require.NoError(t, storage.FundStore().SaveFund(ctx, &models.Fund{FundCode: "A", LastNAV: 1.0}))

	rec := doRequest(t, srv, http.MethodPost, "/api/portfolios", `{"name":"p"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.Portfolio
	decodeBody(t, rec, &created)

	rec = doRequest(t, srv, http.MethodPost, "/api/portfolios/"+created.ID+"/funds",
		`{"fund_code":"A","shares":100,"cost_nav":0.9}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodPost, "/api/portfolios/"+created.ID+"/snapshot", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/portfolios/"+created.ID+"/history?period=7d", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var history models.PortfolioHistory
	decodeBody(t, rec, &history)
	require.Len(t, history.Dates, 1)
	assert.InDelta(t, 100.0, history.Values[0], 1e-9)

	rec = doRequest(t, srv, http.MethodGet, "/api/portfolios/"+created.ID+"/history?period=bogus", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t, &testutil.MockClient{})

	rec := doRequest(t, srv, http.MethodOptions, "/api/portfolios", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCorrelationIDHeader(t *testing.T) {
	srv, _ := newTestServer(t, &testutil.MockClient{})

	rec := doRequest(t, srv, http.MethodGet, "/api/health", "")
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get("X-Correlation-ID"))
}
