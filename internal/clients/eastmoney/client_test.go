package eastmoney

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetQuotes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/qt/ulist.np/get", r.URL.Path)
		assert.Equal(t, "1.600519,0.000858", r.URL.Query().Get("secids"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"diff":[
			{"f2":1700.5,"f3":2.0,"f12":"600519","f14":"Kweichow Moutai"},
			{"f2":"-","f3":"-","f12":"000858","f14":"Wuliangye"}
		]}}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	quotes, err := client.GetQuotes(context.Background(), []string{"600519", "000858"})
	require.NoError(t, err)

	// Suspended stock (price "-") is omitted rather than reported as zero.
	require.Len(t, quotes, 1)
	quote := quotes["600519"]
	assert.Equal(t, "Kweichow Moutai", quote.StockName)
	assert.Equal(t, 1700.5, quote.Price)
	assert.Equal(t, 2.0, quote.ChangePct)
}

func TestGetQuotesSkipsUnsupportedMarkets(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	// Hong Kong codes have no mainland secid; with nothing to ask for the
	// client skips the request entirely.
	quotes, err := client.GetQuotes(context.Background(), []string{"7"})
	require.NoError(t, err)
	assert.Empty(t, quotes)
	assert.False(t, called)
}

func TestGetFundNAV(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/f10/lsjz", r.URL.Path)
		assert.Equal(t, "161725", r.URL.Query().Get("fundCode"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"Data":{"LSJZList":[{"FSRQ":"2026-08-27","DWJZ":"1.2345"}]}}`))
	}))
	defer server.Close()

	client := NewClient(WithFundBaseURL(server.URL))
	nav, navDate, err := client.GetFundNAV(context.Background(), "161725")
	require.NoError(t, err)
	assert.Equal(t, 1.2345, nav)
	assert.Equal(t, "2026-08-27", navDate)
}

func TestGetFundNAVEmptyHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Data":{"LSJZList":[]}}`))
	}))
	defer server.Close()

	client := NewClient(WithFundBaseURL(server.URL))
	_, _, err := client.GetFundNAV(context.Background(), "999999")
	assert.Error(t, err)
}

func TestGetFundNAVHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/f10/lsjz", r.URL.Path)
		assert.Equal(t, "45", r.URL.Query().Get("pageSize"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"Data":{"LSJZList":[
			{"FSRQ":"2026-08-27","DWJZ":"1.05"},
			{"FSRQ":"2026-08-26","DWJZ":"1.02"},
			{"FSRQ":"2026-08-25","DWJZ":"-"}
		]}}`))
	}))
	defer server.Close()

	client := NewClient(WithFundBaseURL(server.URL))
	points, err := client.GetFundNAVHistory(context.Background(), "161725", 45)
	require.NoError(t, err)

	// Newest first; the unpublished "-" row is skipped.
	require.Len(t, points, 2)
	assert.Equal(t, "2026-08-27", points[0].Date)
	assert.Equal(t, 1.05, points[0].NAV)
	assert.Equal(t, "2026-08-26", points[1].Date)
}

func TestGetFundHoldings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/f10/ccmx", r.URL.Path)
		assert.Equal(t, "2026", r.URL.Query().Get("year"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"Data":[
			{"GPDM":"600519","GPJC":"Kweichow Moutai","JZBL":"8.90"},
			{"GPDM":"000858","GPJC":"Wuliangye","JZBL":"6.50"}
		],"ReportDate":"2026-06-30"}`))
	}))
	defer server.Close()

	client := NewClient(WithFundBaseURL(server.URL))
	holdings, reportDate, err := client.GetFundHoldings(context.Background(), "161725", "2026")
	require.NoError(t, err)
	assert.Equal(t, "2026-06-30", reportDate)
	require.Len(t, holdings, 2)
	assert.Equal(t, "600519", holdings[0].StockCode)
	assert.InDelta(t, 0.089, holdings[0].HoldingRatio, 1e-9)
	assert.InDelta(t, 0.065, holdings[1].HoldingRatio, 1e-9)
}

func TestGetFundCatalog(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fundlist", r.URL.Path)
		w.Write([]byte(`[
			["161725","ZZJJ","China Securities Liquor Index","Index"],
			["005827","YFHH","E Fund Blue Chip","Hybrid"],
			["","","",""]
		]`))
	}))
	defer server.Close()

	client := NewClient(WithFundBaseURL(server.URL))
	entries, err := client.GetFundCatalog(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "161725", entries[0].FundCode)
	assert.Equal(t, "China Securities Liquor Index", entries[0].FundName)
	assert.Equal(t, "Hybrid", entries[1].FundType)
}

func TestAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	}))
	defer server.Close()

	client := NewClient(WithFundBaseURL(server.URL))
	_, _, err := client.GetFundNAV(context.Background(), "161725")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestSecID(t *testing.T) {
	assert.Equal(t, "1.600519", secID("600519"))
	assert.Equal(t, "1.900901", secID("900901"))
	assert.Equal(t, "0.000858", secID("000858"))
	assert.Equal(t, "0.300750", secID("300750"))
	assert.Equal(t, "0.200011", secID("200011"))
	assert.Equal(t, "", secID("801010"))
	assert.Equal(t, "", secID(""))
}
