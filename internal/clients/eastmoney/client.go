// Package eastmoney provides a client for the Eastmoney public market-data
// APIs: batch stock quotes, fund NAV history, quarterly fund holdings, and
// the full fund catalog.
package eastmoney

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/fundwatch/fundwatch/internal/common"
	"github.com/fundwatch/fundwatch/internal/interfaces"
	"github.com/fundwatch/fundwatch/internal/models"
)

const (
	DefaultBaseURL     = "https://push2.eastmoney.com"
	DefaultFundBaseURL = "https://api.fund.eastmoney.com"
	DefaultTimeout     = 10 * time.Second
	DefaultRateLimit   = 10 // requests per second
)

// flexFloat64 handles JSON values that may be either a number or a string.
// Eastmoney reports suspended stocks as "-".
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "-" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

// Client implements the MarketDataClient interface.
type Client struct {
	baseURL     string
	fundBaseURL string
	httpClient  *http.Client
	logger      *common.Logger
	limiter     *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the quote API base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithFundBaseURL sets the fund API base URL
func WithFundBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.fundBaseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Eastmoney client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:     DefaultBaseURL,
		fundBaseURL: DefaultFundBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("eastmoney API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request against base and decodes the JSON
// response into result.
func (c *Client) get(ctx context.Context, base, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := base + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", base+path).Msg("Eastmoney API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// secID converts a mainland stock code to the Eastmoney secid format:
// Shanghai codes (6x, 9x) are market 1, Shenzhen codes (0x, 3x, 2x) are
// market 0. Other markets (e.g. Hong Kong) are unsupported and return "".
func secID(stockCode string) string {
	if stockCode == "" {
		return ""
	}
	switch stockCode[0] {
	case '6', '9':
		return "1." + stockCode
	case '0', '3', '2':
		return "0." + stockCode
	default:
		return ""
	}
}

type quoteItem struct {
	Price     flexFloat64 `json:"f2"`
	ChangePct flexFloat64 `json:"f3"`
	Code      string      `json:"f12"`
	Name      string      `json:"f14"`
}

type quoteResponse struct {
	Data struct {
		Diff []quoteItem `json:"diff"`
	} `json:"data"`
}

// GetQuotes returns live quotes for the given stock codes via the batch
// ulist endpoint. Unsupported or suspended stocks are absent from the result.
func (c *Client) GetQuotes(ctx context.Context, stockCodes []string) (map[string]models.Quote, error) {
	secIDs := make([]string, 0, len(stockCodes))
	for _, code := range stockCodes {
		if id := secID(code); id != "" {
			secIDs = append(secIDs, id)
		}
	}
	if len(secIDs) == 0 {
		return map[string]models.Quote{}, nil
	}

	params := url.Values{}
	params.Set("fltt", "2")
	params.Set("fields", "f2,f3,f12,f14")
	params.Set("secids", strings.Join(secIDs, ","))

	var resp quoteResponse
	if err := c.get(ctx, c.baseURL, "/api/qt/ulist.np/get", params, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch quotes: %w", err)
	}

	quotes := make(map[string]models.Quote, len(resp.Data.Diff))
	for _, item := range resp.Data.Diff {
		if item.Code == "" || item.Price == 0 {
			continue // suspended or unknown
		}
		quotes[item.Code] = models.Quote{
			StockCode: item.Code,
			StockName: item.Name,
			Price:     float64(item.Price),
			ChangePct: float64(item.ChangePct),
		}
	}

	c.logger.Debug().
		Int("requested", len(stockCodes)).
		Int("returned", len(quotes)).
		Msg("Quotes fetched")

	return quotes, nil
}

type navHistoryResponse struct {
	Data struct {
		List []struct {
			Date string      `json:"FSRQ"`
			NAV  flexFloat64 `json:"DWJZ"`
		} `json:"LSJZList"`
	} `json:"Data"`
}

// GetFundNAV returns the fund's most recent published unit NAV and its date.
func (c *Client) GetFundNAV(ctx context.Context, fundCode string) (float64, string, error) {
	params := url.Values{}
	params.Set("fundCode", fundCode)
	params.Set("pageIndex", "1")
	params.Set("pageSize", "1")

	var resp navHistoryResponse
	if err := c.get(ctx, c.fundBaseURL, "/f10/lsjz", params, &resp); err != nil {
		return 0, "", fmt.Errorf("failed to fetch NAV for '%s': %w", fundCode, err)
	}

	if len(resp.Data.List) == 0 {
		return 0, "", fmt.Errorf("no NAV history for fund '%s'", fundCode)
	}

	latest := resp.Data.List[0]
	if latest.NAV == 0 {
		return 0, "", fmt.Errorf("empty NAV for fund '%s'", fundCode)
	}
	return float64(latest.NAV), latest.Date, nil
}

// GetFundNAVHistory returns up to count recent published NAVs, newest first.
// Rows without a NAV value (pending publication) are skipped.
func (c *Client) GetFundNAVHistory(ctx context.Context, fundCode string, count int) ([]models.NAVPoint, error) {
	params := url.Values{}
	params.Set("fundCode", fundCode)
	params.Set("pageIndex", "1")
	params.Set("pageSize", strconv.Itoa(count))

	var resp navHistoryResponse
	if err := c.get(ctx, c.fundBaseURL, "/f10/lsjz", params, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch NAV history for '%s': %w", fundCode, err)
	}

	points := make([]models.NAVPoint, 0, len(resp.Data.List))
	for _, row := range resp.Data.List {
		if row.Date == "" || row.NAV == 0 {
			continue
		}
		points = append(points, models.NAVPoint{Date: row.Date, NAV: float64(row.NAV)})
	}
	return points, nil
}

type holdingsResponse struct {
	Data []struct {
		StockCode string      `json:"GPDM"`
		StockName string      `json:"GPJC"`
		RatioPct  flexFloat64 `json:"JZBL"` // percent of NAV, e.g. "8.90"
	} `json:"Data"`
	ReportDate string `json:"ReportDate"`
}

// GetFundHoldings returns the fund's disclosed top holdings for the given
// year, newest report first. Ratios are converted from whole-number percent
// to fractions.
func (c *Client) GetFundHoldings(ctx context.Context, fundCode, year string) ([]models.Holding, string, error) {
	params := url.Values{}
	params.Set("fundCode", fundCode)
	params.Set("year", year)

	var resp holdingsResponse
	if err := c.get(ctx, c.fundBaseURL, "/f10/ccmx", params, &resp); err != nil {
		return nil, "", fmt.Errorf("failed to fetch holdings for '%s': %w", fundCode, err)
	}

	holdings := make([]models.Holding, 0, len(resp.Data))
	for _, item := range resp.Data {
		if item.StockCode == "" {
			continue
		}
		holdings = append(holdings, models.Holding{
			StockCode:    item.StockCode,
			StockName:    item.StockName,
			HoldingRatio: float64(item.RatioPct) / 100.0,
		})
	}
	return holdings, resp.ReportDate, nil
}

// GetFundCatalog returns the provider's full fund list. The endpoint serves
// an array of [code, abbreviation, name, type] tuples.
func (c *Client) GetFundCatalog(ctx context.Context) ([]models.CatalogEntry, error) {
	var rows [][]string
	if err := c.get(ctx, c.fundBaseURL, "/fundlist", nil, &rows); err != nil {
		return nil, fmt.Errorf("failed to fetch fund catalog: %w", err)
	}

	entries := make([]models.CatalogEntry, 0, len(rows))
	for _, row := range rows {
		if len(row) < 4 || row[0] == "" {
			continue
		}
		entries = append(entries, models.CatalogEntry{
			FundCode: row[0],
			FundName: row[2],
			FundType: row[3],
		})
	}

	c.logger.Debug().Int("funds", len(entries)).Msg("Fund catalog fetched")
	return entries, nil
}

// Ensure Client implements MarketDataClient
var _ interfaces.MarketDataClient = (*Client)(nil)
