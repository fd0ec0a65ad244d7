// Package yahoo provides a client for the Yahoo Finance public API
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/mmilger/optifolio/internal/common"
	"github.com/mmilger/optifolio/internal/interfaces"
	"github.com/mmilger/optifolio/internal/models"
)

const (
	DefaultBaseURL   = "https://query1.finance.yahoo.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second

	userAgent = "Mozilla/5.0 (compatible; optifolio/1.0)"
)

// Client implements the MarketDataClient interface
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
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

// NewClient creates a new Yahoo Finance client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
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
	return fmt.Sprintf("Yahoo Finance API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug().Str("url", c.baseURL+path).Msg("Yahoo Finance API request")

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

// chartResponse mirrors the /v8/finance/chart payload. Closes may contain
// nulls for days without a trade.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// GetRecentCloses retrieves daily closing prices for a symbol covering the
// last `days` calendar days, oldest first. An empty slice means the provider
// had no usable data; that is not an error.
func (c *Client) GetRecentCloses(ctx context.Context, symbol string, days int) ([]float64, error) {
	if days <= 0 {
		days = 2
	}

	params := url.Values{}
	params.Set("range", fmt.Sprintf("%dd", days))
	params.Set("interval", "1d")

	var resp chartResponse
	if err := c.get(ctx, "/v8/finance/chart/"+url.PathEscape(symbol), params, &resp); err != nil {
		return nil, err
	}

	if resp.Chart.Error != nil {
		return nil, &APIError{
			StatusCode: http.StatusNotFound,
			Message:    resp.Chart.Error.Description,
			Endpoint:   "/v8/finance/chart/" + symbol,
		}
	}

	var closes []float64
	for _, result := range resp.Chart.Result {
		for _, quote := range result.Indicators.Quote {
			for _, close := range quote.Close {
				if close != nil {
					closes = append(closes, *close)
				}
			}
		}
	}

	return closes, nil
}

// flexFloat64 handles JSON values that may be either a number or a string.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "N/A" {
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

// yfValue is Yahoo's {raw, fmt} numeric wrapper. Raw is occasionally a
// string, so one odd field must not fail the whole quote decode.
type yfValue struct {
	Raw flexFloat64 `json:"raw"`
}

func (v yfValue) value() float64 {
	return float64(v.Raw)
}

// quoteSummaryResponse mirrors the /v10/finance/quoteSummary payload for the
// price, summaryDetail, and financialData modules.
type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			Price struct {
				ShortName                  string  `json:"shortName"`
				LongName                   string  `json:"longName"`
				Currency                   string  `json:"currency"`
				RegularMarketPrice         yfValue `json:"regularMarketPrice"`
				RegularMarketPreviousClose yfValue `json:"regularMarketPreviousClose"`
			} `json:"price"`
			SummaryDetail struct {
				NAVPrice      yfValue `json:"navPrice"`
				PreviousClose yfValue `json:"previousClose"`
			} `json:"summaryDetail"`
			FinancialData struct {
				CurrentPrice yfValue `json:"currentPrice"`
			} `json:"financialData"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// GetQuote retrieves the instrument metadata bag for a symbol. Missing
// modules simply leave their fields zero.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	params := url.Values{}
	params.Set("modules", "price,summaryDetail,financialData")

	var resp quoteSummaryResponse
	if err := c.get(ctx, "/v10/finance/quoteSummary/"+url.PathEscape(symbol), params, &resp); err != nil {
		return nil, err
	}

	if resp.QuoteSummary.Error != nil {
		return nil, &APIError{
			StatusCode: http.StatusNotFound,
			Message:    resp.QuoteSummary.Error.Description,
			Endpoint:   "/v10/finance/quoteSummary/" + symbol,
		}
	}

	if len(resp.QuoteSummary.Result) == 0 {
		return &models.Quote{Symbol: symbol}, nil
	}

	r := resp.QuoteSummary.Result[0]
	quote := &models.Quote{
		Symbol:             symbol,
		ShortName:          r.Price.ShortName,
		LongName:           r.Price.LongName,
		Currency:           r.Price.Currency,
		CurrentPrice:       r.FinancialData.CurrentPrice.value(),
		RegularMarketPrice: r.Price.RegularMarketPrice.value(),
		NAVPrice:           r.SummaryDetail.NAVPrice.value(),
		PreviousClose:      r.Price.RegularMarketPreviousClose.value(),
	}
	if quote.PreviousClose == 0 {
		quote.PreviousClose = r.SummaryDetail.PreviousClose.value()
	}

	return quote, nil
}

// Ensure Client implements MarketDataClient
var _ interfaces.MarketDataClient = (*Client)(nil)
