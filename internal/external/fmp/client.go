package fmp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/brandt/screener/backend/pkg/config"
	"github.com/brandt/screener/backend/pkg/httputil"
	"github.com/brandt/screener/backend/pkg/logger"
)

// Client wraps the Financial Modeling Prep v3 REST API. Every FMP call in
// the application goes through this client so one limiter paces them all.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *httputil.Client
	limiter    *rate.Limiter
	logger     *logger.Logger
}

// NewClient creates a new FMP API client. The per-minute plan budget is
// spread over 61 seconds so a full-speed run never trips the upstream
// meter on minute boundaries.
func NewClient(cfg *config.Config, log *logger.Logger, httpClient *httputil.Client) *Client {
	return &Client{
		baseURL:    cfg.FMP.BaseURL,
		apiKey:     cfg.FMP.APIKey,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(float64(cfg.FMP.RequestsPerMinute)/float64(61)), 1),
		logger:     log.Component("fmp"),
	}
}

// StockList returns every tradeable symbol FMP knows about, all markets.
func (c *Client) StockList(ctx context.Context) ([]StockListItem, error) {
	var items []StockListItem
	if err := c.getJSON(ctx, "/v3/stock/list", &items); err != nil {
		return nil, err
	}

	c.logger.WithField("count", len(items)).Debug("Fetched stock list")
	return items, nil
}

// Profile returns the company profile for a ticker, or nil when FMP has
// none (the upstream wraps the profile in a one-element array).
func (c *Client) Profile(ctx context.Context, ticker string) (*CompanyProfile, error) {
	var profiles []CompanyProfile
	if err := c.getJSON(ctx, "/v3/profile/"+url.PathEscape(ticker), &profiles); err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, nil
	}
	return &profiles[0], nil
}

// IncomeStatements returns up to limit statement periods for a ticker,
// newest first. period is "annual" or "quarter".
func (c *Client) IncomeStatements(ctx context.Context, ticker, period string, limit int) ([]IncomeStatementData, error) {
	path := fmt.Sprintf("/v3/income-statement/%s?period=%s&limit=%d", url.PathEscape(ticker), period, limit)

	var statements []IncomeStatementData
	if err := c.getJSON(ctx, path, &statements); err != nil {
		return nil, err
	}
	return statements, nil
}

// KeyMetrics returns up to limit key-metric periods for a ticker, newest
// first.
func (c *Client) KeyMetrics(ctx context.Context, ticker, period string, limit int) ([]KeyMetricsData, error) {
	path := fmt.Sprintf("/v3/key-metrics/%s?period=%s&limit=%d", url.PathEscape(ticker), period, limit)

	var metrics []KeyMetricsData
	if err := c.getJSON(ctx, path, &metrics); err != nil {
		return nil, err
	}
	return metrics, nil
}

// BatchQuotes returns current quotes for a batch of tickers in one call.
// FMP accepts roughly 50 comma-separated tickers per request; callers
// chunk accordingly.
func (c *Client) BatchQuotes(ctx context.Context, tickers []string) ([]Quote, error) {
	if len(tickers) == 0 {
		return nil, nil
	}

	escaped := make([]string, len(tickers))
	for i, t := range tickers {
		escaped[i] = url.PathEscape(t)
	}

	var quotes []Quote
	if err := c.getJSON(ctx, "/v3/quote/"+strings.Join(escaped, ","), &quotes); err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"requested": len(tickers),
		"returned":  len(quotes),
	}).Debug("Fetched batch quotes")
	return quotes, nil
}

// getJSON performs one rate-limited GET and decodes the body into dest.
// Errors carry the path, never the full URL, so the API key stays out of
// error chains.
func (c *Client) getJSON(ctx context.Context, path string, dest interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	resp, err := c.httpClient.Get(ctx, c.url(path))
	if err != nil {
		return fmt.Errorf("fmp request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("fmp request %s: status %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("fmp response %s: %w", path, err)
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("fmp decode %s: %w", path, err)
	}
	return nil
}

// url appends the API key, respecting an existing query string.
func (c *Client) url(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return c.baseURL + path + sep + "apikey=" + c.apiKey
}
