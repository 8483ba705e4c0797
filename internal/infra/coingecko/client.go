package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"crypto_adda/internal/domain"
	"crypto_adda/internal/infra"
)

const (
	PublicURL = "https://api.coingecko.com/api/v3"

	apiKeyHeader = "x-cg-demo-api-key"
	maxErrorBody = 512
)

var (
	// ErrNotFound is returned when the provider does not know a coin id.
	ErrNotFound = errors.New("coingecko: not found")
	// ErrRateLimited is returned on HTTP 429.
	ErrRateLimited = errors.New("coingecko: rate limited")
)

// ClientConfig configures a Client. Zero values fall back to public defaults.
type ClientConfig struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	RatePerMinute int
}

// Client is the read-only market data client for the CoinGecko REST API.
// Calls are throttled by a token bucket and guarded by a circuit breaker;
// nothing is retried.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *infra.RateLimiter
	breaker    *infra.CircuitBreaker
}

// NewClient creates a new CoinGecko REST client
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = PublicURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RatePerMinute <= 0 {
		cfg.RatePerMinute = 30
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: infra.NewCoinGeckoLimiter(cfg.RatePerMinute),
		breaker: infra.NewCircuitBreaker(infra.DefaultBreakerConfig("coingecko")),
	}
}

// NewClientFromConfig builds a client from the application config.
func NewClientFromConfig(cfg *infra.Config) *Client {
	cg := cfg.API.CoinGecko
	return NewClient(ClientConfig{
		BaseURL:       cg.RestURL,
		APIKey:        cg.APIKey,
		Timeout:       cfg.RequestTimeout(),
		RatePerMinute: cg.RatePerMinute,
	})
}

// ListMarkets returns one page of coin summaries from /coins/markets.
func (c *Client) ListMarkets(ctx context.Context, p MarketsParams) ([]domain.Coin, error) {
	if p.VsCurrency == "" {
		p.VsCurrency = "usd"
	}
	if p.Order == "" {
		p.Order = "market_cap_desc"
	}
	if p.Page <= 0 {
		p.Page = 1
	}

	q := url.Values{}
	q.Set("vs_currency", p.VsCurrency)
	q.Set("order", p.Order)
	q.Set("per_page", strconv.Itoa(p.PerPage))
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("sparkline", strconv.FormatBool(p.Sparkline))

	var coins []domain.Coin
	if err := c.get(ctx, "/coins/markets", q, &coins); err != nil {
		return nil, fmt.Errorf("list markets: %w", err)
	}
	return coins, nil
}

// CoinDetail returns /coins/{id} without localization, tickers, community,
// developer or sparkline data.
func (c *Client) CoinDetail(ctx context.Context, coinID string) (*domain.CoinDetail, error) {
	q := url.Values{}
	q.Set("localization", "false")
	q.Set("tickers", "false")
	q.Set("community_data", "false")
	q.Set("developer_data", "false")
	q.Set("sparkline", "false")

	var resp coinDetailResponse
	if err := c.get(ctx, "/coins/"+url.PathEscape(coinID), q, &resp); err != nil {
		return nil, fmt.Errorf("coin detail %s: %w", coinID, err)
	}
	return resp.toDomain(), nil
}

// MarketChart returns daily [timestamp, price] samples for the last days.
func (c *Client) MarketChart(ctx context.Context, coinID, vsCurrency string, days int) ([]PriceSample, error) {
	if vsCurrency == "" {
		vsCurrency = "usd"
	}

	q := url.Values{}
	q.Set("vs_currency", vsCurrency)
	q.Set("days", strconv.Itoa(days))
	q.Set("interval", "daily")

	var resp marketChartResponse
	if err := c.get(ctx, "/coins/"+url.PathEscape(coinID)+"/market_chart", q, &resp); err != nil {
		return nil, fmt.Errorf("market chart %s: %w", coinID, err)
	}
	return resp.Prices, nil
}

// Health reports the state of the provider breaker.
func (c *Client) Health() infra.BreakerStatus {
	return c.breaker.Status()
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	if !c.breaker.Allow() {
		return infra.ErrCircuitOpen
	}
	if err := c.limiter.Wait(ctx); err != nil {
		c.breaker.Record(infra.OutcomeIgnored)
		return err
	}

	err := c.doGet(ctx, path, q, out)

	var throttled *rateLimitError
	switch {
	case err == nil, errors.Is(err, ErrNotFound):
		c.breaker.Record(infra.OutcomeSuccess)
	case errors.As(err, &throttled):
		c.breaker.Throttle(throttled.retryAfter)
	case errors.Is(err, context.Canceled):
		c.breaker.Record(infra.OutcomeIgnored)
	default:
		c.breaker.Record(infra.OutcomeFailure)
	}
	return err
}

func (c *Client) doGet(ctx context.Context, path string, q url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(q) > 0 {
		reqURL += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", infra.GetUserAgent())
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	slog.Debug("CoinGecko request",
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("took", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var apiErr errorResponse
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &apiErr) == nil && apiErr.message() != "" {
		msg = apiErr.message()
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	case http.StatusTooManyRequests:
		return &rateLimitError{msg: msg, retryAfter: retryAfter(resp.Header.Get("Retry-After"))}
	default:
		return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, msg)
	}
}

// rateLimitError is a 429 answer. It matches ErrRateLimited.
type rateLimitError struct {
	msg        string
	retryAfter time.Duration
}

func (e *rateLimitError) Error() string {
	return fmt.Sprintf("%v: %s", ErrRateLimited, e.msg)
}

func (e *rateLimitError) Unwrap() error { return ErrRateLimited }

// retryAfter reads a Retry-After header given in seconds. Anything else is zero.
func retryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
