package market

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"crypto_adda/internal/chart"
	"crypto_adda/internal/domain"
	"crypto_adda/internal/infra"
	"crypto_adda/internal/infra/coingecko"
)

// MarketDataClient is the subset of the CoinGecko client the cache needs.
type MarketDataClient interface {
	ListMarkets(ctx context.Context, p coingecko.MarketsParams) ([]domain.Coin, error)
	CoinDetail(ctx context.Context, coinID string) (*domain.CoinDetail, error)
	MarketChart(ctx context.Context, coinID, vsCurrency string, days int) ([]coingecko.PriceSample, error)
}

// Options configures what the cache asks the provider for.
type Options struct {
	VsCurrency  string
	PerPage     int
	HistoryDays int
	Location    *time.Location // zone of the "dd/mm/yyyy" labels
}

// OptionsFromConfig maps the application config onto cache options.
func OptionsFromConfig(cfg *infra.Config) Options {
	cg := cfg.API.CoinGecko
	return Options{
		VsCurrency:  cg.VsCurrency,
		PerPage:     cg.PerPage,
		HistoryDays: cg.HistoryDays,
		Location:    cfg.DateLocation(),
	}
}

// CoinCache holds the coin list, the per-coin price history and the
// per-coin detail for the lifetime of the process.
//
// The coin list is replaced on every successful fetch. Price history and
// detail are additive: once an id is present it is never refetched or
// overwritten. Fetch methods never return errors; callers observe failure
// as "still no data once the loading flag is clear".
type CoinCache struct {
	client MarketDataClient
	opts   Options
	group  singleflight.Group

	mu             sync.RWMutex
	coins          []domain.Coin
	history        map[string]domain.PriceSeries
	details        map[string]*domain.CoinDetail
	coinsLoading   bool
	historyLoading int // in-flight history fetches
	detailLoading  int
}

// NewCoinCache creates an empty cache backed by client.
func NewCoinCache(client MarketDataClient, opts Options) *CoinCache {
	if opts.VsCurrency == "" {
		opts.VsCurrency = "usd"
	}
	if opts.PerPage <= 0 {
		opts.PerPage = 250
	}
	if opts.HistoryDays <= 0 {
		opts.HistoryDays = 90
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &CoinCache{
		client:  client,
		opts:    opts,
		history: make(map[string]domain.PriceSeries),
		details: make(map[string]*domain.CoinDetail),
	}
}

// FetchCoinList loads the top coins by market cap and replaces the cached
// list. On failure the previous list is kept.
func (c *CoinCache) FetchCoinList(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)

	c.group.Do("coins", func() (any, error) {
		c.setCoinsLoading(true)
		defer c.setCoinsLoading(false)

		coins, err := c.client.ListMarkets(ctx, coingecko.MarketsParams{
			VsCurrency: c.opts.VsCurrency,
			Order:      "market_cap_desc",
			PerPage:    c.opts.PerPage,
			Page:       1,
		})
		if err != nil {
			slog.Error("Failed to fetch coin list", slog.Any("error", err))
			return nil, nil
		}

		c.mu.Lock()
		c.coins = coins
		c.mu.Unlock()

		slog.Info("Coin list updated", slog.Int("count", len(coins)))
		return nil, nil
	})
}

// EnsureCoinList fetches the coin list only when nothing is cached yet.
func (c *CoinCache) EnsureCoinList(ctx context.Context) {
	c.mu.RLock()
	empty := len(c.coins) == 0
	c.mu.RUnlock()

	if empty {
		c.FetchCoinList(ctx)
	}
}

// FetchPriceHistory loads the daily price history of coinID unless it is
// already cached. Concurrent calls for the same id share one request.
func (c *CoinCache) FetchPriceHistory(ctx context.Context, coinID string) {
	if coinID == "" || c.hasHistory(coinID) {
		return
	}
	// the flight is shared, so one caller going away must not cancel it
	ctx = context.WithoutCancel(ctx)

	c.group.Do("history:"+coinID, func() (any, error) {
		if c.hasHistory(coinID) {
			return nil, nil
		}

		c.addHistoryLoading(1)
		defer c.addHistoryLoading(-1)

		samples, err := c.client.MarketChart(ctx, coinID, c.opts.VsCurrency, c.opts.HistoryDays)
		if err != nil {
			slog.Error("Failed to fetch price history",
				slog.String("coin_id", coinID),
				slog.Any("error", err))
			return nil, nil
		}

		series := c.toSeries(samples)

		c.mu.Lock()
		if _, exists := c.history[coinID]; exists {
			c.mu.Unlock()
			slog.Debug("Discarding late price history", slog.String("coin_id", coinID))
			return nil, nil
		}
		c.history[coinID] = series
		c.mu.Unlock()

		slog.Debug("Price history cached",
			slog.String("coin_id", coinID),
			slog.Int("points", len(series)))
		return nil, nil
	})
}

// FetchCoinDetail loads the per-coin detail of coinID unless it is cached.
func (c *CoinCache) FetchCoinDetail(ctx context.Context, coinID string) {
	if coinID == "" || c.hasDetail(coinID) {
		return
	}
	ctx = context.WithoutCancel(ctx)

	c.group.Do("detail:"+coinID, func() (any, error) {
		if c.hasDetail(coinID) {
			return nil, nil
		}

		c.addDetailLoading(1)
		defer c.addDetailLoading(-1)

		detail, err := c.client.CoinDetail(ctx, coinID)
		if err != nil {
			if errors.Is(err, coingecko.ErrNotFound) {
				slog.Info("Coin not known to provider", slog.String("coin_id", coinID))
			} else {
				slog.Error("Failed to fetch coin detail",
					slog.String("coin_id", coinID),
					slog.Any("error", err))
			}
			return nil, nil
		}

		c.mu.Lock()
		if _, exists := c.details[coinID]; !exists {
			c.details[coinID] = detail
		}
		c.mu.Unlock()
		return nil, nil
	})
}

func (c *CoinCache) toSeries(samples []coingecko.PriceSample) domain.PriceSeries {
	series := make(domain.PriceSeries, 0, len(samples))
	for _, s := range samples {
		t := time.UnixMilli(s.TimestampMS).In(c.opts.Location)
		series = append(series, domain.PricePoint{
			Date:  chart.FormatDate(t),
			Price: s.Price,
		})
	}
	return series
}

// Coins returns a copy of the cached coin list.
func (c *CoinCache) Coins() []domain.Coin {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Coin, len(c.coins))
	copy(out, c.coins)
	return out
}

// Coin looks up a coin in the cached list.
func (c *CoinCache) Coin(coinID string) (domain.Coin, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return domain.FindCoin(c.coins, coinID)
}

// PriceHistory returns a copy of the cached series of coinID.
func (c *CoinCache) PriceHistory(coinID string) (domain.PriceSeries, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	series, ok := c.history[coinID]
	if !ok {
		return nil, false
	}
	return series.Clone(), true
}

// Detail returns the cached detail of coinID.
func (c *CoinCache) Detail(coinID string) (domain.CoinDetail, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d, ok := c.details[coinID]
	if !ok {
		return domain.CoinDetail{}, false
	}
	return *d, true
}

// Loading reports whether a coin list fetch is in flight.
func (c *CoinCache) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.coinsLoading
}

// HistoryLoading reports whether any price history fetch is in flight.
func (c *CoinCache) HistoryLoading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.historyLoading > 0
}

// DetailLoading reports whether any coin detail fetch is in flight.
func (c *CoinCache) DetailLoading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.detailLoading > 0
}

func (c *CoinCache) hasHistory(coinID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.history[coinID]
	return ok
}

func (c *CoinCache) hasDetail(coinID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.details[coinID]
	return ok
}

func (c *CoinCache) setCoinsLoading(v bool) {
	c.mu.Lock()
	c.coinsLoading = v
	c.mu.Unlock()
}

func (c *CoinCache) addHistoryLoading(n int) {
	c.mu.Lock()
	c.historyLoading += n
	c.mu.Unlock()
}

func (c *CoinCache) addDetailLoading(n int) {
	c.mu.Lock()
	c.detailLoading += n
	c.mu.Unlock()
}
