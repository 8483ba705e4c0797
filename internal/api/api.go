package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"crypto_adda/internal/domain"
	"crypto_adda/internal/infra"
)

const (
	DefaultTimeout      = 30 * time.Second
	ServiceName         = "crypto-adda"
	RequestIDContextKey = "request_id"
	RequestIDHeaderKey  = "X-Request-ID"
)

// User facing messages.
const (
	MsgNoCoins           = "No coins found"
	MsgCoinNotFound      = "coin not found"
	MsgNoChartData       = "No data available."
	MsgCompareNotFound   = "One or both coins not found."
	MsgNoBookmarks       = "You haven't bookmarked any coins yet. Go bookmark something!"
	MsgNoBookmarkMatches = "No bookmarked coins found."
	MsgBookmarkFailed    = "Failed to update bookmarks. Please try again."
)

// CoinStore is the cache the handlers read market data from.
type CoinStore interface {
	EnsureCoinList(ctx context.Context)
	FetchPriceHistory(ctx context.Context, coinID string)
	FetchCoinDetail(ctx context.Context, coinID string)
	Coins() []domain.Coin
	Coin(coinID string) (domain.Coin, bool)
	PriceHistory(coinID string) (domain.PriceSeries, bool)
	Detail(coinID string) (domain.CoinDetail, bool)
	Loading() bool
	HistoryLoading() bool
}

// Bookmarks is the persisted watchlist.
type Bookmarks interface {
	Load(ctx context.Context) domain.BookmarkSet
	IsBookmarked(ctx context.Context, coinID string) bool
	Toggle(ctx context.Context, coinID string) (bool, error)
	Add(ctx context.Context, coinID string) error
	Remove(ctx context.Context, coinID string) error
}

// ProviderHealth reports the state of the upstream market data provider.
type ProviderHealth interface {
	Health() infra.BreakerStatus
}

// APIHandler serves the dashboard JSON API.
type APIHandler struct {
	coins     CoinStore
	bookmarks Bookmarks
	provider  ProviderHealth
	validator *Validator
	logger    *slog.Logger
	version   string
	loc       *time.Location
	now       func() time.Time
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(coins CoinStore, bookmarks Bookmarks, logger *slog.Logger) *APIHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &APIHandler{
		coins:     coins,
		bookmarks: bookmarks,
		validator: GetValidator(),
		logger:    logger,
		version:   "dev",
		loc:       time.Local,
		now:       time.Now,
	}
}

// WithVersion sets the version reported by the health check.
func (h *APIHandler) WithVersion(v string) *APIHandler {
	if v != "" {
		h.version = v
	}
	return h
}

// WithProvider adds the provider breaker status to the health check.
func (h *APIHandler) WithProvider(p ProviderHealth) *APIHandler {
	h.provider = p
	return h
}

// WithLocation sets the zone the cached date labels were written in.
// Chart windows are measured from today in that zone.
func (h *APIHandler) WithLocation(loc *time.Location) *APIHandler {
	if loc != nil {
		h.loc = loc
	}
	return h
}

// SetupRoutes configures all API routes
func (h *APIHandler) SetupRoutes() *gin.Engine {
	router := gin.New()

	router.Use(requestIDMiddleware())
	router.Use(requestLogger(h.logger))
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	router.GET("/health", h.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/coins", h.ListCoins)
		v1.GET("/coins/:id", h.GetCoin)
		v1.GET("/coins/:id/detail", h.GetCoinDetail)
		v1.GET("/coins/:id/chart", h.GetChart)
		v1.GET("/compare/:left/:right", h.Compare)
		v1.GET("/watchlist", h.Watchlist)

		v1.GET("/bookmarks/:id", h.GetBookmark)
		v1.POST("/bookmarks/:id/toggle", h.ToggleBookmark)
		v1.PUT("/bookmarks/:id", h.AddBookmark)
		v1.DELETE("/bookmarks/:id", h.RemoveBookmark)
	}

	return router
}
