package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"crypto_adda/internal/domain"
	"crypto_adda/internal/infra"
)

// MockCoinStore implements CoinStore for testing
type MockCoinStore struct {
	mock.Mock
}

func (m *MockCoinStore) EnsureCoinList(ctx context.Context) { m.Called(ctx) }

func (m *MockCoinStore) FetchPriceHistory(ctx context.Context, coinID string) {
	m.Called(ctx, coinID)
}

func (m *MockCoinStore) FetchCoinDetail(ctx context.Context, coinID string) {
	m.Called(ctx, coinID)
}

func (m *MockCoinStore) Coins() []domain.Coin {
	args := m.Called()
	return args.Get(0).([]domain.Coin)
}

func (m *MockCoinStore) Coin(coinID string) (domain.Coin, bool) {
	args := m.Called(coinID)
	return args.Get(0).(domain.Coin), args.Bool(1)
}

func (m *MockCoinStore) PriceHistory(coinID string) (domain.PriceSeries, bool) {
	args := m.Called(coinID)
	return args.Get(0).(domain.PriceSeries), args.Bool(1)
}

func (m *MockCoinStore) Detail(coinID string) (domain.CoinDetail, bool) {
	args := m.Called(coinID)
	return args.Get(0).(domain.CoinDetail), args.Bool(1)
}

func (m *MockCoinStore) Loading() bool        { return m.Called().Bool(0) }
func (m *MockCoinStore) HistoryLoading() bool { return m.Called().Bool(0) }

// MockBookmarks implements Bookmarks for testing
type MockBookmarks struct {
	mock.Mock
}

func (m *MockBookmarks) Load(ctx context.Context) domain.BookmarkSet {
	return m.Called(ctx).Get(0).(domain.BookmarkSet)
}

func (m *MockBookmarks) IsBookmarked(ctx context.Context, coinID string) bool {
	return m.Called(ctx, coinID).Bool(0)
}

func (m *MockBookmarks) Toggle(ctx context.Context, coinID string) (bool, error) {
	args := m.Called(ctx, coinID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookmarks) Add(ctx context.Context, coinID string) error {
	return m.Called(ctx, coinID).Error(0)
}

func (m *MockBookmarks) Remove(ctx context.Context, coinID string) error {
	return m.Called(ctx, coinID).Error(0)
}

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Suppress logs during testing
	}))
}

func setupHandler(store *MockCoinStore, bookmarks *MockBookmarks) (*APIHandler, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	h := NewAPIHandler(store, bookmarks, setupTestLogger()).WithLocation(time.UTC)
	h.now = func() time.Time { return time.Date(2024, 1, 10, 15, 30, 0, 0, time.UTC) }
	return h, h.SetupRoutes()
}

func createTestCoins(count int) []domain.Coin {
	coins := make([]domain.Coin, count)
	for i := 0; i < count; i++ {
		coins[i] = domain.Coin{
			ID:            fmt.Sprintf("coin-%d", i),
			Name:          fmt.Sprintf("Coin %d", i),
			CurrentPrice:  float64(100 + i),
			MarketCap:     float64(1000 * (count - i)),
			MarketCapRank: i + 1,
		}
	}
	return coins
}

func januarySeries() domain.PriceSeries {
	series := make(domain.PriceSeries, 0, 10)
	for d := 1; d <= 10; d++ {
		series = append(series, domain.PricePoint{
			Date:  fmt.Sprintf("%02d/01/2024", d),
			Price: float64(40000 + d*100),
		})
	}
	return series
}

func doRequest(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestNewAPIHandler_NilLogger(t *testing.T) {
	h := NewAPIHandler(&MockCoinStore{}, &MockBookmarks{}, nil)
	assert.NotNil(t, h.logger)
	assert.Equal(t, slog.Default(), h.logger)
}

func TestHealthCheck(t *testing.T) {
	store := &MockCoinStore{}
	store.On("Coins").Return(createTestCoins(3))
	_, router := setupHandler(store, &MockBookmarks{})

	w := doRequest(router, http.MethodGet, "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, float64(3), body["coins_cached"])
	assert.NotEmpty(t, w.Header().Get(RequestIDHeaderKey))
}

type fakeProvider struct{ status infra.BreakerStatus }

func (f fakeProvider) Health() infra.BreakerStatus { return f.status }

func TestHealthCheck_ProviderStatus(t *testing.T) {
	retryAt := time.Date(2024, 1, 10, 15, 31, 0, 0, time.UTC)

	tests := []struct {
		name       string
		status     infra.BreakerStatus
		wantStatus string
	}{
		{"provider up", infra.BreakerStatus{Name: "coingecko", State: "closed"}, "OK"},
		{"provider throttled", infra.BreakerStatus{Name: "coingecko", State: "open", Throttled: true, RetryAt: &retryAt}, "DEGRADED"},
		{"provider half open", infra.BreakerStatus{Name: "coingecko", State: "half_open", Trips: 2}, "DEGRADED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &MockCoinStore{}
			store.On("Coins").Return(createTestCoins(1))
			h, _ := setupHandler(store, &MockBookmarks{})
			router := h.WithProvider(fakeProvider{status: tt.status}).SetupRoutes()

			w := doRequest(router, http.MethodGet, "/health")
			require.Equal(t, http.StatusOK, w.Code)

			var body struct {
				Status   string              `json:"status"`
				Provider infra.BreakerStatus `json:"provider"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Equal(t, tt.status.State, body.Provider.State)
			assert.Equal(t, tt.status.Throttled, body.Provider.Throttled)
			if tt.status.RetryAt != nil {
				require.NotNil(t, body.Provider.RetryAt)
				assert.True(t, retryAt.Equal(*body.Provider.RetryAt))
			}
		})
	}
}

func TestListCoins(t *testing.T) {
	tests := []struct {
		name           string
		coins          []domain.Coin
		query          string
		loading        bool
		wantCount      int
		wantPage       int
		wantPages      int
		wantPagination bool
		wantMessage    string
	}{
		{
			name:           "first page",
			coins:          createTestCoins(25),
			query:          "",
			wantCount:      10,
			wantPage:       1,
			wantPages:      3,
			wantPagination: true,
		},
		{
			name:           "last page",
			coins:          createTestCoins(25),
			query:          "?page=3",
			wantCount:      5,
			wantPage:       3,
			wantPages:      3,
			wantPagination: true,
		},
		{
			name:           "search",
			coins:          createTestCoins(25),
			query:          "?search=coin%202",
			wantCount:      6, // Coin 2, Coin 20..24
			wantPage:       1,
			wantPages:      1,
			wantPagination: false,
		},
		{
			name:           "loading hides pagination",
			coins:          createTestCoins(25),
			loading:        true,
			wantCount:      10,
			wantPage:       1,
			wantPages:      3,
			wantPagination: false,
		},
		{
			name:           "empty list",
			coins:          []domain.Coin{},
			wantCount:      0,
			wantPage:       1,
			wantPages:      0,
			wantPagination: false,
			wantMessage:    MsgNoCoins,
		},
		{
			name:        "no search match",
			coins:       createTestCoins(5),
			query:       "?search=doge",
			wantCount:   0,
			wantPage:    1,
			wantMessage: MsgNoCoins,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &MockCoinStore{}
			store.On("EnsureCoinList", mock.Anything).Return()
			store.On("Coins").Return(tt.coins)
			store.On("Loading").Return(tt.loading)
			_, router := setupHandler(store, &MockBookmarks{})

			w := doRequest(router, http.MethodGet, "/api/v1/coins"+tt.query)

			require.Equal(t, http.StatusOK, w.Code)
			resp := decode[coinListResponse](t, w)
			assert.Len(t, resp.Coins, tt.wantCount)
			assert.Equal(t, tt.wantPage, resp.Page)
			assert.Equal(t, tt.wantPages, resp.TotalPages)
			assert.Equal(t, tt.wantPagination, resp.ShowPagination)
			assert.Equal(t, tt.wantMessage, resp.Message)
			store.AssertExpectations(t)
		})
	}
}

func TestListCoins_InvalidParams(t *testing.T) {
	_, router := setupHandler(&MockCoinStore{}, &MockBookmarks{})

	for _, q := range []string{"?page=0", "?page=abc", "?per_page=500"} {
		w := doRequest(router, http.MethodGet, "/api/v1/coins"+q)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestGetCoin(t *testing.T) {
	btc := domain.Coin{ID: "bitcoin", Name: "Bitcoin", PriceChangePercentage24h: -2.5}

	store := &MockCoinStore{}
	store.On("EnsureCoinList", mock.Anything).Return()
	store.On("Coin", "bitcoin").Return(btc, true)
	store.On("Coin", "no-such-coin").Return(domain.Coin{}, false)

	bookmarks := &MockBookmarks{}
	bookmarks.On("IsBookmarked", mock.Anything, "bitcoin").Return(true)

	_, router := setupHandler(store, bookmarks)

	t.Run("found", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/v1/coins/bitcoin")
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode[coinResponse](t, w)
		assert.Equal(t, "Bitcoin", resp.Coin.Name)
		assert.Equal(t, "negative", resp.ChangeDirection)
		assert.True(t, resp.Bookmarked)
	})

	t.Run("not found", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/v1/coins/no-such-coin")
		require.Equal(t, http.StatusNotFound, w.Code)

		body := decode[map[string]string](t, w)
		assert.Equal(t, MsgCoinNotFound, body["error"])
		assert.NotEmpty(t, body["request_id"])
	})

	t.Run("invalid id", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/v1/coins/bit%20coin!")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetCoinDetail(t *testing.T) {
	store := &MockCoinStore{}
	store.On("FetchCoinDetail", mock.Anything, "ethereum").Return()
	store.On("Detail", "ethereum").Return(domain.CoinDetail{ID: "ethereum", HashingAlgorithm: "Ethash"}, true)
	store.On("FetchCoinDetail", mock.Anything, "ghost").Return()
	store.On("Detail", "ghost").Return(domain.CoinDetail{}, false)

	bookmarks := &MockBookmarks{}
	bookmarks.On("IsBookmarked", mock.Anything, "ethereum").Return(false)

	_, router := setupHandler(store, bookmarks)

	w := doRequest(router, http.MethodGet, "/api/v1/coins/ethereum/detail")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[coinDetailResponse](t, w)
	assert.Equal(t, "Ethash", resp.Detail.HashingAlgorithm)
	assert.False(t, resp.Bookmarked)

	w = doRequest(router, http.MethodGet, "/api/v1/coins/ghost/detail")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetChart(t *testing.T) {
	store := &MockCoinStore{}
	store.On("FetchPriceHistory", mock.Anything, "bitcoin").Return()
	store.On("PriceHistory", "bitcoin").Return(januarySeries(), true)
	store.On("HistoryLoading").Return(false)
	_, router := setupHandler(store, &MockBookmarks{})

	w := doRequest(router, http.MethodGet, "/api/v1/coins/bitcoin/chart?range=7d")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[chartResponse](t, w)
	assert.Equal(t, "7d", resp.Range)
	assert.Equal(t, "Last 7 days", resp.Label)
	require.Len(t, resp.Points, 8)
	assert.Equal(t, "03/01/2024", resp.Points[0].Date)
	assert.Equal(t, "10/01/2024", resp.Points[7].Date)
	assert.Equal(t, "Jan 3", resp.Points[0].Tick)
	assert.Equal(t, "Jan 10, 2024", resp.Points[7].Tooltip)
	assert.Empty(t, resp.Message)
}

func TestGetChart_DefaultRangeAndNoData(t *testing.T) {
	store := &MockCoinStore{}
	store.On("FetchPriceHistory", mock.Anything, "ghost").Return()
	store.On("PriceHistory", "ghost").Return(domain.PriceSeries(nil), false)
	store.On("HistoryLoading").Return(false)
	_, router := setupHandler(store, &MockBookmarks{})

	w := doRequest(router, http.MethodGet, "/api/v1/coins/ghost/chart")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[chartResponse](t, w)
	assert.Equal(t, "90d", resp.Range)
	assert.Empty(t, resp.Points)
	assert.Equal(t, MsgNoChartData, resp.Message)
}

func TestGetChart_WindowInLabelZone(t *testing.T) {
	store := &MockCoinStore{}
	store.On("FetchPriceHistory", mock.Anything, "bitcoin").Return()
	store.On("PriceHistory", "bitcoin").Return(januarySeries(), true)
	store.On("HistoryLoading").Return(false)

	// 20:00 UTC on the 9th is already the 10th in Tokyo
	tokyo := time.FixedZone("JST", 9*60*60)
	h := NewAPIHandler(store, &MockBookmarks{}, setupTestLogger()).WithLocation(tokyo)
	h.now = func() time.Time { return time.Date(2024, 1, 9, 20, 0, 0, 0, time.UTC) }
	router := h.SetupRoutes()

	w := doRequest(router, http.MethodGet, "/api/v1/coins/bitcoin/chart?range=7d")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[chartResponse](t, w)
	require.Len(t, resp.Points, 8)
	assert.Equal(t, "03/01/2024", resp.Points[0].Date)
	assert.Equal(t, "10/01/2024", resp.Points[7].Date)
}

func TestGetChart_EmptyWindowIsNotNoData(t *testing.T) {
	old := domain.PriceSeries{
		{Date: "01/06/2023", Price: 27000},
		{Date: "02/06/2023", Price: 27100},
	}
	store := &MockCoinStore{}
	store.On("FetchPriceHistory", mock.Anything, "bitcoin").Return()
	store.On("PriceHistory", "bitcoin").Return(old, true)
	store.On("HistoryLoading").Return(false)
	_, router := setupHandler(store, &MockBookmarks{})

	w := doRequest(router, http.MethodGet, "/api/v1/coins/bitcoin/chart?range=7d")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[chartResponse](t, w)
	assert.Empty(t, resp.Points)
	assert.Empty(t, resp.Message)
}

func TestGetChart_InvalidRange(t *testing.T) {
	_, router := setupHandler(&MockCoinStore{}, &MockBookmarks{})

	w := doRequest(router, http.MethodGet, "/api/v1/coins/bitcoin/chart?range=1y")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCompare(t *testing.T) {
	btc := domain.Coin{ID: "bitcoin", CurrentPrice: 40000, MarketCap: 800}
	eth := domain.Coin{ID: "ethereum", CurrentPrice: 2000, MarketCap: 200}

	store := &MockCoinStore{}
	store.On("EnsureCoinList", mock.Anything).Return()
	store.On("Coin", "bitcoin").Return(btc, true)
	store.On("Coin", "ethereum").Return(eth, true)
	store.On("Coin", "ghost").Return(domain.Coin{}, false)
	store.On("FetchPriceHistory", mock.Anything, mock.Anything).Return()
	store.On("PriceHistory", "bitcoin").Return(januarySeries(), true)
	store.On("PriceHistory", "ethereum").Return(domain.PriceSeries(nil), false)
	store.On("HistoryLoading").Return(false)

	bookmarks := &MockBookmarks{}
	bookmarks.On("IsBookmarked", mock.Anything, mock.Anything).Return(false)

	_, router := setupHandler(store, bookmarks)

	t.Run("both found", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/v1/compare/bitcoin/ethereum?range=30d")
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode[compareResponse](t, w)
		require.NotNil(t, resp.PriceRatio)
		assert.Equal(t, "20", *resp.PriceRatio)
		require.NotNil(t, resp.MarketCapRatio)
		assert.Equal(t, "4", *resp.MarketCapRatio)
		require.NotNil(t, resp.PriceDiffPct)
		assert.Equal(t, "1900.00", *resp.PriceDiffPct)
		assert.Len(t, resp.LeftChart.Points, 10)
		assert.Equal(t, MsgNoChartData, resp.RightChart.Message)

		store.AssertCalled(t, "FetchPriceHistory", mock.Anything, "bitcoin")
		store.AssertCalled(t, "FetchPriceHistory", mock.Anything, "ethereum")
	})

	t.Run("one missing", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/v1/compare/bitcoin/ghost")
		require.Equal(t, http.StatusNotFound, w.Code)

		body := decode[map[string]string](t, w)
		assert.Equal(t, MsgCompareNotFound, body["error"])
	})
}

func TestCompare_ZeroDenominator(t *testing.T) {
	store := &MockCoinStore{}
	store.On("EnsureCoinList", mock.Anything).Return()
	store.On("Coin", "a").Return(domain.Coin{ID: "a", CurrentPrice: 1}, true)
	store.On("Coin", "b").Return(domain.Coin{ID: "b"}, true)
	store.On("FetchPriceHistory", mock.Anything, mock.Anything).Return()
	store.On("PriceHistory", mock.Anything).Return(domain.PriceSeries(nil), false)
	store.On("HistoryLoading").Return(false)

	bookmarks := &MockBookmarks{}
	bookmarks.On("IsBookmarked", mock.Anything, mock.Anything).Return(false)

	_, router := setupHandler(store, bookmarks)

	w := doRequest(router, http.MethodGet, "/api/v1/compare/a/b")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[compareResponse](t, w)
	assert.Nil(t, resp.PriceRatio)
	assert.Nil(t, resp.MarketCapRatio)
	assert.Nil(t, resp.PriceDiffPct)
}

func TestWatchlist(t *testing.T) {
	coins := createTestCoins(20)

	tests := []struct {
		name        string
		set         domain.BookmarkSet
		query       string
		wantCount   int
		wantPages   int
		wantMessage string
	}{
		{
			name:        "nothing bookmarked",
			set:         domain.NewBookmarkSet(),
			wantMessage: MsgNoBookmarks,
		},
		{
			name:        "bookmarks not in list",
			set:         domain.NewBookmarkSet("ghost-coin"),
			wantMessage: MsgNoBookmarkMatches,
		},
		{
			name:      "first page of seven",
			set:       domain.NewBookmarkSet("coin-0", "coin-1", "coin-2", "coin-3", "coin-4", "coin-5", "coin-6", "coin-7", "ghost"),
			wantCount: 7,
			wantPages: 2,
		},
		{
			name:      "second page",
			set:       domain.NewBookmarkSet("coin-0", "coin-1", "coin-2", "coin-3", "coin-4", "coin-5", "coin-6", "coin-7"),
			query:     "?page=2",
			wantCount: 1,
			wantPages: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &MockCoinStore{}
			store.On("EnsureCoinList", mock.Anything).Return()
			store.On("Coins").Return(coins)
			store.On("Loading").Return(false)

			bookmarks := &MockBookmarks{}
			bookmarks.On("Load", mock.Anything).Return(tt.set)

			_, router := setupHandler(store, bookmarks)

			w := doRequest(router, http.MethodGet, "/api/v1/watchlist"+tt.query)
			require.Equal(t, http.StatusOK, w.Code)

			resp := decode[watchlistResponse](t, w)
			assert.Len(t, resp.Coins, tt.wantCount)
			assert.Equal(t, tt.wantPages, resp.TotalPages)
			assert.Equal(t, tt.wantMessage, resp.Message)
		})
	}
}

func TestBookmarkRoutes(t *testing.T) {
	bookmarks := &MockBookmarks{}
	bookmarks.On("IsBookmarked", mock.Anything, "bitcoin").Return(true)
	bookmarks.On("Toggle", mock.Anything, "bitcoin").Return(false, nil)
	bookmarks.On("Add", mock.Anything, "solana").Return(nil)
	bookmarks.On("Remove", mock.Anything, "solana").Return(nil)
	bookmarks.On("Toggle", mock.Anything, "dogecoin").Return(false, errors.New("disk full"))

	_, router := setupHandler(&MockCoinStore{}, bookmarks)

	tests := []struct {
		name           string
		method         string
		path           string
		wantStatus     int
		wantBookmarked bool
	}{
		{"get", http.MethodGet, "/api/v1/bookmarks/bitcoin", http.StatusOK, true},
		{"toggle", http.MethodPost, "/api/v1/bookmarks/bitcoin/toggle", http.StatusOK, false},
		{"add", http.MethodPut, "/api/v1/bookmarks/solana", http.StatusOK, true},
		{"remove", http.MethodDelete, "/api/v1/bookmarks/solana", http.StatusOK, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, tt.method, tt.path)
			require.Equal(t, tt.wantStatus, w.Code)

			resp := decode[bookmarkResponse](t, w)
			assert.Equal(t, tt.wantBookmarked, resp.Bookmarked)
		})
	}

	t.Run("write failure", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/api/v1/bookmarks/dogecoin/toggle")
		require.Equal(t, http.StatusInternalServerError, w.Code)

		body := decode[map[string]string](t, w)
		assert.Equal(t, MsgBookmarkFailed, body["error"])
		assert.NotContains(t, w.Body.String(), "disk full")
	})
}

func TestCORSPreflight(t *testing.T) {
	_, router := setupHandler(&MockCoinStore{}, &MockBookmarks{})

	w := doRequest(router, http.MethodOptions, "/api/v1/bookmarks/bitcoin")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDPropagation(t *testing.T) {
	store := &MockCoinStore{}
	store.On("Coins").Return([]domain.Coin{})
	_, router := setupHandler(store, &MockBookmarks{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeaderKey, "req-123")
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeaderKey))
}

func TestRequestID_RejectsUnsafeClientValue(t *testing.T) {
	store := &MockCoinStore{}
	store.On("Coins").Return([]domain.Coin{})
	_, router := setupHandler(store, &MockBookmarks{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeaderKey, "bad id\twith tab")
	router.ServeHTTP(w, req)

	id := w.Header().Get(RequestIDHeaderKey)
	assert.NotEqual(t, "bad id\twith tab", id)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(requestIDMiddleware(), requestLogger(logger))
	router.GET("/api/v1/coins/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/coins/ghost", nil)
	req.Header.Set(RequestIDHeaderKey, "req-42")
	router.ServeHTTP(w, req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "req-42", entry["request_id"])
	assert.Equal(t, "/api/v1/coins/:id", entry["route"])
	assert.Equal(t, "/api/v1/coins/ghost", entry["path"])
	assert.Equal(t, float64(http.StatusNotFound), entry["status"])
}
