package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"crypto_adda/internal/chart"
	"crypto_adda/internal/domain"
	"crypto_adda/internal/market"
)

type coinListResponse struct {
	Coins          []domain.Coin `json:"coins"`
	Page           int           `json:"page"`
	PageSize       int           `json:"page_size"`
	TotalPages     int           `json:"total_pages"`
	TotalItems     int           `json:"total_items"`
	ShowPagination bool          `json:"show_pagination"`
	Loading        bool          `json:"loading"`
	Message        string        `json:"message,omitempty"`
}

type coinResponse struct {
	Coin            domain.Coin `json:"coin"`
	ChangeDirection string      `json:"change_direction"`
	Bookmarked      bool        `json:"bookmarked"`
}

type coinDetailResponse struct {
	Detail     domain.CoinDetail `json:"detail"`
	Bookmarked bool              `json:"bookmarked"`
}

type chartPointResponse struct {
	Date    string  `json:"date"`
	Price   float64 `json:"price"`
	Tick    string  `json:"tick"`
	Tooltip string  `json:"tooltip"`
}

type chartResponse struct {
	CoinID  string               `json:"coin_id"`
	Range   string               `json:"range"`
	Label   string               `json:"label"`
	Points  []chartPointResponse `json:"points"`
	Loading bool                 `json:"loading"`
	Message string               `json:"message,omitempty"`
}

type compareResponse struct {
	Left           coinResponse  `json:"left"`
	Right          coinResponse  `json:"right"`
	LeftChart      chartResponse `json:"left_chart"`
	RightChart     chartResponse `json:"right_chart"`
	PriceRatio     *string       `json:"price_ratio"`      // left / right, nil when right is zero
	MarketCapRatio *string       `json:"market_cap_ratio"` // left / right, nil when right is zero
	PriceDiffPct   *string       `json:"price_diff_pct"`   // (left - right) / right * 100
}

type watchlistResponse struct {
	Coins          []domain.Coin `json:"coins"`
	Page           int           `json:"page"`
	TotalPages     int           `json:"total_pages"`
	TotalItems     int           `json:"total_items"`
	ShowPagination bool          `json:"show_pagination"`
	Loading        bool          `json:"loading"`
	Message        string        `json:"message,omitempty"`
}

type bookmarkResponse struct {
	CoinID     string `json:"coin_id"`
	Bookmarked bool   `json:"bookmarked"`
}

// ListCoins handles GET /api/v1/coins
func (h *APIHandler) ListCoins(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	page, err := h.validator.ValidatePage(c.Query("page"))
	if err != nil {
		h.handleValidationError(c, err)
		return
	}
	perPage, err := h.validator.ValidatePerPage(c.Query("per_page"))
	if err != nil {
		h.handleValidationError(c, err)
		return
	}
	search := h.validator.SanitizeSearch(c.Query("search"))

	h.coins.EnsureCoinList(ctx)

	matches := market.SearchByName(h.coins.Coins(), search)
	p := market.Paginate(matches, page, perPage)
	loading := h.coins.Loading()

	resp := coinListResponse{
		Coins:          p.Items,
		Page:           p.Page,
		PageSize:       p.PageSize,
		TotalPages:     p.TotalPages,
		TotalItems:     p.TotalItems,
		ShowPagination: p.ShowPagination(loading),
		Loading:        loading,
	}
	if len(matches) == 0 {
		resp.Message = MsgNoCoins
	}
	c.JSON(http.StatusOK, resp)
}

// GetCoin handles GET /api/v1/coins/:id
func (h *APIHandler) GetCoin(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	id, err := h.validator.ValidateCoinID(c.Param("id"))
	if err != nil {
		h.handleValidationError(c, err)
		return
	}

	h.coins.EnsureCoinList(ctx)

	coin, ok := h.coins.Coin(id)
	if !ok {
		h.notFound(c, id, MsgCoinNotFound)
		return
	}
	c.JSON(http.StatusOK, h.coinView(ctx, coin))
}

// GetCoinDetail handles GET /api/v1/coins/:id/detail
func (h *APIHandler) GetCoinDetail(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	id, err := h.validator.ValidateCoinID(c.Param("id"))
	if err != nil {
		h.handleValidationError(c, err)
		return
	}

	h.coins.FetchCoinDetail(ctx, id)

	detail, ok := h.coins.Detail(id)
	if !ok {
		h.notFound(c, id, MsgCoinNotFound)
		return
	}
	c.JSON(http.StatusOK, coinDetailResponse{
		Detail:     detail,
		Bookmarked: h.bookmarks.IsBookmarked(ctx, id),
	})
}

// GetChart handles GET /api/v1/coins/:id/chart
func (h *APIHandler) GetChart(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	id, err := h.validator.ValidateCoinID(c.Param("id"))
	if err != nil {
		h.handleValidationError(c, err)
		return
	}
	window, err := h.validator.ValidateRange(c.Query("range"))
	if err != nil {
		h.handleValidationError(c, err)
		return
	}

	h.coins.FetchPriceHistory(ctx, id)
	c.JSON(http.StatusOK, h.chartView(id, window))
}

// Compare handles GET /api/v1/compare/:left/:right
func (h *APIHandler) Compare(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	leftID, err := h.validator.ValidateCoinID(c.Param("left"))
	if err != nil {
		h.handleValidationError(c, err)
		return
	}
	rightID, err := h.validator.ValidateCoinID(c.Param("right"))
	if err != nil {
		h.handleValidationError(c, err)
		return
	}
	window, err := h.validator.ValidateRange(c.Query("range"))
	if err != nil {
		h.handleValidationError(c, err)
		return
	}

	h.coins.EnsureCoinList(ctx)

	left, okLeft := h.coins.Coin(leftID)
	right, okRight := h.coins.Coin(rightID)
	if !okLeft || !okRight {
		h.notFound(c, leftID+","+rightID, MsgCompareNotFound)
		return
	}

	// fetch failures are swallowed by the store, so Wait never returns an error
	g, gctx := errgroup.WithContext(ctx)
	for _, id := range []string{leftID, rightID} {
		g.Go(func() error {
			h.coins.FetchPriceHistory(gctx, id)
			return nil
		})
	}
	_ = g.Wait()

	leftPrice, rightPrice := decimal.NewFromFloat(left.CurrentPrice), decimal.NewFromFloat(right.CurrentPrice)
	c.JSON(http.StatusOK, compareResponse{
		Left:           h.coinView(ctx, left),
		Right:          h.coinView(ctx, right),
		LeftChart:      h.chartView(leftID, window),
		RightChart:     h.chartView(rightID, window),
		PriceRatio:     ratio(leftPrice, rightPrice),
		MarketCapRatio: ratio(decimal.NewFromFloat(left.MarketCap), decimal.NewFromFloat(right.MarketCap)),
		PriceDiffPct:   percentDiff(leftPrice, rightPrice),
	})
}

// Watchlist handles GET /api/v1/watchlist
func (h *APIHandler) Watchlist(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	page, err := h.validator.ValidatePage(c.Query("page"))
	if err != nil {
		h.handleValidationError(c, err)
		return
	}

	h.coins.EnsureCoinList(ctx)

	set := h.bookmarks.Load(ctx)
	listed := set.Filter(h.coins.Coins())
	p := market.Paginate(listed, page, market.WatchlistPageSize)
	loading := h.coins.Loading()

	resp := watchlistResponse{
		Coins:          p.Items,
		Page:           p.Page,
		TotalPages:     p.TotalPages,
		TotalItems:     p.TotalItems,
		ShowPagination: p.ShowPagination(loading),
		Loading:        loading,
	}
	switch {
	case len(set) == 0:
		resp.Message = MsgNoBookmarks
	case len(listed) == 0:
		resp.Message = MsgNoBookmarkMatches
	}
	c.JSON(http.StatusOK, resp)
}

// GetBookmark handles GET /api/v1/bookmarks/:id
func (h *APIHandler) GetBookmark(c *gin.Context) {
	id, err := h.validator.ValidateCoinID(c.Param("id"))
	if err != nil {
		h.handleValidationError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookmarkResponse{
		CoinID:     id,
		Bookmarked: h.bookmarks.IsBookmarked(c.Request.Context(), id),
	})
}

// ToggleBookmark handles POST /api/v1/bookmarks/:id/toggle
func (h *APIHandler) ToggleBookmark(c *gin.Context) {
	id, err := h.validator.ValidateCoinID(c.Param("id"))
	if err != nil {
		h.handleValidationError(c, err)
		return
	}

	on, err := h.bookmarks.Toggle(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err, http.StatusInternalServerError, MsgBookmarkFailed)
		return
	}
	c.JSON(http.StatusOK, bookmarkResponse{CoinID: id, Bookmarked: on})
}

// AddBookmark handles PUT /api/v1/bookmarks/:id
func (h *APIHandler) AddBookmark(c *gin.Context) {
	id, err := h.validator.ValidateCoinID(c.Param("id"))
	if err != nil {
		h.handleValidationError(c, err)
		return
	}

	if err := h.bookmarks.Add(c.Request.Context(), id); err != nil {
		h.handleError(c, err, http.StatusInternalServerError, MsgBookmarkFailed)
		return
	}
	c.JSON(http.StatusOK, bookmarkResponse{CoinID: id, Bookmarked: true})
}

// RemoveBookmark handles DELETE /api/v1/bookmarks/:id
func (h *APIHandler) RemoveBookmark(c *gin.Context) {
	id, err := h.validator.ValidateCoinID(c.Param("id"))
	if err != nil {
		h.handleValidationError(c, err)
		return
	}

	if err := h.bookmarks.Remove(c.Request.Context(), id); err != nil {
		h.handleError(c, err, http.StatusInternalServerError, MsgBookmarkFailed)
		return
	}
	c.JSON(http.StatusOK, bookmarkResponse{CoinID: id, Bookmarked: false})
}

// HealthCheck handles GET /health requests. The service stays up while the
// provider is paused; the status turns DEGRADED and cached data is served.
func (h *APIHandler) HealthCheck(c *gin.Context) {
	body := gin.H{
		"status":       "OK",
		"service":      ServiceName,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"version":      h.version,
		"coins_cached": len(h.coins.Coins()),
	}
	if h.provider != nil {
		status := h.provider.Health()
		body["provider"] = status
		if !status.Healthy() {
			body["status"] = "DEGRADED"
		}
	}
	c.JSON(http.StatusOK, body)
}

func (h *APIHandler) coinView(ctx context.Context, coin domain.Coin) coinResponse {
	return coinResponse{
		Coin:            coin,
		ChangeDirection: coin.ChangeDirection(),
		Bookmarked:      h.bookmarks.IsBookmarked(ctx, coin.ID),
	}
}

func (h *APIHandler) chartView(coinID string, window domain.Window) chartResponse {
	resp := chartResponse{
		CoinID:  coinID,
		Range:   window.String(),
		Label:   window.Label(),
		Points:  []chartPointResponse{},
		Loading: h.coins.HistoryLoading(),
	}

	series, _ := h.coins.PriceHistory(coinID)
	if len(series) == 0 {
		resp.Message = MsgNoChartData
		return resp
	}
	for _, p := range chart.FilterRange(series, window, h.now().In(h.loc)) {
		resp.Points = append(resp.Points, chartPointResponse{
			Date:    p.Date,
			Price:   p.Price,
			Tick:    chart.TickLabel(p.Time),
			Tooltip: chart.TooltipLabel(p.Time),
		})
	}
	return resp
}

func ratio(a, b decimal.Decimal) *string {
	if b.IsZero() {
		return nil
	}
	s := a.DivRound(b, 8).String()
	return &s
}

func percentDiff(a, b decimal.Decimal) *string {
	if b.IsZero() {
		return nil
	}
	s := a.Sub(b).Div(b).Mul(decimal.NewFromInt(100)).StringFixed(2)
	return &s
}

// handleError logs the error and sends appropriate HTTP response
func (h *APIHandler) handleError(c *gin.Context, err error, statusCode int, userMessage string) {
	id := requestID(c)

	h.logger.Error("API error",
		slog.String("request_id", id),
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("error", err.Error()),
		slog.Int("status_code", statusCode),
	)

	c.JSON(statusCode, gin.H{
		"error":      userMessage,
		"request_id": id,
	})
}

// handleValidationError handles validation errors specifically
func (h *APIHandler) handleValidationError(c *gin.Context, err error) {
	h.handleError(c, err, http.StatusBadRequest, err.Error())
}

func (h *APIHandler) notFound(c *gin.Context, coinID, userMessage string) {
	id := requestID(c)

	h.logger.Info("Coin not found",
		slog.String("request_id", id),
		slog.String("coin_id", coinID),
		slog.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusNotFound, gin.H{
		"error":      userMessage,
		"request_id": id,
	})
}
