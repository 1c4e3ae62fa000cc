// Package handler exposes the gateway over HTTP: REST endpoints under
// /api/v1 with a uniform response envelope, the WebSocket upgrade
// path, health and Prometheus metrics.
package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"marketgateway/internal/gateway"
	"marketgateway/internal/markethours"
	"marketgateway/internal/metrics"
	"marketgateway/internal/model"
	"marketgateway/internal/stream"
)

const dateLayout = "2006-01-02"

// MarketHandler binds the gateway service and stream hub to routes.
type MarketHandler struct {
	svc     *gateway.Service
	hub     *stream.Hub
	metrics *metrics.Metrics
	log     *zap.Logger
	started time.Time
}

// New creates a MarketHandler.
func New(svc *gateway.Service, hub *stream.Hub, m *metrics.Metrics, log *zap.Logger) *MarketHandler {
	return &MarketHandler{svc: svc, hub: hub, metrics: m, log: log, started: time.Now()}
}

// Register mounts all routes on the engine.
func (h *MarketHandler) Register(r *gin.Engine) {
	api := r.Group("/api/v1")
	api.GET("/quotes/:symbol", h.GetQuote)
	api.POST("/quotes/batch", h.BatchQuotes)
	api.GET("/historical/:symbol", h.GetHistorical)
	api.GET("/fundamentals/:symbol", h.GetFundamentals)
	api.GET("/search", h.Search)
	api.GET("/news", h.GetNews)

	r.GET("/ws", gin.WrapF(h.hub.HandleWS))
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(h.metrics.Handler()))
}

// fail maps gateway errors onto the envelope. Client errors become
// 400s; anything else is a 500, which the pipeline design makes rare.
func (h *MarketHandler) fail(c *gin.Context, err error) {
	if ce := gateway.AsClientError(err); ce != nil {
		respondError(c, http.StatusBadRequest, ce.Kind, ce.Message)
		return
	}
	h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	respondError(c, http.StatusInternalServerError, "internal", "internal error")
}

// GetQuote handles GET /api/v1/quotes/:symbol.
func (h *MarketHandler) GetQuote(c *gin.Context) {
	q, cached, err := h.svc.Quote(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, q, cached)
}

type batchRequest struct {
	Symbols []string `json:"symbols" binding:"required,min=1,max=50,dive,required"`
}

// BatchQuotes handles POST /api/v1/quotes/batch.
func (h *MarketHandler) BatchQuotes(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, gateway.KindInvalidBatch,
			"body must be {\"symbols\": [1..50 symbols]}")
		return
	}
	results, err := h.svc.BatchQuotes(c.Request.Context(), req.Symbols)
	if err != nil {
		h.fail(c, err)
		return
	}
	// Batch responses are always fresh composites even when individual
	// entries hit the cache.
	respondOK(c, results, false)
}

// parseTimeParam accepts an RFC3339 timestamp or a bare YYYY-MM-DD
// date, which reads as midnight UTC.
func parseTimeParam(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse(dateLayout, v)
}

// GetHistorical handles GET /api/v1/historical/:symbol with optional
// from, to (RFC3339 or YYYY-MM-DD) and interval (1d, 1w, 1m) query
// params.
func (h *MarketHandler) GetHistorical(c *gin.Context) {
	interval, ok := model.ParseInterval(c.Query("interval"))
	if !ok {
		respondError(c, http.StatusBadRequest, gateway.KindInvalidInterval,
			"interval must be one of 1d, 1w, 1m")
		return
	}

	var from, to time.Time
	if v := c.Query("from"); v != "" {
		t, err := parseTimeParam(v)
		if err != nil {
			respondError(c, http.StatusBadRequest, gateway.KindInvalidRange,
				"from must be an RFC3339 timestamp or YYYY-MM-DD")
			return
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, err := parseTimeParam(v)
		if err != nil {
			respondError(c, http.StatusBadRequest, gateway.KindInvalidRange,
				"to must be an RFC3339 timestamp or YYYY-MM-DD")
			return
		}
		to = t
	}

	series, cached, err := h.svc.Historical(c.Request.Context(), c.Param("symbol"), interval, from, to)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, series, cached)
}

// GetFundamentals handles GET /api/v1/fundamentals/:symbol.
func (h *MarketHandler) GetFundamentals(c *gin.Context) {
	f, cached, err := h.svc.Fundamentals(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, f, cached)
}

// Search handles GET /api/v1/search?q=. Search is uncached, so the
// envelope always reports cached=false.
func (h *MarketHandler) Search(c *gin.Context) {
	results, err := h.svc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, results, false)
}

// GetNews handles GET /api/v1/news?symbols=AAPL,MSFT&limit=20.
func (h *MarketHandler) GetNews(c *gin.Context) {
	var symbols []string
	if v := c.Query("symbols"); v != "" {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				symbols = append(symbols, s)
			}
		}
	}
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respondError(c, http.StatusBadRequest, gateway.KindInvalidQuery,
				"limit must be an integer")
			return
		}
		limit = n
	}

	items, cached, err := h.svc.News(c.Request.Context(), symbols, limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, items, cached)
}

// Health handles GET /health.
func (h *MarketHandler) Health(c *gin.Context) {
	now := time.Now()
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"uptime":         time.Since(h.started).Round(time.Second).String(),
		"stream_clients": h.hub.ClientCount(),
		"market_open":    markethours.IsMarketOpen(now),
		"market_status":  markethours.StatusString(now),
	})
}
