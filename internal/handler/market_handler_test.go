package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"marketgateway/internal/cache"
	"marketgateway/internal/catalog"
	"marketgateway/internal/gateway"
	"marketgateway/internal/metrics"
	"marketgateway/internal/provider/synthetic"
	"marketgateway/internal/stream"
)

type testEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    *Meta           `json:"meta"`
	Error   *errorBody      `json:"error"`
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := cache.NewMemory()
	t.Cleanup(store.Close)
	cat := catalog.NewStatic()
	m := metrics.New()
	log := zap.NewNop()

	svc := gateway.New(gateway.Deps{
		Store:    store,
		Fallback: synthetic.New(cat),
		Catalog:  cat,
		Metrics:  m,
		Log:      log,
	})
	hub := stream.NewHub(svc, time.Hour, m, log)
	t.Cleanup(hub.Shutdown)

	r := gin.New()
	New(svc, hub, m, log).Register(r)
	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, testEnvelope) {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env testEnvelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestGetQuote_Envelope(t *testing.T) {
	r := newTestRouter(t)

	w, env := doRequest(t, r, http.MethodGet, "/api/v1/quotes/AAPL", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Success)
	require.NotNil(t, env.Meta)
	require.False(t, env.Meta.Cached)

	var q struct {
		Symbol    string  `json:"symbol"`
		Price     float64 `json:"price"`
		Synthetic bool    `json:"synthetic"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &q))
	require.Equal(t, "AAPL", q.Symbol)
	require.Greater(t, q.Price, 0.0)
	require.True(t, q.Synthetic)

	// Second read hits the cache and says so.
	w, env = doRequest(t, r, http.MethodGet, "/api/v1/quotes/AAPL", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Meta.Cached)
}

func TestGetQuote_InvalidSymbol(t *testing.T) {
	r := newTestRouter(t)

	w, env := doRequest(t, r, http.MethodGet, "/api/v1/quotes/b%20ad", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.False(t, env.Success)
	require.NotNil(t, env.Error)
	require.Equal(t, gateway.KindInvalidSymbol, env.Error.Kind)
}

func TestBatchQuotes(t *testing.T) {
	r := newTestRouter(t)

	w, env := doRequest(t, r, http.MethodPost, "/api/v1/quotes/batch",
		`{"symbols":["AAPL","MSFT","TSLA"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Success)

	var results []struct {
		Symbol string          `json:"symbol"`
		Quote  json.RawMessage `json:"quote"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &results))
	require.Len(t, results, 3)
	require.Equal(t, "AAPL", results[0].Symbol)
}

func TestBatchQuotes_Validation(t *testing.T) {
	r := newTestRouter(t)

	cases := []string{
		``,
		`{}`,
		`{"symbols":[]}`,
		oversizedBatchBody(),
	}
	for _, body := range cases {
		w, env := doRequest(t, r, http.MethodPost, "/api/v1/quotes/batch", body)
		require.Equal(t, http.StatusBadRequest, w.Code, "body %q", body)
		require.False(t, env.Success)
		require.Equal(t, gateway.KindInvalidBatch, env.Error.Kind)
	}
}

func oversizedBatchBody() string {
	syms := make([]string, 51)
	for i := range syms {
		syms[i] = fmt.Sprintf("S%d", i)
	}
	b, _ := json.Marshal(map[string][]string{"symbols": syms})
	return string(b)
}

func TestGetHistorical(t *testing.T) {
	r := newTestRouter(t)

	w, env := doRequest(t, r, http.MethodGet,
		"/api/v1/historical/AAPL?from=2026-07-01&to=2026-07-15&interval=1d", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Success)

	var series struct {
		Symbol   string            `json:"symbol"`
		Interval string            `json:"interval"`
		Data     []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &series))
	require.Equal(t, "AAPL", series.Symbol)
	require.Equal(t, "1d", series.Interval)
	require.Len(t, series.Data, 14)
}

func TestGetHistorical_RFC3339Bounds(t *testing.T) {
	r := newTestRouter(t)

	w, env := doRequest(t, r, http.MethodGet,
		"/api/v1/historical/AAPL?from=2026-07-01T14:30:00Z&to=2026-07-15T14:30:00Z&interval=1d", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Success)

	var series struct {
		Data []struct {
			Date time.Time `json:"date"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &series))
	require.Len(t, series.Data, 14)

	from := time.Date(2026, 7, 1, 14, 30, 0, 0, time.UTC)
	to := time.Date(2026, 7, 15, 14, 30, 0, 0, time.UTC)
	for _, bar := range series.Data {
		require.False(t, bar.Date.Before(from), "bar %v predates from", bar.Date)
		require.True(t, bar.Date.Before(to), "bar %v reaches to", bar.Date)
	}
}

func TestGetHistorical_Validation(t *testing.T) {
	r := newTestRouter(t)

	w, env := doRequest(t, r, http.MethodGet, "/api/v1/historical/AAPL?interval=5m", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, gateway.KindInvalidInterval, env.Error.Kind)

	w, env = doRequest(t, r, http.MethodGet, "/api/v1/historical/AAPL?from=not-a-date", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, gateway.KindInvalidRange, env.Error.Kind)

	w, env = doRequest(t, r, http.MethodGet,
		"/api/v1/historical/AAPL?from=2026-07-15&to=2026-07-01", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, gateway.KindInvalidRange, env.Error.Kind)
}

func TestGetFundamentals(t *testing.T) {
	r := newTestRouter(t)

	w, env := doRequest(t, r, http.MethodGet, "/api/v1/fundamentals/MSFT", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Success)

	var f struct {
		Symbol string `json:"symbol"`
		Name   string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &f))
	require.Equal(t, "MSFT", f.Symbol)
	require.NotEmpty(t, f.Name)
}

func TestSearch(t *testing.T) {
	r := newTestRouter(t)

	w, env := doRequest(t, r, http.MethodGet, "/api/v1/search?q=apple", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Success)
	require.False(t, env.Meta.Cached, "search responses are never cached")

	var results []struct {
		Symbol string `json:"symbol"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &results))
	require.NotEmpty(t, results)
	require.Equal(t, "AAPL", results[0].Symbol)
}

func TestSearch_MissingQuery(t *testing.T) {
	r := newTestRouter(t)

	w, env := doRequest(t, r, http.MethodGet, "/api/v1/search", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, gateway.KindInvalidQuery, env.Error.Kind)
}

func TestGetNews(t *testing.T) {
	r := newTestRouter(t)

	w, env := doRequest(t, r, http.MethodGet, "/api/v1/news?symbols=AAPL,MSFT&limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Success)

	var items []struct {
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 5)
}

func TestGetNews_BadLimit(t *testing.T) {
	r := newTestRouter(t)

	w, env := doRequest(t, r, http.MethodGet, "/api/v1/news?limit=lots", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, gateway.KindInvalidQuery, env.Error.Kind)
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}
