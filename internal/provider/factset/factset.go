// Package factset adapts the FactSet content APIs to the gateway's
// provider contract. FactSet is the only real provider covering every
// category, so it sits in each chain (usually behind Schwab for price
// data). Authentication is HTTP basic with username + API key.
package factset

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"marketgateway/internal/model"
	"marketgateway/internal/provider"
)

const (
	defaultBaseURL = "https://api.factset.com/content"
	defaultTimeout = 10 * time.Second
)

// Config holds the adapter credentials and endpoint.
type Config struct {
	Username string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
}

// Client is the FactSet provider adapter.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *zap.Logger
}

// New creates a FactSet client. The client is inert (Usable() ==
// false) when credentials are missing.
func New(cfg Config, log *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}
}

func (c *Client) Name() string { return "factset" }

// Usable reports whether credentials are configured.
func (c *Client) Usable() bool {
	return c.cfg.Username != "" && c.cfg.APIKey != ""
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	reqURL := c.cfg.BaseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("factset request: %w", err)
	}
	req.SetBasicAuth(c.cfg.Username, c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("factset %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &provider.UpstreamError{Provider: c.Name(), Status: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return provider.ErrNoData
	}
	return nil
}

// Quote fetches the latest price observation for one symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (*model.Quote, error) {
	params := url.Values{}
	params.Set("ids", symbol)

	var body struct {
		Data []struct {
			Price          float64 `json:"price"`
			PriceChange    float64 `json:"priceChange"`
			PriceChangePct float64 `json:"priceChangePct"`
			Volume         int64   `json:"volume"`
			Date           string  `json:"date"`
		} `json:"data"`
	}
	if err := c.get(ctx, "/factset-prices/v1/quotes", params, &body); err != nil {
		return nil, err
	}
	if len(body.Data) == 0 || body.Data[0].Price <= 0 {
		return nil, provider.ErrNoData
	}

	d := body.Data[0]
	q := &model.Quote{
		Symbol:        symbol,
		Price:         d.Price,
		Change:        model.Round2(d.PriceChange),
		ChangePercent: model.Round2(d.PriceChangePct),
		Volume:        d.Volume,
		LastUpdated:   time.Now().UTC(),
	}
	if q.Volume < 0 {
		q.Volume = 0
	}
	if ts, err := time.Parse(time.RFC3339, d.Date); err == nil {
		q.LastUpdated = ts.UTC()
	}
	return q, nil
}

// Historical fetches end-of-day bars over [from, to).
func (c *Client) Historical(ctx context.Context, symbol string, interval model.Interval, from, to time.Time) (*model.HistoricalSeries, error) {
	freq := "D"
	switch interval {
	case model.IntervalWeek:
		freq = "W"
	case model.IntervalMonth:
		freq = "M"
	}

	params := url.Values{}
	params.Set("ids", symbol)
	params.Set("frequency", freq)
	params.Set("startDate", from.UTC().Format("2006-01-02"))
	params.Set("endDate", to.UTC().Format("2006-01-02"))

	var body struct {
		Data []struct {
			Date   string  `json:"date"`
			Open   float64 `json:"priceOpen"`
			High   float64 `json:"priceHigh"`
			Low    float64 `json:"priceLow"`
			Close  float64 `json:"price"`
			Volume int64   `json:"volume"`
		} `json:"data"`
	}
	if err := c.get(ctx, "/factset-prices/v1/prices", params, &body); err != nil {
		return nil, err
	}
	if len(body.Data) == 0 {
		return nil, provider.ErrNoData
	}

	series := &model.HistoricalSeries{Symbol: symbol, Interval: interval}
	for _, d := range body.Data {
		ts, err := time.Parse("2006-01-02", d.Date)
		if err != nil {
			continue
		}
		if ts.Before(from) || !ts.Before(to) {
			continue
		}
		series.Data = append(series.Data, model.Bar{
			Date:   ts,
			Open:   d.Open,
			High:   d.High,
			Low:    d.Low,
			Close:  d.Close,
			Volume: d.Volume,
		})
	}
	if len(series.Data) == 0 {
		return nil, provider.ErrNoData
	}
	series.Data = model.NormalizeBars(series.Data)
	return series, nil
}

// Fundamentals fetches company fundamentals for one symbol.
func (c *Client) Fundamentals(ctx context.Context, symbol string) (*model.Fundamentals, error) {
	params := url.Values{}
	params.Set("ids", symbol)

	var body struct {
		Data []struct {
			Name            string  `json:"name"`
			Sector          string  `json:"sector"`
			MarketCap       float64 `json:"marketCap"`
			PERatio         float64 `json:"peRatio"`
			EPS             float64 `json:"epsTTM"`
			RevenueTTM      float64 `json:"revenueTTM"`
			NetIncomeTTM    float64 `json:"netIncomeTTM"`
			GrossMargin     float64 `json:"grossMargin"`
			OperatingMargin float64 `json:"operatingMargin"`
			NetMargin       float64 `json:"netMargin"`
			DividendYield   float64 `json:"dividendYield"`
			Beta            float64 `json:"beta"`
			Week52High      float64 `json:"week52High"`
			Week52Low       float64 `json:"week52Low"`
			AvgVolume       int64   `json:"avgVolume"`
		} `json:"data"`
	}
	if err := c.get(ctx, "/factset-fundamentals/v1/fundamentals", params, &body); err != nil {
		return nil, err
	}
	if len(body.Data) == 0 {
		return nil, provider.ErrNoData
	}

	d := body.Data[0]
	return &model.Fundamentals{
		Symbol:          symbol,
		Name:            d.Name,
		Sector:          d.Sector,
		MarketCap:       d.MarketCap,
		PERatio:         d.PERatio,
		EPS:             d.EPS,
		RevenueTTM:      d.RevenueTTM,
		NetIncomeTTM:    d.NetIncomeTTM,
		GrossMargin:     d.GrossMargin,
		OperatingMargin: d.OperatingMargin,
		NetMargin:       d.NetMargin,
		DividendYield:   d.DividendYield,
		Beta:            d.Beta,
		Week52High:      d.Week52High,
		Week52Low:       d.Week52Low,
		AvgVolume:       d.AvgVolume,
	}, nil
}

// Search matches instruments against a free-text query.
func (c *Client) Search(ctx context.Context, query string) ([]model.SearchResult, error) {
	params := url.Values{}
	params.Set("q", query)

	var body struct {
		Data []struct {
			Symbol    string `json:"symbol"`
			Name      string `json:"name"`
			AssetType string `json:"assetType"`
		} `json:"data"`
	}
	if err := c.get(ctx, "/symbology/v1/search", params, &body); err != nil {
		return nil, err
	}
	if len(body.Data) == 0 {
		return nil, provider.ErrNoData
	}

	out := make([]model.SearchResult, 0, len(body.Data))
	for _, d := range body.Data {
		if d.Symbol == "" {
			continue
		}
		out = append(out, model.SearchResult{
			Symbol: strings.ToUpper(d.Symbol),
			Name:   d.Name,
			Type:   assetType(d.AssetType),
		})
	}
	if len(out) == 0 {
		return nil, provider.ErrNoData
	}
	return out, nil
}

// News fetches recent headlines, optionally filtered by symbols.
func (c *Client) News(ctx context.Context, symbols []string, limit int) ([]model.NewsItem, error) {
	params := url.Values{}
	if len(symbols) > 0 {
		params.Set("ids", strings.Join(symbols, ","))
	}
	params.Set("limit", strconv.Itoa(limit))

	var body struct {
		Data []struct {
			ID        string   `json:"id"`
			Headline  string   `json:"headline"`
			Source    string   `json:"source"`
			URL       string   `json:"url"`
			Datetime  string   `json:"datetime"`
			Sentiment string   `json:"sentiment"`
			Symbols   []string `json:"symbols"`
		} `json:"data"`
	}
	if err := c.get(ctx, "/news/v1/headlines", params, &body); err != nil {
		return nil, err
	}
	if len(body.Data) == 0 {
		return nil, provider.ErrNoData
	}

	out := make([]model.NewsItem, 0, len(body.Data))
	for _, d := range body.Data {
		if d.Headline == "" {
			continue
		}
		item := model.NewsItem{
			ID:        d.ID,
			Title:     d.Headline,
			Source:    d.Source,
			URL:       d.URL,
			Sentiment: d.Sentiment,
			Symbols:   d.Symbols,
		}
		if ts, err := time.Parse(time.RFC3339, d.Datetime); err == nil {
			item.PublishedAt = ts.UTC()
		}
		out = append(out, item)
		if len(out) >= limit {
			break
		}
	}
	if len(out) == 0 {
		return nil, provider.ErrNoData
	}
	return out, nil
}

func assetType(s string) model.InstrumentType {
	switch strings.ToLower(s) {
	case "stock", "equity", "common stock":
		return model.TypeStock
	case "etf", "fund":
		return model.TypeETF
	case "crypto", "cryptocurrency":
		return model.TypeCrypto
	}
	return model.TypeOther
}
