// Package schwab adapts the Charles Schwab market data API to the
// gateway's provider contract. It covers quotes, historical prices and
// fundamentals. Session tokens are obtained lazily with the configured
// key/secret plus a TOTP code when a shared secret is configured.
package schwab

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pquerna/otp/totp"
	"go.uber.org/zap"

	"marketgateway/internal/model"
	"marketgateway/internal/provider"
)

const (
	defaultBaseURL = "https://api.schwabapi.com/marketdata/v1"
	defaultTimeout = 10 * time.Second
	// Refresh the session a minute before the server-side expiry.
	tokenSlack = time.Minute
)

// Config holds the adapter credentials and endpoint.
type Config struct {
	APIKey     string
	APISecret  string
	TOTPSecret string
	BaseURL    string
	Timeout    time.Duration
}

// Client is the Schwab provider adapter.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *zap.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// New creates a Schwab client. The client is inert (Usable() == false)
// when credentials are missing.
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

func (c *Client) Name() string { return "schwab" }

// Usable reports whether credentials are configured.
func (c *Client) Usable() bool {
	return c.cfg.APIKey != "" && c.cfg.APISecret != ""
}

// ensureToken returns a valid bearer token, opening a session if the
// current one is absent or near expiry. One attempt only; a failed
// login surfaces as the request's error and the chain moves on.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	if c.cfg.TOTPSecret != "" {
		code, err := totp.GenerateCode(c.cfg.TOTPSecret, time.Now())
		if err != nil {
			return "", fmt.Errorf("schwab totp: %w", err)
		}
		form.Set("totp", code)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("schwab token request: %w", err)
	}
	req.SetBasicAuth(c.cfg.APIKey, c.cfg.APISecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("schwab token: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", &provider.UpstreamError{Provider: c.Name(), Status: resp.StatusCode}
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil || tok.AccessToken == "" {
		return "", provider.ErrNoData
	}

	c.accessToken = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - tokenSlack)
	c.log.Debug("schwab session opened", zap.Int("expires_in", tok.ExpiresIn))
	return c.accessToken, nil
}

// get performs one authenticated GET and decodes the JSON body into
// out. Non-success statuses become UpstreamError; decode failures
// become ErrNoData.
func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return err
	}

	reqURL := c.cfg.BaseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("schwab request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("schwab %s: %w", path, err)
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

type quotePayload struct {
	Quote struct {
		LastPrice        float64 `json:"lastPrice"`
		NetChange        float64 `json:"netChange"`
		NetPercentChange float64 `json:"netPercentChange"`
		ClosePrice       float64 `json:"closePrice"`
		TotalVolume      int64   `json:"totalVolume"`
		QuoteTime        int64   `json:"quoteTime"` // epoch millis
	} `json:"quote"`
}

// Quote fetches the current quote for one symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (*model.Quote, error) {
	var body map[string]quotePayload
	if err := c.get(ctx, "/"+url.PathEscape(symbol)+"/quotes", nil, &body); err != nil {
		return nil, err
	}
	p, ok := body[symbol]
	if !ok || p.Quote.LastPrice <= 0 {
		return nil, provider.ErrNoData
	}

	q := &model.Quote{
		Symbol:        symbol,
		Price:         p.Quote.LastPrice,
		Change:        model.Round2(p.Quote.NetChange),
		ChangePercent: model.Round2(p.Quote.NetPercentChange),
		Volume:        p.Quote.TotalVolume,
		LastUpdated:   time.Now().UTC(),
	}
	if q.Volume < 0 {
		q.Volume = 0
	}
	if p.Quote.QuoteTime > 0 {
		q.LastUpdated = time.UnixMilli(p.Quote.QuoteTime).UTC()
	}
	// Missing change fields: derive from the close when available.
	if q.Change == 0 && q.ChangePercent == 0 && p.Quote.ClosePrice > 0 {
		q.SetChange(p.Quote.ClosePrice)
	}
	return q, nil
}

// Historical fetches daily/weekly/monthly bars over [from, to).
func (c *Client) Historical(ctx context.Context, symbol string, interval model.Interval, from, to time.Time) (*model.HistoricalSeries, error) {
	freq := "daily"
	switch interval {
	case model.IntervalWeek:
		freq = "weekly"
	case model.IntervalMonth:
		freq = "monthly"
	}

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("periodType", "year")
	params.Set("frequencyType", freq)
	params.Set("startDate", strconv.FormatInt(from.UnixMilli(), 10))
	params.Set("endDate", strconv.FormatInt(to.UnixMilli(), 10))

	var body struct {
		Candles []struct {
			Open     float64 `json:"open"`
			High     float64 `json:"high"`
			Low      float64 `json:"low"`
			Close    float64 `json:"close"`
			Volume   int64   `json:"volume"`
			Datetime int64   `json:"datetime"` // epoch millis
		} `json:"candles"`
		Empty bool `json:"empty"`
	}
	if err := c.get(ctx, "/pricehistory", params, &body); err != nil {
		return nil, err
	}
	if body.Empty || len(body.Candles) == 0 {
		return nil, provider.ErrNoData
	}

	series := &model.HistoricalSeries{Symbol: symbol, Interval: interval}
	for _, cd := range body.Candles {
		ts := time.UnixMilli(cd.Datetime).UTC()
		if ts.Before(from) || !ts.Before(to) {
			continue
		}
		series.Data = append(series.Data, model.Bar{
			Date:   ts,
			Open:   cd.Open,
			High:   cd.High,
			Low:    cd.Low,
			Close:  cd.Close,
			Volume: cd.Volume,
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
	params.Set("symbol", symbol)
	params.Set("projection", "fundamental")

	var body struct {
		Instruments []struct {
			Symbol      string `json:"symbol"`
			Description string `json:"description"`
			Fundamental struct {
				MarketCap       float64 `json:"marketCap"`
				PeRatio         float64 `json:"peRatio"`
				EpsTTM          float64 `json:"epsTTM"`
				RevenueTTM      float64 `json:"revenueTTM"`
				NetIncomeTTM    float64 `json:"netIncomeTTM"`
				GrossMarginTTM  float64 `json:"grossMarginTTM"`
				OperatingMargin float64 `json:"operatingMarginTTM"`
				NetProfitMargin float64 `json:"netProfitMarginTTM"`
				DividendYield   float64 `json:"dividendYield"`
				Beta            float64 `json:"beta"`
				High52          float64 `json:"high52"`
				Low52           float64 `json:"low52"`
				Vol10DayAvg     float64 `json:"vol10DayAvg"`
			} `json:"fundamental"`
		} `json:"instruments"`
	}
	if err := c.get(ctx, "/instruments", params, &body); err != nil {
		return nil, err
	}
	if len(body.Instruments) == 0 {
		return nil, provider.ErrNoData
	}

	in := body.Instruments[0]
	f := in.Fundamental
	return &model.Fundamentals{
		Symbol:          symbol,
		Name:            in.Description,
		MarketCap:       f.MarketCap,
		PERatio:         f.PeRatio,
		EPS:             f.EpsTTM,
		RevenueTTM:      f.RevenueTTM,
		NetIncomeTTM:    f.NetIncomeTTM,
		GrossMargin:     f.GrossMarginTTM,
		OperatingMargin: f.OperatingMargin,
		NetMargin:       f.NetProfitMargin,
		DividendYield:   f.DividendYield,
		Beta:            f.Beta,
		Week52High:      f.High52,
		Week52Low:       f.Low52,
		AvgVolume:       int64(f.Vol10DayAvg),
	}, nil
}
