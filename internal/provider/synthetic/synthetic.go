// Package synthetic is the deterministic fallback generator: it
// manufactures plausible, well-formed market data when no real
// provider is configured or every configured one has failed. Values
// are derived from a static base-price table plus hash-seeded bounded
// fluctuation, so output is reproducible within a time bucket yet
// changes once a cache entry expires. It always succeeds and never
// blocks; every output carries the synthetic marker.
package synthetic

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"marketgateway/internal/catalog"
	"marketgateway/internal/model"
)

// quoteBucket is the time granularity of quote fluctuation. It is
// shorter than the quote TTL so a refetch after expiry observes a
// different synthetic price.
const quoteBucket = 30 * time.Second

const defaultBasePrice = 100.0

// basePrices anchors well-known symbols so synthetic data looks
// plausible next to real data for the same instrument.
var basePrices = map[string]float64{
	"AAPL":    178.50,
	"MSFT":    415.25,
	"GOOGL":   141.80,
	"AMZN":    186.30,
	"TSLA":    248.90,
	"META":    512.20,
	"NVDA":    131.25,
	"JPM":     198.45,
	"V":       275.60,
	"JNJ":     157.10,
	"WMT":     68.35,
	"UNH":     505.75,
	"XOM":     113.20,
	"KO":      62.80,
	"DIS":     96.40,
	"SPY":     558.40,
	"QQQ":     480.10,
	"VTI":     275.90,
	"BTC-USD": 67250.00,
	"ETH-USD": 3150.00,
}

// Generator produces synthetic quotes, series, fundamentals and news.
type Generator struct {
	catalog *catalog.Catalog
	now     func() time.Time
}

// New creates a Generator. The catalog supplies display names for
// fundamentals and default symbols for unfiltered news.
func New(cat *catalog.Catalog) *Generator {
	return &Generator{catalog: cat, now: time.Now}
}

// NewAt creates a Generator with a fixed clock, for tests.
func NewAt(cat *catalog.Catalog, now func() time.Time) *Generator {
	return &Generator{catalog: cat, now: now}
}

func (g *Generator) Name() string { return "synthetic" }

// Usable is always true: the generator is the chain's terminal step.
func (g *Generator) Usable() bool { return true }

func basePrice(symbol string) float64 {
	if p, ok := basePrices[strings.ToUpper(symbol)]; ok {
		return p
	}
	return defaultBasePrice
}

// fluctuation maps a seed string to a deterministic value in
// [-scale, +scale].
func fluctuation(seed string, scale float64) float64 {
	h := fnv.New64a()
	h.Write([]byte(seed))
	// Map the hash onto [0, 1) then center it.
	unit := float64(h.Sum64()%100000) / 100000.0
	return (unit*2 - 1) * scale
}

// hashN maps a seed string to a deterministic value in [0, n).
func hashN(seed string, n int64) int64 {
	h := fnv.New64a()
	h.Write([]byte(seed))
	return int64(h.Sum64() % uint64(n))
}

// Quote generates a synthetic quote for symbol. The price fluctuates
// within ±2% of the symbol's base, re-seeded every quoteBucket.
func (g *Generator) Quote(_ context.Context, symbol string) (*model.Quote, error) {
	now := g.now().UTC()
	base := basePrice(symbol)
	bucket := now.Unix() / int64(quoteBucket.Seconds())
	seed := fmt.Sprintf("%s:%d", strings.ToUpper(symbol), bucket)

	q := &model.Quote{
		Symbol:      strings.ToUpper(symbol),
		Price:       model.Round2(base * (1 + fluctuation(seed, 0.02))),
		Volume:      100_000 + hashN(seed+":vol", 5_000_000),
		LastUpdated: now,
		Synthetic:   true,
	}
	q.SetChange(base)
	return q, nil
}

// Historical generates a synthetic bar series over [from, to): a
// bounded random walk compounding from the base price, one bar per
// interval step, strictly increasing by date and always well-formed
// (open <= high, low <= min(open, close), prices positive).
func (g *Generator) Historical(_ context.Context, symbol string, interval model.Interval, from, to time.Time) (*model.HistoricalSeries, error) {
	sym := strings.ToUpper(symbol)
	series := &model.HistoricalSeries{Symbol: sym, Interval: interval, Synthetic: true}

	price := basePrice(symbol)
	// Bars sit on day boundaries; the walk starts at the first boundary
	// inside the window so a mid-day from never admits an earlier bar.
	start := from.UTC().Truncate(24 * time.Hour)
	if start.Before(from.UTC()) {
		start = start.AddDate(0, 0, 1)
	}
	for d := start; d.Before(to); d = interval.Step(d) {
		seed := sym + ":" + d.Format("2006-01-02")
		open := price
		close := open * (1 + fluctuation(seed, 0.03))
		if close < 0.01 {
			close = 0.01
		}

		hi, lo := open, close
		if hi < lo {
			hi, lo = lo, hi
		}
		spread := 1 + float64(hashN(seed+":sp", 100))/10000.0 // up to +1%
		series.Data = append(series.Data, model.Bar{
			Date:   d,
			Open:   model.Round2(open),
			High:   model.Round2(hi * spread),
			Low:    model.Round2(lo / spread),
			Close:  model.Round2(close),
			Volume: 500_000 + hashN(seed+":vol", 10_000_000),
		})
		price = close
	}
	return series, nil
}

// Fundamentals generates the degraded fundamentals record: symbol,
// display name, zeroed metrics. Symbols no provider knows still get a
// shaped response instead of a 404.
func (g *Generator) Fundamentals(_ context.Context, symbol string) (*model.Fundamentals, error) {
	sym := strings.ToUpper(symbol)
	return &model.Fundamentals{
		Symbol:    sym,
		Name:      g.catalog.DisplayName(sym),
		Synthetic: true,
	}, nil
}

var headlineTemplates = []string{
	"%s reports quarterly results above analyst expectations",
	"%s announces expansion into new markets",
	"Analysts revise %s price targets after sector rally",
	"%s unveils product roadmap at annual investor day",
	"Institutional investors increase positions in %s",
	"%s faces regulatory review over recent acquisition",
}

var sentiments = []string{"positive", "neutral", "negative"}

// News generates synthetic headlines for the requested symbols (or a
// slice of the catalog when no filter is given), newest first.
func (g *Generator) News(_ context.Context, symbols []string, limit int) ([]model.NewsItem, error) {
	now := g.now().UTC()
	if len(symbols) == 0 {
		for _, r := range g.catalog.Search("a") {
			symbols = append(symbols, r.Symbol)
			if len(symbols) >= 10 {
				break
			}
		}
	}
	if len(symbols) == 0 {
		symbols = []string{"AAPL"}
	}

	out := make([]model.NewsItem, 0, limit)
	for i := 0; len(out) < limit; i++ {
		sym := strings.ToUpper(symbols[i%len(symbols)])
		seed := fmt.Sprintf("%s:news:%d", sym, i)
		tmpl := headlineTemplates[hashN(seed, int64(len(headlineTemplates)))]
		out = append(out, model.NewsItem{
			ID:          fmt.Sprintf("syn-%s-%d", strings.ToLower(sym), i),
			Title:       fmt.Sprintf(tmpl, g.catalog.DisplayName(sym)),
			Source:      "Synthetic Wire",
			URL:         fmt.Sprintf("https://news.example.com/%s/%d", strings.ToLower(sym), i),
			PublishedAt: now.Add(-time.Duration(i+1) * time.Hour),
			Sentiment:   sentiments[hashN(seed+":s", int64(len(sentiments)))],
			Symbols:     []string{sym},
			Synthetic:   true,
		})
	}
	return out, nil
}
