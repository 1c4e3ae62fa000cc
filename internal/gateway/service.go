// Package gateway implements the market data pipeline: normalize the
// request, serve from cache when fresh, otherwise walk the ordered
// provider chain and fall through to the synthetic generator. Data
// requests never fail; only malformed client input produces an error.
package gateway

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"marketgateway/internal/cache"
	"marketgateway/internal/catalog"
	"marketgateway/internal/metrics"
	"marketgateway/internal/model"
	"marketgateway/internal/provider"
	"marketgateway/internal/provider/synthetic"
)

// Data categories, used for cache metrics and request latency labels.
const (
	categoryQuote        = "quote"
	categoryHistorical   = "historical"
	categoryFundamentals = "fundamentals"
	categorySearch       = "search"
	categoryNews         = "news"
)

const (
	defaultNewsLimit = 20
	maxNewsLimit     = 50

	// defaultHistoricalRange is applied when the caller gives no
	// explicit date range.
	defaultHistoricalRange = 365 * 24 * time.Hour
)

// TTL holds per-category cache lifetimes. Zero fields take defaults.
type TTL struct {
	Quote        time.Duration
	Historical   time.Duration
	Fundamentals time.Duration
	News         time.Duration
}

func (t *TTL) applyDefaults() {
	if t.Quote <= 0 {
		t.Quote = 60 * time.Second
	}
	if t.Historical <= 0 {
		t.Historical = 5 * time.Minute
	}
	if t.Fundamentals <= 0 {
		t.Fundamentals = time.Hour
	}
	if t.News <= 0 {
		t.News = 5 * time.Minute
	}
}

// Deps wires a Service. Store, Fallback, Catalog, Metrics and Log are
// required; the provider slices may be empty, in which case every
// request is answered synthetically.
type Deps struct {
	Store    cache.Store
	TTL      TTL
	Fallback *synthetic.Generator
	Catalog  *catalog.Catalog
	Metrics  *metrics.Metrics
	Log      *zap.Logger

	Quoters      []provider.Quoter
	Historians   []provider.Historian
	Fundamentals []provider.FundamentalsSource
	Searchers    []provider.Searcher
	News         []provider.NewsSource
}

// Service is the market data gateway core.
type Service struct {
	store    cache.Store
	ttl      TTL
	fallback *synthetic.Generator
	catalog  *catalog.Catalog
	metrics  *metrics.Metrics
	log      *zap.Logger

	quoters      []provider.Quoter
	historians   []provider.Historian
	fundamentals []provider.FundamentalsSource
	searchers    []provider.Searcher
	news         []provider.NewsSource

	now func() time.Time
}

// New creates a Service from its dependencies.
func New(d Deps) *Service {
	d.TTL.applyDefaults()
	return &Service{
		store:        d.Store,
		ttl:          d.TTL,
		fallback:     d.Fallback,
		catalog:      d.Catalog,
		metrics:      d.Metrics,
		log:          d.Log,
		quoters:      d.Quoters,
		historians:   d.Historians,
		fundamentals: d.Fundamentals,
		searchers:    d.Searchers,
		news:         d.News,
		now:          time.Now,
	}
}

// Quote returns the current quote for symbol. The bool reports whether
// the response was served from cache.
func (s *Service) Quote(ctx context.Context, symbol string) (*model.Quote, bool, error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, false, err
	}

	q, hit := lookup(ctx, s, categoryQuote, cache.QuoteKey(sym), s.ttl.Quote,
		func(ctx context.Context) model.Quote {
			return s.fetchQuote(ctx, sym)
		})
	return &q, hit, nil
}

func (s *Service) fetchQuote(ctx context.Context, sym string) model.Quote {
	steps := make([]step[*model.Quote], len(s.quoters))
	for i, p := range s.quoters {
		p := p
		steps[i] = step[*model.Quote]{
			name:   p.Name(),
			usable: p.Usable(),
			fetch:  func(ctx context.Context) (*model.Quote, error) { return p.Quote(ctx, sym) },
		}
	}
	q := resolve(ctx, s, categoryQuote, steps,
		func(ctx context.Context) (*model.Quote, error) { return s.fallback.Quote(ctx, sym) })
	q.Symbol = sym
	return *q
}

// Historical returns the bar series for symbol over [from, to). Zero
// times default to the trailing year ending now.
func (s *Service) Historical(ctx context.Context, symbol string, interval model.Interval, from, to time.Time) (*model.HistoricalSeries, bool, error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, false, err
	}
	if to.IsZero() {
		// Minute resolution keeps the cache key stable across
		// back-to-back default-range requests.
		to = s.now().UTC().Truncate(time.Minute)
	}
	if from.IsZero() {
		from = to.Add(-defaultHistoricalRange)
	}
	if !from.Before(to) {
		return nil, false, &ClientError{
			Kind:    KindInvalidRange,
			Message: "from must be before to",
		}
	}

	key := cache.HistoricalKey(sym, interval, from, to)
	series, hit := lookup(ctx, s, categoryHistorical, key, s.ttl.Historical,
		func(ctx context.Context) model.HistoricalSeries {
			return s.fetchHistorical(ctx, sym, interval, from, to)
		})
	return &series, hit, nil
}

func (s *Service) fetchHistorical(ctx context.Context, sym string, interval model.Interval, from, to time.Time) model.HistoricalSeries {
	steps := make([]step[*model.HistoricalSeries], len(s.historians))
	for i, p := range s.historians {
		p := p
		steps[i] = step[*model.HistoricalSeries]{
			name:   p.Name(),
			usable: p.Usable(),
			fetch: func(ctx context.Context) (*model.HistoricalSeries, error) {
				return p.Historical(ctx, sym, interval, from, to)
			},
		}
	}
	series := resolve(ctx, s, categoryHistorical, steps,
		func(ctx context.Context) (*model.HistoricalSeries, error) {
			return s.fallback.Historical(ctx, sym, interval, from, to)
		})
	series.Symbol = sym
	return *series
}

// Fundamentals returns company fundamentals for symbol. Symbols no
// provider knows yield the degraded synthetic record.
func (s *Service) Fundamentals(ctx context.Context, symbol string) (*model.Fundamentals, bool, error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, false, err
	}

	f, hit := lookup(ctx, s, categoryFundamentals, cache.FundamentalsKey(sym), s.ttl.Fundamentals,
		func(ctx context.Context) model.Fundamentals {
			return s.fetchFundamentals(ctx, sym)
		})
	return &f, hit, nil
}

func (s *Service) fetchFundamentals(ctx context.Context, sym string) model.Fundamentals {
	steps := make([]step[*model.Fundamentals], len(s.fundamentals))
	for i, p := range s.fundamentals {
		p := p
		steps[i] = step[*model.Fundamentals]{
			name:   p.Name(),
			usable: p.Usable(),
			fetch:  func(ctx context.Context) (*model.Fundamentals, error) { return p.Fundamentals(ctx, sym) },
		}
	}
	f := resolve(ctx, s, categoryFundamentals, steps,
		func(ctx context.Context) (*model.Fundamentals, error) { return s.fallback.Fundamentals(ctx, sym) })
	f.Symbol = sym
	return *f
}

// Search matches instruments against a free-text query. Results are
// not cached: the query space is unbounded and the static catalog
// answer is already cheap.
func (s *Service) Search(ctx context.Context, query string) ([]model.SearchResult, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, &ClientError{
			Kind:    KindInvalidQuery,
			Message: "search query must not be empty",
		}
	}

	start := time.Now()
	defer func() {
		s.metrics.RequestDur.WithLabelValues(categorySearch).Observe(time.Since(start).Seconds())
	}()

	steps := make([]step[[]model.SearchResult], len(s.searchers))
	for i, p := range s.searchers {
		p := p
		steps[i] = step[[]model.SearchResult]{
			name:   p.Name(),
			usable: p.Usable(),
			fetch:  func(ctx context.Context) ([]model.SearchResult, error) { return p.Search(ctx, q) },
		}
	}
	results := resolve(ctx, s, categorySearch, steps,
		func(context.Context) ([]model.SearchResult, error) { return s.catalog.Search(q), nil })
	return results, nil
}

// News returns recent headlines, optionally filtered by symbols. The
// bool reports whether the response was served from cache.
func (s *Service) News(ctx context.Context, symbols []string, limit int) ([]model.NewsItem, bool, error) {
	syms, err := NormalizeSymbols(symbols)
	if err != nil {
		return nil, false, err
	}
	if limit <= 0 {
		limit = defaultNewsLimit
	}
	if limit > maxNewsLimit {
		limit = maxNewsLimit
	}

	key := cache.NewsKey(syms, limit)
	items, hit := lookup(ctx, s, categoryNews, key, s.ttl.News,
		func(ctx context.Context) []model.NewsItem {
			return s.fetchNews(ctx, syms, limit)
		})
	return items, hit, nil
}

func (s *Service) fetchNews(ctx context.Context, syms []string, limit int) []model.NewsItem {
	steps := make([]step[[]model.NewsItem], len(s.news))
	for i, p := range s.news {
		p := p
		steps[i] = step[[]model.NewsItem]{
			name:   p.Name(),
			usable: p.Usable(),
			fetch:  func(ctx context.Context) ([]model.NewsItem, error) { return p.News(ctx, syms, limit) },
		}
	}
	return resolve(ctx, s, categoryNews, steps,
		func(ctx context.Context) ([]model.NewsItem, error) { return s.fallback.News(ctx, syms, limit) })
}
