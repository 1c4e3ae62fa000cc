// Package provider defines the contract every upstream market data
// adapter implements: translate one source's responses into the
// canonical shapes, or fail with a typed error. Adapters never retry;
// resilience comes from the gateway's ordered fallback chain.
package provider

import (
	"context"
	"time"

	"marketgateway/internal/model"
)

// Provider identifies an adapter and reports whether it is currently
// usable (e.g. required credentials are present). Usability is derived
// from configuration read once at startup and never changes within a
// process lifetime.
type Provider interface {
	Name() string
	Usable() bool
}

// Quoter fetches a current quote for one symbol.
type Quoter interface {
	Provider
	Quote(ctx context.Context, symbol string) (*model.Quote, error)
}

// Historian fetches an ordered bar series over [from, to).
type Historian interface {
	Provider
	Historical(ctx context.Context, symbol string, interval model.Interval, from, to time.Time) (*model.HistoricalSeries, error)
}

// FundamentalsSource fetches company fundamentals for one symbol.
type FundamentalsSource interface {
	Provider
	Fundamentals(ctx context.Context, symbol string) (*model.Fundamentals, error)
}

// Searcher matches instruments against a free-text query.
type Searcher interface {
	Provider
	Search(ctx context.Context, query string) ([]model.SearchResult, error)
}

// NewsSource fetches recent news, optionally filtered by symbols.
type NewsSource interface {
	Provider
	News(ctx context.Context, symbols []string, limit int) ([]model.NewsItem, error)
}
