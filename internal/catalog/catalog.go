// Package catalog holds the instrument catalog used for symbol search
// and display names. The built-in static table covers the common case;
// a SQLite-backed table can replace it for larger universes.
package catalog

import (
	"sort"
	"strings"

	"marketgateway/internal/model"
)

// Instrument is one catalog row.
type Instrument struct {
	Symbol string
	Name   string
	Type   model.InstrumentType
}

// Catalog is an immutable, in-memory instrument table.
type Catalog struct {
	instruments []Instrument
	bySymbol    map[string]Instrument
}

// staticInstruments is the built-in universe used when no catalog
// database is configured.
var staticInstruments = []Instrument{
	{"AAPL", "Apple Inc.", model.TypeStock},
	{"MSFT", "Microsoft Corporation", model.TypeStock},
	{"GOOGL", "Alphabet Inc.", model.TypeStock},
	{"AMZN", "Amazon.com Inc.", model.TypeStock},
	{"TSLA", "Tesla Inc.", model.TypeStock},
	{"META", "Meta Platforms Inc.", model.TypeStock},
	{"NVDA", "NVIDIA Corporation", model.TypeStock},
	{"JPM", "JPMorgan Chase & Co.", model.TypeStock},
	{"V", "Visa Inc.", model.TypeStock},
	{"JNJ", "Johnson & Johnson", model.TypeStock},
	{"WMT", "Walmart Inc.", model.TypeStock},
	{"UNH", "UnitedHealth Group Inc.", model.TypeStock},
	{"XOM", "Exxon Mobil Corporation", model.TypeStock},
	{"KO", "The Coca-Cola Company", model.TypeStock},
	{"DIS", "The Walt Disney Company", model.TypeStock},
	{"SPY", "SPDR S&P 500 ETF Trust", model.TypeETF},
	{"QQQ", "Invesco QQQ Trust", model.TypeETF},
	{"VTI", "Vanguard Total Stock Market ETF", model.TypeETF},
	{"BTC-USD", "Bitcoin USD", model.TypeCrypto},
	{"ETH-USD", "Ethereum USD", model.TypeCrypto},
}

// NewStatic returns a catalog over the built-in instrument table.
func NewStatic() *Catalog {
	return New(staticInstruments)
}

// New builds a catalog from the given rows. Symbols are uppercased;
// duplicate symbols keep the first occurrence.
func New(rows []Instrument) *Catalog {
	c := &Catalog{
		instruments: make([]Instrument, 0, len(rows)),
		bySymbol:    make(map[string]Instrument, len(rows)),
	}
	for _, in := range rows {
		in.Symbol = strings.ToUpper(strings.TrimSpace(in.Symbol))
		if in.Symbol == "" {
			continue
		}
		if _, dup := c.bySymbol[in.Symbol]; dup {
			continue
		}
		if in.Type == "" {
			in.Type = model.TypeOther
		}
		c.bySymbol[in.Symbol] = in
		c.instruments = append(c.instruments, in)
	}
	sort.Slice(c.instruments, func(i, j int) bool {
		return c.instruments[i].Symbol < c.instruments[j].Symbol
	})
	return c
}

// Search returns instruments whose symbol or name contains the query,
// case-insensitively. Results are ordered by symbol.
func (c *Catalog) Search(query string) []model.SearchResult {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []model.SearchResult
	for _, in := range c.instruments {
		if strings.Contains(strings.ToLower(in.Symbol), q) ||
			strings.Contains(strings.ToLower(in.Name), q) {
			out = append(out, model.SearchResult{
				Symbol: in.Symbol,
				Name:   in.Name,
				Type:   in.Type,
			})
		}
	}
	return out
}

// Lookup returns the instrument for symbol if known.
func (c *Catalog) Lookup(symbol string) (Instrument, bool) {
	in, ok := c.bySymbol[strings.ToUpper(symbol)]
	return in, ok
}

// DisplayName returns the catalog name for symbol, or a generated one
// for unknown symbols so degraded records still render something.
func (c *Catalog) DisplayName(symbol string) string {
	if in, ok := c.Lookup(symbol); ok {
		return in.Name
	}
	return strings.ToUpper(symbol) + " Inc."
}

// Len returns the number of catalog rows.
func (c *Catalog) Len() int { return len(c.instruments) }
