package cache

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"marketgateway/internal/model"
)

// Cache keys are deterministic: two logically identical requests always
// produce byte-identical keys. Symbols are uppercased and symbol sets
// are sorted before joining, so argument order never changes the key.

// QuoteKey returns the cache key for a single-symbol quote.
func QuoteKey(symbol string) string {
	return "quote:" + strings.ToUpper(symbol)
}

// HistoricalKey returns the cache key for a historical series request.
// Bounds keep full instant granularity so two requests only share an
// entry when their windows match exactly.
func HistoricalKey(symbol string, interval model.Interval, from, to time.Time) string {
	return "hist:" + strings.ToUpper(symbol) + ":" + string(interval) + ":" +
		from.UTC().Format(time.RFC3339) + ":" + to.UTC().Format(time.RFC3339)
}

// FundamentalsKey returns the cache key for a fundamentals request.
func FundamentalsKey(symbol string) string {
	return "fund:" + strings.ToUpper(symbol)
}

// NewsKey returns the cache key for a news request. The symbol filter
// is uppercased and sorted; an empty filter maps to "all".
func NewsKey(symbols []string, limit int) string {
	set := "all"
	if len(symbols) > 0 {
		up := make([]string, len(symbols))
		for i, s := range symbols {
			up[i] = strings.ToUpper(s)
		}
		sort.Strings(up)
		set = strings.Join(up, ",")
	}
	return "news:" + set + ":" + strconv.Itoa(limit)
}
