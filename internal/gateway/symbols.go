package gateway

import (
	"fmt"
	"regexp"
	"strings"
)

// symbolPattern accepts uppercase tickers with dots and dashes, e.g.
// "AAPL", "BRK.B", "BTC-USD".
var symbolPattern = regexp.MustCompile(`^[A-Z0-9.\-]{1,20}$`)

// NormalizeSymbol trims and uppercases a raw symbol and validates its
// shape. Validation happens after normalization, so "aapl" and "AAPL"
// are the same symbol everywhere downstream (cache keys included).
func NormalizeSymbol(raw string) (string, error) {
	sym := strings.ToUpper(strings.TrimSpace(raw))
	if !symbolPattern.MatchString(sym) {
		return "", &ClientError{
			Kind:    KindInvalidSymbol,
			Message: fmt.Sprintf("invalid symbol %q", raw),
		}
	}
	return sym, nil
}

// NormalizeSymbols normalizes every symbol in raw, failing on the first
// invalid one.
func NormalizeSymbols(raw []string) ([]string, error) {
	out := make([]string, len(raw))
	for i, r := range raw {
		sym, err := NormalizeSymbol(r)
		if err != nil {
			return nil, err
		}
		out[i] = sym
	}
	return out, nil
}
