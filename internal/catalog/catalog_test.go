package catalog

import (
	"testing"

	"marketgateway/internal/model"
)

func TestSearch_MatchesName(t *testing.T) {
	cat := NewStatic()

	results := cat.Search("app")
	found := false
	for _, r := range results {
		if r.Symbol == "AAPL" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected AAPL in results for %q, got %v", "app", results)
	}
}

func TestSearch_MatchesSymbol(t *testing.T) {
	cat := NewStatic()

	results := cat.Search("btc")
	if len(results) == 0 || results[0].Symbol != "BTC-USD" {
		t.Errorf("expected BTC-USD, got %v", results)
	}
	if results[0].Type != model.TypeCrypto {
		t.Errorf("expected crypto type, got %q", results[0].Type)
	}
}

func TestSearch_NoMatch(t *testing.T) {
	cat := NewStatic()
	if results := cat.Search("zzzzzz"); len(results) != 0 {
		t.Errorf("expected empty, got %v", results)
	}
}

func TestDisplayName_Fallback(t *testing.T) {
	cat := NewStatic()

	if got := cat.DisplayName("AAPL"); got != "Apple Inc." {
		t.Errorf("got %q", got)
	}
	if got := cat.DisplayName("XYZQ"); got != "XYZQ Inc." {
		t.Errorf("unknown symbol should get generated name, got %q", got)
	}
}

func TestLookup(t *testing.T) {
	cat := NewStatic()

	if _, ok := cat.Lookup("spy"); !ok {
		t.Error("lookup should be case-insensitive")
	}
	if _, ok := cat.Lookup("NOPE"); ok {
		t.Error("expected miss for unknown symbol")
	}
}
