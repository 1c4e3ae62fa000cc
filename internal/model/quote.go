package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the canonical real-time quote shape returned to callers,
// regardless of which upstream provider produced it.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	Volume        int64     `json:"volume"`
	LastUpdated   time.Time `json:"lastUpdated"`
	Synthetic     bool      `json:"synthetic,omitempty"`
}

// SetChange derives Change and ChangePercent from the previous close.
// Both are rounded to 2 decimal places for display stability.
func (q *Quote) SetChange(prevClose float64) {
	q.Change = Round2(q.Price - prevClose)
	if prevClose != 0 {
		q.ChangePercent = Round2((q.Price - prevClose) / prevClose * 100)
	} else {
		q.ChangePercent = 0
	}
}

// Round2 rounds v to 2 decimal places using decimal arithmetic so that
// values like 0.615 do not drift under binary floating point.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// BatchQuoteResult is a single entry of a batch quote response. Exactly
// one of Quote or Error is set; Symbol is always echoed so the caller
// can associate entries with the requested symbols.
type BatchQuoteResult struct {
	Symbol string  `json:"symbol"`
	Quote  *Quote  `json:"quote,omitempty"`
	Error  string  `json:"error,omitempty"`
}
