package model

import (
	"sort"
	"time"
)

// Interval is the bar spacing of a historical series.
type Interval string

const (
	IntervalDay   Interval = "1d"
	IntervalWeek  Interval = "1w"
	IntervalMonth Interval = "1m"
)

// ParseInterval maps a query string value to an Interval.
// Empty input defaults to daily.
func ParseInterval(s string) (Interval, bool) {
	switch s {
	case "", "1d":
		return IntervalDay, true
	case "1w":
		return IntervalWeek, true
	case "1m":
		return IntervalMonth, true
	}
	return "", false
}

// Step returns the calendar step between consecutive bars.
func (iv Interval) Step(t time.Time) time.Time {
	switch iv {
	case IntervalWeek:
		return t.AddDate(0, 0, 7)
	case IntervalMonth:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

// Bar is a single OHLCV bar.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// NormalizeBars sorts bars by date and drops repeated dates, keeping
// the first bar per date, so the result is strictly increasing.
func NormalizeBars(bars []Bar) []Bar {
	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Date.Before(bars[j].Date)
	})
	out := bars[:0]
	for _, b := range bars {
		if len(out) > 0 && !out[len(out)-1].Date.Before(b.Date) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// HistoricalSeries is an ordered sequence of bars for one symbol over a
// half-open [From, To) window. Bars are strictly increasing by date.
type HistoricalSeries struct {
	Symbol    string   `json:"symbol"`
	Interval  Interval `json:"interval"`
	Data      []Bar    `json:"data"`
	Synthetic bool     `json:"synthetic,omitempty"`
}
