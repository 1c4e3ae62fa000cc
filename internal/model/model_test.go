package model

import (
	"testing"
	"time"
)

func TestParseInterval(t *testing.T) {
	cases := []struct {
		in   string
		want Interval
		ok   bool
	}{
		{"", IntervalDay, true},
		{"1d", IntervalDay, true},
		{"1w", IntervalWeek, true},
		{"1m", IntervalMonth, true},
		{"5m", "", false},
		{"daily", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseInterval(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseInterval(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestInterval_Step(t *testing.T) {
	base := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	if got := IntervalDay.Step(base); got.Day() != 1 || got.Month() != time.February {
		t.Errorf("daily step: %v", got)
	}
	if got := IntervalWeek.Step(base); got.Day() != 7 || got.Month() != time.February {
		t.Errorf("weekly step: %v", got)
	}
	// AddDate normalizes Jan 31 + 1 month to Mar 3.
	if got := IntervalMonth.Step(base); got.Month() != time.March {
		t.Errorf("monthly step: %v", got)
	}
}

func TestNormalizeBars(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, 7, d, 0, 0, 0, 0, time.UTC)
	}
	bars := []Bar{
		{Date: day(3), Close: 3},
		{Date: day(1), Close: 1},
		{Date: day(2), Close: 2},
		{Date: day(2), Close: 99}, // repeated date, must be dropped
		{Date: day(1), Close: 98},
	}

	out := NormalizeBars(bars)
	if len(out) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(out))
	}
	for i, b := range out {
		if b.Date != day(i+1) {
			t.Errorf("bar %d at %v, want %v", i, b.Date, day(i+1))
		}
		if b.Close != float64(i+1) {
			t.Errorf("bar %d close %v: the first bar per date must win", i, b.Close)
		}
	}
}

func TestRound2(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0.615, 0.62},
		{1.005, 1.01},
		{-2.345, -2.35},
		{100, 100},
	}
	for _, tc := range cases {
		if got := Round2(tc.in); got != tc.want {
			t.Errorf("Round2(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestQuote_SetChange(t *testing.T) {
	q := &Quote{Price: 110}
	q.SetChange(100)
	if q.Change != 10 || q.ChangePercent != 10 {
		t.Errorf("got change=%v pct=%v", q.Change, q.ChangePercent)
	}

	q = &Quote{Price: 50}
	q.SetChange(0)
	if q.ChangePercent != 0 {
		t.Errorf("zero close must not divide, got %v", q.ChangePercent)
	}
}
