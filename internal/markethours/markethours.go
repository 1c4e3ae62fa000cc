// Package markethours answers whether the US equity session is open.
// Quotes are served around the clock regardless; this only annotates
// responses so a dashboard can tell live prices from after-hours ones.
package markethours

import (
	"fmt"
	"time"
)

// Eastern is the US market time zone. The fixed fallback only matters
// on hosts with no tzdata; it ignores DST but keeps the gateway up.
var Eastern = loadEastern()

func loadEastern() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.FixedZone("ET", -5*3600)
	}
	return loc
}

// Regular session, Eastern time.
const (
	OpenHour    = 9
	OpenMinute  = 30
	CloseHour   = 16
	CloseMinute = 0
)

// IsMarketOpen returns true if t falls within the regular session
// (9:30 AM – 4:00 PM ET, Mon–Fri, excluding holidays).
func IsMarketOpen(t time.Time) bool {
	et := t.In(Eastern)

	switch et.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	if IsHoliday(et) {
		return false
	}

	open := time.Date(et.Year(), et.Month(), et.Day(), OpenHour, OpenMinute, 0, 0, Eastern)
	close := time.Date(et.Year(), et.Month(), et.Day(), CloseHour, CloseMinute, 0, 0, Eastern)
	return !et.Before(open) && et.Before(close)
}

// StatusString returns a short session label for t: "open",
// "pre-market", "after-hours", "weekend" or "holiday".
func StatusString(t time.Time) string {
	et := t.In(Eastern)

	switch et.Weekday() {
	case time.Saturday, time.Sunday:
		return "weekend"
	}
	if IsHoliday(et) {
		return "holiday"
	}

	open := time.Date(et.Year(), et.Month(), et.Day(), OpenHour, OpenMinute, 0, 0, Eastern)
	close := time.Date(et.Year(), et.Month(), et.Day(), CloseHour, CloseMinute, 0, 0, Eastern)
	switch {
	case et.Before(open):
		return "pre-market"
	case et.Before(close):
		return "open"
	default:
		return "after-hours"
	}
}

// NextOpen returns the next session open at or after t.
func NextOpen(t time.Time) time.Time {
	et := t.In(Eastern)
	for i := 0; i < 14; i++ {
		day := et.AddDate(0, 0, i)
		open := time.Date(day.Year(), day.Month(), day.Day(), OpenHour, OpenMinute, 0, 0, Eastern)
		if open.Before(et) {
			continue
		}
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday || IsHoliday(day) {
			continue
		}
		return open
	}
	// Unreachable with a sane holiday table.
	panic(fmt.Sprintf("no session open within 14 days of %v", t))
}
