// Package common provides shared utilities for FundWatch
package common

import "time"

// Staleness thresholds for disclosed fund data.
const (
	// NAVStaleAfter is the age beyond which a published NAV is considered
	// stale. Funds publish NAV each trading day, so anything older than 3
	// calendar days spans at most a long weekend.
	NAVStaleAfter = 3 * 24 * time.Hour

	// HoldingsStaleAfter is the age beyond which quarterly holdings
	// disclosures are considered stale (one quarter).
	HoldingsStaleAfter = 90 * 24 * time.Hour
)

// dateLayout is the wire format for calendar dates throughout FundWatch.
const DateLayout = "2006-01-02"

// NAVStale reports whether a NAV published on navDate is stale as of now.
// An empty or unparseable date is always stale.
func NAVStale(navDate string, now time.Time) bool {
	return olderThan(navDate, now, NAVStaleAfter)
}

// HoldingsStale reports whether holdings reported on reportDate are stale
// as of now. An empty or unparseable date is always stale.
func HoldingsStale(reportDate string, now time.Time) bool {
	return olderThan(reportDate, now, HoldingsStaleAfter)
}

func olderThan(date string, now time.Time, maxAge time.Duration) bool {
	if date == "" {
		return true
	}
	t, err := time.ParseInLocation(DateLayout, date, now.Location())
	if err != nil {
		return true
	}
	return now.Sub(t) > maxAge
}

// IsTradingHours reports whether t falls within mainland exchange trading
// hours: 09:30-11:30 and 13:00-15:00, Monday-Friday. A 5-minute margin on
// each side keeps the quote refresher running across the open and close.
func IsTradingHours(t time.Time) bool {
	if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	hour, min, _ := t.Clock()
	minuteOfDay := hour*60 + min
	// 09:25 = 565, 11:35 = 695, 12:55 = 775, 15:05 = 905
	return (minuteOfDay >= 565 && minuteOfDay <= 695) ||
		(minuteOfDay >= 775 && minuteOfDay <= 905)
}

// IsAfterClose reports whether t is past the market close (15:05) on a
// weekday. Used to gate the daily snapshot job.
func IsAfterClose(t time.Time) bool {
	if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	hour, min, _ := t.Clock()
	return hour*60+min > 905
}
