package utils

import "time"

// IsTradingDay reports whether the date falls on a weekday. Exchange
// holidays are not modelled; simulated data carries its own gaps.
func IsTradingDay(date time.Time) bool {
	wd := date.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// NextTradingDay returns the first weekday strictly after the given date.
func NextTradingDay(date time.Time) time.Time {
	next := date.AddDate(0, 0, 1)
	for !IsTradingDay(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// AddTradingDays advances the date by n weekdays. n <= 0 returns the date
// unchanged.
func AddTradingDays(date time.Time, n int) time.Time {
	for i := 0; i < n; i++ {
		date = NextTradingDay(date)
	}
	return date
}

// TradingDaysBetween counts the weekdays in (from, to]. A reversed range
// counts zero.
func TradingDaysBetween(from, to time.Time) int {
	count := 0
	for d := from.AddDate(0, 0, 1); !d.After(to); d = d.AddDate(0, 0, 1) {
		if IsTradingDay(d) {
			count++
		}
	}
	return count
}
