package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsTradingDay(t *testing.T) {
	if IsTradingDay(date(2024, time.January, 6)) {
		t.Error("Saturday should not be a trading day")
	}
	if IsTradingDay(date(2024, time.January, 7)) {
		t.Error("Sunday should not be a trading day")
	}
	if !IsTradingDay(date(2024, time.January, 8)) {
		t.Error("Monday should be a trading day")
	}
}

func TestAddTradingDaysSkipsWeekend(t *testing.T) {
	// Friday + 2 trading days lands on Tuesday.
	got := AddTradingDays(date(2024, time.January, 5), 2)
	want := date(2024, time.January, 9)
	if !got.Equal(want) {
		t.Errorf("got %s, want %s", got.Format("2006-01-02"), want.Format("2006-01-02"))
	}

	if got := AddTradingDays(date(2024, time.January, 5), 0); !got.Equal(date(2024, time.January, 5)) {
		t.Errorf("zero days should be identity, got %s", got.Format("2006-01-02"))
	}
}

func TestTradingDaysBetween(t *testing.T) {
	// Mon Jan 8 through Mon Jan 15: Tue-Fri + Mon = 5.
	if got := TradingDaysBetween(date(2024, time.January, 8), date(2024, time.January, 15)); got != 5 {
		t.Errorf("got %d, want 5", got)
	}
	if got := TradingDaysBetween(date(2024, time.January, 15), date(2024, time.January, 8)); got != 0 {
		t.Errorf("reversed range = %d, want 0", got)
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"1234.5", "$1,234.50"},
		{"1234567.891", "$1,234,567.89"},
		{"-999.99", "-$999.99"},
	}
	for _, tt := range tests {
		d, err := decimal.NewFromString(tt.in)
		if err != nil {
			t.Fatalf("parse %q: %v", tt.in, err)
		}
		if got := FormatMoney(d); got != tt.want {
			t.Errorf("FormatMoney(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(0.1234); got != "+12.34%" {
		t.Errorf("got %q", got)
	}
	if got := FormatPercent(-0.05); got != "-5.00%" {
		t.Errorf("got %q", got)
	}
}

func TestFormatQuantity(t *testing.T) {
	if got := FormatQuantity(1234567); got != "1,234,567" {
		t.Errorf("got %q", got)
	}
	if got := FormatQuantity(-2500); got != "-2,500" {
		t.Errorf("got %q", got)
	}
}
