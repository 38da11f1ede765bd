// Package models defines the data types shared across the simulation.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceBar is one trading day's OHLCV for a single ticker. Close is the
// adjusted closing price and is the only mandatory field; Open, High and Low
// are zero when the data source supplies close-only history. Non-trading days
// are simply absent from a series, never zero-filled.
type PriceBar struct {
	Date   time.Time       `json:"date" csv:"date"`
	Open   decimal.Decimal `json:"open" csv:"open"`
	High   decimal.Decimal `json:"high" csv:"high"`
	Low    decimal.Decimal `json:"low" csv:"low"`
	Close  decimal.Decimal `json:"close" csv:"close"`
	Volume int64           `json:"volume" csv:"volume"`
}

// HasOpen reports whether the bar carries an opening price.
func (b PriceBar) HasOpen() bool {
	return b.Open.IsPositive()
}

// HasLow reports whether the bar carries an intraday low.
func (b PriceBar) HasLow() bool {
	return b.Low.IsPositive()
}

// IntradayLow returns the lowest traded price known for the bar, falling back
// to the close for close-only data.
func (b PriceBar) IntradayLow() decimal.Decimal {
	if b.HasLow() {
		return b.Low
	}
	return b.Close
}

// IntradayHigh returns the highest traded price known for the bar, falling
// back to the close for close-only data.
func (b PriceBar) IntradayHigh() decimal.Decimal {
	if b.High.IsPositive() {
		return b.High
	}
	return b.Close
}
