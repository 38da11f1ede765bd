// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// Standard sentinel errors
var (
	ErrInsufficientFunds = errors.New("insufficient settled funds")
	ErrPositionOpen      = errors.New("position already open")
	ErrNoPosition        = errors.New("no open position")
	ErrUnknownModel      = errors.New("unknown model identifier")
	ErrUnknownMarket     = errors.New("unknown market preset")
	ErrUnknownProfile    = errors.New("unknown cost profile")
	ErrDataNotFound      = errors.New("data not found")
	ErrScanCancelled     = errors.New("scan cancelled")
)

// ConfigError represents an invalid configuration value. It is fatal to a run
// and surfaced before any simulation starts.
type ConfigError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field string, value interface{}, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// DataGapError reports missing price or signal data for a simulated day.
// The day is never silently skipped: skipping would corrupt holding-day
// counts and the equity curve.
type DataGapError struct {
	Ticker string
	Date   time.Time
	Kind   string // "price" or "signal"
	Err    error
}

func (e *DataGapError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data gap [%s] missing %s for %s: %v", e.Ticker, e.Kind, e.Date.Format("2006-01-02"), e.Err)
	}
	return fmt.Sprintf("data gap [%s] missing %s for %s", e.Ticker, e.Kind, e.Date.Format("2006-01-02"))
}

func (e *DataGapError) Unwrap() error {
	return e.Err
}

// NewDataGapError creates a new DataGapError.
func NewDataGapError(ticker string, date time.Time, kind string, err error) *DataGapError {
	return &DataGapError{
		Ticker: ticker,
		Date:   date,
		Kind:   kind,
		Err:    err,
	}
}

// InsufficientSignalsError reports a consensus vote attempted with no
// signals. It indicates a caller integration bug and is never retried.
type InsufficientSignalsError struct {
	Date time.Time
}

func (e *InsufficientSignalsError) Error() string {
	if e.Date.IsZero() {
		return "insufficient signals: empty signal set"
	}
	return fmt.Sprintf("insufficient signals: empty signal set for %s", e.Date.Format("2006-01-02"))
}

// NewInsufficientSignalsError creates a new InsufficientSignalsError.
func NewInsufficientSignalsError(date time.Time) *InsufficientSignalsError {
	return &InsufficientSignalsError{Date: date}
}

// InsufficientHistoryError reports a price series too short to cover the
// warm-up buffer plus one tradeable bar.
type InsufficientHistoryError struct {
	Ticker   string
	Bars     int
	Required int
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("insufficient history [%s]: %d bars, need at least %d", e.Ticker, e.Bars, e.Required)
}

// NewInsufficientHistoryError creates a new InsufficientHistoryError.
func NewInsufficientHistoryError(ticker string, bars, required int) *InsufficientHistoryError {
	return &InsufficientHistoryError{
		Ticker:   ticker,
		Bars:     bars,
		Required: required,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
