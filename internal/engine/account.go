// Package engine implements the day-by-day backtest simulation.
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// pendingCash is sale proceeds waiting out the settlement lag.
type pendingCash struct {
	Amount      decimal.Decimal
	AvailableOn time.Time
}

// Account is the running simulation state: spendable cash plus a FIFO queue
// of unsettled sale proceeds. Exactly one writer (the exit step) and one
// reader (the day-advance step) exist per account, and an account is never
// shared across goroutines.
type Account struct {
	cash  decimal.Decimal
	queue []pendingCash
}

// NewAccount creates an account holding the initial capital as settled cash.
func NewAccount(initialCapital decimal.Decimal) *Account {
	return &Account{cash: initialCapital}
}

// Spendable returns the settled cash balance.
func (a *Account) Spendable() decimal.Decimal {
	return a.cash
}

// Pending returns the total cash still waiting on settlement.
func (a *Account) Pending() decimal.Decimal {
	total := decimal.Zero
	for _, p := range a.queue {
		total = total.Add(p.Amount)
	}
	return total
}

// Total returns spendable plus pending cash.
func (a *Account) Total() decimal.Decimal {
	return a.cash.Add(a.Pending())
}

// Debit removes settled cash. The caller guarantees the amount fits; a
// negative balance would corrupt the accounting invariant, so it panics
// rather than continue with broken state.
func (a *Account) Debit(amount decimal.Decimal) {
	next := a.cash.Sub(amount)
	if next.IsNegative() {
		panic("account: debit exceeds settled cash")
	}
	a.cash = next
}

// Credit adds settled cash immediately (settlement lag of zero).
func (a *Account) Credit(amount decimal.Decimal) {
	a.cash = a.cash.Add(amount)
}

// Enqueue parks sale proceeds until their settlement date.
func (a *Account) Enqueue(amount decimal.Decimal, availableOn time.Time) {
	a.queue = append(a.queue, pendingCash{Amount: amount, AvailableOn: availableOn})
}

// Release moves every queued amount whose settlement date has arrived into
// spendable cash. Called once per simulated day before entry evaluation.
func (a *Account) Release(asOf time.Time) {
	remaining := a.queue[:0]
	for _, p := range a.queue {
		if !p.AvailableOn.After(asOf) {
			a.cash = a.cash.Add(p.Amount)
		} else {
			remaining = append(remaining, p)
		}
	}
	a.queue = remaining
}

// Finalize drains the queue into cash regardless of dates. Used when the
// simulation ends: settlement completes on the wall clock even though the
// simulated period is over.
func (a *Account) Finalize() {
	for _, p := range a.queue {
		a.cash = a.cash.Add(p.Amount)
	}
	a.queue = nil
}
