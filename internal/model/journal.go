package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is the debit or credit side of a transaction line.
type Side string

const (
	Debit  Side = "debit"
	Credit Side = "credit"
)

// Flip returns the opposite side.
func (s Side) Flip() Side {
	if s == Debit {
		return Credit
	}
	return Debit
}

// TransactionLine is one row of a journal entry: an amount posted to a
// terminal account on one side.
type TransactionLine struct {
	AccountID   int
	Amount      decimal.Decimal // always positive
	Side        Side
	Description string
}

// JournalEntry is a dated, described, balanced set of debit/credit lines
// representing one economic event. It is a transient input: once posted
// only the ledger records it produced persist.
type JournalEntry struct {
	ID              string
	EntryDate       time.Time // when recorded; >= TransactionDate
	TransactionDate time.Time // when the economic event occurred
	Description     string
	Lines           []TransactionLine
}

// TotalDebits sums the amounts of the debit lines.
func (e *JournalEntry) TotalDebits() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		if l.Side == Debit {
			total = total.Add(l.Amount)
		}
	}
	return total
}

// TotalCredits sums the amounts of the credit lines.
func (e *JournalEntry) TotalCredits() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		if l.Side == Credit {
			total = total.Add(l.Amount)
		}
	}
	return total
}

// Balanced reports whether total debits equal total credits exactly.
func (e *JournalEntry) Balanced() bool {
	return e.TotalDebits().Equal(e.TotalCredits())
}
