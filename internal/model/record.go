package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record is one immutable row of the ledger's audit trail. Once appended
// it is never modified or deleted; corrections are new reversing records
// produced by new journal entries.
type Record struct {
	EntryID         string
	AccountID       int
	TransactionDate time.Time
	// Delta is signed: positive if the posting increases the account's
	// normal-balance side, negative otherwise.
	Delta       decimal.Decimal
	Seq         int64 // assigned at append; orders same-date records
	Description string
}

// Amount returns the unsigned magnitude of the record.
func (r Record) Amount() decimal.Decimal {
	return r.Delta.Abs()
}

// Side returns the original posting side, given the normal side of the
// record's account type.
func (r Record) Side(normal Side) Side {
	if r.Delta.IsNegative() {
		return normal.Flip()
	}
	return normal
}
