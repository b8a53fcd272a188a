package posting

import (
	"errors"
	"fmt"

	"github.com/cleared-dev/tally/internal/accounts"
	"github.com/cleared-dev/tally/internal/model"
)

// Validation errors. All are recoverable: the caller corrects the entry
// and retries. A failed entry leaves the ledger untouched.
var (
	ErrEmptyEntry         = errors.New("entry needs at least two lines")
	ErrAccountNotFound    = errors.New("account does not exist")
	ErrNonLeafPosting     = errors.New("postings must target terminal accounts")
	ErrNonPositiveAmount  = errors.New("line amount must be positive")
	ErrImbalancedEntry    = errors.New("debits do not equal credits")
	ErrDateOrderViolation = errors.New("transaction date is after entry date")
	ErrDuplicateEntryID   = errors.New("entry id already posted")
	ErrEntryNotFound      = errors.New("no records for entry")
)

// validateEntry runs the posting checks in order; the first failure
// wins and nothing is appended.
func validateEntry(tree *accounts.Tree, entry *model.JournalEntry) error {
	if len(entry.Lines) < 2 {
		return fmt.Errorf("entry %s has %d line(s): %w", entry.ID, len(entry.Lines), ErrEmptyEntry)
	}

	for i, line := range entry.Lines {
		if !tree.Exists(line.AccountID) {
			return fmt.Errorf("line %d: account %d: %w", i+1, line.AccountID, ErrAccountNotFound)
		}
		if !tree.IsLeaf(line.AccountID) {
			return fmt.Errorf("line %d: account %d is a group: %w", i+1, line.AccountID, ErrNonLeafPosting)
		}
	}

	for i, line := range entry.Lines {
		if !line.Amount.IsPositive() {
			return fmt.Errorf("line %d: amount %s: %w", i+1, line.Amount, ErrNonPositiveAmount)
		}
	}

	debits := entry.TotalDebits()
	credits := entry.TotalCredits()
	if !debits.Equal(credits) {
		return fmt.Errorf("entry %s: debits %s, credits %s: %w",
			entry.ID, debits, credits, ErrImbalancedEntry)
	}

	if entry.TransactionDate.After(entry.EntryDate) {
		return fmt.Errorf("entry %s: transaction date %s after entry date %s: %w",
			entry.ID,
			entry.TransactionDate.Format("2006-01-02"),
			entry.EntryDate.Format("2006-01-02"),
			ErrDateOrderViolation)
	}

	return nil
}
