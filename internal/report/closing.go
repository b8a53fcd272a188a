package report

import (
	"fmt"
	"time"

	"github.com/cleared-dev/tally/internal/model"
	"github.com/cleared-dev/tally/internal/posting"
)

// temporaryTypes are zeroed into retained earnings at period close.
var temporaryTypes = []model.AccountType{
	model.AccountTypeRevenue,
	model.AccountTypeExpense,
	model.AccountTypeDividend,
}

// ClosingEntries builds one balanced entry that zeroes every revenue,
// expense and dividend leaf balance for the period into the retained
// earnings account, and posts it through the posting engine so the
// audit trail and atomicity guarantees hold. The transaction date is
// the period end.
//
// Closing an already-closed period is a no-op: every source balance is
// zero, no lines are produced, and (nil, nil) is returned.
func (e *Engine) ClosingEntries(p *posting.Engine, from, to time.Time, retainedEarningsID int) (*model.JournalEntry, error) {
	re, ok := e.Tree.Account(retainedEarningsID)
	if !ok {
		return nil, fmt.Errorf("retained earnings account %d: %w", retainedEarningsID, posting.ErrAccountNotFound)
	}
	if re.Type != model.AccountTypeEquity {
		return nil, fmt.Errorf("retained earnings account %q is %s, want equity", re.Name, re.Type)
	}
	if !e.Tree.IsLeaf(retainedEarningsID) {
		return nil, fmt.Errorf("retained earnings account %q: %w", re.Name, posting.ErrNonLeafPosting)
	}

	entry := &model.JournalEntry{
		EntryDate:       time.Now(),
		TransactionDate: to,
		Description:     fmt.Sprintf("period close %s..%s", from.Format("2006-01-02"), to.Format("2006-01-02")),
	}

	// One snapshot for every temporary account, so the closing amounts
	// all describe the same moment of the ledger.
	balances := e.Store.PeriodBalances(from, to)

	for _, typ := range temporaryTypes {
		normal := typ.NormalSide()
		for _, leaf := range e.Tree.Leaves(e.Tree.TypeRoot(typ)) {
			balance := balances[leaf]
			if balance.IsZero() {
				continue
			}

			// A normal-side balance is zeroed by a posting on the
			// opposite side; a contra balance by one on the normal side.
			side := normal.Flip()
			if balance.IsNegative() {
				side = normal
				balance = balance.Neg()
			}
			entry.Lines = append(entry.Lines, model.TransactionLine{
				AccountID:   leaf,
				Amount:      balance,
				Side:        side,
				Description: entry.Description,
			})
		}
	}

	if len(entry.Lines) == 0 {
		return nil, nil
	}

	// Balance the entry into retained earnings with the net amount.
	debits := entry.TotalDebits()
	credits := entry.TotalCredits()
	switch {
	case debits.GreaterThan(credits):
		entry.Lines = append(entry.Lines, model.TransactionLine{
			AccountID:   retainedEarningsID,
			Amount:      debits.Sub(credits),
			Side:        model.Credit,
			Description: entry.Description,
		})
	case credits.GreaterThan(debits):
		entry.Lines = append(entry.Lines, model.TransactionLine{
			AccountID:   retainedEarningsID,
			Amount:      credits.Sub(debits),
			Side:        model.Debit,
			Description: entry.Description,
		})
	}

	if _, err := p.PostEntry(entry); err != nil {
		return nil, err
	}
	return entry, nil
}
