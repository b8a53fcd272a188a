package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/accounts"
	"github.com/cleared-dev/tally/internal/ledger"
	"github.com/cleared-dev/tally/internal/model"
)

// ErrTrialBalanceImbalance signals a fatal internal-consistency defect:
// posted records no longer balance. It should be unreachable given the
// posting engine's validation, and it is never corrected silently.
var ErrTrialBalanceImbalance = errors.New("trial balance does not balance")

// Engine derives balances and statements from a chart of accounts and a
// ledger store. All methods are reads: they never mutate either.
type Engine struct {
	Tree  *accounts.Tree
	Store *ledger.Store
}

// NewEngine creates a reporting engine over a tree and store.
func NewEngine(tree *accounts.Tree, store *ledger.Store) *Engine {
	return &Engine{Tree: tree, Store: store}
}

// TrialBalanceRow is one terminal account's balance split into its
// debit or credit column.
type TrialBalanceRow struct {
	AccountID int
	Name      string
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// TrialBalance lists every terminal account with activity by the as-of
// date, in stable chart order, with column totals.
type TrialBalance struct {
	AsOf         time.Time
	Rows         []TrialBalanceRow
	TotalDebits  decimal.Decimal
	TotalCredits decimal.Decimal
}

// TrialBalance builds a trial balance as of the given date and verifies
// that total debits equal total credits. A mismatch is returned as
// ErrTrialBalanceImbalance for operator investigation.
func (e *Engine) TrialBalance(asOf time.Time) (*TrialBalance, error) {
	tb := &TrialBalance{
		AsOf:         asOf,
		TotalDebits:  decimal.Zero,
		TotalCredits: decimal.Zero,
	}

	// One snapshot for the whole report: row balances taken account by
	// account could straddle a concurrent posting and report a healthy
	// ledger as imbalanced.
	balances := e.Store.BalancesAsOf(asOf)

	for a := range e.Tree.Walk(accounts.RootID) {
		if a.Level == 0 || a.IsGroup() {
			continue
		}
		balance, active := balances[a.ID]
		if !active {
			continue
		}

		row := TrialBalanceRow{
			AccountID: a.ID,
			Name:      a.Name,
			Debit:     decimal.Zero,
			Credit:    decimal.Zero,
		}

		// A positive balance sits on the account's normal side; a
		// negative one flips to the opposite column.
		side := a.Type.NormalSide()
		if balance.IsNegative() {
			side = side.Flip()
			balance = balance.Neg()
		}
		if side == model.Debit {
			row.Debit = balance
		} else {
			row.Credit = balance
		}

		tb.Rows = append(tb.Rows, row)
		tb.TotalDebits = tb.TotalDebits.Add(row.Debit)
		tb.TotalCredits = tb.TotalCredits.Add(row.Credit)
	}

	if !tb.TotalDebits.Equal(tb.TotalCredits) {
		return nil, fmt.Errorf("as of %s: debits %s, credits %s: %w",
			asOf.Format("2006-01-02"), tb.TotalDebits, tb.TotalCredits,
			ErrTrialBalanceImbalance)
	}

	return tb, nil
}
