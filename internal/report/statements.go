package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/model"
)

// Line is one row of a statement: an account, its total, and its
// children's lines. A group's total is the sum of its children's
// totals, folded bottom-up.
type Line struct {
	AccountID int
	Name      string
	Total     decimal.Decimal
	Children  []*Line
}

// BalanceSheet is the balance-sheet view of the ledger as of a date.
// Balanced holds once closing entries have moved the period's net
// income into equity.
type BalanceSheet struct {
	AsOf        time.Time
	Assets      *Line
	Liabilities *Line
	Equity      *Line
	Balanced    bool
}

// IncomeStatement covers revenue and expense activity within a period.
type IncomeStatement struct {
	From     time.Time
	To       time.Time
	Revenue  *Line
	Expenses *Line
	Net      decimal.Decimal
}

// CashFlow is the net change of the designated cash accounts over a
// period, split by the nature of the counter-accounts.
type CashFlow struct {
	From      time.Time
	To        time.Time
	Operating decimal.Decimal
	Investing decimal.Decimal
	Financing decimal.Decimal
	Net       decimal.Decimal
}

// buildLine folds a subtree bottom-up: leaves take their balance from
// balanceOf, groups sum their children.
func (e *Engine) buildLine(accountID int, balanceOf func(leafID int) decimal.Decimal) *Line {
	a, ok := e.Tree.Account(accountID)
	if !ok {
		return nil
	}

	line := &Line{AccountID: a.ID, Name: a.Name, Total: decimal.Zero}
	if !a.IsGroup() {
		line.Total = balanceOf(a.ID)
		return line
	}

	for _, child := range a.Children {
		cl := e.buildLine(child, balanceOf)
		line.Children = append(line.Children, cl)
		line.Total = line.Total.Add(cl.Total)
	}
	return line
}

// BalanceSheet traverses the asset, liability and equity subtrees and
// produces nested subgroup totals as of the given date. All three
// sections read the same ledger snapshot, so the Balanced flag cannot
// trip on a posting landing mid-report.
func (e *Engine) BalanceSheet(asOf time.Time) *BalanceSheet {
	balances := e.Store.BalancesAsOf(asOf)
	asOfBalance := func(leafID int) decimal.Decimal {
		return balances[leafID]
	}

	bs := &BalanceSheet{
		AsOf:        asOf,
		Assets:      e.buildLine(e.Tree.TypeRoot(model.AccountTypeAsset), asOfBalance),
		Liabilities: e.buildLine(e.Tree.TypeRoot(model.AccountTypeLiability), asOfBalance),
		Equity:      e.buildLine(e.Tree.TypeRoot(model.AccountTypeEquity), asOfBalance),
	}
	bs.Balanced = bs.Assets.Total.Equal(bs.Liabilities.Total.Add(bs.Equity.Total))
	return bs
}

// IncomeStatement traverses the revenue and expense subtrees restricted
// to transaction dates within [from, to].
func (e *Engine) IncomeStatement(from, to time.Time) *IncomeStatement {
	balances := e.Store.PeriodBalances(from, to)
	periodBalance := func(leafID int) decimal.Decimal {
		return balances[leafID]
	}

	is := &IncomeStatement{
		From:     from,
		To:       to,
		Revenue:  e.buildLine(e.Tree.TypeRoot(model.AccountTypeRevenue), periodBalance),
		Expenses: e.buildLine(e.Tree.TypeRoot(model.AccountTypeExpense), periodBalance),
	}
	is.Net = is.Revenue.Total.Sub(is.Expenses.Total)
	return is
}

// CashFlow sums the period's deltas on the given cash accounts and
// buckets each movement by its entry's counter-accounts: revenue or
// expense movements are operating, liability/equity/dividend movements
// are financing, and other asset movements are investing.
func (e *Engine) CashFlow(from, to time.Time, cashAccounts []int) *CashFlow {
	cash := make(map[int]bool, len(cashAccounts))
	for _, id := range cashAccounts {
		cash[id] = true
	}

	cf := &CashFlow{
		From:      from,
		To:        to,
		Operating: decimal.Zero,
		Investing: decimal.Zero,
		Financing: decimal.Zero,
		Net:       decimal.Zero,
	}

	for _, r := range e.Store.RecordsBetween(from, to) {
		if !cash[r.AccountID] {
			continue
		}
		cf.Net = cf.Net.Add(r.Delta)

		switch e.classifyEntry(r.EntryID, cash) {
		case model.AccountTypeRevenue, model.AccountTypeExpense:
			cf.Operating = cf.Operating.Add(r.Delta)
		case model.AccountTypeLiability, model.AccountTypeEquity, model.AccountTypeDividend:
			cf.Financing = cf.Financing.Add(r.Delta)
		default:
			cf.Investing = cf.Investing.Add(r.Delta)
		}
	}
	return cf
}

// classifyEntry returns the type of the first non-cash account the
// entry touches, or asset if the entry moves only between cash
// accounts.
func (e *Engine) classifyEntry(entryID string, cash map[int]bool) model.AccountType {
	for _, r := range e.Store.RecordsForEntry(entryID) {
		if cash[r.AccountID] {
			continue
		}
		if a, ok := e.Tree.Account(r.AccountID); ok {
			return a.Type
		}
	}
	return model.AccountTypeAsset
}
