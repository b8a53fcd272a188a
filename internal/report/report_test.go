package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/tally/internal/accounts"
	"github.com/cleared-dev/tally/internal/ledger"
	"github.com/cleared-dev/tally/internal/model"
	"github.com/cleared-dev/tally/internal/posting"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fixture struct {
	tree     *accounts.Tree
	store    *ledger.Store
	posting  *posting.Engine
	reports  *Engine
	cash     int
	equity   int
	retained int
	revenue  int
	expense  int
	loan     int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tree := accounts.NewTree()

	cash, err := tree.AddAccount(tree.TypeRoot(model.AccountTypeAsset), "Cash", model.AccountTypeAsset)
	require.NoError(t, err)
	equity, err := tree.AddAccount(tree.TypeRoot(model.AccountTypeEquity), "Owner's Equity", model.AccountTypeEquity)
	require.NoError(t, err)
	retained, err := tree.AddAccount(tree.TypeRoot(model.AccountTypeEquity), "Retained Earnings", model.AccountTypeEquity)
	require.NoError(t, err)
	revenue, err := tree.AddAccount(tree.TypeRoot(model.AccountTypeRevenue), "Service Revenue", model.AccountTypeRevenue)
	require.NoError(t, err)
	expense, err := tree.AddAccount(tree.TypeRoot(model.AccountTypeExpense), "Rent", model.AccountTypeExpense)
	require.NoError(t, err)
	loan, err := tree.AddAccount(tree.TypeRoot(model.AccountTypeLiability), "Bank Loan", model.AccountTypeLiability)
	require.NoError(t, err)

	store := ledger.NewStore()
	return &fixture{
		tree:     tree,
		store:    store,
		posting:  posting.NewEngine(tree, store),
		reports:  NewEngine(tree, store),
		cash:     cash,
		equity:   equity,
		retained: retained,
		revenue:  revenue,
		expense:  expense,
		loan:     loan,
	}
}

func (f *fixture) post(t *testing.T, txn time.Time, desc string, lines ...model.TransactionLine) {
	t.Helper()
	_, err := f.posting.PostEntry(&model.JournalEntry{
		EntryDate:       txn.AddDate(0, 0, 1),
		TransactionDate: txn,
		Description:     desc,
		Lines:           lines,
	})
	require.NoError(t, err)
}

func line(acct int, amount string, side model.Side) model.TransactionLine {
	return model.TransactionLine{AccountID: acct, Amount: dec(amount), Side: side}
}

func TestTrialBalance(t *testing.T) {
	f := newFixture(t)
	f.post(t, day(2025, 1, 15), "owner investment",
		line(f.cash, "100.00", model.Debit),
		line(f.equity, "100.00", model.Credit),
	)

	tb, err := f.reports.TrialBalance(day(2025, 12, 31))
	require.NoError(t, err)
	require.Len(t, tb.Rows, 2, "only accounts with activity appear")

	assert.Equal(t, "Cash", tb.Rows[0].Name)
	assert.True(t, tb.Rows[0].Debit.Equal(dec("100.00")))
	assert.True(t, tb.Rows[0].Credit.IsZero())

	assert.Equal(t, "Owner's Equity", tb.Rows[1].Name)
	assert.True(t, tb.Rows[1].Debit.IsZero())
	assert.True(t, tb.Rows[1].Credit.Equal(dec("100.00")))

	assert.True(t, tb.TotalDebits.Equal(dec("100.00")))
	assert.True(t, tb.TotalCredits.Equal(dec("100.00")))
}

func TestTrialBalanceNegativeFlipsColumn(t *testing.T) {
	f := newFixture(t)
	// Overdraw cash: balance goes negative, so it reports as a credit.
	f.post(t, day(2025, 1, 10), "loan received",
		line(f.cash, "50.00", model.Debit),
		line(f.loan, "50.00", model.Credit),
	)
	f.post(t, day(2025, 1, 20), "rent",
		line(f.expense, "80.00", model.Debit),
		line(f.cash, "80.00", model.Credit),
	)

	tb, err := f.reports.TrialBalance(day(2025, 12, 31))
	require.NoError(t, err)

	var cashRow *TrialBalanceRow
	for i := range tb.Rows {
		if tb.Rows[i].AccountID == f.cash {
			cashRow = &tb.Rows[i]
		}
	}
	require.NotNil(t, cashRow)
	assert.True(t, cashRow.Debit.IsZero())
	assert.True(t, cashRow.Credit.Equal(dec("30.00")))
	assert.True(t, tb.TotalDebits.Equal(tb.TotalCredits))
}

func TestTrialBalanceEmpty(t *testing.T) {
	f := newFixture(t)
	tb, err := f.reports.TrialBalance(day(2025, 12, 31))
	require.NoError(t, err)
	assert.Empty(t, tb.Rows)
	assert.True(t, tb.TotalDebits.IsZero())
	assert.True(t, tb.TotalCredits.IsZero())
}

func TestReportsDuringConcurrentPostings(t *testing.T) {
	f := newFixture(t)
	asOf := day(2025, 12, 31)

	done := make(chan error, 1)
	go func() {
		for i := 0; i < 200; i++ {
			_, err := f.posting.PostEntry(&model.JournalEntry{
				EntryDate:       day(2025, 1, 16),
				TransactionDate: day(2025, 1, 15),
				Description:     "concurrent",
				Lines: []model.TransactionLine{
					line(f.cash, "1.00", model.Debit),
					line(f.equity, "1.00", model.Credit),
				},
			})
			if err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	// Every balanced posting keeps the ledger healthy, so no snapshot
	// taken mid-stream may ever report an imbalance.
	for i := 0; i < 200; i++ {
		tb, err := f.reports.TrialBalance(asOf)
		require.NoError(t, err)
		assert.True(t, tb.TotalDebits.Equal(tb.TotalCredits))

		bs := f.reports.BalanceSheet(asOf)
		assert.True(t, bs.Balanced)
	}
	require.NoError(t, <-done)

	tb, err := f.reports.TrialBalance(asOf)
	require.NoError(t, err)
	assert.True(t, tb.TotalDebits.Equal(dec("200.00")))
}

func TestBalanceSheet(t *testing.T) {
	f := newFixture(t)
	f.post(t, day(2025, 1, 15), "owner investment",
		line(f.cash, "1000.00", model.Debit),
		line(f.equity, "1000.00", model.Credit),
	)
	f.post(t, day(2025, 2, 1), "loan received",
		line(f.cash, "500.00", model.Debit),
		line(f.loan, "500.00", model.Credit),
	)

	bs := f.reports.BalanceSheet(day(2025, 12, 31))
	assert.True(t, bs.Assets.Total.Equal(dec("1500.00")))
	assert.True(t, bs.Liabilities.Total.Equal(dec("500.00")))
	assert.True(t, bs.Equity.Total.Equal(dec("1000.00")))
	assert.True(t, bs.Balanced)

	// The as-of date excludes later activity.
	earlier := f.reports.BalanceSheet(day(2025, 1, 31))
	assert.True(t, earlier.Assets.Total.Equal(dec("1000.00")))
	assert.True(t, earlier.Liabilities.Total.IsZero())
}

func TestBalanceSheetUnbalancedBeforeClose(t *testing.T) {
	f := newFixture(t)
	f.post(t, day(2025, 3, 10), "sale",
		line(f.cash, "200.00", model.Debit),
		line(f.revenue, "200.00", model.Credit),
	)

	bs := f.reports.BalanceSheet(day(2025, 12, 31))
	assert.False(t, bs.Balanced, "net income not yet closed into equity")
}

func TestIncomeStatement(t *testing.T) {
	f := newFixture(t)
	f.post(t, day(2025, 3, 10), "sale",
		line(f.cash, "200.00", model.Debit),
		line(f.revenue, "200.00", model.Credit),
	)
	f.post(t, day(2025, 3, 20), "rent",
		line(f.expense, "75.00", model.Debit),
		line(f.cash, "75.00", model.Credit),
	)
	// Outside the period.
	f.post(t, day(2025, 6, 1), "later sale",
		line(f.cash, "999.00", model.Debit),
		line(f.revenue, "999.00", model.Credit),
	)

	is := f.reports.IncomeStatement(day(2025, 3, 1), day(2025, 3, 31))
	assert.True(t, is.Revenue.Total.Equal(dec("200.00")))
	assert.True(t, is.Expenses.Total.Equal(dec("75.00")))
	assert.True(t, is.Net.Equal(dec("125.00")))
}

func TestCashFlow(t *testing.T) {
	f := newFixture(t)
	f.post(t, day(2025, 1, 5), "owner investment",
		line(f.cash, "1000.00", model.Debit),
		line(f.equity, "1000.00", model.Credit),
	)
	f.post(t, day(2025, 1, 10), "sale",
		line(f.cash, "300.00", model.Debit),
		line(f.revenue, "300.00", model.Credit),
	)
	f.post(t, day(2025, 1, 20), "rent",
		line(f.expense, "120.00", model.Debit),
		line(f.cash, "120.00", model.Credit),
	)

	cf := f.reports.CashFlow(day(2025, 1, 1), day(2025, 1, 31), []int{f.cash})
	assert.True(t, cf.Operating.Equal(dec("180.00")), "sales less rent")
	assert.True(t, cf.Financing.Equal(dec("1000.00")), "owner investment")
	assert.True(t, cf.Investing.IsZero())
	assert.True(t, cf.Net.Equal(dec("1180.00")))
}

func TestClosingEntries(t *testing.T) {
	f := newFixture(t)
	from, to := day(2025, 1, 1), day(2025, 12, 31)

	f.post(t, day(2025, 3, 10), "sale",
		line(f.cash, "200.00", model.Debit),
		line(f.revenue, "200.00", model.Credit),
	)
	f.post(t, day(2025, 3, 20), "rent",
		line(f.expense, "75.00", model.Debit),
		line(f.cash, "75.00", model.Credit),
	)

	entry, err := f.reports.ClosingEntries(f.posting, from, to, f.retained)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.True(t, entry.TransactionDate.Equal(to))
	assert.True(t, entry.Balanced())

	// Temporary accounts are zeroed, retained earnings holds the net.
	assert.True(t, f.store.BalanceOf(f.revenue, to).IsZero())
	assert.True(t, f.store.BalanceOf(f.expense, to).IsZero())
	assert.True(t, f.store.BalanceOf(f.retained, to).Equal(dec("125.00")))

	bs := f.reports.BalanceSheet(to)
	assert.True(t, bs.Balanced, "closing moves net income into equity")

	// Closing again finds nothing to move.
	again, err := f.reports.ClosingEntries(f.posting, from, to, f.retained)
	require.NoError(t, err)
	assert.Nil(t, again)
	assert.True(t, f.store.BalanceOf(f.retained, to).Equal(dec("125.00")))
}

func TestClosingEntriesValidatesRetainedEarnings(t *testing.T) {
	f := newFixture(t)

	t.Run("unknown account", func(t *testing.T) {
		_, err := f.reports.ClosingEntries(f.posting, day(2025, 1, 1), day(2025, 12, 31), 999)
		assert.ErrorIs(t, err, posting.ErrAccountNotFound)
	})

	t.Run("wrong type", func(t *testing.T) {
		_, err := f.reports.ClosingEntries(f.posting, day(2025, 1, 1), day(2025, 12, 31), f.cash)
		assert.Error(t, err)
	})

	t.Run("group account", func(t *testing.T) {
		_, err := f.reports.ClosingEntries(f.posting, day(2025, 1, 1), day(2025, 12, 31),
			f.tree.TypeRoot(model.AccountTypeEquity))
		assert.ErrorIs(t, err, posting.ErrNonLeafPosting)
	})
}
