package commands

import (
	"bytes"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/tally/internal/config"
	"github.com/cleared-dev/tally/internal/ledger"
	"github.com/cleared-dev/tally/internal/model"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestRunInit(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, runInit(dir, "household"))

	assert.FileExists(t, filepath.Join(dir, "tally.yaml"))
	assert.FileExists(t, filepath.Join(dir, "chart.csv"))

	b, err := openBooks(dir)
	require.NoError(t, err)
	assert.Equal(t, "household", b.cfg.Ledger.Name)

	_, ok := b.tree.FindByName("Cash")
	assert.True(t, ok, "default chart has a Cash account")
	_, ok = b.tree.FindByName("Retained Earnings")
	assert.True(t, ok)
}

func TestRunInitRefusesExisting(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, runInit(dir, "first"))
	assert.Error(t, runInit(dir, "second"))
}

func TestOpenBooksMissingConfig(t *testing.T) {
	_, err := openBooks(t.TempDir())
	assert.Error(t, err)
}

func TestOpenBooksCarriesLedgerID(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, runInit(dir, "household"))

	b, err := openBooks(dir)
	require.NoError(t, err)
	assert.Equal(t, b.cfg.Ledger.ID, b.store.ID().String(),
		"the store carries the id stamped at init")

	reopened, err := openBooks(dir)
	require.NoError(t, err)
	assert.Equal(t, b.store.ID(), reopened.store.ID())
}

func TestOpenBooksRejectsBadLedgerID(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, runInit(dir, "household"))

	cfg, err := config.Load(filepath.Join(dir, configFile))
	require.NoError(t, err)
	cfg.Ledger.ID = "not-a-uuid"
	require.NoError(t, config.Save(filepath.Join(dir, configFile), cfg))

	_, err = openBooks(dir)
	assert.Error(t, err)
}

func TestBooksRoundTrip(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, runInit(dir, "household"))

	b, err := openBooks(dir)
	require.NoError(t, err)

	cash, err := b.resolveAccount("Cash")
	require.NoError(t, err)
	equity, err := b.resolveAccount("Owner's Equity")
	require.NoError(t, err)

	txn := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)
	records, err := b.engine.PostEntry(&model.JournalEntry{
		EntryDate:       txn,
		TransactionDate: txn,
		Description:     "owner investment",
		Lines: []model.TransactionLine{
			{AccountID: cash, Amount: dec("100.00"), Side: model.Debit},
			{AccountID: equity, Amount: dec("100.00"), Side: model.Credit},
		},
	})
	require.NoError(t, err)
	require.NoError(t, b.appendRecords(records))

	// A fresh open restores the same state from disk.
	reopened, err := openBooks(dir)
	require.NoError(t, err)
	asOf := time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)
	assert.True(t, reopened.store.BalanceOf(cash, asOf).Equal(dec("100.00")))
	assert.True(t, reopened.store.BalanceOf(equity, asOf).Equal(dec("100.00")))

	// Appending again must not duplicate the header.
	more, err := reopened.engine.PostEntry(&model.JournalEntry{
		EntryDate:       txn.AddDate(0, 0, 1),
		TransactionDate: txn.AddDate(0, 0, 1),
		Description:     "more capital",
		Lines: []model.TransactionLine{
			{AccountID: cash, Amount: dec("50.00"), Side: model.Debit},
			{AccountID: equity, Amount: dec("50.00"), Side: model.Credit},
		},
	})
	require.NoError(t, err)
	require.NoError(t, reopened.appendRecords(more))

	third, err := openBooks(dir)
	require.NoError(t, err)
	assert.True(t, third.store.BalanceOf(cash, asOf).Equal(dec("150.00")))
	assert.Equal(t, 4, third.store.Len())
}

func TestJournalExport(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, runInit(dir, "household"))
	b, err := openBooks(dir)
	require.NoError(t, err)

	cash, err := b.resolveAccount("Cash")
	require.NoError(t, err)
	equity, err := b.resolveAccount("Owner's Equity")
	require.NoError(t, err)

	txn := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
	_, err = b.engine.PostEntry(&model.JournalEntry{
		EntryDate:       txn,
		TransactionDate: txn,
		Description:     "opening",
		Lines: []model.TransactionLine{
			{AccountID: cash, Amount: dec("10.00"), Side: model.Debit},
			{AccountID: equity, Amount: dec("10.00"), Side: model.Credit},
		},
	})
	require.NoError(t, err)

	// The export is the full audit trail in append order.
	var buf bytes.Buffer
	require.NoError(t, ledger.WriteRecords(&buf, b.store.All()))

	records, err := ledger.ReadRecords(&buf)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(1), records[0].Seq)
	assert.Equal(t, cash, records[0].AccountID)
}

func TestResolveAccount(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, runInit(dir, "household"))
	b, err := openBooks(dir)
	require.NoError(t, err)

	cash, err := b.resolveAccount("Cash")
	require.NoError(t, err)

	sameByID, err := b.resolveAccount(strconv.Itoa(cash))
	require.NoError(t, err)
	assert.Equal(t, cash, sameByID)

	_, err = b.resolveAccount("9999")
	assert.Error(t, err, "unknown numeric id")

	_, err = b.resolveAccount("No Such Account")
	assert.Error(t, err)
}
