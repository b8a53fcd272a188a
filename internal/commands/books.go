package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/cleared-dev/tally/internal/accounts"
	"github.com/cleared-dev/tally/internal/config"
	"github.com/cleared-dev/tally/internal/ledger"
	"github.com/cleared-dev/tally/internal/model"
	"github.com/cleared-dev/tally/internal/posting"
	"github.com/cleared-dev/tally/internal/report"
)

const configFile = "tally.yaml"

// books bundles the loaded core for one ledger directory. The commands
// are pure formatting over it; all accounting logic stays in the core.
type books struct {
	dir     string
	cfg     *config.Config
	tree    *accounts.Tree
	store   *ledger.Store
	engine  *posting.Engine
	reports *report.Engine
}

// openBooks loads config, chart and journal from a ledger directory.
func openBooks(dir string) (*books, error) {
	cfg, err := config.Load(filepath.Join(dir, configFile))
	if err != nil {
		return nil, fmt.Errorf("not a tally ledger (run 'tally init'): %w", err)
	}

	chartPath := filepath.Join(dir, cfg.Storage.Chart)
	f, err := os.Open(chartPath)
	if err != nil {
		return nil, fmt.Errorf("opening chart %s: %w", chartPath, err)
	}
	rows, err := accounts.ReadChart(f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("reading chart %s: %w", chartPath, err)
	}
	tree, err := accounts.LoadTree(rows)
	if err != nil {
		return nil, fmt.Errorf("loading chart %s: %w", chartPath, err)
	}

	ledgerID, err := uuid.Parse(cfg.Ledger.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid ledger id %q in %s: %w", cfg.Ledger.ID, configFile, err)
	}

	store := ledger.NewStoreWithID(ledgerID)
	journalPath := filepath.Join(dir, cfg.Storage.Journal)
	jf, err := os.Open(journalPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// No postings yet.
	case err != nil:
		return nil, fmt.Errorf("opening journal %s: %w", journalPath, err)
	default:
		records, rerr := ledger.ReadRecords(jf)
		jf.Close()
		if rerr != nil {
			return nil, fmt.Errorf("reading journal %s: %w", journalPath, rerr)
		}
		if err := store.Restore(records); err != nil {
			return nil, fmt.Errorf("restoring journal %s: %w", journalPath, err)
		}
	}

	return &books{
		dir:     dir,
		cfg:     cfg,
		tree:    tree,
		store:   store,
		engine:  posting.NewEngine(tree, store),
		reports: report.NewEngine(tree, store),
	}, nil
}

// saveChart rewrites chart.csv from the in-memory tree.
func (b *books) saveChart() error {
	path := filepath.Join(b.dir, b.cfg.Storage.Chart)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating chart %s: %w", path, err)
	}
	defer f.Close()

	if err := accounts.WriteChart(f, b.tree); err != nil {
		return fmt.Errorf("writing chart %s: %w", path, err)
	}
	return nil
}

// appendRecords appends freshly posted records to journal.csv, writing
// the header if the file is new.
func (b *books) appendRecords(records []model.Record) error {
	path := filepath.Join(b.dir, b.cfg.Storage.Journal)

	isNew := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening journal %s: %w", path, err)
	}
	defer f.Close()

	if isNew {
		if _, err := fmt.Fprintln(f, ledger.Header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	if err := ledger.AppendRecords(f, records); err != nil {
		return fmt.Errorf("appending records: %w", err)
	}
	return nil
}

// resolveAccount turns a numeric id or an account name into an id.
func (b *books) resolveAccount(ref string) (int, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		if !b.tree.Exists(n) {
			return 0, fmt.Errorf("account %d not found", n)
		}
		return n, nil
	}
	a, ok := b.tree.FindByName(ref)
	if !ok {
		return 0, fmt.Errorf("account %q not found", ref)
	}
	return a.ID, nil
}

// cashAccountIDs resolves the configured cash account names, skipping
// any that are missing from the chart.
func (b *books) cashAccountIDs() []int {
	var out []int
	for _, name := range b.cfg.Accounts.Cash {
		if a, ok := b.tree.FindByName(name); ok {
			out = append(out, a.ID)
		}
	}
	return out
}

// retainedEarningsID resolves the configured retained earnings account.
func (b *books) retainedEarningsID() (int, error) {
	a, ok := b.tree.FindByName(b.cfg.Accounts.RetainedEarnings)
	if !ok {
		return 0, fmt.Errorf("retained earnings account %q not in chart", b.cfg.Accounts.RetainedEarnings)
	}
	return a.ID, nil
}
