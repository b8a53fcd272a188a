package posting

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cleared-dev/tally/internal/accounts"
	entryid "github.com/cleared-dev/tally/internal/id"
	"github.com/cleared-dev/tally/internal/ledger"
	"github.com/cleared-dev/tally/internal/model"
)

// Engine validates journal entries and applies them atomically to the
// ledger store. A single mutex serializes postings and chart mutations,
// so no entry can validate against a half-built chart or a stale
// balance view. Reads never take this lock.
type Engine struct {
	mu    sync.Mutex
	tree  *accounts.Tree
	store *ledger.Store
	log   logrus.FieldLogger

	// monthSeq tracks the next generated entry sequence per "YYYY-MM".
	monthSeq map[string]int
}

// NewEngine wires an engine to a tree and store. It installs the
// store's posted-history check on the tree and primes the generated-id
// sequences from any restored records.
func NewEngine(tree *accounts.Tree, store *ledger.Store) *Engine {
	e := &Engine{
		tree:     tree,
		store:    store,
		log:      logrus.StandardLogger(),
		monthSeq: make(map[string]int),
	}
	tree.SetPostingChecker(store.HasRecords)
	for _, eid := range store.EntryIDs() {
		e.noteEntryID(eid)
	}
	return e
}

// SetLogger overrides the engine's logger.
func (e *Engine) SetLogger(l logrus.FieldLogger) {
	e.log = l
}

// PostEntry validates the entry and, if every check passes, appends one
// record per line. All-or-nothing: on any validation failure the store
// is untouched. An empty entry ID is filled with a generated
// "YYYY-MM-NNN" id keyed by the entry date.
func (e *Engine) PostEntry(entry *model.JournalEntry) ([]model.Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if entry.ID == "" {
		entry.ID = e.nextEntryID(entry.EntryDate)
	} else if e.store.HasEntry(entry.ID) {
		return nil, fmt.Errorf("entry %s: %w", entry.ID, ErrDuplicateEntryID)
	}

	if err := validateEntry(e.tree, entry); err != nil {
		return nil, err
	}

	records := make([]model.Record, 0, len(entry.Lines))
	for _, line := range entry.Lines {
		acct, _ := e.tree.Account(line.AccountID)
		delta := line.Amount
		if line.Side != acct.Type.NormalSide() {
			delta = delta.Neg()
		}
		desc := line.Description
		if desc == "" {
			desc = entry.Description
		}
		records = append(records, model.Record{
			EntryID:         entry.ID,
			AccountID:       line.AccountID,
			TransactionDate: entry.TransactionDate,
			Delta:           delta,
			Description:     desc,
		})
	}

	stamped := e.store.Append(records)
	e.noteEntryID(entry.ID)

	e.log.WithFields(logrus.Fields{
		"entry": entry.ID,
		"lines": len(stamped),
		"date":  entry.TransactionDate.Format("2006-01-02"),
	}).Debug("posted entry")

	return stamped, nil
}

// ReverseEntry builds a balancing entry for a previously posted entry:
// every line's side flipped, same amounts, same transaction date, a new
// id. It is posted through the normal PostEntry path, so the original
// records stay in the audit trail untouched.
func (e *Engine) ReverseEntry(originalID string) (*model.JournalEntry, error) {
	records := e.store.RecordsForEntry(originalID)
	if len(records) == 0 {
		return nil, fmt.Errorf("entry %s: %w", originalID, ErrEntryNotFound)
	}

	entry := &model.JournalEntry{
		EntryDate:       time.Now(),
		TransactionDate: records[0].TransactionDate,
		Description:     fmt.Sprintf("reversal of %s", originalID),
	}
	for _, r := range records {
		acct, ok := e.tree.Account(r.AccountID)
		if !ok {
			return nil, fmt.Errorf("record of entry %s references account %d: %w",
				originalID, r.AccountID, ErrAccountNotFound)
		}
		entry.Lines = append(entry.Lines, model.TransactionLine{
			AccountID:   r.AccountID,
			Amount:      r.Amount(),
			Side:        r.Side(acct.Type.NormalSide()).Flip(),
			Description: fmt.Sprintf("reversal of %s", originalID),
		})
	}

	if _, err := e.PostEntry(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// AddAccount adds a chart account under the engine's write lock, so a
// posting in flight can never observe an account mid-creation.
func (e *Engine) AddAccount(parentID int, name string, typ model.AccountType) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree.AddAccount(parentID, name, typ)
}

// Tree returns the chart of accounts.
func (e *Engine) Tree() *accounts.Tree {
	return e.tree
}

// Store returns the ledger store.
func (e *Engine) Store() *ledger.Store {
	return e.store
}

// nextEntryID must be called with the engine lock held.
func (e *Engine) nextEntryID(entryDate time.Time) string {
	year, month := entryDate.Year(), int(entryDate.Month())
	key := fmt.Sprintf("%04d-%02d", year, month)
	seq := e.monthSeq[key] + 1
	for e.store.HasEntry(entryid.FormatEntryID(year, month, seq)) {
		seq++
	}
	// monthSeq advances in noteEntryID only after a successful append,
	// so a rejected entry does not burn a sequence number.
	return entryid.FormatEntryID(year, month, seq)
}

// noteEntryID advances the month sequence past ids that follow the
// generated format. Caller-supplied ids in other formats are ignored.
func (e *Engine) noteEntryID(id string) {
	_, _, seq, err := entryid.ParseEntryID(id)
	if err != nil {
		return
	}
	key := entryid.MonthKey(id)
	if seq > e.monthSeq[key] {
		e.monthSeq[key] = seq
	}
}
