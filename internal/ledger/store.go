package ledger

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/accounts"
	"github.com/cleared-dev/tally/internal/model"
)

// recordKey orders the date index by (transaction date, seq).
type recordKey struct {
	date time.Time
	seq  int64
}

func compareKeys(a, b interface{}) int {
	ka := a.(recordKey)
	kb := b.(recordKey)
	switch {
	case ka.date.Before(kb.date):
		return -1
	case ka.date.After(kb.date):
		return 1
	case ka.seq < kb.seq:
		return -1
	case ka.seq > kb.seq:
		return 1
	default:
		return 0
	}
}

// Store is the append-only, time-indexed audit trail. Records are never
// modified or deleted once appended; corrections flow through new
// reversing records. Writes are serialized; readers only ever see
// records that were fully appended, since existing records never change.
type Store struct {
	mu         sync.RWMutex
	id         uuid.UUID
	records    []model.Record
	byAccount  map[int][]int
	byEntry    map[string][]int
	entryOrder []string
	dateIndex  *redblacktree.Tree // recordKey -> record index
	nextSeq    int64
	balances   *cache.Cache
}

// NewStore creates an empty ledger store with a fresh instance id.
func NewStore() *Store {
	return NewStoreWithID(uuid.New())
}

// NewStoreWithID creates an empty store carrying a persisted instance
// id, for reopening an existing ledger.
func NewStoreWithID(id uuid.UUID) *Store {
	return &Store{
		id:        id,
		byAccount: make(map[int][]int),
		byEntry:   make(map[string][]int),
		dateIndex: redblacktree.NewWith(compareKeys),
		nextSeq:   1,
		balances:  cache.New(cache.NoExpiration, cache.NoExpiration),
	}
}

// ID identifies this ledger instance.
func (s *Store) ID() uuid.UUID {
	return s.id
}

// Append stamps each record with the next sequence number and indexes
// it. Returns the stamped records. There is no update or delete.
func (s *Store) Append(records []model.Record) []model.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Record, 0, len(records))
	for _, r := range records {
		r.Seq = s.nextSeq
		s.nextSeq++
		s.index(r)
		out = append(out, r)
	}
	s.balances.Flush()
	return out
}

// Restore re-indexes previously persisted records, trusting their
// sequence numbers.
func (s *Store) Restore(records []model.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		if r.Seq <= 0 {
			return fmt.Errorf("record for entry %s has no sequence number", r.EntryID)
		}
		s.index(r)
		if r.Seq >= s.nextSeq {
			s.nextSeq = r.Seq + 1
		}
	}
	s.balances.Flush()
	return nil
}

// index must be called with the write lock held.
func (s *Store) index(r model.Record) {
	i := len(s.records)
	s.records = append(s.records, r)
	s.byAccount[r.AccountID] = append(s.byAccount[r.AccountID], i)
	if _, seen := s.byEntry[r.EntryID]; !seen {
		s.entryOrder = append(s.entryOrder, r.EntryID)
	}
	s.byEntry[r.EntryID] = append(s.byEntry[r.EntryID], i)
	s.dateIndex.Put(recordKey{date: r.TransactionDate, seq: r.Seq}, i)
}

// Len returns the number of records in the audit trail.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// All returns every record in append order.
func (s *Store) All() []model.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Record, len(s.records))
	copy(out, s.records)
	return out
}

// RecordsFor returns the account's records with transaction dates in
// [from, to], ordered by (transaction date, seq). A zero from or to
// leaves that bound open.
func (s *Store) RecordsFor(accountID int, from, to time.Time) []model.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Record
	s.scanRange(from, to, func(r model.Record) {
		if r.AccountID == accountID {
			out = append(out, r)
		}
	})
	return out
}

// RecordsBetween returns all records in the date range in
// (transaction date, seq) order.
func (s *Store) RecordsBetween(from, to time.Time) []model.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Record
	s.scanRange(from, to, func(r model.Record) {
		out = append(out, r)
	})
	return out
}

// scanRange walks the date index in order. Must be called with at least
// the read lock held.
func (s *Store) scanRange(from, to time.Time, visit func(model.Record)) {
	if s.dateIndex.Empty() {
		return
	}

	var it redblacktree.Iterator
	if from.IsZero() {
		it = s.dateIndex.Iterator()
		if !it.Next() {
			return
		}
	} else {
		node, ok := s.dateIndex.Ceiling(recordKey{date: from})
		if !ok {
			return
		}
		it = s.dateIndex.IteratorAt(node)
	}

	for {
		key := it.Key().(recordKey)
		if !to.IsZero() && key.date.After(to) {
			return
		}
		visit(s.records[it.Value().(int)])
		if !it.Next() {
			return
		}
	}
}

// RecordsForEntry returns the records produced by one journal entry, in
// append order.
func (s *Store) RecordsForEntry(entryID string) []model.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idxs := s.byEntry[entryID]
	out := make([]model.Record, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, s.records[i])
	}
	return out
}

// HasEntry reports whether any record carries the entry id.
func (s *Store) HasEntry(entryID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byEntry[entryID]
	return ok
}

// HasRecords reports whether the account has postings recorded directly
// against it. The account tree uses this for its group-parent check.
func (s *Store) HasRecords(accountID int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byAccount[accountID]) > 0
}

// EntryIDs returns entry ids in first-posted order.
func (s *Store) EntryIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.entryOrder))
	copy(out, s.entryOrder)
	return out
}

// EntriesBetween returns the ids of entries with at least one record in
// the date range, in (transaction date, seq) order without duplicates.
func (s *Store) EntriesBetween(from, to time.Time) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	s.scanRange(from, to, func(r model.Record) {
		if !seen[r.EntryID] {
			seen[r.EntryID] = true
			out = append(out, r.EntryID)
		}
	})
	return out
}

// SearchDescription returns records whose description contains the
// given substring, case-insensitive, in append order.
func (s *Store) SearchDescription(substr string) []model.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(substr)
	var out []model.Record
	for _, r := range s.records {
		if strings.Contains(strings.ToLower(r.Description), needle) {
			out = append(out, r)
		}
	}
	return out
}

// BalanceOf returns the signed sum of the account's deltas with
// transaction dates on or before asOf. Positive means the balance sits
// on the account's normal side. Results are cached until the next
// append. The cache set happens under the read lock: Append flushes
// under the exclusive lock, so a flush can never land between a
// reader's computation and its Set.
func (s *Store) BalanceOf(accountID int, asOf time.Time) decimal.Decimal {
	key := balanceKey("leaf", accountID, asOf)
	if v, ok := s.balances.Get(key); ok {
		return v.(decimal.Decimal)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	total := s.balanceLocked(accountID, asOf)
	s.balances.Set(key, total, cache.NoExpiration)
	return total
}

// balanceLocked sums an account's deltas up to asOf. Must be called
// with at least the read lock held.
func (s *Store) balanceLocked(accountID int, asOf time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, i := range s.byAccount[accountID] {
		r := s.records[i]
		if asOf.IsZero() || !r.TransactionDate.After(asOf) {
			total = total.Add(r.Delta)
		}
	}
	return total
}

// SubtreeBalanceOf returns the balance of an account including all its
// descendant terminal accounts. For a leaf this equals BalanceOf.
// Nothing is stored redundantly: group balances are recomputed from
// leaf records under one read lock and cached until the next append.
func (s *Store) SubtreeBalanceOf(tree *accounts.Tree, accountID int, asOf time.Time) decimal.Decimal {
	if tree.IsLeaf(accountID) {
		return s.BalanceOf(accountID, asOf)
	}

	key := balanceKey("sub", accountID, asOf)
	if v, ok := s.balances.Get(key); ok {
		return v.(decimal.Decimal)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	for _, leaf := range tree.Leaves(accountID) {
		total = total.Add(s.balanceLocked(leaf, asOf))
	}
	s.balances.Set(key, total, cache.NoExpiration)
	return total
}

// BalancesAsOf returns the signed balance of every account with at
// least one record dated on or before asOf, as one consistent view
// taken under a single read lock. A zero asOf leaves the bound open.
func (s *Store) BalancesAsOf(asOf time.Time) map[int]decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int]decimal.Decimal)
	for _, r := range s.records {
		if !asOf.IsZero() && r.TransactionDate.After(asOf) {
			continue
		}
		out[r.AccountID] = out[r.AccountID].Add(r.Delta)
	}
	return out
}

// PeriodBalances returns the signed delta sums restricted to
// transaction dates within [from, to] for every account with records
// in the range, as one consistent view under a single read lock.
func (s *Store) PeriodBalances(from, to time.Time) map[int]decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int]decimal.Decimal)
	s.scanRange(from, to, func(r model.Record) {
		out[r.AccountID] = out[r.AccountID].Add(r.Delta)
	})
	return out
}

func balanceKey(kind string, accountID int, asOf time.Time) string {
	if asOf.IsZero() {
		return fmt.Sprintf("%s:%d@", kind, accountID)
	}
	return fmt.Sprintf("%s:%d@%s", kind, accountID, asOf.Format("2006-01-02"))
}
