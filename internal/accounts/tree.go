package accounts

import (
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/cleared-dev/tally/internal/model"
)

var (
	// ErrInvalidParent means the requested parent account does not exist
	// or may not take children.
	ErrInvalidParent = errors.New("invalid parent account")
	// ErrNonGroupParent means the parent already has postings recorded
	// directly against it, so giving it children would orphan history.
	ErrNonGroupParent = errors.New("account with posted history cannot become a group")
	// ErrDuplicateAccount means a sibling with the same name exists.
	ErrDuplicateAccount = errors.New("duplicate account name among siblings")
	// ErrTypeMismatch means the new account's type does not match the
	// type of the subtree it is being added to.
	ErrTypeMismatch = errors.New("account type does not match parent subtree")
)

// RootID is the id of the synthetic level-0 root. The six type roots are
// created with it and occupy the next six ids.
const RootID = 1

// PostingChecker reports whether an account has ledger records posted
// directly against it. The posting engine installs one so the tree can
// refuse to turn a posted-to leaf into a group.
type PostingChecker func(accountID int) bool

// typeRootNames maps each account type to its fixed level-1 root name.
var typeRootNames = map[model.AccountType]string{
	model.AccountTypeAsset:     "Assets",
	model.AccountTypeLiability: "Liabilities",
	model.AccountTypeEquity:    "Equity",
	model.AccountTypeRevenue:   "Revenue",
	model.AccountTypeExpense:   "Expenses",
	model.AccountTypeDividend:  "Dividends",
}

// Tree owns the chart of accounts. All nodes live in a single map keyed
// by id; parent and children are stored as ids, never as pointers, and a
// node's parent is fixed at creation. That makes cycles structurally
// impossible without any runtime cycle detection.
type Tree struct {
	nodes       map[int]*model.Account
	typeRoots   map[model.AccountType]int
	nextID      int
	hasPostings PostingChecker
}

// NewTree creates a tree holding the synthetic root and the six fixed
// type roots. Root creation happens exactly once, here.
func NewTree() *Tree {
	t := &Tree{
		nodes:     make(map[int]*model.Account),
		typeRoots: make(map[model.AccountType]int),
		nextID:    RootID,
	}

	root := &model.Account{ID: t.nextID, Name: "root", Level: 0}
	t.nodes[root.ID] = root
	t.nextID++

	for _, typ := range model.AccountTypes {
		n := &model.Account{
			ID:       t.nextID,
			Name:     typeRootNames[typ],
			Type:     typ,
			Level:    1,
			ParentID: RootID,
		}
		t.nodes[n.ID] = n
		t.typeRoots[typ] = n.ID
		root.Children = append(root.Children, n.ID)
		t.nextID++
	}

	return t
}

// SetPostingChecker installs the posted-history check used by AddAccount.
func (t *Tree) SetPostingChecker(fn PostingChecker) {
	t.hasPostings = fn
}

// AddAccount creates a new account under parentID and returns its id.
// The parent link is set here and never again: there is no re-parenting.
func (t *Tree) AddAccount(parentID int, name string, typ model.AccountType) (int, error) {
	parent, ok := t.nodes[parentID]
	if !ok {
		return 0, fmt.Errorf("parent %d: %w", parentID, ErrInvalidParent)
	}
	if parentID == RootID {
		return 0, fmt.Errorf("parent %d: the six type roots are fixed: %w", parentID, ErrInvalidParent)
	}
	if !typ.Valid() {
		return 0, fmt.Errorf("account %q: unknown type %q: %w", name, typ, ErrTypeMismatch)
	}
	if typ != parent.Type {
		return 0, fmt.Errorf("account %q: type %q under %q subtree: %w", name, typ, parent.Type, ErrTypeMismatch)
	}
	for _, sib := range parent.Children {
		if strings.EqualFold(t.nodes[sib].Name, name) {
			return 0, fmt.Errorf("account %q under %q: %w", name, parent.Name, ErrDuplicateAccount)
		}
	}
	if !parent.IsGroup() && t.hasPostings != nil && t.hasPostings(parentID) {
		return 0, fmt.Errorf("parent %q: %w", parent.Name, ErrNonGroupParent)
	}

	n := &model.Account{
		ID:       t.nextID,
		Name:     name,
		Type:     typ,
		Level:    parent.Level + 1,
		ParentID: parentID,
	}
	t.nodes[n.ID] = n
	parent.Children = append(parent.Children, n.ID)
	t.nextID++

	return n.ID, nil
}

// Account returns the node with the given id.
func (t *Tree) Account(id int) (*model.Account, bool) {
	a, ok := t.nodes[id]
	return a, ok
}

// Exists reports whether an account id exists.
func (t *Tree) Exists(id int) bool {
	_, ok := t.nodes[id]
	return ok
}

// IsLeaf reports whether the account exists and has no children.
// Terminal accounts are the only postable kind.
func (t *Tree) IsLeaf(id int) bool {
	a, ok := t.nodes[id]
	return ok && !a.IsGroup()
}

// ChildrenOf returns a copy of the account's child ids in insertion order.
func (t *Tree) ChildrenOf(id int) []int {
	a, ok := t.nodes[id]
	if !ok {
		return nil
	}
	out := make([]int, len(a.Children))
	copy(out, a.Children)
	return out
}

// AncestorsOf returns the root-to-node path of ids, ending with id
// itself. Returns nil for an unknown id.
func (t *Tree) AncestorsOf(id int) []int {
	a, ok := t.nodes[id]
	if !ok {
		return nil
	}
	var rev []int
	for {
		rev = append(rev, a.ID)
		if a.ParentID == 0 {
			break
		}
		a = t.nodes[a.ParentID]
	}
	path := make([]int, len(rev))
	for i, v := range rev {
		path[len(rev)-1-i] = v
	}
	return path
}

// TypeRoot returns the id of the level-1 root for a type.
func (t *Tree) TypeRoot(typ model.AccountType) int {
	return t.typeRoots[typ]
}

// Walk returns a restartable pre-order traversal of the subtree rooted
// at rootID. Siblings appear in insertion order, so statement layouts
// are stable across runs.
func (t *Tree) Walk(rootID int) iter.Seq[*model.Account] {
	return func(yield func(*model.Account) bool) {
		var visit func(id int) bool
		visit = func(id int) bool {
			n, ok := t.nodes[id]
			if !ok {
				return true
			}
			if !yield(n) {
				return false
			}
			for _, c := range n.Children {
				if !visit(c) {
					return false
				}
			}
			return true
		}
		visit(rootID)
	}
}

// Leaves returns the terminal account ids of a subtree in Walk order.
func (t *Tree) Leaves(rootID int) []int {
	var out []int
	for a := range t.Walk(rootID) {
		if !a.IsGroup() {
			out = append(out, a.ID)
		}
	}
	return out
}

// FindByName returns the first account whose name matches, searching the
// whole tree in pre-order. Matching is case-insensitive.
func (t *Tree) FindByName(name string) (*model.Account, bool) {
	for a := range t.Walk(RootID) {
		if strings.EqualFold(a.Name, name) {
			return a, true
		}
	}
	return nil, false
}

// PathOf returns the colon-separated account path, e.g.
// "Assets:Current Assets:Cash". The synthetic root is omitted.
func (t *Tree) PathOf(id int) string {
	path := t.AncestorsOf(id)
	if len(path) < 2 {
		return ""
	}
	names := make([]string, 0, len(path)-1)
	for _, aid := range path[1:] {
		names = append(names, t.nodes[aid].Name)
	}
	return strings.Join(names, ":")
}

// Len returns the number of accounts, including the root and type roots.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// insert restores a node with a fixed id. Used when loading a saved
// chart so ids referenced by the journal stay stable.
func (t *Tree) insert(a model.Account) error {
	parent, ok := t.nodes[a.ParentID]
	if !ok {
		return fmt.Errorf("account %d %q: parent %d: %w", a.ID, a.Name, a.ParentID, ErrInvalidParent)
	}
	if _, exists := t.nodes[a.ID]; exists {
		return fmt.Errorf("account %d %q: id already in use: %w", a.ID, a.Name, ErrDuplicateAccount)
	}
	n := &model.Account{
		ID:       a.ID,
		Name:     a.Name,
		Type:     a.Type,
		Level:    parent.Level + 1,
		ParentID: a.ParentID,
	}
	t.nodes[n.ID] = n
	parent.Children = append(parent.Children, n.ID)
	if n.ID >= t.nextID {
		t.nextID = n.ID + 1
	}
	return nil
}
