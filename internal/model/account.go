package model

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
	AccountTypeDividend  AccountType = "dividend"
)

// AccountTypes lists all six types in statement order.
var AccountTypes = []AccountType{
	AccountTypeAsset,
	AccountTypeLiability,
	AccountTypeEquity,
	AccountTypeRevenue,
	AccountTypeExpense,
	AccountTypeDividend,
}

// Valid reports whether t is one of the six account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity,
		AccountTypeRevenue, AccountTypeExpense, AccountTypeDividend:
		return true
	}
	return false
}

// NormalSide returns the side on which accounts of this type increase.
// Asset, expense and dividend accounts are debit-normal; liability,
// equity and revenue accounts are credit-normal.
func (t AccountType) NormalSide() Side {
	switch t {
	case AccountTypeAsset, AccountTypeExpense, AccountTypeDividend:
		return Debit
	default:
		return Credit
	}
}

// Account is one node in the chart of accounts. The parent link is set
// once at creation and never changes, so the chart is always a tree.
// An account with children is a group and cannot be posted to; an
// account without children is a terminal (leaf) account and is the only
// kind that may receive postings.
type Account struct {
	ID       int
	Name     string
	Type     AccountType
	Level    int   // 0 = synthetic root, 1 = type root, >=2 below
	ParentID int   // 0 for the root
	Children []int // in insertion order
}

// IsGroup reports whether the account has children.
func (a *Account) IsGroup() bool {
	return len(a.Children) > 0
}
