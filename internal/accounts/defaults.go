package accounts

import "github.com/cleared-dev/tally/internal/model"

// DefaultTree returns a tree seeded with a small starter chart for a
// single-owner business.
func DefaultTree() *Tree {
	t := NewTree()

	add := func(parent int, name string, typ model.AccountType) int {
		id, err := t.AddAccount(parent, name, typ)
		if err != nil {
			// The starter chart is static; a failure here is a bug.
			panic(err)
		}
		return id
	}

	current := add(t.TypeRoot(model.AccountTypeAsset), "Current Assets", model.AccountTypeAsset)
	add(current, "Cash", model.AccountTypeAsset)
	add(current, "Accounts Receivable", model.AccountTypeAsset)

	liab := t.TypeRoot(model.AccountTypeLiability)
	add(liab, "Accounts Payable", model.AccountTypeLiability)
	add(liab, "Credit Card", model.AccountTypeLiability)

	eq := t.TypeRoot(model.AccountTypeEquity)
	add(eq, "Owner's Equity", model.AccountTypeEquity)
	add(eq, "Retained Earnings", model.AccountTypeEquity)

	rev := t.TypeRoot(model.AccountTypeRevenue)
	add(rev, "Service Revenue", model.AccountTypeRevenue)
	add(rev, "Product Revenue", model.AccountTypeRevenue)

	exp := t.TypeRoot(model.AccountTypeExpense)
	add(exp, "Advertising & Marketing", model.AccountTypeExpense)
	add(exp, "Software & Subscriptions", model.AccountTypeExpense)
	add(exp, "Office Supplies", model.AccountTypeExpense)
	add(exp, "Professional Services", model.AccountTypeExpense)

	add(t.TypeRoot(model.AccountTypeDividend), "Owner Draws", model.AccountTypeDividend)

	return t
}
