package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/cleared-dev/tally/internal/model"
)

const (
	numFields = 4
	colID     = 0
	colName   = 1
	colType   = 2
	colParent = 3
)

// ReadChart reads chart.csv rows. Only accounts below the type roots are
// stored; the root and type roots are fixed and recreated by NewTree.
func ReadChart(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading chart CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accts []model.Account
	for i, rec := range records[1:] {
		a, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accts = append(accts, a)
	}
	return accts, nil
}

// WriteChart writes chart.csv from a tree, parents before children.
func WriteChart(w io.Writer, t *Tree) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"account_id", "account_name", "account_type", "parent_id"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for a := range t.Walk(RootID) {
		if a.Level < 2 {
			continue
		}
		if err := cw.Write(MarshalAccount(*a)); err != nil {
			return fmt.Errorf("writing account %d: %w", a.ID, err)
		}
	}
	return cw.Error()
}

// LoadTree rebuilds a tree from saved chart rows. Rows must list parents
// before children, which WriteChart guarantees.
func LoadTree(accts []model.Account) (*Tree, error) {
	t := NewTree()
	for _, a := range accts {
		if err := t.insert(a); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(a model.Account) []string {
	row := make([]string, numFields)
	row[colID] = strconv.Itoa(a.ID)
	row[colName] = a.Name
	row[colType] = string(a.Type)
	row[colParent] = strconv.Itoa(a.ParentID)
	return row
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	id, err := strconv.Atoi(record[colID])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing account_id %q: %w", record[colID], err)
	}

	parentID, err := strconv.Atoi(record[colParent])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing parent_id %q: %w", record[colParent], err)
	}

	typ := model.AccountType(record[colType])
	if !typ.Valid() {
		return model.Account{}, fmt.Errorf("unknown account_type %q", record[colType])
	}

	return model.Account{
		ID:       id,
		Name:     record[colName],
		Type:     typ,
		ParentID: parentID,
	}, nil
}
