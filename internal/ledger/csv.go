package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/model"
)

// Header is the CSV header for journal.csv.
const Header = "entry_id,account_id,transaction_date,delta,seq,description"

const (
	numFields  = 6
	dateFormat = "2006-01-02"
	colEntryID = 0
	colAcctID  = 1
	colDate    = 2
	colDelta   = 3
	colSeq     = 4
	colDesc    = 5
)

// ReadRecords reads all ledger records from a journal.csv reader.
func ReadRecords(r io.Reader) ([]model.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading journal CSV: %w", err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	var records []model.Record
	for i, row := range rows[1:] {
		rec, err := UnmarshalRecord(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// WriteRecords writes records to a journal.csv writer, including the
// header.
func WriteRecords(w io.Writer, records []model.Record) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, rec := range records {
		if err := cw.Write(MarshalRecord(rec)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// AppendRecords appends records to an existing journal.csv writer
// without a header.
func AppendRecords(w io.Writer, records []model.Record) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	for i, rec := range records {
		if err := cw.Write(MarshalRecord(rec)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	return cw.Error()
}

// MarshalRecord converts a Record to a CSV row.
func MarshalRecord(r model.Record) []string {
	row := make([]string, numFields)
	row[colEntryID] = r.EntryID
	row[colAcctID] = strconv.Itoa(r.AccountID)
	row[colDate] = r.TransactionDate.Format(dateFormat)
	row[colDelta] = r.Delta.String()
	row[colSeq] = strconv.FormatInt(r.Seq, 10)
	row[colDesc] = r.Description
	return row
}

// UnmarshalRecord converts a CSV row to a Record.
func UnmarshalRecord(row []string) (model.Record, error) {
	if len(row) != numFields {
		return model.Record{}, fmt.Errorf("expected %d fields, got %d", numFields, len(row))
	}

	accountID, err := strconv.Atoi(row[colAcctID])
	if err != nil {
		return model.Record{}, fmt.Errorf("parsing account_id %q: %w", row[colAcctID], err)
	}

	date, err := time.Parse(dateFormat, row[colDate])
	if err != nil {
		return model.Record{}, fmt.Errorf("parsing transaction_date %q: %w", row[colDate], err)
	}

	delta, err := decimal.NewFromString(row[colDelta])
	if err != nil {
		return model.Record{}, fmt.Errorf("parsing delta %q: %w", row[colDelta], err)
	}

	seq, err := strconv.ParseInt(row[colSeq], 10, 64)
	if err != nil {
		return model.Record{}, fmt.Errorf("parsing seq %q: %w", row[colSeq], err)
	}

	return model.Record{
		EntryID:         row[colEntryID],
		AccountID:       accountID,
		TransactionDate: date,
		Delta:           delta,
		Seq:             seq,
		Description:     row[colDesc],
	}, nil
}
