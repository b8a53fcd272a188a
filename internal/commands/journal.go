package commands

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/ledger"
	"github.com/cleared-dev/tally/internal/model"
)

func newJournalCommand() *cobra.Command {
	var account string
	var from, to string

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Print journal records, optionally filtered by account or date",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBooks(ledgerDir(cmd))
			if err != nil {
				return err
			}

			var fromDate, toDate time.Time
			if from != "" {
				if fromDate, err = parseDate(from); err != nil {
					return err
				}
			}
			if to != "" {
				if toDate, err = parseDate(to); err != nil {
					return err
				}
			}

			var records []model.Record
			switch {
			case account != "":
				id, err := b.resolveAccount(account)
				if err != nil {
					return err
				}
				records = b.store.RecordsFor(id, fromDate, toDate)
			case from != "" || to != "":
				records = b.store.RecordsBetween(fromDate, toDate)
			default:
				records = b.store.All()
			}

			return ledger.WriteRecords(os.Stdout, records)
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "limit to one account (name or id)")
	cmd.Flags().StringVar(&from, "from", "", "start date YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "end date YYYY-MM-DD")

	return cmd
}
