package commands

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/model"
)

func newPostCommand() *cobra.Command {
	var debit string
	var credit string
	var amount string
	var txnDate string
	var desc string

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post a balanced two-line journal entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBooks(ledgerDir(cmd))
			if err != nil {
				return err
			}

			debitID, err := b.resolveAccount(debit)
			if err != nil {
				return fmt.Errorf("resolving debit account: %w", err)
			}
			creditID, err := b.resolveAccount(credit)
			if err != nil {
				return fmt.Errorf("resolving credit account: %w", err)
			}

			amt, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}

			when, err := parseDate(txnDate)
			if err != nil {
				return err
			}

			entry := &model.JournalEntry{
				EntryDate:       time.Now(),
				TransactionDate: when,
				Description:     desc,
				Lines: []model.TransactionLine{
					{AccountID: debitID, Amount: amt, Side: model.Debit, Description: desc},
					{AccountID: creditID, Amount: amt, Side: model.Credit, Description: desc},
				},
			}

			records, err := b.engine.PostEntry(entry)
			if err != nil {
				return err
			}
			if err := b.appendRecords(records); err != nil {
				return err
			}

			fmt.Printf("Posted %s: %s -> %s %s\n", entry.ID, b.tree.PathOf(creditID), b.tree.PathOf(debitID), amt.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&debit, "debit", "", "debit account name or id (required)")
	_ = cmd.MarkFlagRequired("debit")
	cmd.Flags().StringVar(&credit, "credit", "", "credit account name or id (required)")
	_ = cmd.MarkFlagRequired("credit")
	cmd.Flags().StringVar(&amount, "amount", "", "amount (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&txnDate, "date", "", "transaction date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&desc, "desc", "", "entry description")

	return cmd
}

func newReverseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reverse <entry-id>",
		Short: "Post a balancing reversal of an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBooks(ledgerDir(cmd))
			if err != nil {
				return err
			}

			entry, err := b.engine.ReverseEntry(args[0])
			if err != nil {
				return err
			}
			if err := b.appendRecords(b.store.RecordsForEntry(entry.ID)); err != nil {
				return err
			}

			fmt.Printf("Posted %s reversing %s\n", entry.ID, args[0])
			return nil
		},
	}
}
