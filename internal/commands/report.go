package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/report"
)

func newBalanceCommand() *cobra.Command {
	var asOf string

	cmd := &cobra.Command{
		Use:   "balance <account>",
		Short: "Show an account balance, including descendants for groups",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBooks(ledgerDir(cmd))
			if err != nil {
				return err
			}

			id, err := b.resolveAccount(args[0])
			if err != nil {
				return err
			}
			when, err := parseDate(asOf)
			if err != nil {
				return err
			}

			balance := b.store.SubtreeBalanceOf(b.tree, id, when)
			fmt.Printf("%s  %s\n", b.tree.PathOf(id), balance.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "balance date YYYY-MM-DD (default today)")
	return cmd
}

func newTrialBalanceCommand() *cobra.Command {
	var asOf string

	cmd := &cobra.Command{
		Use:   "trial-balance",
		Short: "Show the trial balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBooks(ledgerDir(cmd))
			if err != nil {
				return err
			}
			when, err := parseDate(asOf)
			if err != nil {
				return err
			}

			tb, err := b.reports.TrialBalance(when)
			if err != nil {
				return err
			}

			fmt.Printf("%-40s %12s %12s\n", "Account", "Debit", "Credit")
			for _, row := range tb.Rows {
				fmt.Printf("%-40s %12s %12s\n", row.Name, row.Debit.StringFixed(2), row.Credit.StringFixed(2))
			}
			fmt.Printf("%-40s %12s %12s\n", "Total", tb.TotalDebits.StringFixed(2), tb.TotalCredits.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "balance date YYYY-MM-DD (default today)")
	return cmd
}

func printLine(l *report.Line, depth int) {
	fmt.Printf("%s%-*s %12s\n", strings.Repeat("  ", depth), 40-2*depth, l.Name, l.Total.StringFixed(2))
	for _, c := range l.Children {
		printLine(c, depth+1)
	}
}

func newBalanceSheetCommand() *cobra.Command {
	var asOf string

	cmd := &cobra.Command{
		Use:   "balance-sheet",
		Short: "Show the balance sheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBooks(ledgerDir(cmd))
			if err != nil {
				return err
			}
			when, err := parseDate(asOf)
			if err != nil {
				return err
			}

			bs := b.reports.BalanceSheet(when)
			printLine(bs.Assets, 0)
			printLine(bs.Liabilities, 0)
			printLine(bs.Equity, 0)
			if !bs.Balanced {
				fmt.Println("note: assets != liabilities + equity (period not closed)")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "balance date YYYY-MM-DD (default today)")
	return cmd
}

func newIncomeStatementCommand() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "income-statement",
		Short: "Show the income statement for a period",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBooks(ledgerDir(cmd))
			if err != nil {
				return err
			}
			fromDate, err := parseDate(from)
			if err != nil {
				return err
			}
			toDate, err := parseDate(to)
			if err != nil {
				return err
			}

			is := b.reports.IncomeStatement(fromDate, toDate)
			printLine(is.Revenue, 0)
			printLine(is.Expenses, 0)
			fmt.Printf("%-40s %12s\n", "Net", is.Net.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "period start YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "period end YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}

func newCashFlowCommand() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "cash-flow",
		Short: "Show the cash flow statement for a period",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBooks(ledgerDir(cmd))
			if err != nil {
				return err
			}
			fromDate, err := parseDate(from)
			if err != nil {
				return err
			}
			toDate, err := parseDate(to)
			if err != nil {
				return err
			}

			cf := b.reports.CashFlow(fromDate, toDate, b.cashAccountIDs())
			fmt.Printf("%-40s %12s\n", "Operating", cf.Operating.StringFixed(2))
			fmt.Printf("%-40s %12s\n", "Investing", cf.Investing.StringFixed(2))
			fmt.Printf("%-40s %12s\n", "Financing", cf.Financing.StringFixed(2))
			fmt.Printf("%-40s %12s\n", "Net change in cash", cf.Net.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "period start YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "period end YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}

func newCloseCommand() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "close",
		Short: "Post closing entries for a period",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBooks(ledgerDir(cmd))
			if err != nil {
				return err
			}
			fromDate, err := parseDate(from)
			if err != nil {
				return err
			}
			toDate, err := parseDate(to)
			if err != nil {
				return err
			}

			reID, err := b.retainedEarningsID()
			if err != nil {
				return err
			}

			entry, err := b.reports.ClosingEntries(b.engine, fromDate, toDate, reID)
			if err != nil {
				return err
			}
			if entry == nil {
				fmt.Println("Nothing to close")
				return nil
			}
			if err := b.appendRecords(b.store.RecordsForEntry(entry.ID)); err != nil {
				return err
			}

			fmt.Printf("Posted %s closing %s..%s\n", entry.ID, fromDate.Format(dateFormat), toDate.Format(dateFormat))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "period start YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "period end YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}
