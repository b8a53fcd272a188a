package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/accounts"
	"github.com/cleared-dev/tally/internal/model"
)

func newAccountCommand() *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Chart of accounts operations",
	}
	accountCmd.AddCommand(newAccountAddCommand())
	accountCmd.AddCommand(newAccountListCommand())
	return accountCmd
}

func newAccountAddCommand() *cobra.Command {
	var parent string
	var name string
	var typ string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an account under a parent",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBooks(ledgerDir(cmd))
			if err != nil {
				return err
			}

			parentID, err := b.resolveAccount(parent)
			if err != nil {
				return fmt.Errorf("resolving parent: %w", err)
			}

			acctType := model.AccountType(typ)
			if typ == "" {
				// Inherit the parent's subtree type.
				if p, ok := b.tree.Account(parentID); ok {
					acctType = p.Type
				}
			}

			id, err := b.engine.AddAccount(parentID, name, acctType)
			if err != nil {
				return err
			}
			if err := b.saveChart(); err != nil {
				return err
			}

			fmt.Printf("Added account %d: %s\n", id, b.tree.PathOf(id))
			return nil
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "parent account name or id (required)")
	_ = cmd.MarkFlagRequired("parent")
	cmd.Flags().StringVar(&name, "name", "", "account name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&typ, "type", "", "account type (defaults to the parent's)")

	return cmd
}

func newAccountListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the chart of accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBooks(ledgerDir(cmd))
			if err != nil {
				return err
			}

			for a := range b.tree.Walk(accounts.RootID) {
				if a.Level == 0 {
					continue
				}
				marker := ""
				if a.IsGroup() {
					marker = "/"
				}
				fmt.Printf("%6d  %s%s%s\n", a.ID, strings.Repeat("  ", a.Level-1), a.Name, marker)
			}
			return nil
		},
	}
}
