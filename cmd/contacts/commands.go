package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/contacts/internal/contactstore"
	"github.com/aanand-mishra/contacts/internal/types"
)

// Rows are shown and accepted 1-based; the store counts from 0.

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all contacts sorted by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(store *contactstore.Store) error {
				return printTable(cmd.OutOrStdout(), store.ListSorted())
			})
		},
	}
}

func newSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "List contacts whose name contains query, ignoring case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(store *contactstore.Store) error {
				return printTable(cmd.OutOrStdout(), store.Search(args[0]))
			})
		},
	}
}

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> <phone> <email>",
		Short: "Add a contact",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(store *contactstore.Store) error {
				c, err := store.Add(args[0], args[1], args[2])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", c.Name)
				return nil
			})
		},
	}
}

func newEditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <row> <name> <phone> <email>",
		Short: "Replace the fields of the contact at row (as printed by list)",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := parseRow(args[0])
			if err != nil {
				return err
			}
			return a.withStore(func(store *contactstore.Store) error {
				c, err := store.UpdateAt(row, args[1], args[2], args[3])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", c.Name)
				return nil
			})
		},
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "rm <row>",
		Aliases: []string{"delete"},
		Short:   "Delete the contact at row (as printed by list)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := parseRow(args[0])
			if err != nil {
				return err
			}
			return a.withStore(func(store *contactstore.Store) error {
				list := store.ListSorted()
				if row < 0 || row >= len(list) {
					return fmt.Errorf("%w: no contact at row %s", contactstore.ErrIndexOutOfRange, args[0])
				}
				if !yes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(),
					fmt.Sprintf("Delete %s? [y/N] ", list[row].Name)) {
					fmt.Fprintln(cmd.OutOrStdout(), "cancelled")
					return nil
				}
				// Delete by ID so the row resolved above is the one removed.
				if err := store.Remove(list[row].ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", list[row].Name)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without asking for confirmation")
	return cmd
}

// withStore opens the store, runs fn and always saves on the way out.
func (a *app) withStore(fn func(*contactstore.Store) error) error {
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer a.closeStore(store)
	return fn(store)
}

func parseRow(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid row %q: must be a positive integer", s)
	}
	return n - 1, nil
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	line, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func printTable(w io.Writer, contacts []types.Contact) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tPHONE\tEMAIL")
	for i, c := range contacts {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, c.Name, c.Phone, c.Email)
	}
	return tw.Flush()
}
