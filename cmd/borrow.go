package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zjrosen/circ/internal/circulation/domain"
)

var borrowCmd = &cobra.Command{
	Use:   "borrow <book-id>",
	Short: "Borrow an available book",
	Args:  cobra.ExactArgs(1),
	RunE:  runBorrow,
}

func init() {
	rootCmd.AddCommand(borrowCmd)
}

func runBorrow(cmd *cobra.Command, args []string) error {
	member, err := requireMember()
	if err != nil {
		return err
	}
	bookID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("book id must be a number: %q", args[0])
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	bid, err := a.circulation.Borrow(cmd.Context(), member, bookID)
	if err != nil {
		return err
	}

	fmt.Printf("Borrowed book %d with borrowing ID %d. Return within %d days.\n",
		bookID, bid, domain.LoanWindowDays)
	return nil
}
