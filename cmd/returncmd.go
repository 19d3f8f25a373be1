package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zjrosen/circ/internal/circulation/domain"
)

var returnCmd = &cobra.Command{
	Use:   "return [borrowing-id]",
	Short: "Return a borrowed book",
	Long: `Return a book by borrowing id. Without an id, lists your open
borrowings and their deadlines.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReturn,
}

func init() {
	rootCmd.AddCommand(returnCmd)
}

func runReturn(cmd *cobra.Command, args []string) error {
	member, err := requireMember()
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if len(args) == 0 {
		return listOpenLoans(cmd, a, member)
	}

	bid, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("borrowing id must be a number: %q", args[0])
	}

	outcome, penalty, err := a.circulation.Return(cmd.Context(), member, bid)
	if err != nil {
		return err
	}

	if penalty != nil {
		fmt.Printf("A penalty of $%.2f has been applied for %d overdue days.\n",
			penalty.Amount, outcome.OverdueDays)
	} else {
		fmt.Println("Book returned on time. No penalty applied.")
	}
	fmt.Printf("To review the book: circ review %d <rating> [text] --member %s\n",
		outcome.BookID, member)
	return nil
}

func listOpenLoans(cmd *cobra.Command, a *app, member string) error {
	loans, err := a.circulation.OpenLoans(cmd.Context(), member)
	if err != nil {
		return err
	}
	if len(loans) == 0 {
		fmt.Println("You have no books to return.")
		return nil
	}

	fmt.Println("Current Borrowings:")
	for _, loan := range loans {
		line := fmt.Sprintf("Borrowing ID: %d, Title: %s, Start Date: %s, Return Deadline: %s",
			loan.BorrowingID, loan.Title,
			loan.StartDate.Format(domain.DateLayout),
			loan.Deadline.Format(domain.DateLayout))
		if loan.OverdueDays > 0 {
			line += fmt.Sprintf(" (%d days overdue)", loan.OverdueDays)
		}
		fmt.Println(line)
	}
	return nil
}
