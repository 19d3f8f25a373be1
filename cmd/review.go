package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var reviewCmd = &cobra.Command{
	Use:   "review <book-id> <rating> [text...]",
	Short: "Submit a review for a book",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	member, err := requireMember()
	if err != nil {
		return err
	}
	bookID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("book id must be a number: %q", args[0])
	}
	rating, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("rating must be a number between 1 and 5: %q", args[1])
	}
	text := strings.Join(args[2:], " ")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if _, err := a.reviews.Add(bookID, member, rating, text); err != nil {
		return err
	}
	fmt.Println("Review submitted.")
	return nil
}
