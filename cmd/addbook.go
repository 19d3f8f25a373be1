package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var addBookCmd = &cobra.Command{
	Use:   "add-book <title> <author> [year]",
	Short: "Add a book to the catalog",
	Args:  cobra.RangeArgs(2, 3),
	RunE:  runAddBook,
}

func init() {
	rootCmd.AddCommand(addBookCmd)
}

func runAddBook(cmd *cobra.Command, args []string) error {
	var year int
	if len(args) == 3 {
		parsed, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("year must be a number: %q", args[2])
		}
		year = parsed
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	bookID, err := a.catalog.AddBook(args[0], args[1], year)
	if err != nil {
		return err
	}
	fmt.Printf("Added book %d: %s by %s.\n", bookID, args[0], args[1])
	return nil
}
