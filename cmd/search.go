package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	searchPage     int
	searchPageSize int
)

var searchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "Search the catalog by title or author",
	Long: `Search for books whose title or author contains the keyword.
Title matches rank above author-only matches. A short page means the end
of the results; request the next page with --page.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&searchPage, "page", 0, "result page (0-indexed)")
	searchCmd.Flags().IntVar(&searchPageSize, "page-size", 0, "results per page (default from config)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	results, err := a.search.Search(cmd.Context(), args[0], searchPage, searchPageSize)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		if searchPage == 0 {
			fmt.Println("No books found with that keyword.")
		} else {
			fmt.Println("No more results.")
		}
		return nil
	}

	for _, book := range results {
		rating := "N/A"
		if book.AvgRating != nil {
			rating = fmt.Sprintf("%.1f", *book.AvgRating)
		}
		fmt.Printf("Book ID: %d, Title: %s, Author: %s, Year: %d, Avg Rating: %s, Status: %s\n",
			book.BookID, book.Title, book.Author, book.Year, rating, book.Status)
	}

	pageSize := searchPageSize
	if pageSize <= 0 {
		pageSize = cfg.PageSize
	}
	if len(results) == pageSize {
		fmt.Printf("\nMore results may follow: circ search %q --page %d\n", args[0], searchPage+1)
	}
	return nil
}
