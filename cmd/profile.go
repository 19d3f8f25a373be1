package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show a member's borrowing history and debt",
	Args:  cobra.NoArgs,
	RunE:  runProfile,
}

var debtCmd = &cobra.Command{
	Use:   "debt",
	Short: "Show a member's total outstanding debt",
	Args:  cobra.NoArgs,
	RunE:  runDebt,
}

func init() {
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(debtCmd)
}

func runProfile(cmd *cobra.Command, args []string) error {
	member, err := requireMember()
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	profile, err := a.profiles.Profile(cmd.Context(), member)
	if err != nil {
		return err
	}

	fmt.Println("Personal Information:")
	fmt.Printf("Name: %s\nEmail: %s\n", profile.Name, profile.Email)
	if profile.BirthYear != nil {
		fmt.Printf("Birth Year: %d\n", *profile.BirthYear)
	}
	if profile.Faculty != "" {
		fmt.Printf("Faculty: %s\n", profile.Faculty)
	}

	fmt.Println("\nBorrowing Counts:")
	fmt.Printf("Previous Borrowings: %d\n", profile.PreviousBorrowings)
	fmt.Printf("Current Borrowings: %d\n", profile.CurrentBorrowings)
	fmt.Printf("Overdue Borrowings: %d\n", profile.OverdueBorrowings)

	fmt.Println("\nPenalty Information:")
	fmt.Printf("Number of Unpaid Penalties: %d\n", profile.UnpaidPenalties)
	fmt.Printf("Total Debt Amount: $%.2f\n", profile.TotalDebt)
	return nil
}

func runDebt(cmd *cobra.Command, args []string) error {
	member, err := requireMember()
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	debt, err := a.circulation.OutstandingDebt(cmd.Context(), member)
	if err != nil {
		return err
	}
	fmt.Printf("Total outstanding debt: $%.2f\n", debt)
	return nil
}
