package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var payCmd = &cobra.Command{
	Use:   "pay [penalty-id amount]",
	Short: "Pay down an overdue penalty",
	Long: `Pay an amount towards one of your penalties. Without arguments,
lists your unpaid penalties. Payments may be partial but cannot exceed
the remaining balance.`,
	Args: cobra.RangeArgs(0, 2),
	RunE: runPay,
}

func init() {
	rootCmd.AddCommand(payCmd)
}

func runPay(cmd *cobra.Command, args []string) error {
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
		return listUnpaidPenalties(cmd, a, member)
	}
	if len(args) != 2 {
		return fmt.Errorf("pay needs a penalty id and an amount")
	}

	pid, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("penalty id must be a number: %q", args[0])
	}
	amount, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("amount must be a number: %q", args[1])
	}

	result, err := a.circulation.Pay(cmd.Context(), member, pid, amount)
	if err != nil {
		return err
	}

	fmt.Printf("Paid $%.2f towards penalty %d (receipt %s).\n", result.Paid, result.PenaltyID, result.Receipt)
	fmt.Printf("Remaining on this penalty: $%.2f. Total outstanding debt: $%.2f.\n",
		result.Remaining, result.TotalDebt)
	return nil
}

func listUnpaidPenalties(cmd *cobra.Command, a *app, member string) error {
	penalties, err := a.circulation.UnpaidPenalties(cmd.Context(), member)
	if err != nil {
		return err
	}
	if len(penalties) == 0 {
		fmt.Println("You have no unpaid penalties.")
		return nil
	}

	fmt.Println("Your Unpaid Penalties:")
	for _, p := range penalties {
		fmt.Printf("Penalty ID: %d, Borrowing ID: %d, Unpaid Amount: $%.2f\n",
			p.PID, p.BID, p.Remaining())
	}
	return nil
}
