package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	memberdomain "github.com/zjrosen/circ/internal/members/domain"
)

var (
	registerBirthYear int
	registerFaculty   string
)

var registerCmd = &cobra.Command{
	Use:   "register <email> <name>",
	Short: "Register a new member",
	Args:  cobra.ExactArgs(2),
	RunE:  runRegister,
}

func init() {
	registerCmd.Flags().IntVar(&registerBirthYear, "birth-year", 0, "member birth year (optional)")
	registerCmd.Flags().StringVar(&registerFaculty, "faculty", "", "member faculty (optional)")
	rootCmd.AddCommand(registerCmd)
}

func runRegister(cmd *cobra.Command, args []string) error {
	email := memberdomain.NormalizeEmail(args[0])
	name := strings.TrimSpace(args[1])
	if err := validateEmail(email); err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("a name is required")
	}

	member := memberdomain.Member{
		Email:   email,
		Name:    name,
		Faculty: strings.ToLower(strings.TrimSpace(registerFaculty)),
	}
	if registerBirthYear != 0 {
		year := registerBirthYear
		member.BirthYear = &year
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := a.members.Add(member); err != nil {
		return err
	}
	fmt.Printf("Registered member %s.\n", email)
	return nil
}

// validateEmail checks the minimal shape local@domain with a dot in the
// domain part.
func validateEmail(email string) error {
	local, domain, found := strings.Cut(email, "@")
	if !found || local == "" || domain == "" || !strings.Contains(domain, ".") {
		return fmt.Errorf("invalid email format: %q", email)
	}
	return nil
}
