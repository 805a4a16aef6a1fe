package cmd

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/veridocs/go-kyc-console/guard"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session's identity and grants",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAccess(guard.Requirements{}); err != nil {
			return err
		}

		user := console.sess.User()
		fmt.Printf("User:        %s\n", user.Username)
		fmt.Printf("Name:        %s\n", user.Name)
		fmt.Printf("Email:       %s\n", user.Email)
		fmt.Printf("Roles:       %s\n", strings.Join(user.Roles, ", "))
		fmt.Printf("Permissions: %s\n", strings.Join(user.Permissions, ", "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

// requireAccess runs the same guard the console's routes use and translates
// redirect decisions into terminal errors.
func requireAccess(req guard.Requirements) error {
	switch guard.Check(console.sess.Snapshot(), req) {
	case guard.DecisionAllow:
		return nil
	case guard.DecisionRedirectLogin:
		return errors.New("not logged in: run 'consolectl login' first")
	case guard.DecisionRedirectUnauthorized:
		return errors.New("your account does not have access to this view")
	default:
		return errors.New("session still loading")
	}
}
