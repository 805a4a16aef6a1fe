package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veridocs/go-kyc-console/guard"
)

var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change the current user's password",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAccess(guard.Requirements{}); err != nil {
			return err
		}

		current, err := prompt("Current password: ")
		if err != nil {
			return err
		}
		next, err := prompt("New password: ")
		if err != nil {
			return err
		}

		if err := console.client.ChangePassword(cmd.Context(), current, next); err != nil {
			return err
		}
		fmt.Println("Password changed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(passwdCmd)
}
