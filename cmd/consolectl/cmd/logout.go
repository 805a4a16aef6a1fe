package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session and clear stored credentials",
	Run: func(cmd *cobra.Command, args []string) {
		// Logout is idempotent: running it while logged out is fine.
		console.sess.Logout()
		fmt.Println("Logged out")
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
