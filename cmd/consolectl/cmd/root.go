package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var console *app

var rootCmd = &cobra.Command{
	Use:   "consolectl",
	Short: "Terminal companion for the KYC console",
	Long: `consolectl drives the KYC console's session core from the terminal:
log in, inspect your grants, browse clients and audit trails, and watch
notification counts - all through the same session and access-control layer
the console itself uses.`,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		console, err = newApp()
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if console != nil {
			console.close()
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
