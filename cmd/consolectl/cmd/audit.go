package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/veridocs/go-kyc-console/guard"
)

var (
	auditPage int
	auditSize int
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit trail",
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent audit events",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAccess(guard.Requirements{Permissions: []string{"view:audits"}}); err != nil {
			return err
		}

		page, err := console.client.ListAuditEvents(cmd.Context(), auditPage, auditSize)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "WHEN\tACTOR\tACTION\tENTITY")
		for _, e := range page.Items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				e.CreatedAt.Format("2006-01-02 15:04:05"), e.Actor, e.Action, e.Entity)
		}
		return w.Flush()
	},
}

func init() {
	auditListCmd.Flags().IntVar(&auditPage, "page", 1, "page number")
	auditListCmd.Flags().IntVar(&auditSize, "size", 20, "page size")
	auditCmd.AddCommand(auditListCmd)
	rootCmd.AddCommand(auditCmd)
}
