package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/veridocs/go-kyc-console/guard"
)

var (
	clientsPage int
	clientsSize int
)

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Client review table",
}

var clientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List clients under KYC review",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAccess(guard.Requirements{Permissions: []string{"view:clients"}}); err != nil {
			return err
		}

		page, err := console.client.ListClients(cmd.Context(), clientsPage, clientsSize)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tRISK\tKYC STATUS\tDOCS\tUPDATED")
		for _, c := range page.Items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
				c.ID, c.Name, c.RiskLevel, c.KYCStatus, c.DocumentCount, c.UpdatedAt.Format("2006-01-02 15:04"))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Printf("\npage %d of %d clients\n", page.Page, page.Total)
		return nil
	},
}

func init() {
	clientsListCmd.Flags().IntVar(&clientsPage, "page", 1, "page number")
	clientsListCmd.Flags().IntVar(&clientsSize, "size", 20, "page size")
	clientsCmd.AddCommand(clientsListCmd)
	rootCmd.AddCommand(clientsCmd)
}
