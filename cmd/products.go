package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/reviewlens/internal/analysis"
	"github.com/KaramelBytes/reviewlens/internal/session"
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List the product filter options",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		load, err := datasetLoader(currentConfig())
		if err != nil {
			return err
		}
		st, err := session.Ingest(session.State{}, load)
		if err != nil {
			return err
		}
		for _, p := range analysis.ProductOptions(st.Table) {
			fmt.Fprintf(cmd.OutOrStdout(), "- %s\n", p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(productsCmd)
}
