package cmd

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/reviewlens/internal/analysis"
	"github.com/KaramelBytes/reviewlens/internal/charts"
	"github.com/KaramelBytes/reviewlens/internal/session"
	"github.com/KaramelBytes/reviewlens/internal/utils"
)

var (
	exParse   bool
	exProduct string
	exFormat  string
	exOutput  string
	exRescore bool
)

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Load the dataset and print the dashboard views",
	Example: `  reviewlens explore
  reviewlens explore --parse --product "Wireless Earbuds"
  reviewlens explore --dataset reviews.csv --format html --output charts.html`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := *currentConfig()
		if cmd.Flags().Changed("rescore-missing") {
			c.RescoreMissing = exRescore
		}
		format := strings.ToLower(strings.TrimSpace(exFormat))
		switch format {
		case "markdown", "md", "json", "html":
		default:
			return fmt.Errorf("unsupported --format: %s (use markdown|json|html)", exFormat)
		}
		load, err := datasetLoader(&c)
		if err != nil {
			return err
		}

		st, err := session.Ingest(session.State{}, load)
		if err != nil {
			return err
		}
		st = st.WithOutcome("ingest", nil)
		if exParse {
			if st, err = session.Parse(st); err != nil {
				return err
			}
			st = st.WithOutcome("parse", nil)
		}

		d := analysis.Build(st.Table, exProduct, viewOptions(&c))
		if d.Selected != exProduct {
			return fmt.Errorf("unknown product %q (options: %s)", exProduct, strings.Join(d.Options, ", "))
		}
		d.Stage = st.Stage.String()
		d.Message = st.Message

		var out []byte
		switch format {
		case "json":
			if out, err = utils.PrettyJSON(d); err != nil {
				return err
			}
			out = append(out, '\n')
		case "html":
			var buf bytes.Buffer
			if err := charts.Render(&buf, d); err != nil {
				return err
			}
			out = buf.Bytes()
		default:
			out = []byte(d.Markdown())
		}

		if exOutput != "" {
			if err := utils.SafeWriteFile(exOutput, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s to %s\n", format, exOutput)
			return nil
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(exploreCmd)
	exploreCmd.Flags().BoolVar(&exParse, "parse", false, "derive CLEANED_SUMMARY before rendering")
	exploreCmd.Flags().StringVar(&exProduct, "product", analysis.AllProducts, "only show rows for this product")
	exploreCmd.Flags().StringVarP(&exFormat, "format", "f", "markdown", "output format: markdown|json|html")
	exploreCmd.Flags().StringVarP(&exOutput, "output", "o", "", "optional path to write the output")
	exploreCmd.Flags().BoolVar(&exRescore, "rescore-missing", false, "fill missing SENTIMENT_SCORE values with VADER scores")
}
