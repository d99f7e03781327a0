package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/reviewlens/internal/analysis"
	cfgpkg "github.com/KaramelBytes/reviewlens/internal/config"
	"github.com/KaramelBytes/reviewlens/internal/dataset"
	"github.com/KaramelBytes/reviewlens/internal/observability"
	"github.com/KaramelBytes/reviewlens/internal/session"
)

var (
	// Global flags
	cfgFile     string
	debug       bool
	flagDataset string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "reviewlens",
	Short: "ReviewLens: explore a customer review dataset",
	Long: `ReviewLens loads a CSV of customer reviews, normalizes the review summaries and
renders a preview table, mean sentiment per product and sentiment vs. review length,
either as a one-shot report (explore) or as an interactive web dashboard (serve).`,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.reviewlens/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagDataset, "dataset", "", "dataset CSV path (default is data/customer_reviews.csv next to the binary)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = &cfgpkg.Global{DatasetPath: cfgpkg.DefaultDatasetPath(), PreviewRows: 5, LogLevel: "info", LogFormat: "console"}
	}
	cfg = c
	if flagDataset != "" {
		cfg.DatasetPath = flagDataset
	}
	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	log.Logger = observability.NewLogger(level, cfg.LogFormat, os.Stderr)
}

// currentConfig returns the loaded configuration, loading it on first use.
func currentConfig() *cfgpkg.Global {
	if cfg == nil {
		loadConfig()
	}
	return cfg
}

func viewOptions(c *cfgpkg.Global) analysis.Options {
	opt := analysis.DefaultOptions()
	if c.PreviewRows > 0 {
		opt.PreviewRows = c.PreviewRows
	}
	return opt
}

// datasetLoader reads the configured dataset, optionally filling missing
// sentiment scores.
func datasetLoader(c *cfgpkg.Global) (session.Loader, error) {
	opt, err := c.DatasetOptions()
	if err != nil {
		return nil, err
	}
	path := c.DatasetPath
	rescore := c.RescoreMissing
	return func() (*dataset.Table, error) {
		t, err := dataset.Load(path, opt)
		if err != nil {
			log.Debug().Err(err).Str("path", path).Msg("dataset load failed")
			return nil, err
		}
		if rescore && t.HasColumn(dataset.ColSummary) {
			n, err := t.Rescore()
			if err != nil {
				return nil, err
			}
			log.Debug().Int("filled", n).Msg("rescored missing sentiment")
		}
		log.Debug().Str("path", path).Int("rows", t.Len()).Strs("columns", t.Columns).Msg("dataset loaded")
		return t, nil
	}, nil
}
