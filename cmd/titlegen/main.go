// Command titlegen writes the prefix and suffix lists used by the title
// generator page.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"site-data-builder/internal/build"
	"site-data-builder/internal/logging"
)

var (
	tsvDir  string
	outDir  string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "titlegen",
	Short: "Write titles_camp_generator.json and titles_player_generator.json",
	Long: `Picks the most recently modified CMPT_Export_*.tsv and PLYT_Export_*.tsv in
--tsv-dir and writes the prefix and suffix lists of each, without cut content.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := logging.New(verbose)
		if err != nil {
			return err
		}
		defer logger.Sync()

		results, err := build.WriteGenerators(tsvDir, outDir, time.Now())
		if err != nil {
			return err
		}
		for _, r := range results {
			logger.Info("generator feed written",
				zap.String("source", r.Source),
				zap.String("path", r.Output),
				zap.Int("prefixes", r.Prefixes),
				zap.Int("suffixes", r.Suffixes),
			)
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&tsvDir, "tsv-dir", "", "Directory holding the CMPT and PLYT exports")
	rootCmd.Flags().StringVar(&outDir, "outdir", "dist", "Output directory")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.MarkFlagRequired("tsv-dir")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
