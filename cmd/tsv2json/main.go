// Command tsv2json converts every TSV export in a directory to a JSON
// array of row objects.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"site-data-builder/internal/logging"
	"site-data-builder/internal/snapshot"
)

var (
	tsvDir  string
	outDir  string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:           "tsv2json",
	Short:         "Convert <name>.tsv files to <name>.json",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := logging.New(verbose)
		if err != nil {
			return err
		}
		defer logger.Sync()

		converted, err := snapshot.ConvertDir(tsvDir, outDir)
		if err != nil {
			return err
		}
		for _, c := range converted {
			logger.Debug("converted", zap.String("source", c.Source), zap.String("path", c.Output), zap.Int("rows", c.Rows))
		}
		logger.Info("tables converted", zap.Int("files", len(converted)), zap.String("outdir", outDir))
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&tsvDir, "tsv-dir", "", "Directory of TSV exports")
	rootCmd.Flags().StringVar(&outDir, "outdir", "", "Output directory")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.MarkFlagRequired("tsv-dir")
	rootCmd.MarkFlagRequired("outdir")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
