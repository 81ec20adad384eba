// Command chalsnapshot writes the latest and previous challenge exports
// as JSON snapshots.
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
	Use:   "chalsnapshot",
	Short: "Snapshot the two newest CHAL_Export_<Month>_<Year>.tsv files",
	Long: `Orders the CHAL exports in --tsv-dir by the month and year in their names
and writes chal_latest.json, chal_previous.json and manifest.json.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := logging.New(verbose)
		if err != nil {
			return err
		}
		defer logger.Sync()

		res, err := snapshot.WriteCHAL(tsvDir, outDir)
		if err != nil {
			return err
		}
		logger.Info("challenge snapshots written",
			zap.String("latest", res.Latest.File),
			zap.String("previous", res.Previous.File),
			zap.Strings("files", res.Files),
		)
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&tsvDir, "tsv-dir", "", "Directory holding the CHAL exports")
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
