// Command patchhistory prepends the latest patch log to its history file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"site-data-builder/internal/logging"
	"site-data-builder/internal/patchlog"
)

var (
	latestPath  string
	historyPath string
	kind        string
	envFile     string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "patchhistory",
	Short: "Append the latest patch log to a history file",
	Long: `Reads --latest, wraps it in an entry stamped with a new id, the time and the
CI run metadata (GITHUB_RUN_ID, GITHUB_SHA, GITHUB_ACTOR, GITHUB_WORKFLOW) and
prepends it to --history. --env-file supplies those variables outside CI.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := logging.New(verbose)
		if err != nil {
			return err
		}
		defer logger.Sync()

		meta, err := patchlog.MetaFromEnv(envFile)
		if err != nil {
			return err
		}
		n, err := patchlog.NewAppender().Append(latestPath, historyPath, kind, meta)
		if err != nil {
			return err
		}
		logger.Info("history updated",
			zap.String("path", historyPath),
			zap.String("kind", kind),
			zap.Int("entries", n),
		)
		return nil
	},
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&latestPath, "latest", "", "Latest patch log JSON")
	f.StringVar(&historyPath, "history", "", "History JSON to update")
	f.StringVar(&kind, "kind", "", "Entry kind, e.g. titles")
	f.StringVar(&envFile, "env-file", "", "Optional .env file with run metadata")
	f.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.MarkFlagRequired("latest")
	rootCmd.MarkFlagRequired("history")
	rootCmd.MarkFlagRequired("kind")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
