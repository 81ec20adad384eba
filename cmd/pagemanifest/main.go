// Command pagemanifest maps every guide page to the data feed it shows.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"site-data-builder/internal/feed"
	"site-data-builder/internal/logging"
	"site-data-builder/internal/pages"
	"site-data-builder/internal/tsv"
)

var (
	guideIndex string
	outPath    string
	baseURL    string
	titlesFeed string
	rulesFile  string
	publicOnly bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "pagemanifest",
	Short:         "Write the page → feed manifest for the site",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := logging.New(verbose)
		if err != nil {
			return err
		}
		defer logger.Sync()

		index, err := tsv.Load(guideIndex)
		if err != nil {
			return err
		}
		opts := pages.Options{BaseURL: baseURL, DefaultFeed: titlesFeed, PublicOnly: publicOnly}
		if rulesFile != "" {
			rc, err := pages.LoadConfig(rulesFile)
			if err != nil {
				return err
			}
			opts.Rules, opts.Pages = rc.Rules, rc.Pages
		}

		m, err := pages.Build(index, opts)
		if err != nil {
			return err
		}
		if err := feed.WriteJSON(outPath, m); err != nil {
			return err
		}
		logger.Info("page manifest written", zap.String("path", outPath), zap.Int("pages", len(m.ByPage)))
		return nil
	},
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&guideIndex, "guide-index", "", "Guide page index TSV")
	f.StringVar(&outPath, "out", "", "Output JSON path")
	f.StringVar(&baseURL, "dist-base-url", "", "Base URL the feeds are served from")
	f.StringVar(&titlesFeed, "titles-feed", pages.DefaultFeed, "Feed file for titles pages")
	f.StringVar(&rulesFile, "rules", "", "YAML routing rules (default: built-in titles rules)")
	f.BoolVar(&publicOnly, "public-only", false, "Skip pages not marked public")
	f.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.MarkFlagRequired("guide-index")
	rootCmd.MarkFlagRequired("out")
	rootCmd.MarkFlagRequired("dist-base-url")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
