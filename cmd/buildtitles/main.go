// Command buildtitles builds the titles feeds, patch log and manifest from
// the game data TSV exports.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"site-data-builder/internal/build"
	"site-data-builder/internal/config"
	"site-data-builder/internal/logging"
)

var (
	configFile string
	flags      config.Flags
	watch      bool
	verbose    bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "buildtitles",
	Short: "Build the CAMP and player titles feeds from TSV exports",
	Long: `Reads the CMPT, PLYT, BOOK, COBJ, GLOB, GMRW, LVLI, CHAL and CNDF exports,
classifies how every title is obtained and writes:

  titles_camp.json, titles_player.json, titles_data.json,
  titles_patchlog.json, titles_manifest.json

Inputs are found under --tsv-root unless given explicitly. Every table flag
may be repeated; later files override earlier ones per FormID.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: run,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&configFile, "config", "", "YAML config file")
	f.StringVar(&flags.TSVRoot, "tsv-root", "", "Directory searched recursively for exports")
	f.StringArrayVar(&flags.Inputs.CMPT, "cmpt", nil, "CMPT (CAMP title) export")
	f.StringArrayVar(&flags.Inputs.PLYT, "plyt", nil, "PLYT (player title) export")
	f.StringArrayVar(&flags.Inputs.BOOK, "book", nil, "BOOK export")
	f.StringArrayVar(&flags.Inputs.COBJ, "cobj", nil, "COBJ (recipe) export")
	f.StringArrayVar(&flags.Inputs.GLOB, "glob", nil, "GLOB (global value) export")
	f.StringArrayVar(&flags.Inputs.GMRW, "gmrw", nil, "GMRW (reward) export")
	f.StringArrayVar(&flags.Inputs.LVLI, "lvli", nil, "LVLI export (definitions or referenced-by)")
	f.StringArrayVar(&flags.Inputs.CHAL, "chal", nil, "CHAL (challenge) export")
	f.StringArrayVar(&flags.Inputs.CNDF, "cndf", nil, "CNDF (condition form) export")
	f.StringVar(&flags.Inputs.Seasons, "seasons", "", "Season number to name table")
	f.StringVar(&flags.OutputDir, "outdir", "", "Output directory (default: dist)")
	f.StringVar(&flags.PreviousDir, "previous-dir", "", "Directory holding the previous feeds (default: git)")
	f.StringVar(&flags.GitRev, "git-rev", "", "Revision of the previous feeds (default: HEAD^)")
	f.StringVar(&flags.GitDist, "git-dist", "", "Repository path of the committed feeds (default: dist)")
	f.StringVar(&flags.SQLite, "sqlite", "", "Also export the titles to this SQLite database")
	f.BoolVar(&flags.Debug, "debug", false, "Attach classification diagnostics to every record")
	f.BoolVar(&watch, "watch", false, "Rebuild whenever an input TSV changes")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	var base config.Config
	if configFile != "" {
		var err error
		if base, err = config.Load(configFile); err != nil {
			return err
		}
	}
	cfg := base
	cfg.Resolve(flags)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rebuild := func(ctx context.Context) error {
		// Resolve from scratch so exports added under the root are picked up.
		c := base
		c.Resolve(flags)
		res, err := build.Run(ctx, c, build.Options{Log: logger})
		if err != nil {
			return err
		}
		for _, f := range res.Files {
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", f)
		}
		return nil
	}

	if err := rebuild(ctx); err != nil {
		if !watch || config.IsMissingInputs(err) {
			return err
		}
		logger.Error("initial build failed", zap.Error(err))
	}
	if !watch {
		return nil
	}

	roots := []string{cfg.TSVRoot}
	if cfg.TSVRoot == "" {
		roots = cfg.Inputs.Paths()
	}
	w := &build.Watcher{Log: logger}
	logger.Info("watching for TSV changes", zap.Strings("roots", roots))
	return w.Watch(ctx, roots, rebuild)
}
