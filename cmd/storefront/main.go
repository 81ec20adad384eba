// Command storefront converts title storefront textures to WEBP images
// named after their entitlements.
package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"site-data-builder/internal/batch"
	"site-data-builder/internal/config"
	"site-data-builder/internal/feed"
	"site-data-builder/internal/logging"
)

// errFailed makes main exit with status 2: the run finished but some
// images could not be built.
var errFailed = errors.New("some storefront images failed")

var (
	configFile string
	flags      config.Storefront
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Build <entitlement>.webp images from the title image manifest",
	Long: `Reads a {"tasks":[{"entitlementEdids":[...],"ddsPaths":[...]}]} manifest, finds
the first DDS of each task under --textures-root and writes one lossless WEBP
per entitlement. Existing images are kept. Exits 2 when any image failed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&configFile, "config", "", "YAML config file (storefront section)")
	f.StringVar(&flags.Manifest, "manifest", "", "Title image manifest JSON")
	f.StringVar(&flags.TexturesRoot, "textures-root", "", "Root of the extracted textures")
	f.StringVar(&flags.OutputDir, "out", "", "Output directory for WEBP files")
	f.IntVar(&flags.MaxSize, "max-size", 0, "Downscale so neither side exceeds N pixels (0 keeps size)")
	f.IntVar(&flags.Workers, "workers", 0, "Number of concurrent conversions (default: NumCPU)")
	f.StringVar(&flags.Report, "report", "", "Write a JSON report here")
	f.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if errors.Is(err, errFailed) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger, err := logging.New(verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	var cfg config.Config
	if configFile != "" {
		if cfg, err = config.Load(configFile); err != nil {
			return err
		}
	}
	cfg.Resolve(config.Flags{Storefront: flags})
	sf := cfg.Storefront
	if sf.Manifest == "" || sf.TexturesRoot == "" || sf.OutputDir == "" {
		return errors.New("--manifest, --textures-root and --out are required")
	}

	tasks, err := batch.LoadManifest(sf.Manifest)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	results, err := batch.Run(ctx, batch.Config{
		TexturesRoot: sf.TexturesRoot,
		OutputDir:    sf.OutputDir,
		MaxSize:      sf.MaxSize,
		Workers:      sf.Workers,
		Log:          logger,
	}, tasks)
	if err != nil {
		return err
	}

	rep := batch.NewReport(feed.Timestamp(time.Now()), results)
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Summary")
	fmt.Fprintf(out, "created: %d\n", rep.Counts.Created)
	fmt.Fprintf(out, "skipped: %d\n", rep.Counts.Skipped)
	fmt.Fprintf(out, "failed:  %d\n", rep.Counts.Failed)
	logger.Info("storefront done", zap.Duration("elapsed", time.Since(start)), zap.Int("tasks", len(tasks)))

	if sf.Report != "" {
		if err := batch.WriteReport(sf.Report, rep); err != nil {
			return err
		}
	}
	if rep.Counts.Failed > 0 {
		return fmt.Errorf("%w: %d", errFailed, rep.Counts.Failed)
	}
	return nil
}
