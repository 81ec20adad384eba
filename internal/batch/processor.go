package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"site-data-builder/internal/postprocess"
	"site-data-builder/internal/texture"
)

// Config holds all shared settings for a batch run.
type Config struct {
	TexturesRoot string
	OutputDir    string
	// MaxSize bounds the longer side of every image; 0 keeps the source size.
	MaxSize int
	Workers int
	Log     *zap.Logger
	// ProgressEvery is the interval of progress log lines; 0 means 2s.
	ProgressEvery time.Duration
}

// Status is the outcome of one entitlement.
type Status string

const (
	StatusCreated Status = "created"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Result holds the outcome of processing one entitlement.
type Result struct {
	EDID    string
	Texture string // resolved source file, "" when none was found
	Output  string
	Status  Status
	Error   string
}

// Plan resolves every entitlement of tasks against idx without touching
// the output files' contents. Entitlements already decided (existing
// output, no texture, EDID already scheduled) get their final status; the
// rest are left with an empty Status for Run to convert. A failed EDID may
// still be built by a later task.
func Plan(idx *texture.Index, outDir string, tasks []Task) []Result {
	var results []Result
	seen := make(map[string]bool)
	for _, task := range tasks {
		if len(task.EntitlementEDIDs) == 0 {
			continue
		}
		tex, found := idx.FirstExisting(task.DDSPaths)

		for _, edid := range task.EntitlementEDIDs {
			name := strings.ToLower(strings.TrimSpace(edid))
			if name == "" {
				continue
			}
			r := Result{EDID: edid, Output: filepath.Join(outDir, name+".webp")}
			switch {
			case seen[name]:
				r.Status = StatusSkipped
			case fileExists(r.Output):
				r.Status = StatusSkipped
				seen[name] = true
			case len(task.DDSPaths) == 0:
				r.Status, r.Error = StatusFailed, "no ddsPaths in task"
			case !found:
				r.Status, r.Error = StatusFailed, fmt.Sprintf("no matching DDS found on disk (checked %d paths)", len(task.DDSPaths))
			default:
				r.Texture = tex
				seen[name] = true
			}
			results = append(results, r)
		}
	}
	return results
}

// Run converts every planned entitlement using a bounded worker pool.
// Per-entitlement failures are reported in the results; the returned error
// is non-nil only when the run itself could not proceed or ctx ended.
func Run(ctx context.Context, cfg Config, tasks []Task) ([]Result, error) {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	idx, err := texture.BuildIndex(cfg.TexturesRoot)
	if err != nil {
		return nil, fmt.Errorf("batch: index textures %s: %w", cfg.TexturesRoot, err)
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("batch: mkdir %s: %w", cfg.OutputDir, err)
	}
	log.Info("textures indexed", zap.String("root", cfg.TexturesRoot), zap.Int("files", idx.Len()))

	results := Plan(idx, cfg.OutputDir, tasks)
	var pending []int
	for i, r := range results {
		if r.Status == "" {
			pending = append(pending, i)
		} else if r.Status == StatusFailed {
			log.Warn("storefront image failed", zap.String("edid", r.EDID), zap.String("reason", r.Error))
		}
	}

	cache := texture.NewCache()
	var processed atomic.Int64
	stop := startProgress(log, cfg.ProgressEvery, &processed, len(pending))
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, i := range pending {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = convert(cache, cfg.MaxSize, results[i])
			if results[i].Status == StatusFailed {
				log.Warn("storefront image failed", zap.String("edid", results[i].EDID), zap.String("reason", results[i].Error))
			} else {
				log.Debug("storefront image created", zap.String("path", results[i].Output))
			}
			processed.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("batch: %w", err)
	}
	log.Info("storefront textures cached", zap.Int("textures", cache.Len()))
	return results, nil
}

// startProgress logs a progress line every interval until the returned
// stop function is called. stop waits for the reporter to exit.
func startProgress(log *zap.Logger, every time.Duration, processed *atomic.Int64, total int) func() {
	if every <= 0 {
		every = 2 * time.Second
	}
	start := time.Now()
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if p := processed.Load(); p > 0 {
					rate := float64(p) / time.Since(start).Seconds()
					log.Info("converting", zap.Int64("done", p), zap.Int("total", total), zap.Float64("per_sec", rate))
				}
			}
		}
	}()
	return func() {
		close(done)
		<-exited
	}
}

// convert decodes the task texture, fits it and writes a lossless WEBP.
// The file appears under its final name only once fully written.
func convert(cache *texture.Cache, maxSize int, r Result) Result {
	img, err := cache.Load(r.Texture)
	if err != nil {
		r.Status, r.Error = StatusFailed, err.Error()
		return r
	}
	img = postprocess.Fit(img, maxSize)

	f, err := os.CreateTemp(filepath.Dir(r.Output), ".storefront-*.webp")
	if err != nil {
		r.Status, r.Error = StatusFailed, err.Error()
		return r
	}
	tmp := f.Name()

	if err := nativewebp.Encode(f, img, nil); err != nil {
		f.Close()
		os.Remove(tmp)
		r.Status, r.Error = StatusFailed, fmt.Sprintf("WebP encode: %v", err)
		return r
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		r.Status, r.Error = StatusFailed, err.Error()
		return r
	}
	if err := os.Rename(tmp, r.Output); err != nil {
		os.Remove(tmp)
		r.Status, r.Error = StatusFailed, err.Error()
		return r
	}
	r.Status = StatusCreated
	return r
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
