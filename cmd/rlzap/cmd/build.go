package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jameslz/rlzap/internal/errors"
	"github.com/jameslz/rlzap/internal/output"
	"github.com/jameslz/rlzap/internal/seqio"
	"github.com/jameslz/rlzap/internal/store"
	"github.com/jameslz/rlzap/pkg/lcp"
	"github.com/jameslz/rlzap/pkg/matcher"
)

// IndexExt is appended to a target's file name to name its index.
const IndexExt = ".rlz"

type buildOptions struct {
	output        string
	outDir        string
	codec         string
	minMatch      int
	maxCandidates int
	workers       int
	format        string
}

type buildResult struct {
	target string
	output string
	stats  lcp.Stats
	bytes  int
	took   time.Duration
}

func newBuildCmd(a *app) *cobra.Command {
	var opts buildOptions

	cmd := &cobra.Command{
		Use:   "build REFERENCE TARGET...",
		Short: "Build an index for each target against a reference",
		Long: `Build parses each target against the reference and writes one index
file per target. Targets are built concurrently, up to build.workers at a time.

By default TARGET.rlz is written next to each target. Use --out-dir to collect
the indexes in one directory, or -o to name the file for a single target.`,
		Example: `  # Index two LCP arrays against a shared reference
  rlzap build ref.lcp sample1.lcp sample2.lcp

  # Raw binary input, snappy payload, custom output
  rlzap build ref.u32 sample.u32 -o sample.idx --codec snappy`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), cmd, a, args[0], args[1:], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Index file path (single target only)")
	cmd.Flags().StringVar(&opts.outDir, "out-dir", "", "Directory for index files")
	cmd.Flags().StringVar(&opts.codec, "codec", "", "Literal payload codec: none, snappy, zstd (default from config)")
	cmd.Flags().IntVar(&opts.minMatch, "min-match", 0, "Minimum copy phrase length (default from config)")
	cmd.Flags().IntVar(&opts.maxCandidates, "max-candidates", 0, "Reference positions tried per seed (default from config)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Targets built at once (default from config)")
	cmd.Flags().StringVar(&opts.format, "format", "", "Sequence file format: auto, text, binary (default from config)")

	return cmd
}

func runBuild(ctx context.Context, cmd *cobra.Command, a *app, refPath string, targets []string, opts buildOptions) error {
	if opts.output != "" && len(targets) > 1 {
		return errors.ValidationError("--output names a single index; use --out-dir for several targets", nil)
	}
	if opts.output != "" && opts.outDir != "" {
		return errors.ValidationError("--output and --out-dir are mutually exclusive", nil)
	}

	codecName := opts.codec
	if codecName == "" {
		codecName = a.cfg.Build.Codec
	}
	codec, err := lcp.ParseCodec(codecName)
	if err != nil {
		return err
	}
	minMatch := opts.minMatch
	if minMatch == 0 {
		minMatch = a.cfg.Build.MinMatch
	}
	maxCandidates := opts.maxCandidates
	if maxCandidates == 0 {
		maxCandidates = a.cfg.Build.MaxCandidates
	}
	workers := opts.workers
	if workers <= 0 {
		workers = a.cfg.Build.Workers
	}
	m, err := matcher.NewGreedy(minMatch, maxCandidates)
	if err != nil {
		return err
	}
	format, err := a.inputFormat(opts.format)
	if err != nil {
		return err
	}

	if opts.outDir != "" {
		if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
			return errors.IOError("create "+opts.outDir, err)
		}
	}

	ref, err := a.loadReference(refPath, format)
	if err != nil {
		return err
	}
	a.logger.Debug("reference_loaded",
		slog.String("path", refPath),
		slog.Int("length", ref.Len()))

	results := make([]buildResult, len(targets))
	progress := newBuildProgress(cmd, len(targets))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, target := range targets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := a.buildOne(ref, target, indexPath(target, opts), m, codec, format)
			if err != nil {
				return err
			}
			results[i] = res
			progress.done(target)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := output.New(cmd.OutOrStdout())
	for _, r := range results {
		out.Successf("%s -> %s", r.target, r.output)
		out.KV([][2]string{
			{"Symbols", output.Count(r.stats.Size)},
			{"Phrases", output.Count(r.stats.Phrases)},
			{"Copied", output.Count(r.stats.CopySymbols)},
			{"Index size", output.Bytes(r.bytes)},
			{"Ratio", output.Ratio(4*r.stats.Size, r.bytes)},
			{"Took", r.took.Round(time.Millisecond).String()},
		})
	}
	return nil
}

func (a *app) buildOne(ref *lcp.Reference, target, outPath string, m matcher.Matcher, codec lcp.Codec, format seqio.Format) (buildResult, error) {
	syms, err := seqio.ReadFile(target, format)
	if err != nil {
		return buildResult{}, err
	}

	stats := &lcp.StatsObserver{}
	start := time.Now()
	idx, err := lcp.Build(ref, syms, m,
		lcp.WithObservers(a.metrics.Observer(), stats),
		lcp.WithLogger(a.logger.With(slog.String("target", target))))
	took := time.Since(start)
	a.metrics.RecordBuild(took, err)
	if err != nil {
		if e, ok := err.(*errors.Error); ok {
			return buildResult{}, e.WithDetail("target", target)
		}
		return buildResult{}, err
	}

	n, err := store.WriteIndex(outPath, idx, codec)
	if err != nil {
		return buildResult{}, err
	}
	a.metrics.IndexBytes.Add(float64(n))
	a.logger.Info("index_written",
		slog.String("path", outPath),
		slog.String("codec", codec.String()),
		slog.Int("bytes", n))

	return buildResult{
		target: target,
		output: outPath,
		stats:  stats.Stats(),
		bytes:  n,
		took:   took,
	}, nil
}

// indexPath names the index file written for target.
func indexPath(target string, opts buildOptions) string {
	switch {
	case opts.output != "":
		return opts.output
	case opts.outDir != "":
		return filepath.Join(opts.outDir, filepath.Base(target)+IndexExt)
	}
	return target + IndexExt
}

// buildProgress reports finished targets on stderr when there is more than
// one. Builds finish concurrently, so writes are serialized.
type buildProgress struct {
	mu      sync.Mutex
	out     *output.Writer
	total   int
	current int
}

func newBuildProgress(cmd *cobra.Command, total int) *buildProgress {
	return &buildProgress{out: output.New(cmd.ErrOrStderr()), total: total}
}

func (p *buildProgress) done(target string) {
	if p.total < 2 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current++
	p.out.Progress(p.current, p.total, filepath.Base(target))
}
