package cmd

import (
	"log/slog"
	"slices"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jameslz/rlzap/internal/errors"
	"github.com/jameslz/rlzap/internal/output"
	"github.com/jameslz/rlzap/internal/seqio"
)

// DefaultVerifyChunk is the number of positions each verify worker decodes
// per range query.
const DefaultVerifyChunk = 1 << 16

type verifyOptions struct {
	queryFlags
	target  string
	chunk   int
	workers int
}

func newVerifyCmd(a *app) *cobra.Command {
	var opts verifyOptions

	cmd := &cobra.Command{
		Use:   "verify INDEX",
		Short: "Check that an index decodes to its target",
		Long: `Verify decodes the whole index in chunks, concurrently, and compares every
value with the original target. It fails at the first differing position.`,
		Example: `  rlzap verify sample.lcp.rlz --reference ref.lcp --target sample.lcp`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, a, args[0], opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.target, "target", "t", "", "Target sequence the index was built from")
	cmd.Flags().IntVar(&opts.chunk, "chunk", DefaultVerifyChunk, "Positions decoded per range query")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Chunks verified at once (default from config)")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

func runVerify(cmd *cobra.Command, a *app, path string, opts verifyOptions) error {
	if opts.chunk <= 0 {
		return errors.ValidationError("--chunk must be positive", nil)
	}
	workers := opts.workers
	if workers <= 0 {
		workers = a.cfg.Build.Workers
	}

	f, err := a.inputFormat(opts.format)
	if err != nil {
		return err
	}
	idx, err := a.openIndex(path, opts.reference, f)
	if err != nil {
		return err
	}
	target, err := seqio.ReadFile(opts.target, f)
	if err != nil {
		return err
	}
	if idx.Size() != len(target) {
		return mismatch(path, "size", idx.Size(), len(target))
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(workers)
	for start := 0; start < len(target); start += opts.chunk {
		end := min(start+opts.chunk, len(target))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return a.query("range", func() error {
				got, err := idx.Range(start, end)
				if err != nil {
					return err
				}
				want := target[start:end]
				if slices.Equal(got, want) {
					return nil
				}
				for i := range got {
					if got[i] != want[i] {
						return mismatch(path, "value at "+strconv.Itoa(start+i), int(got[i]), int(want[i]))
					}
				}
				return nil
			})
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	a.logger.Info("index_verified",
		slog.String("path", path),
		slog.Int("size", idx.Size()))
	out := output.New(cmd.OutOrStdout())
	out.Successf("%s matches %s (%s symbols)", path, opts.target, output.Count(idx.Size()))
	return nil
}

func mismatch(path, what string, got, want int) error {
	return errors.Newf(errors.ErrCodeReferenceMismatch, "index %s differs from target: %s is %d, want %d", path, what, got, want).
		WithSuggestion("Check that --reference is the sequence the index was built against")
}
