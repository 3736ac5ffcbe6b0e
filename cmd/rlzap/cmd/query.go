package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jameslz/rlzap/internal/errors"
	"github.com/jameslz/rlzap/internal/output"
	"github.com/jameslz/rlzap/internal/seqio"
	"github.com/jameslz/rlzap/pkg/alphabet"
	"github.com/jameslz/rlzap/pkg/lcp"
)

type queryFlags struct {
	reference string
	format    string
}

func (q *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&q.reference, "reference", "r", "", "Reference sequence the index was built against")
	cmd.Flags().StringVar(&q.format, "format", "", "Sequence file format: auto, text, binary (default from config)")
	_ = cmd.MarkFlagRequired("reference")
}

func newAtCmd(a *app) *cobra.Command {
	var q queryFlags

	cmd := &cobra.Command{
		Use:     "at INDEX POS...",
		Short:   "Print the values at the given positions",
		Example: `  rlzap at sample.lcp.rlz 0 17 4096 --reference ref.lcp`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAt(cmd, a, q, args[0], args[1:])
		},
	}
	q.register(cmd)
	return cmd
}

func runAt(cmd *cobra.Command, a *app, q queryFlags, path string, args []string) error {
	positions := make([]int, len(args))
	for i, s := range args {
		pos, err := parsePosition("position", s)
		if err != nil {
			return err
		}
		positions[i] = pos
	}

	f, err := a.inputFormat(q.format)
	if err != nil {
		return err
	}
	idx, err := a.openCached(path, q.reference, f)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for _, pos := range positions {
		var v alphabet.Symbol
		err := a.query("at", func() error {
			var err error
			v, err = idx.At(pos)
			return err
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d\t%d\n", pos, v)
	}
	return nil
}

func newRangeCmd(a *app) *cobra.Command {
	var (
		q       queryFlags
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "range INDEX START END",
		Short: "Print the values in [START, END)",
		Long: `Range decodes the half-open interval [START, END) of the indexed target.
Values are printed one per line, or written to --output in the format its
extension implies.`,
		Example: `  rlzap range sample.lcp.rlz 1000 2000 --reference ref.lcp
  rlzap range sample.lcp.rlz 0 1048576 -r ref.lcp -o head.u32`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRange(cmd, a, q, outPath, args[0], args[1], args[2])
		},
	}
	q.register(cmd)
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Write the values to this file instead of stdout")
	return cmd
}

func runRange(cmd *cobra.Command, a *app, q queryFlags, outPath, path, startArg, endArg string) error {
	start, err := parsePosition("start", startArg)
	if err != nil {
		return err
	}
	end, err := parsePosition("end", endArg)
	if err != nil {
		return err
	}

	f, err := a.inputFormat(q.format)
	if err != nil {
		return err
	}
	idx, err := a.openCached(path, q.reference, f)
	if err != nil {
		return err
	}

	var values []alphabet.Symbol
	err = a.query("range", func() error {
		var err error
		values, err = idx.Range(start, end)
		return err
	})
	if err != nil {
		return err
	}

	if outPath != "" {
		return seqio.WriteFile(outPath, values, f)
	}
	return seqio.Write(cmd.OutOrStdout(), values, seqio.FormatText)
}

func newCursorCmd(a *app) *cobra.Command {
	var (
		q    queryFlags
		walk int
	)

	cmd := &cobra.Command{
		Use:   "cursor INDEX POS",
		Short: "Describe the phrase covering a position",
		Long: `Cursor places a cursor at POS and prints the phrase it lies in, along with
the first position and the end marker of the index. With --walk N the next
N values are decoded by stepping the cursor forward.`,
		Example: `  rlzap cursor sample.lcp.rlz 5000 --reference ref.lcp --walk 8`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCursor(cmd, a, q, walk, args[0], args[1])
		},
	}
	q.register(cmd)
	cmd.Flags().IntVar(&walk, "walk", 0, "Decode this many values forward from POS")
	return cmd
}

func runCursor(cmd *cobra.Command, a *app, q queryFlags, walk int, path, posArg string) error {
	pos, err := parsePosition("position", posArg)
	if err != nil {
		return err
	}
	if walk < 0 {
		return errors.ValidationError("--walk must not be negative", nil)
	}

	f, err := a.inputFormat(q.format)
	if err != nil {
		return err
	}
	idx, err := a.openIndex(path, q.reference, f)
	if err != nil {
		return err
	}

	var first, at, end lcp.Cursor
	err = a.query("cursor", func() error {
		var err error
		first, at, end, err = idx.CursorAt(pos)
		return err
	})
	if err != nil {
		return err
	}

	phrase, err := idx.Phrase(at.PhraseIndex())
	if err != nil {
		return err
	}
	v, err := at.Value()
	if err != nil {
		return err
	}
	span, err := first.Distance(end)
	if err != nil {
		return err
	}

	out := output.New(cmd.OutOrStdout())
	out.Header("Cursor")
	rows := [][2]string{
		{"Position", strconv.Itoa(at.Pos())},
		{"Value", strconv.FormatUint(uint64(v), 10)},
		{"Phrase", fmt.Sprintf("#%d (%s)", at.PhraseIndex(), phrase.Kind)},
		{"Phrase span", fmt.Sprintf("[%d, %d), %d symbols", first.Pos(), end.Pos(), span)},
		{"Displacement", strconv.Itoa(at.Displacement())},
		{"Remaining", strconv.Itoa(at.Remaining())},
	}
	if phrase.Kind == lcp.KindCopy {
		rows = append(rows, [2]string{"Reference", strconv.Itoa(phrase.Offset + at.Displacement())})
	}
	out.KV(rows)

	if walk == 0 {
		return nil
	}
	out.Newline()
	out.Header("Walk")
	w := out.Out()
	c := at
	for i := 0; i < walk && c.Pos() < idx.Size(); i++ {
		if c.AtEnd() {
			// Cursors never leave their phrase; reseat on the next one.
			if _, c, _, err = idx.CursorAt(c.Pos()); err != nil {
				return err
			}
		}
		v, err := c.Value()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d\t%d\n", c.Pos(), v)
		if c, err = c.Next(); err != nil {
			return err
		}
	}
	return nil
}
