package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jameslz/rlzap/internal/output"
	"github.com/jameslz/rlzap/internal/store"
	"github.com/jameslz/rlzap/pkg/lcp"
)

// indexInfo is the JSON form of `rlzap info`.
type indexInfo struct {
	Path             string    `json:"path"`
	FormatVersion    uint16    `json:"format_version"`
	FileBytes        int64     `json:"file_bytes"`
	ReferenceExtent  int       `json:"reference_extent"`
	MeanPhraseLength float64   `json:"mean_phrase_length"`
	Stats            lcp.Stats `json:"stats"`
}

func newInfoCmd(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "info INDEX",
		Short: "Show index statistics",
		Long: `Display the phrase statistics of an index file. No reference is needed:
only the phrase table and literal store are read.

Reference extent is the shortest reference the index can be bound to.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd, a, args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

func runInfo(cmd *cobra.Command, a *app, path string, jsonOutput bool) error {
	idx, err := store.ReadIndex(path, nil)
	if err != nil {
		return err
	}
	var fileBytes int64
	if fi, err := os.Stat(path); err == nil {
		fileBytes = fi.Size()
	}
	stats := idx.Stats()
	info := indexInfo{
		Path:             path,
		FormatVersion:    lcp.FormatVersion,
		FileBytes:        fileBytes,
		ReferenceExtent:  idx.ReferenceExtent(),
		MeanPhraseLength: stats.MeanPhraseLength(),
		Stats:            stats,
	}
	a.logger.Debug("index_info",
		slog.String("path", path),
		slog.Int("phrases", stats.Phrases))

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	out := output.New(cmd.OutOrStdout())
	out.Header("Index")
	out.KV([][2]string{
		{"Path", path},
		{"Format", fmt.Sprintf("v%d", info.FormatVersion)},
		{"File size", output.Bytes(int(fileBytes))},
		{"Symbols", output.Count(stats.Size)},
		{"Ratio", output.Ratio(4*stats.Size, int(fileBytes))},
	})
	out.Newline()
	out.Header("Phrases")
	out.KV([][2]string{
		{"Total", output.Count(stats.Phrases)},
		{"Literal", fmt.Sprintf("%s (%s symbols)", output.Count(stats.LiteralPhrases), output.Count(stats.LiteralSymbols))},
		{"Copy", fmt.Sprintf("%s (%s symbols)", output.Count(stats.CopyPhrases), output.Count(stats.CopySymbols))},
		{"Longest copy", output.Count(stats.LongestCopy)},
		{"Mean length", fmt.Sprintf("%.2f", info.MeanPhraseLength)},
		{"Reference extent", output.Count(info.ReferenceExtent)},
	})
	return nil
}
