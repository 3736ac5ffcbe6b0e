//go:build ignore

// Package main generates a synthetic reference/target pair of LCP arrays.
// Usage: go run scripts/generate-test-corpus.go -n 200000 -output testdata/corpus
//
// Both arrays come from DNA-like texts: the target text is the reference text
// with point mutations and a few moved blocks, so their LCP arrays share long
// runs that differ by a constant offset, which is the case copy phrases are
// found on.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"

	"github.com/jameslz/rlzap/internal/seqio"
	"github.com/jameslz/rlzap/pkg/alphabet"
)

var (
	length    = flag.Int("n", 200000, "Length of each text")
	mutations = flag.Float64("mutations", 0.001, "Point mutation rate of the target text")
	moves     = flag.Int("moves", 8, "Blocks moved within the target text")
	outputDir = flag.String("output", "testdata/corpus", "Output directory")
	format    = flag.String("format", "text", "Output format: text or binary")
	seed      = flag.Int64("seed", 42, "Random seed for reproducibility")
)

const bases = "ACGT"

func main() {
	flag.Parse()
	rng := rand.New(rand.NewSource(*seed))

	f, err := seqio.ParseFormat(*format)
	if err != nil || f == seqio.FormatAuto {
		fmt.Fprintf(os.Stderr, "invalid format %q\n", *format)
		os.Exit(1)
	}
	ext := ".lcp"
	if f == seqio.FormatBinary {
		ext = ".u32"
	}

	ref := randomText(rng, *length)
	target := mutate(rng, ref, *mutations, *moves)

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}
	for name, text := range map[string][]byte{"reference": ref, "target": target} {
		path := filepath.Join(*outputDir, name+ext)
		if err := seqio.WriteFile(path, lcpArray(text), f); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s (%d values)\n", path, len(text))
	}
}

// randomText returns DNA-like text built from repeated segments, so LCP
// values are not uniformly tiny.
func randomText(rng *rand.Rand, n int) []byte {
	text := make([]byte, 0, n)
	for len(text) < n {
		if len(text) > 1000 && rng.Intn(3) == 0 {
			start := rng.Intn(len(text) - 500)
			text = append(text, text[start:start+50+rng.Intn(450)]...)
			continue
		}
		for i := 0; i < 100; i++ {
			text = append(text, bases[rng.Intn(4)])
		}
	}
	return text[:n]
}

func mutate(rng *rand.Rand, ref []byte, rate float64, moves int) []byte {
	out := bytes.Clone(ref)
	for i := range out {
		if rng.Float64() < rate {
			out[i] = bases[rng.Intn(4)]
		}
	}
	for i := 0; i < moves && len(out) > 2000; i++ {
		n := 100 + rng.Intn(900)
		from := rng.Intn(len(out) - n)
		block := bytes.Clone(out[from : from+n])
		out = append(out[:from], out[from+n:]...)
		to := rng.Intn(len(out))
		out = append(out[:to], append(block, out[to:]...)...)
	}
	return out
}

// lcpArray returns the LCP array of text: lcp[i] is the longest common
// prefix of the suffixes ranked i-1 and i, with lcp[0] = 0.
func lcpArray(text []byte) []alphabet.Symbol {
	n := len(text)
	sa := make([]int, n)
	for i := range sa {
		sa[i] = i
	}
	sort.Slice(sa, func(a, b int) bool {
		return bytes.Compare(text[sa[a]:], text[sa[b]:]) < 0
	})

	rank := make([]int, n)
	for i, s := range sa {
		rank[s] = i
	}
	lcp := make([]alphabet.Symbol, n)
	h := 0
	for i := 0; i < n; i++ {
		if rank[i] == 0 {
			h = 0
			continue
		}
		j := sa[rank[i]-1]
		for i+h < n && j+h < n && text[i+h] == text[j+h] {
			h++
		}
		lcp[rank[i]] = alphabet.Symbol(h)
		if h > 0 {
			h--
		}
	}
	return lcp
}
