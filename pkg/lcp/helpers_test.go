package lcp

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jameslz/rlzap/pkg/alphabet"
	"github.com/jameslz/rlzap/pkg/matcher"
)

func syms(s string) []alphabet.Symbol {
	out := make([]alphabet.Symbol, len(s))
	for i := range s {
		out[i] = alphabet.Symbol(s[i])
	}
	return out
}

// buildFromMatches runs Parse, Coordinator and Builder over a fixed match list.
func buildFromMatches(t *testing.T, target, ref []alphabet.Symbol, matches []matcher.Match) *Index {
	t.Helper()
	b := NewBuilder()
	coord := NewCoordinator(target, b)
	require.NoError(t, Parse(matches, target, ref, coord.Events()))
	idx, err := b.Finalize(NewReference(ref))
	require.NoError(t, err)
	return idx
}

// lcpPair returns an LCP-like reference and a target sharing long runs with it.
func lcpPair(seed int64, refLen, targetLen int) (ref, target []alphabet.Symbol) {
	rng := rand.New(rand.NewSource(seed))
	ref = make([]alphabet.Symbol, refLen)
	for i := range ref {
		ref[i] = alphabet.Symbol(rng.Intn(40))
	}
	target = make([]alphabet.Symbol, 0, targetLen)
	for len(target) < targetLen {
		if rng.Intn(4) == 0 {
			target = append(target, alphabet.Symbol(100+rng.Intn(50)))
			continue
		}
		start := rng.Intn(refLen - 64)
		n := 20 + rng.Intn(40)
		target = append(target, ref[start:start+n]...)
	}
	return ref, target[:targetLen]
}

func buildGreedy(t *testing.T, ref, target []alphabet.Symbol) *Index {
	t.Helper()
	idx, err := Build(NewReference(ref), target, &matcher.Greedy{MinLength: 8})
	require.NoError(t, err)
	return idx
}
