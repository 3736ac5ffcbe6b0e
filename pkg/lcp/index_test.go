package lcp

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jameslz/rlzap/internal/errors"
	"github.com/jameslz/rlzap/pkg/alphabet"
	"github.com/jameslz/rlzap/pkg/matcher"
)

func TestIndex_ScenarioA_SingleCopy(t *testing.T) {
	// Given: target "aaaa" fully copied from reference "aaaa"
	idx := buildFromMatches(t, syms("aaaa"), syms("aaaa"),
		[]matcher.Match{{TargetPos: 0, RefPos: 0, Length: 4}})

	// Then: one copy phrase
	require.Equal(t, 1, idx.PhraseCount())
	p, err := idx.Phrase(0)
	require.NoError(t, err)
	assert.Equal(t, KindCopy, p.Kind)

	// And: at(2) == 'a'
	v, err := idx.At(2)
	require.NoError(t, err)
	assert.Equal(t, alphabet.Symbol('a'), v)

	// And: cursor_at(2) has displacement 2, remaining 2
	_, at, _, err := idx.CursorAt(2)
	require.NoError(t, err)
	assert.Equal(t, 2, at.Displacement())
	assert.Equal(t, 2, at.Remaining())
}

func TestIndex_EmptyTarget(t *testing.T) {
	idx := buildFromMatches(t, nil, syms("abc"), nil)

	assert.Equal(t, 0, idx.Size())
	assert.Equal(t, 0, idx.PhraseCount())

	out, err := idx.Range(0, 0)
	require.NoError(t, err)
	assert.Empty(t, out)

	for _, p := range []int{-1, 0, 1} {
		_, err := idx.At(p)
		assert.ErrorIs(t, err, errors.ErrOutOfRange, "at(%d)", p)
	}
	_, _, _, err = idx.CursorAt(0)
	assert.ErrorIs(t, err, errors.ErrOutOfRange)
}

func TestIndex_AtAndRangeMatchTarget(t *testing.T) {
	// Given: an index built by the greedy matcher over an LCP-like pair
	ref, target := lcpPair(3, 3000, 2000)
	idx := buildGreedy(t, ref, target)
	require.Equal(t, len(target), idx.Size())
	require.Greater(t, idx.Stats().CopyPhrases, 0)

	// Then: every position decodes to the target
	for p := range target {
		v, err := idx.At(p)
		require.NoError(t, err)
		require.Equal(t, target[p], v, "at(%d)", p)
	}

	// And: ranges of many shapes match slices of the target
	for _, r := range [][2]int{{0, 0}, {0, 1}, {0, len(target)}, {17, 18}, {100, 731}, {len(target) - 5, len(target)}, {len(target), len(target)}} {
		got, err := idx.Range(r[0], r[1])
		require.NoError(t, err)
		assert.Equal(t, target[r[0]:r[1]], got, "range(%d,%d)", r[0], r[1])
	}
}

func TestIndex_RangeErrors(t *testing.T) {
	idx := buildFromMatches(t, syms("abcXYfghZZ"), syms("abcdefghij"),
		[]matcher.Match{{TargetPos: 0, RefPos: 0, Length: 3}})

	tests := []struct {
		name       string
		start, end int
		want       error
	}{
		{"negative start", -1, 3, errors.ErrOutOfRange},
		{"start after end", 5, 4, errors.ErrInvalidRange},
		{"end past size", 3, 11, errors.ErrOutOfRange},
		{"both past size", 11, 12, errors.ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := idx.Range(tt.start, tt.end)
			assert.ErrorIs(t, err, tt.want)

			// The index stays usable after a failed query.
			v, err := idx.At(4)
			require.NoError(t, err)
			assert.Equal(t, alphabet.Symbol('Y'), v)
		})
	}
}

func TestIndex_AppendRangeKeepsPrefix(t *testing.T) {
	idx := buildFromMatches(t, syms("abcXY"), syms("abc"),
		[]matcher.Match{{TargetPos: 0, RefPos: 0, Length: 3}})
	dst := syms("--")

	out, err := idx.AppendRange(dst, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, syms("--bcXY"), out)

	out, err = idx.AppendRange(dst, 4, 2)
	assert.ErrorIs(t, err, errors.ErrInvalidRange)
	assert.Equal(t, dst, out)
}

func TestIndex_ConcurrentReaders(t *testing.T) {
	ref, target := lcpPair(11, 2000, 1500)
	idx := buildGreedy(t, ref, target)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for p := w; p < len(target); p += 8 {
				v, err := idx.At(p)
				assert.NoError(t, err)
				assert.Equal(t, target[p], v)
			}
		}(w)
	}
	wg.Wait()
}

func TestIndex_SetSource(t *testing.T) {
	ref := syms("abcdefghij")
	idx := buildFromMatches(t, syms("abcXYfghZZ"), ref,
		[]matcher.Match{{TargetPos: 0, RefPos: 0, Length: 3}, {TargetPos: 5, RefPos: 5, Length: 3}})

	t.Run("nil", func(t *testing.T) {
		assert.ErrorIs(t, idx.SetSource(nil), errors.ErrInvalidInput)
	})
	t.Run("too short", func(t *testing.T) {
		assert.ErrorIs(t, idx.SetSource(NewReference(ref[:7])), errors.ErrReferenceTooShort)
	})
	t.Run("different content", func(t *testing.T) {
		other := syms("abcdefghiX")
		assert.ErrorIs(t, idx.SetSource(NewReference(other)), errors.ErrReferenceMismatch)
	})
	t.Run("same content, different backing", func(t *testing.T) {
		clone := append([]alphabet.Symbol(nil), ref...)
		require.NoError(t, idx.SetSource(NewReference(clone)))
		v, err := idx.At(6)
		require.NoError(t, err)
		assert.Equal(t, alphabet.Symbol('g'), v)
	})
}
