package matcher

import (
	"encoding/binary"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/jameslz/rlzap/internal/errors"
	"github.com/jameslz/rlzap/pkg/alphabet"
)

const (
	// DefaultMinLength is the shortest match Greedy reports.
	DefaultMinLength = 16

	// DefaultMaxCandidates bounds the reference positions kept per seed.
	DefaultMaxCandidates = 32
)

// Greedy is a seed-and-extend matcher.
//
// Every reference position is seeded by a fingerprint of the MinLength-1
// deltas that follow it, which is insensitive to the absolute level of the
// values. A candidate is accepted only when the decoded raw symbols agree at
// the seed, so every reported match is also an exact match of the raw
// sequences. At each target position the longest candidate wins; shorter
// than MinLength means the position is left to a literal.
type Greedy struct {
	// MinLength is the minimum match length (>= 2). Zero means DefaultMinLength.
	MinLength int

	// MaxCandidates caps the reference positions remembered per seed.
	// Zero means DefaultMaxCandidates.
	MaxCandidates int
}

// NewGreedy creates a Greedy matcher, validating its parameters.
func NewGreedy(minLength, maxCandidates int) (*Greedy, error) {
	g := &Greedy{MinLength: minLength, MaxCandidates: maxCandidates}
	if err := g.validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Greedy) validate() error {
	if g.MinLength != 0 && g.MinLength < 2 {
		return errors.ValidationError("min match length must be at least 2", nil).
			WithDetail("min_length", strconv.Itoa(g.MinLength))
	}
	if g.MaxCandidates < 0 {
		return errors.ValidationError("max candidates must not be negative", nil)
	}
	return nil
}

func (g *Greedy) minLength() int {
	if g.MinLength == 0 {
		return DefaultMinLength
	}
	return g.MinLength
}

func (g *Greedy) maxCandidates() int {
	if g.MaxCandidates == 0 {
		return DefaultMaxCandidates
	}
	return g.MaxCandidates
}

// Match implements Matcher.
func (g *Greedy) Match(reference, target []alphabet.Delta) ([]Match, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}
	k := g.minLength()
	if len(reference) < k || len(target) < k {
		return nil, nil
	}

	refLevels := levels(reference)
	tgtLevels := levels(target)

	var buf []byte
	limit := g.maxCandidates()
	seeds := make(map[uint64][]int)
	for i := 0; i+k <= len(reference); i++ {
		key := seedKey(&buf, reference[i+1:i+k])
		if c := seeds[key]; len(c) < limit {
			seeds[key] = append(c, i)
		}
	}

	var matches []Match
	for tp := 0; tp+k <= len(target); {
		key := seedKey(&buf, target[tp+1:tp+k])
		bestLen, bestRef := 0, 0
		for _, rp := range seeds[key] {
			if refLevels[rp] != tgtLevels[tp] {
				continue
			}
			n := 1
			for tp+n < len(target) && rp+n < len(reference) && target[tp+n] == reference[rp+n] {
				n++
			}
			if n > bestLen {
				bestLen, bestRef = n, rp
			}
		}
		if bestLen >= k {
			matches = append(matches, Match{TargetPos: tp, RefPos: bestRef, Length: bestLen})
			tp += bestLen
			continue
		}
		tp++
	}
	return matches, nil
}

// levels decodes deltas to raw values without domain checks.
func levels(deltas []alphabet.Delta) []int64 {
	out := make([]int64, len(deltas))
	var acc int64
	for i, d := range deltas {
		acc += int64(d)
		out[i] = acc
	}
	return out
}

func seedKey(buf *[]byte, window []alphabet.Delta) uint64 {
	b := (*buf)[:0]
	for _, d := range window {
		b = binary.LittleEndian.AppendUint64(b, uint64(d))
	}
	*buf = b
	return xxhash.Sum64(b)
}
