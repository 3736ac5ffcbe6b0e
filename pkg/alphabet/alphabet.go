// Package alphabet defines the integer domain indexed by rlzap and the
// differential transform used to expose redundancy to a matcher.
//
// Symbols are unsigned 32-bit values, wide enough for LCP arrays of
// collections up to 4 GiB. The delta domain is signed and 64 bits wide so
// that every difference of two symbols is representable.
package alphabet

import (
	"math"

	"github.com/jameslz/rlzap/internal/errors"
)

// Symbol is one element of an indexed sequence.
type Symbol uint32

// MaxSymbol is the largest representable Symbol.
const MaxSymbol = Symbol(math.MaxUint32)

// Delta is one element of a sequence in the signed differential domain.
type Delta int64

// Transform is a bijection between raw sequences and the delta domain.
//
// Implementations append to dst and return the extended slice, so callers
// can reuse buffers across calls.
type Transform interface {
	// Forward maps raw symbols to deltas.
	Forward(dst []Delta, src []Symbol) []Delta

	// Inverse maps deltas back to raw symbols. It fails when the input does
	// not decode to a valid symbol sequence.
	Inverse(dst []Symbol, src []Delta) ([]Symbol, error)
}

// Differential is the consecutive-difference transform:
// d[0] = x[0] and d[i] = x[i] - x[i-1].
type Differential struct{}

// Forward implements Transform.
func (Differential) Forward(dst []Delta, src []Symbol) []Delta {
	var prev Delta
	for _, s := range src {
		cur := Delta(s)
		dst = append(dst, cur-prev)
		prev = cur
	}
	return dst
}

// Inverse implements Transform.
func (Differential) Inverse(dst []Symbol, src []Delta) ([]Symbol, error) {
	var acc Delta
	for i, d := range src {
		acc += d
		if acc < 0 || acc > Delta(MaxSymbol) {
			return dst, errors.Newf(errors.ErrCodeInvalidInput,
				"delta prefix sum %d at position %d leaves the symbol domain", acc, i)
		}
		dst = append(dst, Symbol(acc))
	}
	return dst, nil
}
