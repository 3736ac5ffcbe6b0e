package lcp

import (
	"encoding/binary"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/jameslz/rlzap/pkg/alphabet"
)

// Reference is a borrowed, read-only view of a reference sequence.
//
// The index never copies or mutates the symbols. The caller owns the backing
// slice and must neither modify it nor let it go while an Index or Cursor
// bound to this Reference is still queried.
type Reference struct {
	symbols []alphabet.Symbol

	once sync.Once
	sum  uint64
}

// NewReference wraps symbols without copying them.
func NewReference(symbols []alphabet.Symbol) *Reference {
	return &Reference{symbols: symbols}
}

// Len returns the number of symbols in the reference.
func (r *Reference) Len() int {
	return len(r.symbols)
}

// Symbols returns the underlying sequence. Callers must treat it as read-only.
func (r *Reference) Symbols() []alphabet.Symbol {
	return r.symbols
}

// Fingerprint returns an xxhash64 digest of the reference content.
// It is computed once and cached. The digest of any reference is never 0.
func (r *Reference) Fingerprint() uint64 {
	r.once.Do(func() {
		d := xxhash.New()
		buf := make([]byte, 0, 4096)
		for _, s := range r.symbols {
			buf = binary.LittleEndian.AppendUint32(buf, uint32(s))
			if len(buf) == cap(buf) {
				_, _ = d.Write(buf)
				buf = buf[:0]
			}
		}
		_, _ = d.Write(buf)
		r.sum = d.Sum64()
		if r.sum == 0 {
			r.sum = 1
		}
	})
	return r.sum
}
