package lcp

import (
	"sort"

	"github.com/jameslz/rlzap/internal/errors"
	"github.com/jameslz/rlzap/pkg/alphabet"
)

// Index is a built, queryable phrase encoding of a target sequence.
//
// An Index is immutable once bound. Any number of goroutines may query it
// concurrently; SetSource must complete before the index is shared.
type Index struct {
	size     int
	phrases  []Phrase
	starts   []int
	literals []alphabet.Symbol

	// extent is the smallest reference length that can back every copy phrase.
	extent int
	// refSum is the fingerprint of the reference the index was bound to, 0 if never bound.
	refSum uint64
	ref    *Reference
}

func newIndex(size int, phrases []Phrase, literals []alphabet.Symbol) *Index {
	idx := &Index{
		size:     size,
		phrases:  phrases,
		starts:   make([]int, len(phrases)),
		literals: literals,
	}
	for i, p := range phrases {
		idx.starts[i] = p.Start
		if p.Kind == KindCopy {
			idx.extent = max(idx.extent, p.Offset+p.Length)
		}
	}
	return idx
}

// Size returns the length of the encoded target.
func (x *Index) Size() int {
	return x.size
}

// PhraseCount returns the number of phrases.
func (x *Index) PhraseCount() int {
	return len(x.phrases)
}

// Phrase returns the i-th phrase of the table.
func (x *Index) Phrase(i int) (Phrase, error) {
	if i < 0 || i >= len(x.phrases) {
		return Phrase{}, errors.RangeError("phrase %d outside [0, %d)", i, len(x.phrases))
	}
	return x.phrases[i], nil
}

// Stats summarizes the phrase table.
func (x *Index) Stats() Stats {
	var s Stats
	for _, p := range x.phrases {
		s.add(p.Kind, p.Length)
	}
	return s
}

// ReferenceExtent returns the minimum reference length SetSource accepts.
func (x *Index) ReferenceExtent() int {
	return x.extent
}

// Bound reports whether a reference backs the copy phrases.
func (x *Index) Bound() bool {
	return x.ref != nil
}

// SetSource binds the reference that copy phrases dereference.
//
// The reference must be at least ReferenceExtent symbols long. An index that
// was bound before it was dumped only accepts a reference with the same
// content fingerprint.
func (x *Index) SetSource(ref *Reference) error {
	if ref == nil {
		return errors.ValidationError("reference is nil", nil)
	}
	if ref.Len() < x.extent {
		return errors.Newf(errors.ErrCodeReferenceTooShort,
			"reference has %d symbols, copy phrases need %d", ref.Len(), x.extent)
	}
	sum := ref.Fingerprint()
	if x.refSum != 0 && x.refSum != sum {
		return errors.Newf(errors.ErrCodeReferenceMismatch,
			"reference fingerprint %016x does not match %016x", sum, x.refSum).
			WithSuggestion("Bind the same reference sequence the index was built against")
	}
	x.ref = ref
	x.refSum = sum
	return nil
}

// At returns the symbol at pos.
func (x *Index) At(pos int) (alphabet.Symbol, error) {
	if pos < 0 || pos >= x.size {
		return 0, errors.RangeError("position %d outside [0, %d)", pos, x.size)
	}
	i := x.locate(pos)
	return x.symbolAt(i, pos-x.starts[i])
}

// Range returns the symbols in [start, end).
func (x *Index) Range(start, end int) ([]alphabet.Symbol, error) {
	if err := x.checkRange(start, end); err != nil {
		return nil, err
	}
	return x.AppendRange(make([]alphabet.Symbol, 0, end-start), start, end)
}

// AppendRange appends the symbols in [start, end) to dst.
// The cost is proportional to the output plus the phrases touched.
// On error dst is returned unchanged.
func (x *Index) AppendRange(dst []alphabet.Symbol, start, end int) ([]alphabet.Symbol, error) {
	if err := x.checkRange(start, end); err != nil {
		return dst, err
	}
	if start == end {
		return dst, nil
	}

	n := len(dst)
	pos := start
	for i := x.locate(start); pos < end; i++ {
		p := x.phrases[i]
		lo := pos - p.Start
		hi := min(p.Length, end-p.Start)
		switch p.Kind {
		case KindLiteral:
			dst = append(dst, x.literals[p.Offset+lo:p.Offset+hi]...)
		default:
			if x.ref == nil {
				return dst[:n], errors.UnboundReferenceError(pos)
			}
			dst = append(dst, x.ref.symbols[p.Offset+lo:p.Offset+hi]...)
		}
		pos += hi - lo
	}
	return dst, nil
}

// CursorAt returns three cursors on the phrase containing pos: at the
// phrase's first position, at pos, and at the phrase's exclusive end.
func (x *Index) CursorAt(pos int) (first, at, end Cursor, err error) {
	if pos < 0 || pos >= x.size {
		return Cursor{}, Cursor{}, Cursor{}, errors.RangeError("position %d outside [0, %d)", pos, x.size)
	}
	i := x.locate(pos)
	p := x.phrases[i]
	first = Cursor{idx: x, phrase: i, start: p.Start, length: p.Length}
	at, end = first, first
	at.off = pos - p.Start
	end.off = p.Length
	return first, at, end, nil
}

// locate returns the index of the phrase containing pos, which must be in [0, size).
func (x *Index) locate(pos int) int {
	return sort.Search(len(x.starts), func(i int) bool { return x.starts[i] > pos }) - 1
}

func (x *Index) symbolAt(phrase, off int) (alphabet.Symbol, error) {
	p := x.phrases[phrase]
	if p.Kind == KindLiteral {
		return x.literals[p.Offset+off], nil
	}
	if x.ref == nil {
		return 0, errors.UnboundReferenceError(p.Start + off)
	}
	return x.ref.symbols[p.Offset+off], nil
}

func (x *Index) checkRange(start, end int) error {
	switch {
	case start < 0:
		return errors.RangeError("range start %d is negative", start)
	case start > end:
		return errors.InvalidRangeError(start, end)
	case end > x.size:
		return errors.RangeError("range end %d exceeds size %d", end, x.size)
	}
	return nil
}
