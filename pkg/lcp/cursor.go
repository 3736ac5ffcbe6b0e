package lcp

import (
	"github.com/jameslz/rlzap/internal/errors"
	"github.com/jameslz/rlzap/pkg/alphabet"
)

// Cursor is a position inside one phrase of an Index.
//
// Movement is offset arithmetic within the phrase and never consults the
// phrase table. A cursor may sit on the phrase's exclusive end marker, which
// can be compared and measured against but not dereferenced.
// The zero Cursor is not bound to any index.
type Cursor struct {
	idx    *Index
	phrase int
	start  int
	length int
	off    int
}

// Pos returns the absolute target position.
func (c Cursor) Pos() int {
	return c.start + c.off
}

// PhraseIndex returns the index of the bound phrase.
func (c Cursor) PhraseIndex() int {
	return c.phrase
}

// PhraseStart returns the first target position of the bound phrase.
func (c Cursor) PhraseStart() int {
	return c.start
}

// PhraseLen returns the length of the bound phrase.
func (c Cursor) PhraseLen() int {
	return c.length
}

// Displacement returns the offset of the cursor within its phrase.
func (c Cursor) Displacement() int {
	return c.off
}

// Remaining returns PhraseLen minus Displacement.
func (c Cursor) Remaining() int {
	return c.length - c.off
}

// AtEnd reports whether the cursor is on the exclusive end marker.
func (c Cursor) AtEnd() bool {
	return c.off == c.length
}

// Move returns the cursor moved by k positions. The result must stay within
// the phrase, end marker included.
func (c Cursor) Move(k int) (Cursor, error) {
	off := c.off + k
	if off < 0 || off > c.length {
		return c, errors.RangeError("move by %d from %d leaves phrase [%d, %d)",
			k, c.Pos(), c.start, c.start+c.length)
	}
	c.off = off
	return c, nil
}

// Next is Move(1).
func (c Cursor) Next() (Cursor, error) {
	return c.Move(1)
}

// Value dereferences the cursor. It equals Index.At(c.Pos()).
func (c Cursor) Value() (alphabet.Symbol, error) {
	if c.idx == nil {
		return 0, errors.RangeError("cursor is not bound to an index")
	}
	if c.off >= c.length {
		return 0, errors.RangeError("cursor at %d is on the end marker of its phrase", c.Pos())
	}
	return c.idx.symbolAt(c.phrase, c.off)
}

// Distance returns to.Pos() - c.Pos(). Both cursors must be bound to the
// same phrase of the same index.
func (c Cursor) Distance(to Cursor) (int, error) {
	if c.idx == nil || c.idx != to.idx || c.phrase != to.phrase {
		return 0, errors.RangeError("cursors are not bound to the same phrase")
	}
	return to.off - c.off, nil
}
