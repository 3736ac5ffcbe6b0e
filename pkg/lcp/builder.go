package lcp

import (
	"strconv"

	"github.com/jameslz/rlzap/internal/errors"
	"github.com/jameslz/rlzap/pkg/alphabet"
)

// Builder is the Observer that accumulates a phrase table and literal store.
//
// Events must be contiguous: each phrase starts where the previous one
// ended. After End, Finalize turns the state into an Index exactly once.
type Builder struct {
	phrases  []Phrase
	literals []alphabet.Symbol
	next     int

	ended     bool
	finalized bool
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Literal implements Observer. The symbols are copied into the literal store.
func (b *Builder) Literal(pos int, values []alphabet.Symbol) error {
	if err := b.accept(pos, len(values)); err != nil {
		return err
	}
	b.phrases = append(b.phrases, Phrase{
		Kind:   KindLiteral,
		Start:  pos,
		Length: len(values),
		Offset: len(b.literals),
	})
	b.literals = append(b.literals, values...)
	b.next += len(values)
	return nil
}

// Copy implements Observer.
func (b *Builder) Copy(pos, refPos, length int) error {
	if err := b.accept(pos, length); err != nil {
		return err
	}
	if refPos < 0 {
		return errors.Newf(errors.ErrCodeConstruction, "copy at %d has negative reference position %d", pos, refPos)
	}
	b.phrases = append(b.phrases, Phrase{
		Kind:   KindCopy,
		Start:  pos,
		Length: length,
		Offset: refPos,
	})
	b.next += length
	return nil
}

// End implements Observer.
func (b *Builder) End() error {
	if b.ended {
		return errors.ConstructionError("end event received twice", nil)
	}
	b.ended = true
	return nil
}

func (b *Builder) accept(pos, length int) error {
	switch {
	case b.ended:
		return errors.Newf(errors.ErrCodeConstruction, "phrase at %d arrived after end", pos)
	case length <= 0:
		return errors.Newf(errors.ErrCodeConstruction, "phrase at %d is empty", pos)
	case pos != b.next:
		return errors.Newf(errors.ErrCodeConstruction, "phrase at %d does not start at %d", pos, b.next)
	}
	return nil
}

// Finalize consumes the builder and returns an Index bound to ref.
//
// ref may be nil to build an unbound index; bind it later with SetSource.
// Finalize fails with ErrCodeConstruction before End, on any call after the
// first, or when ref is shorter than the copy phrases need.
func (b *Builder) Finalize(ref *Reference) (*Index, error) {
	if b.finalized {
		return nil, errors.ConstructionError("builder already finalized", nil)
	}
	if !b.ended {
		return nil, errors.ConstructionError("finalize called before end event", nil)
	}
	b.finalized = true

	idx := newIndex(b.next, b.phrases, b.literals)
	b.phrases, b.literals = nil, nil

	if ref != nil {
		if err := idx.SetSource(ref); err != nil {
			return nil, errors.ConstructionError("reference cannot back the copy phrases", err)
		}
	}
	return idx, nil
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
