package lcp

import (
	"github.com/jameslz/rlzap/internal/errors"
	"github.com/jameslz/rlzap/pkg/alphabet"
)

// Coordinator forwards parser events to a fixed list of observers.
//
// Every event is delivered verbatim and in arrival order to every observer,
// without buffering or filtering. The first observer error stops delivery
// and is returned to the parser.
type Coordinator struct {
	target    []alphabet.Symbol
	observers []Observer
}

// NewCoordinator creates a coordinator over target feeding observers.
func NewCoordinator(target []alphabet.Symbol, observers ...Observer) *Coordinator {
	return &Coordinator{
		target:    target,
		observers: observers,
	}
}

// LiteralEvent forwards a literal run, handing observers the target symbols.
func (c *Coordinator) LiteralEvent(pos, length int) error {
	if pos < 0 || length < 0 || length > len(c.target)-pos {
		return errors.Newf(errors.ErrCodeConstruction,
			"literal [%d, %d) outside target of length %d", pos, pos+length, len(c.target))
	}
	values := c.target[pos : pos+length : pos+length]
	for _, o := range c.observers {
		if err := o.Literal(pos, values); err != nil {
			return err
		}
	}
	return nil
}

// CopyEvent forwards a copy phrase.
func (c *Coordinator) CopyEvent(pos, refPos, length int) error {
	for _, o := range c.observers {
		if err := o.Copy(pos, refPos, length); err != nil {
			return err
		}
	}
	return nil
}

// EndEvent forwards the end of the stream.
func (c *Coordinator) EndEvent() error {
	for _, o := range c.observers {
		if err := o.End(); err != nil {
			return err
		}
	}
	return nil
}

// Events adapts the coordinator to the parser callbacks.
func (c *Coordinator) Events() Events {
	return Events{
		Literal: c.LiteralEvent,
		Copy:    c.CopyEvent,
		End:     c.EndEvent,
	}
}
