package lcp

import (
	"slices"

	"github.com/jameslz/rlzap/internal/errors"
	"github.com/jameslz/rlzap/pkg/alphabet"
	"github.com/jameslz/rlzap/pkg/matcher"
)

// Events receives the phrase event stream produced by Parse.
// A nil callback ignores its events.
type Events struct {
	// Literal reports a maximal run of target positions not covered by a match.
	Literal func(pos, length int) error

	// Copy reports one match: target[pos:pos+length] equals
	// reference[refPos:refPos+length].
	Copy func(pos, refPos, length int) error

	// End is called exactly once, after the whole target is covered.
	End func() error
}

// Parse replays matches against the raw target and reference sequences and
// emits an event stream partitioning [0, len(target)) in increasing order.
//
// The whole match list is checked before the first event is emitted, so a
// broken list never reaches the observers. A match that is out of bounds,
// empty, overlapping or out of order, or whose symbols differ between target
// and reference fails with ErrCodeConstruction.
func Parse(matches []matcher.Match, target, reference []alphabet.Symbol, ev Events) error {
	if err := checkMatches(matches, target, reference); err != nil {
		return err
	}

	pos := 0
	for _, m := range matches {
		if m.TargetPos > pos {
			if err := emitLiteral(ev, pos, m.TargetPos-pos); err != nil {
				return err
			}
		}
		if ev.Copy != nil {
			if err := ev.Copy(m.TargetPos, m.RefPos, m.Length); err != nil {
				return errors.ConstructionError("copy event rejected", err).
					WithDetail("pos", itoa(m.TargetPos))
			}
		}
		pos = m.End()
	}
	if pos < len(target) {
		if err := emitLiteral(ev, pos, len(target)-pos); err != nil {
			return err
		}
	}

	if ev.End != nil {
		if err := ev.End(); err != nil {
			return errors.ConstructionError("end event rejected", err)
		}
	}
	return nil
}

func emitLiteral(ev Events, pos, length int) error {
	if ev.Literal == nil {
		return nil
	}
	if err := ev.Literal(pos, length); err != nil {
		return errors.ConstructionError("literal event rejected", err).
			WithDetail("pos", itoa(pos))
	}
	return nil
}

func checkMatches(matches []matcher.Match, target, reference []alphabet.Symbol) error {
	prevEnd := 0
	for i, m := range matches {
		switch {
		case m.TargetPos < 0 || m.RefPos < 0 || m.Length <= 0:
			return matchError(i, m, "has a negative position or non-positive length")
		case m.TargetPos < prevEnd:
			return matchError(i, m, "overlaps or precedes the previous match")
		case m.Length > len(target)-m.TargetPos:
			return matchError(i, m, "runs past the end of the target")
		case m.Length > len(reference)-m.RefPos:
			return matchError(i, m, "runs past the end of the reference")
		}
		if !slices.Equal(target[m.TargetPos:m.End()], reference[m.RefPos:m.RefPos+m.Length]) {
			return matchError(i, m, "does not match the reference")
		}
		prevEnd = m.End()
	}
	return nil
}

func matchError(i int, m matcher.Match, what string) error {
	return errors.Newf(errors.ErrCodeConstruction,
		"match %d {target=%d ref=%d len=%d} %s", i, m.TargetPos, m.RefPos, m.Length, what)
}
