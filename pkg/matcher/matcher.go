// Package matcher defines how reference/target matches are discovered.
//
// A Matcher works on the delta-transformed sequences and returns matches in
// target coordinates, sorted by TargetPos and non-overlapping. The index
// core only consumes the match list; any strategy satisfying the contract
// can be plugged in.
package matcher

import (
	"github.com/jameslz/rlzap/pkg/alphabet"
)

// Match states that target[TargetPos:TargetPos+Length] equals
// reference[RefPos:RefPos+Length].
type Match struct {
	TargetPos int
	RefPos    int
	Length    int
}

// End returns the first target position after the match.
func (m Match) End() int {
	return m.TargetPos + m.Length
}

// Matcher discovers matches between a reference and a target.
type Matcher interface {
	// Match returns an ordered, non-overlapping match list increasing in
	// TargetPos. The list need not cover the whole target.
	Match(reference, target []alphabet.Delta) ([]Match, error)
}

// Func adapts a plain function to the Matcher interface.
type Func func(reference, target []alphabet.Delta) ([]Match, error)

// Match implements Matcher.
func (f Func) Match(reference, target []alphabet.Delta) ([]Match, error) {
	return f(reference, target)
}
