package lcp

import "github.com/jameslz/rlzap/pkg/alphabet"

// Observer is a build strategy fed by one parse pass.
//
// Observers receive the same ordered event stream. Each owns its own state,
// so several can be fed by a single pass without coordination.
type Observer interface {
	// Literal receives the target symbols of a literal run starting at pos.
	// values is only valid for the duration of the call.
	Literal(pos int, values []alphabet.Symbol) error

	// Copy receives a copy of reference[refPos:refPos+length] at pos.
	Copy(pos, refPos, length int) error

	// End marks the end of the stream.
	End() error
}

// StatsObserver collects phrase statistics from the event stream.
type StatsObserver struct {
	stats Stats
	done  bool
}

// Literal implements Observer.
func (s *StatsObserver) Literal(_ int, values []alphabet.Symbol) error {
	s.stats.add(KindLiteral, len(values))
	return nil
}

// Copy implements Observer.
func (s *StatsObserver) Copy(_, _, length int) error {
	s.stats.add(KindCopy, length)
	return nil
}

// End implements Observer.
func (s *StatsObserver) End() error {
	s.done = true
	return nil
}

// Stats returns the statistics gathered so far.
func (s *StatsObserver) Stats() Stats {
	return s.stats
}

// Done reports whether the end event was seen.
func (s *StatsObserver) Done() bool {
	return s.done
}
