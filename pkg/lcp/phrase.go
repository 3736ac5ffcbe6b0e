package lcp

import "fmt"

// PhraseKind tells how a phrase's symbols are stored.
type PhraseKind uint8

const (
	// KindLiteral phrases keep their symbols in the index's literal store.
	KindLiteral PhraseKind = 0
	// KindCopy phrases reference a run of the bound reference.
	KindCopy PhraseKind = 1
)

// String returns "literal" or "copy".
func (k PhraseKind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindCopy:
		return "copy"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Phrase is one entry of the phrase table.
type Phrase struct {
	Kind PhraseKind

	// Start is the first target position covered by the phrase.
	Start int

	// Length is the number of symbols, always > 0.
	Length int

	// Offset is the literal-store offset for literal phrases and the
	// reference position for copy phrases.
	Offset int
}

// End returns the first target position after the phrase.
func (p Phrase) End() int {
	return p.Start + p.Length
}

// Stats summarizes a phrase table.
type Stats struct {
	Size           int `json:"size"`
	Phrases        int `json:"phrases"`
	LiteralPhrases int `json:"literal_phrases"`
	CopyPhrases    int `json:"copy_phrases"`
	LiteralSymbols int `json:"literal_symbols"`
	CopySymbols    int `json:"copy_symbols"`
	LongestCopy    int `json:"longest_copy"`
}

func (s *Stats) add(kind PhraseKind, length int) {
	s.Size += length
	s.Phrases++
	if kind == KindCopy {
		s.CopyPhrases++
		s.CopySymbols += length
		s.LongestCopy = max(s.LongestCopy, length)
		return
	}
	s.LiteralPhrases++
	s.LiteralSymbols += length
}

// MeanPhraseLength returns Size/Phrases, or 0 for an empty table.
func (s Stats) MeanPhraseLength() float64 {
	if s.Phrases == 0 {
		return 0
	}
	return float64(s.Size) / float64(s.Phrases)
}
