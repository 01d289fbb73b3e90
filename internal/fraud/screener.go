package fraud

import "strings"

// Verdict is the outcome of screening one transcript.
type Verdict struct {
	Flagged bool     `json:"fraud_detected"`
	Matches []string `json:"detected_keywords"`
}

// Screener matches transcripts against a fixed keyword list. It holds no
// mutable state and is safe for concurrent use.
type Screener struct {
	keywords KeywordList
	lowered  []string
}

// NewScreener copies keywords so later changes by the caller have no effect.
func NewScreener(keywords KeywordList) *Screener {
	s := &Screener{
		keywords: make(KeywordList, len(keywords)),
		lowered:  make([]string, len(keywords)),
	}
	copy(s.keywords, keywords)
	for i, k := range keywords {
		s.lowered[i] = strings.ToLower(k)
	}
	return s
}

// Keywords returns a copy of the screener's list.
func (s *Screener) Keywords() KeywordList {
	out := make(KeywordList, len(s.keywords))
	copy(out, s.keywords)
	return out
}

// Screen reports every keyword whose lowercase form occurs in the lowercase
// text. Matches are in list order, and a phrase nested inside a longer one
// matches on its own.
func (s *Screener) Screen(text string) Verdict {
	matches := []string{}
	if strings.TrimSpace(text) == "" {
		return Verdict{Matches: matches}
	}

	lower := strings.ToLower(text)
	for i, k := range s.lowered {
		if k != "" && strings.Contains(lower, k) {
			matches = append(matches, s.keywords[i])
		}
	}

	return Verdict{Flagged: len(matches) > 0, Matches: matches}
}
