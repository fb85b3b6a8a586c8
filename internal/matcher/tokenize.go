package matcher

import (
	"regexp"

	"github.com/rotisserie/eris"

	"github.com/sells-group/partner-match/internal/lexicon"
)

// Tokenizer splits free text on a delimiter pattern and drops stop-words.
type Tokenizer struct {
	delim *regexp.Regexp
	stop  lexicon.Set
}

// NewTokenizer compiles the delimiter pattern.
func NewTokenizer(pattern string, stop lexicon.Set) (*Tokenizer, error) {
	if pattern == "" {
		return nil, eris.New("matcher: empty delimiter pattern")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, eris.Wrapf(err, "matcher: compile delimiter %q", pattern)
	}
	return &Tokenizer{delim: re, stop: stop}, nil
}

// Tokens returns the non-empty, non-stop-word tokens of s in order.
// Stop-words are matched exactly, so a capitalised "The" is kept while
// "the" is dropped.
func (t *Tokenizer) Tokens(s string) []string {
	parts := t.delim.Split(s, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" || t.stop.Has(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}
