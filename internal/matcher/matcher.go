// Package matcher compares free-text values at decreasing granularity:
// exact equality, fuzzy token-set similarity, then per-token keyword and
// synonym matching.
package matcher

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/partner-match/internal/apperr"
	"github.com/sells-group/partner-match/internal/config"
	"github.com/sells-group/partner-match/internal/lexicon"
	"github.com/sells-group/partner-match/internal/model"
)

// Matcher scores pairs of values using the configured weights.
type Matcher struct {
	cfg config.MatchingConfig
	tok *Tokenizer
	lex lexicon.Resource
}

// New builds a Matcher. A bad delimiter pattern, an unknown stop-word
// language or a missing lexicon is a configuration error.
func New(cfg config.MatchingConfig, lex lexicon.Resource) (*Matcher, error) {
	if lex == nil {
		return nil, apperr.Configuration("lexicon", eris.New("matcher: lexicon is required"))
	}
	stop, err := lexicon.Stopwords(cfg.StopwordsLanguage)
	if err != nil {
		return nil, apperr.Configuration("matching.stopwords_language", err)
	}
	tok, err := NewTokenizer(cfg.RegexDelimiter, stop)
	if err != nil {
		return nil, apperr.Configuration("matching.regex_delimiter", err)
	}
	return &Matcher{cfg: cfg, tok: tok, lex: lex}, nil
}

// MatchText scores two cell values:
//   - either value null: ZeroWeight
//   - exactly equal: OneWeight
//   - token-set ratio above TextMatchingThreshold: TextMatchingWeight
//   - otherwise the keyword scores of every token pair, each token of a
//     weighted 1/len(tokens(a)), times DelimitedWeight.
func (m *Matcher) MatchText(ctx context.Context, a, b model.Value) (float64, error) {
	if a.IsNull() || b.IsNull() {
		return m.cfg.ZeroWeight, nil
	}
	if a.Equal(b) {
		return m.cfg.OneWeight, nil
	}

	ta, tb := a.Text(), b.Text()
	if float64(TokenSetRatio(ta, tb)) > m.cfg.TextMatchingThreshold {
		return m.cfg.TextMatchingWeight, nil
	}

	tokensA := m.tok.Tokens(ta)
	if len(tokensA) == 0 {
		return m.cfg.ZeroWeight, nil
	}
	tokensB := m.tok.Tokens(tb)

	per := 1 / float64(len(tokensA))
	score := 0.0
	for _, d1 := range tokensA {
		for _, d2 := range tokensB {
			k, err := m.MatchKeywords(ctx, d1, d2)
			if err != nil {
				return 0, err
			}
			score += per * k
		}
	}
	return score * m.cfg.DelimitedWeight, nil
}

// MatchKeywords scores two single tokens: case-insensitive equality, then
// fuzzy similarity, then shared synonyms.
func (m *Matcher) MatchKeywords(ctx context.Context, w1, w2 string) (float64, error) {
	if strings.EqualFold(w1, w2) {
		return m.cfg.DelimitedWeight, nil
	}
	if float64(TokenSetRatio(w1, w2)) > m.cfg.TextMatchingThreshold {
		return m.cfg.DelimitedTextMatchingWeight, nil
	}

	syn1, err := m.lex.SynonymsOf(ctx, w1)
	if err != nil {
		return 0, apperr.Matching(w1, err)
	}
	syn2, err := m.lex.SynonymsOf(ctx, w2)
	if err != nil {
		return 0, apperr.Matching(w2, err)
	}
	if syn1.Intersects(syn2) {
		return m.cfg.SynonymWeight, nil
	}
	return m.cfg.ZeroWeight, nil
}
