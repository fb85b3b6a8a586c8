package scorer

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/partner-match/internal/apperr"
	"github.com/sells-group/partner-match/internal/config"
	"github.com/sells-group/partner-match/internal/model"
)

// TextMatcher scores a pair of cell values.
type TextMatcher interface {
	MatchText(ctx context.Context, a, b model.Value) (float64, error)
}

// Scorer computes Score Maps for one consumer at a time. It holds no
// mutable state and is safe for concurrent use.
type Scorer struct {
	cfg        config.MatchingConfig
	matcher    TextMatcher
	union      []string
	direct     float64
	additional float64
}

// New validates cfg and precomputes the normalized weights.
func New(cfg config.MatchingConfig, m TextMatcher) (*Scorer, error) {
	if m == nil {
		return nil, apperr.Configuration("matching", eris.New("scorer: text matcher is required"))
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	direct, additional, err := NormalizedWeights(cfg)
	if err != nil {
		return nil, err
	}
	return &Scorer{
		cfg:        cfg,
		matcher:    m,
		union:      ServiceUnion(cfg),
		direct:     direct,
		additional: additional,
	}, nil
}

// Weights returns the direct-pair and additional-pair term weights.
func (s *Scorer) Weights() (direct, additional float64) {
	return s.direct, s.additional
}

// ServiceColumns returns the provider columns every consumer additional
// column is compared against.
func (s *Scorer) ServiceColumns() []string {
	return append([]string(nil), s.union...)
}

// ScoreOf scores consumer against each provider, in provider order. The
// result has one entry per provider. The first matching failure aborts the
// consumer and is returned.
func (s *Scorer) ScoreOf(ctx context.Context, consumer model.Record, providers []model.Record) (*model.ScoreMap, error) {
	scores := model.NewScoreMap(len(providers))

	for _, provider := range providers {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "scorer: context cancelled")
		}

		score, err := s.scorePair(ctx, consumer, provider)
		if err != nil {
			return nil, eris.Wrapf(err, "scorer: consumer %s provider %s", consumer.ID, provider.ID)
		}
		scores.Set(provider.ID, score)
	}

	return scores, nil
}

func (s *Scorer) scorePair(ctx context.Context, consumer, provider model.Record) (float64, error) {
	score := s.cfg.ZeroWeight

	for _, p := range s.cfg.MatchingColumns {
		w, err := s.matcher.MatchText(ctx, consumer.Get(p.User), provider.Get(p.Service))
		if err != nil {
			return 0, err
		}
		score += s.direct * w
	}

	for _, u := range s.cfg.UserAdditionalColumns {
		for _, col := range s.union {
			w, err := s.matcher.MatchText(ctx, consumer.Get(u), provider.Get(col))
			if err != nil {
				return 0, err
			}
			score += s.additional * w
		}
	}

	return score, nil
}
