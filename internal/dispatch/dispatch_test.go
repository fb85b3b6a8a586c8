package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/sells-group/partner-match/internal/apperr"
	"github.com/sells-group/partner-match/internal/config"
	"github.com/sells-group/partner-match/internal/lexicon"
	"github.com/sells-group/partner-match/internal/matcher"
	"github.com/sells-group/partner-match/internal/model"
	"github.com/sells-group/partner-match/internal/scorer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeScorer scores provider k as scores[consumer][k] and fails consumers
// listed in fail.
type fakeScorer struct {
	scores      map[string][]float64
	fail        map[string]error
	validateErr error
	delay       time.Duration

	inFlight    atomic.Int64
	maxInFlight atomic.Int64
}

func (f *fakeScorer) ValidateRecords(_, _ []model.Record) error {
	return f.validateErr
}

func (f *fakeScorer) ScoreOf(ctx context.Context, consumer model.Record, providers []model.Record) (*model.ScoreMap, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		cur := f.maxInFlight.Load()
		if n <= cur || f.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err, ok := f.fail[consumer.ID]; ok {
		return nil, err
	}

	m := model.NewScoreMap(len(providers))
	for k, p := range providers {
		var s float64
		if row := f.scores[consumer.ID]; k < len(row) {
			s = row[k]
		}
		m.Set(p.ID, s)
	}
	return m, nil
}

func records(ids ...string) []model.Record {
	out := make([]model.Record, len(ids))
	for i, id := range ids {
		out[i] = model.Record{ID: id, Fields: map[string]model.Value{}}
	}
	return out
}

var ranking = config.RankingConfig{MaxRecommendation: 5, ThresholdScore: 0.3}

func TestNew(t *testing.T) {
	d, err := New(&fakeScorer{}, ranking, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultWorkers, d.Workers())

	_, err = New(nil, ranking, 4)
	assert.True(t, apperr.IsConfiguration(err))

	_, err = New(&fakeScorer{}, config.RankingConfig{MaxRecommendation: -1}, 4)
	assert.True(t, apperr.IsConfiguration(err))
}

func TestRecommendAll_KeepsInputOrder(t *testing.T) {
	var ids []string
	scores := map[string][]float64{}
	for i := 0; i < 50; i++ {
		id := fmt.Sprintf("u%02d", i)
		ids = append(ids, id)
		scores[id] = []float64{0.9, 0.4}
	}
	fs := &fakeScorer{scores: scores, delay: time.Millisecond}
	d, err := New(fs, ranking, 8)
	require.NoError(t, err)

	recs, summary, err := d.RecommendAll(context.Background(), records(ids...), records("p1", "p2"))
	require.NoError(t, err)

	require.Len(t, recs, len(ids))
	for i, r := range recs {
		assert.Equal(t, ids[i], r.User)
		assert.Equal(t, []model.Partner{{ID: "p1", Score: 0.9}, {ID: "p2", Score: 0.4}}, r.Partners)
	}
	assert.Equal(t, 50, summary.Consumers)
	assert.Equal(t, 2, summary.Providers)
	assert.Equal(t, 50, summary.Succeeded)
	assert.Empty(t, summary.Failed)
	assert.NotEmpty(t, summary.RunID)
	assert.LessOrEqual(t, fs.maxInFlight.Load(), int64(8))
}

func TestRecommendAll_ThresholdScenario(t *testing.T) {
	fs := &fakeScorer{scores: map[string][]float64{"u1": {0.9, 0.4}}}
	d, err := New(fs, config.RankingConfig{MaxRecommendation: 5, ThresholdScore: 0.5}, 2)
	require.NoError(t, err)

	recs, _, err := d.RecommendAll(context.Background(), records("u1"), records("p1", "p2"))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, []model.Partner{{ID: "p1", Score: 0.9}}, recs[0].Partners)
}

func TestRecommendAll_FailedConsumerIsIsolated(t *testing.T) {
	lookupErr := apperr.Matching("tutor", errors.New("dictionary unavailable"))
	fs := &fakeScorer{
		scores: map[string][]float64{"u1": {0.8}, "u3": {0.6}},
		fail:   map[string]error{"u2": lookupErr},
	}
	d, err := New(fs, ranking, 3)
	require.NoError(t, err)

	recs, summary, err := d.RecommendAll(context.Background(), records("u1", "u2", "u3"), records("p1"))
	require.NoError(t, err)

	require.Len(t, recs, 2)
	assert.Equal(t, "u1", recs[0].User)
	assert.Equal(t, "u3", recs[1].User)
	assert.Equal(t, 2, summary.Succeeded)
	require.Len(t, summary.Failed, 1)
	assert.Equal(t, "u2", summary.Failed[0].ConsumerID)
	assert.True(t, apperr.IsMatching(summary.Failed[0].Err))
}

func TestRecommendAll_FailuresInInputOrder(t *testing.T) {
	fail := map[string]error{}
	var ids []string
	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("u%02d", i)
		ids = append(ids, id)
		if i%3 == 0 {
			fail[id] = apperr.Matching("x", errors.New("boom"))
		}
	}
	d, err := New(&fakeScorer{fail: fail}, ranking, 6)
	require.NoError(t, err)

	_, summary, err := d.RecommendAll(context.Background(), records(ids...), records("p1"))
	require.NoError(t, err)

	var failed []string
	for _, f := range summary.Failed {
		failed = append(failed, f.ConsumerID)
	}
	assert.Equal(t, []string{"u00", "u03", "u06", "u09", "u12", "u15", "u18"}, failed)
	assert.Equal(t, 13, summary.Succeeded)
}

func TestRecommendAll_InvalidRecordsAbortBeforeScoring(t *testing.T) {
	fs := &fakeScorer{validateErr: apperr.Dataf("u1", "duplicate consumer id")}
	d, err := New(fs, ranking, 2)
	require.NoError(t, err)

	recs, _, err := d.RecommendAll(context.Background(), records("u1", "u1"), records("p1"))
	require.Error(t, err)
	assert.True(t, apperr.IsData(err))
	assert.Nil(t, recs)
	assert.Zero(t, fs.maxInFlight.Load())
}

func TestRecommendAll_Cancelled(t *testing.T) {
	fs := &fakeScorer{delay: time.Second}
	d, err := New(fs, ranking, 2)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	recs, _, err := d.RecommendAll(ctx, records("u1", "u2", "u3", "u4"), records("p1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, recs)
}

func TestRecommendAll_NoConsumers(t *testing.T) {
	d, err := New(&fakeScorer{}, ranking, 2)
	require.NoError(t, err)

	recs, summary, err := d.RecommendAll(context.Background(), nil, records("p1"))
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.Zero(t, summary.Succeeded)
}

func TestRecommendAll_EndToEnd(t *testing.T) {
	cfg := config.MatchingConfig{
		MatchingColumns:             []config.ColumnPair{{User: "name", Service: "name"}},
		ZeroWeight:                  0,
		OneWeight:                   1,
		TextMatchingThreshold:       80,
		TextMatchingWeight:          0.8,
		DelimitedWeight:             0.7,
		DelimitedTextMatchingWeight: 0.5,
		SynonymWeight:               0.4,
		RegexDelimiter:              `[\s,;/&()\-]+`,
		StopwordsLanguage:           "english",
	}
	lex, err := lexicon.Open(context.Background(), config.LexiconConfig{Driver: config.LexiconEmbedded, Stemming: true})
	require.NoError(t, err)
	defer lex.Close()

	m, err := matcher.New(cfg, lex)
	require.NoError(t, err)
	s, err := scorer.New(cfg, m)
	require.NoError(t, err)
	d, err := New(s, ranking, 4)
	require.NoError(t, err)

	consumers := []model.Record{{ID: "Alice", Fields: map[string]model.Value{"name": model.String("Alice")}}}
	providers := []model.Record{
		{ID: "Alice", Fields: map[string]model.Value{"name": model.String("Alice")}},
		{ID: "Bob", Fields: map[string]model.Value{"name": model.String("Bob")}},
	}

	recs, summary, err := d.RecommendAll(context.Background(), consumers, providers)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Alice", recs[0].User)
	assert.Equal(t, []model.Partner{{ID: "Alice", Score: 0.667}}, recs[0].Partners)
	assert.Equal(t, 1, summary.Succeeded)
}
