// Package dispatch fans consumers out over a bounded worker pool and
// collects their recommendations.
package dispatch

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/partner-match/internal/apperr"
	"github.com/sells-group/partner-match/internal/config"
	"github.com/sells-group/partner-match/internal/model"
	"github.com/sells-group/partner-match/internal/rank"
)

// DefaultWorkers is the pool width used when none is configured.
const DefaultWorkers = 20

// Scorer produces a Score Map for one consumer.
type Scorer interface {
	ScoreOf(ctx context.Context, consumer model.Record, providers []model.Record) (*model.ScoreMap, error)
	ValidateRecords(consumers, providers []model.Record) error
}

// Failure is a consumer whose scoring did not complete.
type Failure struct {
	ConsumerID string
	Err        error
}

// Summary describes one RecommendAll run.
type Summary struct {
	RunID     string
	Consumers int
	Providers int
	Succeeded int
	Failed    []Failure
	Elapsed   time.Duration
}

// Dispatcher runs the score-then-rank task for every consumer.
type Dispatcher struct {
	scorer  Scorer
	ranking config.RankingConfig
	workers int
}

// New returns a Dispatcher. A non-positive workers value uses DefaultWorkers.
func New(s Scorer, ranking config.RankingConfig, workers int) (*Dispatcher, error) {
	if s == nil {
		return nil, apperr.Configuration("dispatch", eris.New("dispatch: scorer is required"))
	}
	if ranking.MaxRecommendation < 0 {
		return nil, apperr.Configurationf("ranking.max_recommendation", "dispatch: must be >= 0, got %d", ranking.MaxRecommendation)
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Dispatcher{scorer: s, ranking: ranking, workers: workers}, nil
}

// Workers returns the pool width.
func (d *Dispatcher) Workers() int {
	return d.workers
}

// RecommendAll scores and ranks every consumer against all providers.
// Recommendations come back in consumer input order; consumers whose
// scoring failed are left out and listed in Summary.Failed. Invalid records
// fail the run before any worker starts, as does context cancellation.
func (d *Dispatcher) RecommendAll(ctx context.Context, consumers, providers []model.Record) ([]model.Recommendation, *Summary, error) {
	start := time.Now()
	summary := &Summary{
		RunID:     uuid.New().String(),
		Consumers: len(consumers),
		Providers: len(providers),
	}
	log := zap.L().With(zap.String("run_id", summary.RunID))

	if err := d.scorer.ValidateRecords(consumers, providers); err != nil {
		return nil, summary, err
	}

	log.Info("dispatch: run started",
		zap.Int("consumers", len(consumers)),
		zap.Int("providers", len(providers)),
		zap.Int("workers", d.workers),
	)

	results := make([]*model.Recommendation, len(consumers))

	var mu sync.Mutex
	var failures []indexedFailure
	var succeeded atomic.Int64

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)

	for i, consumer := range consumers {
		if gCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			scores, err := d.scorer.ScoreOf(gCtx, consumer, providers)
			if err != nil {
				if gCtx.Err() != nil {
					return gCtx.Err()
				}
				log.Error("dispatch: consumer failed",
					zap.String("consumer", consumer.ID),
					zap.Error(err),
				)
				mu.Lock()
				failures = append(failures, indexedFailure{i, Failure{ConsumerID: consumer.ID, Err: err}})
				mu.Unlock()
				return nil // one consumer does not abort the run
			}

			rec := rank.Rank(consumer, scores, d.ranking)
			log.Debug("dispatch: consumer ranked",
				zap.String("consumer", consumer.ID),
				zap.Int("partners", len(rec.Partners)),
			)
			results[i] = &rec
			succeeded.Add(1)
			return nil
		})
	}

	waitErr := g.Wait()
	summary.Elapsed = time.Since(start)
	if waitErr == nil {
		waitErr = ctx.Err()
	}
	if waitErr != nil {
		return nil, summary, eris.Wrap(waitErr, "dispatch: run cancelled")
	}

	summary.Succeeded = int(succeeded.Load())
	summary.Failed = sortFailures(failures)

	recs := make([]model.Recommendation, 0, summary.Succeeded)
	for _, r := range results {
		if r != nil {
			recs = append(recs, *r)
		}
	}

	log.Info("dispatch: run complete",
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", len(summary.Failed)),
		zap.Duration("elapsed", summary.Elapsed),
	)
	return recs, summary, nil
}

type indexedFailure struct {
	index int
	Failure
}

// sortFailures returns failures in consumer input order.
func sortFailures(in []indexedFailure) []Failure {
	if len(in) == 0 {
		return nil
	}
	sort.Slice(in, func(i, j int) bool { return in[i].index < in[j].index })
	out := make([]Failure, len(in))
	for i, f := range in {
		out[i] = f.Failure
	}
	return out
}
