// Package rank turns a consumer's Score Map into its recommendation.
package rank

import (
	"math"
	"sort"

	"github.com/sells-group/partner-match/internal/config"
	"github.com/sells-group/partner-match/internal/model"
)

// Rank orders providers by descending score, ties keeping Score Map order,
// and keeps up to MaxRecommendation providers scoring strictly above
// ThresholdScore. Entries at or below the threshold do not use up a slot.
func Rank(consumer model.Record, scores *model.ScoreMap, cfg config.RankingConfig) model.Recommendation {
	rec := model.Recommendation{User: consumer.ID}
	if scores == nil {
		return rec
	}

	entries := scores.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})

	count := 1
	for _, e := range entries {
		if count > cfg.MaxRecommendation {
			break
		}
		if e.Score > cfg.ThresholdScore {
			rec.Partners = append(rec.Partners, model.Partner{ID: e.ProviderID, Score: Round3(e.Score)})
			count++
		}
	}
	return rec
}

// Round3 rounds to three decimal places.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
