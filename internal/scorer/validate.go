package scorer

import (
	"github.com/sells-group/partner-match/internal/apperr"
	"github.com/sells-group/partner-match/internal/model"
)

// ValidateRecords checks the inputs of a run before any scoring starts:
// every record needs a non-empty, unique id and the columns the matching
// configuration reads.
func (s *Scorer) ValidateRecords(consumers, providers []model.Record) error {
	consumerCols := make([]string, 0, len(s.cfg.MatchingColumns)+len(s.cfg.UserAdditionalColumns))
	for _, p := range s.cfg.MatchingColumns {
		consumerCols = append(consumerCols, p.User)
	}
	consumerCols = append(consumerCols, s.cfg.UserAdditionalColumns...)

	if err := validateKind("consumer", consumers, consumerCols); err != nil {
		return err
	}
	return validateKind("provider", providers, s.union)
}

func validateKind(kind string, records []model.Record, columns []string) error {
	seen := make(map[string]int, len(records))
	for i, r := range records {
		if r.ID == "" {
			return apperr.Dataf("", "%s at row %d has an empty id", kind, i+1)
		}
		if prev, dup := seen[r.ID]; dup {
			return apperr.Dataf(r.ID, "duplicate %s id (rows %d and %d)", kind, prev+1, i+1)
		}
		seen[r.ID] = i
		for _, col := range columns {
			if !r.Has(col) {
				return apperr.Dataf(r.ID, "%s lacks configured column %q", kind, col)
			}
		}
	}
	return nil
}
