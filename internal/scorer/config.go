// Package scorer computes per-consumer compatibility scores against every
// provider by combining weighted column comparisons.
package scorer

import (
	"fmt"
	"math"
	"strings"

	"github.com/sells-group/partner-match/internal/apperr"
	"github.com/sells-group/partner-match/internal/config"
)

// DefaultMatchingConfig returns a config.MatchingConfig with the default
// weights. Column roles are left empty.
func DefaultMatchingConfig() config.MatchingConfig {
	return config.MatchingConfig{
		// Baselines.
		ZeroWeight: 0,
		OneWeight:  1,

		// Whole-value fuzzy match (ratio is 0-100).
		TextMatchingThreshold: 80,
		TextMatchingWeight:    0.8,

		// Token level.
		DelimitedWeight:             0.7,
		DelimitedTextMatchingWeight: 0.5,
		SynonymWeight:               0.4,

		RegexDelimiter:    `[\s,;/&()\-]+`,
		StopwordsLanguage: "english",
	}
}

// ServiceUnion returns the provider columns cross-compared with every
// consumer additional column: the direct-pair provider columns in pair order,
// then the provider additional columns, without duplicates.
func ServiceUnion(c config.MatchingConfig) []string {
	seen := make(map[string]struct{}, len(c.MatchingColumns)+len(c.ServiceAdditionalColumns))
	out := make([]string, 0, len(c.MatchingColumns)+len(c.ServiceAdditionalColumns))
	add := func(col string) {
		if _, ok := seen[col]; ok {
			return
		}
		seen[col] = struct{}{}
		out = append(out, col)
	}
	for _, p := range c.MatchingColumns {
		add(p.Service)
	}
	for _, col := range c.ServiceAdditionalColumns {
		add(col)
	}
	return out
}

// NormalizedWeights returns the per-term weights of direct pairs and of
// additional cross pairs. With M direct pairs and S union columns:
//
//	direct     = (1/M) / (0.5*(1/M)*|S| + 1)
//	additional = 0.5 * direct
//
// which keeps the best attainable score near a constant however many
// columns are configured.
func NormalizedWeights(c config.MatchingConfig) (direct, additional float64, err error) {
	m := len(c.MatchingColumns)
	if m == 0 {
		return 0, 0, apperr.Configurationf("matching.matching_columns", "must not be empty")
	}
	inv := 1 / float64(m)
	direct = inv / (0.5*inv*float64(len(ServiceUnion(c))) + 1)
	return direct, 0.5 * direct, nil
}

// ValidateConfig checks that a MatchingConfig is internally consistent.
func ValidateConfig(c config.MatchingConfig) error {
	var errs []string

	if len(c.MatchingColumns) == 0 {
		errs = append(errs, "matching_columns must not be empty")
	}
	seenUser := make(map[string]bool, len(c.MatchingColumns))
	for i, p := range c.MatchingColumns {
		if p.User == "" || p.Service == "" {
			errs = append(errs, fmt.Sprintf("matching_columns[%d] needs both user and service", i))
		}
		if p.User != "" && seenUser[p.User] {
			errs = append(errs, fmt.Sprintf("matching_columns[%d] duplicates user column %q", i, p.User))
		}
		seenUser[p.User] = true
	}
	for i, col := range c.UserAdditionalColumns {
		if col == "" {
			errs = append(errs, fmt.Sprintf("user_additional_columns[%d] is empty", i))
		}
	}
	for i, col := range c.ServiceAdditionalColumns {
		if col == "" {
			errs = append(errs, fmt.Sprintf("service_additional_columns[%d] is empty", i))
		}
	}

	// Weights must be real numbers.
	weights := []struct {
		name string
		v    float64
	}{
		{"zero_weight", c.ZeroWeight},
		{"one_weight", c.OneWeight},
		{"text_matching_weight", c.TextMatchingWeight},
		{"delimited_weight", c.DelimitedWeight},
		{"delimited_text_matching_weight", c.DelimitedTextMatchingWeight},
		{"synonym_weight", c.SynonymWeight},
	}
	for _, w := range weights {
		if math.IsNaN(w.v) || math.IsInf(w.v, 0) {
			errs = append(errs, fmt.Sprintf("%s must be a finite number", w.name))
		}
	}

	// Fuzzy ratio is on a 0-100 scale.
	if math.IsNaN(c.TextMatchingThreshold) || c.TextMatchingThreshold < 0 || c.TextMatchingThreshold > 100 {
		errs = append(errs, "text_matching_threshold must be between 0 and 100")
	}

	if len(errs) > 0 {
		return apperr.Configurationf("matching", "scorer: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
