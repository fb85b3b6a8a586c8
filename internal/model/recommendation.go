package model

import "strconv"

// Column names of the flattened recommendation table.
const (
	UserColumn         = "user"
	PartnerColumn      = "partner"
	PartnerScoreColumn = "partnerScore"
)

// Partner is one recommended provider.
type Partner struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// Recommendation is the ranked partner list for one consumer.
type Recommendation struct {
	User     string    `json:"user"`
	Partners []Partner `json:"partners"`
}

// PartnerColumns returns the column names for the k-th partner (1-based).
func PartnerColumns(k int) (string, string) {
	n := strconv.Itoa(k)
	return PartnerColumn + n, PartnerScoreColumn + n
}

// Header returns the flat table header for recommendations holding up to
// width partners.
func Header(width int) []string {
	cols := make([]string, 0, 1+2*width)
	cols = append(cols, UserColumn)
	for k := 1; k <= width; k++ {
		p, s := PartnerColumns(k)
		cols = append(cols, p, s)
	}
	return cols
}

// Flatten returns the recommendation as a flat mapping
// {user, partner1, partnerScore1, ...}.
func (r Recommendation) Flatten() map[string]any {
	out := make(map[string]any, 1+2*len(r.Partners))
	out[UserColumn] = r.User
	for i, p := range r.Partners {
		pc, sc := PartnerColumns(i + 1)
		out[pc] = p.ID
		out[sc] = p.Score
	}
	return out
}

// MaxPartners returns the widest partner list across recs.
func MaxPartners(recs []Recommendation) int {
	width := 0
	for _, r := range recs {
		if len(r.Partners) > width {
			width = len(r.Partners)
		}
	}
	return width
}
