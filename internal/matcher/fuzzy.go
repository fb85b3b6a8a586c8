package matcher

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
	"golang.org/x/text/unicode/norm"
)

// TokenSetRatio scores how alike two strings are on a 0-100 scale,
// ignoring word order and repeated words. Both inputs are lower-cased and
// stripped of punctuation, then split into word sets; the result is the best
// ratio among the shared words alone and the shared words followed by each
// side's leftovers.
func TokenSetRatio(a, b string) int {
	pa, pb := process(a), process(b)
	if pa == "" || pb == "" {
		return 0
	}

	setA, setB := wordSet(pa), wordSet(pb)
	var sect, diffAB, diffBA []string
	for w := range setA {
		if _, ok := setB[w]; ok {
			sect = append(sect, w)
		} else {
			diffAB = append(diffAB, w)
		}
	}
	for w := range setB {
		if _, ok := setA[w]; !ok {
			diffBA = append(diffBA, w)
		}
	}
	sort.Strings(sect)
	sort.Strings(diffAB)
	sort.Strings(diffBA)

	sorted := strings.Join(sect, " ")
	combinedAB := strings.TrimSpace(sorted + " " + strings.Join(diffAB, " "))
	combinedBA := strings.TrimSpace(sorted + " " + strings.Join(diffBA, " "))

	return max(
		ratio(sorted, combinedAB),
		ratio(sorted, combinedBA),
		ratio(combinedAB, combinedBA),
	)
}

// ratio is 100 * 2*LCS / (len(a)+len(b)), rounded half to even.
func ratio(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	lcs := edlib.LCS(a, b)
	return int(math.RoundToEven(float64(200*lcs) / float64(total)))
}

// process NFKC-normalizes s, lower-cases it and turns everything but
// letters, digits and underscores into spaces.
func process(s string) string {
	s = norm.NFKC.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.TrimSpace(s)
}

func wordSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
