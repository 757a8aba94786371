package place

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Suggestion is a candidate name with its edit distance to the query.
type Suggestion struct {
	Name     string `json:"name"`
	Distance int    `json:"distance"`
}

// Lookup ranks names by closeness to query. An exact case-insensitive match
// is returned alone. Names further than a third of the query length are
// dropped; at most limit suggestions are returned.
func Lookup(names []string, query string, limit int) []Suggestion {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || limit <= 0 {
		return nil
	}

	for _, n := range names {
		if strings.ToLower(n) == q {
			return []Suggestion{{Name: n}}
		}
	}

	maxDist := max(1, len([]rune(q))/3)
	var out []Suggestion
	for _, n := range names {
		ln := strings.ToLower(n)
		d := levenshtein.ComputeDistance(q, ln)
		if strings.HasPrefix(ln, q) {
			d = min(d, 1)
		}
		if d <= maxDist {
			out = append(out, Suggestion{Name: n, Distance: d})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
