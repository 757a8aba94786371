package place

import "strings"

// Focus reports whether a feature belongs to the regional focus.
type Focus func(Properties) bool

// NoFocus keeps every feature.
func NoFocus(Properties) bool { return true }

var (
	countryKeys   = []string{"admin", "ADMIN", "adm0name", "ADM0NAME", "country", "COUNTRY"}
	sovereignKeys = []string{"sovereignt", "SOVEREIGNT"}
	isoKeys       = []string{"iso_a2", "ISO_A2", "iso_a3", "ISO_A3"}
)

// CountryFocus matches features whose country or sovereign field contains
// one of terms, or whose ISO code equals one of codes. Matching ignores case.
// The heuristic is approximate: it relies on whatever country fields a
// dataset happens to carry.
func CountryFocus(terms, codes []string) Focus {
	lt := lowerAll(terms)
	lc := lowerAll(codes)
	return func(p Properties) bool {
		country := strings.ToLower(p.Value(countryKeys...))
		sovereign := strings.ToLower(p.Value(sovereignKeys...))
		for _, t := range lt {
			if strings.Contains(country, t) || strings.Contains(sovereign, t) {
				return true
			}
		}
		iso := strings.ToLower(p.Value(isoKeys...))
		if iso == "" {
			return false
		}
		for _, c := range lc {
			if iso == c {
				return true
			}
		}
		return false
	}
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
