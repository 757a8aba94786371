package enrich

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/mapcrown/mapcrown/internal/place"
	"github.com/mapcrown/mapcrown/internal/platform/metrics"
)

// CountryCachePrefix namespaces merged country metadata in the session cache.
const CountryCachePrefix = "country_v1_"

// CountryLookup fetches country metadata by code or name.
type CountryLookup interface {
	Lookup(ctx context.Context, key string) (Country, error)
}

// LeaderLookup fetches heads of state and government by ISO alpha-2 code.
type LeaderLookup interface {
	Leaders(ctx context.Context, iso2 string) (Leaders, error)
}

// CountryService merges country metadata with leader data and caches the
// result per lower-cased country key.
type CountryService struct {
	countries CountryLookup
	leaders   LeaderLookup
	cache     Cache
	timeout   time.Duration
}

// NewCountryService creates a CountryService. A nil leaders lookup skips
// head-of-state data; a nil cache disables caching.
func NewCountryService(countries CountryLookup, leaders LeaderLookup, cache Cache, timeout time.Duration) *CountryService {
	return &CountryService{countries: countries, leaders: leaders, cache: cache, timeout: timeout}
}

// CountryKeys extracts the ISO alpha-2 and alpha-3 codes of a feature.
// Natural Earth's "-99" placeholder codes are ignored.
func CountryKeys(props place.Properties) (iso2, iso3 string) {
	iso2 = cleanCode(props.Value("iso_a2", "ISO_A2"))
	iso3 = cleanCode(props.Value("iso_a3", "ISO_A3"))
	return iso2, iso3
}

func cleanCode(s string) string {
	if s == "" || s == "-99" || !isAlphaCode(s) {
		return ""
	}
	return s
}

// CacheKey returns the lower-cased key results for a feature are cached under.
func CacheKey(props place.Properties, name string) string {
	iso2, iso3 := CountryKeys(props)
	switch {
	case iso2 != "":
		return strings.ToLower(iso2)
	case iso3 != "":
		return strings.ToLower(iso3)
	default:
		return strings.ToLower(strings.TrimSpace(name))
	}
}

// Lookup returns merged metadata for the selected country. Metadata
// failures return an *EnrichmentError; leader failures only drop the
// leader fields.
func (s *CountryService) Lookup(ctx context.Context, props place.Properties, name string) (Country, error) {
	key := CacheKey(props, name)
	if key == "" || key == strings.ToLower(place.Unknown) {
		return Country{}, &EnrichmentError{Service: "restcountries", Key: name, Err: ErrNotFound}
	}

	if s.cache != nil {
		var cached Country
		ok, err := s.cache.Get(ctx, CountryCachePrefix+key, &cached)
		if err != nil {
			slog.Warn("country cache read failed", "key", key, "error", err)
		}
		if ok {
			metrics.EnrichCacheTotal.WithLabelValues("country", "hit").Inc()
			return cached, nil
		}
		metrics.EnrichCacheTotal.WithLabelValues("country", "miss").Inc()
	}

	iso2, iso3 := CountryKeys(props)

	type leaderResult struct {
		l   Leaders
		err error
	}
	var leaderCh chan leaderResult
	if s.leaders != nil && iso2 != "" {
		leaderCh = make(chan leaderResult, 1)
		go func() {
			l, err := s.leaders.Leaders(ctx, iso2)
			leaderCh <- leaderResult{l, err}
		}()
	}

	country, used, err := FirstSuccess(ctx, []string{iso2, iso3, name}, s.timeout, s.countries.Lookup)
	if err != nil {
		if leaderCh != nil {
			<-leaderCh
		}
		slog.Warn("country metadata unavailable", "key", key, "error", err)
		return Country{}, &EnrichmentError{Service: "restcountries", Key: key, Err: err}
	}
	slog.Debug("country metadata fetched", "key", key, "via", used)

	var leaders Leaders
	var lerr error
	switch {
	case leaderCh != nil:
		r := <-leaderCh
		leaders, lerr = r.l, r.err
	case s.leaders != nil && country.ISO2 != "":
		leaders, lerr = s.leaders.Leaders(ctx, country.ISO2)
	}
	if lerr != nil {
		slog.Info("leader lookup failed", "key", key, "error", lerr)
	}
	country.HeadOfState = leaders.HeadOfState
	country.HeadOfGovernment = leaders.HeadOfGovernment

	if s.cache != nil {
		if err := s.cache.Set(ctx, CountryCachePrefix+key, country); err != nil {
			slog.Warn("country cache write failed", "key", key, "error", err)
		}
	}
	return country, nil
}

// Rows renders merged metadata as detail rows.
func (c Country) Rows(f *place.Formatter) []place.Row {
	var rows []place.Row
	add := func(label, value string) {
		if value != "" {
			rows = append(rows, place.Row{Label: label, Value: value})
		}
	}
	add("Official name", c.OfficialName)
	add("Capital", c.Capital)
	add("Region", c.Region)
	add("Subregion", c.Subregion)
	if c.Population > 0 {
		add("Population", f.FormatNumber(float64(c.Population)))
	}
	if c.Area > 0 {
		add("Area (km²)", f.FormatNumber(c.Area))
	}
	add("Currency", strings.Join(c.Currencies, ", "))
	add("Calling code", c.CallingCode)
	add("Head of state", c.HeadOfState)
	add("Head of government", c.HeadOfGovernment)
	if c.ISO2 != "" {
		add("ISO Code", c.ISO2+" / "+c.ISO3)
	}
	return rows
}
