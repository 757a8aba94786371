package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mapcrown/mapcrown/internal/place"
)

func TestFirstSuccess(t *testing.T) {
	var tried []string
	fn := func(_ context.Context, c string) (int, error) {
		tried = append(tried, c)
		if c == "b" {
			return 2, nil
		}
		return 0, errors.New("nope")
	}

	v, used, err := FirstSuccess(context.Background(), []string{"", "a", "a", "b", "c"}, time.Second, fn)
	if err != nil {
		t.Fatalf("FirstSuccess() error = %v", err)
	}
	if v != 2 || used != "b" {
		t.Errorf("FirstSuccess() = %d, %q, want 2, b", v, used)
	}
	if strings.Join(tried, ",") != "a,b" {
		t.Errorf("tried = %v, want [a b]", tried)
	}
}

func TestFirstSuccess_AllFail(t *testing.T) {
	fn := func(_ context.Context, c string) (string, error) { return "", ErrNotFound }
	_, _, err := FirstSuccess(context.Background(), []string{"x", "y"}, 0, fn)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	if !strings.Contains(err.Error(), "x") || !strings.Contains(err.Error(), "y") {
		t.Errorf("error %v should name every candidate", err)
	}
}

func TestFirstSuccess_PerCandidateTimeout(t *testing.T) {
	fn := func(ctx context.Context, c string) (string, error) {
		if c == "slow" {
			<-ctx.Done()
			return "", ctx.Err()
		}
		return "fast result", nil
	}

	start := time.Now()
	v, _, err := FirstSuccess(context.Background(), []string{"slow", "fast"}, 20*time.Millisecond, fn)
	if err != nil || v != "fast result" {
		t.Fatalf("FirstSuccess() = %q, %v", v, err)
	}
	if time.Since(start) > time.Second {
		t.Error("slow candidate should have been cut off by its timeout")
	}
}

func TestFirstSuccess_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := FirstSuccess(ctx, []string{"a"}, 0, func(context.Context, string) (int, error) { return 1, nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestMemoryCache(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache(time.Minute)
	c.now = func() time.Time { return now }

	if err := c.Set(t.Context(), "k", []string{"a", "b"}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	var got []string
	ok, err := c.Get(t.Context(), "k", &got)
	if err != nil || !ok || len(got) != 2 {
		t.Fatalf("Get() = %v, %v, %v", got, ok, err)
	}

	now = now.Add(2 * time.Minute)
	if ok, _ := c.Get(t.Context(), "k", &got); ok {
		t.Error("entry should have expired")
	}
	if ok, _ := c.Get(t.Context(), "missing", &got); ok {
		t.Error("missing key should not be found")
	}
}

func TestSplitSentences(t *testing.T) {
	text := "The Ganges is a trans-boundary river of Asia.  It flows\nthrough India and Bangladesh! Is it sacred? Yes. Length is 2,525 km"
	got := SplitSentences(text)
	want := []string{
		"The Ganges is a trans-boundary river of Asia.",
		"It flows through India and Bangladesh!",
		"Is it sacred?",
		"Yes.",
		"Length is 2,525 km",
	}
	if len(got) != len(want) {
		t.Fatalf("SplitSentences() = %q", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sentence %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTitleCandidates(t *testing.T) {
	tests := []struct {
		category place.Category
		want     string
	}{
		{place.Rivers, "Ganga|Ganga River"},
		{place.Mountains, "K2|K2 mountain|K2 peak"},
		{place.Cities, "Pune|Pune (city)"},
		{place.Countries, "Peru"},
	}
	names := map[place.Category]string{place.Rivers: "Ganga", place.Mountains: "K2", place.Cities: "Pune", place.Countries: "Peru"}
	for _, tt := range tests {
		got := strings.Join(TitleCandidates(tt.category, names[tt.category]), "|")
		if got != tt.want {
			t.Errorf("TitleCandidates(%s) = %q, want %q", tt.category, got, tt.want)
		}
	}
}

const gangesExtract = "The Ganges is a trans-boundary river of Asia which flows through India and Bangladesh. " +
	"It is 2,525 km long. " +
	"The river rises in the western Himalayas in the Indian state of Uttarakhand! " +
	"Short one. " +
	"It is the most sacred river to Hindus and a lifeline to millions of people."

func TestFactsService_Alternates(t *testing.T) {
	src := &MockSummarizer{Pages: map[string]string{"Ganges River": gangesExtract}}
	s := NewFactsService(src, NewMemoryCache(0), FactsOptions{MaxFacts: 2, MinSentenceLength: 35})

	f := s.Facts(t.Context(), place.Rivers, "Ganges")
	if !f.Found || f.Title != "Ganges River" {
		t.Fatalf("Facts() = %+v", f)
	}
	if len(f.Items) != 2 {
		t.Fatalf("items = %d, want 2 (capped)", len(f.Items))
	}
	for _, item := range f.Items {
		if !strings.HasPrefix(item, FactMarker) {
			t.Errorf("fact %q missing marker", item)
		}
		if len([]rune(strings.TrimPrefix(item, FactMarker))) < 35 {
			t.Errorf("fact %q shorter than the minimum", item)
		}
	}
	if got := src.Requested(); strings.Join(got, "|") != "Ganges|Ganges River" {
		t.Errorf("requested titles = %v", got)
	}

	s.Facts(t.Context(), place.Rivers, "Ganges")
	if got := len(src.Requested()); got != 2 {
		t.Errorf("second request should be served from cache, titles requested = %d", got)
	}
}

func TestFactsService_NotFound(t *testing.T) {
	src := &MockSummarizer{}
	cache := NewMemoryCache(0)
	s := NewFactsService(src, cache, FactsOptions{})

	f := s.Facts(t.Context(), place.Cities, "Atlantis")
	if f.Found || len(f.Items) != 1 || f.Items[0] != NotFoundFact {
		t.Errorf("Facts() = %+v, want the single placeholder", f)
	}
	if cache.Len() != 0 {
		t.Error("placeholder should not be cached")
	}
}

func TestFactsService_ShortSentencesGivePlaceholder(t *testing.T) {
	src := &MockSummarizer{Pages: map[string]string{"Tiny": "Tiny is small. Very."}}
	cache := NewMemoryCache(time.Hour)
	s := NewFactsService(src, cache, FactsOptions{})

	f := s.Facts(t.Context(), place.Countries, "Tiny")
	if f.Found || len(f.Items) != 1 || f.Items[0] != NotFoundFact {
		t.Errorf("Facts() = %+v, want the placeholder", f)
	}
	if cache.Len() != 0 {
		t.Error("placeholder facts should not be cached")
	}
}

func TestCursor(t *testing.T) {
	c := NewCursor(Facts{Key: "rivers:Ganges", Items: []string{"a", "b", "c"}})
	if c.Current() != "a" {
		t.Fatalf("Current() = %q", c.Current())
	}
	seq := []string{c.Next(), c.Next(), c.Next(), c.Next()}
	if strings.Join(seq, "") != "bcab" {
		t.Errorf("Next() sequence = %v, want b c a b", seq)
	}
	if pos, total := c.Position(); pos != 2 || total != 3 {
		t.Errorf("Position() = %d/%d, want 2/3", pos, total)
	}

	empty := NewCursor(Facts{})
	if empty.Next() != "" || empty.Current() != "" {
		t.Error("empty cursor should return empty strings")
	}
}

func TestWikipediaClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "MapCrownTest/1.0" {
			t.Errorf("unexpected user agent: %s", r.Header.Get("User-Agent"))
		}
		switch r.URL.Path {
		case "/page/summary/Ganges River":
			json.NewEncoder(w).Encode(pageSummary{Type: "standard", Title: "Ganges", Extract: gangesExtract})
		case "/page/summary/Mercury":
			json.NewEncoder(w).Encode(pageSummary{Type: "disambiguation", Extract: "Mercury may refer to:"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := NewWikipediaClient(ClientOptions{BaseURL: server.URL + "/", UserAgent: "MapCrownTest/1.0", Timeout: time.Second})

	got, err := c.Summary(t.Context(), "Ganges River")
	if err != nil || got != gangesExtract {
		t.Fatalf("Summary() = %q, %v", got, err)
	}
	if _, err := c.Summary(t.Context(), "Mercury"); !errors.Is(err, ErrNotFound) {
		t.Errorf("disambiguation error = %v, want ErrNotFound", err)
	}
	if _, err := c.Summary(t.Context(), "Nowhere"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing page error = %v, want ErrNotFound", err)
	}
}

const franceJSON = `[{
  "name": {"common": "France", "official": "French Republic"},
  "cca2": "FR", "cca3": "FRA",
  "capital": ["Paris"],
  "region": "Europe", "subregion": "Western Europe",
  "population": 67391582, "area": 551695,
  "currencies": {"EUR": {"name": "Euro", "symbol": "€"}},
  "idd": {"root": "+3", "suffixes": ["3"]},
  "flags": {"png": "https://flagcdn.com/w320/fr.png", "svg": "https://flagcdn.com/fr.svg"}
}]`

func TestRESTCountriesClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/alpha/fr":
			w.Write([]byte(franceJSON))
		case r.URL.Path == "/name/French Guiana" && r.URL.Query().Get("fullText") == "true":
			w.Write([]byte(`{"name": {"common": "French Guiana"}, "cca2": "GF"}`))
		case r.URL.Path == "/alpha/xx":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	c := NewRESTCountriesClient(ClientOptions{BaseURL: server.URL, Timeout: time.Second})

	fr, err := c.Lookup(t.Context(), "FR")
	if err != nil {
		t.Fatalf("Lookup(FR) error = %v", err)
	}
	if fr.Name != "France" || fr.Capital != "Paris" || fr.Population != 67391582 || fr.CallingCode != "+33" {
		t.Errorf("Lookup(FR) = %+v", fr)
	}
	if len(fr.Currencies) != 1 || fr.Currencies[0] != "Euro (€)" || fr.FlagURL != "https://flagcdn.com/w320/fr.png" {
		t.Errorf("Lookup(FR) currencies/flag = %v %q", fr.Currencies, fr.FlagURL)
	}

	gf, err := c.Lookup(t.Context(), "French Guiana")
	if err != nil || gf.ISO2 != "GF" {
		t.Errorf("Lookup(name) = %+v, %v", gf, err)
	}

	if _, err := c.Lookup(t.Context(), "XX"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Lookup(XX) error = %v, want ErrNotFound", err)
	}
	if _, err := c.Lookup(t.Context(), "Atlantis"); err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("Lookup(server error) = %v, want a status error", err)
	}
}

func TestWikidataClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("query")
		if r.URL.Query().Get("format") != "json" {
			t.Errorf("format = %q, want json", r.URL.Query().Get("format"))
		}
		if strings.Contains(q, `"FR"`) {
			w.Write([]byte(`{"results": {"bindings": [{
				"hosLabel": {"type": "literal", "value": "Emmanuel Macron"},
				"hogLabel": {"type": "literal", "value": "Prime Minister"}
			}]}}`))
			return
		}
		w.Write([]byte(`{"results": {"bindings": []}}`))
	}))
	defer server.Close()

	c := NewWikidataClient(ClientOptions{BaseURL: server.URL, Timeout: time.Second})

	l, err := c.Leaders(t.Context(), "fr")
	if err != nil {
		t.Fatalf("Leaders() error = %v", err)
	}
	if l.HeadOfState != "Emmanuel Macron" || l.HeadOfGovernment != "Prime Minister" {
		t.Errorf("Leaders() = %+v", l)
	}
	if _, err := c.Leaders(t.Context(), "ZZ"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Leaders(ZZ) error = %v, want ErrNotFound", err)
	}
	if _, err := c.Leaders(t.Context(), "-99"); err == nil {
		t.Error("Leaders(-99) should reject the code")
	}
}

func TestCountryService_CachesByLowerISO2(t *testing.T) {
	countries := &MockCountryLookup{Countries: map[string]Country{"FR": {Name: "France", ISO2: "FR", ISO3: "FRA", Capital: "Paris"}}}
	leaders := &MockLeaderLookup{ByCode: map[string]Leaders{"FR": {HeadOfState: "Emmanuel Macron"}}}
	cache := NewMemoryCache(0)
	s := NewCountryService(countries, leaders, cache, time.Second)

	props := place.Properties{"ADMIN": "France", "ISO_A2": "FR", "ISO_A3": "FRA"}
	c, err := s.Lookup(t.Context(), props, "France")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if c.Capital != "Paris" || c.HeadOfState != "Emmanuel Macron" {
		t.Errorf("Lookup() = %+v", c)
	}

	var cached Country
	if ok, _ := cache.Get(t.Context(), CountryCachePrefix+"fr", &cached); !ok || cached.Name != "France" {
		t.Errorf("cache entry under %q = %+v, %v", CountryCachePrefix+"fr", cached, ok)
	}

	if _, err := s.Lookup(t.Context(), props, "France"); err != nil {
		t.Fatalf("second Lookup() error = %v", err)
	}
	if countries.CallCount() != 1 {
		t.Errorf("metadata fetched %d times, want 1", countries.CallCount())
	}
}

func TestCountryService_FallsBackToName(t *testing.T) {
	countries := &MockCountryLookup{Countries: map[string]Country{"Kosovo": {Name: "Kosovo", ISO2: "XK"}}}
	leaders := &MockLeaderLookup{ByCode: map[string]Leaders{"XK": {HeadOfState: "President"}}}
	s := NewCountryService(countries, leaders, nil, time.Second)

	c, err := s.Lookup(t.Context(), place.Properties{"ADMIN": "Kosovo", "ISO_A2": "-99"}, "Kosovo")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if c.HeadOfState != "President" {
		t.Errorf("leaders should be fetched with the code from metadata, got %+v", c)
	}
	if CacheKey(place.Properties{"ISO_A2": "-99"}, "Kosovo") != "kosovo" {
		t.Error("placeholder codes should not be used as cache keys")
	}
}

func TestCountryService_Failure(t *testing.T) {
	countries := &MockCountryLookup{Err: errors.New("connection refused")}
	leaders := &MockLeaderLookup{Err: errors.New("timeout")}
	cache := NewMemoryCache(0)
	s := NewCountryService(countries, leaders, cache, time.Second)

	_, err := s.Lookup(t.Context(), place.Properties{"ISO_A2": "FR"}, "France")
	var ee *EnrichmentError
	if !errors.As(err, &ee) {
		t.Fatalf("error = %v, want *EnrichmentError", err)
	}
	if ee.Key != "fr" {
		t.Errorf("Key = %q, want fr", ee.Key)
	}
	if cache.Len() != 0 {
		t.Error("failures should not be cached")
	}
}

func TestCountryService_LeaderFailureIsNotFatal(t *testing.T) {
	countries := &MockCountryLookup{Countries: map[string]Country{"IN": {Name: "India", ISO2: "IN"}}}
	leaders := &MockLeaderLookup{Err: errors.New("sparql timeout")}
	s := NewCountryService(countries, leaders, nil, time.Second)

	c, err := s.Lookup(t.Context(), place.Properties{"iso_a2": "IN"}, "India")
	if err != nil || c.Name != "India" || c.HeadOfState != "" {
		t.Errorf("Lookup() = %+v, %v", c, err)
	}
}

func TestCountryRows(t *testing.T) {
	c := Country{Name: "India", Capital: "New Delhi", Population: 2525, ISO2: "IN", ISO3: "IND", HeadOfState: "President"}
	rows := c.Rows(place.NewFormatter(place.DefaultLocale))
	got := make(map[string]string)
	for _, r := range rows {
		got[r.Label] = r.Value
	}
	if got["Capital"] != "New Delhi" || got["Population"] != "2,525" || got["ISO Code"] != "IN / IND" || got["Head of state"] != "President" {
		t.Errorf("Rows() = %v", rows)
	}
	if _, ok := got["Currency"]; ok {
		t.Error("empty values should not produce rows")
	}
}
