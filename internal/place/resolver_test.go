package place

import (
	"strings"
	"testing"
)

func TestResolveName(t *testing.T) {
	r := NewResolver(nil, nil)

	tests := []struct {
		name     string
		category Category
		props    Properties
		want     string
	}{
		{"lower name", Countries, Properties{"name": "Peru"}, "Peru"},
		{"upper name", Countries, Properties{"NAME": "Peru"}, "Peru"},
		{"admin fallback", Countries, Properties{"ADMIN": "France", "ISO_A2": "FR"}, "France"},
		{"blank skipped", Cities, Properties{"name": "   ", "NAME_EN": "Pune"}, "Pune"},
		{"trimmed", Rivers, Properties{"name": "  Ganges "}, "Ganges"},
		{"numeric name", States, Properties{"name": 42.0}, "42"},
		{"nil value", Mountains, Properties{"name": nil}, Unknown},
		{"no keys", Mountains, Properties{"elevation": 8848}, Unknown},
		{"nil bag", Countries, nil, Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.ResolveName(tt.category, tt.props)
			if got != tt.want {
				t.Errorf("ResolveName() = %q, want %q", got, tt.want)
			}
			if again := r.ResolveName(tt.category, tt.props); again != got {
				t.Errorf("ResolveName() not deterministic: %q then %q", got, again)
			}
		})
	}
}

func TestBuildDetailRows_River(t *testing.T) {
	r := NewResolver(nil, nil)
	rows := r.BuildDetailRows(Rivers, Properties{"name": "Ganges", "length_km": 2525.0}, nil)

	want := []Row{
		{"River", "Ganges"},
		{"Length (km)", "2,525"},
	}
	if len(rows) != len(want) {
		t.Fatalf("rows = %v, want %v", rows, want)
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("rows[%d] = %v, want %v", i, rows[i], want[i])
		}
	}
}

func TestBuildDetailRows_Coordinates(t *testing.T) {
	r := NewResolver(nil, nil)
	rows := r.BuildDetailRows(Cities, Properties{"name": "Delhi", "adm0name": "India"}, &LatLng{Lat: 28.61389, Lng: 77.2090})

	last := rows[len(rows)-1]
	if last.Label != "Coordinates" || last.Value != "28.6139, 77.2090" {
		t.Errorf("last row = %v, want Coordinates 28.6139, 77.2090", last)
	}
}

func TestBuildDetailRows_NonNumericQuantityKeptRaw(t *testing.T) {
	r := NewResolver(nil, nil)
	rows := r.BuildDetailRows(Mountains, Properties{"name": "K2", "elevation": "about 8600"}, nil)
	for _, row := range rows {
		if row.Label == "Elevation (m)" && row.Value != "about 8600" {
			t.Errorf("Elevation = %q, want raw value", row.Value)
		}
	}
}

func TestBuildDetailRows_NoScavengingWhenTableFilled(t *testing.T) {
	r := NewResolver(nil, nil)
	props := Properties{
		"name":        "Everest",
		"country":     "Nepal",
		"featurecla":  "mountain",
		"first_climb": 1953.0,
		"a_key":       "a",
	}

	rows := r.BuildDetailRows(Mountains, props, nil)

	labels := make(map[string]bool)
	for _, row := range rows {
		l := strings.ToLower(row.Label)
		if labels[l] {
			t.Errorf("duplicate label %q in %v", row.Label, rows)
		}
		labels[l] = true
	}

	// Two table rows (Peak, Country / Region) mean no scavenging at all.
	if len(rows) != 2 {
		t.Errorf("rows = %v, want only the two table rows", rows)
	}
}

func TestBuildDetailRows_ScavengerFillsSparseRows(t *testing.T) {
	r := NewResolver(nil, nil)
	props := Properties{
		"name":        "Everest",
		"featurecla":  "mountain",
		"ne_id":       1159150501.0,
		"wiki_long":   strings.Repeat("x", 81),
		"osm_id":      "1234567",
		"short_id":    "12345",
		"first_climb": 1953.0,
		"peak":        "duplicate label",
		"a_key":       "a",
		"b_key":       "b",
		"c_key":       "c",
		"d_key":       "d",
		"e_key":       "e",
	}

	rows := r.BuildDetailRows(Mountains, props, &LatLng{Lat: 27.9881, Lng: 86.925})

	seen := make(map[string]bool)
	extras := 0
	for _, row := range rows {
		l := strings.ToLower(row.Label)
		if seen[l] {
			t.Fatalf("duplicate label %q in %v", row.Label, rows)
		}
		seen[l] = true
		if row.Label != "Peak" && row.Label != "Coordinates" {
			extras++
		}
	}
	if extras != maxExtraRows {
		t.Errorf("extras = %d, want %d (rows %v)", extras, maxExtraRows, rows)
	}
	for _, banned := range []string{"featurecla", "ne id", "wiki long", "osm id"} {
		if seen[banned] {
			t.Errorf("row %q should have been filtered", banned)
		}
	}
	if !seen["a key"] || !seen["first climb"] {
		t.Errorf("expected sorted extras to include A key and First climb, got %v", rows)
	}
	if seen["short id"] {
		t.Errorf("extras past the cap should be dropped, got %v", rows)
	}
}

func TestBuildDetailRows_EmptyBag(t *testing.T) {
	r := NewResolver(nil, nil)
	if rows := r.BuildDetailRows(Countries, nil, nil); len(rows) != 0 {
		t.Errorf("rows = %v, want none", rows)
	}
}

func TestPrettyKey(t *testing.T) {
	tests := map[string]string{
		"adm1name":  "Adm1name",
		"pop_rank":  "Pop rank",
		"_leading":  "Leading",
		"élévation": "Élévation",
		"":          "",
	}
	for in, want := range tests {
		if got := PrettyKey(in); got != want {
			t.Errorf("PrettyKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatter(t *testing.T) {
	f := NewFormatter(DefaultLocale)
	tests := []struct {
		in   string
		want string
	}{
		{"2525", "2,525"},
		{"8848.86", "8,848.86"},
		{"999", "999"},
		{"n/a", "n/a"},
	}
	for _, tt := range tests {
		if got := f.FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
