package place

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Field is one labeled detail row and the property keys that may hold it.
type Field struct {
	Label string   `yaml:"label"`
	Keys  []string `yaml:"keys"`
}

// Schema declares how a category's property bag is read.
type Schema struct {
	NameKeys []string `yaml:"name_keys"`
	Fields   []Field  `yaml:"fields"`
}

// Schemas maps each category to its schema.
type Schemas map[Category]Schema

var defaultNameKeys = []string{"name", "NAME", "name_en", "NAME_EN", "admin", "ADMIN", "name_long", "NAME_LONG"}

// DefaultSchemas returns the built-in field tables.
func DefaultSchemas() Schemas {
	return Schemas{
		Countries: {
			NameKeys: defaultNameKeys,
			Fields: []Field{
				{"Capital", []string{"capital", "CAPITAL"}},
				{"Continent", []string{"continent", "CONTINENT"}},
				{"Region", []string{"region_un", "REGION_UN", "region", "REGION"}},
				{"Subregion", []string{"subregion", "SUBREGION"}},
				{"Population", []string{"pop_est", "POP_EST", "population", "POPULATION"}},
				{"Area (km²)", []string{"area_km2", "AREA_KM2", "area", "AREA"}},
				{"ISO Code", []string{"iso_a2", "ISO_A2", "iso_a3", "ISO_A3"}},
				{"Currency", []string{"currency", "CURRENCY"}},
				{"Timezones", []string{"timezones", "TIMEZONES"}},
			},
		},
		States: {
			NameKeys: defaultNameKeys,
			Fields: []Field{
				{"State / Province", []string{"name", "NAME", "name_en", "NAME_EN"}},
				{"Country", []string{"adm0name", "ADM0NAME", "admin", "ADMIN", "country", "COUNTRY"}},
				{"Type", []string{"type", "TYPE", "engtype_1", "ENGTYPE_1"}},
				{"ISO-3166-2", []string{"iso_3166_2", "ISO_3166_2"}},
				{"Region", []string{"region", "REGION"}},
			},
		},
		Cities: {
			NameKeys: defaultNameKeys,
			Fields: []Field{
				{"City", []string{"name", "NAME", "name_en", "NAME_EN"}},
				{"Country", []string{"adm0name", "ADM0NAME", "country", "COUNTRY", "admin", "ADMIN"}},
				{"State / Region", []string{"adm1name", "ADM1NAME", "region", "REGION"}},
				{"Population", []string{"pop_max", "POP_MAX", "population", "POPULATION"}},
			},
		},
		Rivers: {
			NameKeys: defaultNameKeys,
			Fields: []Field{
				{"River", []string{"name", "NAME", "name_en", "NAME_EN"}},
				{"Country / Region", []string{"adm0name", "ADM0NAME", "country", "COUNTRY", "region", "REGION"}},
				{"Length (km)", []string{"length_km", "LENGTH_KM", "length", "LENGTH"}},
				{"Source", []string{"source", "SOURCE"}},
				{"Mouth", []string{"mouth", "MOUTH"}},
				{"Basin", []string{"basin", "BASIN"}},
			},
		},
		Mountains: {
			NameKeys: defaultNameKeys,
			Fields: []Field{
				{"Peak", []string{"name", "NAME", "name_en", "NAME_EN"}},
				{"Country / Region", []string{"adm0name", "ADM0NAME", "country", "COUNTRY", "region", "REGION"}},
				{"Elevation (m)", []string{"elevation", "ELEVATION", "elev_m", "ELEV_M", "elev", "ELEV"}},
				{"Range", []string{"range", "RANGE", "mountain_range", "MOUNTAIN_RANGE"}},
			},
		},
	}
}

// junkKeys are internal rank and class codes never shown as extra rows.
var junkKeys = map[string]bool{}

func init() {
	for _, k := range []string{
		"featurecla", "scalerank", "min_zoom", "labelrank", "note", "name_alt",
		"name_en", "name_long", "nameascii", "wikidataid", "ne_id", "adm0_a3",
		"adm1_a3", "fclass", "geonunit", "subunit", "sov_a3",
	} {
		junkKeys[k] = true
		junkKeys[strings.ToUpper(k)] = true
	}
}

// LoadSchemas reads YAML overrides keyed by category and merges them over
// the defaults. A category present in the document replaces its default.
func LoadSchemas(r io.Reader) (Schemas, error) {
	var raw map[string]Schema
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decoding schema overrides: %w", err)
	}

	out := DefaultSchemas()
	for name, s := range raw {
		c, err := Parse(name)
		if err != nil {
			return nil, fmt.Errorf("schema overrides: %w", err)
		}
		if len(s.NameKeys) == 0 {
			s.NameKeys = out[c].NameKeys
		}
		for i, f := range s.Fields {
			if f.Label == "" || len(f.Keys) == 0 {
				return nil, fmt.Errorf("schema overrides: %s field %d needs a label and keys", c, i+1)
			}
		}
		out[c] = s
	}
	return out, nil
}

// LoadSchemaFile reads overrides from path. An empty path returns the defaults.
func LoadSchemaFile(path string) (Schemas, error) {
	if path == "" {
		return DefaultSchemas(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening schema overrides: %w", err)
	}
	defer f.Close()
	return LoadSchemas(f)
}

// knownKeys lists every property key the schema reads for c.
func (s Schemas) knownKeys(c Category) map[string]bool {
	keys := make(map[string]bool)
	sc := s[c]
	for _, k := range sc.NameKeys {
		keys[k] = true
	}
	for _, f := range sc.Fields {
		for _, k := range f.Keys {
			keys[k] = true
		}
	}
	return keys
}
