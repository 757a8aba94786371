package place

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Unknown is the resolved name of a feature without any usable name key.
const Unknown = "Unknown"

const (
	minTableRows   = 2
	maxExtraRows   = 6
	maxExtraLength = 80
	maxIDDigits    = 5
)

var digitsOnly = regexp.MustCompile(`^\d+$`)

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String renders the pair with four decimals, latitude first.
func (ll LatLng) String() string {
	return fmt.Sprintf("%.4f, %.4f", ll.Lat, ll.Lng)
}

// Row is one labeled line of the detail panel.
type Row struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Resolver applies Schemas to property bags. It is safe for concurrent use.
type Resolver struct {
	schemas Schemas
	format  *Formatter
}

// NewResolver builds a Resolver. Nil schemas select DefaultSchemas.
func NewResolver(schemas Schemas, format *Formatter) *Resolver {
	if schemas == nil {
		schemas = DefaultSchemas()
	}
	if format == nil {
		format = NewFormatter(DefaultLocale)
	}
	return &Resolver{schemas: schemas, format: format}
}

// ResolveName returns the first non-empty name candidate, or Unknown.
func (r *Resolver) ResolveName(c Category, props Properties) string {
	keys := r.schemas[c].NameKeys
	if len(keys) == 0 {
		keys = defaultNameKeys
	}
	if name := props.Value(keys...); name != "" {
		return name
	}
	return Unknown
}

// BuildDetailRows lists the category's known fields, a coordinates row when
// coords is set, and scavenged extras when fewer than two fields were found.
// Labels never repeat, compared case-insensitively.
func (r *Resolver) BuildDetailRows(c Category, props Properties, coords *LatLng) []Row {
	var rows []Row
	used := make(map[string]bool)
	add := func(label, value string) {
		rows = append(rows, Row{Label: label, Value: value})
		used[strings.ToLower(label)] = true
	}

	for _, f := range r.schemas[c].Fields {
		if used[strings.ToLower(f.Label)] {
			continue
		}
		v := props.Value(f.Keys...)
		if v == "" {
			continue
		}
		if IsNumericLabel(f.Label) {
			v = r.format.FormatValue(v)
		}
		add(f.Label, v)
	}
	found := len(rows)

	if coords != nil {
		add("Coordinates", coords.String())
	}

	if found < minTableRows {
		for _, row := range r.extras(c, props, used) {
			add(row.Label, row.Value)
		}
	}
	return rows
}

// extras picks leftover properties worth showing, in key order.
func (r *Resolver) extras(c Category, props Properties, used map[string]bool) []Row {
	known := r.schemas.knownKeys(c)
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	seen := make(map[string]bool, len(used))
	for l := range used {
		seen[l] = true
	}

	var out []Row
	for _, k := range keys {
		if len(out) >= maxExtraRows {
			break
		}
		key := strings.TrimSpace(k)
		if key == "" || junkKeys[key] || known[key] {
			continue
		}
		v := Stringify(props[k])
		if v == "" || len(v) > maxExtraLength {
			continue
		}
		if digitsOnly.MatchString(v) && len(v) > maxIDDigits {
			continue
		}
		label := PrettyKey(key)
		if seen[strings.ToLower(label)] {
			continue
		}
		seen[strings.ToLower(label)] = true
		out = append(out, Row{Label: label, Value: v})
	}
	return out
}
