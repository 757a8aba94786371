package dataset

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/mapcrown/mapcrown/internal/place"
)

// Document is a parsed dataset. It is immutable once loaded.
type Document struct {
	Category place.Category
	Path     string
	Features []Feature
}

// Feature is one dataset entry. Index is its position in the file and
// serves as a stable feature ID.
type Feature struct {
	Index      int
	Properties place.Properties
	Geometry   orb.Geometry
}

// IsPoint reports whether the geometry is a single point.
func (f Feature) IsPoint() bool {
	_, ok := f.Geometry.(orb.Point)
	return ok
}

// Anchor returns the point itself for point features and the planar
// centroid for everything else.
func (f Feature) Anchor() (place.LatLng, bool) {
	switch g := f.Geometry.(type) {
	case nil:
		return place.LatLng{}, false
	case orb.Point:
		return place.LatLng{Lat: g.Lat(), Lng: g.Lon()}, true
	case orb.MultiPoint:
		if len(g) == 0 {
			return place.LatLng{}, false
		}
		return place.LatLng{Lat: g[0].Lat(), Lng: g[0].Lon()}, true
	}

	b := f.Geometry.Bound()
	if b.IsEmpty() {
		return place.LatLng{}, false
	}
	c, _ := planar.CentroidArea(f.Geometry)
	if math.IsNaN(c[0]) || math.IsNaN(c[1]) {
		c = b.Center()
	}
	return place.LatLng{Lat: c.Lat(), Lng: c.Lon()}, true
}

type rawDocument struct {
	Features []rawFeature `json:"features"`
}

type rawFeature struct {
	Properties place.Properties `json:"properties"`
	Geometry   json.RawMessage  `json:"geometry"`
}

// Parse decodes a validated document. Features whose geometry cannot be
// decoded are kept without geometry so their properties stay usable.
func Parse(c place.Category, p string, data []byte) (*Document, error) {
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if raw.Features == nil {
		return nil, fmt.Errorf("%w: missing features array", ErrInvalidDocument)
	}

	doc := &Document{Category: c, Path: p, Features: make([]Feature, 0, len(raw.Features))}
	skipped := 0
	for i, rf := range raw.Features {
		f := Feature{Index: i, Properties: rf.Properties}
		if f.Properties == nil {
			f.Properties = place.Properties{}
		}
		if len(rf.Geometry) > 0 && string(rf.Geometry) != "null" {
			g, err := geojson.UnmarshalGeometry(rf.Geometry)
			if err != nil {
				skipped++
			} else {
				f.Geometry = g.Geometry()
			}
		}
		doc.Features = append(doc.Features, f)
	}

	if skipped > 0 {
		slog.Warn("dataset has undecodable geometries", "category", c, "path", p, "count", skipped)
	}
	return doc, nil
}
