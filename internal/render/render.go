package render

import (
	"github.com/paulmach/orb/geojson"

	"github.com/mapcrown/mapcrown/internal/dataset"
	"github.com/mapcrown/mapcrown/internal/place"
)

// Kind tells the client how to draw a layer.
type Kind string

const (
	Shapes  Kind = "shapes"
	Markers Kind = "markers"
)

// ClusterOptions configure marker clustering on the client.
type ClusterOptions struct {
	DisableClusteringAtZoom int  `json:"disableClusteringAtZoom"`
	MaxClusterRadius        int  `json:"maxClusterRadius"`
	ChunkedLoading          bool `json:"chunkedLoading"`
	ShowCoverageOnHover     bool `json:"showCoverageOnHover"`
}

// Item is one drawable feature. ID is the feature index in the dataset.
type Item struct {
	ID       int               `json:"id"`
	Name     string            `json:"name"`
	Tooltip  string            `json:"tooltip"`
	Marker   bool              `json:"marker"`
	Anchor   *place.LatLng     `json:"anchor,omitempty"`
	Geometry *geojson.Geometry `json:"geometry,omitempty"`
}

// Layer is the renderable form of one category.
type Layer struct {
	Category place.Category  `json:"category"`
	Kind     Kind            `json:"kind"`
	Style    Style           `json:"style"`
	Hover    Style           `json:"hover"`
	Cluster  *ClusterOptions `json:"cluster,omitempty"`
	Focused  bool            `json:"focused"`
	Stride   int             `json:"stride"`
	Total    int             `json:"total"`
	Items    []Item          `json:"items"`
}

// Options holds marker sampling and clustering settings.
type Options struct {
	SamplingStep            int
	LargeDatasetThreshold   int
	DisableClusteringAtZoom int
	MaxClusterRadius        int
}

// Renderer builds layers. It holds no per-call state.
type Renderer struct {
	resolver *place.Resolver
	opts     Options
}

// New creates a Renderer.
func New(resolver *place.Resolver, opts Options) *Renderer {
	return &Renderer{resolver: resolver, opts: opts}
}

// Render builds the layer for doc. When focused is set, features rejected
// by focus are left out; otherwise focus is ignored. A nil focus keeps
// everything.
func (r *Renderer) Render(c place.Category, doc *dataset.Document, focused bool, focus place.Focus) *Layer {
	layer := &Layer{
		Category: c,
		Kind:     Shapes,
		Style:    BaseStyle(c),
		Hover:    HoverStyle(c),
		Focused:  focused,
		Stride:   1,
		Total:    len(doc.Features),
		Items:    []Item{},
	}
	if !focused || focus == nil {
		focus = place.NoFocus
	}

	if c == place.Cities {
		layer.Kind = Markers
		layer.Cluster = &ClusterOptions{
			DisableClusteringAtZoom: r.opts.DisableClusteringAtZoom,
			MaxClusterRadius:        r.opts.MaxClusterRadius,
			ChunkedLoading:          true,
		}
		if layer.Total > r.opts.LargeDatasetThreshold {
			layer.Stride = max(1, r.opts.SamplingStep)
		}
	}

	for i := 0; i < len(doc.Features); i += layer.Stride {
		f := doc.Features[i]
		if !focus(f.Properties) {
			continue
		}
		if item, ok := r.item(c, f, layer.Kind == Markers); ok {
			layer.Items = append(layer.Items, item)
		}
	}
	return layer
}

func (r *Renderer) item(c place.Category, f dataset.Feature, markersOnly bool) (Item, bool) {
	name := r.resolver.ResolveName(c, f.Properties)
	item := Item{ID: f.Index, Name: name, Tooltip: name}

	anchor, hasAnchor := f.Anchor()
	if hasAnchor {
		item.Anchor = &anchor
	}

	if markersOnly || f.IsPoint() {
		if !hasAnchor {
			return Item{}, false
		}
		item.Marker = true
		return item, true
	}

	if f.Geometry == nil {
		return Item{}, false
	}
	item.Geometry = geojson.NewGeometry(f.Geometry)
	return item, true
}
