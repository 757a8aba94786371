// Package render turns loaded datasets into map layers.
package render

import (
	"math"

	"github.com/mapcrown/mapcrown/internal/place"
)

// Style is the stroke and fill of a drawn feature.
type Style struct {
	Color       string  `json:"color"`
	Weight      float64 `json:"weight"`
	FillOpacity float64 `json:"fillOpacity"`
}

const maxHoverFill = 0.22

// BaseStyle returns the resting style for c.
func BaseStyle(c place.Category) Style {
	switch c {
	case place.Rivers:
		return Style{Color: "#5aa7ff", Weight: 2, FillOpacity: 0}
	case place.Mountains:
		return Style{Color: "#d6b36a", Weight: 2, FillOpacity: 0.08}
	case place.States:
		return Style{Color: "#7cc4ff", Weight: 1.5, FillOpacity: 0.10}
	default:
		return Style{Color: "#7cc4ff", Weight: 1.5, FillOpacity: 0.08}
	}
}

// HoverStyle thickens the stroke by one and raises the fill by 0.1,
// capped at 0.22. A zero weight or fill counts as 2 and 0.1 respectively.
func HoverStyle(c place.Category) Style {
	s := BaseStyle(c)
	w := s.Weight
	if w == 0 {
		w = 2
	}
	fo := s.FillOpacity
	if fo == 0 {
		fo = 0.1
	}
	s.Weight = w + 1
	s.FillOpacity = math.Min(maxHoverFill, round2(fo+0.1))
	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
