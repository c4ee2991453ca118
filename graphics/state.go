// Package graphics implements the canvas graphics-state machine
// (components F, G, H): the current transformation/text matrices, color
// and line state, the push/pop state stack, and the operator
// registry/dispatch that mutates them as a content stream is
// interpreted.
package graphics

import "seehuhn.de/go/geom/matrix"

// State is the canvas graphics state (spec section 3). Values are PDF
// defaults: identity matrices, black RGB colors, line width 1, miter
// limit 10, horizontal scaling 100%.
type State struct {
	CTM            matrix.Matrix
	TextMatrix     matrix.Matrix
	TextLineMatrix matrix.Matrix

	TextRise          float64
	CharSpacing       float64
	WordSpacing       float64
	HorizontalScaling float64 // percent
	Leading           float64
	FontName          string
	FontSize          float64
	TextRenderMode    int

	StrokeColorSpace    string
	StrokeColor         []float64
	NonStrokeColorSpace string
	NonStrokeColor      []float64

	LineWidth   float64
	LineCap     int
	LineJoin    int
	MiterLimit  float64
	DashPattern []float64
	DashPhase   float64

	RenderingIntent string
	BlendMode       string
	AlphaConstant   float64
	AlphaSource     float64

	// ClippingPath is treated as shared immutable state: Clone does not
	// deep-copy it, only the reference.
	ClippingPath any
}

// Default returns a fresh graphics state with PDF's defined initial
// values: identity matrices, black RGB stroke/non-stroke color (spec
// section 3), line width 1, miter limit 10, horizontal scaling 100%.
func Default() State {
	return State{
		CTM:                 matrix.Identity,
		TextMatrix:          matrix.Identity,
		TextLineMatrix:      matrix.Identity,
		HorizontalScaling:   100,
		StrokeColorSpace:    "DeviceRGB",
		StrokeColor:         []float64{0, 0, 0},
		NonStrokeColorSpace: "DeviceRGB",
		NonStrokeColor:      []float64{0, 0, 0},
		LineWidth:           1,
		MiterLimit:          10,
		AlphaConstant:       1,
		AlphaSource:         1,
	}
}

// Clone makes a deep copy suitable for pushing onto the state stack: the
// component-count-dependent color slices and the dash pattern get their
// own backing arrays so a later mutation of the copy never aliases the
// original. The clipping path is intentionally shared.
func (s State) Clone() State {
	c := s
	c.StrokeColor = append([]float64(nil), s.StrokeColor...)
	c.NonStrokeColor = append([]float64(nil), s.NonStrokeColor...)
	c.DashPattern = append([]float64(nil), s.DashPattern...)
	return c
}
