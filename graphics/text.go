package graphics

import (
	"seehuhn.de/go/geom/matrix"

	"github.com/abdullahmohammadkhan/ptext-go"
)

// opShowText implements Tj: show a string using the current font.
func opShowText(g *Interp, ops []pdf.Object) error {
	s, ok := ops[0].(pdf.String)
	if !ok {
		return &pdf.TypeError{Expected: "String", Received: "other"}
	}
	return showText(g, s)
}

// opNextLineShowText implements ': move to the next line, then show.
func opNextLineShowText(g *Interp, ops []pdf.Object) error {
	if err := opNextLine(g, nil); err != nil {
		return err
	}
	return opShowText(g, ops)
}

// opShowTextArray implements TJ: strings and numeric kerning adjustments
// alternate; a number moves the pen without emitting a glyph.
func opShowTextArray(g *Interp, ops []pdf.Object) error {
	arr, ok := ops[0].(pdf.Array)
	if !ok {
		return &pdf.TypeError{Expected: "Array", Received: "other"}
	}
	for _, elem := range arr {
		switch v := elem.(type) {
		case pdf.String:
			if err := showText(g, v); err != nil {
				return err
			}
		case pdf.Number:
			st := g.Stack.Current()
			adj := v.Float64() / 1000 * st.FontSize * (st.HorizontalScaling / 100)
			advanceTextMatrix(st, -adj)
		}
	}
	return nil
}

// showText implements the Tj displacement formula of 4.H for every code
// unit in s, in font encoding order (one byte per code, per the font's
// simple-encoding assumption - composite/Type0 fonts are a documented
// Non-goal).
func showText(g *Interp, s pdf.String) error {
	st := g.Stack.Current()

	var font Font
	if g.Resources != nil {
		font, _ = g.Resources.Font(st.FontName)
	}

	for _, code := range []byte(s) {
		var width float64
		var ch rune
		if font != nil {
			width = font.Width(code)
			ch = font.Decode(code)
		} else {
			ch = rune(code)
		}

		wordSpacing := 0.0
		if code == 0x20 {
			wordSpacing = st.WordSpacing
		}
		tx := ((width/1000 - st.CharSpacing - wordSpacing) * st.FontSize + st.CharSpacing) * (st.HorizontalScaling / 100)

		if g.Sink != nil {
			bbox, baseline := glyphBounds(st, width)
			g.Sink.GlyphRendered(ch, bbox, baseline, st.FontName, st.FontSize)
		}

		advanceTextMatrix(st, tx)
	}
	return nil
}

// advanceTextMatrix moves the pen tx units along the text-space x axis,
// updating Tm in place (Tlm is untouched - only a text-positioning
// operator resets it, per the invariant that Tlm equals Tm immediately
// after such an operator, not after every glyph).
func advanceTextMatrix(st *State, tx float64) {
	st.TextMatrix = matrix.Matrix{1, 0, 0, 1, tx, 0}.Mul(st.TextMatrix)
}

// glyphBounds approximates the device-space bounding box and baseline
// origin of one glyph: a unit em square scaled by the text rendering
// matrix Trm = [Tfs*Th, 0, 0, Tfs, 0, Trise] x Tm x CTM (4.H), matching
// how the teacher's image renderer composes a glyph-space-to-device
// matrix (scale, then Tm, then CTM).
func glyphBounds(st *State, width float64) (pdf.Rectangle, [2]float64) {
	scale := matrix.Matrix{st.FontSize * st.HorizontalScaling / 100, 0, 0, st.FontSize, 0, st.TextRise}
	toDevice := scale.Mul(st.TextMatrix).Mul(st.CTM)
	ox, oy := transformPoint(toDevice, 0, 0)
	ex, ey := transformPoint(toDevice, width/1000, 1)

	bbox := pdf.Rectangle{
		LLx: min(ox, ex), LLy: min(oy, ey),
		URx: max(ox, ex), URy: max(oy, ey),
	}
	return bbox, [2]float64{ox, oy}
}

// transformPoint applies the PDF affine matrix convention (a b c d e f,
// row vector times matrix) to a point.
func transformPoint(m matrix.Matrix, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// opDo implements Do: Form XObjects recurse through ExecuteForm inside a
// pushed/popped state bracket; Image XObjects emit an ImageRender event
// carrying the raw decoded bytes (rasterization is a documented
// Non-goal).
func opDo(g *Interp, ops []pdf.Object) error {
	name, ok := ops[0].(pdf.Name)
	if !ok {
		return &pdf.TypeError{Expected: "Name", Received: "other"}
	}
	if g.Resources == nil {
		return nil
	}
	content, resources, isForm, ok := g.Resources.XObject(string(name))
	if !ok {
		return nil
	}
	if isForm {
		if g.ExecuteForm == nil {
			return nil
		}
		g.Stack.Push()
		defer g.Stack.Pop()
		return g.ExecuteForm(g, content, resources)
	}
	if g.Sink != nil {
		g.Sink.ImageRendered(string(name), content)
	}
	return nil
}
