package afm

import (
	"golang.org/x/text/encoding/charmap"

	"seehuhn.de/go/postscript/type1/names"
)

// SimpleFont adapts a parsed Metrics to the one-byte-per-glyph encoding
// of a PDF simple font, satisfying graphics.Font. Without an explicit
// /Differences array, code-to-glyph-name follows WinAnsiEncoding, which
// golang.org/x/text's Windows-1252 table approximates closely enough for
// width lookups and Unicode fallback (the teacher's font/builtin afm
// demo ships its own encoding tables for exact fidelity; this module
// does not embed font data, so the practical default is used instead).
type SimpleFont struct {
	Metrics     *Metrics
	Differences map[byte]string // code -> glyph name, overrides the default
}

// NewSimpleFont builds a SimpleFont over already-loaded Metrics.
func NewSimpleFont(m *Metrics, differences map[byte]string) *SimpleFont {
	return &SimpleFont{Metrics: m, Differences: differences}
}

func (f *SimpleFont) glyphName(code byte) string {
	if f.Differences != nil {
		if name, ok := f.Differences[code]; ok {
			return name
		}
	}
	if cm, ok := f.Metrics.ByCode(int(code)); ok {
		return cm.Name
	}
	r := charmap.Windows1252.DecodeByte(code)
	if r == 0 {
		return ""
	}
	return names.FromUnicode(r)
}

// Width returns the glyph's advance width in 1000ths of an em, falling
// back to the font's declared MissingWidth when the code has no glyph.
func (f *SimpleFont) Width(code byte) float64 {
	name := f.glyphName(code)
	if name != "" {
		if cm, ok := f.Metrics.ByName(name); ok {
			return cm.Width
		}
	}
	return f.Metrics.MissingWidth
}

// Decode returns the best-guess Unicode rune for a code, via the glyph
// name when one is known and the code's Windows-1252 character
// otherwise.
func (f *SimpleFont) Decode(code byte) rune {
	name := f.glyphName(code)
	if name != "" {
		if rs := names.ToUnicode(name, false); len(rs) > 0 {
			return rs[0]
		}
	}
	return charmap.Windows1252.DecodeByte(code)
}
