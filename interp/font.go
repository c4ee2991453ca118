package interp

import (
	"github.com/abdullahmohammadkhan/ptext-go/afm"
	"github.com/abdullahmohammadkhan/ptext-go/graphics"
	"github.com/abdullahmohammadkhan/ptext-go/transform"

	"github.com/abdullahmohammadkhan/ptext-go"
)

// directFont is a graphics.Font backed directly by a font dictionary's
// own /Widths array - the common case for a simple font with an
// embedded program, where the PDF itself states every glyph's advance
// and no external metrics file is needed.
type directFont struct {
	firstChar    int
	widths       []float64
	missingWidth float64
}

func (f *directFont) Width(code byte) float64 {
	i := int(code) - f.firstChar
	if i < 0 || i >= len(f.widths) {
		return f.missingWidth
	}
	return f.widths[i]
}

func (f *directFont) Decode(code byte) rune { return rune(code) }

// buildFont resolves a font resource dictionary to a graphics.Font: a
// /Widths array takes precedence (it is authoritative per the PDF
// spec); when absent, a previously cached afm.Metrics for the font's
// normalized /BaseFont is used instead (4.K); when neither is
// available, an identity font with zero advances is returned rather
// than failing the whole page.
func buildFont(r *transform.Resolver, dict pdf.Dict) (graphics.Font, error) {
	if widthsObj, ok := dict[pdf.Name("Widths")]; ok {
		widths, err := resolveFloatArray(r, widthsObj)
		if err == nil {
			firstChar := 0
			if fc, ok := dict[pdf.Name("FirstChar")].(pdf.Number); ok {
				v, _ := fc.Int()
				firstChar = int(v)
			}
			missing := 0.0
			if fd, ok := dict[pdf.Name("FontDescriptor")]; ok {
				if fdObj, err := r.Resolve(fd); err == nil {
					if fdDict, ok := fdObj.(pdf.Dict); ok {
						if mw, ok := fdDict[pdf.Name("MissingWidth")].(pdf.Number); ok {
							missing = mw.Float64()
						}
					}
				}
			}
			return &directFont{firstChar: firstChar, widths: widths, missingWidth: missing}, nil
		}
	}

	if baseFont, ok := dict[pdf.Name("BaseFont")].(pdf.Name); ok {
		if metrics, ok := afm.Lookup(string(baseFont)); ok {
			return afm.NewSimpleFont(metrics, nil), nil
		}
	}

	return &identityFont{}, nil
}

// identityFont is the font of last resort: it has no width information,
// so glyph events still fire but every advance is zero.
type identityFont struct{}

func (identityFont) Width(code byte) float64 { return 0 }
func (identityFont) Decode(code byte) rune   { return rune(code) }
