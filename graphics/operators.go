package graphics

import (
	"seehuhn.de/go/geom/matrix"

	"github.com/abdullahmohammadkhan/ptext-go"
)

// Font is the minimal view the graphics package needs of a loaded font
// to show text: glyph widths (in glyph-space units, 1000 to the em) and
// a code-to-character decoding. The afm package's SimpleFont satisfies
// this without graphics importing afm.
type Font interface {
	Width(code byte) float64
	Decode(code byte) rune
}

// Resources is the current page or form XObject's resource dictionary,
// as seen by the operators that look things up by name: the
// text-showing operators (Tj, ', TJ) resolve the font that Tf selected
// by name, and Do resolves an XObject. The color-space operators store
// the space name only. The interp package supplies the concrete
// implementation backed by the transformed object graph.
type Resources interface {
	Font(name string) (Font, bool)
	// XObject reports whether name is a Form (isForm true, with its
	// decoded content stream bytes and its own resource dictionary) or
	// an Image (isForm false); ok is false if the name is undefined.
	XObject(name string) (content []byte, resources Resources, isForm bool, ok bool)
}

// Sink receives the rendering events a showing operator produces.
// interp's page interpreter implements this over an events.Bus.
type Sink interface {
	GlyphRendered(ch rune, bbox pdf.Rectangle, baseline [2]float64, font string, size float64)
	ImageRendered(name string, data []byte)
}

// Interp holds everything an operator handler needs: the state stack,
// the current resource dictionary, and the event sink. interp's page
// interpreter owns one per page; a nested Form XObject runs on the same
// Interp with Resources set to the form's own dictionary for the
// duration of the form.
//
// ExecuteForm lets the Do operator recurse into a Form XObject's own
// content stream without graphics importing interp's content-stream
// tokenizer: interp supplies the callback, graphics only calls it inside
// a pushed/popped state bracket.
type Interp struct {
	Stack       *Stack
	Resources   Resources
	Sink        Sink
	ExecuteForm func(g *Interp, content []byte, resources Resources) error
}

// Op is one registered operator: its expected operand count (negative
// means variable, checked by the handler itself) and its handler.
type Op struct {
	Arity   int
	Handler func(g *Interp, operands []pdf.Object) error
}

// Registry maps a content-stream operator mnemonic to its Op record
// (component G). It is a plain map, not a builder API: additional
// document-aware operators (interp adds none beyond what's here; Tf and
// Do already close over Resources/Sink through Interp) can be merged in
// by copying entries.
var Registry = map[string]Op{
	"q":  {0, opPush},
	"Q":  {0, opPop},
	"cm": {6, opConcat},

	"Tf": {2, opSetFont},
	"Td": {2, opTextMove},
	"TD": {2, opTextMoveSetLeading},
	"Tm": {6, opSetTextMatrix},
	"T*": {0, opNextLine},
	"Tc": {1, opCharSpacing},
	"Tw": {1, opWordSpacing},
	"Tz": {1, opHorizScale},
	"TL": {1, opLeading},
	"Ts": {1, opTextRise},
	"Tr": {1, opRenderMode},

	"Tj": {1, opShowText},
	"'":  {1, opNextLineShowText},
	"TJ": {1, opShowTextArray},

	"BT": {0, opBeginText},
	"ET": {0, opEndText},

	"G":  {1, opStrokeGray},
	"g":  {1, opNonStrokeGray},
	"RG": {3, opStrokeRGB},
	"rg": {3, opNonStrokeRGB},
	"K":  {4, opStrokeCMYK},
	"k":  {4, opNonStrokeCMYK},
	"CS": {1, opStrokeColorSpace},
	"cs": {1, opNonStrokeColorSpace},
	"SC": {-1, opStrokeColor},
	"sc": {-1, opNonStrokeColor},
	"SCN": {-1, opStrokeColor},
	"scn": {-1, opNonStrokeColor},

	"w": {1, opLineWidth},
	"J": {1, opLineCap},
	"j": {1, opLineJoin},
	"M": {1, opMiterLimit},
	"d": {2, opDash},

	"re": {4, opNoopPath},
	"m":  {2, opNoopPath},
	"l":  {2, opNoopPath},
	"c":  {6, opNoopPath},
	"v":  {4, opNoopPath},
	"y":  {4, opNoopPath},
	"h":  {0, opNoopPath},
	"S":  {0, opNoopPath},
	"s":  {0, opNoopPath},
	"f":  {0, opNoopPath},
	"F":  {0, opNoopPath},
	"f*": {0, opNoopPath},
	"B":  {0, opNoopPath},
	"B*": {0, opNoopPath},
	"b":  {0, opNoopPath},
	"b*": {0, opNoopPath},
	"n":  {0, opNoopPath},
	"W":  {0, opNoopPath},
	"W*": {0, opNoopPath},

	"gs": {1, opGraphicsStateResource},

	"BMC": {1, opBeginMarkedContent},
	"BDC": {2, opBeginMarkedContentWithProps},
	"EMC": {0, opEndMarkedContent},

	"BX": {0, opBeginCompat},
	"EX": {0, opEndCompat},

	"Do": {1, opDo},
}

func num(obj pdf.Object) float64 {
	n, ok := obj.(pdf.Number)
	if !ok {
		return 0
	}
	return n.Float64()
}

func opPush(g *Interp, _ []pdf.Object) error {
	g.Stack.Push()
	return nil
}

func opPop(g *Interp, _ []pdf.Object) error {
	return g.Stack.Pop()
}

func opConcat(g *Interp, ops []pdf.Object) error {
	m := matrix.Matrix{num(ops[0]), num(ops[1]), num(ops[2]), num(ops[3]), num(ops[4]), num(ops[5])}
	st := g.Stack.Current()
	st.CTM = m.Mul(st.CTM)
	return nil
}

func opSetFont(g *Interp, ops []pdf.Object) error {
	name, ok := ops[0].(pdf.Name)
	if !ok {
		return &pdf.TypeError{Expected: "Name", Received: "other"}
	}
	st := g.Stack.Current()
	st.FontName = string(name)
	st.FontSize = num(ops[1])
	return nil
}

func opTextMove(g *Interp, ops []pdf.Object) error {
	tx, ty := num(ops[0]), num(ops[1])
	st := g.Stack.Current()
	m := matrix.Matrix{1, 0, 0, 1, tx, ty}.Mul(st.TextLineMatrix)
	st.TextMatrix = m
	st.TextLineMatrix = m
	return nil
}

func opTextMoveSetLeading(g *Interp, ops []pdf.Object) error {
	ty := num(ops[1])
	g.Stack.Current().Leading = -ty
	return opTextMove(g, ops)
}

func opSetTextMatrix(g *Interp, ops []pdf.Object) error {
	m := matrix.Matrix{num(ops[0]), num(ops[1]), num(ops[2]), num(ops[3]), num(ops[4]), num(ops[5])}
	st := g.Stack.Current()
	st.TextMatrix = m
	st.TextLineMatrix = m
	return nil
}

func opNextLine(g *Interp, _ []pdf.Object) error {
	st := g.Stack.Current()
	return opTextMove(g, []pdf.Object{pdf.NewNumberFromFloat(0), pdf.NewNumberFromFloat(-st.Leading)})
}

func opCharSpacing(g *Interp, ops []pdf.Object) error {
	g.Stack.Current().CharSpacing = num(ops[0])
	return nil
}

func opWordSpacing(g *Interp, ops []pdf.Object) error {
	g.Stack.Current().WordSpacing = num(ops[0])
	return nil
}

func opHorizScale(g *Interp, ops []pdf.Object) error {
	g.Stack.Current().HorizontalScaling = num(ops[0])
	return nil
}

func opLeading(g *Interp, ops []pdf.Object) error {
	g.Stack.Current().Leading = num(ops[0])
	return nil
}

func opTextRise(g *Interp, ops []pdf.Object) error {
	g.Stack.Current().TextRise = num(ops[0])
	return nil
}

func opRenderMode(g *Interp, ops []pdf.Object) error {
	n := num(ops[0])
	g.Stack.Current().TextRenderMode = int(n)
	return nil
}

func opBeginText(g *Interp, _ []pdf.Object) error {
	st := g.Stack.Current()
	st.TextMatrix = matrix.Identity
	st.TextLineMatrix = matrix.Identity
	return nil
}

func opEndText(g *Interp, _ []pdf.Object) error { return nil }

func opStrokeGray(g *Interp, ops []pdf.Object) error {
	st := g.Stack.Current()
	st.StrokeColorSpace = "DeviceGray"
	st.StrokeColor = []float64{num(ops[0])}
	return nil
}

func opNonStrokeGray(g *Interp, ops []pdf.Object) error {
	st := g.Stack.Current()
	st.NonStrokeColorSpace = "DeviceGray"
	st.NonStrokeColor = []float64{num(ops[0])}
	return nil
}

func opStrokeRGB(g *Interp, ops []pdf.Object) error {
	st := g.Stack.Current()
	st.StrokeColorSpace = "DeviceRGB"
	st.StrokeColor = []float64{num(ops[0]), num(ops[1]), num(ops[2])}
	return nil
}

func opNonStrokeRGB(g *Interp, ops []pdf.Object) error {
	st := g.Stack.Current()
	st.NonStrokeColorSpace = "DeviceRGB"
	st.NonStrokeColor = []float64{num(ops[0]), num(ops[1]), num(ops[2])}
	return nil
}

func opStrokeCMYK(g *Interp, ops []pdf.Object) error {
	st := g.Stack.Current()
	st.StrokeColorSpace = "DeviceCMYK"
	st.StrokeColor = []float64{num(ops[0]), num(ops[1]), num(ops[2]), num(ops[3])}
	return nil
}

func opNonStrokeCMYK(g *Interp, ops []pdf.Object) error {
	st := g.Stack.Current()
	st.NonStrokeColorSpace = "DeviceCMYK"
	st.NonStrokeColor = []float64{num(ops[0]), num(ops[1]), num(ops[2]), num(ops[3])}
	return nil
}

func opStrokeColorSpace(g *Interp, ops []pdf.Object) error {
	name, ok := ops[0].(pdf.Name)
	if !ok {
		return &pdf.TypeError{Expected: "Name", Received: "other"}
	}
	st := g.Stack.Current()
	st.StrokeColorSpace = string(name)
	st.StrokeColor = initialColor(st.StrokeColorSpace)
	return nil
}

func opNonStrokeColorSpace(g *Interp, ops []pdf.Object) error {
	name, ok := ops[0].(pdf.Name)
	if !ok {
		return &pdf.TypeError{Expected: "Name", Received: "other"}
	}
	st := g.Stack.Current()
	st.NonStrokeColorSpace = string(name)
	st.NonStrokeColor = initialColor(st.NonStrokeColorSpace)
	return nil
}

// initialColor is the color a color-space operator installs: black in
// the device spaces, nil for any other (named) space, whose component
// count is not known here.
func initialColor(space string) []float64 {
	switch space {
	case "DeviceGray":
		return []float64{0}
	case "DeviceRGB":
		return []float64{0, 0, 0}
	case "DeviceCMYK":
		return []float64{0, 0, 0, 1}
	}
	return nil
}

func opStrokeColor(g *Interp, ops []pdf.Object) error {
	st := g.Stack.Current()
	st.StrokeColor = floatsOf(ops)
	return nil
}

func opNonStrokeColor(g *Interp, ops []pdf.Object) error {
	st := g.Stack.Current()
	st.NonStrokeColor = floatsOf(ops)
	return nil
}

func floatsOf(ops []pdf.Object) []float64 {
	out := make([]float64, 0, len(ops))
	for _, o := range ops {
		if _, isName := o.(pdf.Name); isName {
			continue // SCN/scn may carry a trailing pattern name; colors are the numeric prefix
		}
		out = append(out, num(o))
	}
	return out
}

func opLineWidth(g *Interp, ops []pdf.Object) error {
	g.Stack.Current().LineWidth = num(ops[0])
	return nil
}

func opLineCap(g *Interp, ops []pdf.Object) error {
	g.Stack.Current().LineCap = int(num(ops[0]))
	return nil
}

func opLineJoin(g *Interp, ops []pdf.Object) error {
	g.Stack.Current().LineJoin = int(num(ops[0]))
	return nil
}

func opMiterLimit(g *Interp, ops []pdf.Object) error {
	g.Stack.Current().MiterLimit = num(ops[0])
	return nil
}

func opDash(g *Interp, ops []pdf.Object) error {
	st := g.Stack.Current()
	if arr, ok := ops[0].(pdf.Array); ok {
		pattern := make([]float64, len(arr))
		for i, e := range arr {
			pattern[i] = num(e)
		}
		st.DashPattern = pattern
	}
	st.DashPhase = num(ops[1])
	return nil
}

func opNoopPath(g *Interp, _ []pdf.Object) error { return nil }

func opGraphicsStateResource(g *Interp, _ []pdf.Object) error { return nil }

func opBeginMarkedContent(g *Interp, _ []pdf.Object) error {
	g.Stack.EnterMarkedContent()
	return nil
}

func opBeginMarkedContentWithProps(g *Interp, _ []pdf.Object) error {
	g.Stack.EnterMarkedContent()
	return nil
}

func opEndMarkedContent(g *Interp, _ []pdf.Object) error {
	g.Stack.ExitMarkedContent()
	return nil
}

func opBeginCompat(g *Interp, _ []pdf.Object) error {
	g.Stack.EnterCompatibilitySection()
	return nil
}

func opEndCompat(g *Interp, _ []pdf.Object) error {
	g.Stack.ExitCompatibilitySection()
	return nil
}
