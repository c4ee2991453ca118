package graphics

import (
	"math"
	"testing"

	"seehuhn.de/go/geom/matrix"

	"github.com/abdullahmohammadkhan/ptext-go"
)

func nums(vs ...float64) []pdf.Object {
	out := make([]pdf.Object, len(vs))
	for i, v := range vs {
		out[i] = pdf.NewNumberFromFloat(v)
	}
	return out
}

func run(t *testing.T, g *Interp, op string, operands []pdf.Object) {
	t.Helper()
	spec, ok := Registry[op]
	if !ok {
		t.Fatalf("operator %q not registered", op)
	}
	if spec.Arity >= 0 && len(operands) != spec.Arity {
		t.Fatalf("operator %q: got %d operands, want %d", op, len(operands), spec.Arity)
	}
	if err := spec.Handler(g, operands); err != nil {
		t.Fatalf("operator %q: %v", op, err)
	}
}

// TestQQRestoresStateAfterConcatAndColor mirrors scenario S3: a q...Q
// bracket around a CTM change and a stroke-color change must leave both
// restored to their pre-q values.
func TestQQRestoresStateAfterConcatAndColor(t *testing.T) {
	g := &Interp{Stack: NewStack()}

	run(t, g, "q", nil)
	run(t, g, "cm", nums(2, 0, 0, 2, 0, 0))
	run(t, g, "RG", nums(1, 0, 0))
	run(t, g, "re", nums(0, 0, 10, 10))
	run(t, g, "S", nil)
	if err := g.Stack.Pop(); err != nil {
		t.Fatalf("Q: %v", err)
	}

	st := g.Stack.Current()
	if st.CTM != matrix.Identity {
		t.Errorf("CTM after Q = %v, want identity", st.CTM)
	}
	if st.StrokeColorSpace != "DeviceRGB" || len(st.StrokeColor) != 3 || st.StrokeColor[0] != 0 || st.StrokeColor[1] != 0 || st.StrokeColor[2] != 0 {
		t.Errorf("stroke color after Q = %s %v, want DeviceRGB [0 0 0]", st.StrokeColorSpace, st.StrokeColor)
	}
	if g.Stack.Depth() != 0 {
		t.Errorf("depth after Q = %d, want 0", g.Stack.Depth())
	}
}

func TestUnbalancedQReturnsSyntaxError(t *testing.T) {
	g := &Interp{Stack: NewStack()}
	if err := g.Stack.Pop(); err == nil {
		t.Fatal("expected error popping the initial frame")
	}
}

func TestConcatComposesInOrder(t *testing.T) {
	g := &Interp{Stack: NewStack()}
	run(t, g, "cm", nums(1, 0, 0, 1, 10, 0))
	run(t, g, "cm", nums(2, 0, 0, 2, 0, 0))
	got := g.Stack.Current().CTM
	want := matrix.Matrix{1, 0, 0, 1, 10, 0}.Mul(matrix.Matrix{2, 0, 0, 2, 0, 0})
	if got != want {
		t.Errorf("CTM = %v, want %v", got, want)
	}
}

func TestTextPositioningOperators(t *testing.T) {
	g := &Interp{Stack: NewStack()}
	run(t, g, "BT", nil)
	run(t, g, "Td", nums(100, 700))
	st := g.Stack.Current()
	if st.TextMatrix[4] != 100 || st.TextMatrix[5] != 700 {
		t.Fatalf("TextMatrix after Td = %v", st.TextMatrix)
	}

	run(t, g, "TD", nums(0, -20))
	st = g.Stack.Current()
	if st.Leading != 20 {
		t.Errorf("Leading after TD = %v, want 20", st.Leading)
	}
	if st.TextMatrix[5] != 680 {
		t.Errorf("TextMatrix.f after TD = %v, want 680", st.TextMatrix[5])
	}

	run(t, g, "T*", nil)
	st = g.Stack.Current()
	if st.TextMatrix[5] != 660 {
		t.Errorf("TextMatrix.f after T* = %v, want 660", st.TextMatrix[5])
	}
}

func TestSetFontAndRenderMode(t *testing.T) {
	g := &Interp{Stack: NewStack()}
	run(t, g, "Tf", []pdf.Object{pdf.Name("F1"), pdf.NewNumberFromFloat(12)})
	st := g.Stack.Current()
	if st.FontName != "F1" || st.FontSize != 12 {
		t.Errorf("Tf result = %s %v", st.FontName, st.FontSize)
	}
	run(t, g, "Tr", nums(7))
	if g.Stack.Current().TextRenderMode != 7 {
		t.Errorf("Tr result = %d, want 7", g.Stack.Current().TextRenderMode)
	}
}

func TestColorSpaceResetsColor(t *testing.T) {
	g := &Interp{Stack: NewStack()}
	run(t, g, "rg", nums(1, 0, 0))
	run(t, g, "cs", []pdf.Object{pdf.Name("DeviceCMYK")})
	st := g.Stack.Current()
	if st.NonStrokeColorSpace != "DeviceCMYK" {
		t.Errorf("NonStrokeColorSpace = %s", st.NonStrokeColorSpace)
	}
	if len(st.NonStrokeColor) != 4 || st.NonStrokeColor[0] != 0 || st.NonStrokeColor[1] != 0 || st.NonStrokeColor[2] != 0 || st.NonStrokeColor[3] != 1 {
		t.Errorf("NonStrokeColor = %v, want CMYK black [0 0 0 1] after cs", st.NonStrokeColor)
	}
}

func TestMarkedContentAndCompatibilityNesting(t *testing.T) {
	g := &Interp{Stack: NewStack()}
	run(t, g, "BDC", []pdf.Object{pdf.Name("Span"), pdf.Dict{}})
	run(t, g, "BMC", []pdf.Object{pdf.Name("Artifact")})
	run(t, g, "EMC", nil)
	run(t, g, "EMC", nil)
	run(t, g, "EMC", nil) // past zero, tolerated

	run(t, g, "BX", nil)
	run(t, g, "BX", nil)
	if !g.Stack.InCompatibilitySection() {
		t.Fatal("expected to be inside a compatibility section")
	}
	run(t, g, "EX", nil)
	if !g.Stack.InCompatibilitySection() {
		t.Fatal("nested BX/EX should still report inside after one EX")
	}
	run(t, g, "EX", nil)
	if g.Stack.InCompatibilitySection() {
		t.Fatal("expected to be outside after matching EX count")
	}
}

type stubFont struct{}

func (stubFont) Width(code byte) float64 { return 600 }
func (stubFont) Decode(code byte) rune   { return rune(code) }

type stubResources struct {
	fonts    map[string]Font
	forms    map[string][]byte
	formRes  map[string]Resources
	imageBuf map[string][]byte
}

func (r stubResources) Font(name string) (Font, bool) {
	f, ok := r.fonts[name]
	return f, ok
}

func (r stubResources) XObject(name string) ([]byte, Resources, bool, bool) {
	if c, ok := r.forms[name]; ok {
		return c, r.formRes[name], true, true
	}
	if b, ok := r.imageBuf[name]; ok {
		return b, nil, false, true
	}
	return nil, nil, false, false
}

type stubSink struct {
	glyphs []rune
	images []string
}

func (s *stubSink) GlyphRendered(ch rune, bbox pdf.Rectangle, baseline [2]float64, font string, size float64) {
	s.glyphs = append(s.glyphs, ch)
}

func (s *stubSink) ImageRendered(name string, data []byte) {
	s.images = append(s.images, name)
}

func TestShowTextEmitsOneGlyphEventPerByteAndAdvancesPen(t *testing.T) {
	sink := &stubSink{}
	g := &Interp{
		Stack:     NewStack(),
		Resources: stubResources{fonts: map[string]Font{"F1": stubFont{}}},
		Sink:      sink,
	}
	run(t, g, "BT", nil)
	run(t, g, "Tf", []pdf.Object{pdf.Name("F1"), pdf.NewNumberFromFloat(12)})
	run(t, g, "Td", nums(100, 700))
	run(t, g, "Tj", []pdf.Object{pdf.String("Hi")})

	if len(sink.glyphs) != 2 || sink.glyphs[0] != 'H' || sink.glyphs[1] != 'i' {
		t.Fatalf("glyphs = %v", sink.glyphs)
	}
	wantAdvance := 2 * (600.0 / 1000 * 12)
	gotAdvance := g.Stack.Current().TextMatrix[4] - 100
	if math.Abs(gotAdvance-wantAdvance) > 1e-9 {
		t.Errorf("pen advance = %v, want %v", gotAdvance, wantAdvance)
	}
}

func TestShowTextArrayAppliesKerning(t *testing.T) {
	sink := &stubSink{}
	g := &Interp{
		Stack:     NewStack(),
		Resources: stubResources{fonts: map[string]Font{"F1": stubFont{}}},
		Sink:      sink,
	}
	run(t, g, "BT", nil)
	run(t, g, "Tf", []pdf.Object{pdf.Name("F1"), pdf.NewNumberFromFloat(12)})
	run(t, g, "TJ", []pdf.Object{pdf.Array{pdf.String("H"), pdf.NewNumberFromFloat(-100), pdf.String("i")}})

	if len(sink.glyphs) != 2 {
		t.Fatalf("glyphs = %v", sink.glyphs)
	}
	kerningAdvance := 100.0 / 1000 * 12
	glyphAdvance := 600.0 / 1000 * 12
	want := 2*glyphAdvance + kerningAdvance
	got := g.Stack.Current().TextMatrix[4]
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("TextMatrix.e = %v, want %v", got, want)
	}
}

func TestDoFormRecursesWithPushedState(t *testing.T) {
	sink := &stubSink{}
	formResources := stubResources{fonts: map[string]Font{"F2": stubFont{}}}
	g := &Interp{
		Stack: NewStack(),
		Resources: stubResources{
			forms:   map[string][]byte{"X1": []byte("1 0 0 RG")},
			formRes: map[string]Resources{"X1": formResources},
		},
		Sink: sink,
	}
	var sawResources Resources
	depthInsideForm := -1
	g.ExecuteForm = func(inner *Interp, content []byte, resources Resources) error {
		sawResources = resources
		depthInsideForm = inner.Stack.Depth()
		return nil
	}

	run(t, g, "Do", []pdf.Object{pdf.Name("X1")})

	if sawResources == nil {
		t.Fatal("ExecuteForm was not invoked")
	}
	if depthInsideForm != 1 {
		t.Errorf("depth inside form = %d, want 1 (one q from Do)", depthInsideForm)
	}
	if g.Stack.Depth() != 0 {
		t.Errorf("depth after Do = %d, want 0 (state restored)", g.Stack.Depth())
	}
}

func TestDoImageEmitsImageRenderEvent(t *testing.T) {
	sink := &stubSink{}
	g := &Interp{
		Stack:     NewStack(),
		Resources: stubResources{imageBuf: map[string][]byte{"Im1": {0xFF, 0xD8}}},
		Sink:      sink,
	}
	run(t, g, "Do", []pdf.Object{pdf.Name("Im1")})
	if len(sink.images) != 1 || sink.images[0] != "Im1" {
		t.Errorf("images = %v", sink.images)
	}
}

func TestDashPattern(t *testing.T) {
	g := &Interp{Stack: NewStack()}
	run(t, g, "d", []pdf.Object{pdf.Array{pdf.NewNumberFromFloat(3), pdf.NewNumberFromFloat(1)}, pdf.NewNumberFromFloat(0)})
	st := g.Stack.Current()
	if len(st.DashPattern) != 2 || st.DashPattern[0] != 3 || st.DashPattern[1] != 1 {
		t.Errorf("DashPattern = %v", st.DashPattern)
	}
}
