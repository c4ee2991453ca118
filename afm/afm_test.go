package afm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A minimal but well-formed AFM fixture exercising every field 4.K
// names: scalar header keys plus a C/CH/WX/N character-metrics block.
const sampleAFM = `StartFontMetrics 4.1
FontName Helvetica-Sample
FamilyName Helvetica
Ascender 718
Descender -207
CapHeight 718
XHeight 523
StemV 88
MissingWidth 278
StartCharMetrics 3
C 72 ; WX 722 ; N H ;
C 105 ; WX 278 ; N i ;
C -1 ; WX 600 ; N adieresis ;
EndCharMetrics
EndFontMetrics
`

func TestParseReadsHeaderAndCharMetrics(t *testing.T) {
	m, err := Parse(strings.NewReader(sampleAFM))
	if err != nil {
		t.Fatal(err)
	}
	if m.FontName != "Helvetica-Sample" {
		t.Errorf("FontName = %q", m.FontName)
	}
	if m.Ascender != 718 || m.Descender != -207 {
		t.Errorf("Ascender/Descender = %v/%v", m.Ascender, m.Descender)
	}
	if m.MissingWidth != 278 {
		t.Errorf("MissingWidth = %v", m.MissingWidth)
	}

	h, ok := m.ByCode(72)
	if !ok || h.Width != 722 || h.Name != "H" {
		t.Errorf("ByCode(72) = %+v, %v", h, ok)
	}
	i, ok := m.ByName("i")
	if !ok || i.Width != 278 {
		t.Errorf("ByName(i) = %+v, %v", i, ok)
	}
	if _, ok := m.ByCode(-1); ok {
		t.Error("a glyph with no intrinsic code must not be indexed by code -1")
	}
	if m.FirstChar != 72 || m.LastChar != 105 {
		t.Errorf("FirstChar/LastChar = %d/%d, want 72/105", m.FirstChar, m.LastChar)
	}
}

func TestParseRejectsMissingBounds(t *testing.T) {
	_, err := Parse(strings.NewReader("FontName X\n"))
	if err == nil {
		t.Fatal("expected an error for a file missing StartFontMetrics/EndFontMetrics")
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	cases := []string{"Helvetica-Bold", "ABCdef123", "already-UPPER"}
	for _, c := range cases {
		once := Normalize(c)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize(%q) = %q, Normalize(that) = %q", c, once, twice)
		}
	}
	if Normalize("Helvetica-Bold") != "HELVETICABOLD" {
		t.Errorf("Normalize(Helvetica-Bold) = %q", Normalize("Helvetica-Bold"))
	}
}

func TestLoadAndCacheReturnsSameInstanceOnSecondCall(t *testing.T) {
	name := "Test-Cache-Font-" + t.Name()
	first, err := LoadAndCache(name, strings.NewReader(sampleAFM))
	require.NoError(t, err)
	second, err := LoadAndCache(name, strings.NewReader("garbage that would fail to parse"))
	require.NoError(t, err)
	assert.Same(t, first, second, "second LoadAndCache call should have returned the cached Metrics, not reparsed")

	cached, ok := Lookup(name)
	assert.True(t, ok)
	assert.Same(t, first, cached, "Lookup did not return the cached entry")
}

func TestSimpleFontWidthAndDecode(t *testing.T) {
	m, err := Parse(strings.NewReader(sampleAFM))
	if err != nil {
		t.Fatal(err)
	}
	f := NewSimpleFont(m, nil)

	if w := f.Width('H'); w != 722 {
		t.Errorf("Width('H') = %v, want 722", w)
	}
	if ch := f.Decode('H'); ch != 'H' {
		t.Errorf("Decode('H') = %q, want 'H'", ch)
	}

	// An undeclared code falls back to MissingWidth.
	if w := f.Width('Z'); w != 278 {
		t.Errorf("Width('Z') = %v, want MissingWidth 278", w)
	}
}

func TestSimpleFontDifferencesOverrideDefaultEncoding(t *testing.T) {
	m, err := Parse(strings.NewReader(sampleAFM))
	if err != nil {
		t.Fatal(err)
	}
	f := NewSimpleFont(m, map[byte]string{'X': "i"})
	if w := f.Width('X'); w != 278 {
		t.Errorf("Width('X') with Differences override = %v, want 278 (the width of 'i')", w)
	}
}
