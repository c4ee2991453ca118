package events

import (
	"testing"

	"github.com/abdullahmohammadkhan/ptext-go"
)

func TestListenerFuncAdapter(t *testing.T) {
	var got Event
	var l Listener = ListenerFunc(func(e Event) { got = e })
	l.EventOccurred(Event{Kind: GlyphRender, Char: 'H'})
	if got.Kind != GlyphRender || got.Char != 'H' {
		t.Errorf("got %+v", got)
	}
}

// Invariant 5 (spec S8): paragraph bbox is the union of its line bboxes.
func TestRectangleUnionMatchesParagraphInvariant(t *testing.T) {
	line1 := pdf.Rectangle{LLx: 0, LLy: 10, URx: 50, URy: 20}
	line2 := pdf.Rectangle{LLx: 0, LLy: 0, URx: 60, URy: 10}
	got := line1.Union(line2)
	want := pdf.Rectangle{LLx: 0, LLy: 0, URx: 60, URy: 20}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		BeginPage:         "BeginPage",
		GlyphRender:       "GlyphRender",
		ParagraphRender:   "ParagraphRender",
		OrderedListRender: "OrderedListRender",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", k, got, want)
		}
	}
}
