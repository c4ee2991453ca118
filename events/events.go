// Package events defines the canonical rendering-event kinds emitted
// during page interpretation (component J) and the listener contract
// external collaborators (keyword extraction, structural inference) plug
// into.
package events

import (
	"seehuhn.de/go/geom/vec"

	"github.com/abdullahmohammadkhan/ptext-go"
)

// Kind discriminates the Event variants.
type Kind int

const (
	BeginPage Kind = iota
	EndPage
	GlyphRender
	LineRender
	ParagraphRender
	BulletListRender
	OrderedListRender
	// ImageRender is emitted by the Do operator for an Image XObject
	// (expansion: rasterization is a Non-goal, so this carries the
	// decoded payload and metadata only, never a decoded raster).
	ImageRender
)

func (k Kind) String() string {
	switch k {
	case BeginPage:
		return "BeginPage"
	case EndPage:
		return "EndPage"
	case GlyphRender:
		return "GlyphRender"
	case LineRender:
		return "LineRender"
	case ParagraphRender:
		return "ParagraphRender"
	case BulletListRender:
		return "BulletListRender"
	case OrderedListRender:
		return "OrderedListRender"
	case ImageRender:
		return "ImageRender"
	default:
		return "Unknown"
	}
}

// Event is the discriminated record delivered to listeners. Exactly the
// fields relevant to Kind are populated; the rest are zero.
type Event struct {
	Kind Kind

	// BeginPage / EndPage
	PageNumber int

	// GlyphRender
	Char     rune
	Baseline vec.Vec2
	Font     string
	FontSize float64

	// GlyphRender, LineRender, ParagraphRender share BBox.
	BBox pdf.Rectangle

	// LineRender
	Glyphs []Event

	// ParagraphRender, and the Paragraphs field of the two list kinds.
	Lines      []Event
	Paragraphs []Event

	// ImageRender
	ImageName  string
	ImageBytes []byte
}

// Listener is the external-collaborator contract (spec section 6):
// EventOccurred is delivered synchronously, once per event, in emission
// order. A listener must not block indefinitely and must not panic; the
// bus isolates and logs a panicking listener rather than letting it
// interrupt the other listeners or abort page interpretation.
type Listener interface {
	EventOccurred(Event)
}

// ListenerFunc adapts a plain function to the Listener interface.
type ListenerFunc func(Event)

func (f ListenerFunc) EventOccurred(e Event) { f(e) }
