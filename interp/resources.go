// Package interp implements the page interpreter (component I): it
// concatenates a page's content streams, tokenizes them with
// internal/objscan, and dispatches each operator through the graphics
// package's registry, emitting events along the way.
package interp

import (
	"seehuhn.de/go/geom/vec"

	"github.com/abdullahmohammadkhan/ptext-go/events"
	"github.com/abdullahmohammadkhan/ptext-go/graphics"
	"github.com/abdullahmohammadkhan/ptext-go/transform"

	"github.com/abdullahmohammadkhan/ptext-go"
)

func vec2(p [2]float64) vec.Vec2 {
	return vec.Vec2{X: p[0], Y: p[1]}
}

// pageResources adapts a resolved resource dictionary to
// graphics.Resources, resolving Font and XObject entries lazily (most
// pages use only a handful of the resources they declare).
type pageResources struct {
	resolver *transform.Resolver
	dict     pdf.Dict
	fonts    map[string]graphics.Font
}

func newPageResources(r *transform.Resolver, dict pdf.Dict) *pageResources {
	return &pageResources{resolver: r, dict: dict, fonts: make(map[string]graphics.Font)}
}

func (p *pageResources) Font(name string) (graphics.Font, bool) {
	if f, ok := p.fonts[name]; ok {
		return f, true
	}
	fontsObj, ok := p.dict[pdf.Name("Font")]
	if !ok {
		return nil, false
	}
	fontsResolved, err := p.resolver.Resolve(fontsObj)
	if err != nil {
		return nil, false
	}
	fontsDict, ok := fontsResolved.(pdf.Dict)
	if !ok {
		return nil, false
	}
	entryObj, ok := fontsDict[pdf.Name(name)]
	if !ok {
		return nil, false
	}
	entry, err := p.resolver.Resolve(entryObj)
	if err != nil {
		return nil, false
	}
	dict, ok := entry.(pdf.Dict)
	if !ok {
		return nil, false
	}
	f, err := buildFont(p.resolver, dict)
	if err != nil {
		return nil, false
	}
	p.fonts[name] = f
	return f, true
}

func (p *pageResources) XObject(name string) ([]byte, graphics.Resources, bool, bool) {
	xobjObj, ok := p.dict[pdf.Name("XObject")]
	if !ok {
		return nil, nil, false, false
	}
	xobjResolved, err := p.resolver.Resolve(xobjObj)
	if err != nil {
		return nil, nil, false, false
	}
	xobjDict, ok := xobjResolved.(pdf.Dict)
	if !ok {
		return nil, nil, false, false
	}
	entryObj, ok := xobjDict[pdf.Name(name)]
	if !ok {
		return nil, nil, false, false
	}
	entry, err := p.resolver.Resolve(entryObj)
	if err != nil {
		return nil, nil, false, false
	}
	stm, ok := entry.(*pdf.Stream)
	if !ok {
		return nil, nil, false, false
	}

	subtype, _ := stm.Dict[pdf.Name("Subtype")].(pdf.Name)
	content, err := transform.DecodeContentStream(stm)
	if err != nil {
		return nil, nil, false, false
	}
	if subtype == "Form" {
		resDict, _ := stm.Dict[pdf.Name("Resources")].(pdf.Dict)
		if resDict == nil {
			resDict = p.dict
		}
		return content, newPageResources(p.resolver, resDict), true, true
	}
	return content, nil, false, true
}

func resolveFloatArray(r *transform.Resolver, obj pdf.Object) ([]float64, error) {
	resolved, err := r.Resolve(obj)
	if err != nil {
		return nil, err
	}
	arr, ok := resolved.(pdf.Array)
	if !ok {
		return nil, &pdf.TypeError{Expected: "Array", Received: "other"}
	}
	out := make([]float64, len(arr))
	for i, elem := range arr {
		resolvedElem, err := r.Resolve(elem)
		if err != nil {
			return nil, err
		}
		n, ok := resolvedElem.(pdf.Number)
		if !ok {
			return nil, &pdf.TypeError{Expected: "Number", Received: "other"}
		}
		out[i] = n.Float64()
	}
	return out, nil
}

// eventSink adapts an events.Bus to graphics.Sink for one page.
type eventSink struct {
	bus        *events.Bus
	pageNumber int
}

func (s *eventSink) GlyphRendered(ch rune, bbox pdf.Rectangle, baseline [2]float64, font string, size float64) {
	s.bus.Emit(events.Event{
		Kind:       events.GlyphRender,
		PageNumber: s.pageNumber,
		Char:       ch,
		BBox:       bbox,
		Baseline:   vec2(baseline),
		Font:       font,
		FontSize:   size,
	})
}

func (s *eventSink) ImageRendered(name string, data []byte) {
	s.bus.Emit(events.Event{
		Kind:       events.ImageRender,
		PageNumber: s.pageNumber,
		ImageName:  name,
		ImageBytes: data,
	})
}
