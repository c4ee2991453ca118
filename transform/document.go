package transform

import (
	"io"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/abdullahmohammadkhan/ptext-go"
	"github.com/abdullahmohammadkhan/ptext-go/xref"
)

// Page is one materialized leaf of the pages tree: its own dictionary
// together with resources and media box inherited from ancestor /Pages
// nodes that did not set their own (the standard PDF inheritance rule).
type Page struct {
	Dict      pdf.Dict
	Resources pdf.Dict
	MediaBox  pdf.Array
}

// Document is the root of the materialized object graph (component E):
// the trailer, the XREF it was parsed from, a resolver for the rest of
// the graph, and the eagerly-flattened page list in document order.
type Document struct {
	Trailer  pdf.Dict
	Resolver *Resolver
	Pages    []*Page
	table    *xref.Table
}

// ObjectNumbers returns every in-use object number in the document's
// XREF table, sorted ascending.
func (d *Document) ObjectNumbers() []int {
	return objectNumbers(d.table)
}

// inheritable keys copy down the pages tree from a /Pages node to its
// children when the child does not define its own value.
var inheritableKeys = []pdf.Name{"Resources", "MediaBox", "CropBox", "Rotate"}

// Load builds a Document from a parsed cross-reference table and the
// seekable source it was parsed from: it resolves the trailer's /Root,
// walks the catalog's /Pages tree, and flattens it into Pages in
// left-to-right document order.
func Load(src io.ReadSeeker, table *xref.Table) (*Document, error) {
	r := NewResolver(src, table)

	doc := &Document{Trailer: table.Trailer, Resolver: r, table: table}

	rootObj, ok := table.Trailer[pdf.Name("Root")]
	if !ok {
		return doc, nil
	}
	catalog, err := r.Resolve(rootObj)
	if err != nil {
		return nil, err
	}
	catalogDict, ok := catalog.(pdf.Dict)
	if !ok {
		return doc, nil
	}
	pagesObj, ok := catalogDict[pdf.Name("Pages")]
	if !ok {
		return doc, nil
	}

	visited := make(map[pdf.Reference]bool)
	var pages []*Page
	if err := walkPagesTree(r, pagesObj, pdf.Dict{}, visited, &pages); err != nil {
		return nil, err
	}
	doc.Pages = pages
	return doc, nil
}

// walkPagesTree recurses the /Pages tree. inherited carries the nearest
// ancestor values of the inheritable attributes; a /Page node overlays
// its own values on top before becoming a leaf.
func walkPagesTree(r *Resolver, node pdf.Object, inherited pdf.Dict, visited map[pdf.Reference]bool, out *[]*Page) error {
	if ref, ok := node.(pdf.Reference); ok {
		if visited[ref] {
			return nil // a /Parent or /Kids cycle; never recurse twice into the same node
		}
		visited[ref] = true
	}

	resolved, err := r.Resolve(node)
	if err != nil {
		return err
	}
	dict, ok := resolved.(pdf.Dict)
	if !ok {
		return nil
	}

	merged := mergeInherited(inherited, dict)

	typeName, _ := dict[pdf.Name("Type")].(pdf.Name)
	kidsObj, hasKids := dict[pdf.Name("Kids")]
	if typeName == "Pages" || (hasKids && typeName != "Page") {
		kids, err := r.Resolve(kidsObj)
		if err != nil {
			return err
		}
		arr, ok := kids.(pdf.Array)
		if !ok {
			return nil
		}
		for _, kid := range arr {
			if err := walkPagesTree(r, kid, merged, visited, out); err != nil {
				return err
			}
		}
		return nil
	}

	page := &Page{Dict: dict}
	if res, ok := merged[pdf.Name("Resources")].(pdf.Dict); ok {
		page.Resources = res
	}
	if mb, ok := merged[pdf.Name("MediaBox")].(pdf.Array); ok {
		page.MediaBox = mb
	}
	*out = append(*out, page)
	return nil
}

func mergeInherited(parent pdf.Dict, child pdf.Dict) pdf.Dict {
	merged := pdf.Dict{}
	for k, v := range parent {
		merged[k] = v
	}
	for _, k := range inheritableKeys {
		if v, ok := child[k]; ok {
			merged[k] = v
		}
	}
	return merged
}

// ContentBytes concatenates a page's /Contents streams in array order
// with a single ASCII-space separator between them (4.I), decoding each
// stream's filter chain along the way. A missing or malformed /Contents
// yields an empty content stream rather than an error, matching how a
// page with no marking operators is still a valid, empty page.
func (d *Document) ContentBytes(p *Page) ([]byte, error) {
	obj, ok := p.Dict[pdf.Name("Contents")]
	if !ok {
		return nil, nil
	}
	resolved, err := d.Resolver.Resolve(obj)
	if err != nil {
		return nil, err
	}

	var streams []*pdf.Stream
	switch v := resolved.(type) {
	case *pdf.Stream:
		streams = []*pdf.Stream{v}
	case pdf.Array:
		for _, elem := range v {
			r, err := d.Resolver.Resolve(elem)
			if err != nil {
				return nil, err
			}
			if stm, ok := r.(*pdf.Stream); ok {
				streams = append(streams, stm)
			}
		}
	default:
		return nil, nil
	}

	var out []byte
	for i, stm := range streams {
		b, err := DecodeContentStream(stm)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			out = append(out, ' ')
		}
		out = append(out, b...)
	}
	return out, nil
}

// objectNumbers returns the in-use object numbers of table, sorted, for
// callers (diagnostics, the CLI harness) that want a stable traversal
// order over the whole file rather than just the page tree.
func objectNumbers(table *xref.Table) []int {
	inUse := make(map[int]xref.Entry, len(table.Entries))
	for n, e := range table.Entries {
		if e.Type != xref.Free {
			inUse[n] = e
		}
	}
	nums := maps.Keys(inUse)
	slices.Sort(nums)
	return nums
}
