// Package info normalizes lookups into a document's trailer /Info
// dictionary (component L): each accessor resolves the key, type-asserts
// it as a string, and returns ("", false) on any missing or mistyped
// path rather than panicking, resolving the open question of how a
// malformed /Info should be handled.
package info

import (
	"github.com/abdullahmohammadkhan/ptext-go"
	"github.com/abdullahmohammadkhan/ptext-go/transform"
)

// DocumentInfo wraps a resolved /Info dictionary, or none at all when
// the trailer omitted it or it failed to resolve to a Dict.
type DocumentInfo struct {
	dict pdf.Dict
}

// Load resolves doc's trailer /Info entry. A missing or unresolvable
// /Info yields a DocumentInfo whose accessors all report not-found,
// matching how a PDF with no document information is still valid.
func Load(doc *transform.Document) *DocumentInfo {
	obj, ok := doc.Trailer[pdf.Name("Info")]
	if !ok {
		return &DocumentInfo{}
	}
	resolved, err := doc.Resolver.Resolve(obj)
	if err != nil {
		return &DocumentInfo{}
	}
	dict, ok := resolved.(pdf.Dict)
	if !ok {
		return &DocumentInfo{}
	}
	return &DocumentInfo{dict: dict}
}

func (d *DocumentInfo) lookup(key pdf.Name) (string, bool) {
	if d.dict == nil {
		return "", false
	}
	obj, ok := d.dict[key]
	if !ok {
		return "", false
	}
	s, ok := obj.(pdf.String)
	if !ok {
		return "", false
	}
	return string(s), true
}

func (d *DocumentInfo) Title() (string, bool)    { return d.lookup("Title") }
func (d *DocumentInfo) Author() (string, bool)   { return d.lookup("Author") }
func (d *DocumentInfo) Subject() (string, bool)  { return d.lookup("Subject") }
func (d *DocumentInfo) Keywords() (string, bool) { return d.lookup("Keywords") }
func (d *DocumentInfo) Creator() (string, bool)  { return d.lookup("Creator") }
func (d *DocumentInfo) Producer() (string, bool) { return d.lookup("Producer") }

// CreationDate and ModDate are returned as the raw PDF date string
// (D:YYYYMMDDHHmmSS...); parsing into time.Time is left to callers that
// need it, since a malformed date string should not make the rest of
// the document info unavailable.
func (d *DocumentInfo) CreationDate() (string, bool) { return d.lookup("CreationDate") }
func (d *DocumentInfo) ModDate() (string, bool)      { return d.lookup("ModDate") }
