// Package transform materializes the typed object graph (component E):
// lazy hydration of indirect references through the XREF table, and the
// catalog/pages tree that Document exposes flattened in document order.
// Objects carry no parent pointers: a value does not link back to the
// container that holds it.
package transform

import (
	"fmt"
	"io"
	"strconv"

	"github.com/abdullahmohammadkhan/ptext-go"
	"github.com/abdullahmohammadkhan/ptext-go/filter"
	"github.com/abdullahmohammadkhan/ptext-go/internal/objscan"
	"github.com/abdullahmohammadkhan/ptext-go/xref"
)

// cacheState distinguishes an in-progress resolution (inserted before the
// recursive hydration that produced it completes, per design note 9's
// cycle-memoization rule) from a finished one.
type cacheState int

const (
	resolving cacheState = iota
	resolved
)

type cacheEntry struct {
	state cacheState
	value pdf.Object
}

type refKey struct {
	number     int
	generation int
}

// Resolver turns indirect references into objects, reading through a
// fixed xref.Table over a shared seekable source. It is not safe for
// concurrent use: the object cache and the underlying source position
// are both owned exclusively by the caller's goroutine (spec section 5).
type Resolver struct {
	src   io.ReadSeeker
	table *xref.Table
	cache map[refKey]*cacheEntry

	// objStreamCache holds the decoded member objects of an object
	// stream, keyed by its own object number, so that resolving several
	// references into the same compressed stream only decodes it once.
	objStreamCache map[int][]pdf.Object
}

// NewResolver builds a Resolver over an already-parsed cross-reference
// table and the same source it was parsed from.
func NewResolver(src io.ReadSeeker, table *xref.Table) *Resolver {
	return &Resolver{
		src:            src,
		table:          table,
		cache:          make(map[refKey]*cacheEntry),
		objStreamCache: make(map[int][]pdf.Object),
	}
}

// Resolve follows an object graph value one level: scalars, arrays,
// dicts, and streams are returned unchanged; a Reference is looked up
// through the XREF and memoized. A reference to a free or unknown object
// number resolves to pdf.Null{}, matching 4.D step 2.
func (r *Resolver) Resolve(obj pdf.Object) (pdf.Object, error) {
	ref, ok := obj.(pdf.Reference)
	if !ok {
		return obj, nil
	}
	return r.resolveRef(ref)
}

func (r *Resolver) resolveRef(ref pdf.Reference) (pdf.Object, error) {
	key := refKey{ref.Number, ref.Generation}
	if e, ok := r.cache[key]; ok {
		// Either a finished resolution or one still in progress higher
		// up the call stack (a cycle): returning the sentinel value in
		// both cases prevents infinite recursion per design note 9.
		return e.value, nil
	}

	entry, ok := r.table.Entries[ref.Number]
	if !ok || entry.Type == xref.Free {
		r.cache[key] = &cacheEntry{state: resolved, value: pdf.Null{}}
		return pdf.Null{}, nil
	}

	placeholder := &cacheEntry{state: resolving, value: pdf.Null{}}
	r.cache[key] = placeholder

	var value pdf.Object
	var err error
	switch entry.Type {
	case xref.InUse:
		value, err = r.readAtOffset(entry.Offset)
	case xref.Compressed:
		value, err = r.readFromObjectStream(entry.StreamObj, entry.StreamIndex)
	}
	if err != nil {
		delete(r.cache, key)
		return nil, err
	}

	placeholder.state = resolved
	placeholder.value = value
	return value, nil
}

func (r *Resolver) readAtOffset(offset int64) (pdf.Object, error) {
	if _, err := r.src.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}
	s, err := objscan.New(r.src)
	if err != nil {
		return nil, err
	}
	s.Length = r.resolveLength

	// "N G obj" header: three tokens consumed as plain lexer tokens via
	// ReadObject would misparse "obj" as an unexpected keyword, so read
	// the object number and generation with the lexer directly through
	// the Scanner's exposed Lexer, then expect the "obj" keyword.
	lx := s.Lexer()
	if _, err := lx.Next(); err != nil { // object number
		return nil, err
	}
	if _, err := lx.Next(); err != nil { // generation
		return nil, err
	}
	objTok, err := lx.Next()
	if err != nil {
		return nil, err
	}
	if objTok.Text != "obj" {
		return nil, &pdf.SyntaxError{Offset: offset, Message: "expected 'obj' keyword"}
	}

	return s.ReadObject()
}

// resolveLength lets stream bodies with an indirect /Length be read
// during general object resolution, the same bootstrap trick xref uses
// while it is still finding the xref table itself.
func (r *Resolver) resolveLength(obj pdf.Object) (int64, error) {
	ref, ok := obj.(pdf.Reference)
	if !ok {
		return 0, &pdf.TypeError{Expected: "Reference", Received: "other"}
	}
	resolved, err := r.resolveRef(ref)
	if err != nil {
		return 0, err
	}
	n, ok := resolved.(pdf.Number)
	if !ok {
		return 0, &pdf.TypeError{Expected: "integer Length", Received: "non-number"}
	}
	v, ok := n.Int()
	if !ok {
		return 0, &pdf.TypeError{Expected: "integer Length", Received: "non-integer"}
	}
	return v, nil
}

// readFromObjectStream resolves the parent object stream (itself
// possibly indirect-referenced elsewhere, but here addressed directly by
// object number per 4.D step 4), decodes it once, and slices out the
// nth member object.
func (r *Resolver) readFromObjectStream(streamObjNumber, index int) (pdf.Object, error) {
	members, ok := r.objStreamCache[streamObjNumber]
	if !ok {
		var err error
		members, err = r.decodeObjectStream(streamObjNumber)
		if err != nil {
			return nil, err
		}
		r.objStreamCache[streamObjNumber] = members
	}
	if index < 0 || index >= len(members) {
		return nil, &pdf.SyntaxError{Message: fmt.Sprintf("object stream %d has no member %d", streamObjNumber, index)}
	}
	return members[index], nil
}

func (r *Resolver) decodeObjectStream(streamObjNumber int) ([]pdf.Object, error) {
	entry, ok := r.table.Entries[streamObjNumber]
	if !ok || entry.Type != xref.InUse {
		return nil, &pdf.SyntaxError{Message: fmt.Sprintf("object stream %d is not an in-use object", streamObjNumber)}
	}
	obj, err := r.readAtOffset(entry.Offset)
	if err != nil {
		return nil, err
	}
	stm, ok := obj.(*pdf.Stream)
	if !ok {
		return nil, &pdf.TypeError{Expected: "Stream", Received: "other"}
	}

	n, err := r.intField(stm.Dict, "N")
	if err != nil {
		return nil, err
	}
	first, err := r.intField(stm.Dict, "First")
	if err != nil {
		return nil, err
	}

	decoded, err := filter.Decode(stm)
	if err != nil {
		return nil, err
	}

	header := decoded
	if int64(len(header)) < first {
		return nil, &pdf.SyntaxError{Message: "object stream header shorter than /First"}
	}

	offsets := make([]int64, n)
	fields := splitFields(header[:first])
	for i := 0; i < n; i++ {
		if 2*i+1 >= len(fields) {
			return nil, &pdf.SyntaxError{Message: "object stream header has too few fields"}
		}
		off, perr := strconv.ParseInt(fields[2*i+1], 10, 64)
		if perr != nil {
			return nil, &pdf.SyntaxError{Message: "object stream header has a non-numeric offset"}
		}
		offsets[i] = off
	}

	body := decoded[first:]
	members := make([]pdf.Object, n)
	for i := 0; i < n; i++ {
		start := offsets[i]
		if start < 0 || start > int64(len(body)) {
			return nil, &pdf.SyntaxError{Message: "object stream member offset out of range"}
		}
		sub := newByteSeeker(body[start:])
		ms, err := objscan.New(sub)
		if err != nil {
			return nil, err
		}
		ms.Length = r.resolveLength
		obj, err := ms.ReadObject()
		if err != nil {
			return nil, err
		}
		members[i] = obj
	}
	return members, nil
}

func (r *Resolver) intField(dict pdf.Dict, key pdf.Name) (int64, error) {
	obj, ok := dict[key]
	if !ok {
		return 0, &pdf.TypeError{Expected: string(key), Received: "missing"}
	}
	resolved, err := r.Resolve(obj)
	if err != nil {
		return 0, err
	}
	n, ok := resolved.(pdf.Number)
	if !ok {
		return 0, &pdf.TypeError{Expected: string(key) + " integer", Received: "non-number"}
	}
	v, ok := n.Int()
	if !ok {
		return 0, &pdf.TypeError{Expected: string(key) + " integer", Received: "non-integer"}
	}
	return v, nil
}

// splitFields splits the object stream header on PDF whitespace, which
// is all the header ever contains (pairs of decimal object numbers and
// byte offsets).
func splitFields(b []byte) []string {
	var fields []string
	start := -1
	isSpace := func(c byte) bool {
		switch c {
		case 0x00, 0x09, 0x0A, 0x0C, 0x0D, 0x20:
			return true
		}
		return false
	}
	for i, c := range b {
		if isSpace(c) {
			if start >= 0 {
				fields = append(fields, string(b[start:i]))
				start = -1
			}
		} else if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		fields = append(fields, string(b[start:]))
	}
	return fields
}
