package pdf

import (
	"fmt"
	"math/big"
)

// Object is the sum type for every value that can appear in a parsed PDF
// object graph: Null, Boolean, Number, Name, String, Array, Dict, *Stream,
// and Reference. See section 3 of the design notes for the full
// enumeration.
type Object interface {
	isObject()
}

// Null is the PDF null object.
type Null struct{}

func (Null) isObject() {}

// Boolean is a PDF boolean.
type Boolean bool

func (Boolean) isObject() {}

// Number is an arbitrary-precision decimal. PDF numbers are parsed and
// stored exactly (via [big.Rat]) so that round-tripping a value like
// 34.5 never drifts into 34.50000000001; [Number.Float64] is provided for
// call sites that only need a float for matrix or layout arithmetic.
type Number struct {
	r *big.Rat
}

// NewNumberFromInt builds a Number from an integer.
func NewNumberFromInt(i int64) Number {
	return Number{r: new(big.Rat).SetInt64(i)}
}

// NewNumberFromString parses a PDF numeric literal ("34.5", "-12", "+.5").
// The parse is big.Rat's SetString, which also accepts an exponent or an
// "a/b" fraction; PDF numeric literals use neither.
func NewNumberFromString(s string) (Number, bool) {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return Number{}, false
	}
	return Number{r: r}, true
}

// NewNumberFromFloat builds a Number from a float64, for call sites that
// compute a value rather than parse it (e.g. glyph displacement math).
func NewNumberFromFloat(f float64) Number {
	r := new(big.Rat)
	r.SetFloat64(f)
	return Number{r: r}
}

func (Number) isObject() {}

// Float64 returns the nearest float64 approximation, for matrix/geometry
// arithmetic where exact decimal fidelity is not required.
func (n Number) Float64() float64 {
	if n.r == nil {
		return 0
	}
	f, _ := n.r.Float64()
	return f
}

// Int returns the truncated integer value and whether n held an integer
// exactly (no fractional remainder).
func (n Number) Int() (int64, bool) {
	if n.r == nil {
		return 0, true
	}
	if !n.r.IsInt() {
		return new(big.Int).Quo(n.r.Num(), n.r.Denom()).Int64(), false
	}
	return n.r.Num().Int64(), true
}

func (n Number) String() string {
	if n.r == nil {
		return "0"
	}
	if n.r.IsInt() {
		return n.r.Num().String()
	}
	f, _ := n.r.Float64()
	return fmt.Sprintf("%g", f)
}

// Name is an interned PDF name object, e.g. /Type. The stored value does
// not include the leading slash and has already had #XX escapes decoded.
type Name string

func (Name) isObject() {}

// String is a raw PDF byte string (from a literal "(...)" or hex "<...>"
// token). The origin (literal vs hex) is not retained; both decode to the
// same byte sequence per spec.
type String []byte

func (String) isObject() {}

// Array is an ordered sequence of objects.
type Array []Object

func (Array) isObject() {}

// Dict is a mapping from name to object. Keys are stored without the
// leading slash.
type Dict map[Name]Object

func (Dict) isObject() {}

// Stream is a dictionary together with the raw (possibly filtered) bytes
// that followed the "stream" keyword in the source. DecodedBytes is filled
// in by the filter package the first time the stream is decoded, and
// decoding is idempotent: a second call returns the cached bytes.
type Stream struct {
	Dict         Dict
	Raw          []byte
	DecodedBytes []byte
	decoded      bool
}

func (*Stream) isObject() {}

// SetDecoded records the result of decoding the stream's filter chain, so
// that a later call to decode the same stream is a no-op (component C's
// idempotence requirement).
func (s *Stream) SetDecoded(b []byte) {
	s.DecodedBytes = b
	s.decoded = true
}

// IsDecoded reports whether SetDecoded has already run for this stream.
func (s *Stream) IsDecoded() bool {
	return s.decoded
}

// Reference is an indirect reference: either "object_number generation R"
// pointing at a byte offset once resolved via the XREF, or a reference
// into the Nth object of a compressed object stream. Exactly one of the
// two forms is meaningful for a given in-use entry; which one depends on
// the XREF entry the reference resolves through, not on the Reference
// value itself.
type Reference struct {
	Number     int
	Generation int
}

func (Reference) isObject() {}

func (r Reference) String() string {
	return fmt.Sprintf("%d %d R", r.Number, r.Generation)
}
