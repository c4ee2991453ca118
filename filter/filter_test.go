package filter

import (
	"bytes"
	"compress/flate"
	"testing"

	"github.com/abdullahmohammadkhan/ptext-go"
)

func flateCompress(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecodeFlateSingleFilter(t *testing.T) {
	raw := flateCompress(t, []byte("hello, pdf"))
	s := &pdf.Stream{
		Dict: pdf.Dict{pdf.Name("Filter"): pdf.Name("FlateDecode")},
		Raw:  raw,
	}
	got, err := Decode(s)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello, pdf" {
		t.Errorf("got %q", got)
	}
	if !s.IsDecoded() {
		t.Errorf("stream not marked decoded")
	}
}

func TestDecodeIsIdempotent(t *testing.T) {
	s := &pdf.Stream{
		Dict: pdf.Dict{pdf.Name("Filter"): pdf.Name("ASCIIHexDecode")},
		Raw:  []byte("68656c6c6f>"),
	}
	first, err := Decode(s)
	if err != nil {
		t.Fatal(err)
	}
	s.Raw = nil // prove the second call does not re-run the chain
	second, err := Decode(s)
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) || string(first) != "hello" {
		t.Errorf("got %q then %q", first, second)
	}
}

func TestDecodeFilterArrayChain(t *testing.T) {
	inner := flateCompress(t, []byte("chained"))
	hex := make([]byte, 0, len(inner)*2+1)
	for _, b := range inner {
		hex = append(hex, []byte(hexPair(b))...)
	}
	hex = append(hex, '>')

	s := &pdf.Stream{
		Dict: pdf.Dict{
			pdf.Name("Filter"): pdf.Array{pdf.Name("ASCIIHexDecode"), pdf.Name("FlateDecode")},
		},
		Raw: hex,
	}
	got, err := Decode(s)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "chained" {
		t.Errorf("got %q", got)
	}
}

func TestDecodeUnknownFilterReturnsFilterDecodeError(t *testing.T) {
	s := &pdf.Stream{
		Dict: pdf.Dict{pdf.Name("Filter"): pdf.Name("BogusDecode")},
		Raw:  []byte("x"),
	}
	_, err := Decode(s)
	if err == nil {
		t.Fatal("expected error")
	}
	var fde *pdf.FilterDecodeError
	if !asFilterDecodeError(err, &fde) {
		t.Fatalf("got %T, want *pdf.FilterDecodeError", err)
	}
}

func asFilterDecodeError(err error, target **pdf.FilterDecodeError) bool {
	if fde, ok := err.(*pdf.FilterDecodeError); ok {
		*target = fde
		return true
	}
	return false
}

func hexPair(b byte) string {
	const digits = "0123456789abcdef"
	return string([]byte{digits[b>>4], digits[b&0xf]})
}
