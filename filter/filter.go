// Package filter applies the stream filter chain named by a stream's
// /Filter and /DecodeParms entries (PDF 32000-1, 7.4), producing the
// decoded byte content used by every downstream component. Filters never
// write; this module only reads documents.
package filter

import (
	"bytes"
	"compress/flate"
	"compress/lzw"
	"fmt"
	"io"

	"github.com/abdullahmohammadkhan/ptext-go"
	"github.com/abdullahmohammadkhan/ptext-go/filter/ascii85"
	"github.com/abdullahmohammadkhan/ptext-go/internal/filter/asciihex"
	"github.com/abdullahmohammadkhan/ptext-go/internal/filter/predict"
	"github.com/abdullahmohammadkhan/ptext-go/internal/filter/runlength"
)

// Decode runs s's filter chain and returns the fully decoded bytes. The
// result is cached on s via [pdf.Stream.SetDecoded]; calling Decode again
// on the same stream returns the cached bytes without re-running the
// chain.
func Decode(s *pdf.Stream) ([]byte, error) {
	if s.IsDecoded() {
		return s.DecodedBytes, nil
	}

	names, err := filterNames(s.Dict[pdf.Name("Filter")])
	if err != nil {
		return nil, err
	}
	parmsList, err := decodeParmsList(s.Dict[pdf.Name("DecodeParms")], len(names))
	if err != nil {
		return nil, err
	}

	var r io.Reader = bytes.NewReader(s.Raw)
	for i, name := range names {
		r, err = applyOne(name, r, parmsList[i])
		if err != nil {
			s.SetDecoded(nil)
			return nil, &pdf.FilterDecodeError{Filter: string(name), Err: err}
		}
	}

	out, err := io.ReadAll(r)
	if err != nil {
		s.SetDecoded(nil)
		last := pdf.Name("")
		if len(names) > 0 {
			last = names[len(names)-1]
		}
		return nil, &pdf.FilterDecodeError{Filter: string(last), Err: err}
	}
	s.SetDecoded(out)
	return out, nil
}

func filterNames(obj pdf.Object) ([]pdf.Name, error) {
	switch v := obj.(type) {
	case nil:
		return nil, nil
	case pdf.Name:
		return []pdf.Name{v}, nil
	case pdf.Array:
		names := make([]pdf.Name, 0, len(v))
		for _, elem := range v {
			n, ok := elem.(pdf.Name)
			if !ok {
				return nil, &pdf.TypeError{Expected: "Name", Received: typeName(elem)}
			}
			names = append(names, n)
		}
		return names, nil
	default:
		return nil, &pdf.TypeError{Expected: "Name or Array", Received: typeName(obj)}
	}
}

func decodeParmsList(obj pdf.Object, n int) ([]pdf.Dict, error) {
	parms := make([]pdf.Dict, n)
	switch v := obj.(type) {
	case nil:
	case pdf.Dict:
		if n > 0 {
			parms[0] = v
		}
	case pdf.Array:
		for i := 0; i < n && i < len(v); i++ {
			if d, ok := v[i].(pdf.Dict); ok {
				parms[i] = d
			}
		}
	default:
		return nil, &pdf.TypeError{Expected: "Dict or Array", Received: typeName(obj)}
	}
	return parms, nil
}

func applyOne(name pdf.Name, r io.Reader, parms pdf.Dict) (io.Reader, error) {
	switch name {
	case "FlateDecode", "Fl":
		return withPredictor(flate.NewReader(r), parms)
	case "LZWDecode", "LZW":
		return withPredictor(lzw.NewReader(r, lzw.MSB, 8), parms)
	case "ASCII85Decode", "A85":
		return ascii85.Decode(r), nil
	case "ASCIIHexDecode", "AHx":
		return asciihex.Decode(r), nil
	case "RunLengthDecode", "RL":
		return runlength.Decode(r), nil
	case "DCTDecode", "DCT", "CCITTFaxDecode", "CCF", "JBIG2Decode", "JPXDecode":
		return nil, fmt.Errorf("filter: image filter %s is not decoded by this module", name)
	case "Crypt":
		return nil, &pdf.EncryptedDocumentError{}
	default:
		return nil, fmt.Errorf("filter: unknown filter %s", name)
	}
}

func withPredictor(r io.Reader, parms pdf.Dict) (io.Reader, error) {
	predictor := intParam(parms, "Predictor", 1)
	if predictor <= 1 {
		return r, nil
	}
	p := predict.Params{
		Predictor:        predictor,
		Colors:           intParam(parms, "Colors", 1),
		BitsPerComponent: intParam(parms, "BitsPerComponent", 8),
		Columns:          intParam(parms, "Columns", 1),
	}
	return predict.Decode(r, p)
}

func intParam(parms pdf.Dict, key pdf.Name, def int) int {
	if parms == nil {
		return def
	}
	num, ok := parms[key].(pdf.Number)
	if !ok {
		return def
	}
	i, _ := num.Int()
	return int(i)
}

func typeName(obj pdf.Object) string {
	switch obj.(type) {
	case nil:
		return "nil"
	case pdf.Null:
		return "Null"
	case pdf.Boolean:
		return "Boolean"
	case pdf.Number:
		return "Number"
	case pdf.Name:
		return "Name"
	case pdf.String:
		return "String"
	case pdf.Array:
		return "Array"
	case pdf.Dict:
		return "Dict"
	case *pdf.Stream:
		return "Stream"
	case pdf.Reference:
		return "Reference"
	default:
		return "unknown"
	}
}
