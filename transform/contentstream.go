package transform

import (
	"github.com/abdullahmohammadkhan/ptext-go"
	"github.com/abdullahmohammadkhan/ptext-go/filter"
)

// DecodeContentStream runs a page or form XObject content stream through
// its filter chain, the same idempotent decode every other stream in the
// graph goes through (component C). Exported for interp, which decodes
// Form XObject streams outside of a Page's own /Contents.
func DecodeContentStream(stm *pdf.Stream) ([]byte, error) {
	if stm.Dict[pdf.Name("Filter")] == nil {
		if stm.IsDecoded() {
			return stm.DecodedBytes, nil
		}
		stm.SetDecoded(stm.Raw)
		return stm.Raw, nil
	}
	return filter.Decode(stm)
}
