// Package runlength decodes the PDF RunLengthDecode filter (PDF 32000-1,
// 7.4.5): a length byte 0-127 is followed by length+1 literal bytes
// copied verbatim; a length byte 129-255 is followed by one byte repeated
// 257-length times; length byte 128 marks end-of-data.
package runlength

import "io"

// Decode returns a Reader that decodes run-length-encoded data from r.
func Decode(r io.Reader) io.Reader {
	return &reader{r: r}
}

type reader struct {
	r       io.Reader
	pending []byte
	done    bool
}

func (d *reader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(d.pending) > 0 {
			c := copy(p[n:], d.pending)
			d.pending = d.pending[c:]
			n += c
			continue
		}
		if d.done {
			if n > 0 {
				return n, nil
			}
			return 0, io.EOF
		}

		var lenByte [1]byte
		if _, err := io.ReadFull(d.r, lenByte[:]); err != nil {
			if err == io.ErrUnexpectedEOF || err == io.EOF {
				d.done = true
				continue
			}
			return n, err
		}
		length := lenByte[0]

		switch {
		case length == 128:
			d.done = true
		case length < 128:
			count := int(length) + 1
			buf := make([]byte, count)
			if _, err := io.ReadFull(d.r, buf); err != nil {
				return n, err
			}
			d.pending = buf
		default: // 129-255
			var b [1]byte
			if _, err := io.ReadFull(d.r, b[:]); err != nil {
				return n, err
			}
			count := 257 - int(length)
			buf := make([]byte, count)
			for i := range buf {
				buf[i] = b[0]
			}
			d.pending = buf
		}
	}
	return n, nil
}
