// Package asciihex decodes the PDF ASCIIHexDecode filter.
package asciihex

import (
	"errors"
	"io"
)

// Decode returns a Reader that decodes ASCIIHex-encoded data from r.
// Whitespace between digit pairs is ignored; a trailing odd digit is
// padded with a zero nibble; the stream ends at the first '>'.
func Decode(r io.Reader) io.Reader {
	return &reader{r: r}
}

type reader struct {
	r    io.Reader
	buf  [4096]byte
	pos  int
	nbuf int
	done bool
	err  error
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func nibble(b byte) byte {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	default:
		return b - 'A' + 10
	}
}

func isWhitespace(b byte) bool {
	switch b {
	case 0x00, 0x09, 0x0A, 0x0C, 0x0D, 0x20:
		return true
	}
	return false
}

func (r *reader) fill() (byte, error) {
	for {
		if r.pos < r.nbuf {
			b := r.buf[r.pos]
			r.pos++
			return b, nil
		}
		if r.err != nil {
			return 0, r.err
		}
		n, err := r.r.Read(r.buf[:])
		r.nbuf = n
		r.pos = 0
		if n == 0 {
			r.err = err
			if r.err == nil {
				r.err = io.EOF
			}
			return 0, r.err
		}
	}
}

func (r *reader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if r.done {
			return n, io.EOF
		}
		var hi, lo byte
		var haveHi bool
		for !haveHi {
			b, err := r.fill()
			if err != nil {
				if err == io.EOF {
					r.done = true
					return n, io.EOF
				}
				return n, err
			}
			if b == '>' {
				r.done = true
				return n, io.EOF
			}
			if isWhitespace(b) {
				continue
			}
			if !isHexDigit(b) {
				return n, errors.New("asciihex: invalid character")
			}
			hi = nibble(b)
			haveHi = true
		}

		loFound := false
		for !loFound {
			b, err := r.fill()
			if err != nil {
				if err == io.EOF {
					lo = 0
					loFound = true
					r.done = true
					break
				}
				return n, err
			}
			if b == '>' {
				lo = 0
				loFound = true
				r.done = true
				break
			}
			if isWhitespace(b) {
				continue
			}
			if !isHexDigit(b) {
				return n, errors.New("asciihex: invalid character")
			}
			lo = nibble(b)
			loFound = true
		}

		p[n] = hi<<4 | lo
		n++
	}
	return n, nil
}
