// Package ascii85 decodes the PDF ASCII85Decode filter. Encoding is not
// implemented: this module only reads documents, it never writes them.
package ascii85

import (
	"errors"
	"io"
)

// Decode returns a Reader that decodes ASCII85-encoded data from r,
// including the "z" run-of-zeros shorthand and the "~>" end marker.
func Decode(r io.Reader) io.Reader {
	return &reader{r: r}
}

type reader struct {
	r              io.Reader
	immediateError error
	delayedError   error
	buf            [512]byte
	outbuf         [4]byte
	leftover       []byte
	pos, nbuf      int
	v              uint32
	k              int
	isEnd          bool
}

func (r *reader) Read(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}
	if r.immediateError != nil {
		return 0, r.immediateError
	}

	if len(r.leftover) > 0 {
		n = copy(p, r.leftover)
		r.leftover = r.leftover[n:]
	}

	for n < len(p) {
		for r.pos == r.nbuf && r.delayedError == nil {
			r.nbuf, r.delayedError = r.r.Read(r.buf[:])
			r.pos = 0
			if r.delayedError == io.EOF {
				r.delayedError = io.ErrUnexpectedEOF
			}
		}
		if r.pos == r.nbuf {
			r.immediateError = r.delayedError
			return n, r.immediateError
		}

		for r.pos < r.nbuf {
			c := r.buf[r.pos]
			r.pos++

			if r.isEnd {
				if c == '>' {
					r.immediateError = io.EOF
				} else {
					r.immediateError = errors.New("ascii85: invalid end marker")
				}
				return n, r.immediateError
			}

			if c >= '!' && c < '!'+85 {
				r.v = r.v*85 + uint32(c-'!')
				r.k++
			} else if r.k == 0 && c == 'z' {
				r.v = 0
				r.k = 5
			} else if isSpace(c) {
				continue
			} else if c == '~' {
				switch r.k {
				case 0:
					// nothing pending
				case 1:
					r.immediateError = errors.New("ascii85: unexpected end marker")
					return n, r.immediateError
				default:
					for i := r.k; i < 5; i++ {
						r.v = r.v*85 + 84
					}
					r.outbuf[0] = byte(r.v >> 24)
					r.outbuf[1] = byte(r.v >> 16)
					r.outbuf[2] = byte(r.v >> 8)
					r.outbuf[3] = byte(r.v)
					l := copy(p[n:], r.outbuf[:r.k-1])
					n += l
					if l < r.k-1 {
						r.leftover = r.outbuf[l : r.k-1]
					}
					r.k = 0
				}
				r.isEnd = true
				continue
			} else {
				r.immediateError = errors.New("ascii85: invalid character")
				return n, r.immediateError
			}

			if r.k == 5 {
				r.outbuf[0] = byte(r.v >> 24)
				r.outbuf[1] = byte(r.v >> 16)
				r.outbuf[2] = byte(r.v >> 8)
				r.outbuf[3] = byte(r.v)
				r.k = 0
				r.v = 0

				l := copy(p[n:], r.outbuf[:])
				n += l
				if l < 4 {
					r.leftover = r.outbuf[l:]
				}
				break
			}
		}
	}
	return n, r.immediateError
}

func isSpace(c byte) bool {
	switch c {
	case 0, 9, 10, 12, 13, 32:
		return true
	default:
		return false
	}
}
