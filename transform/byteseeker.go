package transform

import (
	"errors"
	"io"
)

// byteSeeker adapts an in-memory byte slice to io.ReadSeeker, for reading
// object-stream members through the same objscan.Scanner used for
// on-disk objects.
type byteSeeker struct {
	b   []byte
	pos int64
}

func newByteSeeker(b []byte) *byteSeeker {
	return &byteSeeker{b: b}
}

func (s *byteSeeker) Read(p []byte) (int, error) {
	if s.pos >= int64(len(s.b)) {
		return 0, io.EOF
	}
	n := copy(p, s.b[s.pos:])
	s.pos += int64(n)
	return n, nil
}

func (s *byteSeeker) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = s.pos + offset
	case io.SeekEnd:
		abs = int64(len(s.b)) + offset
	default:
		return 0, errors.New("transform: invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("transform: negative position")
	}
	s.pos = abs
	return abs, nil
}
