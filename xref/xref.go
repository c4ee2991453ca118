// Package xref locates and parses a PDF's cross-reference information
// (component D): the classical xref table, cross-reference streams, and
// the Prev-chain of incremental updates that links them together.
package xref

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/bits-and-blooms/bitset"

	"github.com/abdullahmohammadkhan/ptext-go"
	"github.com/abdullahmohammadkhan/ptext-go/filter"
	"github.com/abdullahmohammadkhan/ptext-go/internal/lexer"
	"github.com/abdullahmohammadkhan/ptext-go/internal/objscan"
)

// EntryType distinguishes the three kinds of cross-reference entry a PDF
// may record for an object number.
type EntryType int

const (
	// Free means the object number is on the free list; it has no value.
	Free EntryType = iota
	// InUse means the object lives at Offset in the file.
	InUse
	// Compressed means the object is the StreamIndex'th object stored
	// inside the object stream StreamObj.
	Compressed
)

// Entry is one resolved cross-reference record.
type Entry struct {
	Type        EntryType
	Offset      int64
	Generation  int
	StreamObj   int
	StreamIndex int
}

// Table is the fully merged cross-reference table: the newest entry for
// every object number reachable by following Prev links from the final
// trailer, plus the combined trailer dictionary (keys from the newest
// section win, per PDF 32000-1 7.5.8.4).
type Table struct {
	Entries map[int]Entry
	Trailer pdf.Dict
}

const startXRefWindow = 1024

// Parse locates the "startxref" keyword, walks the resulting chain of
// xref sections (classical tables and/or xref streams, newest first via
// their /Prev links), and returns the merged table. An entry already seen
// while walking the chain is never overwritten: the first (newest)
// section to mention an object number wins, which is what makes the
// merge idempotent and order-independent with respect to re-parsing.
func Parse(rs io.ReadSeeker) (*Table, error) {
	start, err := findStartXRef(rs)
	if err != nil {
		return nil, err
	}

	table := &Table{Entries: make(map[int]Entry)}
	seen := bitset.New(0)
	visitedSections := make(map[int64]bool)

	next := start
	for next >= 0 {
		if visitedSections[next] {
			break
		}
		visitedSections[next] = true

		if _, err := rs.Seek(next, io.SeekStart); err != nil {
			return nil, err
		}

		prev, trailer, err := parseSection(rs, table, seen)
		if err != nil {
			return nil, err
		}

		for k, v := range trailer {
			if _, exists := table.Trailer[k]; !exists {
				if table.Trailer == nil {
					table.Trailer = pdf.Dict{}
				}
				table.Trailer[k] = v
			}
		}

		next = prev
	}

	if table.Trailer == nil {
		return nil, &pdf.SyntaxError{Offset: start, Message: "no trailer found"}
	}
	if _, encrypted := table.Trailer[pdf.Name("Encrypt")]; encrypted {
		return nil, &pdf.EncryptedDocumentError{}
	}
	return table, nil
}

func findStartXRef(rs io.ReadSeeker) (int64, error) {
	size, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}

	readSize := int64(startXRefWindow)
	for {
		if readSize > size {
			readSize = size
		}
		if _, err := rs.Seek(-readSize, io.SeekEnd); err != nil {
			return 0, err
		}
		buf := make([]byte, readSize)
		if _, err := io.ReadFull(rs, buf); err != nil {
			return 0, err
		}

		idx := bytes.LastIndex(buf, []byte("startxref"))
		if idx != -1 {
			return parseTrailingOffset(buf[idx+len("startxref"):])
		}
		if readSize >= size {
			return 0, &pdf.StartXRefNotFoundError{}
		}
		readSize *= 2
	}
}

func parseTrailingOffset(b []byte) (int64, error) {
	i := 0
	for i < len(b) && isWhitespace(b[i]) {
		i++
	}
	start := i
	for i < len(b) && b[i] >= '0' && b[i] <= '9' {
		i++
	}
	if start == i {
		return 0, &pdf.StartXRefNotFoundError{}
	}
	return strconv.ParseInt(string(b[start:i]), 10, 64)
}

func isWhitespace(b byte) bool {
	switch b {
	case 0x00, 0x09, 0x0A, 0x0C, 0x0D, 0x20:
		return true
	}
	return false
}

// parseSection reads one xref section at the current position of rs,
// recording every object number it names that isn't already in
// table.Entries, and returns that section's /Prev offset (-1 if absent)
// together with its trailer dictionary.
func parseSection(rs io.ReadSeeker, table *Table, seen *bitset.BitSet) (int64, pdf.Dict, error) {
	s, err := objscan.New(rs)
	if err != nil {
		return 0, nil, err
	}

	mark := s.Tell()
	tok, err := s.Lexer().Next()
	if err != nil {
		return 0, nil, err
	}
	if tok.Kind == lexer.Other && tok.Text == "xref" {
		return parseClassicalTable(s, table, seen)
	}
	if err := s.Seek(mark); err != nil {
		return 0, nil, err
	}
	return parseXRefStream(s, table, seen)
}

func parseClassicalTable(s *objscan.Scanner, table *Table, seen *bitset.BitSet) (int64, pdf.Dict, error) {
	for {
		mark := s.Tell()
		tok, err := s.Lexer().Next()
		if err != nil {
			return 0, nil, err
		}
		if tok.Kind == lexer.Other && tok.Text == "trailer" {
			break
		}
		if err := s.Seek(mark); err != nil {
			return 0, nil, err
		}

		startTok, err := s.Lexer().Next()
		if err != nil || startTok.Kind != lexer.Number {
			return 0, nil, &pdf.SyntaxError{Offset: s.Tell(), Message: "expected xref subsection header"}
		}
		countTok, err := s.Lexer().Next()
		if err != nil || countTok.Kind != lexer.Number {
			return 0, nil, &pdf.SyntaxError{Offset: s.Tell(), Message: "expected xref subsection count"}
		}
		startNum, _ := pdf.NewNumberFromString(startTok.Text)
		countNum, _ := pdf.NewNumberFromString(countTok.Text)
		start, _ := startNum.Int()
		count, _ := countNum.Int()

		if err := s.Lexer().SkipWhitespaceAndComments(); err != nil {
			return 0, nil, err
		}
		line := make([]byte, 20)
		for i := int64(0); i < count; i++ {
			if _, err := io.ReadFull(s, line); err != nil {
				return 0, nil, err
			}
			objNum := int(start + i)
			if seen.Test(uint(objNum)) {
				continue
			}
			seen.Set(uint(objNum))

			offset, _ := strconv.ParseInt(string(bytes.TrimSpace(line[0:10])), 10, 64)
			gen, _ := strconv.ParseInt(string(bytes.TrimSpace(line[11:16])), 10, 64)
			if line[17] == 'f' {
				table.Entries[objNum] = Entry{Type: Free, Generation: int(gen)}
			} else {
				table.Entries[objNum] = Entry{Type: InUse, Offset: offset, Generation: int(gen)}
			}
		}
	}

	obj, err := s.ReadObject()
	if err != nil {
		return 0, nil, err
	}
	trailer, ok := obj.(pdf.Dict)
	if !ok {
		return 0, nil, &pdf.TypeError{Expected: "Dict", Received: "other"}
	}
	return prevOf(trailer), trailer, nil
}

func parseXRefStream(s *objscan.Scanner, table *Table, seen *bitset.BitSet) (int64, pdf.Dict, error) {
	s.Length = func(obj pdf.Object) (int64, error) {
		return 0, fmt.Errorf("xref: indirect /Length not supported while bootstrapping xref stream")
	}

	if _, err := s.ReadObject(); err != nil { // object number
		return 0, nil, err
	}
	if _, err := s.ReadObject(); err != nil { // generation number
		return 0, nil, err
	}
	objTok, err := s.Lexer().Next()
	if err != nil || objTok.Kind != lexer.Other || objTok.Text != "obj" {
		return 0, nil, &pdf.SyntaxError{Offset: s.Tell(), Message: "expected 'obj' keyword"}
	}

	obj, err := s.ReadObject()
	if err != nil {
		return 0, nil, err
	}
	stm, ok := obj.(*pdf.Stream)
	if !ok {
		return 0, nil, &pdf.TypeError{Expected: "Stream", Received: "other"}
	}
	if t, ok := stm.Dict[pdf.Name("Type")].(pdf.Name); !ok || t != "XRef" {
		return 0, nil, &pdf.TypeError{Expected: "/Type /XRef", Received: "other"}
	}

	decoded, err := filter.Decode(stm)
	if err != nil {
		return 0, nil, err
	}

	w, err := widths(stm.Dict)
	if err != nil {
		return 0, nil, err
	}
	index, err := indexPairs(stm.Dict)
	if err != nil {
		return 0, nil, err
	}

	r := bytes.NewReader(decoded)
	for i := 0; i < len(index); i += 2 {
		start, count := index[i], index[i+1]
		for j := 0; j < count; j++ {
			f0, err := readField(r, w[0], 1)
			if err != nil {
				return 0, nil, err
			}
			f1, err := readField(r, w[1], 0)
			if err != nil {
				return 0, nil, err
			}
			f2, err := readField(r, w[2], 0)
			if err != nil {
				return 0, nil, err
			}

			objNum := start + j
			if seen.Test(uint(objNum)) {
				continue
			}
			seen.Set(uint(objNum))

			switch f0 {
			case 0:
				table.Entries[objNum] = Entry{Type: Free, Generation: int(f2)}
			case 1:
				table.Entries[objNum] = Entry{Type: InUse, Offset: f1, Generation: int(f2)}
			case 2:
				table.Entries[objNum] = Entry{Type: Compressed, StreamObj: int(f1), StreamIndex: int(f2)}
			}
		}
	}

	return prevOf(stm.Dict), stm.Dict, nil
}

func widths(dict pdf.Dict) ([3]int, error) {
	arr, ok := dict[pdf.Name("W")].(pdf.Array)
	if !ok || len(arr) != 3 {
		return [3]int{}, &pdf.TypeError{Expected: "/W array of 3 integers", Received: "other"}
	}
	var w [3]int
	for i, elem := range arr {
		n, ok := elem.(pdf.Number)
		if !ok {
			return [3]int{}, &pdf.TypeError{Expected: "integer", Received: "other"}
		}
		v, _ := n.Int()
		w[i] = int(v)
	}
	return w, nil
}

func indexPairs(dict pdf.Dict) ([]int, error) {
	if arr, ok := dict[pdf.Name("Index")].(pdf.Array); ok {
		pairs := make([]int, 0, len(arr))
		for _, elem := range arr {
			n, ok := elem.(pdf.Number)
			if !ok {
				return nil, &pdf.TypeError{Expected: "integer", Received: "other"}
			}
			v, _ := n.Int()
			pairs = append(pairs, int(v))
		}
		return pairs, nil
	}
	size, ok := dict[pdf.Name("Size")].(pdf.Number)
	if !ok {
		return nil, &pdf.TypeError{Expected: "/Size integer", Received: "other"}
	}
	v, _ := size.Int()
	return []int{0, int(v)}, nil
}

func readField(r io.Reader, width int, def int64) (int64, error) {
	if width == 0 {
		return def, nil
	}
	buf := make([]byte, width)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, err
	}
	var v int64
	for _, b := range buf {
		v = v<<8 | int64(b)
	}
	return v, nil
}

func prevOf(dict pdf.Dict) int64 {
	n, ok := dict[pdf.Name("Prev")].(pdf.Number)
	if !ok {
		return -1
	}
	v, _ := n.Int()
	return v
}
