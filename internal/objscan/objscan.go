// Package objscan implements the high-level tokenizer (component B): it
// reads composite PDF objects - arrays, dictionaries, streams, and
// indirect references - on top of the byte-level lexer in internal/lexer.
package objscan

import (
	"io"

	"github.com/abdullahmohammadkhan/ptext-go"
	"github.com/abdullahmohammadkhan/ptext-go/internal/lexer"
)

// LengthResolver looks up the integer value of a (possibly indirect)
// /Length entry while a stream is being read. The XREF subsystem supplies
// this so that stream bodies bounded by an indirect /Length can be read
// during the very bootstrap that XREF itself depends on.
type LengthResolver func(obj pdf.Object) (int64, error)

// Scanner reads composite PDF objects from a seekable source.
type Scanner struct {
	lex    *lexer.Lexer
	src    io.ReadSeeker
	Length LengthResolver
}

// New wraps a seekable source positioned at the start of an object.
func New(src io.ReadSeeker) (*Scanner, error) {
	lx, err := lexer.New(src)
	if err != nil {
		return nil, err
	}
	return &Scanner{lex: lx, src: src}, nil
}

// Tell returns the current absolute byte offset.
func (s *Scanner) Tell() int64 { return s.lex.Tell() }

// Seek repositions the scanner.
func (s *Scanner) Seek(offset int64) error { return s.lex.Seek(offset) }

// Lexer exposes the underlying low-level tokenizer, for callers (the
// content-stream interpreter, the XREF "N G obj" header reader) that need
// raw tokens rather than composite objects.
func (s *Scanner) Lexer() *lexer.Lexer { return s.lex }

func syntaxErrorAt(off int64, msg string) error {
	return &pdf.SyntaxError{Offset: off, Message: msg}
}

// ReadObject reads one PDF object: a scalar, an array, a dictionary, a
// stream (dictionary immediately followed by the "stream" keyword), or an
// indirect reference ("N G R"). It is the component-B entry point used
// both for top-level "N G obj ... endobj" bodies and recursively for
// array/dictionary elements.
func (s *Scanner) ReadObject() (pdf.Object, error) {
	tok, err := s.lex.Next()
	if err != nil {
		return nil, err
	}
	return s.readFrom(tok)
}

func (s *Scanner) readFrom(tok lexer.Token) (pdf.Object, error) {
	switch tok.Kind {
	case lexer.EOF:
		return nil, io.EOF
	case lexer.NameTok:
		return pdf.Name(tok.Text), nil
	case lexer.StringTok, lexer.HexString:
		return pdf.String(tok.Bytes), nil
	case lexer.StartArray:
		return s.readArray()
	case lexer.StartDict:
		return s.readDictOrStream()
	case lexer.Number:
		return s.readNumberOrReference(tok)
	case lexer.Other:
		switch tok.Text {
		case "true":
			return pdf.Boolean(true), nil
		case "false":
			return pdf.Boolean(false), nil
		case "null":
			return pdf.Null{}, nil
		default:
			return nil, syntaxErrorAt(tok.Offset, "unexpected keyword "+tok.Text)
		}
	default:
		return nil, syntaxErrorAt(tok.Offset, "unexpected token")
	}
}

// ReadOperandOrOperator reads one content-stream token (component I): a
// scalar, array, dictionary, or reference is returned as an operand; a
// bare keyword that is not true/false/null is a content-stream operator
// mnemonic and is returned as such instead, since operators never nest
// inside arrays or dictionaries.
func (s *Scanner) ReadOperandOrOperator() (operand pdf.Object, operatorName string, err error) {
	tok, err := s.lex.Next()
	if err != nil {
		return nil, "", err
	}
	if tok.Kind == lexer.Other {
		switch tok.Text {
		case "true":
			return pdf.Boolean(true), "", nil
		case "false":
			return pdf.Boolean(false), "", nil
		case "null":
			return pdf.Null{}, "", nil
		default:
			return nil, tok.Text, nil
		}
	}
	obj, err := s.readFrom(tok)
	return obj, "", err
}

func (s *Scanner) readNumberOrReference(tok lexer.Token) (pdf.Object, error) {
	num, ok := pdf.NewNumberFromString(tok.Text)
	if !ok {
		return nil, syntaxErrorAt(tok.Offset, "invalid number "+tok.Text)
	}
	if !looksLikeInt(tok.Text) {
		return num, nil
	}

	mark := s.lex.Tell()
	genTok, err := s.lex.Next()
	if err != nil || genTok.Kind != lexer.Number || !looksLikeInt(genTok.Text) {
		s.lex.Seek(mark)
		return num, nil
	}

	rTok, err := s.lex.Next()
	if err != nil || rTok.Kind != lexer.Ref {
		s.lex.Seek(mark)
		return num, nil
	}

	objN, _ := num.Int()
	genNum, _ := pdf.NewNumberFromString(genTok.Text)
	genN, _ := genNum.Int()
	return pdf.Reference{Number: int(objN), Generation: int(genN)}, nil
}

func looksLikeInt(s string) bool {
	for _, c := range s {
		if c == '.' || c == 'e' || c == 'E' {
			return false
		}
	}
	return len(s) > 0
}

func (s *Scanner) readArray() (pdf.Array, error) {
	var arr pdf.Array
	for {
		tok, err := s.lex.Next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == lexer.EndArray {
			return arr, nil
		}
		if tok.Kind == lexer.EOF {
			return nil, syntaxErrorAt(tok.Offset, "unterminated array")
		}
		obj, err := s.readFrom(tok)
		if err != nil {
			return nil, err
		}
		arr = append(arr, obj)
	}
}

func (s *Scanner) readDictOrStream() (pdf.Object, error) {
	dict := pdf.Dict{}
	for {
		tok, err := s.lex.Next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == lexer.EndDict {
			break
		}
		if tok.Kind != lexer.NameTok {
			return nil, syntaxErrorAt(tok.Offset, "dictionary key must be a name")
		}
		key := pdf.Name(tok.Text)
		val, err := s.ReadObject()
		if err != nil {
			return nil, err
		}
		dict[key] = val
	}

	// Peek for a "stream" keyword without committing to consume it if
	// absent: the lexer has no generic unread-token, so we snapshot the
	// position and rewind on mismatch.
	mark := s.lex.Tell()
	tok, err := s.lex.Next()
	if err != nil || tok.Kind != lexer.Other || tok.Text != "stream" {
		s.lex.Seek(mark)
		return dict, nil
	}

	return s.readStreamBody(dict)
}

func (s *Scanner) readStreamBody(dict pdf.Dict) (*pdf.Stream, error) {
	// Per spec 4.B: raw bytes extend from the byte after the end-of-line
	// terminator following "stream" through Length bytes, then
	// "endstream". The EOL is CRLF or a bare LF; a bare CR alone is not
	// valid but tolerated here for robustness.
	b, err := s.lex.ReadRawByte()
	if err != nil {
		return nil, err
	}
	if b == '\r' {
		b2, err := s.lex.PeekRawByte()
		if err == nil && b2 == '\n' {
			s.lex.ReadRawByte()
		}
	} else if b != '\n' {
		return nil, syntaxErrorAt(s.Tell(), "expected EOL after 'stream'")
	}

	start := s.Tell()

	var length int64
	lengthObj := dict[pdf.Name("Length")]
	if ref, ok := lengthObj.(pdf.Reference); ok && s.Length != nil {
		length, err = s.Length(ref)
		if err != nil {
			return nil, err
		}
	} else if n, ok := lengthObj.(pdf.Number); ok {
		v, _ := n.Int()
		length = v
	} else {
		return nil, &pdf.TypeError{Expected: "integer Length", Received: "missing or indirect without resolver"}
	}

	raw := make([]byte, length)
	if _, err := io.ReadFull(s, raw); err != nil {
		return nil, err
	}
	if err := s.lex.Seek(start + length); err != nil {
		return nil, err
	}

	s.lex.SkipWhitespaceAndComments()
	tok, err := s.lex.Next()
	if err != nil || tok.Kind != lexer.Other || tok.Text != "endstream" {
		return nil, syntaxErrorAt(s.Tell(), "expected 'endstream'")
	}

	return &pdf.Stream{Dict: dict, Raw: raw}, nil
}

// Read lets Scanner act as an io.Reader over the raw stream-body bytes at
// the current position, used by readStreamBody via io.ReadFull.
func (s *Scanner) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		b, err := s.lex.ReadRawByte()
		if err != nil {
			return n, err
		}
		p[n] = b
		n++
	}
	return n, nil
}
