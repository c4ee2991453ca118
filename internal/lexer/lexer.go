// Package lexer implements the low-level, byte-oriented PDF tokenizer
// (component A of the design): whitespace and comment skipping, and the
// primitive token kinds (numbers, names, strings, delimiters, keywords).
// It knows nothing about composite objects (arrays, dictionaries,
// streams, indirect references); that is built on top of it in objscan.
package lexer

import (
	"bufio"
	"fmt"
	"io"
)

// Kind discriminates the tokens produced by the lexer.
type Kind int

const (
	Number Kind = iota
	StringTok
	HexString
	NameTok
	StartArray
	EndArray
	StartDict
	EndDict
	Ref // the literal keyword "R"
	Comment
	Other // any other keyword/operator, e.g. "obj", "stream", "Tj"
	EOF
)

// Token is one lexical unit together with the byte offset it started at.
type Token struct {
	Kind   Kind
	Text   string // decoded text for Number/NameTok/Other; "R" for Ref
	Bytes  []byte // decoded payload for StringTok/HexString
	Offset int64
}

// whitespace set per spec section 4.A.
func isWhitespace(b byte) bool {
	switch b {
	case 0x00, 0x09, 0x0A, 0x0C, 0x0D, 0x20:
		return true
	}
	return false
}

func isDelimiter(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isRegular(b byte) bool { return !isWhitespace(b) && !isDelimiter(b) }

// Lexer reads tokens from a seekable byte source, tracking absolute byte
// offsets so callers (the XREF subsystem in particular) can seek back to
// an exact token start.
type Lexer struct {
	r      *bufio.Reader
	src    io.ReadSeeker
	offset int64 // absolute offset of the next unread byte
}

// New wraps a seekable source. Offsets stay absolute: the source's
// current position is the lexer's starting offset.
func New(src io.ReadSeeker) (*Lexer, error) {
	pos, err := src.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	return &Lexer{r: bufio.NewReaderSize(src, 4096), src: src, offset: pos}, nil
}

// Tell returns the absolute byte offset of the next unread byte.
func (l *Lexer) Tell() int64 { return l.offset }

// ReadRawByte reads and returns a single byte without any tokenization,
// for callers (stream-body copying) that need exact byte-for-byte access
// at the current position.
func (l *Lexer) ReadRawByte() (byte, error) { return l.readByte() }

// PeekRawByte returns the next byte without consuming it.
func (l *Lexer) PeekRawByte() (byte, error) { return l.peekByte() }

// Seek repositions both the underlying source and the lexer's own
// buffered state. Any buffered-but-unread bytes are discarded.
func (l *Lexer) Seek(offset int64) error {
	if _, err := l.src.Seek(offset, io.SeekStart); err != nil {
		return err
	}
	l.r.Reset(l.src)
	l.offset = offset
	return nil
}

func (l *Lexer) readByte() (byte, error) {
	b, err := l.r.ReadByte()
	if err != nil {
		return 0, err
	}
	l.offset++
	return b, nil
}

func (l *Lexer) unreadByte() {
	_ = l.r.UnreadByte()
	l.offset--
}

func (l *Lexer) peekByte() (byte, error) {
	b, err := l.r.Peek(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (l *Lexer) peekN(n int) []byte {
	b, _ := l.r.Peek(n)
	return b
}

// SkipWhitespaceAndComments advances past whitespace and %-comments,
// without producing a token.
func (l *Lexer) SkipWhitespaceAndComments() error {
	for {
		b, err := l.peekByte()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if isWhitespace(b) {
			l.readByte()
			continue
		}
		if b == '%' {
			for {
				b, err := l.readByte()
				if err != nil || b == '\n' || b == '\r' {
					break
				}
			}
			continue
		}
		return nil
	}
}

// Next reads and returns the next token.
func (l *Lexer) Next() (Token, error) {
	if err := l.SkipWhitespaceAndComments(); err != nil {
		return Token{}, err
	}
	start := l.offset
	b, err := l.peekByte()
	if err != nil {
		if err == io.EOF {
			return Token{Kind: EOF, Offset: start}, nil
		}
		return Token{}, err
	}

	switch {
	case b == '/':
		return l.readName(start)
	case b == '(':
		return l.readLiteralString(start)
	case b == '<':
		peek := l.peekN(2)
		if len(peek) == 2 && peek[1] == '<' {
			l.readByte()
			l.readByte()
			return Token{Kind: StartDict, Offset: start}, nil
		}
		return l.readHexString(start)
	case b == '>':
		peek := l.peekN(2)
		if len(peek) == 2 && peek[1] == '>' {
			l.readByte()
			l.readByte()
			return Token{Kind: EndDict, Offset: start}, nil
		}
		return Token{}, &syntaxErr{start, "unexpected '>'"}
	case b == '[':
		l.readByte()
		return Token{Kind: StartArray, Offset: start}, nil
	case b == ']':
		l.readByte()
		return Token{Kind: EndArray, Offset: start}, nil
	case isDigit(b) || b == '+' || b == '-' || b == '.':
		return l.readNumber(start)
	default:
		return l.readKeyword(start)
	}
}

func (l *Lexer) readName(start int64) (Token, error) {
	l.readByte() // consume '/'
	var out []byte
	for {
		b, err := l.peekByte()
		if err != nil || isWhitespace(b) || isDelimiter(b) {
			break
		}
		l.readByte()
		if b == '#' {
			hex := l.peekN(2)
			if len(hex) == 2 && isHexDigit(hex[0]) && isHexDigit(hex[1]) {
				l.readByte()
				l.readByte()
				out = append(out, hexByte(hex[0], hex[1]))
				continue
			}
		}
		out = append(out, b)
	}
	return Token{Kind: NameTok, Text: string(out), Offset: start}, nil
}

func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func hexNibble(b byte) byte {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	default:
		return b - 'A' + 10
	}
}

func hexByte(hi, lo byte) byte { return hexNibble(hi)<<4 | hexNibble(lo) }

func (l *Lexer) readLiteralString(start int64) (Token, error) {
	l.readByte() // consume '('
	var out []byte
	depth := 1
	for {
		b, err := l.readByte()
		if err != nil {
			return Token{}, &syntaxErr{start, "unterminated literal string"}
		}
		switch b {
		case '(':
			depth++
			out = append(out, b)
		case ')':
			depth--
			if depth == 0 {
				return Token{Kind: StringTok, Bytes: out, Offset: start}, nil
			}
			out = append(out, b)
		case '\\':
			esc, err := l.readByte()
			if err != nil {
				return Token{}, &syntaxErr{start, "unterminated escape"}
			}
			switch esc {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '(':
				out = append(out, '(')
			case ')':
				out = append(out, ')')
			case '\\':
				out = append(out, '\\')
			case '\r':
				// \<CR> or \<CR><LF> is a line continuation, produces no byte
				if p, err := l.peekByte(); err == nil && p == '\n' {
					l.readByte()
				}
			case '\n':
				// line continuation, no byte produced
			default:
				if esc >= '0' && esc <= '7' {
					val := esc - '0'
					for i := 0; i < 2; i++ {
						p, err := l.peekByte()
						if err != nil || p < '0' || p > '7' {
							break
						}
						l.readByte()
						val = val*8 + (p - '0')
					}
					out = append(out, val)
				} else {
					out = append(out, esc)
				}
			}
		default:
			out = append(out, b)
		}
	}
}

func (l *Lexer) readHexString(start int64) (Token, error) {
	l.readByte() // consume '<'
	var nibbles []byte
	for {
		b, err := l.readByte()
		if err != nil {
			return Token{}, &syntaxErr{start, "unterminated hex string"}
		}
		if b == '>' {
			break
		}
		if isWhitespace(b) {
			continue
		}
		nibbles = append(nibbles, b)
	}
	if len(nibbles)%2 == 1 {
		nibbles = append(nibbles, '0')
	}
	out := make([]byte, len(nibbles)/2)
	for i := range out {
		out[i] = hexByte(nibbles[2*i], nibbles[2*i+1])
	}
	return Token{Kind: HexString, Bytes: out, Offset: start}, nil
}

func (l *Lexer) readNumber(start int64) (Token, error) {
	var out []byte
	for {
		b, err := l.peekByte()
		if err != nil || isWhitespace(b) || isDelimiter(b) {
			break
		}
		if !(isDigit(b) || b == '+' || b == '-' || b == '.' || b == 'e' || b == 'E') {
			break
		}
		l.readByte()
		out = append(out, b)
	}
	return Token{Kind: Number, Text: string(out), Offset: start}, nil
}

func (l *Lexer) readKeyword(start int64) (Token, error) {
	var out []byte
	for {
		b, err := l.peekByte()
		if err != nil || isWhitespace(b) || isDelimiter(b) {
			break
		}
		l.readByte()
		out = append(out, b)
	}
	if len(out) == 0 {
		// a stray delimiter we don't special-case (e.g. '{', '}', or a
		// second '%' already consumed) - consume one byte as Other so
		// callers always make progress.
		b, err := l.readByte()
		if err != nil {
			return Token{Kind: EOF, Offset: start}, nil
		}
		return Token{Kind: Other, Text: string([]byte{b}), Offset: start}, nil
	}
	text := string(out)
	if text == "R" {
		return Token{Kind: Ref, Text: text, Offset: start}, nil
	}
	return Token{Kind: Other, Text: text, Offset: start}, nil
}

type syntaxErr struct {
	offset  int64
	message string
}

func (e *syntaxErr) Error() string {
	return fmt.Sprintf("lexer: syntax error at byte %d: %s", e.offset, e.message)
}

// SyntaxOffset returns the byte offset at which the syntax error occurred, for
// callers constructing a pdf.SyntaxError.
func (e *syntaxErr) SyntaxOffset() int64 { return e.offset }

// SyntaxMessage returns the human-readable description, for callers
// constructing a pdf.SyntaxError.
func (e *syntaxErr) SyntaxMessage() string { return e.message }
