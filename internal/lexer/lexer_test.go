package lexer

import (
	"bytes"
	"testing"
)

func scan(t *testing.T, src string) []Token {
	t.Helper()
	l, err := New(bytes.NewReader([]byte(src)))
	if err != nil {
		t.Fatal(err)
	}
	var toks []Token
	for {
		tok, err := l.Next()
		if err != nil {
			t.Fatal(err)
		}
		toks = append(toks, tok)
		if tok.Kind == EOF {
			return toks
		}
	}
}

// S4: a literal string "(a\(b\)c)" tokenizes to the 5-byte string "a(b)c".
func TestLiteralStringEscapedParens(t *testing.T) {
	toks := scan(t, `(a\(b\)c)`)
	if len(toks) < 1 || toks[0].Kind != StringTok {
		t.Fatalf("expected a string token, got %+v", toks)
	}
	if got, want := string(toks[0].Bytes), "a(b)c"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// S6: the name "/A#20B" decodes to the name "A B".
func TestNameHexEscape(t *testing.T) {
	toks := scan(t, `/A#20B`)
	if len(toks) < 1 || toks[0].Kind != NameTok {
		t.Fatalf("expected a name token, got %+v", toks)
	}
	if got, want := toks[0].Text, "A B"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestHexStringOddNibblePadded(t *testing.T) {
	toks := scan(t, `<48656C6C6F3>`) // odd final nibble
	if len(toks) < 1 || toks[0].Kind != HexString {
		t.Fatalf("expected a hex string token, got %+v", toks)
	}
	if got, want := string(toks[0].Bytes), "Hello0"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCommentSkipped(t *testing.T) {
	toks := scan(t, "% a comment\n42")
	if len(toks) < 1 || toks[0].Kind != Number || toks[0].Text != "42" {
		t.Fatalf("expected number 42 after comment, got %+v", toks)
	}
}

func TestDictDelimiters(t *testing.T) {
	toks := scan(t, "<< /A 1 >>")
	kinds := make([]Kind, 0, len(toks))
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	want := []Kind{StartDict, NameTok, Number, EndDict, EOF}
	if len(kinds) != len(want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("got %v, want %v", kinds, want)
		}
	}
}

func TestOffsetsTrackByteStart(t *testing.T) {
	toks := scan(t, "1 2")
	if toks[0].Offset != 0 {
		t.Errorf("first token offset = %d, want 0", toks[0].Offset)
	}
	if toks[1].Offset != 2 {
		t.Errorf("second token offset = %d, want 2", toks[1].Offset)
	}
}
