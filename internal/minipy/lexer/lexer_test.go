package lexer

import (
	"errors"
	"strings"
	"testing"
)

func kinds(tokens []Token) []TokenType {
	out := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Type
	}
	return out
}

func assertKinds(t *testing.T, got []Token, want []TokenType) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("token count mismatch: got %d (%v), want %d", len(got), kinds(got), len(want))
	}
	for i := range want {
		if got[i].Type != want[i] {
			t.Errorf("token %d: got type %d (%q), want %d", i, got[i].Type, got[i].Lit, want[i])
		}
	}
}

func TestLexSimpleStatement(t *testing.T) {
	tokens, err := Lex("x = 1")
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}

	assertKinds(t, tokens, []TokenType{TokIdent, TokAssign, TokInt, TokNewline, TokEOF})

	if tokens[0].Lit != "x" || tokens[0].Line != 1 || tokens[0].Col != 1 {
		t.Errorf("ident token wrong: %+v", tokens[0])
	}
	if tokens[2].Lit != "1" {
		t.Errorf("int literal should keep raw text, got %q", tokens[2].Lit)
	}
}

func TestLexEmptySource(t *testing.T) {
	tokens, err := Lex("")
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	assertKinds(t, tokens, []TokenType{TokEOF})
}

func TestLexKeywordsAndIdents(t *testing.T) {
	tokens, err := Lex("for item in items")
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	assertKinds(t, tokens, []TokenType{TokFor, TokIdent, TokIn, TokIdent, TokNewline, TokEOF})

	// Keywords are case-sensitive; True is a keyword, true is a name.
	tokens, err = Lex("true = True")
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	assertKinds(t, tokens, []TokenType{TokIdent, TokAssign, TokTrue, TokNewline, TokEOF})
}

func TestLexIndentation(t *testing.T) {
	source := "if x:\n    y = 1\nz = 2\n"
	tokens, err := Lex(source)
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}

	assertKinds(t, tokens, []TokenType{
		TokIf, TokIdent, TokColon, TokNewline,
		TokIndent, TokIdent, TokAssign, TokInt, TokNewline,
		TokDedent, TokIdent, TokAssign, TokInt, TokNewline,
		TokEOF,
	})
}

func TestLexNestedDedents(t *testing.T) {
	source := strings.Join([]string{
		"while a:",
		"    if b:",
		"        c = 1",
		"d = 2",
	}, "\n")

	tokens, err := Lex(source)
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}

	dedents := 0
	for _, tok := range tokens {
		if tok.Type == TokDedent {
			dedents++
		}
	}
	if dedents != 2 {
		t.Errorf("Expected 2 dedents closing both blocks, got %d", dedents)
	}
}

func TestLexTrailingDedentsAtEOF(t *testing.T) {
	// No trailing newline and the block never closes; the stream must
	// still end NEWLINE DEDENT EOF.
	tokens, err := Lex("if x:\n    y = 1")
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}

	n := len(tokens)
	if n < 3 {
		t.Fatalf("too few tokens: %v", kinds(tokens))
	}
	tail := tokens[n-3:]
	assertKinds(t, tail, []TokenType{TokNewline, TokDedent, TokEOF})
}

func TestLexBlankAndCommentLines(t *testing.T) {
	source := "a = 1\n\n# just a note\n   \nb = 2\n"
	tokens, err := Lex(source)
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}

	// Blank and comment-only lines produce no tokens at all.
	assertKinds(t, tokens, []TokenType{
		TokIdent, TokAssign, TokInt, TokNewline,
		TokIdent, TokAssign, TokInt, TokNewline,
		TokEOF,
	})
	if tokens[4].Line != 5 {
		t.Errorf("b should be on line 5, got %d", tokens[4].Line)
	}
}

func TestLexTrailingComment(t *testing.T) {
	tokens, err := Lex("x = 1  # meaning of life\n")
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	assertKinds(t, tokens, []TokenType{TokIdent, TokAssign, TokInt, TokNewline, TokEOF})
}

func TestLexImplicitLineJoining(t *testing.T) {
	source := "x = [1,\n     2,\n     3]\ny = 4\n"
	tokens, err := Lex(source)
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}

	// Newlines inside brackets vanish; no INDENT for the continuation
	// lines either.
	assertKinds(t, tokens, []TokenType{
		TokIdent, TokAssign, TokLBracket, TokInt, TokComma, TokInt, TokComma, TokInt, TokRBracket, TokNewline,
		TokIdent, TokAssign, TokInt, TokNewline,
		TokEOF,
	})
}

func TestLexStrings(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{`'hello'`, "hello"},
		{`"hello"`, "hello"},
		{`'it "works"'`, `it "works"`},
		{`'a\nb'`, "a\nb"},
		{`'tab\there'`, "tab\there"},
		{`'back\\slash'`, `back\slash`},
		{`'quote\'s'`, "quote's"},
		{`'unknown \q escape'`, `unknown \q escape`},
		{`''`, ""},
		{`'héllo'`, "héllo"},
	}

	for _, tt := range tests {
		tokens, err := Lex(tt.source)
		if err != nil {
			t.Errorf("Lex(%s) failed: %v", tt.source, err)
			continue
		}
		if tokens[0].Type != TokString {
			t.Errorf("Lex(%s): first token is not a string", tt.source)
			continue
		}
		if tokens[0].Lit != tt.want {
			t.Errorf("Lex(%s) = %q, want %q", tt.source, tokens[0].Lit, tt.want)
		}
	}
}

func TestLexNumbers(t *testing.T) {
	tests := []struct {
		source string
		typ    TokenType
		lit    string
	}{
		{"0", TokInt, "0"},
		{"42", TokInt, "42"},
		{"3.14", TokFloat, "3.14"},
		{".5", TokFloat, ".5"},
		{"1e3", TokFloat, "1e3"},
		{"2.5e-3", TokFloat, "2.5e-3"},
		{"1E+2", TokFloat, "1E+2"},
	}

	for _, tt := range tests {
		tokens, err := Lex(tt.source)
		if err != nil {
			t.Errorf("Lex(%s) failed: %v", tt.source, err)
			continue
		}
		if tokens[0].Type != tt.typ {
			t.Errorf("Lex(%s): wrong token type for %q", tt.source, tokens[0].Lit)
		}
		if tokens[0].Lit != tt.lit {
			t.Errorf("Lex(%s) = %q, want %q", tt.source, tokens[0].Lit, tt.lit)
		}
	}
}

func TestLexNumberDotAttribute(t *testing.T) {
	// 1 .bit_length would be weird but x.y after an int must not glue the
	// dot onto the number unless a digit follows.
	tokens, err := Lex("r = range(3)")
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	assertKinds(t, tokens, []TokenType{
		TokIdent, TokAssign, TokIdent, TokLParen, TokInt, TokRParen, TokNewline, TokEOF,
	})
}

func TestLexOperators(t *testing.T) {
	tests := []struct {
		source string
		typ    TokenType
	}{
		{"a == b", TokEqEq},
		{"a != b", TokBangEq},
		{"a <= b", TokLtEq},
		{"a >= b", TokGtEq},
		{"a < b", TokLt},
		{"a > b", TokGt},
		{"a ** b", TokStarStar},
		{"a // b", TokSlashSlash},
		{"a //= b", TokSlashSlashEq},
		{"a += b", TokPlusEq},
		{"a -= b", TokMinusEq},
		{"a *= b", TokStarEq},
		{"a /= b", TokSlashEq},
		{"a %= b", TokPercentEq},
	}

	for _, tt := range tests {
		tokens, err := Lex(tt.source)
		if err != nil {
			t.Errorf("Lex(%s) failed: %v", tt.source, err)
			continue
		}
		if tokens[1].Type != tt.typ {
			t.Errorf("Lex(%s): middle token is %q, want type %d", tt.source, tokens[1].Lit, tt.typ)
		}
	}
}

func TestLexCarriageReturns(t *testing.T) {
	tokens, err := Lex("a = 1\r\nb = 2\r\n")
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	assertKinds(t, tokens, []TokenType{
		TokIdent, TokAssign, TokInt, TokNewline,
		TokIdent, TokAssign, TokInt, TokNewline,
		TokEOF,
	})
}

func TestLexTabIndentation(t *testing.T) {
	tokens, err := Lex("if x:\n\ty = 1\n")
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}

	found := false
	for _, tok := range tokens {
		if tok.Type == TokIndent {
			found = true
		}
	}
	if !found {
		t.Error("tab-indented block should emit INDENT")
	}
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		msg    string
		line   int
	}{
		{"unterminated string", "s = 'abc", "unterminated string literal", 1},
		{"string across newline", "s = 'abc\n'", "unterminated string literal", 1},
		{"invalid character", "x = $", `invalid character '$'`, 1},
		{"lone bang", "x = !y", "invalid syntax", 1},
		{"bad dedent", "if a:\n        b = 1\n    c = 2\n", "unindent does not match any outer indentation level", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Lex(tt.source)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}

			var lexErr *Error
			if !errors.As(err, &lexErr) {
				t.Fatalf("Expected *Error, got %T", err)
			}
			if lexErr.Msg != tt.msg {
				t.Errorf("Message = %q, want %q", lexErr.Msg, tt.msg)
			}
			if lexErr.Line != tt.line {
				t.Errorf("Line = %d, want %d", lexErr.Line, tt.line)
			}
			if !strings.Contains(err.Error(), "line") {
				t.Errorf("Error string should carry the line: %q", err.Error())
			}
		})
	}
}

func TestLexPositions(t *testing.T) {
	tokens, err := Lex("a = 1\nbb = 22\n")
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}

	// a(1,1) =(1,3) 1(1,5) ... bb(2,1) =(2,4) 22(2,6)
	checks := []struct {
		idx       int
		line, col int
	}{
		{0, 1, 1},
		{1, 1, 3},
		{2, 1, 5},
		{4, 2, 1},
		{5, 2, 4},
		{6, 2, 6},
	}
	for _, c := range checks {
		if tokens[c.idx].Line != c.line || tokens[c.idx].Col != c.col {
			t.Errorf("token %d (%q) at %d:%d, want %d:%d",
				c.idx, tokens[c.idx].Lit, tokens[c.idx].Line, tokens[c.idx].Col, c.line, c.col)
		}
	}
}

func BenchmarkLex(b *testing.B) {
	source := strings.Repeat("def f(a, b):\n    c = a + b\n    return c * 2\n\n", 50)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Lex(source); err != nil {
			b.Fatal(err)
		}
	}
}
