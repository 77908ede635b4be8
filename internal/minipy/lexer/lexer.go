// Package lexer tokenizes minipy source, the small Python-like language
// accepted by the tracer. Block structure is significant: the scanner emits
// synthetic NEWLINE, INDENT, and DEDENT tokens the way the CPython tokenizer
// does, so the parser never has to count spaces.
package lexer

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// TokenType identifies the type of a lexer token.
type TokenType int

const (
	// Keywords
	TokDef TokenType = iota
	TokReturn
	TokIf
	TokElif
	TokElse
	TokWhile
	TokFor
	TokIn
	TokBreak
	TokContinue
	TokPass
	TokTrue
	TokFalse
	TokNone
	TokAnd
	TokOr
	TokNot
	TokClass
	TokTry
	TokExcept
	TokFinally
	TokRaise
	TokGlobal
	TokAs

	// Literals
	TokInt
	TokFloat
	TokString

	// Identifiers
	TokIdent

	// Punctuation
	TokLParen   // (
	TokRParen   // )
	TokLBracket // [
	TokRBracket // ]
	TokLBrace   // {
	TokRBrace   // }
	TokColon    // :
	TokComma    // ,
	TokDot      // .

	// Operators
	TokAssign       // =
	TokPlus         // +
	TokMinus        // -
	TokStar         // *
	TokStarStar     // **
	TokSlash        // /
	TokSlashSlash   // //
	TokPercent      // %
	TokPlusEq       // +=
	TokMinusEq      // -=
	TokStarEq       // *=
	TokSlashEq      // /=
	TokSlashSlashEq // //=
	TokPercentEq    // %=
	TokEqEq         // ==
	TokBangEq       // !=
	TokLt           // <
	TokLtEq         // <=
	TokGt           // >
	TokGtEq         // >=

	// Layout
	TokNewline
	TokIndent
	TokDedent
	TokEOF
)

// Token is a single lexical unit. Lit holds the cooked value for string
// literals and the raw text for everything else.
type Token struct {
	Type TokenType
	Lit  string
	Line int
	Col  int
}

var keywords = map[string]TokenType{
	"def":      TokDef,
	"return":   TokReturn,
	"if":       TokIf,
	"elif":     TokElif,
	"else":     TokElse,
	"while":    TokWhile,
	"for":      TokFor,
	"in":       TokIn,
	"break":    TokBreak,
	"continue": TokContinue,
	"pass":     TokPass,
	"True":     TokTrue,
	"False":    TokFalse,
	"None":     TokNone,
	"and":      TokAnd,
	"or":       TokOr,
	"not":      TokNot,
	"class":    TokClass,
	"try":      TokTry,
	"except":   TokExcept,
	"finally":  TokFinally,
	"raise":    TokRaise,
	"global":   TokGlobal,
	"as":       TokAs,
}

// tabStop is the column multiple a tab advances to when measuring
// indentation, matching the CPython tokenizer default.
const tabStop = 8

// Error is a tokenization failure with its source position.
type Error struct {
	Msg  string
	Line int
	Col  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (line %d)", e.Msg, e.Line)
}

type scanner struct {
	source      string
	pos         int
	line        int
	col         int
	parens      int
	indents     []int
	tokens      []Token
	atLineStart bool
}

func newScanner(source string) *scanner {
	return &scanner{
		source:      source,
		pos:         0,
		line:        1,
		col:         1,
		indents:     []int{0},
		atLineStart: true,
	}
}

// Lex tokenizes source and returns the complete token stream, always
// terminated by NEWLINE DEDENT* EOF so the parser sees a uniform tail.
func Lex(source string) ([]Token, error) {
	s := newScanner(source)
	if err := s.run(); err != nil {
		return nil, err
	}
	return s.tokens, nil
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.source)
}

func (s *scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.source[s.pos]
}

func (s *scanner) peekAt(offset int) byte {
	p := s.pos + offset
	if p >= len(s.source) {
		return 0
	}
	return s.source[p]
}

func (s *scanner) advance() byte {
	ch := s.source[s.pos]
	s.pos++
	if ch == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return ch
}

func (s *scanner) emit(t TokenType, lit string, line, col int) {
	s.tokens = append(s.tokens, Token{Type: t, Lit: lit, Line: line, Col: col})
}

func (s *scanner) errorf(line, col int, format string, args ...any) error {
	return &Error{Msg: fmt.Sprintf(format, args...), Line: line, Col: col}
}

func (s *scanner) run() error {
	for {
		if s.atLineStart && s.parens == 0 {
			done, err := s.scanIndentation()
			if err != nil {
				return err
			}
			if done {
				break
			}
		}
		s.skipSpaces()
		if s.atEnd() {
			break
		}

		ch := s.peek()
		line, col := s.line, s.col

		switch {
		case ch == '\n':
			s.advance()
			if s.parens > 0 {
				continue
			}
			s.emit(TokNewline, "", line, col)
			s.atLineStart = true
		case ch == '#':
			for !s.atEnd() && s.peek() != '\n' {
				s.advance()
			}
		case ch == '\'' || ch == '"':
			if err := s.scanString(ch); err != nil {
				return err
			}
		case isDigit(ch) || (ch == '.' && isDigit(s.peekAt(1))):
			s.scanNumber()
		case isAlpha(ch):
			s.scanIdentOrKeyword()
		default:
			if err := s.scanOperator(); err != nil {
				return err
			}
		}
	}

	// A final line without a trailing newline still terminates a statement.
	if !s.atLineStart {
		s.emit(TokNewline, "", s.line, s.col)
	}
	for len(s.indents) > 1 {
		s.indents = s.indents[:len(s.indents)-1]
		s.emit(TokDedent, "", s.line, s.col)
	}
	s.emit(TokEOF, "", s.line, s.col)
	return nil
}

// scanIndentation measures the leading whitespace of the next logical line,
// emitting INDENT/DEDENT as the level changes. Blank and comment-only lines
// are consumed without producing tokens. Returns true at end of input.
func (s *scanner) scanIndentation() (bool, error) {
	for {
		width := 0
		for !s.atEnd() {
			switch s.peek() {
			case ' ':
				width++
			case '\t':
				width = width/tabStop*tabStop + tabStop
			case '\r':
				// ignored; the following \n ends the line
			default:
				goto measured
			}
			s.advance()
		}
	measured:
		if s.atEnd() {
			return true, nil
		}
		if s.peek() == '\n' {
			s.advance()
			continue
		}
		if s.peek() == '#' {
			for !s.atEnd() && s.peek() != '\n' {
				s.advance()
			}
			continue
		}

		current := s.indents[len(s.indents)-1]
		switch {
		case width > current:
			s.indents = append(s.indents, width)
			s.emit(TokIndent, "", s.line, s.col)
		case width < current:
			for width < s.indents[len(s.indents)-1] {
				s.indents = s.indents[:len(s.indents)-1]
				s.emit(TokDedent, "", s.line, s.col)
			}
			if width != s.indents[len(s.indents)-1] {
				return false, s.errorf(s.line, s.col, "unindent does not match any outer indentation level")
			}
		}
		s.atLineStart = false
		return false, nil
	}
}

func (s *scanner) skipSpaces() {
	for !s.atEnd() {
		ch := s.peek()
		if ch == ' ' || ch == '\t' || ch == '\r' {
			s.advance()
			continue
		}
		if ch == '\n' && s.parens > 0 {
			s.advance()
			continue
		}
		break
	}
}

func (s *scanner) scanString(quote byte) error {
	line, col := s.line, s.col
	s.advance() // opening quote

	var buf strings.Builder
	for !s.atEnd() {
		ch := s.peek()
		if ch == quote {
			s.advance()
			s.emit(TokString, buf.String(), line, col)
			return nil
		}
		if ch == '\n' {
			return s.errorf(line, col, "unterminated string literal")
		}
		if ch == '\\' {
			s.advance()
			if s.atEnd() {
				return s.errorf(line, col, "unterminated string literal")
			}
			esc := s.advance()
			switch esc {
			case 'n':
				buf.WriteByte('\n')
			case 't':
				buf.WriteByte('\t')
			case 'r':
				buf.WriteByte('\r')
			case '\\':
				buf.WriteByte('\\')
			case '\'':
				buf.WriteByte('\'')
			case '"':
				buf.WriteByte('"')
			case '0':
				buf.WriteByte(0)
			default:
				// Unknown escapes keep the backslash, as Python does.
				buf.WriteByte('\\')
				buf.WriteByte(esc)
			}
			continue
		}
		r, size := utf8.DecodeRuneInString(s.source[s.pos:])
		if r == utf8.RuneError && size == 1 {
			return s.errorf(line, col, "invalid UTF-8 in string literal")
		}
		buf.WriteRune(r)
		for i := 0; i < size; i++ {
			s.advance()
		}
	}
	return s.errorf(line, col, "unterminated string literal")
}

func (s *scanner) scanNumber() {
	line, col := s.line, s.col
	start := s.pos
	isFloat := false

	for !s.atEnd() && isDigit(s.peek()) {
		s.advance()
	}
	if !s.atEnd() && s.peek() == '.' && isDigit(s.peekAt(1)) {
		isFloat = true
		s.advance()
		for !s.atEnd() && isDigit(s.peek()) {
			s.advance()
		}
	}
	if !s.atEnd() && (s.peek() == 'e' || s.peek() == 'E') {
		next := s.peekAt(1)
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(s.peekAt(2))) {
			isFloat = true
			s.advance()
			if s.peek() == '+' || s.peek() == '-' {
				s.advance()
			}
			for !s.atEnd() && isDigit(s.peek()) {
				s.advance()
			}
		}
	}

	t := TokInt
	if isFloat {
		t = TokFloat
	}
	s.emit(t, s.source[start:s.pos], line, col)
}

func (s *scanner) scanIdentOrKeyword() {
	line, col := s.line, s.col
	start := s.pos
	for !s.atEnd() && isAlphaNumeric(s.peek()) {
		s.advance()
	}
	text := s.source[start:s.pos]
	if t, ok := keywords[text]; ok {
		s.emit(t, text, line, col)
		return
	}
	s.emit(TokIdent, text, line, col)
}

func (s *scanner) scanOperator() error {
	line, col := s.line, s.col
	ch := s.advance()

	two := func(next byte, withNext, without TokenType, litNext, lit string) {
		if !s.atEnd() && s.peek() == next {
			s.advance()
			s.emit(withNext, litNext, line, col)
			return
		}
		s.emit(without, lit, line, col)
	}

	switch ch {
	case '(':
		s.parens++
		s.emit(TokLParen, "(", line, col)
	case ')':
		s.parens--
		s.emit(TokRParen, ")", line, col)
	case '[':
		s.parens++
		s.emit(TokLBracket, "[", line, col)
	case ']':
		s.parens--
		s.emit(TokRBracket, "]", line, col)
	case '{':
		s.parens++
		s.emit(TokLBrace, "{", line, col)
	case '}':
		s.parens--
		s.emit(TokRBrace, "}", line, col)
	case ':':
		s.emit(TokColon, ":", line, col)
	case ',':
		s.emit(TokComma, ",", line, col)
	case '.':
		s.emit(TokDot, ".", line, col)
	case '=':
		two('=', TokEqEq, TokAssign, "==", "=")
	case '+':
		two('=', TokPlusEq, TokPlus, "+=", "+")
	case '-':
		two('=', TokMinusEq, TokMinus, "-=", "-")
	case '%':
		two('=', TokPercentEq, TokPercent, "%=", "%")
	case '<':
		two('=', TokLtEq, TokLt, "<=", "<")
	case '>':
		two('=', TokGtEq, TokGt, ">=", ">")
	case '*':
		if !s.atEnd() && s.peek() == '*' {
			s.advance()
			s.emit(TokStarStar, "**", line, col)
			return nil
		}
		two('=', TokStarEq, TokStar, "*=", "*")
	case '/':
		if !s.atEnd() && s.peek() == '/' {
			s.advance()
			two('=', TokSlashSlashEq, TokSlashSlash, "//=", "//")
			return nil
		}
		two('=', TokSlashEq, TokSlash, "/=", "/")
	case '!':
		if !s.atEnd() && s.peek() == '=' {
			s.advance()
			s.emit(TokBangEq, "!=", line, col)
			return nil
		}
		return s.errorf(line, col, "invalid syntax")
	default:
		return s.errorf(line, col, "invalid character %q", rune(ch))
	}
	return nil
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isAlphaNumeric(ch byte) bool {
	return isAlpha(ch) || isDigit(ch)
}
