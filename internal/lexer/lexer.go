// Package lexer implements the quark lexical analyzer.
//
// The scanner makes a single left-to-right pass with one byte of lookahead
// and never backtracks. Whitespace is insignificant.
package lexer

import (
	"strconv"
	"unicode/utf8"

	qerrors "github.com/quark-lang/quark/internal/errors"
)

// Lexer holds the scanning state for one source text
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
}

// New creates a new lexer instance
func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// Tokenize scans the whole source. The returned slice always ends with
// exactly one TokenEOF, even for empty input.
func Tokenize(input string) ([]Token, error) {
	return New(input).All()
}

// All scans the remaining input.
func (l *Lexer) All() ([]Token, error) {
	tokens := make([]Token, 0, len(l.input)/3+1)
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens, nil
		}
	}
}

// readChar reads the next character and advances position
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0 // NUL marks end of input
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
}

// peekChar returns the next character without advancing position
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) atEOF() bool {
	return l.position >= len(l.input)
}

func (l *Lexer) skipWhitespace() {
	for !l.atEOF() && (l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r') {
		l.readChar()
	}
}

// NextToken scans and returns the next token. After the input is
// exhausted it keeps returning TokenEOF.
func (l *Lexer) NextToken() (Token, error) {
	l.skipWhitespace()

	start := l.position
	if l.atEOF() {
		return Token{Type: TokenEOF, Offset: len(l.input)}, nil
	}

	switch l.ch {
	case '(':
		return l.single(TokenLParen), nil
	case ')':
		return l.single(TokenRParen), nil
	case '[':
		return l.single(TokenLBracket), nil
	case ']':
		return l.single(TokenRBracket), nil
	case ',':
		return l.single(TokenComma), nil
	case ':':
		return l.single(TokenColon), nil
	case '-':
		if l.peekChar() == '>' {
			l.readChar()
			l.readChar()
			return Token{Type: TokenArrow, Literal: "->", Offset: start}, nil
		}
		return l.single(TokenOperator), nil
	}

	switch {
	case isDigit(l.ch):
		return l.readNumber()
	case isLetter(l.ch) || l.ch == '_':
		ident := l.readIdentifier()
		return Token{Type: lookupIdent(ident), Literal: ident, Offset: start}, nil
	case l.ch == '+' || l.ch == '*' || l.ch == '/' || l.ch == '=':
		return l.single(TokenOperator), nil
	case l.ch == '"':
		return l.readString()
	}

	r, _ := utf8.DecodeRuneInString(l.input[l.position:])
	return Token{}, qerrors.Lexical("Unexpected character '%c' at position %d", r, start)
}

// single emits a one-character token and advances past it
func (l *Lexer) single(tokenType TokenType) Token {
	tok := Token{Type: tokenType, Literal: string(l.ch), Offset: l.position}
	l.readChar()
	return tok
}

// readNumber consumes a maximal run of decimal digits. There is no sign,
// exponent or fractional part.
func (l *Lexer) readNumber() (Token, error) {
	start := l.position
	for !l.atEOF() && isDigit(l.ch) {
		l.readChar()
	}
	literal := l.input[start:l.position]
	value, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return Token{}, qerrors.Lexical("invalid number literal %q at position %d", literal, start)
	}
	return Token{Type: TokenNumber, Literal: literal, Value: value, Offset: start}, nil
}

// readIdentifier accepts ASCII only so every name is a valid C identifier
func (l *Lexer) readIdentifier() string {
	start := l.position
	for !l.atEOF() && (isLetter(l.ch) || isDigit(l.ch) || l.ch == '_') {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readString collects everything up to the closing quote verbatim; no
// escape sequences are interpreted.
func (l *Lexer) readString() (Token, error) {
	start := l.position
	l.readChar() // opening quote
	contentStart := l.position
	for !l.atEOF() && l.ch != '"' {
		l.readChar()
	}
	if l.atEOF() {
		return Token{}, qerrors.Lexical("unterminated string literal starting at position %d", start)
	}
	content := l.input[contentStart:l.position]
	l.readChar() // closing quote
	return Token{Type: TokenString, Literal: content, Offset: start}, nil
}

// isLetter checks if character is ASCII letter
func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z'
}

// isDigit checks if character is ASCII digit
func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
