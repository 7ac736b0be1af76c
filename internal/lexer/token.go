package lexer

import (
	"fmt"
	"strconv"
)

// TokenType represents the type of a token
type TokenType int

// String returns a string representation of the token type
func (tt TokenType) String() string {
	if name, ok := tokenNames[tt]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(tt))
}

// Token types
const (
	TokenEOF TokenType = iota

	// リテラル
	TokenIdentifier
	TokenNumber
	TokenString

	// キーワード
	TokenFnc
	TokenLet
	TokenRet
	TokenIf
	TokenElse
	TokenWhile
	TokenFor
	TokenMatch
	TokenEnd

	// Primitive type keywords
	TokenTypeInt
	TokenTypeFloat
	TokenTypeString
	TokenTypeBool

	// + - * / =
	TokenOperator

	// 記号
	TokenLParen
	TokenRParen
	TokenLBracket
	TokenRBracket
	TokenComma
	TokenColon
	TokenArrow
)

var tokenNames = map[TokenType]string{
	TokenEOF:        "Eof",
	TokenIdentifier: "Identifier",
	TokenNumber:     "Number",
	TokenString:     "StringLiteral",

	TokenFnc:   "Fnc",
	TokenLet:   "Let",
	TokenRet:   "Return",
	TokenIf:    "If",
	TokenElse:  "Else",
	TokenWhile: "While",
	TokenFor:   "For",
	TokenMatch: "Match",
	TokenEnd:   "End",

	TokenTypeInt:    "TypeInt",
	TokenTypeFloat:  "TypeFloat",
	TokenTypeString: "TypeString",
	TokenTypeBool:   "TypeBool",

	TokenOperator: "Operator",

	TokenLParen:   "OpenParen",
	TokenRParen:   "CloseParen",
	TokenLBracket: "OpenBracket",
	TokenRBracket: "CloseBracket",
	TokenComma:    "Comma",
	TokenColon:    "Colon",
	TokenArrow:    "Arrow",
}

// keywords maps reserved words to their token types
var keywords = map[string]TokenType{
	"fnc":    TokenFnc,
	"let":    TokenLet,
	"ret":    TokenRet,
	"if":     TokenIf,
	"else":   TokenElse,
	"while":  TokenWhile,
	"for":    TokenFor,
	"match":  TokenMatch,
	"end":    TokenEnd,
	"int":    TokenTypeInt,
	"float":  TokenTypeFloat,
	"string": TokenTypeString,
	"bool":   TokenTypeBool,
}

// lookupIdent checks if identifier is keyword
func lookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return TokenIdentifier
}

// Token is one lexeme. Literal holds the identifier name, string content,
// operator symbol or keyword text; Value holds the numeric literal.
type Token struct {
	Type    TokenType
	Literal string
	Value   float64
	Offset  int // byte offset of the first character
}

// Equal compares two tokens ignoring their source offsets.
func (t Token) Equal(other Token) bool {
	return t.Type == other.Type && t.Literal == other.Literal && t.Value == other.Value
}

// IsOperator reports whether t is the operator token with the given symbol
func (t Token) IsOperator(symbol string) bool {
	return t.Type == TokenOperator && t.Literal == symbol
}

// String renders the token in constructor notation, e.g. Identifier("x").
func (t Token) String() string {
	switch t.Type {
	case TokenIdentifier, TokenString, TokenOperator:
		return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
	case TokenNumber:
		return fmt.Sprintf("Number(%s)", strconv.FormatFloat(t.Value, 'f', -1, 64))
	default:
		return t.Type.String()
	}
}

// Describe is used in parser diagnostics
func (t Token) Describe() string {
	return fmt.Sprintf("%s at offset %d", t.String(), t.Offset)
}
