package lexer

import (
	"strings"
	"testing"

	qerrors "github.com/quark-lang/quark/internal/errors"
)

type expectedToken struct {
	expectedType  TokenType
	expectedValue string
}

func checkTokens(t *testing.T, input string, tests []expectedToken) []Token {
	t.Helper()

	tokens, err := Tokenize(input)
	if err != nil {
		t.Fatalf("Tokenize(%q) failed: %v", input, err)
	}
	if len(tokens) != len(tests) {
		t.Fatalf("token count wrong. expected=%d, got=%d (%v)", len(tests), len(tokens), tokens)
	}

	for i, tt := range tests {
		tok := tokens[i]
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, tok.Type)
		}
		if tok.String() != tt.expectedValue {
			t.Fatalf("tests[%d] - token wrong. expected=%q, got=%q",
				i, tt.expectedValue, tok.String())
		}
	}
	return tokens
}

func TestLetStatementTokens(t *testing.T) {
	checkTokens(t, "let x = 5", []expectedToken{
		{TokenLet, "Let"},
		{TokenIdentifier, `Identifier("x")`},
		{TokenOperator, `Operator("=")`},
		{TokenNumber, "Number(5)"},
		{TokenEOF, "Eof"},
	})
}

func TestFunctionTokens(t *testing.T) {
	input := `fnc main() int ->
	print("hi, there", xs[0])
	ret a - b
end`

	checkTokens(t, input, []expectedToken{
		{TokenFnc, "Fnc"},
		{TokenIdentifier, `Identifier("main")`},
		{TokenLParen, "OpenParen"},
		{TokenRParen, "CloseParen"},
		{TokenTypeInt, "TypeInt"},
		{TokenArrow, "Arrow"},
		{TokenIdentifier, `Identifier("print")`},
		{TokenLParen, "OpenParen"},
		{TokenString, `StringLiteral("hi, there")`},
		{TokenComma, "Comma"},
		{TokenIdentifier, `Identifier("xs")`},
		{TokenLBracket, "OpenBracket"},
		{TokenNumber, "Number(0)"},
		{TokenRBracket, "CloseBracket"},
		{TokenRParen, "CloseParen"},
		{TokenRet, "Return"},
		{TokenIdentifier, `Identifier("a")`},
		{TokenOperator, `Operator("-")`},
		{TokenIdentifier, `Identifier("b")`},
		{TokenEnd, "End"},
		{TokenEOF, "Eof"},
	})
}

func TestKeywords(t *testing.T) {
	checkTokens(t, "fnc let ret if else while for match end int float string bool void in", []expectedToken{
		{TokenFnc, "Fnc"},
		{TokenLet, "Let"},
		{TokenRet, "Return"},
		{TokenIf, "If"},
		{TokenElse, "Else"},
		{TokenWhile, "While"},
		{TokenFor, "For"},
		{TokenMatch, "Match"},
		{TokenEnd, "End"},
		{TokenTypeInt, "TypeInt"},
		{TokenTypeFloat, "TypeFloat"},
		{TokenTypeString, "TypeString"},
		{TokenTypeBool, "TypeBool"},
		{TokenIdentifier, `Identifier("void")`},
		{TokenIdentifier, `Identifier("in")`},
		{TokenEOF, "Eof"},
	})
}

func TestOperatorsAndArrow(t *testing.T) {
	checkTokens(t, "a+b*c/d=e-f->g:h", []expectedToken{
		{TokenIdentifier, `Identifier("a")`},
		{TokenOperator, `Operator("+")`},
		{TokenIdentifier, `Identifier("b")`},
		{TokenOperator, `Operator("*")`},
		{TokenIdentifier, `Identifier("c")`},
		{TokenOperator, `Operator("/")`},
		{TokenIdentifier, `Identifier("d")`},
		{TokenOperator, `Operator("=")`},
		{TokenIdentifier, `Identifier("e")`},
		{TokenOperator, `Operator("-")`},
		{TokenIdentifier, `Identifier("f")`},
		{TokenArrow, "Arrow"},
		{TokenIdentifier, `Identifier("g")`},
		{TokenColon, "Colon"},
		{TokenIdentifier, `Identifier("h")`},
		{TokenEOF, "Eof"},
	})
}

func TestIdentifiersAndNumbers(t *testing.T) {
	tokens := checkTokens(t, "_tmp1 x_2 123abc 007", []expectedToken{
		{TokenIdentifier, `Identifier("_tmp1")`},
		{TokenIdentifier, `Identifier("x_2")`},
		{TokenNumber, "Number(123)"},
		{TokenIdentifier, `Identifier("abc")`},
		{TokenNumber, "Number(7)"},
		{TokenEOF, "Eof"},
	})

	if tokens[2].Value != 123 {
		t.Errorf("expected numeric value 123, got %v", tokens[2].Value)
	}
}

func TestStringLiteralIsVerbatim(t *testing.T) {
	tokens := checkTokens(t, `"a\n b" ""`, []expectedToken{
		{TokenString, `StringLiteral("a\\n b")`},
		{TokenString, `StringLiteral("")`},
		{TokenEOF, "Eof"},
	})

	if tokens[0].Literal != `a\n b` {
		t.Errorf("escape sequences must not be processed, got %q", tokens[0].Literal)
	}
}

func TestEmptyInput(t *testing.T) {
	for _, input := range []string{"", "   \n\t\r\n"} {
		tokens, err := Tokenize(input)
		if err != nil {
			t.Fatalf("Tokenize(%q) failed: %v", input, err)
		}
		if len(tokens) != 1 || tokens[0].Type != TokenEOF {
			t.Fatalf("Tokenize(%q) expected [Eof], got %v", input, tokens)
		}
	}
}

func TestOffsets(t *testing.T) {
	tokens, err := Tokenize("let  x\n= 10")
	if err != nil {
		t.Fatal(err)
	}
	expected := []int{0, 5, 7, 9, 11}
	for i, off := range expected {
		if tokens[i].Offset != off {
			t.Errorf("tests[%d] - offset wrong. expected=%d, got=%d", i, off, tokens[i].Offset)
		}
	}
}

func TestLexicalErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"at sign", "let x = @", "Unexpected character '@' at position 8"},
		{"semicolon", "x;", "Unexpected character ';' at position 1"},
		{"non-ascii", "let é = 1", "Unexpected character 'é' at position 4"},
		{"non-ascii inside identifier", "let café = 1", "Unexpected character 'é' at position 7"},
		{"unterminated string", `let s = "abc`, "unterminated string literal starting at position 8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			if err == nil {
				t.Fatalf("expected error, got tokens %v", tokens)
			}
			if !qerrors.Is(err, qerrors.KindLexical) {
				t.Errorf("expected Lexical error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("expected message containing %q, got %q", tt.message, err.Error())
			}
		})
	}
}

func TestTokenizeIsDeterministic(t *testing.T) {
	input := "fnc f(a int) int -> ret a * 2 end"
	first, err := Tokenize(input)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Tokenize(input)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != len(second) {
		t.Fatalf("length differs: %d vs %d", len(first), len(second))
	}
	eofs := 0
	for i := range first {
		if !first[i].Equal(second[i]) || first[i].Offset != second[i].Offset {
			t.Fatalf("tests[%d] - token differs: %v vs %v", i, first[i], second[i])
		}
		if first[i].Type == TokenEOF {
			eofs++
		}
	}
	if eofs != 1 || first[len(first)-1].Type != TokenEOF {
		t.Errorf("expected exactly one trailing Eof, got %v", first)
	}
}
