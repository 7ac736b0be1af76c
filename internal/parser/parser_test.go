// Package parser tests - recursive descent parser tests
package parser

import (
	"strings"
	"testing"

	"github.com/quark-lang/quark/internal/ast"
	qerrors "github.com/quark-lang/quark/internal/errors"
	"github.com/quark-lang/quark/internal/lexer"
)

func mustParse(t *testing.T, input string, opts ...Option) []ast.Statement {
	t.Helper()
	stmts, err := ParseSource(input, opts...)
	if err != nil {
		t.Fatalf("ParseSource(%q) failed: %v", input, err)
	}
	return stmts
}

// TestParseFunction checks the canonical example program
func TestParseFunction(t *testing.T) {
	input := `fnc main() int ->
  let x = 5
  let y = x + 2
  ret y
end`

	stmts := mustParse(t, input)
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}

	expected := `Function("main", [], Int, [Let("x", None, Number(5)), Let("y", None, BinaryOp(Identifier("x"), "+", Number(2))), Return(Some(Identifier("y")))])`
	if got := stmts[0].String(); got != expected {
		t.Errorf("AST wrong.\nexpected=%s\n     got=%s", expected, got)
	}
}

func TestParseStatements(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "let with annotation",
			input:    "let s: string = \"hi\"",
			expected: `Let("s", Some(String), String("hi"))`,
		},
		{
			name:     "let with array annotation",
			input:    "let xs: [int] = [1, 2, 3]",
			expected: `Let("xs", Some(Array(Int)), ArrayLiteral([Number(1), Number(2), Number(3)]))`,
		},
		{
			name:     "nested array type",
			input:    "let v: [[bool]] = []",
			expected: `Let("v", Some(Array(Array(Bool))), ArrayLiteral([]))`,
		},
		{
			name:     "bare call",
			input:    "print(y)",
			expected: `Expr(Call("print", [Identifier("y")]))`,
		},
		{
			name:     "call with several args",
			input:    "add(1, f(2), xs[0])",
			expected: `Expr(Call("add", [Number(1), Call("f", [Number(2)]), ArrayAccess(Identifier("xs"), Number(0))]))`,
		},
		{
			name:     "assignment expression",
			input:    "x = x + 1",
			expected: `Expr(BinaryOp(Identifier("x"), "=", BinaryOp(Identifier("x"), "+", Number(1))))`,
		},
		{
			name:     "booleans",
			input:    "let b = true",
			expected: `Let("b", None, Boolean(true))`,
		},
		{
			name:     "unary minus",
			input:    "let n = -x * 2",
			expected: `Let("n", None, BinaryOp(UnaryOp("-", Identifier("x")), "*", Number(2)))`,
		},
		{
			name:     "nested index",
			input:    "m[i][j]",
			expected: `Expr(ArrayAccess(ArrayAccess(Identifier("m"), Identifier("i")), Identifier("j")))`,
		},
		{
			name:     "parenthesised",
			input:    "let z = (1 + 2) * 3",
			expected: `Let("z", None, BinaryOp(BinaryOp(Number(1), "+", Number(2)), "*", Number(3)))`,
		},
		{
			name:     "if without else",
			input:    "if x -> print(x) end",
			expected: `If(Identifier("x"), [Expr(Call("print", [Identifier("x")]))], None)`,
		},
		{
			name:     "if with else",
			input:    "if x - 1 -> ret 1 else ret 2 end",
			expected: `If(BinaryOp(Identifier("x"), "-", Number(1)), [Return(Some(Number(1)))], Some([Return(Some(Number(2)))]))`,
		},
		{
			name:     "while",
			input:    "while n -> n = n - 1 end",
			expected: `While(Identifier("n"), [Expr(BinaryOp(Identifier("n"), "=", BinaryOp(Identifier("n"), "-", Number(1))))])`,
		},
		{
			name:     "for",
			input:    "for x in [1, 2] -> print(x) end",
			expected: `For("x", ArrayLiteral([Number(1), Number(2)]), [Expr(Call("print", [Identifier("x")]))])`,
		},
		{
			name:     "function with params",
			input:    "fnc add(a int, b: float) float -> ret a + b end",
			expected: `Function("add", [("a", Int), ("b", Float)], Float, [Return(Some(BinaryOp(Identifier("a"), "+", Identifier("b"))))])`,
		},
		{
			name:     "void function with bare return",
			input:    "fnc hello(names [string]) void -> ret end",
			expected: `Function("hello", [("names", Array(String))], Void, [Return(None)])`,
		},
		{
			name:     "trailing comma in array",
			input:    "let xs = [1, 2,]",
			expected: `Let("xs", None, ArrayLiteral([Number(1), Number(2)]))`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts := mustParse(t, tt.input)
			if len(stmts) != 1 {
				t.Fatalf("expected 1 statement, got %d: %s", len(stmts), ast.ProgramString(stmts))
			}
			if got := stmts[0].String(); got != tt.expected {
				t.Errorf("AST wrong.\nexpected=%s\n     got=%s", tt.expected, got)
			}
		})
	}
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		legacy   string
	}{
		{
			input:    "1 + 2 * 3",
			expected: `BinaryOp(Number(1), "+", BinaryOp(Number(2), "*", Number(3)))`,
			legacy:   `BinaryOp(Number(1), "+", BinaryOp(Number(2), "*", Number(3)))`,
		},
		{
			input:    "1 * 2 + 3",
			expected: `BinaryOp(BinaryOp(Number(1), "*", Number(2)), "+", Number(3))`,
			legacy:   `BinaryOp(Number(1), "*", BinaryOp(Number(2), "+", Number(3)))`,
		},
		{
			input:    "1 - 2 - 3",
			expected: `BinaryOp(BinaryOp(Number(1), "-", Number(2)), "-", Number(3))`,
			legacy:   `BinaryOp(Number(1), "-", BinaryOp(Number(2), "-", Number(3)))`,
		},
		{
			input:    "a = b = 3",
			expected: `BinaryOp(Identifier("a"), "=", BinaryOp(Identifier("b"), "=", Number(3)))`,
			legacy:   `BinaryOp(Identifier("a"), "=", BinaryOp(Identifier("b"), "=", Number(3)))`,
		},
		{
			input:    "8 / 4 / 2",
			expected: `BinaryOp(BinaryOp(Number(8), "/", Number(4)), "/", Number(2))`,
			legacy:   `BinaryOp(Number(8), "/", BinaryOp(Number(4), "/", Number(2)))`,
		},
	}

	for i, tt := range tests {
		stmts := mustParse(t, tt.input)
		got := stmts[0].(*ast.ExpressionStatement).Expression.String()
		if got != tt.expected {
			t.Errorf("tests[%d] - precedence wrong.\nexpected=%s\n     got=%s", i, tt.expected, got)
		}

		stmts = mustParse(t, tt.input, WithLegacyOperators())
		got = stmts[0].(*ast.ExpressionStatement).Expression.String()
		if got != tt.legacy {
			t.Errorf("tests[%d] - legacy grouping wrong.\nexpected=%s\n     got=%s", i, tt.legacy, got)
		}
	}
}

func TestMultipleTopLevelStatements(t *testing.T) {
	input := `
fnc square(n int) int ->
	ret n * n
end

fnc main() int ->
	let xs: [int] = [1, 2, 3]
	for x in xs ->
		print(square(x))
	end
	ret 0
end
`
	stmts := mustParse(t, input)
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(stmts))
	}
	main, ok := stmts[1].(*ast.FunctionDeclaration)
	if !ok {
		t.Fatalf("expected *ast.FunctionDeclaration, got %T", stmts[1])
	}
	if main.Body.Len() != 3 {
		t.Errorf("expected 3 statements in main, got %d", main.Body.Len())
	}
	if _, ok := main.Body.Statements[1].(*ast.ForStatement); !ok {
		t.Errorf("expected for statement, got %T", main.Body.Statements[1])
	}
}

func TestEmptyProgram(t *testing.T) {
	stmts := mustParse(t, "  \n ")
	if len(stmts) != 0 {
		t.Errorf("expected no statements, got %d", len(stmts))
	}
}

func TestParserErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"missing equals", "let x 5", "expected '=' in let statement"},
		{"missing identifier", "let = 5", "expected identifier after 'let'"},
		{"unterminated function", "fnc main() int -> ret 1", "unexpected end of input in function main"},
		{"missing arrow", "fnc main() int ret 1 end", "expected '->' before function body"},
		{"unknown type", "let x: number = 1", "unknown type: number"},
		{"missing type", "fnc f() -> end", "expected type"},
		{"bad parameter separator", "fnc f(a int b int) int -> end", "expected ',' or ')' in parameter list"},
		{"stray end", "end", "unexpected End at offset 0 at statement position"},
		{"stray else", "let a = 1 else", "unexpected Else"},
		{"for without in", "for x of xs -> end", "expected 'in' after iterator"},
		{"for without arrow", "for x in xs print(x) end", "expected '->' before for loop body"},
		{"if without end", "if x -> print(x)", "unexpected end of input in if statement"},
		{"else without end", "if x -> print(x) else print(1)", "unexpected end of input in else branch"},
		{"while without arrow", "while x end", "expected '->' after while condition"},
		{"unclosed call", "print(1, 2", "expected ',' or CloseParen in call arguments"},
		{"dangling comma in call", "print(1,", "unexpected end of input in call arguments"},
		{"unclosed index", "xs[1", "expected ']' after array index"},
		{"unclosed paren", "(1 + 2", "expected ')' after expression"},
		{"missing operand", "let x = 1 +", "unexpected token in expression: Eof"},
		{"keyword in expression", "let x = match", "unexpected token in expression: Match"},
		{"missing array separator", "[1 2]", "expected ',' or CloseBracket in array literal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts, err := ParseSource(tt.input)
			if err == nil {
				t.Fatalf("expected error, got %s", ast.ProgramString(stmts))
			}
			if stmts != nil {
				t.Errorf("no partial result may escape a failed parse, got %v", stmts)
			}
			if !qerrors.Is(err, qerrors.KindSyntax) {
				t.Errorf("expected Syntax error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("expected message containing %q, got %q", tt.message, err.Error())
			}
		})
	}
}

func TestParseDoesNotMutateTokens(t *testing.T) {
	tokens, err := lexer.Tokenize("fnc f(a int) int -> ret a end")
	if err != nil {
		t.Fatal(err)
	}
	snapshot := make([]lexer.Token, len(tokens))
	copy(snapshot, tokens)

	first, err := Parse(tokens)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Parse(tokens)
	if err != nil {
		t.Fatal(err)
	}

	for i := range tokens {
		if tokens[i] != snapshot[i] {
			t.Fatalf("tests[%d] - token buffer modified: %v -> %v", i, snapshot[i], tokens[i])
		}
	}
	if ast.ProgramString(first) != ast.ProgramString(second) {
		t.Errorf("parsing the same buffer twice gave different trees")
	}
}

func TestParseWithoutTrailingEOF(t *testing.T) {
	tokens := []lexer.Token{
		{Type: lexer.TokenLet, Literal: "let"},
		{Type: lexer.TokenIdentifier, Literal: "x", Offset: 4},
		{Type: lexer.TokenOperator, Literal: "=", Offset: 6},
		{Type: lexer.TokenNumber, Literal: "1", Value: 1, Offset: 8},
	}
	stmts, err := Parse(tokens)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := ast.ProgramString(stmts); got != "Let(\"x\", None, Number(1))\n" {
		t.Errorf("unexpected AST %q", got)
	}

	if _, err := Parse(nil); err != nil {
		t.Errorf("empty buffer must parse to nothing, got %v", err)
	}
}
