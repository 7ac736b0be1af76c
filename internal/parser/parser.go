// Package parser implements the quark recursive descent parser.
//
// The parser reads an immutable token buffer through a cursor that only
// moves forward. Every production returns an error instead of aborting, and
// the first error ends the parse: there is no resynchronisation.
package parser

import (
	"github.com/quark-lang/quark/internal/ast"
	qerrors "github.com/quark-lang/quark/internal/errors"
	"github.com/quark-lang/quark/internal/lexer"
)

// Option configures a Parser
type Option func(*Parser)

// WithLegacyOperators makes binary expressions parse as a flat,
// right-nested chain without precedence, e.g. `1 - 2 - 3` becomes
// 1 - (2 - 3). This reproduces the grouping of older quark releases.
func WithLegacyOperators() Option {
	return func(p *Parser) { p.legacyOperators = true }
}

// Parser represents the recursive descent parser
type Parser struct {
	tokens []lexer.Token
	pos    int

	legacyOperators bool
}

// NewParser creates a parser over tokens. The buffer is never modified.
func NewParser(tokens []lexer.Token, opts ...Option) *Parser {
	p := &Parser{tokens: tokens}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses a complete token sequence into top-level statements
func Parse(tokens []lexer.Token, opts ...Option) ([]ast.Statement, error) {
	return NewParser(tokens, opts...).ParseProgram()
}

// ParseSource tokenizes and parses src
func ParseSource(src string, opts ...Option) ([]ast.Statement, error) {
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	return Parse(tokens, opts...)
}

// ====== Cursor ======

// peek returns the current token. Past the end of the buffer it returns
// an EOF token, so a buffer without a trailing EOF is still safe.
func (p *Parser) peek() lexer.Token {
	return p.peekN(0)
}

// peekN looks k tokens ahead without consuming anything
func (p *Parser) peekN(k int) lexer.Token {
	i := p.pos + k
	if i < len(p.tokens) {
		return p.tokens[i]
	}
	off := 0
	if n := len(p.tokens); n > 0 {
		off = p.tokens[n-1].Offset
	}
	return lexer.Token{Type: lexer.TokenEOF, Offset: off}
}

// advance consumes and returns the current token
func (p *Parser) advance() lexer.Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// currentTokenIs checks if the current token is of the given type
func (p *Parser) currentTokenIs(tokenType lexer.TokenType) bool {
	return p.peek().Type == tokenType
}

// expect consumes a token of the given type or fails with what
// describing the expectation, e.g. "'(' after function name".
func (p *Parser) expect(tokenType lexer.TokenType, what string) (lexer.Token, error) {
	tok := p.peek()
	if tok.Type != tokenType {
		return tok, p.errorf("expected %s, got %s", what, tok.Describe())
	}
	return p.advance(), nil
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	return qerrors.Syntax(format, args...)
}

// ====== Grammar Rules ======

// ParseProgram parses statements until end of input
func (p *Parser) ParseProgram() ([]ast.Statement, error) {
	statements := make([]ast.Statement, 0)
	for !p.currentTokenIs(lexer.TokenEOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}
	return statements, nil
}

// parseStatement dispatches on the leading token
func (p *Parser) parseStatement() (ast.Statement, error) {
	switch tok := p.peek(); tok.Type {
	case lexer.TokenLet:
		return p.parseLetStatement()
	case lexer.TokenRet:
		return p.parseReturnStatement()
	case lexer.TokenFnc:
		return p.parseFunctionDeclaration()
	case lexer.TokenIf:
		return p.parseIfStatement()
	case lexer.TokenWhile:
		return p.parseWhileStatement()
	case lexer.TokenFor:
		return p.parseForStatement()
	case lexer.TokenEnd, lexer.TokenElse, lexer.TokenArrow, lexer.TokenEOF:
		return nil, p.errorf("unexpected %s at statement position", tok.Describe())
	default:
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &ast.ExpressionStatement{Expression: expr}, nil
	}
}

// parseBlock parses statements up to one of the terminators and returns
// the terminator it stopped at, without consuming it.
func (p *Parser) parseBlock(context string, terminators ...lexer.TokenType) (*ast.BlockStatement, lexer.TokenType, error) {
	block := &ast.BlockStatement{Statements: make([]ast.Statement, 0)}
	for {
		tok := p.peek()
		for _, t := range terminators {
			if tok.Type == t {
				return block, t, nil
			}
		}
		if tok.Type == lexer.TokenEOF {
			return nil, tok.Type, p.errorf("unexpected end of input in %s, expected 'end'", context)
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, tok.Type, err
		}
		block.Statements = append(block.Statements, stmt)
	}
}

// parseBody parses `Statements end` and consumes the `end`
func (p *Parser) parseBody(context string) (*ast.BlockStatement, error) {
	block, _, err := p.parseBlock(context, lexer.TokenEnd)
	if err != nil {
		return nil, err
	}
	p.advance() // 'end'
	return block, nil
}

// parseLetStatement parses `let Identifier [: Type] = Expr`
func (p *Parser) parseLetStatement() (ast.Statement, error) {
	p.advance() // 'let'

	name, err := p.expect(lexer.TokenIdentifier, "identifier after 'let'")
	if err != nil {
		return nil, err
	}

	var typeSpec ast.Type
	if p.currentTokenIs(lexer.TokenColon) {
		p.advance()
		if typeSpec, err = p.parseType(); err != nil {
			return nil, err
		}
	}

	if tok := p.peek(); !tok.IsOperator("=") {
		return nil, p.errorf("expected '=' in let statement, got %s", tok.Describe())
	}
	p.advance()

	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.LetStatement{Name: name.Literal, Type: typeSpec, Value: value}, nil
}

// parseReturnStatement parses `ret [Expr]`. A return directly before a
// block terminator carries no value.
func (p *Parser) parseReturnStatement() (ast.Statement, error) {
	p.advance() // 'ret'

	switch p.peek().Type {
	case lexer.TokenEnd, lexer.TokenElse, lexer.TokenEOF:
		return &ast.ReturnStatement{}, nil
	}

	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.ReturnStatement{Value: value}, nil
}

// parseIfStatement parses `if Expr -> Statements [else Statements] end`
func (p *Parser) parseIfStatement() (ast.Statement, error) {
	p.advance() // 'if'

	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenArrow, "'->' after if condition"); err != nil {
		return nil, err
	}

	then, term, err := p.parseBlock("if statement", lexer.TokenElse, lexer.TokenEnd)
	if err != nil {
		return nil, err
	}
	p.advance() // 'else' or 'end'

	stmt := &ast.IfStatement{Condition: cond, Then: then}
	if term == lexer.TokenElse {
		if stmt.Else, err = p.parseBody("else branch"); err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

// parseWhileStatement parses `while Expr -> Statements end`
func (p *Parser) parseWhileStatement() (ast.Statement, error) {
	p.advance() // 'while'

	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenArrow, "'->' after while condition"); err != nil {
		return nil, err
	}

	body, err := p.parseBody("while loop")
	if err != nil {
		return nil, err
	}
	return &ast.WhileStatement{Condition: cond, Body: body}, nil
}

// parseForStatement parses `for Identifier in Expr -> Statements end`.
// "in" is an ordinary identifier, not a keyword.
func (p *Parser) parseForStatement() (ast.Statement, error) {
	p.advance() // 'for'

	iter, err := p.expect(lexer.TokenIdentifier, "identifier after 'for'")
	if err != nil {
		return nil, err
	}

	if tok := p.peek(); tok.Type != lexer.TokenIdentifier || tok.Literal != "in" {
		return nil, p.errorf("expected 'in' after iterator in for loop, got %s", tok.Describe())
	}
	p.advance()

	iterable, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenArrow, "'->' before for loop body"); err != nil {
		return nil, err
	}

	body, err := p.parseBody("for loop")
	if err != nil {
		return nil, err
	}
	return &ast.ForStatement{Iterator: iter.Literal, Iterable: iterable, Body: body}, nil
}
