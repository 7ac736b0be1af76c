package parser

import (
	"github.com/quark-lang/quark/internal/ast"
	"github.com/quark-lang/quark/internal/lexer"
)

// =============================================================================
// Operator Table
// =============================================================================

type operatorInfo struct {
	precedence int
	rightAssoc bool
}

// binaryOperators lists every binary operator the lexer can produce.
// Assignment binds loosest and groups to the right.
var binaryOperators = map[string]operatorInfo{
	"=": {precedence: 1, rightAssoc: true},
	"+": {precedence: 2},
	"-": {precedence: 2},
	"*": {precedence: 3},
	"/": {precedence: 3},
}

// =============================================================================
// Expression Parsing
// =============================================================================

// parseExpression parses a full expression
func (p *Parser) parseExpression() (ast.Expression, error) {
	if p.legacyOperators {
		return p.parseOperatorChain()
	}
	return p.parseBinaryExpression(1)
}

// parseBinaryExpression implements precedence climbing: it parses operands
// joined by operators whose precedence is at least minPrec.
func (p *Parser) parseBinaryExpression(minPrec int) (ast.Expression, error) {
	left, err := p.parseUnaryExpression()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()
		if tok.Type != lexer.TokenOperator {
			return left, nil
		}
		info, ok := binaryOperators[tok.Literal]
		if !ok {
			return nil, p.errorf("unknown operator %s", tok.Describe())
		}
		if info.precedence < minPrec {
			return left, nil
		}
		p.advance()

		next := info.precedence + 1
		if info.rightAssoc {
			next = info.precedence
		}
		right, err := p.parseBinaryExpression(next)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpression{Left: left, Operator: tok.Literal, Right: right}
	}
}

// parseOperatorChain parses `Term {Operator Term}` as a right-nested chain
// with no precedence.
func (p *Parser) parseOperatorChain() (ast.Expression, error) {
	left, err := p.parseUnaryExpression()
	if err != nil {
		return nil, err
	}

	tok := p.peek()
	if tok.Type != lexer.TokenOperator {
		return left, nil
	}
	p.advance()

	right, err := p.parseOperatorChain()
	if err != nil {
		return nil, err
	}
	return &ast.BinaryExpression{Left: left, Operator: tok.Literal, Right: right}, nil
}

// parseUnaryExpression handles prefix minus
func (p *Parser) parseUnaryExpression() (ast.Expression, error) {
	if tok := p.peek(); tok.IsOperator("-") {
		p.advance()
		operand, err := p.parseUnaryExpression()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpression{Operator: "-", Operand: operand}, nil
	}
	return p.parsePrimaryExpression()
}

// parsePrimaryExpression parses literals, identifiers, calls, indexing,
// array literals and parenthesised expressions
func (p *Parser) parsePrimaryExpression() (ast.Expression, error) {
	tok := p.advance()
	switch tok.Type {
	case lexer.TokenNumber:
		return &ast.NumberLiteral{Value: tok.Value}, nil
	case lexer.TokenString:
		return &ast.StringLiteral{Value: tok.Literal}, nil
	case lexer.TokenIdentifier:
		return p.parseIdentifierExpression(tok)
	case lexer.TokenLBracket:
		return p.parseArrayLiteral()
	case lexer.TokenLParen:
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenRParen, "')' after expression"); err != nil {
			return nil, err
		}
		return expr, nil
	}
	return nil, p.errorf("unexpected token in expression: %s", tok.Describe())
}

// parseIdentifierExpression continues after an identifier: a call when
// followed by '(', an array access when followed by '['.
func (p *Parser) parseIdentifierExpression(ident lexer.Token) (ast.Expression, error) {
	switch ident.Literal {
	case "true":
		return &ast.BooleanLiteral{Value: true}, nil
	case "false":
		return &ast.BooleanLiteral{Value: false}, nil
	}

	if p.currentTokenIs(lexer.TokenLParen) {
		p.advance()
		args, err := p.parseExpressionList(lexer.TokenRParen, "call arguments")
		if err != nil {
			return nil, err
		}
		return &ast.CallExpression{Name: ident.Literal, Args: args}, nil
	}

	var expr ast.Expression = &ast.Identifier{Name: ident.Literal}
	for p.currentTokenIs(lexer.TokenLBracket) {
		p.advance()
		index, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenRBracket, "']' after array index"); err != nil {
			return nil, err
		}
		expr = &ast.IndexExpression{Array: expr, Index: index}
	}
	return expr, nil
}

// parseArrayLiteral parses the remainder of `[ e1, e2, ... ]`
func (p *Parser) parseArrayLiteral() (ast.Expression, error) {
	elems, err := p.parseExpressionList(lexer.TokenRBracket, "array literal")
	if err != nil {
		return nil, err
	}
	return &ast.ArrayLiteral{Elements: elems}, nil
}

// parseExpressionList parses comma separated expressions up to and
// including the closing token. A trailing comma is accepted.
func (p *Parser) parseExpressionList(closing lexer.TokenType, context string) ([]ast.Expression, error) {
	list := make([]ast.Expression, 0)
	for {
		if p.currentTokenIs(closing) {
			p.advance()
			return list, nil
		}
		if p.currentTokenIs(lexer.TokenEOF) {
			return nil, p.errorf("unexpected end of input in %s", context)
		}

		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		list = append(list, expr)

		switch tok := p.peek(); tok.Type {
		case lexer.TokenComma:
			p.advance()
		case closing:
		default:
			return nil, p.errorf("expected ',' or %s in %s, got %s", closing, context, tok.Describe())
		}
	}
}
