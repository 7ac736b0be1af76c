package parser

import (
	"github.com/quark-lang/quark/internal/ast"
	"github.com/quark-lang/quark/internal/lexer"
)

// =============================================================================
// Declaration Parsing
// =============================================================================

// parseFunctionDeclaration parses
//
//	fnc Identifier ( [Param {, Param}] ) Type -> Statements end
//
// where Param is `Identifier [:] Type`.
func (p *Parser) parseFunctionDeclaration() (ast.Statement, error) {
	p.advance() // 'fnc'

	name, err := p.expect(lexer.TokenIdentifier, "function name after 'fnc'")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenLParen, "'(' after function name"); err != nil {
		return nil, err
	}

	params, err := p.parseParameterList()
	if err != nil {
		return nil, err
	}

	returnType, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenArrow, "'->' before function body"); err != nil {
		return nil, err
	}

	body, err := p.parseBody("function " + name.Literal)
	if err != nil {
		return nil, err
	}

	return &ast.FunctionDeclaration{
		Name:       name.Literal,
		Parameters: params,
		ReturnType: returnType,
		Body:       body,
	}, nil
}

// parseParameterList parses parameters up to and including ')'
func (p *Parser) parseParameterList() ([]ast.Parameter, error) {
	params := make([]ast.Parameter, 0)
	if p.currentTokenIs(lexer.TokenRParen) {
		p.advance()
		return params, nil
	}

	for {
		name, err := p.expect(lexer.TokenIdentifier, "parameter name")
		if err != nil {
			return nil, err
		}
		if p.currentTokenIs(lexer.TokenColon) {
			p.advance()
		}
		typeSpec, err := p.parseType()
		if err != nil {
			return nil, err
		}
		params = append(params, ast.Parameter{Name: name.Literal, Type: typeSpec})

		switch tok := p.advance(); tok.Type {
		case lexer.TokenComma:
			continue
		case lexer.TokenRParen:
			return params, nil
		default:
			return nil, p.errorf("expected ',' or ')' in parameter list, got %s", tok.Describe())
		}
	}
}

// =============================================================================
// Type Parsing
// =============================================================================

// typeNames maps the textual spelling of scalar types. "void" is not a
// keyword, so it only ever arrives as an identifier.
var typeNames = map[string]ast.BasicKind{
	"int":    ast.Int,
	"float":  ast.Float,
	"string": ast.String,
	"bool":   ast.Bool,
	"void":   ast.Void,
}

// parseType parses a scalar type name or `[ Type ]`
func (p *Parser) parseType() (ast.Type, error) {
	tok := p.advance()
	switch tok.Type {
	case lexer.TokenTypeInt:
		return ast.IntType(), nil
	case lexer.TokenTypeFloat:
		return ast.FloatType(), nil
	case lexer.TokenTypeString:
		return ast.StringType(), nil
	case lexer.TokenTypeBool:
		return ast.BoolType(), nil
	case lexer.TokenIdentifier:
		if kind, ok := typeNames[tok.Literal]; ok {
			return &ast.BasicType{Kind: kind}, nil
		}
		return nil, p.errorf("unknown type: %s", tok.Literal)
	case lexer.TokenLBracket:
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenRBracket, "']' after array type"); err != nil {
			return nil, err
		}
		return ast.ArrayOf(elem), nil
	}
	return nil, p.errorf("expected type, got %s", tok.Describe())
}
