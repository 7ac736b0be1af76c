// Package ast defines the abstract syntax tree for quark programs.
//
// Nodes are plain values: the parser builds them once, later passes only
// read them. Every node renders itself in constructor notation through
// String, e.g. Let("x", None, Number(5)), which is what `quark ast` prints.
package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Node is the base interface for all AST nodes
type Node interface {
	String() string
}

// Statement represents all statement nodes
type Statement interface {
	Node
	statementNode()
}

// Expression represents all expression nodes
type Expression interface {
	Node
	expressionNode()
}

// Type represents all type nodes
type Type interface {
	Node
	typeNode()
}

// ====== Types ======

// BasicKind enumerates the non-aggregate types
type BasicKind int

const (
	Int BasicKind = iota
	Float
	String
	Bool
	Void
	// Unknown means "no annotation / unresolved". It must be resolved
	// before code generation.
	Unknown
)

var basicKindNames = [...]string{
	Int:     "Int",
	Float:   "Float",
	String:  "String",
	Bool:    "Bool",
	Void:    "Void",
	Unknown: "Unknown",
}

func (k BasicKind) String() string {
	if int(k) < len(basicKindNames) {
		return basicKindNames[k]
	}
	return fmt.Sprintf("BasicKind(%d)", int(k))
}

// BasicType is a scalar type, Void or Unknown
type BasicType struct {
	Kind BasicKind
}

func (b *BasicType) String() string { return b.Kind.String() }
func (b *BasicType) typeNode()      {}

// ArrayType is a one-dimensional array of Element
type ArrayType struct {
	Element Type
}

func (a *ArrayType) String() string { return fmt.Sprintf("Array(%s)", nodeString(a.Element)) }
func (a *ArrayType) typeNode()      {}

// Shorthand constructors
func IntType() Type             { return &BasicType{Kind: Int} }
func FloatType() Type           { return &BasicType{Kind: Float} }
func StringType() Type          { return &BasicType{Kind: String} }
func BoolType() Type            { return &BasicType{Kind: Bool} }
func VoidType() Type            { return &BasicType{Kind: Void} }
func UnknownType() Type         { return &BasicType{Kind: Unknown} }
func ArrayOf(element Type) Type { return &ArrayType{Element: element} }

// IsKind reports whether t is the basic type k
func IsKind(t Type, k BasicKind) bool {
	b, ok := t.(*BasicType)
	return ok && b.Kind == k
}

// TypesEqual reports structural equality. nil equals only nil.
func TypesEqual(a, b Type) bool {
	switch at := a.(type) {
	case nil:
		return b == nil
	case *BasicType:
		bt, ok := b.(*BasicType)
		return ok && at.Kind == bt.Kind
	case *ArrayType:
		bt, ok := b.(*ArrayType)
		return ok && TypesEqual(at.Element, bt.Element)
	}
	return false
}

// ====== Expressions ======

// NumberLiteral is a numeric literal. The lexer only produces integral values.
type NumberLiteral struct {
	Value float64
}

func (n *NumberLiteral) String() string {
	return "Number(" + FormatNumber(n.Value) + ")"
}
func (n *NumberLiteral) expressionNode() {}

// IsIntegral reports whether the literal has no fractional part
func (n *NumberLiteral) IsIntegral() bool {
	return n.Value == float64(int64(n.Value))
}

// StringLiteral holds the verbatim text between the quotes
type StringLiteral struct {
	Value string
}

func (s *StringLiteral) String() string  { return fmt.Sprintf("String(%q)", s.Value) }
func (s *StringLiteral) expressionNode() {}

// BooleanLiteral is true or false
type BooleanLiteral struct {
	Value bool
}

func (b *BooleanLiteral) String() string  { return fmt.Sprintf("Boolean(%t)", b.Value) }
func (b *BooleanLiteral) expressionNode() {}

// Identifier is a name reference, resolved by textual match
type Identifier struct {
	Name string
}

func (i *Identifier) String() string  { return fmt.Sprintf("Identifier(%q)", i.Name) }
func (i *Identifier) expressionNode() {}

// BinaryExpression is Left Operator Right
type BinaryExpression struct {
	Left     Expression
	Operator string
	Right    Expression
}

func (b *BinaryExpression) String() string {
	return fmt.Sprintf("BinaryOp(%s, %q, %s)", nodeString(b.Left), b.Operator, nodeString(b.Right))
}
func (b *BinaryExpression) expressionNode() {}

// UnaryExpression is a prefix operator applied to Operand
type UnaryExpression struct {
	Operator string
	Operand  Expression
}

func (u *UnaryExpression) String() string {
	return fmt.Sprintf("UnaryOp(%q, %s)", u.Operator, nodeString(u.Operand))
}
func (u *UnaryExpression) expressionNode() {}

// CallExpression calls the function Name with positional Args
type CallExpression struct {
	Name string
	Args []Expression
}

func (c *CallExpression) String() string {
	return fmt.Sprintf("Call(%q, %s)", c.Name, exprList(c.Args))
}
func (c *CallExpression) expressionNode() {}

// ArrayLiteral is [e1, e2, ...]
type ArrayLiteral struct {
	Elements []Expression
}

func (a *ArrayLiteral) String() string  { return fmt.Sprintf("ArrayLiteral(%s)", exprList(a.Elements)) }
func (a *ArrayLiteral) expressionNode() {}

// IndexExpression is Array[Index]
type IndexExpression struct {
	Array Expression
	Index Expression
}

func (i *IndexExpression) String() string {
	return fmt.Sprintf("ArrayAccess(%s, %s)", nodeString(i.Array), nodeString(i.Index))
}
func (i *IndexExpression) expressionNode() {}

// TernaryExpression is Condition ? Then : Else
type TernaryExpression struct {
	Condition Expression
	Then      Expression
	Else      Expression
}

func (t *TernaryExpression) String() string {
	return fmt.Sprintf("Ternary(%s, %s, %s)", nodeString(t.Condition), nodeString(t.Then), nodeString(t.Else))
}
func (t *TernaryExpression) expressionNode() {}

// ====== Statements ======

// LetStatement binds Name to Value. Type is nil when there is no annotation.
type LetStatement struct {
	Name  string
	Type  Type
	Value Expression
}

func (l *LetStatement) String() string {
	return fmt.Sprintf("Let(%q, %s, %s)", l.Name, optional(l.Type), nodeString(l.Value))
}
func (l *LetStatement) statementNode() {}

// ReturnStatement returns Value, or nothing when Value is nil
type ReturnStatement struct {
	Value Expression
}

func (r *ReturnStatement) String() string {
	return fmt.Sprintf("Return(%s)", optional(r.Value))
}
func (r *ReturnStatement) statementNode() {}

// IfStatement executes Then when Condition holds, otherwise Else (may be nil)
type IfStatement struct {
	Condition Expression
	Then      *BlockStatement
	Else      *BlockStatement
}

func (i *IfStatement) String() string {
	elseStr := "None"
	if i.Else != nil {
		elseStr = "Some(" + i.Else.list() + ")"
	}
	return fmt.Sprintf("If(%s, %s, %s)", nodeString(i.Condition), i.Then.list(), elseStr)
}
func (i *IfStatement) statementNode() {}

// WhileStatement loops while Condition holds
type WhileStatement struct {
	Condition Expression
	Body      *BlockStatement
}

func (w *WhileStatement) String() string {
	return fmt.Sprintf("While(%s, %s)", nodeString(w.Condition), w.Body.list())
}
func (w *WhileStatement) statementNode() {}

// ForStatement binds Iterator to each element of Iterable
type ForStatement struct {
	Iterator string
	Iterable Expression
	Body     *BlockStatement
}

func (f *ForStatement) String() string {
	return fmt.Sprintf("For(%q, %s, %s)", f.Iterator, nodeString(f.Iterable), f.Body.list())
}
func (f *ForStatement) statementNode() {}

// Parameter is one (name, type) pair of a function signature
type Parameter struct {
	Name string
	Type Type
}

func (p Parameter) String() string { return fmt.Sprintf("(%q, %s)", p.Name, nodeString(p.Type)) }

// FunctionDeclaration represents a function declaration
type FunctionDeclaration struct {
	Name       string
	Parameters []Parameter
	ReturnType Type
	Body       *BlockStatement
}

func (f *FunctionDeclaration) String() string {
	params := make([]string, len(f.Parameters))
	for i, p := range f.Parameters {
		params[i] = p.String()
	}
	return fmt.Sprintf("Function(%q, [%s], %s, %s)",
		f.Name, strings.Join(params, ", "), nodeString(f.ReturnType), f.Body.list())
}
func (f *FunctionDeclaration) statementNode() {}

// BlockStatement is an ordered statement list
type BlockStatement struct {
	Statements []Statement
}

func (b *BlockStatement) String() string { return "Block(" + b.list() + ")" }
func (b *BlockStatement) statementNode() {}

func (b *BlockStatement) list() string {
	if b == nil {
		return "[]"
	}
	parts := make([]string, len(b.Statements))
	for i, s := range b.Statements {
		parts[i] = nodeString(s)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Len returns the number of statements, treating nil as empty
func (b *BlockStatement) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Statements)
}

// ExpressionStatement is an expression used as a statement, e.g. a bare call
type ExpressionStatement struct {
	Expression Expression
}

func (e *ExpressionStatement) String() string { return fmt.Sprintf("Expr(%s)", nodeString(e.Expression)) }
func (e *ExpressionStatement) statementNode() {}

// ====== helpers ======

// FormatNumber renders a numeric literal in its shortest decimal form.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ProgramString renders a whole statement list, one statement per line
func ProgramString(stmts []Statement) string {
	var sb strings.Builder
	for _, s := range stmts {
		sb.WriteString(nodeString(s))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func exprList(exprs []Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = nodeString(e)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// optional renders Some(x) / None
func optional(n Node) string {
	if isNil(n) {
		return "None"
	}
	return "Some(" + n.String() + ")"
}

func nodeString(n Node) string {
	if isNil(n) {
		return "<nil>"
	}
	return n.String()
}

// isNil catches both untyped nil and typed nil pointers stored in an interface
func isNil(n Node) bool {
	if n == nil {
		return true
	}
	switch v := n.(type) {
	case *BasicType:
		return v == nil
	case *ArrayType:
		return v == nil
	case *BlockStatement:
		return v == nil
	}
	return false
}
