package ast

// Inspect traverses the tree rooted at node in depth-first order, calling
// f for each node. If f returns false the children of that node are
// skipped. Parameter and return types are visited as Type nodes.
func Inspect(node Node, f func(Node) bool) {
	if isNil(node) || !f(node) {
		return
	}

	switch n := node.(type) {
	// Statements
	case *LetStatement:
		inspectOpt(n.Type, f)
		Inspect(n.Value, f)
	case *ReturnStatement:
		inspectOpt(n.Value, f)
	case *IfStatement:
		Inspect(n.Condition, f)
		Inspect(n.Then, f)
		if n.Else != nil {
			Inspect(n.Else, f)
		}
	case *WhileStatement:
		Inspect(n.Condition, f)
		Inspect(n.Body, f)
	case *ForStatement:
		Inspect(n.Iterable, f)
		Inspect(n.Body, f)
	case *FunctionDeclaration:
		for _, p := range n.Parameters {
			inspectOpt(p.Type, f)
		}
		inspectOpt(n.ReturnType, f)
		Inspect(n.Body, f)
	case *BlockStatement:
		for _, s := range n.Statements {
			Inspect(s, f)
		}
	case *ExpressionStatement:
		Inspect(n.Expression, f)

	// Expressions
	case *BinaryExpression:
		Inspect(n.Left, f)
		Inspect(n.Right, f)
	case *UnaryExpression:
		Inspect(n.Operand, f)
	case *CallExpression:
		for _, a := range n.Args {
			Inspect(a, f)
		}
	case *ArrayLiteral:
		for _, e := range n.Elements {
			Inspect(e, f)
		}
	case *IndexExpression:
		Inspect(n.Array, f)
		Inspect(n.Index, f)
	case *TernaryExpression:
		Inspect(n.Condition, f)
		Inspect(n.Then, f)
		Inspect(n.Else, f)

	// Types
	case *ArrayType:
		Inspect(n.Element, f)
	}
}

func inspectOpt(n Node, f func(Node) bool) {
	if n != nil {
		Inspect(n, f)
	}
}

// InspectAll runs Inspect over every statement of a program
func InspectAll(stmts []Statement, f func(Node) bool) {
	for _, s := range stmts {
		Inspect(s, f)
	}
}
