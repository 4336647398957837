// Package ast defines the node types of LoxLang's abstract syntax tree, used
// by the tree-walker half of the interpreter (spec §1 "a tree-walking
// evaluator with a separate semantic resolver"). Every node carries the
// source line of its leading token, for runtime error reporting.
//
// Nodes implement Walk, which visits a node's direct children generically.
// The resolver and the interpreter do not use it: they type-switch on the
// node types. The bytecode compiler never builds a tree at all.
package ast

// Node is any AST node.
type Node interface {
	// Walk calls v.Visit(child) for each direct child of the node.
	Walk(v Visitor)
}

// Expr is an expression node: evaluates to a value.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a statement node: executed for effect.
type Stmt interface {
	Node
	stmtNode()
}

// Visitor is called once per child node during Walk.
type Visitor interface {
	Visit(n Node)
}

// VisitorFunc adapts a plain function to Visitor.
type VisitorFunc func(n Node)

func (f VisitorFunc) Visit(n Node) { f(n) }
