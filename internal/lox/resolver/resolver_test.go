package resolver_test

import (
	"testing"

	"github.com/mna/loxcraft/internal/lox/ast"
	"github.com/mna/loxcraft/internal/lox/parser"
	"github.com/mna/loxcraft/internal/lox/resolver"
	"github.com/stretchr/testify/require"
)

func TestResolveLocalDistance(t *testing.T) {
	stmts, err := parser.Parse(`
fun mk() { var x = 0; fun inc() { x = x + 1; return x; } return inc; }
`)
	require.NoError(t, err)

	locals, err := resolver.Resolve(stmts)
	require.NoError(t, err)

	mk := stmts[0].(*ast.FunctionStmt)
	inc := mk.Body[1].(*ast.FunctionStmt)
	assign := inc.Body[0].(*ast.ExprStmt).Expr.(*ast.AssignExpr)
	// inc's own param scope (0 hops) has no "x"; mk's param scope (1 hop)
	// is where it was declared.
	require.Equal(t, 1, locals[assign])
}

func TestSelfReferentialInitializerIsError(t *testing.T) {
	stmts, err := parser.Parse(`{ var a = a; }`)
	require.NoError(t, err)

	_, err = resolver.Resolve(stmts)
	require.Error(t, err)
	require.Contains(t, err.Error(), "its own initializer")
}

func TestThisOutsideClassIsError(t *testing.T) {
	stmts, err := parser.Parse(`print this;`)
	require.NoError(t, err)

	_, err = resolver.Resolve(stmts)
	require.Error(t, err)
	require.Contains(t, err.Error(), "'this' outside of a class")
}

func TestSuperWithoutSuperclassIsError(t *testing.T) {
	stmts, err := parser.Parse(`class A { m() { super.m(); } }`)
	require.NoError(t, err)

	_, err = resolver.Resolve(stmts)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no superclass")
}

func TestClassInheritingFromItselfIsError(t *testing.T) {
	// The parser already rejects `class A < A`, so parse a valid subclass and
	// point its superclass at itself on the tree.
	stmts, err := parser.Parse(`class A < B {}`)
	require.NoError(t, err)
	stmts[0].(*ast.ClassStmt).Super.Name = "A"

	_, err = resolver.Resolve(stmts)
	require.Error(t, err)
	require.Contains(t, err.Error(), "can't inherit from itself")
}
