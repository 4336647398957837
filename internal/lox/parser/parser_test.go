package parser_test

import (
	"testing"

	"github.com/mna/loxcraft/internal/lox/ast"
	"github.com/mna/loxcraft/internal/lox/parser"
	"github.com/stretchr/testify/require"
)

func TestParseExpressionPrecedence(t *testing.T) {
	stmts, err := parser.Parse(`print 1 + 2 * 3;`)
	require.NoError(t, err)
	require.Len(t, stmts, 1)

	pr := stmts[0].(*ast.PrintStmt)
	bin := pr.Expr.(*ast.BinaryExpr)
	require.Equal(t, float64(1), bin.Left.(*ast.LiteralExpr).Value)
	mul := bin.Right.(*ast.BinaryExpr)
	require.Equal(t, float64(2), mul.Left.(*ast.LiteralExpr).Value)
	require.Equal(t, float64(3), mul.Right.(*ast.LiteralExpr).Value)
}

func TestParseClassWithSuperclass(t *testing.T) {
	stmts, err := parser.Parse(`
class A { greet() { print "A"; } }
class B < A { greet() { super.greet(); } }
`)
	require.NoError(t, err)
	require.Len(t, stmts, 2)

	b := stmts[1].(*ast.ClassStmt)
	require.Equal(t, "B", b.Name)
	require.NotNil(t, b.Super)
	require.Equal(t, "A", b.Super.Name)
	require.Len(t, b.Methods, 1)
	require.Equal(t, "greet", b.Methods[0].Name)
}

func TestParseForLoopDesugarsToWhile(t *testing.T) {
	stmts, err := parser.Parse(`for (var i = 0; i < 3; i = i + 1) print i;`)
	require.NoError(t, err)
	require.Len(t, stmts, 1)

	outer := stmts[0].(*ast.BlockStmt)
	require.Len(t, outer.Stmts, 2)
	require.IsType(t, &ast.VarStmt{}, outer.Stmts[0])
	require.IsType(t, &ast.WhileStmt{}, outer.Stmts[1])
}

func TestInvalidAssignmentTargetIsError(t *testing.T) {
	_, err := parser.Parse(`1 + 2 = 3;`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Invalid assignment target")
}

func TestClassInheritingFromItselfIsError(t *testing.T) {
	_, err := parser.Parse(`class A < A {}`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "can't inherit from itself")
}
