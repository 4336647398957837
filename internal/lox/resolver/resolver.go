// Package resolver implements the tree-walker's static scope-distance pass
// (spec §4.5): a second AST walk between parsing and evaluation that
// precomputes, for every variable reference and assignment, how many
// enclosing scopes to hop to find its declaration. The bytecode compiler
// does the equivalent job (locals/upvalues) as part of compiling to
// instructions; this package is its tree-walker analogue, operating on the
// ast tree instead.
package resolver

import (
	goscanner "go/scanner"
	gotoken "go/token"

	"github.com/dolthub/swiss"

	"github.com/mna/loxcraft/internal/lox/ast"
)

// ErrorList accumulates resolution errors, the same convention the compiler
// and parser packages use (grounded on the teacher's own
// `lang/resolver/resolver.go`, which defines the identical type alias).
type ErrorList = goscanner.ErrorList

// functionType tracks what kind of function body is currently being
// resolved, so that `return` can be validated (spec §4.5).
type functionType int

const (
	funcNone functionType = iota
	funcFunction
	funcMethod
	funcInitializer
)

// classType tracks whether `this`/`super` are valid in the current scope.
type classType int

const (
	classNone classType = iota
	classClass
	classSubclass
)

// Locals maps a resolved VariableExpr/AssignExpr/ThisExpr/SuperExpr node
// (by pointer identity, per spec §4.5 "a side-map keyed by AST-node
// identity") to its scope distance: the number of enclosing environments to
// walk before the declaring one is reached. A node absent from this map is a
// global, resolved by name at runtime instead.
type Locals map[ast.Expr]int

// Resolve walks stmts and returns the computed Locals table. On failure the
// returned error is an ErrorList. Resolution does not stop at the first
// error: every statement is resolved and Locals is returned filled either way.
func Resolve(stmts []ast.Stmt) (Locals, error) {
	r := &resolver{
		locals: make(Locals),
		scopes: nil,
	}
	for _, s := range stmts {
		r.resolveStmt(s)
	}
	return r.locals, r.errs.Err()
}

type scope = swiss.Map[string, bool]

type resolver struct {
	scopes      []*scope
	locals      Locals
	currentFn   functionType
	currentCls  classType
	errs        ErrorList
}

func (r *resolver) errorf(line int, msg string) {
	r.errs.Add(gotoken.Position{Line: line}, msg)
}

func (r *resolver) beginScope() { r.scopes = append(r.scopes, swiss.NewMap[string, bool](8)) }

func (r *resolver) endScope() { r.scopes = r.scopes[:len(r.scopes)-1] }

func (r *resolver) declare(name string) {
	if len(r.scopes) == 0 {
		return
	}
	sc := r.scopes[len(r.scopes)-1]
	if _, ok := sc.Get(name); ok {
		r.errorf(0, "Already a variable with this name in this scope.")
	}
	sc.Put(name, false)
}

func (r *resolver) define(name string) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1].Put(name, true)
}

// resolveLocal walks scopes from innermost outward looking for name,
// recording the hop distance for expr if found. Absence leaves expr
// unrecorded, meaning "global" to the evaluator.
func (r *resolver) resolveLocal(expr ast.Expr, name string) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i].Get(name); ok {
			r.locals[expr] = len(r.scopes) - 1 - i
			return
		}
	}
}

func (r *resolver) resolveStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.ExprStmt:
		r.resolveExpr(n.Expr)
	case *ast.PrintStmt:
		r.resolveExpr(n.Expr)
	case *ast.VarStmt:
		r.declare(n.Name)
		if n.Init != nil {
			r.resolveExpr(n.Init)
		}
		r.define(n.Name)
	case *ast.BlockStmt:
		r.beginScope()
		for _, st := range n.Stmts {
			r.resolveStmt(st)
		}
		r.endScope()
	case *ast.IfStmt:
		r.resolveExpr(n.Cond)
		r.resolveStmt(n.Then)
		if n.Else != nil {
			r.resolveStmt(n.Else)
		}
	case *ast.WhileStmt:
		r.resolveExpr(n.Cond)
		r.resolveStmt(n.Body)
	case *ast.FunctionStmt:
		r.declare(n.Name)
		r.define(n.Name)
		r.resolveFunction(n, funcFunction)
	case *ast.ReturnStmt:
		if r.currentFn == funcNone {
			r.errorf(n.Line, "Can't return from top-level code.")
		}
		if n.Value != nil {
			if r.currentFn == funcInitializer {
				r.errorf(n.Line, "Can't return a value from an initializer.")
			}
			r.resolveExpr(n.Value)
		}
	case *ast.ClassStmt:
		r.resolveClass(n)
	}
}

func (r *resolver) resolveClass(n *ast.ClassStmt) {
	enclosingCls := r.currentCls
	r.currentCls = classClass
	defer func() { r.currentCls = enclosingCls }()

	r.declare(n.Name)
	r.define(n.Name)

	if n.Super != nil {
		if n.Super.Name == n.Name {
			r.errorf(n.Line, "A class can't inherit from itself.")
		}
		r.currentCls = classSubclass
		r.resolveExpr(n.Super)

		r.beginScope()
		r.scopes[len(r.scopes)-1].Put("super", true)
		defer r.endScope()
	}

	r.beginScope()
	r.scopes[len(r.scopes)-1].Put("this", true)
	defer r.endScope()

	for _, m := range n.Methods {
		typ := funcMethod
		if m.IsInitializer {
			typ = funcInitializer
		}
		r.resolveFunction(m, typ)
	}
}

func (r *resolver) resolveFunction(fn *ast.FunctionStmt, typ functionType) {
	enclosingFn := r.currentFn
	r.currentFn = typ
	defer func() { r.currentFn = enclosingFn }()

	r.beginScope()
	defer r.endScope()
	for _, p := range fn.Params {
		r.declare(p)
		r.define(p)
	}
	for _, s := range fn.Body {
		r.resolveStmt(s)
	}
}

func (r *resolver) resolveExpr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.LiteralExpr:
	case *ast.GroupingExpr:
		r.resolveExpr(n.Expr)
	case *ast.UnaryExpr:
		r.resolveExpr(n.Expr)
	case *ast.BinaryExpr:
		r.resolveExpr(n.Left)
		r.resolveExpr(n.Right)
	case *ast.LogicalExpr:
		r.resolveExpr(n.Left)
		r.resolveExpr(n.Right)
	case *ast.VariableExpr:
		if len(r.scopes) > 0 {
			if v, ok := r.scopes[len(r.scopes)-1].Get(n.Name); ok && !v {
				r.errorf(n.Line, "Can't read local variable in its own initializer.")
			}
		}
		r.resolveLocal(n, n.Name)
	case *ast.AssignExpr:
		r.resolveExpr(n.Value)
		r.resolveLocal(n, n.Name)
	case *ast.CallExpr:
		r.resolveExpr(n.Callee)
		for _, a := range n.Args {
			r.resolveExpr(a)
		}
	case *ast.GetExpr:
		r.resolveExpr(n.Object)
	case *ast.SetExpr:
		r.resolveExpr(n.Value)
		r.resolveExpr(n.Object)
	case *ast.ThisExpr:
		if r.currentCls == classNone {
			r.errorf(n.Line, "Can't use 'this' outside of a class.")
			return
		}
		r.resolveLocal(n, "this")
	case *ast.SuperExpr:
		switch r.currentCls {
		case classNone:
			r.errorf(n.Line, "Can't use 'super' outside of a class.")
		case classClass:
			r.errorf(n.Line, "Can't use 'super' in a class with no superclass.")
		}
		r.resolveLocal(n, "super")
	}
}
