package interpreter

import (
	"fmt"

	"github.com/mna/loxcraft/internal/lox/ast"
)

// execStmt executes s in env, returning a non-nil *returnSignal if a
// `return` was reached anywhere beneath it.
func (in *Interpreter) execStmt(s ast.Stmt, env *Environment) (*returnSignal, error) {
	switch n := s.(type) {
	case *ast.ExprStmt:
		in.setLine(n.Line)
		_, err := in.evalExpr(n.Expr, env)
		return nil, err

	case *ast.PrintStmt:
		in.setLine(n.Line)
		v, err := in.evalExpr(n.Expr, env)
		if err != nil {
			return nil, err
		}
		fmt.Fprintln(in.Stdout, stringify(v))
		return nil, nil

	case *ast.VarStmt:
		in.setLine(n.Line)
		var v any
		if n.Init != nil {
			var err error
			v, err = in.evalExpr(n.Init, env)
			if err != nil {
				return nil, err
			}
		}
		env.Define(n.Name, v)
		return nil, nil

	case *ast.BlockStmt:
		return in.executeBlock(n.Stmts, NewEnvironment(env))

	case *ast.IfStmt:
		in.setLine(n.Line)
		cond, err := in.evalExpr(n.Cond, env)
		if err != nil {
			return nil, err
		}
		if isTruthy(cond) {
			return in.execStmt(n.Then, env)
		}
		if n.Else != nil {
			return in.execStmt(n.Else, env)
		}
		return nil, nil

	case *ast.WhileStmt:
		for {
			in.setLine(n.Line)
			cond, err := in.evalExpr(n.Cond, env)
			if err != nil {
				return nil, err
			}
			if !isTruthy(cond) {
				return nil, nil
			}
			ret, err := in.execStmt(n.Body, env)
			if err != nil || ret != nil {
				return ret, err
			}
		}

	case *ast.FunctionStmt:
		env.Define(n.Name, &LoxFunction{decl: n, closure: env, isInitializer: n.IsInitializer})
		return nil, nil

	case *ast.ReturnStmt:
		in.setLine(n.Line)
		var v any
		if n.Value != nil {
			var err error
			v, err = in.evalExpr(n.Value, env)
			if err != nil {
				return nil, err
			}
		}
		return &returnSignal{value: v}, nil

	case *ast.ClassStmt:
		return in.execClassStmt(n, env)

	default:
		return nil, nil
	}
}

// executeBlock runs stmts in env (a freshly nested environment for
// BlockStmt, or the function-call environment for a function body),
// stopping early on a return or error.
func (in *Interpreter) executeBlock(stmts []ast.Stmt, env *Environment) (*returnSignal, error) {
	for _, s := range stmts {
		ret, err := in.execStmt(s, env)
		if err != nil || ret != nil {
			return ret, err
		}
	}
	return nil, nil
}

func (in *Interpreter) execClassStmt(n *ast.ClassStmt, env *Environment) (*returnSignal, error) {
	in.setLine(n.Line)

	var super *LoxClass
	if n.Super != nil {
		v, err := in.evalExpr(n.Super, env)
		if err != nil {
			return nil, err
		}
		sc, ok := v.(*LoxClass)
		if !ok {
			return nil, in.runtimeErrorf("Superclass must be a class.")
		}
		super = sc
	}

	env.Define(n.Name, nil)

	if n.Super != nil {
		env = NewEnvironment(env)
		env.Define("super", super)
	}

	methods := make(map[string]*LoxFunction, len(n.Methods))
	for _, m := range n.Methods {
		methods[m.Name] = &LoxFunction{decl: m, closure: env, isInitializer: m.IsInitializer}
	}

	class := &LoxClass{Name: n.Name, Super: super, Methods: methods}
	if n.Super != nil {
		env = env.enclosing
	}
	env.Assign(n.Name, class)
	return nil, nil
}
