package interpreter

import (
	"github.com/mna/loxcraft/internal/lox/ast"
	"github.com/mna/loxcraft/internal/lox/token"
)

func (in *Interpreter) evalExpr(e ast.Expr, env *Environment) (any, error) {
	switch n := e.(type) {
	case *ast.LiteralExpr:
		return n.Value, nil

	case *ast.GroupingExpr:
		return in.evalExpr(n.Expr, env)

	case *ast.UnaryExpr:
		return in.evalUnary(n, env)

	case *ast.BinaryExpr:
		return in.evalBinary(n, env)

	case *ast.LogicalExpr:
		return in.evalLogical(n, env)

	case *ast.VariableExpr:
		return in.lookupVariable(n, n.Name, env)

	case *ast.AssignExpr:
		return in.evalAssign(n, env)

	case *ast.CallExpr:
		return in.evalCall(n, env)

	case *ast.GetExpr:
		return in.evalGet(n, env)

	case *ast.SetExpr:
		return in.evalSet(n, env)

	case *ast.ThisExpr:
		return in.lookupVariable(n, "this", env)

	case *ast.SuperExpr:
		return in.evalSuper(n, env)

	default:
		return nil, in.runtimeErrorf("unsupported expression node")
	}
}

// lookupVariable resolves name either directly via the resolver's
// precomputed distance (spec §4.5) or, absent from that table, as a global
// looked up by name at runtime.
func (in *Interpreter) lookupVariable(node ast.Expr, name string, env *Environment) (any, error) {
	if dist, ok := in.locals[node]; ok {
		return env.GetAt(dist, name), nil
	}
	if v, ok := in.globals.Get(name); ok {
		return v, nil
	}
	return nil, in.runtimeErrorf("Undefined variable '%s'.", name)
}

func (in *Interpreter) evalAssign(n *ast.AssignExpr, env *Environment) (any, error) {
	in.setLine(n.Line)
	v, err := in.evalExpr(n.Value, env)
	if err != nil {
		return nil, err
	}
	if dist, ok := in.locals[n]; ok {
		env.AssignAt(dist, n.Name, v)
		return v, nil
	}
	if !in.globals.Assign(n.Name, v) {
		return nil, in.runtimeErrorf("Undefined variable '%s'.", n.Name)
	}
	return v, nil
}

func (in *Interpreter) evalUnary(n *ast.UnaryExpr, env *Environment) (any, error) {
	in.setLine(n.Line)
	v, err := in.evalExpr(n.Expr, env)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case token.MINUS:
		num, ok := v.(float64)
		if !ok {
			return nil, in.runtimeErrorf("Operand must be a number.")
		}
		return -num, nil
	case token.BANG:
		return !isTruthy(v), nil
	default:
		return nil, in.runtimeErrorf("unsupported unary operator %s", opName(n.Op))
	}
}

func (in *Interpreter) evalLogical(n *ast.LogicalExpr, env *Environment) (any, error) {
	left, err := in.evalExpr(n.Left, env)
	if err != nil {
		return nil, err
	}
	if n.Op == token.OR {
		if isTruthy(left) {
			return left, nil
		}
	} else if !isTruthy(left) {
		return left, nil
	}
	return in.evalExpr(n.Right, env)
}

func (in *Interpreter) evalBinary(n *ast.BinaryExpr, env *Environment) (any, error) {
	left, err := in.evalExpr(n.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := in.evalExpr(n.Right, env)
	if err != nil {
		return nil, err
	}
	in.setLine(n.Line)

	switch n.Op {
	case token.EQUAL_EQUAL:
		return isEqual(left, right), nil
	case token.BANG_EQUAL:
		return !isEqual(left, right), nil
	case token.PLUS:
		if ln, lok := left.(float64); lok {
			if rn, rok := right.(float64); rok {
				return ln + rn, nil
			}
		}
		if ls, lok := left.(string); lok {
			if rs, rok := right.(string); rok {
				return ls + rs, nil
			}
		}
		return nil, in.runtimeErrorf("Operands must be two numbers or two strings.")
	}

	ln, lok := left.(float64)
	rn, rok := right.(float64)
	if !lok || !rok {
		return nil, in.runtimeErrorf("Operands must be numbers.")
	}
	switch n.Op {
	case token.MINUS:
		return ln - rn, nil
	case token.STAR:
		return ln * rn, nil
	case token.SLASH:
		return ln / rn, nil
	case token.GREATER:
		return ln > rn, nil
	case token.GREATER_EQUAL:
		return ln >= rn, nil
	case token.LESS:
		return ln < rn, nil
	case token.LESS_EQUAL:
		return ln <= rn, nil
	default:
		return nil, in.runtimeErrorf("unsupported binary operator %s", opName(n.Op))
	}
}

func (in *Interpreter) evalCall(n *ast.CallExpr, env *Environment) (any, error) {
	callee, err := in.evalExpr(n.Callee, env)
	if err != nil {
		return nil, err
	}
	args := make([]any, len(n.Args))
	for i, a := range n.Args {
		v, err := in.evalExpr(a, env)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	in.setLine(n.Line)
	fn, ok := callee.(Callable)
	if !ok {
		return nil, in.runtimeErrorf("Can only call functions and classes.")
	}
	if len(args) != fn.Arity() {
		return nil, in.runtimeErrorf("Expected %d arguments but got %d.", fn.Arity(), len(args))
	}
	return fn.Call(in, args)
}

func (in *Interpreter) evalGet(n *ast.GetExpr, env *Environment) (any, error) {
	obj, err := in.evalExpr(n.Object, env)
	if err != nil {
		return nil, err
	}
	in.setLine(n.Line)
	inst, ok := obj.(*LoxInstance)
	if !ok {
		return nil, in.runtimeErrorf("Only instances have properties.")
	}
	v, ok := inst.get(n.Name)
	if !ok {
		return nil, in.runtimeErrorf("Undefined property '%s'.", n.Name)
	}
	return v, nil
}

func (in *Interpreter) evalSet(n *ast.SetExpr, env *Environment) (any, error) {
	obj, err := in.evalExpr(n.Object, env)
	if err != nil {
		return nil, err
	}
	in.setLine(n.Line)
	inst, ok := obj.(*LoxInstance)
	if !ok {
		return nil, in.runtimeErrorf("Only instances have fields.")
	}
	v, err := in.evalExpr(n.Value, env)
	if err != nil {
		return nil, err
	}
	inst.set(n.Name, v)
	return v, nil
}

func (in *Interpreter) evalSuper(n *ast.SuperExpr, env *Environment) (any, error) {
	dist := in.locals[n]
	super := env.GetAt(dist, "super").(*LoxClass)
	receiver := env.GetAt(dist-1, "this").(*LoxInstance)

	method, ok := super.findMethod(n.Method)
	if !ok {
		return nil, in.runtimeErrorf("Undefined property '%s'.", n.Method)
	}
	return method.bind(receiver), nil
}
