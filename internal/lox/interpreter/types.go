package interpreter

import (
	"fmt"

	"github.com/dolthub/swiss"

	"github.com/mna/loxcraft/internal/lox/ast"
)

// Callable is anything that can appear in call position: a LoxFunction, a
// LoxClass (construction) or a native.
type Callable interface {
	Arity() int
	Call(in *Interpreter, args []any) (any, error)
	String() string
}

// LoxFunction is a user-defined function or method, closing over the
// environment active where it was declared (spec §9 "closures keep their
// defining environment alive").
type LoxFunction struct {
	decl          *ast.FunctionStmt
	closure       *Environment
	isInitializer bool
}

func (f *LoxFunction) Arity() int { return len(f.decl.Params) }

func (f *LoxFunction) String() string { return "<fn " + f.decl.Name + ">" }

// bind returns a copy of f whose closure additionally defines "this" as
// receiver, used when a method is looked up off an instance (spec
// "method lookup... binds... wrapping it").
func (f *LoxFunction) bind(receiver *LoxInstance) *LoxFunction {
	env := NewEnvironment(f.closure)
	env.Define("this", receiver)
	return &LoxFunction{decl: f.decl, closure: env, isInitializer: f.isInitializer}
}

func (f *LoxFunction) Call(in *Interpreter, args []any) (any, error) {
	env := NewEnvironment(f.closure)
	for i, p := range f.decl.Params {
		env.Define(p, args[i])
	}

	in.callStack = append(in.callStack, &frame{name: f.decl.Name})
	defer func() { in.callStack = in.callStack[:len(in.callStack)-1] }()

	ret, err := in.executeBlock(f.decl.Body, env)
	if err != nil {
		return nil, err
	}
	if f.isInitializer {
		return f.closure.GetAt(0, "this"), nil
	}
	if ret != nil {
		return ret.value, nil
	}
	return nil, nil
}

// LoxClass is a runtime class: a name and a method table, consulting its
// superclass (if any) only at lookup time. Unlike the bytecode VM, whose
// INHERIT instruction copies the superclass's methods into the subclass
// when the class declaration runs, inheritance here is a live chain.
type LoxClass struct {
	Name    string
	Super   *LoxClass
	Methods map[string]*LoxFunction
}

func (c *LoxClass) Arity() int {
	if init, ok := c.findMethod("init"); ok {
		return init.Arity()
	}
	return 0
}

func (c *LoxClass) String() string { return c.Name }

func (c *LoxClass) findMethod(name string) (*LoxFunction, bool) {
	if m, ok := c.Methods[name]; ok {
		return m, true
	}
	if c.Super != nil {
		return c.Super.findMethod(name)
	}
	return nil, false
}

func (c *LoxClass) Call(in *Interpreter, args []any) (any, error) {
	inst := &LoxInstance{class: c, fields: swiss.NewMap[string, any](4)}
	if init, ok := c.findMethod("init"); ok {
		if _, err := init.bind(inst).Call(in, args); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

// LoxInstance is an instance of a LoxClass: a field table checked before
// falling back to the class's (possibly inherited) method table (spec §3
// "A method lookup on an Instance checks fields first").
type LoxInstance struct {
	class  *LoxClass
	fields *swiss.Map[string, any]
}

func (i *LoxInstance) String() string { return i.class.Name + " instance" }

func (i *LoxInstance) get(name string) (any, bool) {
	if v, ok := i.fields.Get(name); ok {
		return v, true
	}
	if m, ok := i.class.findMethod(name); ok {
		return m.bind(i), true
	}
	return nil, false
}

func (i *LoxInstance) set(name string, v any) { i.fields.Put(name, v) }

// nativeFunction wraps a host Go function as a LoxLang callable (the
// tree-walker's equivalent of the bytecode VM's value.Native).
type nativeFunction struct {
	name  string
	arity int
	fn    func(in *Interpreter, args []any) (any, error)
}

func (n *nativeFunction) Arity() int { return n.arity }

func (n *nativeFunction) String() string { return fmt.Sprintf("<native fn %s>", n.name) }

func (n *nativeFunction) Call(in *Interpreter, args []any) (any, error) { return n.fn(in, args) }
