package interpreter

import "github.com/dolthub/swiss"

// Environment is one lexical scope's variable bindings, chained to its
// enclosing scope (spec §9 "Environments chain via an enclosing link
// forming a tree; closures keep their defining environment alive").
type Environment struct {
	values    *swiss.Map[string, any]
	enclosing *Environment
}

// NewEnvironment returns an environment enclosed by parent (nil for the
// global scope).
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{values: swiss.NewMap[string, any](8), enclosing: parent}
}

// Define binds name in this environment, shadowing any enclosing binding.
func (e *Environment) Define(name string, v any) { e.values.Put(name, v) }

// Get looks up name, walking enclosing scopes. Used only for globals (the
// resolver leaves unresolved names to be looked up this way at runtime,
// spec §4.5 "Names not found in any scope are assumed global").
func (e *Environment) Get(name string) (any, bool) {
	for env := e; env != nil; env = env.enclosing {
		if v, ok := env.values.Get(name); ok {
			return v, true
		}
	}
	return nil, false
}

// Assign mutates an existing binding of name, walking enclosing scopes; it
// reports whether the name was found.
func (e *Environment) Assign(name string, v any) bool {
	for env := e; env != nil; env = env.enclosing {
		if _, ok := env.values.Get(name); ok {
			env.values.Put(name, v)
			return true
		}
	}
	return false
}

// GetAt reads name directly from the environment distance hops out, per the
// resolver's precomputed scope distance (spec §4.5), bypassing the
// walk-and-compare Get does.
func (e *Environment) GetAt(distance int, name string) any {
	v, _ := e.ancestor(distance).values.Get(name)
	return v
}

// AssignAt is GetAt's write counterpart.
func (e *Environment) AssignAt(distance int, name string, v any) {
	e.ancestor(distance).values.Put(name, v)
}

func (e *Environment) ancestor(distance int) *Environment {
	env := e
	for i := 0; i < distance; i++ {
		env = env.enclosing
	}
	return env
}
