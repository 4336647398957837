// Package value implements LoxLang's Value model: a tagged union of Nil,
// Bool, Number and Object, and the heap Object variants (String, Function,
// Native, Closure, Upvalue, Class, Instance, BoundMethod) described in
// spec §3.
//
// Per spec §9 ("Dynamic dispatch on Value / Object kind... do not model via
// virtual dispatch — the opcode loop switches on tag, and the tag is small"),
// Value is a small struct carrying an explicit Kind tag rather than an
// interface with polymorphic methods, and Object is an interface whose sole
// purpose is to carry a *ObjHeader (the tag, mark bit and GC-list pointer);
// callers switch on the header's Kind before doing anything with the
// concrete type, the Go equivalent of clox's OBJ_TYPE macro.
package value

import "fmt"

// Kind is the tag distinguishing the variants of Value.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindObject
)

// Value is a LoxLang runtime value: Nil, Bool, Number (float64) or a handle
// to a heap Object.
type Value struct {
	kind    Kind
	boolean bool
	number  float64
	obj     Object
}

// Nil returns the nil value.
func Nil() Value { return Value{kind: KindNil} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, boolean: b} }

// Number returns a numeric value.
func Number(n float64) Value { return Value{kind: KindNumber, number: n} }

// FromObject returns a value wrapping a heap object handle.
func FromObject(o Object) Value { return Value{kind: KindObject, obj: o} }

func (v Value) Kind() Kind      { return v.kind }
func (v Value) IsNil() bool     { return v.kind == KindNil }
func (v Value) IsBool() bool    { return v.kind == KindBool }
func (v Value) IsNumber() bool  { return v.kind == KindNumber }
func (v Value) IsObject() bool  { return v.kind == KindObject }
func (v Value) AsBool() bool    { return v.boolean }
func (v Value) AsNumber() float64 { return v.number }
func (v Value) AsObject() Object { return v.obj }

// IsObjKind reports whether v is an object of the given kind.
func (v Value) IsObjKind(k ObjKind) bool {
	return v.kind == KindObject && v.obj.Header().Kind == k
}

// IsFalsey implements LoxLang truthiness (spec §4.2): nil and false are
// falsey, everything else (including 0, "" and empty instances) is truthy.
func (v Value) IsFalsey() bool {
	return v.kind == KindNil || (v.kind == KindBool && !v.boolean)
}

// Equal implements Value-level equality (spec §3): Nil=Nil; Bool by value;
// Number by IEEE ==; Object by reference identity except interned Strings,
// which compare equal iff they are literally the same handle.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNil:
		return true
	case KindBool:
		return v.boolean == o.boolean
	case KindNumber:
		return v.number == o.number
	case KindObject:
		return v.obj == o.obj
	default:
		return false
	}
}

// TypeName returns a short human-readable type name, used in runtime error
// messages and by the "type" native.
func (v Value) TypeName() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindObject:
		return objTypeName(v.obj.Header().Kind)
	default:
		return "unknown"
	}
}

// String renders v the way the "print" statement and string concatenation
// do.
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.boolean {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(v.number)
	case KindObject:
		return objString(v.obj)
	default:
		return "<invalid value>"
	}
}

func formatNumber(n float64) string {
	// %g without an explicit precision matches the conventional Lox/clox
	// rendering: integral floats print without a trailing ".0" removed by
	// hand (they already have none from %g), and non-integral values use the
	// shortest round-tripping representation.
	return fmt.Sprintf("%g", n)
}
