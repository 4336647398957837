package value

import "fmt"

// ObjKind tags the variant of a heap Object (spec §3).
type ObjKind uint8

const (
	ObjString ObjKind = iota
	ObjFunction
	ObjNative
	ObjClosure
	ObjUpvalue
	ObjClass
	ObjInstance
	ObjBoundMethod
)

func (k ObjKind) String() string {
	switch k {
	case ObjString:
		return "string"
	case ObjFunction:
		return "function"
	case ObjNative:
		return "native function"
	case ObjClosure:
		return "closure"
	case ObjUpvalue:
		return "upvalue"
	case ObjClass:
		return "class"
	case ObjInstance:
		return "instance"
	case ObjBoundMethod:
		return "bound method"
	default:
		return "unknown object"
	}
}

// ObjHeader is the common header every heap Object embeds: its kind tag,
// the GC mark bit, and the intrusive singly-linked list pointer rooting it
// on the VM's object list (spec §3 "Object — heap-allocated variants
// sharing a common header").
type ObjHeader struct {
	Kind   ObjKind
	Marked bool
	Next   Object
}

// Header returns the receiver; it exists so ObjHeader satisfies Object and
// every type embedding it gets the accessor for free.
func (h *ObjHeader) Header() *ObjHeader { return h }

// Object is any LoxLang heap value. The interface exists only to let the
// GC and Value carry a handle to any variant uniformly; semantics are
// dispatched by switching on Header().Kind, not by calling methods on this
// interface (spec §9).
type Object interface {
	Header() *ObjHeader
}

func objTypeName(k ObjKind) string {
	switch k {
	case ObjFunction, ObjClosure, ObjNative:
		return "function"
	case ObjClass:
		return "class"
	case ObjInstance:
		return "instance"
	case ObjBoundMethod:
		return "function"
	case ObjString:
		return "string"
	case ObjUpvalue:
		return "upvalue"
	default:
		return "unknown"
	}
}

func objString(o Object) string {
	switch h := o.Header(); h.Kind {
	case ObjString:
		return o.(*String).Chars
	case ObjFunction:
		fn := o.(*Function)
		if fn.Name == nil {
			return "<script>"
		}
		return fmt.Sprintf("<fn %s>", fn.Name.Chars)
	case ObjNative:
		return fmt.Sprintf("<native fn %s>", o.(*Native).Name)
	case ObjClosure:
		return objString(o.(*Closure).Function)
	case ObjUpvalue:
		return "<upvalue>"
	case ObjClass:
		return o.(*Class).Name.Chars
	case ObjInstance:
		inst := o.(*Instance)
		return fmt.Sprintf("%s instance", inst.Class.Name.Chars)
	case ObjBoundMethod:
		return objString(o.(*BoundMethod).Method.Function)
	default:
		return "<object>"
	}
}
