package value

// Function is a compiled LoxLang function: fixed arity, upvalue count, and
// the Chunk of bytecode produced for it by the compiler (spec §3).
type Function struct {
	ObjHeader
	Arity        int
	UpvalueCount int
	Chunk        *Chunk
	Name         *String // nil for the implicit top-level script function
}

var _ Object = (*Function)(nil)

// NewFunction returns an empty Function ready to receive compiled code.
func NewFunction() *Function {
	return &Function{ObjHeader: ObjHeader{Kind: ObjFunction}, Chunk: NewChunk()}
}

// NativeFn is the signature of a host-implemented callable (spec §3
// "Native: opaque callable with arity-less signature"). args holds exactly
// the arguments passed by the caller (no receiver slot).
type NativeFn func(args []Value) (Value, error)

// Native wraps a host function so it can be called like any other LoxLang
// callable.
type Native struct {
	ObjHeader
	Name string
	Fn   NativeFn
}

var _ Object = (*Native)(nil)

// NewNative returns a Native object wrapping fn.
func NewNative(name string, fn NativeFn) *Native {
	return &Native{ObjHeader: ObjHeader{Kind: ObjNative}, Name: name, Fn: fn}
}
