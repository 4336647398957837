package value

// Heap is the minimal allocation surface the compiler needs while emitting
// bytecode: interning string constants and allocating Function objects, both
// of which must be linked into the VM's object list and tracked by the
// garbage collector even though the VM itself has not started running yet
// (spec §3 "Strings and Functions are created during compilation"; spec §4.3
// roots include "the compile-time chain of compiling Functions, so that
// in-progress compilation survives allocations it triggers").
//
// *vm.VM implements Heap; the compiler package depends only on this
// interface so that vm (which must call into the compiler to implement
// Interpret) and compiler do not import each other.
type Heap interface {
	// InternString returns the unique String object for chars, allocating and
	// registering a new one only if this exact content has not been seen
	// before.
	InternString(chars string) *String

	// NewFunction allocates and registers a new, empty Function object.
	NewFunction() *Function

	// PushCompilingFunction and PopCompilingFunction bracket the compilation
	// of fn's body, so the GC can treat every Function currently being
	// compiled (the whole enclosing chain, not just the innermost one) as a
	// root for the duration.
	PushCompilingFunction(fn *Function)
	PopCompilingFunction()
}
