package vm

import (
	"unsafe"

	"github.com/mna/loxcraft/internal/lox/value"
)

// callValue dispatches a CALL instruction by the callee's object kind
// (spec §4.2 "Calls"). argc values starting at peek(argc-1)..peek(0) are
// the arguments; the callee itself sits at peek(argc).
func (vm *VM) callValue(callee value.Value, argc int) error {
	if !callee.IsObject() {
		return vm.runtimeErrorf("Can only call functions and classes.")
	}

	switch callee.AsObject().Header().Kind {
	case value.ObjClosure:
		return vm.call(callee.AsObject().(*value.Closure), argc)

	case value.ObjNative:
		native := callee.AsObject().(*value.Native)
		args := vm.stack[vm.stackTop-argc : vm.stackTop]
		result, err := native.Fn(args)
		if err != nil {
			return vm.runtimeErrorf("%s", err.Error())
		}
		vm.stackTop -= argc + 1
		vm.push(result)
		return nil

	case value.ObjClass:
		class := callee.AsObject().(*value.Class)
		inst := vm.allocInstance(class)
		vm.stack[vm.stackTop-argc-1] = value.FromObject(inst)
		if init, ok := class.Methods.Get(vm.initString); ok {
			return vm.call(init.AsObject().(*value.Closure), argc)
		}
		if argc != 0 {
			return vm.runtimeErrorf("Expected 0 arguments but got %d.", argc)
		}
		return nil

	case value.ObjBoundMethod:
		bound := callee.AsObject().(*value.BoundMethod)
		vm.stack[vm.stackTop-argc-1] = bound.Receiver
		return vm.call(bound.Method, argc)

	default:
		return vm.runtimeErrorf("Can only call functions and classes.")
	}
}

// call pushes a new CallFrame for closure, verifying arity and frame-depth
// limits.
func (vm *VM) call(closure *value.Closure, argc int) error {
	if argc != closure.Function.Arity {
		return vm.runtimeErrorf("Expected %d arguments but got %d.", closure.Function.Arity, argc)
	}
	if vm.frameCount == FramesMax {
		return vm.runtimeErrorf("Stack overflow.")
	}

	fr := &vm.frames[vm.frameCount]
	vm.frameCount++
	fr.closure = closure
	fr.ip = 0
	fr.base = vm.stackTop - argc - 1
	return nil
}

// invoke fuses GET_PROPERTY + CALL for a method call on an Instance
// receiver, avoiding the BoundMethod allocation in the common case (spec
// §4.2 "INVOKE name argc"). It falls back to plain property+call dispatch
// when name resolves to a non-method field.
func (vm *VM) invoke(name *value.String, argc int) error {
	receiver := vm.peek(argc)
	if !receiver.IsObjKind(value.ObjInstance) {
		return vm.runtimeErrorf("Only instances have methods.")
	}
	inst := receiver.AsObject().(*value.Instance)

	if field, ok := inst.Fields.Get(name); ok {
		vm.stack[vm.stackTop-argc-1] = field
		return vm.callValue(field, argc)
	}

	method, ok := inst.Class.Methods.Get(name)
	if !ok {
		return vm.runtimeErrorf("Undefined property '%s'.", name.Chars)
	}
	return vm.call(method.AsObject().(*value.Closure), argc)
}

// invokeFromClass is SUPER_INVOKE's dispatch: look up name directly in
// class's method table (the superclass, already sitting on the stack from
// the compile-time arrangement) without any field check.
func (vm *VM) invokeFromClass(class *value.Class, name *value.String, argc int) error {
	method, ok := class.Methods.Get(name)
	if !ok {
		return vm.runtimeErrorf("Undefined property '%s'.", name.Chars)
	}
	return vm.call(method.AsObject().(*value.Closure), argc)
}

// bindMethod looks up name on class's method table and, on success,
// replaces the value on top of the stack (the receiver) with a BoundMethod
// pairing it to the found Closure.
func (vm *VM) bindMethod(class *value.Class, name *value.String) error {
	method, ok := class.Methods.Get(name)
	if !ok {
		return vm.runtimeErrorf("Undefined property '%s'.", name.Chars)
	}
	bound := vm.allocBoundMethod(vm.peek(0), method.AsObject().(*value.Closure))
	vm.pop()
	vm.push(value.FromObject(bound))
	return nil
}

// captureUpvalue returns the (possibly pre-existing) open Upvalue aliasing
// slot, inserting a new one in the descending-by-address list if none
// exists yet (spec §4.2 "Upvalues").
func (vm *VM) captureUpvalue(slot *value.Value) *value.Upvalue {
	var prev *value.Upvalue
	cur := vm.openUpvalues
	for cur != nil && cur.Location != slot && addrAbove(cur.Location, slot) {
		prev = cur
		cur = cur.NextOpen
	}
	if cur != nil && cur.Location == slot {
		return cur
	}

	created := vm.allocUpvalue(slot)
	created.NextOpen = cur
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.NextOpen = created
	}
	return created
}

// closeUpvalues closes every open upvalue whose location is at or above
// the stack address `above`, copying each value into the Upvalue's own
// storage (spec §4.2 "closeUpvalues").
func (vm *VM) closeUpvalues(above *value.Value) {
	for vm.openUpvalues != nil && addrAbove(vm.openUpvalues.Location, above) {
		up := vm.openUpvalues
		up.Close()
		vm.openUpvalues = up.NextOpen
	}
}

// addrAbove reports whether a occupies a stack slot at or above b. Go
// disallows ordering comparisons between pointers directly; both a and b
// always point within the same VM.stack array, so comparing their raw
// addresses via unsafe.Pointer gives the same answer clox gets from plain
// C pointer comparison (spec §4.2 "Upvalues").
func addrAbove(a, b *value.Value) bool {
	return uintptr(unsafe.Pointer(a)) >= uintptr(unsafe.Pointer(b))
}
