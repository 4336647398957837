package vm

import (
	"fmt"
	"time"

	"github.com/mna/loxcraft/internal/lox/value"
)

// defineNatives installs the host-provided globals (spec §6 "clock()
// native"; SPEC_FULL §3 supplements "type" and "str" alongside it).
func (vm *VM) defineNatives() {
	vm.defineNative("clock", 0, vm.natClock)
	vm.defineNative("type", 1, vm.natType)
	vm.defineNative("str", 1, vm.natStr)
}

func (vm *VM) defineNative(name string, arity int, fn func(args []value.Value) (value.Value, error)) {
	// Both the interned name and the native are pushed onto the stack before
	// globals.Set roots them permanently: InternString and allocNative can
	// each trigger a collection that would otherwise find them reachable only
	// from a Go local the GC never marks, and sweep them. clox's own
	// defineNative pushes both for the same reason.
	nameStr := vm.InternString(name)
	vm.push(value.FromObject(nameStr))
	native := vm.allocNative(name, checkArity(name, arity, fn))
	vm.push(value.FromObject(native))

	vm.globals.Set(nameStr, vm.peek(0))

	vm.pop()
	vm.pop()
}

func checkArity(name string, arity int, fn value.NativeFn) value.NativeFn {
	return func(args []value.Value) (value.Value, error) {
		if len(args) != arity {
			return value.Nil(), fmt.Errorf("%s() expects %d arguments, got %d", name, arity, len(args))
		}
		return fn(args)
	}
}

// natClock returns the number of seconds elapsed since the VM started
// (spec §6).
func (vm *VM) natClock(_ []value.Value) (value.Value, error) {
	return value.Number(time.Since(vm.startTime).Seconds()), nil
}

// natType returns the argument's runtime type name, e.g. "number",
// "string", "function", "class", "instance" (SPEC_FULL §3).
func (vm *VM) natType(args []value.Value) (value.Value, error) {
	return value.FromObject(vm.InternString(args[0].TypeName())), nil
}

// natStr renders the argument the same way "print" would (SPEC_FULL §3).
func (vm *VM) natStr(args []value.Value) (value.Value, error) {
	return value.FromObject(vm.InternString(args[0].String())), nil
}
