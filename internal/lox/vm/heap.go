package vm

import "github.com/mna/loxcraft/internal/lox/value"

// approxSize is a rough per-kind byte cost used to drive bytesAllocated.
// LoxLang objects are Go-GC'd in reality (spec's allocator contract is
// approximated, not a hand-rolled arena); this estimate only
// needs to be consistent enough to make nextGC growth meaningful.
func approxSize(o value.Object) uint64 {
	switch o.Header().Kind {
	case value.ObjString:
		return 32 + uint64(len(o.(*value.String).Chars))
	case value.ObjFunction:
		return 64
	case value.ObjNative:
		return 32
	case value.ObjClosure:
		return 24 + 8*uint64(len(o.(*value.Closure).Upvalues))
	case value.ObjUpvalue:
		return 32
	case value.ObjClass:
		return 32
	case value.ObjInstance:
		return 32
	case value.ObjBoundMethod:
		return 32
	default:
		return 16
	}
}

// register runs the allocator contract (spec §4.3 "any allocation can
// collect") and then links o onto the VM's object list. The GC check runs
// before linking, not after: o is not yet reachable through the object
// list (and is always rooted some other way by its caller, typically
// pushed onto the value stack immediately after this returns), so it can
// never be the one thing a collection triggered by its own allocation
// sweeps away.
func (vm *VM) register(o value.Object) {
	vm.bytesAllocated += approxSize(o)
	if vm.StressGC || vm.bytesAllocated > vm.nextGC {
		vm.collectGarbage()
	}

	o.Header().Next = vm.objects
	vm.objects = o
}

func (vm *VM) allocFunction() *value.Function {
	fn := value.NewFunction()
	vm.register(fn)
	return fn
}

func (vm *VM) allocNative(name string, fn value.NativeFn) *value.Native {
	n := value.NewNative(name, fn)
	vm.register(n)
	return n
}

func (vm *VM) allocClosure(fn *value.Function) *value.Closure {
	c := value.NewClosure(fn)
	vm.register(c)
	return c
}

func (vm *VM) allocUpvalue(slot *value.Value) *value.Upvalue {
	u := value.NewUpvalue(slot)
	vm.register(u)
	return u
}

func (vm *VM) allocClass(name *value.String) *value.Class {
	c := value.NewClass(name)
	vm.register(c)
	return c
}

func (vm *VM) allocInstance(class *value.Class) *value.Instance {
	i := value.NewInstance(class)
	vm.register(i)
	return i
}

func (vm *VM) allocBoundMethod(receiver value.Value, method *value.Closure) *value.BoundMethod {
	b := value.NewBoundMethod(receiver, method)
	vm.register(b)
	return b
}

// InternString implements value.Heap.
func (vm *VM) InternString(chars string) *value.String {
	return vm.strings.intern(chars, func(s string) *value.String {
		str := value.NewString(s)
		vm.register(str)
		return str
	})
}

// NewFunction implements value.Heap.
func (vm *VM) NewFunction() *value.Function {
	return vm.allocFunction()
}

// PushCompilingFunction implements value.Heap.
func (vm *VM) PushCompilingFunction(fn *value.Function) {
	vm.compiling = append(vm.compiling, fn)
}

// PopCompilingFunction implements value.Heap.
func (vm *VM) PopCompilingFunction() {
	vm.compiling = vm.compiling[:len(vm.compiling)-1]
}
