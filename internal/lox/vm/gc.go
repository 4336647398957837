package vm

import (
	"fmt"
	"reflect"

	"github.com/mna/loxcraft/internal/lox/value"
)

// collectGarbage runs one full mark-sweep cycle (spec §4.3). It is
// synchronous and non-reentrant: it runs from register, which every
// allocation goes through (while compiling, while defining natives, and
// while run() executes), never while a collection is already in progress.
func (vm *VM) collectGarbage() {
	if vm.LogGC {
		vm.debugf("-- gc begin\n")
	}

	var gray []value.Object
	gray = vm.markRoots(gray)
	gray = vm.trace(gray)

	// weak-ref sweep of the intern table must run after trace (so every
	// reachable string is marked) and before the object sweep (so it never
	// observes a key that the sweep has already freed).
	vm.strings.purgeUnmarked()

	before := vm.bytesAllocated
	vm.sweep()
	vm.nextGC = vm.bytesAllocated * 2
	if vm.nextGC < 1024*1024 {
		vm.nextGC = 1024 * 1024
	}

	if vm.LogGC {
		vm.debugf("-- gc end, collected %d bytes (%d -> %d), next at %d\n",
			before-vm.bytesAllocated, before, vm.bytesAllocated, vm.nextGC)
	}
}

// markRoots grays every root named in spec §4.3: the live value stack,
// each CallFrame's Closure, every open Upvalue, the globals table, the
// compile-time chain of in-progress Functions, and the cached init String.
func (vm *VM) markRoots(gray []value.Object) []value.Object {
	for i := 0; i < vm.stackTop; i++ {
		gray = vm.markValue(vm.stack[i], gray)
	}
	for i := 0; i < vm.frameCount; i++ {
		gray = vm.markObject(vm.frames[i].closure, gray)
	}
	for up := vm.openUpvalues; up != nil; up = up.NextOpen {
		gray = vm.markObject(up, gray)
	}
	vm.globals.Each(func(k *value.String, v value.Value) {
		gray = vm.markObject(k, gray)
		gray = vm.markValue(v, gray)
	})
	for _, fn := range vm.compiling {
		gray = vm.markObject(fn, gray)
	}
	gray = vm.markObject(vm.initString, gray)
	return gray
}

func (vm *VM) markValue(v value.Value, gray []value.Object) []value.Object {
	if v.IsObject() {
		return vm.markObject(v.AsObject(), gray)
	}
	return gray
}

func (vm *VM) markObject(o value.Object, gray []value.Object) []value.Object {
	// a nil pointer of a concrete object type (the script Function's Name,
	// initString inside New, a Closure upvalue not yet filled) arrives as a
	// non-nil interface, so check the pointer too
	if o == nil || reflect.ValueOf(o).IsNil() {
		return gray
	}
	h := o.Header()
	if h.Marked {
		return gray
	}
	h.Marked = true
	if vm.LogGC {
		vm.debugf("%p mark %s\n", o, o.Header().Kind)
	}
	return append(gray, o)
}

// trace blackens every gray object by marking its referents gray in turn,
// until the worklist is empty (spec §4.3 step 2).
func (vm *VM) trace(gray []value.Object) []value.Object {
	for len(gray) > 0 {
		n := len(gray) - 1
		o := gray[n]
		gray = gray[:n]
		gray = vm.blacken(o, gray)
	}
	return gray
}

func (vm *VM) blacken(o value.Object, gray []value.Object) []value.Object {
	switch h := o.Header(); h.Kind {
	case value.ObjClosure:
		c := o.(*value.Closure)
		gray = vm.markObject(c.Function, gray)
		for _, up := range c.Upvalues {
			gray = vm.markObject(up, gray)
		}
	case value.ObjFunction:
		fn := o.(*value.Function)
		gray = vm.markObject(fn.Name, gray)
		for _, v := range fn.Chunk.Constants {
			gray = vm.markValue(v, gray)
		}
	case value.ObjUpvalue:
		gray = vm.markValue(o.(*value.Upvalue).Closed, gray)
	case value.ObjClass:
		cl := o.(*value.Class)
		gray = vm.markObject(cl.Name, gray)
		cl.Methods.Each(func(k *value.String, v value.Value) {
			gray = vm.markObject(k, gray)
			gray = vm.markValue(v, gray)
		})
	case value.ObjInstance:
		inst := o.(*value.Instance)
		gray = vm.markObject(inst.Class, gray)
		inst.Fields.Each(func(k *value.String, v value.Value) {
			gray = vm.markObject(k, gray)
			gray = vm.markValue(v, gray)
		})
	case value.ObjBoundMethod:
		bm := o.(*value.BoundMethod)
		gray = vm.markValue(bm.Receiver, gray)
		gray = vm.markObject(bm.Method, gray)
	case value.ObjString, value.ObjNative:
		// no outgoing references
	}
	return gray
}

// sweep walks the intrusive object list, unlinking and discarding every
// object whose mark bit is clear, and clears the bit on survivors (spec
// §4.3 step 4). Go's own garbage collector reclaims the memory once the
// last reference (here, the intrusive list pointer) is dropped.
func (vm *VM) sweep() {
	var prev value.Object
	obj := vm.objects
	for obj != nil {
		h := obj.Header()
		if h.Marked {
			h.Marked = false
			prev = obj
			obj = h.Next
			continue
		}
		unreached := obj
		obj = h.Next
		if prev != nil {
			prev.Header().Next = obj
		} else {
			vm.objects = obj
		}
		vm.bytesAllocated -= approxSize(unreached)
		if vm.LogGC {
			vm.debugf("%p free %s\n", unreached, unreached.Header().Kind)
		}
	}
}

func (vm *VM) debugf(format string, args ...any) {
	fmt.Fprintf(vm.Stderr, format, args...)
}
