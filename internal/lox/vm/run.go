package vm

import "github.com/mna/loxcraft/internal/lox/value"

// run is the opcode dispatch loop (spec §4.2 "A classic direct-threaded
// (switch-based) dispatch loop"). The current frame is cached in a local
// and refreshed after every call/return, same as the byte-code original.
func (vm *VM) run() error {
	fr := &vm.frames[vm.frameCount-1]

	for {
		op := value.OpCode(vm.readByte(fr))

		switch op {
		case value.OpConstant:
			vm.push(vm.readConstant(fr))

		case value.OpNil:
			vm.push(value.Nil())

		case value.OpTrue:
			vm.push(value.Bool(true))

		case value.OpFalse:
			vm.push(value.Bool(false))

		case value.OpPop:
			vm.pop()

		case value.OpGetLocal:
			slot := vm.readByte(fr)
			vm.push(vm.stack[fr.base+int(slot)])

		case value.OpSetLocal:
			slot := vm.readByte(fr)
			vm.stack[fr.base+int(slot)] = vm.peek(0)

		case value.OpGetGlobal:
			name := vm.readConstant(fr).AsObject().(*value.String)
			v, ok := vm.globals.Get(name)
			if !ok {
				return vm.runtimeErrorf("Undefined variable '%s'.", name.Chars)
			}
			vm.push(v)

		case value.OpDefineGlobal:
			name := vm.readConstant(fr).AsObject().(*value.String)
			vm.globals.Set(name, vm.peek(0))
			vm.pop()

		case value.OpSetGlobal:
			name := vm.readConstant(fr).AsObject().(*value.String)
			if vm.globals.Set(name, vm.peek(0)) {
				vm.globals.Delete(name)
				return vm.runtimeErrorf("Undefined variable '%s'.", name.Chars)
			}

		case value.OpGetUpvalue:
			slot := vm.readByte(fr)
			vm.push(*fr.closure.Upvalues[slot].Location)

		case value.OpSetUpvalue:
			slot := vm.readByte(fr)
			*fr.closure.Upvalues[slot].Location = vm.peek(0)

		case value.OpGetProperty:
			if err := vm.execGetProperty(fr); err != nil {
				return err
			}

		case value.OpSetProperty:
			if err := vm.execSetProperty(fr); err != nil {
				return err
			}

		case value.OpGetSuper:
			name := vm.readConstant(fr).AsObject().(*value.String)
			super := vm.pop().AsObject().(*value.Class)
			if err := vm.bindMethod(super, name); err != nil {
				return err
			}

		case value.OpEqual:
			b := vm.pop()
			a := vm.pop()
			vm.push(value.Bool(a.Equal(b)))

		case value.OpGreater, value.OpLess:
			if err := vm.execComparison(op); err != nil {
				return err
			}

		case value.OpAdd:
			if err := vm.execAdd(); err != nil {
				return err
			}

		case value.OpSubtract, value.OpMultiply, value.OpDivide:
			if err := vm.execArithmetic(op); err != nil {
				return err
			}

		case value.OpNot:
			vm.push(value.Bool(vm.pop().IsFalsey()))

		case value.OpNegate:
			if !vm.peek(0).IsNumber() {
				return vm.runtimeErrorf("Operand must be a number.")
			}
			vm.push(value.Number(-vm.pop().AsNumber()))

		case value.OpPrint:
			vm.printf("%s\n", vm.pop().String())

		case value.OpJump:
			offset := vm.readShort(fr)
			fr.ip += int(offset)

		case value.OpJumpIfFalse:
			offset := vm.readShort(fr)
			if vm.peek(0).IsFalsey() {
				fr.ip += int(offset)
			}

		case value.OpLoop:
			offset := vm.readShort(fr)
			fr.ip -= int(offset)

		case value.OpCall:
			argc := int(vm.readByte(fr))
			if err := vm.callValue(vm.peek(argc), argc); err != nil {
				return err
			}
			fr = &vm.frames[vm.frameCount-1]

		case value.OpInvoke:
			name := vm.readConstant(fr).AsObject().(*value.String)
			argc := int(vm.readByte(fr))
			if err := vm.invoke(name, argc); err != nil {
				return err
			}
			fr = &vm.frames[vm.frameCount-1]

		case value.OpSuperInvoke:
			name := vm.readConstant(fr).AsObject().(*value.String)
			argc := int(vm.readByte(fr))
			super := vm.pop().AsObject().(*value.Class)
			if err := vm.invokeFromClass(super, name, argc); err != nil {
				return err
			}
			fr = &vm.frames[vm.frameCount-1]

		case value.OpClosure:
			fn := vm.readConstant(fr).AsObject().(*value.Function)
			closure := vm.allocClosure(fn)
			vm.push(value.FromObject(closure))
			for i := 0; i < fn.UpvalueCount; i++ {
				isLocal := vm.readByte(fr)
				index := vm.readByte(fr)
				if isLocal != 0 {
					closure.Upvalues[i] = vm.captureUpvalue(&vm.stack[fr.base+int(index)])
				} else {
					closure.Upvalues[i] = fr.closure.Upvalues[index]
				}
			}

		case value.OpCloseUpvalue:
			vm.closeUpvalues(&vm.stack[vm.stackTop-1])
			vm.pop()

		case value.OpReturn:
			result := vm.pop()
			vm.closeUpvalues(&vm.stack[fr.base])
			vm.frameCount--
			if vm.frameCount == 0 {
				vm.pop()
				return nil
			}
			vm.stackTop = fr.base
			vm.push(result)
			fr = &vm.frames[vm.frameCount-1]

		case value.OpClass:
			name := vm.readConstant(fr).AsObject().(*value.String)
			vm.push(value.FromObject(vm.allocClass(name)))

		case value.OpInherit:
			if err := vm.execInherit(); err != nil {
				return err
			}

		case value.OpMethod:
			name := vm.readConstant(fr).AsObject().(*value.String)
			vm.defineMethod(name)

		default:
			return vm.runtimeErrorf("unhandled opcode %s", op)
		}
	}
}

func (vm *VM) readByte(fr *CallFrame) byte {
	b := fr.closure.Function.Chunk.Code[fr.ip]
	fr.ip++
	return b
}

func (vm *VM) readShort(fr *CallFrame) uint16 {
	hi := vm.readByte(fr)
	lo := vm.readByte(fr)
	return uint16(hi)<<8 | uint16(lo)
}

func (vm *VM) readConstant(fr *CallFrame) value.Value {
	idx := vm.readByte(fr)
	return fr.closure.Function.Chunk.Constants[idx]
}

func (vm *VM) execGetProperty(fr *CallFrame) error {
	if !vm.peek(0).IsObjKind(value.ObjInstance) {
		return vm.runtimeErrorf("Only instances have properties.")
	}
	inst := vm.peek(0).AsObject().(*value.Instance)
	name := vm.readConstant(fr).AsObject().(*value.String)

	if v, ok := inst.Fields.Get(name); ok {
		vm.pop()
		vm.push(v)
		return nil
	}
	return vm.bindMethod(inst.Class, name)
}

func (vm *VM) execSetProperty(fr *CallFrame) error {
	if !vm.peek(1).IsObjKind(value.ObjInstance) {
		return vm.runtimeErrorf("Only instances have fields.")
	}
	inst := vm.peek(1).AsObject().(*value.Instance)
	name := vm.readConstant(fr).AsObject().(*value.String)
	inst.Fields.Set(name, vm.peek(0))

	v := vm.pop()
	vm.pop()
	vm.push(v)
	return nil
}

func (vm *VM) execComparison(op value.OpCode) error {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return vm.runtimeErrorf("Operands must be numbers.")
	}
	b := vm.pop().AsNumber()
	a := vm.pop().AsNumber()
	if op == value.OpGreater {
		vm.push(value.Bool(a > b))
	} else {
		vm.push(value.Bool(a < b))
	}
	return nil
}

// execAdd implements ADD's dual semantics: numeric addition, or string
// concatenation when both operands are strings (spec §4.2 "Arithmetic
// semantics"). Operands are peeked, not popped, until after the
// (potentially allocating, hence GC-triggering) concatenation result is
// computed, so they stay reachable as GC roots throughout.
func (vm *VM) execAdd() error {
	b := vm.peek(0)
	a := vm.peek(1)

	switch {
	case a.IsNumber() && b.IsNumber():
		vm.pop()
		vm.pop()
		vm.push(value.Number(a.AsNumber() + b.AsNumber()))
		return nil
	case a.IsObjKind(value.ObjString) && b.IsObjKind(value.ObjString):
		concat := a.AsObject().(*value.String).Chars + b.AsObject().(*value.String).Chars
		result := vm.InternString(concat)
		vm.pop()
		vm.pop()
		vm.push(value.FromObject(result))
		return nil
	default:
		return vm.runtimeErrorf("Operands must be two numbers or two strings.")
	}
}

func (vm *VM) execArithmetic(op value.OpCode) error {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return vm.runtimeErrorf("Operands must be numbers.")
	}
	b := vm.pop().AsNumber()
	a := vm.pop().AsNumber()
	switch op {
	case value.OpSubtract:
		vm.push(value.Number(a - b))
	case value.OpMultiply:
		vm.push(value.Number(a * b))
	case value.OpDivide:
		vm.push(value.Number(a / b))
	}
	return nil
}

func (vm *VM) execInherit() error {
	superVal := vm.peek(1)
	if !superVal.IsObjKind(value.ObjClass) {
		return vm.runtimeErrorf("Superclass must be a class.")
	}
	super := superVal.AsObject().(*value.Class)
	sub := vm.peek(0).AsObject().(*value.Class)
	super.Methods.Each(func(k *value.String, v value.Value) {
		sub.Methods.Set(k, v)
	})
	vm.pop() // the superclass stays, as the live "super" local slot; the subclass operand, already bound by its own declaration, is discarded
	return nil
}

func (vm *VM) defineMethod(name *value.String) {
	method := vm.peek(0)
	class := vm.peek(1).AsObject().(*value.Class)
	class.Methods.Set(name, method)
	vm.pop()
}
