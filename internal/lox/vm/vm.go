// Package vm implements the stack-based bytecode virtual machine: the
// opcode dispatch loop, call/return and upvalue handling, the object heap
// together with its mark-sweep collector, and the small set of native
// functions exposed to LoxLang programs (spec §4.2, §4.3).
package vm

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mna/loxcraft/internal/lox/compiler"
	"github.com/mna/loxcraft/internal/lox/table"
	"github.com/mna/loxcraft/internal/lox/value"
)

const (
	// FramesMax bounds call-stack depth (spec §4.2 "Stack overflow (≥
	// FRAMES_MAX frames) is a runtime error").
	FramesMax = 64
	// StackMax is the fixed size of the value stack: one call frame can use
	// at most 256 slots (locals[0..255]), so FramesMax frames bound it.
	StackMax = FramesMax * 256
)

// CallFrame records one active call: the Closure being executed, the
// instruction pointer into its Function's Chunk, and the stack index of
// slot 0 for this invocation (spec §4.2 "Calls").
type CallFrame struct {
	closure *value.Closure
	ip      int
	base    int
}

// VM is the LoxLang bytecode interpreter: one process-wide instance owns
// the value stack, the call-frame stack, the object heap and its
// collector, the globals table and the string intern table (spec §5
// "Shared mutable resources live in one process-wide VM struct").
//
// The stack is a fixed-size array, not a slice that might reallocate: open
// Upvalues hold a *value.Value pointing directly into a stack slot, and
// growing the backing array would silently invalidate every such pointer.
type VM struct {
	stack    [StackMax]value.Value
	stackTop int

	frames     [FramesMax]CallFrame
	frameCount int

	globals *table.Table[*value.String, value.Value]
	strings *interner

	openUpvalues *value.Upvalue // head of list, sorted by descending stack slot
	objects      value.Object   // head of intrusive GC object list

	compiling []*value.Function // compile-time GC root chain (Heap.Push/PopCompilingFunction)

	bytesAllocated uint64
	nextGC         uint64

	initString *value.String

	Stdout io.Writer
	Stderr io.Writer

	StressGC bool // force a collection on every allocation (spec §4.3 debug modes)
	LogGC    bool // print mark/free tracing to Stderr

	startTime time.Time
}

var _ value.Heap = (*VM)(nil)

// New returns a freshly initialized VM. Stdout/Stderr default to os.Stdout
// and os.Stderr when left nil.
func New(opts ...Option) *VM {
	vm := &VM{
		globals:   table.New[*value.String, value.Value](),
		strings:   newInterner(),
		nextGC:    1024 * 1024,
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(vm)
	}
	if vm.Stdout == nil {
		vm.Stdout = os.Stdout
	}
	if vm.Stderr == nil {
		vm.Stderr = os.Stderr
	}
	vm.initString = vm.InternString("init")
	vm.defineNatives()
	return vm
}

// Option configures a VM at construction time.
type Option func(*VM)

// WithStdout overrides where the "print" statement writes.
func WithStdout(w io.Writer) Option { return func(vm *VM) { vm.Stdout = w } }

// WithStderr overrides where the VM writes its GC trace output (see
// WithLogGC). Errors are not written here: the VM returns them.
func WithStderr(w io.Writer) Option { return func(vm *VM) { vm.Stderr = w } }

// WithStressGC forces a collection on every allocation.
func WithStressGC(on bool) Option { return func(vm *VM) { vm.StressGC = on } }

// WithLogGC enables mark/free trace printing to Stderr.
func WithLogGC(on bool) Option { return func(vm *VM) { vm.LogGC = on } }

// Interpret compiles and runs source as a LoxLang program (spec §6). A
// compile error is reported as a plain error (not *RuntimeError); a failure
// during execution is always a *RuntimeError.
func (vm *VM) Interpret(source string) error {
	fn, err := compiler.Compile(source, vm)
	if err != nil {
		return err
	}

	// fn is rooted on the stack before allocClosure runs: Compile's
	// PopCompilingFunction has already dropped it from the compile-time root
	// chain, so a collection triggered by allocClosure itself would otherwise
	// find fn unreachable and purge its string constants from the intern
	// table (clox's interpret() roots the function the same way).
	vm.push(value.FromObject(fn))
	closure := vm.allocClosure(fn)
	vm.stack[vm.stackTop-1] = value.FromObject(closure)
	vm.callValue(value.FromObject(closure), 0) //nolint:errcheck // arity 0 call to freshly compiled script never fails

	if err := vm.run(); err != nil {
		vm.resetStack()
		return err
	}
	return nil
}

func (vm *VM) push(v value.Value) {
	vm.stack[vm.stackTop] = v
	vm.stackTop++
}

func (vm *VM) pop() value.Value {
	vm.stackTop--
	return vm.stack[vm.stackTop]
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[vm.stackTop-1-distance]
}

func (vm *VM) resetStack() {
	vm.stackTop = 0
	vm.frameCount = 0
	vm.openUpvalues = nil
}

// currentLine returns the source line of the instruction just executed in
// the current frame. Nothing in this package calls it.
func (vm *VM) currentLine() int {
	fr := &vm.frames[vm.frameCount-1]
	fn := fr.closure.Function
	if fr.ip-1 >= 0 && fr.ip-1 < len(fn.Chunk.Lines) {
		return fn.Chunk.Lines[fr.ip-1]
	}
	return 0
}

func (vm *VM) printf(format string, args ...any) {
	fmt.Fprintf(vm.Stdout, format, args...)
}

// StackDepth returns the number of live values on the value stack. It is
// zero after every normal-terminating Interpret call (spec §8 invariant
// 1), and is exported only for tests.
func (vm *VM) StackDepth() int { return vm.stackTop }

// FrameDepth returns the number of active call frames, zero after every
// normal-terminating Interpret call (spec §8 invariant 1), exported only
// for tests.
func (vm *VM) FrameDepth() int { return vm.frameCount }
