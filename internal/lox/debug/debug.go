// Package debug implements the bytecode disassembler: turning a compiled
// value.Chunk back into a human-readable listing, used by the --disassemble
// CLI flag and by the compiler's round-trip test (spec §8 "Round-trip").
package debug

import (
	"fmt"
	"strings"

	"github.com/mna/loxcraft/internal/lox/value"
)

// Instruction is one decoded bytecode instruction: its opcode, the offset
// it starts at, the source line it came from, and its raw operand bytes
// exactly as they appear in the chunk (so Reassemble can losslessly
// rebuild the original byte sequence).
type Instruction struct {
	Offset   int
	Line     int
	Op       value.OpCode
	Operands []byte
}

// Disassemble decodes every instruction in chunk in order.
func Disassemble(chunk *value.Chunk) []Instruction {
	var out []Instruction
	offset := 0
	for offset < len(chunk.Code) {
		instr := decode(chunk, offset)
		out = append(out, instr)
		offset += 1 + len(instr.Operands)
	}
	return out
}

// operandLen returns the number of operand bytes following op's own byte,
// for every opcode except CLOSURE, whose length depends on the target
// function's upvalue count and must be read from the constant pool.
func operandLen(op value.OpCode) int {
	switch op {
	case value.OpConstant, value.OpGetLocal, value.OpSetLocal, value.OpGetGlobal,
		value.OpDefineGlobal, value.OpSetGlobal, value.OpGetUpvalue, value.OpSetUpvalue,
		value.OpGetProperty, value.OpSetProperty, value.OpGetSuper, value.OpCall,
		value.OpClass, value.OpMethod:
		return 1
	case value.OpJump, value.OpJumpIfFalse, value.OpLoop, value.OpInvoke, value.OpSuperInvoke:
		return 2
	default:
		return 0
	}
}

func decode(chunk *value.Chunk, offset int) Instruction {
	op := value.OpCode(chunk.Code[offset])
	line := 0
	if offset < len(chunk.Lines) {
		line = chunk.Lines[offset]
	}

	n := operandLen(op)
	if op == value.OpClosure {
		constIdx := chunk.Code[offset+1]
		fn := chunk.Constants[constIdx].AsObject().(*value.Function)
		n = 1 + 2*fn.UpvalueCount
	}

	operands := make([]byte, n)
	copy(operands, chunk.Code[offset+1:offset+1+n])
	return Instruction{Offset: offset, Line: line, Op: op, Operands: operands}
}

// Reassemble rebuilds the raw opcode/operand byte stream from a decoded
// instruction list — the "opcodes-only" half of spec §8's round-trip
// property (source-line metadata is not part of the reassembly contract).
func Reassemble(instrs []Instruction) []byte {
	var out []byte
	for _, instr := range instrs {
		out = append(out, byte(instr.Op))
		out = append(out, instr.Operands...)
	}
	return out
}

// DisassembleChunk renders a full human-readable listing of chunk, titled
// name — the classic clox "== name ==" dump format.
func DisassembleChunk(chunk *value.Chunk, name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", name)
	for _, instr := range Disassemble(chunk) {
		b.WriteString(formatInstruction(chunk, instr))
		b.WriteByte('\n')
	}
	return b.String()
}

func formatInstruction(chunk *value.Chunk, instr Instruction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%04d %4d %-18s", instr.Offset, instr.Line, instr.Op)

	switch instr.Op {
	case value.OpConstant, value.OpClass, value.OpMethod, value.OpGetGlobal,
		value.OpDefineGlobal, value.OpSetGlobal, value.OpGetProperty, value.OpSetProperty,
		value.OpGetSuper:
		idx := instr.Operands[0]
		fmt.Fprintf(&b, "%4d '%s'", idx, chunk.Constants[idx].String())

	case value.OpGetLocal, value.OpSetLocal, value.OpGetUpvalue, value.OpSetUpvalue:
		fmt.Fprintf(&b, "%4d", instr.Operands[0])

	case value.OpCall:
		fmt.Fprintf(&b, "%4d args", instr.Operands[0])

	case value.OpInvoke, value.OpSuperInvoke:
		idx := instr.Operands[0]
		argc := instr.Operands[1]
		fmt.Fprintf(&b, "%4d '%s' (%d args)", idx, chunk.Constants[idx].String(), argc)

	case value.OpJump, value.OpJumpIfFalse:
		jump := int(instr.Operands[0])<<8 | int(instr.Operands[1])
		fmt.Fprintf(&b, "%4d -> %d", instr.Offset, instr.Offset+3+jump)

	case value.OpLoop:
		jump := int(instr.Operands[0])<<8 | int(instr.Operands[1])
		fmt.Fprintf(&b, "%4d -> %d", instr.Offset, instr.Offset+3-jump)

	case value.OpClosure:
		constIdx := instr.Operands[0]
		fn := chunk.Constants[constIdx].AsObject().(*value.Function)
		fmt.Fprintf(&b, "%4d '%s'", constIdx, value.FromObject(fn).String())
		for i := 0; i < fn.UpvalueCount; i++ {
			isLocal := instr.Operands[1+2*i]
			index := instr.Operands[2+2*i]
			kind := "upvalue"
			if isLocal != 0 {
				kind = "local"
			}
			fmt.Fprintf(&b, "\n%04d      |                     %s %d", instr.Offset, kind, index)
		}
	}
	return b.String()
}
