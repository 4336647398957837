package compiler

import "github.com/mna/loxcraft/internal/lox/value"

const maxJump = 1<<16 - 1

func (c *compiler) currentChunk() *value.Chunk { return c.fr.fn.Chunk }

func (c *compiler) emitByte(b byte) {
	c.currentChunk().Write(b, c.prev.Line)
}

func (c *compiler) emitOp(op value.OpCode) {
	c.currentChunk().WriteOp(op, c.prev.Line)
}

func (c *compiler) emitOpByte(op value.OpCode, b byte) {
	c.emitOp(op)
	c.emitByte(b)
}

// emitJump emits op followed by a two-byte placeholder offset, returning
// the offset of the placeholder so patchJump can backfill it once the
// jump target is known (spec §4.1 "Jumps").
func (c *compiler) emitJump(op value.OpCode) int {
	c.emitOp(op)
	c.emitByte(0xff)
	c.emitByte(0xff)
	return len(c.currentChunk().Code) - 2
}

// patchJump backfills the two-byte offset at offset with the distance
// from just after it to the current end of the chunk.
func (c *compiler) patchJump(offset int) {
	jump := len(c.currentChunk().Code) - offset - 2
	if jump > maxJump {
		c.error("Too much code to jump over.")
		return
	}
	c.currentChunk().Code[offset] = byte((jump >> 8) & 0xff)
	c.currentChunk().Code[offset+1] = byte(jump & 0xff)
}

// emitLoop emits a backward LOOP jump to loopStart, computed at emit time
// (unlike forward jumps, which are patched later).
func (c *compiler) emitLoop(loopStart int) {
	c.emitOp(value.OpLoop)
	offset := len(c.currentChunk().Code) - loopStart + 2
	if offset > maxJump {
		c.error("Loop body too large.")
		return
	}
	c.emitByte(byte((offset >> 8) & 0xff))
	c.emitByte(byte(offset & 0xff))
}

func (c *compiler) emitReturn() {
	if c.fr.typ == typeInitializer {
		c.emitOpByte(value.OpGetLocal, 0)
	} else {
		c.emitOp(value.OpNil)
	}
	c.emitOp(value.OpReturn)
}

// makeConstant appends v to the current chunk's constant pool, enforcing
// the 256-constant-per-chunk limit (spec §7).
func (c *compiler) makeConstant(v value.Value) byte {
	idx := c.currentChunk().AddConstant(v)
	if idx > 255 {
		c.error("Too many constants in one chunk.")
		return 0
	}
	return byte(idx)
}

func (c *compiler) emitConstant(v value.Value) {
	c.emitOpByte(value.OpConstant, c.makeConstant(v))
}
