package debug_test

import (
	"testing"

	"github.com/mna/loxcraft/internal/lox/compiler"
	"github.com/mna/loxcraft/internal/lox/debug"
	"github.com/mna/loxcraft/internal/lox/vm"
	"github.com/stretchr/testify/require"
)

// TestRoundTrip exercises spec §8's "Round-trip" property: disassembling
// a freshly compiled chunk and reassembling the opcodes reproduces the
// original byte sequence exactly.
func TestRoundTrip(t *testing.T) {
	sources := []string{
		`print 1 + 2 * 3;`,
		`var a = "foo"; var b = "bar"; print a + b;`,
		`fun mk() { var x = 0; fun inc() { x = x + 1; return x; } return inc; }`,
		`class A { greet() { print "A"; } } class B < A { greet() { super.greet(); } }`,
		`for (var i = 0; i < 3; i = i + 1) { print i; }`,
	}

	for _, src := range sources {
		machine := vm.New()
		fn, err := compiler.Compile(src, machine)
		require.NoError(t, err)

		instrs := debug.Disassemble(fn.Chunk)
		rebuilt := debug.Reassemble(instrs)
		require.Equal(t, fn.Chunk.Code, rebuilt)
	}
}

func TestDisassembleChunkIncludesHeader(t *testing.T) {
	machine := vm.New()
	fn, err := compiler.Compile(`print 1 + 2;`, machine)
	require.NoError(t, err)

	out := debug.DisassembleChunk(fn.Chunk, "script")
	require.Contains(t, out, "== script ==")
	require.Contains(t, out, "OP_ADD")
	require.Contains(t, out, "OP_RETURN")
}
