package vm

import (
	"testing"

	"github.com/mna/loxcraft/internal/lox/value"
	"github.com/stretchr/testify/require"
)

// TestSecondConsecutiveGCFreesNothing exercises spec §8 invariant 6: with
// no allocations between two collections, the second collectGarbage call
// has nothing left to sweep.
func TestSecondConsecutiveGCFreesNothing(t *testing.T) {
	machine := New()
	require.NoError(t, machine.Interpret(`
var s = "";
for (var i = 0; i < 50; i = i + 1) {
  s = s + "x";
}
`))

	machine.collectGarbage()
	before := machine.bytesAllocated
	machine.collectGarbage()
	require.Equal(t, before, machine.bytesAllocated, "a GC with nothing new allocated since the last one must free nothing")
}

// TestOpenUpvalueLocationPointsIntoStack exercises spec §8 invariant 3: an
// open upvalue's Location always points into a live frame's stack slot
// window, never into the Upvalue's own Closed storage, until closeUpvalues
// runs on it.
func TestOpenUpvalueLocationPointsIntoStack(t *testing.T) {
	vm := New()
	vm.stack[5] = value.Number(42)

	up := vm.captureUpvalue(&vm.stack[5])
	require.True(t, up.IsOpen())
	require.Equal(t, &vm.stack[5], up.Location, "an open upvalue must alias the stack slot it captured, not a copy")
	require.Same(t, up, vm.openUpvalues, "captureUpvalue must link new upvalues onto the VM's open list")

	vm.closeUpvalues(&vm.stack[0])
	require.False(t, up.IsOpen())
	require.Equal(t, value.Number(42), up.Closed)
	require.Nil(t, vm.openUpvalues, "closeUpvalues must unlink every upvalue it closes")
}

// TestCaptureUpvalueReusesExistingOpenUpvalue exercises the dedup half of
// spec §4.2's "Upvalues": capturing the same slot twice before it closes
// must return the same Upvalue, not allocate a second one.
func TestCaptureUpvalueReusesExistingOpenUpvalue(t *testing.T) {
	vm := New()
	vm.stack[3] = value.Number(7)

	first := vm.captureUpvalue(&vm.stack[3])
	second := vm.captureUpvalue(&vm.stack[3])
	require.Same(t, first, second)
}
