package vm_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mna/loxcraft/internal/lox/vm"
	"github.com/stretchr/testify/require"
)

// run compiles and interprets source, returning everything written to
// stdout and the error (nil on success).
func run(t *testing.T, source string, opts ...vm.Option) (string, error) {
	t.Helper()
	var out bytes.Buffer
	machine := vm.New(append([]vm.Option{vm.WithStdout(&out)}, opts...)...)
	err := machine.Interpret(source)
	return out.String(), err
}

func lines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// TestArithmeticPrecedence is scenario 1 of spec §8.
func TestArithmeticPrecedence(t *testing.T) {
	out, err := run(t, `print 1 + 2 * 3;`)
	require.NoError(t, err)
	require.Equal(t, []string{"7"}, lines(out))
}

// TestStringConcatAndInterning is scenario 2 of spec §8.
func TestStringConcatAndInterning(t *testing.T) {
	out, err := run(t, `var a = "foo"; var b = "bar"; print a + b; print a + b == "foobar";`)
	require.NoError(t, err)
	require.Equal(t, []string{"foobar", "true"}, lines(out))
}

// TestClosureCapture is scenario 3 of spec §8.
func TestClosureCapture(t *testing.T) {
	out, err := run(t, `
fun mk() { var x = 0; fun inc() { x = x + 1; return x; } return inc; }
var c = mk(); print c(); print c(); print c();
`)
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2", "3"}, lines(out))
}

// TestFibonacci is scenario 4 of spec §8.
func TestFibonacci(t *testing.T) {
	out, err := run(t, `
fun fib(n){ if (n < 2) return n; return fib(n-1)+fib(n-2); }
print fib(10);
`)
	require.NoError(t, err)
	require.Equal(t, []string{"55"}, lines(out))
}

// TestInheritanceAndSuper is scenario 5 of spec §8.
func TestInheritanceAndSuper(t *testing.T) {
	out, err := run(t, `
class A { greet() { print "A"; } }
class B < A { greet() { super.greet(); print "B"; } }
B().greet();
`)
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B"}, lines(out))
}

// TestInitializerAndField is scenario 6 of spec §8.
func TestInitializerAndField(t *testing.T) {
	out, err := run(t, `
class P { init(x){ this.x = x; } }
print P(42).x;
`)
	require.NoError(t, err)
	require.Equal(t, []string{"42"}, lines(out))
}

// TestRuntimeErrorStackTrace is scenario 7 of spec §8.
func TestRuntimeErrorStackTrace(t *testing.T) {
	_, err := run(t, `var a; a + 1;`)
	require.Error(t, err)

	rerr, ok := err.(*vm.RuntimeError)
	require.True(t, ok)
	require.Contains(t, rerr.Error(), "Operands must be")
	require.Contains(t, rerr.Error(), "[line 1]")
}

func TestStackAndFrameEmptyAfterNormalReturn(t *testing.T) {
	machine := vm.New(vm.WithStdout(&bytes.Buffer{}))
	err := machine.Interpret(`fun f(a, b) { return a + b; } print f(1, 2);`)
	require.NoError(t, err)
	require.Zero(t, machine.StackDepth())
	require.Zero(t, machine.FrameDepth())
}

func TestDivisionByZeroYieldsInfNotError(t *testing.T) {
	out, err := run(t, `print 1 / 0;`)
	require.NoError(t, err)
	require.Equal(t, []string{"+Inf"}, lines(out))
}

func TestUndefinedVariableIsRuntimeError(t *testing.T) {
	_, err := run(t, `print undefined_name;`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Undefined variable")
}

func TestWrongArityIsRuntimeError(t *testing.T) {
	_, err := run(t, `fun f(a) { return a; } f(1, 2);`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Expected 1 arguments but got 2")
}

func TestStressGCDoesNotCorruptExecution(t *testing.T) {
	out, err := run(t, `
fun fib(n){ if (n < 2) return n; return fib(n-1)+fib(n-2); }
print fib(12);
`, vm.WithStressGC(true))
	require.NoError(t, err)
	require.Equal(t, []string{"144"}, lines(out))
}

// TestStressGCPreservesStringInterningAcrossCompile guards against a
// collection triggered while Interpret compiles and roots the top-level
// script closure evicting that script's own string constants from the
// intern table (spec §8 invariant 4, scenario 2).
func TestStressGCPreservesStringInterningAcrossCompile(t *testing.T) {
	out, err := run(t, `
var a = "foo";
var b = "bar";
print a + b == "foobar";
`, vm.WithStressGC(true))
	require.NoError(t, err)
	require.Equal(t, []string{"true"}, lines(out))
}

// TestStressGCDuringNativeDefinition guards against a collection triggered
// while the VM installs its natives evicting a native's interned name
// before the globals table roots it.
func TestStressGCDuringNativeDefinition(t *testing.T) {
	out, err := run(t, `print type(clock());`, vm.WithStressGC(true))
	require.NoError(t, err)
	require.Equal(t, []string{"number"}, lines(out))
}
