package interpreter_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mna/loxcraft/internal/lox/interpreter"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, source string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	in := interpreter.New()
	in.Stdout = &out
	err := in.Interpret(source)
	return out.String(), err
}

func lines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func TestArithmeticPrecedence(t *testing.T) {
	out, err := run(t, `print 1 + 2 * 3;`)
	require.NoError(t, err)
	require.Equal(t, []string{"7"}, lines(out))
}

func TestStringConcatAndEquality(t *testing.T) {
	out, err := run(t, `var a = "foo"; var b = "bar"; print a + b; print a + b == "foobar";`)
	require.NoError(t, err)
	require.Equal(t, []string{"foobar", "true"}, lines(out))
}

func TestClosureCapture(t *testing.T) {
	out, err := run(t, `
fun mk() { var x = 0; fun inc() { x = x + 1; return x; } return inc; }
var c = mk(); print c(); print c(); print c();
`)
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2", "3"}, lines(out))
}

func TestFibonacci(t *testing.T) {
	out, err := run(t, `
fun fib(n){ if (n < 2) return n; return fib(n-1)+fib(n-2); }
print fib(10);
`)
	require.NoError(t, err)
	require.Equal(t, []string{"55"}, lines(out))
}

func TestInheritanceAndSuper(t *testing.T) {
	out, err := run(t, `
class A { greet() { print "A"; } }
class B < A { greet() { super.greet(); print "B"; } }
B().greet();
`)
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B"}, lines(out))
}

func TestInitializerAndField(t *testing.T) {
	out, err := run(t, `
class P { init(x){ this.x = x; } }
print P(42).x;
`)
	require.NoError(t, err)
	require.Equal(t, []string{"42"}, lines(out))
}

func TestRuntimeErrorStackTrace(t *testing.T) {
	_, err := run(t, `var a; a + 1;`)
	require.Error(t, err)

	rerr, ok := err.(*interpreter.RuntimeError)
	require.True(t, ok)
	require.Contains(t, rerr.Error(), "Operands must be")
	require.Contains(t, rerr.Error(), "[line 1]")
}

func TestForLoop(t *testing.T) {
	out, err := run(t, `for (var i = 0; i < 3; i = i + 1) { print i; }`)
	require.NoError(t, err)
	require.Equal(t, []string{"0", "1", "2"}, lines(out))
}

func TestLogicalShortCircuit(t *testing.T) {
	out, err := run(t, `
fun sideEffect() { print "called"; return true; }
print false and sideEffect();
print true or sideEffect();
`)
	require.NoError(t, err)
	require.Equal(t, []string{"false", "true"}, lines(out))
}

func TestWrongArityIsRuntimeError(t *testing.T) {
	_, err := run(t, `fun f(a) { return a; } f(1, 2);`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Expected 1 arguments but got 2")
}
