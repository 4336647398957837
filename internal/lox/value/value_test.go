package value_test

import (
	"testing"

	"github.com/mna/loxcraft/internal/lox/value"
	"github.com/stretchr/testify/require"
)

func TestTruthiness(t *testing.T) {
	require.True(t, value.Nil().IsFalsey())
	require.True(t, value.Bool(false).IsFalsey())
	require.False(t, value.Bool(true).IsFalsey())
	require.False(t, value.Number(0).IsFalsey())
	require.False(t, value.FromObject(value.NewString("")).IsFalsey())
}

func TestEquality(t *testing.T) {
	require.True(t, value.Nil().Equal(value.Nil()))
	require.True(t, value.Bool(true).Equal(value.Bool(true)))
	require.False(t, value.Bool(true).Equal(value.Bool(false)))
	require.True(t, value.Number(1).Equal(value.Number(1)))
	require.False(t, value.Number(1).Equal(value.Number(2)))
	require.False(t, value.Nil().Equal(value.Bool(false)))

	nan := value.Number(notANumber())
	require.False(t, nan.Equal(nan))

	a := value.FromObject(value.NewString("abc"))
	b := value.FromObject(value.NewString("abc"))
	require.False(t, a.Equal(b), "distinct String objects are not equal without interning")

	s := value.NewString("shared")
	v1 := value.FromObject(s)
	v2 := value.FromObject(s)
	require.True(t, v1.Equal(v2), "identical handles are always equal")
}

func notANumber() float64 {
	return posInf() - posInf()
}

func posInf() float64 {
	var zero float64
	return 1 / zero
}

func TestStringRendering(t *testing.T) {
	require.Equal(t, "nil", value.Nil().String())
	require.Equal(t, "true", value.Bool(true).String())
	require.Equal(t, "false", value.Bool(false).String())
	require.Equal(t, "7", value.Number(7).String())
	require.Equal(t, "3.5", value.Number(3.5).String())

	str := value.FromObject(value.NewString("hi"))
	require.Equal(t, "hi", str.String())
}

func TestTypeName(t *testing.T) {
	require.Equal(t, "nil", value.Nil().TypeName())
	require.Equal(t, "boolean", value.Bool(true).TypeName())
	require.Equal(t, "number", value.Number(1).TypeName())
	require.Equal(t, "string", value.FromObject(value.NewString("x")).TypeName())

	class := value.NewClass(value.NewString("C"))
	require.Equal(t, "class", value.FromObject(class).TypeName())
	inst := value.NewInstance(class)
	require.Equal(t, "instance", value.FromObject(inst).TypeName())
}

func TestClassMethodCopyDown(t *testing.T) {
	base := value.NewClass(value.NewString("Base"))
	base.Methods.Set(value.NewString("greet"), value.Number(1))

	sub := value.NewClass(value.NewString("Sub"))
	base.Methods.Each(func(k *value.String, v value.Value) {
		sub.Methods.Set(k, v)
	})
	sub.Methods.Set(value.NewString("greet"), value.Number(2)) // a second, distinct key, not an override

	v, ok := sub.Methods.Get(value.NewString("greet"))
	// distinct *String keys with the same content are not equal without the
	// VM's interning, so this demonstrates why interning is required for
	// correct method/field lookups, not just string-literal equality.
	require.False(t, ok, "lookup by a freshly-allocated, non-interned key must miss")
	_ = v
}

func TestUpvalueOpenClose(t *testing.T) {
	slot := value.Number(41)
	up := value.NewUpvalue(&slot)
	require.True(t, up.IsOpen())

	slot = value.Number(42)
	up.Close()
	require.False(t, up.IsOpen())
	require.True(t, up.Closed.Equal(value.Number(42)))
}
