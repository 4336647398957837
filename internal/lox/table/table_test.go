package table_test

import (
	"testing"

	"github.com/mna/loxcraft/internal/lox/table"
	"github.com/stretchr/testify/require"
)

// key is a tiny Hashable implementation for testing the table in isolation,
// without depending on the value package's String type.
type key string

func (k key) Hash() uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(k); i++ {
		h ^= uint32(k[i])
		h *= 16777619
	}
	return h
}

func TestSetGetDelete(t *testing.T) {
	tbl := table.New[key, int]()

	isNew := tbl.Set("a", 1)
	require.True(t, isNew)
	isNew = tbl.Set("b", 2)
	require.True(t, isNew)

	v, ok := tbl.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)

	isNew = tbl.Set("a", 10)
	require.False(t, isNew)
	v, ok = tbl.Get("a")
	require.True(t, ok)
	require.Equal(t, 10, v)

	_, ok = tbl.Get("missing")
	require.False(t, ok)

	require.True(t, tbl.Delete("a"))
	_, ok = tbl.Get("a")
	require.False(t, ok)
	require.False(t, tbl.Delete("a"))

	// b must still be reachable after a's deletion leaves a tombstone behind.
	v, ok = tbl.Get("b")
	require.True(t, ok)
	require.Equal(t, 2, v)
}

func TestTombstoneReuse(t *testing.T) {
	tbl := table.New[key, int]()
	tbl.Set("a", 1)
	tbl.Delete("a")
	// Re-inserting the same key should reuse the tombstone slot, i.e. count
	// every entries length exactly matches what a fresh insert would cost.
	isNew := tbl.Set("a", 2)
	require.True(t, isNew)
	v, ok := tbl.Get("a")
	require.True(t, ok)
	require.Equal(t, 2, v)
}

func TestGrowthAndLoadFactor(t *testing.T) {
	tbl := table.New[key, int]()
	const n = 500
	for i := 0; i < n; i++ {
		tbl.Set(key(randKey(i)), i)
	}
	require.Equal(t, n, tbl.Len())
	for i := 0; i < n; i++ {
		v, ok := tbl.Get(key(randKey(i)))
		require.True(t, ok)
		require.Equal(t, i, v)
	}
}

func TestEachVisitsAllLiveEntries(t *testing.T) {
	tbl := table.New[key, int]()
	want := map[key]int{"a": 1, "b": 2, "c": 3}
	for k, v := range want {
		tbl.Set(k, v)
	}
	tbl.Delete("b")
	delete(want, "b")

	got := map[key]int{}
	tbl.Each(func(k key, v int) { got[k] = v })
	require.Equal(t, want, got)
}

func TestDeleteWhere(t *testing.T) {
	tbl := table.New[key, int]()
	tbl.Set("keep", 1)
	tbl.Set("drop", 2)
	tbl.DeleteWhere(func(k key) bool { return k == "keep" })

	_, ok := tbl.Get("keep")
	require.True(t, ok)
	_, ok = tbl.Get("drop")
	require.False(t, ok)
}

func randKey(i int) string {
	// deterministic distinct strings, no math/rand needed
	return string(rune('a'+i%26)) + string(rune('A'+(i/26)%26)) + string(rune('0'+i%10))
}
