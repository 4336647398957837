// Package table implements the open-addressing hash table used for the VM's
// globals table and for class method / instance field storage (spec §4.4).
//
// It is a generic, from-scratch linear-probing table with tombstone-based
// deletion, grounded in the same "small, disposable map" niche the teacher
// reaches for github.com/dolthub/swiss to fill (lang/machine/map.go) — but
// spec §4.4 mandates the specific tombstone-reuse and resize-compaction
// semantics below, which a swiss table cannot express (see DESIGN.md).
package table

const maxLoad = 0.75

// Hashable is the constraint required of table keys: ordinary comparability
// (so identity/content equality can be checked) plus a cached hash, which
// every interned String in this module provides.
type Hashable interface {
	comparable
	Hash() uint32
}

type entry[K Hashable, V any] struct {
	key     K
	value   V
	present bool // false + zero key means a never-used slot; a tombstone is present=false with a non-zero key
	tomb    bool
}

// Table is an open-addressing hash table keyed by any Hashable type, with
// linear probing and tombstone-preserving deletion.
type Table[K Hashable, V any] struct {
	entries []entry[K, V]
	count   int // live entries + tombstones, i.e. what drives growth
}

// New returns an empty Table.
func New[K Hashable, V any]() *Table[K, V] {
	return &Table[K, V]{}
}

// Len returns the number of live (non-tombstone) entries. It is O(capacity)
// and intended for tests/debugging, not hot paths.
func (t *Table[K, V]) Len() int {
	n := 0
	for _, e := range t.entries {
		if e.present {
			n++
		}
	}
	return n
}

// Get looks up key and reports whether it was found.
func (t *Table[K, V]) Get(key K) (V, bool) {
	var zero V
	if len(t.entries) == 0 {
		return zero, false
	}
	e := t.findEntry(t.entries, key)
	if !e.present {
		return zero, false
	}
	return e.value, true
}

// Set inserts or overwrites key's value. It returns true if key was absent
// before the call (whether it lands in an empty slot or reuses a tombstone)
// and false if an existing entry was overwritten. Only an empty slot raises
// count, since a tombstone is already counted.
func (t *Table[K, V]) Set(key K, value V) bool {
	if float64(t.count+1) > float64(len(t.entries))*maxLoad {
		t.grow()
	}

	dst := t.findEntry(t.entries, key)
	isNew := !dst.present
	if !dst.present && !dst.tomb {
		t.count++
	}
	dst.key = key
	dst.value = value
	dst.present = true
	dst.tomb = false
	return isNew
}

// Delete removes key if present, leaving a tombstone in its slot so later
// probe chains through that slot stay intact. Reports whether key was found.
func (t *Table[K, V]) Delete(key K) bool {
	if len(t.entries) == 0 {
		return false
	}
	e := t.findEntry(t.entries, key)
	if !e.present {
		return false
	}
	var zero V
	e.value = zero
	e.present = false
	e.tomb = true
	return true
}

// findEntry returns the slot where key is, or the first tombstone/empty slot
// where it would be inserted, per spec §4.4: "findEntry returns the first
// tombstone it passes if the key is absent, so that a subsequent insert
// reuses the tombstone slot."
func (t *Table[K, V]) findEntry(entries []entry[K, V], key K) *entry[K, V] {
	size := uint32(len(entries))
	idx := key.Hash() % size
	var tombstone *entry[K, V]
	for {
		e := &entries[idx]
		switch {
		case !e.present && !e.tomb:
			// truly empty slot: key is absent
			if tombstone != nil {
				return tombstone
			}
			return e
		case !e.present && e.tomb:
			if tombstone == nil {
				tombstone = e
			}
		case e.key == key:
			return e
		}
		idx = (idx + 1) % size
	}
}

func (t *Table[K, V]) grow() {
	newCap := 8
	if len(t.entries) > 0 {
		newCap = len(t.entries) * 2
	}
	fresh := make([]entry[K, V], newCap)
	t.count = 0
	for _, e := range t.entries {
		if !e.present {
			continue // skip tombstones: they are not carried over (spec §4.4)
		}
		dst := t.findEntry(fresh, e.key)
		dst.key = e.key
		dst.value = e.value
		dst.present = true
		t.count++
	}
	t.entries = fresh
}

// Each calls fn for every live entry, in storage order. The order is not
// stable across growth and must not be relied upon by callers other than
// the garbage collector's mark phase and disassembly/debug output.
func (t *Table[K, V]) Each(fn func(key K, value V)) {
	for _, e := range t.entries {
		if e.present {
			fn(e.key, e.value)
		}
	}
}

// DeleteWhere removes every live entry for which keep returns false, leaving
// a tombstone in each removed slot. The garbage collector does not use it:
// the VM's string intern table is a separate type with its own purge.
func (t *Table[K, V]) DeleteWhere(keep func(key K) bool) {
	for i := range t.entries {
		e := &t.entries[i]
		if e.present && !keep(e.key) {
			var zero V
			e.value = zero
			e.present = false
			e.tomb = true
		}
	}
}
