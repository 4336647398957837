package vm

import "github.com/mna/loxcraft/internal/lox/value"

const internMaxLoad = 0.75

type internEntry struct {
	str  *value.String
	tomb bool
}

// interner is the process-wide string intern table (spec §3, §4.3, §4.4,
// §9 "String interning is a weak reference"). Unlike table.Table it is
// keyed by string *content*, since the whole point of interning is to
// decide, given raw bytes, whether a String object already exists for them
// — table.Table can only look things up once a candidate key handle already
// exists, which is the one thing we don't have yet here. It is otherwise
// the same open-addressing-with-tombstones algorithm as table.Table.
type interner struct {
	entries []internEntry
	count   int // live + tombstones
}

func newInterner() *interner { return &interner{} }

// intern returns the canonical *value.String for chars, allocating one via
// newObj only the first time this exact content is seen.
func (in *interner) intern(chars string, newObj func(string) *value.String) *value.String {
	if float64(in.count+1) > float64(len(in.entries))*internMaxLoad {
		in.grow()
	}

	hash := value.HashString(chars)
	size := uint32(len(in.entries))
	idx := hash % size
	var tombstone *internEntry
	for {
		e := &in.entries[idx]
		switch {
		case e.str == nil && !e.tomb:
			if tombstone != nil {
				e = tombstone
			} else {
				in.count++
			}
			s := newObj(chars)
			e.str = s
			e.tomb = false
			return s
		case e.str == nil && e.tomb:
			if tombstone == nil {
				tombstone = e
			}
		case e.str.Chars == chars:
			return e.str
		}
		idx = (idx + 1) % size
	}
}

func (in *interner) grow() {
	newCap := 8
	if len(in.entries) > 0 {
		newCap = len(in.entries) * 2
	}
	fresh := make([]internEntry, newCap)
	in.count = 0
	for _, e := range in.entries {
		if e.str == nil {
			continue // tombstones are not carried over, same as table.Table
		}
		size := uint32(newCap)
		idx := e.str.Hash() % size
		for fresh[idx].str != nil {
			idx = (idx + 1) % size
		}
		fresh[idx].str = e.str
		in.count++
	}
	in.entries = fresh
}

// purgeUnmarked removes every entry whose String object did not survive the
// GC's mark phase, run after trace and before sweep (spec §4.3 step 3).
func (in *interner) purgeUnmarked() {
	for i := range in.entries {
		e := &in.entries[i]
		if e.str != nil && !e.str.Marked {
			e.str = nil
			e.tomb = true
		}
	}
}

// each calls fn for every live interned string; used by the GC's mark phase
// is not needed (interning is a *weak* root, the table does not keep
// strings alive) but is useful for debugging/tests.
func (in *interner) each(fn func(s *value.String)) {
	for _, e := range in.entries {
		if e.str != nil {
			fn(e.str)
		}
	}
}
