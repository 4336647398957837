package value

import "hash/fnv"

// String is an immutable, interned byte sequence (spec §3). Equal content
// always yields the identical *String handle once interning has run (see
// VM.InternString), so Value.Equal can compare strings by pointer.
type String struct {
	ObjHeader
	Chars string
	hash  uint32
}

var _ Object = (*String)(nil)

// NewString constructs a String object with its FNV-1a hash precomputed.
// Callers outside of string interning (i.e. the VM's InternString method) should
// not normally call this directly, since it does not check for an existing
// interned copy.
func NewString(chars string) *String {
	return &String{Chars: chars, hash: HashString(chars)}
}

// Hash returns the cached FNV-1a hash, satisfying table.Hashable.
func (s *String) Hash() uint32 { return s.hash }

// HashString computes the FNV-1a hash of chars.
func HashString(chars string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(chars))
	return h.Sum32()
}
