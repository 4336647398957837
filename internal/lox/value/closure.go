package value

// Closure binds a Function to the array of Upvalues it captured at creation
// time (spec §3). Its Upvalues slice length always equals
// Function.UpvalueCount, fixed at compile time and never mutated.
type Closure struct {
	ObjHeader
	Function *Function
	Upvalues []*Upvalue
}

var _ Object = (*Closure)(nil)

// NewClosure allocates a Closure over fn with an empty (to be filled by the
// VM's CLOSURE handler) upvalue array sized to fn.UpvalueCount.
func NewClosure(fn *Function) *Closure {
	return &Closure{ObjHeader: ObjHeader{Kind: ObjClosure}, Function: fn, Upvalues: make([]*Upvalue, fn.UpvalueCount)}
}

// Upvalue is a mutable cell shared between a closure and the stack slot it
// originated from. It starts open (Location points at a live stack slot via
// a pointer into the VM's value stack) and is closed exactly once, when the
// owning frame returns or the slot's scope ends, at which point it copies
// the value into Closed and Location is retargeted to &Closed (spec §3,
// §4.2, §9).
type Upvalue struct {
	ObjHeader
	Location *Value
	Closed   Value

	// NextOpen threads this upvalue onto the VM's global list of open
	// upvalues, kept sorted by descending stack slot address (spec §3
	// invariant). Nil once closed (or if never linked).
	NextOpen *Upvalue
}

var _ Object = (*Upvalue)(nil)

// NewUpvalue returns an open Upvalue aliasing slot.
func NewUpvalue(slot *Value) *Upvalue {
	u := &Upvalue{ObjHeader: ObjHeader{Kind: ObjUpvalue}}
	u.Location = slot
	return u
}

// IsOpen reports whether the upvalue still aliases a live stack slot.
func (u *Upvalue) IsOpen() bool { return u.Location != &u.Closed }

// Close copies the current value out of the stack slot into the closure's
// own storage and retargets Location to it, per spec §4.2 closeUpvalues.
func (u *Upvalue) Close() {
	u.Closed = *u.Location
	u.Location = &u.Closed
	u.NextOpen = nil
}
