package rts

import "fortio.org/safecast"

// Ref is a prompt-indexed cell reference: the owning prompt in the high
// 32 bits, the cell offset in the low 32. The packed form is what the
// code generator stores in frame locals and object environments.
type Ref uint64

func makeRef(p Prompt, offset int) Ref {
	hi, err := safecast.Conv[int32](int64(p))
	if err != nil {
		fail(FaultArenaOverflow, "prompt %d does not fit a reference", p)
	}
	lo, err := safecast.Conv[int32](offset)
	if err != nil {
		fail(FaultArenaOverflow, "cell offset %d does not fit a reference", offset)
	}
	return Ref(uint64(uint32(hi))<<32 | uint64(uint32(lo)))
}

// Prompt returns the prompt whose node owns the referenced cell.
func (r Ref) Prompt() Prompt {
	return Prompt(int32(r >> 32))
}

// Offset returns the cell offset within the owning node's arena.
func (r Ref) Offset() int {
	return int(int32(r))
}

// arena is a node's region of mutable cells. The backing array is
// reserved up front so cell pointers stay stable for the node's lifetime;
// cells are bump-allocated and never individually freed.
type arena struct {
	cells []Value
}

func newArena() *arena {
	counters.arenaAllocs.Add(1)
	return &arena{cells: make([]Value, 0, arenaCells.Load())}
}

func (a *arena) free() {
	for _, c := range a.cells {
		EraseValue(c)
	}
	a.cells = nil
	counters.arenaFrees.Add(1)
}

// clone duplicates the arena for a captured-stack copy. Scalar cells are
// copied bit-for-bit; object-typed cells gain an owner so both arenas hold
// the pointee independently.
func (a *arena) clone() *arena {
	counters.arenaAllocs.Add(1)
	dst := &arena{cells: make([]Value, len(a.cells), cap(a.cells))}
	copy(dst.cells, a.cells)
	for _, c := range dst.cells {
		ShareValue(c)
	}
	return dst
}

// NewReference allocates a fresh cell in the top node's arena and returns
// its reference. The cell starts invalid; the first store initializes it.
func NewReference(st *Stack) Ref {
	a := st.arena
	if len(a.cells) == cap(a.cells) {
		failAt(st, FaultArenaOverflow, "arena overflow: %d cells", cap(a.cells))
	}
	offset := len(a.cells)
	a.cells = append(a.cells, Value{})
	return makeRef(st.prompt, offset)
}

// GetVarPointer resolves a reference against the live meta-stack: the
// first node from the top bearing the reference's prompt owns the cell.
// The pointer is valid until that node is freed; the code generator must
// re-resolve after any operation that can capture or splice the stack.
func GetVarPointer(r Ref, st *Stack) *Value {
	p := r.Prompt()
	for n := st; n != nil; n = n.rest {
		if n.prompt != p {
			continue
		}
		off := r.Offset()
		if off < 0 || off >= len(n.arena.cells) {
			failAt(st, FaultDanglingReference, "cell %d outside arena of prompt#%d (%d cells)", off, p, len(n.arena.cells))
		}
		return &n.arena.cells[off]
	}
	failAt(st, FaultDanglingReference, "no node with prompt#%d on the meta-stack", p)
	return nil
}
