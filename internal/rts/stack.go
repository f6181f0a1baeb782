package rts

// Stack is one node of the meta-stack: a frame segment, the node's arena,
// the prompt naming it, and the link to the node below. A nil rest marks
// the bottom of a captured prefix (or the global base node).
//
// Ownership: captured prefixes are rc-counted through their head node;
// the live meta-stack is owned by being reachable from the machine's top.
type Stack struct {
	rc     int64
	mem    *Segment
	arena  *arena
	prompt Prompt
	rest   *Stack
	m      *Machine
}

// Prompt returns the node's prompt.
func (st *Stack) Prompt() Prompt {
	return st.prompt
}

// Rest returns the node below, or nil at the bottom.
func (st *Stack) Rest() *Stack {
	return st.rest
}

// Mem returns the node's frame segment.
func (st *Stack) Mem() *Segment {
	return st.mem
}

// RC returns the number of additional owners of a captured prefix.
func (st *Stack) RC() int64 {
	return st.rc
}

func newNode(m *Machine, p Prompt) *Stack {
	counters.nodeAllocs.Add(1)
	return &Stack{mem: NewMemory(), arena: newArena(), prompt: p, m: m}
}

func freeNode(n *Stack) {
	n.mem.free()
	n.arena.free()
	n.mem = nil
	n.arena = nil
	n.rest = nil
	counters.nodeFrees.Add(1)
}

// CurrentPrompt returns the prompt of the top node.
func CurrentPrompt(st *Stack) Prompt {
	return st.prompt
}

// Reset installs a prompt boundary: a fresh node with a fresh prompt is
// pushed above st, with the underflow sentinel at its segment bottom so a
// return past the last frame pops the node again.
func Reset(st *Stack) *Stack {
	top := newNode(st.m, FreshPrompt())
	top.rest = st
	PushFrame(top, FrameHeader{Ret: returnToParent, Sharer: sentinelWalker, Eraser: sentinelWalker})
	if st.m != nil {
		st.m.adjust(top, 1)
		st.m.emit("reset", int64(top.prompt), 0)
	}
	return top
}

// returnToParent is the sentinel return address at the bottom of every
// reset segment: the node is exhausted, so pop it and keep returning on
// the node below.
func returnToParent(v Value, st *Stack) Step {
	next := UnderflowStack(st)
	return Return(v, next)
}

// UnderflowStack frees the exhausted top node and returns the node below
// as the new top.
func UnderflowStack(st *Stack) *Stack {
	next := st.rest
	m := st.m
	freeNode(st)
	if m != nil {
		m.adjust(next, -1)
		m.emit("underflow", 0, 0)
	}
	return next
}

// Shift detaches the meta-stack prefix from the top down to and including
// the node bearing prompt p. The detached prefix (rc 0, nil-terminated)
// is the captured continuation; the node below p becomes the new top.
func Shift(st *Stack, p Prompt) (prefix, top *Stack) {
	captured := 0
	for n := st; n != nil; n = n.rest {
		captured++
		if n.prompt != p {
			continue
		}
		top = n.rest
		n.rest = nil
		if st.m != nil {
			st.m.adjust(top, -captured)
			st.m.emit("shift", int64(p), int64(captured))
		}
		return st, top
	}
	failAt(st, FaultNoSuchPrompt, "no such prompt: #%d", p)
	return nil, nil
}

// Resume splices a captured prefix back atop the current meta-stack and
// returns its head as the new top. A shared prefix is cloned first so
// mutation through this resumption is invisible to the other owners.
func Resume(prefix, st *Stack) *Stack {
	k := UniqueStack(prefix)
	spliced := 1
	bottom := k
	for bottom.rest != nil {
		bottom = bottom.rest
		spliced++
	}
	bottom.rest = st
	if k.m != nil {
		k.m.adjust(k, spliced)
		k.m.emit("resume", int64(k.prompt), int64(spliced))
	}
	return k
}

// ShareStack adds an owner to a captured prefix.
func ShareStack(s *Stack) {
	if s == nil {
		return
	}
	s.rc++
}

// EraseStack drops one owner from a captured prefix. The last drop walks
// the chain, erasing every frame's heap locals and freeing each segment,
// arena, and node. Only captured prefixes may be erased, never the live
// meta-stack head.
func EraseStack(s *Stack) {
	if s == nil {
		return
	}
	if s.rc > 0 {
		s.rc--
		return
	}
	for n := s; n != nil; {
		EraseFrames(n.mem)
		next := n.rest
		freeNode(n)
		n = next
	}
}
