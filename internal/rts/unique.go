package rts

// UniqueStack makes a captured prefix safe to mutate. A sole-owner prefix
// (rc 0) is returned unchanged; otherwise one owner is peeled off and the
// whole chain is cloned: each segment is duplicated bit-for-bit, every
// live frame's heap locals gain an owner via the frame sharers, and each
// arena is deep-copied. Prompts are deliberately preserved on the copy:
// references baked into the duplicated frames keep resolving, and because
// the two prefixes are separate chains, lookup finds the local node.
func UniqueStack(s *Stack) *Stack {
	if s == nil || s.rc == 0 {
		return s
	}
	s.rc--
	counters.clones.Add(1)
	if s.m != nil {
		s.m.emit("clone", int64(s.prompt), 0)
	}
	var head, prev *Stack
	for old := s; old != nil; old = old.rest {
		counters.nodeAllocs.Add(1)
		n := &Stack{
			mem:    copyMemory(old.mem),
			arena:  old.arena.clone(),
			prompt: old.prompt,
			m:      old.m,
		}
		ShareFrames(n.mem)
		if prev == nil {
			head = n
		} else {
			prev.rest = n
		}
		prev = n
	}
	return head
}
