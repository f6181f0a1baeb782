package rts

// ShareFrames walks every live frame in the segment from the top down,
// invoking each header's sharer so the heap objects held in frame locals
// gain an owner. The walk is a loop: each sharer returns the index of the
// next header below, and the bottom sentinel returns -1.
func ShareFrames(seg *Segment) {
	walkFrames(seg, func(h *FrameHeader) FrameWalker { return h.Sharer })
}

// EraseFrames is the symmetric walk using each header's eraser, dropping
// one owner from the heap objects held in frame locals.
func EraseFrames(seg *Segment) {
	walkFrames(seg, func(h *FrameHeader) FrameWalker { return h.Eraser })
}

func walkFrames(seg *Segment, pick func(*FrameHeader) FrameWalker) {
	at := seg.sp - 1
	for at >= 0 {
		h := seg.slots[at].Hdr
		if h == nil {
			fail(FaultCorruptFrame, "no frame header at slot %d", at)
		}
		w := pick(h)
		if w == nil {
			fail(FaultCorruptFrame, "frame header at slot %d has no walker", at)
		}
		at = w(seg, at)
	}
}

// ShareWalker builds a sharer for a frame of n locals. heapSlots lists the
// locals that hold heap values, as offsets below the header (0 = the slot
// directly under it). The code generator emits one walker pair per frame
// layout; these constructors are the hand-written equivalent.
func ShareWalker(n int, heapSlots ...int) FrameWalker {
	return func(seg *Segment, at int) int {
		for _, off := range heapSlots {
			ShareValue(seg.slots[at-1-off].Val)
		}
		return at - 1 - n
	}
}

// EraseWalker builds the matching eraser for a frame of n locals.
func EraseWalker(n int, heapSlots ...int) FrameWalker {
	return func(seg *Segment, at int) int {
		for _, off := range heapSlots {
			EraseValue(seg.slots[at-1-off].Val)
		}
		return at - 1 - n
	}
}

// sentinelWalker terminates the frame walk at a segment's bottom frame.
func sentinelWalker(seg *Segment, at int) int {
	return -1
}

// Return pops the topmost frame header and bounces into its return
// address with v. This is the only way control leaves a frame.
func Return(v Value, st *Stack) Step {
	seg := st.mem
	if seg.sp == 0 {
		failAt(st, FaultCorruptStack, "return past segment bottom")
	}
	at := seg.sp - 1
	h := seg.slots[at].Hdr
	if h == nil {
		failAt(st, FaultCorruptFrame, "return with no frame header at slot %d", at)
	}
	seg.slots[at] = Slot{}
	seg.sp = at
	return func() Step { return h.Ret(v, st) }
}
