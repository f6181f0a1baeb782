package rts

import "testing"

func TestFreshPromptMonotonic(t *testing.T) {
	prev := FreshPrompt()
	for i := 0; i < 100; i++ {
		p := FreshPrompt()
		if p <= prev {
			t.Fatalf("prompt %d not greater than %d", p, prev)
		}
		prev = p
	}
}

func TestResetInstallsFreshPrompt(t *testing.T) {
	base := detachedNode(t)
	top := Reset(base)
	if top.prompt <= base.prompt {
		t.Fatalf("reset prompt %d not above base %d", top.prompt, base.prompt)
	}
	if top.rest != base {
		t.Fatalf("reset node not linked to base")
	}
	if CurrentPrompt(top) != top.prompt {
		t.Fatalf("currentPrompt mismatch")
	}
	// Detach before erasing: EraseStack owns the whole chain it walks.
	top.rest = nil
	EraseStack(top)
	EraseStack(base)
}

func TestResetUnderflowRoundTrip(t *testing.T) {
	base := detachedNode(t)
	before := ReadStats()
	top := Reset(base)
	// Drop the sentinel frame the way a return would before underflow.
	StackDeallocate(top, 1)
	next := UnderflowStack(top)
	if next != base {
		t.Fatalf("underflow returned wrong node")
	}
	delta := ReadStats().Sub(before)
	if delta.NodeAllocs != delta.NodeFrees || delta.SegmentAllocs != delta.SegmentFrees {
		t.Fatalf("reset/underflow unbalanced: %+v", delta)
	}
	EraseStack(base)
}

func TestShiftIdentityContinuation(t *testing.T) {
	// S1: install a prompt, immediately shift it. The captured prefix is
	// exactly the prompt's node; the node below becomes the new top.
	base := detachedNode(t)
	st := Reset(base)
	p := CurrentPrompt(st)

	k, top := Shift(st, p)
	if k != st {
		t.Fatalf("captured prefix is not the prompt node")
	}
	if k.rest != nil {
		t.Fatalf("captured prefix not nil-terminated")
	}
	if k.rc != 0 {
		t.Fatalf("captured prefix rc = %d, want 0", k.rc)
	}
	if top != base {
		t.Fatalf("new top is not the predecessor")
	}

	restored := Resume(k, top)
	if restored != st || restored.rest != base {
		t.Fatalf("resume did not restore the pre-shift structure")
	}

	restored.rest = nil
	EraseStack(restored)
	EraseStack(base)
}

func TestShiftThroughNestedPrompts(t *testing.T) {
	// S5 shape: shifting the outer prompt from inside the inner one
	// detaches both nodes.
	base := detachedNode(t)
	outer := Reset(base)
	inner := Reset(outer)
	p1 := CurrentPrompt(outer)

	k, top := Shift(inner, p1)
	if k != inner || k.rest != outer || outer.rest != nil {
		t.Fatalf("captured prefix should be inner->outer, nil-terminated")
	}
	if top != base {
		t.Fatalf("new top is not the node below the outer prompt")
	}
	EraseStack(k)
	EraseStack(base)
}

func TestShiftUnknownPromptFaults(t *testing.T) {
	base := detachedNode(t)
	st := Reset(base)
	expectFault(t, FaultNoSuchPrompt, func() {
		Shift(st, Prompt(1<<40))
	})
	st.rest = nil
	EraseStack(st)
	EraseStack(base)
}

func TestShareEraseStackRoundTrip(t *testing.T) {
	// shareStack(s); eraseStack(s) is a no-op on state.
	st := detachedNode(t)
	before := ReadStats()
	ShareStack(st)
	EraseStack(st)
	if st.rc != 0 {
		t.Fatalf("rc = %d after share/erase round trip, want 0", st.rc)
	}
	delta := ReadStats().Sub(before)
	if delta.NodeFrees != 0 || delta.SegmentFrees != 0 {
		t.Fatalf("round trip freed state: %+v", delta)
	}
	EraseStack(st)
}

func TestEraseStackDeepPrefix(t *testing.T) {
	// S3 shape, scaled: a long captured prefix with many frames per
	// segment, each frame holding a heap object. Erase must reclaim
	// everything without native recursion per frame.
	const nodes = 100
	const frames = 100

	before := ReadStats()
	var head *Stack
	for i := 0; i < nodes; i++ {
		n := newNode(nil, FreshPrompt())
		PushFrame(n, FrameHeader{Ret: returnToParent, Sharer: sentinelWalker, Eraser: sentinelWalker})
		for j := 0; j < frames; j++ {
			o := NewObject(EraseFields, 0)
			PushFrame(n,
				FrameHeader{Ret: returnToParent, Sharer: ShareWalker(1, 0), Eraser: EraseWalker(1, 0)},
				MakePos(Pos{Tag: 1, Obj: o}))
		}
		n.rest = head
		head = n
	}

	EraseStack(head)
	delta := ReadStats().Sub(before)
	if !delta.Balanced() {
		t.Fatalf("deep erase leaked: %+v", delta)
	}
	if delta.ObjectFrees != nodes*frames {
		t.Fatalf("freed %d objects, want %d", delta.ObjectFrees, nodes*frames)
	}
}
