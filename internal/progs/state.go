package progs

import "github.com/serkm/effekt/internal/rts"

// state allocates a mutable cell under a prompt, stores 1, and suspends.
// The handler resumes the captured continuation twice: the first
// resumption writes 2 and reads 2, the second writes nothing and must
// still read 1, because the first resumption ran on a clone with its own
// arena. The result folds both reads: 10*first + second = 21.
func stateProgram() rts.Neg {
	return rts.Neg{VTable: rts.VTable{stateEntry}}
}

func stateEntry(self rts.Neg, evidence int64, st *rts.Stack, args ...rts.Value) rts.Step {
	st = rts.Reset(st)
	p := rts.CurrentPrompt(st)
	r := rts.NewReference(st)
	*rts.GetVarPointer(r, st) = rts.MakeInt(1)

	// Suspension point of the body: its continuation frame keeps the
	// reference alive inside the captured prefix.
	rts.PushFrame(st,
		rts.FrameHeader{Ret: stateBody, Sharer: rts.ShareWalker(1), Eraser: rts.EraseWalker(1)},
		rts.MakeRef(r))
	k, outer := rts.Shift(st, p)

	// Handler: two uses of k, so one extra owner.
	rts.ShareStack(k)
	rts.PushFrame(outer,
		rts.FrameHeader{Ret: stateAfterFirst, Sharer: rts.ShareWalker(1, 0), Eraser: rts.EraseWalker(1, 0)},
		rts.MakeStack(k))
	top := rts.Resume(k, outer)
	return rts.Return(rts.MakeInt(2), top)
}

// stateBody receives the resumed value: nonzero stores it, then the cell
// is read back as the body's result.
func stateBody(v rts.Value, st *rts.Stack) rts.Step {
	r := rts.PopValue(st).AsRef()
	cell := rts.GetVarPointer(r, st)
	if x := v.AsInt(); x != 0 {
		*cell = rts.MakeInt(x)
	}
	return rts.Return(rts.MakeInt(cell.AsInt()), st)
}

func stateAfterFirst(v rts.Value, st *rts.Stack) rts.Step {
	k := rts.PopValue(st).AsStack()
	rts.PushFrame(st,
		rts.FrameHeader{Ret: stateAfterSecond, Sharer: rts.ShareWalker(1), Eraser: rts.EraseWalker(1)},
		rts.MakeInt(v.AsInt()))
	top := rts.Resume(k, st)
	return rts.Return(rts.MakeInt(0), top)
}

func stateAfterSecond(v rts.Value, st *rts.Stack) rts.Step {
	first := rts.PopValue(st).AsInt()
	return rts.Return(rts.MakeInt(first*10+v.AsInt()), st)
}
